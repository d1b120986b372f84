package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"regbot/internal/platform/metrics"
	"regbot/internal/profile/models"
	"regbot/pkg/platform/sentinel"
)

// Schema is the idempotent DDL for the profile table. The referral_code
// unique constraint is the authoritative guard against code collisions.
const Schema = `
CREATE TABLE IF NOT EXISTS user_profiles (
	user_id        BIGINT PRIMARY KEY,
	telegram_username VARCHAR(100),
	email          VARCHAR(255),
	referral_code  VARCHAR(20) UNIQUE NOT NULL,
	invited_by     VARCHAR(20),
	full_name      VARCHAR(200),
	country        VARCHAR(100),
	gender         VARCHAR(20),
	birth_year     INTEGER,
	phone_number   VARCHAR(20),
	registered_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	referral_count INTEGER NOT NULL DEFAULT 0,
	status         VARCHAR(20) NOT NULL DEFAULT 'active'
)`

// PostgresStore persists profiles in PostgreSQL.
type PostgresStore struct {
	db      *sql.DB
	metrics *metrics.Metrics
}

// NewPostgres constructs a PostgreSQL-backed profile store.
func NewPostgres(db *sql.DB, m *metrics.Metrics) *PostgresStore {
	return &PostgresStore{db: db, metrics: m}
}

func (s *PostgresStore) Create(ctx context.Context, profile *models.Profile) error {
	start := time.Now()
	defer s.metrics.ObserveStore("create", start)

	query := `
		INSERT INTO user_profiles
			(user_id, telegram_username, email, referral_code, invited_by,
			 full_name, country, gender, birth_year, phone_number, registered_at, status)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := s.db.ExecContext(ctx, query,
		profile.UserID,
		profile.Username,
		profile.Email,
		profile.ReferralCode,
		profile.InvitedBy,
		profile.FullName,
		profile.Country,
		profile.Gender,
		profile.BirthYear,
		profile.PhoneNumber,
		profile.RegisteredAt,
		profile.Status,
	)
	if err != nil {
		return classifyInsertError(err)
	}
	return nil
}

// classifyInsertError maps unique violations to the constraint that fired so
// callers can tell "already registered" apart from a code collision.
func classifyInsertError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		if strings.Contains(pqErr.Constraint, "referral_code") {
			return ErrDuplicateCode
		}
		return ErrDuplicateUser
	}
	return fmt.Errorf("insert profile: %w", err)
}

func (s *PostgresStore) FindByUserID(ctx context.Context, userID int64) (*models.Profile, error) {
	start := time.Now()
	defer s.metrics.ObserveStore("find", start)

	query := `
		SELECT user_id, COALESCE(telegram_username, ''), COALESCE(email, ''),
		       referral_code, COALESCE(invited_by, ''), COALESCE(full_name, ''),
		       COALESCE(country, ''), COALESCE(gender, ''), COALESCE(birth_year, 0),
		       COALESCE(phone_number, ''), registered_at, referral_count, status
		FROM user_profiles WHERE user_id = $1
	`
	var p models.Profile
	err := s.db.QueryRowContext(ctx, query, userID).Scan(
		&p.UserID, &p.Username, &p.Email, &p.ReferralCode, &p.InvitedBy,
		&p.FullName, &p.Country, &p.Gender, &p.BirthYear, &p.PhoneNumber,
		&p.RegisteredAt, &p.ReferralCount, &p.Status,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find profile: %w", err)
	}
	return &p, nil
}

func (s *PostgresStore) Exists(ctx context.Context, userID int64) (bool, error) {
	start := time.Now()
	defer s.metrics.ObserveStore("exists", start)

	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM user_profiles WHERE user_id = $1)`, userID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check profile exists: %w", err)
	}
	return exists, nil
}

func (s *PostgresStore) CodeInUse(ctx context.Context, code string) (bool, error) {
	start := time.Now()
	defer s.metrics.ObserveStore("code_in_use", start)

	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM user_profiles WHERE referral_code = $1)`, code,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check referral code: %w", err)
	}
	return exists, nil
}

func (s *PostgresStore) ReferralStats(ctx context.Context, userID int64) (string, int, error) {
	start := time.Now()
	defer s.metrics.ObserveStore("referral_stats", start)

	var code string
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT referral_code, referral_count FROM user_profiles WHERE user_id = $1`, userID,
	).Scan(&code, &count)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", 0, sentinel.ErrNotFound
		}
		return "", 0, fmt.Errorf("referral stats: %w", err)
	}
	return code, count, nil
}

func (s *PostgresStore) IncrementReferralCount(ctx context.Context, code string) error {
	start := time.Now()
	defer s.metrics.ObserveStore("increment_referrals", start)

	res, err := s.db.ExecContext(ctx,
		`UPDATE user_profiles SET referral_count = referral_count + 1 WHERE referral_code = $1`, code,
	)
	if err != nil {
		return fmt.Errorf("increment referral count: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("increment referral count: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}
