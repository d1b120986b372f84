package store

import (
	"context"
	"fmt"

	"regbot/internal/profile/models"
	"regbot/pkg/platform/sentinel"
)

var (
	// ErrDuplicateUser signals an insert for a user_id that already has a
	// profile. Registering twice is not supported.
	ErrDuplicateUser = fmt.Errorf("user already registered: %w", sentinel.ErrConflict)

	// ErrDuplicateCode signals the storage-level unique constraint rejecting a
	// referral code. This is the authoritative collision signal; callers retry
	// with a fresh code.
	ErrDuplicateCode = fmt.Errorf("referral code taken: %w", sentinel.ErrConflict)
)

// ProfileStore persists completed registrations. Point operations only; the
// store never sees partial progress.
type ProfileStore interface {
	// Create inserts one profile row. Returns ErrDuplicateUser or
	// ErrDuplicateCode on constraint violations.
	Create(ctx context.Context, profile *models.Profile) error
	// FindByUserID returns sentinel.ErrNotFound for unregistered users.
	FindByUserID(ctx context.Context, userID int64) (*models.Profile, error)
	// Exists reports whether a profile row exists for the user.
	Exists(ctx context.Context, userID int64) (bool, error)
	// CodeInUse reports whether any profile holds the referral code.
	CodeInUse(ctx context.Context, code string) (bool, error)
	// ReferralStats returns the user's code and referral counter.
	ReferralStats(ctx context.Context, userID int64) (string, int, error)
	// IncrementReferralCount bumps the counter of the profile owning the code.
	IncrementReferralCount(ctx context.Context, code string) error
}
