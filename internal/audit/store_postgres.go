package audit

import (
	"context"
	"database/sql"
	"fmt"
)

// Schema is the idempotent DDL for the audit trail.
const Schema = `
CREATE TABLE IF NOT EXISTS audit_events (
	id          UUID PRIMARY KEY,
	user_id     BIGINT NOT NULL,
	event_type  VARCHAR(50) NOT NULL,
	occurred_at TIMESTAMPTZ NOT NULL
)`

// PostgresStore persists audit events in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Append(ctx context.Context, event Event) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO audit_events (id, user_id, event_type, occurred_at) VALUES ($1, $2, $3, $4)`,
		event.ID, event.UserID, string(event.Type), event.OccurredAt,
	)
	if err != nil {
		return fmt.Errorf("append audit event: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListByUser(ctx context.Context, userID int64) ([]Event, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, event_type, occurred_at FROM audit_events
		 WHERE user_id = $1 ORDER BY occurred_at`, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var event Event
		var eventType string
		if err := rows.Scan(&event.ID, &event.UserID, &eventType, &event.OccurredAt); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		event.Type = EventType(eventType)
		out = append(out, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	return out, nil
}
