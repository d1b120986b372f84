package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// EventType classifies registration lifecycle events.
type EventType string

const (
	EventRegistrationStarted   EventType = "registration_started"
	EventRegistrationCompleted EventType = "registration_completed"
	EventRegistrationCancelled EventType = "registration_cancelled"
)

// Event records one registration lifecycle action. Keep it transport-agnostic
// so stores and sinks can fan out.
type Event struct {
	ID         uuid.UUID
	UserID     int64
	Type       EventType
	OccurredAt time.Time
}

// Store is an append-only sink for audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListByUser(ctx context.Context, userID int64) ([]Event, error)
}
