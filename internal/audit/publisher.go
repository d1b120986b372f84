package audit

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Publisher hands events to the background worker through a buffered channel.
// Emit never blocks the registration flow: when the buffer is full the event
// is dropped and counted in the log, not surfaced to the user.
type Publisher struct {
	inbox  chan Event
	logger *slog.Logger
	clock  func() time.Time
}

func NewPublisher(buffer int, logger *slog.Logger) *Publisher {
	if buffer <= 0 {
		buffer = 256
	}
	return &Publisher{
		inbox:  make(chan Event, buffer),
		logger: logger,
		clock:  time.Now,
	}
}

// Emit enqueues a lifecycle event for the user.
func (p *Publisher) Emit(userID int64, eventType EventType) {
	event := Event{
		ID:         uuid.New(),
		UserID:     userID,
		Type:       eventType,
		OccurredAt: p.clock(),
	}
	select {
	case p.inbox <- event:
	default:
		p.logger.Warn("audit buffer full, dropping event",
			"event_type", string(eventType), "user_id", userID)
	}
}

// Events exposes the channel the worker drains.
func (p *Publisher) Events() <-chan Event {
	return p.inbox
}
