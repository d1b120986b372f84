package audit

import (
	"context"
	"log/slog"
)

// Worker consumes audit events from a channel and persists them. A failing
// append is logged and the worker keeps draining; audit is best-effort and
// must never take the bot down.
type Worker struct {
	store  Store
	inbox  <-chan Event
	logger *slog.Logger
}

func NewWorker(store Store, inbox <-chan Event, logger *slog.Logger) *Worker {
	return &Worker{store: store, inbox: inbox, logger: logger}
}

func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event := <-w.inbox:
			if err := w.store.Append(ctx, event); err != nil {
				w.logger.Error("append audit event",
					"event_type", string(event.Type), "user_id", event.UserID, "error", err)
			}
		}
	}
}
