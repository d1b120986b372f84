package audit

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestPublisherFillsEventFields(t *testing.T) {
	p := NewPublisher(4, discardLogger())
	fixed := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)
	p.clock = func() time.Time { return fixed }

	p.Emit(100, EventRegistrationStarted)

	select {
	case event := <-p.Events():
		require.NotEqual(t, [16]byte{}, [16]byte(event.ID))
		require.Equal(t, int64(100), event.UserID)
		require.Equal(t, EventRegistrationStarted, event.Type)
		require.Equal(t, fixed, event.OccurredAt)
	default:
		t.Fatal("expected an event in the inbox")
	}
}

func TestPublisherDropsWhenFull(t *testing.T) {
	p := NewPublisher(1, discardLogger())

	p.Emit(1, EventRegistrationStarted)
	p.Emit(2, EventRegistrationStarted) // buffer full, dropped

	require.Len(t, p.inbox, 1)
}

func TestWorkerDrainsIntoStore(t *testing.T) {
	p := NewPublisher(8, discardLogger())
	store := NewInMemoryStore()
	w := NewWorker(store, p.Events(), discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = w.Run(ctx)
	}()

	p.Emit(100, EventRegistrationStarted)
	p.Emit(100, EventRegistrationCompleted)
	p.Emit(200, EventRegistrationCancelled)

	require.Eventually(t, func() bool {
		events, err := store.ListByUser(context.Background(), 100)
		return err == nil && len(events) == 2
	}, time.Second, 10*time.Millisecond)

	events, err := store.ListByUser(context.Background(), 100)
	require.NoError(t, err)
	require.Equal(t, EventRegistrationStarted, events[0].Type)
	require.Equal(t, EventRegistrationCompleted, events[1].Type)

	cancel()
	<-done
}
