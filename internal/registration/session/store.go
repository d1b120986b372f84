package session

import "context"

// Store keeps in-progress sessions keyed by user identity. Lifecycle:
// created on first contact, deleted on completion or cancellation.
type Store interface {
	Save(ctx context.Context, sess *Session) error
	// Find returns sentinel.ErrNotFound when the user has no open session.
	Find(ctx context.Context, userID int64) (*Session, error)
	Delete(ctx context.Context, userID int64) error
}
