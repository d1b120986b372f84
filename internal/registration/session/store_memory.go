package session

import (
	"context"
	"sync"

	"regbot/pkg/platform/sentinel"
)

// InMemoryStore holds sessions in process memory. Sessions are scoped to one
// active dialogue and are not required to survive a restart, so this is the
// default store.
type InMemoryStore struct {
	mu       sync.RWMutex
	sessions map[int64]Session
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{sessions: make(map[int64]Session)}
}

func (s *InMemoryStore) Save(_ context.Context, sess *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.UserID] = *sess
	return nil
}

func (s *InMemoryStore) Find(_ context.Context, userID int64) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if sess, ok := s.sessions[userID]; ok {
		return &sess, nil
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemoryStore) Delete(_ context.Context, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, userID)
	return nil
}
