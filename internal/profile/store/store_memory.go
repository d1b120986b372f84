package store

import (
	"context"
	"sync"

	"regbot/internal/profile/models"
	"regbot/pkg/platform/sentinel"
)

// InMemoryStore keeps profiles in process memory. It doubles as the test
// fake and intentionally favors clarity over performance.
type InMemoryStore struct {
	mu       sync.RWMutex
	profiles map[int64]models.Profile
	codes    map[string]int64 // referral code -> owner
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{
		profiles: make(map[int64]models.Profile),
		codes:    make(map[string]int64),
	}
}

func (s *InMemoryStore) Create(_ context.Context, profile *models.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.profiles[profile.UserID]; ok {
		return ErrDuplicateUser
	}
	if _, ok := s.codes[profile.ReferralCode]; ok {
		return ErrDuplicateCode
	}
	s.profiles[profile.UserID] = *profile
	s.codes[profile.ReferralCode] = profile.UserID
	return nil
}

func (s *InMemoryStore) FindByUserID(_ context.Context, userID int64) (*models.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if profile, ok := s.profiles[userID]; ok {
		return &profile, nil
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemoryStore) Exists(_ context.Context, userID int64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.profiles[userID]
	return ok, nil
}

func (s *InMemoryStore) CodeInUse(_ context.Context, code string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.codes[code]
	return ok, nil
}

func (s *InMemoryStore) ReferralStats(_ context.Context, userID int64) (string, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	profile, ok := s.profiles[userID]
	if !ok {
		return "", 0, sentinel.ErrNotFound
	}
	return profile.ReferralCode, profile.ReferralCount, nil
}

func (s *InMemoryStore) IncrementReferralCount(_ context.Context, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	owner, ok := s.codes[code]
	if !ok {
		return sentinel.ErrNotFound
	}
	profile := s.profiles[owner]
	profile.ReferralCount++
	s.profiles[owner] = profile
	return nil
}
