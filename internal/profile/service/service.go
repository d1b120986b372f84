package service

import (
	"context"
	"fmt"

	"regbot/internal/profile/models"
)

// Store is the read surface the service needs from the profile store.
type Store interface {
	FindByUserID(ctx context.Context, userID int64) (*models.Profile, error)
	ReferralStats(ctx context.Context, userID int64) (string, int, error)
}

// Stats carries a user's referral code and counter for the invite view.
type Stats struct {
	Code  string
	Count int
}

// Service serves the read-only profile and invite surfaces. Point lookups
// only; writes happen exclusively through the registration flow.
type Service struct {
	store Store
}

func New(store Store) *Service {
	return &Service{store: store}
}

// Profile returns the stored profile, or sentinel.ErrNotFound (wrapped) when
// the user never completed registration.
func (s *Service) Profile(ctx context.Context, userID int64) (*models.Profile, error) {
	profile, err := s.store.FindByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	return profile, nil
}

// ReferralStats returns the user's referral code and how many registrants it
// has attributed so far.
func (s *Service) ReferralStats(ctx context.Context, userID int64) (Stats, error) {
	code, count, err := s.store.ReferralStats(ctx, userID)
	if err != nil {
		return Stats{}, fmt.Errorf("load referral stats: %w", err)
	}
	return Stats{Code: code, Count: count}, nil
}
