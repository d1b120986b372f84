package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"regbot/pkg/platform/sentinel"
)

type InMemoryStoreSuite struct {
	suite.Suite
	store *InMemoryStore
}

func (s *InMemoryStoreSuite) SetupTest() {
	s.store = NewInMemory()
}

func TestInMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryStoreSuite))
}

func (s *InMemoryStoreSuite) TestLifecycle() {
	ctx := context.Background()
	sess := &Session{
		UserID:    100,
		Username:  "jdoe",
		State:     StateAwaitName,
		StartedAt: time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC),
	}

	s.Run("find before save returns ErrNotFound", func() {
		_, err := s.store.Find(ctx, 100)
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("save then find round-trips", func() {
		s.Require().NoError(s.store.Save(ctx, sess))
		found, err := s.store.Find(ctx, 100)
		s.Require().NoError(err)
		s.Equal(sess, found)
	})

	s.Run("save overwrites prior state", func() {
		sess.State = StateAwaitCountry
		sess.FullName = "Jane Marie Doe"
		s.Require().NoError(s.store.Save(ctx, sess))

		found, err := s.store.Find(ctx, 100)
		s.Require().NoError(err)
		s.Equal(StateAwaitCountry, found.State)
		s.Equal("Jane Marie Doe", found.FullName)
	})

	s.Run("delete removes the session", func() {
		s.Require().NoError(s.store.Delete(ctx, 100))
		_, err := s.store.Find(ctx, 100)
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("delete of absent session is a no-op", func() {
		s.Require().NoError(s.store.Delete(ctx, 404))
	})
}

func (s *InMemoryStoreSuite) TestSessionsAreIsolatedPerUser() {
	ctx := context.Background()
	s.Require().NoError(s.store.Save(ctx, &Session{UserID: 1, State: StateAwaitName}))
	s.Require().NoError(s.store.Save(ctx, &Session{UserID: 2, State: StateAwaitPhone}))

	one, err := s.store.Find(ctx, 1)
	s.Require().NoError(err)
	two, err := s.store.Find(ctx, 2)
	s.Require().NoError(err)

	s.Equal(StateAwaitName, one.State)
	s.Equal(StateAwaitPhone, two.State)
}

func (s *InMemoryStoreSuite) TestFindReturnsCopy() {
	ctx := context.Background()
	s.Require().NoError(s.store.Save(ctx, &Session{UserID: 1, State: StateAwaitName}))

	found, err := s.store.Find(ctx, 1)
	s.Require().NoError(err)
	found.State = StateAwaitEmail

	again, err := s.store.Find(ctx, 1)
	s.Require().NoError(err)
	s.Equal(StateAwaitName, again.State)
}
