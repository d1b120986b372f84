package registration

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"regbot/internal/audit"
	"regbot/internal/profile/models"
	profilestore "regbot/internal/profile/store"
	"regbot/internal/referral"
	"regbot/internal/registration/session"
	"regbot/pkg/platform/sentinel"
)

var fixedNow = time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

// failingProfileStore simulates an unreachable store during commit.
type failingProfileStore struct {
	*profilestore.InMemoryStore
	failCreate bool
}

func (s *failingProfileStore) Create(ctx context.Context, p *models.Profile) error {
	if s.failCreate {
		return errors.New("store unreachable")
	}
	return s.InMemoryStore.Create(ctx, p)
}

// recordingAuditor captures emitted lifecycle events.
type recordingAuditor struct {
	events []audit.EventType
}

func (a *recordingAuditor) Emit(_ int64, eventType audit.EventType) {
	a.events = append(a.events, eventType)
}

type MachineSuite struct {
	suite.Suite
	profiles *profilestore.InMemoryStore
	sessions *session.InMemoryStore
	auditor  *recordingAuditor
	machine  *Machine
}

func (s *MachineSuite) SetupTest() {
	s.profiles = profilestore.NewInMemory()
	s.sessions = session.NewInMemory()
	s.auditor = &recordingAuditor{}
	s.machine = New(s.sessions, s.profiles, referral.NewGenerator(s.profiles),
		WithClock(func() time.Time { return fixedNow }),
		WithAuditor(s.auditor),
	)
}

func TestMachineSuite(t *testing.T) {
	suite.Run(t, new(MachineSuite))
}

// walk drives a user through the six valid answers up to (not including)
// the email step.
func (s *MachineSuite) walkToEmail(userID int64) {
	ctx := context.Background()
	_, err := s.machine.Start(ctx, userID, "jdoe", "")
	s.Require().NoError(err)

	for _, answer := range []string{"Jane Marie Doe", "Jordan", "Female", "1990", "791234567"} {
		_, err := s.machine.Input(ctx, userID, answer)
		s.Require().NoError(err)
	}
}

func (s *MachineSuite) TestHappyPathWalksAllStates() {
	ctx := context.Background()

	reply, err := s.machine.Start(ctx, 100, "jdoe", "")
	s.Require().NoError(err)
	s.Contains(reply.Text, "full name")

	sess, err := s.sessions.Find(ctx, 100)
	s.Require().NoError(err)
	s.Equal(session.StateAwaitName, sess.State)

	steps := []struct {
		answer string
		state  session.State
	}{
		{"Jane Marie Doe", session.StateAwaitCountry},
		{"Jordan", session.StateAwaitGender},
		{"Female", session.StateAwaitBirthYear},
		{"1990", session.StateAwaitPhone},
		{"791234567", session.StateAwaitEmail},
	}
	for _, step := range steps {
		_, err := s.machine.Input(ctx, 100, step.answer)
		s.Require().NoError(err)
		sess, err := s.sessions.Find(ctx, 100)
		s.Require().NoError(err)
		s.Equal(step.state, sess.State)
	}

	reply, err = s.machine.Input(ctx, 100, "jane.doe@example.com")
	s.Require().NoError(err)
	s.Contains(reply.Text, "Registration complete")

	// Profile row holds exactly the submitted values plus a fresh code.
	profile, err := s.profiles.FindByUserID(ctx, 100)
	s.Require().NoError(err)
	s.Equal("Jane Marie Doe", profile.FullName)
	s.Equal("Jordan", profile.Country)
	s.Equal("Female", profile.Gender)
	s.Equal(1990, profile.BirthYear)
	s.Equal("+962791234567", profile.PhoneNumber)
	s.Equal("jane.doe@example.com", profile.Email)
	s.Regexp(`^[A-Z0-9]{8}$`, profile.ReferralCode)
	s.Equal(fixedNow, profile.RegisteredAt)
	s.Equal(models.StatusActive, profile.Status)
	s.Empty(profile.InvitedBy)

	// Session is gone after commit.
	_, err = s.sessions.Find(ctx, 100)
	s.Require().ErrorIs(err, sentinel.ErrNotFound)

	s.Equal([]audit.EventType{
		audit.EventRegistrationStarted,
		audit.EventRegistrationCompleted,
	}, s.auditor.events)
}

func (s *MachineSuite) TestStartIsIdempotentAfterCompletion() {
	ctx := context.Background()
	s.walkToEmail(100)
	_, err := s.machine.Input(ctx, 100, "jane.doe@example.com")
	s.Require().NoError(err)

	first, err := s.profiles.FindByUserID(ctx, 100)
	s.Require().NoError(err)

	reply, err := s.machine.Start(ctx, 100, "jdoe", "")
	s.Require().NoError(err)
	s.Contains(reply.Text, "already registered")

	// No new session, no second row, same code.
	_, err = s.sessions.Find(ctx, 100)
	s.Require().ErrorIs(err, sentinel.ErrNotFound)

	again, err := s.profiles.FindByUserID(ctx, 100)
	s.Require().NoError(err)
	s.Equal(first.ReferralCode, again.ReferralCode)
}

func (s *MachineSuite) TestValidationFailuresKeepState() {
	ctx := context.Background()

	tests := []struct {
		walkTo  int // answers to feed before the bad one
		bad     string
		state   session.State
		wantMsg string
	}{
		{0, "Jane Doe", session.StateAwaitName, "three parts"},
		{1, "Atlantis", session.StateAwaitCountry, "from the list"},
		{2, "Other", session.StateAwaitGender, "offered options"},
		{3, "1919", session.StateAwaitBirthYear, "not valid"},
		{3, "2014", session.StateAwaitBirthYear, "not valid"},
		{3, "abcd", session.StateAwaitBirthYear, "not valid"},
		{4, "12", session.StateAwaitPhone, "valid phone"},
		{5, "user@example", session.StateAwaitEmail, "not valid"},
	}
	answers := []string{"Jane Marie Doe", "Jordan", "Female", "1990", "791234567"}

	for _, tt := range tests {
		s.Run(tt.bad, func() {
			s.SetupTest()
			_, err := s.machine.Start(ctx, 200, "jdoe", "")
			s.Require().NoError(err)
			for i := 0; i < tt.walkTo; i++ {
				_, err := s.machine.Input(ctx, 200, answers[i])
				s.Require().NoError(err)
			}

			reply, err := s.machine.Input(ctx, 200, tt.bad)
			s.Require().NoError(err)
			s.Contains(reply.Text, tt.wantMsg)

			sess, err := s.sessions.Find(ctx, 200)
			s.Require().NoError(err)
			s.Equal(tt.state, sess.State, "rejected input must not advance state")
		})
	}
}

func (s *MachineSuite) TestCountryDerivesDialingCode() {
	ctx := context.Background()
	_, err := s.machine.Start(ctx, 300, "jdoe", "")
	s.Require().NoError(err)
	_, err = s.machine.Input(ctx, 300, "Jane Marie Doe")
	s.Require().NoError(err)
	_, err = s.machine.Input(ctx, 300, "Saudi Arabia")
	s.Require().NoError(err)

	sess, err := s.sessions.Find(ctx, 300)
	s.Require().NoError(err)
	s.Equal("+966", sess.DialingCode)
}

func (s *MachineSuite) TestPhoneKeepsAlreadyPrefixedNumber() {
	ctx := context.Background()
	_, err := s.machine.Start(ctx, 300, "jdoe", "")
	s.Require().NoError(err)
	for _, answer := range []string{"Jane Marie Doe", "Saudi Arabia", "Female", "1990"} {
		_, err := s.machine.Input(ctx, 300, answer)
		s.Require().NoError(err)
	}

	_, err = s.machine.Input(ctx, 300, "+962791234567")
	s.Require().NoError(err)

	sess, err := s.sessions.Find(ctx, 300)
	s.Require().NoError(err)
	s.Equal("+962791234567", sess.PhoneNumber, "dialing code must not be re-applied")
}

func (s *MachineSuite) TestCancelDiscardsSession() {
	ctx := context.Background()
	_, err := s.machine.Start(ctx, 400, "jdoe", "")
	s.Require().NoError(err)
	_, err = s.machine.Input(ctx, 400, "Jane Marie Doe")
	s.Require().NoError(err)

	reply, err := s.machine.Cancel(ctx, 400)
	s.Require().NoError(err)
	s.Contains(reply.Text, "cancelled")

	_, err = s.sessions.Find(ctx, 400)
	s.Require().ErrorIs(err, sentinel.ErrNotFound)

	// Restart begins from the name step with no leaked answers.
	_, err = s.machine.Start(ctx, 400, "jdoe", "")
	s.Require().NoError(err)
	sess, err := s.sessions.Find(ctx, 400)
	s.Require().NoError(err)
	s.Equal(session.StateAwaitName, sess.State)
	s.Empty(sess.FullName)
	s.Empty(sess.Country)

	s.Contains(s.auditor.events, audit.EventRegistrationCancelled)
}

func (s *MachineSuite) TestCancelWithoutSession() {
	reply, err := s.machine.Cancel(context.Background(), 999)
	s.Require().NoError(err)
	s.Contains(reply.Text, "nothing to cancel")
}

func (s *MachineSuite) TestInputWithoutSession() {
	reply, err := s.machine.Input(context.Background(), 999, "hello")
	s.Require().NoError(err)
	s.Contains(reply.Text, "/start")
}

func (s *MachineSuite) TestCommitFailureLeavesSessionAtEmailStep() {
	ctx := context.Background()
	failing := &failingProfileStore{InMemoryStore: s.profiles, failCreate: true}
	machine := New(s.sessions, failing, referral.NewGenerator(s.profiles),
		WithClock(func() time.Time { return fixedNow }),
	)

	_, err := machine.Start(ctx, 500, "jdoe", "")
	s.Require().NoError(err)
	for _, answer := range []string{"Jane Marie Doe", "Jordan", "Female", "1990", "791234567"} {
		_, err := machine.Input(ctx, 500, answer)
		s.Require().NoError(err)
	}

	reply, err := machine.Input(ctx, 500, "jane.doe@example.com")
	s.Require().Error(err)
	s.Contains(reply.Text, "resend your email")

	// No partial row, session still at the email step.
	exists, lookupErr := s.profiles.Exists(ctx, 500)
	s.Require().NoError(lookupErr)
	s.False(exists)
	sess, lookupErr := s.sessions.Find(ctx, 500)
	s.Require().NoError(lookupErr)
	s.Equal(session.StateAwaitEmail, sess.State)

	// Resubmitting the email after recovery commits.
	failing.failCreate = false
	reply, err = machine.Input(ctx, 500, "jane.doe@example.com")
	s.Require().NoError(err)
	s.Contains(reply.Text, "Registration complete")
}

func (s *MachineSuite) TestInviteDeepLinkWiresInvitedBy() {
	ctx := context.Background()

	// Inviter registers first.
	s.walkToEmail(600)
	_, err := s.machine.Input(ctx, 600, "inviter@example.com")
	s.Require().NoError(err)
	inviterCode, _, err := s.profiles.ReferralStats(ctx, 600)
	s.Require().NoError(err)

	// Invitee arrives through the deep link.
	_, err = s.machine.Start(ctx, 700, "invitee", inviterCode)
	s.Require().NoError(err)
	for _, answer := range []string{"John Paul Smith", "Jordan", "Male", "1995", "790000001"} {
		_, err := s.machine.Input(ctx, 700, answer)
		s.Require().NoError(err)
	}
	_, err = s.machine.Input(ctx, 700, "john.smith@example.com")
	s.Require().NoError(err)

	invitee, err := s.profiles.FindByUserID(ctx, 700)
	s.Require().NoError(err)
	s.Equal(inviterCode, invitee.InvitedBy)

	_, count, err := s.profiles.ReferralStats(ctx, 600)
	s.Require().NoError(err)
	s.Equal(1, count, "inviter counter incremented exactly once")
}

func (s *MachineSuite) TestUnknownInviteCodeIgnored() {
	ctx := context.Background()
	_, err := s.machine.Start(ctx, 800, "jdoe", "NOSUCH01")
	s.Require().NoError(err)

	sess, err := s.sessions.Find(ctx, 800)
	s.Require().NoError(err)
	s.Empty(sess.InvitedBy)
}

func (s *MachineSuite) TestKeyboardsOfferedAndRemoved() {
	ctx := context.Background()
	_, err := s.machine.Start(ctx, 900, "jdoe", "")
	s.Require().NoError(err)

	reply, err := s.machine.Input(ctx, 900, "Jane Marie Doe")
	s.Require().NoError(err)
	s.NotEmpty(reply.Keyboard, "country step offers a choice keyboard")

	reply, err = s.machine.Input(ctx, 900, "Jordan")
	s.Require().NoError(err)
	s.Equal([][]string{{"Male", "Female"}}, reply.Keyboard)

	reply, err = s.machine.Input(ctx, 900, "Female")
	s.Require().NoError(err)
	s.True(reply.RemoveKeyboard, "keyboard removed after the last choice step")
}
