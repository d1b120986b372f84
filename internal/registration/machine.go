// Package registration drives the six-step registration dialogue: it holds
// the per-user conversation state, applies one validator per step, and
// commits a profile row with a fresh referral code on the final step.
package registration

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"regbot/internal/audit"
	"regbot/internal/platform/metrics"
	"regbot/internal/profile/models"
	profilestore "regbot/internal/profile/store"
	"regbot/internal/registration/session"
	"regbot/internal/registration/validate"
	"regbot/pkg/platform/sentinel"
)

// maxCommitAttempts bounds how often a commit is retried when the storage
// unique constraint rejects the generated referral code. The generator's
// pre-check makes this path rare.
const maxCommitAttempts = 3

// ProfileStore is the surface the machine needs from the profile store.
type ProfileStore interface {
	Create(ctx context.Context, profile *models.Profile) error
	FindByUserID(ctx context.Context, userID int64) (*models.Profile, error)
	CodeInUse(ctx context.Context, code string) (bool, error)
	IncrementReferralCount(ctx context.Context, code string) error
}

// CodeGenerator mints unused referral codes.
type CodeGenerator interface {
	Generate(ctx context.Context) (string, error)
}

// Auditor records registration lifecycle events without blocking the flow.
type Auditor interface {
	Emit(userID int64, eventType audit.EventType)
}

// Reply is what the machine wants said back to the user. The transport turns
// it into a message with an optional one-time choice keyboard.
type Reply struct {
	Text           string
	Keyboard       [][]string
	RemoveKeyboard bool
}

// Machine is the registration state machine. All per-user state lives in the
// session store; the machine itself is safe for concurrent use across users.
type Machine struct {
	sessions  session.Store
	profiles  ProfileStore
	codes     CodeGenerator
	countries *CountryTable
	genders   []string
	clock     func() time.Time
	logger    *slog.Logger
	metrics   *metrics.Metrics
	auditor   Auditor
}

// Option configures a Machine.
type Option func(*Machine)

// WithCountries overrides the selectable country table.
func WithCountries(t *CountryTable) Option {
	return func(m *Machine) { m.countries = t }
}

// WithGenders overrides the accepted gender literals.
func WithGenders(genders []string) Option {
	return func(m *Machine) { m.genders = genders }
}

// WithClock sets the clock function for testability.
func WithClock(clock func() time.Time) Option {
	return func(m *Machine) {
		if clock != nil {
			m.clock = clock
		}
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Machine) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithMetrics wires prometheus counters.
func WithMetrics(mx *metrics.Metrics) Option {
	return func(m *Machine) { m.metrics = mx }
}

// WithAuditor wires the audit publisher.
func WithAuditor(a Auditor) Option {
	return func(m *Machine) { m.auditor = a }
}

func New(sessions session.Store, profiles ProfileStore, codes CodeGenerator, opts ...Option) *Machine {
	m := &Machine{
		sessions:  sessions,
		profiles:  profiles,
		codes:     codes,
		countries: NewCountryTable(DefaultCountries()),
		genders:   DefaultGenders(),
		clock:     time.Now,
		logger:    slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}
	return m
}

// Start begins a registration. For an already registered user it
// short-circuits to the existing-profile greeting; registering twice is not
// supported. A non-empty payload is treated as an inviter's referral code
// and recorded when it belongs to a registered user.
func (m *Machine) Start(ctx context.Context, userID int64, username, payload string) (Reply, error) {
	_, err := m.profiles.FindByUserID(ctx, userID)
	if err == nil {
		return Reply{Text: msgAlreadyRegistered, RemoveKeyboard: true}, nil
	}
	if !errors.Is(err, sentinel.ErrNotFound) {
		m.logger.Error("check existing profile", "user_id", userID, "error", err)
		return Reply{Text: msgStoreTrouble}, err
	}

	invitedBy := strings.ToUpper(strings.TrimSpace(payload))
	if invitedBy != "" {
		inUse, err := m.profiles.CodeInUse(ctx, invitedBy)
		if err != nil || !inUse {
			// Unknown or unverifiable inviter codes are dropped silently.
			invitedBy = ""
		}
	}

	sess := &session.Session{
		UserID:    userID,
		Username:  username,
		State:     session.StateAwaitName,
		InvitedBy: invitedBy,
		StartedAt: m.clock(),
	}
	if err := m.sessions.Save(ctx, sess); err != nil {
		m.logger.Error("save session", "user_id", userID, "error", err)
		return Reply{Text: msgStoreTrouble}, err
	}

	m.audit(userID, audit.EventRegistrationStarted)
	return Reply{Text: msgPromptName, RemoveKeyboard: true}, nil
}

// Input feeds one free-text answer into the user's current step. A rejected
// answer re-prompts the same step; the session's prior answers are untouched.
func (m *Machine) Input(ctx context.Context, userID int64, text string) (Reply, error) {
	sess, err := m.sessions.Find(ctx, userID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return Reply{Text: msgNoSession}, nil
	}
	if err != nil {
		m.logger.Error("find session", "user_id", userID, "error", err)
		return Reply{Text: msgStoreTrouble}, err
	}

	switch sess.State {
	case session.StateAwaitName:
		return m.handleName(ctx, sess, text)
	case session.StateAwaitCountry:
		return m.handleCountry(ctx, sess, text)
	case session.StateAwaitGender:
		return m.handleGender(ctx, sess, text)
	case session.StateAwaitBirthYear:
		return m.handleBirthYear(ctx, sess, text)
	case session.StateAwaitPhone:
		return m.handlePhone(ctx, sess, text)
	case session.StateAwaitEmail:
		return m.handleEmail(ctx, sess, text)
	default:
		m.logger.Warn("session in unknown state", "user_id", userID, "state", string(sess.State))
		return Reply{Text: msgNoSession}, nil
	}
}

// Cancel discards the user's session without persisting anything. Accepted
// in every state; after commit there is no session left to cancel.
func (m *Machine) Cancel(ctx context.Context, userID int64) (Reply, error) {
	_, err := m.sessions.Find(ctx, userID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return Reply{Text: msgNothingToCancel}, nil
	}
	if err != nil {
		m.logger.Error("find session", "user_id", userID, "error", err)
		return Reply{Text: msgStoreTrouble}, err
	}

	if err := m.sessions.Delete(ctx, userID); err != nil {
		m.logger.Error("delete session", "user_id", userID, "error", err)
		return Reply{Text: msgStoreTrouble}, err
	}

	m.metrics.RecordCancelled()
	m.audit(userID, audit.EventRegistrationCancelled)
	return Reply{Text: msgCancelled, RemoveKeyboard: true}, nil
}

func (m *Machine) handleName(ctx context.Context, sess *session.Session, text string) (Reply, error) {
	name, err := validate.FullName(text)
	if err != nil {
		m.metrics.RecordValidationFailure("name")
		if errors.Is(err, validate.ErrNameTooLong) {
			return Reply{Text: msgNameTooLong}, nil
		}
		return Reply{Text: msgNameTooShort}, nil
	}

	sess.FullName = name
	sess.State = session.StateAwaitCountry
	if err := m.saveSession(ctx, sess); err != nil {
		return Reply{Text: msgStoreTrouble}, err
	}
	return Reply{Text: nameSaved(name), Keyboard: m.countries.KeyboardRows(2)}, nil
}

func (m *Machine) handleCountry(ctx context.Context, sess *session.Session, text string) (Reply, error) {
	country := strings.TrimSpace(text)
	dialingCode, ok := m.countries.DialingCode(country)
	if !ok {
		m.metrics.RecordValidationFailure("country")
		return Reply{Text: msgCountryNotListed, Keyboard: m.countries.KeyboardRows(2)}, nil
	}

	sess.Country = country
	sess.DialingCode = dialingCode
	sess.State = session.StateAwaitGender
	if err := m.saveSession(ctx, sess); err != nil {
		return Reply{Text: msgStoreTrouble}, err
	}
	return Reply{Text: countrySaved(country), Keyboard: [][]string{m.genders}}, nil
}

func (m *Machine) handleGender(ctx context.Context, sess *session.Session, text string) (Reply, error) {
	gender := strings.TrimSpace(text)
	valid := false
	for _, option := range m.genders {
		if gender == option {
			valid = true
			break
		}
	}
	if !valid {
		m.metrics.RecordValidationFailure("gender")
		return Reply{Text: msgGenderNotListed, Keyboard: [][]string{m.genders}}, nil
	}

	sess.Gender = gender
	sess.State = session.StateAwaitBirthYear
	if err := m.saveSession(ctx, sess); err != nil {
		return Reply{Text: msgStoreTrouble}, err
	}
	return Reply{Text: genderSaved(gender), RemoveKeyboard: true}, nil
}

func (m *Machine) handleBirthYear(ctx context.Context, sess *session.Session, text string) (Reply, error) {
	year, err := validate.BirthYear(text, m.clock())
	if err != nil {
		m.metrics.RecordValidationFailure("birth_year")
		return Reply{Text: msgBirthYearInvalid}, nil
	}

	sess.BirthYear = year
	sess.State = session.StateAwaitPhone
	if err := m.saveSession(ctx, sess); err != nil {
		return Reply{Text: msgStoreTrouble}, err
	}
	return Reply{Text: birthYearSaved(year, sess.DialingCode)}, nil
}

func (m *Machine) handlePhone(ctx context.Context, sess *session.Session, text string) (Reply, error) {
	phone, err := validate.Phone(text, sess.DialingCode)
	if err != nil {
		m.metrics.RecordValidationFailure("phone")
		return Reply{Text: phoneInvalid(phone)}, nil
	}

	sess.PhoneNumber = phone
	sess.State = session.StateAwaitEmail
	if err := m.saveSession(ctx, sess); err != nil {
		return Reply{Text: msgStoreTrouble}, err
	}
	return Reply{Text: phoneSaved(phone)}, nil
}

func (m *Machine) handleEmail(ctx context.Context, sess *session.Session, text string) (Reply, error) {
	email, err := validate.Email(text)
	if err != nil {
		m.metrics.RecordValidationFailure("email")
		return Reply{Text: msgEmailInvalid}, nil
	}
	return m.commit(ctx, sess, email)
}

// commit mints a referral code and inserts the profile row. The session is
// only deleted after a successful insert, so any persistence failure leaves
// the user at the email step where resubmitting retries the commit.
func (m *Machine) commit(ctx context.Context, sess *session.Session, email string) (Reply, error) {
	for attempt := 0; attempt < maxCommitAttempts; attempt++ {
		code, err := m.codes.Generate(ctx)
		if err != nil {
			m.logger.Error("generate referral code", "user_id", sess.UserID, "error", err)
			return Reply{Text: msgCommitFailed}, err
		}

		profile := &models.Profile{
			UserID:       sess.UserID,
			Username:     sess.Username,
			FullName:     sess.FullName,
			Country:      sess.Country,
			Gender:       sess.Gender,
			BirthYear:    sess.BirthYear,
			PhoneNumber:  sess.PhoneNumber,
			Email:        email,
			ReferralCode: code,
			InvitedBy:    sess.InvitedBy,
			RegisteredAt: m.clock(),
			Status:       models.StatusActive,
		}

		err = m.profiles.Create(ctx, profile)
		if errors.Is(err, profilestore.ErrDuplicateCode) {
			// The constraint is the authoritative guard; the pre-check lost a
			// race. Try again with a fresh code.
			m.metrics.RecordCodeRetry()
			continue
		}
		if errors.Is(err, profilestore.ErrDuplicateUser) {
			if delErr := m.sessions.Delete(ctx, sess.UserID); delErr != nil {
				m.logger.Warn("delete session", "user_id", sess.UserID, "error", delErr)
			}
			return Reply{Text: msgAlreadyRegistered, RemoveKeyboard: true}, nil
		}
		if err != nil {
			m.logger.Error("insert profile", "user_id", sess.UserID, "error", err)
			return Reply{Text: msgCommitFailed}, err
		}

		if sess.InvitedBy != "" {
			// Best effort; the registrant's commit must not fail on this.
			if err := m.profiles.IncrementReferralCount(ctx, sess.InvitedBy); err != nil {
				m.logger.Warn("increment inviter counter",
					"user_id", sess.UserID, "inviter_code", sess.InvitedBy, "error", err)
			}
		}

		if err := m.sessions.Delete(ctx, sess.UserID); err != nil {
			m.logger.Warn("delete session", "user_id", sess.UserID, "error", err)
		}

		m.metrics.RecordCompleted()
		m.audit(sess.UserID, audit.EventRegistrationCompleted)
		return Reply{Text: summary(profile), RemoveKeyboard: true}, nil
	}

	m.logger.Error("referral code collisions exhausted commit attempts", "user_id", sess.UserID)
	return Reply{Text: msgCommitFailed}, profilestore.ErrDuplicateCode
}

func (m *Machine) saveSession(ctx context.Context, sess *session.Session) error {
	if err := m.sessions.Save(ctx, sess); err != nil {
		m.logger.Error("save session", "user_id", sess.UserID, "error", err)
		return err
	}
	return nil
}

func (m *Machine) audit(userID int64, eventType audit.EventType) {
	if m.auditor != nil {
		m.auditor.Emit(userID, eventType)
	}
}
