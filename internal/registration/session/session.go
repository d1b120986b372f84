package session

import "time"

// State is the current stage of an in-progress registration. DONE and
// CANCELLED are terminal and never stored; the session is deleted instead.
type State string

const (
	StateAwaitName      State = "await_name"
	StateAwaitCountry   State = "await_country"
	StateAwaitGender    State = "await_gender"
	StateAwaitBirthYear State = "await_birth_year"
	StateAwaitPhone     State = "await_phone"
	StateAwaitEmail     State = "await_email"
)

// Session is the transient per-user answer set. It exists only between the
// first /start and commit or cancellation, and never reaches the profile
// store.
type Session struct {
	UserID      int64     `json:"user_id"`
	Username    string    `json:"username"`
	State       State     `json:"state"`
	InvitedBy   string    `json:"invited_by,omitempty"`
	FullName    string    `json:"full_name,omitempty"`
	Country     string    `json:"country,omitempty"`
	DialingCode string    `json:"dialing_code,omitempty"`
	Gender      string    `json:"gender,omitempty"`
	BirthYear   int       `json:"birth_year,omitempty"`
	PhoneNumber string    `json:"phone_number,omitempty"`
	StartedAt   time.Time `json:"started_at"`
}
