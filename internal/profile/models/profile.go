package models

import "time"

// Status values for a profile lifecycle. Only StatusActive is assigned by the
// registration flow; the rest exist for operational tooling.
const (
	StatusActive  = "active"
	StatusBlocked = "blocked"
)

// Profile is the persisted record of one completed registration. All answer
// fields are immutable after commit; only ReferralCount and Status change
// afterwards.
type Profile struct {
	UserID        int64
	Username      string // telegram handle, informational only
	FullName      string
	Country       string
	Gender        string
	BirthYear     int
	PhoneNumber   string // E.164
	Email         string
	ReferralCode  string // 8 uppercase alphanumerics, globally unique
	InvitedBy     string // inviter's referral code, empty when organic
	RegisteredAt  time.Time
	ReferralCount int
	Status        string
}
