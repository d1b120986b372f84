// Package validate holds the pure input validators for the registration
// flow. Each validator is a function of (raw input, context) to (normalized
// value, error) with no side effects, so the state machine and tests can use
// them independently of any transport or store.
package validate

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/nyaruka/phonenumbers"
)

const (
	minNameParts  = 3
	maxNameLength = 50
	minBirthYear  = 1920
	minAge        = 13
)

var (
	ErrNameTooShort   = errors.New("full name needs at least three parts")
	ErrNameTooLong    = errors.New("full name longer than 50 characters")
	ErrYearNotANumber = errors.New("birth year is not a number")
	ErrYearOutOfRange = errors.New("birth year out of range")
	ErrEmailInvalid   = errors.New("email address is invalid")
	ErrPhoneInvalid   = errors.New("phone number is invalid")
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

var phoneStrip = strings.NewReplacer(" ", "", "-", "", "(", "", ")", "")

// FullName accepts names with at least three space-separated parts and at
// most 50 characters, returning the trimmed name.
func FullName(raw string) (string, error) {
	name := strings.TrimSpace(raw)
	if len(strings.Fields(name)) < minNameParts {
		return "", ErrNameTooShort
	}
	if utf8.RuneCountInString(name) > maxNameLength {
		return "", ErrNameTooLong
	}
	return name, nil
}

// BirthYear accepts integer years in [1920, currentYear-13]. The reference
// time is a parameter so the boundary is testable.
func BirthYear(raw string, now time.Time) (int, error) {
	year, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, ErrYearNotANumber
	}
	if year < minBirthYear || year > now.Year()-minAge {
		return 0, ErrYearOutOfRange
	}
	return year, nil
}

// Email accepts addresses matching the registration email pattern and
// returns the trimmed address.
func Email(raw string) (string, error) {
	email := strings.TrimSpace(raw)
	if !emailPattern.MatchString(email) {
		return "", ErrEmailInvalid
	}
	return email, nil
}

// Phone strips separators, prepends the dialing code when the input carries
// no +-prefix, and validates the result as an international number. On
// success it returns the canonical E.164 form; on failure it returns the
// best-effort cleaned string alongside the error, for display.
func Phone(raw, dialingCode string) (string, error) {
	cleaned := phoneStrip.Replace(strings.TrimSpace(raw))
	if !strings.HasPrefix(cleaned, "+") {
		cleaned = dialingCode + cleaned
	}

	parsed, err := phonenumbers.Parse(cleaned, "")
	if err != nil {
		return cleaned, ErrPhoneInvalid
	}
	if !phonenumbers.IsValidNumber(parsed) {
		return cleaned, ErrPhoneInvalid
	}
	return phonenumbers.Format(parsed, phonenumbers.E164), nil
}
