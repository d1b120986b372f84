package registration

import (
	"fmt"
	"strings"

	"regbot/internal/profile/models"
)

// User-facing texts for every step of the dialogue. Kept in one place so the
// machine logic stays free of copy.
const (
	msgPromptName = "Welcome! Let's get you registered.\n\n" +
		"What is your full name? Please enter at least three parts\n" +
		"(example: Ahmad Mohammed Ali)"

	msgNameTooShort = "Please enter your full name with at least three parts\n" +
		"(example: Ahmad Mohammed Ali)"

	msgNameTooLong = "That name is too long, the maximum is 50 characters.\n" +
		"Please shorten it and try again."

	msgPromptCountry = "Now choose your country from the list:"

	msgCountryNotListed = "Please choose a country from the list."

	msgPromptGender = "Now choose your gender:"

	msgGenderNotListed = "Please choose one of the offered options."

	msgPromptBirthYear = "What year were you born?\n" +
		"(enter a four-digit year, example: 1990)"

	msgBirthYearInvalid = "That birth year is not valid.\n" +
		"Please enter a year like 1990."

	msgPromptEmail = "Now enter your email address:\n" +
		"(example: yourname@example.com)"

	msgEmailInvalid = "That email address is not valid.\n" +
		"Please enter a valid address (example: user@example.com)"

	msgAlreadyRegistered = "Welcome back! You are already registered.\n\n" +
		"Available commands:\n" +
		"/profile - view your profile\n" +
		"/invite - view your referral code\n" +
		"/support - contact support"

	msgNoSession = "There is no registration in progress.\n" +
		"Use /start to begin."

	msgCancelled = "Registration cancelled.\n\n" +
		"You can start again with /start.\n" +
		"For questions, use /support."

	msgNothingToCancel = "There is nothing to cancel.\n" +
		"Use /start to begin registration."

	msgCommitFailed = "Something went wrong while saving your registration.\n" +
		"Your answers are kept - please resend your email address to retry."

	msgStoreTrouble = "Something went wrong on our side. Please try again in a moment."
)

func nameSaved(name string) string {
	return fmt.Sprintf("Name saved: %s\n\n%s", name, msgPromptCountry)
}

func countrySaved(country string) string {
	return fmt.Sprintf("Country saved: %s\n\n%s", country, msgPromptGender)
}

func genderSaved(gender string) string {
	return fmt.Sprintf("Registered as: %s\n\n%s", gender, msgPromptBirthYear)
}

func birthYearSaved(year int, dialingCode string) string {
	return fmt.Sprintf("Birth year saved: %d\n\n"+
		"Now, what is your phone number?\n"+
		"The dialing code %s is added automatically.\n"+
		"(enter digits only, example: 512345678)", year, dialingCode)
}

func phoneInvalid(cleaned string) string {
	return fmt.Sprintf("%s does not look like a valid phone number for your country.\n"+
		"(enter digits only, example: 512345678)", cleaned)
}

func phoneSaved(phone string) string {
	return fmt.Sprintf("Phone number saved: %s\n\n%s", phone, msgPromptEmail)
}

func summary(p *models.Profile) string {
	var b strings.Builder
	b.WriteString("Registration complete!\n\n")
	b.WriteString("Your details:\n")
	fmt.Fprintf(&b, "Name: %s\n", p.FullName)
	fmt.Fprintf(&b, "Gender: %s\n", p.Gender)
	fmt.Fprintf(&b, "Country: %s\n", p.Country)
	fmt.Fprintf(&b, "Birth year: %d\n", p.BirthYear)
	fmt.Fprintf(&b, "Phone: %s\n", p.PhoneNumber)
	fmt.Fprintf(&b, "Email: %s\n\n", p.Email)
	fmt.Fprintf(&b, "Your personal referral code: %s\n", p.ReferralCode)
	b.WriteString("Share it with your friends!\n\n")
	b.WriteString("Available commands:\n")
	b.WriteString("/profile - view your profile\n")
	b.WriteString("/invite - view your referral code and stats\n")
	b.WriteString("/support - contact support")
	return b.String()
}
