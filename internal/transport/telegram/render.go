package telegram

import (
	"fmt"
	"strings"

	"regbot/internal/profile/models"
	"regbot/internal/profile/service"
)

const supportText = "Support\n\n" +
	"For questions and technical problems:\n" +
	"- write your message here and we will get back to you\n" +
	"- email: support@example.com\n\n" +
	"Working hours: Sunday - Thursday, 9:00 - 17:00\n\n" +
	"We can help with:\n" +
	"- registration problems\n" +
	"- reward questions\n" +
	"- anything else"

const notRegisteredText = "You are not registered yet.\nUse /start to begin."

func renderProfile(p *models.Profile) string {
	var b strings.Builder
	b.WriteString("Your profile\n\n")
	fmt.Fprintf(&b, "Referral code: %s\n", p.ReferralCode)
	fmt.Fprintf(&b, "Name: %s\n", p.FullName)
	fmt.Fprintf(&b, "Country: %s\n", p.Country)
	fmt.Fprintf(&b, "Gender: %s\n", p.Gender)
	fmt.Fprintf(&b, "Birth year: %d\n", p.BirthYear)
	fmt.Fprintf(&b, "Phone: %s\n", p.PhoneNumber)
	fmt.Fprintf(&b, "Email: %s\n", p.Email)
	fmt.Fprintf(&b, "People referred: %d\n", p.ReferralCount)
	fmt.Fprintf(&b, "Registered on: %s", p.RegisteredAt.Format("2006-01-02"))
	return b.String()
}

func renderInvite(stats service.Stats, botHandle string) string {
	var b strings.Builder
	b.WriteString("Invites and referrals\n\n")
	fmt.Fprintf(&b, "Your personal referral code: %s\n\n", stats.Code)
	fmt.Fprintf(&b, "People you have invited: %d\n\n", stats.Count)
	b.WriteString("Share this link with your friends:\n")
	fmt.Fprintf(&b, "https://t.me/%s?start=%s", botHandle, stats.Code)
	return b.String()
}
