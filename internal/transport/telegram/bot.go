// Package telegram is the thin chat transport over the registration core:
// command routing, keyboards, and message delivery. No business logic lives
// here.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"regbot/internal/profile/service"
	"regbot/internal/registration"
	"regbot/pkg/platform/sentinel"
)

// Bot runs the long-polling update loop and delegates to the registration
// machine and profile service.
type Bot struct {
	api      *tgbotapi.BotAPI
	machine  *registration.Machine
	profiles *service.Service
	logger   *slog.Logger
}

func New(token string, machine *registration.Machine, profiles *service.Service, logger *slog.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("connect to telegram: %w", err)
	}
	return &Bot{
		api:      api,
		machine:  machine,
		profiles: profiles,
		logger:   logger,
	}, nil
}

// Handle returns the bot's public username, used for referral deep links.
func (b *Bot) Handle() string {
	return b.api.Self.UserName
}

// Run polls for updates until the context is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = 30
	updates := b.api.GetUpdatesChan(cfg)

	b.logger.Info("bot started", "username", b.Handle())

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return ctx.Err()
		case update := <-updates:
			b.handleUpdate(ctx, update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	msg := update.Message
	if msg == nil || msg.From == nil {
		return
	}

	userID := msg.From.ID
	var reply registration.Reply
	var err error

	if msg.IsCommand() {
		switch msg.Command() {
		case "start":
			reply, err = b.machine.Start(ctx, userID, msg.From.UserName, msg.CommandArguments())
		case "cancel":
			reply, err = b.machine.Cancel(ctx, userID)
		case "profile":
			reply, err = b.profileView(ctx, userID)
		case "invite":
			reply, err = b.inviteView(ctx, userID)
		case "support":
			reply = registration.Reply{Text: supportText}
		default:
			return
		}
	} else {
		reply, err = b.machine.Input(ctx, userID, msg.Text)
	}

	if err != nil {
		// The reply already carries the user-facing failure text; the cause
		// was logged where it happened.
		b.logger.Debug("update handled with error", "user_id", userID, "error", err)
	}
	b.send(msg.Chat.ID, reply)
}

func (b *Bot) profileView(ctx context.Context, userID int64) (registration.Reply, error) {
	profile, err := b.profiles.Profile(ctx, userID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return registration.Reply{Text: notRegisteredText}, nil
	}
	if err != nil {
		b.logger.Error("load profile", "user_id", userID, "error", err)
		return registration.Reply{Text: "Could not load your profile. Please try again in a moment."}, err
	}
	return registration.Reply{Text: renderProfile(profile)}, nil
}

func (b *Bot) inviteView(ctx context.Context, userID int64) (registration.Reply, error) {
	stats, err := b.profiles.ReferralStats(ctx, userID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return registration.Reply{Text: notRegisteredText}, nil
	}
	if err != nil {
		b.logger.Error("load referral stats", "user_id", userID, "error", err)
		return registration.Reply{Text: "Could not load your invite stats. Please try again in a moment."}, err
	}
	return registration.Reply{Text: renderInvite(stats, b.Handle())}, nil
}

func (b *Bot) send(chatID int64, reply registration.Reply) {
	if reply.Text == "" {
		return
	}
	msg := tgbotapi.NewMessage(chatID, reply.Text)

	switch {
	case len(reply.Keyboard) > 0:
		rows := make([][]tgbotapi.KeyboardButton, 0, len(reply.Keyboard))
		for _, row := range reply.Keyboard {
			buttons := make([]tgbotapi.KeyboardButton, 0, len(row))
			for _, label := range row {
				buttons = append(buttons, tgbotapi.NewKeyboardButton(label))
			}
			rows = append(rows, buttons)
		}
		keyboard := tgbotapi.NewReplyKeyboard(rows...)
		keyboard.OneTimeKeyboard = true
		msg.ReplyMarkup = keyboard
	case reply.RemoveKeyboard:
		msg.ReplyMarkup = tgbotapi.NewRemoveKeyboard(true)
	}

	if _, err := b.api.Send(msg); err != nil {
		b.logger.Error("send message", "chat_id", chatID, "error", err)
	}
}
