package notifier

import (
	"context"
	"fmt"
	"strconv"

	"PerpScan/internal/domain/models"
	drepo "PerpScan/internal/domain/repository"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Telegram sends alert pushes through the Telegram Bot API.
type Telegram struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

// NewTelegram creates a Telegram notifier.
func NewTelegram(botToken, chatID string) (drepo.Notifier, error) {
	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}

	id, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid chat ID: %w", err)
	}

	return &Telegram{bot: bot, chatID: id}, nil
}

// Send pushes one notification as an HTML message.
func (t *Telegram) Send(_ context.Context, n models.Notification) error {
	text := fmt.Sprintf(
		"<b>%s</b>\nscope: %s\nkind: %s\n%s: %s\n%s: %s\ntime: %s",
		n.Title, n.Scope, n.KindLabel,
		n.TargetLabel, n.TargetValue.String(),
		n.CurrentLabel, n.CurrentValue.String(),
		n.At.Format("2006-01-02 15:04:05"),
	)

	msg := tgbotapi.NewMessage(t.chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	if _, err := t.bot.Send(msg); err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	return nil
}
