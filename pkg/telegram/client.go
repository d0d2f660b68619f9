package telegram

import (
	"context"
	"errors"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Notifier delivers account events to administrators.
type Notifier interface {
	NotifyAccountEvent(ctx context.Context, ev AccountEvent) error
}

// sender is the subset of *tgbotapi.BotAPI the client uses.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type client struct {
	bot    sender
	chatID int64
}

// NewClient authenticates botToken against the Bot API and returns a Notifier posting to chatID.
func NewClient(botToken string, chatID int64) (Notifier, error) {
	if chatID == 0 {
		return nil, errors.New("telegram: chat id is required")
	}
	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, fmt.Errorf("telegram: authenticating bot: %w", err)
	}
	return newClient(bot, chatID), nil
}

func newClient(bot sender, chatID int64) *client {
	return &client{bot: bot, chatID: chatID}
}

// NotifyAccountEvent posts ev as a Markdown message. The Bot API call itself is not
// cancellable, so ctx is only checked before sending.
func (c *client) NotifyAccountEvent(ctx context.Context, ev AccountEvent) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("telegram: %s event for %s not sent: %w", ev.Type, ev.Email, err)
	}
	msg := tgbotapi.NewMessage(c.chatID, FormatAccountEvent(ev))
	msg.ParseMode = tgbotapi.ModeMarkdown
	if _, err := c.bot.Send(msg); err != nil {
		return fmt.Errorf("telegram: sending %s event to chat %d: %w", ev.Type, c.chatID, err)
	}
	return nil
}

type noopNotifier struct{}

// NewNoopNotifier returns a Notifier that drops every event. Used when Telegram is disabled.
func NewNoopNotifier() Notifier {
	return noopNotifier{}
}

func (noopNotifier) NotifyAccountEvent(context.Context, AccountEvent) error { return nil }
