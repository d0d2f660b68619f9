package telegram

import (
	"context"
	"errors"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	sent []tgbotapi.MessageConfig
	err  error
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if f.err != nil {
		return tgbotapi.Message{}, f.err
	}
	f.sent = append(f.sent, c.(tgbotapi.MessageConfig))
	return tgbotapi.Message{MessageID: len(f.sent)}, nil
}

var registered = AccountEvent{
	Type:  "registered",
	Name:  "Jane",
	Email: "jane@example.com",
	At:    time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC),
}

func TestClient_NotifyAccountEvent(t *testing.T) {
	bot := &fakeSender{}
	c := newClient(bot, 42)

	require.NoError(t, c.NotifyAccountEvent(context.Background(), registered))
	require.Len(t, bot.sent, 1)
	assert.Equal(t, int64(42), bot.sent[0].ChatID)
	assert.Equal(t, tgbotapi.ModeMarkdown, bot.sent[0].ParseMode)
	assert.Equal(t, FormatAccountEvent(registered), bot.sent[0].Text)
}

func TestClient_SendFailureIsWrapped(t *testing.T) {
	apiErr := errors.New("Bad Request: chat not found")
	c := newClient(&fakeSender{err: apiErr}, 42)

	err := c.NotifyAccountEvent(context.Background(), registered)
	require.ErrorIs(t, err, apiErr)
	assert.Contains(t, err.Error(), "registered event to chat 42")
}

func TestClient_CancelledContextSkipsSend(t *testing.T) {
	bot := &fakeSender{}
	c := newClient(bot, 42)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := c.NotifyAccountEvent(ctx, registered)
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, bot.sent)
}

func TestNewClient_RequiresChatID(t *testing.T) {
	_, err := NewClient("token", 0)
	assert.EqualError(t, err, "telegram: chat id is required")
}

func TestNoopNotifier(t *testing.T) {
	assert.NoError(t, NewNoopNotifier().NotifyAccountEvent(context.Background(), registered))
}
