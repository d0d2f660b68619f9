package service

import (
	"context"
	"time"

	"golang-stock-tracker/pkg/logger"
	"golang-stock-tracker/pkg/telegram"
	"golang-stock-tracker/pkg/utils"
)

const notifyTimeout = 10 * time.Second

// notifyAsync delivers ev in the background. The request that triggered it may already be
// finished, so delivery runs on its own deadline and failures are only logged.
func notifyAsync(notifier telegram.Notifier, log *logger.Logger, ev telegram.AccountEvent) {
	utils.GoSafe(func() {
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()
		if err := notifier.NotifyAccountEvent(ctx, ev); err != nil {
			log.Warn("Failed to send Telegram notification", logger.ErrorField(err))
		}
	})
}
