package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func (b *Bot) handleCallbackQuery(ctx context.Context, callback *tgbotapi.CallbackQuery) error {
	chatID := callbackChatID(callback)
	if chatID == 0 {
		return b.withEmptyCallbackAnswer(callback, func() error { return nil })
	}

	data := strings.TrimSpace(callback.Data)

	switch data {
	case menuHealthCallback:
		return b.withEmptyCallbackAnswer(callback, func() error {
			return b.withSpinner(ctx, chatID, func() error {
				return b.handleHealthCommand(ctx, chatID)
			})
		})
	case menuHelpCallback:
		return b.withEmptyCallbackAnswer(callback, func() error {
			return b.handleHelpCommand(chatID)
		})
	case menuLengthCallback:
		return b.withEmptyCallbackAnswer(callback, func() error {
			return b.sendLengthSettings(chatID)
		})
	}

	return b.errorCallbackAnswer(callback, fmt.Errorf("unknown callback data %q", data))
}

func (b *Bot) withEmptyCallbackAnswer(
	callback *tgbotapi.CallbackQuery,
	fn func() error,
) error {
	var errs []error

	if _, err := b.rateLimiter.Request(tgbotapi.NewCallback(callback.ID, "")); err != nil {
		errs = append(errs, fmt.Errorf("send request: %w", err))
	}

	if err := fn(); err != nil {
		errs = append(errs, fmt.Errorf("call fn: %w", err))
	}

	return errors.Join(errs...)
}

func (b *Bot) errorCallbackAnswer(
	callback *tgbotapi.CallbackQuery,
	err error,
) error {
	if _, sendErr := b.rateLimiter.Request(tgbotapi.NewCallback(callback.ID, "❌ Failed.")); sendErr != nil {
		return errors.Join(err, fmt.Errorf("send request: %w", sendErr))
	}
	return err
}
