package bot

import (
	"errors"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const (
	menuHealthCallback = "menu_health"
	menuHelpCallback   = "menu_help"
	menuLengthCallback = "menu_length"
)

func (b *Bot) sendMessageWithKeyboard(
	chatID int64,
	text string,
	keyboard [][]tgbotapi.InlineKeyboardButton,
) error {
	normalizedText := strings.ToValidUTF8(text, "?")
	if normalizedText != text {
		b.log.Warn("Message text had invalid UTF-8 and was normalized",
			"chatID", chatID,
			"originalLen", len(text),
			"normalizedLen", len(normalizedText))
	}

	message := tgbotapi.NewMessage(chatID, normalizedText)

	// See https://core.telegram.org/bots/api#markdownv2-style.
	message.ParseMode = tgbotapi.ModeMarkdownV2

	message.DisableWebPagePreview = true
	if len(keyboard) > 0 {
		message.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(keyboard...)
	}

	_, err := b.rateLimiter.Send(message)
	return err
}

// sendMessages sends already formatted parts in order. Only the last part
// carries the keyboard.
func (b *Bot) sendMessages(
	chatID int64,
	parts []string,
	keyboard [][]tgbotapi.InlineKeyboardButton,
) error {
	var errs []error

	for i, part := range parts {
		var kb [][]tgbotapi.InlineKeyboardButton
		if i == len(parts)-1 {
			kb = keyboard
		}

		if err := b.sendMessageWithKeyboard(chatID, part, kb); err != nil {
			errs = append(errs, fmt.Errorf("send message part %d/%d: %w", i+1, len(parts), err))
		}
	}

	return errors.Join(errs...)
}

func getMenuKeyboard() [][]tgbotapi.InlineKeyboardButton {
	return [][]tgbotapi.InlineKeyboardButton{
		{
			tgbotapi.NewInlineKeyboardButtonData("🩺 Health", menuHealthCallback),
			tgbotapi.NewInlineKeyboardButtonData("📏 Length", menuLengthCallback),
		},
		{
			tgbotapi.NewInlineKeyboardButtonData("❔ Help", menuHelpCallback),
		},
	}
}
