package bot

import (
	"context"
	"fmt"
	"strings"

	"textsummarizer/internal/markdown"
)

const welcomeText = `🤖 *Welcome to Text Summarizer\!*

Send me any text and I will reply with a short abstractive summary\.

– Paste an article, a report or a long message
– Send a single https link to summarize a web page, a feed or a public Telegram channel post
– Tune summary length with /length
– Check the service with /health`

const helpText = `*❔ Help*

/start – welcome message
/help – this message
/health – summarizer service status
/length – show summary length bounds
/length min max – set bounds for this chat, e\.g\. /length 30 150
/length reset – restore defaults

Any other message is summarized\. A message that is a single https link is downloaded first\.`

func (b *Bot) handleStartCommand(chatID int64) error {
	return b.sendMessageWithKeyboard(chatID, welcomeText, b.menuKeyboard)
}

func (b *Bot) handleHelpCommand(chatID int64) error {
	return b.sendMessageWithKeyboard(chatID, helpText, b.menuKeyboard)
}

func (b *Bot) handleHealthCommand(ctx context.Context, chatID int64) error {
	health, err := b.summarizer.Health(ctx)
	if err != nil {
		return b.sendError(chatID, "Service is unhealthy", fmt.Errorf("check health: %w", err))
	}

	info := health.ModelInfo
	text := fmt.Sprintf("✅ *Service is %s*\n\nModel: `%s`\nBackend: `%s`\nChunk budget: %d tokens",
		markdown.EscapeV2(health.Status),
		markdown.EscapeV2(info.ModelName),
		markdown.EscapeV2(info.Device),
		info.MaxChunkLength)

	return b.sendMessageWithKeyboard(chatID, text, b.menuKeyboard)
}

func (b *Bot) handleLengthCommand(chatID int64, args string) error {
	args = strings.TrimSpace(args)

	switch args {
	case "":
		return b.sendLengthSettings(chatID)
	case "reset":
		b.lengths.reset(chatID)
		return b.sendLengthSettings(chatID)
	}

	bounds, err := parseLengthArgs(args)
	if err != nil {
		// Invalid bounds are the user's input, not a failure.
		if sendErr := b.sendMessageWithKeyboard(chatID, "❌ "+markdown.EscapeV2(err.Error()), nil); sendErr != nil {
			return fmt.Errorf("send message with keyboard: %w", sendErr)
		}

		return nil
	}

	b.lengths.set(chatID, bounds)

	return b.sendLengthSettings(chatID)
}

func (b *Bot) sendLengthSettings(chatID int64) error {
	bounds := b.lengths.get(chatID)

	text := fmt.Sprintf("📏 Summary length: *%d–%d* tokens\\.\n\nChange it with /length min max\\.",
		bounds.min, bounds.max)

	return b.sendMessageWithKeyboard(chatID, text, nil)
}
