package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"textsummarizer/internal/client"
	"textsummarizer/internal/domain"
	"textsummarizer/internal/markdown"
	"textsummarizer/internal/page"
)

// Telegram allows 4096 characters per message; the rest is left for the
// header and statistics.
const summaryPartMaxRunes = 3500

func (b *Bot) handleMessage(ctx context.Context, message *tgbotapi.Message) error {
	chatID := message.Chat.ID

	if message.IsCommand() {
		switch message.Command() {
		case "start":
			return b.handleStartCommand(chatID)
		case "help":
			return b.handleHelpCommand(chatID)
		case "health":
			return b.withSpinner(ctx, chatID, func() error {
				return b.handleHealthCommand(ctx, chatID)
			})
		case "length":
			return b.handleLengthCommand(chatID, message.CommandArguments())
		default:
			return b.handleHelpCommand(chatID)
		}
	}

	text := strings.TrimSpace(message.Text)
	if text == "" {
		text = strings.TrimSpace(message.Caption)
	}

	if text == "" {
		return b.sendMessageWithKeyboard(chatID, "✖️ Send me some text or a link to summarize\\.", nil)
	}

	return b.withSpinner(ctx, chatID, func() error {
		return b.handleText(ctx, chatID, text)
	})
}

func (b *Bot) handleText(ctx context.Context, chatID int64, text string) error {
	bounds := b.lengths.get(chatID)

	link, isLink, err := singleURL(text)
	if err != nil {
		b.log.WarnContext(ctx, "Failed to detect link, summarizing as text",
			"error", err,
			"chatID", chatID)
	}

	if isLink {
		return b.handleLink(ctx, chatID, link, bounds)
	}

	resp, err := b.summarizer.Summarize(ctx, domain.SummaryRequest{
		Text:      text,
		MaxLength: bounds.max,
		MinLength: bounds.min,
	})
	if err != nil {
		return b.sendError(chatID, "Failed to summarize", fmt.Errorf("summarize text: %w", err))
	}

	return b.sendMessages(chatID, formatSummary(nil, resp), nil)
}

func (b *Bot) handleLink(ctx context.Context, chatID int64, link string, bounds lengthBounds) error {
	now := time.Now().UTC()
	cacheKey := summaryCacheKey(link, bounds)

	if cached, ok := b.summaryCache.get(cacheKey, now); ok {
		b.log.DebugContext(ctx, "Link summary is served from cache",
			"chatID", chatID,
			"url", link)

		return b.sendMessages(chatID, formatSummary(&cached.document, cached.response), nil)
	}

	doc, err := b.extractor.Extract(ctx, link)
	if err != nil {
		return b.sendError(chatID, "Failed to read the link", fmt.Errorf("extract %q: %w", link, err))
	}

	b.log.InfoContext(ctx, "Link is extracted",
		"chatID", chatID,
		"url", doc.URL,
		"textLen", len(doc.Text))

	resp, err := b.summarizer.Summarize(ctx, domain.SummaryRequest{
		Text:      doc.Text,
		MaxLength: bounds.max,
		MinLength: bounds.min,
	})
	if err != nil {
		return b.sendError(chatID, "Failed to summarize the link", fmt.Errorf("summarize %q: %w", doc.URL, err))
	}

	b.summaryCache.set(cacheKey, linkSummary{document: doc, response: resp}, now.Add(summaryCacheTTL), now)

	return b.sendMessages(chatID, formatSummary(&doc, resp), nil)
}

// sendError tells the user what went wrong. API rejections carry their own
// detail; anything else is reported generically. The cause is returned for
// logging.
func (b *Bot) sendError(chatID int64, title string, cause error) error {
	text := "❌ " + markdown.EscapeV2(title) + "\\."

	var apiErr *client.APIError
	if errors.As(cause, &apiErr) && apiErr.Detail != "" {
		text = "❌ " + markdown.EscapeV2(title+": "+apiErr.Detail)
	}

	if errors.Is(cause, page.ErrNoText) {
		text = "❌ " + markdown.EscapeV2(title+": no readable text found.")
	}

	if err := b.sendMessageWithKeyboard(chatID, text, nil); err != nil {
		return errors.Join(cause, fmt.Errorf("send message with keyboard: %w", err))
	}

	return cause
}

// formatSummary renders a summary as one or more MarkdownV2 messages. The
// first carries the header and the last the statistics.
func formatSummary(doc *page.Document, resp domain.SummaryResponse) []string {
	header := "📝 *Summary*"
	if doc != nil {
		label := strings.TrimSpace(doc.Title)
		if label == "" {
			label = doc.URL
		}

		header = "📝 *Summary of* " + markdown.Link(label, doc.URL)
	}

	footer := "_" + markdown.EscapeV2(client.NewStats(resp).String()) + "_"

	parts := markdown.Split(resp.Summary, summaryPartMaxRunes)
	if len(parts) == 0 {
		parts = []string{""}
	}

	messages := make([]string, len(parts))
	for i, part := range parts {
		var b strings.Builder

		if i == 0 {
			b.WriteString(header)
			b.WriteString("\n\n")
		}

		b.WriteString(markdown.EscapeV2(part))

		if i == len(parts)-1 {
			b.WriteString("\n\n")
			b.WriteString(footer)
		}

		messages[i] = b.String()
	}

	return messages
}
