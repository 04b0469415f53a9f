package page

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const (
	telegramHost          = "t.me"
	telegramLegacyHost    = "telegram.me"
	telegramPreviewPrefix = "s"
)

var (
	telegramSlugRe   = regexp.MustCompile(`^\w{5,32}$`)
	telegramPostIDRe = regexp.MustCompile(`^\d+$`)
)

type telegramLink struct {
	slug   string
	postID string
}

// parseTelegramLink recognizes public channel links in the forms
// t.me/<slug>, t.me/s/<slug>, t.me/<slug>/<id> and t.me/s/<slug>/<id>.
func parseTelegramLink(u *url.URL) (telegramLink, bool) {
	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	if host != telegramHost && host != telegramLegacyHost {
		return telegramLink{}, false
	}

	path := strings.Trim(u.Path, "/")
	if path == "" {
		return telegramLink{}, false
	}

	parts := strings.Split(path, "/")
	if parts[0] == telegramPreviewPrefix {
		parts = parts[1:]
	}

	if len(parts) == 0 || len(parts) > 2 {
		return telegramLink{}, false
	}

	link := telegramLink{slug: strings.TrimSpace(parts[0])}
	if !telegramSlugRe.MatchString(link.slug) {
		return telegramLink{}, false
	}

	if len(parts) == 2 {
		if !telegramPostIDRe.MatchString(parts[1]) {
			return telegramLink{}, false
		}
		link.postID = parts[1]
	}

	return link, true
}

func (l telegramLink) canonicalURL() string {
	if l.postID != "" {
		return fmt.Sprintf("https://%s/%s/%s", telegramHost, l.slug, l.postID)
	}

	return fmt.Sprintf("https://%s/%s/%s", telegramHost, telegramPreviewPrefix, l.slug)
}

func (e *Extractor) extractTelegram(ctx context.Context, link telegramLink) (Document, error) {
	fetchURL := fmt.Sprintf("%s/%s/%s", e.telegramBaseURL, telegramPreviewPrefix, link.slug)
	if link.postID != "" {
		fetchURL = fmt.Sprintf("%s/%s/%s?embed=1", e.telegramBaseURL, link.slug, link.postID)
	}

	body, err := e.fetch(ctx, fetchURL)
	if err != nil {
		return Document{}, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return Document{}, fmt.Errorf("create document from reader: %w", err)
	}

	var title string
	if content, ok := doc.Find("meta[property='og:title']").Attr("content"); ok {
		title = strings.TrimSpace(content)
	}

	if title == "" {
		title = strings.TrimSpace(doc.Find(".tgme_channel_info_header_title").Text())
	}

	// The channel preview lists posts oldest first.
	messages := doc.Find(".tgme_widget_message")

	var text string
	for i := messages.Length() - 1; i >= 0 && text == ""; i-- {
		text = messageText(messages.Eq(i))
	}

	if text == "" && messages.Length() == 0 {
		text = messageText(doc.Selection)
	}

	if text == "" {
		return Document{}, fmt.Errorf("telegram %q: %w", link.canonicalURL(), ErrNoText)
	}

	return Document{
		URL:   link.canonicalURL(),
		Title: title,
		Text:  text,
	}, nil
}

func messageText(message *goquery.Selection) string {
	var b strings.Builder

	message.Find(".tgme_widget_message_text, .tgme_widget_message_caption").Each(
		func(_ int, inner *goquery.Selection) {
			inner.Find("br").Each(func(_ int, br *goquery.Selection) {
				br.ReplaceWithHtml("\n")
			})

			fragment := normalizeSpace(inner.Text())
			if fragment == "" {
				return
			}

			if b.Len() > 0 {
				b.WriteString(" ")
			}
			b.WriteString(fragment)
		},
	)

	return b.String()
}
