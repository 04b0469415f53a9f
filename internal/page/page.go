// Package page turns a web page, feed or public Telegram post into plain text
// suitable for summarization.
package page

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
)

const (
	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
		"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/127.0.0.0 Safari/537.36"

	defaultTimeout = 30 * time.Second
	maxBodyBytes   = 4 << 20
)

var ErrNoText = errors.New("no readable text found")

type Document struct {
	URL   string
	Title string
	Text  string
}

type Extractor struct {
	client          *http.Client
	feedParser      *gofeed.Parser
	telegramBaseURL string
	log             *slog.Logger
}

func NewExtractor(client *http.Client, log *slog.Logger) *Extractor {
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}

	return &Extractor{
		client:          client,
		feedParser:      gofeed.NewParser(),
		telegramBaseURL: "https://" + telegramHost,
		log:             log,
	}
}

// Extract downloads rawURL and returns its readable text. Feeds yield their
// newest entry; Telegram links are read through the public web preview.
func (e *Extractor) Extract(ctx context.Context, rawURL string) (Document, error) {
	rawURL = strings.TrimSpace(rawURL)

	u, err := url.Parse(rawURL)
	if err != nil {
		return Document{}, fmt.Errorf("parse url: %w", err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return Document{}, fmt.Errorf("unsupported url scheme %q", u.Scheme)
	}

	if link, ok := parseTelegramLink(u); ok {
		return e.extractTelegram(ctx, link)
	}

	body, err := e.fetch(ctx, rawURL)
	if err != nil {
		return Document{}, err
	}

	if gofeed.DetectFeedType(bytes.NewReader(body)) != gofeed.FeedTypeUnknown {
		return e.extractFeed(rawURL, body)
	}

	return extractHTML(rawURL, body)
}

func (e *Extractor) fetch(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", userAgent)

	resp, err := e.client.Do(req) //nolint:gosec // URL comes from the user on purpose
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer func() {
		if err = resp.Body.Close(); err != nil {
			e.log.ErrorContext(ctx, "Failed to close response body",
				"error", err,
				"url", rawURL)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("do request: unexpected status: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	return body, nil
}

func (e *Extractor) extractFeed(rawURL string, body []byte) (Document, error) {
	feed, err := e.feedParser.Parse(bytes.NewReader(body))
	if err != nil {
		return Document{}, fmt.Errorf("parse feed: %w", err)
	}

	item := newestItem(feed.Items)
	if item == nil {
		return Document{}, fmt.Errorf("feed %q: %w", rawURL, ErrNoText)
	}

	content := item.Content
	if strings.TrimSpace(content) == "" {
		content = item.Description
	}

	text, err := htmlFragmentText(content)
	if err != nil {
		return Document{}, err
	}

	if text == "" {
		return Document{}, fmt.Errorf("feed item %q: %w", item.Link, ErrNoText)
	}

	docURL := strings.TrimSpace(item.Link)
	if docURL == "" {
		docURL = rawURL
	}

	return Document{
		URL:   docURL,
		Title: strings.TrimSpace(item.Title),
		Text:  text,
	}, nil
}

func newestItem(items []*gofeed.Item) *gofeed.Item {
	var newest *gofeed.Item
	var newestAt time.Time

	for _, item := range items {
		if item == nil {
			continue
		}

		var at time.Time
		if item.PublishedParsed != nil {
			at = *item.PublishedParsed
		} else if item.UpdatedParsed != nil {
			at = *item.UpdatedParsed
		}

		if newest == nil || at.After(newestAt) {
			newest = item
			newestAt = at
		}
	}

	return newest
}

func extractHTML(rawURL string, body []byte) (Document, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return Document{}, fmt.Errorf("create document from reader: %w", err)
	}

	doc.Find("script, style, noscript, nav, header, footer, aside, form").Remove()

	title := strings.TrimSpace(doc.Find("meta[property='og:title']").AttrOr("content", ""))
	if title == "" {
		title = strings.TrimSpace(doc.Find("title").First().Text())
	}

	var text string
	for _, selector := range []string{"article p", "main p", "p"} {
		if text = joinSelection(doc.Find(selector)); text != "" {
			break
		}
	}

	if text == "" {
		text = normalizeSpace(doc.Find("body").Text())
	}

	if text == "" {
		return Document{}, fmt.Errorf("page %q: %w", rawURL, ErrNoText)
	}

	return Document{URL: rawURL, Title: title, Text: text}, nil
}

func joinSelection(s *goquery.Selection) string {
	parts := make([]string, 0, s.Length())

	s.Each(func(_ int, p *goquery.Selection) {
		if fragment := normalizeSpace(p.Text()); fragment != "" {
			parts = append(parts, fragment)
		}
	})

	return strings.Join(parts, " ")
}

func htmlFragmentText(fragment string) (string, error) {
	if strings.TrimSpace(fragment) == "" {
		return "", nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return "", fmt.Errorf("create document from reader: %w", err)
	}

	doc.Find("br").Each(func(_ int, br *goquery.Selection) {
		br.ReplaceWithHtml("\n")
	})

	return normalizeSpace(doc.Text()), nil
}

func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
