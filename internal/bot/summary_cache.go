package bot

import (
	"container/list"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"textsummarizer/internal/domain"
	"textsummarizer/internal/page"
)

// summaryCache is a size-bounded LRU of link summaries with per-entry expiry.
type summaryCache struct {
	mu         sync.Mutex
	entries    map[string]*list.Element
	order      *list.List
	maxEntries int
}

type summaryCacheEntry struct {
	key       string
	summary   linkSummary
	expiresAt time.Time
}

type linkSummary struct {
	document page.Document
	response domain.SummaryResponse
}

func newSummaryCache(maxEntries int) *summaryCache {
	if maxEntries <= 0 {
		return nil
	}

	return &summaryCache{
		entries:    make(map[string]*list.Element, maxEntries),
		order:      list.New(),
		maxEntries: maxEntries,
	}
}

// summaryCacheKey identifies a link summary by the link without query or
// fragment and by the requested bounds.
func summaryCacheKey(rawURL string, bounds lengthBounds) string {
	trimmed := strings.TrimSpace(rawURL)
	if trimmed == "" {
		return ""
	}

	if u, err := url.Parse(trimmed); err == nil {
		u.RawQuery = ""
		u.Fragment = ""
		u.Host = strings.ToLower(u.Host)
		trimmed = u.String()
	}

	return fmt.Sprintf("%s|%d|%d", trimmed, bounds.min, bounds.max)
}

func (c *summaryCache) get(key string, now time.Time) (linkSummary, bool) {
	if c == nil || key == "" {
		return linkSummary{}, false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.entries[key]
	if !ok {
		return linkSummary{}, false
	}

	entry, ok := elem.Value.(*summaryCacheEntry)
	if !ok {
		return linkSummary{}, false
	}

	if now.After(entry.expiresAt) {
		c.removeElement(elem)

		return linkSummary{}, false
	}

	c.order.MoveToFront(elem)

	return entry.summary, true
}

func (c *summaryCache) set(
	key string,
	summary linkSummary,
	expiresAt time.Time,
	now time.Time,
) {
	if c == nil || key == "" || summary.response.Summary == "" || expiresAt.IsZero() {
		return
	}

	if !expiresAt.After(now) {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.entries[key]; ok {
		entry, castOk := elem.Value.(*summaryCacheEntry)
		if !castOk {
			return
		}

		entry.summary = summary
		entry.expiresAt = expiresAt
		c.order.MoveToFront(elem)

		return
	}

	elem := c.order.PushFront(&summaryCacheEntry{
		key:       key,
		summary:   summary,
		expiresAt: expiresAt,
	})
	c.entries[key] = elem

	c.evictExpiredLocked(now)
	c.enforceSizeLimitLocked()
}

func (c *summaryCache) evictExpiredLocked(now time.Time) {
	for elem := c.order.Back(); elem != nil; {
		prev := elem.Prev()

		if entry, ok := elem.Value.(*summaryCacheEntry); ok && now.After(entry.expiresAt) {
			c.removeElement(elem)
		}

		elem = prev
	}
}

func (c *summaryCache) enforceSizeLimitLocked() {
	for len(c.entries) > c.maxEntries {
		elem := c.order.Back()
		if elem == nil {
			return
		}
		c.removeElement(elem)
	}
}

func (c *summaryCache) removeElement(elem *list.Element) {
	entry, ok := elem.Value.(*summaryCacheEntry)
	if !ok {
		return
	}

	delete(c.entries, entry.key)
	c.order.Remove(elem)
}
