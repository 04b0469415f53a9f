package bot

import (
	"testing"
	"time"

	"textsummarizer/internal/domain"
)

func cachedSummary(text string) linkSummary {
	return linkSummary{response: domain.SummaryResponse{Summary: text}}
}

func TestSummaryCacheGetSet(t *testing.T) {
	cache := newSummaryCache(2)
	if cache == nil {
		t.Fatalf("expected cache instance")
	}

	now := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	cache.set("key", cachedSummary("value"), now.Add(time.Hour), now)

	summary, ok := cache.get("key", now)
	if !ok {
		t.Fatalf("expected cached summary to be present")
	}

	if summary.response.Summary != "value" {
		t.Fatalf("unexpected summary: %q", summary.response.Summary)
	}
}

func TestSummaryCacheSkipsEmptySummary(t *testing.T) {
	cache := newSummaryCache(2)
	now := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)

	cache.set("key", cachedSummary(""), now.Add(time.Hour), now)

	if _, ok := cache.get("key", now); ok {
		t.Fatalf("expected empty summary not to be cached")
	}
}

func TestSummaryCacheExpiresEntries(t *testing.T) {
	cache := newSummaryCache(2)
	now := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	cache.set("key", cachedSummary("value"), now.Add(time.Minute), now)

	if _, ok := cache.get("key", now.Add(2*time.Minute)); ok {
		t.Fatalf("expected cache entry to expire")
	}

	if len(cache.entries) != 0 {
		t.Fatalf("expected expired cache entry to be removed")
	}
}

func TestSummaryCacheEvictsLeastRecentlyUsed(t *testing.T) {
	cache := newSummaryCache(2)
	now := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	expiresAt := now.Add(time.Hour)

	cache.set("a", cachedSummary("summary-a"), expiresAt, now)
	cache.set("b", cachedSummary("summary-b"), expiresAt, now)

	if _, ok := cache.get("a", now); !ok {
		t.Fatalf("expected entry a to exist before eviction check")
	}

	cache.set("c", cachedSummary("summary-c"), expiresAt, now)

	if _, ok := cache.get("a", now); !ok {
		t.Fatalf("expected entry a to remain after evicting least recently used")
	}

	if _, ok := cache.get("b", now); ok {
		t.Fatalf("expected entry b to be evicted")
	}

	if _, ok := cache.get("c", now); !ok {
		t.Fatalf("expected entry c to be cached")
	}
}

func TestSummaryCacheKey(t *testing.T) {
	bounds := lengthBounds{min: 30, max: 150}

	a := summaryCacheKey("https://Example.com/post?utm=1#top", bounds)
	b := summaryCacheKey("https://example.com/post", bounds)
	if a != b || a != "https://example.com/post|30|150" {
		t.Fatalf("expected normalized keys to match: %q vs %q", a, b)
	}

	if c := summaryCacheKey("https://example.com/post", lengthBounds{min: 10, max: 60}); c == b {
		t.Fatalf("expected bounds to be part of the key")
	}

	if summaryCacheKey("  ", bounds) != "" {
		t.Fatalf("expected empty key for blank url")
	}
}
