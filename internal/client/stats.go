package client

import (
	"fmt"
	"strings"

	"textsummarizer/internal/domain"
)

type Stats struct {
	OriginalLength int
	SummaryLength  int
	// Compression is the share of the original removed by summarization,
	// in percent. Zero when the original is empty.
	Compression float64
	Model       string
}

func NewStats(resp domain.SummaryResponse) Stats {
	stats := Stats{
		OriginalLength: resp.OriginalLength,
		SummaryLength:  resp.SummaryLength,
		Model:          resp.ModelUsed,
	}

	if resp.OriginalLength > 0 {
		stats.Compression = (1 - float64(resp.SummaryLength)/float64(resp.OriginalLength)) * 100
	}

	return stats
}

func (s Stats) String() string {
	var b strings.Builder

	fmt.Fprintf(&b, "original: %d chars, summary: %d chars, compression: %.1f%%",
		s.OriginalLength, s.SummaryLength, s.Compression)

	if s.Model != "" {
		fmt.Fprintf(&b, ", model: %s", s.Model)
	}

	return b.String()
}
