package chunker_test

import (
	"strings"
	"testing"

	"textsummarizer/internal/chunker"
)

type wordCounter struct {
	calls int
}

func (c *wordCounter) CountTokens(text string) int {
	c.calls++
	return len(strings.Fields(text))
}

func sentenceOfWords(n int) string {
	return strings.TrimSpace(strings.Repeat("word ", n))
}

func TestSplitEmptyText(t *testing.T) {
	counter := &wordCounter{}

	if chunks := chunker.Split(" \n\t ", 10, counter); len(chunks) != 0 {
		t.Fatalf("expected no chunks, got %q", chunks)
	}

	if counter.calls != 0 {
		t.Fatalf("expected tokenizer not to be called, got %d calls", counter.calls)
	}
}

func TestSplitShortTextReturnsSingleTrimmedChunk(t *testing.T) {
	chunks := chunker.Split("  One short sentence. Another one.  ", 100, &wordCounter{})

	if len(chunks) != 1 {
		t.Fatalf("expected one chunk, got %d", len(chunks))
	}

	if chunks[0] != "One short sentence. Another one." {
		t.Fatalf("unexpected chunk: %q", chunks[0])
	}
}

func TestSplitPacksSentencesGreedily(t *testing.T) {
	text := "One two three. Four five six. Seven eight nine."
	counter := &wordCounter{}

	chunks := chunker.Split(text, 6, counter)

	want := []string{"One two three. Four five six.", "Seven eight nine."}
	if len(chunks) != len(want) {
		t.Fatalf("unexpected chunks: %q", chunks)
	}

	for i := range want {
		if chunks[i] != want[i] {
			t.Fatalf("chunk %d mismatch: got %q want %q", i, chunks[i], want[i])
		}

		if got := counter.CountTokens(chunks[i]); got > 6 {
			t.Fatalf("chunk %d exceeds budget: %d tokens", i, got)
		}
	}
}

func TestSplitJoinReconstructsSentences(t *testing.T) {
	text := "Alpha beta gamma. Delta epsilon. Zeta eta theta iota. Kappa lambda"

	chunks := chunker.Split(text, 5, &wordCounter{})
	if len(chunks) < 2 {
		t.Fatalf("expected text to be split, got %q", chunks)
	}

	if joined := strings.Join(chunks, " "); joined != text {
		t.Fatalf("join mismatch:\n got %q\nwant %q", joined, text)
	}
}

func TestSplitKeepsOverBudgetSentenceAlone(t *testing.T) {
	text := "a b c d e. f g."

	chunks := chunker.Split(text, 3, &wordCounter{})

	want := []string{"a b c d e.", "f g."}
	if len(chunks) != len(want) {
		t.Fatalf("unexpected chunks: %q", chunks)
	}

	for i := range want {
		if chunks[i] != want[i] {
			t.Fatalf("chunk %d mismatch: got %q want %q", i, chunks[i], want[i])
		}
	}
}

func TestSplitDoesNotAddPeriodToLastSentence(t *testing.T) {
	chunks := chunker.Split("Alpha beta. Gamma delta", 2, &wordCounter{})

	if len(chunks) != 2 || chunks[1] != "Gamma delta" {
		t.Fatalf("unexpected chunks: %q", chunks)
	}
}

func TestSplitLongDocumentIntoTwoChunks(t *testing.T) {
	sentences := make([]string, 18)
	for i := range sentences {
		sentences[i] = sentenceOfWords(100)
	}
	text := strings.Join(sentences, ". ") + "."

	counter := &wordCounter{}
	if got := counter.CountTokens(text); got != 1800 {
		t.Fatalf("expected 1800 tokens, got %d", got)
	}

	chunks := chunker.Split(text, 1024, counter)
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}

	for i, chunk := range chunks {
		if got := counter.CountTokens(chunk); got > 1024 {
			t.Fatalf("chunk %d exceeds budget: %d tokens", i, got)
		}
	}
}

func TestSplitNonPositiveBudgetDisablesSplitting(t *testing.T) {
	chunks := chunker.Split("One. Two. Three.", 0, &wordCounter{})
	if len(chunks) != 1 {
		t.Fatalf("expected a single chunk, got %q", chunks)
	}
}
