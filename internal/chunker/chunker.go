// Package chunker splits long documents into pieces that fit a model's token
// budget, cutting at sentence boundaries where it can.
package chunker

import "strings"

const sentenceSeparator = ". "

// TokenCounter reports how many model tokens a text occupies.
type TokenCounter interface {
	CountTokens(text string) int
}

// Split packs sentences of text greedily into chunks of at most budget tokens.
//
// Whitespace-only text yields no chunks. Text that already fits is returned as
// a single trimmed chunk. A sentence that alone exceeds the budget becomes its
// own chunk and is left for the model call to truncate. A budget <= 0 disables
// splitting.
func Split(text string, budget int, counter TokenCounter) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	if budget <= 0 || counter.CountTokens(text) <= budget {
		return []string{text}
	}

	sentences := strings.Split(text, sentenceSeparator)

	var chunks []string
	current := ""

	for i, sentence := range sentences {
		// Separator consumed the period; restore it for every sentence but the last.
		if i < len(sentences)-1 && !strings.HasSuffix(sentence, ".") {
			sentence += "."
		}

		candidate := sentence
		if current != "" {
			candidate = current + " " + sentence
		}

		if counter.CountTokens(candidate) <= budget {
			current = candidate
			continue
		}

		if current != "" {
			chunks = appendTrimmed(chunks, current)
		}
		current = sentence
	}

	if current != "" {
		chunks = appendTrimmed(chunks, current)
	}

	return chunks
}

func appendTrimmed(chunks []string, chunk string) []string {
	chunk = strings.TrimSpace(chunk)
	if chunk == "" {
		return chunks
	}

	return append(chunks, chunk)
}
