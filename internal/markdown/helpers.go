// Package markdown formats text for Telegram MarkdownV2 messages.
package markdown

import (
	"strings"
	"unicode/utf8"
)

// Taken from https://core.telegram.org/bots/api#markdownv2-style.
const mdV2SpecialChars = `._[](){}#|!+-=*~>` + "`" + `\`

// Link targets only need these escaped.
const mdV2LinkSpecialChars = `)\`

//nolint:gochecknoglobals // Lookup tables meant to be immutable.
var (
	mdV2Lookup     = newLookup(mdV2SpecialChars)
	mdV2LinkLookup = newLookup(mdV2LinkSpecialChars)
)

func EscapeV2(input string) string {
	return escape(input, &mdV2Lookup)
}

// Link renders an inline link with an escaped label and target.
func Link(label string, target string) string {
	return "[" + EscapeV2(label) + "](" + escape(target, &mdV2LinkLookup) + ")"
}

// Split breaks plain text into parts of at most limit runes, preferring
// paragraph breaks, then line breaks, then spaces. Words longer than limit
// are cut. Parts are trimmed and never empty.
func Split(text string, limit int) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	if limit <= 0 || utf8.RuneCountInString(text) <= limit {
		return []string{text}
	}

	var parts []string

	for text != "" {
		if utf8.RuneCountInString(text) <= limit {
			parts = append(parts, text)
			break
		}

		head := prefixRunes(text, limit)
		cut := lastBreak(head)
		if cut <= 0 {
			cut = len(head)
		}

		if part := strings.TrimSpace(text[:cut]); part != "" {
			parts = append(parts, part)
		}
		text = strings.TrimSpace(text[cut:])
	}

	return parts
}

func escape(input string, lookup *[256]bool) string {
	charsToEscape := 0

	for i := range len(input) {
		if lookup[input[i]] {
			charsToEscape++
		}
	}

	if charsToEscape == 0 {
		return input
	}

	var b strings.Builder
	b.Grow(len(input) + charsToEscape)

	for i := range len(input) {
		c := input[i]
		if lookup[c] {
			b.WriteByte('\\')
		}
		b.WriteByte(c)
	}

	return b.String()
}

func newLookup(chars string) [256]bool {
	var m [256]bool
	for i := range len(chars) {
		m[chars[i]] = true
	}
	return m
}

func prefixRunes(s string, n int) string {
	i := 0
	for j := range s {
		if i == n {
			return s[:j]
		}
		i++
	}
	return s
}

func lastBreak(s string) int {
	for _, sep := range []string{"\n\n", "\n", " "} {
		if i := strings.LastIndex(s, sep); i > 0 {
			return i
		}
	}
	return -1
}
