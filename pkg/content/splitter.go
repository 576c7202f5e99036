package content

import (
	"strings"
	"unicode/utf8"
)

// SplitThread breaks text into successive chunks of at most limit runes,
// cutting at word boundaries. When a prefix contains no whitespace the cut
// is a hard cut at the limit. Text within the limit comes back as a single
// chunk equal to the input. A non-positive limit returns the text as one
// chunk.
func SplitThread(text string, limit int) []string {
	if limit <= 0 || utf8.RuneCountInString(text) <= limit {
		return []string{text}
	}

	var chunks []string
	remaining := text

	for utf8.RuneCountInString(remaining) > limit {
		prefix := runePrefix(remaining, limit)

		cut := lastWhitespace(prefix)
		if cut <= 0 {
			// No word boundary inside the prefix: hard cut.
			chunks = append(chunks, prefix)
			remaining = strings.TrimLeft(remaining[len(prefix):], " \t\n\r")
			continue
		}

		chunk := strings.TrimRight(prefix[:cut], " \t\n\r")
		if chunk != "" {
			chunks = append(chunks, chunk)
		}
		remaining = strings.TrimLeft(remaining[cut:], " \t\n\r")
	}

	if remaining != "" {
		chunks = append(chunks, remaining)
	}
	return chunks
}

// runePrefix returns the largest prefix of s holding at most n runes.
func runePrefix(s string, n int) string {
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}

// lastWhitespace returns the byte offset of the last whitespace rune in s,
// or -1 when s holds none.
func lastWhitespace(s string) int {
	return strings.LastIndexAny(s, " \t\n\r")
}
