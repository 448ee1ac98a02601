package pipeline

import (
	"errors"
	"strings"
	"unicode"
)

const ellipsis = "…"

// FitCounter trims wrapping quotes and whitespace from a counter-argument and
// cuts it to at most limit runes, at a word boundary when one is close.
func FitCounter(text string, limit int) (string, error) {
	text = strings.TrimSpace(text)
	text = strings.Trim(text, "\"'“”‘’")
	text = strings.TrimSpace(text)
	if text == "" {
		return "", errors.New("empty counter-argument")
	}

	runes := []rune(text)
	if limit <= 0 || len(runes) <= limit {
		return text, nil
	}

	cut := runes[:limit-1]
	if i := lastSpace(cut); i > len(cut)/2 {
		cut = cut[:i]
	}
	trimmed := strings.TrimRightFunc(string(cut), func(r rune) bool {
		return unicode.IsSpace(r) || unicode.IsPunct(r)
	})
	return trimmed + ellipsis, nil
}

func lastSpace(r []rune) int {
	for i := len(r) - 1; i >= 0; i-- {
		if unicode.IsSpace(r[i]) {
			return i
		}
	}
	return -1
}
