package ocr

import (
	"strings"

	"billextract/internal/extraction"
)

// CountPages returns the number of "Page N" markers in text, or 1 when there are none.
func CountPages(text string) int {
	n := 0
	for _, line := range strings.Split(text, "\n") {
		if _, ok := extraction.PageNumber(line); ok {
			n++
		}
	}
	if n == 0 {
		return 1
	}
	return n
}

// CleanTranscript strips markdown code fences some models wrap around plain text.
func CleanTranscript(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```") {
		if i := strings.Index(text, "\n"); i >= 0 {
			text = text[i+1:]
		} else {
			text = ""
		}
		text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	}
	return strings.TrimSpace(text)
}
