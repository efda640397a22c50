package extraction

import (
	"math"
	"strconv"
	"strings"
)

// ParseNumber reads an OCR'd amount. Everything except digits and decimal points
// is dropped; when several points survive the first is kept as the decimal point
// and the rest are removed. Unparseable input yields 0.
func ParseNumber(s string) float64 {
	var b strings.Builder
	seenDot := false
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' && !seenDot:
			b.WriteRune(r)
			seenDot = true
		}
	}
	clean := strings.TrimSuffix(b.String(), ".")
	if clean == "" || clean == "." {
		return 0
	}
	v, err := strconv.ParseFloat(clean, 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0
	}
	return v
}

func isWhole(v float64) bool {
	return v == math.Trunc(v)
}
