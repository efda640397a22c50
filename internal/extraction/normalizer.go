package extraction

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Normalizer cleans raw OCR text while keeping its line structure.
type Normalizer struct {
	replacer    *strings.Replacer
	unicodeFold bool
	repair      bool
}

// NewNormalizer builds a Normalizer from the substitution table and flags in h.
func NewNormalizer(h Heuristics) *Normalizer {
	pairs := make([]string, 0, len(h.Substitutions)*2)
	for _, s := range h.Substitutions {
		if s.Old == "" {
			continue
		}
		pairs = append(pairs, s.Old, s.New)
	}
	var r *strings.Replacer
	if len(pairs) > 0 {
		r = strings.NewReplacer(pairs...)
	}
	return &Normalizer{replacer: r, unicodeFold: h.UnicodeFold, repair: h.RepairDigitConfusions}
}

// Normalize returns the cleaned text: one trimmed line per non-blank input line,
// with runs of whitespace collapsed to a single space. Empty input returns "".
// Normalize is idempotent.
func (n *Normalizer) Normalize(raw string) string {
	if raw == "" {
		return ""
	}

	s := n.substitute(raw)
	if n.unicodeFold {
		// substitute first so marks like ™ are dropped before NFKC expands them,
		// then again for glyphs the fold produced
		s = n.substitute(norm.NFKC.String(s))
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")

	var out []string
	for _, line := range strings.Split(s, "\n") {
		if n.repair {
			line = repairDigitConfusions(line)
		}
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}

// Lines splits normalized text into its lines.
func Lines(cleaned string) []string {
	if cleaned == "" {
		return nil
	}
	return strings.Split(cleaned, "\n")
}

func (n *Normalizer) substitute(s string) string {
	if n.replacer == nil {
		return s
	}
	return n.replacer.Replace(s)
}

// repairDigitConfusions rewrites O/o as 0 and l/I as 1 inside number-like
// tokens. A whole token such as "4O.5O" or "1l2" is repaired when it contains a
// digit and no other letters; inside words the letter must sit between two
// digits, so "1O5mg" is repaired but "Vol.5" is not.
func repairDigitConfusions(line string) string {
	runes := []rune(line)
	changed := false

	for start := 0; start < len(runes); {
		if !numericRune(runes[start]) {
			start++
			continue
		}
		end := start
		digits := false
		for end < len(runes) && numericRune(runes[end]) {
			digits = digits || unicode.IsDigit(runes[end])
			end++
		}
		if digits && tokenEdge(runes, start-1) && tokenEdge(runes, end) {
			for i := start; i < end; i++ {
				if d, ok := confusedDigit(runes[i]); ok {
					runes[i] = d
					changed = true
				}
			}
		}
		start = end
	}

	for i := 1; i < len(runes)-1; i++ {
		if !unicode.IsDigit(runes[i-1]) || !unicode.IsDigit(runes[i+1]) {
			continue
		}
		if d, ok := confusedDigit(runes[i]); ok {
			runes[i] = d
			changed = true
		}
	}
	if !changed {
		return line
	}
	return string(runes)
}

func confusedDigit(r rune) (rune, bool) {
	switch r {
	case 'O', 'o':
		return '0', true
	case 'l', 'I':
		return '1', true
	}
	return r, false
}

func numericRune(r rune) bool {
	_, ok := confusedDigit(r)
	return ok || r == '.' || unicode.IsDigit(r)
}

func tokenEdge(runes []rune, i int) bool {
	if i < 0 || i >= len(runes) {
		return true
	}
	return !unicode.IsLetter(runes[i]) && !unicode.IsDigit(runes[i])
}
