package dedup

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
	"github.com/pmezard/go-difflib/difflib"
)

// Similarity returns the combined similarity of two item names on a 0-1 scale.
// It is the equal-weighted mean of a character ratio, a token-set ratio and an
// edit-distance ratio, all computed over the lowercased, trimmed names.
func Similarity(a, b string) float64 {
	a = strings.ToLower(strings.Join(strings.Fields(a), " "))
	b = strings.ToLower(strings.Join(strings.Fields(b), " "))
	if a == b {
		return 1
	}
	if a == "" || b == "" {
		return 0
	}
	return (CharRatio(a, b) + TokenSetRatio(a, b) + EditRatio(a, b)) / 3
}

// Percent returns Similarity on a 0-100 scale.
func Percent(a, b string) float64 {
	return Similarity(a, b) * 100
}

// CharRatio is the SequenceMatcher ratio over the characters of a and b.
func CharRatio(a, b string) float64 {
	if a == "" && b == "" {
		return 1
	}
	m := difflib.NewMatcher(splitChars(a), splitChars(b))
	return m.Ratio()
}

// TokenSetRatio compares the shared and differing word sets of a and b,
// so word order and repeated words do not lower the score.
func TokenSetRatio(a, b string) float64 {
	ta, tb := tokenSet(a), tokenSet(b)
	if len(ta) == 0 || len(tb) == 0 {
		if len(ta) == len(tb) {
			return 1
		}
		return 0
	}

	var inter, onlyA, onlyB []string
	for tok := range ta {
		if tb[tok] {
			inter = append(inter, tok)
		} else {
			onlyA = append(onlyA, tok)
		}
	}
	for tok := range tb {
		if !ta[tok] {
			onlyB = append(onlyB, tok)
		}
	}
	sort.Strings(inter)
	sort.Strings(onlyA)
	sort.Strings(onlyB)

	base := strings.Join(inter, " ")
	withA := strings.TrimSpace(base + " " + strings.Join(onlyA, " "))
	withB := strings.TrimSpace(base + " " + strings.Join(onlyB, " "))

	best := CharRatio(withA, withB)
	if base != "" {
		best = max(best, CharRatio(base, withA), CharRatio(base, withB))
	}
	return best
}

// EditRatio is 1 - levenshtein(a, b) / max(len(a), len(b)) measured in runes.
func EditRatio(a, b string) float64 {
	longest := max(utf8.RuneCountInString(a), utf8.RuneCountInString(b))
	if longest == 0 {
		return 1
	}
	return 1 - float64(levenshtein.ComputeDistance(a, b))/float64(longest)
}

func splitChars(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}

func tokenSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, tok := range strings.Fields(s) {
		set[tok] = true
	}
	return set
}
