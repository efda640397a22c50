package extraction

import (
	"regexp"
	"strings"
	"unicode"

	"billextract/internal/domain"
	"billextract/internal/validator/item"
)

const number = `[\d,]+(?:\.\d+)?`

// matcher tries one line layout. build returns false when the captured groups
// do not make a usable item.
type matcher struct {
	kind  domain.PatternKind
	re    *regexp.Regexp
	build func(p *Parser, m []string) (domain.ParsedItem, bool)
}

// Matchers in priority order. Each must match the whole line.
var matchers = []matcher{
	{
		kind: domain.PatternQtyTimesRate,
		re:   regexp.MustCompile(`^(.+?)\s+(\d+)\s*[xX×*]\s*(` + number + `)(?:\s*=\s*|\s+)(` + number + `)$`),
		build: func(p *Parser, m []string) (domain.ParsedItem, bool) {
			return p.item(m[1], ParseNumber(m[2]), ParseNumber(m[3]), ParseNumber(m[4]))
		},
	},
	{
		kind: domain.PatternRateQtyAmount,
		re:   regexp.MustCompile(`^(.+?)\s+([\d,]+\.\d{2})\s+(\d+)\s+([\d,]+\.\d{2})$`),
		build: func(p *Parser, m []string) (domain.ParsedItem, bool) {
			return p.item(m[1], ParseNumber(m[3]), ParseNumber(m[2]), ParseNumber(m[4]))
		},
	},
	{
		kind: domain.PatternQtyRateAmount,
		re:   regexp.MustCompile(`^(.+?)\s+(` + number + `)\s+(` + number + `)\s+(` + number + `)$`),
		build: func(p *Parser, m []string) (domain.ParsedItem, bool) {
			qty, rate := p.disambiguate(ParseNumber(m[2]), ParseNumber(m[3]))
			return p.item(m[1], qty, rate, ParseNumber(m[4]))
		},
	},
	{
		kind: domain.PatternSingleAmount,
		re:   regexp.MustCompile(`^(.+?)\s+([\d,]+\.\d{2})$`),
		build: func(p *Parser, m []string) (domain.ParsedItem, bool) {
			amount := ParseNumber(m[2])
			return p.item(m[1], 1, amount, amount)
		},
	},
}

// Parser turns candidate lines into parsed items.
type Parser struct {
	abbreviations map[string]bool
	limits        item.Limits
}

// NewParser builds a Parser from h.
func NewParser(h Heuristics) *Parser {
	abbr := make(map[string]bool, len(h.Abbreviations))
	for _, a := range h.Abbreviations {
		abbr[strings.ToUpper(strings.TrimSpace(a))] = true
	}
	return &Parser{abbreviations: abbr, limits: h.Limits}
}

// Parse tries each layout in order and returns the first match.
func (p *Parser) Parse(line domain.CandidateLine) (domain.ParsedItem, bool) {
	text := strings.TrimSpace(line.Text)
	for i := range matchers {
		m := matchers[i].re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		it, ok := matchers[i].build(p, m)
		if !ok {
			continue
		}
		it.Pattern = matchers[i].kind
		it.Line = line.Index
		it.PageNo = line.PageNo
		return it, true
	}
	return domain.ParsedItem{}, false
}

func (p *Parser) item(rawName string, qty, rate, amount float64) (domain.ParsedItem, bool) {
	name := p.CleanName(rawName)
	if name == "" || !hasLetter(name) {
		return domain.ParsedItem{}, false
	}
	return domain.ParsedItem{Name: name, Quantity: qty, Rate: rate, Amount: amount}, true
}

// disambiguate orders the two middle values of a "Name v1 v2 Amount" line.
// When both look like quantities the first one is taken as the quantity.
func (p *Parser) disambiguate(v1, v2 float64) (qty, rate float64) {
	switch {
	case p.looksLikeQuantity(v1) && p.looksLikeRate(v2):
		return v1, v2
	case p.looksLikeRate(v1) && p.looksLikeQuantity(v2):
		return v2, v1
	default:
		return v1, v2
	}
}

func (p *Parser) looksLikeQuantity(v float64) bool {
	return isWhole(v) && v >= p.limits.QuantityMin && v <= p.limits.QuantityMax
}

func (p *Parser) looksLikeRate(v float64) bool {
	return v >= p.limits.RateMin && v <= p.limits.RateMax
}

var nameEdgeTrim = " -:|.,;*#"

// CleanName collapses whitespace, trims separators and applies per-word casing:
// known abbreviations are upper-cased, every other letter run starts upper-case
// and continues lower-case, so "300ng" becomes "300Ng".
func (p *Parser) CleanName(raw string) string {
	words := strings.Fields(strings.Trim(strings.Join(strings.Fields(raw), " "), nameEdgeTrim))
	for i, w := range words {
		if p.abbreviations[strings.ToUpper(w)] {
			words[i] = strings.ToUpper(w)
			continue
		}
		words[i] = titleWord(w)
	}
	return strings.Join(words, " ")
}

func titleWord(w string) string {
	var b strings.Builder
	prevLetter := false
	for _, r := range w {
		if unicode.IsLetter(r) {
			if prevLetter {
				b.WriteRune(unicode.ToLower(r))
			} else {
				b.WriteRune(unicode.ToUpper(r))
			}
			prevLetter = true
			continue
		}
		b.WriteRune(r)
		prevLetter = false
	}
	return b.String()
}
