package extraction

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// LineClass is the classifier's verdict for a single normalized line.
type LineClass int

const (
	ClassNoise LineClass = iota
	ClassExcluded
	ClassTotal
	ClassPageMarker
	ClassCandidate
)

func (c LineClass) String() string {
	switch c {
	case ClassExcluded:
		return "excluded"
	case ClassTotal:
		return "total"
	case ClassPageMarker:
		return "page_marker"
	case ClassCandidate:
		return "candidate"
	default:
		return "noise"
	}
}

var (
	pageMarkerPattern = regexp.MustCompile(`(?i)^page\s*(?:no\.?\s*)?:?\s*(\d+)(?:\s*(?:of|/)\s*\d+)?$`)

	excludePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\binvoice\b`),
		regexp.MustCompile(`(?i)\b(bill|receipt)\s*(no|number|#|date)\b`),
		regexp.MustCompile(`(?i)\b(date|time|phone|mobile|tel|contact|e-?mail|address|website)\b`),
		regexp.MustCompile(`(?i)\b(customer|patient|doctor|consultant|uhid|mrn)\b`),
		regexp.MustCompile(`(?i)\bdr\.\s*\w`),
		regexp.MustCompile(`(?i)\bref(\.|erred)?\s*by\b`),
		regexp.MustCompile(`(?i)\b(gstin|gst|cgst|sgst|igst|tax|vat|cess)\b`),
		regexp.MustCompile(`(?i)\btotal\b`),
		regexp.MustCompile(`(?i)\b(balance|due|paid|advance|refund|discount|round\s*off|rounding)\b`),
		regexp.MustCompile(`(?i)\b(thank\s*you|signature|authori[sz]ed|in\s*words|rupees\s+\w+\s+only)\b`),
		regexp.MustCompile(`(?i)^amount\b`),
		regexp.MustCompile(`(?i)^\d{1,2}[-/.\s][a-z]{3,9}[-/.\s]\d{2,4}$`),
	}

	positivePatterns = []*regexp.Regexp{
		regexp.MustCompile(`\d+\.\d{2}\b`),
		regexp.MustCompile(`\d+\s*[xX×*]\s*\d+`),
		regexp.MustCompile(`(?i)\b(qty|quantity|rate|amount|mrp|price)\b`),
		regexp.MustCompile(`(?i)\b(tab|tabs|tablet|cap|caps|capsule|syr|syp|syrup|inj|injection|strip|vial|amp|cream|gel|drops?|ointment|sachet)\b`),
		regexp.MustCompile(`(?i)\d\s*(mg|ml|gm|kg|mcg|iu)\b`),
	}
)

// Classifier decides which normalized lines may describe a billable item.
type Classifier struct {
	minLength int
	extra     []*regexp.Regexp
}

// NewClassifier builds a Classifier from h. ExtraExclusions are matched as whole words.
func NewClassifier(h Heuristics) *Classifier {
	minLen := h.MinLineLength
	if minLen <= 0 {
		minLen = 3
	}
	var extra []*regexp.Regexp
	for _, kw := range h.ExtraExclusions {
		kw = strings.TrimSpace(kw)
		if kw == "" {
			continue
		}
		extra = append(extra, regexp.MustCompile(`(?i)\b`+regexp.QuoteMeta(kw)+`\b`))
	}
	return &Classifier{minLength: minLen, extra: extra}
}

// Classify returns the class of one normalized line.
// Exclusions are checked before positive indicators, so "Total 1560.95" is never a candidate.
func (c *Classifier) Classify(line string) LineClass {
	line = strings.TrimSpace(line)
	if pageMarkerPattern.MatchString(line) {
		return ClassPageMarker
	}
	if utf8.RuneCountInString(line) < c.minLength || !hasLetter(line) {
		return ClassNoise
	}
	if isTotalLine(line) {
		return ClassTotal
	}
	if subTotalPattern.MatchString(line) {
		return ClassExcluded
	}
	for _, re := range excludePatterns {
		if re.MatchString(line) {
			return ClassExcluded
		}
	}
	for _, re := range c.extra {
		if re.MatchString(line) {
			return ClassExcluded
		}
	}
	for _, re := range positivePatterns {
		if re.MatchString(line) {
			return ClassCandidate
		}
	}
	return ClassNoise
}

// PageNumber returns the page number announced by a page marker line.
func PageNumber(line string) (string, bool) {
	m := pageMarkerPattern.FindStringSubmatch(strings.TrimSpace(line))
	if m == nil {
		return "", false
	}
	n := strings.TrimLeft(m[1], "0")
	if n == "" {
		return "", false
	}
	return n, true
}

func hasLetter(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}
