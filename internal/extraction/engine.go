package extraction

import (
	"fmt"

	"github.com/rs/zerolog"

	"billextract/internal/dedup"
	"billextract/internal/domain"
	"billextract/internal/reconcile"
	"billextract/internal/response"
	"billextract/internal/validator"
)

// Engine runs the full text-to-items pipeline. It keeps no per-request state
// and is safe for concurrent use.
type Engine struct {
	normalizer *Normalizer
	classifier *Classifier
	parser     *Parser
	validator  *validator.Engine
	dedup      *dedup.Deduplicator
	reconciler *reconcile.Engine
	log        zerolog.Logger
}

// NewEngine wires every pipeline stage from h.
func NewEngine(h Heuristics, log zerolog.Logger) *Engine {
	return &Engine{
		normalizer: NewNormalizer(h),
		classifier: NewClassifier(h),
		parser:     NewParser(h),
		validator:  validator.NewDefaultEngine(h.Limits),
		dedup:      dedup.New(h.Dedup),
		reconciler: reconcile.New(h.Reconcile),
		log:        log.With().Str("component", "extraction.Engine").Logger(),
	}
}

// Normalize cleans raw OCR text.
func (e *Engine) Normalize(raw string) string {
	return e.normalizer.Normalize(raw)
}

// ExtractLineItems returns the validated, deduplicated items found in cleaned text.
func (e *Engine) ExtractLineItems(cleaned string) []domain.LineItem {
	return e.scan(cleaned, nil).items
}

// DetectTotal returns the bill total printed in cleaned text, if any.
func (e *Engine) DetectTotal(cleaned string) *float64 {
	return e.scan(cleaned, nil).total
}

// Reconcile sums items and resolves them against detectedTotal.
func (e *Engine) Reconcile(items []domain.LineItem, detectedTotal *float64) *domain.ReconciliationResult {
	return e.reconciler.Reconcile(items, detectedTotal, countPages(items))
}

// Format builds the public response for result.
func (e *Engine) Format(result *domain.ReconciliationResult) *domain.BillExtractionResponse {
	return response.Format(result)
}

// Run executes the pipeline and returns the reconciliation result.
// A panic inside any stage is reported as domain.ErrExtractionPanic.
func (e *Engine) Run(raw string) (res *domain.ReconciliationResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			e.log.Error().Interface("panic", r).Msg("recovered from panic during extraction")
			res = nil
			err = fmt.Errorf("%w: %v", domain.ErrExtractionPanic, r)
		}
	}()

	cleaned := e.Normalize(raw)
	sc := e.scan(cleaned, nil)
	res = e.Reconcile(sc.items, sc.total)

	e.log.Debug().
		Int("lines", sc.lines).
		Int("candidates", sc.candidates).
		Int("parsed", sc.parsed).
		Int("items", len(res.LineItems)).
		Float64("reconciled_amount", res.ReconciledAmount).
		Str("source", string(res.Source)).
		Float64("confidence", res.Confidence).
		Msg("extraction complete")
	return res, nil
}

// Extract runs the pipeline and always returns a response in the mandatory shape.
func (e *Engine) Extract(raw string) *domain.BillExtractionResponse {
	res, err := e.Run(raw)
	if err != nil {
		return response.Failure(response.GenericFailure)
	}
	return e.Format(res)
}

// LineTrace records what the pipeline decided for one normalized line.
type LineTrace struct {
	Index     int                     `json:"index"`
	PageNo    string                  `json:"page_no"`
	Text      string                  `json:"text"`
	Class     string                  `json:"class"`
	Pattern   domain.PatternKind      `json:"pattern,omitempty"`
	Parsed    *domain.ParsedItem      `json:"parsed,omitempty"`
	Accepted  bool                    `json:"accepted"`
	Duplicate bool                    `json:"duplicate"`
	Failures  []validator.ResultEntry `json:"failures,omitempty"`
}

// Trace is the per-line diagnostic view of one extraction.
type Trace struct {
	Cleaned  string                         `json:"cleaned_text"`
	Lines    []LineTrace                    `json:"lines"`
	Result   *domain.ReconciliationResult   `json:"-"`
	Response *domain.BillExtractionResponse `json:"response"`
	Source   domain.ReconciliationSource    `json:"source"`
	Summed   float64                        `json:"summed_amount"`
	Detected *float64                       `json:"detected_total,omitempty"`
	Score    float64                        `json:"confidence"`
}

// Analyze runs the pipeline and records every per-line decision.
func (e *Engine) Analyze(raw string) *Trace {
	cleaned := e.Normalize(raw)
	var lines []LineTrace
	sc := e.scan(cleaned, &lines)
	res := e.Reconcile(sc.items, sc.total)

	kept := make(map[int]bool, len(sc.items))
	for _, idx := range sc.keptLines {
		kept[idx] = true
	}
	for i := range lines {
		if lines[i].Accepted && !kept[lines[i].Index] {
			lines[i].Duplicate = true
		}
	}

	return &Trace{
		Cleaned:  cleaned,
		Lines:    lines,
		Result:   res,
		Response: e.Format(res),
		Source:   res.Source,
		Summed:   res.SummedAmount,
		Detected: res.DetectedTotal,
		Score:    res.Confidence,
	}
}

type scanResult struct {
	items      []domain.LineItem
	keptLines  []int
	total      *float64
	lines      int
	candidates int
	parsed     int
}

func (e *Engine) scan(cleaned string, trace *[]LineTrace) scanResult {
	var (
		sc       scanResult
		accepted []domain.LineItem
		lineIdx  []int
		totals   totalTracker
	)
	pageNo := domain.DefaultPageNo

	for idx, text := range Lines(cleaned) {
		sc.lines++
		class := e.classifier.Classify(text)
		lt := LineTrace{Index: idx, PageNo: pageNo, Text: text, Class: class.String()}

		switch class {
		case ClassPageMarker:
			if n, ok := PageNumber(text); ok {
				pageNo = n
				lt.PageNo = n
			}
		case ClassTotal:
			totals.observe(text)
		case ClassCandidate:
			sc.candidates++
			parsed, ok := e.parser.Parse(domain.CandidateLine{Text: text, Index: idx, PageNo: pageNo})
			if !ok {
				break
			}
			sc.parsed++
			lt.Pattern = parsed.Pattern
			lt.Parsed = &parsed
			if trace != nil {
				lt.Failures = validator.Failures(e.validator.Validate(&parsed))
			}
			if !e.validator.Accept(&parsed) {
				e.log.Debug().Int("line", idx).Str("text", text).Msg("dropped invalid item")
				break
			}
			lt.Accepted = true
			accepted = append(accepted, parsed.LineItem())
			lineIdx = append(lineIdx, idx)
		}

		if trace != nil {
			*trace = append(*trace, lt)
		}
	}

	sc.items = e.dedupWithLines(accepted, lineIdx, &sc.keptLines)
	sc.total = totals.result()
	return sc
}

// dedupWithLines deduplicates items and records which source lines survived.
func (e *Engine) dedupWithLines(items []domain.LineItem, lines []int, kept *[]int) []domain.LineItem {
	out := e.dedup.Dedupe(items)
	j := 0
	for i := range items {
		if j < len(out) && items[i] == out[j] {
			*kept = append(*kept, lines[i])
			j++
		}
	}
	if out == nil {
		out = []domain.LineItem{}
	}
	return out
}

func countPages(items []domain.LineItem) int {
	seen := make(map[string]bool)
	for i := range items {
		seen[items[i].PageNo] = true
	}
	return len(seen)
}
