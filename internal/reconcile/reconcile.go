package reconcile

import (
	"math"

	"github.com/shopspring/decimal"

	"billextract/internal/domain"
	"billextract/internal/validator/item"
)

// Options configures the reconciliation policy.
// A detected total agrees with the summed amount when they differ by at most
// max(AbsTolerance, RelTolerance×summed).
type Options struct {
	Policy               domain.ReconcilePolicy
	AbsTolerance         float64
	RelTolerance         float64
	ConsistencyTolerance item.Tolerance
	Weights              ConfidenceWeights
}

// DefaultOptions prefers an explicit bill total over the item sum when they disagree.
func DefaultOptions() Options {
	return Options{
		Policy:               domain.PolicyPreferDetected,
		AbsTolerance:         1.0,
		RelTolerance:         0.01,
		ConsistencyTolerance: item.DefaultLimits().Tolerance,
		Weights:              DefaultWeights,
	}
}

// Engine reconciles extracted items against an optional detected total.
type Engine struct {
	opts Options
}

// New creates a reconciliation Engine. An unknown policy falls back to PolicyPreferDetected.
func New(opts Options) *Engine {
	if !domain.ValidReconcilePolicies[opts.Policy] {
		opts.Policy = domain.PolicyPreferDetected
	}
	return &Engine{opts: opts}
}

// Policy returns the active resolution policy.
func (e *Engine) Policy() domain.ReconcilePolicy { return e.opts.Policy }

// Sum adds item amounts in decimal arithmetic and returns the result rounded to cents.
func Sum(items []domain.LineItem) float64 {
	total := decimal.Zero
	for i := range items {
		amt := items[i].Amount
		if math.IsNaN(amt) || math.IsInf(amt, 0) {
			continue
		}
		total = total.Add(decimal.NewFromFloat(amt))
	}
	return total.Round(2).InexactFloat64()
}

// Agrees reports whether detected is within tolerance of summed.
func (e *Engine) Agrees(summed, detected float64) bool {
	tol := math.Max(e.opts.AbsTolerance, e.opts.RelTolerance*math.Abs(summed))
	diff := decimal.NewFromFloat(detected).Sub(decimal.NewFromFloat(summed)).Abs()
	return diff.LessThanOrEqual(decimal.NewFromFloat(tol))
}

// Reconcile computes the reconciled amount and confidence for items.
// pageCount is the number of distinct pages the items were found on.
func (e *Engine) Reconcile(items []domain.LineItem, detectedTotal *float64, pageCount int) *domain.ReconciliationResult {
	if items == nil {
		items = []domain.LineItem{}
	}
	summed := Sum(items)
	res := &domain.ReconciliationResult{
		LineItems:        items,
		SummedAmount:     summed,
		ReconciledAmount: summed,
		Source:           domain.SourceSummed,
		PageCount:        pageCount,
	}

	var detected *float64
	if detectedTotal != nil && !math.IsNaN(*detectedTotal) && !math.IsInf(*detectedTotal, 0) && *detectedTotal > 0 {
		v := *detectedTotal
		detected = &v
	}
	res.DetectedTotal = detected

	agreement := false
	if detected != nil {
		agreement = e.Agrees(summed, *detected)
		if !agreement && e.opts.Policy == domain.PolicyPreferDetected {
			res.ReconciledAmount = *detected
			res.Source = domain.SourceDetectedTotal
		}
	}

	if len(items) > 0 {
		res.Confidence = e.opts.Weights.Score(ConfidenceFactors{
			Completeness:   completeness(items),
			Consistency:    consistency(items, e.opts.ConsistencyTolerance),
			MultiPage:      pageCount > 1,
			TotalAgreement: agreement,
		})
	}
	return res
}
