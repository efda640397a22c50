package reconcile

import (
	"math"
	"strings"

	"billextract/internal/domain"
	"billextract/internal/validator/item"
)

// ConfidenceWeights holds the weight of each confidence factor.
// Completeness and Consistency are fractions in [0,1] scaled by their weight;
// the bonuses are added flat when their condition holds.
type ConfidenceWeights struct {
	Completeness        float64
	Consistency         float64
	StructuralBonus     float64
	TotalAgreementBonus float64
	Cap                 float64
}

// DefaultWeights are the standard confidence weights.
var DefaultWeights = ConfidenceWeights{
	Completeness:        0.45,
	Consistency:         0.45,
	StructuralBonus:     0.05,
	TotalAgreementBonus: 0.05,
	Cap:                 0.95,
}

// ConfidenceFactors holds the score of each factor before weighting.
type ConfidenceFactors struct {
	Completeness   float64 `json:"completeness"`
	Consistency    float64 `json:"consistency"`
	MultiPage      bool    `json:"multi_page"`
	TotalAgreement bool    `json:"total_agreement"`
}

// Score combines the factors with the weights and clamps the result to [0, Cap].
func (w ConfidenceWeights) Score(f ConfidenceFactors) float64 {
	score := f.Completeness*w.Completeness + f.Consistency*w.Consistency
	if f.MultiPage {
		score += w.StructuralBonus
	}
	if f.TotalAgreement {
		score += w.TotalAgreementBonus
	}
	score = math.Max(0, math.Min(score, w.Cap))
	return math.Round(score*100) / 100
}

func completeness(items []domain.LineItem) float64 {
	if len(items) == 0 {
		return 0
	}
	complete := 0
	for i := range items {
		if strings.TrimSpace(items[i].Name) != "" && items[i].Amount > 0 {
			complete++
		}
	}
	return float64(complete) / float64(len(items))
}

func consistency(items []domain.LineItem, tol item.Tolerance) float64 {
	if len(items) == 0 {
		return 0
	}
	ok := 0
	for i := range items {
		if item.ArithmeticConsistent(items[i].Quantity, items[i].Rate, items[i].Amount, tol) {
			ok++
		}
	}
	return float64(ok) / float64(len(items))
}
