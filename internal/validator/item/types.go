package item

import "math"

// ValidationResult is a local alias to avoid import cycles.
type ValidationResult struct {
	Passed        bool
	FieldPath     string
	ExpectedValue string
	ActualValue   string
	Message       string
}

// Tolerance bounds the allowed gap between rate×quantity and the printed amount.
// The effective tolerance is the larger of Abs and Rel×amount.
type Tolerance struct {
	Abs float64
	Rel float64
}

// For returns the tolerance that applies to the given amount.
func (t Tolerance) For(amount float64) float64 {
	return math.Max(t.Abs, t.Rel*math.Abs(amount))
}

// Limits holds the accepted ranges for a line item.
type Limits struct {
	QuantityMin   float64
	QuantityMax   float64
	RateMin       float64
	RateMax       float64
	AmountMin     float64
	AmountMax     float64
	MinNameLength int
	Tolerance     Tolerance
}

// DefaultLimits returns the limits used for printed medical bills.
func DefaultLimits() Limits {
	return Limits{
		QuantityMin:   1,
		QuantityMax:   1000,
		RateMin:       0.01,
		RateMax:       10000,
		AmountMin:     0.01,
		AmountMax:     50000,
		MinNameLength: 2,
		Tolerance:     Tolerance{Abs: 1.0, Rel: 0.05},
	}
}

// ArithmeticConsistent reports whether round(rate×qty, 2) matches amount within tol.
func ArithmeticConsistent(qty, rate, amount float64, tol Tolerance) bool {
	expected := roundCents(rate * qty)
	return math.Abs(expected-amount) <= tol.For(amount)
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
