package item

import (
	"fmt"

	"billextract/internal/domain"
)

// rangeValidator checks that a numeric field lies within [min, max].
type rangeValidator struct {
	ruleKey   string
	ruleName  string
	fieldPath string
	min, max  float64
	extract   func(*domain.ParsedItem) float64
}

func (v *rangeValidator) RuleKey() string                     { return v.ruleKey }
func (v *rangeValidator) RuleName() string                    { return v.ruleName }
func (v *rangeValidator) RuleType() domain.ValidationRuleType { return domain.ValidationRuleRange }
func (v *rangeValidator) Severity() domain.ValidationSeverity { return domain.ValidationSeverityError }

func (v *rangeValidator) Validate(it *domain.ParsedItem) []ValidationResult {
	val := v.extract(it)
	passed := val >= v.min && val <= v.max
	expected := fmt.Sprintf("%s..%s", fmtf(v.min), fmtf(v.max))
	msg := fmt.Sprintf("%s: %s within range", v.ruleName, v.fieldPath)
	if !passed {
		msg = fmt.Sprintf("%s: %s out of range (expected %s, got %s)", v.ruleName, v.fieldPath, expected, fmtf(val))
	}
	return []ValidationResult{{
		Passed: passed, FieldPath: v.fieldPath,
		ExpectedValue: expected, ActualValue: fmtf(val), Message: msg,
	}}
}

// RangeValidators returns the quantity, rate and amount range checks.
func RangeValidators(l Limits) []*rangeValidator {
	return []*rangeValidator{
		{
			ruleKey: "range.quantity", ruleName: "Range: Quantity", fieldPath: "item_quantity",
			min: l.QuantityMin, max: l.QuantityMax,
			extract: func(it *domain.ParsedItem) float64 { return it.Quantity },
		},
		{
			ruleKey: "range.rate", ruleName: "Range: Rate", fieldPath: "item_rate",
			min: l.RateMin, max: l.RateMax,
			extract: func(it *domain.ParsedItem) float64 { return it.Rate },
		},
		{
			ruleKey: "range.amount", ruleName: "Range: Amount", fieldPath: "item_amount",
			min: l.AmountMin, max: l.AmountMax,
			extract: func(it *domain.ParsedItem) float64 { return it.Amount },
		},
	}
}
