package item

import (
	"fmt"

	"billextract/internal/domain"
)

// mathValidator checks arithmetic relationships between fields.
type mathValidator struct {
	ruleKey  string
	ruleName string
	severity domain.ValidationSeverity
	validate func(*domain.ParsedItem) []ValidationResult
}

func (v *mathValidator) RuleKey() string                     { return v.ruleKey }
func (v *mathValidator) RuleName() string                    { return v.ruleName }
func (v *mathValidator) RuleType() domain.ValidationRuleType { return domain.ValidationRuleSumCheck }
func (v *mathValidator) Severity() domain.ValidationSeverity { return v.severity }

func (v *mathValidator) Validate(it *domain.ParsedItem) []ValidationResult {
	return v.validate(it)
}

func mathResult(passed bool, fieldPath, expected, actual, ruleName string) ValidationResult {
	msg := fmt.Sprintf("%s: %s calculation matches", ruleName, fieldPath)
	if !passed {
		msg = fmt.Sprintf("%s: %s calculation mismatch (expected %s, got %s)", ruleName, fieldPath, expected, actual)
	}
	return ValidationResult{
		Passed: passed, FieldPath: fieldPath,
		ExpectedValue: expected, ActualValue: actual, Message: msg,
	}
}

func fmtf(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

// MathValidators returns all arithmetic validators.
func MathValidators(l Limits) []*mathValidator {
	return []*mathValidator{
		{
			ruleKey: "math.line_item.amount", ruleName: "Math: Line Item Amount",
			severity: domain.ValidationSeverityError,
			validate: func(it *domain.ParsedItem) []ValidationResult {
				expected := roundCents(it.Rate * it.Quantity)
				passed := ArithmeticConsistent(it.Quantity, it.Rate, it.Amount, l.Tolerance)
				return []ValidationResult{mathResult(passed, "item_amount", fmtf(expected), fmtf(it.Amount), "Math: Line Item Amount")}
			},
		},
	}
}
