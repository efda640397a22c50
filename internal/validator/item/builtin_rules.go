package item

import (
	"billextract/internal/domain"
)

// BuiltinValidator wraps a validator function and its metadata for the registry.
type BuiltinValidator struct {
	key      string
	name     string
	ruleType domain.ValidationRuleType
	sev      domain.ValidationSeverity
	fn       func(*domain.ParsedItem) []ValidationResult
}

func (b *BuiltinValidator) Validate(it *domain.ParsedItem) []ValidationResult {
	return b.fn(it)
}
func (b *BuiltinValidator) RuleKey() string                     { return b.key }
func (b *BuiltinValidator) RuleName() string                    { return b.name }
func (b *BuiltinValidator) RuleType() domain.ValidationRuleType { return b.ruleType }
func (b *BuiltinValidator) Severity() domain.ValidationSeverity { return b.sev }

type rule interface {
	Validate(*domain.ParsedItem) []ValidationResult
	RuleKey() string
	RuleName() string
	RuleType() domain.ValidationRuleType
	Severity() domain.ValidationSeverity
}

func wrap(r rule) *BuiltinValidator {
	return &BuiltinValidator{
		key: r.RuleKey(), name: r.RuleName(),
		ruleType: r.RuleType(), sev: r.Severity(),
		fn: r.Validate,
	}
}

// AllBuiltinValidators returns all built-in line item validators in evaluation order.
func AllBuiltinValidators(l Limits) []*BuiltinValidator {
	reqVals := RequiredFieldValidators(l)
	rangeVals := RangeValidators(l)
	mathVals := MathValidators(l)
	all := make([]*BuiltinValidator, 0, len(reqVals)+len(rangeVals)+len(mathVals))

	for _, v := range reqVals {
		all = append(all, wrap(v))
	}
	for _, v := range rangeVals {
		all = append(all, wrap(v))
	}
	for _, v := range mathVals {
		all = append(all, wrap(v))
	}
	return all
}
