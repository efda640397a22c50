package validator

import (
	"billextract/internal/domain"
	"billextract/internal/validator/item"
)

// Validator is the interface for a single built-in line item rule.
type Validator interface {
	Validate(it *domain.ParsedItem) []item.ValidationResult
	RuleKey() string
	RuleName() string
	RuleType() domain.ValidationRuleType
	Severity() domain.ValidationSeverity
}
