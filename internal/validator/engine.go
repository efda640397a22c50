package validator

import (
	"billextract/internal/domain"
	"billextract/internal/validator/item"
)

// ResultEntry is a single rule outcome for one parsed item.
type ResultEntry struct {
	RuleKey       string                    `json:"rule_key"`
	RuleName      string                    `json:"rule_name"`
	RuleType      domain.ValidationRuleType `json:"rule_type"`
	Severity      domain.ValidationSeverity `json:"severity"`
	Passed        bool                      `json:"passed"`
	FieldPath     string                    `json:"field_path"`
	ExpectedValue string                    `json:"expected_value"`
	ActualValue   string                    `json:"actual_value"`
	Message       string                    `json:"message"`
}

// Engine runs every registered rule against parsed line items.
// It holds no mutable state and is safe for concurrent use.
type Engine struct {
	registry *Registry
}

// NewEngine creates a new validation engine.
func NewEngine(registry *Registry) *Engine {
	return &Engine{registry: registry}
}

// NewDefaultEngine creates an engine with all built-in rules for the given limits.
func NewDefaultEngine(l item.Limits) *Engine {
	reg := NewRegistry()
	for _, v := range item.AllBuiltinValidators(l) {
		reg.Register(v)
	}
	return NewEngine(reg)
}

// Validate returns every rule outcome for the item.
func (e *Engine) Validate(it *domain.ParsedItem) []ResultEntry {
	var out []ResultEntry
	for _, v := range e.registry.All() {
		for _, r := range v.Validate(it) {
			out = append(out, ResultEntry{
				RuleKey:       v.RuleKey(),
				RuleName:      v.RuleName(),
				RuleType:      v.RuleType(),
				Severity:      v.Severity(),
				Passed:        r.Passed,
				FieldPath:     r.FieldPath,
				ExpectedValue: r.ExpectedValue,
				ActualValue:   r.ActualValue,
				Message:       r.Message,
			})
		}
	}
	return out
}

// Accept reports whether the item passes every error-severity rule.
func (e *Engine) Accept(it *domain.ParsedItem) bool {
	for _, v := range e.registry.All() {
		if v.Severity() != domain.ValidationSeverityError {
			continue
		}
		for _, r := range v.Validate(it) {
			if !r.Passed {
				return false
			}
		}
	}
	return true
}

// Failures returns only the failed outcomes.
func Failures(entries []ResultEntry) []ResultEntry {
	var out []ResultEntry
	for _, e := range entries {
		if !e.Passed {
			out = append(out, e)
		}
	}
	return out
}
