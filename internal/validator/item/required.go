package item

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"billextract/internal/domain"
)

// requiredFieldValidator checks that a text field is present with a minimum length.
type requiredFieldValidator struct {
	ruleKey   string
	ruleName  string
	fieldPath string
	minLength int
	extract   func(*domain.ParsedItem) string
}

func (v *requiredFieldValidator) RuleKey() string  { return v.ruleKey }
func (v *requiredFieldValidator) RuleName() string { return v.ruleName }
func (v *requiredFieldValidator) RuleType() domain.ValidationRuleType {
	return domain.ValidationRuleRequired
}
func (v *requiredFieldValidator) Severity() domain.ValidationSeverity {
	return domain.ValidationSeverityError
}

func (v *requiredFieldValidator) Validate(it *domain.ParsedItem) []ValidationResult {
	val := strings.TrimSpace(v.extract(it))
	passed := utf8.RuneCountInString(val) >= v.minLength
	return []ValidationResult{{
		Passed:        passed,
		FieldPath:     v.fieldPath,
		ExpectedValue: fmt.Sprintf("at least %d characters", v.minLength),
		ActualValue:   val,
		Message:       fieldMessage(passed, v.ruleName, v.fieldPath),
	}}
}

func fieldMessage(passed bool, ruleName, fieldPath string) string {
	if passed {
		return fmt.Sprintf("%s: %s is present", ruleName, fieldPath)
	}
	return fmt.Sprintf("%s: %s is missing or too short", ruleName, fieldPath)
}

// RequiredFieldValidators returns the text presence checks.
func RequiredFieldValidators(l Limits) []*requiredFieldValidator {
	minLen := l.MinNameLength
	if minLen < 1 {
		minLen = 1
	}
	return []*requiredFieldValidator{
		{
			ruleKey: "required.item_name", ruleName: "Required: Item Name", fieldPath: "item_name",
			minLength: minLen,
			extract:   func(it *domain.ParsedItem) string { return it.Name },
		},
	}
}
