package domain

// PatternKind identifies which line layout produced a parsed item.
type PatternKind string

const (
	PatternQtyTimesRate  PatternKind = "qty_x_rate"
	PatternRateQtyAmount PatternKind = "rate_qty_amount"
	PatternQtyRateAmount PatternKind = "qty_rate_amount"
	PatternSingleAmount  PatternKind = "single_amount"
)

// DedupMode selects how duplicate line items are detected.
type DedupMode string

const (
	DedupExact DedupMode = "exact"
	DedupFuzzy DedupMode = "fuzzy"
)

// ValidDedupModes lists the accepted dedup modes.
var ValidDedupModes = map[DedupMode]bool{
	DedupExact: true,
	DedupFuzzy: true,
}

// ReconcilePolicy decides which amount wins when the detected bill total
// disagrees with the sum of the extracted items.
type ReconcilePolicy string

const (
	PolicyPreferDetected ReconcilePolicy = "prefer_detected"
	PolicyPreferSummed   ReconcilePolicy = "prefer_summed"
)

// ValidReconcilePolicies lists the accepted reconcile policies.
var ValidReconcilePolicies = map[ReconcilePolicy]bool{
	PolicyPreferDetected: true,
	PolicyPreferSummed:   true,
}

// ReconciliationSource records where the reconciled amount came from.
type ReconciliationSource string

const (
	SourceSummed        ReconciliationSource = "summed"
	SourceDetectedTotal ReconciliationSource = "detected_total"
)

// ValidationRuleType categorises line item validation rules.
type ValidationRuleType string

const (
	ValidationRuleRequired ValidationRuleType = "required_field"
	ValidationRuleRange    ValidationRuleType = "range"
	ValidationRuleSumCheck ValidationRuleType = "sum_check"
)

// ValidationSeverity is the severity of a failed rule.
type ValidationSeverity string

const (
	ValidationSeverityError   ValidationSeverity = "error"
	ValidationSeverityWarning ValidationSeverity = "warning"
)

// AllowedContentTypes maps the document MIME types the service can turn into text.
var AllowedContentTypes = map[string]bool{
	"application/pdf": true,
	"image/jpeg":      true,
	"image/png":       true,
	"image/webp":      true,
	"text/plain":      true,
}

// DefaultPageNo is the page number used when a document carries no page markers.
const DefaultPageNo = "1"
