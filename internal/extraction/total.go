package extraction

import (
	"regexp"
)

// Total line priorities. A higher priority wins; among equals the last line wins.
const (
	priorityNone = iota
	priorityTotal
	priorityGrandTotal
)

var (
	subTotalPattern   = regexp.MustCompile(`(?i)\bsub[\s\-.]*total\b`)
	grandTotalPattern = regexp.MustCompile(`(?i)\b(grand\s*total|net\s*(amount|payable|total)|amount\s*payable|total\s*payable|bill\s*amount|total\s*amount|total\s*bill)\b`)
	totalPattern      = regexp.MustCompile(`(?i)\btotal\b`)
	totalCountPattern = regexp.MustCompile(`(?i)\btotal\s*(qty|quantity|items?|nos?\.?)\b`)
	totalTaxPattern   = regexp.MustCompile(`(?i)\btotal\s*(gst|cgst|sgst|igst|tax|vat|cess|discount)\b`)
	moneyPattern      = regexp.MustCompile(`\d[\d,]*(?:\.\d+)?`)
)

func totalPriority(line string) int {
	if subTotalPattern.MatchString(line) || totalCountPattern.MatchString(line) || totalTaxPattern.MatchString(line) {
		return priorityNone
	}
	if grandTotalPattern.MatchString(line) {
		return priorityGrandTotal
	}
	if totalPattern.MatchString(line) {
		return priorityTotal
	}
	return priorityNone
}

func isTotalLine(line string) bool {
	return totalPriority(line) != priorityNone
}

// DetectTotal extracts a bill total from a single line. It returns false for
// subtotals, quantity or tax totals and lines without an amount.
func DetectTotal(line string) (value float64, priority int, ok bool) {
	priority = totalPriority(line)
	if priority == priorityNone {
		return 0, priorityNone, false
	}
	nums := moneyPattern.FindAllString(line, -1)
	if len(nums) == 0 {
		return 0, priorityNone, false
	}
	value = ParseNumber(nums[len(nums)-1])
	if value <= 0 {
		return 0, priorityNone, false
	}
	return value, priority, true
}

// totalTracker keeps the best total seen while scanning a document.
type totalTracker struct {
	value    float64
	priority int
}

func (t *totalTracker) observe(line string) {
	v, p, ok := DetectTotal(line)
	if !ok {
		return
	}
	if p >= t.priority {
		t.value = v
		t.priority = p
	}
}

func (t *totalTracker) result() *float64 {
	if t.priority == priorityNone {
		return nil
	}
	v := t.value
	return &v
}
