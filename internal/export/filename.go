package export

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

var (
	nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)
	multiUnderscore = regexp.MustCompile(`_{2,}`)
)

// SanitizeFilename replaces characters other than letters, digits, - and _
// with _, collapses repeated underscores and truncates to 100 chars.
func SanitizeFilename(name string) string {
	s := nonAlphanumeric.ReplaceAllString(name, "_")
	s = multiUnderscore.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if len(s) > 100 {
		s = s[:100]
	}
	return s
}

// BuildFilename derives an output file name from a source path and format,
// e.g. "scans/bill 01.txt" with "csv" gives "bill_01.csv". Stdin ("-") maps to "bill".
func BuildFilename(source, format string) string {
	var name string
	if source != "-" {
		name = SanitizeFilename(strings.TrimSuffix(filepath.Base(source), filepath.Ext(source)))
	}
	if name == "" {
		name = "bill"
	}
	return fmt.Sprintf("%s.%s", name, format)
}
