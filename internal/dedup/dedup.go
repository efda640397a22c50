package dedup

import (
	"strconv"
	"strings"

	"billextract/internal/domain"
)

// DefaultThreshold is the combined similarity above which two names are the same item.
const DefaultThreshold = 0.85

// Options configures a Deduplicator.
type Options struct {
	Mode domain.DedupMode
	// Threshold accepts either a 0-1 fraction or a 0-100 percentage.
	Threshold float64
}

// DefaultOptions returns fuzzy matching at DefaultThreshold.
func DefaultOptions() Options {
	return Options{Mode: domain.DedupFuzzy, Threshold: DefaultThreshold}
}

// Deduplicator removes repeated line items, keeping the first occurrence.
type Deduplicator struct {
	mode      domain.DedupMode
	threshold float64
}

// New creates a Deduplicator. Unknown modes fall back to fuzzy matching.
func New(opts Options) *Deduplicator {
	mode := opts.Mode
	if !domain.ValidDedupModes[mode] {
		mode = domain.DedupFuzzy
	}
	threshold := opts.Threshold
	if threshold > 1 {
		threshold /= 100
	}
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Deduplicator{mode: mode, threshold: threshold}
}

// Mode returns the active dedup mode.
func (d *Deduplicator) Mode() domain.DedupMode { return d.mode }

// Dedupe returns items with duplicates removed. Input order is preserved.
func (d *Deduplicator) Dedupe(items []domain.LineItem) []domain.LineItem {
	out := make([]domain.LineItem, 0, len(items))
	seen := make(map[string]bool, len(items))

	for i := range items {
		it := items[i]
		key := Key(&it)
		if seen[key] {
			continue
		}
		if d.mode == domain.DedupFuzzy && d.similarToKept(it.Name, out) {
			continue
		}
		seen[key] = true
		out = append(out, it)
	}
	return out
}

// IsDuplicate reports whether b repeats a under the active mode.
func (d *Deduplicator) IsDuplicate(a, b *domain.LineItem) bool {
	if Key(a) == Key(b) {
		return true
	}
	return d.mode == domain.DedupFuzzy && Similarity(a.Name, b.Name) > d.threshold
}

func (d *Deduplicator) similarToKept(name string, kept []domain.LineItem) bool {
	for i := range kept {
		if Similarity(name, kept[i].Name) > d.threshold {
			return true
		}
	}
	return false
}

// Key is the exact-match identity of a line item: lowercased trimmed name, quantity and rate.
func Key(it *domain.LineItem) string {
	return strings.ToLower(strings.TrimSpace(it.Name)) + "|" +
		strconv.FormatFloat(it.Quantity, 'f', -1, 64) + "|" +
		strconv.FormatFloat(it.Rate, 'f', -1, 64)
}
