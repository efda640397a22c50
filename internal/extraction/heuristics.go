package extraction

import (
	"billextract/internal/dedup"
	"billextract/internal/reconcile"
	"billextract/internal/validator/item"
)

// Substitution replaces every occurrence of Old with New during normalization.
type Substitution struct {
	Old string `mapstructure:"old" yaml:"old"`
	New string `mapstructure:"new" yaml:"new"`
}

// DefaultSubstitutions is the standard OCR repair table: pipes read as ones,
// currency glyphs become separators and trademark marks are dropped.
var DefaultSubstitutions = []Substitution{
	{Old: "|", New: "1"},
	{Old: "€", New: " "},
	{Old: "$", New: " "},
	{Old: "£", New: " "},
	{Old: "₹", New: " "},
	{Old: "®", New: ""},
	{Old: "™", New: ""},
}

// DefaultAbbreviations are the medical tokens kept upper-case in item names.
var DefaultAbbreviations = []string{"TAB", "CAP", "SYR", "INJ", "MG", "ML", "GM", "KG"}

// Heuristics gathers every tunable constant of the extraction pipeline.
type Heuristics struct {
	Substitutions         []Substitution
	UnicodeFold           bool
	RepairDigitConfusions bool
	MinLineLength         int
	ExtraExclusions       []string
	Abbreviations         []string
	Limits                item.Limits
	Dedup                 dedup.Options
	Reconcile             reconcile.Options
}

// DefaultHeuristics returns the tuned defaults for printed medical bills.
func DefaultHeuristics() Heuristics {
	return Heuristics{
		Substitutions:         append([]Substitution(nil), DefaultSubstitutions...),
		UnicodeFold:           true,
		RepairDigitConfusions: true,
		MinLineLength:         3,
		Abbreviations:         append([]string(nil), DefaultAbbreviations...),
		Limits:                item.DefaultLimits(),
		Dedup:                 dedup.DefaultOptions(),
		Reconcile:             reconcile.DefaultOptions(),
	}
}
