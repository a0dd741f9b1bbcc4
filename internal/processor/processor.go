// Package processor defines the rule processor contract and runs processors over a
// file classification.
package processor

import (
	"github.com/scan-io-git/magelint/internal/collector"
	"github.com/scan-io-git/magelint/internal/findings"
)

// Processor is one rule.
//
// Process receives the whole classification, not only the TargetFileType bucket, so rules
// can correlate file types. An error returned from Process is a hard failure and stops the
// scan; heuristic misses must be absorbed inside the processor.
type Processor interface {
	Identifier() string
	TargetFileType() string
	Process(classification collector.Classification) error
	FoundCount() int
	Report() []findings.Finding
}

// Base carries the state shared by every rule: descriptive metadata plus the collected
// occurrences. Rules embed it and call Add.
type Base struct {
	ID               string
	Target           string
	Name             string
	ShortDescription string
	LongDescription  string

	occurrences []findings.Occurrence
}

func (b *Base) Identifier() string     { return b.ID }
func (b *Base) TargetFileType() string { return b.Target }
func (b *Base) FoundCount() int        { return len(b.occurrences) }

// Add records an occurrence.
func (b *Base) Add(o findings.Occurrence) {
	b.occurrences = append(b.occurrences, o.Normalize())
}

// Report returns the single finding of this rule.
func (b *Base) Report() []findings.Finding {
	return []findings.Finding{{
		RuleID:           b.ID,
		Name:             b.Name,
		ShortDescription: b.ShortDescription,
		LongDescription:  b.LongDescription,
		Occurrences:      append([]findings.Occurrence(nil), b.occurrences...),
	}}
}
