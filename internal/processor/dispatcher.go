package processor

import (
	"fmt"

	"github.com/hashicorp/go-hclog"

	"github.com/scan-io-git/magelint/internal/collector"
	"github.com/scan-io-git/magelint/internal/findings"
)

// DispatchOptions controls which processors run.
type DispatchOptions struct {
	FixableOnly bool
	// Fixable is the set of rule ids the remote fixer can rewrite; only read when FixableOnly is set.
	Fixable map[string]bool
}

// Stats summarises a dispatch.
type Stats struct {
	Ran     []string
	Skipped []string
	Found   int
}

// Dispatcher feeds processors a classification and merges their findings.
type Dispatcher struct {
	logger hclog.Logger
}

// NewDispatcher creates a Dispatcher.
func NewDispatcher(logger hclog.Logger) *Dispatcher {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Dispatcher{logger: logger}
}

// Dispatch runs processors in the given order and merges every finding into report.
// A processor error aborts the dispatch; findings merged before it stay in report.
func (d *Dispatcher) Dispatch(processors []Processor, classification collector.Classification, report *findings.Report, opts DispatchOptions) (Stats, error) {
	var stats Stats
	for _, p := range processors {
		id := p.Identifier()

		if reason := skipReason(p, classification, opts); reason != "" {
			d.logger.Debug("skipping processor", "processor", id, "reason", reason)
			stats.Skipped = append(stats.Skipped, id)
			continue
		}

		d.logger.Debug("running processor", "processor", id, "target", p.TargetFileType())
		if err := p.Process(classification); err != nil {
			return stats, fmt.Errorf("processor %s failed: %w", id, err)
		}
		stats.Ran = append(stats.Ran, id)

		found := p.FoundCount()
		if found == 0 {
			continue
		}
		stats.Found += found
		for _, f := range p.Report() {
			report.Add(f)
		}
		d.logger.Debug("processor reported findings", "processor", id, "found", found)
	}

	d.logger.Info("dispatch finished", "ran", len(stats.Ran), "skipped", len(stats.Skipped), "found", stats.Found)
	return stats, nil
}

func skipReason(p Processor, classification collector.Classification, opts DispatchOptions) string {
	if opts.FixableOnly && !opts.Fixable[p.Identifier()] {
		return "not fixable"
	}
	if !classification.Has(p.TargetFileType()) {
		return "no target files"
	}
	return ""
}
