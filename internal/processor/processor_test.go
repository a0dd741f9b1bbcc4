package processor

import (
	stderrors "errors"
	"testing"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scan-io-git/magelint/internal/collector"
	"github.com/scan-io-git/magelint/internal/findings"
	"github.com/scan-io-git/magelint/internal/heuristics"
)

type fakeProcessor struct {
	Base
	emit  int
	err   error
	calls int
}

func (f *fakeProcessor) Process(collector.Classification) error {
	f.calls++
	if f.err != nil {
		return f.err
	}
	for i := 0; i < f.emit; i++ {
		f.Add(findings.Occurrence{File: "/a.php", StartLine: i + 1, Message: "m", Severity: findings.SeverityWarning})
	}
	return nil
}

func newFake(id, target string, emit int) *fakeProcessor {
	return &fakeProcessor{Base: Base{ID: id, Target: target, Name: id}, emit: emit}
}

func factoryOf(p Processor) Factory {
	return func(*heuristics.Session, hclog.Logger) (Processor, error) { return p, nil }
}

func TestRegistryBuildsInLexicographicOrder(t *testing.T) {
	registry := NewRegistry(
		Registration{ID: "zeta", Factory: factoryOf(newFake("zeta", "php", 0))},
		Registration{ID: "alpha", Factory: factoryOf(newFake("alpha", "php", 0))},
		Registration{ID: "mid", Factory: factoryOf(newFake("mid", "php", 0))},
	)

	processors, diagnostics := registry.Build(heuristics.NewSession(nil), nil)
	assert.Empty(t, diagnostics)

	var ids []string
	for _, p := range processors {
		ids = append(ids, p.Identifier())
	}
	assert.Equal(t, []string{"alpha", "mid", "zeta"}, ids)
	assert.Equal(t, ids, registry.IDs())
}

func TestRegistryCollectsDiagnostics(t *testing.T) {
	registry := NewRegistry(
		Registration{ID: "ok", Factory: factoryOf(newFake("ok", "php", 0))},
		Registration{ID: "broken", Factory: func(*heuristics.Session, hclog.Logger) (Processor, error) {
			return nil, stderrors.New("boom")
		}},
		Registration{ID: "panics", Factory: func(*heuristics.Session, hclog.Logger) (Processor, error) {
			panic("bad wiring")
		}},
		Registration{ID: "nil", Factory: nil},
		Registration{ID: "ok", Factory: factoryOf(newFake("ok", "php", 0))},
		Registration{ID: "renamed", Factory: factoryOf(newFake("other", "php", 0))},
	)

	processors, diagnostics := registry.Build(heuristics.NewSession(nil), nil)
	require.Len(t, processors, 1)
	assert.Equal(t, "ok", processors[0].Identifier())

	failed := map[string]string{}
	for _, d := range diagnostics {
		failed[d.ID] = d.Err.Error()
	}
	assert.Equal(t, "boom", failed["broken"])
	assert.Contains(t, failed["panics"], "bad wiring")
	assert.Contains(t, failed, "nil")
	assert.Contains(t, failed["ok"], "duplicate")
	assert.Contains(t, failed["renamed"], "other")
}

func TestDispatchMergesFindings(t *testing.T) {
	classification := collector.Classification{"php": {"/a.php"}, "xml": {}}
	withFindings := newFake("withFindings", "php", 2)
	empty := newFake("empty", "php", 0)
	noTarget := newFake("noTarget", "xml", 1)
	missingBucket := newFake("missingBucket", "js", 1)

	report := findings.NewReport("/root", time.Unix(0, 0))
	stats, err := NewDispatcher(nil).Dispatch(
		[]Processor{empty, missingBucket, noTarget, withFindings},
		classification, report, DispatchOptions{},
	)
	require.NoError(t, err)

	assert.Equal(t, []string{"empty", "withFindings"}, stats.Ran)
	assert.Equal(t, []string{"missingBucket", "noTarget"}, stats.Skipped)
	assert.Equal(t, 2, stats.Found)
	assert.Equal(t, 0, noTarget.calls)

	assert.Equal(t, []string{"withFindings"}, report.RuleIDs())
	occurrences := report.Findings["withFindings"].Occurrences
	require.Len(t, occurrences, 2)
	assert.Equal(t, 2, occurrences[1].EndLine)
}

func TestDispatchFixableOnly(t *testing.T) {
	classification := collector.Classification{"php": {"/a.php"}}
	fixable := newFake("fixable", "php", 1)
	manual := newFake("manual", "php", 1)

	report := findings.NewReport("/root", time.Unix(0, 0))
	stats, err := NewDispatcher(nil).Dispatch([]Processor{fixable, manual}, classification, report, DispatchOptions{
		FixableOnly: true,
		Fixable:     map[string]bool{"fixable": true},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"fixable"}, stats.Ran)
	assert.Equal(t, 0, manual.calls)
	assert.Equal(t, []string{"fixable"}, report.RuleIDs())
}

func TestDispatchAbortsOnProcessorError(t *testing.T) {
	classification := collector.Classification{"php": {"/a.php"}}
	first := newFake("first", "php", 1)
	failing := newFake("failing", "php", 0)
	failing.err = stderrors.New("no function boundary")
	last := newFake("last", "php", 1)

	report := findings.NewReport("/root", time.Unix(0, 0))
	_, err := NewDispatcher(nil).Dispatch([]Processor{first, failing, last}, classification, report, DispatchOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "processor failing failed")
	assert.Equal(t, 0, last.calls)
	assert.Equal(t, []string{"first"}, report.RuleIDs())
}

func TestBaseReport(t *testing.T) {
	b := &Base{ID: "rule", Target: "php", Name: "Rule", ShortDescription: "short", LongDescription: "long"}
	assert.Equal(t, 0, b.FoundCount())

	b.Add(findings.Occurrence{File: "/a.php", StartLine: 3})
	report := b.Report()
	require.Len(t, report, 1)
	assert.Equal(t, "rule", report[0].RuleID)
	assert.Equal(t, 3, report[0].Occurrences[0].EndLine)
	assert.Equal(t, 1, b.FoundCount())
}
