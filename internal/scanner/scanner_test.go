package scanner

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scan-io-git/magelint/internal/collector"
	"github.com/scan-io-git/magelint/internal/fixer"
	"github.com/scan-io-git/magelint/internal/heuristics"
	"github.com/scan-io-git/magelint/internal/processor"
	"github.com/scan-io-git/magelint/internal/rules"
	"github.com/scan-io-git/magelint/pkg/shared/config"
)

const reportModel = `<?php
namespace Acme\Widget\Model;
class Report
{
    public function rows()
    {
        $sql = "SELECT * FROM sales_order WHERE state = 'new'";
        return $this->connection->query($sql);
    }
}
`

func shopTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	files := map[string]string{
		"app/code/Acme/Widget/Model/Report.php":         reportModel,
		"app/code/Acme/Widget/view/frontend/web/grid.js": "var n = $('.items').size();\n",
		"node_modules/lib/index.js":                      "$('.x').size();\n",
	}
	for rel, content := range files {
		path := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return root
}

func TestScan(t *testing.T) {
	root := shopTree(t)
	s := New(nil, rules.Default(), nil, "1.0.0", nil)

	result, err := s.Scan(context.Background(), collector.Options{Root: root})
	require.NoError(t, err)
	assert.Empty(t, result.Errors)
	assert.Empty(t, result.Diagnostics)

	report := result.Report
	assert.Equal(t, []string{rules.JSDeprecatedJqueryID, rules.RawSQLQueryID}, report.RuleIDs())
	assert.Len(t, report.Findings[rules.RawSQLQueryID].Occurrences, 2)
	assert.Len(t, report.Findings[rules.JSDeprecatedJqueryID].Occurrences, 1, "node_modules is excluded by default")
	assert.Equal(t, 3, result.Stats.Found)
	assert.Contains(t, result.Stats.Skipped, rules.DIProxyRequiredID, "no di.xml in the tree")

	md := report.Metadata
	assert.Equal(t, root, md.Path)
	assert.Equal(t, "1.0.0", md.ToolVersion)
	_, err = uuid.Parse(md.ScanID)
	assert.NoError(t, err)
	assert.False(t, md.GeneratedAt.IsZero())
}

func TestScanRevisionFromCI(t *testing.T) {
	root := shopTree(t)
	s := New(nil, rules.Default(), nil, "", nil)
	s.lookupEnv = func(key string) string {
		return map[string]string{"GITHUB_SHA": "0123abc", "GITHUB_REF_NAME": "release"}[key]
	}

	result, err := s.Scan(context.Background(), collector.Options{Root: root})
	require.NoError(t, err)
	assert.Equal(t, "release", result.Report.Metadata.Branch)
	assert.Equal(t, "0123abc", result.Report.Metadata.Commit)

	s.lookupEnv = func(string) string { return "" }
	result, err = s.Scan(context.Background(), collector.Options{Root: root})
	require.NoError(t, err)
	assert.Empty(t, result.Report.Metadata.Commit)
}

func TestScanConfigDefaults(t *testing.T) {
	root := shopTree(t)
	cfg := &config.Config{Scan: config.Scan{ExcludeDirs: []string{"Model"}}}

	result, err := New(cfg, rules.Default(), nil, "", nil).Scan(context.Background(), collector.Options{Root: root})
	require.NoError(t, err)
	assert.Equal(t, []string{rules.JSDeprecatedJqueryID}, result.Report.RuleIDs())

	result, err = New(cfg, rules.Default(), nil, "", nil).Scan(context.Background(), collector.Options{
		Root:               root,
		ExcludedExtensions: []string{"js"},
	})
	require.NoError(t, err)
	assert.Empty(t, result.Report.RuleIDs())
	assert.NotEmpty(t, result.Errors, "nothing left to analyse")
}

func TestScanFixableOnly(t *testing.T) {
	root := shopTree(t)
	opts := collector.Options{Root: root, FixableOnly: true}

	provider := fixer.StaticProvider{Rules: []string{rules.RawSQLQueryID}}
	result, err := New(nil, rules.Default(), provider, "", nil).Scan(context.Background(), opts)
	require.NoError(t, err)
	assert.Equal(t, []string{rules.RawSQLQueryID}, result.Report.RuleIDs())
	assert.Equal(t, []string{rules.RawSQLQueryID}, result.Stats.Ran)

	failing := fixer.StaticProvider{Err: errors.New("offline")}
	result, err = New(nil, rules.Default(), failing, "", nil).Scan(context.Background(), opts)
	require.NoError(t, err)
	assert.Empty(t, result.Report.RuleIDs())
	assert.Empty(t, result.Stats.Ran)

	result, err = New(nil, rules.Default(), nil, "", nil).Scan(context.Background(), opts)
	require.NoError(t, err)
	assert.Empty(t, result.Stats.Ran)
}

func TestScanInvalidRoot(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing")

	result, err := New(nil, rules.Default(), nil, "", nil).Scan(context.Background(), collector.Options{Root: missing})
	require.NoError(t, err)
	require.NotEmpty(t, result.Errors)
	assert.Contains(t, result.Errors[0], "Invalid path")
	assert.Empty(t, result.Report.RuleIDs())

	_, err = New(nil, rules.Default(), nil, "", nil).Scan(context.Background(), collector.Options{})
	assert.Error(t, err)
}

type brokenProcessor struct {
	processor.Base
}

func (b *brokenProcessor) Process(collector.Classification) error {
	return errors.New("boom")
}

func TestScanProcessorFailure(t *testing.T) {
	root := shopTree(t)
	registry := processor.NewRegistry(processor.Registration{
		ID: "broken",
		Factory: func(*heuristics.Session, hclog.Logger) (processor.Processor, error) {
			return &brokenProcessor{Base: processor.Base{ID: "broken", Target: collector.TypePHP}}, nil
		},
	})

	result, err := New(nil, registry, nil, "", nil).Scan(context.Background(), collector.Options{Root: root})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "processor broken failed")
	require.NotNil(t, result)
	assert.NotNil(t, result.Report)
}
