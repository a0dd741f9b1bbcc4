package scan

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scan-io-git/magelint/internal/findings"
	"github.com/scan-io-git/magelint/pkg/shared/config"
	"github.com/scan-io-git/magelint/pkg/shared/errors"
)

func moduleTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	path := filepath.Join(root, "app", "code", "Acme", "Widget", "Model", "Report.php")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(`<?php
namespace Acme\Widget\Model;
class Report
{
    public function rows()
    {
        return $this->connection->query("SELECT * FROM sales_order");
    }
}
`), 0o644))
	return root
}

func exitCode(t *testing.T, err error) int {
	t.Helper()
	var cmdErr *errors.CommandError
	require.True(t, stderrors.As(err, &cmdErr), "expected a CommandError, got %v", err)
	return cmdErr.ExitCode
}

func TestValidateScanArgs(t *testing.T) {
	tests := []struct {
		name    string
		options RunOptionsScan
		args    []string
		wantErr bool
	}{
		{name: "single path", args: []string{"/srv/shop"}},
		{name: "format is normalized", options: RunOptionsScan{Format: "SARIF"}, args: []string{"/srv/shop"}},
		{name: "missing path", args: nil, wantErr: true},
		{name: "two paths", args: []string{"a", "b"}, wantErr: true},
		{name: "blank path", args: []string{" "}, wantErr: true},
		{name: "unknown format", options: RunOptionsScan{Format: "xml"}, args: []string{"/srv/shop"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateScanArgs(&tt.options, tt.args)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}

	options := RunOptionsScan{Format: "HTML"}
	require.NoError(t, validateScanArgs(&options, []string{"/srv/shop"}))
	assert.Equal(t, "html", options.Format)
}

func TestResolveFormat(t *testing.T) {
	assert.Equal(t, "json", resolveFormat("", nil))
	assert.Equal(t, "json", resolveFormat("", &config.Config{}))
	assert.Equal(t, "html", resolveFormat("", &config.Config{Report: config.Report{Format: "html"}}))
	assert.Equal(t, "sarif", resolveFormat("SARIF", &config.Config{Report: config.Report{Format: "html"}}))
}

func TestResolveOutputPath(t *testing.T) {
	dir := t.TempDir()

	path, err := resolveOutputPath(dir, "sarif")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "magelint-report.sarif"), path)

	path, err = resolveOutputPath(filepath.Join(dir, "new")+"/", "html")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "new", "magelint-report.html"), path)

	path, err = resolveOutputPath(filepath.Join(dir, "out.json"), "json")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "out.json"), path)
}

func TestRunScanToStdout(t *testing.T) {
	root := moduleTree(t)
	var out bytes.Buffer

	err := runScan(context.Background(), nil, RunOptionsScan{}, root, &out, hclog.NewNullLogger())
	require.NoError(t, err)

	var decoded findings.Report
	require.NoError(t, json.Unmarshal(out.Bytes(), &decoded))
	assert.Equal(t, []string{"rawSqlQuery"}, decoded.RuleIDs())
	assert.Equal(t, root, decoded.Metadata.Path)
	assert.NotEmpty(t, decoded.Metadata.ScanID)
}

func TestRunScanWritesOutputFile(t *testing.T) {
	root := moduleTree(t)
	outDir := t.TempDir()

	err := runScan(context.Background(), nil, RunOptionsScan{Format: "sarif", OutputPath: outDir}, root, &bytes.Buffer{}, hclog.NewNullLogger())
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(outDir, "magelint-report.sarif"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "rawSqlQuery")
	assert.Contains(t, string(data), "2.1.0")
}

func TestRunScanGate(t *testing.T) {
	root := moduleTree(t)
	var out bytes.Buffer

	err := runScan(context.Background(), nil, RunOptionsScan{FailOn: `"rawSqlQuery" in rules`}, root, &out, hclog.NewNullLogger())
	require.Error(t, err)
	assert.Equal(t, errors.ExitCodeGateFailed, exitCode(t, err))
	assert.NotEmpty(t, out.String(), "the report is written before the gate runs")

	cfg := &config.Config{Gate: config.Gate{FailOn: "errors > 100"}}
	assert.NoError(t, runScan(context.Background(), cfg, RunOptionsScan{}, root, &bytes.Buffer{}, hclog.NewNullLogger()))

	err = runScan(context.Background(), nil, RunOptionsScan{FailOn: "errors >"}, root, &bytes.Buffer{}, hclog.NewNullLogger())
	assert.Equal(t, errors.ExitCodeScanFailed, exitCode(t, err))
}

func TestRunScanExcludes(t *testing.T) {
	root := moduleTree(t)
	var out bytes.Buffer

	err := runScan(context.Background(), nil, RunOptionsScan{ExcludeDirs: "Model, vendor"}, root, &out, hclog.NewNullLogger())
	require.NoError(t, err)

	var decoded findings.Report
	require.NoError(t, json.Unmarshal(out.Bytes(), &decoded))
	assert.Empty(t, decoded.RuleIDs())
}

func TestRunScanUnknownFormat(t *testing.T) {
	err := runScan(context.Background(), nil, RunOptionsScan{Format: "xml"}, moduleTree(t), &bytes.Buffer{}, hclog.NewNullLogger())
	assert.Equal(t, errors.ExitCodeScanFailed, exitCode(t, err))
}
