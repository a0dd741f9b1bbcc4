package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
logger:
  level: debug
http_client:
  retry_count: 2
  timeout: 5s
scan:
  extensions: [".PHP", "xml"]
  exclude_dirs: [vendor, generated]
  exclude_files: [registration.php]
fixer:
  url: fixer.example.com/
  token_env: ACME_FIXER_TOKEN
report:
  format: SARIF
  tool_name: acme-lint
gate:
  fail_on: errors > 0
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "magelint.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfig(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, sampleYAML))
	require.NoError(t, err)
	require.NoError(t, ValidateConfig(cfg))

	assert.Equal(t, "debug", cfg.Logger.Level)
	assert.Equal(t, 2, cfg.HTTPClient.RetryCount)
	assert.Equal(t, 5*time.Second, cfg.HTTPClient.Timeout)
	assert.Equal(t, []string{"php", "xml"}, cfg.Scan.Extensions)
	assert.Equal(t, []string{"vendor", "generated"}, cfg.Scan.ExcludeDirs)
	assert.Equal(t, "http://fixer.example.com", cfg.Fixer.URL)
	assert.Equal(t, "sarif", cfg.Report.Format)
	assert.Equal(t, "errors > 0", cfg.Gate.FailOn)
	assert.Equal(t, "acme-lint", GetToolName(cfg))
	assert.Equal(t, DefaultInformationURI, GetInformationURI(cfg))

	t.Setenv("ACME_FIXER_TOKEN", "secret")
	assert.Equal(t, "secret", GetFixerToken(cfg))
}

func TestLoadConfigMissingDefault(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	defer func() { _ = os.Chdir(wd) }()

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, &Config{}, cfg)
	assert.Equal(t, DefaultToolName, GetToolName(cfg))

	_, err = LoadConfig("missing.yml")
	assert.Error(t, err, "an explicit path must exist")

	_, err = LoadConfig(t.TempDir())
	assert.Error(t, err, "directories are rejected")
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  *Config
	}{
		{name: "nil", cfg: nil},
		{name: "retry count", cfg: &Config{HTTPClient: HTTPClient{RetryCount: 21}}},
		{name: "negative timeout", cfg: &Config{HTTPClient: HTTPClient{Timeout: -time.Second}}},
		{name: "empty extension", cfg: &Config{Scan: Scan{Extensions: []string{" "}}}},
		{name: "exclude dir path", cfg: &Config{Scan: Scan{ExcludeDirs: []string{"app/code"}}}},
		{name: "report format", cfg: &Config{Report: Report{Format: "pdf"}}},
		{name: "proxy port", cfg: &Config{HTTPClient: HTTPClient{Proxy: Proxy{Host: "proxy", Port: 70000}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, ValidateConfig(tt.cfg))
		})
	}

	assert.NoError(t, ValidateConfig(&Config{}))
}

func TestHelpers(t *testing.T) {
	assert.Equal(t, "flag", SetThen("flag", "default"))
	assert.Equal(t, "default", SetThen("", "default"))
	assert.Equal(t, 3, SetThen(0, 3))

	assert.Equal(t, []string{"a", "b"}, SplitList(" a, ,b,"))
	assert.Empty(t, SplitList(""))

	assert.Equal(t, []string{".git", "node_modules", "vendor"}, MergeLists(DefaultExcludeDirs(), []string{"vendor", ".git"}))

	verify := false
	assert.False(t, GetBoolValue(&HTTPClient{TLSClientConfig: TLSClientConfig{Verify: &verify}}, "TLSClientConfig.Verify", true))
	assert.True(t, GetBoolValue(&HTTPClient{}, "TLSClientConfig.Verify", true))
}
