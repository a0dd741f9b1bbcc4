package report

import (
	"encoding/json"
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/owenrumney/go-sarif/v2/sarif"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scan-io-git/magelint/internal/findings"
	"github.com/scan-io-git/magelint/pkg/fingerprint"
	"github.com/scan-io-git/magelint/pkg/shared/errors"
)

func sampleReport() *findings.Report {
	r := findings.NewReport("/srv/shop", time.Date(2024, 3, 1, 14, 5, 9, 0, time.UTC))
	r.Metadata.ToolVersion = "1.2.3"
	r.Add(findings.Finding{
		RuleID:           "mixed",
		Name:             "Mixed",
		ShortDescription: "mixed severities",
		Occurrences: []findings.Occurrence{
			{File: "/srv/shop/app/code/A/B/Model/One.php", StartLine: 3, Message: "one", Severity: findings.SeverityWarning},
			{File: "/srv/shop/app/code/A/B/Model/Two.php", StartLine: 7, EndLine: 9, Message: "two", Severity: findings.SeverityError},
			{File: "/srv/shop/app/code/A/B/Model/Three.php", Message: "three", Severity: findings.SeverityNote},
		},
	})
	r.Add(findings.Finding{
		RuleID: "unset",
		Name:   "Unset",
		Occurrences: []findings.Occurrence{
			{File: "/elsewhere/x.php", StartLine: 1, Message: "no severity"},
		},
	})
	r.Add(findings.Finding{RuleID: "empty", Name: "Empty"})
	return r
}

func TestNewUnknownFormat(t *testing.T) {
	_, err := New("xml", Options{})
	var notImplemented *errors.NotImplementedError
	assert.True(t, stderrors.As(err, &notImplemented))

	for _, format := range Formats {
		reporter, err := New(strings.ToUpper(format), Options{})
		require.NoError(t, err)
		assert.Equal(t, format, reporter.Format())
	}
	assert.Equal(t, ".sarif", Extension(FormatSARIF))
	assert.Equal(t, ".html", Extension(FormatHTML))
}

func TestJSONReporterIsLossless(t *testing.T) {
	original := sampleReport()
	original.Findings["mixed"].Occurrences[0].Metadata = map[string]interface{}{"class": `A\B`}

	out, err := RenderString(&JSONReporter{}, original)
	require.NoError(t, err)
	assert.Contains(t, out, "\n  \"empty\": {")
	assert.Contains(t, out, `"class": "A\\B"`)

	var decoded findings.Report
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, original.RuleIDs(), decoded.RuleIDs())
	assert.Equal(t, original.Metadata.Path, decoded.Metadata.Path)
	assert.True(t, original.Metadata.GeneratedAt.Equal(decoded.Metadata.GeneratedAt))
	assert.Equal(t, original.Findings["mixed"].Occurrences, decoded.Findings["mixed"].Occurrences)
}

func TestSARIFReporter(t *testing.T) {
	reporter := SARIFReporter{opts: Options{ToolName: "magelint", InformationURI: "https://example.com"}}
	log, err := reporter.Build(sampleReport())
	require.NoError(t, err)

	assert.Equal(t, "2.1.0", log.Version)
	assert.NotEmpty(t, log.Schema)
	require.Len(t, log.Runs, 1)
	run := log.Runs[0]

	assert.Equal(t, "magelint", run.Tool.Driver.Name)
	assert.Equal(t, "https://example.com", *run.Tool.Driver.InformationURI)
	assert.Equal(t, "1.2.3", *run.Tool.Driver.Version)

	var ruleIDs []string
	for _, rule := range run.Tool.Driver.Rules {
		ruleIDs = append(ruleIDs, rule.ID)
	}
	assert.Equal(t, []string{"mixed", "unset"}, ruleIDs, "rules without occurrences are left out")

	require.Len(t, run.Results, 4, "one result per occurrence")
	levels := []string{}
	for _, result := range run.Results {
		levels = append(levels, *result.Level)
	}
	assert.Equal(t, []string{"warning", "error", "note", "warning"}, levels)

	third := run.Results[2].Locations[0].PhysicalLocation
	assert.Equal(t, "/srv/shop/app/code/A/B/Model/Three.php", *third.ArtifactLocation.URI)
	assert.Equal(t, 1, *third.Region.StartLine, "missing start line defaults to 1")

	second := run.Results[1]
	assert.Equal(t, "two", *second.Message.Text)
	assert.Equal(t, 9, *second.Locations[0].PhysicalLocation.Region.EndLine)
}

func TestSARIFReporterProperties(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Eager.php")
	require.NoError(t, os.WriteFile(path, []byte("<?php\nclass Eager\n{\n}\n"), 0o644))

	r := findings.NewReport(filepath.Dir(path), time.Now())
	r.Add(findings.Finding{RuleID: "proxy", Occurrences: []findings.Occurrence{
		{File: path, StartLine: 2, Message: "m", Metadata: map[string]interface{}{"argument": "session"}},
		{File: "/missing.php", StartLine: 1, Message: "m"},
	}})

	log, err := SARIFReporter{}.Build(r)
	require.NoError(t, err)
	results := log.Runs[0].Results
	require.Len(t, results, 2)

	assert.Equal(t, "session", results[0].Properties["argument"])
	assert.Equal(t, fingerprint.SnippetHash(path, 2, 2), results[0].Properties[SnippetHashProperty])
	assert.Empty(t, results[1].Properties, "unreadable files get no fingerprint")
}

func TestSARIFReporterEmptyFinding(t *testing.T) {
	r := findings.NewReport("/srv/shop", time.Now())
	r.Add(findings.Finding{RuleID: "empty"})

	out, err := RenderString(&SARIFReporter{}, r)
	require.NoError(t, err)

	log, err := sarif.FromString(out)
	require.NoError(t, err)
	require.Len(t, log.Runs, 1)
	assert.Empty(t, log.Runs[0].Results)
	assert.Empty(t, log.Runs[0].Tool.Driver.Rules)
	assert.Equal(t, "magelint", log.Runs[0].Tool.Driver.Name)
}

func TestHTMLReporterCountsAndBadges(t *testing.T) {
	page := HTMLReporter{}.page(sampleReport())

	require.Len(t, page.Rules, 2, "rules without occurrences are left out")
	mixed := page.Rules[0]
	assert.Equal(t, "mixed", mixed.ID)
	assert.Equal(t, findings.SeverityCounts{Errors: 1, Warnings: 1, Notes: 1}, mixed.Counts)
	assert.Equal(t, findings.SeverityError, mixed.Badge)

	unset := page.Rules[1]
	assert.Equal(t, findings.SeverityNote, unset.Badge, "badges count unset severity as note")
	assert.Equal(t, findings.SeverityWarning, unset.Occurrences[0].Severity, "rows show unset severity as warning")

	assert.Equal(t, findings.SeverityCounts{Errors: 1, Warnings: 1, Notes: 2}, page.Totals)
	assert.Equal(t, "/srv/shop", page.Root)
}

func TestHTMLReporterRendersDocument(t *testing.T) {
	r := sampleReport()
	r.Findings["mixed"].Occurrences[0].Message = `<script>alert("x")</script>`

	out, err := RenderString(&HTMLReporter{opts: Options{ToolName: "magelint"}}, r)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, "<!DOCTYPE html>"))
	assert.True(t, strings.HasSuffix(strings.TrimSpace(out), "</html>"))
	assert.NotContains(t, out, `<script>alert`)
	assert.Contains(t, out, "&lt;script&gt;alert(&#34;x&#34;)&lt;/script&gt;")
	assert.Contains(t, out, `title="/srv/shop/app/code/A/B/Model/One.php">app/code/A/B/Model/One.php</td>`)
	assert.Contains(t, out, `title="/elsewhere/x.php">/elsewhere/x.php</td>`)
	assert.Contains(t, out, "7-9")
	assert.Contains(t, out, DefaultLogoURL)
	assert.Contains(t, out, "1st March 2024 2:05:09 pm")
	assert.NotContains(t, out, "No issues found.")
}

func TestHTMLReporterEmptyReport(t *testing.T) {
	r := findings.NewReport("/srv/shop", time.Now())
	r.Add(findings.Finding{RuleID: "empty", Name: "Empty"})

	out, err := RenderString(&HTMLReporter{}, r)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "<!DOCTYPE html>"))
	assert.Contains(t, out, "No issues found.")
	assert.NotContains(t, out, `class="badge "`)
	assert.True(t, strings.HasSuffix(strings.TrimSpace(out), "</html>"))
}

func TestHTMLProxyHint(t *testing.T) {
	snippet := hint(map[string]interface{}{
		"class":    `Acme\Widget\Block\Eager`,
		"argument": "customerSession",
		"type":     `Magento\Customer\Model\Session`,
		"proxy":    `Magento\Customer\Model\Session\Proxy`,
		"diFile":   "/srv/shop/app/code/Acme/Widget/etc/di.xml",
		"area":     "global",
	})
	assert.Contains(t, snippet, "<!-- /srv/shop/app/code/Acme/Widget/etc/di.xml -->")
	assert.Contains(t, snippet, `<type name="Acme\Widget\Block\Eager">`)
	assert.Contains(t, snippet, `<argument name="customerSession" xsi:type="object">Magento\Customer\Model\Session\Proxy</argument>`)

	assert.Empty(t, hint(nil))
	assert.Empty(t, hint(map[string]interface{}{"class": "A"}))
}
