package report

import (
	"io"
	"time"

	"github.com/beevik/etree"
	"github.com/mitchellh/mapstructure"

	"github.com/scan-io-git/magelint/internal/findings"
	"github.com/scan-io-git/magelint/internal/template"
)

// DefaultLogoURL is the branding asset referenced by the HTML report.
const DefaultLogoURL = "https://raw.githubusercontent.com/scan-io-git/magelint/main/docs/assets/logo.svg"

// HTMLReporter writes a self-contained HTML page.
type HTMLReporter struct {
	opts Options
}

type htmlPage struct {
	ToolName    string
	ToolVersion string
	LogoURL     string
	Root        string
	ScanID      string
	Branch      string
	Commit      string
	GeneratedAt time.Time
	Totals      findings.SeverityCounts
	Rules       []htmlRule
}

type htmlRule struct {
	ID               string
	Name             string
	ShortDescription string
	LongDescription  string
	Badge            findings.Severity
	Counts           findings.SeverityCounts
	Occurrences      []htmlOccurrence
}

type htmlOccurrence struct {
	File      string
	StartLine int
	EndLine   int
	Message   string
	Severity  findings.Severity
	Hint      string
}

// proxyHint is the subset of occurrence metadata needed to suggest a di.xml change.
type proxyHint struct {
	Class    string `mapstructure:"class"`
	Argument string `mapstructure:"argument"`
	Proxy    string `mapstructure:"proxy"`
	DIFile   string `mapstructure:"diFile"`
}

func (HTMLReporter) Format() string { return FormatHTML }

func (h HTMLReporter) Render(w io.Writer, r *findings.Report) error {
	tmpl, err := template.NewTemplate()
	if err != nil {
		return err
	}
	return tmpl.ExecuteTemplate(w, template.ReportTemplate, h.page(r))
}

// page builds the view model. Rule badges count unset severities as notes while
// occurrence rows show them as warnings.
func (h HTMLReporter) page(r *findings.Report) htmlPage {
	root := h.opts.Root
	if root == "" {
		root = r.Metadata.Path
	}
	page := htmlPage{
		ToolName:    h.opts.ToolName,
		ToolVersion: h.opts.ToolVersion,
		LogoURL:     DefaultLogoURL,
		Root:        root,
		ScanID:      r.Metadata.ScanID,
		Branch:      r.Metadata.Branch,
		Commit:      r.Metadata.Commit,
		GeneratedAt: r.Metadata.GeneratedAt,
	}
	if page.ToolName == "" {
		page.ToolName = "magelint"
	}
	if page.ToolVersion == "" {
		page.ToolVersion = r.Metadata.ToolVersion
	}

	for _, f := range r.Rules() {
		if len(f.Occurrences) == 0 {
			continue
		}
		counts := findings.CountBySeverity(f.Occurrences, findings.SeverityNote)
		rule := htmlRule{
			ID:               f.RuleID,
			Name:             f.Name,
			ShortDescription: f.ShortDescription,
			LongDescription:  f.LongDescription,
			Badge:            counts.Highest(),
			Counts:           counts,
		}
		for _, o := range f.Occurrences {
			rule.Occurrences = append(rule.Occurrences, htmlOccurrence{
				File:      o.File,
				StartLine: o.StartLine,
				EndLine:   o.EndLine,
				Message:   o.Message,
				Severity:  o.Severity.Or(findings.SeverityWarning),
				Hint:      hint(o.Metadata),
			})
		}
		page.Totals = page.Totals.Add(counts)
		page.Rules = append(page.Rules, rule)
	}
	return page
}

// hint renders a di.xml snippet for occurrences that carry proxy metadata.
func hint(metadata map[string]interface{}) string {
	if len(metadata) == 0 {
		return ""
	}
	var p proxyHint
	if err := mapstructure.Decode(metadata, &p); err != nil || p.Class == "" || p.Proxy == "" {
		return ""
	}

	doc := etree.NewDocument()
	typ := doc.CreateElement("type")
	typ.CreateAttr("name", p.Class)
	arg := typ.CreateElement("arguments").CreateElement("argument")
	arg.CreateAttr("name", p.Argument)
	arg.CreateAttr("xsi:type", "object")
	arg.SetText(p.Proxy)
	doc.Indent(4)

	snippet, err := doc.WriteToString()
	if err != nil {
		return ""
	}
	if p.DIFile != "" {
		return "<!-- " + p.DIFile + " -->\n" + snippet
	}
	return snippet
}
