package report

import (
	"io"

	"github.com/owenrumney/go-sarif/v2/sarif"

	"github.com/scan-io-git/magelint/internal/findings"
	"github.com/scan-io-git/magelint/pkg/fingerprint"
	"github.com/scan-io-git/magelint/pkg/shared/config"
)

// SnippetHashProperty holds the fingerprint.SnippetHash of the flagged lines.
const SnippetHashProperty = "snippetHash"

// SARIFReporter writes a SARIF 2.1.0 log with one result per occurrence.
type SARIFReporter struct {
	opts Options
}

func (SARIFReporter) Format() string { return FormatSARIF }

func (s SARIFReporter) Render(w io.Writer, r *findings.Report) error {
	log, err := s.Build(r)
	if err != nil {
		return err
	}
	return log.PrettyWrite(w)
}

// Build converts r into a SARIF log. Findings without occurrences get no rule entry.
func (s SARIFReporter) Build(r *findings.Report) (*sarif.Report, error) {
	log, err := sarif.New(sarif.Version210)
	if err != nil {
		return nil, err
	}

	name := s.opts.ToolName
	if name == "" {
		name = config.DefaultToolName
	}
	uri := s.opts.InformationURI
	if uri == "" {
		uri = config.DefaultInformationURI
	}
	version := s.opts.ToolVersion
	if version == "" {
		version = r.Metadata.ToolVersion
	}

	run := sarif.NewRunWithInformationURI(name, uri)
	if version != "" {
		run.Tool.Driver.WithVersion(version)
	}

	for _, f := range r.Rules() {
		if len(f.Occurrences) == 0 {
			continue
		}
		run.AddRule(f.RuleID).
			WithName(f.Name).
			WithShortDescription(sarif.NewMultiformatMessageString(f.ShortDescription)).
			WithFullDescription(sarif.NewMultiformatMessageString(f.LongDescription))

		for _, o := range f.Occurrences {
			run.AddResult(sarifResult(f.RuleID, o))
		}
	}

	log.AddRun(run)
	return log, nil
}

func sarifResult(ruleID string, o findings.Occurrence) *sarif.Result {
	startLine := o.StartLine
	if startLine < 1 {
		startLine = 1
	}
	endLine := o.EndLine
	if endLine < startLine {
		endLine = startLine
	}

	result := sarif.NewRuleResult(ruleID).
		WithMessage(sarif.NewTextMessage(o.Message)).
		WithLevel(string(o.Severity.Or(findings.SeverityWarning))).
		WithLocations([]*sarif.Location{
			sarif.NewLocation().WithPhysicalLocation(
				sarif.NewPhysicalLocation().
					WithArtifactLocation(sarif.NewSimpleArtifactLocation(o.File)).
					WithRegion(sarif.NewRegion().WithStartLine(startLine).WithEndLine(endLine)),
			),
		})

	hash := fingerprint.SnippetHash(o.File, startLine, endLine)
	if len(o.Metadata) > 0 || hash != "" {
		props := sarif.NewPropertyBag()
		for k, v := range o.Metadata {
			props.Add(k, v)
		}
		if hash != "" {
			props.Add(SnippetHashProperty, hash)
		}
		result.AttachPropertyBag(props)
	}
	return result
}
