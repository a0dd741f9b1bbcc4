// Package report renders a findings.Report in one of the supported output formats.
package report

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/scan-io-git/magelint/internal/findings"
	"github.com/scan-io-git/magelint/pkg/shared/errors"
)

// Supported formats.
const (
	FormatJSON  = "json"
	FormatSARIF = "sarif"
	FormatHTML  = "html"
)

// Formats lists every supported format.
var Formats = []string{FormatJSON, FormatSARIF, FormatHTML}

// Options carries presentation settings shared by all reporters.
type Options struct {
	ToolName       string
	ToolVersion    string
	InformationURI string
	// Root is stripped from displayed paths; defaults to the report metadata path.
	Root string
}

// Reporter converts a report to text. A report handed to a Reporter is never modified.
type Reporter interface {
	Format() string
	Render(w io.Writer, r *findings.Report) error
}

// New returns the reporter for format.
func New(format string, opts Options) (Reporter, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case FormatJSON:
		return &JSONReporter{}, nil
	case FormatSARIF:
		return &SARIFReporter{opts: opts}, nil
	case FormatHTML:
		return &HTMLReporter{opts: opts}, nil
	default:
		return nil, errors.NewNotImplementedError("Render", format)
	}
}

// RenderString renders r into a string.
func RenderString(reporter Reporter, r *findings.Report) (string, error) {
	var buf bytes.Buffer
	if err := reporter.Render(&buf, r); err != nil {
		return "", fmt.Errorf("failed to render %s report: %w", reporter.Format(), err)
	}
	return buf.String(), nil
}

// Extension returns the file extension conventionally used for format.
func Extension(format string) string {
	if format == FormatSARIF {
		return ".sarif"
	}
	return "." + format
}
