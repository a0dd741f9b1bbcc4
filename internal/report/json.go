package report

import (
	"encoding/json"
	"io"

	"github.com/scan-io-git/magelint/internal/findings"
)

// JSONReporter writes the report as indented JSON keyed by rule id.
type JSONReporter struct{}

func (JSONReporter) Format() string { return FormatJSON }

func (JSONReporter) Render(w io.Writer, r *findings.Report) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	return encoder.Encode(r)
}
