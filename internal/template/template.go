package template

import (
	"embed"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/scan-io-git/magelint/pkg/shared/files"
)

//go:embed report.html
var content embed.FS

// ReportTemplate is the name of the HTML report template.
const ReportTemplate = "report.html"

// add adds two integers and returns the result.
// helper function for html template
func add(a, b int) int {
	return a + b
}

// ordinalDate returns a string with the ordinal number of the day
// helper function for html template
func ordinalDate(day int) string {
	suffix := "th"
	switch day {
	case 1, 21, 31:
		suffix = "st"
	case 2, 22:
		suffix = "nd"
	case 3, 23:
		suffix = "rd"
	}
	return fmt.Sprintf("%d%s", day, suffix)
}

// formatDateTime formats a time.Time object into the specified string format.
// helper function for html template
func formatDateTime(t time.Time) string {
	day := ordinalDate(t.Day())
	hour := t.Hour() % 12
	if hour == 0 {
		hour = 12
	}
	return fmt.Sprintf("%s %s %d %d:%02d:%02d %s", day, t.Month(), t.Year(), hour, t.Minute(), t.Second(), t.Format("pm"))
}

// relPath strips the scan root from path for display.
// helper function for html template
func relPath(root, path string) string {
	return files.RelativeTo(root, path)
}

// lineRange renders "12" or "12-15".
// helper function for html template
func lineRange(start, end int) string {
	if end > start {
		return fmt.Sprintf("%d-%d", start, end)
	}
	return fmt.Sprintf("%d", start)
}

// NewTemplate parses the embedded HTML report template.
func NewTemplate() (*template.Template, error) {
	return template.New(ReportTemplate).
		Funcs(template.FuncMap{
			"add":            add,
			"formatDateTime": formatDateTime,
			"relPath":        relPath,
			"lineRange":      lineRange,
			"lower":          strings.ToLower,
		}).
		ParseFS(content, ReportTemplate)
}
