package rules

import (
	"fmt"
	"regexp"

	"github.com/hashicorp/go-hclog"

	"github.com/scan-io-git/magelint/internal/collector"
	"github.com/scan-io-git/magelint/internal/findings"
	"github.com/scan-io-git/magelint/internal/heuristics"
	"github.com/scan-io-git/magelint/internal/processor"
)

var rawSQLRe = []*regexp.Regexp{
	regexp.MustCompile(`(?i)["']\s*SELECT\s.+\sFROM\s`),
	regexp.MustCompile(`(?i)["']\s*INSERT\s+INTO\s`),
	regexp.MustCompile(`(?i)["']\s*UPDATE\s+\S+\s+SET\s`),
	regexp.MustCompile(`(?i)["']\s*DELETE\s+FROM\s`),
	regexp.MustCompile(`->query\(`),
}

// RawSQLQuery flags handwritten SQL outside Setup scripts, where schema and data
// patches legitimately need it.
type RawSQLQuery struct {
	processor.Base
	logger hclog.Logger
}

func NewRawSQLQuery(_ *heuristics.Session, logger hclog.Logger) (processor.Processor, error) {
	return &RawSQLQuery{
		Base: processor.Base{
			ID:               RawSQLQueryID,
			Target:           collector.TypePHP,
			Name:             "Raw SQL query",
			ShortDescription: "raw SQL outside setup scripts",
			LongDescription: "Raw SQL bypasses repositories, table prefixes and indexers and is easy to get wrong. " +
				"Use the select builder of a resource model or a repository.",
		},
		logger: logger,
	}, nil
}

func (r *RawSQLQuery) Process(classification collector.Classification) error {
	for _, path := range classification.Files(collector.TypePHP) {
		if heuristics.IsSetupPath(path) {
			continue
		}
		src, ok := load(path)
		if !ok {
			continue
		}

		where := "this file"
		if module, ok := heuristics.ModuleName(path); ok {
			where = "module " + module
		}
		for i, line := range src.lines {
			if !matchesAny(rawSQLRe, line) {
				continue
			}
			r.Add(occurrence(path, i+1, findings.SeverityWarning,
				fmt.Sprintf("raw SQL in %s; use the resource model select builder or a repository", where)))
		}
	}
	return nil
}

func matchesAny(patterns []*regexp.Regexp, line string) bool {
	for _, re := range patterns {
		if re.MatchString(line) {
			return true
		}
	}
	return false
}
