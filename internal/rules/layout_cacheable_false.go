package rules

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/scan-io-git/magelint/internal/collector"
	"github.com/scan-io-git/magelint/internal/findings"
	"github.com/scan-io-git/magelint/internal/heuristics"
	"github.com/scan-io-git/magelint/internal/processor"
)

var cacheableFalseRe = regexp.MustCompile(`cacheable\s*=\s*["']false["']`)

// LayoutCacheableFalse flags layout blocks that disable full page cache.
// default.xml is loaded on every page, so there it is an error.
type LayoutCacheableFalse struct {
	processor.Base
	logger hclog.Logger
}

func NewLayoutCacheableFalse(_ *heuristics.Session, logger hclog.Logger) (processor.Processor, error) {
	return &LayoutCacheableFalse{
		Base: processor.Base{
			ID:               LayoutCacheableFalseID,
			Target:           collector.TypeXML,
			Name:             "Non cacheable layout block",
			ShortDescription: `layout block with cacheable="false"`,
			LongDescription: `A single block with cacheable="false" makes the whole page uncacheable. ` +
				"Load customer specific content through private content sections or AJAX.",
		},
		logger: logger,
	}, nil
}

func (r *LayoutCacheableFalse) Process(classification collector.Classification) error {
	for _, path := range classification.Files(collector.TypeXML) {
		if !strings.Contains(filepath.ToSlash(path), "/layout/") {
			continue
		}
		src, ok := load(path)
		if !ok {
			continue
		}
		doc, err := heuristics.ParseXML([]byte(src.content))
		if err != nil {
			r.logger.Debug("skipping unparsable layout", "file", path, "error", err)
			continue
		}

		var lines []int
		for i, line := range src.lines {
			if cacheableFalseRe.MatchString(line) {
				lines = append(lines, i+1)
			}
		}

		severity := findings.SeverityWarning
		if filepath.Base(path) == "default.xml" {
			severity = findings.SeverityError
		}

		for i, el := range doc.FindElements("//*[@cacheable='false']") {
			line := 1
			if i < len(lines) {
				line = lines[i]
			}
			name := el.SelectAttrValue("name", el.Tag)
			r.Add(occurrence(path, line, severity,
				fmt.Sprintf("%s %q disables full page cache for handle %s", el.Tag, name, strings.TrimSuffix(filepath.Base(path), ".xml"))))
		}
	}
	return nil
}
