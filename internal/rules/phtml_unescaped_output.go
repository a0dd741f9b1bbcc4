package rules

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/scan-io-git/magelint/internal/collector"
	"github.com/scan-io-git/magelint/internal/findings"
	"github.com/scan-io-git/magelint/internal/heuristics"
	"github.com/scan-io-git/magelint/internal/processor"
)

var (
	shortEchoRe = regexp.MustCompile(`<\?=\s*(.*?)\s*;?\s*\?>`)
	echoRe      = regexp.MustCompile(`\becho\s+([^;?]+)`)
)

// outputs that are HTML by contract
var safeOutput = []string{"escape", "@noEscape", "getChildHtml", "getBlockHtml", "toHtml", "getLayout()"}

// PHTMLUnescapedOutput flags block data printed in templates without an escaper.
type PHTMLUnescapedOutput struct {
	processor.Base
	logger hclog.Logger
}

func NewPHTMLUnescapedOutput(_ *heuristics.Session, logger hclog.Logger) (processor.Processor, error) {
	return &PHTMLUnescapedOutput{
		Base: processor.Base{
			ID:               PHTMLUnescapedOutputID,
			Target:           collector.TypePHTML,
			Name:             "Unescaped template output",
			ShortDescription: "block data echoed without escaping",
			LongDescription: "Template output must go through $escaper->escapeHtml(), escapeHtmlAttr(), escapeUrl() " +
				"or escapeJs(). Unescaped output is an XSS vector.",
		},
		logger: logger,
	}, nil
}

func (r *PHTMLUnescapedOutput) Process(classification collector.Classification) error {
	for _, path := range classification.Files(collector.TypePHTML) {
		src, ok := load(path)
		if !ok {
			continue
		}
		for i, line := range src.lines {
			for _, expr := range outputExpressions(line) {
				if !strings.Contains(expr, "$block->") || heuristics.ContainsAny(expr, safeOutput...) {
					continue
				}
				r.Add(occurrence(path, i+1, findings.SeverityWarning,
					fmt.Sprintf("unescaped output of %s", expr)))
			}
		}
	}
	return nil
}

func outputExpressions(line string) []string {
	var out []string
	for _, m := range shortEchoRe.FindAllStringSubmatch(line, -1) {
		out = append(out, strings.TrimSpace(m[1]))
	}
	for _, m := range echoRe.FindAllStringSubmatch(line, -1) {
		out = append(out, strings.TrimSpace(m[1]))
	}
	return out
}
