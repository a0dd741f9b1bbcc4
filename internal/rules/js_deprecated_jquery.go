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

var deprecatedJquery = []struct {
	re          *regexp.Regexp
	api         string
	replacement string
}{
	{regexp.MustCompile(`\.size\(\s*\)`), ".size()", ".length"},
	{regexp.MustCompile(`\.andSelf\(\s*\)`), ".andSelf()", ".addBack()"},
	{regexp.MustCompile(`(?:jQuery|\$)\.browser\b`), "jQuery.browser", "feature detection"},
	{regexp.MustCompile(`\.live\(`), ".live()", ".on()"},
	{regexp.MustCompile(`\.die\(`), ".die()", ".off()"},
}

// JSDeprecatedJquery flags jQuery APIs removed in the jQuery 3 shipped with Magento 2.4.
type JSDeprecatedJquery struct {
	processor.Base
	logger hclog.Logger
}

func NewJSDeprecatedJquery(_ *heuristics.Session, logger hclog.Logger) (processor.Processor, error) {
	return &JSDeprecatedJquery{
		Base: processor.Base{
			ID:               JSDeprecatedJqueryID,
			Target:           collector.TypeJS,
			Name:             "Deprecated jQuery API",
			ShortDescription: "jQuery API removed in jQuery 3",
			LongDescription:  "These jQuery APIs were removed in jQuery 3 and fail at runtime on current Magento releases.",
		},
		logger: logger,
	}, nil
}

func (r *JSDeprecatedJquery) Process(classification collector.Classification) error {
	for _, path := range classification.Files(collector.TypeJS) {
		if strings.HasSuffix(path, ".min.js") {
			continue
		}
		src, ok := load(path)
		if !ok {
			continue
		}
		for i, line := range src.lines {
			for _, api := range deprecatedJquery {
				if !api.re.MatchString(line) {
					continue
				}
				r.Add(occurrence(path, i+1, findings.SeverityWarning,
					fmt.Sprintf("%s was removed in jQuery 3; use %s", api.api, api.replacement)))
			}
		}
	}
	return nil
}
