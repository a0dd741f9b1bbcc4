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

var (
	aroundMethodRe = regexp.MustCompile(`(?:^|[\s;{}])function\s+&?\s*(around[A-Z]\w*)\s*\(`)
	proceedParamRe = regexp.MustCompile(`(?:callable|\\?Closure)\s+\$(\w+)`)
)

// AroundPluginProceed flags around plugins that never call the proceed callable, which
// silently drops the original method and every plugin after it.
type AroundPluginProceed struct {
	processor.Base
	logger hclog.Logger
}

func NewAroundPluginProceed(_ *heuristics.Session, logger hclog.Logger) (processor.Processor, error) {
	return &AroundPluginProceed{
		Base: processor.Base{
			ID:               AroundPluginProceedID,
			Target:           collector.TypePHP,
			Name:             "Around plugin without $proceed",
			ShortDescription: "around plugin never calls $proceed()",
			LongDescription: "An around plugin that does not invoke its $proceed callable replaces the " +
				"intercepted method and skips all later plugins. Call $proceed() or use a before/after plugin.",
		},
		logger: logger,
	}, nil
}

func (r *AroundPluginProceed) Process(classification collector.Classification) error {
	for _, path := range classification.Files(collector.TypePHP) {
		if !strings.Contains(filepath.ToSlash(path), "/Plugin/") {
			continue
		}
		src, ok := load(path)
		if !ok {
			continue
		}
		for i, line := range src.lines {
			m := aroundMethodRe.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			if err := r.inspect(src, i+1, m[1]); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *AroundPluginProceed) inspect(src source, line int, method string) error {
	block, err := heuristics.ExtractFunction(src.lines, line)
	if err != nil {
		return fmt.Errorf("%s:%d: %w", src.path, line, err)
	}
	body, err := heuristics.FunctionBody(src.lines, line)
	if err != nil {
		return fmt.Errorf("%s:%d: %w", src.path, line, err)
	}

	proceed := "proceed"
	if m := proceedParamRe.FindStringSubmatch(signature(block)); m != nil {
		proceed = m[1]
	}
	if strings.Contains(body, "$"+proceed+"(") || strings.Contains(body, "$"+proceed+" (") {
		return nil
	}

	r.logger.Trace("around plugin without proceed", "file", src.path, "method", method)
	o := occurrence(src.path, block.StartLine, findings.SeverityError,
		fmt.Sprintf("%s() never calls $%s(); the original method and later plugins will not run", method, proceed))
	o.EndLine = block.EndLine
	r.Add(o)
	return nil
}

// signature is the block text up to the opening brace.
func signature(block heuristics.FunctionBlock) string {
	text := block.Text()
	if i := strings.Index(text, "{"); i >= 0 {
		return text[:i]
	}
	return text
}
