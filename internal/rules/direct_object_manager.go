package rules

import (
	"fmt"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/scan-io-git/magelint/internal/collector"
	"github.com/scan-io-git/magelint/internal/findings"
	"github.com/scan-io-git/magelint/internal/heuristics"
	"github.com/scan-io-git/magelint/internal/processor"
)

var objectManagerTypes = []string{
	`Magento\Framework\ObjectManagerInterface`,
	`Magento\Framework\App\ObjectManager`,
}

// DirectObjectManager flags service location through the ObjectManager.
// Factories, proxies and Setup scripts are allowed to use it.
type DirectObjectManager struct {
	processor.Base
	logger hclog.Logger
}

func NewDirectObjectManager(_ *heuristics.Session, logger hclog.Logger) (processor.Processor, error) {
	return &DirectObjectManager{
		Base: processor.Base{
			ID:               DirectObjectManagerID,
			Target:           collector.TypePHP,
			Name:             "Direct ObjectManager usage",
			ShortDescription: "ObjectManager used outside factories",
			LongDescription: "Fetching objects from the ObjectManager hides dependencies from the constructor " +
				"and bypasses DI configuration. Inject the dependency or a generated factory instead.",
		},
		logger: logger,
	}, nil
}

func (r *DirectObjectManager) Process(classification collector.Classification) error {
	for _, path := range classification.Files(collector.TypePHP) {
		if heuristics.IsSetupPath(path) {
			continue
		}
		src, ok := load(path)
		if !ok {
			continue
		}
		class := heuristics.ClassFQCN(src.content)
		if heuristics.HasSuffix(class, "Factory", "Proxy", "Interceptor") {
			continue
		}

		for _, line := range heuristics.FindAllLines(src.content, "ObjectManager::getInstance()") {
			r.Add(occurrence(path, line, findings.SeverityError,
				"ObjectManager::getInstance() used directly; inject the dependency through the constructor"))
		}

		ctor, ok := heuristics.ConstructorParams(src.content)
		if !ok {
			continue
		}
		for _, param := range ctor.Params {
			if !isObjectManager(param.FQCN) {
				continue
			}
			r.Add(occurrence(path, param.Line, findings.SeverityError,
				fmt.Sprintf("%s is injected into %s; inject the concrete dependency or its factory", param.FQCN, displayClass(class, path))))
		}
	}
	return nil
}

func isObjectManager(fqcn string) bool {
	for _, t := range objectManagerTypes {
		if strings.EqualFold(fqcn, t) {
			return true
		}
	}
	return false
}

func displayClass(class, path string) string {
	if class != "" {
		return class
	}
	return path
}
