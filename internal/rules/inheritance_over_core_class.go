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

// extensionBases are framework classes meant to be extended.
var extensionBases = map[string]struct{}{
	`Magento\Backend\App\Action`:                                             {},
	`Magento\Backend\Block\Template`:                                         {},
	`Magento\Backend\Block\Widget\Form\Generic`:                              {},
	`Magento\Backend\Block\Widget\Grid\Column\Renderer\AbstractRenderer`:     {},
	`Magento\Framework\App\Action\Action`:                                    {},
	`Magento\Framework\App\Helper\AbstractHelper`:                            {},
	`Magento\Framework\DataObject`:                                           {},
	`Magento\Framework\Model\AbstractExtensibleModel`:                        {},
	`Magento\Framework\Model\AbstractModel`:                                  {},
	`Magento\Framework\Model\ResourceModel\Db\AbstractDb`:                    {},
	`Magento\Framework\Model\ResourceModel\Db\Collection\AbstractCollection`: {},
	`Magento\Framework\View\Element\AbstractBlock`:                           {},
	`Magento\Framework\View\Element\Template`:                                {},
	`Magento\Framework\View\Element\UiComponent\DataProvider\DataProvider`:   {},
}

// InheritanceOverCoreClass flags project classes that extend concrete framework models or
// blocks instead of using plugins or preferences.
type InheritanceOverCoreClass struct {
	processor.Base
	session *heuristics.Session
	logger  hclog.Logger
}

func NewInheritanceOverCoreClass(session *heuristics.Session, logger hclog.Logger) (processor.Processor, error) {
	if session == nil {
		return nil, fmt.Errorf("scan session is required")
	}
	return &InheritanceOverCoreClass{
		Base: processor.Base{
			ID:               InheritanceOverCoreClassID,
			Target:           collector.TypePHP,
			Name:             "Inheritance over core class",
			ShortDescription: "class extends a concrete Magento model or block",
			LongDescription: "Extending concrete core classes couples the code to their internals and breaks " +
				"on upgrades. Prefer plugins, preferences on interfaces, or composition.",
		},
		session: session,
		logger:  logger,
	}, nil
}

// IsExtensionBase reports whether fqcn is a framework class designed for inheritance.
func IsExtensionBase(fqcn string) bool {
	if _, ok := extensionBases[fqcn]; ok {
		return true
	}
	short := fqcn
	if i := strings.LastIndex(fqcn, `\`); i >= 0 {
		short = fqcn[i+1:]
	}
	return strings.HasPrefix(short, "Abstract")
}

func (r *InheritanceOverCoreClass) Process(classification collector.Classification) error {
	phpFiles := classification.Files(collector.TypePHP)
	r.session.IndexFiles(phpFiles)

	for _, path := range phpFiles {
		src, ok := load(path)
		if !ok {
			continue
		}
		decl, ok := heuristics.Class(src.content)
		if !ok || decl.Extends == "" {
			continue
		}
		class := heuristics.ClassFQCN(src.content)
		if heuristics.IsFrameworkClass(class) || heuristics.IsThirdPartyVendor(class) {
			continue
		}
		parent, ok := r.session.ParentOf(class)
		if !ok || !isConcreteCoreClass(parent) {
			continue
		}

		siblings := len(r.session.ChildrenOf(parent)) - 1
		if siblings < 0 {
			siblings = 0
		}
		r.Add(occurrence(path, decl.Line, findings.SeverityWarning,
			fmt.Sprintf("%s extends core class %s (%d other indexed classes extend it); prefer a plugin or preference",
				class, parent, siblings)))
	}
	return nil
}

func isConcreteCoreClass(fqcn string) bool {
	if !heuristics.IsFrameworkClass(fqcn) || IsExtensionBase(fqcn) {
		return false
	}
	return heuristics.ContainsAny(fqcn, `\Model\`, `\Block\`)
}
