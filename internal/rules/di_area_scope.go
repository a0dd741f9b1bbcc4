package rules

import (
	"fmt"

	"github.com/hashicorp/go-hclog"

	"github.com/scan-io-git/magelint/internal/collector"
	"github.com/scan-io-git/magelint/internal/findings"
	"github.com/scan-io-git/magelint/internal/heuristics"
	"github.com/scan-io-git/magelint/internal/processor"
)

// DIAreaScope flags global di.xml entries for classes whose name ties them to one area.
type DIAreaScope struct {
	processor.Base
	logger hclog.Logger
}

func NewDIAreaScope(_ *heuristics.Session, logger hclog.Logger) (processor.Processor, error) {
	return &DIAreaScope{
		Base: processor.Base{
			ID:               DIAreaScopeID,
			Target:           collector.TypeDI,
			Name:             "DI configuration in the wrong area",
			ShortDescription: "area specific class configured in global di.xml",
			LongDescription: "Configuration in etc/di.xml is loaded for every area. Types and preferences " +
				"for adminhtml or frontend classes belong in etc/<area>/di.xml.",
		},
		logger: logger,
	}, nil
}

func (r *DIAreaScope) Process(classification collector.Classification) error {
	for _, path := range classification.Files(collector.TypeDI) {
		if heuristics.DIArea(path) != heuristics.AreaGlobal {
			continue
		}
		src, ok := load(path)
		if !ok {
			continue
		}
		doc, err := heuristics.ParseXML([]byte(src.content))
		if err != nil {
			r.logger.Debug("skipping unparsable di.xml", "file", path, "error", err)
			continue
		}

		for _, el := range doc.FindElements("//type") {
			r.check(src, el.SelectAttrValue("name", ""), "type")
		}
		for _, el := range doc.FindElements("//preference") {
			r.check(src, el.SelectAttrValue("type", ""), "preference")
		}
	}
	return nil
}

func (r *DIAreaScope) check(src source, class, kind string) {
	if class == "" || heuristics.IsFrameworkClass(class) || heuristics.IsThirdPartyVendor(class) {
		return
	}
	area, ok := heuristics.SuggestAreaForClass(class)
	if !ok {
		return
	}
	r.Add(occurrence(src.path, heuristics.FindLine(src.content, `"`+class+`"`), findings.SeverityNote,
		fmt.Sprintf("%s %s looks %s specific; move it to etc/%s/di.xml", kind, class, area, area)))
}
