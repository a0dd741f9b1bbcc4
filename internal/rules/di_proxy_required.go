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

// Metadata keys of diProxyRequired occurrences.
const (
	ProxyMetaClass    = "class"
	ProxyMetaArgument = "argument"
	ProxyMetaType     = "type"
	ProxyMetaProxy    = "proxy"
	ProxyMetaDIFile   = "diFile"
	ProxyMetaArea     = "area"
)

// expensiveTypes start sessions or open connections on construction.
var expensiveTypes = map[string]struct{}{
	`Magento\Backend\Model\Auth\Session`:                {},
	`Magento\Backend\Model\Session`:                     {},
	`Magento\Catalog\Model\Session`:                     {},
	`Magento\Checkout\Model\Session`:                    {},
	`Magento\Customer\Model\Session`:                    {},
	`Magento\Framework\Session\SessionManager`:          {},
	`Magento\Framework\Session\SessionManagerInterface`: {},
	`Magento\Framework\Session\Generic`:                 {},
	`Magento\Newsletter\Model\Session`:                  {},
	`Magento\Review\Model\Session`:                      {},
}

// DIProxyRequired flags session dependencies injected without a Proxy.
type DIProxyRequired struct {
	processor.Base
	logger hclog.Logger
}

func NewDIProxyRequired(_ *heuristics.Session, logger hclog.Logger) (processor.Processor, error) {
	return &DIProxyRequired{
		Base: processor.Base{
			ID:               DIProxyRequiredID,
			Target:           collector.TypeDI,
			Name:             "Session dependency without Proxy",
			ShortDescription: "session injected without a \\Proxy argument in di.xml",
			LongDescription: "Session classes start the PHP session as soon as they are constructed, which " +
				"breaks full page cache for every page that builds the dependent class. Inject the \\Proxy " +
				"variant through di.xml so the session starts only when it is used.",
		},
		logger: logger,
	}, nil
}

// IsExpensiveType reports whether constructing fqcn has side effects worth deferring.
func IsExpensiveType(fqcn string) bool {
	_, ok := expensiveTypes[strings.TrimPrefix(fqcn, `\`)]
	return ok
}

func (r *DIProxyRequired) Process(classification collector.Classification) error {
	proxied := r.proxiedArguments(classification.Files(collector.TypeDI))

	for _, path := range classification.Files(collector.TypePHP) {
		src, ok := load(path)
		if !ok {
			continue
		}
		class := heuristics.ClassFQCN(src.content)
		if class == "" || heuristics.IsThirdPartyVendor(class) || heuristics.IsFrameworkClass(class) {
			continue
		}
		ctor, ok := heuristics.ConstructorParams(src.content)
		if !ok {
			continue
		}

		for _, param := range ctor.Params {
			if param.FQCN == "" || !IsExpensiveType(param.FQCN) {
				continue
			}
			if proxied[class][param.Name] {
				continue
			}
			r.report(src.path, class, param)
		}
	}
	return nil
}

func (r *DIProxyRequired) report(path, class string, param heuristics.Param) {
	proxy := param.FQCN + `\Proxy`
	diFile, ok := heuristics.NearestDIXML(path)
	area := heuristics.AreaGlobal
	if ok {
		area = heuristics.DIArea(diFile)
	}

	o := occurrence(path, param.Line, findings.SeverityWarning,
		fmt.Sprintf("%s receives $%s as %s; configure %s for this argument in di.xml", class, param.Name, param.FQCN, proxy))
	o.Metadata = map[string]interface{}{
		ProxyMetaClass:    class,
		ProxyMetaArgument: param.Name,
		ProxyMetaType:     param.FQCN,
		ProxyMetaProxy:    proxy,
		ProxyMetaDIFile:   diFile,
		ProxyMetaArea:     string(area),
	}
	r.Add(o)
}

// proxiedArguments maps class -> argument name for every argument configured with a
// Proxy in any of the given di.xml files.
func (r *DIProxyRequired) proxiedArguments(diFiles []string) map[string]map[string]bool {
	proxied := make(map[string]map[string]bool)
	for _, path := range diFiles {
		doc, err := heuristics.LoadXML(path)
		if err != nil {
			r.logger.Debug("skipping unparsable di.xml", "file", path, "error", err)
			continue
		}
		for _, typ := range doc.FindElements("//type") {
			class := strings.TrimPrefix(typ.SelectAttrValue("name", ""), `\`)
			for _, arg := range typ.FindElements("arguments/argument") {
				if !strings.HasSuffix(strings.TrimSpace(arg.Text()), `\Proxy`) {
					continue
				}
				if proxied[class] == nil {
					proxied[class] = make(map[string]bool)
				}
				proxied[class][arg.SelectAttrValue("name", "")] = true
			}
		}
	}
	return proxied
}
