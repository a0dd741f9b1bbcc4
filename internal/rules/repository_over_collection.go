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

// RepositoryOverCollection flags collections and resource models injected into classes
// that should go through service contracts.
//
// Severity depends on where the dependency points: another module is an error, Block
// classes only get a note, everything else a warning.
type RepositoryOverCollection struct {
	processor.Base
	session *heuristics.Session
	logger  hclog.Logger
}

func NewRepositoryOverCollection(session *heuristics.Session, logger hclog.Logger) (processor.Processor, error) {
	if session == nil {
		return nil, fmt.Errorf("scan session is required")
	}
	return &RepositoryOverCollection{
		Base: processor.Base{
			ID:               RepositoryOverCollectionID,
			Target:           collector.TypePHP,
			Name:             "Collection instead of repository",
			ShortDescription: "collection or resource model injected directly",
			LongDescription: "Collections and resource models are persistence internals. Code outside the " +
				"persistence layer should depend on repositories and Api interfaces.",
		},
		session: session,
		logger:  logger,
	}, nil
}

func (r *RepositoryOverCollection) Process(classification collector.Classification) error {
	phpFiles := classification.Files(collector.TypePHP)
	r.session.IndexFiles(phpFiles)

	for _, path := range phpFiles {
		if heuristics.IsSetupPath(path) {
			continue
		}
		src, ok := load(path)
		if !ok {
			continue
		}
		class := heuristics.ClassFQCN(src.content)
		if class == "" || isPersistenceClass(class) || heuristics.IsThirdPartyVendor(class) {
			continue
		}
		ctor, ok := heuristics.ConstructorParams(src.content)
		if !ok {
			continue
		}

		for _, param := range ctor.Params {
			if param.FQCN == "" || !isPersistenceDependency(param.FQCN) {
				continue
			}
			r.Add(occurrence(path, param.Line, r.severity(path, class, param.FQCN), r.message(class, param)))
		}
	}
	return nil
}

func (r *RepositoryOverCollection) severity(path, class, dependency string) findings.Severity {
	switch {
	case heuristics.IsBlockFile(path):
		return findings.SeverityNote
	case !heuristics.SameModule(class, dependency):
		return findings.SeverityError
	default:
		return findings.SeverityWarning
	}
}

func (r *RepositoryOverCollection) message(class string, param heuristics.Param) string {
	msg := fmt.Sprintf("%s injects %s as $%s", class, param.FQCN, param.Name)

	entity, ok := EntityFor(param.FQCN)
	if !ok {
		return msg + "; use a repository instead"
	}
	if implements, iface := r.session.ImplementsAPIInterface(entity); implements {
		return fmt.Sprintf("%s; use %s with %s", msg, RepositoryInterfaceFor(entity), iface)
	}
	return fmt.Sprintf("%s; use %s", msg, RepositoryInterfaceFor(entity))
}

// EntityFor maps a collection, collection factory or resource model to its model class:
// Vendor\Module\Model\ResourceModel\Product\Collection -> Vendor\Module\Model\Product.
func EntityFor(fqcn string) (string, bool) {
	name := strings.TrimPrefix(fqcn, `\`)
	i := strings.Index(name, `\Model\ResourceModel\`)
	if i < 0 {
		return "", false
	}
	rest := name[i+len(`\Model\ResourceModel\`):]
	if heuristics.IsCollection(rest) || heuristics.IsCollectionFactory(rest) {
		j := strings.LastIndex(rest, `\`)
		if j < 0 {
			return "", false
		}
		rest = rest[:j]
	}
	if rest == "" {
		return "", false
	}
	return name[:i] + `\Model\` + rest, true
}

// RepositoryInterfaceFor guesses the repository contract of a model:
// Vendor\Module\Model\Product -> Vendor\Module\Api\ProductRepositoryInterface.
func RepositoryInterfaceFor(entity string) string {
	i := strings.Index(entity, `\Model\`)
	if i < 0 {
		return entity + "RepositoryInterface"
	}
	short := strings.ReplaceAll(entity[i+len(`\Model\`):], `\`, "")
	return entity[:i] + `\Api\` + short + "RepositoryInterface"
}

func isPersistenceDependency(fqcn string) bool {
	return heuristics.IsCollection(fqcn) || heuristics.IsCollectionFactory(fqcn) || heuristics.IsResourceModel(fqcn)
}

// persistence classes and repositories are allowed to use collections
func isPersistenceClass(class string) bool {
	return isPersistenceDependency(class) ||
		heuristics.IsRepository(class) ||
		strings.Contains(class, `\ResourceModel\`)
}
