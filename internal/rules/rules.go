// Package rules holds the built-in Magento rule processors.
package rules

import (
	"strings"

	"github.com/scan-io-git/magelint/internal/findings"
	"github.com/scan-io-git/magelint/internal/heuristics"
	"github.com/scan-io-git/magelint/internal/processor"
)

// Rule identifiers.
const (
	AroundPluginProceedID      = "aroundPluginProceed"
	DIAreaScopeID              = "diAreaScope"
	DIProxyRequiredID          = "diProxyRequired"
	DirectObjectManagerID      = "directObjectManager"
	InheritanceOverCoreClassID = "inheritanceOverCoreClass"
	JSDeprecatedJqueryID       = "jsDeprecatedJquery"
	LayoutCacheableFalseID     = "layoutCacheableFalse"
	PHTMLUnescapedOutputID     = "phtmlUnescapedOutput"
	RawSQLQueryID              = "rawSqlQuery"
	RepositoryOverCollectionID = "repositoryOverCollection"
)

// Default returns the registry of every built-in rule.
func Default() *processor.Registry {
	return processor.NewRegistry(
		processor.Registration{ID: AroundPluginProceedID, Factory: NewAroundPluginProceed},
		processor.Registration{ID: DIAreaScopeID, Factory: NewDIAreaScope},
		processor.Registration{ID: DIProxyRequiredID, Factory: NewDIProxyRequired},
		processor.Registration{ID: DirectObjectManagerID, Factory: NewDirectObjectManager},
		processor.Registration{ID: InheritanceOverCoreClassID, Factory: NewInheritanceOverCoreClass},
		processor.Registration{ID: JSDeprecatedJqueryID, Factory: NewJSDeprecatedJquery},
		processor.Registration{ID: LayoutCacheableFalseID, Factory: NewLayoutCacheableFalse},
		processor.Registration{ID: PHTMLUnescapedOutputID, Factory: NewPHTMLUnescapedOutput},
		processor.Registration{ID: RawSQLQueryID, Factory: NewRawSQLQuery},
		processor.Registration{ID: RepositoryOverCollectionID, Factory: NewRepositoryOverCollection},
	)
}

type source struct {
	path    string
	content string
	lines   []string
}

// load reads a file; ok is false for unreadable or empty files.
func load(path string) (source, bool) {
	content := heuristics.ReadSource(path)
	if content == "" {
		return source{}, false
	}
	return source{path: path, content: content, lines: strings.Split(content, "\n")}, true
}

func occurrence(file string, line int, severity findings.Severity, message string) findings.Occurrence {
	if line < 1 {
		line = 1
	}
	return findings.Occurrence{
		File:      file,
		StartLine: line,
		EndLine:   line,
		Message:   message,
		Severity:  severity,
	}
}
