package heuristics

import (
	"regexp"
	"strings"
)

var useRe = regexp.MustCompile(`(?m)^\s*use\s+\\?([A-Za-z_][\w\\]*)(?:\s+as\s+([A-Za-z_]\w*))?\s*;`)

// ParseImports maps short names to FQCNs from `use Foo\Bar[ as Baz];` statements.
// The alias is the key when present, otherwise the last path segment.
// Trait `use` statements inside class bodies match too.
func ParseImports(content string) map[string]string {
	imports := make(map[string]string)
	for _, m := range useRe.FindAllStringSubmatch(content, -1) {
		fqcn := m[1]
		key := m[2]
		if key == "" {
			key = lastSegment(fqcn)
		}
		imports[key] = fqcn
	}
	return imports
}

// ResolveShortName turns a class reference into an FQCN.
// Qualified names are returned as is, short names are looked up in imports (exactly,
// then case-insensitively as PHP does), and anything else is assumed to live in the
// current namespace. The last step is a guess, not a guarantee.
func ResolveShortName(name string, imports map[string]string, namespace string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	if strings.Contains(name, `\`) {
		return strings.TrimPrefix(name, `\`)
	}
	if fqcn, ok := imports[name]; ok {
		return fqcn
	}
	for alias, fqcn := range imports {
		if strings.EqualFold(alias, name) {
			return fqcn
		}
	}
	return qualify(namespace, name)
}

func lastSegment(fqcn string) string {
	if i := strings.LastIndex(fqcn, `\`); i >= 0 {
		return fqcn[i+1:]
	}
	return fqcn
}
