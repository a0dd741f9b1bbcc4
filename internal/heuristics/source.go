// Package heuristics extracts structural facts from PHP and XML source text without a
// grammar. Every analyzer here is approximate: braces or keywords inside strings and
// comments are not recognised, only single inheritance is modelled and parameter lists
// are split on commas. Rules depend on this exact behaviour, so do not "fix" it with a
// real parser.
package heuristics

import (
	"os"
	"regexp"
	"strings"
)

var (
	namespaceRe  = regexp.MustCompile(`(?m)^\s*namespace\s+([A-Za-z_][\w\\]*)\s*[;{]`)
	classRe      = regexp.MustCompile(`(?m)^\s*(?:(?:abstract|final|readonly)\s+)*class\s+([A-Za-z_]\w*)(?:\s+extends\s+(\\?[A-Za-z_][\w\\]*))?`)
	implementsRe = regexp.MustCompile(`(?m)^\s*(?:(?:abstract|final|readonly)\s+)*class\s+[A-Za-z_]\w*(?:\s+extends\s+\\?[A-Za-z_][\w\\]*)?\s+implements\s+([^{]+)`)
)

// ClassDeclaration is the first class declared in a file.
type ClassDeclaration struct {
	Name    string
	Extends string // as written, may be a short name
	Line    int
}

// Namespace returns the declared namespace, or "" when none is found.
func Namespace(content string) string {
	m := namespaceRe.FindStringSubmatch(content)
	if m == nil {
		return ""
	}
	return m[1]
}

// Class returns the first `class X [extends Y]` declaration.
func Class(content string) (ClassDeclaration, bool) {
	loc := classRe.FindStringSubmatchIndex(content)
	if loc == nil {
		return ClassDeclaration{}, false
	}
	decl := ClassDeclaration{
		Name: content[loc[2]:loc[3]],
		Line: lineAt(content, loc[2]),
	}
	if loc[4] >= 0 {
		decl.Extends = content[loc[4]:loc[5]]
	}
	return decl, true
}

// ClassFQCN joins the namespace and class name of a file, "" when there is no class.
func ClassFQCN(content string) string {
	decl, ok := Class(content)
	if !ok {
		return ""
	}
	return qualify(Namespace(content), decl.Name)
}

// Implements returns the interface names listed in the class `implements` clause,
// resolved against the file imports.
func Implements(content string) []string {
	m := implementsRe.FindStringSubmatch(content)
	if m == nil {
		return nil
	}
	imports := ParseImports(content)
	ns := Namespace(content)

	var out []string
	for _, name := range strings.Split(m[1], ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		out = append(out, ResolveShortName(name, imports, ns))
	}
	return out
}

// FindLine returns the 1-based line of the first occurrence of needle, 0 when absent.
func FindLine(content, needle string) int {
	if needle == "" {
		return 0
	}
	idx := strings.Index(content, needle)
	if idx < 0 {
		return 0
	}
	return lineAt(content, idx)
}

// FindAllLines returns the 1-based line of every line containing needle.
func FindAllLines(content, needle string) []int {
	if needle == "" {
		return nil
	}
	var out []int
	for i, line := range strings.Split(content, "\n") {
		if strings.Contains(line, needle) {
			out = append(out, i+1)
		}
	}
	return out
}

// ReadSource returns file content, or "" when the file cannot be read.
func ReadSource(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return string(data)
}

func lineAt(content string, offset int) int {
	return strings.Count(content[:offset], "\n") + 1
}

func qualify(namespace, name string) string {
	if namespace == "" {
		return name
	}
	return namespace + `\` + name
}
