package heuristics

import (
	"regexp"
	"strings"
)

var (
	constructorRe = regexp.MustCompile(`(?s)function\s+__construct\s*\(([^)]*)\)`)
	paramRe       = regexp.MustCompile(`^(\??)([A-Za-z_\\][\w\\|]*)?\s*&?\s*(?:\.\.\.)?\s*\$([A-Za-z_]\w*)`)
	modifierRe    = regexp.MustCompile(`(?i)^(?:(?:public|protected|private)(?:\(set\))?\s+|readonly\s+)+`)
	attributeRe   = regexp.MustCompile(`#\[[^\]]*\]`)
)

var builtinTypes = map[string]struct{}{
	"array": {}, "bool": {}, "callable": {}, "false": {}, "float": {}, "int": {},
	"iterable": {}, "mixed": {}, "null": {}, "object": {}, "self": {}, "static": {},
	"string": {}, "true": {}, "void": {},
}

// Param is one constructor parameter.
type Param struct {
	Name     string // without the leading $
	Type     string // as written, "" when untyped
	FQCN     string // resolved class type, "" for builtin or missing types
	Nullable bool
	Optional bool // has a default value
	Line     int
}

// Constructor is the parsed `__construct` signature of a class.
type Constructor struct {
	Line   int
	Params []Param
}

// ConstructorParams parses the first `__construct` signature in content.
// The parameter list ends at the first closing parenthesis, so defaults such as
// `array()` truncate it.
func ConstructorParams(content string) (Constructor, bool) {
	loc := constructorRe.FindStringSubmatchIndex(content)
	if loc == nil {
		return Constructor{}, false
	}
	ctor := Constructor{Line: lineAt(content, loc[0])}
	imports := ParseImports(content)
	ns := Namespace(content)

	offset := loc[2]
	for _, segment := range strings.Split(content[loc[2]:loc[3]], ",") {
		start := offset
		offset += len(segment) + 1

		param, ok := parseParam(segment, imports, ns)
		if !ok {
			continue
		}
		lead := len(segment) - len(strings.TrimLeft(segment, " \t\r\n"))
		param.Line = lineAt(content, start+lead)
		ctor.Params = append(ctor.Params, param)
	}
	return ctor, true
}

func parseParam(segment string, imports map[string]string, namespace string) (Param, bool) {
	text := strings.TrimSpace(attributeRe.ReplaceAllString(segment, ""))
	if text == "" {
		return Param{}, false
	}

	var param Param
	if i := strings.Index(text, "="); i >= 0 {
		param.Optional = true
		text = strings.TrimSpace(text[:i])
	}
	text = modifierRe.ReplaceAllString(text, "")

	m := paramRe.FindStringSubmatch(text)
	if m == nil {
		return Param{}, false
	}
	param.Name = m[3]
	param.Type = m[2]
	param.Nullable = m[1] == "?"

	classType := ""
	for _, member := range strings.Split(param.Type, "|") {
		if strings.EqualFold(member, "null") {
			param.Nullable = true
			continue
		}
		if classType == "" && !IsBuiltinType(member) {
			classType = member
		}
	}
	if classType != "" {
		param.FQCN = ResolveShortName(classType, imports, namespace)
	}
	return param, true
}

// IsBuiltinType reports whether a type name is a PHP scalar or pseudo type.
func IsBuiltinType(name string) bool {
	_, ok := builtinTypes[strings.ToLower(strings.TrimPrefix(name, "?"))]
	return ok
}
