package heuristics

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	appCodeRe = regexp.MustCompile(`(?:^|/)app/code/([^/]+)/([^/]+)/`)
	vendorRe  = regexp.MustCompile(`(?:^|/)vendor/([^/]+)/([^/]+)/`)

	modulePrefixes = []string{"magento2-", "magento-"}
	layerDirs      = map[string]struct{}{
		"Block": {}, "Model": {}, "ViewModel": {}, "Controller": {}, "Helper": {},
	}
)

// ModuleName derives `Vendor_Module` from a file path.
// It tries the app/code layout, then a composer vendor/ package (kebab-case to StudlyCase,
// `magento2-` and `magento-` prefixes dropped), then the two directories above the first
// Block, Model, ViewModel, Controller or Helper segment.
func ModuleName(path string) (string, bool) {
	p := filepath.ToSlash(path)

	if m := appCodeRe.FindStringSubmatch(p); m != nil {
		return m[1] + "_" + m[2], true
	}

	if m := vendorRe.FindStringSubmatch(p); m != nil {
		module := strings.ToLower(m[2])
		for _, prefix := range modulePrefixes {
			if strings.HasPrefix(module, prefix) {
				module = strings.TrimPrefix(module, prefix)
				break
			}
		}
		vendor, name := studly(m[1]), studly(module)
		if vendor != "" && name != "" {
			return vendor + "_" + name, true
		}
	}

	segments := strings.Split(p, "/")
	for i, segment := range segments {
		if _, ok := layerDirs[segment]; !ok {
			continue
		}
		if i >= 2 && segments[i-2] != "" && segments[i-1] != "" {
			return segments[i-2] + "_" + segments[i-1], true
		}
		break
	}
	return "", false
}

// GroupByModule buckets paths by ModuleName. Paths with no module are dropped.
func GroupByModule(paths []string) map[string][]string {
	groups := make(map[string][]string)
	for _, path := range paths {
		if module, ok := ModuleName(path); ok {
			groups[module] = append(groups[module], path)
		}
	}
	return groups
}

// SameModule compares the first two namespace segments of two class names.
func SameModule(a, b string) bool {
	pa := strings.Split(normalizeFQCN(a), `\`)
	pb := strings.Split(normalizeFQCN(b), `\`)
	if len(pa) < 2 || len(pb) < 2 {
		return false
	}
	return pa[0] == pb[0] && pa[1] == pb[1]
}

// IsBlockFile reports whether path sits under a Block directory.
func IsBlockFile(path string) bool {
	return hasSegment(path, "Block")
}

// IsSetupPath reports whether path sits under a module Setup directory or the root setup/ tree.
func IsSetupPath(path string) bool {
	return hasSegment(path, "Setup") || hasSegment(path, "setup")
}

// NearestDIXML walks upward from the directory of path looking for etc/di.xml.
// The walk stops after a module root (a directory with registration.php), at app/code,
// or at the filesystem root.
func NearestDIXML(path string) (string, bool) {
	dir := filepath.Dir(path)
	for {
		candidate := filepath.Join(dir, "etc", "di.xml")
		if info, err := os.Stat(candidate); err == nil && info.Mode().IsRegular() {
			return candidate, true
		}

		if _, err := os.Stat(filepath.Join(dir, "registration.php")); err == nil {
			return "", false
		}
		parent := filepath.Dir(dir)
		if parent == dir || isAppCode(parent) {
			return "", false
		}
		dir = parent
	}
}

func isAppCode(dir string) bool {
	return filepath.Base(dir) == "code" && filepath.Base(filepath.Dir(dir)) == "app"
}

func hasSegment(path, name string) bool {
	segments := strings.Split(filepath.ToSlash(path), "/")
	// the last segment is the file itself
	for _, segment := range segments[:len(segments)-1] {
		if segment == name {
			return true
		}
	}
	return false
}

func studly(kebab string) string {
	caser := cases.Title(language.Und)
	var b strings.Builder
	for _, part := range strings.FieldsFunc(kebab, func(r rune) bool { return r == '-' || r == '_' || r == '.' }) {
		b.WriteString(caser.String(part))
	}
	return b.String()
}
