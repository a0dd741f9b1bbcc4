package collector

import (
	"fmt"
	"sort"
	"strings"

	"github.com/scan-io-git/magelint/pkg/shared/config"
	"github.com/scan-io-git/magelint/pkg/shared/files"
)

// Options is the raw, user supplied input for a Configuration.
type Options struct {
	Root               string
	Extensions         []string // empty means config.DefaultExtensions()
	ExcludedExtensions []string
	ExcludeDirs        []string
	ExcludeFiles       []string
	// ExcludePatterns are compared to absolute file paths by exact string equality.
	ExcludePatterns []string
	FixableOnly     bool
}

// Configuration is the frozen scan configuration for one invocation.
// The allowed extension set cannot change once built.
type Configuration struct {
	root         string
	extensions   map[string]struct{}
	excludeDirs  map[string]struct{}
	excludeFiles map[string]struct{}
	excludePaths map[string]struct{}
	fixableOnly  bool
}

// NewConfiguration normalizes the root path and freezes the exclusion sets.
func NewConfiguration(opts Options) (*Configuration, error) {
	if strings.TrimSpace(opts.Root) == "" {
		return nil, fmt.Errorf("scan root is not set")
	}
	root, err := files.AbsPath(opts.Root)
	if err != nil {
		return nil, err
	}

	extensions := opts.Extensions
	if len(extensions) == 0 {
		extensions = config.DefaultExtensions()
	}
	excludedExt := toSet(opts.ExcludedExtensions, normalizeExtension)

	allowed := make(map[string]struct{})
	for _, ext := range extensions {
		ext = normalizeExtension(ext)
		if ext == "" {
			continue
		}
		if _, excluded := excludedExt[ext]; excluded {
			continue
		}
		allowed[ext] = struct{}{}
	}

	return &Configuration{
		root:         root,
		extensions:   allowed,
		excludeDirs:  toSet(opts.ExcludeDirs, strings.TrimSpace),
		excludeFiles: toSet(opts.ExcludeFiles, strings.TrimSpace),
		excludePaths: toSet(opts.ExcludePatterns, strings.TrimSpace),
		fixableOnly:  opts.FixableOnly,
	}, nil
}

// Root returns the absolute scan root.
func (c *Configuration) Root() string { return c.root }

// FixableOnly reports whether only fixable rules should run.
func (c *Configuration) FixableOnly() bool { return c.fixableOnly }

// Extensions returns the allowed extensions in lexical order.
func (c *Configuration) Extensions() []string {
	out := make([]string, 0, len(c.extensions))
	for ext := range c.extensions {
		out = append(out, ext)
	}
	sort.Strings(out)
	return out
}

// AllowsExtension reports whether a lower-cased extension is collected.
func (c *Configuration) AllowsExtension(ext string) bool {
	_, ok := c.extensions[ext]
	return ok
}

// IsExcludedDir matches a directory entry name, not a path.
func (c *Configuration) IsExcludedDir(name string) bool {
	_, ok := c.excludeDirs[name]
	return ok
}

// IsExcludedFile matches a file basename.
func (c *Configuration) IsExcludedFile(name string) bool {
	_, ok := c.excludeFiles[name]
	return ok
}

// IsExcludedPath matches a full path literally.
func (c *Configuration) IsExcludedPath(path string) bool {
	_, ok := c.excludePaths[path]
	return ok
}

func normalizeExtension(ext string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
}

func toSet(items []string, normalize func(string) string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, item := range items {
		item = normalize(item)
		if item != "" {
			set[item] = struct{}{}
		}
	}
	return set
}
