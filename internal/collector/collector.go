package collector

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hashicorp/go-hclog"
)

// File type keys used as classification buckets.
const (
	TypePHP   = "php"
	TypePHTML = "phtml"
	TypeXML   = "xml"
	TypeJS    = "js"
	// TypeDI is synthetic: xml files whose basename ends in di.xml.
	TypeDI = "di"
)

const diSuffix = "di.xml"

// Classification maps a file type key to the absolute paths of that type.
type Classification map[string][]string

// Files returns the bucket for fileType; nil when absent.
func (c Classification) Files(fileType string) []string {
	return c[fileType]
}

// Has reports whether the bucket exists and holds at least one path.
func (c Classification) Has(fileType string) bool {
	return len(c[fileType]) > 0
}

// Total counts classified files across all buckets.
func (c Classification) Total() int {
	total := 0
	for _, paths := range c {
		total += len(paths)
	}
	return total
}

// Types lists bucket keys in lexical order, empty buckets included.
func (c Classification) Types() []string {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Collector walks a source tree and classifies files by type.
type Collector struct {
	config *Configuration
	logger hclog.Logger
}

// New creates a Collector for cfg.
func New(cfg *Configuration, logger hclog.Logger) *Collector {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Collector{config: cfg, logger: logger}
}

// Collect classifies every eligible file under the configured root.
// Problems with the root are returned as error strings next to an empty classification;
// they never abort the run.
func (c *Collector) Collect() (Classification, []string) {
	var errs []string
	classification := c.emptyClassification()
	root := c.config.Root()

	info, err := os.Stat(root)
	switch {
	case err != nil:
		c.logger.Debug("failed to stat scan root", "path", root, "error", err)
		return classification, append(errs, fmt.Sprintf("Invalid path: %s", root))
	case info.IsDir():
		c.walk(root, classification)
	case info.Mode().IsRegular():
		c.add(root, classification)
	default:
		return classification, append(errs, fmt.Sprintf("Invalid path: %s", root))
	}

	if classification.Total() == 0 {
		errs = append(errs, fmt.Sprintf("No files found to analyse in %s", root))
	}

	c.logger.Debug("files collected", "root", root, "total", classification.Total())
	return classification, errs
}

func (c *Collector) emptyClassification() Classification {
	classification := make(Classification)
	for _, ext := range c.config.Extensions() {
		classification[ext] = []string{}
	}
	if c.config.AllowsExtension(TypeXML) {
		classification[TypeDI] = []string{}
	}
	return classification
}

func (c *Collector) walk(root string, classification Classification) {
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// unreadable entries degrade to "no data"
			c.logger.Debug("skipping unreadable entry", "path", path, "error", err)
			if d != nil && d.IsDir() && path != root {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			if path != root && c.config.IsExcludedDir(d.Name()) {
				c.logger.Trace("skipping excluded directory", "path", path)
				return filepath.SkipDir
			}
			return nil
		}

		if !d.Type().IsRegular() {
			return nil
		}
		c.add(path, classification)
		return nil
	})
}

func (c *Collector) add(path string, classification Classification) {
	name := filepath.Base(path)
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))

	if !c.config.AllowsExtension(ext) {
		return
	}
	if c.config.IsExcludedFile(name) || c.config.IsExcludedPath(path) {
		c.logger.Trace("skipping excluded file", "path", path)
		return
	}

	fileType := ext
	if ext == TypeXML && strings.HasSuffix(name, diSuffix) {
		fileType = TypeDI
	}
	classification[fileType] = append(classification[fileType], path)
}
