package heuristics

import (
	"sort"
	"strings"
	"sync"

	"github.com/hashicorp/go-hclog"
)

// Session holds the class hierarchy built during one scan.
// It is created per invocation and shared by every processor of that scan; nothing
// survives between scans. Indexing a file twice is a no-op.
type Session struct {
	mu        sync.RWMutex
	logger    hclog.Logger
	processed map[string]struct{}
	files     map[string]string   // FQCN -> defining file
	parents   map[string]string   // FQCN -> parent FQCN
	children  map[string][]string // parent FQCN -> direct children
}

// NewSession creates an empty hierarchy index.
func NewSession(logger hclog.Logger) *Session {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Session{
		logger:    logger,
		processed: make(map[string]struct{}),
		files:     make(map[string]string),
		parents:   make(map[string]string),
		children:  make(map[string][]string),
	}
}

// IndexFiles indexes every path in order.
func (s *Session) IndexFiles(paths []string) {
	for _, path := range paths {
		s.IndexFile(path)
	}
}

// IndexFile records the class declared in path together with its parent.
// Unreadable files and files without a class are marked processed and contribute nothing.
func (s *Session) IndexFile(path string) {
	s.mu.Lock()
	if _, done := s.processed[path]; done {
		s.mu.Unlock()
		return
	}
	s.processed[path] = struct{}{}
	s.mu.Unlock()

	content := ReadSource(path)
	if content == "" {
		return
	}
	decl, ok := Class(content)
	if !ok {
		return
	}

	ns := Namespace(content)
	fqcn := qualify(ns, decl.Name)
	parent := ""
	if decl.Extends != "" {
		parent = ResolveShortName(decl.Extends, ParseImports(content), ns)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, dup := s.files[fqcn]; dup {
		s.logger.Debug("class declared twice, keeping first", "class", fqcn, "kept", existing, "ignored", path)
		return
	}
	s.files[fqcn] = path
	if parent == "" {
		return
	}
	s.parents[fqcn] = parent
	s.children[parent] = append(s.children[parent], fqcn)
}

// ChildrenOf lists the indexed direct subclasses of fqcn, nil when there are none.
func (s *Session) ChildrenOf(fqcn string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	children := s.children[normalizeFQCN(fqcn)]
	if len(children) == 0 {
		return nil
	}
	out := append([]string(nil), children...)
	sort.Strings(out)
	return out
}

// FileOf returns the file declaring fqcn.
func (s *Session) FileOf(fqcn string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	path, ok := s.files[normalizeFQCN(fqcn)]
	return path, ok
}

// ParentOf returns the resolved parent of fqcn.
func (s *Session) ParentOf(fqcn string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	parent, ok := s.parents[normalizeFQCN(fqcn)]
	return parent, ok
}

// Ancestors walks ParentOf upward. Cycles stop the walk.
func (s *Session) Ancestors(fqcn string) []string {
	var out []string
	seen := map[string]struct{}{normalizeFQCN(fqcn): {}}
	for current := fqcn; ; {
		parent, ok := s.ParentOf(current)
		if !ok {
			return out
		}
		if _, loop := seen[parent]; loop {
			return out
		}
		seen[parent] = struct{}{}
		out = append(out, parent)
		current = parent
	}
}

// Processed reports whether path has been indexed.
func (s *Session) Processed(path string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.processed[path]
	return ok
}

// Classes returns the number of indexed classes.
func (s *Session) Classes() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.files)
}

func normalizeFQCN(fqcn string) string {
	return strings.TrimPrefix(strings.TrimSpace(fqcn), `\`)
}
