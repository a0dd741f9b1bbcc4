package processor

import (
	"fmt"
	"sort"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/scan-io-git/magelint/internal/heuristics"
)

// Factory builds a processor bound to one scan session.
type Factory func(session *heuristics.Session, logger hclog.Logger) (Processor, error)

// Registration names a factory.
type Registration struct {
	ID      string
	Factory Factory
}

// Diagnostic explains why a registered processor is unavailable.
type Diagnostic struct {
	ID  string
	Err error
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %v", d.ID, d.Err)
}

// Registry is the static set of known processors.
type Registry struct {
	registrations []Registration
}

// NewRegistry creates a registry from the given registrations.
func NewRegistry(registrations ...Registration) *Registry {
	r := &Registry{}
	for _, reg := range registrations {
		r.Register(reg.ID, reg.Factory)
	}
	return r
}

// Register adds a factory. Validation happens in Build.
func (r *Registry) Register(id string, factory Factory) {
	r.registrations = append(r.registrations, Registration{ID: strings.TrimSpace(id), Factory: factory})
}

// IDs lists registered identifiers in run order.
func (r *Registry) IDs() []string {
	ids := make([]string, 0, len(r.registrations))
	for _, reg := range r.sorted() {
		ids = append(ids, reg.ID)
	}
	return ids
}

// Build constructs every processor for session in lexicographic identifier order.
// Failures do not abort: the processor is left out and a diagnostic is returned instead.
func (r *Registry) Build(session *heuristics.Session, logger hclog.Logger) ([]Processor, []Diagnostic) {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	var (
		processors  []Processor
		diagnostics []Diagnostic
		seen        = make(map[string]struct{})
	)
	for _, reg := range r.sorted() {
		if _, dup := seen[reg.ID]; dup {
			diagnostics = append(diagnostics, Diagnostic{ID: reg.ID, Err: fmt.Errorf("duplicate processor identifier")})
			continue
		}
		seen[reg.ID] = struct{}{}

		p, err := build(reg, session, logger.Named(reg.ID))
		if err != nil {
			diagnostics = append(diagnostics, Diagnostic{ID: reg.ID, Err: err})
			continue
		}
		if p.Identifier() != reg.ID {
			diagnostics = append(diagnostics, Diagnostic{
				ID:  reg.ID,
				Err: fmt.Errorf("factory returned processor %q", p.Identifier()),
			})
			continue
		}
		processors = append(processors, p)
	}

	for _, d := range diagnostics {
		logger.Warn("processor unavailable", "processor", d.ID, "reason", d.Err)
	}
	return processors, diagnostics
}

func build(reg Registration, session *heuristics.Session, logger hclog.Logger) (p Processor, err error) {
	if reg.ID == "" {
		return nil, fmt.Errorf("empty processor identifier")
	}
	if reg.Factory == nil {
		return nil, fmt.Errorf("no factory registered")
	}
	defer func() {
		if rec := recover(); rec != nil {
			p, err = nil, fmt.Errorf("factory panicked: %v", rec)
		}
	}()

	p, err = reg.Factory(session, logger)
	if err == nil && p == nil {
		err = fmt.Errorf("factory returned no processor")
	}
	return p, err
}

func (r *Registry) sorted() []Registration {
	out := append([]Registration(nil), r.registrations...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
