package exchange

import (
	"fmt"
	"strings"
)

// All selects every registered exchange in Resolve.
const All = "all"

// Registry holds the known exchanges. It is built once at startup and only read afterwards,
// so it does no locking.
type Registry struct {
	specs []Spec
	index map[string]int
}

func NewRegistry() *Registry {
	return &Registry{
		specs: make([]Spec, 0),
		index: make(map[string]int),
	}
}

func (r *Registry) Register(spec Spec) error {
	if err := spec.Validate(); err != nil {
		return err
	}
	if _, ok := r.index[spec.ID]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateIdentifier, spec.ID)
	}

	r.index[spec.ID] = len(r.specs)
	r.specs = append(r.specs, spec.clone())
	return nil
}

func (r *Registry) Get(id string) (Spec, error) {
	i, ok := r.index[id]
	if !ok {
		return Spec{}, fmt.Errorf("%w: %q (available: %s)", ErrUnknownExchange, id, strings.Join(r.IDs(), ", "))
	}
	return r.specs[i].clone(), nil
}

func (r *Registry) Has(id string) bool {
	_, ok := r.index[id]
	return ok
}

// List returns every spec in registration order.
func (r *Registry) List() []Spec {
	out := make([]Spec, 0, len(r.specs))
	for _, s := range r.specs {
		out = append(out, s.clone())
	}
	return out
}

func (r *Registry) IDs() []string {
	ids := make([]string, 0, len(r.specs))
	for _, s := range r.specs {
		ids = append(ids, s.ID)
	}
	return ids
}

func (r *Registry) Len() int {
	return len(r.specs)
}

// Resolve looks up each identifier in order. The identifier "all" expands to every
// registered spec. Repeated identifiers are kept once, at their first position.
func (r *Registry) Resolve(ids []string) ([]Spec, error) {
	seen := make(map[string]bool)
	out := make([]Spec, 0, len(ids))

	add := func(s Spec) {
		if seen[s.ID] {
			return
		}
		seen[s.ID] = true
		out = append(out, s)
	}

	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if strings.EqualFold(id, All) {
			for _, s := range r.List() {
				add(s)
			}
			continue
		}
		s, err := r.Get(id)
		if err != nil {
			return nil, err
		}
		add(s)
	}

	return out, nil
}
