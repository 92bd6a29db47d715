package adapter

import (
	"slices"

	perr "crosspost/internal/platform/errors"
)

// Registry resolves adapter identifiers. The engine only reads from it
type Registry interface {
	Lookup(id string) (Adapter, bool)
}

// Map is a Registry keyed by Adapter.ID
type Map map[string]Adapter

// NewMap indexes adapters by id, a duplicate id is an InvalidArgument error
func NewMap(adapters ...Adapter) (Map, error) {
	m := make(Map, len(adapters))
	for _, a := range adapters {
		id := a.ID()
		if id == "" {
			return nil, perr.InvalidArgf("adapter with empty id")
		}
		if _, dup := m[id]; dup {
			return nil, perr.WithField(perr.InvalidArgf("duplicate adapter id %q", id), id)
		}
		m[id] = a
	}
	return m, nil
}

// Lookup implements Registry
func (m Map) Lookup(id string) (Adapter, bool) {
	a, ok := m[id]
	return a, ok
}

// IDs returns the registered identifiers sorted
func (m Map) IDs() []string {
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
