package source

import (
	"context"
	"fmt"
)

// Registry binds institution identifiers to adapters. Unknown identifiers
// resolve to a stub adapter so no requested institution is silently dropped.
type Registry struct {
	adapters map[string]Adapter
	gen      *FallbackGenerator
	names    func(id string) string
}

// NewRegistry creates a registry. displayName resolves ids to display names
// for stub adapters; nil means the id is used as-is.
func NewRegistry(gen *FallbackGenerator, displayName func(id string) string, adapters ...Adapter) *Registry {
	if displayName == nil {
		displayName = func(id string) string { return id }
	}
	r := &Registry{
		adapters: make(map[string]Adapter, len(adapters)),
		gen:      gen,
		names:    displayName,
	}
	for _, a := range adapters {
		r.adapters[a.ID()] = a
	}
	return r
}

// Register adds or replaces an adapter binding.
func (r *Registry) Register(a Adapter) {
	r.adapters[a.ID()] = a
}

// Resolve returns the adapter bound to id, or a stub adapter producing
// fallback data with a "not implemented" marker.
func (r *Registry) Resolve(id string) Adapter {
	if a, ok := r.adapters[id]; ok {
		return a
	}
	return &StubAdapter{
		Inst:    id,
		Name:    r.names(id),
		Gen:     r.gen,
		Message: fmt.Sprintf("institution %s not implemented yet", id),
	}
}

// StubAdapter stands in for institutions without a live integration. It
// never touches the network: every call yields a failure envelope populated
// with synthetic records.
type StubAdapter struct {
	Inst    string
	Name    string
	Gen     *FallbackGenerator
	Message string
}

// ID implements Adapter.
func (s *StubAdapter) ID() string { return s.Inst }

// Search implements Adapter.
func (s *StubAdapter) Search(_ context.Context, text string, f Filters) (Envelope, error) {
	records := s.Gen.Generate(s.Inst, s.Name, text, f.PageSize)
	return Envelope{
		Success:    false,
		Records:    records,
		TotalCount: len(records),
		Err:        s.Message,
	}, nil
}
