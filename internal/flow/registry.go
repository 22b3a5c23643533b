package flow

import (
	"fmt"
	"sort"
)

// Registry maps mode names to factories.
// Registration happens during host setup; lookups happen on the loop goroutine.
type Registry struct {
	factories map[string]Factory
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds a factory under name.
// If a factory with the same name exists, it is replaced.
func (r *Registry) Register(name string, f Factory) {
	r.factories[name] = f
}

// Has returns true if name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.factories[name]
	return ok
}

// Factory returns the factory registered under name.
func (r *Registry) Factory(name string) (Factory, error) {
	f, ok := r.factories[name]
	if !ok || f == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownMode, name)
	}
	return f, nil
}

// Build constructs the mode registered under name.
func (r *Registry) Build(name string, req Requester) (Mode, error) {
	f, err := r.Factory(name)
	if err != nil {
		return nil, err
	}
	m, err := f(req)
	if err != nil {
		return nil, fmt.Errorf("build %s: %w", name, err)
	}
	if m == nil {
		return nil, fmt.Errorf("build %s: %w", name, ErrNilMode)
	}
	return m, nil
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
