package effectchain

import (
	"errors"
	"fmt"
	"maps"
	"slices"
)

// ErrDuplicateEffect is returned when an effect name is registered twice
// or appears twice in one chain.
var ErrDuplicateEffect = errors.New("duplicate effect")

// Factory builds one Runtime instance for a chain slot.
type Factory func(ctx Context) (Runtime, error)

// Registry maps catalog names to the factories that build their
// runtimes. Registration is not synchronized; fill a Registry before
// handing it to an engine.
type Registry struct {
	factories map[string]Factory
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register binds name to factory.
func (r *Registry) Register(name string, factory Factory) error {
	switch {
	case name == "":
		return errors.New("effectchain: register: empty effect name")
	case factory == nil:
		return fmt.Errorf("effectchain: register %q: nil factory", name)
	}
	if _, ok := r.factories[name]; ok {
		return fmt.Errorf("effectchain: register: %w: %s", ErrDuplicateEffect, name)
	}
	r.factories[name] = factory
	return nil
}

// MustRegister is Register for static tables; it panics on error.
func (r *Registry) MustRegister(name string, factory Factory) {
	if err := r.Register(name, factory); err != nil {
		panic(err)
	}
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.factories[name]
	return ok
}

// Build creates a fresh runtime for name.
func (r *Registry) Build(name string, ctx Context) (Runtime, error) {
	factory, ok := r.factories[name]
	if !ok {
		return nil, fmt.Errorf("effectchain: %w: %s", ErrUnknownEffect, name)
	}
	rt, err := factory(ctx)
	if err != nil {
		return nil, fmt.Errorf("effectchain: create %q: %w", name, err)
	}
	return rt, nil
}

// Names returns the registered names in lexical order.
func (r *Registry) Names() []string {
	return slices.Sorted(maps.Keys(r.factories))
}
