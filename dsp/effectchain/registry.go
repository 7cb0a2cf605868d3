package effectchain

import (
	"errors"
	"fmt"

	"github.com/cwbudde/realtime-effect-graph/dsp/graph"
)

// ErrUnknownEffect is returned when a name references an unregistered
// effect type.
var ErrUnknownEffect = errors.New("effectchain: unknown effect type")

// Factory builds one graph.Effect instance from construction parameters.
type Factory func(ctx Context, p Params) (graph.Effect, error)

// Registry maps effect type names to their factories.
type Registry struct {
	factories map[string]Factory
}

var errDuplicateEffect = errors.New("effectchain: duplicate effect type")

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds a factory for the given effect type name.
func (r *Registry) Register(name string, factory Factory) error {
	if name == "" {
		return errors.New("effectchain: empty effect type name")
	}

	if factory == nil {
		return errors.New("effectchain: nil factory")
	}

	if _, exists := r.factories[name]; exists {
		return fmt.Errorf("%w: %s", errDuplicateEffect, name)
	}

	r.factories[name] = factory

	return nil
}

// MustRegister is like Register but panics on error. Intended for
// package-level registry construction only.
func (r *Registry) MustRegister(name string, factory Factory) {
	if err := r.Register(name, factory); err != nil {
		panic("effectchain registry: " + err.Error())
	}
}

// Lookup returns the factory for the given effect type name, or nil.
func (r *Registry) Lookup(name string) Factory {
	return r.factories[name]
}

// Build constructs a graph.Effect by name, wrapping ErrUnknownEffect
// when the name isn't registered.
func (r *Registry) Build(name string, ctx Context, p Params) (graph.Effect, error) {
	factory := r.Lookup(name)
	if factory == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownEffect, name)
	}

	return factory(ctx, p)
}

// Names returns every registered effect type name.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}

	return names
}
