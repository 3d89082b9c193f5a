package registry

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/vk/promptgrid/internal/component"
)

var (
	// ErrComponentIDMissing is returned when a node carries no component id.
	ErrComponentIDMissing = errors.New("missing component id")
	// ErrComponentNotFound is returned when a component id is not registered.
	ErrComponentNotFound = errors.New("component not found")
)

// Module is the interface that every category of node types implements.
type Module interface {
	Register(r *Registry)
}

// Registry holds all registered node types for a single application instance.
type Registry struct {
	components map[string]*component.Component
	order      []string
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{components: make(map[string]*component.Component)}
}

// NewWith creates a registry populated by the given modules.
func NewWith(modules ...Module) *Registry {
	r := New()
	for _, m := range modules {
		m.Register(r)
	}
	return r
}

// Register adds a node type under id.
func (r *Registry) Register(id string, c *component.Component) {
	if id == "" {
		panic("component id must not be empty")
	}
	if _, exists := r.components[id]; exists {
		panic(fmt.Sprintf("component with id '%s' already registered", id))
	}
	slog.Debug("Registering component.", "id", id, "title", c.Config.Title)
	r.components[id] = c
	r.order = append(r.order, id)
}

// Lookup returns the component registered under id.
func (r *Registry) Lookup(id string) (*component.Component, bool) {
	c, ok := r.components[id]
	return c, ok
}

// Resolve is Lookup with the typed failures the evaluator reports.
func (r *Registry) Resolve(id string) (*component.Component, error) {
	if id == "" {
		return nil, ErrComponentIDMissing
	}
	c, ok := r.components[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrComponentNotFound, id)
	}
	return c, nil
}

// IDs lists registered ids in registration order.
func (r *Registry) IDs() []string {
	return slices.Clone(r.order)
}

// Len returns the number of registered components.
func (r *Registry) Len() int {
	return len(r.order)
}
