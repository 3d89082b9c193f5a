package testutil

import (
	"github.com/vk/promptgrid/internal/component"
	"github.com/vk/promptgrid/internal/registry"
)

// SimpleModule is a test helper for easily creating a mock module that
// registers a single component.
type SimpleModule struct {
	ID        string
	Component *component.Component
}

// Register implements the registry.Module interface.
func (m *SimpleModule) Register(r *registry.Registry) {
	if m.ID != "" && m.Component != nil {
		r.Register(m.ID, m.Component)
	}
}
