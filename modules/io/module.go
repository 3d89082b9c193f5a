// Package io provides the nodes that start and end a flow: an input node that
// publishes a user-edited value and an output node that collects a result.
package io

import (
	"github.com/vk/promptgrid/internal/component"
	"github.com/vk/promptgrid/internal/registry"
	"github.com/vk/promptgrid/internal/value"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the input and output node types.
func (m *Module) Register(r *registry.Registry) {
	r.Register("input", &component.Component{
		Config: component.Config{
			Title:         "Input",
			Description:   "A node that sends inputs to other nodes",
			OutputLabels:  value.Labels{value.NewLabel("input", value.String, value.Number)},
			ContentLabels: value.Labels{value.NewLabel("output", value.String, value.Number)},
			Contents:      value.Record{"output": value.StringValue("")},
		},
		Func: Input,
	})
	r.Register("output", &component.Component{
		Config: component.Config{
			Title:        "Output",
			Description:  "A node that receives data and marks the end of a flow",
			InputLabels:  value.Labels{{Type: value.AnyType(), Name: "output"}},
			OutputLabels: value.Labels{{Type: value.AnyType(), Name: "output"}},
		},
		Func: Output,
	})
}

// Input publishes the "output" content on the "input" port.
func Input(in component.Input) (value.Record, error) {
	v, err := in.Content("output")
	if err != nil {
		return nil, err
	}
	return value.Record{"input": v}, nil
}

// Output passes its input through, or null when nothing is wired in.
func Output(in component.Input) (value.Record, error) {
	return value.Record{"output": in.Inputs["output"]}, nil
}
