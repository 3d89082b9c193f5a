// Package function provides nodes that run a small user-written function.
// The function source lives in the node's "function" content; its arguments
// become input ports and its result is published on the "result" port.
package function

import (
	"github.com/vk/promptgrid/internal/component"
	"github.com/vk/promptgrid/internal/registry"
	"github.com/vk/promptgrid/internal/value"
)

const (
	sourceField = "function"
	resultPort  = "result"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the function and lazyFunction node types.
func (m *Module) Register(r *registry.Registry) {
	r.Register("function", newComponent("Lets you run a custom function (fast updates)", false))
	r.Register("lazyFunction", newComponent("Lets you run a custom function when triggered", true))
}

func newComponent(description string, lazy bool) *component.Component {
	return &component.Component{
		Config: component.Config{
			Title:         "Function",
			Description:   description,
			OutputLabels:  value.Labels{value.NewLabel(resultPort, value.String, value.Number)},
			ContentLabels: value.Labels{value.NewLabel(sourceField, value.String)},
			Contents:      value.Record{sourceField: value.StringValue("function(a, b) { return a + b }")},
			Lazy:          lazy,
		},
		InputLabelsFunc: inputLabels,
		TitleFunc:       title,
		Func:            run,
	}
}

func inputLabels(in component.Input) (value.Labels, error) {
	src, err := in.ContentText(sourceField)
	if err != nil {
		return nil, err
	}
	def, err := Parse(src)
	if err != nil {
		return nil, err
	}
	out := make(value.Labels, len(def.Args))
	for i, arg := range def.Args {
		out[i] = value.NewLabel(arg, value.String, value.Number)
	}
	return out, nil
}

func title(contents value.Record) string {
	src, err := component.ContentTextOf(contents, sourceField)
	if err != nil {
		return "Function"
	}
	def, err := Parse(src)
	if err != nil || def.Title() == "" {
		return "Function"
	}
	return def.Title()
}

func run(in component.Input) (value.Record, error) {
	src, err := in.ContentText(sourceField)
	if err != nil {
		return nil, err
	}
	def, err := Parse(src)
	if err != nil {
		return nil, err
	}
	for _, arg := range def.Args {
		if _, err := in.Input(arg); err != nil {
			return nil, err
		}
	}
	result, err := def.Call(in.Inputs)
	if err != nil {
		return nil, err
	}
	return value.Record{resultPort: result}, nil
}
