// Package prompt provides text templating nodes. Placeholders are written as
// {name}; every distinct name becomes a string input port.
package prompt

import (
	"github.com/vk/promptgrid/internal/component"
	"github.com/vk/promptgrid/internal/convert"
	"github.com/vk/promptgrid/internal/labels"
	"github.com/vk/promptgrid/internal/registry"
	"github.com/vk/promptgrid/internal/value"
)

const rawPrompt = "raw_prompt"

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the prompt and dynamicPrompt node types.
func (m *Module) Register(r *registry.Registry) {
	r.Register("prompt", &component.Component{
		Config: component.Config{
			Title:         "Prompt",
			Description:   "A node that outputs a prompt, pass in variables with {variable}",
			OutputLabels:  value.Labels{value.NewLabel("prompt", value.String)},
			ContentLabels: value.Labels{value.NewLabel("prompt", value.String)},
			Contents:      value.Record{"prompt": value.StringValue("")},
		},
		InputLabelsFunc: labels.FromContent("prompt"),
		Func:            Prompt,
	})
	r.Register("dynamicPrompt", &component.Component{
		Config: component.Config{
			Title:        "Dynamic Prompt",
			Description:  "A node that fills up a prompt, pass in variables with {variable}",
			InputLabels:  value.Labels{value.NewLabel(rawPrompt, value.String)},
			OutputLabels: value.Labels{value.NewLabel("prompt", value.String)},
		},
		InputLabelsFunc: labels.FromInput(rawPrompt),
		Func:            DynamicPrompt,
	})
}

// Prompt fills the "prompt" content with the values of its inputs.
func Prompt(in component.Input) (value.Record, error) {
	text, err := in.ContentText("prompt")
	if err != nil {
		return nil, err
	}
	return value.Record{"prompt": value.StringValue(labels.Fill(text, textInputs(in.Inputs, "")))}, nil
}

// DynamicPrompt fills the template arriving on raw_prompt with the other inputs.
func DynamicPrompt(in component.Input) (value.Record, error) {
	text := ""
	if v, ok := in.Inputs[rawPrompt]; ok && !v.IsNull() {
		s, err := convert.Convert(v, v.Tag, value.String)
		if err != nil {
			return nil, err
		}
		text = s.Str
	}
	return value.Record{"prompt": value.StringValue(labels.Fill(text, textInputs(in.Inputs, rawPrompt)))}, nil
}

func textInputs(inputs value.Record, skip string) map[string]string {
	vars := make(map[string]string, len(inputs))
	for name, v := range inputs {
		if name == skip || v.IsNull() {
			continue
		}
		s, err := convert.Convert(v, v.Tag, value.String)
		if err != nil {
			continue
		}
		vars[name] = s.Str
	}
	return vars
}
