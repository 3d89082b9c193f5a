// Package labels resolves the effective port sets, title and description of
// a node from its component and its current contents.
package labels

import (
	"regexp"
	"strings"

	"github.com/vk/promptgrid/internal/component"
	"github.com/vk/promptgrid/internal/convert"
	"github.com/vk/promptgrid/internal/value"
)

var placeholderRe = regexp.MustCompile(`\{([^}]+)\}`)

// Placeholders returns the names inside every {...} token of text, trimmed,
// with empty names dropped and duplicates removed in first-seen order.
func Placeholders(text string) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, m := range placeholderRe.FindAllStringSubmatch(text, -1) {
		name := strings.TrimSpace(m[1])
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}

// FromPlaceholders builds string-typed labels for the placeholders in text,
// after the given fixed labels. A placeholder that repeats a fixed name is
// not added twice.
func FromPlaceholders(text string, fixed ...value.Label) value.Labels {
	out := make(value.Labels, 0, len(fixed))
	out = append(out, fixed...)
	for _, name := range Placeholders(text) {
		if _, exists := out.Find(name); exists {
			continue
		}
		out = append(out, value.NewLabel(name, value.String))
	}
	return out
}

// Fill replaces every {name} token whose trimmed name has a value in vars.
// Tokens without a value are left untouched.
func Fill(text string, vars map[string]string) string {
	return placeholderRe.ReplaceAllStringFunc(text, func(tok string) string {
		name := strings.TrimSpace(tok[1 : len(tok)-1])
		if v, ok := vars[name]; ok {
			return v
		}
		return tok
	})
}

// Resolution is the outcome of resolving one node's labels.
type Resolution struct {
	InputLabels  value.Labels
	OutputLabels value.Labels
	Title        string
	Description  string
	// InputErr and OutputErr hold generator failures. The matching label set
	// is then the previous one.
	InputErr  error
	OutputErr error
}

// Resolve runs the component's generators over in. current supplies the
// labels, title and description to keep where no generator exists or a
// generator fails.
func Resolve(c *component.Component, in component.Input, current Resolution) Resolution {
	res := Resolution{
		InputLabels:  current.InputLabels,
		OutputLabels: current.OutputLabels,
		Title:        current.Title,
		Description:  current.Description,
	}
	if c.InputLabelsFunc != nil {
		if ls, err := c.InputLabelsFunc(in); err != nil {
			res.InputErr = err
		} else {
			res.InputLabels = ls
		}
	}
	if c.OutputLabelsFunc != nil {
		if ls, err := c.OutputLabelsFunc(in); err != nil {
			res.OutputErr = err
		} else {
			res.OutputLabels = ls
		}
	}
	if c.TitleFunc != nil {
		res.Title = c.TitleFunc(in.Contents)
	}
	if c.DescriptionFunc != nil {
		res.Description = c.DescriptionFunc(in.Contents)
	}
	return res
}

// FromContent returns a LabelFunc that reads text from the named content
// field and derives labels from its placeholders after the fixed labels.
// A missing field fails with component.ContentMissingError.
func FromContent(field string, fixed ...value.Label) component.LabelFunc {
	return func(in component.Input) (value.Labels, error) {
		text, err := in.ContentText(field)
		if err != nil {
			return nil, err
		}
		return FromPlaceholders(text, fixed...), nil
	}
}

// FromInput is FromContent for text arriving on an input port. The port is
// always listed first so that it stays wired while its value is absent, which
// is reported as a component.ContentMissingError naming the port.
func FromInput(port string) component.LabelFunc {
	self := value.NewLabel(port, value.String)
	return func(in component.Input) (value.Labels, error) {
		v, ok := in.Inputs[port]
		if !ok || v.IsNull() {
			return nil, &component.ContentMissingError{Content: port}
		}
		text, err := convert.Convert(v, v.Tag, value.String)
		if err != nil {
			return nil, err
		}
		return FromPlaceholders(text.Str, self), nil
	}
}
