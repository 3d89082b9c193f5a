package component

import (
	"context"

	"github.com/vk/promptgrid/internal/value"
)

// Input is what a node function receives: the gathered upstream values keyed
// by input port, and the node's own editable contents.
type Input struct {
	Inputs   value.Record
	Contents value.Record
}

// SyncFunc computes outputs synchronously.
type SyncFunc func(in Input) (value.Record, error)

// AsyncFunc computes outputs on its own goroutine. It must honour ctx.
type AsyncFunc func(ctx context.Context, in Input) (value.Record, error)

// LabelFunc derives a port set from the node's contents and, for nodes whose
// ports depend on upstream data, from the gathered inputs.
type LabelFunc func(in Input) (value.Labels, error)

// TextFunc derives a title or description from the node's contents.
type TextFunc func(contents value.Record) string

// Config is the static template copied into every new node of a type.
type Config struct {
	Title         string
	Description   string
	InputLabels   value.Labels
	OutputLabels  value.Labels
	ContentLabels value.Labels
	Contents      value.Record
	Lazy          bool
	// ReplaceOutputs makes a successful evaluation overwrite the whole output
	// record instead of merging into it.
	ReplaceOutputs bool
}

// Component is a registered node type. Every function field is optional.
type Component struct {
	Config           Config
	Func             SyncFunc
	AsyncFunc        AsyncFunc
	InputLabelsFunc  LabelFunc
	OutputLabelsFunc LabelFunc
	TitleFunc        TextFunc
	DescriptionFunc  TextFunc
}

// Template returns a deep copy of the component's config, ready to be stamped
// onto a new node.
func (c *Component) Template() Config {
	cfg := c.Config
	cfg.InputLabels = c.Config.InputLabels.Clone()
	cfg.OutputLabels = c.Config.OutputLabels.Clone()
	cfg.ContentLabels = c.Config.ContentLabels.Clone()
	cfg.Contents = c.Config.Contents.Clone()
	return cfg
}

// Evaluates reports whether the component has any way to compute outputs.
func (c *Component) Evaluates() bool {
	return c.Func != nil || c.AsyncFunc != nil
}
