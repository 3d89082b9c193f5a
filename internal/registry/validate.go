package registry

import (
	"context"
	"fmt"

	"github.com/vk/promptgrid/internal/component"
	"github.com/vk/promptgrid/internal/ctxlog"
	"go.uber.org/multierr"
)

// Validate checks every registered template and returns all problems at once.
func (r *Registry) Validate(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)
	var err error
	for _, id := range r.order {
		err = multierr.Append(err, validateComponent(id, r.components[id]))
	}
	if err != nil {
		return err
	}
	logger.Debug("Registry validation passed.", "components", len(r.order))
	return nil
}

func validateComponent(id string, c *component.Component) error {
	var err error
	cfg := c.Config
	if !c.Evaluates() {
		err = multierr.Append(err, fmt.Errorf("component '%s': has neither a sync nor an async function", id))
	}
	if name, dup := cfg.InputLabels.Duplicate(); dup {
		err = multierr.Append(err, fmt.Errorf("component '%s': duplicate input port '%s'", id, name))
	}
	if name, dup := cfg.OutputLabels.Duplicate(); dup {
		err = multierr.Append(err, fmt.Errorf("component '%s': duplicate output port '%s'", id, name))
	}
	for _, l := range cfg.ContentLabels {
		v, ok := cfg.Contents[l.Name]
		if !ok || v.IsNull() {
			continue
		}
		if !l.Type.Accepts(v.Tag) {
			err = multierr.Append(err, fmt.Errorf("component '%s': default content '%s' is %s, declared %s", id, l.Name, v.Tag, l.Type))
		}
	}
	for _, labels := range []struct {
		side string
		set  []string
	}{{"input", cfg.InputLabels.Names()}, {"output", cfg.OutputLabels.Names()}} {
		for _, name := range labels.set {
			if name == "" {
				err = multierr.Append(err, fmt.Errorf("component '%s': empty %s port name", id, labels.side))
			}
		}
	}
	return err
}
