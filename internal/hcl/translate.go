package hcl

import (
	"context"
	"fmt"

	"github.com/vk/promptgrid/internal/config"
	"github.com/vk/promptgrid/internal/ctxlog"
	"github.com/vk/promptgrid/internal/value"
	"github.com/zclconf/go-cty/cty"
)

// translateNode converts a node block into the agnostic model.
func (l *Loader) translateNode(ctx context.Context, b *nodeBlock) (*config.Node, error) {
	logger := ctxlog.FromContext(ctx).With("node_type", b.Type, "node_name", b.Name)
	logger.Debug("Translating HCL node to config model.")

	n := &config.Node{
		Type:        b.Type,
		Name:        b.Name,
		Title:       b.Title,
		Description: b.Description,
		Lazy:        b.Lazy,
	}
	switch len(b.Position) {
	case 0:
	case 2:
		n.Position = config.Position{X: b.Position[0], Y: b.Position[1]}
	default:
		return nil, fmt.Errorf("node %q: position must have two elements, got %d", b.Name, len(b.Position))
	}

	if b.Contents != nil {
		contents, err := translateContents(b.Contents)
		if err != nil {
			return nil, fmt.Errorf("node %q: %w", b.Name, err)
		}
		n.Contents = contents
	}
	return n, nil
}

func translateContents(b *contentsBlock) (value.Record, error) {
	attrs, diags := b.Body.JustAttributes()
	if diags.HasErrors() {
		return nil, diags
	}
	out := make(value.Record, len(attrs))
	for name, attr := range attrs {
		v, diags := attr.Expr.Value(nil)
		if diags.HasErrors() {
			return nil, fmt.Errorf("content %q: %w", name, diags)
		}
		converted, err := fromCty(v)
		if err != nil {
			return nil, fmt.Errorf("content %q: %w", name, err)
		}
		out[name] = converted
	}
	return out, nil
}

// fromCty maps a literal onto the engine's value model. Booleans become their
// string spelling since the engine has no boolean type.
func fromCty(v cty.Value) (value.Value, error) {
	if v.IsNull() {
		return value.Value{}, nil
	}
	if !v.IsKnown() {
		return value.Value{}, fmt.Errorf("value is not known")
	}
	switch v.Type() {
	case cty.String:
		return value.StringValue(v.AsString()), nil
	case cty.Number:
		f, _ := v.AsBigFloat().Float64()
		return value.NumberValue(f), nil
	case cty.Bool:
		if v.True() {
			return value.StringValue("true"), nil
		}
		return value.StringValue("false"), nil
	default:
		return value.Value{}, fmt.Errorf("unsupported type %s", v.Type().FriendlyName())
	}
}

func translateEdge(b *edgeBlock) (*config.Edge, error) {
	from, err := config.ParseEndpoint(b.From)
	if err != nil {
		return nil, fmt.Errorf("edge from: %w", err)
	}
	to, err := config.ParseEndpoint(b.To)
	if err != nil {
		return nil, fmt.Errorf("edge to: %w", err)
	}
	return &config.Edge{From: from, To: to}, nil
}
