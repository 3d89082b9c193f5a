package builder

import (
	"context"
	"fmt"

	"github.com/vk/promptgrid/internal/config"
	"github.com/vk/promptgrid/internal/convert"
	"github.com/vk/promptgrid/internal/ctxlog"
	"github.com/vk/promptgrid/internal/graph"
	"github.com/vk/promptgrid/internal/registry"
	"github.com/vk/promptgrid/internal/value"
)

// Build inserts the model's nodes and edges into store.
func Build(ctx context.Context, model *config.Model, store *graph.Store, r *registry.Registry) error {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Build: Starting graph construction.")

	if err := model.Validate(); err != nil {
		return fmt.Errorf("invalid graph definition: %w", err)
	}

	for _, n := range model.Nodes {
		node, err := newNode(n, r)
		if err != nil {
			return err
		}
		if err := store.InsertNode(node); err != nil {
			return fmt.Errorf("inserting node %q: %w", n.Name, err)
		}
		logger.Debug("Build: Node created.", "nodeID", node.ID, "componentId", node.Type)
	}
	logger.Debug("Build: Node creation complete.", "node_count", len(model.Nodes))

	for _, e := range model.Edges {
		id, err := store.Connect(graph.Connection{
			Source:       e.From.Node,
			SourceHandle: e.From.Port,
			Target:       e.To.Node,
			TargetHandle: e.To.Port,
		})
		if err != nil {
			return fmt.Errorf("connecting %s -> %s: %w", e.From, e.To, err)
		}
		logger.Debug("Build: Edge connected.", "edgeID", id, "from", e.From.String(), "to", e.To.String())
	}
	logger.Debug("Build: Node linking complete.", "edge_count", len(model.Edges))

	logger.Info("Build: Graph construction successful.", "nodes", len(model.Nodes), "edges", len(model.Edges))
	return nil
}

func newNode(n *config.Node, r *registry.Registry) (graph.Node, error) {
	c, err := r.Resolve(n.Type)
	if err != nil {
		return graph.Node{}, fmt.Errorf("node %q: %w", n.Name, err)
	}
	tmpl := c.Template()

	node := graph.Node{
		ID:       n.Name,
		Type:     n.Type,
		Position: graph.Position{X: n.Position.X, Y: n.Position.Y},
		Data: graph.NodeData{
			Title:        tmpl.Title,
			Description:  tmpl.Description,
			InputLabels:  tmpl.InputLabels,
			OutputLabels: tmpl.OutputLabels,
			Contents:     tmpl.Contents.Clone(),
			Outputs:      value.Record{},
			Lazy:         tmpl.Lazy,
			ComponentID:  n.Type,
		},
	}
	if n.Title != nil {
		node.Data.Title = *n.Title
	}
	if n.Description != nil {
		node.Data.Description = *n.Description
	}
	if n.Lazy != nil {
		node.Data.Lazy = *n.Lazy
	}

	for key, v := range n.Contents {
		if l, ok := tmpl.ContentLabels.Find(key); ok {
			coerced, err := convert.ToType(v, l.Type)
			if err != nil {
				return graph.Node{}, fmt.Errorf("node %q content %q: %w", n.Name, key, err)
			}
			v = coerced
		}
		node.Data.Contents[key] = v
	}
	return node, nil
}
