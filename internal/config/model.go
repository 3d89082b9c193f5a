package config

import (
	"context"
	"fmt"
	"strings"

	"github.com/vk/promptgrid/internal/value"
)

// Loader reads graph definitions from one or more paths.
type Loader interface {
	Load(ctx context.Context, paths ...string) (*Model, error)
}

// Model is a whole graph definition.
type Model struct {
	Nodes []*Node
	Edges []*Edge
}

// Position is a node's canvas location.
type Position struct {
	X float64
	Y float64
}

// Node declares one node. Nil optional fields keep the component's defaults.
type Node struct {
	Type        string
	Name        string
	Title       *string
	Description *string
	Lazy        *bool
	Position    Position
	// Contents overrides the component's default contents key by key.
	Contents value.Record
}

// Endpoint is one side of an edge.
type Endpoint struct {
	Node string
	Port string
}

func (e Endpoint) String() string {
	return e.Node + "." + e.Port
}

// ParseEndpoint splits "node.port". The node name is everything before the
// first dot.
func ParseEndpoint(s string) (Endpoint, error) {
	node, port, ok := strings.Cut(strings.TrimSpace(s), ".")
	if !ok || node == "" || port == "" {
		return Endpoint{}, fmt.Errorf("invalid endpoint %q, expected \"node.port\"", s)
	}
	return Endpoint{Node: node, Port: port}, nil
}

// Edge wires From (an output port) to To (an input port).
type Edge struct {
	From Endpoint
	To   Endpoint
}

// Validate checks the model for problems a loader can detect without a
// registry: duplicate node names and edges naming undeclared nodes.
func (m *Model) Validate() error {
	seen := make(map[string]struct{}, len(m.Nodes))
	for _, n := range m.Nodes {
		if n.Name == "" {
			return fmt.Errorf("node of type %q has no name", n.Type)
		}
		if _, dup := seen[n.Name]; dup {
			return fmt.Errorf("duplicate node name %q", n.Name)
		}
		seen[n.Name] = struct{}{}
	}
	for _, e := range m.Edges {
		for _, end := range []Endpoint{e.From, e.To} {
			if _, ok := seen[end.Node]; !ok {
				return fmt.Errorf("edge %s -> %s references unknown node %q", e.From, e.To, end.Node)
			}
		}
	}
	return nil
}
