package hcl

import "github.com/hashicorp/hcl/v2"

// fileRoot decodes every top-level block a definition file may hold.
type fileRoot struct {
	Nodes  []*nodeBlock `hcl:"node,block"`
	Edges  []*edgeBlock `hcl:"edge,block"`
	Remain hcl.Body     `hcl:",remain"`
}

type nodeBlock struct {
	Type        string         `hcl:"type,label"`
	Name        string         `hcl:"name,label"`
	Title       *string        `hcl:"title,optional"`
	Description *string        `hcl:"description,optional"`
	Lazy        *bool          `hcl:"lazy,optional"`
	Position    []float64      `hcl:"position,optional"`
	Contents    *contentsBlock `hcl:"contents,block"`
}

// contentsBlock holds free-form attributes; names are content keys.
type contentsBlock struct {
	Body hcl.Body `hcl:",remain"`
}

type edgeBlock struct {
	From string `hcl:"from"`
	To   string `hcl:"to"`
}
