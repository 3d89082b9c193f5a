package graph

import (
	"github.com/vk/promptgrid/internal/value"
)

// Position is a node's canvas location. The engine never interprets it.
type Position struct {
	X float64 `json:"x" msgpack:"x"`
	Y float64 `json:"y" msgpack:"y"`
}

// NodeData is the per-instance record copied from a component template and
// then mutated by edits and evaluation.
type NodeData struct {
	Title        string       `json:"title" msgpack:"title"`
	Description  string       `json:"description" msgpack:"description"`
	InputLabels  value.Labels `json:"inputLabels" msgpack:"inputLabels"`
	OutputLabels value.Labels `json:"outputLabels" msgpack:"outputLabels"`
	Contents     value.Record `json:"contents" msgpack:"contents"`
	Outputs      value.Record `json:"outputs" msgpack:"outputs"`
	Lazy         bool         `json:"lazy" msgpack:"lazy"`
	ComponentID  string       `json:"componentId" msgpack:"componentId"`
}

// Node is a graph vertex.
type Node struct {
	ID       string   `json:"id" msgpack:"id"`
	Type     string   `json:"type" msgpack:"type"`
	Position Position `json:"position" msgpack:"position"`
	Data     NodeData `json:"data" msgpack:"data"`
	// Running is true while an asynchronous evaluation is in flight. It is
	// observable state only and is never persisted.
	Running bool `json:"-" msgpack:"-"`
}

// Clone returns a deep copy of n.
func (n Node) Clone() Node {
	out := n
	out.Data.InputLabels = n.Data.InputLabels.Clone()
	out.Data.OutputLabels = n.Data.OutputLabels.Clone()
	out.Data.Contents = n.Data.Contents.Clone()
	out.Data.Outputs = n.Data.Outputs.Clone()
	return out
}

// Edge connects an output port of Source to an input port of Target.
type Edge struct {
	ID           string `json:"id" msgpack:"id"`
	Source       string `json:"source" msgpack:"source"`
	SourceHandle string `json:"sourceHandle" msgpack:"sourceHandle"`
	Target       string `json:"target" msgpack:"target"`
	TargetHandle string `json:"targetHandle" msgpack:"targetHandle"`
}

// Connection is a request to wire two ports together.
type Connection struct {
	Source       string
	SourceHandle string
	Target       string
	TargetHandle string
}

// NodePatch lists node fields to overwrite. Nil fields are left alone.
type NodePatch struct {
	Title       *string
	Description *string
	Lazy        *bool
	Position    *Position
}

// ChangeKind is the kind of a bulk change.
type ChangeKind int

const (
	ChangeAdd ChangeKind = iota + 1
	ChangeRemove
	ChangePosition
)

func (k ChangeKind) String() string {
	switch k {
	case ChangeAdd:
		return "add"
	case ChangeRemove:
		return "remove"
	case ChangePosition:
		return "position"
	default:
		return "unknown"
	}
}

// NodeChange is one element of a bulk node update.
type NodeChange struct {
	Kind     ChangeKind
	ID       string
	Node     Node
	Position Position
}

// EdgeChange is one element of a bulk edge update.
type EdgeChange struct {
	Kind ChangeKind
	ID   string
	Edge Edge
}
