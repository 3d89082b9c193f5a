package graph

import (
	"fmt"
	"strconv"
	"sync"

	"github.com/google/uuid"
	"github.com/vk/promptgrid/internal/component"
	"github.com/vk/promptgrid/internal/registry"
	"github.com/vk/promptgrid/internal/value"
)

// Templates resolves node type ids to components. *registry.Registry
// satisfies it.
type Templates interface {
	Lookup(id string) (*component.Component, bool)
}

// Store holds the graph.
type Store struct {
	mu        sync.RWMutex
	templates Templates
	nodes     map[string]*Node
	nodeOrder []string
	edges     map[string]*Edge
	edgeOrder []string
	nextID    int

	subsMu  sync.Mutex
	subs    []subscription
	nextSub int
}

// New creates an empty store that instantiates node types from templates.
func New(templates Templates) *Store {
	return &Store{
		templates: templates,
		nodes:     make(map[string]*Node),
		edges:     make(map[string]*Edge),
	}
}

// AddNode instantiates the component registered under typeID at pos and
// returns the fresh node id. Ids come from a counter and are never reused.
func (s *Store) AddNode(typeID string, pos Position) (string, error) {
	if s.templates == nil {
		return "", fmt.Errorf("%w: %s", registry.ErrComponentNotFound, typeID)
	}
	c, ok := s.templates.Lookup(typeID)
	if !ok {
		return "", fmt.Errorf("%w: %s", registry.ErrComponentNotFound, typeID)
	}
	tmpl := c.Template()

	s.mu.Lock()
	id := s.freshIDLocked()
	n := &Node{
		ID:       id,
		Type:     typeID,
		Position: pos,
		Data: NodeData{
			Title:        tmpl.Title,
			Description:  tmpl.Description,
			InputLabels:  tmpl.InputLabels,
			OutputLabels: tmpl.OutputLabels,
			Contents:     tmpl.Contents,
			Outputs:      value.Record{},
			Lazy:         tmpl.Lazy,
			ComponentID:  typeID,
		},
	}
	s.insertLocked(n)
	s.mu.Unlock()

	s.publish([]Event{{Kind: NodeAdded, NodeID: id}})
	return id, nil
}

// InsertNode adds a fully formed node under its own id.
func (s *Store) InsertNode(n Node) error {
	s.mu.Lock()
	if _, exists := s.nodes[n.ID]; exists {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrNodeAlreadyExists, n.ID)
	}
	if n.ID == "" {
		n.ID = s.freshIDLocked()
	}
	cp := normalize(n.Clone())
	s.insertLocked(&cp)
	s.mu.Unlock()

	s.publish([]Event{{Kind: NodeAdded, NodeID: n.ID}})
	return nil
}

// DeleteNode removes a node and every edge touching it.
func (s *Store) DeleteNode(id string) error {
	s.mu.Lock()
	events, err := s.deleteNodeLocked(id)
	s.mu.Unlock()
	if err != nil {
		return err
	}
	s.publish(events)
	return nil
}

// Node returns a copy of the node with the given id.
func (s *Store) Node(id string) (Node, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, ok := s.nodes[id]
	if !ok {
		return Node{}, false
	}
	return n.Clone(), true
}

// Nodes returns copies of all nodes in insertion order.
func (s *Store) Nodes() []Node {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Node, 0, len(s.nodeOrder))
	for _, id := range s.nodeOrder {
		out = append(out, s.nodes[id].Clone())
	}
	return out
}

// UpdateNode applies a patch of presentation fields.
func (s *Store) UpdateNode(id string, patch NodePatch) error {
	return s.mutateNode(id, func(n *Node) Field {
		var changed Field
		if patch.Title != nil && *patch.Title != n.Data.Title {
			n.Data.Title = *patch.Title
			changed |= FieldMeta
		}
		if patch.Description != nil && *patch.Description != n.Data.Description {
			n.Data.Description = *patch.Description
			changed |= FieldMeta
		}
		if patch.Lazy != nil && *patch.Lazy != n.Data.Lazy {
			n.Data.Lazy = *patch.Lazy
			changed |= FieldMeta
		}
		if patch.Position != nil && *patch.Position != n.Position {
			n.Position = *patch.Position
			changed |= FieldPosition
		}
		return changed
	})
}

// SetNodeOutputs merges outputs into the node's output record, or replaces the
// record when replace is set.
func (s *Store) SetNodeOutputs(id string, outputs value.Record, replace bool) error {
	return s.mutateNode(id, func(n *Node) Field {
		next := writeRecord(n.Data.Outputs, outputs, replace)
		if next.Equal(n.Data.Outputs) {
			return 0
		}
		n.Data.Outputs = next
		return FieldOutputs
	})
}

// SetNodeContents merges or replaces the node's contents.
func (s *Store) SetNodeContents(id string, contents value.Record, replace bool) error {
	return s.mutateNode(id, func(n *Node) Field {
		next := writeRecord(n.Data.Contents, contents, replace)
		if next.Equal(n.Data.Contents) {
			return 0
		}
		n.Data.Contents = next
		return FieldContents
	})
}

// SetNodeInputLabels replaces the node's input port set.
func (s *Store) SetNodeInputLabels(id string, labels value.Labels) error {
	return s.mutateNode(id, func(n *Node) Field {
		if labels.Equal(n.Data.InputLabels) {
			return 0
		}
		n.Data.InputLabels = labels.Clone()
		return FieldInputLabels
	})
}

// SetNodeOutputLabels replaces the node's output port set.
func (s *Store) SetNodeOutputLabels(id string, labels value.Labels) error {
	return s.mutateNode(id, func(n *Node) Field {
		if labels.Equal(n.Data.OutputLabels) {
			return 0
		}
		n.Data.OutputLabels = labels.Clone()
		return FieldOutputLabels
	})
}

// SetNodeTitle replaces the title and description derived from contents.
func (s *Store) SetNodeTitle(id, title, description string) error {
	return s.mutateNode(id, func(n *Node) Field {
		if n.Data.Title == title && n.Data.Description == description {
			return 0
		}
		n.Data.Title = title
		n.Data.Description = description
		return FieldMeta
	})
}

// SetNodeRunning toggles the in-flight flag.
func (s *Store) SetNodeRunning(id string, running bool) error {
	return s.mutateNode(id, func(n *Node) Field {
		if n.Running == running {
			return 0
		}
		n.Running = running
		return FieldRunning
	})
}

// AddEdge inserts edge, replacing any edge already ending at the same target
// port. An empty id is filled with a fresh UUID.
func (s *Store) AddEdge(edge Edge) (string, error) {
	s.mu.Lock()
	events, err := s.addEdgeLocked(edge)
	s.mu.Unlock()
	if err != nil {
		return "", err
	}
	s.publish(events)
	return events[len(events)-1].Edge.ID, nil
}

// Connect wires two ports together under a fresh edge id.
func (s *Store) Connect(c Connection) (string, error) {
	return s.AddEdge(Edge{
		Source:       c.Source,
		SourceHandle: c.SourceHandle,
		Target:       c.Target,
		TargetHandle: c.TargetHandle,
	})
}

// DeleteEdge removes an edge.
func (s *Store) DeleteEdge(id string) error {
	s.mu.Lock()
	ev, err := s.deleteEdgeLocked(id)
	s.mu.Unlock()
	if err != nil {
		return err
	}
	s.publish([]Event{ev})
	return nil
}

// Edge returns a copy of the edge with the given id.
func (s *Store) Edge(id string) (Edge, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.edges[id]
	if !ok {
		return Edge{}, false
	}
	return *e, true
}

// Edges returns all edges in insertion order.
func (s *Store) Edges() []Edge {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Edge, 0, len(s.edgeOrder))
	for _, id := range s.edgeOrder {
		out = append(out, *s.edges[id])
	}
	return out
}

// Reset replaces the whole graph. Edges that fail validation are skipped and
// reported in the returned error; the rest of the graph is still installed.
func (s *Store) Reset(nodes []Node, edges []Edge) error {
	s.mu.Lock()
	var events []Event
	for _, id := range s.edgeOrder {
		events = append(events, Event{Kind: EdgeRemoved, NodeID: s.edges[id].Target, Edge: *s.edges[id]})
	}
	for _, id := range s.nodeOrder {
		events = append(events, Event{Kind: NodeRemoved, NodeID: id})
	}
	s.nodes = make(map[string]*Node)
	s.nodeOrder = nil
	s.edges = make(map[string]*Edge)
	s.edgeOrder = nil
	s.nextID = 0

	var errs []error
	for _, n := range nodes {
		if _, exists := s.nodes[n.ID]; exists || n.ID == "" {
			errs = append(errs, fmt.Errorf("%w: %q", ErrNodeAlreadyExists, n.ID))
			continue
		}
		cp := normalize(n.Clone())
		s.insertLocked(&cp)
		events = append(events, Event{Kind: NodeAdded, NodeID: n.ID})
	}
	for _, e := range edges {
		evs, err := s.addEdgeLocked(e)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		events = append(events, evs...)
	}
	s.mu.Unlock()

	s.publish(events)
	return combine(errs)
}

func (s *Store) mutateNode(id string, fn func(n *Node) Field) error {
	s.mu.Lock()
	n, ok := s.nodes[id]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrNodeNotFound, id)
	}
	changed := fn(n)
	s.mu.Unlock()

	if changed != 0 {
		s.publish([]Event{{Kind: NodeChanged, NodeID: id, Fields: changed}})
	}
	return nil
}

func (s *Store) freshIDLocked() string {
	for {
		id := strconv.Itoa(s.nextID)
		s.nextID++
		if _, taken := s.nodes[id]; !taken {
			return id
		}
	}
}

func (s *Store) insertLocked(n *Node) {
	s.nodes[n.ID] = n
	s.nodeOrder = append(s.nodeOrder, n.ID)
	if num, err := strconv.Atoi(n.ID); err == nil && num >= s.nextID {
		s.nextID = num + 1
	}
}

func (s *Store) deleteNodeLocked(id string) ([]Event, error) {
	if _, ok := s.nodes[id]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrNodeNotFound, id)
	}
	var events []Event
	for _, eid := range append([]string(nil), s.edgeOrder...) {
		e := s.edges[eid]
		if e.Source == id || e.Target == id {
			ev, _ := s.deleteEdgeLocked(eid)
			events = append(events, ev)
		}
	}
	delete(s.nodes, id)
	s.nodeOrder = removeID(s.nodeOrder, id)
	return append(events, Event{Kind: NodeRemoved, NodeID: id}), nil
}

func (s *Store) addEdgeLocked(edge Edge) ([]Event, error) {
	if edge.Source == "" || edge.Target == "" || edge.SourceHandle == "" || edge.TargetHandle == "" {
		return nil, fmt.Errorf("%w: edge %q must name both endpoints and handles", ErrInvalidEdge, edge.ID)
	}
	if _, ok := s.nodes[edge.Source]; !ok {
		return nil, fmt.Errorf("%w: edge source %s", ErrNodeNotFound, edge.Source)
	}
	if _, ok := s.nodes[edge.Target]; !ok {
		return nil, fmt.Errorf("%w: edge target %s", ErrNodeNotFound, edge.Target)
	}
	if edge.ID == "" {
		edge.ID = uuid.NewString()
	}
	if _, exists := s.edges[edge.ID]; exists {
		return nil, fmt.Errorf("%w: %s", ErrEdgeAlreadyExists, edge.ID)
	}
	if s.reachableLocked(edge.Target, edge.Source) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrCycleDetected, edge.Source, edge.Target)
	}

	var events []Event
	if old, ok := s.edgeIntoLocked(edge.Target, edge.TargetHandle); ok {
		ev, _ := s.deleteEdgeLocked(old.ID)
		events = append(events, ev)
	}
	cp := edge
	s.edges[edge.ID] = &cp
	s.edgeOrder = append(s.edgeOrder, edge.ID)
	return append(events, Event{Kind: EdgeAdded, NodeID: edge.Target, Edge: edge}), nil
}

func (s *Store) deleteEdgeLocked(id string) (Event, error) {
	e, ok := s.edges[id]
	if !ok {
		return Event{}, fmt.Errorf("%w: %s", ErrEdgeNotFound, id)
	}
	delete(s.edges, id)
	s.edgeOrder = removeID(s.edgeOrder, id)
	return Event{Kind: EdgeRemoved, NodeID: e.Target, Edge: *e}, nil
}

func normalize(n Node) Node {
	if n.Data.Contents == nil {
		n.Data.Contents = value.Record{}
	}
	if n.Data.Outputs == nil {
		n.Data.Outputs = value.Record{}
	}
	if n.Data.ComponentID == "" {
		n.Data.ComponentID = n.Type
	}
	if n.Type == "" {
		n.Type = n.Data.ComponentID
	}
	n.Running = false
	return n
}

func writeRecord(current, update value.Record, replace bool) value.Record {
	if replace {
		return update.Clone()
	}
	return current.Merge(update)
}

func removeID(ids []string, id string) []string {
	for i, v := range ids {
		if v == id {
			return append(ids[:i:i], ids[i+1:]...)
		}
	}
	return ids
}
