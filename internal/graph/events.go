package graph

import "strings"

// EventKind classifies a store change.
type EventKind int

const (
	NodeAdded EventKind = iota + 1
	NodeRemoved
	NodeChanged
	EdgeAdded
	EdgeRemoved
)

func (k EventKind) String() string {
	switch k {
	case NodeAdded:
		return "node:added"
	case NodeRemoved:
		return "node:removed"
	case NodeChanged:
		return "node:changed"
	case EdgeAdded:
		return "edge:added"
	case EdgeRemoved:
		return "edge:removed"
	default:
		return "unknown"
	}
}

// Field is a bit set naming the node fields a NodeChanged event touched.
type Field uint16

const (
	FieldContents Field = 1 << iota
	FieldOutputs
	FieldInputLabels
	FieldOutputLabels
	FieldRunning
	FieldPosition
	FieldMeta
)

// Has reports whether any of the bits in other are set.
func (f Field) Has(other Field) bool {
	return f&other != 0
}

func (f Field) String() string {
	names := []struct {
		bit  Field
		name string
	}{
		{FieldContents, "contents"},
		{FieldOutputs, "outputs"},
		{FieldInputLabels, "inputLabels"},
		{FieldOutputLabels, "outputLabels"},
		{FieldRunning, "running"},
		{FieldPosition, "position"},
		{FieldMeta, "meta"},
	}
	var parts []string
	for _, n := range names {
		if f.Has(n.bit) {
			parts = append(parts, n.name)
		}
	}
	return strings.Join(parts, ",")
}

// Event describes one committed change. Edge is set for edge events; NodeID
// is set for node events and, for edge events, to the edge's target.
type Event struct {
	Kind   EventKind
	NodeID string
	Edge   Edge
	Fields Field
}

// Subscribe registers fn to be called after every committed change and
// returns a function that removes the subscription.
func (s *Store) Subscribe(fn func(Event)) (unsubscribe func()) {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	id := s.nextSub
	s.nextSub++
	s.subs = append(s.subs, subscription{id: id, fn: fn})
	return func() {
		s.subsMu.Lock()
		defer s.subsMu.Unlock()
		for i, sub := range s.subs {
			if sub.id == id {
				s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
				return
			}
		}
	}
}

type subscription struct {
	id int
	fn func(Event)
}

func (s *Store) publish(events []Event) {
	if len(events) == 0 {
		return
	}
	s.subsMu.Lock()
	subs := make([]subscription, len(s.subs))
	copy(subs, s.subs)
	s.subsMu.Unlock()

	for _, ev := range events {
		for _, sub := range subs {
			sub.fn(ev)
		}
	}
}
