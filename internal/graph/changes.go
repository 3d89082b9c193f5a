package graph

import (
	"fmt"

	"go.uber.org/multierr"
)

// ApplyNodeChanges applies a batch of node changes. Every valid change is
// committed; the failures are combined into the returned error.
func (s *Store) ApplyNodeChanges(changes []NodeChange) error {
	s.mu.Lock()
	var events []Event
	var errs []error
	for _, ch := range changes {
		switch ch.Kind {
		case ChangeAdd:
			if _, exists := s.nodes[ch.Node.ID]; exists {
				errs = append(errs, fmt.Errorf("%w: %s", ErrNodeAlreadyExists, ch.Node.ID))
				continue
			}
			n := normalize(ch.Node.Clone())
			if n.ID == "" {
				n.ID = s.freshIDLocked()
			}
			s.insertLocked(&n)
			events = append(events, Event{Kind: NodeAdded, NodeID: n.ID})
		case ChangeRemove:
			evs, err := s.deleteNodeLocked(ch.ID)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			events = append(events, evs...)
		case ChangePosition:
			n, ok := s.nodes[ch.ID]
			if !ok {
				errs = append(errs, fmt.Errorf("%w: %s", ErrNodeNotFound, ch.ID))
				continue
			}
			if n.Position != ch.Position {
				n.Position = ch.Position
				events = append(events, Event{Kind: NodeChanged, NodeID: ch.ID, Fields: FieldPosition})
			}
		default:
			errs = append(errs, fmt.Errorf("%w: node change %s", ErrUnsupportedChange, ch.Kind))
		}
	}
	s.mu.Unlock()

	s.publish(events)
	return combine(errs)
}

// ApplyEdgeChanges applies a batch of edge additions and removals.
func (s *Store) ApplyEdgeChanges(changes []EdgeChange) error {
	s.mu.Lock()
	var events []Event
	var errs []error
	for _, ch := range changes {
		switch ch.Kind {
		case ChangeAdd:
			evs, err := s.addEdgeLocked(ch.Edge)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			events = append(events, evs...)
		case ChangeRemove:
			ev, err := s.deleteEdgeLocked(ch.ID)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			events = append(events, ev)
		default:
			errs = append(errs, fmt.Errorf("%w: edge change %s", ErrUnsupportedChange, ch.Kind))
		}
	}
	s.mu.Unlock()

	s.publish(events)
	return combine(errs)
}

func combine(errs []error) error {
	return multierr.Combine(errs...)
}
