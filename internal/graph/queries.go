package graph

// EdgeInto returns the edge terminating at the given input port.
func (s *Store) EdgeInto(target, handle string) (Edge, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.edgeIntoLocked(target, handle)
	if !ok {
		return Edge{}, false
	}
	return *e, true
}

// IncomingEdges lists the edges ending at node id.
func (s *Store) IncomingEdges(id string) []Edge {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Edge
	for _, eid := range s.edgeOrder {
		if e := s.edges[eid]; e.Target == id {
			out = append(out, *e)
		}
	}
	return out
}

// OutgoingEdges lists the edges starting at node id.
func (s *Store) OutgoingEdges(id string) []Edge {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Edge
	for _, eid := range s.edgeOrder {
		if e := s.edges[eid]; e.Source == id {
			out = append(out, *e)
		}
	}
	return out
}

// Dependents lists the distinct nodes fed by node id, in edge order.
func (s *Store) Dependents(id string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seen := make(map[string]struct{})
	var out []string
	for _, eid := range s.edgeOrder {
		e := s.edges[eid]
		if e.Source != id {
			continue
		}
		if _, ok := seen[e.Target]; ok {
			continue
		}
		seen[e.Target] = struct{}{}
		out = append(out, e.Target)
	}
	return out
}

func (s *Store) edgeIntoLocked(target, handle string) (*Edge, bool) {
	for _, eid := range s.edgeOrder {
		e := s.edges[eid]
		if e.Target == target && e.TargetHandle == handle {
			return e, true
		}
	}
	return nil, false
}

// reachableLocked reports whether to can be reached from from by following
// edges downstream. A node always reaches itself.
func (s *Store) reachableLocked(from, to string) bool {
	visited := make(map[string]bool)
	var visit func(id string) bool
	visit = func(id string) bool {
		if id == to {
			return true
		}
		if visited[id] {
			return false
		}
		visited[id] = true
		for _, eid := range s.edgeOrder {
			if e := s.edges[eid]; e.Source == id && visit(e.Target) {
				return true
			}
		}
		return false
	}
	return visit(from)
}
