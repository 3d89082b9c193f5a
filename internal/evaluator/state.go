package evaluator

// State is the observable phase of a node within the evaluation protocol.
type State int

const (
	Idle State = iota
	Gathering
	Ready
	Blocked
	Running
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Gathering:
		return "gathering"
	case Ready:
		return "ready"
	case Blocked:
		return "blocked"
	case Running:
		return "running"
	default:
		return "unknown"
	}
}
