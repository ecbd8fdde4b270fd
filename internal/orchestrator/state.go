package orchestrator

// State is a phase of one orchestration run.
type State int

const (
	StateIdle State = iota
	StateValidated
	StateConnected
	StateExecuted
	StateReported
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateValidated:
		return "validated"
	case StateConnected:
		return "connected"
	case StateExecuted:
		return "executed"
	case StateReported:
		return "reported"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

func (s State) MarshalText() ([]byte, error) { return []byte(s.String()), nil }
