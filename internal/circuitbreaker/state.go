package circuitbreaker

type State int

const (
	// Calls pass through
	StateClosed State = iota

	// Calls fail fast with ErrCircuitOpen
	StateOpen

	// One trial call decides between closed and open
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}
