package query

// State is the position of a Scorer in the two-phase protocol.
type State uint8

const (
	// StateUnpositioned is the state before the first NextDoc or Advance.
	StateUnpositioned State = iota
	// StateApproximating means the scorer sits on a candidate that has not
	// been confirmed yet.
	StateApproximating
	// StateMatching means the current candidate passed the match predicate.
	StateMatching
	// StateScored means the current candidate has been scored.
	StateScored
	// StateExhausted is terminal: the approximation ran past the last document.
	StateExhausted
)

func (s State) String() string {
	switch s {
	case StateUnpositioned:
		return "Unpositioned"
	case StateApproximating:
		return "Approximating"
	case StateMatching:
		return "Matching"
	case StateScored:
		return "Scored"
	case StateExhausted:
		return "Exhausted"
	default:
		return "Unknown"
	}
}
