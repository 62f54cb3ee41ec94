package matchers

import "fmt"

// State tracks a proposal through review. APPLIED is terminal for the
// ChangeSet that carried the proposal; a new run produces a new proposal
// rather than mutating history.
type State string

const (
	StateUnmatched State = "unmatched"
	StateProposed  State = "proposed"
	StateReviewed  State = "reviewed"
	StateApplied   State = "applied"
	StateRejected  State = "rejected"
)

var stateTransitions = map[State][]State{
	StateUnmatched: {StateProposed},
	StateProposed:  {StateReviewed, StateRejected},
	StateReviewed:  {StateApplied},
	StateApplied:   {},
	StateRejected:  {},
}

// Transition validates and performs a state change.
func Transition(from, to State) (State, error) {
	for _, allowed := range stateTransitions[from] {
		if allowed == to {
			return to, nil
		}
	}
	return from, fmt.Errorf("invalid match state transition %s -> %s", from, to)
}
