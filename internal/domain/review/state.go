package review

// State is the position of a review session in the draft/review cycle
type State string

const (
	StateDrafting       State = "DRAFTING"
	StateAwaitingReview State = "AWAITING_REVIEW"
	StatePublished      State = "PUBLISHED"
	StateAbandoned      State = "ABANDONED"
	StateCancelled      State = "CANCELLED"
)

// transitions lists every allowed edge. Terminal states have none.
var transitions = map[State][]State{
	StateDrafting:       {StateAwaitingReview},
	StateAwaitingReview: {StatePublished, StateDrafting, StateAbandoned, StateCancelled},
	StatePublished:      {},
	StateAbandoned:      {},
	StateCancelled:      {},
}

// String returns the string representation of the state
func (s State) String() string {
	return string(s)
}

// IsValid returns true if the state is known
func (s State) IsValid() bool {
	_, ok := transitions[s]
	return ok
}

// IsTerminal returns true if no transition leaves this state
func (s State) IsTerminal() bool {
	return s == StatePublished || s == StateAbandoned || s == StateCancelled
}

// CanTransitionTo checks if transition to another state is allowed
func (s State) CanTransitionTo(next State) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Transition is a single edge of the state graph, used for diagrams
type Transition struct {
	From  State
	To    State
	Label string
}

// Transitions returns the state graph in a stable order
func Transitions() []Transition {
	return []Transition{
		{From: StateDrafting, To: StateAwaitingReview, Label: "draft ready"},
		{From: StateAwaitingReview, To: StatePublished, Label: "approved"},
		{From: StateAwaitingReview, To: StateDrafting, Label: "rejected, attempts left"},
		{From: StateAwaitingReview, To: StateAbandoned, Label: "rejected, max attempts"},
		{From: StateAwaitingReview, To: StateCancelled, Label: "cancelled"},
	}
}
