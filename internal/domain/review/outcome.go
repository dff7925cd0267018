package review

// OutcomeKind is the terminal result of a review session
type OutcomeKind string

const (
	OutcomePublished OutcomeKind = "published"
	OutcomeAbandoned OutcomeKind = "abandoned"
	OutcomeCancelled OutcomeKind = "cancelled"
)

// CancelledMessage is the payload of a cancelled outcome
const CancelledMessage = "Cancelled by user."

// State maps the outcome to its terminal session state
func (k OutcomeKind) State() State {
	switch k {
	case OutcomePublished:
		return StatePublished
	case OutcomeAbandoned:
		return StateAbandoned
	case OutcomeCancelled:
		return StateCancelled
	default:
		return ""
	}
}

// Outcome is what a finished session hands back.
// Payload is always human-readable: the publish result, the last draft, or
// the cancellation notice.
type Outcome struct {
	Kind      OutcomeKind `json:"kind"`
	Payload   string      `json:"payload"`
	Attempts  int         `json:"attempts"`
	SessionID SessionID   `json:"session_id"`
}

// Published builds the outcome of an approved and published draft
func Published(result string) Outcome {
	return Outcome{Kind: OutcomePublished, Payload: result}
}

// Abandoned builds the outcome of a session that ran out of attempts
func Abandoned(lastDraft string) Outcome {
	return Outcome{Kind: OutcomeAbandoned, Payload: lastDraft}
}

// Cancelled builds the outcome of a session the reviewer stopped
func Cancelled() Outcome {
	return Outcome{Kind: OutcomeCancelled, Payload: CancelledMessage}
}
