package output

import (
	"context"

	"github.com/YoshitsuguKoike/repostflow/internal/domain/review"
)

// ReviewGate asks a human for a verdict on a draft.
// Implementations block until a verdict is available, the gate's own
// deadline applies a default, or ctx is cancelled.
type ReviewGate interface {
	RequestVerdict(ctx context.Context, req ReviewRequest) (review.Verdict, error)
}

// ReviewRequest is everything shown to the reviewer
type ReviewRequest struct {
	SessionID   review.SessionID
	Draft       string
	Attempt     int
	MaxAttempts int
	Warnings    []string // advisory notes such as formatting lint
}
