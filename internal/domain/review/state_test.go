package review

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStateCanTransitionTo(t *testing.T) {
	tests := []struct {
		from, to State
		allowed  bool
	}{
		{StateDrafting, StateAwaitingReview, true},
		{StateDrafting, StatePublished, false},
		{StateAwaitingReview, StatePublished, true},
		{StateAwaitingReview, StateDrafting, true},
		{StateAwaitingReview, StateAbandoned, true},
		{StateAwaitingReview, StateCancelled, true},
		{StateAwaitingReview, StateAwaitingReview, false},
		{StatePublished, StateDrafting, false},
		{StateAbandoned, StateDrafting, false},
		{StateCancelled, StateAwaitingReview, false},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s->%s", tt.from, tt.to), func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestStateIsTerminal(t *testing.T) {
	assert.False(t, StateDrafting.IsTerminal())
	assert.False(t, StateAwaitingReview.IsTerminal())
	assert.True(t, StatePublished.IsTerminal())
	assert.True(t, StateAbandoned.IsTerminal())
	assert.True(t, StateCancelled.IsTerminal())
	assert.False(t, State("UNKNOWN").IsValid())
}

func TestTransitionsMatchTable(t *testing.T) {
	for _, tr := range Transitions() {
		assert.True(t, tr.From.CanTransitionTo(tr.To), "%s -> %s", tr.From, tr.To)
	}
}

func TestOutcomeKindState(t *testing.T) {
	assert.Equal(t, StatePublished, OutcomePublished.State())
	assert.Equal(t, StateAbandoned, OutcomeAbandoned.State())
	assert.Equal(t, StateCancelled, OutcomeCancelled.State())
	assert.Equal(t, State(""), OutcomeKind("other").State())
}

func TestReviewErrorMatching(t *testing.T) {
	wrapped := fmt.Errorf("drafting: %w", ErrDraftingFailed.WithDetails(map[string]interface{}{"attempt": 2}))

	assert.True(t, IsDraftingFailed(wrapped))
	assert.False(t, IsMaxAttempts(wrapped))
	assert.False(t, IsDraftingFailed(errors.New("other")))
	assert.Equal(t, "[REVIEW_DRAFTING_FAILED] Drafting failed", ErrDraftingFailed.Error())
}
