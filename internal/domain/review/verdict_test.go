package review

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseVerdict(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		kind     VerdictKind
		feedback string
	}{
		{"plain approve", "approve", VerdictApproved, ""},
		{"approve with note", "approved looks great", VerdictApproved, "looks great"},
		{"uppercase ok", "OK", VerdictApproved, ""},
		{"reject with feedback", "reject make it shorter", VerdictRejected, "make it shorter"},
		{"reject with colon", "reject: too formal", VerdictRejected, "too formal"},
		{"reject with dash", "revise - add a question at the end", VerdictRejected, "add a question at the end"},
		{"bare reject", "reject", VerdictRejected, ""},
		{"cancel", "cancel", VerdictCancelled, ""},
		{"skip means cancel", "  skip today  ", VerdictCancelled, ""},
		{"free text is feedback", "Mention the pricing change", VerdictRejected, "Mention the pricing change"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := ParseVerdict(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.kind, v.Kind)
			assert.Equal(t, tt.feedback, v.Feedback)
		})
	}
}

func TestParseVerdict_Empty(t *testing.T) {
	_, err := ParseVerdict("   \n")
	require.Error(t, err)
	assert.True(t, IsInvalidVerdict(err))
}

func TestParseVerdictKind(t *testing.T) {
	kind, err := ParseVerdictKind("Approved")
	require.NoError(t, err)
	assert.Equal(t, VerdictApproved, kind)

	kind, err = ParseVerdictKind("cancel")
	require.NoError(t, err)
	assert.Equal(t, VerdictCancelled, kind)

	_, err = ParseVerdictKind("maybe")
	assert.True(t, IsInvalidVerdict(err))
}

func TestVerdictString(t *testing.T) {
	assert.Equal(t, "approved", Approve("").String())
	assert.Equal(t, "rejected: shorter please", Reject(" shorter please ").String())
	assert.Equal(t, "cancelled", Cancel().String())

	back, err := ParseVerdict(Reject("shorter please").String())
	require.NoError(t, err)
	assert.Equal(t, Reject("shorter please"), back)
}

func TestVerdictKindIsValid(t *testing.T) {
	assert.True(t, VerdictApproved.IsValid())
	assert.True(t, VerdictRejected.IsValid())
	assert.True(t, VerdictCancelled.IsValid())
	assert.False(t, VerdictKind("pending").IsValid())
}
