package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTriggerPayload(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    *TriggerPayload
		wantErr error
	}{
		{"empty", "  ", nil, ErrNoTriggerPayload},
		{"not json", "{profiles", nil, ErrInvalidTriggerPayload},
		{"not an object", `["alice"]`, nil, ErrInvalidTriggerPayload},
		{"empty object", `{}`, &TriggerPayload{}, nil},
		{"profile list", `{"profiles": ["alice", "@bob"]}`, &TriggerPayload{Profiles: []string{"alice", "@bob"}}, nil},
		{"profile string", `{"profiles": "alice, bob"}`, &TriggerPayload{Profiles: []string{"alice", " bob"}}, nil},
		{"all fields", `{"profiles": [], "max_attempts": 2, "review": "auto-approve"}`,
			&TriggerPayload{Profiles: []string{}, MaxAttempts: 2, Review: "auto-approve"}, nil},
		{"unknown fields ignored", `{"source": {"x": 1}}`, &TriggerPayload{}, nil},
		{"bad profiles", `{"profiles": 3}`, nil, ErrInvalidTriggerPayload},
		{"negative attempts", `{"max_attempts": -1}`, nil, ErrInvalidTriggerPayload},
		{"string attempts", `{"max_attempts": "2"}`, nil, ErrInvalidTriggerPayload},
		{"bad review", `{"review": true}`, nil, ErrInvalidTriggerPayload},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTriggerPayload(tt.raw)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTriggerErrorMessages(t *testing.T) {
	assert.Equal(t, "No trigger payload provided. Pass JSON as argument.", ErrNoTriggerPayload.Error())
	assert.Equal(t, "Invalid JSON payload", ErrInvalidTriggerPayload.Error())
}
