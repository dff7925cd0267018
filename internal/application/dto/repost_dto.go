package dto

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Trigger payload errors, shown verbatim by the CLI
var (
	ErrNoTriggerPayload      = errors.New("No trigger payload provided. Pass JSON as argument.")
	ErrInvalidTriggerPayload = errors.New("Invalid JSON payload")
)

// KickoffInput represents input for one repost run
type KickoffInput struct {
	Profiles []string `json:"profiles,omitempty"` // Empty uses the configured fallback list
}

// KickoffOutput represents the result of one repost run
type KickoffOutput struct {
	SessionID   string    `json:"session_id"`
	Outcome     string    `json:"outcome"`  // published, abandoned or cancelled
	Payload     string    `json:"payload"`  // publish result, last draft or cancel message
	Attempts    int       `json:"attempts"` // Drafts produced
	Profiles    []string  `json:"profiles"` // Profiles actually researched
	Brief       string    `json:"brief,omitempty"`
	ElapsedMs   int64     `json:"elapsed_ms"`
	CompletedAt time.Time `json:"completed_at"`
}

// TriggerPayload is the JSON accepted by the trigger command.
// Every field is optional and overrides configuration for that run.
type TriggerPayload struct {
	Profiles    []string `json:"profiles,omitempty"`
	MaxAttempts int      `json:"max_attempts,omitempty"`
	Review      string   `json:"review,omitempty"`
}

// ParseTriggerPayload decodes a trigger argument. A JSON string is accepted
// for profiles as a comma separated list.
func ParseTriggerPayload(raw string) (*TriggerPayload, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, ErrNoTriggerPayload
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		return nil, ErrInvalidTriggerPayload
	}

	p := &TriggerPayload{}
	if v, ok := fields["profiles"]; ok {
		var list []string
		if err := json.Unmarshal(v, &list); err != nil {
			var s string
			if err := json.Unmarshal(v, &s); err != nil {
				return nil, fmt.Errorf("%w: profiles must be a list or a comma separated string", ErrInvalidTriggerPayload)
			}
			list = strings.Split(s, ",")
		}
		p.Profiles = list
	}
	if v, ok := fields["max_attempts"]; ok {
		if err := json.Unmarshal(v, &p.MaxAttempts); err != nil || p.MaxAttempts < 0 {
			return nil, fmt.Errorf("%w: max_attempts must be a positive integer", ErrInvalidTriggerPayload)
		}
	}
	if v, ok := fields["review"]; ok {
		if err := json.Unmarshal(v, &p.Review); err != nil {
			return nil, fmt.Errorf("%w: review must be a string", ErrInvalidTriggerPayload)
		}
	}
	return p, nil
}
