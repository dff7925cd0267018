package review

import (
	"crypto/rand"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

// DefaultMaxAttempts bounds the number of drafts per session
const DefaultMaxAttempts = 3

// SessionID is a value object for a review session identifier
type SessionID string

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(rand.Reader, 0)
)

// NewSessionID generates a time-ordered session identifier
func NewSessionID(now time.Time) SessionID {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	return SessionID(ulid.MustNew(ulid.Timestamp(now), entropy).String())
}

// String returns the string representation of the ID
func (id SessionID) String() string {
	return string(id)
}

// DraftRecord is one drafting attempt and the verdict it received
type DraftRecord struct {
	ID        string    `json:"id"`
	Attempt   int       `json:"attempt"`
	Text      string    `json:"text"`
	Feedback  string    `json:"feedback,omitempty"` // feedback that produced this draft
	Verdict   *Verdict  `json:"verdict,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Session is the mutable record owned by one controller run
type Session struct {
	ID            SessionID     `json:"id"`
	Attempts      int           `json:"attempts"`
	MaxAttempts   int           `json:"max_attempts"`
	Profiles      []string      `json:"profiles"`
	ResearchBrief string        `json:"research_brief"`
	CurrentDraft  string        `json:"current_draft"`
	State         State         `json:"state"`
	Drafts        []DraftRecord `json:"drafts"`
	Outcome       *Outcome      `json:"outcome,omitempty"`
	StartedAt     time.Time     `json:"started_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
	CompletedAt   *time.Time    `json:"completed_at,omitempty"`
}

// NewSession creates a session in DRAFTING with no attempts made.
// A non-positive maxAttempts falls back to DefaultMaxAttempts.
func NewSession(profiles []string, maxAttempts int) *Session {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	now := time.Now()
	return &Session{
		ID:          NewSessionID(now),
		Attempts:    0,
		MaxAttempts: maxAttempts,
		Profiles:    append([]string(nil), profiles...),
		State:       StateDrafting,
		StartedAt:   now,
		UpdatedAt:   now,
	}
}

// SetResearchBrief stores the brief. It can only be written once.
func (s *Session) SetResearchBrief(brief string) error {
	if s.ResearchBrief != "" {
		return ErrBriefAlreadySet
	}
	s.ResearchBrief = brief
	s.touch()
	return nil
}

// BeginDraft reserves the next attempt number.
// It fails once MaxAttempts drafts have already been requested.
func (s *Session) BeginDraft() (int, error) {
	if s.State.IsTerminal() {
		return s.Attempts, ErrSessionCompleted
	}
	if s.State != StateDrafting {
		return s.Attempts, ErrInvalidTransition.WithDetails(map[string]interface{}{
			"from": s.State, "action": "begin_draft",
		})
	}
	if s.Attempts >= s.MaxAttempts {
		return s.Attempts, ErrMaxAttemptsReached.WithDetails(map[string]interface{}{
			"attempts": s.Attempts, "max_attempts": s.MaxAttempts,
		})
	}
	s.Attempts++
	s.touch()
	return s.Attempts, nil
}

// RecordDraft stores the draft produced for the current attempt and moves
// the session to AWAITING_REVIEW.
func (s *Session) RecordDraft(text, feedback string) error {
	if err := s.TransitionTo(StateAwaitingReview); err != nil {
		return err
	}
	s.CurrentDraft = text
	s.Drafts = append(s.Drafts, DraftRecord{
		ID:        uuid.NewString(),
		Attempt:   s.Attempts,
		Text:      text,
		Feedback:  feedback,
		CreatedAt: time.Now(),
	})
	return nil
}

// RecordVerdict attaches the verdict to the latest draft
func (s *Session) RecordVerdict(v Verdict) error {
	if s.State != StateAwaitingReview {
		return ErrInvalidTransition.WithDetails(map[string]interface{}{
			"from": s.State, "action": "record_verdict",
		})
	}
	if len(s.Drafts) == 0 {
		return ErrNoDraft
	}
	verdict := v
	s.Drafts[len(s.Drafts)-1].Verdict = &verdict
	s.touch()
	return nil
}

// LatestVerdict returns the verdict on the current draft, if any
func (s *Session) LatestVerdict() (Verdict, bool) {
	if len(s.Drafts) == 0 || s.Drafts[len(s.Drafts)-1].Verdict == nil {
		return Verdict{}, false
	}
	return *s.Drafts[len(s.Drafts)-1].Verdict, true
}

// CanRetry returns true if another draft may still be requested
func (s *Session) CanRetry() bool {
	return s.Attempts < s.MaxAttempts
}

// TransitionTo moves the session along a validated edge
func (s *Session) TransitionTo(next State) error {
	if !s.State.CanTransitionTo(next) {
		if s.State.IsTerminal() {
			return ErrSessionCompleted
		}
		return ErrInvalidTransition.WithDetails(map[string]interface{}{
			"from": s.State, "to": next,
		})
	}
	s.State = next
	s.touch()
	if next.IsTerminal() {
		now := s.UpdatedAt
		s.CompletedAt = &now
	}
	return nil
}

// Complete moves the session into the terminal state matching the outcome
func (s *Session) Complete(outcome Outcome) error {
	if err := s.TransitionTo(outcome.Kind.State()); err != nil {
		return err
	}
	outcome.SessionID = s.ID
	outcome.Attempts = s.Attempts
	s.Outcome = &outcome
	return nil
}

// IsCompleted returns true if the session reached a terminal state
func (s *Session) IsCompleted() bool {
	return s.State.IsTerminal()
}

// Summary is a one-line description for logs and listings
func (s *Session) Summary() string {
	return fmt.Sprintf("%s state=%s attempts=%d/%d", s.ID, s.State, s.Attempts, s.MaxAttempts)
}

func (s *Session) touch() {
	s.UpdatedAt = time.Now()
}
