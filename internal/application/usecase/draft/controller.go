// Package draft runs the draft/review cycle: produce a draft, ask a human,
// then publish, revise, give up, or stop.
package draft

import (
	"context"
	"fmt"
	"time"

	"github.com/YoshitsuguKoike/repostflow/internal/app"
	"github.com/YoshitsuguKoike/repostflow/internal/application/port/output"
	"github.com/YoshitsuguKoike/repostflow/internal/domain/review"
)

// Options configure one Controller
type Options struct {
	MaxAttempts int      // drafts allowed per session, <=0 uses review.DefaultMaxAttempts
	Caption     string   // footer appended to every draft
	Profiles    []string // recorded on the session
	MaxTokens   int      // passed to the agent, 0 uses 1024
}

// Option customizes optional collaborators
type Option func(*Controller)

// WithRecorder persists the session after every state change
func WithRecorder(r output.SessionRecorder) Option {
	return func(c *Controller) { c.recorder = r }
}

// WithStorage archives brief, final draft and publish result
func WithStorage(s output.StorageGateway) Option {
	return func(c *Controller) { c.storage = s }
}

// WithLinter attaches advisory warnings to each review request
func WithLinter(lint func(string) []string) Option {
	return func(c *Controller) { c.lint = lint }
}

// Journal records the steps of a session
type Journal interface {
	Append(entry *app.JournalEntry) error
}

// WithJournal appends one entry per draft, verdict and outcome
func WithJournal(j Journal) Option {
	return func(c *Controller) { c.journal = j }
}

// WithLogger overrides the app logger
func WithLogger(l app.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

// Controller drives one review session per Start call.
// Per-run state lives in the session, so a Controller can be reused.
type Controller struct {
	agent     output.AgentGateway
	gate      output.ReviewGate
	publisher output.Publisher

	recorder output.SessionRecorder
	storage  output.StorageGateway
	journal  Journal
	lint     func(string) []string
	logger   app.Logger

	opts Options
}

// NewController wires the three required collaborators
func NewController(agent output.AgentGateway, gate output.ReviewGate, publisher output.Publisher, opts Options, options ...Option) *Controller {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = review.DefaultMaxAttempts
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = 1024
	}
	c := &Controller{
		agent:     agent,
		gate:      gate,
		publisher: publisher,
		opts:      opts,
	}
	for _, o := range options {
		o(c)
	}
	c.logger = app.LoggerOrDefault(c.logger)
	return c
}

// Start runs a full session for the brief and returns its terminal outcome.
func (c *Controller) Start(ctx context.Context, brief string) (review.Outcome, error) {
	s, err := c.StartSession(ctx, brief)
	if err != nil {
		return review.Outcome{}, err
	}
	return *s.Outcome, nil
}

// StartSession is Start returning the whole session record.
// On a hard error the partially filled session is returned with the error.
func (c *Controller) StartSession(ctx context.Context, brief string) (*review.Session, error) {
	s := review.NewSession(c.opts.Profiles, c.opts.MaxAttempts)
	if err := s.SetResearchBrief(brief); err != nil {
		return s, err
	}
	c.record(ctx, s)
	c.logger.Info("Review session %s started (max attempts %d)", s.ID, s.MaxAttempts)

	var (
		feedback string
		prevBody string
		revision bool
	)

	// Every iteration requests exactly one draft, and BeginDraft refuses to go
	// past MaxAttempts, so the loop ends after at most MaxAttempts rounds.
	for round := 0; round < s.MaxAttempts; round++ {
		start := time.Now()
		body, err := c.produceDraft(ctx, s, DraftPrompt{
			Brief:         s.ResearchBrief,
			PreviousDraft: prevBody,
			Feedback:      feedback,
			Revision:      revision,
		})
		c.appendJournal(s, app.StepDraft, "", start, err)
		if err != nil {
			c.record(ctx, s)
			return s, err
		}

		start = time.Now()
		verdict, err := c.requestVerdict(ctx, s)
		c.appendJournal(s, app.StepReview, string(verdict.Kind), start, err)
		if err != nil {
			c.record(ctx, s)
			return s, err
		}

		start = time.Now()
		next, err := c.handleVerdict(ctx, s, verdict)
		c.record(ctx, s)
		if err != nil {
			return s, err
		}
		if s.IsCompleted() {
			c.appendJournal(s, app.StepOutcome, s.State.String(), start, nil)
			c.archive(ctx, s)
			c.logger.Info("Review session %s finished: %s after %d attempt(s)", s.ID, s.Outcome.Kind, s.Attempts)
			return s, nil
		}

		prevBody = body
		feedback = next
		revision = true
	}

	return s, review.NewReviewError("REVIEW_LOOP_EXHAUSTED",
		fmt.Sprintf("session %s did not reach a terminal state", s.ID), nil)
}

// produceDraft reserves an attempt, calls the drafting agent and stores the draft.
// It returns the draft body without caption.
func (c *Controller) produceDraft(ctx context.Context, s *review.Session, p DraftPrompt) (string, error) {
	attempt, err := s.BeginDraft()
	if err != nil {
		return "", err
	}
	c.logger.Info("Drafting LinkedIn post (attempt %d/%d)", attempt, s.MaxAttempts)

	resp, err := c.agent.Execute(ctx, output.AgentRequest{
		SystemPrompt: WriterSystemPrompt,
		Prompt:       p.Build(),
		MaxTokens:    c.opts.MaxTokens,
		Temperature:  0.8,
		Context: map[string]string{
			"session_id": s.ID.String(),
			"attempt":    fmt.Sprintf("%d", attempt),
		},
	})
	if err != nil {
		return "", fmt.Errorf("%w: attempt %d: %w", review.ErrDraftingFailed, attempt, err)
	}

	body := cleanOutput(resp.Output)
	if body == "" {
		return "", fmt.Errorf("%w: attempt %d: agent returned an empty draft", review.ErrDraftingFailed, attempt)
	}

	if err := s.RecordDraft(WithCaption(body, c.opts.Caption), p.Feedback); err != nil {
		return "", err
	}
	c.logger.Debug("Draft %d:\n%s", attempt, s.CurrentDraft)
	return body, nil
}

// requestVerdict submits the current draft to the review gate
func (c *Controller) requestVerdict(ctx context.Context, s *review.Session) (review.Verdict, error) {
	req := output.ReviewRequest{
		SessionID:   s.ID,
		Draft:       s.CurrentDraft,
		Attempt:     s.Attempts,
		MaxAttempts: s.MaxAttempts,
	}
	if c.lint != nil {
		req.Warnings = c.lint(s.CurrentDraft)
		for _, w := range req.Warnings {
			c.logger.Warn("Draft %d: %s", s.Attempts, w)
		}
	}

	v, err := c.gate.RequestVerdict(ctx, req)
	if err != nil {
		return review.Verdict{}, fmt.Errorf("%w: review of attempt %d: %w", review.ErrDraftingFailed, s.Attempts, err)
	}
	if !v.Kind.IsValid() {
		return review.Verdict{}, review.ErrInvalidVerdict.WithDetails(map[string]interface{}{"kind": v.Kind})
	}
	if err := s.RecordVerdict(v); err != nil {
		return review.Verdict{}, err
	}
	return v, nil
}

// handleVerdict applies a verdict. For a rejection with attempts left it moves
// the session back to DRAFTING and returns the feedback for the next draft.
func (c *Controller) handleVerdict(ctx context.Context, s *review.Session, v review.Verdict) (string, error) {
	switch v.Kind {
	case review.VerdictApproved:
		if v.Feedback != "" {
			c.logger.Info("Approved. Reviewer said: %s", v.Feedback)
		} else {
			c.logger.Info("Approved.")
		}
		result := c.publisher.Publish(ctx, s.CurrentDraft)
		if !result.OK {
			c.logger.Warn("Publishing failed: %s", result.Message)
		}
		return "", s.Complete(review.Published(result.Message))

	case review.VerdictRejected:
		c.logger.Info("Rejected. Reason: %s", v.Feedback)
		if !s.CanRetry() {
			c.logger.Warn("Max attempts (%d) reached. Giving up.", s.MaxAttempts)
			return "", s.Complete(review.Abandoned(s.CurrentDraft))
		}
		c.logger.Info("Revising with feedback...")
		return v.Feedback, s.TransitionTo(review.StateDrafting)

	case review.VerdictCancelled:
		c.logger.Info("Cancelled. No post will be published.")
		return "", s.Complete(review.Cancelled())

	default:
		return "", review.ErrInvalidVerdict.WithDetails(map[string]interface{}{"kind": v.Kind})
	}
}

type artifact struct {
	typ     output.ArtifactType
	content string
}

func (c *Controller) record(ctx context.Context, s *review.Session) {
	if c.recorder == nil {
		return
	}
	if err := c.recorder.SaveSession(ctx, s); err != nil {
		c.logger.Warn("Failed to record session %s: %v", s.ID, err)
	}
}

func (c *Controller) appendJournal(s *review.Session, step, decision string, start time.Time, err error) {
	if c.journal == nil {
		return
	}
	e := &app.JournalEntry{
		SessionID: s.ID.String(),
		Turn:      s.Attempts,
		Step:      step,
		Decision:  decision,
		ElapsedMs: time.Since(start).Milliseconds(),
	}
	if err != nil {
		e.Error = err.Error()
	}
	if jerr := c.journal.Append(e); jerr != nil {
		c.logger.Warn("Failed to append journal entry for session %s: %v", s.ID, jerr)
	}
}

// archive stores the final artifacts. Failures are logged only.
func (c *Controller) archive(ctx context.Context, s *review.Session) {
	if c.storage == nil {
		return
	}
	items := []artifact{
		{output.ArtifactTypeBrief, s.ResearchBrief},
		{output.ArtifactTypeDraft, s.CurrentDraft},
	}
	if s.Outcome != nil && s.Outcome.Kind == review.OutcomePublished {
		items = append(items, artifact{output.ArtifactTypePublishResult, s.Outcome.Payload})
	}

	for _, it := range items {
		_, err := c.storage.SaveArtifact(ctx, output.SaveArtifactRequest{
			SessionID:    s.ID.String(),
			ArtifactType: it.typ,
			Content:      []byte(it.content),
			ContentType:  "text/plain; charset=utf-8",
			Metadata: map[string]string{
				"state":    s.State.String(),
				"attempts": fmt.Sprintf("%d", s.Attempts),
			},
		})
		if err != nil {
			c.logger.Warn("Failed to archive %s for session %s: %v", it.typ, s.ID, err)
		}
	}
}
