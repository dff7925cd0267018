// Package repost wires research and the draft/review cycle into one run.
package repost

import (
	"context"
	"fmt"
	"time"

	"github.com/YoshitsuguKoike/repostflow/internal/app"
	"github.com/YoshitsuguKoike/repostflow/internal/application/dto"
	"github.com/YoshitsuguKoike/repostflow/internal/application/port/output"
	"github.com/YoshitsuguKoike/repostflow/internal/application/usecase/research"
	"github.com/YoshitsuguKoike/repostflow/internal/domain/review"
	"github.com/YoshitsuguKoike/repostflow/internal/domain/social"
)

// Researcher compiles a brief for a set of profiles
type Researcher interface {
	Compile(ctx context.Context, profiles []string) (*research.Brief, error)
}

// Drafter runs a review session for a brief
type Drafter interface {
	StartSession(ctx context.Context, brief string) (*review.Session, error)
}

// FlowUseCase runs research and then the review session
type FlowUseCase struct {
	researcher Researcher
	drafter    Drafter
	fallback   []string
	storage    output.StorageGateway
	logger     app.Logger
}

// NewFlowUseCase creates a new FlowUseCase. storage may be nil.
func NewFlowUseCase(researcher Researcher, drafter Drafter, fallback []string, storage output.StorageGateway, logger app.Logger) *FlowUseCase {
	return &FlowUseCase{
		researcher: researcher,
		drafter:    drafter,
		fallback:   append([]string(nil), fallback...),
		storage:    storage,
		logger:     app.LoggerOrDefault(logger),
	}
}

// Execute performs one run. A hard error in research or drafting aborts the
// run; publishing problems are part of the outcome.
func (uc *FlowUseCase) Execute(ctx context.Context, input dto.KickoffInput) (*dto.KickoffOutput, error) {
	start := time.Now()

	profiles := social.NormalizeUsernames(input.Profiles)
	if len(profiles) == 0 {
		profiles = social.NormalizeUsernames(uc.fallback)
		uc.logger.Info("No profiles given, using fallback list: %v", profiles)
	}
	if len(profiles) == 0 {
		return nil, fmt.Errorf("no profiles configured")
	}

	brief, err := uc.researcher.Compile(ctx, profiles)
	if err != nil {
		return nil, fmt.Errorf("research failed: %w", err)
	}

	s, err := uc.drafter.StartSession(ctx, brief.Text)
	if err != nil {
		return nil, fmt.Errorf("review session failed: %w", err)
	}
	uc.archiveDigest(ctx, s.ID, brief.Digest)

	return &dto.KickoffOutput{
		SessionID:   s.ID.String(),
		Outcome:     string(s.Outcome.Kind),
		Payload:     s.Outcome.Payload,
		Attempts:    s.Attempts,
		Profiles:    profiles,
		Brief:       brief.Text,
		ElapsedMs:   time.Since(start).Milliseconds(),
		CompletedAt: time.Now().UTC(),
	}, nil
}

func (uc *FlowUseCase) archiveDigest(ctx context.Context, id review.SessionID, digest social.Digest) {
	if uc.storage == nil {
		return
	}
	_, err := uc.storage.SaveArtifact(ctx, output.SaveArtifactRequest{
		SessionID:    id.String(),
		ArtifactType: output.ArtifactTypeDigest,
		Content:      []byte(digest.String()),
		ContentType:  "text/plain; charset=utf-8",
		Metadata:     map[string]string{"posts": fmt.Sprintf("%d", digest.PostCount())},
	})
	if err != nil {
		uc.logger.Warn("Failed to archive digest for session %s: %v", id, err)
	}
}
