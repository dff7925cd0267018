package storage

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/YoshitsuguKoike/repostflow/internal/application/port/output"
)

// MockStorageGateway keeps artifacts in memory. Used for dry runs and tests.
type MockStorageGateway struct {
	mu        sync.RWMutex
	artifacts map[string]*output.Artifact
	order     []string
	nextID    int
}

// NewMockStorageGateway creates an empty in-memory gateway
func NewMockStorageGateway() *MockStorageGateway {
	return &MockStorageGateway{
		artifacts: make(map[string]*output.Artifact),
		nextID:    1,
	}
}

// SaveArtifact stores a copy of the content
func (g *MockStorageGateway) SaveArtifact(ctx context.Context, req output.SaveArtifactRequest) (*output.ArtifactMetadata, error) {
	if req.SessionID == "" {
		return nil, fmt.Errorf("save artifact: session ID is required")
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	artifactID := fmt.Sprintf("mock-artifact-%d", g.nextID)
	g.nextID++

	artifact := &output.Artifact{
		ID:      artifactID,
		Content: append([]byte(nil), req.Content...),
		Metadata: output.ArtifactMetadata{
			ID:          artifactID,
			SessionID:   req.SessionID,
			Type:        req.ArtifactType,
			StoragePath: "mock://artifacts/" + req.SessionID + "/" + artifactID,
			ContentType: req.ContentType,
			Size:        int64(len(req.Content)),
			UploadedAt:  time.Now().UTC(),
			Metadata:    req.Metadata,
		},
	}
	g.artifacts[artifactID] = artifact
	g.order = append(g.order, artifactID)

	md := artifact.Metadata
	return &md, nil
}

// LoadArtifact returns a stored artifact
func (g *MockStorageGateway) LoadArtifact(ctx context.Context, artifactID string) (*output.Artifact, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	artifact, ok := g.artifacts[artifactID]
	if !ok {
		return nil, fmt.Errorf("artifact not found: %s", artifactID)
	}
	cp := *artifact
	return &cp, nil
}

// ListArtifacts lists a session's artifacts in save order
func (g *MockStorageGateway) ListArtifacts(ctx context.Context, sessionID string) ([]*output.ArtifactMetadata, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	list := []*output.ArtifactMetadata{}
	for _, id := range g.order {
		if a := g.artifacts[id]; a.Metadata.SessionID == sessionID {
			md := a.Metadata
			list = append(list, &md)
		}
	}
	return list, nil
}

// ArtifactCount returns the number of stored artifacts
func (g *MockStorageGateway) ArtifactCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.artifacts)
}
