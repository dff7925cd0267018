package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"time"

	"github.com/spf13/afero"

	"github.com/YoshitsuguKoike/repostflow/internal/application/port/output"
	"github.com/YoshitsuguKoike/repostflow/internal/util"
)

// LocalStorageGateway implements StorageGateway on a filesystem.
// Directory structure: <baseDir>/artifacts/<sessionID>/<artifactID>/
//   - content: artifact content
//   - metadata.json: artifact metadata
type LocalStorageGateway struct {
	fs      afero.Fs
	baseDir string
}

// NewLocalStorageGateway creates a storage gateway rooted at baseDir
func NewLocalStorageGateway(fsys afero.Fs, baseDir string) (*LocalStorageGateway, error) {
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	if err := fsys.MkdirAll(filepath.Join(baseDir, "artifacts"), 0o755); err != nil {
		return nil, fmt.Errorf("create artifacts directory: %w", err)
	}
	return &LocalStorageGateway{fs: fsys, baseDir: baseDir}, nil
}

// SaveArtifact writes content and metadata atomically
func (g *LocalStorageGateway) SaveArtifact(ctx context.Context, req output.SaveArtifactRequest) (*output.ArtifactMetadata, error) {
	if req.SessionID == "" {
		return nil, fmt.Errorf("save artifact: session ID is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	artifactID := generateArtifactID(req.Content)
	artifactDir := g.artifactDir(req.SessionID, artifactID)
	contentPath := filepath.Join(artifactDir, contentFile)

	if err := util.WriteFileAtomic(g.fs, contentPath, req.Content); err != nil {
		return nil, fmt.Errorf("write artifact content: %w", err)
	}

	metadata := output.ArtifactMetadata{
		ID:          artifactID,
		SessionID:   req.SessionID,
		Type:        req.ArtifactType,
		StoragePath: contentPath,
		ContentType: req.ContentType,
		Size:        int64(len(req.Content)),
		UploadedAt:  time.Now().UTC(),
		Metadata:    req.Metadata,
	}

	metadataJSON, err := json.MarshalIndent(metadata, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal metadata: %w", err)
	}
	if err := util.WriteFileAtomic(g.fs, filepath.Join(artifactDir, metadataFile), metadataJSON); err != nil {
		return nil, fmt.Errorf("write metadata: %w", err)
	}

	return &metadata, nil
}

// LoadArtifact finds an artifact by ID in any session
func (g *LocalStorageGateway) LoadArtifact(ctx context.Context, artifactID string) (*output.Artifact, error) {
	matches, err := afero.Glob(g.fs, filepath.Join(g.baseDir, "artifacts", "*", artifactID))
	if err != nil {
		return nil, fmt.Errorf("search artifact: %w", err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("artifact not found: %s", artifactID)
	}
	dir := matches[0]

	metadata, err := g.readMetadata(filepath.Join(dir, metadataFile))
	if err != nil {
		return nil, err
	}

	content, err := afero.ReadFile(g.fs, filepath.Join(dir, contentFile))
	if err != nil {
		return nil, fmt.Errorf("read content: %w", err)
	}

	return &output.Artifact{
		ID:       artifactID,
		Content:  content,
		Metadata: *metadata,
	}, nil
}

// ListArtifacts lists the artifacts of a session, oldest first.
// Unreadable entries are skipped.
func (g *LocalStorageGateway) ListArtifacts(ctx context.Context, sessionID string) ([]*output.ArtifactMetadata, error) {
	sessionDir := filepath.Join(g.baseDir, "artifacts", sessionID)

	entries, err := afero.ReadDir(g.fs, sessionDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []*output.ArtifactMetadata{}, nil
		}
		return nil, fmt.Errorf("read session directory: %w", err)
	}

	list := make([]*output.ArtifactMetadata, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		metadata, err := g.readMetadata(filepath.Join(sessionDir, entry.Name(), metadataFile))
		if err != nil {
			continue
		}
		list = append(list, metadata)
	}

	sort.SliceStable(list, func(i, j int) bool {
		return list[i].UploadedAt.Before(list[j].UploadedAt)
	})
	return list, nil
}

// StoragePath returns where an artifact's content lives
func (g *LocalStorageGateway) StoragePath(sessionID, artifactID string) string {
	return filepath.Join(g.artifactDir(sessionID, artifactID), contentFile)
}

func (g *LocalStorageGateway) artifactDir(sessionID, artifactID string) string {
	return filepath.Join(g.baseDir, "artifacts", sessionID, artifactID)
}

func (g *LocalStorageGateway) readMetadata(path string) (*output.ArtifactMetadata, error) {
	data, err := afero.ReadFile(g.fs, path)
	if err != nil {
		return nil, fmt.Errorf("read metadata: %w", err)
	}
	var metadata output.ArtifactMetadata
	if err := json.Unmarshal(data, &metadata); err != nil {
		return nil, fmt.Errorf("unmarshal metadata: %w", err)
	}
	return &metadata, nil
}
