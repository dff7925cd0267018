package output

import (
	"context"
	"time"
)

// StorageGateway archives the artifacts of a review session.
// Supports both local filesystem and cloud storage (S3).
type StorageGateway interface {
	// SaveArtifact persists an artifact to storage
	SaveArtifact(ctx context.Context, req SaveArtifactRequest) (*ArtifactMetadata, error)

	// LoadArtifact retrieves an artifact from storage
	LoadArtifact(ctx context.Context, artifactID string) (*Artifact, error)

	// ListArtifacts lists artifacts of a session
	ListArtifacts(ctx context.Context, sessionID string) ([]*ArtifactMetadata, error)
}

// SaveArtifactRequest represents a request to save an artifact
type SaveArtifactRequest struct {
	SessionID    string            // Owning review session
	ArtifactType ArtifactType      // Type of artifact
	Content      []byte            // Artifact content
	Metadata     map[string]string // Additional metadata
	ContentType  string            // MIME type (optional)
}

// ArtifactType represents the type of artifact
type ArtifactType string

const (
	ArtifactTypeDigest        ArtifactType = "digest"         // Profile digest from X
	ArtifactTypeBrief         ArtifactType = "brief"          // Research brief
	ArtifactTypeDraft         ArtifactType = "draft"          // Final draft text
	ArtifactTypePublishResult ArtifactType = "publish_result" // Publisher response
)

// Artifact represents a stored artifact
type Artifact struct {
	ID       string           // Unique artifact ID
	Content  []byte           // Artifact content
	Metadata ArtifactMetadata // Artifact metadata
}

// ArtifactMetadata contains information about an artifact
type ArtifactMetadata struct {
	ID          string            `json:"id"`
	SessionID   string            `json:"session_id"`
	Type        ArtifactType      `json:"type"`
	StoragePath string            `json:"storage_path"` // e.g. s3://bucket/key
	ContentType string            `json:"content_type"`
	Size        int64             `json:"size"`
	UploadedAt  time.Time         `json:"uploaded_at"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}
