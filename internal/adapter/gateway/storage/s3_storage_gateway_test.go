package storage

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YoshitsuguKoike/repostflow/internal/application/port/output"
)

func TestS3StorageGateway_SaveAndLoadArtifact(t *testing.T) {
	client := NewMockS3Client()
	g := NewS3StorageGatewayWithClient(client, "bucket", "/repostflow/test/")
	ctx := context.Background()

	md, err := g.SaveArtifact(ctx, output.SaveArtifactRequest{
		SessionID:    "s1",
		ArtifactType: output.ArtifactTypePublishResult,
		Content:      []byte("Successfully published LinkedIn post. Post ID: urn:li:share:1"),
		ContentType:  "text/plain",
		Metadata:     map[string]string{"outcome": "published"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, client.ObjectCount(), "content and metadata.json")

	contentKey := "repostflow/test/artifacts/s1/" + md.ID + "/content"
	assert.Equal(t, "s3://bucket/"+contentKey, md.StoragePath)

	_, objMeta, ok := client.Object(contentKey)
	require.True(t, ok)
	assert.Equal(t, "s1", objMeta["session-id"])
	assert.Equal(t, "publish_result", objMeta["artifact-type"])
	assert.Equal(t, "published", objMeta["outcome"])

	artifact, err := g.LoadArtifact(ctx, md.ID)
	require.NoError(t, err)
	assert.Contains(t, string(artifact.Content), "urn:li:share:1")
	assert.Equal(t, "s1", artifact.Metadata.SessionID)
	assert.Equal(t, output.ArtifactTypePublishResult, artifact.Metadata.Type)
}

func TestS3StorageGateway_LoadArtifact_NotFound(t *testing.T) {
	g := NewS3StorageGatewayWithClient(NewMockS3Client(), "bucket", "")
	_, err := g.LoadArtifact(context.Background(), "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "artifact not found")
}

func TestS3StorageGateway_ListArtifactsPaginates(t *testing.T) {
	client := NewMockS3Client()
	client.PageSize = 3
	g := NewS3StorageGatewayWithClient(client, "bucket", "p")
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		_, err := g.SaveArtifact(ctx, output.SaveArtifactRequest{
			SessionID:    "s1",
			ArtifactType: output.ArtifactTypeDraft,
			Content:      []byte(fmt.Sprintf("draft %d", i)),
		})
		require.NoError(t, err)
	}
	_, err := g.SaveArtifact(ctx, output.SaveArtifactRequest{SessionID: "s10", ArtifactType: output.ArtifactTypeDraft, Content: []byte("other")})
	require.NoError(t, err)

	list, err := g.ListArtifacts(ctx, "s1")
	require.NoError(t, err)
	assert.Len(t, list, 4, "s10 shares the prefix s1 but not the directory")

	empty, err := g.ListArtifacts(ctx, "none")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestS3StorageGateway_BuildKey(t *testing.T) {
	tests := []struct {
		prefix string
		parts  []string
		want   string
	}{
		{"", []string{"artifacts", "s1", "a", "content"}, "artifacts/s1/a/content"},
		{"repostflow/prod", []string{"artifacts", "s1"}, "repostflow/prod/artifacts/s1"},
		{"/trimmed/", []string{"artifacts"}, "trimmed/artifacts"},
	}
	for _, tt := range tests {
		g := NewS3StorageGatewayWithClient(NewMockS3Client(), "b", tt.prefix)
		assert.Equal(t, tt.want, g.buildKey(tt.parts...))
	}
}
