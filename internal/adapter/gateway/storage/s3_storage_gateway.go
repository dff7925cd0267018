package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/YoshitsuguKoike/repostflow/internal/application/port/output"
)

// S3StorageGateway implements StorageGateway using AWS S3
// Bucket structure: s3://<bucket>/<prefix>/artifacts/<sessionID>/<artifactID>/
//   - content: artifact content (metadata also set as S3 object metadata)
//   - metadata.json: artifact metadata
type S3StorageGateway struct {
	client     S3API
	bucketName string
	prefix     string // e.g. "repostflow/prod"
}

// S3Config holds S3 storage gateway configuration
type S3Config struct {
	BucketName string
	Prefix     string
	Region     string // uses the SDK default when empty
}

// NewS3StorageGateway creates a gateway using the default AWS credential chain
func NewS3StorageGateway(ctx context.Context, cfg S3Config) (*S3StorageGateway, error) {
	if cfg.BucketName == "" {
		return nil, fmt.Errorf("s3 bucket name is required")
	}

	var opts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	return NewS3StorageGatewayWithClient(s3.NewFromConfig(awsCfg), cfg.BucketName, cfg.Prefix), nil
}

// NewS3StorageGatewayWithClient creates a gateway with a custom S3 client
func NewS3StorageGatewayWithClient(client S3API, bucketName, prefix string) *S3StorageGateway {
	return &S3StorageGateway{
		client:     client,
		bucketName: bucketName,
		prefix:     strings.Trim(prefix, "/"),
	}
}

// SaveArtifact uploads content and a metadata.json next to it
func (g *S3StorageGateway) SaveArtifact(ctx context.Context, req output.SaveArtifactRequest) (*output.ArtifactMetadata, error) {
	if req.SessionID == "" {
		return nil, fmt.Errorf("save artifact: session ID is required")
	}

	artifactID := generateArtifactID(req.Content)
	contentKey := g.buildKey("artifacts", req.SessionID, artifactID, contentFile)
	now := time.Now().UTC()

	s3Metadata := map[string]string{
		"artifact-id":   artifactID,
		"session-id":    req.SessionID,
		"artifact-type": string(req.ArtifactType),
		"uploaded-at":   now.Format(time.RFC3339),
	}
	for k, v := range req.Metadata {
		s3Metadata[k] = v
	}

	contentType := req.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	_, err := g.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(g.bucketName),
		Key:         aws.String(contentKey),
		Body:        bytes.NewReader(req.Content),
		ContentType: aws.String(contentType),
		Metadata:    s3Metadata,
	})
	if err != nil {
		return nil, fmt.Errorf("upload to S3: %w", err)
	}

	metadata := output.ArtifactMetadata{
		ID:          artifactID,
		SessionID:   req.SessionID,
		Type:        req.ArtifactType,
		StoragePath: fmt.Sprintf("s3://%s/%s", g.bucketName, contentKey),
		ContentType: req.ContentType,
		Size:        int64(len(req.Content)),
		UploadedAt:  now,
		Metadata:    req.Metadata,
	}

	metadataJSON, err := json.Marshal(metadata)
	if err != nil {
		return nil, fmt.Errorf("marshal metadata: %w", err)
	}
	_, err = g.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(g.bucketName),
		Key:         aws.String(g.buildKey("artifacts", req.SessionID, artifactID, metadataFile)),
		Body:        bytes.NewReader(metadataJSON),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return nil, fmt.Errorf("upload metadata to S3: %w", err)
	}

	return &metadata, nil
}

// LoadArtifact finds an artifact by ID in any session
func (g *S3StorageGateway) LoadArtifact(ctx context.Context, artifactID string) (*output.Artifact, error) {
	keys, err := g.listKeys(ctx, g.buildKey("artifacts")+"/")
	if err != nil {
		return nil, err
	}

	suffix := "/" + artifactID + "/" + metadataFile
	var metadataKey string
	for _, key := range keys {
		if strings.HasSuffix(key, suffix) {
			metadataKey = key
			break
		}
	}
	if metadataKey == "" {
		return nil, fmt.Errorf("artifact not found: %s", artifactID)
	}

	metadata, err := g.readMetadata(ctx, metadataKey)
	if err != nil {
		return nil, err
	}

	contentKey := strings.TrimSuffix(metadataKey, metadataFile) + contentFile
	content, err := g.getObject(ctx, contentKey)
	if err != nil {
		return nil, fmt.Errorf("download content from S3: %w", err)
	}

	return &output.Artifact{
		ID:       artifactID,
		Content:  content,
		Metadata: *metadata,
	}, nil
}

// ListArtifacts lists the artifacts of a session, oldest first.
// Objects that cannot be read are skipped.
func (g *S3StorageGateway) ListArtifacts(ctx context.Context, sessionID string) ([]*output.ArtifactMetadata, error) {
	keys, err := g.listKeys(ctx, g.buildKey("artifacts", sessionID)+"/")
	if err != nil {
		return nil, err
	}

	list := []*output.ArtifactMetadata{}
	for _, key := range keys {
		if !strings.HasSuffix(key, "/"+metadataFile) {
			continue
		}
		metadata, err := g.readMetadata(ctx, key)
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

// listKeys pages through every key under prefix
func (g *S3StorageGateway) listKeys(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	var token *string
	for {
		out, err := g.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            aws.String(g.bucketName),
			Prefix:            aws.String(prefix),
			ContinuationToken: token,
		})
		if err != nil {
			return nil, fmt.Errorf("list S3 objects: %w", err)
		}
		for _, obj := range out.Contents {
			keys = append(keys, aws.ToString(obj.Key))
		}
		if !aws.ToBool(out.IsTruncated) || out.NextContinuationToken == nil {
			return keys, nil
		}
		token = out.NextContinuationToken
	}
}

func (g *S3StorageGateway) readMetadata(ctx context.Context, key string) (*output.ArtifactMetadata, error) {
	data, err := g.getObject(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("download metadata from S3: %w", err)
	}
	var metadata output.ArtifactMetadata
	if err := json.Unmarshal(data, &metadata); err != nil {
		return nil, fmt.Errorf("unmarshal metadata: %w", err)
	}
	return &metadata, nil
}

func (g *S3StorageGateway) getObject(ctx context.Context, key string) ([]byte, error) {
	obj, err := g.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(g.bucketName),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, err
	}
	defer obj.Body.Close()
	return io.ReadAll(obj.Body)
}

// buildKey joins key parts under the configured prefix
func (g *S3StorageGateway) buildKey(parts ...string) string {
	if g.prefix != "" {
		parts = append([]string{g.prefix}, parts...)
	}
	return path.Join(parts...)
}
