package storage

import (
	"context"
	"fmt"

	"github.com/spf13/afero"

	"github.com/YoshitsuguKoike/repostflow/internal/app/config"
	"github.com/YoshitsuguKoike/repostflow/internal/application/port/output"
)

// Storage types accepted by NewStorageGateway
const (
	TypeLocal = "local"
	TypeS3    = "s3"
	TypeMock  = "mock"
)

// NewStorageGateway creates the artifact archive selected by cfg.Type.
// An empty type means local.
func NewStorageGateway(ctx context.Context, cfg config.StorageConfig, fsys afero.Fs) (output.StorageGateway, error) {
	switch cfg.Type {
	case TypeLocal, "":
		return NewLocalStorageGateway(fsys, cfg.BaseDir)
	case TypeS3:
		return NewS3StorageGateway(ctx, S3Config{
			BucketName: cfg.S3Bucket,
			Prefix:     cfg.S3Prefix,
			Region:     cfg.S3Region,
		})
	case TypeMock:
		return NewMockStorageGateway(), nil
	default:
		return nil, fmt.Errorf("unsupported storage type: %s (supported: %s, %s, %s)", cfg.Type, TypeLocal, TypeS3, TypeMock)
	}
}
