package storage

import (
	"context"
	"fmt"
	"path"

	"github.com/bravo68web/shipyard/internal/config"
	"github.com/bravo68web/shipyard/internal/domain/service"
)

// StorageType represents the type of storage backend
type StorageType string

const (
	// StorageTypeFilesystem represents local filesystem storage
	StorageTypeFilesystem StorageType = "filesystem"

	// StorageTypeS3 represents AWS S3 storage
	StorageTypeS3 StorageType = "s3"
)

// NewLogStore creates the deployment log archive backend selected by the configuration
func NewLogStore(ctx context.Context, cfg *config.StorageConfig) (service.LogStore, error) {
	switch StorageType(cfg.Type) {
	case StorageTypeFilesystem, "":
		return NewFilesystemStorage(cfg.BasePath)

	case StorageTypeS3:
		return NewS3Storage(ctx, S3Config{
			Bucket:       cfg.S3Bucket,
			Region:       cfg.S3Region,
			AccessKey:    cfg.S3AccessKey,
			SecretKey:    cfg.S3SecretKey,
			Endpoint:     cfg.S3Endpoint,
			UsePathStyle: cfg.S3Endpoint != "",
			Prefix:       cfg.S3Prefix,
		})

	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.Type)
	}
}

// DeploymentLogKey returns the archive key of a deployment's log
func DeploymentLogKey(projectID, deploymentID string) string {
	return path.Join(ProjectLogPrefix(projectID), deploymentID+".log")
}

// ProjectLogPrefix returns the key prefix holding all logs of a project
func ProjectLogPrefix(projectID string) string {
	return path.Join("deployments", projectID) + "/"
}
