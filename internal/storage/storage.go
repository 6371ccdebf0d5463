package storage

import (
	"context"
	"time"
)

type ObjectInfo struct {
	Key          string
	Size         int64
	LastModified *time.Time
}

// UploadOptions conveys snapshot destination metadata.
type UploadOptions struct {
	Bucket    string
	KeyPrefix string
}

// Service uploads graph snapshots to remote object storage.
type Service interface {
	UploadSnapshot(ctx context.Context, data []byte, opts UploadOptions) (string, error)
	ListObjects(ctx context.Context, bucket, prefix string) ([]ObjectInfo, error)
}
