package port

import "context"

// ObjectStorage abstracts read access to cloud object storage.
type ObjectStorage interface {
	// Size returns the object's length in bytes.
	Size(ctx context.Context, bucket, key string) (int64, error)
	Download(ctx context.Context, bucket, key string) ([]byte, error)
}
