package objstore

import (
	"context"
	"errors"
	"fmt"
	"io"

	"cloud.google.com/go/storage"
)

// GCS stores objects in Google Cloud Storage buckets.
type GCS struct {
	client *storage.Client
	limits map[string]int64
}

// NewGCS wraps an existing GCS client. The client's lifetime is owned by the
// caller (constructed at startup, closed at shutdown).
func NewGCS(client *storage.Client, buckets Buckets) *GCS {
	return &GCS{client: client, limits: buckets.Limits()}
}

// Put uploads data to bucket/key, overwriting any existing object.
func (g *GCS) Put(ctx context.Context, bucket, key string, data []byte, contentType string) (string, error) {
	if err := checkLimit(g.limits, bucket, len(data)); err != nil {
		return "", err
	}

	w := g.client.Bucket(bucket).Object(key).NewWriter(ctx)
	w.ContentType = contentType
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("gcs write %s/%s: %w", bucket, key, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("gcs close %s/%s: %w", bucket, key, err)
	}
	return fmt.Sprintf("gs://%s/%s", bucket, key), nil
}

// Get downloads the object at bucket/key.
func (g *GCS) Get(ctx context.Context, bucket, key string) ([]byte, error) {
	r, err := g.client.Bucket(bucket).Object(key).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("gcs open %s/%s: %w", bucket, key, err)
	}
	defer func() { _ = r.Close() }()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("gcs read %s/%s: %w", bucket, key, err)
	}
	return data, nil
}
