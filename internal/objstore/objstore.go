// Package objstore abstracts blob storage for report PDFs, branding assets,
// and bulk-upload source files.
package objstore

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned by Get when no object exists at the key.
	ErrNotFound = errors.New("object not found")

	// ErrTooLarge is returned by Put when the payload exceeds the bucket cap.
	ErrTooLarge = errors.New("object exceeds bucket size limit")
)

// Store is the persistence interface for blobs. Put overwrites any existing
// object at the key and returns a locator usable for later retrieval.
type Store interface {
	Put(ctx context.Context, bucket, key string, data []byte, contentType string) (string, error)
	Get(ctx context.Context, bucket, key string) ([]byte, error)
}

// Buckets names the well-known buckets and their per-object size caps.
type Buckets struct {
	Reports     string
	Branding    string
	BulkUploads string
}

// Size caps per bucket, matching what the API accepts.
const (
	MaxReportSize     = 10 << 20
	MaxBrandingSize   = 2 << 20
	MaxBulkUploadSize = 5 << 20
)

// Limits maps the configured bucket names to their size caps.
func (b Buckets) Limits() map[string]int64 {
	return map[string]int64{
		b.Reports:     MaxReportSize,
		b.Branding:    MaxBrandingSize,
		b.BulkUploads: MaxBulkUploadSize,
	}
}

func checkLimit(limits map[string]int64, bucket string, size int) error {
	if limits == nil {
		return nil
	}
	if max, ok := limits[bucket]; ok && int64(size) > max {
		return ErrTooLarge
	}
	return nil
}
