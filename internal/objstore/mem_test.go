package objstore

import (
	"bytes"
	"context"
	"errors"
	"testing"
)

func testBuckets() Buckets {
	return Buckets{Reports: "reports", Branding: "branding", BulkUploads: "bulk-uploads"}
}

func TestMem_PutGet(t *testing.T) {
	t.Parallel()

	m := NewMem(testBuckets())
	ctx := context.Background()

	locator, err := m.Put(ctx, "reports", "org-1/rep-1.pdf", []byte("%PDF data"), "application/pdf")
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if locator != "mem://reports/org-1/rep-1.pdf" {
		t.Errorf("locator = %q", locator)
	}

	data, err := m.Get(ctx, "reports", "org-1/rep-1.pdf")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !bytes.Equal(data, []byte("%PDF data")) {
		t.Errorf("data = %q", data)
	}
	if ct, ok := m.ContentType("reports", "org-1/rep-1.pdf"); !ok || ct != "application/pdf" {
		t.Errorf("content type = %q ok=%v", ct, ok)
	}
}

func TestMem_PutOverwrites(t *testing.T) {
	t.Parallel()

	m := NewMem(testBuckets())
	ctx := context.Background()

	if _, err := m.Put(ctx, "reports", "k", []byte("v1"), "text/plain"); err != nil {
		t.Fatalf("first Put: %v", err)
	}
	if _, err := m.Put(ctx, "reports", "k", []byte("v2"), "text/plain"); err != nil {
		t.Fatalf("second Put: %v", err)
	}

	data, err := m.Get(ctx, "reports", "k")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(data) != "v2" {
		t.Errorf("data = %q, want overwrite", data)
	}
}

func TestMem_GetMissing(t *testing.T) {
	t.Parallel()

	m := NewMem(testBuckets())
	if _, err := m.Get(context.Background(), "reports", "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestMem_SizeLimit(t *testing.T) {
	t.Parallel()

	m := NewMem(testBuckets())
	big := make([]byte, MaxBulkUploadSize+1)

	_, err := m.Put(context.Background(), "bulk-uploads", "huge.csv", big, "text/csv")
	if !errors.Is(err, ErrTooLarge) {
		t.Fatalf("err = %v, want ErrTooLarge", err)
	}

	// the same payload fits in the roomier reports bucket
	if _, err := m.Put(context.Background(), "reports", "huge.pdf", big, "application/pdf"); err != nil {
		t.Errorf("reports Put: %v", err)
	}
}

func TestMem_GetReturnsCopy(t *testing.T) {
	t.Parallel()

	m := NewMem(testBuckets())
	ctx := context.Background()

	if _, err := m.Put(ctx, "reports", "k", []byte("abc"), "text/plain"); err != nil {
		t.Fatalf("Put: %v", err)
	}
	first, _ := m.Get(ctx, "reports", "k")
	first[0] = 'x'

	second, _ := m.Get(ctx, "reports", "k")
	if string(second) != "abc" {
		t.Error("mutating a returned object must not affect stored state")
	}
}
