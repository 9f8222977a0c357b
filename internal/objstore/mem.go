package objstore

import (
	"context"
	"fmt"
	"sync"
)

// Mem holds objects in memory. Suitable for dev/testing.
type Mem struct {
	mu      sync.RWMutex
	objects map[string][]byte // bucket/key -> data
	types   map[string]string // bucket/key -> content type
	limits  map[string]int64
}

// NewMem initializes an in-memory Store.
func NewMem(buckets Buckets) *Mem {
	return &Mem{
		objects: make(map[string][]byte),
		types:   make(map[string]string),
		limits:  buckets.Limits(),
	}
}

// Put stores a copy of data, overwriting any existing object at the key.
func (m *Mem) Put(_ context.Context, bucket, key string, data []byte, contentType string) (string, error) {
	if err := checkLimit(m.limits, bucket, len(data)); err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make([]byte, len(data))
	copy(cp, data)
	k := bucket + "/" + key
	m.objects[k] = cp
	m.types[k] = contentType
	return fmt.Sprintf("mem://%s/%s", bucket, key), nil
}

// Get retrieves a copy of the object at bucket/key.
func (m *Mem) Get(_ context.Context, bucket, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.objects[bucket+"/"+key]
	if !ok {
		return nil, ErrNotFound
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	return cp, nil
}

// ContentType returns the stored content type for an object, for tests.
func (m *Mem) ContentType(bucket, key string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ct, ok := m.types[bucket+"/"+key]
	return ct, ok
}
