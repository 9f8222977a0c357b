package audit

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/linnemanlabs/go-core/log"
)

type mockStore struct {
	mu      sync.Mutex
	entries []*Entry
	err     error
}

func (m *mockStore) Append(_ context.Context, e *Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	cp := *e
	m.entries = append(m.entries, &cp)
	return nil
}

func TestRecord(t *testing.T) {
	t.Parallel()

	store := &mockStore{}
	r := NewRecorder(store, log.Nop())

	r.Record(context.Background(), "org-1", "user-1", ActionVerifyVendor, TargetVendor, "vendor-1", map[string]string{
		"verification_id": "vf-1",
	})

	if len(store.entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(store.entries))
	}
	e := store.entries[0]
	if e.ID == "" {
		t.Error("entry should get an ID")
	}
	if e.OrgID != "org-1" || e.ActorID != "user-1" || e.Action != ActionVerifyVendor {
		t.Errorf("entry = %+v", e)
	}
	if e.TargetType != TargetVendor || e.TargetID != "vendor-1" {
		t.Errorf("target = %s/%s", e.TargetType, e.TargetID)
	}
	if len(e.Details) == 0 {
		t.Error("details should be marshaled")
	}
	if e.CreatedAt.IsZero() {
		t.Error("created_at should be set")
	}
}

func TestRecord_NilDetails(t *testing.T) {
	t.Parallel()

	store := &mockStore{}
	r := NewRecorder(store, log.Nop())

	r.Record(context.Background(), "org-1", "user-1", ActionDriveConnected, TargetIntegration, "org-1", nil)

	if len(store.entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(store.entries))
	}
	if store.entries[0].Details != nil {
		t.Errorf("details = %s, want empty", store.entries[0].Details)
	}
}

func TestRecord_SwallowsStoreFailure(t *testing.T) {
	t.Parallel()

	store := &mockStore{err: errors.New("db down")}
	r := NewRecorder(store, log.Nop())

	// must not panic or surface the error
	r.Record(context.Background(), "org-1", "user-1", ActionBulkUploadCreated, TargetJob, "job-1", nil)
}

func TestRecord_UnmarshalableDetails(t *testing.T) {
	t.Parallel()

	store := &mockStore{}
	r := NewRecorder(store, log.Nop())

	r.Record(context.Background(), "org-1", "user-1", ActionReportExported, TargetReport, "rep-1", make(chan int))

	if len(store.entries) != 1 {
		t.Fatalf("entries = %d, want 1 (entry still recorded)", len(store.entries))
	}
	if store.entries[0].Details != nil {
		t.Error("unmarshalable details should be dropped, not stored")
	}
}
