package bulk

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/linnemanlabs/go-core/log"

	"github.com/linnemanlabs/vet/internal/audit"
	"github.com/linnemanlabs/vet/internal/objstore"
)

type mockStore struct {
	mu   sync.Mutex
	jobs map[string]*Job
}

func newMockStore() *mockStore {
	return &mockStore{jobs: make(map[string]*Job)}
}

func (m *mockStore) InsertJob(_ context.Context, j *Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *j
	m.jobs[j.ID] = &cp
	return nil
}

func (m *mockStore) Job(_ context.Context, orgID, id string) (*Job, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.jobs[id]
	if !ok || j.OrgID != orgID {
		return nil, false, nil
	}
	cp := *j
	return &cp, true, nil
}

func (m *mockStore) ListJobs(_ context.Context, orgID string) ([]*Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*Job
	for _, j := range m.jobs {
		if j.OrgID == orgID {
			cp := *j
			out = append(out, &cp)
		}
	}
	return out, nil
}

type recordingAuditStore struct {
	mu      sync.Mutex
	entries []*audit.Entry
}

func (r *recordingAuditStore) Append(_ context.Context, e *audit.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *e
	r.entries = append(r.entries, &cp)
	return nil
}

func newCoordinator() (*Coordinator, *mockStore, *objstore.Mem, *recordingAuditStore) {
	store := newMockStore()
	objects := objstore.NewMem(objstore.Buckets{Reports: "reports", Branding: "branding", BulkUploads: "bulk-uploads"})
	auditStore := &recordingAuditStore{}
	c := NewCoordinator(store, objects, "bulk-uploads", audit.NewRecorder(auditStore, log.Nop()), log.Nop())
	return c, store, objects, auditStore
}

const sampleCSV = "vendor_name,type,number\nAcme Traders,GST,27AAPFU0939F1ZV\nBolt Industries,PAN,AAPFU0939F\n"

func TestCreateJob(t *testing.T) {
	t.Parallel()

	c, store, _, auditStore := newCoordinator()

	job, err := c.CreateJob(context.Background(), "org-1", "user-1", "vendors.csv", []byte(sampleCSV))
	if err != nil {
		t.Fatalf("CreateJob: %v", err)
	}

	if job.TotalRows != 2 {
		t.Errorf("total rows = %d, want 2 (header excluded)", job.TotalRows)
	}
	if job.Status != StatusPending {
		t.Errorf("status = %q, want PENDING", job.Status)
	}
	if job.ProcessedRows != 0 || job.SuccessCount != 0 || job.FailureCount != 0 {
		t.Errorf("counters should start at zero: %+v", job)
	}
	if !strings.HasPrefix(job.FileLocator, "mem://bulk-uploads/org-1/") {
		t.Errorf("file locator = %q", job.FileLocator)
	}
	if _, ok := store.jobs[job.ID]; !ok {
		t.Error("job not persisted")
	}
	if len(auditStore.entries) != 1 || auditStore.entries[0].Action != audit.ActionBulkUploadCreated {
		t.Errorf("audit entries = %+v", auditStore.entries)
	}
}

func TestCreateJob_RejectsNonCSV(t *testing.T) {
	t.Parallel()

	c, store, _, _ := newCoordinator()

	for _, name := range []string{"vendors.xlsx", "vendors.pdf", "vendors", "vendors.csv.exe"} {
		_, err := c.CreateJob(context.Background(), "org-1", "user-1", name, []byte(sampleCSV))
		if !errors.Is(err, ErrInvalidFileType) {
			t.Errorf("%q: err = %v, want ErrInvalidFileType", name, err)
		}
	}
	if len(store.jobs) != 0 {
		t.Error("no job should be registered for rejected uploads")
	}
}

func TestCreateJob_CaseInsensitiveExtension(t *testing.T) {
	t.Parallel()

	c, _, _, _ := newCoordinator()
	job, err := c.CreateJob(context.Background(), "org-1", "user-1", "VENDORS.CSV", []byte(sampleCSV))
	if err != nil {
		t.Fatalf("CreateJob: %v", err)
	}
	if job.TotalRows != 2 {
		t.Errorf("total rows = %d, want 2", job.TotalRows)
	}
}

func TestCreateJob_RejectsMalformedCSV(t *testing.T) {
	t.Parallel()

	c, _, _, _ := newCoordinator()
	// unterminated quote makes this unparseable
	_, err := c.CreateJob(context.Background(), "org-1", "user-1", "bad.csv", []byte("a,b\n\"unterminated,1\n\"x"))
	if !errors.Is(err, ErrInvalidFileType) {
		t.Fatalf("err = %v, want ErrInvalidFileType", err)
	}
}

func TestCreateJob_RejectsEmptyFile(t *testing.T) {
	t.Parallel()

	c, _, _, _ := newCoordinator()
	_, err := c.CreateJob(context.Background(), "org-1", "user-1", "empty.csv", nil)
	if !errors.Is(err, ErrInvalidFileType) {
		t.Fatalf("err = %v, want ErrInvalidFileType", err)
	}
}

func TestCreateJob_HeaderOnlyCountsZeroRows(t *testing.T) {
	t.Parallel()

	c, _, _, _ := newCoordinator()
	job, err := c.CreateJob(context.Background(), "org-1", "user-1", "header.csv", []byte("vendor_name,type,number\n"))
	if err != nil {
		t.Fatalf("CreateJob: %v", err)
	}
	if job.TotalRows != 0 {
		t.Errorf("total rows = %d, want 0", job.TotalRows)
	}
}

func TestCreateJob_RaggedRowsAccepted(t *testing.T) {
	t.Parallel()

	c, _, _, _ := newCoordinator()
	job, err := c.CreateJob(context.Background(), "org-1", "user-1", "ragged.csv", []byte("a,b,c\n1,2\n1,2,3,4\n"))
	if err != nil {
		t.Fatalf("CreateJob: %v", err)
	}
	if job.TotalRows != 2 {
		t.Errorf("total rows = %d, want 2", job.TotalRows)
	}
}

func TestJobLookupIsOrgScoped(t *testing.T) {
	t.Parallel()

	c, _, _, _ := newCoordinator()
	job, err := c.CreateJob(context.Background(), "org-1", "user-1", "vendors.csv", []byte(sampleCSV))
	if err != nil {
		t.Fatalf("CreateJob: %v", err)
	}

	if _, ok, _ := c.Job(context.Background(), "org-2", job.ID); ok {
		t.Error("job should not be visible to another org")
	}
	if _, ok, _ := c.Job(context.Background(), "org-1", job.ID); !ok {
		t.Error("job should be visible to its own org")
	}
}
