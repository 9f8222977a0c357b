// Package bulk accepts bulk verification upload files and tracks them as
// jobs. Jobs are registered for later processing; this package never runs
// per-row verifications itself.
package bulk

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/linnemanlabs/go-core/log"
	"github.com/linnemanlabs/vet/internal/audit"
	"github.com/linnemanlabs/vet/internal/objstore"
	"github.com/oklog/ulid/v2"
)

// ErrInvalidFileType rejects uploads that are not parseable CSV files.
var ErrInvalidFileType = errors.New("invalid file type, expected CSV")

// Job statuses. New jobs always start pending.
const (
	StatusPending   = "PENDING"
	StatusRunning   = "RUNNING"
	StatusCompleted = "COMPLETED"
	StatusFailed    = "FAILED"
)

// Job is one accepted bulk upload. Counters stay at zero until a processor
// picks the job up.
type Job struct {
	ID            string    `json:"id"`
	OrgID         string    `json:"org_id"`
	FileName      string    `json:"file_name"`
	FileLocator   string    `json:"file_locator"`
	TotalRows     int       `json:"total_rows"`
	ProcessedRows int       `json:"processed_rows"`
	SuccessCount  int       `json:"success_count"`
	FailureCount  int       `json:"failure_count"`
	Status        string    `json:"status"`
	CreatedBy     string    `json:"created_by"`
	CreatedAt     time.Time `json:"created_at"`
}

// Store is the persistence interface for bulk jobs.
type Store interface {
	InsertJob(ctx context.Context, j *Job) error
	Job(ctx context.Context, orgID, id string) (*Job, bool, error)
	ListJobs(ctx context.Context, orgID string) ([]*Job, error)
}

// Coordinator validates and registers bulk uploads.
type Coordinator struct {
	store   Store
	objects objstore.Store
	bucket  string
	auditor *audit.Recorder
	logger  log.Logger
}

// NewCoordinator creates a bulk coordinator. bucket is the object storage
// bucket uploaded files land in.
func NewCoordinator(store Store, objects objstore.Store, bucket string, auditor *audit.Recorder, logger log.Logger) *Coordinator {
	if logger == nil {
		logger = log.Nop()
	}
	return &Coordinator{
		store:   store,
		objects: objects,
		bucket:  bucket,
		auditor: auditor,
		logger:  logger,
	}
}

// CreateJob validates the upload, stores the file, and registers a pending
// job. Only CSV files are accepted; anything else fails with
// ErrInvalidFileType before any storage write.
func (c *Coordinator) CreateJob(ctx context.Context, orgID, actorID, fileName string, content []byte) (*Job, error) {
	totalRows, err := countDataRows(fileName, content)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("%s/%s.csv", orgID, uuid.New().String())
	locator, err := c.objects.Put(ctx, c.bucket, key, content, "text/csv")
	if err != nil {
		return nil, fmt.Errorf("store bulk upload: %w", err)
	}

	job := &Job{
		ID:          ulid.Make().String(),
		OrgID:       orgID,
		FileName:    fileName,
		FileLocator: locator,
		TotalRows:   totalRows,
		Status:      StatusPending,
		CreatedBy:   actorID,
		CreatedAt:   time.Now(),
	}
	if err := c.store.InsertJob(ctx, job); err != nil {
		return nil, err
	}

	c.auditor.Record(ctx, orgID, actorID, audit.ActionBulkUploadCreated, audit.TargetJob, job.ID, map[string]any{
		"file_name":  fileName,
		"total_rows": totalRows,
	})
	c.logger.Info(ctx, "bulk upload registered",
		"job_id", job.ID,
		"org_id", orgID,
		"total_rows", totalRows,
	)
	return job, nil
}

// Job returns one of the org's jobs.
func (c *Coordinator) Job(ctx context.Context, orgID, id string) (*Job, bool, error) {
	return c.store.Job(ctx, orgID, id)
}

// ListJobs returns the org's jobs.
func (c *Coordinator) ListJobs(ctx context.Context, orgID string) ([]*Job, error) {
	return c.store.ListJobs(ctx, orgID)
}

// countDataRows parses the upload as CSV and returns the number of data
// rows. The first row is assumed to be a header and is not counted.
func countDataRows(fileName string, content []byte) (int, error) {
	if !strings.EqualFold(filepath.Ext(fileName), ".csv") {
		return 0, ErrInvalidFileType
	}

	r := csv.NewReader(bytes.NewReader(content))
	r.FieldsPerRecord = -1 // ragged rows are the processor's problem
	records, err := r.ReadAll()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidFileType, err)
	}
	if len(records) == 0 {
		return 0, fmt.Errorf("%w: file is empty", ErrInvalidFileType)
	}
	return len(records) - 1, nil
}
