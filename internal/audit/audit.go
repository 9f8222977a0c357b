// Package audit records an append-only trail of state-changing actions.
package audit

import (
	"context"
	"encoding/json"
	"time"

	"github.com/linnemanlabs/go-core/log"
	"github.com/oklog/ulid/v2"
)

// Actions recorded by the platform.
const (
	ActionVerifyVendor      = "VERIFY_VENDOR"
	ActionBulkUploadCreated = "BULK_UPLOAD_CREATED"
	ActionDriveConnected    = "DRIVE_CONNECTED"
	ActionReportExported    = "REPORT_EXPORTED_TO_DRIVE"
)

// Target types referenced by audit entries.
const (
	TargetVendor      = "VENDOR"
	TargetReport      = "REPORT"
	TargetJob         = "JOB"
	TargetIntegration = "INTEGRATION"
)

// Entry is one immutable audit log record.
type Entry struct {
	ID         string          `json:"id"`
	OrgID      string          `json:"org_id"`
	ActorID    string          `json:"actor_id"`
	Action     string          `json:"action"`
	TargetType string          `json:"target_type"`
	TargetID   string          `json:"target_id,omitempty"`
	Details    json.RawMessage `json:"details,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}

// Store is the persistence interface for the audit trail. Entries are only
// ever appended, never updated or deleted.
type Store interface {
	Append(ctx context.Context, e *Entry) error
}

// Recorder writes audit entries best-effort: a failed write is logged and
// swallowed so it never aborts the primary operation.
type Recorder struct {
	store  Store
	logger log.Logger
}

// NewRecorder creates a Recorder.
func NewRecorder(store Store, logger log.Logger) *Recorder {
	if logger == nil {
		logger = log.Nop()
	}
	return &Recorder{store: store, logger: logger}
}

// Record appends an audit entry. details may be any JSON-marshalable value.
func (r *Recorder) Record(ctx context.Context, orgID, actorID, action, targetType, targetID string, details any) {
	var payload json.RawMessage
	if details != nil {
		b, err := json.Marshal(details)
		if err != nil {
			r.logger.Error(ctx, err, "audit details not marshalable", "action", action)
		} else {
			payload = b
		}
	}

	e := &Entry{
		ID:         ulid.Make().String(),
		OrgID:      orgID,
		ActorID:    actorID,
		Action:     action,
		TargetType: targetType,
		TargetID:   targetID,
		Details:    payload,
		CreatedAt:  time.Now(),
	}

	if err := r.store.Append(ctx, e); err != nil {
		r.logger.Error(ctx, err, "audit append failed",
			"action", action,
			"target_type", targetType,
			"target_id", targetID,
		)
	}
}
