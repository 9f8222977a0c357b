package report

import (
	"context"
	"fmt"
	"time"

	"github.com/linnemanlabs/go-core/log"
	"github.com/linnemanlabs/vet/internal/audit"
	"github.com/linnemanlabs/vet/internal/drive"
	"github.com/linnemanlabs/vet/internal/objstore"
)

const pdfContentType = "application/pdf"

// Manager orchestrates the report lifecycle after creation: rendering,
// export to object storage, and export to a connected drive.
type Manager struct {
	store    Store
	subjects SubjectLoader
	renderer Renderer
	objects  objstore.Store
	bucket   string
	drive    drive.IntegrationStore
	uploader drive.Uploader
	auditor  *audit.Recorder
	logger   log.Logger
	metrics  *Metrics
}

// NewManager creates a report manager. bucket is the object storage bucket
// rendered PDFs land in.
func NewManager(store Store, subjects SubjectLoader, objects objstore.Store, bucket string, integrations drive.IntegrationStore, uploader drive.Uploader, auditor *audit.Recorder, logger log.Logger, metrics *Metrics) *Manager {
	if logger == nil {
		logger = log.Nop()
	}
	return &Manager{
		store:    store,
		subjects: subjects,
		renderer: Renderer{},
		objects:  objects,
		bucket:   bucket,
		drive:    integrations,
		uploader: uploader,
		auditor:  auditor,
		logger:   logger,
		metrics:  metrics,
	}
}

// Get returns a single report scoped to the org.
func (m *Manager) Get(ctx context.Context, orgID, id string) (*Report, error) {
	r, ok, err := m.store.Get(ctx, orgID, id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotFound
	}
	return r, nil
}

// List returns the org's reports, newest first.
func (m *Manager) List(ctx context.Context, orgID string) ([]*Report, error) {
	return m.store.List(ctx, orgID)
}

// PDF renders the report document. Rendering is deterministic, so callers may
// invoke this repeatedly without caching.
func (m *Manager) PDF(ctx context.Context, orgID, id string) ([]byte, error) {
	r, err := m.Get(ctx, orgID, id)
	if err != nil {
		return nil, err
	}
	return m.render(ctx, r)
}

// ExportToStorage renders the report and writes it to object storage under a
// stable per-report key. Re-exports overwrite the prior object in place.
func (m *Manager) ExportToStorage(ctx context.Context, orgID, id string) (string, error) {
	r, err := m.Get(ctx, orgID, id)
	if err != nil {
		return "", err
	}

	data, err := m.render(ctx, r)
	if err != nil {
		return "", err
	}

	key := fmt.Sprintf("%s/%s.pdf", orgID, r.ID)
	locator, err := m.objects.Put(ctx, m.bucket, key, data, pdfContentType)
	if err != nil {
		return "", fmt.Errorf("store report pdf: %w", err)
	}

	if err := m.store.SetPDFLocator(ctx, orgID, r.ID, locator); err != nil {
		return "", err
	}
	if m.metrics != nil {
		m.metrics.StorageExports.Inc()
	}
	return locator, nil
}

// ExportToDrive renders the report and uploads it to the org's connected
// drive. Returns drive.ErrNotConnected when no active integration exists.
func (m *Manager) ExportToDrive(ctx context.Context, orgID, actorID, id string) (*drive.UploadResult, error) {
	integ, ok, err := m.drive.Integration(ctx, orgID)
	if err != nil {
		return nil, err
	}
	if !ok || !integ.Connected {
		return nil, drive.ErrNotConnected
	}

	r, err := m.Get(ctx, orgID, id)
	if err != nil {
		return nil, err
	}

	data, err := m.render(ctx, r)
	if err != nil {
		return nil, err
	}

	name := fmt.Sprintf("verification-report-%s-%s.pdf", r.ID, r.CreatedAt.UTC().Format("2006-01-02"))
	cred := drive.Credential{AccessToken: integ.AccessToken, RefreshToken: integ.RefreshToken}
	res, err := m.uploader.Upload(ctx, cred, name, data, pdfContentType)
	if err != nil {
		return nil, fmt.Errorf("drive export: %w", err)
	}

	if err := m.store.SetDriveFile(ctx, orgID, r.ID, res.FileID); err != nil {
		m.logger.Error(ctx, err, "failed to record drive file id", "report_id", r.ID)
	}
	if m.metrics != nil {
		m.metrics.DriveExports.Inc()
	}

	m.auditor.Record(ctx, orgID, actorID, audit.ActionReportExported, audit.TargetReport, r.ID, map[string]string{
		"file_id": res.FileID,
		"link":    res.Link,
	})
	return res, nil
}

// Stats summarizes an org's report counts for the dashboard.
type Stats struct {
	Total    int `json:"total"`
	LowRisk  int `json:"low_risk"`
	MedRisk  int `json:"medium_risk"`
	HighRisk int `json:"high_risk"`
}

// Stats returns per-risk report counts for the org.
func (m *Manager) Stats(ctx context.Context, orgID string) (*Stats, error) {
	total, err := m.store.Count(ctx, orgID)
	if err != nil {
		return nil, err
	}
	low, err := m.store.CountByRisk(ctx, orgID, RiskLow)
	if err != nil {
		return nil, err
	}
	med, err := m.store.CountByRisk(ctx, orgID, RiskMedium)
	if err != nil {
		return nil, err
	}
	high, err := m.store.CountByRisk(ctx, orgID, RiskHigh)
	if err != nil {
		return nil, err
	}
	return &Stats{Total: total, LowRisk: low, MedRisk: med, HighRisk: high}, nil
}

func (m *Manager) render(ctx context.Context, r *Report) ([]byte, error) {
	subject, ok, err := m.subjects.Subject(ctx, r.OrgID, r.VendorID, r.VerificationID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("report %s: verification context missing", r.ID)
	}

	branding, ok, err := m.store.Branding(ctx, r.OrgID)
	if err != nil {
		m.logger.Warn(ctx, "branding lookup failed, using defaults", "org_id", r.OrgID, "error", err)
	} else if !ok {
		branding = nil
	}

	start := time.Now()
	data, err := m.renderer.Render(&RenderInput{Report: r, Subject: subject, Branding: branding})
	if err != nil {
		return nil, err
	}
	if m.metrics != nil {
		m.metrics.RenderDuration.Observe(time.Since(start).Seconds())
	}
	return data, nil
}
