package memstore

import (
	"context"
	"sort"

	"github.com/linnemanlabs/vet/internal/audit"
	"github.com/linnemanlabs/vet/internal/bulk"
	"github.com/linnemanlabs/vet/internal/drive"
	"github.com/linnemanlabs/vet/internal/report"
)

// Insert stores a copy of the report.
func (s *Store) Insert(_ context.Context, r *report.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *r
	s.reports[r.ID] = &cp
	return nil
}

// Get retrieves one report scoped to the org. Returns a copy.
func (s *Store) Get(_ context.Context, orgID, id string) (*report.Report, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.reports[id]
	if !ok || r.OrgID != orgID {
		return nil, false, nil
	}
	cp := *r
	return &cp, true, nil
}

// List returns the org's reports, newest first.
func (s *Store) List(_ context.Context, orgID string) ([]*report.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*report.Report
	for _, r := range s.reports {
		if r.OrgID == orgID {
			cp := *r
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// SetPDFLocator records where the rendered PDF lives.
func (s *Store) SetPDFLocator(_ context.Context, orgID, id, locator string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r, ok := s.reports[id]; ok && r.OrgID == orgID {
		r.PDFLocator = locator
	}
	return nil
}

// SetDriveFile records the drive file a report was exported to.
func (s *Store) SetDriveFile(_ context.Context, orgID, id, fileID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r, ok := s.reports[id]; ok && r.OrgID == orgID {
		r.DriveFileID = fileID
	}
	return nil
}

// Count returns the org's report count.
func (s *Store) Count(_ context.Context, orgID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, r := range s.reports {
		if r.OrgID == orgID {
			n++
		}
	}
	return n, nil
}

// CountByRisk returns the org's report count at one risk level.
func (s *Store) CountByRisk(_ context.Context, orgID string, level report.RiskLevel) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, r := range s.reports {
		if r.OrgID == orgID && r.RiskLevel == level {
			n++
		}
	}
	return n, nil
}

// Branding retrieves the org's white-label settings. Returns a copy.
func (s *Store) Branding(_ context.Context, orgID string) (*report.Branding, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.branding[orgID]
	if !ok {
		return nil, false, nil
	}
	cp := *b
	return &cp, true, nil
}

// SaveBranding upserts the org's white-label settings.
func (s *Store) SaveBranding(_ context.Context, b *report.Branding) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *b
	s.branding[b.OrgID] = &cp
	return nil
}

// InsertJob registers one bulk upload job.
func (s *Store) InsertJob(_ context.Context, j *bulk.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *j
	s.jobs[j.ID] = &cp
	return nil
}

// Job retrieves one bulk job scoped to the org. Returns a copy.
func (s *Store) Job(_ context.Context, orgID, id string) (*bulk.Job, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	j, ok := s.jobs[id]
	if !ok || j.OrgID != orgID {
		return nil, false, nil
	}
	cp := *j
	return &cp, true, nil
}

// ListJobs returns the org's bulk jobs, newest first.
func (s *Store) ListJobs(_ context.Context, orgID string) ([]*bulk.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*bulk.Job
	for _, j := range s.jobs {
		if j.OrgID == orgID {
			cp := *j
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// Integration retrieves the org's drive connection. Returns a copy.
func (s *Store) Integration(_ context.Context, orgID string) (*drive.Integration, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	in, ok := s.integrations[orgID]
	if !ok {
		return nil, false, nil
	}
	cp := *in
	return &cp, true, nil
}

// SaveIntegration upserts the org's drive connection.
func (s *Store) SaveIntegration(_ context.Context, in *drive.Integration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *in
	s.integrations[in.OrgID] = &cp
	return nil
}

// Append stores a copy of the audit entry.
func (s *Store) Append(_ context.Context, e *audit.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *e
	s.auditLog = append(s.auditLog, &cp)
	return nil
}

// AuditEntries returns the org's audit entries in append order. Test helper.
func (s *Store) AuditEntries(orgID string) []*audit.Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*audit.Entry
	for _, e := range s.auditLog {
		if e.OrgID == orgID {
			cp := *e
			out = append(out, &cp)
		}
	}
	return out
}
