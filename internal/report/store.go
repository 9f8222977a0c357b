package report

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Manager operations addressing a report that
// does not exist within the org.
var ErrNotFound = errors.New("report not found")

// Store is the persistence interface for reports and branding settings.
type Store interface {
	Insert(ctx context.Context, r *Report) error
	Get(ctx context.Context, orgID, id string) (*Report, bool, error)
	List(ctx context.Context, orgID string) ([]*Report, error)
	SetPDFLocator(ctx context.Context, orgID, id, locator string) error
	SetDriveFile(ctx context.Context, orgID, id, fileID string) error
	Count(ctx context.Context, orgID string) (int, error)
	CountByRisk(ctx context.Context, orgID string, level RiskLevel) (int, error)
	Branding(ctx context.Context, orgID string) (*Branding, bool, error)
	SaveBranding(ctx context.Context, b *Branding) error
}

// SubjectLoader resolves the vendor/verification context for rendering.
type SubjectLoader interface {
	Subject(ctx context.Context, orgID, vendorID, verificationID string) (*Subject, bool, error)
}
