// Package vendapi exposes the verification platform over HTTP.
package vendapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/linnemanlabs/go-core/log"
	"github.com/linnemanlabs/go-core/xerrors"

	"github.com/linnemanlabs/vet/internal/authmw"
	"github.com/linnemanlabs/vet/internal/bulk"
	"github.com/linnemanlabs/vet/internal/drive"
	"github.com/linnemanlabs/vet/internal/ledger"
	"github.com/linnemanlabs/vet/internal/objstore"
	"github.com/linnemanlabs/vet/internal/report"
	"github.com/linnemanlabs/vet/internal/verify"
)

// VerifyService defines the verification operations vendapi needs.
type VerifyService interface {
	Verify(ctx context.Context, req *verify.Request) (*verify.Result, error)
	Vendor(ctx context.Context, orgID, id string) (*verify.Vendor, bool, error)
	ListVendors(ctx context.Context, orgID string) ([]*verify.Vendor, error)
	Verification(ctx context.Context, orgID, id string) (*verify.Verification, bool, error)
	ListVerifications(ctx context.Context, orgID string) ([]*verify.Verification, error)
	Counts(ctx context.Context, orgID string) (vendors, verifications int, err error)
}

// ReportService defines the report lifecycle operations vendapi needs.
type ReportService interface {
	Get(ctx context.Context, orgID, id string) (*report.Report, error)
	List(ctx context.Context, orgID string) ([]*report.Report, error)
	PDF(ctx context.Context, orgID, id string) ([]byte, error)
	ExportToStorage(ctx context.Context, orgID, id string) (string, error)
	ExportToDrive(ctx context.Context, orgID, actorID, id string) (*drive.UploadResult, error)
	Stats(ctx context.Context, orgID string) (*report.Stats, error)
}

// BulkService defines the bulk upload operations vendapi needs.
type BulkService interface {
	CreateJob(ctx context.Context, orgID, actorID, fileName string, content []byte) (*bulk.Job, error)
	Job(ctx context.Context, orgID, id string) (*bulk.Job, bool, error)
	ListJobs(ctx context.Context, orgID string) ([]*bulk.Job, error)
}

// CreditService defines the ledger reads vendapi needs.
type CreditService interface {
	Account(ctx context.Context, orgID string) (*ledger.Account, bool, error)
}

// BrandingStore persists per-org white-label settings.
type BrandingStore interface {
	Branding(ctx context.Context, orgID string) (*report.Branding, bool, error)
	SaveBranding(ctx context.Context, b *report.Branding) error
}

// API holds dependencies for HTTP handlers.
type API struct {
	logger       log.Logger
	verify       VerifyService
	reports      ReportService
	bulk         BulkService
	credits      CreditService
	branding     BrandingStore
	connector    drive.Connector
	integrations drive.IntegrationStore
	auditor      Auditor
}

// Auditor records state-changing actions.
type Auditor interface {
	Record(ctx context.Context, orgID, actorID, action, targetType, targetID string, details any)
}

// New creates a new API handler.
func New(logger log.Logger, verifySvc VerifyService, reports ReportService, bulkSvc BulkService, credits CreditService, branding BrandingStore, connector drive.Connector, integrations drive.IntegrationStore, auditor Auditor) *API {
	if logger == nil {
		logger = log.Nop()
	}
	if verifySvc == nil {
		panic(xerrors.New("verify service is required"))
	}
	return &API{
		logger:       logger,
		verify:       verifySvc,
		reports:      reports,
		bulk:         bulkSvc,
		credits:      credits,
		branding:     branding,
		connector:    connector,
		integrations: integrations,
		auditor:      auditor,
	}
}

// RegisterRoutes attaches API endpoints to the router.
func (a *API) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/verifications", a.handleCreateVerification)
		r.Get("/verifications", a.handleListVerifications)
		r.Get("/verifications/{id}", a.handleGetVerification)

		r.Get("/vendors", a.handleListVendors)
		r.Get("/vendors/{id}", a.handleGetVendor)

		r.Get("/reports", a.handleListReports)
		r.Get("/reports/{id}", a.handleGetReport)
		r.Get("/reports/{id}/pdf", a.handleReportPDF)
		r.Post("/reports/{id}/export", a.handleExportReport)
		r.Post("/reports/{id}/export-drive", a.handleExportReportToDrive)

		r.Get("/settings/branding", a.handleGetBranding)
		r.Put("/settings/branding", a.handleSaveBranding)

		r.Post("/bulk-uploads", a.handleCreateBulkUpload)
		r.Get("/bulk-uploads", a.handleListBulkUploads)
		r.Get("/bulk-uploads/{id}", a.handleGetBulkUpload)

		r.Get("/integrations/drive", a.handleDriveStatus)
		r.Get("/integrations/drive/auth-url", a.handleDriveAuthURL)
		r.Post("/integrations/drive/connect", a.handleDriveConnect)

		r.Get("/credits", a.handleGetCredits)
		r.Get("/dashboard/stats", a.handleDashboardStats)
	})
}

// principal extracts the authenticated caller, failing the request when the
// auth middleware did not run.
func (a *API) principal(w http.ResponseWriter, r *http.Request) (*authmw.Principal, bool) {
	p, ok := authmw.FromContext(r.Context())
	if !ok {
		a.writeError(w, http.StatusUnauthorized, "UNAUTHENTICATED", "authentication required")
		return nil, false
	}
	return p, true
}

func (a *API) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *API) writeError(w http.ResponseWriter, status int, code, msg string) {
	a.writeJSON(w, status, map[string]string{"error": msg, "code": code})
}

// writeDomainError maps domain errors to their client-facing statuses.
// Anything unmapped is an internal error and gets logged with full detail.
func (a *API) writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	var provErr *verify.ProviderError
	switch {
	case errors.Is(err, verify.ErrInsufficientCredit):
		a.writeError(w, http.StatusPaymentRequired, "INSUFFICIENT_CREDIT", "insufficient credit balance")
	case errors.Is(err, verify.ErrUnsupportedType):
		a.writeError(w, http.StatusBadRequest, "UNSUPPORTED_VERIFICATION_TYPE", "unsupported verification type")
	case errors.Is(err, verify.ErrAuthentication):
		a.writeError(w, http.StatusUnauthorized, "AUTHENTICATION_ERROR", "verification provider rejected credentials")
	case errors.As(err, &provErr):
		a.writeError(w, http.StatusBadGateway, "PROVIDER_ERROR", "verification provider unavailable")
	case errors.Is(err, drive.ErrNotConnected):
		a.writeError(w, http.StatusBadRequest, "INTEGRATION_NOT_CONNECTED", "drive integration is not connected")
	case errors.Is(err, bulk.ErrInvalidFileType):
		a.writeError(w, http.StatusBadRequest, "INVALID_FILE_TYPE", "only CSV files are accepted")
	case errors.Is(err, objstore.ErrTooLarge):
		a.writeError(w, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", "uploaded file exceeds the size limit")
	case errors.Is(err, report.ErrNotFound):
		a.writeError(w, http.StatusNotFound, "NOT_FOUND", "report not found")
	default:
		a.logger.Error(r.Context(), err, "request failed", "path", r.URL.Path)
		a.writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal error")
	}
}
