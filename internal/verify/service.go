package verify

import (
	"context"
	"time"

	"github.com/linnemanlabs/go-core/log"
	"github.com/linnemanlabs/vet/internal/audit"
	"github.com/linnemanlabs/vet/internal/ledger"
	"github.com/linnemanlabs/vet/internal/report"
	"github.com/oklog/ulid/v2"
)

// creditCost is the credit units one verification consumes.
const creditCost = 1

// fallbackSummary is substituted when the summarizer fails or returns an
// unusable risk level. The verification still completes.
const fallbackSummary = "Automated risk analysis was unavailable for this verification. " +
	"A MEDIUM risk level has been assigned pending manual review. " +
	"Please review the raw verification data before relying on this result."

// Result is the outcome of a completed verification pipeline run.
type Result struct {
	Vendor        *Vendor          `json:"vendor"`
	Verification  *Verification    `json:"verification"`
	Report        *report.Report   `json:"report"`
	CreditDebited bool             `json:"credit_debited"`
	RiskLevel     report.RiskLevel `json:"risk_level"`
}

// Service is the business boundary for verification operations.
type Service struct {
	ledger     *ledger.Ledger
	store      Store
	provider   Provider
	summarizer Summarizer
	reports    report.Store
	auditor    *audit.Recorder
	loc        *time.Location
	logger     log.Logger
	metrics    *Metrics

	now func() time.Time
}

// NewService creates a verification service. loc is the timezone report
// expiry midnights are anchored to.
func NewService(l *ledger.Ledger, store Store, provider Provider, summarizer Summarizer, reports report.Store, auditor *audit.Recorder, loc *time.Location, logger log.Logger, metrics *Metrics) *Service {
	if logger == nil {
		logger = log.Nop()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		ledger:     l,
		store:      store,
		provider:   provider,
		summarizer: summarizer,
		reports:    reports,
		auditor:    auditor,
		loc:        loc,
		logger:     logger,
		metrics:    metrics,
		now:        time.Now,
	}
}

// Verify runs the full pipeline for one check. Once the provider call has
// succeeded the pipeline always attempts to persist what it has: later-stage
// failures surface as *PipelineError with the stage they occurred in.
func (s *Service) Verify(ctx context.Context, req *Request) (*Result, error) {
	start := s.now()
	L := s.logger.With("org_id", req.OrgID, "vendor", req.VendorName, "type", string(req.Type))

	ok, err := s.ledger.HasSufficientCredit(ctx, req.OrgID)
	if err != nil {
		return nil, &PipelineError{Stage: StageReceived, Err: err}
	}
	if !ok {
		s.count(req.Type, "denied_credit")
		return nil, ErrInsufficientCredit
	}

	if !KnownCheckType(req.Type) {
		s.count(req.Type, "unsupported")
		return nil, ErrUnsupportedType
	}

	pr, err := s.provider.Check(ctx, req.Type, req.Number)
	if err != nil {
		s.count(req.Type, "provider_error")
		return nil, err
	}

	vendor, err := s.store.UpsertVendor(ctx, req.OrgID, req.VendorName, req.Type, req.Number)
	if err != nil {
		return nil, &PipelineError{Stage: StagePersisted, Err: err}
	}

	verification := &Verification{
		ID:          ulid.Make().String(),
		OrgID:       req.OrgID,
		VendorID:    vendor.ID,
		Type:        req.Type,
		Number:      req.Number,
		RawRequest:  pr.Request,
		RawResponse: pr.Response,
		Status:      pr.Status,
		PerformedBy: req.ActorID,
		CreatedAt:   s.now(),
	}
	if err := s.store.InsertVerification(ctx, verification); err != nil {
		return nil, &PipelineError{Stage: StagePersisted, Err: err}
	}

	summary := s.summarize(ctx, req, pr)

	rep := &report.Report{
		ID:             ulid.Make().String(),
		OrgID:          req.OrgID,
		VendorID:       vendor.ID,
		VerificationID: verification.ID,
		RiskLevel:      summary.RiskLevel,
		Summary:        summary.Text,
		ExpiresAt:      report.ExpiryFrom(s.now(), s.loc),
		CreatedAt:      s.now(),
	}
	if err := s.reports.Insert(ctx, rep); err != nil {
		return nil, &PipelineError{Stage: StageReported, Err: err}
	}

	// The admission check above can race with concurrent verifications. A
	// denied debit here means the org briefly went below zero availability;
	// the completed verification stands and the miss is only logged.
	debited, err := s.ledger.Debit(ctx, req.OrgID, creditCost)
	if err != nil {
		return nil, &PipelineError{Stage: StageBilled, Err: err}
	}
	if !debited {
		L.Warn(ctx, "verification completed without debit, balance exhausted concurrently")
	}

	s.auditor.Record(ctx, req.OrgID, req.ActorID, audit.ActionVerifyVendor, audit.TargetVendor, vendor.ID, map[string]string{
		"verification_id": verification.ID,
		"report_id":       rep.ID,
		"type":            string(req.Type),
		"risk_level":      string(summary.RiskLevel),
	})

	s.count(req.Type, "completed")
	if s.metrics != nil {
		s.metrics.PipelineDuration.Observe(time.Since(start).Seconds())
	}
	L.Info(ctx, "verification completed",
		"verification_id", verification.ID,
		"report_id", rep.ID,
		"risk_level", string(summary.RiskLevel),
		"debited", debited,
	)

	return &Result{
		Vendor:        vendor,
		Verification:  verification,
		Report:        rep,
		CreditDebited: debited,
		RiskLevel:     summary.RiskLevel,
	}, nil
}

func (s *Service) summarize(ctx context.Context, req *Request, pr *ProviderResult) *Summary {
	sum, err := s.summarizer.Summarize(ctx, &SummaryInput{
		VendorName:  req.VendorName,
		Type:        req.Type,
		Number:      req.Number,
		RawResponse: pr.Response,
	})
	if err == nil && sum != nil && sum.RiskLevel.Valid() && sum.Text != "" {
		return sum
	}
	if err != nil {
		s.logger.Warn(ctx, "summarizer failed, using manual-review fallback", "error", err)
	} else {
		s.logger.Warn(ctx, "summarizer returned unusable output, using manual-review fallback")
	}
	if s.metrics != nil {
		s.metrics.SummarizerFallbacks.Inc()
	}
	return &Summary{RiskLevel: report.RiskMedium, Text: fallbackSummary}
}

// Vendor returns one of the org's vendors.
func (s *Service) Vendor(ctx context.Context, orgID, id string) (*Vendor, bool, error) {
	return s.store.Vendor(ctx, orgID, id)
}

// ListVendors returns the org's vendors.
func (s *Service) ListVendors(ctx context.Context, orgID string) ([]*Vendor, error) {
	return s.store.ListVendors(ctx, orgID)
}

// Verification returns one of the org's verifications.
func (s *Service) Verification(ctx context.Context, orgID, id string) (*Verification, bool, error) {
	return s.store.Verification(ctx, orgID, id)
}

// ListVerifications returns the org's verifications.
func (s *Service) ListVerifications(ctx context.Context, orgID string) ([]*Verification, error) {
	return s.store.ListVerifications(ctx, orgID)
}

// Counts returns vendor and verification totals for the dashboard.
func (s *Service) Counts(ctx context.Context, orgID string) (vendors, verifications int, err error) {
	vendors, err = s.store.CountVendors(ctx, orgID)
	if err != nil {
		return 0, 0, err
	}
	verifications, err = s.store.CountVerifications(ctx, orgID)
	if err != nil {
		return 0, 0, err
	}
	return vendors, verifications, nil
}

func (s *Service) count(t CheckType, outcome string) {
	if s.metrics != nil {
		s.metrics.VerificationsTotal.WithLabelValues(string(t), outcome).Inc()
	}
}
