package verify

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/linnemanlabs/go-core/log"

	"github.com/linnemanlabs/vet/internal/audit"
	"github.com/linnemanlabs/vet/internal/ledger"
	"github.com/linnemanlabs/vet/internal/report"
)

// mockStore implements Store for testing.
type mockStore struct {
	mu            sync.Mutex
	vendors       map[string]*Vendor
	verifications map[string]*Verification
	insertErr     error
}

func newMockStore() *mockStore {
	return &mockStore{
		vendors:       make(map[string]*Vendor),
		verifications: make(map[string]*Verification),
	}
}

func (m *mockStore) UpsertVendor(_ context.Context, orgID, name string, t CheckType, number string) (*Vendor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, v := range m.vendors {
		if v.OrgID == orgID && v.Name == name {
			v.Numbers[t] = number
			cp := *v
			return &cp, nil
		}
	}
	v := &Vendor{
		ID:      "vendor-" + name,
		OrgID:   orgID,
		Name:    name,
		Numbers: map[CheckType]string{t: number},
	}
	m.vendors[v.ID] = v
	cp := *v
	return &cp, nil
}

func (m *mockStore) Vendor(_ context.Context, orgID, id string) (*Vendor, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.vendors[id]
	if !ok || v.OrgID != orgID {
		return nil, false, nil
	}
	cp := *v
	return &cp, true, nil
}

func (m *mockStore) ListVendors(_ context.Context, orgID string) ([]*Vendor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*Vendor
	for _, v := range m.vendors {
		if v.OrgID == orgID {
			cp := *v
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *mockStore) CountVendors(_ context.Context, orgID string) (int, error) {
	vs, _ := m.ListVendors(context.Background(), orgID)
	return len(vs), nil
}

func (m *mockStore) InsertVerification(_ context.Context, v *Verification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.insertErr != nil {
		return m.insertErr
	}
	cp := *v
	m.verifications[v.ID] = &cp
	return nil
}

func (m *mockStore) Verification(_ context.Context, orgID, id string) (*Verification, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.verifications[id]
	if !ok || v.OrgID != orgID {
		return nil, false, nil
	}
	cp := *v
	return &cp, true, nil
}

func (m *mockStore) ListVerifications(_ context.Context, orgID string) ([]*Verification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*Verification
	for _, v := range m.verifications {
		if v.OrgID == orgID {
			cp := *v
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *mockStore) CountVerifications(_ context.Context, orgID string) (int, error) {
	vs, _ := m.ListVerifications(context.Background(), orgID)
	return len(vs), nil
}

// mockProvider implements Provider.
type mockProvider struct {
	result *ProviderResult
	err    error
	calls  int
}

func (m *mockProvider) Check(_ context.Context, _ CheckType, _ string) (*ProviderResult, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.result, nil
}

// mockSummarizer implements Summarizer.
type mockSummarizer struct {
	summary *Summary
	err     error
}

func (m *mockSummarizer) Summarize(_ context.Context, _ *SummaryInput) (*Summary, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.summary, nil
}

// mockReportStore implements report.Store.
type mockReportStore struct {
	mu        sync.Mutex
	reports   map[string]*report.Report
	insertErr error
}

func newMockReportStore() *mockReportStore {
	return &mockReportStore{reports: make(map[string]*report.Report)}
}

func (m *mockReportStore) Insert(_ context.Context, r *report.Report) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.insertErr != nil {
		return m.insertErr
	}
	cp := *r
	m.reports[r.ID] = &cp
	return nil
}

func (m *mockReportStore) Get(_ context.Context, orgID, id string) (*report.Report, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.reports[id]
	if !ok || r.OrgID != orgID {
		return nil, false, nil
	}
	cp := *r
	return &cp, true, nil
}

func (m *mockReportStore) List(_ context.Context, _ string) ([]*report.Report, error) {
	return nil, nil
}
func (m *mockReportStore) SetPDFLocator(_ context.Context, _, _, _ string) error { return nil }
func (m *mockReportStore) SetDriveFile(_ context.Context, _, _, _ string) error  { return nil }
func (m *mockReportStore) Count(_ context.Context, _ string) (int, error)        { return 0, nil }
func (m *mockReportStore) CountByRisk(_ context.Context, _ string, _ report.RiskLevel) (int, error) {
	return 0, nil
}
func (m *mockReportStore) Branding(_ context.Context, _ string) (*report.Branding, bool, error) {
	return nil, false, nil
}
func (m *mockReportStore) SaveBranding(_ context.Context, _ *report.Branding) error { return nil }

func (m *mockReportStore) only(t *testing.T) *report.Report {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.reports) != 1 {
		t.Fatalf("reports stored = %d, want 1", len(m.reports))
	}
	for _, r := range m.reports {
		return r
	}
	return nil
}

// mockLedgerStore implements ledger.Store with a fixed balance.
type mockLedgerStore struct {
	mu        sync.Mutex
	balance   int
	noAccount bool
	debitErr  error
	denyDebit bool
}

func (m *mockLedgerStore) Account(_ context.Context, orgID string) (*ledger.Account, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.noAccount {
		return nil, false, nil
	}
	return &ledger.Account{OrgID: orgID, CurrentBalance: m.balance}, true, nil
}

func (m *mockLedgerStore) Debit(_ context.Context, _ string, amount int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.debitErr != nil {
		return false, m.debitErr
	}
	if m.denyDebit || m.balance < amount {
		return false, nil
	}
	m.balance -= amount
	return true, nil
}

// mockAuditStore collects audit entries.
type mockAuditStore struct {
	mu      sync.Mutex
	entries []*audit.Entry
}

func (m *mockAuditStore) Append(_ context.Context, e *audit.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *e
	m.entries = append(m.entries, &cp)
	return nil
}

type fixture struct {
	store      *mockStore
	provider   *mockProvider
	summarizer *mockSummarizer
	reports    *mockReportStore
	credits    *mockLedgerStore
	auditLog   *mockAuditStore
	svc        *Service
}

func newFixture() *fixture {
	f := &fixture{
		store: newMockStore(),
		provider: &mockProvider{result: &ProviderResult{
			Request:  json.RawMessage(`{"gstin":"27AAPFU0939F1ZV"}`),
			Response: json.RawMessage(`{"status":"ACTIVE"}`),
			Status:   "ACTIVE",
		}},
		summarizer: &mockSummarizer{summary: &Summary{RiskLevel: report.RiskLow, Text: "Vendor looks healthy."}},
		reports:    newMockReportStore(),
		credits:    &mockLedgerStore{balance: 10},
		auditLog:   &mockAuditStore{},
	}
	f.svc = NewService(
		ledger.New(f.credits, log.Nop(), nil),
		f.store,
		f.provider,
		f.summarizer,
		f.reports,
		audit.NewRecorder(f.auditLog, log.Nop()),
		time.UTC,
		log.Nop(),
		nil,
	)
	return f
}

func testRequest() *Request {
	return &Request{
		OrgID:      "org-1",
		ActorID:    "user-1",
		VendorName: "Acme Traders",
		Type:       TypeGST,
		Number:     "27AAPFU0939F1ZV",
	}
}

func TestVerify_Success(t *testing.T) {
	t.Parallel()

	f := newFixture()
	res, err := f.svc.Verify(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}

	if res.Vendor == nil || res.Vendor.Name != "Acme Traders" {
		t.Fatalf("vendor = %+v", res.Vendor)
	}
	if got := res.Vendor.Numbers[TypeGST]; got != "27AAPFU0939F1ZV" {
		t.Errorf("vendor GST number = %q", got)
	}
	if res.Verification == nil || res.Verification.Status != "ACTIVE" {
		t.Fatalf("verification = %+v", res.Verification)
	}
	if res.RiskLevel != report.RiskLow {
		t.Errorf("risk = %q, want LOW", res.RiskLevel)
	}
	if !res.CreditDebited {
		t.Error("expected credit to be debited")
	}
	if f.credits.balance != 9 {
		t.Errorf("balance = %d, want 9", f.credits.balance)
	}

	stored := f.reports.only(t)
	if stored.Summary != "Vendor looks healthy." {
		t.Errorf("report summary = %q", stored.Summary)
	}
	if stored.VerificationID != res.Verification.ID {
		t.Error("report not linked to verification")
	}

	if len(f.auditLog.entries) != 1 {
		t.Fatalf("audit entries = %d, want 1", len(f.auditLog.entries))
	}
	e := f.auditLog.entries[0]
	if e.Action != audit.ActionVerifyVendor || e.TargetType != audit.TargetVendor {
		t.Errorf("audit entry = %+v", e)
	}
}

func TestVerify_InsufficientCredit(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.credits.balance = 0

	_, err := f.svc.Verify(context.Background(), testRequest())
	if !errors.Is(err, ErrInsufficientCredit) {
		t.Fatalf("err = %v, want ErrInsufficientCredit", err)
	}
	if f.provider.calls != 0 {
		t.Error("provider should not be called when credit is denied")
	}
}

func TestVerify_NoCreditAccount(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.credits.noAccount = true

	_, err := f.svc.Verify(context.Background(), testRequest())
	if !errors.Is(err, ErrInsufficientCredit) {
		t.Fatalf("err = %v, want ErrInsufficientCredit", err)
	}
}

func TestVerify_UnsupportedType(t *testing.T) {
	t.Parallel()

	f := newFixture()
	req := testRequest()
	req.Type = CheckType("PASSPORT")

	_, err := f.svc.Verify(context.Background(), req)
	if !errors.Is(err, ErrUnsupportedType) {
		t.Fatalf("err = %v, want ErrUnsupportedType", err)
	}
	if f.provider.calls != 0 {
		t.Error("provider should not be called for unsupported types")
	}
}

func TestVerify_ProviderErrorPassthrough(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.provider.err = &ProviderError{StatusCode: 503, Body: "down for maintenance"}

	_, err := f.svc.Verify(context.Background(), testRequest())
	var pe *ProviderError
	if !errors.As(err, &pe) || pe.StatusCode != 503 {
		t.Fatalf("err = %v, want *ProviderError 503", err)
	}
	if len(f.store.verifications) != 0 {
		t.Error("nothing should be persisted on provider failure")
	}
	if len(f.reports.reports) != 0 {
		t.Error("no report should be created on provider failure")
	}
}

func TestVerify_AuthenticationPassthrough(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.provider.err = ErrAuthentication

	_, err := f.svc.Verify(context.Background(), testRequest())
	if !errors.Is(err, ErrAuthentication) {
		t.Fatalf("err = %v, want ErrAuthentication", err)
	}
}

func TestVerify_SummarizerFailureFallsBack(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.summarizer.summary = nil
	f.summarizer.err = errors.New("model overloaded")

	res, err := f.svc.Verify(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if res.RiskLevel != report.RiskMedium {
		t.Errorf("risk = %q, want MEDIUM fallback", res.RiskLevel)
	}
	stored := f.reports.only(t)
	if !strings.Contains(stored.Summary, "manual review") {
		t.Errorf("fallback summary = %q, want manual-review wording", stored.Summary)
	}
	if !res.CreditDebited {
		t.Error("verification should still be billed on summarizer failure")
	}
}

func TestVerify_SummarizerBadOutputFallsBack(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.summarizer.summary = &Summary{RiskLevel: report.RiskLevel("EXTREME"), Text: "??"}

	res, err := f.svc.Verify(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if res.RiskLevel != report.RiskMedium {
		t.Errorf("risk = %q, want MEDIUM fallback", res.RiskLevel)
	}
}

func TestVerify_DebitDeniedStillCompletes(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.credits.denyDebit = true

	res, err := f.svc.Verify(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if res.CreditDebited {
		t.Error("debit should have been denied")
	}
	if res.Report == nil {
		t.Error("report should still exist when the debit races to denial")
	}
}

func TestVerify_PersistFailureIsStaged(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.store.insertErr = errors.New("disk full")

	_, err := f.svc.Verify(context.Background(), testRequest())
	var pe *PipelineError
	if !errors.As(err, &pe) {
		t.Fatalf("err = %v, want *PipelineError", err)
	}
	if pe.Stage != StagePersisted {
		t.Errorf("stage = %q, want %q", pe.Stage, StagePersisted)
	}
}

func TestVerify_ReportExpiryAnchoredToMidnight(t *testing.T) {
	t.Parallel()

	loc, err := time.LoadLocation("Asia/Kolkata")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}

	f := newFixture()
	f.svc.loc = loc
	created := time.Date(2026, time.March, 14, 23, 45, 0, 0, loc)
	f.svc.now = func() time.Time { return created }

	res, err := f.svc.Verify(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}

	want := time.Date(2026, time.March, 22, 0, 0, 0, 0, loc)
	if !res.Report.ExpiresAt.Equal(want) {
		t.Errorf("expires_at = %v, want %v", res.Report.ExpiresAt, want)
	}
}

func TestVerify_UpsertMergesSecondCheckType(t *testing.T) {
	t.Parallel()

	f := newFixture()
	if _, err := f.svc.Verify(context.Background(), testRequest()); err != nil {
		t.Fatalf("first Verify: %v", err)
	}

	req := testRequest()
	req.Type = TypePAN
	req.Number = "AAPFU0939F"
	res, err := f.svc.Verify(context.Background(), req)
	if err != nil {
		t.Fatalf("second Verify: %v", err)
	}

	if len(f.store.vendors) != 1 {
		t.Fatalf("vendors = %d, want 1 (upsert should merge)", len(f.store.vendors))
	}
	if res.Vendor.Numbers[TypeGST] == "" || res.Vendor.Numbers[TypePAN] == "" {
		t.Errorf("numbers = %v, want both GST and PAN", res.Vendor.Numbers)
	}
}
