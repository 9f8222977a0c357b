package memstore

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/linnemanlabs/vet/internal/report"
	"github.com/linnemanlabs/vet/internal/verify"
)

func TestDebit_NeverGoesNegative(t *testing.T) {
	t.Parallel()

	s := New()
	s.SeedAccount("org-1", 10, 100)

	var wg sync.WaitGroup
	var mu sync.Mutex
	granted := 0

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := s.Debit(context.Background(), "org-1", 1)
			if err != nil {
				t.Errorf("Debit: %v", err)
				return
			}
			if ok {
				mu.Lock()
				granted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if granted != 10 {
		t.Errorf("granted = %d, want exactly 10", granted)
	}
	acct, ok, err := s.Account(context.Background(), "org-1")
	if err != nil || !ok {
		t.Fatalf("Account: ok=%v err=%v", ok, err)
	}
	if acct.CurrentBalance != 0 {
		t.Errorf("balance = %d, want 0", acct.CurrentBalance)
	}
}

func TestDebit_UnknownOrg(t *testing.T) {
	t.Parallel()

	s := New()
	ok, err := s.Debit(context.Background(), "nobody", 1)
	if err != nil {
		t.Fatalf("Debit: %v", err)
	}
	if ok {
		t.Error("debit against a missing account should be denied")
	}
}

func TestUpsertVendor_MergesNumbers(t *testing.T) {
	t.Parallel()

	s := New()
	ctx := context.Background()

	first, err := s.UpsertVendor(ctx, "org-1", "Acme Traders", verify.TypeGST, "27AAPFU0939F1ZV")
	if err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	second, err := s.UpsertVendor(ctx, "org-1", "Acme Traders", verify.TypePAN, "AAPFU0939F")
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	if first.ID != second.ID {
		t.Error("same org+name should resolve to the same vendor")
	}
	if second.Numbers[verify.TypeGST] != "27AAPFU0939F1ZV" || second.Numbers[verify.TypePAN] != "AAPFU0939F" {
		t.Errorf("numbers = %v", second.Numbers)
	}

	// same name under another org is a different vendor
	other, err := s.UpsertVendor(ctx, "org-2", "Acme Traders", verify.TypeGST, "x")
	if err != nil {
		t.Fatalf("other org upsert: %v", err)
	}
	if other.ID == first.ID {
		t.Error("vendors must be org-scoped")
	}
}

func TestUpsertVendor_ReturnsCopy(t *testing.T) {
	t.Parallel()

	s := New()
	ctx := context.Background()

	v, err := s.UpsertVendor(ctx, "org-1", "Acme", verify.TypeGST, "g-1")
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	v.Numbers[verify.TypePAN] = "mutated"

	stored, ok, err := s.Vendor(ctx, "org-1", v.ID)
	if err != nil || !ok {
		t.Fatalf("Vendor: ok=%v err=%v", ok, err)
	}
	if _, leaked := stored.Numbers[verify.TypePAN]; leaked {
		t.Error("mutating a returned vendor must not affect stored state")
	}
}

func TestSubject(t *testing.T) {
	t.Parallel()

	s := New()
	ctx := context.Background()

	v, err := s.UpsertVendor(ctx, "org-1", "Acme", verify.TypeGST, "g-1")
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	vf := &verify.Verification{
		ID:        "vf-1",
		OrgID:     "org-1",
		VendorID:  v.ID,
		Type:      verify.TypeGST,
		Status:    "ACTIVE",
		CreatedAt: time.Now(),
	}
	if err := s.InsertVerification(ctx, vf); err != nil {
		t.Fatalf("insert verification: %v", err)
	}

	subj, ok, err := s.Subject(ctx, "org-1", v.ID, "vf-1")
	if err != nil || !ok {
		t.Fatalf("Subject: ok=%v err=%v", ok, err)
	}
	if subj.VendorName != "Acme" || subj.CheckType != "GST" || subj.CheckStatus != "ACTIVE" {
		t.Errorf("subject = %+v", subj)
	}
	if subj.Numbers["GST"] != "g-1" {
		t.Errorf("numbers = %v", subj.Numbers)
	}

	// wrong org or mismatched vendor yields no subject
	if _, ok, _ := s.Subject(ctx, "org-2", v.ID, "vf-1"); ok {
		t.Error("subject should be org-scoped")
	}
	if _, ok, _ := s.Subject(ctx, "org-1", "other-vendor", "vf-1"); ok {
		t.Error("subject should check the vendor link")
	}
}

func TestListVerifications_NewestFirst(t *testing.T) {
	t.Parallel()

	s := New()
	ctx := context.Background()
	base := time.Now()

	for i, id := range []string{"old", "mid", "new"} {
		err := s.InsertVerification(ctx, &verify.Verification{
			ID:        id,
			OrgID:     "org-1",
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("insert %s: %v", id, err)
		}
	}

	list, err := s.ListVerifications(ctx, "org-1")
	if err != nil {
		t.Fatalf("ListVerifications: %v", err)
	}
	if len(list) != 3 || list[0].ID != "new" || list[2].ID != "old" {
		t.Errorf("order = %v", []string{list[0].ID, list[1].ID, list[2].ID})
	}
}

func TestBranding_RoundTrip(t *testing.T) {
	t.Parallel()

	s := New()
	ctx := context.Background()

	if _, ok, _ := s.Branding(ctx, "org-1"); ok {
		t.Fatal("branding should be absent initially")
	}

	b := &report.Branding{OrgID: "org-1", Enabled: true, CompanyName: "Tensile"}
	if err := s.SaveBranding(ctx, b); err != nil {
		t.Fatalf("SaveBranding: %v", err)
	}

	got, ok, err := s.Branding(ctx, "org-1")
	if err != nil || !ok {
		t.Fatalf("Branding: ok=%v err=%v", ok, err)
	}
	if got.CompanyName != "Tensile" || !got.Enabled {
		t.Errorf("branding = %+v", got)
	}
}

func TestReports_CountByRisk(t *testing.T) {
	t.Parallel()

	s := New()
	ctx := context.Background()

	for i, level := range []report.RiskLevel{report.RiskLow, report.RiskLow, report.RiskHigh} {
		err := s.Insert(ctx, &report.Report{
			ID:        string(rune('a' + i)),
			OrgID:     "org-1",
			RiskLevel: level,
		})
		if err != nil {
			t.Fatalf("insert: %v", err)
		}
	}

	total, _ := s.Count(ctx, "org-1")
	low, _ := s.CountByRisk(ctx, "org-1", report.RiskLow)
	high, _ := s.CountByRisk(ctx, "org-1", report.RiskHigh)
	med, _ := s.CountByRisk(ctx, "org-1", report.RiskMedium)
	if total != 3 || low != 2 || high != 1 || med != 0 {
		t.Errorf("counts = total %d, low %d, med %d, high %d", total, low, med, high)
	}
}
