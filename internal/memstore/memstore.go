// Package memstore provides an in-memory implementation of every domain
// store. Suitable for dev/testing.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/linnemanlabs/vet/internal/audit"
	"github.com/linnemanlabs/vet/internal/bulk"
	"github.com/linnemanlabs/vet/internal/drive"
	"github.com/linnemanlabs/vet/internal/ledger"
	"github.com/linnemanlabs/vet/internal/report"
	"github.com/linnemanlabs/vet/internal/verify"
	"github.com/oklog/ulid/v2"
)

// Store holds all domain state in memory behind one mutex.
type Store struct {
	mu            sync.RWMutex
	accounts      map[string]*ledger.Account       // org ID -> account
	vendors       map[string]*verify.Vendor        // vendor ID -> vendor
	verifications map[string]*verify.Verification  // verification ID -> verification
	reports       map[string]*report.Report        // report ID -> report
	branding      map[string]*report.Branding      // org ID -> branding
	jobs          map[string]*bulk.Job             // job ID -> job
	integrations  map[string]*drive.Integration    // org ID -> integration
	auditLog      []*audit.Entry
}

// New initializes a new in-memory Store.
func New() *Store {
	return &Store{
		accounts:      make(map[string]*ledger.Account),
		vendors:       make(map[string]*verify.Vendor),
		verifications: make(map[string]*verify.Verification),
		reports:       make(map[string]*report.Report),
		branding:      make(map[string]*report.Branding),
		jobs:          make(map[string]*bulk.Job),
		integrations:  make(map[string]*drive.Integration),
	}
}

// SeedAccount creates or replaces a credit account. Dev/test helper.
func (s *Store) SeedAccount(orgID string, balance, monthlyLimit int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[orgID] = &ledger.Account{
		OrgID:          orgID,
		CurrentBalance: balance,
		MonthlyLimit:   monthlyLimit,
		UpdatedAt:      time.Now(),
	}
}

// Account retrieves the org's credit account. Returns a copy.
func (s *Store) Account(_ context.Context, orgID string) (*ledger.Account, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.accounts[orgID]
	if !ok {
		return nil, false, nil
	}
	cp := *a
	return &cp, true, nil
}

// Debit decrements the balance under the write lock; the check and the
// mutation are one critical section.
func (s *Store) Debit(_ context.Context, orgID string, amount int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[orgID]
	if !ok || a.CurrentBalance < amount {
		return false, nil
	}
	a.CurrentBalance -= amount
	a.UpdatedAt = time.Now()
	return true, nil
}

// UpsertVendor creates the vendor on first sight and merges the identifying
// number afterwards. Vendors match on (org, name).
func (s *Store) UpsertVendor(_ context.Context, orgID, name string, t verify.CheckType, number string) (*verify.Vendor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for _, v := range s.vendors {
		if v.OrgID == orgID && v.Name == name {
			v.Numbers[t] = number
			v.UpdatedAt = now
			return copyVendor(v), nil
		}
	}

	v := &verify.Vendor{
		ID:        ulid.Make().String(),
		OrgID:     orgID,
		Name:      name,
		Numbers:   map[verify.CheckType]string{t: number},
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.vendors[v.ID] = v
	return copyVendor(v), nil
}

// Vendor retrieves one vendor scoped to the org. Returns a copy.
func (s *Store) Vendor(_ context.Context, orgID, id string) (*verify.Vendor, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.vendors[id]
	if !ok || v.OrgID != orgID {
		return nil, false, nil
	}
	return copyVendor(v), true, nil
}

// ListVendors returns the org's vendors, most recently updated first.
func (s *Store) ListVendors(_ context.Context, orgID string) ([]*verify.Vendor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*verify.Vendor
	for _, v := range s.vendors {
		if v.OrgID == orgID {
			out = append(out, copyVendor(v))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

// CountVendors returns the org's vendor count.
func (s *Store) CountVendors(_ context.Context, orgID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, v := range s.vendors {
		if v.OrgID == orgID {
			n++
		}
	}
	return n, nil
}

// InsertVerification stores a copy of the verification.
func (s *Store) InsertVerification(_ context.Context, v *verify.Verification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *v
	s.verifications[v.ID] = &cp
	return nil
}

// Verification retrieves one verification scoped to the org. Returns a copy.
func (s *Store) Verification(_ context.Context, orgID, id string) (*verify.Verification, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.verifications[id]
	if !ok || v.OrgID != orgID {
		return nil, false, nil
	}
	cp := *v
	return &cp, true, nil
}

// ListVerifications returns the org's verifications, newest first.
func (s *Store) ListVerifications(_ context.Context, orgID string) ([]*verify.Verification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*verify.Verification
	for _, v := range s.verifications {
		if v.OrgID == orgID {
			cp := *v
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// CountVerifications returns the org's verification count.
func (s *Store) CountVerifications(_ context.Context, orgID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, v := range s.verifications {
		if v.OrgID == orgID {
			n++
		}
	}
	return n, nil
}

// Subject resolves the rendering context for a report.
func (s *Store) Subject(_ context.Context, orgID, vendorID, verificationID string) (*report.Subject, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	vf, ok := s.verifications[verificationID]
	if !ok || vf.OrgID != orgID || vf.VendorID != vendorID {
		return nil, false, nil
	}
	vn, ok := s.vendors[vendorID]
	if !ok {
		return nil, false, nil
	}

	numbers := make(map[string]string, len(vn.Numbers))
	for t, num := range vn.Numbers {
		numbers[string(t)] = num
	}
	return &report.Subject{
		VendorName:  vn.Name,
		Numbers:     numbers,
		CheckType:   string(vf.Type),
		CheckStatus: vf.Status,
		RawResponse: vf.RawResponse,
		PerformedAt: vf.CreatedAt,
	}, true, nil
}

func copyVendor(v *verify.Vendor) *verify.Vendor {
	cp := *v
	cp.Numbers = make(map[verify.CheckType]string, len(v.Numbers))
	for t, num := range v.Numbers {
		cp.Numbers[t] = num
	}
	return &cp
}
