package verify

import "context"

// Store is the persistence interface for vendors and verifications.
//
// UpsertVendor matches on (org, name): a new vendor row is created on first
// sight, and subsequent verifications merge the identifying number for their
// check type into the existing row.
type Store interface {
	UpsertVendor(ctx context.Context, orgID, name string, t CheckType, number string) (*Vendor, error)
	Vendor(ctx context.Context, orgID, id string) (*Vendor, bool, error)
	ListVendors(ctx context.Context, orgID string) ([]*Vendor, error)
	CountVendors(ctx context.Context, orgID string) (int, error)

	InsertVerification(ctx context.Context, v *Verification) error
	Verification(ctx context.Context, orgID, id string) (*Verification, bool, error)
	ListVerifications(ctx context.Context, orgID string) ([]*Verification, error)
	CountVerifications(ctx context.Context, orgID string) (int, error)
}
