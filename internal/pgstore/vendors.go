package pgstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/linnemanlabs/vet/internal/verify"
	"github.com/oklog/ulid/v2"
)

const vendorColumns = `id, org_id, name, numbers, created_at, updated_at`

// UpsertVendor creates the vendor on first sight and merges the identifying
// number for the check type into the existing row afterwards.
func (s *Store) UpsertVendor(ctx context.Context, orgID, name string, t verify.CheckType, number string) (*verify.Vendor, error) {
	ctx, span := startSpan(ctx, "pgstore.UpsertVendor", "UPSERT")
	defer span.End()

	numbers, err := json.Marshal(map[verify.CheckType]string{t: number})
	if err != nil {
		return nil, spanErr(span, fmt.Errorf("marshal numbers: %w", err))
	}

	now := time.Now()
	query := `INSERT INTO vendors (id, org_id, name, numbers, created_at, updated_at)
	 VALUES ($1, $2, $3, $4, $5, $5)
	 ON CONFLICT (org_id, name) DO UPDATE SET
	 	numbers    = vendors.numbers || EXCLUDED.numbers,
	 	updated_at = EXCLUDED.updated_at
	 RETURNING ` + vendorColumns

	v, err := scanVendor(s.pool.QueryRow(ctx, query, ulid.Make().String(), orgID, name, numbers, now))
	if err != nil {
		return nil, spanErr(span, err)
	}
	return v, nil
}

// Vendor retrieves one vendor scoped to the org.
func (s *Store) Vendor(ctx context.Context, orgID, id string) (*verify.Vendor, bool, error) {
	ctx, span := startSpan(ctx, "pgstore.Vendor", "SELECT")
	defer span.End()

	query := `SELECT ` + vendorColumns + ` FROM vendors WHERE org_id = $1 AND id = $2`
	v, err := scanVendor(s.pool.QueryRow(ctx, query, orgID, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, spanErr(span, err)
	}
	return v, true, nil
}

// ListVendors returns the org's vendors, most recently updated first.
func (s *Store) ListVendors(ctx context.Context, orgID string) ([]*verify.Vendor, error) {
	ctx, span := startSpan(ctx, "pgstore.ListVendors", "SELECT")
	defer span.End()

	query := `SELECT ` + vendorColumns + ` FROM vendors WHERE org_id = $1 ORDER BY updated_at DESC`
	rows, err := s.pool.Query(ctx, query, orgID)
	if err != nil {
		return nil, spanErr(span, err)
	}
	defer rows.Close()

	var out []*verify.Vendor
	for rows.Next() {
		v, err := scanVendor(rows)
		if err != nil {
			return nil, spanErr(span, err)
		}
		out = append(out, v)
	}
	return out, spanErr(span, rows.Err())
}

// CountVendors returns the org's vendor count.
func (s *Store) CountVendors(ctx context.Context, orgID string) (int, error) {
	ctx, span := startSpan(ctx, "pgstore.CountVendors", "SELECT")
	defer span.End()

	var n int
	err := s.pool.QueryRow(ctx, `SELECT count(*) FROM vendors WHERE org_id = $1`, orgID).Scan(&n)
	return n, spanErr(span, err)
}

func scanVendor(row pgx.Row) (*verify.Vendor, error) {
	var (
		v       verify.Vendor
		numbers []byte
	)
	if err := row.Scan(&v.ID, &v.OrgID, &v.Name, &numbers, &v.CreatedAt, &v.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(numbers, &v.Numbers); err != nil {
		return nil, fmt.Errorf("unmarshal numbers: %w", err)
	}
	return &v, nil
}
