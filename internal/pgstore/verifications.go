package pgstore

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/linnemanlabs/vet/internal/report"
	"github.com/linnemanlabs/vet/internal/verify"
)

const verificationColumns = `id, org_id, vendor_id, type, number, raw_request, raw_response,
	status, performed_by, created_at`

// InsertVerification appends one immutable verification record.
func (s *Store) InsertVerification(ctx context.Context, v *verify.Verification) error {
	ctx, span := startSpan(ctx, "pgstore.InsertVerification", "INSERT")
	defer span.End()

	_, err := s.pool.Exec(ctx,
		`INSERT INTO verifications (id, org_id, vendor_id, type, number, raw_request, raw_response, status, performed_by, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		v.ID, v.OrgID, v.VendorID, string(v.Type), v.Number,
		nullableJSON(v.RawRequest), nullableJSON(v.RawResponse),
		v.Status, v.PerformedBy, v.CreatedAt,
	)
	return spanErr(span, err)
}

// Verification retrieves one verification scoped to the org.
func (s *Store) Verification(ctx context.Context, orgID, id string) (*verify.Verification, bool, error) {
	ctx, span := startSpan(ctx, "pgstore.Verification", "SELECT")
	defer span.End()

	query := `SELECT ` + verificationColumns + ` FROM verifications WHERE org_id = $1 AND id = $2`
	v, err := scanVerification(s.pool.QueryRow(ctx, query, orgID, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, spanErr(span, err)
	}
	return v, true, nil
}

// ListVerifications returns the org's verifications, newest first.
func (s *Store) ListVerifications(ctx context.Context, orgID string) ([]*verify.Verification, error) {
	ctx, span := startSpan(ctx, "pgstore.ListVerifications", "SELECT")
	defer span.End()

	query := `SELECT ` + verificationColumns + ` FROM verifications WHERE org_id = $1 ORDER BY created_at DESC`
	rows, err := s.pool.Query(ctx, query, orgID)
	if err != nil {
		return nil, spanErr(span, err)
	}
	defer rows.Close()

	var out []*verify.Verification
	for rows.Next() {
		v, err := scanVerification(rows)
		if err != nil {
			return nil, spanErr(span, err)
		}
		out = append(out, v)
	}
	return out, spanErr(span, rows.Err())
}

// CountVerifications returns the org's verification count.
func (s *Store) CountVerifications(ctx context.Context, orgID string) (int, error) {
	ctx, span := startSpan(ctx, "pgstore.CountVerifications", "SELECT")
	defer span.End()

	var n int
	err := s.pool.QueryRow(ctx, `SELECT count(*) FROM verifications WHERE org_id = $1`, orgID).Scan(&n)
	return n, spanErr(span, err)
}

// Subject resolves the rendering context for a report from its verification
// and vendor rows.
func (s *Store) Subject(ctx context.Context, orgID, vendorID, verificationID string) (*report.Subject, bool, error) {
	ctx, span := startSpan(ctx, "pgstore.Subject", "SELECT")
	defer span.End()

	var (
		sub     report.Subject
		numbers []byte
		raw     []byte
	)
	err := s.pool.QueryRow(ctx,
		`SELECT vn.name, vn.numbers, vf.type, vf.status, vf.raw_response, vf.created_at
		 FROM verifications vf
		 JOIN vendors vn ON vn.id = vf.vendor_id
		 WHERE vf.org_id = $1 AND vf.vendor_id = $2 AND vf.id = $3`,
		orgID, vendorID, verificationID,
	).Scan(&sub.VendorName, &numbers, &sub.CheckType, &sub.CheckStatus, &raw, &sub.PerformedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, spanErr(span, err)
	}

	if err := json.Unmarshal(numbers, &sub.Numbers); err != nil {
		return nil, false, spanErr(span, err)
	}
	sub.RawResponse = raw
	return &sub, true, nil
}

// nullableJSON maps empty payloads to SQL NULL so JSONB columns stay valid.
func nullableJSON(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}
	return []byte(raw)
}

func scanVerification(row pgx.Row) (*verify.Verification, error) {
	var (
		v        verify.Verification
		rawReq   []byte
		rawResp  []byte
		typeName string
	)
	if err := row.Scan(&v.ID, &v.OrgID, &v.VendorID, &typeName, &v.Number,
		&rawReq, &rawResp, &v.Status, &v.PerformedBy, &v.CreatedAt); err != nil {
		return nil, err
	}
	v.Type = verify.CheckType(typeName)
	v.RawRequest = rawReq
	v.RawResponse = rawResp
	return &v, nil
}
