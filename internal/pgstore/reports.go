package pgstore

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/linnemanlabs/vet/internal/report"
)

const reportColumns = `id, org_id, vendor_id, verification_id, risk_level, summary,
	pdf_locator, drive_file_id, expires_at, created_at`

// Insert appends one report row.
func (s *Store) Insert(ctx context.Context, r *report.Report) error {
	ctx, span := startSpan(ctx, "pgstore.Insert", "INSERT")
	defer span.End()

	_, err := s.pool.Exec(ctx,
		`INSERT INTO reports (id, org_id, vendor_id, verification_id, risk_level, summary, pdf_locator, drive_file_id, expires_at, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		r.ID, r.OrgID, r.VendorID, r.VerificationID, string(r.RiskLevel), r.Summary,
		r.PDFLocator, r.DriveFileID, r.ExpiresAt, r.CreatedAt,
	)
	return spanErr(span, err)
}

// Get retrieves one report scoped to the org.
func (s *Store) Get(ctx context.Context, orgID, id string) (*report.Report, bool, error) {
	ctx, span := startSpan(ctx, "pgstore.Get", "SELECT")
	defer span.End()

	query := `SELECT ` + reportColumns + ` FROM reports WHERE org_id = $1 AND id = $2`
	r, err := scanReport(s.pool.QueryRow(ctx, query, orgID, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, spanErr(span, err)
	}
	return r, true, nil
}

// List returns the org's reports, newest first.
func (s *Store) List(ctx context.Context, orgID string) ([]*report.Report, error) {
	ctx, span := startSpan(ctx, "pgstore.List", "SELECT")
	defer span.End()

	query := `SELECT ` + reportColumns + ` FROM reports WHERE org_id = $1 ORDER BY created_at DESC`
	rows, err := s.pool.Query(ctx, query, orgID)
	if err != nil {
		return nil, spanErr(span, err)
	}
	defer rows.Close()

	var out []*report.Report
	for rows.Next() {
		r, err := scanReport(rows)
		if err != nil {
			return nil, spanErr(span, err)
		}
		out = append(out, r)
	}
	return out, spanErr(span, rows.Err())
}

// SetPDFLocator records where the rendered PDF lives in object storage.
func (s *Store) SetPDFLocator(ctx context.Context, orgID, id, locator string) error {
	ctx, span := startSpan(ctx, "pgstore.SetPDFLocator", "UPDATE")
	defer span.End()

	_, err := s.pool.Exec(ctx,
		`UPDATE reports SET pdf_locator = $3 WHERE org_id = $1 AND id = $2`,
		orgID, id, locator,
	)
	return spanErr(span, err)
}

// SetDriveFile records the drive file a report was exported to.
func (s *Store) SetDriveFile(ctx context.Context, orgID, id, fileID string) error {
	ctx, span := startSpan(ctx, "pgstore.SetDriveFile", "UPDATE")
	defer span.End()

	_, err := s.pool.Exec(ctx,
		`UPDATE reports SET drive_file_id = $3 WHERE org_id = $1 AND id = $2`,
		orgID, id, fileID,
	)
	return spanErr(span, err)
}

// Count returns the org's report count.
func (s *Store) Count(ctx context.Context, orgID string) (int, error) {
	ctx, span := startSpan(ctx, "pgstore.Count", "SELECT")
	defer span.End()

	var n int
	err := s.pool.QueryRow(ctx, `SELECT count(*) FROM reports WHERE org_id = $1`, orgID).Scan(&n)
	return n, spanErr(span, err)
}

// CountByRisk returns the org's report count at one risk level.
func (s *Store) CountByRisk(ctx context.Context, orgID string, level report.RiskLevel) (int, error) {
	ctx, span := startSpan(ctx, "pgstore.CountByRisk", "SELECT")
	defer span.End()

	var n int
	err := s.pool.QueryRow(ctx,
		`SELECT count(*) FROM reports WHERE org_id = $1 AND risk_level = $2`,
		orgID, string(level),
	).Scan(&n)
	return n, spanErr(span, err)
}

// Branding retrieves the org's white-label settings.
func (s *Store) Branding(ctx context.Context, orgID string) (*report.Branding, bool, error) {
	ctx, span := startSpan(ctx, "pgstore.Branding", "SELECT")
	defer span.End()

	var b report.Branding
	err := s.pool.QueryRow(ctx,
		`SELECT org_id, enabled, company_name, primary_color, report_title, footer_text,
		        support_email, support_phone, extra_disclaimer, hide_default_brand
		 FROM branding_settings WHERE org_id = $1`, orgID,
	).Scan(&b.OrgID, &b.Enabled, &b.CompanyName, &b.PrimaryColor, &b.ReportTitle,
		&b.FooterText, &b.SupportEmail, &b.SupportPhone, &b.ExtraDisclaimer, &b.HideDefaultBrand)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, spanErr(span, err)
	}
	return &b, true, nil
}

// SaveBranding upserts the org's white-label settings.
func (s *Store) SaveBranding(ctx context.Context, b *report.Branding) error {
	ctx, span := startSpan(ctx, "pgstore.SaveBranding", "UPSERT")
	defer span.End()

	_, err := s.pool.Exec(ctx,
		`INSERT INTO branding_settings (org_id, enabled, company_name, primary_color, report_title, footer_text, support_email, support_phone, extra_disclaimer, hide_default_brand)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 ON CONFLICT (org_id) DO UPDATE SET
		 	enabled            = EXCLUDED.enabled,
		 	company_name       = EXCLUDED.company_name,
		 	primary_color      = EXCLUDED.primary_color,
		 	report_title       = EXCLUDED.report_title,
		 	footer_text        = EXCLUDED.footer_text,
		 	support_email      = EXCLUDED.support_email,
		 	support_phone      = EXCLUDED.support_phone,
		 	extra_disclaimer   = EXCLUDED.extra_disclaimer,
		 	hide_default_brand = EXCLUDED.hide_default_brand`,
		b.OrgID, b.Enabled, b.CompanyName, b.PrimaryColor, b.ReportTitle, b.FooterText,
		b.SupportEmail, b.SupportPhone, b.ExtraDisclaimer, b.HideDefaultBrand,
	)
	return spanErr(span, err)
}

func scanReport(row pgx.Row) (*report.Report, error) {
	var (
		r     report.Report
		level string
	)
	if err := row.Scan(&r.ID, &r.OrgID, &r.VendorID, &r.VerificationID, &level, &r.Summary,
		&r.PDFLocator, &r.DriveFileID, &r.ExpiresAt, &r.CreatedAt); err != nil {
		return nil, err
	}
	r.RiskLevel = report.RiskLevel(level)
	return &r, nil
}
