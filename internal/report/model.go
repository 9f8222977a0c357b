// Package report owns the report entity lifecycle: creation at verification
// completion, PDF rendering, export to object storage, and export to a
// connected third-party drive.
package report

import (
	"encoding/json"
	"time"
)

// RiskLevel is the coarse assessment produced by the summarizer.
type RiskLevel string

const (
	RiskLow    RiskLevel = "LOW"
	RiskMedium RiskLevel = "MEDIUM"
	RiskHigh   RiskLevel = "HIGH"
)

// Valid reports whether l is one of the known risk levels.
func (l RiskLevel) Valid() bool {
	switch l {
	case RiskLow, RiskMedium, RiskHigh:
		return true
	}
	return false
}

// ValidityDays is the report validity window in days past the upcoming
// local midnight.
const ValidityDays = 7

// Report is the user-facing artifact produced by a verification.
// PDFLocator and DriveFileID are populated lazily and overwritten in place.
type Report struct {
	ID             string    `json:"id"`
	OrgID          string    `json:"org_id"`
	VendorID       string    `json:"vendor_id"`
	VerificationID string    `json:"verification_id"`
	RiskLevel      RiskLevel `json:"risk_level"`
	Summary        string    `json:"summary"`
	PDFLocator     string    `json:"pdf_locator,omitempty"`
	DriveFileID    string    `json:"drive_file_id,omitempty"`
	ExpiresAt      time.Time `json:"expires_at"`
	CreatedAt      time.Time `json:"created_at"`
}

// Stale reports whether the report is past its validity window. Staleness is
// advisory for display only; it never triggers deletion or enforcement.
func (r *Report) Stale(now time.Time) bool {
	return now.After(r.ExpiresAt)
}

// ExpiryFrom computes the validity deadline for a report created at now:
// the upcoming midnight in loc, plus ValidityDays days.
func ExpiryFrom(now time.Time, loc *time.Location) time.Time {
	local := now.In(loc)
	midnight := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	return midnight.AddDate(0, 0, 1+ValidityDays)
}

// Branding holds an org's white-label settings for rendered reports.
type Branding struct {
	OrgID            string `json:"org_id"`
	Enabled          bool   `json:"enabled"`
	CompanyName      string `json:"company_name,omitempty"`
	PrimaryColor     string `json:"primary_color,omitempty"` // #RRGGBB
	ReportTitle      string `json:"report_title,omitempty"`
	FooterText       string `json:"footer_text,omitempty"`
	SupportEmail     string `json:"support_email,omitempty"`
	SupportPhone     string `json:"support_phone,omitempty"`
	ExtraDisclaimer  string `json:"extra_disclaimer,omitempty"`
	HideDefaultBrand bool   `json:"hide_default_brand,omitempty"`
}

// Subject is the vendor/verification context a report is rendered from.
type Subject struct {
	VendorName  string
	Numbers     map[string]string // check type -> identifying number
	CheckType   string
	CheckStatus string
	RawResponse json.RawMessage
	PerformedAt time.Time
}
