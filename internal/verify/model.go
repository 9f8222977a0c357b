// Package verify orchestrates the vendor verification pipeline: credit
// admission, registry lookup, persistence, AI risk summary, report creation,
// billing, and audit.
package verify

import (
	"encoding/json"
	"strings"
	"time"
)

// CheckType identifies which registry check a verification runs.
type CheckType string

const (
	TypeGST     CheckType = "GST"
	TypePAN     CheckType = "PAN"
	TypeAadhaar CheckType = "AADHAAR"
	TypeBank    CheckType = "BANK"
	TypeCIN     CheckType = "CIN"
	TypeDIN     CheckType = "DIN"
)

// KnownCheckType reports whether t is a supported check type.
func KnownCheckType(t CheckType) bool {
	switch t {
	case TypeGST, TypePAN, TypeAadhaar, TypeBank, TypeCIN, TypeDIN:
		return true
	}
	return false
}

// Vendor is a business entity an org has verified. Numbers accumulates the
// identifying numbers seen across verifications, keyed by check type.
type Vendor struct {
	ID        string               `json:"id"`
	OrgID     string               `json:"org_id"`
	Name      string               `json:"name"`
	Numbers   map[CheckType]string `json:"numbers"`
	CreatedAt time.Time            `json:"created_at"`
	UpdatedAt time.Time            `json:"updated_at"`
}

// Verification is one immutable registry check run against a vendor.
type Verification struct {
	ID          string          `json:"id"`
	OrgID       string          `json:"org_id"`
	VendorID    string          `json:"vendor_id"`
	Type        CheckType       `json:"type"`
	Number      string          `json:"number"`
	RawRequest  json.RawMessage `json:"raw_request,omitempty"`
	RawResponse json.RawMessage `json:"raw_response,omitempty"`
	Status      string          `json:"status"`
	PerformedBy string          `json:"performed_by"`
	CreatedAt   time.Time       `json:"created_at"`
}

// VendorData is the structured slice of a registry response. Registry
// payloads nest the per-type details under a field named after the check
// type in lowercase; anything that does not parse stays available as Raw.
type VendorData struct {
	Type    CheckType       `json:"type"`
	Name    string          `json:"name,omitempty"`
	Status  string          `json:"status,omitempty"`
	Details json.RawMessage `json:"details,omitempty"`
	Raw     json.RawMessage `json:"raw"`
}

// ParseVendorData extracts the per-type details from a raw registry response.
// It never fails: unparseable payloads yield a VendorData carrying only Raw.
func ParseVendorData(t CheckType, raw json.RawMessage) *VendorData {
	vd := &VendorData{Type: t, Raw: raw}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return vd
	}

	if s, ok := envelope["status"]; ok {
		_ = json.Unmarshal(s, &vd.Status)
	}

	details, ok := envelope[strings.ToLower(string(t))]
	if !ok {
		details, ok = envelope["data"]
	}
	if !ok {
		return vd
	}
	vd.Details = details

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(details, &fields); err != nil {
		return vd
	}
	for _, key := range []string{"legal_name", "business_name", "name"} {
		if v, ok := fields[key]; ok {
			var name string
			if json.Unmarshal(v, &name) == nil && name != "" {
				vd.Name = name
				break
			}
		}
	}
	return vd
}

// Request is a verification submission.
type Request struct {
	OrgID      string    `json:"-"`
	ActorID    string    `json:"-"`
	VendorName string    `json:"vendor_name"`
	Type       CheckType `json:"type"`
	Number     string    `json:"number"`
}
