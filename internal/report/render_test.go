package report

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"
)

func renderFixture() *RenderInput {
	created := time.Date(2026, time.February, 2, 9, 30, 0, 0, time.UTC)
	return &RenderInput{
		Report: &Report{
			ID:             "01JK3WX8N7Q2R5T8V1Y4Z7B0D3",
			OrgID:          "org-1",
			VendorID:       "vendor-1",
			VerificationID: "verification-1",
			RiskLevel:      RiskLow,
			Summary:        "Registration active, filings current. No adverse indicators found.",
			ExpiresAt:      created.AddDate(0, 0, 8),
			CreatedAt:      created,
		},
		Subject: &Subject{
			VendorName: "Acme Traders",
			Numbers: map[string]string{
				"GST": "27AAPFU0939F1ZV",
				"PAN": "AAPFU0939F",
			},
			CheckType:   "GST",
			CheckStatus: "ACTIVE",
			RawResponse: json.RawMessage(`{"status":"ACTIVE","gst":{"legal_name":"Acme Traders Pvt Ltd"}}`),
			PerformedAt: created,
		},
	}
}

func TestRender_Deterministic(t *testing.T) {
	t.Parallel()

	var r Renderer
	in := renderFixture()

	first, err := r.Render(in)
	if err != nil {
		t.Fatalf("first render: %v", err)
	}
	// Cross a wall-clock second so any date the renderer fails to pin to the
	// report would leak into the trailer and break the comparison.
	time.Sleep(1100 * time.Millisecond)
	second, err := r.Render(in)
	if err != nil {
		t.Fatalf("second render: %v", err)
	}

	if !bytes.Equal(first, second) {
		t.Error("rendering the same report twice must produce identical bytes")
	}
	if !bytes.HasPrefix(first, []byte("%PDF")) {
		t.Errorf("output does not look like a PDF, starts with %q", first[:8])
	}
}

func TestRender_BrandingChangesOutput(t *testing.T) {
	t.Parallel()

	var r Renderer

	plain, err := r.Render(renderFixture())
	if err != nil {
		t.Fatalf("plain render: %v", err)
	}

	branded := renderFixture()
	branded.Branding = &Branding{
		OrgID:            "org-1",
		Enabled:          true,
		CompanyName:      "Tensile Compliance",
		PrimaryColor:     "#1D4ED8",
		ReportTitle:      "Tensile Vendor Report",
		FooterText:       "Tensile Compliance · Confidential",
		HideDefaultBrand: true,
	}
	custom, err := r.Render(branded)
	if err != nil {
		t.Fatalf("branded render: %v", err)
	}

	if bytes.Equal(plain, custom) {
		t.Error("branding settings should change the rendered document")
	}
}

func TestRender_AllRiskLevels(t *testing.T) {
	t.Parallel()

	var r Renderer
	for _, level := range []RiskLevel{RiskLow, RiskMedium, RiskHigh} {
		in := renderFixture()
		in.Report.RiskLevel = level
		if _, err := r.Render(in); err != nil {
			t.Errorf("render with risk %s: %v", level, err)
		}
	}
}

func TestHexToRGB(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		r, g, b int
	}{
		{"#1D4ED8", 29, 78, 216},
		{"#ffffff", 255, 255, 255},
		{"#000000", 0, 0, 0},
		{"not-a-color", 249, 115, 22}, // falls back to the default accent
		{"", 249, 115, 22},
	}
	for _, tt := range tests {
		r, g, b := hexToRGB(tt.in)
		if r != tt.r || g != tt.g || b != tt.b {
			t.Errorf("hexToRGB(%q) = (%d,%d,%d), want (%d,%d,%d)", tt.in, r, g, b, tt.r, tt.g, tt.b)
		}
	}
}
