package report

import (
	"bytes"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/go-pdf/fpdf"
)

const (
	defaultPrimaryColor = "#F97316"
	defaultReportTitle  = "Vendor Compliance Verification Report"
	defaultFooter       = "Powered by Vet Vendor Compliance"
	maxSummaryChars     = 2000
)

const disclaimerText = `Important Notice:

This automated verification report is provided for informational purposes only. The data is sourced from government registries and third-party APIs. While we strive for accuracy, we do not guarantee the completeness or timeliness of the information.

Users must manually review all verification results, conduct independent due diligence, and not rely solely on this report for business decisions.

The platform and its operators are not liable for any losses or damages arising from the use of this report. This report is valid for 7 days from its generation date.`

// RenderInput carries everything a report PDF is built from. Rendering is
// pure: identical inputs produce byte-identical output.
type RenderInput struct {
	Report   *Report
	Subject  *Subject
	Branding *Branding // nil when the org has no branding settings row
}

// Renderer produces the fixed nine-section report PDF.
type Renderer struct{}

// Render builds the PDF. The document creation and modification dates are
// both taken from the report's own creation time so repeated renders are
// byte-identical; fpdf would otherwise stamp the wall clock into the trailer.
func (Renderer) Render(in *RenderInput) ([]byte, error) {
	if in == nil || in.Report == nil || in.Subject == nil {
		return nil, fmt.Errorf("render: report and subject are required")
	}

	b := in.Branding
	whiteLabel := b != nil && b.Enabled

	primary := defaultPrimaryColor
	if whiteLabel && b.PrimaryColor != "" {
		primary = b.PrimaryColor
	}
	pr, pg, pb := hexToRGB(primary)

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetCatalogSort(true)
	pdf.SetCreationDate(in.Report.CreatedAt.UTC())
	pdf.SetModificationDate(in.Report.CreatedAt.UTC())
	pdf.SetMargins(20, 25, 20)
	pdf.SetAutoPageBreak(true, 25)

	footer := defaultFooter
	if whiteLabel {
		footer = b.FooterText
		if footer == "" && !b.HideDefaultBrand {
			footer = defaultFooter
		}
	}
	pdf.SetFooterFunc(func() {
		pdf.SetY(-18)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.SetTextColor(120, 120, 120)
		pdf.CellFormat(0, 5, footer, "", 1, "C", false, 0, "")
		pdf.CellFormat(0, 5, fmt.Sprintf("Page %d", pdf.PageNo()), "", 0, "C", false, 0, "")
	})

	heading := func(text string) {
		pdf.SetFont("Helvetica", "B", 14)
		pdf.SetTextColor(pr, pg, pb)
		pdf.CellFormat(0, 9, text, "", 1, "L", false, 0, "")
		pdf.Ln(2)
	}
	body := func(text string) {
		pdf.SetFont("Helvetica", "", 10)
		pdf.SetTextColor(0, 0, 0)
		pdf.MultiCell(0, 5, text, "", "L", false)
		pdf.Ln(2)
	}
	kvTable := func(rows [][2]string) {
		pdf.SetFont("Helvetica", "", 10)
		for _, row := range rows {
			pdf.SetFillColor(250, 240, 230)
			pdf.SetTextColor(0, 0, 0)
			pdf.SetFont("Helvetica", "B", 10)
			pdf.CellFormat(80, 8, row[0], "1", 0, "L", true, 0, "")
			pdf.SetFont("Helvetica", "", 10)
			pdf.CellFormat(90, 8, row[1], "1", 1, "L", false, 0, "")
		}
		pdf.Ln(3)
	}
	headerRow := func(cols []string, widths []float64) {
		pdf.SetFillColor(pr, pg, pb)
		pdf.SetTextColor(255, 255, 255)
		pdf.SetFont("Helvetica", "B", 9)
		for i, c := range cols {
			pdf.CellFormat(widths[i], 7, c, "1", 0, "L", true, 0, "")
		}
		pdf.Ln(-1)
	}
	dataRow := func(cols []string, widths []float64) {
		pdf.SetTextColor(0, 0, 0)
		pdf.SetFont("Helvetica", "", 9)
		for i, c := range cols {
			pdf.CellFormat(widths[i], 7, c, "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	created := in.Report.CreatedAt.UTC().Format("02 January 2006, 15:04 MST")
	performed := in.Subject.PerformedAt.UTC().Format("02-01-2006 15:04")

	// 1. Cover page
	pdf.AddPage()
	title := defaultReportTitle
	if whiteLabel && b.ReportTitle != "" {
		title = b.ReportTitle
	}
	pdf.Ln(30)
	pdf.SetFont("Helvetica", "B", 24)
	pdf.SetTextColor(pr, pg, pb)
	pdf.MultiCell(0, 12, title, "", "C", false)
	pdf.Ln(10)
	pdf.SetFont("Helvetica", "", 11)
	pdf.SetTextColor(0, 0, 0)
	pdf.CellFormat(0, 7, "Report ID: "+in.Report.ID, "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 7, "Generated: "+created, "", 1, "L", false, 0, "")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 9, "Vendor: "+in.Subject.VendorName, "", 1, "L", false, 0, "")
	pdf.Ln(15)
	pdf.SetFont("Helvetica", "I", 10)
	switch {
	case whiteLabel && b.CompanyName != "":
		pdf.CellFormat(0, 6, "Issued by: "+b.CompanyName, "", 1, "L", false, 0, "")
	case !whiteLabel:
		pdf.CellFormat(0, 6, defaultFooter, "", 1, "L", false, 0, "")
	}

	// 2. Vendor overview
	pdf.AddPage()
	heading("2. Vendor Overview & Summary")
	rows := [][2]string{{"Business Name", in.Subject.VendorName}}
	for _, t := range sortedKeys(in.Subject.Numbers) {
		rows = append(rows, [2]string{t, in.Subject.Numbers[t]})
	}
	rows = append(rows,
		[2]string{"Verification Type", in.Subject.CheckType},
		[2]string{"Status", in.Subject.CheckStatus},
	)
	kvTable(rows)

	// 3. Risk dashboard
	heading("3. Risk Assessment Dashboard")
	rr, rg, rb := riskColor(in.Report.RiskLevel)
	pdf.SetFillColor(rr, rg, rb)
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 14, "RISK LEVEL: "+string(in.Report.RiskLevel), "1", 1, "C", true, 0, "")
	pdf.Ln(4)
	body("Summary:\n" + truncate(in.Report.Summary, maxSummaryChars))

	// 4. Data sources
	heading("4. Data Sources & Verification Logic")
	w3 := []float64{70, 50, 50}
	headerRow([]string{"Data Source", "Status", "Timestamp"}, w3)
	dataRow([]string{"Government Registry", "Verified", performed}, w3)
	dataRow([]string{"Verification Provider", "Connected", performed}, w3)
	dataRow([]string{"AI Risk Analysis", "Completed", performed}, w3)
	pdf.Ln(3)

	// 5. Detailed check results
	pdf.AddPage()
	heading("5. Detailed Check Results")
	headerRow([]string{"Check Type", "Result", "Details"}, w3)
	dataRow([]string{in.Subject.CheckType, in.Subject.CheckStatus, "Verification completed"}, w3)
	pdf.Ln(3)
	body("Raw registry response:\n" + truncate(string(in.Subject.RawResponse), maxSummaryChars))

	// 6. Risk analysis and recommendations
	heading("6. Risk Analysis & Recommendations")
	body("Automated Risk Assessment:\n" + truncate(in.Report.Summary, maxSummaryChars))
	body("Recommended Actions:\n" +
		"- Review all verification details carefully\n" +
		"- Conduct manual due diligence if risk level is HIGH\n" +
		"- Request additional documentation if needed")

	// 7. Supporting documents
	heading("7. Supporting Documents")
	body("All submitted verification data has been recorded and is available in the system.")

	// 8. Compliance and audit timeline
	heading("8. Compliance & Audit Trail")
	headerRow([]string{"Action", "Timestamp", "Status"}, w3)
	dataRow([]string{"Verification Initiated", performed, "Complete"}, w3)
	dataRow([]string{"Registry Data Fetched", performed, "Complete"}, w3)
	dataRow([]string{"AI Analysis", performed, "Complete"}, w3)
	dataRow([]string{"Report Generated", created, "Complete"}, w3)
	pdf.Ln(3)

	// 9. Legal disclaimer
	heading("9. Legal Disclaimer & Terms")
	text := disclaimerText
	if whiteLabel && b.ExtraDisclaimer != "" {
		text += "\n\n" + b.ExtraDisclaimer
	}
	body(text)
	if whiteLabel && (b.SupportEmail != "" || b.SupportPhone != "") {
		body(fmt.Sprintf("For support, contact: %s | %s", b.SupportEmail, b.SupportPhone))
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}

func riskColor(l RiskLevel) (r, g, b int) {
	switch l {
	case RiskLow:
		return 16, 185, 129
	case RiskHigh:
		return 220, 38, 38
	default:
		return 249, 115, 22
	}
}

// hexToRGB parses #RRGGBB, falling back to the default primary color.
func hexToRGB(hex string) (r, g, b int) {
	s := strings.TrimPrefix(hex, "#")
	if len(s) != 6 {
		s = strings.TrimPrefix(defaultPrimaryColor, "#")
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		v, _ = strconv.ParseUint(strings.TrimPrefix(defaultPrimaryColor, "#"), 16, 32)
	}
	return int(v >> 16 & 0xff), int(v >> 8 & 0xff), int(v & 0xff)
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit-3] + "..."
}
