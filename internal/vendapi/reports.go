package vendapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"

	"github.com/go-chi/chi/v5"
	"github.com/linnemanlabs/vet/internal/report"
)

func (a *API) handleListReports(w http.ResponseWriter, r *http.Request) {
	p, ok := a.principal(w, r)
	if !ok {
		return
	}

	list, err := a.reports.List(r.Context(), p.OrgID)
	if err != nil {
		a.writeDomainError(w, r, err)
		return
	}
	a.writeJSON(w, http.StatusOK, map[string]any{"reports": list})
}

func (a *API) handleGetReport(w http.ResponseWriter, r *http.Request) {
	p, ok := a.principal(w, r)
	if !ok {
		return
	}

	rep, err := a.reports.Get(r.Context(), p.OrgID, chi.URLParam(r, "id"))
	if err != nil {
		a.writeDomainError(w, r, err)
		return
	}
	a.writeJSON(w, http.StatusOK, rep)
}

func (a *API) handleReportPDF(w http.ResponseWriter, r *http.Request) {
	p, ok := a.principal(w, r)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	data, err := a.reports.PDF(r.Context(), p.OrgID, id)
	if err != nil {
		a.writeDomainError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="verification-report-%s.pdf"`, id))
	_, _ = w.Write(data)
}

func (a *API) handleExportReport(w http.ResponseWriter, r *http.Request) {
	p, ok := a.principal(w, r)
	if !ok {
		return
	}

	locator, err := a.reports.ExportToStorage(r.Context(), p.OrgID, chi.URLParam(r, "id"))
	if err != nil {
		a.writeDomainError(w, r, err)
		return
	}
	a.writeJSON(w, http.StatusOK, map[string]string{"locator": locator})
}

func (a *API) handleExportReportToDrive(w http.ResponseWriter, r *http.Request) {
	p, ok := a.principal(w, r)
	if !ok {
		return
	}

	res, err := a.reports.ExportToDrive(r.Context(), p.OrgID, p.UserID, chi.URLParam(r, "id"))
	if err != nil {
		a.writeDomainError(w, r, err)
		return
	}
	a.writeJSON(w, http.StatusOK, res)
}

var hexColorRe = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

func (a *API) handleGetBranding(w http.ResponseWriter, r *http.Request) {
	p, ok := a.principal(w, r)
	if !ok {
		return
	}

	b, found, err := a.branding.Branding(r.Context(), p.OrgID)
	if err != nil {
		a.writeDomainError(w, r, err)
		return
	}
	if !found {
		b = &report.Branding{OrgID: p.OrgID}
	}
	a.writeJSON(w, http.StatusOK, b)
}

func (a *API) handleSaveBranding(w http.ResponseWriter, r *http.Request) {
	p, ok := a.principal(w, r)
	if !ok {
		return
	}

	var b report.Branding
	if err := json.NewDecoder(r.Body).Decode(&b); err != nil {
		a.writeError(w, http.StatusBadRequest, "INVALID_PAYLOAD", "invalid request body")
		return
	}
	if b.PrimaryColor != "" && !hexColorRe.MatchString(b.PrimaryColor) {
		a.writeError(w, http.StatusBadRequest, "INVALID_PAYLOAD", "primary_color must be #RRGGBB")
		return
	}
	b.OrgID = p.OrgID

	if err := a.branding.SaveBranding(r.Context(), &b); err != nil {
		a.writeDomainError(w, r, err)
		return
	}
	a.writeJSON(w, http.StatusOK, &b)
}
