package vendapi

import (
	"encoding/json"
	"net/http"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/go-chi/chi/v5"
	"github.com/linnemanlabs/vet/internal/verify"
)

func (a *API) handleCreateVerification(w http.ResponseWriter, r *http.Request) {
	p, ok := a.principal(w, r)
	if !ok {
		return
	}

	var req verify.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.writeError(w, http.StatusBadRequest, "INVALID_PAYLOAD", "invalid request body")
		return
	}
	req.OrgID = p.OrgID
	req.ActorID = p.UserID
	req.Type = verify.CheckType(strings.ToUpper(string(req.Type)))
	req.VendorName = strings.TrimSpace(req.VendorName)
	req.Number = strings.TrimSpace(req.Number)

	if req.VendorName == "" || req.Number == "" {
		a.writeError(w, http.StatusBadRequest, "INVALID_PAYLOAD", "vendor_name and number are required")
		return
	}

	span := trace.SpanFromContext(r.Context())
	span.SetAttributes(
		attribute.String("vet.verification.type", string(req.Type)),
		attribute.String("vet.org.id", p.OrgID),
	)

	result, err := a.verify.Verify(r.Context(), &req)
	if err != nil {
		a.writeDomainError(w, r, err)
		return
	}

	span.SetAttributes(attribute.String("vet.report.risk_level", string(result.RiskLevel)))
	a.writeJSON(w, http.StatusCreated, result)
}

func (a *API) handleListVerifications(w http.ResponseWriter, r *http.Request) {
	p, ok := a.principal(w, r)
	if !ok {
		return
	}

	list, err := a.verify.ListVerifications(r.Context(), p.OrgID)
	if err != nil {
		a.writeDomainError(w, r, err)
		return
	}
	a.writeJSON(w, http.StatusOK, map[string]any{"verifications": list})
}

func (a *API) handleGetVerification(w http.ResponseWriter, r *http.Request) {
	p, ok := a.principal(w, r)
	if !ok {
		return
	}

	v, found, err := a.verify.Verification(r.Context(), p.OrgID, chi.URLParam(r, "id"))
	if err != nil {
		a.writeDomainError(w, r, err)
		return
	}
	if !found {
		a.writeError(w, http.StatusNotFound, "NOT_FOUND", "verification not found")
		return
	}
	a.writeJSON(w, http.StatusOK, v)
}

func (a *API) handleListVendors(w http.ResponseWriter, r *http.Request) {
	p, ok := a.principal(w, r)
	if !ok {
		return
	}

	list, err := a.verify.ListVendors(r.Context(), p.OrgID)
	if err != nil {
		a.writeDomainError(w, r, err)
		return
	}
	a.writeJSON(w, http.StatusOK, map[string]any{"vendors": list})
}

func (a *API) handleGetVendor(w http.ResponseWriter, r *http.Request) {
	p, ok := a.principal(w, r)
	if !ok {
		return
	}

	v, found, err := a.verify.Vendor(r.Context(), p.OrgID, chi.URLParam(r, "id"))
	if err != nil {
		a.writeDomainError(w, r, err)
		return
	}
	if !found {
		a.writeError(w, http.StatusNotFound, "NOT_FOUND", "vendor not found")
		return
	}
	a.writeJSON(w, http.StatusOK, v)
}
