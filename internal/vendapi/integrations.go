package vendapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/linnemanlabs/vet/internal/audit"
	"github.com/linnemanlabs/vet/internal/drive"
)

func (a *API) handleDriveStatus(w http.ResponseWriter, r *http.Request) {
	p, ok := a.principal(w, r)
	if !ok {
		return
	}

	in, found, err := a.integrations.Integration(r.Context(), p.OrgID)
	if err != nil {
		a.writeDomainError(w, r, err)
		return
	}
	if !found {
		in = &drive.Integration{OrgID: p.OrgID}
	}
	a.writeJSON(w, http.StatusOK, in)
}

func (a *API) handleDriveAuthURL(w http.ResponseWriter, r *http.Request) {
	p, ok := a.principal(w, r)
	if !ok {
		return
	}

	a.writeJSON(w, http.StatusOK, map[string]string{
		"url": a.connector.AuthURL(p.OrgID),
	})
}

func (a *API) handleDriveConnect(w http.ResponseWriter, r *http.Request) {
	p, ok := a.principal(w, r)
	if !ok {
		return
	}

	var req struct {
		Code string `json:"code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Code == "" {
		a.writeError(w, http.StatusBadRequest, "INVALID_PAYLOAD", "code is required")
		return
	}

	tok, err := a.connector.Exchange(r.Context(), req.Code)
	if err != nil {
		a.writeDomainError(w, r, err)
		return
	}

	in := &drive.Integration{
		OrgID:        p.OrgID,
		Connected:    true,
		Email:        tok.Email,
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		ConnectedAt:  time.Now(),
	}
	if err := a.integrations.SaveIntegration(r.Context(), in); err != nil {
		a.writeDomainError(w, r, err)
		return
	}

	a.auditor.Record(r.Context(), p.OrgID, p.UserID, audit.ActionDriveConnected, audit.TargetIntegration, p.OrgID, map[string]string{
		"email": tok.Email,
	})
	a.writeJSON(w, http.StatusOK, in)
}
