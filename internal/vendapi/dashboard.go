package vendapi

import "net/http"

func (a *API) handleGetCredits(w http.ResponseWriter, r *http.Request) {
	p, ok := a.principal(w, r)
	if !ok {
		return
	}

	acct, found, err := a.credits.Account(r.Context(), p.OrgID)
	if err != nil {
		a.writeDomainError(w, r, err)
		return
	}
	if !found {
		a.writeError(w, http.StatusNotFound, "NOT_FOUND", "no credit account for organization")
		return
	}
	a.writeJSON(w, http.StatusOK, acct)
}

func (a *API) handleDashboardStats(w http.ResponseWriter, r *http.Request) {
	p, ok := a.principal(w, r)
	if !ok {
		return
	}

	vendors, verifications, err := a.verify.Counts(r.Context(), p.OrgID)
	if err != nil {
		a.writeDomainError(w, r, err)
		return
	}
	stats, err := a.reports.Stats(r.Context(), p.OrgID)
	if err != nil {
		a.writeDomainError(w, r, err)
		return
	}

	var balance int
	if acct, found, err := a.credits.Account(r.Context(), p.OrgID); err == nil && found {
		balance = acct.CurrentBalance
	}

	a.writeJSON(w, http.StatusOK, map[string]any{
		"vendors":        vendors,
		"verifications":  verifications,
		"reports":        stats,
		"credit_balance": balance,
	})
}
