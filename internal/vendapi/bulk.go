package vendapi

import (
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// maxUploadBytes caps bulk upload request bodies.
const maxUploadBytes = 5 << 20

func (a *API) handleCreateBulkUpload(w http.ResponseWriter, r *http.Request) {
	p, ok := a.principal(w, r)
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		a.writeError(w, http.StatusBadRequest, "INVALID_PAYLOAD", "expected multipart form with a file field")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		a.writeError(w, http.StatusBadRequest, "INVALID_PAYLOAD", "file field is required")
		return
	}
	defer file.Close()

	content, err := io.ReadAll(io.LimitReader(file, maxUploadBytes+1))
	if err != nil {
		a.writeDomainError(w, r, err)
		return
	}
	if len(content) > maxUploadBytes {
		a.writeError(w, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", "upload exceeds size limit")
		return
	}

	job, err := a.bulk.CreateJob(r.Context(), p.OrgID, p.UserID, header.Filename, content)
	if err != nil {
		a.writeDomainError(w, r, err)
		return
	}
	a.writeJSON(w, http.StatusCreated, job)
}

func (a *API) handleListBulkUploads(w http.ResponseWriter, r *http.Request) {
	p, ok := a.principal(w, r)
	if !ok {
		return
	}

	jobs, err := a.bulk.ListJobs(r.Context(), p.OrgID)
	if err != nil {
		a.writeDomainError(w, r, err)
		return
	}
	a.writeJSON(w, http.StatusOK, map[string]any{"jobs": jobs})
}

func (a *API) handleGetBulkUpload(w http.ResponseWriter, r *http.Request) {
	p, ok := a.principal(w, r)
	if !ok {
		return
	}

	job, found, err := a.bulk.Job(r.Context(), p.OrgID, chi.URLParam(r, "id"))
	if err != nil {
		a.writeDomainError(w, r, err)
		return
	}
	if !found {
		a.writeError(w, http.StatusNotFound, "NOT_FOUND", "job not found")
		return
	}
	a.writeJSON(w, http.StatusOK, job)
}
