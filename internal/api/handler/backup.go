package handler

import (
	"net/http"
	"path/filepath"

	"github.com/go-chi/chi/v5"

	"github.com/edvin/opsdash/internal/api/request"
	"github.com/edvin/opsdash/internal/api/response"
	"github.com/edvin/opsdash/internal/core"
	"github.com/edvin/opsdash/internal/model"
)

type Backup struct {
	svc *core.BackupService
}

func NewBackup(svc *core.BackupService) *Backup {
	return &Backup{svc: svc}
}

func (h *Backup) List(w http.ResponseWriter, r *http.Request) {
	backups, err := h.svc.List(r.URL.Query().Get("environment"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, backups)
}

func (h *Backup) ListByEnvironment(w http.ResponseWriter, r *http.Request) {
	env, err := request.RequireID(chi.URLParam(r, "env"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	backups, err := h.svc.List(env)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, backups)
}

func (h *Backup) Create(w http.ResponseWriter, r *http.Request) {
	env, err := request.RequireID(chi.URLParam(r, "env"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req request.CreateBackup
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	record, err := h.svc.Create(r.Context(), env, req.Kind, req.Description, model.AuditTriggerManual)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if req.UploadAfterCreate {
		if err := h.svc.Upload(r.Context(), record.ID); err != nil {
			// The backup itself exists; surface the upload failure.
			writeServiceError(w, err)
			return
		}
		if refreshed, err := h.svc.Get(record.ID); err == nil {
			record = refreshed
		}
	}
	response.WriteJSON(w, http.StatusCreated, record)
}

// Download streams one of a backup's artifacts to the client.
func (h *Backup) Download(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	record, err := h.svc.Get(id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if !record.FilesExist {
		response.WriteError(w, http.StatusNotFound, "backup "+id+" has missing artifact files")
		return
	}

	artifact := r.URL.Query().Get("artifact")
	if artifact == "" {
		if record.IncludesDatabase() {
			artifact = "database"
		} else {
			artifact = "filestore"
		}
	}
	var path string
	switch artifact {
	case "database":
		path = record.DatabaseFile
	case "filestore":
		path = record.FilestoreFile
	default:
		response.WriteError(w, http.StatusBadRequest, "artifact must be database or filestore")
		return
	}
	if path == "" {
		response.WriteError(w, http.StatusNotFound, "backup has no "+artifact+" artifact")
		return
	}

	w.Header().Set("Content-Disposition", `attachment; filename="`+filepath.Base(path)+`"`)
	http.ServeFile(w, r, path)
}

func (h *Backup) Get(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	record, err := h.svc.Get(id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, record)
}

func (h *Backup) Upload(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.svc.Upload(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, map[string]string{"backup_id": id, "status": "uploaded"})
}

func (h *Backup) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.svc.Delete(id); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
