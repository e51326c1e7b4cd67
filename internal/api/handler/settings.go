package handler

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/edvin/opsdash/internal/api/request"
	"github.com/edvin/opsdash/internal/api/response"
	"github.com/edvin/opsdash/internal/core"
	"github.com/edvin/opsdash/internal/model"
)

// SettingsStore is the settings persistence the handler needs.
type SettingsStore interface {
	Load() (model.BackupSettings, error)
	Save(settings model.BackupSettings) error
}

type Settings struct {
	store      SettingsStore
	newBackend core.BackendFactory
	logger     zerolog.Logger
}

func NewSettings(store SettingsStore, newBackend core.BackendFactory, logger zerolog.Logger) *Settings {
	return &Settings{store: store, newBackend: newBackend, logger: logger}
}

// Get returns the settings with secrets redacted.
func (h *Settings) Get(w http.ResponseWriter, r *http.Request) {
	settings, err := h.store.Load()
	if err != nil {
		writeServiceError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, redact(settings))
}

// Update replaces the settings. Blank secrets in the request keep the
// stored values, so a UI can round-trip the redacted Get response.
func (h *Settings) Update(w http.ResponseWriter, r *http.Request) {
	var req request.UpdateSettings
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	current, err := h.store.Load()
	if err != nil {
		writeServiceError(w, err)
		return
	}

	settings := model.BackupSettings{
		StorageBackend: req.StorageBackend,
		S3: model.S3Settings{
			Endpoint:  req.S3.Endpoint,
			Bucket:    req.S3.Bucket,
			AccessKey: req.S3.AccessKey,
			SecretKey: req.S3.SecretKey,
			Region:    req.S3.Region,
		},
		Rsync: model.RsyncSettings{
			Host:       req.Rsync.Host,
			Username:   req.Rsync.Username,
			RemotePath: req.Rsync.RemotePath,
			SSHKeyPath: req.Rsync.SSHKeyPath,
		},
		Retention: model.RetentionSettings{
			LocalDays:  req.Retention.LocalDays,
			RemoteDays: req.Retention.RemoteDays,
		},
	}
	if settings.S3.SecretKey == "" {
		settings.S3.SecretKey = current.S3.SecretKey
	}
	if settings.S3.AccessKey == "" {
		settings.S3.AccessKey = current.S3.AccessKey
	}

	if err := h.store.Save(settings); err != nil {
		writeServiceError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, redact(settings))
}

// TestConnection verifies the currently stored backend is reachable.
func (h *Settings) TestConnection(w http.ResponseWriter, r *http.Request) {
	settings, err := h.store.Load()
	if err != nil {
		writeServiceError(w, err)
		return
	}
	backend, err := h.newBackend(settings, h.logger)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if err := backend.TestConnection(r.Context()); err != nil {
		writeServiceError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, map[string]string{"backend": backend.Name(), "status": "ok"})
}

func redact(settings model.BackupSettings) model.BackupSettings {
	if settings.S3.SecretKey != "" {
		settings.S3.SecretKey = ""
	}
	if settings.S3.AccessKey != "" {
		settings.S3.AccessKey = ""
	}
	return settings
}
