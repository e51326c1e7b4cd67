package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edvin/opsdash/internal/core"
	"github.com/edvin/opsdash/internal/model"
	"github.com/edvin/opsdash/internal/store"
)

func newBackupHandler(t *testing.T) (*Backup, *store.Catalog, string) {
	t.Helper()
	db, err := store.Open(":memory:")
	require.NoError(t, err)
	catalog := store.NewCatalog(db)
	dataDir := t.TempDir()
	svc := core.NewBackupService(
		dataDir, time.Minute,
		nil, nil, nil, catalog, nil, nil,
		core.NewFlights(), nil, zerolog.Nop(),
	)
	return NewBackup(svc), catalog, dataDir
}

func backupRequest(t *testing.T, method, path, id string) *http.Request {
	t.Helper()
	r := httptest.NewRequest(method, path, nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", id)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func TestBackupDownloadServesArtifact(t *testing.T) {
	h, catalog, dataDir := newBackupHandler(t)
	dbFile := filepath.Join(dataDir, "prod", "b1", "database.sql.gz")
	require.NoError(t, os.MkdirAll(filepath.Dir(dbFile), 0o755))
	require.NoError(t, os.WriteFile(dbFile, []byte("dump"), 0o644))
	require.NoError(t, catalog.Append(model.BackupRecord{
		ID: "b1", Environment: "prod", Kind: model.BackupKindDatabase, DatabaseFile: dbFile,
	}))

	rec := httptest.NewRecorder()
	h.Download(rec, backupRequest(t, http.MethodGet, "/backups/b1/download", "b1"))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "dump", rec.Body.String())
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "database.sql.gz")
}

func TestBackupDownloadRejectsMissingFiles(t *testing.T) {
	h, catalog, dataDir := newBackupHandler(t)
	require.NoError(t, catalog.Append(model.BackupRecord{
		ID: "b1", Environment: "prod", Kind: model.BackupKindDatabase,
		DatabaseFile: filepath.Join(dataDir, "prod", "b1", "database.sql.gz"),
	}))

	rec := httptest.NewRecorder()
	h.Download(rec, backupRequest(t, http.MethodGet, "/backups/b1/download", "b1"))

	require.Equal(t, http.StatusNotFound, rec.Code)
	var body struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body.Error, "missing artifact files")
}

func TestBackupDownloadUnknownArtifact(t *testing.T) {
	h, catalog, dataDir := newBackupHandler(t)
	dbFile := filepath.Join(dataDir, "prod", "b1", "database.sql.gz")
	require.NoError(t, os.MkdirAll(filepath.Dir(dbFile), 0o755))
	require.NoError(t, os.WriteFile(dbFile, []byte("dump"), 0o644))
	require.NoError(t, catalog.Append(model.BackupRecord{
		ID: "b1", Environment: "prod", Kind: model.BackupKindDatabase, DatabaseFile: dbFile,
	}))

	rec := httptest.NewRecorder()
	h.Download(rec, backupRequest(t, http.MethodGet, "/backups/b1/download?artifact=bogus", "b1"))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBackupDownloadNotFound(t *testing.T) {
	h, _, _ := newBackupHandler(t)
	rec := httptest.NewRecorder()
	h.Download(rec, backupRequest(t, http.MethodGet, "/backups/ghost/download", "ghost"))
	require.Equal(t, http.StatusNotFound, rec.Code)
}
