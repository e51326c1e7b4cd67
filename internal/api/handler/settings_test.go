package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edvin/opsdash/internal/core"
	"github.com/edvin/opsdash/internal/errdefs"
	"github.com/edvin/opsdash/internal/model"
	"github.com/edvin/opsdash/internal/storage"
)

type memSettingsStore struct {
	settings model.BackupSettings
}

func (s *memSettingsStore) Load() (model.BackupSettings, error) { return s.settings, nil }
func (s *memSettingsStore) Save(settings model.BackupSettings) error {
	s.settings = settings
	return nil
}

type okBackend struct{ name string }

func (b okBackend) Name() string                                { return b.name }
func (b okBackend) TestConnection(_ context.Context) error      { return nil }
func (b okBackend) Upload(_ context.Context, _, _ string) error { return nil }

func staticFactory(backend storage.Backend, err error) core.BackendFactory {
	return func(model.BackupSettings, zerolog.Logger) (storage.Backend, error) {
		return backend, err
	}
}

func TestSettingsGetRedactsSecrets(t *testing.T) {
	store := &memSettingsStore{settings: model.BackupSettings{
		StorageBackend: model.StorageBackendS3,
		S3:             model.S3Settings{Bucket: "backups", AccessKey: "AK", SecretKey: "SK"},
	}}
	h := NewSettings(store, staticFactory(okBackend{name: "s3"}, nil), zerolog.Nop())

	rec := httptest.NewRecorder()
	h.Get(rec, httptest.NewRequest(http.MethodGet, "/settings/backup", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "SK")
	assert.NotContains(t, rec.Body.String(), "AK")
	assert.Contains(t, rec.Body.String(), "backups")
}

func TestSettingsUpdateKeepsStoredSecretsWhenBlank(t *testing.T) {
	store := &memSettingsStore{settings: model.BackupSettings{
		StorageBackend: model.StorageBackendS3,
		S3:             model.S3Settings{Bucket: "backups", AccessKey: "AK", SecretKey: "SK"},
	}}
	h := NewSettings(store, staticFactory(okBackend{name: "s3"}, nil), zerolog.Nop())

	body := `{"storage_backend":"s3","s3":{"endpoint":"minio:9000","bucket":"backups"},"retention":{"local_days":14,"remote_days":60}}`
	rec := httptest.NewRecorder()
	h.Update(rec, httptest.NewRequest(http.MethodPut, "/settings/backup", strings.NewReader(body)))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "SK", store.settings.S3.SecretKey, "blank secret keeps stored value")
	assert.Equal(t, "AK", store.settings.S3.AccessKey)
	assert.Equal(t, 14, store.settings.Retention.LocalDays)
	assert.NotContains(t, rec.Body.String(), "SK")
}

func TestSettingsUpdateRejectsUnknownBackend(t *testing.T) {
	h := NewSettings(&memSettingsStore{settings: model.DefaultBackupSettings()},
		staticFactory(okBackend{}, nil), zerolog.Nop())

	body := `{"storage_backend":"ftp"}`
	rec := httptest.NewRecorder()
	h.Update(rec, httptest.NewRequest(http.MethodPut, "/settings/backup", strings.NewReader(body)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSettingsTestConnection(t *testing.T) {
	store := &memSettingsStore{settings: model.DefaultBackupSettings()}

	h := NewSettings(store, staticFactory(okBackend{name: "local"}, nil), zerolog.Nop())
	rec := httptest.NewRecorder()
	h.TestConnection(rec, httptest.NewRequest(http.MethodPost, "/settings/backup/test", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "local", body["backend"])
}

func TestSettingsTestConnectionMisconfigured(t *testing.T) {
	h := NewSettings(&memSettingsStore{settings: model.DefaultBackupSettings()},
		staticFactory(nil, &errdefs.ConfigurationError{Backend: "s3", Msg: "bucket required"}), zerolog.Nop())

	rec := httptest.NewRecorder()
	h.TestConnection(rec, httptest.NewRequest(http.MethodPost, "/settings/backup/test", nil))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}
