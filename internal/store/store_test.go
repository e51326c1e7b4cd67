package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/edvin/opsdash/internal/errdefs"
	"github.com/edvin/opsdash/internal/model"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.BackupRecord{}, &model.ScheduleConfig{}))
	return db
}

func writeArtifact(t *testing.T, dir, name string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("artifact"), 0o644))
	return path
}

func TestCatalogAppendListGet(t *testing.T) {
	catalog := NewCatalog(testDB(t))
	dir := filepath.Join(t.TempDir(), "prod", "prod_full_20260115_020000")
	dbFile := writeArtifact(t, dir, "database.sql.gz")
	fsFile := writeArtifact(t, dir, "filestore.tar.gz")

	now := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, catalog.Append(model.BackupRecord{
		ID:            "prod_full_20260115_020000",
		Environment:   "prod",
		Kind:          model.BackupKindFull,
		CreatedAt:     now,
		DatabaseName:  "prod",
		DatabaseFile:  dbFile,
		FilestoreFile: fsFile,
		SizeBytes:     16,
	}))
	require.NoError(t, catalog.Append(model.BackupRecord{
		ID:          "staging_database_20260116_020000",
		Environment: "staging",
		Kind:        model.BackupKindDatabase,
		CreatedAt:   now.Add(24 * time.Hour),
	}))

	all, err := catalog.List("")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "staging_database_20260116_020000", all[0].ID, "newest first")

	prodOnly, err := catalog.List("prod")
	require.NoError(t, err)
	require.Len(t, prodOnly, 1)
	assert.True(t, prodOnly[0].FilesExist)

	record, err := catalog.Get("prod_full_20260115_020000")
	require.NoError(t, err)
	assert.True(t, record.FilesExist)

	// The staging record has no artifact files on disk.
	staging, err := catalog.Get("staging_database_20260116_020000")
	require.NoError(t, err)
	assert.False(t, staging.FilesExist)
}

func TestCatalogFilesExistRecomputedAfterDeletion(t *testing.T) {
	catalog := NewCatalog(testDB(t))
	dir := filepath.Join(t.TempDir(), "prod", "b1")
	dbFile := writeArtifact(t, dir, "database.sql.gz")

	require.NoError(t, catalog.Append(model.BackupRecord{
		ID: "b1", Environment: "prod", Kind: model.BackupKindDatabase,
		CreatedAt: time.Now(), DatabaseFile: dbFile,
	}))

	record, err := catalog.Get("b1")
	require.NoError(t, err)
	assert.True(t, record.FilesExist)

	require.NoError(t, os.Remove(dbFile))
	record, err = catalog.Get("b1")
	require.NoError(t, err)
	assert.False(t, record.FilesExist, "deleted artifact must flip files_exist")
}

func TestCatalogGetNotFound(t *testing.T) {
	catalog := NewCatalog(testDB(t))
	_, err := catalog.Get("nope")
	var nf *errdefs.NotFoundError
	require.ErrorAs(t, err, &nf)
}

func TestCatalogRemoveDeletesFilesThenRow(t *testing.T) {
	catalog := NewCatalog(testDB(t))
	dir := filepath.Join(t.TempDir(), "prod", "b1")
	dbFile := writeArtifact(t, dir, "database.sql.gz")
	fsFile := writeArtifact(t, dir, "filestore.tar.gz")

	require.NoError(t, catalog.Append(model.BackupRecord{
		ID: "b1", Environment: "prod", Kind: model.BackupKindFull,
		CreatedAt: time.Now(), DatabaseFile: dbFile, FilestoreFile: fsFile,
	}))

	require.NoError(t, catalog.Remove("b1"))
	assert.NoFileExists(t, dbFile)
	assert.NoFileExists(t, fsFile)
	assert.NoDirExists(t, dir)

	_, err := catalog.Get("b1")
	var nf *errdefs.NotFoundError
	require.ErrorAs(t, err, &nf)

	// Removing again reports not found rather than failing on files.
	require.ErrorAs(t, catalog.Remove("b1"), &nf)
}

func TestCatalogRemoveToleratesMissingArtifacts(t *testing.T) {
	catalog := NewCatalog(testDB(t))
	require.NoError(t, catalog.Append(model.BackupRecord{
		ID: "b1", Environment: "prod", Kind: model.BackupKindDatabase,
		CreatedAt:    time.Now(),
		DatabaseFile: filepath.Join(t.TempDir(), "gone", "database.sql.gz"),
	}))
	require.NoError(t, catalog.Remove("b1"))
}

func TestScheduleStoreDefaultAndUpsert(t *testing.T) {
	schedules := NewScheduleStore(testDB(t))

	cfg, err := schedules.Get("prod")
	require.NoError(t, err)
	assert.False(t, cfg.Enabled)
	assert.Equal(t, model.FrequencyDaily, cfg.Frequency)
	assert.Equal(t, "02:00", cfg.TimeOfDay)

	cfg.Enabled = true
	cfg.Frequency = model.FrequencyWeekly
	cfg.DayOfWeek = "sunday"
	require.NoError(t, schedules.Put(cfg))

	got, err := schedules.Get("prod")
	require.NoError(t, err)
	assert.True(t, got.Enabled)
	assert.Equal(t, model.FrequencyWeekly, got.Frequency)

	// Upsert replaces, never duplicates.
	got.TimeOfDay = "03:30"
	require.NoError(t, schedules.Put(got))
	list, err := schedules.List()
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "03:30", list[0].TimeOfDay)
}

func TestSettingsStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", "backup_settings.json")
	settings := NewSettingsStore(path)

	// First load returns defaults without creating the file.
	loaded, err := settings.Load()
	require.NoError(t, err)
	assert.Equal(t, model.StorageBackendLocal, loaded.StorageBackend)
	assert.Equal(t, 7, loaded.Retention.LocalDays)
	assert.NoFileExists(t, path)

	loaded.StorageBackend = model.StorageBackendS3
	loaded.S3.Bucket = "backups"
	loaded.Retention.LocalDays = 14
	require.NoError(t, settings.Save(loaded))

	got, err := settings.Load()
	require.NoError(t, err)
	assert.Equal(t, model.StorageBackendS3, got.StorageBackend)
	assert.Equal(t, "backups", got.S3.Bucket)
	assert.Equal(t, 14, got.Retention.LocalDays)
	assert.NoFileExists(t, path+".tmp")
}

func TestSettingsStoreRejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "backup_settings.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := NewSettingsStore(path).Load()
	require.Error(t, err)
}

func TestOpenMigrates(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "opsdash.db"))
	require.NoError(t, err)
	assert.True(t, db.Migrator().HasTable(&model.BackupRecord{}))
	assert.True(t, db.Migrator().HasTable(&model.ScheduleConfig{}))
}
