package core

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/edvin/opsdash/internal/audit"
	"github.com/edvin/opsdash/internal/errdefs"
	"github.com/edvin/opsdash/internal/metrics"
	"github.com/edvin/opsdash/internal/model"
	"github.com/edvin/opsdash/internal/platform"
	"github.com/edvin/opsdash/internal/storage"
)

// Artifact file names inside a backup directory.
const (
	databaseArtifact  = "database.sql.gz"
	filestoreArtifact = "filestore.tar.gz"
)

// BackupService creates, uploads and deletes backups. Artifacts are
// written before the catalog row, so a crash mid-backup leaves
// orphaned files but never a record pointing at nothing that a
// completed run produced.
type BackupService struct {
	dataDir    string
	timeout    time.Duration
	inventory  Inventory
	db         DatabaseManager
	fs         FilestoreManager
	catalog    Catalog
	settings   SettingsSource
	audit      audit.Sink
	flights    *Flights
	newBackend BackendFactory
	logger     zerolog.Logger
	now        func() time.Time
}

func NewBackupService(
	dataDir string,
	timeout time.Duration,
	inventory Inventory,
	db DatabaseManager,
	fs FilestoreManager,
	catalog Catalog,
	settings SettingsSource,
	sink audit.Sink,
	flights *Flights,
	newBackend BackendFactory,
	logger zerolog.Logger,
) *BackupService {
	return &BackupService{
		dataDir:    dataDir,
		timeout:    timeout,
		inventory:  inventory,
		db:         db,
		fs:         fs,
		catalog:    catalog,
		settings:   settings,
		audit:      sink,
		flights:    flights,
		newBackend: newBackend,
		logger:     logger.With().Str("component", "backup-service").Logger(),
		now:        time.Now,
	}
}

// Create runs a backup of the given kind for env. The environment's
// container keeps running; pg_dump takes a consistent snapshot on its
// own. Trigger distinguishes manual from scheduled runs in the audit
// trail.
func (s *BackupService) Create(ctx context.Context, env, kind, description, trigger string) (*model.BackupRecord, error) {
	if !model.ValidBackupKind(kind) {
		return nil, errdefs.Validationf("invalid backup kind %q", kind)
	}

	target, err := s.inventory.Credentials(env)
	if err != nil {
		return nil, err
	}

	release, err := s.flights.TryAcquire(env)
	if err != nil {
		return nil, err
	}
	defer release()

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := s.now()
	record, err := s.runBackup(ctx, target, kind, description, start)
	outcome := metrics.OutcomeSuccess
	status := model.AuditStatusSuccess
	detail := ""
	backupID := ""
	if err != nil {
		outcome = metrics.OutcomeFailure
		status = model.AuditStatusFailure
		detail = err.Error()
	} else {
		backupID = record.ID
		detail = fmt.Sprintf("%s backup completed (%d bytes)", kind, record.SizeBytes)
	}
	metrics.BackupsTotal.WithLabelValues(env, kind, outcome).Inc()
	metrics.BackupDuration.WithLabelValues(env).Observe(s.now().Sub(start).Seconds())
	s.writeAudit(model.AuditEntry{
		Environment: env,
		Category:    model.AuditCategoryBackup,
		Trigger:     trigger,
		Status:      status,
		BackupID:    backupID,
		Detail:      detail,
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

func (s *BackupService) runBackup(ctx context.Context, target *model.Environment, kind, description string, start time.Time) (*model.BackupRecord, error) {
	id := platform.BackupID(target.Name, kind, start)
	dir := filepath.Join(s.dataDir, target.Name, id)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create backup dir: %w", err)
	}

	record := model.BackupRecord{
		ID:          id,
		Environment: target.Name,
		Kind:        kind,
		CreatedAt:   start.UTC(),
		Description: description,
	}

	cleanup := func() { _ = os.RemoveAll(dir) }

	if record.IncludesDatabase() {
		dbName, err := s.db.PrimaryDatabase(ctx, target.DB, target.Name)
		if err != nil {
			cleanup()
			return nil, err
		}
		record.DatabaseName = dbName
		record.DatabaseFile = filepath.Join(dir, databaseArtifact)

		s.logger.Info().Str("environment", target.Name).Str("database", dbName).Msg("dumping database")
		if err := s.db.Dump(ctx, target.DB, dbName, record.DatabaseFile); err != nil {
			cleanup()
			return nil, err
		}
	}

	if record.IncludesFilestore() {
		record.FilestoreFile = filepath.Join(dir, filestoreArtifact)
		s.logger.Info().Str("environment", target.Name).Str("dir", target.FilestoreDir).Msg("archiving filestore")
		if err := s.fs.Archive(ctx, target.FilestoreDir, record.FilestoreFile); err != nil {
			cleanup()
			return nil, err
		}
	}

	for _, file := range record.ArtifactFiles() {
		info, err := os.Stat(file)
		if err != nil {
			cleanup()
			return nil, fmt.Errorf("stat artifact %s: %w", file, err)
		}
		record.SizeBytes += info.Size()
	}

	if err := s.catalog.Append(record); err != nil {
		cleanup()
		return nil, err
	}
	record.FilesExist = true
	return &record, nil
}

// Upload pushes a backup's artifacts to the configured remote backend.
// Uploading with the local backend selected is a validation error so
// the operator learns their settings are incomplete, not a silent
// no-op.
func (s *BackupService) Upload(ctx context.Context, backupID string) error {
	record, err := s.catalog.Get(backupID)
	if err != nil {
		return err
	}

	release, err := s.flights.TryAcquire(record.Environment)
	if err != nil {
		return err
	}
	defer release()

	// Re-read under the lock; a retention sweep may have pruned the
	// record between the lookup and the acquire.
	record, err = s.catalog.Get(backupID)
	if err != nil {
		return err
	}
	if !record.FilesExist {
		return errdefs.Validationf("backup %s has missing artifact files", backupID)
	}

	settings, err := s.settings.Load()
	if err != nil {
		return err
	}
	if settings.StorageBackend == model.StorageBackendLocal {
		return errdefs.Validationf("no remote storage backend configured")
	}

	backend, err := s.newBackend(settings, s.logger)
	if err != nil {
		return err
	}

	err = s.uploadArtifacts(ctx, backend, record)
	outcome := metrics.OutcomeSuccess
	status := model.AuditStatusSuccess
	detail := fmt.Sprintf("uploaded to %s", backend.Name())
	if err != nil {
		outcome = metrics.OutcomeFailure
		status = model.AuditStatusFailure
		detail = err.Error()
	}
	metrics.UploadsTotal.WithLabelValues(backend.Name(), outcome).Inc()
	s.writeAudit(model.AuditEntry{
		Environment: record.Environment,
		Category:    model.AuditCategoryBackup,
		Trigger:     model.AuditTriggerManual,
		Status:      status,
		BackupID:    record.ID,
		Detail:      detail,
	})
	if err != nil {
		return err
	}
	return s.catalog.MarkUploaded(record.ID, backend.Name())
}

func (s *BackupService) uploadArtifacts(ctx context.Context, backend storage.Backend, record *model.BackupRecord) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, file := range record.ArtifactFiles() {
		remote := filepath.Join(record.Environment, record.ID, filepath.Base(file))
		local := file
		g.Go(func() error {
			return backend.Upload(ctx, local, remote)
		})
	}
	return g.Wait()
}

// Delete removes a backup's artifacts and catalog entry. It holds the
// environment's flight so a record is never removed mid-backup or
// mid-upload.
func (s *BackupService) Delete(id string) error {
	record, err := s.catalog.Get(id)
	if err != nil {
		return err
	}

	release, err := s.flights.TryAcquire(record.Environment)
	if err != nil {
		return err
	}
	defer release()

	if err := s.catalog.Remove(id); err != nil {
		return err
	}
	s.writeAudit(model.AuditEntry{
		Environment: record.Environment,
		Category:    model.AuditCategoryBackup,
		Trigger:     model.AuditTriggerManual,
		Status:      model.AuditStatusSuccess,
		BackupID:    id,
		Detail:      "backup deleted",
	})
	return nil
}

// List returns catalog entries, optionally filtered by environment.
func (s *BackupService) List(env string) ([]model.BackupRecord, error) {
	return s.catalog.List(env)
}

// Get returns one catalog entry.
func (s *BackupService) Get(id string) (*model.BackupRecord, error) {
	return s.catalog.Get(id)
}

// DatabaseInfo resolves the primary database of env and describes it.
func (s *BackupService) DatabaseInfo(ctx context.Context, env string) (*model.DatabaseInfo, error) {
	target, err := s.inventory.Credentials(env)
	if err != nil {
		return nil, err
	}
	name, err := s.db.PrimaryDatabase(ctx, target.DB, env)
	if err != nil {
		return &model.DatabaseInfo{Environment: env, Available: false, Error: err.Error()}, nil
	}
	info, err := s.db.Info(ctx, target.DB, name)
	if err != nil {
		return nil, err
	}
	info.Environment = env
	return info, nil
}

func (s *BackupService) writeAudit(entry model.AuditEntry) {
	if err := s.audit.Append(entry); err != nil {
		s.logger.Error().Err(err).Msg("failed to write audit entry")
	}
}
