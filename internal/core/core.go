// Package core implements the orchestration services: backups,
// uploads, retention sweeps and cross-environment copies. Services
// talk to their collaborators through narrow interfaces so the
// subprocess- and daemon-backed implementations can be swapped out in
// tests.
package core

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/edvin/opsdash/internal/model"
	"github.com/edvin/opsdash/internal/storage"
)

// Inventory resolves environments from the compose file.
type Inventory interface {
	Environments() ([]model.Environment, error)
	Environment(name string) (*model.Environment, error)
	Credentials(name string) (*model.Environment, error)
}

// DatabaseManager runs the PostgreSQL primitives.
type DatabaseManager interface {
	ListDatabases(ctx context.Context, creds model.DBCredentials) ([]string, error)
	PrimaryDatabase(ctx context.Context, creds model.DBCredentials, env string) (string, error)
	Exists(ctx context.Context, creds model.DBCredentials, name string) (bool, error)
	Dump(ctx context.Context, creds model.DBCredentials, name, dumpPath string) error
	Restore(ctx context.Context, creds model.DBCredentials, name, dumpPath string) error
	Create(ctx context.Context, creds model.DBCredentials, name string) error
	Drop(ctx context.Context, creds model.DBCredentials, name string) error
	TerminateConnections(ctx context.Context, creds model.DBCredentials, name string) error
	Info(ctx context.Context, creds model.DBCredentials, name string) (*model.DatabaseInfo, error)
}

// FilestoreManager archives and syncs environment directories.
type FilestoreManager interface {
	Archive(ctx context.Context, srcDir, outFile string) error
	Extract(ctx context.Context, archive, dstDir string) error
	SyncDir(ctx context.Context, srcDir, dstDir string) error
}

// Catalog is the backup index.
type Catalog interface {
	Append(record model.BackupRecord) error
	List(env string) ([]model.BackupRecord, error)
	Get(id string) (*model.BackupRecord, error)
	Remove(id string) error
	MarkUploaded(id, backend string) error
}

// SettingsSource loads the operator backup settings.
type SettingsSource interface {
	Load() (model.BackupSettings, error)
}

// BackendFactory builds the storage backend selected by settings.
// Production wiring uses storage.New.
type BackendFactory func(settings model.BackupSettings, logger zerolog.Logger) (storage.Backend, error)
