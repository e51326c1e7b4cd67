// Package storage provides the remote backup destinations. A Backend
// receives finished backup artifacts; it never produces them.
package storage

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/edvin/opsdash/internal/errdefs"
	"github.com/edvin/opsdash/internal/model"
)

// Backend is a destination for backup artifacts.
type Backend interface {
	// Name returns the backend identifier (local, s3, rsync).
	Name() string
	// TestConnection verifies the backend is reachable and the
	// configured destination exists, without writing anything.
	TestConnection(ctx context.Context) error
	// Upload stores a local file under remotePath on the backend.
	Upload(ctx context.Context, localPath, remotePath string) error
}

// New builds the Backend selected by settings. Settings for backends
// other than the selected one are ignored.
func New(settings model.BackupSettings, logger zerolog.Logger) (Backend, error) {
	switch settings.StorageBackend {
	case model.StorageBackendLocal:
		return NewLocalBackend(logger), nil
	case model.StorageBackendS3:
		return NewS3Backend(settings.S3, logger)
	case model.StorageBackendRsync:
		return NewRsyncBackend(settings.Rsync, logger)
	default:
		return nil, &errdefs.ConfigurationError{
			Msg: "unknown storage backend " + settings.StorageBackend,
		}
	}
}
