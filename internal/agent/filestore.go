package agent

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/edvin/opsdash/internal/errdefs"
)

// FilestoreManager archives, extracts and synchronizes environment data
// directories (filestore, addons) via the tar and cp CLIs.
type FilestoreManager struct {
	logger zerolog.Logger
}

// NewFilestoreManager creates a new FilestoreManager.
func NewFilestoreManager(logger zerolog.Logger) *FilestoreManager {
	return &FilestoreManager{
		logger: logger.With().Str("component", "filestore-manager").Logger(),
	}
}

// Archive creates a gzipped tarball of srcDir at outFile. A missing
// source directory yields an empty archive so a full backup always has
// both artifacts.
func (m *FilestoreManager) Archive(ctx context.Context, srcDir, outFile string) error {
	m.logger.Info().Str("src", srcDir).Str("out", outFile).Msg("archiving directory")

	if err := os.MkdirAll(filepath.Dir(outFile), 0750); err != nil {
		return fmt.Errorf("create archive directory: %w", err)
	}
	if _, err := os.Stat(srcDir); os.IsNotExist(err) {
		if err := os.MkdirAll(srcDir, 0750); err != nil {
			return fmt.Errorf("create source directory: %w", err)
		}
	}

	cmd := exec.CommandContext(ctx, "tar", "-czf", outFile, "-C", srcDir, ".")
	if output, err := cmd.CombinedOutput(); err != nil {
		_ = os.Remove(outFile)
		return execErr(ctx, "tar", output, err)
	}
	return nil
}

// Extract unpacks a gzipped tarball into dstDir, creating it if needed.
func (m *FilestoreManager) Extract(ctx context.Context, archive, dstDir string) error {
	m.logger.Info().Str("archive", archive).Str("dst", dstDir).Msg("extracting archive")

	if err := os.MkdirAll(dstDir, 0750); err != nil {
		return fmt.Errorf("create target directory: %w", err)
	}

	cmd := exec.CommandContext(ctx, "tar", "-xzf", archive, "-C", dstDir)
	if output, err := cmd.CombinedOutput(); err != nil {
		return execErr(ctx, "tar extract", output, err)
	}
	return nil
}

// SyncDir replaces dstDir's contents with a copy of srcDir. A missing
// source is a validation error; the caller decides whether that matters.
func (m *FilestoreManager) SyncDir(ctx context.Context, srcDir, dstDir string) error {
	m.logger.Info().Str("src", srcDir).Str("dst", dstDir).Msg("synchronizing directory")

	if _, err := os.Stat(srcDir); err != nil {
		return errdefs.Validationf("source directory %s not readable: %v", srcDir, err)
	}

	if err := os.RemoveAll(dstDir); err != nil {
		return fmt.Errorf("clear target directory: %w", err)
	}

	cmd := exec.CommandContext(ctx, "cp", "-a", srcDir, dstDir)
	if output, err := cmd.CombinedOutput(); err != nil {
		return execErr(ctx, "cp", output, err)
	}
	return nil
}
