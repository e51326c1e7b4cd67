package core

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/edvin/opsdash/internal/agent"
	"github.com/edvin/opsdash/internal/audit"
	"github.com/edvin/opsdash/internal/deployer"
	"github.com/edvin/opsdash/internal/errdefs"
	"github.com/edvin/opsdash/internal/metrics"
	"github.com/edvin/opsdash/internal/model"
)

// CopyService replicates one environment into another: database
// always, filestore and custom addons optionally. The target database
// is dropped and recreated, so a copy is destructive for the target.
//
// The critical path is validate, lock, stop target, dump source,
// drop/create target, restore. Filestore and addons syncs run after it
// and their failures degrade the result without failing it. The target
// container is restarted no matter what happened once it was stopped.
type CopyService struct {
	dataDir   string
	timeout   time.Duration
	inventory Inventory
	db        DatabaseManager
	fs        FilestoreManager
	deployer  deployer.Controller
	audit     audit.Sink
	flights   *Flights
	logger    zerolog.Logger
}

func NewCopyService(
	dataDir string,
	timeout time.Duration,
	inventory Inventory,
	db DatabaseManager,
	fs FilestoreManager,
	ctrl deployer.Controller,
	sink audit.Sink,
	flights *Flights,
	logger zerolog.Logger,
) *CopyService {
	return &CopyService{
		dataDir:   dataDir,
		timeout:   timeout,
		inventory: inventory,
		db:        db,
		fs:        fs,
		deployer:  ctrl,
		audit:     sink,
		flights:   flights,
		logger:    logger.With().Str("component", "copy-service").Logger(),
	}
}

// Copy runs a full cross-environment copy. The returned result is
// non-nil whenever the request passed validation, even on failure, so
// callers can report partial progress.
func (s *CopyService) Copy(ctx context.Context, req model.CopyRequest) (*model.CopyResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	source, target, targetDB, err := s.validate(ctx, req)
	if err != nil {
		return nil, err
	}

	release, err := s.flights.TryAcquirePair(req.SourceEnv, req.TargetEnv)
	if err != nil {
		return nil, err
	}
	defer release()

	result := s.run(ctx, req, source, target, targetDB)

	outcome := metrics.OutcomeSuccess
	status := model.AuditStatusSuccess
	if !result.Success {
		outcome = metrics.OutcomeFailure
		status = model.AuditStatusFailure
	}
	metrics.CopiesTotal.WithLabelValues(req.SourceEnv, req.TargetEnv, outcome).Inc()
	detail := fmt.Sprintf("copy %s -> %s (database=%s)", req.SourceEnv, req.TargetEnv, result.TargetDatabaseName)
	if len(result.Errors) > 0 {
		detail += ": " + strings.Join(result.Errors, "; ")
	}
	s.writeAudit(model.AuditEntry{
		Environment: req.TargetEnv,
		Category:    model.AuditCategoryCopy,
		Trigger:     model.AuditTriggerManual,
		Status:      status,
		Detail:      detail,
	})
	return result, nil
}

// validate also resolves the target database name: an explicit name is
// checked, an omitted one falls back to the target's existing primary
// database. A target with no database and no explicit name is rejected
// here, before any lock is taken or container touched.
func (s *CopyService) validate(ctx context.Context, req model.CopyRequest) (*model.Environment, *model.Environment, string, error) {
	if req.SourceEnv == req.TargetEnv {
		return nil, nil, "", errdefs.Validationf("source and target environment must differ")
	}
	source, err := s.inventory.Credentials(req.SourceEnv)
	if err != nil {
		return nil, nil, "", err
	}
	target, err := s.inventory.Credentials(req.TargetEnv)
	if err != nil {
		return nil, nil, "", err
	}

	targetDB := req.TargetDatabaseName
	if targetDB == "" {
		targetDB, err = s.db.PrimaryDatabase(ctx, target.DB, target.Name)
		if err != nil {
			return nil, nil, "", err
		}
	} else if !agent.ValidIdentifier(targetDB) {
		return nil, nil, "", errdefs.Validationf("invalid target database name %q", targetDB)
	}
	return source, target, targetDB, nil
}

func (s *CopyService) run(ctx context.Context, req model.CopyRequest, source, target *model.Environment, targetDB string) *model.CopyResult {
	result := &model.CopyResult{
		SourceEnv:          req.SourceEnv,
		TargetEnv:          req.TargetEnv,
		TargetDatabaseName: targetDB,
	}
	fail := func(err error) *model.CopyResult {
		result.Errors = append(result.Errors, err.Error())
		return result
	}

	sourceDB, err := s.db.PrimaryDatabase(ctx, source.DB, source.Name)
	if err != nil {
		return fail(err)
	}
	result.SourceDatabaseName = sourceDB

	s.logger.Info().
		Str("source", source.Name).
		Str("target", target.Name).
		Str("database", targetDB).
		Msg("starting environment copy")

	// The target application must be down before its database is
	// replaced; otherwise its pool reconnects mid-restore.
	if err := s.deployer.Stop(ctx, target.ContainerName); err != nil {
		return fail(&errdefs.ContainerError{Environment: target.Name, Op: "stop", Err: err})
	}
	defer s.restartTarget(target, result)

	dumpPath := filepath.Join(s.dataDir, "tmp", fmt.Sprintf("copy_%s_to_%s.sql.gz", source.Name, target.Name))
	if err := os.MkdirAll(filepath.Dir(dumpPath), 0o755); err != nil {
		return fail(fmt.Errorf("create staging dir: %w", err))
	}
	defer os.Remove(dumpPath)

	if err := s.db.Dump(ctx, source.DB, sourceDB, dumpPath); err != nil {
		return fail(err)
	}

	if err := s.replaceDatabase(ctx, target, targetDB, dumpPath); err != nil {
		return fail(err)
	}
	result.DatabaseCopied = true

	// Past this point the copy has succeeded; file syncs only degrade it.
	result.Success = true

	if req.IncludeFilestore {
		if err := s.fs.SyncDir(ctx, source.FilestoreDir, target.FilestoreDir); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("filestore sync: %v", err))
		} else {
			result.FilestoreCopied = true
		}
	}
	if req.IncludeAddons {
		if err := s.fs.SyncDir(ctx, source.AddonsDir, target.AddonsDir); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("addons sync: %v", err))
		} else {
			result.AddonsCopied = true
		}
	}
	return result
}

func (s *CopyService) replaceDatabase(ctx context.Context, target *model.Environment, name, dumpPath string) error {
	exists, err := s.db.Exists(ctx, target.DB, name)
	if err != nil {
		return err
	}
	if exists {
		if err := s.db.TerminateConnections(ctx, target.DB, name); err != nil {
			return err
		}
		if err := s.db.Drop(ctx, target.DB, name); err != nil {
			return err
		}
	}
	if err := s.db.Create(ctx, target.DB, name); err != nil {
		return err
	}
	return s.db.Restore(ctx, target.DB, name, dumpPath)
}

// restartTarget brings the target container back up. It runs on every
// exit path after the stop succeeded, with a fresh context because the
// copy's context may already be cancelled or expired.
func (s *CopyService) restartTarget(target *model.Environment, result *model.CopyResult) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := s.deployer.Start(ctx, target.ContainerName); err != nil {
		s.logger.Error().Err(err).Str("container", target.ContainerName).Msg("failed to restart target container")
		result.Errors = append(result.Errors, fmt.Sprintf("restart container: %v", err))
		return
	}
	s.logger.Info().Str("container", target.ContainerName).Msg("target container restarted")
}

func (s *CopyService) writeAudit(entry model.AuditEntry) {
	if err := s.audit.Append(entry); err != nil {
		s.logger.Error().Err(err).Msg("failed to write audit entry")
	}
}
