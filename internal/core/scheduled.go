package core

import (
	"context"

	"github.com/edvin/opsdash/internal/model"
)

// ScheduledRunner adapts BackupService to the scheduler's runner
// contract: create the configured backup kind, then upload it when the
// schedule asks for that.
type ScheduledRunner struct {
	backups *BackupService
}

func NewScheduledRunner(backups *BackupService) *ScheduledRunner {
	return &ScheduledRunner{backups: backups}
}

func (r *ScheduledRunner) RunScheduledBackup(ctx context.Context, cfg model.ScheduleConfig, trigger string) error {
	description := "scheduled backup"
	if trigger == model.AuditTriggerManual {
		description = "manually triggered scheduled backup"
	}
	record, err := r.backups.Create(ctx, cfg.Environment, cfg.BackupKind, description, trigger)
	if err != nil {
		return err
	}
	if cfg.UploadAfterCreate {
		return r.backups.Upload(ctx, record.ID)
	}
	return nil
}
