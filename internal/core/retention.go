package core

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/edvin/opsdash/internal/audit"
	"github.com/edvin/opsdash/internal/metrics"
	"github.com/edvin/opsdash/internal/model"
)

// RetentionSummary reports one sweep.
type RetentionSummary struct {
	Examined int      `json:"examined"`
	Removed  []string `json:"removed"`
	Failed   []string `json:"failed,omitempty"`
}

// RetentionService prunes cataloged backups older than the configured
// local retention age. Sweeps are idempotent: a backup is pruned at
// most once, and a failed removal is retried on the next sweep.
type RetentionService struct {
	catalog  Catalog
	settings SettingsSource
	audit    audit.Sink
	flights  *Flights
	logger   zerolog.Logger
	now      func() time.Time
}

func NewRetentionService(catalog Catalog, settings SettingsSource, sink audit.Sink, flights *Flights, logger zerolog.Logger) *RetentionService {
	return &RetentionService{
		catalog:  catalog,
		settings: settings,
		audit:    sink,
		flights:  flights,
		logger:   logger.With().Str("component", "retention").Logger(),
		now:      time.Now,
	}
}

// Enforce removes every backup older than the local retention window.
// Environments with an operation in flight are skipped, not failed;
// their old backups are picked up by the next sweep.
func (s *RetentionService) Enforce() (*RetentionSummary, error) {
	settings, err := s.settings.Load()
	if err != nil {
		return nil, err
	}
	if settings.Retention.LocalDays <= 0 {
		s.logger.Debug().Msg("local retention disabled, skipping sweep")
		return &RetentionSummary{}, nil
	}
	cutoff := s.now().AddDate(0, 0, -settings.Retention.LocalDays)

	records, err := s.catalog.List("")
	if err != nil {
		return nil, err
	}

	summary := &RetentionSummary{Examined: len(records)}
	skipped := map[string]bool{}
	for _, record := range records {
		if !record.CreatedAt.Before(cutoff) {
			continue
		}
		if skipped[record.Environment] {
			continue
		}
		release, err := s.flights.TryAcquire(record.Environment)
		if err != nil {
			s.logger.Info().Str("environment", record.Environment).Msg("environment busy, deferring retention")
			skipped[record.Environment] = true
			continue
		}
		err = s.catalog.Remove(record.ID)
		release()
		if err != nil {
			s.logger.Error().Err(err).Str("backup_id", record.ID).Msg("retention removal failed")
			summary.Failed = append(summary.Failed, record.ID)
			continue
		}
		summary.Removed = append(summary.Removed, record.ID)
		metrics.RetentionRemovedTotal.WithLabelValues(record.Environment).Inc()
		s.writeAudit(model.AuditEntry{
			Environment: record.Environment,
			Category:    model.AuditCategoryBackup,
			Trigger:     model.AuditTriggerScheduled,
			Status:      model.AuditStatusSuccess,
			BackupID:    record.ID,
			Detail:      "removed by retention policy",
		})
	}

	if len(summary.Removed) > 0 || len(summary.Failed) > 0 {
		s.logger.Info().
			Int("examined", summary.Examined).
			Int("removed", len(summary.Removed)).
			Int("failed", len(summary.Failed)).
			Msg("retention sweep finished")
	}
	return summary, nil
}

func (s *RetentionService) writeAudit(entry model.AuditEntry) {
	if err := s.audit.Append(entry); err != nil {
		s.logger.Error().Err(err).Msg("failed to write audit entry")
	}
}
