// Package scheduler fires the per-environment backup schedules. A
// single dispatcher goroutine polls the schedule store, computes fire
// times and launches runs; per-environment state guarantees one
// scheduled run at a time regardless of how long a backup takes.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/edvin/opsdash/internal/core"
	"github.com/edvin/opsdash/internal/errdefs"
	"github.com/edvin/opsdash/internal/metrics"
	"github.com/edvin/opsdash/internal/model"
)

// Schedule states reported by Status.
const (
	StateDisabled = "disabled"
	StateIdle     = "idle"
	StateRunning  = "running"
)

// ScheduleSource provides the stored schedules.
type ScheduleSource interface {
	List() ([]model.ScheduleConfig, error)
	Get(env string) (model.ScheduleConfig, error)
}

// BackupRunner executes one scheduled backup, including the optional
// post-backup upload. The trigger distinguishes timer fires from
// manual triggers in the audit trail.
type BackupRunner interface {
	RunScheduledBackup(ctx context.Context, cfg model.ScheduleConfig, trigger string) error
}

// Sweeper prunes expired backups after a successful scheduled run.
type Sweeper interface {
	Enforce() (*core.RetentionSummary, error)
}

// EnvStatus is the observable schedule state of one environment.
type EnvStatus struct {
	Environment string     `json:"environment"`
	State       string     `json:"state"`
	NextFire    *time.Time `json:"next_fire,omitempty"`
}

// Engine is the schedule dispatcher.
type Engine struct {
	schedules ScheduleSource
	runner    BackupRunner
	sweeper   Sweeper
	interval  time.Duration
	logger    zerolog.Logger
	now       func() time.Time

	mu       sync.Mutex
	running  map[string]bool
	nextFire map[string]fireState

	stop chan struct{}
	done chan struct{}
}

func NewEngine(schedules ScheduleSource, runner BackupRunner, sweeper Sweeper, logger zerolog.Logger) *Engine {
	return &Engine{
		schedules: schedules,
		runner:    runner,
		sweeper:   sweeper,
		interval:  30 * time.Second,
		logger:    logger.With().Str("component", "scheduler").Logger(),
		now:       time.Now,
		running:   make(map[string]bool),
		nextFire:  make(map[string]fireState),
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}
}

// Start launches the dispatcher goroutine.
func (e *Engine) Start() {
	go e.loop()
	e.logger.Info().Dur("interval", e.interval).Msg("scheduler started")
}

// Stop shuts the dispatcher down and waits for it to exit. In-flight
// backup runs are not interrupted.
func (e *Engine) Stop() {
	close(e.stop)
	<-e.done
	e.logger.Info().Msg("scheduler stopped")
}

func (e *Engine) loop() {
	defer close(e.done)
	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()
	for {
		select {
		case <-e.stop:
			return
		case <-ticker.C:
			e.tick()
		}
	}
}

func (e *Engine) tick() {
	configs, err := e.schedules.List()
	if err != nil {
		e.logger.Error().Err(err).Msg("failed to load schedules")
		return
	}
	now := e.now()
	for _, cfg := range configs {
		if !cfg.Enabled {
			e.clearState(cfg.Environment)
			continue
		}
		if e.due(cfg, now) {
			e.dispatch(cfg, model.AuditTriggerScheduled)
		}
	}
}

// fireState pairs a computed fire time with the schedule it was
// computed from, so an edited schedule is detected and recomputed.
type fireState struct {
	cfg model.ScheduleConfig
	at  time.Time
}

// due reports whether cfg should fire now, advancing the stored fire
// time when it does.
func (e *Engine) due(cfg model.ScheduleConfig, now time.Time) bool {
	next, err := NextFire(cfg, now)
	if err != nil {
		e.logger.Warn().Err(err).Str("environment", cfg.Environment).Msg("unschedulable config")
		return false
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	stored, ok := e.nextFire[cfg.Environment]
	if !ok || stored.cfg != cfg {
		// First sighting, or the schedule was edited.
		e.nextFire[cfg.Environment] = fireState{cfg: cfg, at: next}
		return false
	}
	if now.Before(stored.at) || e.running[cfg.Environment] {
		return false
	}
	e.nextFire[cfg.Environment] = fireState{cfg: cfg, at: next}
	return true
}

// dispatch atomically claims cfg's environment and starts the run in
// the background. It reports whether the run was started; a run
// already in flight loses the claim.
func (e *Engine) dispatch(cfg model.ScheduleConfig, trigger string) bool {
	e.mu.Lock()
	if e.running[cfg.Environment] {
		e.mu.Unlock()
		return false
	}
	e.running[cfg.Environment] = true
	e.mu.Unlock()

	go func() {
		defer func() {
			e.mu.Lock()
			e.running[cfg.Environment] = false
			e.mu.Unlock()
		}()

		e.logger.Info().Str("environment", cfg.Environment).Str("trigger", trigger).Msg("schedule fired")
		err := e.runner.RunScheduledBackup(context.Background(), cfg, trigger)
		outcome := metrics.OutcomeSuccess
		if err != nil {
			outcome = metrics.OutcomeFailure
			e.logger.Error().Err(err).Str("environment", cfg.Environment).Msg("scheduled backup failed")
		}
		metrics.ScheduleFiresTotal.WithLabelValues(cfg.Environment, outcome).Inc()

		if err == nil && e.sweeper != nil {
			if summary, serr := e.sweeper.Enforce(); serr != nil {
				e.logger.Error().Err(serr).Msg("retention sweep failed")
			} else if len(summary.Removed) > 0 {
				e.logger.Info().Int("removed", len(summary.Removed)).Msg("retention sweep pruned backups")
			}
		}
	}()
	return true
}

// TriggerNow fires env's schedule immediately, regardless of its
// enabled flag or fire time. A run already in flight is rejected.
func (e *Engine) TriggerNow(env string) error {
	cfg, err := e.schedules.Get(env)
	if err != nil {
		return err
	}
	if !e.dispatch(cfg, model.AuditTriggerManual) {
		return &errdefs.ConcurrencyError{Environment: env}
	}
	return nil
}

// Status reports the schedule state for every stored schedule.
func (e *Engine) Status() ([]EnvStatus, error) {
	configs, err := e.schedules.List()
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	statuses := make([]EnvStatus, 0, len(configs))
	for _, cfg := range configs {
		status := EnvStatus{Environment: cfg.Environment, State: StateDisabled}
		if cfg.Enabled {
			status.State = StateIdle
			if stored, ok := e.nextFire[cfg.Environment]; ok {
				fire := stored.at
				status.NextFire = &fire
			}
		}
		if e.running[cfg.Environment] {
			status.State = StateRunning
		}
		statuses = append(statuses, status)
	}
	return statuses, nil
}

func (e *Engine) clearState(env string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.nextFire, env)
}
