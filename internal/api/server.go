// Package api exposes the dashboard HTTP surface: environments,
// backups, copies, schedules, settings, audit and addon repos.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/edvin/opsdash/internal/api/handler"
	mw "github.com/edvin/opsdash/internal/api/middleware"
	"github.com/edvin/opsdash/internal/audit"
	"github.com/edvin/opsdash/internal/core"
	"github.com/edvin/opsdash/internal/deployer"
	"github.com/edvin/opsdash/internal/gitops"
	"github.com/edvin/opsdash/internal/scheduler"
	"github.com/edvin/opsdash/internal/store"
)

// Deps carries the service dependencies the server routes to.
type Deps struct {
	Inventory  core.Inventory
	Deployer   deployer.Controller
	Backups    *core.BackupService
	Copies     *core.CopyService
	Retention  *core.RetentionService
	Schedules  *store.ScheduleStore
	Engine     *scheduler.Engine
	Settings   *store.SettingsStore
	NewBackend core.BackendFactory
	Audit      *audit.FileSink
	Repos      *gitops.Service
}

type Server struct {
	router chi.Router
	logger zerolog.Logger
	deps   Deps
}

func NewServer(logger zerolog.Logger, deps Deps) *Server {
	s := &Server{
		router: chi.NewRouter(),
		logger: logger,
		deps:   deps,
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(mw.RequestLogger(s.logger))
	s.router.Use(middleware.Recoverer)
	s.router.Use(mw.Metrics)
}

func (s *Server) setupRoutes() {
	s.router.Handle("/metrics", promhttp.Handler())
	s.router.Get("/healthz", s.handleHealthz)
	s.router.Get("/readyz", s.handleReadyz)

	s.router.Route("/api/v1", func(r chi.Router) {
		env := handler.NewEnvironment(s.deps.Inventory, s.deps.Deployer, s.deps.Backups)
		r.Get("/environments", env.List)
		r.Get("/environments/{env}/status", env.Status)
		r.Post("/environments/{env}/start", env.Start)
		r.Post("/environments/{env}/stop", env.Stop)
		r.Post("/environments/{env}/restart", env.Restart)
		r.Get("/environments/{env}/logs", env.Logs)
		r.Get("/environments/{env}/database", env.DatabaseInfo)

		backup := handler.NewBackup(s.deps.Backups)
		r.Get("/backups", backup.List)
		r.Get("/backups/{id}", backup.Get)
		r.Get("/backups/{id}/download", backup.Download)
		r.Post("/backups/{id}/upload", backup.Upload)
		r.Delete("/backups/{id}", backup.Delete)
		r.Get("/environments/{env}/backups", backup.ListByEnvironment)
		r.Post("/environments/{env}/backups", backup.Create)

		copyh := handler.NewCopy(s.deps.Copies)
		r.Post("/copy", copyh.Create)

		schedule := handler.NewSchedule(s.deps.Schedules, s.deps.Engine, s.deps.Inventory)
		r.Get("/schedules", schedule.Status)
		r.Get("/environments/{env}/schedule", schedule.Get)
		r.Put("/environments/{env}/schedule", schedule.Update)
		r.Post("/environments/{env}/schedule/trigger", schedule.TriggerNow)

		retention := handler.NewRetention(s.deps.Retention)
		r.Post("/retention/enforce", retention.Enforce)

		settings := handler.NewSettings(s.deps.Settings, s.deps.NewBackend, s.logger)
		r.Get("/settings/backup", settings.Get)
		r.Put("/settings/backup", settings.Update)
		r.Post("/settings/backup/test", settings.TestConnection)

		auditH := handler.NewAudit(s.deps.Audit)
		r.Get("/audit", auditH.List)

		repo := handler.NewRepo(s.deps.Repos)
		r.Get("/repos", repo.List)
		r.Post("/repos", repo.Clone)
		r.Get("/repos/{id}/status", repo.Status)
		r.Post("/repos/{id}/pull", repo.Pull)
		r.Delete("/repos/{id}", repo.Delete)
	})
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func (s *Server) handleReadyz(w http.ResponseWriter, _ *http.Request) {
	if _, err := s.deps.Inventory.Environments(); err != nil {
		http.Error(w, "compose inventory unavailable: "+err.Error(), http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ready"))
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
