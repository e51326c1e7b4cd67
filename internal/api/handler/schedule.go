package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/edvin/opsdash/internal/api/request"
	"github.com/edvin/opsdash/internal/api/response"
	"github.com/edvin/opsdash/internal/core"
	"github.com/edvin/opsdash/internal/model"
	"github.com/edvin/opsdash/internal/scheduler"
)

// ScheduleStore is the schedule persistence the handler needs.
type ScheduleStore interface {
	Get(env string) (model.ScheduleConfig, error)
	Put(cfg model.ScheduleConfig) error
	List() ([]model.ScheduleConfig, error)
}

type Schedule struct {
	store     ScheduleStore
	engine    *scheduler.Engine
	inventory core.Inventory
}

func NewSchedule(store ScheduleStore, engine *scheduler.Engine, inventory core.Inventory) *Schedule {
	return &Schedule{store: store, engine: engine, inventory: inventory}
}

// scheduleResponse echoes a stored config together with its computed
// next fire time.
type scheduleResponse struct {
	model.ScheduleConfig
	NextFire *time.Time `json:"next_fire,omitempty"`
}

func withNextFire(cfg model.ScheduleConfig) scheduleResponse {
	resp := scheduleResponse{ScheduleConfig: cfg}
	if cfg.Enabled {
		if next, err := scheduler.NextFire(cfg, time.Now()); err == nil {
			resp.NextFire = &next
		}
	}
	return resp
}

func (h *Schedule) Get(w http.ResponseWriter, r *http.Request) {
	env, ok := h.knownEnv(w, r)
	if !ok {
		return
	}
	cfg, err := h.store.Get(env)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, withNextFire(cfg))
}

func (h *Schedule) Update(w http.ResponseWriter, r *http.Request) {
	env, ok := h.knownEnv(w, r)
	if !ok {
		return
	}

	var req request.UpdateSchedule
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Frequency == model.FrequencyWeekly && req.DayOfWeek == "" {
		response.WriteError(w, http.StatusBadRequest, "day_of_week is required for weekly schedules")
		return
	}
	if req.Frequency == model.FrequencyMonthly && req.DayOfMonth == 0 {
		response.WriteError(w, http.StatusBadRequest, "day_of_month is required for monthly schedules")
		return
	}

	cfg := model.ScheduleConfig{
		Environment:       env,
		Enabled:           req.Enabled,
		Frequency:         req.Frequency,
		TimeOfDay:         req.TimeOfDay,
		DayOfWeek:         req.DayOfWeek,
		DayOfMonth:        req.DayOfMonth,
		BackupKind:        req.BackupKind,
		UploadAfterCreate: req.UploadAfterCreate,
	}
	if err := h.store.Put(cfg); err != nil {
		writeServiceError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, withNextFire(cfg))
}

func (h *Schedule) Status(w http.ResponseWriter, r *http.Request) {
	statuses, err := h.engine.Status()
	if err != nil {
		writeServiceError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, statuses)
}

func (h *Schedule) TriggerNow(w http.ResponseWriter, r *http.Request) {
	env, ok := h.knownEnv(w, r)
	if !ok {
		return
	}
	if err := h.engine.TriggerNow(env); err != nil {
		writeServiceError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusAccepted, map[string]string{"environment": env, "status": "triggered"})
}

func (h *Schedule) knownEnv(w http.ResponseWriter, r *http.Request) (string, bool) {
	env, err := request.RequireID(chi.URLParam(r, "env"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return "", false
	}
	if _, err := h.inventory.Environment(env); err != nil {
		writeServiceError(w, err)
		return "", false
	}
	return env, true
}
