package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/edvin/opsdash/internal/api/request"
	"github.com/edvin/opsdash/internal/api/response"
	"github.com/edvin/opsdash/internal/core"
	"github.com/edvin/opsdash/internal/deployer"
	"github.com/edvin/opsdash/internal/errdefs"
	"github.com/edvin/opsdash/internal/model"
)

type Environment struct {
	inventory core.Inventory
	deployer  deployer.Controller
	backups   *core.BackupService
}

func NewEnvironment(inventory core.Inventory, ctrl deployer.Controller, backups *core.BackupService) *Environment {
	return &Environment{inventory: inventory, deployer: ctrl, backups: backups}
}

func (h *Environment) List(w http.ResponseWriter, r *http.Request) {
	envs, err := h.inventory.Environments()
	if err != nil {
		writeServiceError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, envs)
}

func (h *Environment) Status(w http.ResponseWriter, r *http.Request) {
	env, target, ok := h.resolve(w, r)
	if !ok {
		return
	}
	status, err := h.deployer.Status(r.Context(), target.ContainerName)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	status.Environment = env
	response.WriteJSON(w, http.StatusOK, status)
}

func (h *Environment) Start(w http.ResponseWriter, r *http.Request) {
	h.containerAction(w, r, h.deployer.Start)
}

func (h *Environment) Stop(w http.ResponseWriter, r *http.Request) {
	h.containerAction(w, r, h.deployer.Stop)
}

func (h *Environment) Restart(w http.ResponseWriter, r *http.Request) {
	h.containerAction(w, r, h.deployer.Restart)
}

func (h *Environment) Logs(w http.ResponseWriter, r *http.Request) {
	_, target, ok := h.resolve(w, r)
	if !ok {
		return
	}

	lines := 100
	if raw := r.URL.Query().Get("lines"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 10000 {
			response.WriteError(w, http.StatusBadRequest, "lines must be between 1 and 10000")
			return
		}
		lines = parsed
	}

	logs, err := h.deployer.TailLogs(r.Context(), target.ContainerName, lines)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, map[string]string{"logs": logs})
}

func (h *Environment) DatabaseInfo(w http.ResponseWriter, r *http.Request) {
	env, err := request.RequireID(chi.URLParam(r, "env"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	info, err := h.backups.DatabaseInfo(r.Context(), env)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, info)
}

func (h *Environment) containerAction(w http.ResponseWriter, r *http.Request, action func(ctx context.Context, containerName string) error) {
	env, target, ok := h.resolve(w, r)
	if !ok {
		return
	}
	if err := action(r.Context(), target.ContainerName); err != nil {
		writeServiceError(w, &errdefs.ContainerError{Environment: env, Op: "control", Err: err})
		return
	}
	response.WriteJSON(w, http.StatusOK, map[string]string{"environment": env, "status": "ok"})
}

func (h *Environment) resolve(w http.ResponseWriter, r *http.Request) (string, *model.Environment, bool) {
	env, err := request.RequireID(chi.URLParam(r, "env"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return "", nil, false
	}
	target, err := h.inventory.Environment(env)
	if err != nil {
		writeServiceError(w, err)
		return "", nil, false
	}
	return env, target, true
}
