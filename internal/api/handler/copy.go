package handler

import (
	"net/http"

	"github.com/edvin/opsdash/internal/api/request"
	"github.com/edvin/opsdash/internal/api/response"
	"github.com/edvin/opsdash/internal/core"
	"github.com/edvin/opsdash/internal/model"
)

type Copy struct {
	svc *core.CopyService
}

func NewCopy(svc *core.CopyService) *Copy {
	return &Copy{svc: svc}
}

// Create runs a cross-environment copy synchronously. A failed copy
// still returns 200 with Success=false and the stage errors, because
// the request itself was serviceable; only rejected requests get error
// statuses.
func (h *Copy) Create(w http.ResponseWriter, r *http.Request) {
	var req request.CopyEnvironment
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.svc.Copy(r.Context(), model.CopyRequest{
		SourceEnv:          req.SourceEnv,
		TargetEnv:          req.TargetEnv,
		IncludeFilestore:   req.IncludeFilestore,
		IncludeAddons:      req.IncludeAddons,
		TargetDatabaseName: req.TargetDatabaseName,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, result)
}
