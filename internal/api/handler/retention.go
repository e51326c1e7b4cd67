package handler

import (
	"net/http"

	"github.com/edvin/opsdash/internal/api/response"
	"github.com/edvin/opsdash/internal/core"
)

type Retention struct {
	svc *core.RetentionService
}

func NewRetention(svc *core.RetentionService) *Retention {
	return &Retention{svc: svc}
}

// Enforce runs a retention sweep immediately.
func (h *Retention) Enforce(w http.ResponseWriter, r *http.Request) {
	summary, err := h.svc.Enforce()
	if err != nil {
		writeServiceError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, summary)
}
