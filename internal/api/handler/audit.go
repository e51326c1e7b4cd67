package handler

import (
	"net/http"
	"strconv"

	"github.com/edvin/opsdash/internal/api/response"
	"github.com/edvin/opsdash/internal/audit"
)

type Audit struct {
	sink *audit.FileSink
}

func NewAudit(sink *audit.FileSink) *Audit {
	return &Audit{sink: sink}
}

func (h *Audit) List(w http.ResponseWriter, r *http.Request) {
	filter := audit.Filter{
		Environment: r.URL.Query().Get("environment"),
		Category:    r.URL.Query().Get("category"),
		Limit:       100,
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 || limit > 1000 {
			response.WriteError(w, http.StatusBadRequest, "limit must be between 1 and 1000")
			return
		}
		filter.Limit = limit
	}

	entries, err := h.sink.Read(filter)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, entries)
}
