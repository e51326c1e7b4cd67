package handler

import (
	"errors"
	"net/http"

	"github.com/edvin/opsdash/internal/api/response"
	"github.com/edvin/opsdash/internal/errdefs"
)

// writeServiceError maps the service error taxonomy onto HTTP
// statuses. Anything unclassified is an internal error.
func writeServiceError(w http.ResponseWriter, err error) {
	var (
		validation  *errdefs.ValidationError
		notFound    *errdefs.NotFoundError
		concurrency *errdefs.ConcurrencyError
		config      *errdefs.ConfigurationError
		container   *errdefs.ContainerError
		execution   *errdefs.ExecutionError
		upload      *errdefs.UploadError
	)
	switch {
	case errors.As(err, &validation):
		response.WriteError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &notFound):
		response.WriteError(w, http.StatusNotFound, err.Error())
	case errors.As(err, &concurrency):
		response.WriteError(w, http.StatusConflict, err.Error())
	case errors.As(err, &config):
		response.WriteError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.As(err, &container), errors.As(err, &execution), errors.As(err, &upload):
		response.WriteError(w, http.StatusBadGateway, err.Error())
	default:
		response.WriteError(w, http.StatusInternalServerError, err.Error())
	}
}
