package rest

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/healthguard/healthguard/internal/domain/model"
	"github.com/healthguard/healthguard/internal/domain/port"
	"github.com/healthguard/healthguard/internal/domain/service"
)

// ErrorResponse is the JSON body of every failed request.
type ErrorResponse struct {
	Error      string                 `json:"error"`
	Detail     string                 `json:"detail"`
	Violations []model.FieldViolation `json:"violations,omitempty"`
}

// Error codes carried in ErrorResponse.Error.
const (
	codeInvalidRequest   = "invalid_request"
	codeValidation       = "validation_error"
	codeNotFound         = "not_found"
	codeModelUnavailable = "model_unavailable"
	codeInternal         = "internal_error"
)

// writeError maps a use case error to its status code and body. Unexpected
// errors are logged and their text is not returned to the caller.
func writeError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	var verr *model.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{
			Error:      codeValidation,
			Detail:     verr.Error(),
			Violations: verr.Violations,
		})
	case errors.Is(err, port.ErrAssessmentNotFound):
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: codeNotFound, Detail: "assessment not found"})
	case errors.Is(err, service.ErrModelNotLoaded):
		writeJSON(w, http.StatusServiceUnavailable, ErrorResponse{Error: codeModelUnavailable, Detail: "Models not loaded"})
	default:
		logger.Error("request failed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: codeInternal, Detail: "internal error"})
	}
}

func writeBadRequest(w http.ResponseWriter, detail string) {
	writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: codeInvalidRequest, Detail: detail})
}
