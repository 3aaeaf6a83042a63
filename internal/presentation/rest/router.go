package rest

import (
	"log/slog"
	"net/http"
)

// NewRouter assembles the HTTP API. metrics may be nil.
func NewRouter(
	health *HealthHandler,
	assessments *AssessmentHandler,
	metrics http.Handler,
	recorder RequestRecorder,
	logger *slog.Logger,
) http.Handler {
	mux := http.NewServeMux()
	health.RegisterRoutes(mux)
	assessments.RegisterRoutes(mux)
	if metrics != nil {
		mux.Handle("GET /metrics", metrics)
	}
	return Logging(logger, recorder)(mux)
}
