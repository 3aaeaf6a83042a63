package rest

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sort"
	"time"
)

// ReadinessCheck reports whether a dependency can serve traffic.
type ReadinessCheck func(ctx context.Context) error

const readinessTimeout = 2 * time.Second

// HealthHandler provides the service status and probe endpoints.
type HealthHandler struct {
	logger       *slog.Logger
	service      string
	modelVersion string
	modelLoaded  bool
	checks       map[string]ReadinessCheck
	startTime    time.Time
}

// NewHealthHandler creates a new health handler. modelVersion is empty when no
// risk model could be loaded.
func NewHealthHandler(service, modelVersion string, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{
		logger:       logger,
		service:      service,
		modelVersion: modelVersion,
		modelLoaded:  modelVersion != "",
		checks:       make(map[string]ReadinessCheck),
		startTime:    time.Now(),
	}
}

// WithCheck adds a named readiness check.
func (h *HealthHandler) WithCheck(name string, check ReadinessCheck) *HealthHandler {
	h.checks[name] = check
	return h
}

// StatusResponse is the JSON body of GET /.
type StatusResponse struct {
	ModelsLoaded map[string]bool `json:"models_loaded"`
	Status       string          `json:"status"`
	Message      string          `json:"message"`
	ModelVersion string          `json:"model_version,omitempty"`
}

// HealthResponse is the JSON response for liveness checks.
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Uptime  string `json:"uptime"`
}

// ReadinessResponse is the JSON response for readiness checks.
type ReadinessResponse struct {
	Checks  map[string]string `json:"checks"`
	Status  string            `json:"status"`
	Service string            `json:"service"`
}

// RegisterRoutes registers health endpoints on the provided ServeMux.
func (h *HealthHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", h.Status)
	mux.HandleFunc("GET /healthz", h.Healthz)
	mux.HandleFunc("GET /readyz", h.Readyz)
}

// Status reports whether the risk model and recommendation engine are loaded.
func (h *HealthHandler) Status(w http.ResponseWriter, _ *http.Request) {
	resp := StatusResponse{
		ModelsLoaded: map[string]bool{
			"risk_predictor":        h.modelLoaded,
			"recommendation_engine": h.modelLoaded,
		},
		Status:       "healthy",
		Message:      "HealthGuard API is running",
		ModelVersion: h.modelVersion,
	}
	if !h.modelLoaded {
		resp.Status = "degraded"
	}
	writeJSON(w, http.StatusOK, resp)
}

// Healthz handles liveness probe requests.
func (h *HealthHandler) Healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:  "healthy",
		Service: h.service,
		Uptime:  time.Since(h.startTime).Round(time.Second).String(),
	})
}

// Readyz handles readiness probe requests.
func (h *HealthHandler) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
	defer cancel()

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	resp := ReadinessResponse{
		Checks:  make(map[string]string, len(names)+1),
		Status:  "ready",
		Service: h.service,
	}
	code := http.StatusOK

	resp.Checks["model"] = "ok"
	if !h.modelLoaded {
		resp.Checks["model"] = "not loaded"
		resp.Status = "not_ready"
		code = http.StatusServiceUnavailable
	}

	for _, name := range names {
		if err := h.checks[name](ctx); err != nil {
			h.logger.Warn("readiness check failed", "check", name, "error", err)
			resp.Checks[name] = err.Error()
			resp.Status = "not_ready"
			code = http.StatusServiceUnavailable
			continue
		}
		resp.Checks[name] = "ok"
	}

	writeJSON(w, code, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
