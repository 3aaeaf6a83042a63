package rest_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/healthguard/healthguard/internal/presentation/rest"
	"github.com/healthguard/healthguard/pkg/observability"
	"github.com/healthguard/healthguard/pkg/testutil"
)

func serveHealth(h *rest.HealthHandler, path string) *httptest.ResponseRecorder {
	mux := http.NewServeMux()
	h.RegisterRoutes(mux)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestStatus(t *testing.T) {
	t.Run("model loaded", func(t *testing.T) {
		h := rest.NewHealthHandler("healthguard", "cleveland-lr-1.0", observability.DiscardLogger())
		rec := serveHealth(h, "/")
		require.Equal(t, http.StatusOK, rec.Code)

		resp := testutil.DecodeJSON[rest.StatusResponse](t, rec.Body)
		assert.Equal(t, "healthy", resp.Status)
		assert.Equal(t, "HealthGuard API is running", resp.Message)
		assert.Equal(t, map[string]bool{"risk_predictor": true, "recommendation_engine": true}, resp.ModelsLoaded)
		assert.Equal(t, "cleveland-lr-1.0", resp.ModelVersion)
	})

	t.Run("model missing", func(t *testing.T) {
		h := rest.NewHealthHandler("healthguard", "", observability.DiscardLogger())
		rec := serveHealth(h, "/")
		require.Equal(t, http.StatusOK, rec.Code)

		resp := testutil.DecodeJSON[rest.StatusResponse](t, rec.Body)
		assert.Equal(t, "degraded", resp.Status)
		assert.False(t, resp.ModelsLoaded["risk_predictor"])
	})
}

func TestHealthz(t *testing.T) {
	h := rest.NewHealthHandler("healthguard", "", observability.DiscardLogger())
	rec := serveHealth(h, "/healthz")
	require.Equal(t, http.StatusOK, rec.Code)

	resp := testutil.DecodeJSON[rest.HealthResponse](t, rec.Body)
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, "healthguard", resp.Service)
}

func TestReadyz(t *testing.T) {
	ok := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("dial tcp: connection refused") }

	tests := []struct {
		name         string
		modelVersion string
		checks       map[string]rest.ReadinessCheck
		wantStatus   int
		wantChecks   map[string]string
	}{
		{
			name:         "all ok",
			modelVersion: "v1",
			checks:       map[string]rest.ReadinessCheck{"database": ok},
			wantStatus:   http.StatusOK,
			wantChecks:   map[string]string{"model": "ok", "database": "ok"},
		},
		{
			name:         "database down",
			modelVersion: "v1",
			checks:       map[string]rest.ReadinessCheck{"database": down},
			wantStatus:   http.StatusServiceUnavailable,
			wantChecks:   map[string]string{"model": "ok", "database": "dial tcp: connection refused"},
		},
		{
			name:       "model missing",
			wantStatus: http.StatusServiceUnavailable,
			wantChecks: map[string]string{"model": "not loaded"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := rest.NewHealthHandler("healthguard", tt.modelVersion, observability.DiscardLogger())
			for name, check := range tt.checks {
				h.WithCheck(name, check)
			}

			rec := serveHealth(h, "/readyz")
			assert.Equal(t, tt.wantStatus, rec.Code)
			resp := testutil.DecodeJSON[rest.ReadinessResponse](t, rec.Body)
			assert.Equal(t, tt.wantChecks, resp.Checks)
		})
	}
}

func TestRootDoesNotMatchSubpaths(t *testing.T) {
	h := rest.NewHealthHandler("healthguard", "v1", observability.DiscardLogger())
	rec := serveHealth(h, "/nope")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
