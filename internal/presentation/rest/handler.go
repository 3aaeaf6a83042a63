package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/healthguard/healthguard/internal/application/dto"
	"github.com/healthguard/healthguard/internal/application/usecase"
)

const maxBodyBytes = 1 << 20

// AssessmentHandler serves the prediction, recommendation and simulation API.
type AssessmentHandler struct {
	predictRisk           *usecase.PredictRisk
	recommendIntervention *usecase.RecommendIntervention
	simulateIntervention  *usecase.SimulateIntervention
	getAssessment         *usecase.GetAssessment
	listAssessments       *usecase.ListAssessments
	logger                *slog.Logger
}

// NewAssessmentHandler creates a new REST handler.
func NewAssessmentHandler(
	predictRisk *usecase.PredictRisk,
	recommendIntervention *usecase.RecommendIntervention,
	simulateIntervention *usecase.SimulateIntervention,
	getAssessment *usecase.GetAssessment,
	listAssessments *usecase.ListAssessments,
	logger *slog.Logger,
) *AssessmentHandler {
	return &AssessmentHandler{
		predictRisk:           predictRisk,
		recommendIntervention: recommendIntervention,
		simulateIntervention:  simulateIntervention,
		getAssessment:         getAssessment,
		listAssessments:       listAssessments,
		logger:                logger,
	}
}

// RegisterRoutes registers the API endpoints on the provided ServeMux.
func (h *AssessmentHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/predict", h.Predict)
	mux.HandleFunc("POST /api/recommend", h.Recommend)
	mux.HandleFunc("POST /api/simulate", h.Simulate)
	mux.HandleFunc("GET /api/assessments/{id}", h.Get)
	mux.HandleFunc("GET /api/assessments", h.List)
}

// Predict scores a patient. The body is the patient object itself.
func (h *AssessmentHandler) Predict(w http.ResponseWriter, r *http.Request) {
	var patient dto.PatientInput
	if err := decodeBody(w, r, &patient); err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	resp, err := h.predictRisk.Execute(r.Context(), dto.PredictRequest{Patient: patient})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Recommend returns the personalised intervention for a patient.
func (h *AssessmentHandler) Recommend(w http.ResponseWriter, r *http.Request) {
	var patient dto.PatientInput
	if err := decodeBody(w, r, &patient); err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	resp, err := h.recommendIntervention.Execute(r.Context(), dto.RecommendRequest{Patient: patient})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Simulate projects one intervention. The body is {"patient": {...}, "action": n}.
func (h *AssessmentHandler) Simulate(w http.ResponseWriter, r *http.Request) {
	var req dto.SimulateRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	resp, err := h.simulateIntervention.Execute(r.Context(), req)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Get returns a stored assessment.
func (h *AssessmentHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeBadRequest(w, fmt.Sprintf("invalid assessment id: %v", err))
		return
	}

	resp, err := h.getAssessment.Execute(r.Context(), dto.GetAssessmentRequest{AssessmentID: id})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// List pages through stored assessments, newest first.
func (h *AssessmentHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	offset, err := queryInt(r, "offset")
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	resp, err := h.listAssessments.Execute(r.Context(), dto.ListAssessmentsRequest{Limit: limit, Offset: offset})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is required")
		}
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}

func queryInt(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q is not an integer", name, raw)
	}
	return v, nil
}
