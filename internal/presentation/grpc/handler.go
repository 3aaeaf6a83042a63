package grpc

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/healthguard/healthguard/internal/application/dto"
	"github.com/healthguard/healthguard/internal/application/usecase"
	"github.com/healthguard/healthguard/internal/domain/model"
	"github.com/healthguard/healthguard/internal/domain/port"
	"github.com/healthguard/healthguard/internal/domain/service"
)

// Compile-time assertion that HealthGuardHandler implements HealthGuardServiceServer.
var _ HealthGuardServiceServer = (*HealthGuardHandler)(nil)

// HealthGuardHandler implements the gRPC HealthGuardServiceServer interface.
type HealthGuardHandler struct {
	UnimplementedHealthGuardServiceServer
	predictRisk           *usecase.PredictRisk
	recommendIntervention *usecase.RecommendIntervention
	simulateIntervention  *usecase.SimulateIntervention
	getAssessment         *usecase.GetAssessment
	logger                *slog.Logger
}

// NewHealthGuardHandler creates a new gRPC handler.
func NewHealthGuardHandler(
	predictRisk *usecase.PredictRisk,
	recommendIntervention *usecase.RecommendIntervention,
	simulateIntervention *usecase.SimulateIntervention,
	getAssessment *usecase.GetAssessment,
	logger *slog.Logger,
) *HealthGuardHandler {
	return &HealthGuardHandler{
		predictRisk:           predictRisk,
		recommendIntervention: recommendIntervention,
		simulateIntervention:  simulateIntervention,
		getAssessment:         getAssessment,
		logger:                logger,
	}
}

// Proto-aligned request/response message types.

// PredictRiskRequest represents the proto PredictRiskRequest message.
type PredictRiskRequest struct {
	Patient map[string]float64 `json:"patient"`
}

// PredictRiskResponse represents the proto PredictRiskResponse message.
type PredictRiskResponse struct {
	Prediction *dto.RiskPredictionResponse `json:"prediction"`
}

// RecommendInterventionRequest represents the proto RecommendInterventionRequest message.
type RecommendInterventionRequest struct {
	Patient map[string]float64 `json:"patient"`
}

// RecommendInterventionResponse represents the proto RecommendInterventionResponse message.
type RecommendInterventionResponse struct {
	Recommendation *dto.RecommendationResponse `json:"recommendation"`
}

// SimulateInterventionRequest represents the proto SimulateInterventionRequest message.
type SimulateInterventionRequest struct {
	Patient map[string]float64 `json:"patient"`
	Action  *int32             `json:"action"`
}

// SimulateInterventionResponse represents the proto SimulateInterventionResponse message.
type SimulateInterventionResponse struct {
	Simulation *dto.SimulationResponse `json:"simulation"`
}

// GetAssessmentRequest represents the proto GetAssessmentRequest message.
type GetAssessmentRequest struct {
	ID string `json:"id"`
}

// GetAssessmentResponse represents the proto GetAssessmentResponse message.
type GetAssessmentResponse struct {
	Assessment *dto.AssessmentResponse `json:"assessment"`
}

// PredictRisk handles a risk prediction request.
func (h *HealthGuardHandler) PredictRisk(ctx context.Context, req *PredictRiskRequest) (*PredictRiskResponse, error) {
	if req == nil || req.Patient == nil {
		return nil, status.Error(codes.InvalidArgument, "patient is required")
	}

	result, err := h.predictRisk.Execute(ctx, dto.PredictRequest{Patient: req.Patient})
	if err != nil {
		return nil, h.toStatus("PredictRisk", err)
	}
	return &PredictRiskResponse{Prediction: &result}, nil
}

// RecommendIntervention handles a recommendation request.
func (h *HealthGuardHandler) RecommendIntervention(ctx context.Context, req *RecommendInterventionRequest) (*RecommendInterventionResponse, error) {
	if req == nil || req.Patient == nil {
		return nil, status.Error(codes.InvalidArgument, "patient is required")
	}

	result, err := h.recommendIntervention.Execute(ctx, dto.RecommendRequest{Patient: req.Patient})
	if err != nil {
		return nil, h.toStatus("RecommendIntervention", err)
	}
	return &RecommendInterventionResponse{Recommendation: &result}, nil
}

// SimulateIntervention handles a simulation request.
func (h *HealthGuardHandler) SimulateIntervention(ctx context.Context, req *SimulateInterventionRequest) (*SimulateInterventionResponse, error) {
	if req == nil || req.Patient == nil {
		return nil, status.Error(codes.InvalidArgument, "patient is required")
	}

	var action *int
	if req.Action != nil {
		a := int(*req.Action)
		action = &a
	}

	result, err := h.simulateIntervention.Execute(ctx, dto.SimulateRequest{Patient: req.Patient, Action: action})
	if err != nil {
		return nil, h.toStatus("SimulateIntervention", err)
	}
	return &SimulateInterventionResponse{Simulation: &result}, nil
}

// GetAssessment handles a get assessment request.
func (h *HealthGuardHandler) GetAssessment(ctx context.Context, req *GetAssessmentRequest) (*GetAssessmentResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	assessmentID, err := uuid.Parse(req.ID)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid id: %v", err)
	}

	result, err := h.getAssessment.Execute(ctx, dto.GetAssessmentRequest{AssessmentID: assessmentID})
	if err != nil {
		return nil, h.toStatus("GetAssessment", err)
	}
	return &GetAssessmentResponse{Assessment: &result}, nil
}

func (h *HealthGuardHandler) toStatus(method string, err error) error {
	var verr *model.ValidationError
	switch {
	case errors.As(err, &verr):
		return status.Error(codes.InvalidArgument, verr.Error())
	case errors.Is(err, port.ErrAssessmentNotFound):
		return status.Error(codes.NotFound, "assessment not found")
	case errors.Is(err, service.ErrModelNotLoaded):
		return status.Error(codes.Unavailable, "models not loaded")
	default:
		h.logger.Error("request failed",
			slog.String("method", method),
			slog.String("error", err.Error()),
		)
		return status.Error(codes.Internal, "internal error")
	}
}
