package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/healthguard/healthguard/internal/application/dto"
	"github.com/healthguard/healthguard/internal/domain/model"
	"github.com/healthguard/healthguard/internal/domain/port"
	"github.com/healthguard/healthguard/internal/domain/service"
	"github.com/healthguard/healthguard/internal/domain/valueobject"
)

// PredictRisk is the use case for scoring a patient's cardiovascular disease risk.
type PredictRisk struct {
	engine *service.RecommendationEngine
	recorder
}

// NewPredictRisk creates a new PredictRisk use case. A nil engine makes every
// call fail with service.ErrModelNotLoaded.
func NewPredictRisk(
	engine *service.RecommendationEngine,
	repo port.AssessmentRepository,
	publisher port.EventPublisher,
	metrics port.Metrics,
) *PredictRisk {
	return &PredictRisk{
		engine:   engine,
		recorder: recorder{repo: repo, publisher: publisher, metrics: metrics},
	}
}

// Execute predicts the risk, records the assessment and publishes its events.
func (uc *PredictRisk) Execute(ctx context.Context, req dto.PredictRequest) (dto.RiskPredictionResponse, error) {
	ctx, span := tracer.Start(ctx, "PredictRisk")
	defer span.End()
	start := time.Now()
	kind := valueobject.KindPrediction

	if uc.engine == nil {
		return dto.RiskPredictionResponse{}, uc.fail(ctx, span, kind.String(), service.ErrModelNotLoaded)
	}

	patient, err := req.Patient.Profile()
	if err != nil {
		return dto.RiskPredictionResponse{}, uc.fail(ctx, span, kind.String(), err)
	}

	prediction, err := uc.engine.Predict(patient)
	if err != nil {
		return dto.RiskPredictionResponse{}, uc.fail(ctx, span, kind.String(), err)
	}

	assessment, err := model.NewRiskAssessment(kind, patient, uc.engine.ModelVersion())
	if err != nil {
		return dto.RiskPredictionResponse{}, uc.fail(ctx, span, kind.String(), fmt.Errorf("failed to create assessment: %w", err))
	}

	err = assessment.Complete(model.AssessmentOutcome{
		Tier:         uc.engine.Tier(prediction.RiskScore),
		RiskFactors:  service.AnalyzeRiskFactors(patient, uc.engine.Policy()),
		BaselineRisk: prediction.RiskScore,
		ExpectedRisk: prediction.RiskScore,
	})
	if err != nil {
		return dto.RiskPredictionResponse{}, uc.fail(ctx, span, kind.String(), fmt.Errorf("failed to complete assessment: %w", err))
	}

	if err := uc.store(ctx, assessment); err != nil {
		return dto.RiskPredictionResponse{}, uc.fail(ctx, span, kind.String(), err)
	}

	uc.succeed(ctx, span, assessment, start)
	return dto.FromPrediction(assessment, prediction), nil
}
