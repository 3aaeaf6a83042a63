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

// RecommendIntervention is the use case for choosing a treatment for a patient.
type RecommendIntervention struct {
	engine *service.RecommendationEngine
	recorder
}

// NewRecommendIntervention creates a new RecommendIntervention use case.
func NewRecommendIntervention(
	engine *service.RecommendationEngine,
	repo port.AssessmentRepository,
	publisher port.EventPublisher,
	metrics port.Metrics,
) *RecommendIntervention {
	return &RecommendIntervention{
		engine:   engine,
		recorder: recorder{repo: repo, publisher: publisher, metrics: metrics},
	}
}

// Execute runs the recommendation engine, records the assessment and publishes its events.
func (uc *RecommendIntervention) Execute(ctx context.Context, req dto.RecommendRequest) (dto.RecommendationResponse, error) {
	ctx, span := tracer.Start(ctx, "RecommendIntervention")
	defer span.End()
	start := time.Now()
	kind := valueobject.KindRecommendation

	if uc.engine == nil {
		return dto.RecommendationResponse{}, uc.fail(ctx, span, kind.String(), service.ErrModelNotLoaded)
	}

	patient, err := req.Patient.Profile()
	if err != nil {
		return dto.RecommendationResponse{}, uc.fail(ctx, span, kind.String(), err)
	}

	rec, err := uc.engine.Recommend(patient)
	if err != nil {
		return dto.RecommendationResponse{}, uc.fail(ctx, span, kind.String(), err)
	}

	assessment, err := model.NewRiskAssessment(kind, patient, uc.engine.ModelVersion())
	if err != nil {
		return dto.RecommendationResponse{}, uc.fail(ctx, span, kind.String(), fmt.Errorf("failed to create assessment: %w", err))
	}

	err = assessment.Complete(model.AssessmentOutcome{
		Tier:         rec.Tier,
		Action:       rec.Recommended,
		RiskFactors:  rec.RiskFactors,
		BaselineRisk: rec.Baseline.RiskScore,
		ExpectedRisk: rec.ExpectedFinalRisk,
	})
	if err != nil {
		return dto.RecommendationResponse{}, uc.fail(ctx, span, kind.String(), fmt.Errorf("failed to complete assessment: %w", err))
	}

	if err := uc.store(ctx, assessment); err != nil {
		return dto.RecommendationResponse{}, uc.fail(ctx, span, kind.String(), err)
	}

	uc.succeed(ctx, span, assessment, start)
	return dto.FromRecommendation(assessment, rec), nil
}
