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

// SimulateIntervention is the use case for projecting a chosen intervention.
type SimulateIntervention struct {
	engine *service.RecommendationEngine
	recorder
}

// NewSimulateIntervention creates a new SimulateIntervention use case.
func NewSimulateIntervention(
	engine *service.RecommendationEngine,
	repo port.AssessmentRepository,
	publisher port.EventPublisher,
	metrics port.Metrics,
) *SimulateIntervention {
	return &SimulateIntervention{
		engine:   engine,
		recorder: recorder{repo: repo, publisher: publisher, metrics: metrics},
	}
}

// Execute simulates the intervention, records the assessment and publishes its events.
func (uc *SimulateIntervention) Execute(ctx context.Context, req dto.SimulateRequest) (dto.SimulationResponse, error) {
	ctx, span := tracer.Start(ctx, "SimulateIntervention")
	defer span.End()
	start := time.Now()
	kind := valueobject.KindSimulation

	if uc.engine == nil {
		return dto.SimulationResponse{}, uc.fail(ctx, span, kind.String(), service.ErrModelNotLoaded)
	}

	patient, err := req.Patient.Profile()
	if err != nil {
		return dto.SimulationResponse{}, uc.fail(ctx, span, kind.String(), err)
	}
	if req.Action == nil {
		return dto.SimulationResponse{}, uc.fail(ctx, span, kind.String(), model.NewValidationError("action", "is required"))
	}

	sim, err := uc.engine.Simulate(patient, *req.Action)
	if err != nil {
		return dto.SimulationResponse{}, uc.fail(ctx, span, kind.String(), err)
	}

	assessment, err := model.NewRiskAssessment(kind, patient, uc.engine.ModelVersion())
	if err != nil {
		return dto.SimulationResponse{}, uc.fail(ctx, span, kind.String(), fmt.Errorf("failed to create assessment: %w", err))
	}

	err = assessment.Complete(model.AssessmentOutcome{
		Tier:         uc.engine.Tier(sim.CurrentRisk),
		Action:       sim.Intervention,
		RiskFactors:  service.AnalyzeRiskFactors(patient, uc.engine.Policy()),
		BaselineRisk: sim.CurrentRisk,
		ExpectedRisk: sim.ExpectedRisk,
	})
	if err != nil {
		return dto.SimulationResponse{}, uc.fail(ctx, span, kind.String(), fmt.Errorf("failed to complete assessment: %w", err))
	}

	if err := uc.store(ctx, assessment); err != nil {
		return dto.SimulationResponse{}, uc.fail(ctx, span, kind.String(), err)
	}

	uc.succeed(ctx, span, assessment, start)
	return dto.FromSimulation(assessment, sim), nil
}
