package usecase_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/healthguard/healthguard/internal/application/dto"
	"github.com/healthguard/healthguard/internal/domain/model"
	"github.com/healthguard/healthguard/internal/domain/port"
	"github.com/healthguard/healthguard/internal/domain/service"
	"github.com/healthguard/healthguard/pkg/events"
)

// --- Mock implementations ---

type mockAssessmentRepository struct {
	savedAssessment *model.RiskAssessment
	saveFunc        func(ctx context.Context, assessment *model.RiskAssessment) error
	findByIDFunc    func(ctx context.Context, id uuid.UUID) (*model.RiskAssessment, error)
	listFunc        func(ctx context.Context, limit, offset int) ([]*model.RiskAssessment, int, error)
}

func (m *mockAssessmentRepository) Save(ctx context.Context, assessment *model.RiskAssessment) error {
	if m.saveFunc != nil {
		return m.saveFunc(ctx, assessment)
	}
	m.savedAssessment = assessment
	return nil
}

func (m *mockAssessmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.RiskAssessment, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, port.ErrAssessmentNotFound
}

func (m *mockAssessmentRepository) List(ctx context.Context, limit, offset int) ([]*model.RiskAssessment, int, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, limit, offset)
	}
	return nil, 0, nil
}

type mockEventPublisher struct {
	publishedEvents []events.DomainEvent
	publishFunc     func(ctx context.Context, evts ...events.DomainEvent) error
}

func (m *mockEventPublisher) Publish(ctx context.Context, evts ...events.DomainEvent) error {
	if m.publishFunc != nil {
		return m.publishFunc(ctx, evts...)
	}
	m.publishedEvents = append(m.publishedEvents, evts...)
	return nil
}

type mockMetrics struct {
	mu        sync.Mutex
	completed []string
	failures  []string
}

func (m *mockMetrics) RecordAssessment(_ context.Context, kind, tier string, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.completed = append(m.completed, kind+"/"+tier)
}

func (m *mockMetrics) RecordFailure(_ context.Context, kind, reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures = append(m.failures, kind+"/"+reason)
}

// --- Fixtures ---

func testModel() service.LogisticModel {
	return service.LogisticModel{
		Version:      "test-1",
		FeatureNames: append([]string(nil), model.FeatureNames...),
		Means:        []float64{54.4, 0.68, 3.16, 131.7, 246.7, 0.15, 0.99, 149.6, 0.33, 1.04, 1.6, 0.67, 4.73},
		Scales:       []float64{9.04, 0.47, 0.96, 17.6, 51.8, 0.36, 0.99, 22.9, 0.47, 1.16, 0.62, 0.94, 1.94},
		Coefficients: []float64{0.1, 0.6, 0.8, 0.3, 0.2, -0.05, 0.2, -0.45, 0.4, 0.55, 0.35, 0.9, 0.7},
		Intercept:    -0.15,
	}
}

func testEngine(t *testing.T) *service.RecommendationEngine {
	t.Helper()
	predictor, err := service.NewRiskPredictor(testModel())
	require.NoError(t, err)
	engine, err := service.NewRecommendationEngine(predictor, service.DefaultPolicy())
	require.NoError(t, err)
	return engine
}

func healthyInput() dto.PatientInput {
	return dto.PatientInput{
		"age": 45, "sex": 0, "cp": 1, "trestbps": 118, "chol": 190, "fbs": 0, "restecg": 0,
		"thalach": 170, "exang": 0, "oldpeak": 0.2, "slope": 1, "ca": 0, "thal": 3,
	}
}

func sickInput() dto.PatientInput {
	return dto.PatientInput{
		"age": 65, "sex": 1, "cp": 4, "trestbps": 170, "chol": 300, "fbs": 1, "restecg": 1,
		"thalach": 110, "exang": 1, "oldpeak": 3.0, "slope": 2, "ca": 2, "thal": 7,
	}
}
