package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/healthguard/healthguard/internal/application/dto"
	"github.com/healthguard/healthguard/internal/application/usecase"
	"github.com/healthguard/healthguard/internal/domain/model"
)

func intPtr(v int) *int { return &v }

func TestSimulateIntervention_Execute(t *testing.T) {
	t.Run("projects combination therapy", func(t *testing.T) {
		repo := &mockAssessmentRepository{}
		uc := usecase.NewSimulateIntervention(testEngine(t), repo, &mockEventPublisher{}, &mockMetrics{})

		resp, err := uc.Execute(context.Background(), dto.SimulateRequest{Patient: sickInput(), Action: intPtr(3)})

		require.NoError(t, err)
		assert.Equal(t, 3, resp.Action)
		assert.Equal(t, "Combination Therapy", resp.InterventionName)
		assert.Equal(t, 170.0, resp.CurrentMetrics["trestbps"])
		assert.Equal(t, 144.5, resp.OptimizedMetrics["trestbps"])
		assert.Equal(t, 240.0, resp.OptimizedMetrics["chol"])
		assert.LessOrEqual(t, resp.ExpectedRisk, resp.CurrentRisk)
		assert.Equal(t, []string{"trestbps", "chol", "thalach", "oldpeak"}, resp.ModifiableFeatures)
		assert.NotEmpty(t, resp.Explanation)

		require.NotNil(t, repo.savedAssessment)
		assert.Equal(t, "SIMULATION", repo.savedAssessment.Kind().String())
		assert.Equal(t, 3, repo.savedAssessment.Action().ID())
	})

	t.Run("monitor only keeps metrics", func(t *testing.T) {
		uc := usecase.NewSimulateIntervention(testEngine(t), &mockAssessmentRepository{}, &mockEventPublisher{}, &mockMetrics{})

		resp, err := uc.Execute(context.Background(), dto.SimulateRequest{Patient: sickInput(), Action: intPtr(0)})

		require.NoError(t, err)
		assert.Equal(t, resp.CurrentMetrics, resp.OptimizedMetrics)
		assert.Zero(t, resp.RiskReduction)
	})

	tests := []struct {
		name   string
		action *int
	}{
		{"missing action", nil},
		{"action below range", intPtr(-1)},
		{"action above range", intPtr(5)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			metrics := &mockMetrics{}
			uc := usecase.NewSimulateIntervention(testEngine(t), &mockAssessmentRepository{}, &mockEventPublisher{}, metrics)

			_, err := uc.Execute(context.Background(), dto.SimulateRequest{Patient: sickInput(), Action: tt.action})

			var verr *model.ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, "action", verr.Violations[0].Field)
			assert.Equal(t, []string{"SIMULATION/validation"}, metrics.failures)
		})
	}
}
