//go:build integration

package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/healthguard/healthguard/internal/domain/model"
	"github.com/healthguard/healthguard/internal/domain/port"
	"github.com/healthguard/healthguard/internal/domain/valueobject"
	"github.com/healthguard/healthguard/internal/infrastructure/postgres"
	pgutil "github.com/healthguard/healthguard/pkg/postgres"
	"github.com/healthguard/healthguard/pkg/testutil"
)

func TestAssessmentRepository_Integration(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Cleanup(t)

	require.NoError(t, postgres.Migrate(pc.DSN, "", pgutil.Up))
	require.NoError(t, postgres.Migrate(pc.DSN, "", pgutil.Up), "re-running is a no-op")

	repo := postgres.NewAssessmentRepository(pc.Pool)
	patient := model.PatientProfile{
		Age: 52, Sex: 0, CP: 2, Trestbps: 136, Chol: 244, FBS: 0, RestECG: 0,
		Thalach: 158, Exang: 0, Oldpeak: 0.8, Slope: 1, CA: 0, Thal: 3,
	}

	var saved []*model.RiskAssessment
	for i, kind := range []valueobject.AssessmentKind{valueobject.KindPrediction, valueobject.KindSimulation} {
		a, err := model.NewRiskAssessment(kind, patient, "it-1")
		require.NoError(t, err)

		outcome := model.AssessmentOutcome{Tier: valueobject.RiskTierLowModerate, BaselineRisk: 21.5, ExpectedRisk: 21.5}
		if kind.HasAction() {
			outcome.Action = valueobject.InterventionLifestyle
			outcome.ExpectedRisk = 18.25
		}
		require.NoError(t, a.Complete(outcome))
		require.NoError(t, repo.Save(ctx, a), "save %d", i)
		saved = append(saved, a)
		time.Sleep(5 * time.Millisecond)
	}

	t.Run("find by id", func(t *testing.T) {
		found, err := repo.FindByID(ctx, saved[1].ID())
		require.NoError(t, err)
		assert.Equal(t, patient, found.Patient())
		assert.Equal(t, 18.25, found.ExpectedRisk())
		assert.Equal(t, valueobject.ActionLifestyle, found.Action().ID())
		assert.WithinDuration(t, saved[1].CreatedAt(), found.CreatedAt(), time.Millisecond)
	})

	t.Run("missing id", func(t *testing.T) {
		_, err := repo.FindByID(ctx, testutil.TestAssessmentID1)
		assert.ErrorIs(t, err, port.ErrAssessmentNotFound)
	})

	t.Run("list newest first", func(t *testing.T) {
		page, total, err := repo.List(ctx, 1, 0)
		require.NoError(t, err)
		assert.Equal(t, 2, total)
		require.Len(t, page, 1)
		assert.Equal(t, saved[1].ID(), page[0].ID())
	})

	t.Run("stale version does not overwrite", func(t *testing.T) {
		stale := model.Reconstruct(
			saved[0].ID(), saved[0].Kind(), patient,
			model.AssessmentOutcome{Tier: valueobject.RiskTierHigh, BaselineRisk: 60, ExpectedRisk: 60},
			"it-1", 1, saved[0].CreatedAt(), time.Now(), time.Now(),
		)
		require.NoError(t, repo.Save(ctx, stale))

		found, err := repo.FindByID(ctx, saved[0].ID())
		require.NoError(t, err)
		assert.Equal(t, 21.5, found.BaselineRisk())
	})

	require.NoError(t, postgres.Migrate(pc.DSN, "", pgutil.Down))
}
