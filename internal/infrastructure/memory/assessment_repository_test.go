package memory_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/healthguard/healthguard/internal/domain/model"
	"github.com/healthguard/healthguard/internal/domain/port"
	"github.com/healthguard/healthguard/internal/domain/valueobject"
	"github.com/healthguard/healthguard/internal/infrastructure/memory"
)

var patient = model.PatientProfile{
	Age: 58, Sex: 1, CP: 3, Trestbps: 150, Chol: 260, FBS: 0, RestECG: 1,
	Thalach: 140, Exang: 0, Oldpeak: 1.4, Slope: 2, CA: 1, Thal: 6,
}

func assessmentAt(createdAt time.Time) *model.RiskAssessment {
	return model.Reconstruct(
		uuid.New(), valueobject.KindPrediction, patient,
		model.AssessmentOutcome{
			Tier:         valueobject.RiskTierModerate,
			RiskFactors:  valueobject.RiskFactors{Details: []string{"high cholesterol (260 mg/dL)"}, Moderate: 1},
			BaselineRisk: 42,
			ExpectedRisk: 42,
		},
		"v1", 2, createdAt, createdAt, createdAt,
	)
}

func TestAssessmentRepository_SaveAndFind(t *testing.T) {
	repo := memory.NewAssessmentRepository()
	ctx := context.Background()
	a := assessmentAt(time.Now().UTC())

	require.NoError(t, repo.Save(ctx, a))

	found, err := repo.FindByID(ctx, a.ID())
	require.NoError(t, err)
	assert.Equal(t, a.ID(), found.ID())
	assert.Equal(t, patient, found.Patient())
	assert.Equal(t, 42.0, found.BaselineRisk())
	assert.True(t, valueobject.RiskTierModerate.Equal(found.RiskTier()))

	found.RiskFactors().Details[0] = "mutated"
	again, err := repo.FindByID(ctx, a.ID())
	require.NoError(t, err)
	assert.Equal(t, "high cholesterol (260 mg/dL)", again.RiskFactors().Details[0])
}

func TestAssessmentRepository_FindMissing(t *testing.T) {
	_, err := memory.NewAssessmentRepository().FindByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, port.ErrAssessmentNotFound)
}

func TestAssessmentRepository_ListNewestFirst(t *testing.T) {
	repo := memory.NewAssessmentRepository()
	ctx := context.Background()
	base := time.Date(2026, 1, 15, 9, 0, 0, 0, time.UTC)

	var ids []uuid.UUID
	for i := range 5 {
		a := assessmentAt(base.Add(time.Duration(i) * time.Minute))
		ids = append(ids, a.ID())
		require.NoError(t, repo.Save(ctx, a))
	}

	page, total, err := repo.List(ctx, 2, 1)
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	require.Len(t, page, 2)
	assert.Equal(t, ids[3], page[0].ID())
	assert.Equal(t, ids[2], page[1].ID())

	tail, _, err := repo.List(ctx, 10, 4)
	require.NoError(t, err)
	require.Len(t, tail, 1)
	assert.Equal(t, ids[0], tail[0].ID())

	empty, total, err := repo.List(ctx, 10, 9)
	require.NoError(t, err)
	assert.Empty(t, empty)
	assert.Equal(t, 5, total)
}

func TestAssessmentRepository_ConcurrentSaves(t *testing.T) {
	repo := memory.NewAssessmentRepository()
	ctx := context.Background()

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, repo.Save(ctx, assessmentAt(time.Now().UTC())))
		}()
	}
	wg.Wait()

	_, total, err := repo.List(ctx, 100, 0)
	require.NoError(t, err)
	assert.Equal(t, 50, total)
}
