package model_test

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/healthguard/healthguard/internal/domain/event"
	"github.com/healthguard/healthguard/internal/domain/model"
	"github.com/healthguard/healthguard/internal/domain/valueobject"
	"github.com/healthguard/healthguard/pkg/testutil"
)

func newPatient(t *testing.T) model.PatientProfile {
	t.Helper()
	p, err := model.NewPatientProfile(validValues())
	require.NoError(t, err)
	return p
}

func newAssessment(t *testing.T, kind valueobject.AssessmentKind) *model.RiskAssessment {
	t.Helper()
	a, err := model.NewRiskAssessment(kind, newPatient(t), "test-v1")
	require.NoError(t, err)
	return a
}

func TestNewRiskAssessment_Valid(t *testing.T) {
	a := newAssessment(t, valueobject.KindRecommendation)

	assert.NotEqual(t, uuid.Nil, a.ID())
	assert.Equal(t, valueobject.KindRecommendation, a.Kind())
	assert.Equal(t, "test-v1", a.ModelVersion())
	assert.Equal(t, 1, a.Version())
	assert.False(t, a.IsCompleted())
	assert.False(t, a.CreatedAt().IsZero())
	assert.Empty(t, a.DomainEvents())
}

func TestNewRiskAssessment_Validation(t *testing.T) {
	p := newPatient(t)

	_, err := model.NewRiskAssessment(valueobject.AssessmentKind{}, p, "v1")
	testutil.AssertErrorContains(t, err, "kind is required")

	_, err = model.NewRiskAssessment(valueobject.KindPrediction, p, "")
	testutil.AssertErrorContains(t, err, "model version is required")

	bad := p
	bad.Age = -1
	_, err = model.NewRiskAssessment(valueobject.KindPrediction, bad, "v1")
	var verr *model.ValidationError
	assert.True(t, errors.As(err, &verr))
}

func TestComplete_RecordsOutcomeAndEvent(t *testing.T) {
	a := newAssessment(t, valueobject.KindRecommendation)

	err := a.Complete(model.AssessmentOutcome{
		BaselineRisk: 42,
		ExpectedRisk: 30,
		Tier:         valueobject.RiskTierModerate,
		Action:       valueobject.InterventionSingleMedication,
		RiskFactors:  valueobject.RiskFactors{Severe: 1, Moderate: 1, Details: []string{"a", "b"}},
	})
	require.NoError(t, err)

	assert.True(t, a.IsCompleted())
	assert.Equal(t, 2, a.Version())
	assert.InDelta(t, 12.0, a.RiskReduction(), 1e-9)
	assert.Equal(t, valueobject.InterventionSingleMedication, a.Action())

	evts := a.DomainEvents()
	require.Len(t, evts, 1)
	completed, ok := evts[0].(event.AssessmentCompleted)
	require.True(t, ok)
	assert.Equal(t, event.EventTypeAssessmentCompleted, completed.EventType())
	assert.Equal(t, a.ID(), completed.AggregateID())
	assert.Equal(t, "RECOMMENDATION", completed.Kind)
	require.NotNil(t, completed.Action)
	assert.Equal(t, 2, *completed.Action)
	assert.Equal(t, 1, completed.SevereFactors)

	assert.Empty(t, a.DomainEvents(), "events are cleared after reading")
}

func TestComplete_VeryHighRiskEmitsHighRiskDetected(t *testing.T) {
	a := newAssessment(t, valueobject.KindPrediction)

	require.NoError(t, a.Complete(model.AssessmentOutcome{
		BaselineRisk: 85,
		ExpectedRisk: 85,
		Tier:         valueobject.RiskTierVeryHigh,
		RiskFactors:  valueobject.RiskFactors{Severe: 2, Details: []string{"severe hypertension (BP: 170 mmHg)"}},
	}))

	evts := a.DomainEvents()
	require.Len(t, evts, 2)
	assert.Equal(t, event.EventTypeAssessmentCompleted, evts[0].EventType())
	high, ok := evts[1].(event.HighRiskDetected)
	require.True(t, ok)
	assert.Equal(t, 85.0, high.BaselineRisk)
	assert.Equal(t, []string{"severe hypertension (BP: 170 mmHg)"}, high.RiskFactors)

	completed := evts[0].(event.AssessmentCompleted)
	assert.Nil(t, completed.Action)
}

func TestComplete_Invariants(t *testing.T) {
	tests := []struct {
		name    string
		kind    valueobject.AssessmentKind
		outcome model.AssessmentOutcome
		wantErr string
	}{
		{
			name:    "baseline above 100",
			kind:    valueobject.KindPrediction,
			outcome: model.AssessmentOutcome{BaselineRisk: 101, ExpectedRisk: 50, Tier: valueobject.RiskTierVeryHigh},
			wantErr: "baseline risk must be between 0 and 100",
		},
		{
			name:    "negative expected",
			kind:    valueobject.KindPrediction,
			outcome: model.AssessmentOutcome{BaselineRisk: 10, ExpectedRisk: -1, Tier: valueobject.RiskTierLow},
			wantErr: "expected risk must be between 0 and 100",
		},
		{
			name: "expected above baseline",
			kind: valueobject.KindSimulation,
			outcome: model.AssessmentOutcome{
				BaselineRisk: 20, ExpectedRisk: 21, Tier: valueobject.RiskTierLowModerate,
				Action: valueobject.InterventionLifestyle,
			},
			wantErr: "exceeds baseline",
		},
		{
			name:    "missing tier",
			kind:    valueobject.KindPrediction,
			outcome: model.AssessmentOutcome{BaselineRisk: 10, ExpectedRisk: 10},
			wantErr: "risk tier is required",
		},
		{
			name:    "recommendation without action",
			kind:    valueobject.KindRecommendation,
			outcome: model.AssessmentOutcome{BaselineRisk: 10, ExpectedRisk: 10, Tier: valueobject.RiskTierLow},
			wantErr: "requires an intervention",
		},
		{
			name: "prediction with action",
			kind: valueobject.KindPrediction,
			outcome: model.AssessmentOutcome{
				BaselineRisk: 10, ExpectedRisk: 10, Tier: valueobject.RiskTierLow,
				Action: valueobject.InterventionMonitorOnly,
			},
			wantErr: "cannot carry an intervention",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newAssessment(t, tt.kind)
			err := a.Complete(tt.outcome)
			testutil.AssertErrorContains(t, err, tt.wantErr)
			assert.False(t, a.IsCompleted())
			assert.Empty(t, a.DomainEvents())
		})
	}
}

func TestComplete_Twice(t *testing.T) {
	a := newAssessment(t, valueobject.KindPrediction)
	outcome := model.AssessmentOutcome{BaselineRisk: 10, ExpectedRisk: 10, Tier: valueobject.RiskTierLow}

	require.NoError(t, a.Complete(outcome))
	assert.ErrorIs(t, a.Complete(outcome), model.ErrAlreadyCompleted)
}

func TestReconstruct(t *testing.T) {
	p := newPatient(t)
	outcome := model.AssessmentOutcome{
		BaselineRisk: 55, ExpectedRisk: 40, Tier: valueobject.RiskTierHigh,
		Action: valueobject.InterventionCombinationTherapy,
	}

	a := model.Reconstruct(testutil.TestAssessmentID1, valueobject.KindSimulation, p, outcome, "v2", 2,
		testutil.TestTime, testutil.TestTime, testutil.TestTime)

	assert.Equal(t, testutil.TestAssessmentID1, a.ID())
	assert.Equal(t, outcome, a.Outcome())
	assert.Equal(t, p, a.Patient())
	assert.True(t, a.IsCompleted())
	assert.Empty(t, a.DomainEvents())
}
