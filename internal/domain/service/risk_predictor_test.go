package service_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/healthguard/healthguard/internal/domain/service"
)

func TestLogisticModel_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*service.LogisticModel)
		wantErr string
	}{
		{"valid", func(*service.LogisticModel) {}, ""},
		{"missing version", func(m *service.LogisticModel) { m.Version = "" }, "version is required"},
		{"too few features", func(m *service.LogisticModel) { m.FeatureNames = m.FeatureNames[:12] }, "expected 13"},
		{"wrong order", func(m *service.LogisticModel) {
			m.FeatureNames[0], m.FeatureNames[1] = m.FeatureNames[1], m.FeatureNames[0]
		}, `feature 0 is "sex"`},
		{"short coefficients", func(m *service.LogisticModel) { m.Coefficients = m.Coefficients[:5] }, "must have 13 entries"},
		{"zero scale", func(m *service.LogisticModel) { m.Scales[3] = 0 }, "scale for trestbps must be positive"},
		{"negative scale", func(m *service.LogisticModel) { m.Scales[4] = -1 }, "scale for chol must be positive"},
		{"nan coefficient", func(m *service.LogisticModel) { m.Coefficients[2] = math.NaN() }, "parameters for cp must be finite"},
		{"infinite intercept", func(m *service.LogisticModel) { m.Intercept = math.Inf(1) }, "intercept must be finite"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := clinicalModel()
			tt.mutate(&m)
			err := m.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)

			_, err = service.NewRiskPredictor(m)
			assert.ErrorContains(t, err, "invalid risk model")
		})
	}
}

func TestRiskPredictor_PredictLogisticLink(t *testing.T) {
	tests := []struct {
		name        string
		intercept   float64
		wantScore   float64
		wantClass   string
		wantDisease bool
	}{
		{"even odds", 0, 50, service.ClassificationMedium, true},
		{"three to one", math.Log(3), 75, service.ClassificationHigh, true},
		{"one to four", -math.Log(4), 20, service.ClassificationLow, false},
		{"one to one hundred", -math.Log(99), 1, service.ClassificationLow, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := zeroModel()
			m.Intercept = tt.intercept
			pred := newPredictor(t, m).Predict(healthyPatient())

			assert.InDelta(t, tt.wantScore, pred.RiskScore, 1e-9)
			assert.InDelta(t, tt.wantScore/100, pred.Probability, 1e-12)
			assert.Equal(t, tt.wantClass, pred.Classification)
			assert.Equal(t, tt.wantDisease, pred.HasDisease)
		})
	}
}

func TestRiskPredictor_AppliesStandardScaling(t *testing.T) {
	m := zeroModel()
	m.Means[0], m.Scales[0], m.Coefficients[0] = 50, 10, 1 // age

	p := healthyPatient()
	p.Age = 60 // z = 1, logit = 1

	pred := newPredictor(t, m).Predict(p)
	assert.InDelta(t, 100/(1+math.Exp(-1)), pred.RiskScore, 1e-9)

	p.Age = 40 // z = -1
	pred = newPredictor(t, m).Predict(p)
	assert.InDelta(t, 100/(1+math.Exp(1)), pred.RiskScore, 1e-9)
}

func TestRiskPredictor_ExtremeLogitsStayFinite(t *testing.T) {
	m := zeroModel()
	m.Intercept = 800
	assert.Equal(t, 100.0, newPredictor(t, m).Predict(healthyPatient()).RiskScore)

	m.Intercept = -800
	score := newPredictor(t, m).Predict(healthyPatient()).RiskScore
	assert.False(t, math.IsNaN(score))
	assert.InDelta(t, 0, score, 1e-12)
}

func TestClassify_Boundaries(t *testing.T) {
	assert.Equal(t, service.ClassificationLow, service.Classify(29.999))
	assert.Equal(t, service.ClassificationMedium, service.Classify(30))
	assert.Equal(t, service.ClassificationMedium, service.Classify(69.999))
	assert.Equal(t, service.ClassificationHigh, service.Classify(70))
}

func TestRiskPredictor_FeatureImportance(t *testing.T) {
	m := zeroModel()
	m.Coefficients[0] = 1  // age
	m.Coefficients[3] = -1 // trestbps
	m.Coefficients[11] = 2 // ca

	pred := newPredictor(t, m)
	imp := pred.FeatureImportance()

	assert.InDelta(t, 0.25, imp["age"], 1e-12)
	assert.InDelta(t, 0.25, imp["trestbps"], 1e-12)
	assert.InDelta(t, 0.5, imp["ca"], 1e-12)
	assert.Zero(t, imp["chol"])

	total := 0.0
	for _, v := range imp {
		total += v
	}
	assert.InDelta(t, 1.0, total, 1e-12)

	top := pred.TopFeatures(3)
	assert.Equal(t, []service.FeatureWeight{
		{Name: "ca", Weight: 0.5},
		{Name: "age", Weight: 0.25},
		{Name: "trestbps", Weight: 0.25},
	}, top)

	assert.Len(t, pred.TopFeatures(0), 13)
	assert.Len(t, pred.TopFeatures(100), 13)
}

func TestRiskPredictor_ZeroCoefficientsSpreadImportance(t *testing.T) {
	imp := newPredictor(t, zeroModel()).FeatureImportance()
	for name, v := range imp {
		assert.InDelta(t, 1.0/13, v, 1e-12, name)
	}
}

func TestRiskPredictor_ImportanceIsACopy(t *testing.T) {
	pred := newPredictor(t, clinicalModel())
	imp := pred.FeatureImportance()
	imp["ca"] = 42
	assert.NotEqual(t, 42.0, pred.FeatureImportance()["ca"])
	assert.Equal(t, "clinical-test", pred.ModelVersion())
}

func TestRiskPredictor_ClinicalDirection(t *testing.T) {
	pred := newPredictor(t, clinicalModel())

	healthy := pred.Predict(healthyPatient())
	sick := pred.Predict(sickPatient())
	assert.Less(t, healthy.RiskScore, 30.0)
	assert.Greater(t, sick.RiskScore, 70.0)

	p := healthyPatient()
	lowBP := pred.Predict(p).RiskScore
	p.Trestbps = 160
	assert.Greater(t, pred.Predict(p).RiskScore, lowBP)
}
