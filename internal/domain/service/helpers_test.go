package service_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/healthguard/healthguard/internal/domain/model"
	"github.com/healthguard/healthguard/internal/domain/service"
)

// predictorFunc adapts a function to service.Predictor.
type predictorFunc func(p model.PatientProfile) service.Prediction

func (f predictorFunc) Predict(p model.PatientProfile) service.Prediction { return f(p) }

// fixedRisk predicts the same score for every profile.
func fixedRisk(score float64) service.Predictor {
	return predictorFunc(func(model.PatientProfile) service.Prediction {
		return service.Prediction{
			RiskScore:         score,
			Probability:       score / 100,
			HasDisease:        score >= 50,
			Classification:    service.Classify(score),
			FeatureImportance: map[string]float64{"ca": 0.5, "thal": 0.3, "trestbps": 0.2},
		}
	})
}

// zeroModel has no signal: every patient scores 50 %.
func zeroModel() service.LogisticModel {
	n := len(model.FeatureNames)
	m := service.LogisticModel{
		Version:      "zero",
		FeatureNames: append([]string(nil), model.FeatureNames...),
		Means:        make([]float64, n),
		Scales:       make([]float64, n),
		Coefficients: make([]float64, n),
	}
	for i := range m.Scales {
		m.Scales[i] = 1
	}
	return m
}

// clinicalModel raises risk with blood pressure, cholesterol and ST depression
// and lowers it with maximum heart rate, like a real fit on the Cleveland data.
func clinicalModel() service.LogisticModel {
	return service.LogisticModel{
		Version:      "clinical-test",
		FeatureNames: append([]string(nil), model.FeatureNames...),
		Means:        []float64{54.4, 0.68, 3.16, 131.7, 246.7, 0.15, 0.99, 149.6, 0.33, 1.04, 1.6, 0.67, 4.73},
		Scales:       []float64{9.04, 0.47, 0.96, 17.6, 51.8, 0.36, 0.99, 22.9, 0.47, 1.16, 0.62, 0.94, 1.94},
		Coefficients: []float64{0.1, 0.6, 0.8, 0.3, 0.2, -0.05, 0.2, -0.45, 0.4, 0.55, 0.35, 0.9, 0.7},
		Intercept:    -0.15,
	}
}

func newPredictor(t *testing.T, m service.LogisticModel) *service.RiskPredictor {
	t.Helper()
	p, err := service.NewRiskPredictor(m)
	require.NoError(t, err)
	return p
}

// healthyPatient sits below every risk factor cutoff.
func healthyPatient() model.PatientProfile {
	return model.PatientProfile{
		Age: 45, Sex: 0, CP: 1, Trestbps: 118, Chol: 190, FBS: 0, RestECG: 0,
		Thalach: 170, Exang: 0, Oldpeak: 0.2, Slope: 1, CA: 0, Thal: 3,
	}
}

// sickPatient carries several severe and moderate factors.
func sickPatient() model.PatientProfile {
	return model.PatientProfile{
		Age: 65, Sex: 1, CP: 4, Trestbps: 170, Chol: 300, FBS: 1, RestECG: 1,
		Thalach: 110, Exang: 1, Oldpeak: 3.0, Slope: 2, CA: 2, Thal: 7,
	}
}
