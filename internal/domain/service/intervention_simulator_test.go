package service_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/healthguard/healthguard/internal/domain/model"
	"github.com/healthguard/healthguard/internal/domain/service"
	"github.com/healthguard/healthguard/internal/domain/valueobject"
)

func TestInterventionSimulator_Apply(t *testing.T) {
	sim := service.NewInterventionSimulator(service.DefaultPolicy())

	tests := []struct {
		name    string
		mutate  func(*model.PatientProfile)
		action  int
		feature string
		want    float64
	}{
		{"bp full effect", func(p *model.PatientProfile) { p.Trestbps = 150 }, 2, model.FeatureTrestbps, 135},
		{"bp half effect near target", func(p *model.PatientProfile) { p.Trestbps = 130 }, 2, model.FeatureTrestbps, 123.5},
		{"bp floors at target", func(p *model.PatientProfile) { p.Trestbps = 125 }, 4, model.FeatureTrestbps, 120},
		{"bp enhanced when very high", func(p *model.PatientProfile) { p.Trestbps = 190 }, 1, model.FeatureTrestbps, 175.75},
		{"bp clamped to clinical bound", func(p *model.PatientProfile) { p.Trestbps = 240 }, 1, model.FeatureTrestbps, 200},
		{"bp at target unchanged", func(p *model.PatientProfile) { p.Trestbps = 118 }, 4, model.FeatureTrestbps, 118},
		{"chol full effect", func(p *model.PatientProfile) { p.Chol = 300 }, 3, model.FeatureChol, 240},
		{"chol half effect floors at target", func(p *model.PatientProfile) { p.Chol = 220 }, 4, model.FeatureChol, 200},
		{"chol at target unchanged", func(p *model.PatientProfile) { p.Chol = 190 }, 4, model.FeatureChol, 190},
		{"thalach raised", func(p *model.PatientProfile) { p.Age, p.Thalach = 60, 120 }, 3, model.FeatureThalach, 126},
		{"thalach capped at age target", func(p *model.PatientProfile) { p.Age, p.Thalach = 60, 130 }, 4, model.FeatureThalach, 136},
		{"thalach above target unchanged", func(p *model.PatientProfile) { p.Age, p.Thalach = 60, 150 }, 4, model.FeatureThalach, 150},
		{"oldpeak reduced", func(p *model.PatientProfile) { p.Oldpeak = 2.0 }, 4, model.FeatureOldpeak, 1.6},
		{"oldpeak small step", func(p *model.PatientProfile) { p.Oldpeak = 0.6 }, 1, model.FeatureOldpeak, 0.57},
		{"oldpeak at target unchanged", func(p *model.PatientProfile) { p.Oldpeak = 0.4 }, 4, model.FeatureOldpeak, 0.4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := healthyPatient()
			tt.mutate(&p)

			out, err := sim.Apply(p, tt.action)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, out.Metrics()[tt.feature], 1e-9)
		})
	}
}

func TestInterventionSimulator_MonitorOnlyIsIdentity(t *testing.T) {
	sim := service.NewInterventionSimulator(service.DefaultPolicy())
	p := sickPatient()

	out, err := sim.Apply(p, valueobject.ActionMonitorOnly)
	require.NoError(t, err)
	assert.Equal(t, p, out)
}

func TestInterventionSimulator_LeavesFixedFeatures(t *testing.T) {
	sim := service.NewInterventionSimulator(service.DefaultPolicy())
	p := sickPatient()

	out, err := sim.Apply(p, valueobject.ActionIntensiveTreatment)
	require.NoError(t, err)

	assert.Equal(t, p.Age, out.Age)
	assert.Equal(t, p.CA, out.CA)
	assert.Equal(t, p.Thal, out.Thal)
	assert.Equal(t, p.CP, out.CP)
	assert.Equal(t, p.Exang, out.Exang)
}

func TestInterventionSimulator_InvalidAction(t *testing.T) {
	sim := service.NewInterventionSimulator(service.DefaultPolicy())

	for _, action := range []int{-1, 5} {
		_, err := sim.Apply(healthyPatient(), action)
		assert.ErrorContains(t, err, "invalid intervention id")
	}
}

// Stronger interventions never yield a worse metric than weaker ones, and no
// intervention moves a metric in the harmful direction.
func TestInterventionSimulator_MonotoneAcrossActions(t *testing.T) {
	sim := service.NewInterventionSimulator(service.DefaultPolicy())

	for _, bp := range []float64{95, 121, 135, 139.9, 140, 165, 179, 180, 200} {
		for _, chol := range []float64{150, 201, 230, 240, 320, 400} {
			for _, thalach := range []float64{70, 110, 140, 190} {
				for _, oldpeak := range []float64{0, 0.5, 0.8, 2.5, 6} {
					p := healthyPatient()
					p.Age = 60
					p.Trestbps, p.Chol, p.Thalach, p.Oldpeak = bp, chol, thalach, oldpeak

					prev := p
					for action := 1; action <= valueobject.MaxActionID; action++ {
						out, err := sim.Apply(p, action)
						require.NoError(t, err)

						assert.LessOrEqual(t, out.Trestbps, prev.Trestbps)
						assert.LessOrEqual(t, out.Chol, prev.Chol)
						assert.GreaterOrEqual(t, out.Thalach, prev.Thalach)
						assert.LessOrEqual(t, out.Oldpeak, prev.Oldpeak)
						prev = out
					}
				}
			}
		}
	}
}

func TestEnsureMonotonic(t *testing.T) {
	current := map[string]float64{"trestbps": 150}
	optimized := map[string]float64{"trestbps": 135}

	t.Run("monitor only keeps current", func(t *testing.T) {
		risk, metrics := service.EnsureMonotonic(40, 30, current, optimized, valueobject.ActionMonitorOnly)
		assert.Equal(t, 40.0, risk)
		assert.Equal(t, current, metrics)
	})

	t.Run("rising risk is capped", func(t *testing.T) {
		risk, metrics := service.EnsureMonotonic(40, 45, current, optimized, valueobject.ActionLifestyle)
		assert.Equal(t, 40.0, risk)
		assert.Equal(t, optimized, metrics)
	})

	t.Run("falling risk passes through", func(t *testing.T) {
		risk, metrics := service.EnsureMonotonic(40, 32.5, current, optimized, valueobject.ActionSingleMedication)
		assert.Equal(t, 32.5, risk)
		assert.Equal(t, optimized, metrics)
	})
}

func TestModifiableFeatures(t *testing.T) {
	got := service.ModifiableFeatures()
	assert.Equal(t, []string{"trestbps", "chol", "thalach", "oldpeak"}, got)

	got[0] = "mutated"
	assert.Equal(t, "trestbps", service.ModifiableFeatures()[0])
}

func TestExplain(t *testing.T) {
	current := map[string]float64{"trestbps": 150, "chol": 300, "thalach": 120, "oldpeak": 2.0}
	importance := map[string]float64{"ca": 0.3, "thal": 0.25, "cp": 0.2, "trestbps": 0.15, "age": 0.1}

	t.Run("monitor only", func(t *testing.T) {
		got := service.Explain(current, current, 0, importance, valueobject.ActionMonitorOnly)
		assert.Contains(t, got, "Monitor Only does not change any health metric")
	})

	t.Run("metrics and risk improve", func(t *testing.T) {
		optimized := map[string]float64{"trestbps": 135, "chol": 240, "thalach": 126, "oldpeak": 1.8}
		got := service.Explain(current, optimized, 5, importance, valueobject.ActionCombinationTherapy)
		assert.Equal(t,
			"Combination Therapy is expected to improve resting blood pressure from 150 to 135 mmHg, "+
				"cholesterol from 300 to 240 mg/dL, maximum heart rate from 120 to 126 bpm, "+
				"ST depression from 2.0 to 1.8. The predicted risk falls by 5.0 percentage points.",
			got)
	})

	t.Run("no meaningful change names fixed drivers", func(t *testing.T) {
		optimized := map[string]float64{"trestbps": 140, "chol": 300, "thalach": 120, "oldpeak": 2.0}
		got := service.Explain(current, optimized, 0.01, importance, valueobject.ActionLifestyle)
		assert.Contains(t, got, "Lifestyle Intervention is expected to improve resting blood pressure from 150 to 140 mmHg.")
		assert.Contains(t, got, "The predicted risk does not change meaningfully.")
		assert.Contains(t, got, "factors treatment cannot change (ca, thal, cp)")
	})

	t.Run("metrics already at target", func(t *testing.T) {
		got := service.Explain(current, current, 0, nil, valueobject.ActionSingleMedication)
		assert.Equal(t,
			"Single Medication leaves the modifiable metrics unchanged because they are already at or near target levels. "+
				"The predicted risk does not change meaningfully.",
			got)
	})

	t.Run("invalid action", func(t *testing.T) {
		assert.Empty(t, service.Explain(current, current, 0, importance, 9))
	})
}
