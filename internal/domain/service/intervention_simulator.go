package service

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/healthguard/healthguard/internal/domain/model"
	"github.com/healthguard/healthguard/internal/domain/valueobject"
)

// Clinical floors and bounds applied by the simulator.
const (
	bpTarget          = 120.0
	bpHalfEffectBelow = 140.0
	bpEnhancedFrom    = 180.0
	bpEnhanceFactor   = 1.5
	cholTarget        = 200.0
	cholHalfEffect    = 240.0
	oldpeakTarget     = 0.5
	thalachTargetPct  = 0.85

	// reductions below this many points are reported as "no meaningful change"
	meaningfulRiskChange = 0.05
)

type bounds struct{ min, max float64 }

var clinicalBounds = map[string]bounds{
	model.FeatureTrestbps: {90, 200},
	model.FeatureChol:     {120, 400},
	model.FeatureThalach:  {60, 220},
	model.FeatureOldpeak:  {0, 6},
}

// InterventionSimulator projects how an intervention changes the modifiable metrics.
// Effects depend on the current value: metrics already at target are left alone and
// higher interventions never produce a smaller improvement than lower ones.
type InterventionSimulator struct {
	policy Policy
}

// NewInterventionSimulator creates a simulator for the given policy.
func NewInterventionSimulator(policy Policy) *InterventionSimulator {
	return &InterventionSimulator{policy: policy}
}

// Apply returns the profile expected after the intervention. Monitor Only
// returns the profile unchanged.
func (s *InterventionSimulator) Apply(p model.PatientProfile, action int) (model.PatientProfile, error) {
	if action < 0 || action > valueobject.MaxActionID {
		return model.PatientProfile{}, fmt.Errorf("invalid intervention id: %d (must be 0-%d)", action, valueobject.MaxActionID)
	}
	if action == valueobject.ActionMonitorOnly {
		return p, nil
	}
	e := s.policy.Effects[action]

	return p.WithMetrics(map[string]float64{
		model.FeatureTrestbps: reduceBP(p.Trestbps, e.BPReduction),
		model.FeatureChol:     reduceChol(p.Chol, e.CholReduction),
		model.FeatureThalach:  raiseThalach(p.Thalach, p.Age, e.ThalachIncrease),
		model.FeatureOldpeak:  reduceOldpeak(p.Oldpeak, e.OldpeakReduction),
	}), nil
}

func reduceBP(cur, effect float64) float64 {
	if cur <= bpTarget || effect == 0 {
		return cur
	}
	switch {
	case cur < bpHalfEffectBelow:
		effect *= 0.5
	case cur >= bpEnhancedFrom:
		effect *= bpEnhanceFactor
	}
	next := math.Max(cur*(1-effect), bpTarget)
	return math.Min(clamp(model.FeatureTrestbps, next), cur)
}

func reduceChol(cur, effect float64) float64 {
	if cur <= cholTarget || effect == 0 {
		return cur
	}
	if cur < cholHalfEffect {
		effect *= 0.5
	}
	next := math.Max(cur*(1-effect), cholTarget)
	return math.Min(clamp(model.FeatureChol, next), cur)
}

func raiseThalach(cur, age, effect float64) float64 {
	target := thalachTargetPct * (220 - age)
	if cur >= target || effect == 0 {
		return cur
	}
	next := math.Min(cur*(1+effect), target)
	return math.Max(clamp(model.FeatureThalach, next), cur)
}

func reduceOldpeak(cur, effect float64) float64 {
	if cur <= oldpeakTarget || effect == 0 {
		return cur
	}
	next := math.Max(cur*(1-effect), 0)
	return math.Min(clamp(model.FeatureOldpeak, next), cur)
}

func clamp(feature string, v float64) float64 {
	b := clinicalBounds[feature]
	return math.Min(math.Max(v, b.min), b.max)
}

// EnsureMonotonic guards against a model artifact predicting higher risk after
// treatment. Monitor Only keeps the current risk and metrics; an intervention
// whose predicted risk rises keeps the current risk but reports the projected metrics.
func EnsureMonotonic(
	currentRisk, newRisk float64,
	currentMetrics, optimizedMetrics map[string]float64,
	action int,
) (float64, map[string]float64) {
	if action == valueobject.ActionMonitorOnly {
		return currentRisk, currentMetrics
	}
	if newRisk > currentRisk {
		return currentRisk, optimizedMetrics
	}
	return newRisk, optimizedMetrics
}

// ModifiableFeatures lists the metrics an intervention can change.
func ModifiableFeatures() []string {
	out := make([]string, len(model.ModifiableMetrics))
	copy(out, model.ModifiableMetrics)
	return out
}

type metricLabel struct {
	name   string
	unit   string
	format string
}

var metricLabels = map[string]metricLabel{
	model.FeatureTrestbps: {"resting blood pressure", " mmHg", "%.0f"},
	model.FeatureChol:     {"cholesterol", " mg/dL", "%.0f"},
	model.FeatureThalach:  {"maximum heart rate", " bpm", "%.0f"},
	model.FeatureOldpeak:  {"ST depression", "", "%.1f"},
}

// Explain describes in plain language which metrics the intervention moves and
// why the predicted risk did or did not follow.
func Explain(
	current, optimized map[string]float64,
	riskReduction float64,
	importance map[string]float64,
	action int,
) string {
	intervention, err := valueobject.InterventionFromID(action)
	if err != nil {
		return ""
	}
	if action == valueobject.ActionMonitorOnly {
		return "Monitor Only does not change any health metric, so the predicted risk stays at its current level. " +
			"Regular check-ups will show whether active treatment becomes necessary."
	}

	var parts []string
	var changes []string
	for _, name := range model.ModifiableMetrics {
		before, after := current[name], optimized[name]
		if math.Abs(after-before) < 0.01 {
			continue
		}
		l := metricLabels[name]
		changes = append(changes, fmt.Sprintf("%s from "+l.format+" to "+l.format+"%s", l.name, before, after, l.unit))
	}

	if len(changes) == 0 {
		parts = append(parts, fmt.Sprintf(
			"%s leaves the modifiable metrics unchanged because they are already at or near target levels.",
			intervention.Name()))
	} else {
		parts = append(parts, fmt.Sprintf("%s is expected to improve %s.", intervention.Name(), strings.Join(changes, ", ")))
	}

	if riskReduction >= meaningfulRiskChange {
		parts = append(parts, fmt.Sprintf("The predicted risk falls by %.1f percentage points.", riskReduction))
		return strings.Join(parts, " ")
	}

	parts = append(parts, "The predicted risk does not change meaningfully.")
	if drivers := topFixedDrivers(importance, 3); len(drivers) > 0 {
		parts = append(parts, fmt.Sprintf(
			"Risk for this patient is driven mainly by factors treatment cannot change (%s).",
			strings.Join(drivers, ", ")))
	}
	return strings.Join(parts, " ")
}

// topFixedDrivers returns the n most important features that are not modifiable.
func topFixedDrivers(importance map[string]float64, n int) []string {
	modifiable := make(map[string]bool, len(model.ModifiableMetrics))
	for _, m := range model.ModifiableMetrics {
		modifiable[m] = true
	}

	var fixed []FeatureWeight
	for name, w := range importance {
		if !modifiable[name] && w > 0 {
			fixed = append(fixed, FeatureWeight{Name: name, Weight: w})
		}
	}
	sort.Slice(fixed, func(i, j int) bool {
		if fixed[i].Weight != fixed[j].Weight {
			return fixed[i].Weight > fixed[j].Weight
		}
		return fixed[i].Name < fixed[j].Name
	})

	if len(fixed) > n {
		fixed = fixed[:n]
	}
	names := make([]string, len(fixed))
	for i, f := range fixed {
		names[i] = f.Name
	}
	return names
}
