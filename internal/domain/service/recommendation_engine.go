package service

import (
	"fmt"
	"strings"

	"github.com/healthguard/healthguard/internal/domain/model"
	"github.com/healthguard/healthguard/internal/domain/valueobject"
)

// Escalation bands. The high and very high floors hold even when a custom
// policy moves the tier thresholds.
const (
	severeComboMinRisk = 20.0
	borderlineLow      = 25.0
	borderlineHigh     = 35.0
	activeTreatmentMin = 50.0
	intensiveMin       = 70.0
)

var standardRationale = [...]string{
	valueobject.ActionMonitorOnly: "Continue monitoring with regular checkups. " +
		"No active intervention needed for low-risk patients with optimal metrics.",
	valueobject.ActionLifestyle: "Lifestyle modifications (diet, exercise, stress management) can effectively reduce modifiable risk factors. " +
		"Recommended as first-line intervention for low-to-moderate risk.",
	valueobject.ActionSingleMedication: "Single medication therapy (e.g., statin or ACE inhibitor) is guideline-recommended for this risk level. " +
		"Targets elevated blood pressure and cholesterol to reduce cardiovascular events.",
	valueobject.ActionCombinationTherapy: "Combination therapy (medication + supervised lifestyle program) is guideline-recommended for high risk. " +
		"Provides comprehensive risk reduction by addressing multiple modifiable factors simultaneously.",
	valueobject.ActionIntensiveTreatment: "Intensive treatment with multiple medications and lifestyle management is warranted for very high risk. " +
		"Maximal intervention to reduce modifiable risk factors and prevent cardiovascular events.",
}

const structuralDiseaseNote = "Note: This patient has structural heart disease (vessel disease or thalassemia defects) " +
	"which cannot be fully reversed by medication or lifestyle changes. " +
	"The recommended treatment focuses on managing modifiable risk factors to slow disease progression."

// InterventionOption is the projected outcome of one intervention.
type InterventionOption struct {
	Metrics       map[string]float64
	Intervention  valueobject.Intervention
	NewRisk       float64
	RiskReduction float64
	PctReduction  float64
	Capped        bool // the raw prediction rose and was held at baseline
	IsRecommended bool
	IsAlternative bool
}

// Recommendation is the full output of the recommendation engine.
type Recommendation struct {
	Baseline              Prediction
	Tier                  valueobject.RiskTier
	BaseAction            valueobject.Intervention
	Recommended           valueobject.Intervention
	Alternative           valueobject.Intervention
	Rationale             string
	RiskFactors           valueobject.RiskFactors
	EscalationReasons     []string
	Options               []InterventionOption
	ExpectedFinalRisk     float64
	ExpectedRiskReduction float64
}

// Simulation is the projected effect of a single chosen intervention.
type Simulation struct {
	CurrentMetrics     map[string]float64
	OptimizedMetrics   map[string]float64
	FeatureImportance  map[string]float64
	Intervention       valueobject.Intervention
	Explanation        string
	ModifiableFeatures []string
	Baseline           Prediction
	CurrentRisk        float64
	ExpectedRisk       float64
	RiskReduction      float64
}

// RecommendationEngine turns a risk prediction into a clinical action with a
// rationale and a comparison of every intervention.
type RecommendationEngine struct {
	predictor Predictor
	simulator *InterventionSimulator
	policy    Policy
}

// NewRecommendationEngine creates an engine. The policy is validated up front.
func NewRecommendationEngine(predictor Predictor, policy Policy) (*RecommendationEngine, error) {
	if predictor == nil {
		return nil, ErrModelNotLoaded
	}
	if err := policy.Validate(); err != nil {
		return nil, fmt.Errorf("invalid policy: %w", err)
	}
	return &RecommendationEngine{
		predictor: predictor,
		simulator: NewInterventionSimulator(policy),
		policy:    policy,
	}, nil
}

// Policy returns the policy in force.
func (e *RecommendationEngine) Policy() Policy {
	return e.policy
}

// ModelVersion reports the version of the underlying model, or "unversioned"
// when the predictor does not carry one.
func (e *RecommendationEngine) ModelVersion() string {
	if v, ok := e.predictor.(interface{ ModelVersion() string }); ok && v.ModelVersion() != "" {
		return v.ModelVersion()
	}
	return "unversioned"
}

// Predict scores the patient without recommending an intervention.
func (e *RecommendationEngine) Predict(p model.PatientProfile) (Prediction, error) {
	if err := p.Validate(); err != nil {
		return Prediction{}, err
	}
	return e.predictor.Predict(p), nil
}

// Tier places a risk score in the policy's tier table.
func (e *RecommendationEngine) Tier(score float64) valueobject.RiskTier {
	return valueobject.RiskTierFromScore(score, e.policy.Thresholds)
}

// Recommend selects an intervention for the patient.
func (e *RecommendationEngine) Recommend(p model.PatientProfile) (Recommendation, error) {
	if err := p.Validate(); err != nil {
		return Recommendation{}, err
	}

	baseline := e.predictor.Predict(p)
	risk := baseline.RiskScore
	tier := e.Tier(risk)
	factors := AnalyzeRiskFactors(p, e.policy)

	baseAction := tier.BaseAction()
	action, reasons := e.escalate(baseAction, risk, factors)

	alternative := action + 1
	if action == valueobject.ActionIntensiveTreatment {
		alternative = valueobject.ActionCombinationTherapy
	}

	options, err := e.compare(p, baseline, action, alternative)
	if err != nil {
		return Recommendation{}, err
	}

	recommended := mustIntervention(action)
	rec := Recommendation{
		Baseline:              baseline,
		Tier:                  tier,
		BaseAction:            mustIntervention(baseAction),
		Recommended:           recommended,
		Alternative:           mustIntervention(alternative),
		RiskFactors:           factors,
		EscalationReasons:     reasons,
		Options:               options,
		ExpectedFinalRisk:     options[action].NewRisk,
		ExpectedRiskReduction: options[action].RiskReduction,
	}
	rec.Rationale = e.rationale(p, tier, risk, action, baseAction, factors, reasons)

	return rec, nil
}

// escalate applies the risk-factor rules on top of the tier's base action.
func (e *RecommendationEngine) escalate(base int, risk float64, rf valueobject.RiskFactors) (int, []string) {
	action := base
	reasons := make([]string, 0)

	if rf.Severe >= 2 {
		if base < valueobject.ActionCombinationTherapy {
			action = valueobject.ActionCombinationTherapy
			reasons = append(reasons, fmt.Sprintf("Multiple severe risk factors (%d) warrant combination therapy", rf.Severe))
		}
	} else if rf.Severe >= 1 && rf.Moderate >= 2 {
		if base < valueobject.ActionSingleMedication && risk >= severeComboMinRisk {
			action = valueobject.ActionSingleMedication
			reasons = append(reasons, "Severe risk factor combined with multiple moderate factors warrants medication")
		}
	}

	if risk >= activeTreatmentMin && action == valueobject.ActionMonitorOnly {
		action = valueobject.ActionCombinationTherapy
		reasons = append(reasons, fmt.Sprintf("High risk (%.1f%%) requires active intervention", risk))
	}

	if risk >= intensiveMin && action < valueobject.ActionCombinationTherapy {
		action = valueobject.ActionIntensiveTreatment
		reasons = append(reasons, fmt.Sprintf("Very high risk (%.1f%%) requires intensive treatment", risk))
	}

	// Borderline lifestyle cases settle on medication even after an earlier rule fired.
	if risk >= borderlineLow && risk < borderlineHigh && base == valueobject.ActionLifestyle &&
		(rf.Severe >= 1 || rf.Moderate >= 3) {
		action = valueobject.ActionSingleMedication
		reasons = append(reasons, "Borderline risk with significant risk factors warrants medication")
	}

	return action, reasons
}

// compare projects every intervention, indexed by action ID.
func (e *RecommendationEngine) compare(p model.PatientProfile, baseline Prediction, recommended, alternative int) ([]InterventionOption, error) {
	current := p.Metrics()
	options := make([]InterventionOption, 0, valueobject.MaxActionID+1)

	for _, intervention := range valueobject.AllInterventions() {
		id := intervention.ID()
		projected, err := e.simulator.Apply(p, id)
		if err != nil {
			return nil, err
		}
		raw := e.predictor.Predict(projected).RiskScore
		newRisk, metrics := EnsureMonotonic(baseline.RiskScore, raw, current, projected.Metrics(), id)

		reduction := baseline.RiskScore - newRisk
		pct := 0.0
		if baseline.RiskScore > 0 {
			pct = reduction / baseline.RiskScore * 100
		}

		options = append(options, InterventionOption{
			Intervention:  intervention,
			Metrics:       metrics,
			NewRisk:       newRisk,
			RiskReduction: reduction,
			PctReduction:  pct,
			Capped:        id != valueobject.ActionMonitorOnly && raw > baseline.RiskScore,
			IsRecommended: id == recommended,
			IsAlternative: id == alternative,
		})
	}
	return options, nil
}

func (e *RecommendationEngine) rationale(
	p model.PatientProfile,
	tier valueobject.RiskTier,
	risk float64,
	action, base int,
	rf valueobject.RiskFactors,
	reasons []string,
) string {
	parts := []string{fmt.Sprintf("Patient has %s cardiovascular disease risk (%.1f%%).", tier.Class(), risk)}

	if !rf.IsEmpty() {
		var counts []string
		if rf.Severe > 0 {
			counts = append(counts, fmt.Sprintf("%d severe", rf.Severe))
		}
		if rf.Moderate > 0 {
			counts = append(counts, fmt.Sprintf("%d moderate", rf.Moderate))
		}
		parts = append(parts, fmt.Sprintf("Identified %s risk factor(s).", strings.Join(counts, " and ")))
		if len(rf.Details) > 0 {
			parts = append(parts, fmt.Sprintf("Specific factors: %s.", strings.Join(rf.Details, ", ")))
		}
	}

	parts = append(parts, fmt.Sprintf("Recommended intervention: %s.", mustIntervention(action).Name()))

	switch {
	case len(reasons) > 0:
		parts = append(parts, "Escalation applied: "+strings.Join(reasons, " "))
	case action == base:
		parts = append(parts, standardRationale[action])
	}

	if p.HasStructuralDisease() && action >= valueobject.ActionSingleMedication {
		parts = append(parts, structuralDiseaseNote)
	}

	return strings.Join(parts, " ")
}

// Simulate projects a single intervention for the patient.
func (e *RecommendationEngine) Simulate(p model.PatientProfile, action int) (Simulation, error) {
	if err := p.Validate(); err != nil {
		return Simulation{}, err
	}
	intervention, err := valueobject.InterventionFromID(action)
	if err != nil {
		return Simulation{}, model.NewValidationError("action", err.Error())
	}

	baseline := e.predictor.Predict(p)
	projected, err := e.simulator.Apply(p, action)
	if err != nil {
		return Simulation{}, err
	}
	raw := e.predictor.Predict(projected).RiskScore

	current := p.Metrics()
	finalRisk, finalMetrics := EnsureMonotonic(baseline.RiskScore, raw, current, projected.Metrics(), action)
	reduction := baseline.RiskScore - finalRisk

	return Simulation{
		Baseline:           baseline,
		Intervention:       intervention,
		CurrentMetrics:     current,
		OptimizedMetrics:   finalMetrics,
		CurrentRisk:        baseline.RiskScore,
		ExpectedRisk:       finalRisk,
		RiskReduction:      reduction,
		Explanation:        Explain(current, finalMetrics, reduction, baseline.FeatureImportance, action),
		FeatureImportance:  baseline.FeatureImportance,
		ModifiableFeatures: ModifiableFeatures(),
	}, nil
}

func mustIntervention(id int) valueobject.Intervention {
	i, err := valueobject.InterventionFromID(id)
	if err != nil {
		panic(err)
	}
	return i
}
