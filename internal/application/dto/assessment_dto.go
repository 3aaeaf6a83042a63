package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/healthguard/healthguard/internal/domain/model"
	"github.com/healthguard/healthguard/internal/domain/service"
	"github.com/healthguard/healthguard/internal/domain/valueobject"
)

// PatientInput carries the 13 clinical features keyed by name.
type PatientInput map[string]float64

// Profile validates the input and builds the domain profile.
func (in PatientInput) Profile() (model.PatientProfile, error) {
	return model.NewPatientProfile(in)
}

// PatientInputFromProfile is the inverse of Profile.
func PatientInputFromProfile(p model.PatientProfile) PatientInput {
	return PatientInput(p.Values())
}

// PredictRequest is the input DTO for the PredictRisk use case.
type PredictRequest struct {
	Patient PatientInput `json:"patient"`
}

// RecommendRequest is the input DTO for the RecommendIntervention use case.
type RecommendRequest struct {
	Patient PatientInput `json:"patient"`
}

// SimulateRequest is the input DTO for the SimulateIntervention use case.
type SimulateRequest struct {
	Patient PatientInput `json:"patient"`
	Action  *int         `json:"action"`
}

// GetAssessmentRequest is the input DTO for retrieving an assessment.
type GetAssessmentRequest struct {
	AssessmentID uuid.UUID `json:"assessment_id"`
}

// ListAssessmentsRequest is the input DTO for paging through assessments.
type ListAssessmentsRequest struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// Paging limits for ListAssessments.
const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

// Normalize applies the default limit and clamps out of range values.
func (r ListAssessmentsRequest) Normalize() ListAssessmentsRequest {
	if r.Limit <= 0 {
		r.Limit = DefaultListLimit
	}
	if r.Limit > MaxListLimit {
		r.Limit = MaxListLimit
	}
	if r.Offset < 0 {
		r.Offset = 0
	}
	return r
}

// RiskPredictionResponse is the output DTO of PredictRisk.
type RiskPredictionResponse struct {
	FeatureImportance map[string]float64 `json:"feature_importance"`
	Classification    string             `json:"classification"`
	RiskTier          string             `json:"risk_tier"`
	ModelVersion      string             `json:"model_version"`
	RiskScore         float64            `json:"risk_score"`
	Probability       float64            `json:"probability"`
	AssessmentID      uuid.UUID          `json:"assessment_id"`
	HasDisease        bool               `json:"has_disease"`
}

// InterventionOptionResponse describes one row of the all-options comparison.
type InterventionOptionResponse struct {
	OptimizedMetrics map[string]float64 `json:"optimized_metrics"`
	Name             string             `json:"name"`
	Description      string             `json:"description"`
	Cost             string             `json:"cost"`
	Intensity        string             `json:"intensity"`
	SideEffects      string             `json:"side_effects"`
	Monitoring       string             `json:"monitoring"`
	ActionID         int                `json:"action_id"`
	CostTier         int                `json:"cost_tier"`
	NewRisk          float64            `json:"new_risk"`
	RiskReduction    float64            `json:"risk_reduction"`
	PctReduction     float64            `json:"pct_reduction"`
	Capped           bool               `json:"capped"`
	IsRecommended    bool               `json:"is_recommended"`
	IsAlternative    bool               `json:"is_alternative"`
}

// RecommendationResponse is the output DTO of RecommendIntervention.
type RecommendationResponse struct {
	RiskFactors               valueobject.RiskFactors      `json:"risk_factors"`
	RecommendationName        string                       `json:"recommendation_name"`
	RecommendationDescription string                       `json:"recommendation_description"`
	Rationale                 string                       `json:"rationale"`
	AlternativeName           string                       `json:"alternative_name"`
	RiskTier                  string                       `json:"risk_tier"`
	ModelVersion              string                       `json:"model_version"`
	EscalationReasons         []string                     `json:"escalation_reasons"`
	AllOptions                []InterventionOptionResponse `json:"all_options"`
	RecommendedAction         int                          `json:"recommended_action"`
	AlternativeAction         int                          `json:"alternative_action"`
	BaselineRisk              float64                      `json:"baseline_risk"`
	ExpectedFinalRisk         float64                      `json:"expected_final_risk"`
	ExpectedRiskReduction     float64                      `json:"expected_risk_reduction"`
	AssessmentID              uuid.UUID                    `json:"assessment_id"`
}

// SimulationResponse is the output DTO of SimulateIntervention.
type SimulationResponse struct {
	CurrentMetrics     map[string]float64 `json:"current_metrics"`
	OptimizedMetrics   map[string]float64 `json:"optimized_metrics"`
	FeatureImportance  map[string]float64 `json:"feature_importance"`
	InterventionName   string             `json:"intervention_name"`
	Explanation        string             `json:"explanation"`
	ModelVersion       string             `json:"model_version"`
	ModifiableFeatures []string           `json:"modifiable_features"`
	Action             int                `json:"action"`
	CurrentRisk        float64            `json:"current_risk"`
	ExpectedRisk       float64            `json:"expected_risk"`
	RiskReduction      float64            `json:"risk_reduction"`
	AssessmentID       uuid.UUID          `json:"assessment_id"`
}

// AssessmentResponse is the stored view of an assessment.
type AssessmentResponse struct {
	CreatedAt     time.Time               `json:"created_at"`
	CompletedAt   time.Time               `json:"completed_at"`
	Action        *int                    `json:"action,omitempty"`
	Patient       PatientInput            `json:"patient"`
	RiskFactors   valueobject.RiskFactors `json:"risk_factors"`
	Kind          string                  `json:"kind"`
	RiskTier      string                  `json:"risk_tier"`
	ActionName    string                  `json:"action_name,omitempty"`
	ModelVersion  string                  `json:"model_version"`
	BaselineRisk  float64                 `json:"baseline_risk"`
	ExpectedRisk  float64                 `json:"expected_risk"`
	RiskReduction float64                 `json:"risk_reduction"`
	Version       int                     `json:"version"`
	ID            uuid.UUID               `json:"id"`
}

// ListAssessmentsResponse is one page of stored assessments.
type ListAssessmentsResponse struct {
	Assessments []AssessmentResponse `json:"assessments"`
	Total       int                  `json:"total"`
	Limit       int                  `json:"limit"`
	Offset      int                  `json:"offset"`
}

// Round returns v rounded half away from zero to the given decimal places.
func Round(v float64, places int32) float64 {
	f, _ := decimal.NewFromFloat(v).Round(places).Float64()
	return f
}

func roundMap(in map[string]float64, places int32) map[string]float64 {
	out := make(map[string]float64, len(in))
	for k, v := range in {
		out[k] = Round(v, places)
	}
	return out
}

// FromPrediction maps a prediction to the response DTO.
func FromPrediction(a *model.RiskAssessment, p service.Prediction) RiskPredictionResponse {
	return RiskPredictionResponse{
		AssessmentID:      a.ID(),
		RiskScore:         Round(p.RiskScore, 2),
		Probability:       Round(p.Probability, 4),
		HasDisease:        p.HasDisease,
		Classification:    p.Classification,
		FeatureImportance: roundMap(p.FeatureImportance, 4),
		RiskTier:          a.RiskTier().String(),
		ModelVersion:      a.ModelVersion(),
	}
}

// FromRecommendation maps a recommendation to the response DTO.
func FromRecommendation(a *model.RiskAssessment, r service.Recommendation) RecommendationResponse {
	options := make([]InterventionOptionResponse, 0, len(r.Options))
	for _, o := range r.Options {
		options = append(options, InterventionOptionResponse{
			ActionID:         o.Intervention.ID(),
			Name:             o.Intervention.Name(),
			Description:      o.Intervention.Description(),
			Cost:             o.Intervention.Cost(),
			CostTier:         o.Intervention.CostTier(),
			Intensity:        o.Intervention.Intensity(),
			SideEffects:      o.Intervention.SideEffects(),
			Monitoring:       o.Intervention.Monitoring(),
			OptimizedMetrics: roundMap(o.Metrics, 2),
			NewRisk:          Round(o.NewRisk, 2),
			RiskReduction:    Round(o.RiskReduction, 2),
			PctReduction:     Round(o.PctReduction, 1),
			Capped:           o.Capped,
			IsRecommended:    o.IsRecommended,
			IsAlternative:    o.IsAlternative,
		})
	}

	return RecommendationResponse{
		AssessmentID:              a.ID(),
		RecommendedAction:         r.Recommended.ID(),
		RecommendationName:        r.Recommended.Name(),
		RecommendationDescription: r.Recommended.Description(),
		Rationale:                 r.Rationale,
		AlternativeAction:         r.Alternative.ID(),
		AlternativeName:           r.Alternative.Name(),
		AllOptions:                options,
		BaselineRisk:              Round(r.Baseline.RiskScore, 2),
		RiskTier:                  r.Tier.String(),
		RiskFactors:               r.RiskFactors,
		EscalationReasons:         r.EscalationReasons,
		ExpectedFinalRisk:         Round(r.ExpectedFinalRisk, 2),
		ExpectedRiskReduction:     Round(r.ExpectedRiskReduction, 2),
		ModelVersion:              a.ModelVersion(),
	}
}

// FromSimulation maps a simulation to the response DTO.
func FromSimulation(a *model.RiskAssessment, s service.Simulation) SimulationResponse {
	return SimulationResponse{
		AssessmentID:       a.ID(),
		Action:             s.Intervention.ID(),
		InterventionName:   s.Intervention.Name(),
		CurrentMetrics:     roundMap(s.CurrentMetrics, 2),
		OptimizedMetrics:   roundMap(s.OptimizedMetrics, 2),
		CurrentRisk:        Round(s.CurrentRisk, 2),
		ExpectedRisk:       Round(s.ExpectedRisk, 2),
		RiskReduction:      Round(s.RiskReduction, 2),
		Explanation:        s.Explanation,
		FeatureImportance:  roundMap(s.FeatureImportance, 4),
		ModifiableFeatures: s.ModifiableFeatures,
		ModelVersion:       a.ModelVersion(),
	}
}

// FromModel maps a stored assessment to the response DTO.
func FromModel(a *model.RiskAssessment) AssessmentResponse {
	resp := AssessmentResponse{
		ID:            a.ID(),
		Kind:          a.Kind().String(),
		Patient:       PatientInputFromProfile(a.Patient()),
		BaselineRisk:  Round(a.BaselineRisk(), 2),
		ExpectedRisk:  Round(a.ExpectedRisk(), 2),
		RiskReduction: Round(a.RiskReduction(), 2),
		RiskTier:      a.RiskTier().String(),
		RiskFactors:   a.RiskFactors(),
		ModelVersion:  a.ModelVersion(),
		Version:       a.Version(),
		CreatedAt:     a.CreatedAt(),
		CompletedAt:   a.CompletedAt(),
	}
	if action := a.Action(); !action.IsZero() {
		id := action.ID()
		resp.Action = &id
		resp.ActionName = action.Name()
	}
	return resp
}
