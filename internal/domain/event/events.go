package event

import (
	"time"

	"github.com/google/uuid"

	"github.com/healthguard/healthguard/pkg/events"
)

const (
	// EventTypeAssessmentCompleted is emitted when a risk assessment finishes.
	EventTypeAssessmentCompleted = "healthguard.assessment.completed"

	// EventTypeHighRiskDetected is emitted when a patient lands in the Very High Risk tier.
	EventTypeHighRiskDetected = "healthguard.high_risk.detected"

	// AggregateTypeRiskAssessment names the aggregate that emits these events.
	AggregateTypeRiskAssessment = "RiskAssessment"
)

// AssessmentCompleted is published when an assessment has been computed and stored.
type AssessmentCompleted struct {
	events.BaseEvent
	AssessmentID    uuid.UUID `json:"assessment_id"`
	Kind            string    `json:"kind"`
	BaselineRisk    float64   `json:"baseline_risk"`
	ExpectedRisk    float64   `json:"expected_risk"`
	RiskTier        string    `json:"risk_tier"`
	Action          *int      `json:"action,omitempty"`
	ActionName      string    `json:"action_name,omitempty"`
	SevereFactors   int       `json:"severe_factors"`
	ModerateFactors int       `json:"moderate_factors"`
	ModelVersion    string    `json:"model_version"`
	CompletedAt     time.Time `json:"completed_at"`
}

// NewAssessmentCompleted creates an AssessmentCompleted event. action is nil
// for plain predictions.
func NewAssessmentCompleted(
	assessmentID uuid.UUID,
	kind string,
	baselineRisk, expectedRisk float64,
	riskTier string,
	action *int,
	actionName string,
	severe, moderate int,
	modelVersion string,
	completedAt time.Time,
) AssessmentCompleted {
	return AssessmentCompleted{
		BaseEvent:       events.NewBaseEvent(EventTypeAssessmentCompleted, assessmentID, AggregateTypeRiskAssessment, completedAt),
		AssessmentID:    assessmentID,
		Kind:            kind,
		BaselineRisk:    baselineRisk,
		ExpectedRisk:    expectedRisk,
		RiskTier:        riskTier,
		Action:          action,
		ActionName:      actionName,
		SevereFactors:   severe,
		ModerateFactors: moderate,
		ModelVersion:    modelVersion,
		CompletedAt:     completedAt,
	}
}

// HighRiskDetected is published for Very High Risk patients so downstream
// care-coordination can follow up.
type HighRiskDetected struct {
	events.BaseEvent
	AssessmentID uuid.UUID `json:"assessment_id"`
	BaselineRisk float64   `json:"baseline_risk"`
	RiskFactors  []string  `json:"risk_factors"`
	DetectedAt   time.Time `json:"detected_at"`
}

// NewHighRiskDetected creates a HighRiskDetected event.
func NewHighRiskDetected(assessmentID uuid.UUID, baselineRisk float64, riskFactors []string, detectedAt time.Time) HighRiskDetected {
	return HighRiskDetected{
		BaseEvent:    events.NewBaseEvent(EventTypeHighRiskDetected, assessmentID, AggregateTypeRiskAssessment, detectedAt),
		AssessmentID: assessmentID,
		BaselineRisk: baselineRisk,
		RiskFactors:  riskFactors,
		DetectedAt:   detectedAt,
	}
}
