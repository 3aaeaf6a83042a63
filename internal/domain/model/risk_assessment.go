package model

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/healthguard/healthguard/internal/domain/event"
	"github.com/healthguard/healthguard/internal/domain/valueobject"
	"github.com/healthguard/healthguard/pkg/events"
)

// ErrAlreadyCompleted is returned when Complete is called twice.
var ErrAlreadyCompleted = errors.New("assessment already completed")

// riskTolerance absorbs float noise when comparing expected and baseline risk.
const riskTolerance = 1e-9

// AssessmentOutcome is the computed result recorded on an assessment.
type AssessmentOutcome struct {
	Tier         valueobject.RiskTier
	Action       valueobject.Intervention // zero for predictions
	RiskFactors  valueobject.RiskFactors
	BaselineRisk float64
	ExpectedRisk float64
}

// RiskAssessment is the aggregate root for one prediction, recommendation or simulation.
type RiskAssessment struct {
	createdAt    time.Time
	updatedAt    time.Time
	completedAt  time.Time
	kind         valueobject.AssessmentKind
	modelVersion string
	outcome      AssessmentOutcome
	events       events.EventCollector
	patient      PatientProfile
	version      int
	id           uuid.UUID
}

// NewRiskAssessment starts an assessment for a validated patient profile.
// Call Complete to record the result.
func NewRiskAssessment(kind valueobject.AssessmentKind, patient PatientProfile, modelVersion string) (*RiskAssessment, error) {
	if kind.IsZero() {
		return nil, fmt.Errorf("assessment kind is required")
	}
	if modelVersion == "" {
		return nil, fmt.Errorf("model version is required")
	}
	if err := patient.Validate(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	return &RiskAssessment{
		id:           uuid.New(),
		kind:         kind,
		patient:      patient,
		modelVersion: modelVersion,
		version:      1,
		createdAt:    now,
		updatedAt:    now,
	}, nil
}

// Complete records the outcome and emits AssessmentCompleted, plus
// HighRiskDetected when the baseline lands in the Very High Risk tier.
func (a *RiskAssessment) Complete(outcome AssessmentOutcome) error {
	if a.IsCompleted() {
		return ErrAlreadyCompleted
	}
	if err := checkRisk("baseline risk", outcome.BaselineRisk); err != nil {
		return err
	}
	if err := checkRisk("expected risk", outcome.ExpectedRisk); err != nil {
		return err
	}
	if outcome.ExpectedRisk > outcome.BaselineRisk+riskTolerance {
		return fmt.Errorf("expected risk %.4f exceeds baseline %.4f", outcome.ExpectedRisk, outcome.BaselineRisk)
	}
	if outcome.Tier.IsZero() {
		return fmt.Errorf("risk tier is required")
	}
	if a.kind.HasAction() && outcome.Action.IsZero() {
		return fmt.Errorf("%s assessment requires an intervention", a.kind)
	}
	if !a.kind.HasAction() && !outcome.Action.IsZero() {
		return fmt.Errorf("%s assessment cannot carry an intervention", a.kind)
	}

	a.outcome = outcome
	a.completedAt = time.Now().UTC()
	a.updatedAt = a.completedAt
	a.version++

	var action *int
	if !outcome.Action.IsZero() {
		id := outcome.Action.ID()
		action = &id
	}

	a.events.Record(event.NewAssessmentCompleted(
		a.id, a.kind.String(),
		outcome.BaselineRisk, outcome.ExpectedRisk,
		outcome.Tier.String(), action, outcome.Action.Name(),
		outcome.RiskFactors.Severe, outcome.RiskFactors.Moderate,
		a.modelVersion, a.completedAt,
	))

	if outcome.Tier.Equal(valueobject.RiskTierVeryHigh) {
		a.events.Record(event.NewHighRiskDetected(
			a.id, outcome.BaselineRisk, outcome.RiskFactors.Details, a.completedAt,
		))
	}

	return nil
}

func checkRisk(name string, v float64) error {
	if math.IsNaN(v) || v < 0 || v > 100 {
		return fmt.Errorf("%s must be between 0 and 100, got %v", name, v)
	}
	return nil
}

// Reconstruct rebuilds a RiskAssessment from persisted data (no validation, no events).
func Reconstruct(
	id uuid.UUID,
	kind valueobject.AssessmentKind,
	patient PatientProfile,
	outcome AssessmentOutcome,
	modelVersion string,
	version int,
	createdAt, updatedAt, completedAt time.Time,
) *RiskAssessment {
	return &RiskAssessment{
		id:           id,
		kind:         kind,
		patient:      patient,
		outcome:      outcome,
		modelVersion: modelVersion,
		version:      version,
		createdAt:    createdAt,
		updatedAt:    updatedAt,
		completedAt:  completedAt,
	}
}

// --- Accessors ---

func (a *RiskAssessment) ID() uuid.UUID                        { return a.id }
func (a *RiskAssessment) Kind() valueobject.AssessmentKind     { return a.kind }
func (a *RiskAssessment) Patient() PatientProfile              { return a.patient }
func (a *RiskAssessment) Outcome() AssessmentOutcome           { return a.outcome }
func (a *RiskAssessment) BaselineRisk() float64                { return a.outcome.BaselineRisk }
func (a *RiskAssessment) ExpectedRisk() float64                { return a.outcome.ExpectedRisk }
func (a *RiskAssessment) RiskTier() valueobject.RiskTier       { return a.outcome.Tier }
func (a *RiskAssessment) Action() valueobject.Intervention     { return a.outcome.Action }
func (a *RiskAssessment) RiskFactors() valueobject.RiskFactors { return a.outcome.RiskFactors }
func (a *RiskAssessment) ModelVersion() string                 { return a.modelVersion }
func (a *RiskAssessment) Version() int                         { return a.version }
func (a *RiskAssessment) CreatedAt() time.Time                 { return a.createdAt }
func (a *RiskAssessment) UpdatedAt() time.Time                 { return a.updatedAt }
func (a *RiskAssessment) CompletedAt() time.Time               { return a.completedAt }

// IsCompleted reports whether an outcome has been recorded.
func (a *RiskAssessment) IsCompleted() bool {
	return !a.completedAt.IsZero()
}

// RiskReduction is baseline minus expected risk.
func (a *RiskAssessment) RiskReduction() float64 {
	return a.outcome.BaselineRisk - a.outcome.ExpectedRisk
}

// DomainEvents returns all accumulated domain events and clears them.
func (a *RiskAssessment) DomainEvents() []events.DomainEvent {
	return a.events.ClearEvents()
}
