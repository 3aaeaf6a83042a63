package valueobject

import "fmt"

// AssessmentKind records which operation produced an assessment.
type AssessmentKind struct {
	value string
}

var (
	KindPrediction     = AssessmentKind{value: "PREDICTION"}
	KindRecommendation = AssessmentKind{value: "RECOMMENDATION"}
	KindSimulation     = AssessmentKind{value: "SIMULATION"}
)

// AssessmentKindFromString reconstructs an AssessmentKind from its string representation.
func AssessmentKindFromString(s string) (AssessmentKind, error) {
	switch s {
	case "PREDICTION":
		return KindPrediction, nil
	case "RECOMMENDATION":
		return KindRecommendation, nil
	case "SIMULATION":
		return KindSimulation, nil
	default:
		return AssessmentKind{}, fmt.Errorf("invalid assessment kind: %s", s)
	}
}

// String returns the string representation.
func (k AssessmentKind) String() string {
	return k.value
}

// IsZero returns true if the kind has not been set.
func (k AssessmentKind) IsZero() bool {
	return k.value == ""
}

// Equal checks equality with another AssessmentKind.
func (k AssessmentKind) Equal(other AssessmentKind) bool {
	return k.value == other.value
}

// HasAction is true for kinds that carry an intervention.
func (k AssessmentKind) HasAction() bool {
	return k == KindRecommendation || k == KindSimulation
}
