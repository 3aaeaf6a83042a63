package valueobject

import "fmt"

// Intervention IDs, ordered by treatment intensity.
const (
	ActionMonitorOnly = iota
	ActionLifestyle
	ActionSingleMedication
	ActionCombinationTherapy
	ActionIntensiveTreatment
)

// MaxActionID is the most intensive intervention.
const MaxActionID = ActionIntensiveTreatment

// Intervention is an immutable value object describing one treatment strategy.
type Intervention struct {
	name        string
	description string
	cost        string
	intensity   string
	sideEffects string
	monitoring  string
	id          int
	costTier    int
}

var (
	InterventionMonitorOnly = Intervention{
		id:          ActionMonitorOnly,
		name:        "Monitor Only",
		description: "Quarterly checkups with no active intervention",
		cost:        "Low ($)",
		costTier:    1,
		intensity:   "Minimal",
		sideEffects: "None",
		monitoring:  "Quarterly check-ups",
	}
	InterventionLifestyle = Intervention{
		id:          ActionLifestyle,
		name:        "Lifestyle Intervention",
		description: "Diet and exercise program with regular monitoring",
		cost:        "Low ($$)",
		costTier:    2,
		intensity:   "Moderate",
		sideEffects: "Minimal",
		monitoring:  "Self-monitoring",
	}
	InterventionSingleMedication = Intervention{
		id:          ActionSingleMedication,
		name:        "Single Medication",
		description: "Single medication (e.g., statin or beta-blocker)",
		cost:        "Medium ($$$)",
		costTier:    3,
		intensity:   "Moderate",
		sideEffects: "Low",
		monitoring:  "Quarterly check-ups",
	}
	InterventionCombinationTherapy = Intervention{
		id:          ActionCombinationTherapy,
		name:        "Combination Therapy",
		description: "Medication plus supervised lifestyle program",
		cost:        "High ($$$$)",
		costTier:    4,
		intensity:   "High",
		sideEffects: "Moderate",
		monitoring:  "Monthly check-ups initially",
	}
	InterventionIntensiveTreatment = Intervention{
		id:          ActionIntensiveTreatment,
		name:        "Intensive Treatment",
		description: "Multiple medications with intensive lifestyle management",
		cost:        "Very High ($$$$$)",
		costTier:    5,
		intensity:   "Very High",
		sideEffects: "Higher risk",
		monitoring:  "Frequent monitoring required",
	}
)

var interventions = [...]Intervention{
	InterventionMonitorOnly,
	InterventionLifestyle,
	InterventionSingleMedication,
	InterventionCombinationTherapy,
	InterventionIntensiveTreatment,
}

// InterventionFromID looks up the catalogue entry for an action ID (0-4).
func InterventionFromID(id int) (Intervention, error) {
	if id < 0 || id > MaxActionID {
		return Intervention{}, fmt.Errorf("invalid intervention id: %d (must be 0-%d)", id, MaxActionID)
	}
	return interventions[id], nil
}

// InterventionFromName reconstructs an Intervention from its display name.
func InterventionFromName(name string) (Intervention, error) {
	for _, i := range interventions {
		if i.name == name {
			return i, nil
		}
	}
	return Intervention{}, fmt.Errorf("invalid intervention: %s", name)
}

// AllInterventions returns the catalogue in ID order.
func AllInterventions() []Intervention {
	out := make([]Intervention, len(interventions))
	copy(out, interventions[:])
	return out
}

func (i Intervention) ID() int             { return i.id }
func (i Intervention) Name() string        { return i.name }
func (i Intervention) Description() string { return i.description }
func (i Intervention) Cost() string        { return i.cost }
func (i Intervention) CostTier() int       { return i.costTier }
func (i Intervention) Intensity() string   { return i.intensity }
func (i Intervention) SideEffects() string { return i.sideEffects }
func (i Intervention) Monitoring() string  { return i.monitoring }

// String returns the display name.
func (i Intervention) String() string {
	return i.name
}

// IsZero returns true if the Intervention has not been set.
func (i Intervention) IsZero() bool {
	return i.name == ""
}

// Equal checks equality with another Intervention.
func (i Intervention) Equal(other Intervention) bool {
	return i.id == other.id && i.name == other.name
}
