package valueobject

import "fmt"

// RiskTier is an immutable value object placing a risk score in one of five bands.
// Each band maps to the intervention with the same index.
type RiskTier struct {
	value string
	index int
}

var (
	RiskTierLow         = RiskTier{value: "Low Risk", index: 0}
	RiskTierLowModerate = RiskTier{value: "Low-Moderate Risk", index: 1}
	RiskTierModerate    = RiskTier{value: "Moderate Risk", index: 2}
	RiskTierHigh        = RiskTier{value: "High Risk", index: 3}
	RiskTierVeryHigh    = RiskTier{value: "Very High Risk", index: 4}
)

var riskTiers = [...]RiskTier{RiskTierLow, RiskTierLowModerate, RiskTierModerate, RiskTierHigh, RiskTierVeryHigh}

// TierThresholds are the lower bounds (percent) of tiers 1..4. Scores below the
// first threshold fall into RiskTierLow.
type TierThresholds [4]float64

// DefaultTierThresholds are the guideline cut points.
var DefaultTierThresholds = TierThresholds{15, 30, 50, 70}

// Validate requires strictly increasing thresholds inside (0, 100).
func (t TierThresholds) Validate() error {
	prev := 0.0
	for i, v := range t {
		if v <= prev || v >= 100 {
			return fmt.Errorf("tier threshold %d (%.2f) must be greater than %.2f and below 100", i+1, v, prev)
		}
		prev = v
	}
	return nil
}

// RiskTierFromString reconstructs a RiskTier from its string representation.
func RiskTierFromString(s string) (RiskTier, error) {
	for _, t := range riskTiers {
		if t.value == s {
			return t, nil
		}
	}
	return RiskTier{}, fmt.Errorf("invalid risk tier: %s", s)
}

// RiskTierFromScore derives the tier for a risk score (0-100).
func RiskTierFromScore(score float64, thresholds TierThresholds) RiskTier {
	switch {
	case score >= thresholds[3]:
		return RiskTierVeryHigh
	case score >= thresholds[2]:
		return RiskTierHigh
	case score >= thresholds[1]:
		return RiskTierModerate
	case score >= thresholds[0]:
		return RiskTierLowModerate
	default:
		return RiskTierLow
	}
}

// String returns the string representation.
func (t RiskTier) String() string {
	return t.value
}

// Index returns the tier position, 0 (lowest) to 4.
func (t RiskTier) Index() int {
	return t.index
}

// BaseAction is the intervention ID the tier calls for before any escalation.
func (t RiskTier) BaseAction() int {
	return t.index
}

// Class is the lower-case wording used in clinical rationales.
func (t RiskTier) Class() string {
	switch t.index {
	case 1:
		return "low"
	case 2:
		return "medium"
	case 3:
		return "high"
	case 4:
		return "very high"
	default:
		return "very low"
	}
}

// IsZero returns true if the RiskTier has not been set.
func (t RiskTier) IsZero() bool {
	return t.value == ""
}

// Equal checks equality with another RiskTier.
func (t RiskTier) Equal(other RiskTier) bool {
	return t.value == other.value
}
