package valueobject

// RiskFactors summarises the clinical inputs flagged as severe or moderate.
type RiskFactors struct {
	Details  []string `json:"details"`
	Severe   int      `json:"severe_count"`
	Moderate int      `json:"moderate_count"`
}

// Total returns the number of flagged factors.
func (r RiskFactors) Total() int {
	return r.Severe + r.Moderate
}

// IsEmpty is true when nothing was flagged.
func (r RiskFactors) IsEmpty() bool {
	return r.Total() == 0
}
