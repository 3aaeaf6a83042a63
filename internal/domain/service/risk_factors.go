package service

import (
	"fmt"

	"github.com/healthguard/healthguard/internal/domain/model"
	"github.com/healthguard/healthguard/internal/domain/valueobject"
)

// AnalyzeRiskFactors flags blood pressure, cholesterol, ST depression, exercise
// angina and vessel count against the policy cutoffs. Each measurement counts
// at most once, as severe when both cutoffs are met.
func AnalyzeRiskFactors(p model.PatientProfile, policy Policy) valueobject.RiskFactors {
	rf := valueobject.RiskFactors{Details: make([]string, 0, 5)}

	severe := func(detail string) {
		rf.Severe++
		rf.Details = append(rf.Details, detail)
	}
	moderate := func(detail string) {
		rf.Moderate++
		rf.Details = append(rf.Details, detail)
	}

	switch {
	case p.Trestbps >= policy.Severe.Trestbps:
		severe(fmt.Sprintf("severe hypertension (BP: %.0f mmHg)", p.Trestbps))
	case p.Trestbps >= policy.Moderate.Trestbps:
		moderate(fmt.Sprintf("moderate hypertension (BP: %.0f mmHg)", p.Trestbps))
	}

	switch {
	case p.Chol >= policy.Severe.Chol:
		severe(fmt.Sprintf("very high cholesterol (%.0f mg/dL)", p.Chol))
	case p.Chol >= policy.Moderate.Chol:
		moderate(fmt.Sprintf("high cholesterol (%.0f mg/dL)", p.Chol))
	}

	switch {
	case p.Oldpeak >= policy.Severe.Oldpeak:
		severe(fmt.Sprintf("significant ST depression (%.1f)", p.Oldpeak))
	case p.Oldpeak >= policy.Moderate.Oldpeak:
		moderate(fmt.Sprintf("moderate ST depression (%.1f)", p.Oldpeak))
	}

	if p.Exang == 1 {
		moderate("exercise-induced angina")
	}

	switch {
	case p.CA >= policy.Severe.CA:
		severe(fmt.Sprintf("multiple vessel disease (%d vessels)", p.CA))
	case p.CA >= policy.Moderate.CA:
		suffix := ""
		if p.CA > 1 {
			suffix = "s"
		}
		moderate(fmt.Sprintf("vessel disease (%d vessel%s)", p.CA, suffix))
	}

	return rf
}
