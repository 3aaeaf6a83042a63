package service

import (
	"errors"
	"fmt"

	"github.com/healthguard/healthguard/internal/domain/valueobject"
)

// RiskFactorCutoffs are the inclusive lower bounds at which a measurement is flagged.
type RiskFactorCutoffs struct {
	Trestbps float64
	Chol     float64
	Oldpeak  float64
	CA       int
}

// InterventionEffect holds the relative change an intervention applies to each
// modifiable metric, as fractions (0.10 = 10 %).
type InterventionEffect struct {
	BPReduction      float64
	CholReduction    float64
	ThalachIncrease  float64
	OldpeakReduction float64
}

func (e InterventionEffect) fields() [4]float64 {
	return [4]float64{e.BPReduction, e.CholReduction, e.ThalachIncrease, e.OldpeakReduction}
}

// Policy gathers the clinical tables driving recommendations: tier thresholds,
// risk factor cutoffs and the per-intervention effect sizes.
type Policy struct {
	Severe     RiskFactorCutoffs
	Moderate   RiskFactorCutoffs
	Effects    [valueobject.MaxActionID + 1]InterventionEffect
	Thresholds valueobject.TierThresholds
}

// DefaultPolicy returns the guideline values.
func DefaultPolicy() Policy {
	return Policy{
		Thresholds: valueobject.DefaultTierThresholds,
		Severe:     RiskFactorCutoffs{Trestbps: 160, Chol: 280, Oldpeak: 2.0, CA: 3},
		Moderate:   RiskFactorCutoffs{Trestbps: 140, Chol: 240, Oldpeak: 1.0, CA: 1},
		Effects: [valueobject.MaxActionID + 1]InterventionEffect{
			valueobject.ActionMonitorOnly:        {},
			valueobject.ActionLifestyle:          {BPReduction: 0.05, CholReduction: 0.10, ThalachIncrease: 0.03, OldpeakReduction: 0.05},
			valueobject.ActionSingleMedication:   {BPReduction: 0.10, CholReduction: 0.15, ThalachIncrease: 0.03, OldpeakReduction: 0.08},
			valueobject.ActionCombinationTherapy: {BPReduction: 0.15, CholReduction: 0.20, ThalachIncrease: 0.05, OldpeakReduction: 0.10},
			valueobject.ActionIntensiveTreatment: {BPReduction: 0.20, CholReduction: 0.25, ThalachIncrease: 0.07, OldpeakReduction: 0.20},
		},
	}
}

// Validate checks the invariants the recommendation engine relies on.
func (p Policy) Validate() error {
	var errs []error

	if err := p.Thresholds.Validate(); err != nil {
		errs = append(errs, err)
	}

	if p.Moderate.Trestbps <= 0 || p.Moderate.Chol <= 0 || p.Moderate.Oldpeak <= 0 || p.Moderate.CA <= 0 {
		errs = append(errs, errors.New("moderate cutoffs must be positive"))
	}
	if p.Severe.Trestbps < p.Moderate.Trestbps {
		errs = append(errs, fmt.Errorf("severe trestbps cutoff %.1f is below moderate %.1f", p.Severe.Trestbps, p.Moderate.Trestbps))
	}
	if p.Severe.Chol < p.Moderate.Chol {
		errs = append(errs, fmt.Errorf("severe chol cutoff %.1f is below moderate %.1f", p.Severe.Chol, p.Moderate.Chol))
	}
	if p.Severe.Oldpeak < p.Moderate.Oldpeak {
		errs = append(errs, fmt.Errorf("severe oldpeak cutoff %.1f is below moderate %.1f", p.Severe.Oldpeak, p.Moderate.Oldpeak))
	}
	if p.Severe.CA < p.Moderate.CA {
		errs = append(errs, fmt.Errorf("severe ca cutoff %d is below moderate %d", p.Severe.CA, p.Moderate.CA))
	}

	if p.Effects[valueobject.ActionMonitorOnly] != (InterventionEffect{}) {
		errs = append(errs, errors.New("monitor only must not change any metric"))
	}
	for action := range p.Effects {
		cur := p.Effects[action].fields()
		for _, v := range cur {
			if v < 0 || v >= 1 {
				errs = append(errs, fmt.Errorf("action %d: effects must be in [0, 1), got %v", action, v))
				break
			}
		}
		if action == 0 {
			continue
		}
		prev := p.Effects[action-1].fields()
		for i := range cur {
			if cur[i] < prev[i] {
				errs = append(errs, fmt.Errorf("action %d: effects must not be weaker than action %d", action, action-1))
				break
			}
		}
	}

	return errors.Join(errs...)
}
