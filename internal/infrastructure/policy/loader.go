// Package policy loads the clinical policy (tier thresholds, risk factor
// cutoffs and intervention effects) from YAML. Keys left out of the file keep
// their guideline defaults.
package policy

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/healthguard/healthguard/internal/domain/service"
	"github.com/healthguard/healthguard/internal/domain/valueobject"
)

type cutoffsDoc struct {
	Trestbps float64 `yaml:"trestbps"`
	Chol     float64 `yaml:"chol"`
	Oldpeak  float64 `yaml:"oldpeak"`
	CA       int     `yaml:"ca"`
}

type effectDoc struct {
	BPReduction      float64 `yaml:"bp_reduction"`
	CholReduction    float64 `yaml:"chol_reduction"`
	ThalachIncrease  float64 `yaml:"thalach_increase"`
	OldpeakReduction float64 `yaml:"oldpeak_reduction"`
}

type document struct {
	TierThresholds []float64 `yaml:"tier_thresholds"`
	RiskFactors    struct {
		Severe   cutoffsDoc `yaml:"severe"`
		Moderate cutoffsDoc `yaml:"moderate"`
	} `yaml:"risk_factors"`
	Interventions map[string]effectDoc `yaml:"interventions"`
}

// interventionKeys maps YAML keys to intervention IDs.
var interventionKeys = map[string]int{
	"monitor_only":        valueobject.ActionMonitorOnly,
	"lifestyle":           valueobject.ActionLifestyle,
	"single_medication":   valueobject.ActionSingleMedication,
	"combination_therapy": valueobject.ActionCombinationTherapy,
	"intensive_treatment": valueobject.ActionIntensiveTreatment,
}

func fromPolicy(p service.Policy) document {
	var d document
	d.TierThresholds = p.Thresholds[:]
	d.RiskFactors.Severe = cutoffsDoc(p.Severe)
	d.RiskFactors.Moderate = cutoffsDoc(p.Moderate)
	d.Interventions = make(map[string]effectDoc, len(interventionKeys))
	for key, id := range interventionKeys {
		d.Interventions[key] = effectDoc(p.Effects[id])
	}
	return d
}

func (d document) toPolicy() (service.Policy, error) {
	var p service.Policy
	if len(d.TierThresholds) != len(p.Thresholds) {
		return p, fmt.Errorf("tier_thresholds must have %d entries, got %d", len(p.Thresholds), len(d.TierThresholds))
	}
	copy(p.Thresholds[:], d.TierThresholds)
	p.Severe = service.RiskFactorCutoffs(d.RiskFactors.Severe)
	p.Moderate = service.RiskFactorCutoffs(d.RiskFactors.Moderate)
	for key, e := range d.Interventions {
		id, ok := interventionKeys[key]
		if !ok {
			return p, fmt.Errorf("unknown intervention %q", key)
		}
		p.Effects[id] = service.InterventionEffect(e)
	}
	return p, nil
}

// Decode reads a YAML policy on top of service.DefaultPolicy and validates it.
// Unknown keys are rejected.
func Decode(r io.Reader) (service.Policy, error) {
	doc := fromPolicy(service.DefaultPolicy())

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return service.Policy{}, fmt.Errorf("failed to decode policy: %w", err)
	}

	p, err := doc.toPolicy()
	if err != nil {
		return service.Policy{}, fmt.Errorf("invalid policy: %w", err)
	}
	if err := p.Validate(); err != nil {
		return service.Policy{}, fmt.Errorf("invalid policy: %w", err)
	}
	return p, nil
}

// Load reads the policy file at path. An empty path returns the defaults.
func Load(path string) (service.Policy, error) {
	if path == "" {
		return service.DefaultPolicy(), nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return service.Policy{}, fmt.Errorf("failed to read policy: %w", err)
	}
	return Decode(bytes.NewReader(raw))
}

// Encode writes p as YAML.
func Encode(w io.Writer, p service.Policy) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(fromPolicy(p)); err != nil {
		return fmt.Errorf("failed to encode policy: %w", err)
	}
	return enc.Close()
}
