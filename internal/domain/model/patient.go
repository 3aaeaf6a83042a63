package model

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// Feature names in the canonical model order.
const (
	FeatureAge      = "age"
	FeatureSex      = "sex"
	FeatureCP       = "cp"
	FeatureTrestbps = "trestbps"
	FeatureChol     = "chol"
	FeatureFBS      = "fbs"
	FeatureRestECG  = "restecg"
	FeatureThalach  = "thalach"
	FeatureExang    = "exang"
	FeatureOldpeak  = "oldpeak"
	FeatureSlope    = "slope"
	FeatureCA       = "ca"
	FeatureThal     = "thal"
)

// FeatureNames is the order in which features are fed to the risk model.
var FeatureNames = []string{
	FeatureAge, FeatureSex, FeatureCP, FeatureTrestbps, FeatureChol, FeatureFBS, FeatureRestECG,
	FeatureThalach, FeatureExang, FeatureOldpeak, FeatureSlope, FeatureCA, FeatureThal,
}

// ModifiableMetrics are the features an intervention can change.
var ModifiableMetrics = []string{FeatureTrestbps, FeatureChol, FeatureThalach, FeatureOldpeak}

type featureRange struct {
	min, max float64
	integer  bool
}

var featureRanges = map[string]featureRange{
	FeatureAge:      {0, 120, false},
	FeatureSex:      {0, 1, true},
	FeatureCP:       {1, 4, true},
	FeatureTrestbps: {50, 250, false},
	FeatureChol:     {100, 600, false},
	FeatureFBS:      {0, 1, true},
	FeatureRestECG:  {0, 2, true},
	FeatureThalach:  {50, 250, false},
	FeatureExang:    {0, 1, true},
	FeatureOldpeak:  {0, 10, false},
	FeatureSlope:    {1, 3, true},
	FeatureCA:       {0, 3, true},
	FeatureThal:     {3, 7, true},
}

// PatientProfile holds the 13 clinical inputs of one patient.
type PatientProfile struct {
	Age      float64 `json:"age" yaml:"age"`
	Trestbps float64 `json:"trestbps" yaml:"trestbps"`
	Chol     float64 `json:"chol" yaml:"chol"`
	Thalach  float64 `json:"thalach" yaml:"thalach"`
	Oldpeak  float64 `json:"oldpeak" yaml:"oldpeak"`
	Sex      int     `json:"sex" yaml:"sex"`
	CP       int     `json:"cp" yaml:"cp"`
	FBS      int     `json:"fbs" yaml:"fbs"`
	RestECG  int     `json:"restecg" yaml:"restecg"`
	Exang    int     `json:"exang" yaml:"exang"`
	Slope    int     `json:"slope" yaml:"slope"`
	CA       int     `json:"ca" yaml:"ca"`
	Thal     int     `json:"thal" yaml:"thal"`
}

// NewPatientProfile builds a profile from named feature values. Every feature
// must be present, integer-coded features must be whole numbers and all values
// must be inside their clinical range.
func NewPatientProfile(values map[string]float64) (PatientProfile, error) {
	verr := &ValidationError{}

	var unknown []string
	for name := range values {
		if _, ok := featureRanges[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	sort.Strings(unknown)
	for _, name := range unknown {
		verr.Add(name, "unknown feature")
	}
	for _, name := range FeatureNames {
		v, ok := values[name]
		switch {
		case !ok:
			verr.Add(name, "is required")
		case featureRanges[name].integer && v != math.Trunc(v):
			verr.Add(name, fmt.Sprintf("must be a whole number, got %g", v))
		}
	}
	if verr.HasViolations() {
		return PatientProfile{}, verr
	}

	p := PatientProfile{
		Age:      values[FeatureAge],
		Sex:      int(values[FeatureSex]),
		CP:       int(values[FeatureCP]),
		Trestbps: values[FeatureTrestbps],
		Chol:     values[FeatureChol],
		FBS:      int(values[FeatureFBS]),
		RestECG:  int(values[FeatureRestECG]),
		Thalach:  values[FeatureThalach],
		Exang:    int(values[FeatureExang]),
		Oldpeak:  values[FeatureOldpeak],
		Slope:    int(values[FeatureSlope]),
		CA:       int(values[FeatureCA]),
		Thal:     int(values[FeatureThal]),
	}
	if err := p.Validate(); err != nil {
		return PatientProfile{}, err
	}
	return p, nil
}

// Validate reports every field outside its clinical range.
func (p PatientProfile) Validate() error {
	verr := &ValidationError{}
	for i, v := range p.Vector() {
		name := FeatureNames[i]
		r := featureRanges[name]
		if math.IsNaN(v) || v < r.min || v > r.max {
			verr.Add(name, fmt.Sprintf("must be between %g and %g, got %g", r.min, r.max, v))
		}
	}
	if verr.HasViolations() {
		return verr
	}
	return nil
}

// Vector returns the features in FeatureNames order.
func (p PatientProfile) Vector() []float64 {
	return []float64{
		p.Age, float64(p.Sex), float64(p.CP), p.Trestbps, p.Chol, float64(p.FBS), float64(p.RestECG),
		p.Thalach, float64(p.Exang), p.Oldpeak, float64(p.Slope), float64(p.CA), float64(p.Thal),
	}
}

// Values returns the features keyed by name.
func (p PatientProfile) Values() map[string]float64 {
	v := p.Vector()
	out := make(map[string]float64, len(v))
	for i, name := range FeatureNames {
		out[name] = v[i]
	}
	return out
}

// Metrics returns the modifiable metrics keyed by feature name.
func (p PatientProfile) Metrics() map[string]float64 {
	return map[string]float64{
		FeatureTrestbps: p.Trestbps,
		FeatureChol:     p.Chol,
		FeatureThalach:  p.Thalach,
		FeatureOldpeak:  p.Oldpeak,
	}
}

// WithMetrics returns a copy with the given modifiable metrics replaced.
// Keys that are not modifiable metrics are ignored.
func (p PatientProfile) WithMetrics(metrics map[string]float64) PatientProfile {
	out := p
	for name, v := range metrics {
		switch name {
		case FeatureTrestbps:
			out.Trestbps = v
		case FeatureChol:
			out.Chol = v
		case FeatureThalach:
			out.Thalach = v
		case FeatureOldpeak:
			out.Oldpeak = v
		}
	}
	return out
}

// HasStructuralDisease is true for a thalassemia defect or two or more diseased vessels.
func (p PatientProfile) HasStructuralDisease() bool {
	return p.Thal == 6 || p.Thal == 7 || p.CA >= 2
}

// FieldViolation describes one invalid input.
type FieldViolation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError collects every invalid field of a request.
type ValidationError struct {
	Violations []FieldViolation
}

// NewValidationError builds a ValidationError with a single violation.
func NewValidationError(field, message string) *ValidationError {
	v := &ValidationError{}
	v.Add(field, message)
	return v
}

// Add records a violation.
func (e *ValidationError) Add(field, message string) {
	e.Violations = append(e.Violations, FieldViolation{Field: field, Message: message})
}

// HasViolations reports whether anything was recorded.
func (e *ValidationError) HasViolations() bool {
	return len(e.Violations) > 0
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, v.Field+" "+v.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}
