package service

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/healthguard/healthguard/internal/domain/model"
)

// Classification labels reported with every prediction.
const (
	ClassificationLow    = "Low Risk"
	ClassificationMedium = "Medium Risk"
	ClassificationHigh   = "High Risk"
)

// ErrModelNotLoaded is returned when a prediction is requested without a model.
var ErrModelNotLoaded = errors.New("risk model not loaded")

// Predictor estimates cardiovascular disease risk for a patient.
type Predictor interface {
	Predict(p model.PatientProfile) Prediction
}

// LogisticModel is a standard-scaled logistic regression trained offline.
type LogisticModel struct {
	TrainedAt    time.Time          `json:"trained_at"`
	Metrics      map[string]float64 `json:"metrics,omitempty"`
	Version      string             `json:"version"`
	FeatureNames []string           `json:"feature_names"`
	Means        []float64          `json:"scaler_mean"`
	Scales       []float64          `json:"scaler_scale"`
	Coefficients []float64          `json:"coefficients"`
	Intercept    float64            `json:"intercept"`
}

// Validate checks that the artifact matches the canonical feature layout.
func (m LogisticModel) Validate() error {
	if m.Version == "" {
		return errors.New("model version is required")
	}
	n := len(model.FeatureNames)
	if len(m.FeatureNames) != n {
		return fmt.Errorf("model has %d features, expected %d", len(m.FeatureNames), n)
	}
	for i, name := range model.FeatureNames {
		if m.FeatureNames[i] != name {
			return fmt.Errorf("feature %d is %q, expected %q", i, m.FeatureNames[i], name)
		}
	}
	if len(m.Means) != n || len(m.Scales) != n || len(m.Coefficients) != n {
		return fmt.Errorf("scaler and coefficient vectors must have %d entries (means=%d scales=%d coefficients=%d)",
			n, len(m.Means), len(m.Scales), len(m.Coefficients))
	}
	for i := range n {
		if !(m.Scales[i] > 0) || math.IsInf(m.Scales[i], 0) {
			return fmt.Errorf("scale for %s must be positive, got %v", m.FeatureNames[i], m.Scales[i])
		}
		if !isFinite(m.Means[i]) || !isFinite(m.Coefficients[i]) {
			return fmt.Errorf("parameters for %s must be finite", m.FeatureNames[i])
		}
	}
	if !isFinite(m.Intercept) {
		return errors.New("intercept must be finite")
	}
	return nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Prediction is the output of a single risk evaluation.
type Prediction struct {
	FeatureImportance map[string]float64
	Classification    string
	RiskScore         float64 // percent, 0-100
	Probability       float64 // 0-1
	HasDisease        bool
}

// FeatureWeight pairs a feature with its normalised importance.
type FeatureWeight struct {
	Name   string  `json:"name"`
	Weight float64 `json:"weight"`
}

// RiskPredictor evaluates a LogisticModel. It is immutable and safe for concurrent use.
type RiskPredictor struct {
	importance map[string]float64
	ranking    []FeatureWeight
	model      LogisticModel
}

// NewRiskPredictor validates the model and precomputes feature importance.
func NewRiskPredictor(m LogisticModel) (*RiskPredictor, error) {
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("invalid risk model: %w", err)
	}

	importance := make(map[string]float64, len(m.FeatureNames))
	total := 0.0
	for _, c := range m.Coefficients {
		total += math.Abs(c)
	}
	for i, name := range m.FeatureNames {
		if total == 0 {
			importance[name] = 1 / float64(len(m.FeatureNames))
			continue
		}
		importance[name] = math.Abs(m.Coefficients[i]) / total
	}

	ranking := make([]FeatureWeight, 0, len(importance))
	for name, w := range importance {
		ranking = append(ranking, FeatureWeight{Name: name, Weight: w})
	}
	sort.Slice(ranking, func(i, j int) bool {
		if ranking[i].Weight != ranking[j].Weight {
			return ranking[i].Weight > ranking[j].Weight
		}
		return ranking[i].Name < ranking[j].Name
	})

	return &RiskPredictor{model: m, importance: importance, ranking: ranking}, nil
}

// Predict scales the features, applies the linear model and the logistic link.
func (r *RiskPredictor) Predict(p model.PatientProfile) Prediction {
	x := p.Vector()
	logit := r.model.Intercept
	for i, v := range x {
		z := (v - r.model.Means[i]) / r.model.Scales[i]
		logit += r.model.Coefficients[i] * z
	}

	prob := sigmoid(logit)
	score := prob * 100

	return Prediction{
		RiskScore:         score,
		Probability:       prob,
		HasDisease:        prob >= 0.5,
		Classification:    Classify(score),
		FeatureImportance: r.FeatureImportance(),
	}
}

// Classify maps a risk score to the three-level prediction label.
func Classify(score float64) string {
	switch {
	case score < 30:
		return ClassificationLow
	case score < 70:
		return ClassificationMedium
	default:
		return ClassificationHigh
	}
}

func sigmoid(x float64) float64 {
	if x >= 0 {
		return 1 / (1 + math.Exp(-x))
	}
	e := math.Exp(x)
	return e / (1 + e)
}

// FeatureImportance returns a copy of the normalised importance map.
func (r *RiskPredictor) FeatureImportance() map[string]float64 {
	out := make(map[string]float64, len(r.importance))
	for k, v := range r.importance {
		out[k] = v
	}
	return out
}

// TopFeatures returns the n most important features, highest first. Ties are
// broken by name. n <= 0 or larger than the feature count returns all of them.
func (r *RiskPredictor) TopFeatures(n int) []FeatureWeight {
	if n <= 0 || n > len(r.ranking) {
		n = len(r.ranking)
	}
	out := make([]FeatureWeight, n)
	copy(out, r.ranking[:n])
	return out
}

// ModelVersion identifies the loaded artifact.
func (r *RiskPredictor) ModelVersion() string {
	return r.model.Version
}

// Model returns the underlying artifact.
func (r *RiskPredictor) Model() LogisticModel {
	return r.model
}
