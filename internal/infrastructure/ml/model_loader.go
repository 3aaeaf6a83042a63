package ml

import (
	_ "embed"

	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/healthguard/healthguard/internal/domain/service"
)

//go:embed default_model.json
var defaultModel []byte

// DefaultSource names the built-in model artifact.
const DefaultSource = "embedded:default_model.json"

// LoadedModel is a validated model ready for prediction.
type LoadedModel struct {
	Predictor *service.RiskPredictor
	Source    string
}

// Version returns the artifact version.
func (m LoadedModel) Version() string {
	return m.Predictor.ModelVersion()
}

// DecodeModel reads a JSON model artifact and validates it.
func DecodeModel(r io.Reader) (service.LogisticModel, error) {
	var m service.LogisticModel
	if err := json.NewDecoder(r).Decode(&m); err != nil {
		return service.LogisticModel{}, fmt.Errorf("failed to decode model: %w", err)
	}
	if err := m.Validate(); err != nil {
		return service.LogisticModel{}, fmt.Errorf("invalid model: %w", err)
	}
	return m, nil
}

// DefaultModel returns the built-in artifact.
func DefaultModel() (service.LogisticModel, error) {
	return DecodeModel(bytes.NewReader(defaultModel))
}

// LoadModel reads the artifact at path, or the built-in one when path is empty.
func LoadModel(path string) (service.LogisticModel, string, error) {
	if path == "" {
		m, err := DefaultModel()
		return m, DefaultSource, err
	}

	f, err := os.Open(path)
	if err != nil {
		return service.LogisticModel{}, path, fmt.Errorf("failed to open model: %w", err)
	}
	defer f.Close()

	m, err := DecodeModel(f)
	return m, path, err
}

// Load builds a predictor from the artifact at path and logs what was loaded.
func Load(path string, logger *slog.Logger) (LoadedModel, error) {
	m, source, err := LoadModel(path)
	if err != nil {
		return LoadedModel{}, err
	}

	predictor, err := service.NewRiskPredictor(m)
	if err != nil {
		return LoadedModel{}, fmt.Errorf("failed to build predictor: %w", err)
	}

	top := predictor.TopFeatures(3)
	names := make([]string, len(top))
	for i, f := range top {
		names[i] = f.Name
	}
	logger.Info("risk model loaded",
		slog.String("source", source),
		slog.String("version", m.Version),
		slog.Time("trained_at", m.TrainedAt),
		slog.Any("top_features", names),
	)

	return LoadedModel{Predictor: predictor, Source: source}, nil
}
