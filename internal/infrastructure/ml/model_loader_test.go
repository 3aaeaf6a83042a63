package ml_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/healthguard/healthguard/internal/domain/model"
	"github.com/healthguard/healthguard/internal/infrastructure/ml"
	"github.com/healthguard/healthguard/pkg/observability"
)

func TestDefaultModel(t *testing.T) {
	m, err := ml.DefaultModel()
	require.NoError(t, err)

	assert.Equal(t, "cleveland-lr-1.0", m.Version)
	assert.Equal(t, model.FeatureNames, m.FeatureNames)
	assert.False(t, m.TrainedAt.IsZero())
	assert.Contains(t, m.Metrics, "roc_auc")
}

func TestLoad_Default(t *testing.T) {
	loaded, err := ml.Load("", observability.DiscardLogger())
	require.NoError(t, err)

	assert.Equal(t, ml.DefaultSource, loaded.Source)
	assert.Equal(t, "cleveland-lr-1.0", loaded.Version())
	assert.Equal(t, "ca", loaded.Predictor.TopFeatures(1)[0].Name)
}

func TestLoad_FromFile(t *testing.T) {
	m, err := ml.DefaultModel()
	require.NoError(t, err)
	m.Version = "retrained-2"

	raw, err := json.Marshal(m)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "model.json")
	require.NoError(t, os.WriteFile(path, raw, 0o600))

	loaded, err := ml.Load(path, observability.DiscardLogger())
	require.NoError(t, err)
	assert.Equal(t, path, loaded.Source)
	assert.Equal(t, "retrained-2", loaded.Version())
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()
	write := func(name, body string) string {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
		return path
	}

	tests := []struct {
		name    string
		path    string
		wantErr string
	}{
		{"missing file", filepath.Join(dir, "nope.json"), "failed to open model"},
		{"not json", write("bad.json", "{"), "failed to decode model"},
		{"wrong features", write("short.json", `{"version":"x","feature_names":["age"]}`), "invalid model: model has 1 features"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ml.Load(tt.path, observability.DiscardLogger())
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestDecodeModel_RejectsZeroScale(t *testing.T) {
	m, err := ml.DefaultModel()
	require.NoError(t, err)
	m.Scales[4] = 0

	raw, err := json.Marshal(m)
	require.NoError(t, err)

	_, err = ml.DecodeModel(strings.NewReader(string(raw)))
	assert.ErrorContains(t, err, "scale for chol must be positive")
}
