package service_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/healthguard/healthguard/internal/domain/service"
)

func TestDefaultPolicy_IsValid(t *testing.T) {
	assert.NoError(t, service.DefaultPolicy().Validate())
}

func TestPolicy_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*service.Policy)
		wantErr string
	}{
		{"thresholds not increasing", func(p *service.Policy) { p.Thresholds[2] = 20 }, "tier threshold 3"},
		{"severe bp below moderate", func(p *service.Policy) { p.Severe.Trestbps = 130 }, "severe trestbps cutoff"},
		{"severe chol below moderate", func(p *service.Policy) { p.Severe.Chol = 200 }, "severe chol cutoff"},
		{"severe oldpeak below moderate", func(p *service.Policy) { p.Severe.Oldpeak = 0.5 }, "severe oldpeak cutoff"},
		{"severe ca below moderate", func(p *service.Policy) { p.Severe.CA = 0 }, "severe ca cutoff"},
		{"zero moderate cutoff", func(p *service.Policy) { p.Moderate.Oldpeak = 0 }, "moderate cutoffs must be positive"},
		{"monitor only changes metrics", func(p *service.Policy) { p.Effects[0].BPReduction = 0.01 }, "monitor only must not change"},
		{"effects not nested", func(p *service.Policy) { p.Effects[3].CholReduction = 0.12 }, "action 3: effects must not be weaker than action 2"},
		{"effect out of range", func(p *service.Policy) { p.Effects[4].OldpeakReduction = 1.2 }, "action 4: effects must be in [0, 1)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := service.DefaultPolicy()
			tt.mutate(&p)
			err := p.Validate()
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestPolicy_ValidateJoinsErrors(t *testing.T) {
	p := service.DefaultPolicy()
	p.Severe.Trestbps = 100
	p.Severe.Chol = 100

	err := p.Validate()
	assert.ErrorContains(t, err, "severe trestbps cutoff")
	assert.ErrorContains(t, err, "severe chol cutoff")
}
