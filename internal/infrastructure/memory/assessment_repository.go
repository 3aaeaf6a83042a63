package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/healthguard/healthguard/internal/domain/model"
	"github.com/healthguard/healthguard/internal/domain/port"
)

// AssessmentRepository implements port.AssessmentRepository in process memory.
// It is used when no database is configured.
type AssessmentRepository struct {
	mu          sync.RWMutex
	assessments map[uuid.UUID]*model.RiskAssessment
}

// NewAssessmentRepository creates an empty repository.
func NewAssessmentRepository() *AssessmentRepository {
	return &AssessmentRepository{assessments: make(map[uuid.UUID]*model.RiskAssessment)}
}

// Save stores a snapshot of the assessment, replacing any earlier version.
func (r *AssessmentRepository) Save(_ context.Context, a *model.RiskAssessment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.assessments[a.ID()] = snapshot(a)
	return nil
}

// FindByID retrieves an assessment by its unique identifier.
func (r *AssessmentRepository) FindByID(_ context.Context, id uuid.UUID) (*model.RiskAssessment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.assessments[id]
	if !ok {
		return nil, port.ErrAssessmentNotFound
	}
	return snapshot(a), nil
}

// List returns assessments newest first.
func (r *AssessmentRepository) List(_ context.Context, limit, offset int) ([]*model.RiskAssessment, int, error) {
	r.mu.RLock()
	all := make([]*model.RiskAssessment, 0, len(r.assessments))
	for _, a := range r.assessments {
		all = append(all, a)
	}
	r.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt().Equal(all[j].CreatedAt()) {
			return all[i].CreatedAt().After(all[j].CreatedAt())
		}
		return all[i].ID().String() < all[j].ID().String()
	})

	total := len(all)
	if offset >= total {
		return []*model.RiskAssessment{}, total, nil
	}
	end := total
	if limit > 0 && offset+limit < total {
		end = offset + limit
	}

	out := make([]*model.RiskAssessment, 0, end-offset)
	for _, a := range all[offset:end] {
		out = append(out, snapshot(a))
	}
	return out, total, nil
}

// snapshot copies the aggregate so callers cannot mutate stored state.
func snapshot(a *model.RiskAssessment) *model.RiskAssessment {
	outcome := a.Outcome()
	outcome.RiskFactors.Details = append([]string(nil), outcome.RiskFactors.Details...)
	return model.Reconstruct(
		a.ID(), a.Kind(), a.Patient(), outcome, a.ModelVersion(), a.Version(),
		a.CreatedAt(), a.UpdatedAt(), a.CompletedAt(),
	)
}
