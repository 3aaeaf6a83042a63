package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/healthguard/healthguard/internal/domain/model"
	"github.com/healthguard/healthguard/internal/domain/port"
	"github.com/healthguard/healthguard/internal/domain/valueobject"
	pgutil "github.com/healthguard/healthguard/pkg/postgres"
)

// riskPlaces matches the NUMERIC(7, 4) risk columns.
const riskPlaces = 4

// DB is satisfied by *pgxpool.Pool.
type DB interface {
	pgutil.Querier
	pgutil.TxBeginner
}

// AssessmentRepository implements port.AssessmentRepository using PostgreSQL.
type AssessmentRepository struct {
	db DB
}

// NewAssessmentRepository creates a new PostgreSQL-backed assessment repository.
func NewAssessmentRepository(db DB) *AssessmentRepository {
	return &AssessmentRepository{db: db}
}

const selectColumns = `
	SELECT id, kind, patient, baseline_risk, expected_risk, risk_tier, action,
		risk_factors, model_version, version, created_at, updated_at, completed_at
	FROM risk_assessments`

// Save upserts a risk assessment. A stored row with a newer version is left untouched.
func (r *AssessmentRepository) Save(ctx context.Context, assessment *model.RiskAssessment) error {
	row, err := fromModel(assessment)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO risk_assessments (
			id, kind, patient, baseline_risk, expected_risk, risk_tier, action,
			risk_factors, model_version, version, created_at, updated_at, completed_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (id) DO UPDATE SET
			baseline_risk = EXCLUDED.baseline_risk,
			expected_risk = EXCLUDED.expected_risk,
			risk_tier = EXCLUDED.risk_tier,
			action = EXCLUDED.action,
			risk_factors = EXCLUDED.risk_factors,
			version = EXCLUDED.version,
			updated_at = EXCLUDED.updated_at,
			completed_at = EXCLUDED.completed_at
		WHERE risk_assessments.version <= EXCLUDED.version
	`

	return pgutil.WithTransaction(ctx, r.db, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, query,
			row.id, row.kind, row.patient, row.baselineRisk, row.expectedRisk, row.riskTier, row.action,
			row.riskFactors, row.modelVersion, row.version, row.createdAt, row.updatedAt, row.completedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to save assessment: %w", err)
		}
		return nil
	})
}

// FindByID retrieves an assessment by its unique identifier.
func (r *AssessmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.RiskAssessment, error) {
	row, err := scanRow(r.db.QueryRow(ctx, selectColumns+` WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, port.ErrAssessmentNotFound
		}
		return nil, fmt.Errorf("failed to scan assessment: %w", err)
	}
	return row.toModel()
}

// List returns assessments newest first together with the total count.
func (r *AssessmentRepository) List(ctx context.Context, limit, offset int) ([]*model.RiskAssessment, int, error) {
	var total int
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM risk_assessments`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count assessments: %w", err)
	}

	rows, err := r.db.Query(ctx, selectColumns+` ORDER BY created_at DESC, id LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query assessments: %w", err)
	}
	defer rows.Close()

	assessments := make([]*model.RiskAssessment, 0, limit)
	for rows.Next() {
		row, err := scanRow(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan assessment row: %w", err)
		}
		a, err := row.toModel()
		if err != nil {
			return nil, 0, err
		}
		assessments = append(assessments, a)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate assessments: %w", err)
	}

	return assessments, total, nil
}

// assessmentRow mirrors one risk_assessments row.
type assessmentRow struct {
	createdAt    time.Time
	updatedAt    time.Time
	completedAt  *time.Time
	action       *int32
	kind         string
	riskTier     string
	modelVersion string
	patient      []byte
	riskFactors  []byte
	baselineRisk decimal.Decimal
	expectedRisk decimal.Decimal
	version      int
	id           uuid.UUID
}

func scanRow(row pgx.Row) (assessmentRow, error) {
	var r assessmentRow
	err := row.Scan(
		&r.id, &r.kind, &r.patient, &r.baselineRisk, &r.expectedRisk, &r.riskTier, &r.action,
		&r.riskFactors, &r.modelVersion, &r.version, &r.createdAt, &r.updatedAt, &r.completedAt,
	)
	return r, err
}

func fromModel(a *model.RiskAssessment) (assessmentRow, error) {
	patient, err := json.Marshal(a.Patient())
	if err != nil {
		return assessmentRow{}, fmt.Errorf("failed to marshal patient: %w", err)
	}
	factors, err := json.Marshal(a.RiskFactors())
	if err != nil {
		return assessmentRow{}, fmt.Errorf("failed to marshal risk factors: %w", err)
	}

	row := assessmentRow{
		id:           a.ID(),
		kind:         a.Kind().String(),
		patient:      patient,
		baselineRisk: decimal.NewFromFloat(a.BaselineRisk()).Round(riskPlaces),
		expectedRisk: decimal.NewFromFloat(a.ExpectedRisk()).Round(riskPlaces),
		riskTier:     a.RiskTier().String(),
		riskFactors:  factors,
		modelVersion: a.ModelVersion(),
		version:      a.Version(),
		createdAt:    a.CreatedAt(),
		updatedAt:    a.UpdatedAt(),
	}
	if action := a.Action(); !action.IsZero() {
		id := int32(action.ID())
		row.action = &id
	}
	if a.IsCompleted() {
		completedAt := a.CompletedAt()
		row.completedAt = &completedAt
	}
	return row, nil
}

func (r assessmentRow) toModel() (*model.RiskAssessment, error) {
	kind, err := valueobject.AssessmentKindFromString(r.kind)
	if err != nil {
		return nil, fmt.Errorf("failed to parse kind: %w", err)
	}
	tier, err := valueobject.RiskTierFromString(r.riskTier)
	if err != nil {
		return nil, fmt.Errorf("failed to parse risk tier: %w", err)
	}

	var patient model.PatientProfile
	if err := json.Unmarshal(r.patient, &patient); err != nil {
		return nil, fmt.Errorf("failed to unmarshal patient: %w", err)
	}
	var factors valueobject.RiskFactors
	if len(r.riskFactors) > 0 {
		if err := json.Unmarshal(r.riskFactors, &factors); err != nil {
			return nil, fmt.Errorf("failed to unmarshal risk factors: %w", err)
		}
	}
	if factors.Details == nil {
		factors.Details = make([]string, 0)
	}

	outcome := model.AssessmentOutcome{
		Tier:         tier,
		RiskFactors:  factors,
		BaselineRisk: r.baselineRisk.InexactFloat64(),
		ExpectedRisk: r.expectedRisk.InexactFloat64(),
	}
	if r.action != nil {
		action, err := valueobject.InterventionFromID(int(*r.action))
		if err != nil {
			return nil, fmt.Errorf("failed to parse action: %w", err)
		}
		outcome.Action = action
	}

	var completedAt time.Time
	if r.completedAt != nil {
		completedAt = *r.completedAt
	}

	return model.Reconstruct(
		r.id, kind, patient, outcome, r.modelVersion, r.version,
		r.createdAt, r.updatedAt, completedAt,
	), nil
}
