package usecase

import (
	"context"
	"fmt"

	"github.com/healthguard/healthguard/internal/application/dto"
	"github.com/healthguard/healthguard/internal/domain/port"
)

// GetAssessment is the use case for retrieving an existing assessment.
type GetAssessment struct {
	repo port.AssessmentRepository
}

// NewGetAssessment creates a new GetAssessment use case.
func NewGetAssessment(repo port.AssessmentRepository) *GetAssessment {
	return &GetAssessment{repo: repo}
}

// Execute retrieves a risk assessment by ID.
func (uc *GetAssessment) Execute(ctx context.Context, req dto.GetAssessmentRequest) (dto.AssessmentResponse, error) {
	ctx, span := tracer.Start(ctx, "GetAssessment")
	defer span.End()

	assessment, err := uc.repo.FindByID(ctx, req.AssessmentID)
	if err != nil {
		return dto.AssessmentResponse{}, fmt.Errorf("failed to find assessment: %w", err)
	}
	if assessment == nil {
		return dto.AssessmentResponse{}, fmt.Errorf("%w: %s", port.ErrAssessmentNotFound, req.AssessmentID)
	}

	return dto.FromModel(assessment), nil
}

// ListAssessments is the use case for paging through stored assessments.
type ListAssessments struct {
	repo port.AssessmentRepository
}

// NewListAssessments creates a new ListAssessments use case.
func NewListAssessments(repo port.AssessmentRepository) *ListAssessments {
	return &ListAssessments{repo: repo}
}

// Execute returns one page of assessments, newest first.
func (uc *ListAssessments) Execute(ctx context.Context, req dto.ListAssessmentsRequest) (dto.ListAssessmentsResponse, error) {
	ctx, span := tracer.Start(ctx, "ListAssessments")
	defer span.End()

	req = req.Normalize()
	assessments, total, err := uc.repo.List(ctx, req.Limit, req.Offset)
	if err != nil {
		return dto.ListAssessmentsResponse{}, fmt.Errorf("failed to list assessments: %w", err)
	}

	out := make([]dto.AssessmentResponse, 0, len(assessments))
	for _, a := range assessments {
		out = append(out, dto.FromModel(a))
	}

	return dto.ListAssessmentsResponse{
		Assessments: out,
		Total:       total,
		Limit:       req.Limit,
		Offset:      req.Offset,
	}, nil
}
