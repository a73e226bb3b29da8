package appraisal

import (
	"context"

	"appraisal/internal/store"
)

// CriterionInput carries the caller-editable criterion fields.
type CriterionInput struct {
	Name        string
	Description string
	Weight      float64
	MaxScore    float64
	IsActive    bool
}

func validateCriterion(input CriterionInput) error {
	if input.Weight <= 0 {
		return ErrInvalidWeight
	}
	if input.MaxScore <= 0 {
		return ErrInvalidMaxScore
	}
	return nil
}

func (s *Service) CreateCriterion(ctx context.Context, input CriterionInput) (store.Criterion, error) {
	if err := validateCriterion(input); err != nil {
		return store.Criterion{}, err
	}

	id, err := s.Store.CreateCriterion(ctx, store.Criterion{
		Name:        input.Name,
		Description: input.Description,
		Weight:      input.Weight,
		MaxScore:    input.MaxScore,
		IsActive:    input.IsActive,
	})
	if err != nil {
		return store.Criterion{}, err
	}
	return s.Store.GetCriterion(ctx, id)
}

func (s *Service) UpdateCriterion(ctx context.Context, criterionID int64, input CriterionInput) error {
	if err := validateCriterion(input); err != nil {
		return err
	}
	if _, err := s.Store.GetCriterion(ctx, criterionID); err != nil {
		return err
	}

	active := input.IsActive
	return s.Store.UpdateCriterion(ctx, criterionID, store.CriterionPatch{
		Name:        &input.Name,
		Description: &input.Description,
		Weight:      &input.Weight,
		MaxScore:    &input.MaxScore,
		IsActive:    &active,
	})
}

// DeleteCriterion refuses to delete a criterion that any evaluation detail
// still references. Existing evaluations keep their historical detail rows.
func (s *Service) DeleteCriterion(ctx context.Context, criterionID int64) error {
	if _, err := s.Store.GetCriterion(ctx, criterionID); err != nil {
		return err
	}

	count, err := s.Store.CountDetailsByCriterion(ctx, criterionID)
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrCriterionInUse
	}

	return s.Store.DeleteCriterion(ctx, criterionID)
}
