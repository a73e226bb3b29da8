package appraisal

import (
	"context"
	"errors"
	"time"

	"appraisal/internal/store"
)

// PeriodInput carries the caller-editable period fields.
type PeriodInput struct {
	Name      string
	StartDate time.Time
	EndDate   time.Time
	Year      int
	IsActive  bool
}

// CreatePeriod validates the date range and inserts the period. Creating an
// active period deactivates whichever period was active before.
func (s *Service) CreatePeriod(ctx context.Context, input PeriodInput) (store.Period, error) {
	if !input.EndDate.After(input.StartDate) {
		return store.Period{}, ErrInvalidDateRange
	}

	s.periodMu.Lock()
	defer s.periodMu.Unlock()

	if input.IsActive {
		if err := s.deactivateCurrentLocked(ctx, 0); err != nil {
			return store.Period{}, err
		}
	}

	id, err := s.Store.CreatePeriod(ctx, store.Period{
		Name:      input.Name,
		StartDate: input.StartDate,
		EndDate:   input.EndDate,
		Year:      input.Year,
		IsActive:  input.IsActive,
	})
	if err != nil {
		return store.Period{}, err
	}
	return s.Store.GetPeriod(ctx, id)
}

// UpdatePeriod re-validates the resulting date range against the stored row.
func (s *Service) UpdatePeriod(ctx context.Context, periodID int64, input PeriodInput) error {
	if !input.EndDate.After(input.StartDate) {
		return ErrInvalidDateRange
	}

	s.periodMu.Lock()
	defer s.periodMu.Unlock()

	if _, err := s.Store.GetPeriod(ctx, periodID); err != nil {
		return err
	}
	if input.IsActive {
		if err := s.deactivateCurrentLocked(ctx, periodID); err != nil {
			return err
		}
	}

	active := input.IsActive
	return s.Store.UpdatePeriod(ctx, periodID, store.PeriodPatch{
		Name:      &input.Name,
		StartDate: &input.StartDate,
		EndDate:   &input.EndDate,
		Year:      &input.Year,
		IsActive:  &active,
	})
}

// ActivatePeriod swaps the single active period to the target. The swap is
// unconditional once called; warning the operator about the previously active
// period is the caller's concern.
func (s *Service) ActivatePeriod(ctx context.Context, periodID int64) error {
	s.periodMu.Lock()
	defer s.periodMu.Unlock()

	if _, err := s.Store.GetPeriod(ctx, periodID); err != nil {
		return err
	}
	if err := s.deactivateCurrentLocked(ctx, periodID); err != nil {
		return err
	}

	active := true
	return s.Store.UpdatePeriod(ctx, periodID, store.PeriodPatch{IsActive: &active})
}

func (s *Service) deactivateCurrentLocked(ctx context.Context, exceptID int64) error {
	current, err := s.Store.ActivePeriod(ctx)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		return err
	}
	if current.ID == exceptID {
		return nil
	}
	inactive := false
	return s.Store.UpdatePeriod(ctx, current.ID, store.PeriodPatch{IsActive: &inactive})
}

// DeletePeriod refuses to delete a period that is referenced by evaluations
// or currently active.
func (s *Service) DeletePeriod(ctx context.Context, periodID int64) error {
	s.periodMu.Lock()
	defer s.periodMu.Unlock()

	period, err := s.Store.GetPeriod(ctx, periodID)
	if err != nil {
		return err
	}

	count, err := s.Store.CountEvaluationsByPeriod(ctx, periodID)
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrPeriodInUse
	}
	if period.IsActive {
		return ErrCannotDeleteActivePeriod
	}

	return s.Store.DeletePeriod(ctx, periodID)
}
