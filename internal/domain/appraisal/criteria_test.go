package appraisal

import (
	"context"
	"errors"
	"testing"

	"appraisal/internal/store"
)

func TestCriterionValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.service.CreateCriterion(ctx, CriterionInput{Name: "Bad", Weight: 0, MaxScore: 10}); !errors.Is(err, ErrInvalidWeight) {
		t.Fatalf("expected ErrInvalidWeight, got %v", err)
	}
	if _, err := f.service.CreateCriterion(ctx, CriterionInput{Name: "Bad", Weight: -1, MaxScore: 10}); !errors.Is(err, ErrInvalidWeight) {
		t.Fatalf("expected ErrInvalidWeight for negative, got %v", err)
	}
	if _, err := f.service.CreateCriterion(ctx, CriterionInput{Name: "Bad", Weight: 1, MaxScore: 0}); !errors.Is(err, ErrInvalidMaxScore) {
		t.Fatalf("expected ErrInvalidMaxScore, got %v", err)
	}

	criterion, err := f.service.CreateCriterion(ctx, CriterionInput{Name: "Initiative", Weight: 1.5, MaxScore: 10, IsActive: true})
	if err != nil {
		t.Fatalf("create criterion: %v", err)
	}
	if criterion.Weight != 1.5 {
		t.Fatalf("expected weight 1.5, got %v", criterion.Weight)
	}
}

func TestDeleteCriterionGuard(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// Creating an evaluation seeds detail rows against every active criterion.
	if _, err := f.service.Create(ctx, f.manager, f.devEmp, 0); err != nil {
		t.Fatalf("create evaluation: %v", err)
	}
	if err := f.service.DeleteCriterion(ctx, f.criteria[0]); !errors.Is(err, ErrCriterionInUse) {
		t.Fatalf("expected ErrCriterionInUse, got %v", err)
	}

	// A criterion no evaluation references deletes cleanly.
	unused, err := f.service.CreateCriterion(ctx, CriterionInput{Name: "Unused", Weight: 1, MaxScore: 10, IsActive: true})
	if err != nil {
		t.Fatalf("create criterion: %v", err)
	}
	if err := f.service.DeleteCriterion(ctx, unused.ID); err != nil {
		t.Fatalf("delete unused criterion: %v", err)
	}
	if _, err := f.store.GetCriterion(ctx, unused.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected criterion gone, got %v", err)
	}
}

func TestInactiveCriteriaNotSeeded(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.service.CreateCriterion(ctx, CriterionInput{Name: "Dormant", Weight: 1, MaxScore: 10, IsActive: false}); err != nil {
		t.Fatalf("create criterion: %v", err)
	}

	evaluation, err := f.service.Create(ctx, f.manager, f.devEmp, 0)
	if err != nil {
		t.Fatalf("create evaluation: %v", err)
	}
	details, err := f.store.ListDetailsByEvaluation(ctx, evaluation.ID)
	if err != nil {
		t.Fatalf("list details: %v", err)
	}
	if len(details) != 2 {
		t.Fatalf("expected only the active criteria seeded, got %d details", len(details))
	}
}
