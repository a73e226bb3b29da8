package appraisal

import (
	"context"
	"errors"
	"testing"
	"time"

	"appraisal/internal/store"
)

func periodInput(name string, year int, active bool) PeriodInput {
	return PeriodInput{
		Name:      name,
		StartDate: time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(year, 12, 31, 0, 0, 0, 0, time.UTC),
		Year:      year,
		IsActive:  active,
	}
}

func TestCreatePeriodValidatesDateRange(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	input := periodInput("Backwards", 2027, false)
	input.EndDate = input.StartDate.AddDate(0, -1, 0)
	if _, err := f.service.CreatePeriod(ctx, input); !errors.Is(err, ErrInvalidDateRange) {
		t.Fatalf("expected ErrInvalidDateRange, got %v", err)
	}

	input.EndDate = input.StartDate
	if _, err := f.service.CreatePeriod(ctx, input); !errors.Is(err, ErrInvalidDateRange) {
		t.Fatalf("expected ErrInvalidDateRange for equal dates, got %v", err)
	}
}

func TestSingleActivePeriodInvariant(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	second, err := f.service.CreatePeriod(ctx, periodInput("2027 Annual", 2027, true))
	if err != nil {
		t.Fatalf("create period: %v", err)
	}

	active, err := f.store.ActivePeriod(ctx)
	if err != nil {
		t.Fatalf("active period: %v", err)
	}
	if active.ID != second.ID {
		t.Fatalf("expected new period %d active, got %d", second.ID, active.ID)
	}

	first, err := f.store.GetPeriod(ctx, f.period)
	if err != nil {
		t.Fatalf("get period: %v", err)
	}
	if first.IsActive {
		t.Fatal("expected the previous period to be deactivated")
	}

	// Swap back through ActivatePeriod.
	if err := f.service.ActivatePeriod(ctx, f.period); err != nil {
		t.Fatalf("activate period: %v", err)
	}
	periods, err := f.store.ListPeriods(ctx)
	if err != nil {
		t.Fatalf("list periods: %v", err)
	}
	activeCount := 0
	for _, period := range periods {
		if period.IsActive {
			activeCount++
		}
	}
	if activeCount != 1 {
		t.Fatalf("expected exactly one active period, got %d", activeCount)
	}
}

func TestDeletePeriodGuards(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if err := f.service.DeletePeriod(ctx, f.period); !errors.Is(err, ErrCannotDeleteActivePeriod) {
		t.Fatalf("expected ErrCannotDeleteActivePeriod, got %v", err)
	}

	if _, err := f.service.Create(ctx, f.manager, f.devEmp, 0); err != nil {
		t.Fatalf("create evaluation: %v", err)
	}
	idle, err := f.service.CreatePeriod(ctx, periodInput("2027 Annual", 2027, true))
	if err != nil {
		t.Fatalf("create period: %v", err)
	}

	// The old period now has an evaluation attached.
	if err := f.service.DeletePeriod(ctx, f.period); !errors.Is(err, ErrPeriodInUse) {
		t.Fatalf("expected ErrPeriodInUse, got %v", err)
	}

	// An inactive, unused period deletes cleanly.
	if err := f.service.ActivatePeriod(ctx, f.period); err != nil {
		t.Fatalf("activate: %v", err)
	}
	if err := f.service.DeletePeriod(ctx, idle.ID); err != nil {
		t.Fatalf("delete idle period: %v", err)
	}
	if _, err := f.store.GetPeriod(ctx, idle.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected period gone, got %v", err)
	}
}
