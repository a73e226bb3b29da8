package appraisal

import (
	"context"
	"testing"
)

func TestWeightedMean(t *testing.T) {
	cases := []struct {
		name    string
		scores  []float64
		weights []float64
		want    float64
	}{
		{"two criteria", []float64{8, 5}, []float64{2, 1}, 7},
		{"equal weights", []float64{4, 6}, []float64{1, 1}, 5},
		{"single", []float64{9}, []float64{3}, 9},
		{"empty", nil, nil, 0},
		{"zero weight", []float64{5}, []float64{0}, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := WeightedMean(tc.scores, tc.weights)
			if got != tc.want {
				t.Fatalf("WeightedMean(%v, %v) = %v, want %v", tc.scores, tc.weights, got, tc.want)
			}
		})
	}
}

func TestComputeTotalScoreSkipsDeletedCriteria(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	evaluation, err := f.service.Create(ctx, f.manager, f.devEmp, 0)
	if err != nil {
		t.Fatalf("create evaluation: %v", err)
	}
	details, err := f.store.ListDetailsByEvaluation(ctx, evaluation.ID)
	if err != nil {
		t.Fatalf("list details: %v", err)
	}
	scores := []DetailScore{
		{DetailID: details[0].ID, Score: 8},
		{DetailID: details[1].ID, Score: 2},
	}
	if err := f.service.SaveDraft(ctx, f.manager, evaluation.ID, "", scores); err != nil {
		t.Fatalf("save draft: %v", err)
	}

	// Remove the second criterion directly; its detail row stays behind.
	if err := f.store.DeleteCriterion(ctx, f.criteria[1]); err != nil {
		t.Fatalf("delete criterion: %v", err)
	}

	total, err := f.service.ComputeTotalScore(ctx, evaluation.ID)
	if err != nil {
		t.Fatalf("compute total: %v", err)
	}
	if total != 8 {
		t.Fatalf("expected total 8 with orphaned detail excluded, got %v", total)
	}
}
