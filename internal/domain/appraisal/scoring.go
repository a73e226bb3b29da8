package appraisal

import (
	"context"
	"errors"

	"appraisal/internal/store"
)

// WeightedMean computes sum(score*weight)/sum(weight). A zero total weight
// yields 0.
func WeightedMean(scores, weights []float64) float64 {
	var weightedSum, totalWeight float64
	for i := range scores {
		weightedSum += scores[i] * weights[i]
		totalWeight += weights[i]
	}
	if totalWeight == 0 {
		return 0
	}
	return weightedSum / totalWeight
}

// ComputeTotalScore recomputes the evaluation's weighted mean from scratch.
// Details whose criterion no longer resolves are excluded from both sums, so
// historical evaluations stay consistent as the criteria set changes.
func (s *Service) ComputeTotalScore(ctx context.Context, evaluationID int64) (float64, error) {
	details, err := s.Store.ListDetailsByEvaluation(ctx, evaluationID)
	if err != nil {
		return 0, err
	}

	var scores, weights []float64
	for _, detail := range details {
		criterion, err := s.Store.GetCriterion(ctx, detail.CriterionID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				continue
			}
			return 0, err
		}
		scores = append(scores, detail.Score)
		weights = append(weights, criterion.Weight)
	}
	return WeightedMean(scores, weights), nil
}

// ApplyTotalScore persists the recomputed total onto the evaluation record.
func (s *Service) ApplyTotalScore(ctx context.Context, evaluationID int64) error {
	total, err := s.ComputeTotalScore(ctx, evaluationID)
	if err != nil {
		return err
	}
	value := &total
	return s.Store.UpdateEvaluation(ctx, evaluationID, store.EvaluationPatch{TotalScore: &value})
}
