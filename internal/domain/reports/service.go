// Package reports aggregates evaluation results: summary figures, department
// averages, score distribution, and per-criterion breakdowns. Reports only
// consider evaluations that reached review or completion.
package reports

import (
	"context"
	"sort"

	"appraisal/internal/store"
)

type Service struct {
	Store store.Store
}

func NewService(s store.Store) *Service {
	return &Service{Store: s}
}

// Filter narrows report data; zero values mean "no filter".
type Filter struct {
	PeriodID     int64
	DepartmentID int64
}

type Summary struct {
	TotalEvaluations int     `json:"totalEvaluations"`
	CompletedCount   int     `json:"completedCount"`
	InReviewCount    int     `json:"inReviewCount"`
	AverageScore     float64 `json:"averageScore"`
	CompletionRate   float64 `json:"completionRate"`
}

type DepartmentAverage struct {
	DepartmentID    int64   `json:"departmentId"`
	DepartmentName  string  `json:"departmentName"`
	EvaluationCount int     `json:"evaluationCount"`
	AverageScore    float64 `json:"averageScore"`
}

type ScoreBucket struct {
	Range string `json:"range"`
	Count int    `json:"count"`
}

type CriterionAverage struct {
	CriterionID     int64   `json:"criterionId"`
	CriterionName   string  `json:"criterionName"`
	AverageScore    float64 `json:"averageScore"`
	EvaluationCount int     `json:"evaluationCount"`
}

type DashboardStats struct {
	Departments          int                `json:"departments"`
	Employees            int                `json:"employees"`
	Evaluations          int                `json:"evaluations"`
	CompletedEvaluations int                `json:"completedEvaluations"`
	Recent               []store.Evaluation `json:"recent"`
}

// reportable returns the filtered evaluations that are in review or completed.
func (s *Service) reportable(ctx context.Context, filter Filter) ([]store.Evaluation, error) {
	evaluations, err := s.Store.ListEvaluations(ctx)
	if err != nil {
		return nil, err
	}

	var inDepartment map[int64]bool
	if filter.DepartmentID != 0 {
		employees, err := s.Store.ListEmployeesByDepartment(ctx, filter.DepartmentID)
		if err != nil {
			return nil, err
		}
		inDepartment = map[int64]bool{}
		for _, e := range employees {
			inDepartment[e.ID] = true
		}
	}

	var filtered []store.Evaluation
	for _, evaluation := range evaluations {
		if filter.PeriodID != 0 && evaluation.PeriodID != filter.PeriodID {
			continue
		}
		if inDepartment != nil && !inDepartment[evaluation.EmployeeID] {
			continue
		}
		if evaluation.Status != store.StatusInReview && evaluation.Status != store.StatusCompleted {
			continue
		}
		filtered = append(filtered, evaluation)
	}
	return filtered, nil
}

func (s *Service) Summary(ctx context.Context, filter Filter) (Summary, error) {
	evaluations, err := s.reportable(ctx, filter)
	if err != nil {
		return Summary{}, err
	}

	summary := Summary{TotalEvaluations: len(evaluations)}
	var totalScore float64
	scored := 0
	for _, evaluation := range evaluations {
		if evaluation.TotalScore != nil {
			totalScore += *evaluation.TotalScore
			scored++
		}
		switch evaluation.Status {
		case store.StatusCompleted:
			summary.CompletedCount++
		case store.StatusInReview:
			summary.InReviewCount++
		}
	}
	if scored > 0 {
		summary.AverageScore = totalScore / float64(scored)
	}
	if summary.TotalEvaluations > 0 {
		summary.CompletionRate = float64(summary.CompletedCount) / float64(summary.TotalEvaluations)
	}
	return summary, nil
}

func (s *Service) DepartmentAverages(ctx context.Context, filter Filter) ([]DepartmentAverage, error) {
	evaluations, err := s.reportable(ctx, filter)
	if err != nil {
		return nil, err
	}
	departments, err := s.Store.ListDepartments(ctx)
	if err != nil {
		return nil, err
	}
	employees, err := s.Store.ListEmployees(ctx)
	if err != nil {
		return nil, err
	}
	departmentOf := map[int64]int64{}
	for _, e := range employees {
		departmentOf[e.ID] = e.DepartmentID
	}

	sums := map[int64]float64{}
	counts := map[int64]int{}
	for _, evaluation := range evaluations {
		if evaluation.TotalScore == nil {
			continue
		}
		departmentID := departmentOf[evaluation.EmployeeID]
		sums[departmentID] += *evaluation.TotalScore
		counts[departmentID]++
	}

	var averages []DepartmentAverage
	for _, department := range departments {
		count := counts[department.ID]
		if count == 0 {
			continue
		}
		averages = append(averages, DepartmentAverage{
			DepartmentID:    department.ID,
			DepartmentName:  department.Name,
			EvaluationCount: count,
			AverageScore:    sums[department.ID] / float64(count),
		})
	}
	return averages, nil
}

// ScoreDistribution buckets total scores into fixed ranges.
func (s *Service) ScoreDistribution(ctx context.Context, filter Filter) ([]ScoreBucket, error) {
	evaluations, err := s.reportable(ctx, filter)
	if err != nil {
		return nil, err
	}

	buckets := []ScoreBucket{
		{Range: "0-2"}, {Range: "2-4"}, {Range: "4-6"}, {Range: "6-8"}, {Range: "8-10"},
	}
	for _, evaluation := range evaluations {
		if evaluation.TotalScore == nil {
			continue
		}
		score := *evaluation.TotalScore
		switch {
		case score < 2:
			buckets[0].Count++
		case score < 4:
			buckets[1].Count++
		case score < 6:
			buckets[2].Count++
		case score < 8:
			buckets[3].Count++
		default:
			buckets[4].Count++
		}
	}
	return buckets, nil
}

// CriteriaBreakdown averages detail scores per criterion over completed
// evaluations of one department. Criteria without any scored detail are
// omitted.
func (s *Service) CriteriaBreakdown(ctx context.Context, departmentID, periodID int64) ([]CriterionAverage, error) {
	employees, err := s.Store.ListEmployeesByDepartment(ctx, departmentID)
	if err != nil {
		return nil, err
	}
	inDepartment := map[int64]bool{}
	for _, e := range employees {
		inDepartment[e.ID] = true
	}

	evaluations, err := s.Store.ListEvaluations(ctx)
	if err != nil {
		return nil, err
	}

	sums := map[int64]float64{}
	counts := map[int64]int{}
	for _, evaluation := range evaluations {
		if !inDepartment[evaluation.EmployeeID] || evaluation.Status != store.StatusCompleted {
			continue
		}
		if periodID != 0 && evaluation.PeriodID != periodID {
			continue
		}
		details, err := s.Store.ListDetailsByEvaluation(ctx, evaluation.ID)
		if err != nil {
			return nil, err
		}
		for _, detail := range details {
			sums[detail.CriterionID] += detail.Score
			counts[detail.CriterionID]++
		}
	}

	criteria, err := s.Store.ListCriteria(ctx)
	if err != nil {
		return nil, err
	}
	var breakdown []CriterionAverage
	for _, criterion := range criteria {
		count := counts[criterion.ID]
		if count == 0 {
			continue
		}
		breakdown = append(breakdown, CriterionAverage{
			CriterionID:     criterion.ID,
			CriterionName:   criterion.Name,
			AverageScore:    sums[criterion.ID] / float64(count),
			EvaluationCount: count,
		})
	}
	return breakdown, nil
}

// Dashboard returns the landing-page counters and the most recent
// evaluations, newest first.
func (s *Service) Dashboard(ctx context.Context, limit int) (DashboardStats, error) {
	departments, err := s.Store.ListDepartments(ctx)
	if err != nil {
		return DashboardStats{}, err
	}
	employees, err := s.Store.ListEmployees(ctx)
	if err != nil {
		return DashboardStats{}, err
	}
	evaluations, err := s.Store.ListEvaluations(ctx)
	if err != nil {
		return DashboardStats{}, err
	}

	stats := DashboardStats{
		Departments: len(departments),
		Employees:   len(employees),
		Evaluations: len(evaluations),
	}
	for _, evaluation := range evaluations {
		if evaluation.Status == store.StatusCompleted {
			stats.CompletedEvaluations++
		}
	}

	sort.Slice(evaluations, func(i, j int) bool {
		return evaluations[i].UpdatedAt.After(evaluations[j].UpdatedAt)
	})
	if limit > 0 && len(evaluations) > limit {
		evaluations = evaluations[:limit]
	}
	stats.Recent = evaluations
	return stats, nil
}
