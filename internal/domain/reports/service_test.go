package reports

import (
	"context"
	"math"
	"testing"

	"appraisal/internal/store"
	"appraisal/internal/store/memstore"
)

type world struct {
	store   *memstore.Memory
	service *Service

	engineering int64
	sales       int64
	period      int64
}

func newWorld(t *testing.T) *world {
	t.Helper()
	ctx := context.Background()
	m := memstore.New()
	w := &world{store: m, service: NewService(m)}

	var err error
	w.engineering, err = m.CreateDepartment(ctx, store.Department{Name: "Engineering", Code: "ENG"})
	if err != nil {
		t.Fatalf("create department: %v", err)
	}
	w.sales, err = m.CreateDepartment(ctx, store.Department{Name: "Sales", Code: "SAL"})
	if err != nil {
		t.Fatalf("create department: %v", err)
	}
	w.period, err = m.CreatePeriod(ctx, store.Period{Name: "2026", Year: 2026, IsActive: true})
	if err != nil {
		t.Fatalf("create period: %v", err)
	}
	return w
}

// addEvaluation inserts an employee into the department and an evaluation in
// the given status, with the total already aggregated.
func (w *world) addEvaluation(t *testing.T, departmentID int64, number string, status store.EvaluationStatus, total float64) int64 {
	t.Helper()
	ctx := context.Background()

	employeeID, err := w.store.CreateEmployee(ctx, store.Employee{
		EmployeeNumber: number, FullName: "Employee " + number, DepartmentID: departmentID, IsActive: true,
	})
	if err != nil {
		t.Fatalf("create employee: %v", err)
	}
	evaluation := store.Evaluation{
		EmployeeID: employeeID, EvaluatorID: employeeID, PeriodID: w.period, Status: status,
	}
	if total >= 0 {
		evaluation.TotalScore = &total
	}
	id, err := w.store.CreateEvaluation(ctx, evaluation)
	if err != nil {
		t.Fatalf("create evaluation: %v", err)
	}
	return id
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestSummaryCountsReportableOnly(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()

	w.addEvaluation(t, w.engineering, "E001", store.StatusDraft, -1)
	w.addEvaluation(t, w.engineering, "E002", store.StatusSubmitted, 6)
	w.addEvaluation(t, w.engineering, "E003", store.StatusInReview, 6)
	w.addEvaluation(t, w.sales, "E004", store.StatusCompleted, 8)
	w.addEvaluation(t, w.sales, "E005", store.StatusCompleted, 4)

	summary, err := w.service.Summary(ctx, Filter{})
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	// Draft and submitted evaluations are invisible to reports.
	if summary.TotalEvaluations != 3 {
		t.Fatalf("expected 3 reportable evaluations, got %d", summary.TotalEvaluations)
	}
	if summary.CompletedCount != 2 || summary.InReviewCount != 1 {
		t.Fatalf("unexpected status counts: %+v", summary)
	}
	if !almostEqual(summary.AverageScore, 6) {
		t.Fatalf("expected average 6, got %v", summary.AverageScore)
	}
	if !almostEqual(summary.CompletionRate, 2.0/3.0) {
		t.Fatalf("expected completion rate 2/3, got %v", summary.CompletionRate)
	}
}

func TestSummaryDepartmentFilter(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()

	w.addEvaluation(t, w.engineering, "E001", store.StatusCompleted, 9)
	w.addEvaluation(t, w.sales, "E002", store.StatusCompleted, 3)

	summary, err := w.service.Summary(ctx, Filter{DepartmentID: w.engineering})
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if summary.TotalEvaluations != 1 || !almostEqual(summary.AverageScore, 9) {
		t.Fatalf("expected only engineering counted: %+v", summary)
	}
}

func TestDepartmentAverages(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()

	w.addEvaluation(t, w.engineering, "E001", store.StatusCompleted, 8)
	w.addEvaluation(t, w.engineering, "E002", store.StatusCompleted, 6)
	w.addEvaluation(t, w.sales, "E003", store.StatusCompleted, 5)

	averages, err := w.service.DepartmentAverages(ctx, Filter{})
	if err != nil {
		t.Fatalf("department averages: %v", err)
	}
	if len(averages) != 2 {
		t.Fatalf("expected 2 departments, got %d", len(averages))
	}
	if averages[0].DepartmentID != w.engineering || !almostEqual(averages[0].AverageScore, 7) || averages[0].EvaluationCount != 2 {
		t.Fatalf("unexpected engineering average: %+v", averages[0])
	}
	if averages[1].DepartmentID != w.sales || !almostEqual(averages[1].AverageScore, 5) {
		t.Fatalf("unexpected sales average: %+v", averages[1])
	}
}

func TestScoreDistributionBuckets(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()

	scores := []float64{1.5, 2, 3.9, 6, 7.99, 8, 10}
	for i, score := range scores {
		w.addEvaluation(t, w.engineering, "E00"+string(rune('1'+i)), store.StatusCompleted, score)
	}

	buckets, err := w.service.ScoreDistribution(ctx, Filter{})
	if err != nil {
		t.Fatalf("distribution: %v", err)
	}
	want := []int{1, 2, 0, 2, 2}
	for i, bucket := range buckets {
		if bucket.Count != want[i] {
			t.Fatalf("bucket %s: expected %d, got %d", bucket.Range, want[i], bucket.Count)
		}
	}
}

func TestCriteriaBreakdown(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()

	quality, err := w.store.CreateCriterion(ctx, store.Criterion{Name: "Quality", Weight: 2, MaxScore: 10, IsActive: true})
	if err != nil {
		t.Fatalf("create criterion: %v", err)
	}
	unused, err := w.store.CreateCriterion(ctx, store.Criterion{Name: "Unused", Weight: 1, MaxScore: 10, IsActive: true})
	if err != nil {
		t.Fatalf("create criterion: %v", err)
	}

	completed := w.addEvaluation(t, w.engineering, "E001", store.StatusCompleted, 8)
	draft := w.addEvaluation(t, w.engineering, "E002", store.StatusDraft, -1)
	for evaluationID, score := range map[int64]float64{completed: 8, draft: 2} {
		if _, err := w.store.CreateDetail(ctx, store.EvaluationDetail{
			EvaluationID: evaluationID, CriterionID: quality, Score: score,
		}); err != nil {
			t.Fatalf("create detail: %v", err)
		}
	}

	breakdown, err := w.service.CriteriaBreakdown(ctx, w.engineering, 0)
	if err != nil {
		t.Fatalf("breakdown: %v", err)
	}
	// Only the completed evaluation's detail counts; the unused criterion is
	// omitted entirely.
	if len(breakdown) != 1 {
		t.Fatalf("expected 1 criterion, got %d", len(breakdown))
	}
	if breakdown[0].CriterionID != quality || !almostEqual(breakdown[0].AverageScore, 8) || breakdown[0].EvaluationCount != 1 {
		t.Fatalf("unexpected breakdown: %+v", breakdown[0])
	}
	_ = unused
}

func TestDashboard(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		status := store.StatusDraft
		if i%2 == 0 {
			status = store.StatusCompleted
		}
		w.addEvaluation(t, w.engineering, "E00"+string(rune('1'+i)), status, -1)
	}

	stats, err := w.service.Dashboard(ctx, 3)
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	if stats.Departments != 2 || stats.Employees != 4 || stats.Evaluations != 4 {
		t.Fatalf("unexpected counters: %+v", stats)
	}
	if stats.CompletedEvaluations != 2 {
		t.Fatalf("expected 2 completed, got %d", stats.CompletedEvaluations)
	}
	if len(stats.Recent) != 3 {
		t.Fatalf("expected 3 recent evaluations, got %d", len(stats.Recent))
	}
	for i := 1; i < len(stats.Recent); i++ {
		if stats.Recent[i].UpdatedAt.After(stats.Recent[i-1].UpdatedAt) {
			t.Fatalf("recent evaluations not newest first")
		}
	}
}
