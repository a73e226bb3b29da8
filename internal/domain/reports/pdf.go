package reports

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/jung-kurt/gofpdf"

	"appraisal/internal/store"
)

// EvaluationSheet renders a printable PDF of one evaluation with its
// per-criterion scores and the weighted total.
func (s *Service) EvaluationSheet(ctx context.Context, evaluationID int64) ([]byte, error) {
	evaluation, err := s.Store.GetEvaluation(ctx, evaluationID)
	if err != nil {
		return nil, err
	}
	employee, err := s.Store.GetEmployee(ctx, evaluation.EmployeeID)
	if err != nil {
		return nil, err
	}
	// Evaluations created by admin or HR accounts without a linked employee
	// record carry evaluator id 0.
	evaluatorName := "HR / Administration"
	if evaluation.EvaluatorID != 0 {
		evaluator, err := s.Store.GetEmployee(ctx, evaluation.EvaluatorID)
		if err == nil {
			evaluatorName = evaluator.FullName
		} else if !errors.Is(err, store.ErrNotFound) {
			return nil, err
		}
	}
	period, err := s.Store.GetPeriod(ctx, evaluation.PeriodID)
	if err != nil {
		return nil, err
	}
	details, err := s.Store.ListDetailsByEvaluation(ctx, evaluationID)
	if err != nil {
		return nil, err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "Performance Evaluation")
	pdf.Ln(12)
	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Employee: %s (%s)", employee.FullName, employee.EmployeeNumber))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Evaluator: %s", evaluatorName))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Period: %s (%s to %s)", period.Name,
		period.StartDate.Format("2006-01-02"), period.EndDate.Format("2006-01-02")))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Status: %s", evaluation.Status))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(90, 8, "Criterion")
	pdf.Cell(30, 8, "Weight")
	pdf.Cell(30, 8, "Score")
	pdf.Cell(30, 8, "Max")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 12)
	for _, detail := range details {
		criterion, err := s.Store.GetCriterion(ctx, detail.CriterionID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				continue
			}
			return nil, err
		}
		pdf.Cell(90, 8, criterion.Name)
		pdf.Cell(30, 8, fmt.Sprintf("%.1f", criterion.Weight))
		pdf.Cell(30, 8, fmt.Sprintf("%.1f", detail.Score))
		pdf.Cell(30, 8, fmt.Sprintf("%.0f", criterion.MaxScore))
		pdf.Ln(8)
	}

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", 12)
	if evaluation.TotalScore != nil {
		pdf.Cell(0, 8, fmt.Sprintf("Total score: %.2f", *evaluation.TotalScore))
	} else {
		pdf.Cell(0, 8, "Total score: not yet computed")
	}
	if evaluation.Comments != "" {
		pdf.Ln(10)
		pdf.SetFont("Helvetica", "", 12)
		pdf.MultiCell(0, 6, "Comments: "+evaluation.Comments, "", "L", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
