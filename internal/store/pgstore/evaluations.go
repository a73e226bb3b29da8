package pgstore

import (
	"context"

	"appraisal/internal/store"
)

const evaluationColumns = "id, employee_id, evaluator_id, period_id, status, total_score, comments, submission_date, completion_date, created_at, updated_at"

func scanEvaluation(row interface{ Scan(...any) error }) (store.Evaluation, error) {
	var e store.Evaluation
	err := row.Scan(&e.ID, &e.EmployeeID, &e.EvaluatorID, &e.PeriodID, &e.Status, &e.TotalScore,
		&e.Comments, &e.SubmissionDate, &e.CompletionDate, &e.CreatedAt, &e.UpdatedAt)
	return e, translate(err)
}

func (p *PG) listEvaluations(ctx context.Context, query string, args ...any) ([]store.Evaluation, error) {
	rows, err := p.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var evaluations []store.Evaluation
	for rows.Next() {
		evaluation, err := scanEvaluation(rows)
		if err != nil {
			return nil, err
		}
		evaluations = append(evaluations, evaluation)
	}
	return evaluations, rows.Err()
}

func (p *PG) ListEvaluations(ctx context.Context) ([]store.Evaluation, error) {
	return p.listEvaluations(ctx, `
    SELECT `+evaluationColumns+`
    FROM evaluations
    ORDER BY id
  `)
}

func (p *PG) ListEvaluationsByEvaluator(ctx context.Context, evaluatorID int64) ([]store.Evaluation, error) {
	return p.listEvaluations(ctx, `
    SELECT `+evaluationColumns+`
    FROM evaluations
    WHERE evaluator_id = $1
    ORDER BY id
  `, evaluatorID)
}

func (p *PG) ListEvaluationsByPeriod(ctx context.Context, periodID int64) ([]store.Evaluation, error) {
	return p.listEvaluations(ctx, `
    SELECT `+evaluationColumns+`
    FROM evaluations
    WHERE period_id = $1
    ORDER BY id
  `, periodID)
}

func (p *PG) GetEvaluation(ctx context.Context, id int64) (store.Evaluation, error) {
	return scanEvaluation(p.DB.QueryRow(ctx, `
    SELECT `+evaluationColumns+`
    FROM evaluations
    WHERE id = $1
  `, id))
}

func (p *PG) EvaluationByEmployeeAndPeriod(ctx context.Context, employeeID, periodID int64) (store.Evaluation, error) {
	return scanEvaluation(p.DB.QueryRow(ctx, `
    SELECT `+evaluationColumns+`
    FROM evaluations
    WHERE employee_id = $1 AND period_id = $2
    LIMIT 1
  `, employeeID, periodID))
}

func (p *PG) CreateEvaluation(ctx context.Context, evaluation store.Evaluation) (int64, error) {
	var id int64
	err := p.DB.QueryRow(ctx, `
    INSERT INTO evaluations (employee_id, evaluator_id, period_id, status, total_score, comments, submission_date, completion_date)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
    RETURNING id
  `, evaluation.EmployeeID, evaluation.EvaluatorID, evaluation.PeriodID, evaluation.Status,
		evaluation.TotalScore, evaluation.Comments, evaluation.SubmissionDate, evaluation.CompletionDate).Scan(&id)
	return id, err
}

func (p *PG) UpdateEvaluation(ctx context.Context, id int64, patch store.EvaluationPatch) error {
	evaluation, err := p.GetEvaluation(ctx, id)
	if err != nil {
		return err
	}
	if patch.Status != nil {
		evaluation.Status = *patch.Status
	}
	if patch.Comments != nil {
		evaluation.Comments = *patch.Comments
	}
	if patch.TotalScore != nil {
		evaluation.TotalScore = *patch.TotalScore
	}
	if patch.SubmissionDate != nil {
		evaluation.SubmissionDate = *patch.SubmissionDate
	}
	if patch.CompletionDate != nil {
		evaluation.CompletionDate = *patch.CompletionDate
	}

	tag, err := p.DB.Exec(ctx, `
    UPDATE evaluations
    SET status          = $2,
        total_score     = $3,
        comments        = $4,
        submission_date = $5,
        completion_date = $6,
        updated_at      = now()
    WHERE id = $1
  `, id, evaluation.Status, evaluation.TotalScore, evaluation.Comments,
		evaluation.SubmissionDate, evaluation.CompletionDate)
	if err != nil {
		return err
	}
	return rowsAffected(tag)
}

func (p *PG) DeleteEvaluation(ctx context.Context, id int64) error {
	tag, err := p.DB.Exec(ctx, `DELETE FROM evaluations WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return rowsAffected(tag)
}

func (p *PG) CountEvaluationsInvolving(ctx context.Context, employeeID int64) (int, error) {
	return p.count(ctx, `
    SELECT COUNT(1)
    FROM evaluations
    WHERE employee_id = $1 OR evaluator_id = $1
  `, employeeID)
}

const detailColumns = "id, evaluation_id, criterion_id, score, comments, created_at, updated_at"

func scanDetail(row interface{ Scan(...any) error }) (store.EvaluationDetail, error) {
	var d store.EvaluationDetail
	err := row.Scan(&d.ID, &d.EvaluationID, &d.CriterionID, &d.Score, &d.Comments, &d.CreatedAt, &d.UpdatedAt)
	return d, translate(err)
}

func (p *PG) ListDetailsByEvaluation(ctx context.Context, evaluationID int64) ([]store.EvaluationDetail, error) {
	rows, err := p.DB.Query(ctx, `
    SELECT `+detailColumns+`
    FROM evaluation_details
    WHERE evaluation_id = $1
    ORDER BY id
  `, evaluationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var details []store.EvaluationDetail
	for rows.Next() {
		detail, err := scanDetail(rows)
		if err != nil {
			return nil, err
		}
		details = append(details, detail)
	}
	return details, rows.Err()
}

func (p *PG) GetDetail(ctx context.Context, id int64) (store.EvaluationDetail, error) {
	return scanDetail(p.DB.QueryRow(ctx, `
    SELECT `+detailColumns+`
    FROM evaluation_details
    WHERE id = $1
  `, id))
}

func (p *PG) CreateDetail(ctx context.Context, detail store.EvaluationDetail) (int64, error) {
	var id int64
	err := p.DB.QueryRow(ctx, `
    INSERT INTO evaluation_details (evaluation_id, criterion_id, score, comments)
    VALUES ($1,$2,$3,$4)
    RETURNING id
  `, detail.EvaluationID, detail.CriterionID, detail.Score, detail.Comments).Scan(&id)
	return id, err
}

func (p *PG) UpdateDetail(ctx context.Context, id int64, patch store.EvaluationDetailPatch) error {
	tag, err := p.DB.Exec(ctx, `
    UPDATE evaluation_details
    SET score      = COALESCE($2, score),
        comments   = COALESCE($3, comments),
        updated_at = now()
    WHERE id = $1
  `, id, patch.Score, patch.Comments)
	if err != nil {
		return err
	}
	return rowsAffected(tag)
}

func (p *PG) DeleteDetailsByEvaluation(ctx context.Context, evaluationID int64) error {
	_, err := p.DB.Exec(ctx, `DELETE FROM evaluation_details WHERE evaluation_id = $1`, evaluationID)
	return err
}
