package pgstore

import (
	"context"

	"appraisal/internal/store"
)

const criterionColumns = "id, name, description, weight, max_score, is_active, created_at, updated_at"

func scanCriterion(row interface{ Scan(...any) error }) (store.Criterion, error) {
	var c store.Criterion
	err := row.Scan(&c.ID, &c.Name, &c.Description, &c.Weight, &c.MaxScore, &c.IsActive, &c.CreatedAt, &c.UpdatedAt)
	return c, translate(err)
}

func (p *PG) listCriteria(ctx context.Context, query string, args ...any) ([]store.Criterion, error) {
	rows, err := p.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var criteria []store.Criterion
	for rows.Next() {
		criterion, err := scanCriterion(rows)
		if err != nil {
			return nil, err
		}
		criteria = append(criteria, criterion)
	}
	return criteria, rows.Err()
}

func (p *PG) ListCriteria(ctx context.Context) ([]store.Criterion, error) {
	return p.listCriteria(ctx, `
    SELECT `+criterionColumns+`
    FROM criteria
    ORDER BY id
  `)
}

func (p *PG) ListActiveCriteria(ctx context.Context) ([]store.Criterion, error) {
	return p.listCriteria(ctx, `
    SELECT `+criterionColumns+`
    FROM criteria
    WHERE is_active
    ORDER BY id
  `)
}

func (p *PG) GetCriterion(ctx context.Context, id int64) (store.Criterion, error) {
	return scanCriterion(p.DB.QueryRow(ctx, `
    SELECT `+criterionColumns+`
    FROM criteria
    WHERE id = $1
  `, id))
}

func (p *PG) CreateCriterion(ctx context.Context, criterion store.Criterion) (int64, error) {
	var id int64
	err := p.DB.QueryRow(ctx, `
    INSERT INTO criteria (name, description, weight, max_score, is_active)
    VALUES ($1,$2,$3,$4,$5)
    RETURNING id
  `, criterion.Name, criterion.Description, criterion.Weight, criterion.MaxScore, criterion.IsActive).Scan(&id)
	return id, err
}

func (p *PG) UpdateCriterion(ctx context.Context, id int64, patch store.CriterionPatch) error {
	tag, err := p.DB.Exec(ctx, `
    UPDATE criteria
    SET name        = COALESCE($2, name),
        description = COALESCE($3, description),
        weight      = COALESCE($4, weight),
        max_score   = COALESCE($5, max_score),
        is_active   = COALESCE($6, is_active),
        updated_at  = now()
    WHERE id = $1
  `, id, patch.Name, patch.Description, patch.Weight, patch.MaxScore, patch.IsActive)
	if err != nil {
		return err
	}
	return rowsAffected(tag)
}

func (p *PG) DeleteCriterion(ctx context.Context, id int64) error {
	tag, err := p.DB.Exec(ctx, `DELETE FROM criteria WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return rowsAffected(tag)
}

func (p *PG) CountDetailsByCriterion(ctx context.Context, criterionID int64) (int, error) {
	return p.count(ctx, `SELECT COUNT(1) FROM evaluation_details WHERE criterion_id = $1`, criterionID)
}

const periodColumns = "id, name, start_date, end_date, year, is_active, created_at, updated_at"

func scanPeriod(row interface{ Scan(...any) error }) (store.Period, error) {
	var p store.Period
	err := row.Scan(&p.ID, &p.Name, &p.StartDate, &p.EndDate, &p.Year, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	return p, translate(err)
}

func (p *PG) ListPeriods(ctx context.Context) ([]store.Period, error) {
	rows, err := p.DB.Query(ctx, `
    SELECT `+periodColumns+`
    FROM periods
    ORDER BY id
  `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var periods []store.Period
	for rows.Next() {
		period, err := scanPeriod(rows)
		if err != nil {
			return nil, err
		}
		periods = append(periods, period)
	}
	return periods, rows.Err()
}

func (p *PG) GetPeriod(ctx context.Context, id int64) (store.Period, error) {
	return scanPeriod(p.DB.QueryRow(ctx, `
    SELECT `+periodColumns+`
    FROM periods
    WHERE id = $1
  `, id))
}

func (p *PG) ActivePeriod(ctx context.Context) (store.Period, error) {
	return scanPeriod(p.DB.QueryRow(ctx, `
    SELECT ` + periodColumns + `
    FROM periods
    WHERE is_active
    LIMIT 1
  `))
}

func (p *PG) CreatePeriod(ctx context.Context, period store.Period) (int64, error) {
	var id int64
	err := p.DB.QueryRow(ctx, `
    INSERT INTO periods (name, start_date, end_date, year, is_active)
    VALUES ($1,$2,$3,$4,$5)
    RETURNING id
  `, period.Name, period.StartDate, period.EndDate, period.Year, period.IsActive).Scan(&id)
	return id, err
}

func (p *PG) UpdatePeriod(ctx context.Context, id int64, patch store.PeriodPatch) error {
	tag, err := p.DB.Exec(ctx, `
    UPDATE periods
    SET name       = COALESCE($2, name),
        start_date = COALESCE($3, start_date),
        end_date   = COALESCE($4, end_date),
        year       = COALESCE($5, year),
        is_active  = COALESCE($6, is_active),
        updated_at = now()
    WHERE id = $1
  `, id, patch.Name, patch.StartDate, patch.EndDate, patch.Year, patch.IsActive)
	if err != nil {
		return err
	}
	return rowsAffected(tag)
}

func (p *PG) DeletePeriod(ctx context.Context, id int64) error {
	tag, err := p.DB.Exec(ctx, `DELETE FROM periods WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return rowsAffected(tag)
}

func (p *PG) CountEvaluationsByPeriod(ctx context.Context, periodID int64) (int, error) {
	return p.count(ctx, `SELECT COUNT(1) FROM evaluations WHERE period_id = $1`, periodID)
}
