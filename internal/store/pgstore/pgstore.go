// Package pgstore is the PostgreSQL Store implementation on pgx. The schema
// lives in migrations/ and is applied by internal/db.
package pgstore

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"appraisal/internal/store"
)

type PG struct {
	DB *pgxpool.Pool
}

func New(db *pgxpool.Pool) *PG {
	return &PG{DB: db}
}

// translate maps pgx's no-rows error onto the store sentinel.
func translate(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return store.ErrNotFound
	}
	return err
}

func rowsAffected(tag interface{ RowsAffected() int64 }) error {
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (p *PG) count(ctx context.Context, query string, args ...any) (int, error) {
	var count int
	if err := p.DB.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}
