package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"facture-backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned when a unique constraint rejects an insert
// (account email, invoice number).
var ErrDuplicate = errors.New("already exists")

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func normalizeLimit(limit int) int {
	if limit <= 0 || limit > 500 {
		return 200
	}
	return limit
}

func normalizeOffset(offset int) int {
	if offset < 0 {
		return 0
	}
	return offset
}

// mapConflict converts serialization failures, deadlocks and lock timeouts
// into the retryable domain error; everything else passes through.
func mapConflict(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "40001", "40P01", "55P03":
			return fmt.Errorf("%w: sqlstate %s", domain.ErrConcurrentModification, pgErr.Code)
		case "23505":
			return fmt.Errorf("%w: %s", ErrDuplicate, pgErr.ConstraintName)
		}
	}
	return err
}

func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// parseDecimal parses a NUMERIC column fetched with a ::text cast.
func parseDecimal(raw string) (decimal.Decimal, error) {
	value, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("parse numeric %q: %w", raw, err)
	}
	return value, nil
}

// begin starts a transaction on the pool; commit errors run through
// mapConflict so callers see ErrConcurrentModification on conflicts.
func (r *Repository) begin(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	return tx, nil
}

func commit(ctx context.Context, tx pgx.Tx, label string) error {
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit %s tx: %w", label, mapConflict(err))
	}
	return nil
}
