// Package storage holds the PostgreSQL-backed newsletter repository,
// recipient directory and admin accounts.
package storage

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/sungwon/newsletter/internal/metrics"
)

var (
	// ErrNotFound is returned when a row addressed by id or login does not exist.
	ErrNotFound = errors.New("storage: not found")
	// ErrConflict is returned when a write violates a unique constraint.
	ErrConflict = errors.New("storage: conflict")
)

const uniqueViolation = "23505"

// DBTX is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Queries runs the service's SQL against a DBTX.
type Queries struct {
	db DBTX
}

// New creates a Queries bound to the given connection or pool.
func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// WithTx returns a Queries that runs inside tx.
func (q *Queries) WithTx(tx pgx.Tx) *Queries {
	return &Queries{db: tx}
}

// mapError normalizes driver errors into package sentinels and counts
// unexpected failures per query.
func mapError(query string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return ErrConflict
	}
	metrics.DBErrorsTotal.WithLabelValues(query).Inc()
	return err
}
