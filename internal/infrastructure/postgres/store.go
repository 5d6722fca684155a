// Package postgres implements the Entity Store on PostgreSQL through pgx.
package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gloria-mdrrmo/sigurado/internal/domain"
	apperrors "github.com/gloria-mdrrmo/sigurado/internal/shared/errors"
	"github.com/gloria-mdrrmo/sigurado/internal/shared/metrics"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store implements domain.Store using PostgreSQL
type Store struct {
	*queries
	pool *pgxpool.Pool
}

// New creates a store on pool. Every statement is bounded by queryTimeout.
func New(pool *pgxpool.Pool, queryTimeout time.Duration) *Store {
	return &Store{
		queries: &queries{q: pool, timeout: queryTimeout},
		pool:    pool,
	}
}

// WithinTx runs fn in one transaction, rolled back when fn fails
func (s *Store) WithinTx(ctx context.Context, fn func(tx domain.Tx) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return apperrors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback(ctx)

	if err := fn(&queries{q: tx, timeout: s.timeout}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return apperrors.Wrap(err, "failed to commit transaction")
	}
	return nil
}

// Ping checks connectivity
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// queries implements domain.Tx on a pool or a transaction
type queries struct {
	q       querier
	timeout time.Duration
}

// bound applies the query timeout and records the duration under op
func (r *queries) bound(ctx context.Context, op string) (context.Context, func()) {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	return ctx, func() {
		cancel()
		metrics.RecordDBQuery(op, time.Since(start))
	}
}

// translate maps driver errors onto the application error categories
func translate(err error, resource, id, op string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.NotFound(resource, id)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return apperrors.Conflict(conflictMessage(pgErr.ConstraintName))
		case "23503":
			return apperrors.NotFound(referencedResource(pgErr.ConstraintName), "")
		case "23514":
			return apperrors.Validation("constraint violated", map[string]string{"constraint": pgErr.ConstraintName})
		case "22P02":
			return apperrors.Validation("malformed value", map[string]string{resource: "is not well formed"})
		}
	}
	return apperrors.Wrap(err, op)
}

func conflictMessage(constraint string) string {
	switch constraint {
	case "actors_email_key":
		return "email already registered"
	case "responders_actor_id_key":
		return "actor already owns a responder profile"
	case "citizens_actor_id_key":
		return "citizen profile already exists"
	case "districts_code_key":
		return "district code already exists"
	default:
		return "record already exists"
	}
}

// referencedResource names the missing row from the default
// <table>_<column>_fkey constraint name
func referencedResource(constraint string) string {
	switch {
	case strings.HasSuffix(constraint, "_district_id_fkey"), strings.HasSuffix(constraint, "_target_district_fkey"):
		return "district"
	case strings.HasSuffix(constraint, "_incident_id_fkey"):
		return "incident"
	case strings.HasSuffix(constraint, "_responder_id_fkey"):
		return "responder"
	case strings.HasSuffix(constraint, "actor_id_fkey"):
		return "actor"
	default:
		return "referenced record"
	}
}
