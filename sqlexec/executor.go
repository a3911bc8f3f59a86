// Package sqlexec runs rendered dynq statements through database/sql.
package sqlexec

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/zoobzio/dynq"
	"github.com/zoobzio/dynq/crud"
	"github.com/zoobzio/dynq/internal/types"
)

// ExecQuerier is satisfied by *sql.DB, *sql.Conn and *sql.Tx.
type ExecQuerier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Executor renders queries for one dialect and runs them.
type Executor struct {
	db       ExecQuerier
	renderer dynq.Renderer
	logger   *slog.Logger
	slow     time.Duration
	stats    *Stats
}

// Option configures an Executor.
type Option func(*Executor)

// WithLogger sets the logger. Statements are logged at Debug, slow ones at
// Warn.
func WithLogger(l *slog.Logger) Option {
	return func(e *Executor) {
		e.logger = l
	}
}

// WithSlowThreshold sets the duration above which a statement counts as
// slow. Zero disables slow statement reporting.
func WithSlowThreshold(d time.Duration) Option {
	return func(e *Executor) {
		e.slow = d
	}
}

// WithStats shares a Stats between executors.
func WithStats(s *Stats) Option {
	return func(e *Executor) {
		e.stats = s
	}
}

// New creates an executor running statements on db, rendered by r.
func New(db ExecQuerier, r dynq.Renderer, opts ...Option) *Executor {
	e := &Executor{
		db:       db,
		renderer: r,
		logger:   slog.Default(),
		slow:     100 * time.Millisecond,
		stats:    &Stats{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Stats returns the executor's counters.
func (e *Executor) Stats() *Stats { return e.stats }

// Renderer returns the renderer statements are compiled with.
func (e *Executor) Renderer() dynq.Renderer { return e.renderer }

// Query renders q and runs it. The caller closes the rows.
func (e *Executor) Query(ctx context.Context, q *dynq.Query) (*sql.Rows, error) {
	res, err := q.Render(e.renderer)
	if err != nil {
		return nil, err
	}
	return e.QueryResult(ctx, res)
}

// QueryResult runs an already rendered statement.
func (e *Executor) QueryResult(ctx context.Context, res *dynq.QueryResult) (*sql.Rows, error) {
	start := time.Now()
	rows, err := e.db.QueryContext(ctx, res.SQL, res.Args()...)
	e.record(ctx, res, start, err, true)
	if err != nil {
		return nil, fmt.Errorf("sqlexec: query: %w", err)
	}
	return rows, nil
}

// QueryRow renders q and runs it for at most one row.
func (e *Executor) QueryRow(ctx context.Context, q *dynq.Query) (*sql.Row, error) {
	res, err := q.Render(e.renderer)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	row := e.db.QueryRowContext(ctx, res.SQL, res.Args()...)
	e.record(ctx, res, start, row.Err(), true)
	return row, nil
}

// Scalar runs q and scans the first column of its first row into dest.
// Without a row the error matches sql.ErrNoRows.
func (e *Executor) Scalar(ctx context.Context, q *dynq.Query, dest any) error {
	row, err := e.QueryRow(ctx, q)
	if err != nil {
		return err
	}
	if err := row.Scan(dest); err != nil {
		return fmt.Errorf("sqlexec: scalar: %w", err)
	}
	return nil
}

// Exec runs an already rendered statement and returns the affected rows.
func (e *Executor) Exec(ctx context.Context, res *dynq.QueryResult) (int64, error) {
	start := time.Now()
	result, err := e.db.ExecContext(ctx, res.SQL, res.Args()...)
	e.record(ctx, res, start, err, false)
	if err != nil {
		return 0, fmt.Errorf("sqlexec: exec: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("sqlexec: rows affected: %w", err)
	}
	return n, nil
}

// Save runs a write command. A concurrency-checked command that affects no
// rows fails with ErrConcurrencyConflict.
func (e *Executor) Save(ctx context.Context, cmd crud.Command) (int64, error) {
	n, err := e.Exec(ctx, &cmd.QueryResult)
	if err != nil {
		return 0, err
	}
	if cmd.Concurrency && n == 0 {
		e.stats.conflict.Add(1)
		e.logger.WarnContext(ctx, "concurrency conflict", "sql", cmd.SQL)
		return 0, types.Errorf(types.ErrConcurrencyConflict, "save", "row was changed or deleted since it was read")
	}
	return n, nil
}

func (e *Executor) record(ctx context.Context, res *dynq.QueryResult, start time.Time, err error, query bool) {
	d := time.Since(start)
	if query {
		e.stats.queries.Add(1)
	} else {
		e.stats.execs.Add(1)
	}
	e.stats.duration.Add(int64(d))

	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		e.stats.errors.Add(1)
		e.logger.ErrorContext(ctx, "statement failed", "sql", res.SQL, "params", res.Names(), "error", err)
		return
	}
	if e.slow > 0 && d > e.slow {
		e.stats.slow.Add(1)
		e.logger.WarnContext(ctx, "slow statement", "sql", res.SQL, "params", res.Names(), "duration", d)
		return
	}
	e.logger.DebugContext(ctx, "statement", "sql", res.SQL, "params", res.Names(), "duration", d)
}
