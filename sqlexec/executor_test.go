package sqlexec

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zoobzio/dynq"
	"github.com/zoobzio/dynq/crud"
	"github.com/zoobzio/dynq/postgres"
)

func newMock(t *testing.T, opts ...Option) (*Executor, sqlmock.Sqlmock, *bytes.Buffer) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	opts = append([]Option{WithLogger(logger)}, opts...)
	return New(db, postgres.New(), opts...), mock, &buf
}

func TestQuery(t *testing.T) {
	e, mock, logs := newMock(t)
	q := dynq.New("users")
	q.Select(q.Col("id"), q.Col("name")).Where(q.Col("age").Gt(21))

	mock.ExpectQuery(`SELECT "id", "name" FROM "users" WHERE "age" > $1`).
		WithArgs(21).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(1, "ann").AddRow(2, "bob"))

	rows, err := e.Query(context.Background(), q)
	require.NoError(t, err)
	defer rows.Close()

	var names []string
	for rows.Next() {
		var id int
		var name string
		require.NoError(t, rows.Scan(&id, &name))
		names = append(names, name)
	}
	require.NoError(t, rows.Err())
	assert.Equal(t, []string{"ann", "bob"}, names)
	require.NoError(t, mock.ExpectationsWereMet())

	assert.Contains(t, logs.String(), "level=DEBUG")
	assert.Contains(t, logs.String(), "age1")
	assert.Equal(t, int64(1), e.Stats().Snapshot().Queries)
}

func TestScalar(t *testing.T) {
	e, mock, _ := newMock(t)
	q := dynq.New("users").CountAll()

	mock.ExpectQuery(`SELECT COUNT(*) FROM "users"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(42))

	var n int64
	require.NoError(t, e.Scalar(context.Background(), q, &n))
	assert.Equal(t, int64(42), n)

	t.Run("no rows", func(t *testing.T) {
		mock.ExpectQuery(`SELECT COUNT(*) FROM "users"`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}))
		err := e.Scalar(context.Background(), q, &n)
		assert.ErrorIs(t, err, sql.ErrNoRows)
	})
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRenderErrorSkipsDatabase(t *testing.T) {
	e, mock, _ := newMock(t)
	q := dynq.New("users").Top(0)

	_, err := e.Query(context.Background(), q)
	assert.ErrorIs(t, err, dynq.ErrInvalidOperand)
	_, err = e.QueryRow(context.Background(), q)
	assert.ErrorIs(t, err, dynq.ErrInvalidOperand)

	require.NoError(t, mock.ExpectationsWereMet())
	assert.Equal(t, int64(0), e.Stats().Snapshot().Queries)
}

func TestExec_DriverError(t *testing.T) {
	e, mock, logs := newMock(t)
	boom := errors.New("connection reset")
	res := &dynq.QueryResult{SQL: `DELETE FROM "users"`}

	mock.ExpectExec(`DELETE FROM "users"`).WillReturnError(boom)

	_, err := e.Exec(context.Background(), res)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "sqlexec: exec")
	assert.Contains(t, logs.String(), "statement failed")

	snap := e.Stats().Snapshot()
	assert.Equal(t, int64(1), snap.Execs)
	assert.Equal(t, int64(1), snap.Errors)
}

func TestSave(t *testing.T) {
	cols := []dynq.ColumnMeta{
		{Name: "Id", Kind: dynq.KindInt64, PrimaryKey: true},
		{Name: "Name", Kind: dynq.KindString},
		{Name: "Version", Kind: dynq.KindInt32, Concurrency: true},
	}
	cmd, err := crud.NewBuilder(postgres.New()).Update(crud.Row{
		Table:    "Orders",
		Columns:  cols,
		Original: map[string]any{"Id": 7, "Name": "ann", "Version": 3},
		Current:  map[string]any{"Id": 7, "Name": "bob", "Version": 3},
	})
	require.NoError(t, err)
	const update = `UPDATE "Orders" SET "Name" = $1, "Version" = "Version" + 1 WHERE "Id" = $2 AND "Version" = $3`

	t.Run("saved", func(t *testing.T) {
		e, mock, _ := newMock(t)
		mock.ExpectExec(update).WithArgs("bob", 7, 3).WillReturnResult(sqlmock.NewResult(0, 1))
		n, err := e.Save(context.Background(), cmd)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("conflict", func(t *testing.T) {
		e, mock, logs := newMock(t)
		mock.ExpectExec(update).WithArgs("bob", 7, 3).WillReturnResult(sqlmock.NewResult(0, 0))
		_, err := e.Save(context.Background(), cmd)
		assert.ErrorIs(t, err, dynq.ErrConcurrencyConflict)
		assert.Contains(t, logs.String(), "concurrency conflict")
		assert.Equal(t, int64(1), e.Stats().Snapshot().Conflicts)
	})

	t.Run("unchecked command affecting nothing", func(t *testing.T) {
		e, mock, _ := newMock(t)
		plain := cmd
		plain.Concurrency = false
		mock.ExpectExec(update).WithArgs("bob", 7, 3).WillReturnResult(sqlmock.NewResult(0, 0))
		n, err := e.Save(context.Background(), plain)
		require.NoError(t, err)
		assert.Equal(t, int64(0), n)
	})
}

func TestSlowStatement(t *testing.T) {
	e, mock, logs := newMock(t, WithSlowThreshold(time.Millisecond))
	q := dynq.New("users")

	mock.ExpectQuery(`SELECT * FROM "users"`).
		WillDelayFor(5 * time.Millisecond).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	rows, err := e.Query(context.Background(), q)
	require.NoError(t, err)
	rows.Close()

	assert.Contains(t, logs.String(), "slow statement")
	assert.Equal(t, int64(1), e.Stats().Snapshot().Slow)
}

func TestStats(t *testing.T) {
	s := &Stats{}
	s.queries.Add(3)
	s.execs.Add(1)
	s.duration.Add(int64(8 * time.Millisecond))

	snap := s.Snapshot()
	assert.Equal(t, 2*time.Millisecond, snap.Avg())
	assert.Equal(t, "queries=3 execs=1 duration=8ms avg=2ms slow=0 errors=0 conflicts=0", snap.String())

	s.Reset()
	assert.Equal(t, StatsSnapshot{}, s.Snapshot())
	assert.Equal(t, time.Duration(0), StatsSnapshot{}.Avg())
}

func TestSharedStats(t *testing.T) {
	shared := &Stats{}
	a, _, _ := newMock(t, WithStats(shared))
	b, _, _ := newMock(t, WithStats(shared))
	assert.Same(t, a.Stats(), b.Stats())
}
