package postgres

import (
	"context"
	"errors"
	"strings"
)

// fakeDB records statements and fails the n-th Exec inside a transaction.
type fakeDB struct {
	failExecAt int
	execErr    error

	execs      []string
	committed  bool
	rolledBack bool
}

type fakeTag int64

func (t fakeTag) RowsAffected() int64 { return int64(t) }

type fakeRow struct{ err error }

func (r fakeRow) Scan(dest ...any) error { return r.err }

func (db *fakeDB) Query(ctx context.Context, sql string, args ...any) (Rows, error) {
	return nil, errors.New("query not supported")
}

func (db *fakeDB) QueryRow(ctx context.Context, sql string, args ...any) Row {
	return fakeRow{err: errors.New("query not supported")}
}

func (db *fakeDB) Exec(ctx context.Context, sql string, args ...any) (CommandTag, error) {
	db.execs = append(db.execs, strings.TrimSpace(sql))
	return fakeTag(0), nil
}

func (db *fakeDB) Begin(ctx context.Context) (Tx, error) {
	return &fakeTx{db: db}, nil
}

func (db *fakeDB) Ping(ctx context.Context) error { return nil }

func (db *fakeDB) Close() {}

type fakeTx struct {
	db   *fakeDB
	done bool
}

func (t *fakeTx) Query(ctx context.Context, sql string, args ...any) (Rows, error) {
	return t.db.Query(ctx, sql, args...)
}

func (t *fakeTx) QueryRow(ctx context.Context, sql string, args ...any) Row {
	return t.db.QueryRow(ctx, sql, args...)
}

func (t *fakeTx) Exec(ctx context.Context, sql string, args ...any) (CommandTag, error) {
	t.db.execs = append(t.db.execs, strings.TrimSpace(sql))
	if t.db.failExecAt > 0 && len(t.db.execs) == t.db.failExecAt {
		return nil, t.db.execErr
	}
	return fakeTag(1), nil
}

func (t *fakeTx) Commit(ctx context.Context) error {
	if t.done {
		return errors.New("tx already closed")
	}
	t.done = true
	t.db.committed = true
	return nil
}

func (t *fakeTx) Rollback(ctx context.Context) error {
	if t.done {
		return nil
	}
	t.done = true
	t.db.rolledBack = true
	return nil
}
