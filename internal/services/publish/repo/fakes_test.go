package repo

import (
	"context"
	"errors"
	"time"

	"crosspost/internal/modkit/repokit"
	"crosspost/internal/platform/store"

	"github.com/jackc/pgx/v5/pgconn"
)

type fakeRows struct {
	data   [][]any
	idx    int
	closed bool
}

func (r *fakeRows) Next() bool        { r.idx++; return r.idx < len(r.data) }
func (r *fakeRows) Err() error        { return nil }
func (r *fakeRows) Close()            { r.closed = true }
func (r *fakeRows) Columns() []string { return nil }

func (r *fakeRows) Scan(dest ...any) error {
	row := r.data[r.idx]
	if len(row) != len(dest) {
		return errors.New("dest len mismatch")
	}
	for i := range dest {
		switch d := dest[i].(type) {
		case *string:
			*d = row[i].(string)
		case *int64:
			*d = row[i].(int64)
		case *time.Time:
			*d = row[i].(time.Time)
		case **time.Time:
			*d, _ = row[i].(*time.Time)
		default:
			return errors.New("unsupported dest")
		}
	}
	return nil
}

type scalarRow struct{ n int64 }

func (r scalarRow) Scan(dest ...any) error {
	*(dest[0].(*int64)) = r.n
	return nil
}

// fakeDB records statements and answers from canned values
type fakeDB struct {
	stmts   []string
	args    [][]any
	tag     string
	execErr error
	count   int64
	rows    [][]any
	txs     int
}

func (f *fakeDB) Exec(_ context.Context, sql string, args ...any) (store.CommandTag, error) {
	f.stmts = append(f.stmts, sql)
	f.args = append(f.args, args)
	if f.execErr != nil {
		return nil, f.execErr
	}
	return pgconn.NewCommandTag(f.tag), nil
}

func (f *fakeDB) Query(_ context.Context, sql string, args ...any) (store.Rows, error) {
	f.stmts = append(f.stmts, sql)
	f.args = append(f.args, args)
	return &fakeRows{data: f.rows, idx: -1}, nil
}

func (f *fakeDB) QueryRow(_ context.Context, sql string, args ...any) store.Row {
	f.stmts = append(f.stmts, sql)
	f.args = append(f.args, args)
	return scalarRow{n: f.count}
}

func (f *fakeDB) Tx(_ context.Context, fn func(repokit.Queryer) error) error {
	f.txs++
	return fn(f)
}

type fakeCH struct {
	store.Clickhouse
	table string
	rows  [][]any
	err   error
}

func (f *fakeCH) Insert(_ context.Context, table string, rows [][]any) error {
	f.table, f.rows = table, rows
	return f.err
}
