package store

import (
	"context"
	"errors"
	"testing"

	"crosspost/internal/platform/store/ch"
)

type fakeCHRows struct {
	n      int
	closed bool
}

func (r *fakeCHRows) Next() bool { r.n++; return r.n == 1 }
func (r *fakeCHRows) Scan(dest ...any) error {
	*(dest[0].(*uint64)) = 7
	return nil
}
func (r *fakeCHRows) Err() error        { return nil }
func (r *fakeCHRows) Close() error      { r.closed = true; return errors.New("ignored") }
func (r *fakeCHRows) Columns() []string { return []string{"count()"} }

type fakeCHClient struct {
	inserted map[string][][]any
	execs    []string
	rows     *fakeCHRows
	queryErr error
	closeErr error
	closed   bool
}

func (f *fakeCHClient) Insert(_ context.Context, table string, rows [][]any) error {
	if f.inserted == nil {
		f.inserted = map[string][][]any{}
	}
	f.inserted[table] = append(f.inserted[table], rows...)
	return nil
}
func (f *fakeCHClient) Exec(_ context.Context, sql string, _ ...any) error {
	f.execs = append(f.execs, sql)
	return nil
}
func (f *fakeCHClient) Query(context.Context, string, ...any) (ch.Rows, error) {
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	return f.rows, nil
}
func (f *fakeCHClient) Ping(context.Context) error { return nil }
func (f *fakeCHClient) Close() error               { f.closed = true; return f.closeErr }

func TestCHAdapter_Delegates(t *testing.T) {
	fc := &fakeCHClient{rows: &fakeCHRows{}}
	a := newCHAdapter(fc)

	if err := a.Insert(context.Background(), "dispatch_events", [][]any{{"b-1"}, {"b-2"}}); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if len(fc.inserted["dispatch_events"]) != 2 {
		t.Fatalf("rows not forwarded: %#v", fc.inserted)
	}
	if err := a.Exec(context.Background(), "OPTIMIZE TABLE dispatch_events"); err != nil || len(fc.execs) != 1 {
		t.Fatalf("Exec not forwarded")
	}

	rs, err := a.Query(context.Background(), "SELECT count() FROM dispatch_events")
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	var n uint64
	if !rs.Next() || rs.Scan(&n) != nil || n != 7 || rs.Columns()[0] != "count()" {
		t.Fatalf("row mismatch: %d", n)
	}
	if rs.Next() || rs.Err() != nil {
		t.Fatalf("expected end of rows")
	}
	rs.Close()
	if !fc.rows.closed {
		t.Fatalf("Close not forwarded")
	}

	fc.queryErr = errors.New("down")
	if _, err := a.Query(context.Background(), "SELECT 1"); err == nil {
		t.Fatalf("expected query error")
	}
}

func TestCHAdapter_PingNil(t *testing.T) {
	var a *clickhouseAdapter
	if a.Ping(context.Background()) == nil {
		t.Fatalf("nil adapter ping should fail")
	}
}
