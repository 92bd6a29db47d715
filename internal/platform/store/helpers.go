package store

import (
	"context"

	perr "crosspost/internal/platform/errors"
)

// Exec runs a write and returns rows affected, pg errors are mapped to coded errors
func Exec(ctx context.Context, q RowQuerier, sql string, args ...any) (int64, error) {
	t, err := q.Exec(ctx, sql, args...)
	if err != nil {
		return 0, dbErr(err, "store: exec")
	}
	return t.RowsAffected(), nil
}

// ExecOne runs a write and asserts exactly one row was affected, zero rows is NotFound
func ExecOne(ctx context.Context, q RowQuerier, sql string, args ...any) error {
	n, err := Exec(ctx, q, sql, args...)
	if err != nil {
		return err
	}
	switch {
	case n == 0:
		return perr.NotFoundf("store: no row affected")
	case n > 1:
		return perr.Internalf("store: expected one row affected, got %d", n)
	}
	return nil
}

// Scalar queries the first column of the first row into T
func Scalar[T any](ctx context.Context, q RowQuerier, sql string, args ...any) (T, error) {
	var v T
	if err := q.QueryRow(ctx, sql, args...).Scan(&v); err != nil {
		var zero T
		if perr.IsNoRows(err) {
			return zero, perr.NotFoundf("store: no rows")
		}
		return zero, dbErr(err, "store: scalar")
	}
	return v, nil
}

// Many maps every row through scan
func Many[T any](ctx context.Context, q RowQuerier, scan func(Row) (T, error), sql string, args ...any) ([]T, error) {
	rs, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, dbErr(err, "store: query")
	}
	defer rs.Close()

	out := make([]T, 0)
	for rs.Next() {
		item, err := scan(rs)
		if err != nil {
			return nil, dbErr(err, "store: scan")
		}
		out = append(out, item)
	}
	if err := rs.Err(); err != nil {
		return nil, dbErr(err, "store: rows")
	}
	return out, nil
}

// dbErr keeps already coded errors and maps everything else through the pg SQLSTATE table
func dbErr(err error, msg string) error {
	if _, ok := perr.As(err); ok {
		return err
	}
	return perr.FromPostgres(err, msg)
}
