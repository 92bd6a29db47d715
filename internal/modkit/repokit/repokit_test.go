package repokit

import (
	"context"
	"errors"
	"testing"
	"time"

	perr "crosspost/internal/platform/errors"
	"crosspost/internal/platform/store"
	"crosspost/internal/platform/testkit"
)

type recQ struct {
	stmts []string
	args  [][]any
	err   error
}

func (q *recQ) Exec(_ context.Context, sql string, args ...any) (store.CommandTag, error) {
	q.stmts = append(q.stmts, sql)
	q.args = append(q.args, args)
	return nil, q.err
}
func (q *recQ) Query(context.Context, string, ...any) (store.Rows, error) { return nil, nil }
func (q *recQ) QueryRow(context.Context, string, ...any) store.Row        { return nil }

type recTx struct {
	*recQ
	txs int
}

func (r *recTx) Tx(_ context.Context, fn func(Queryer) error) error {
	r.txs++
	return fn(r.recQ)
}

func TestWithBeginHooks_RunsBeforeFn(t *testing.T) {
	inner := &recTx{recQ: &recQ{}}
	var order []string
	hook := func(name string) BeginHook {
		return func(context.Context, Queryer) error { order = append(order, name); return nil }
	}
	tx := WithBeginHooks(inner, hook("a"), hook("b"))

	err := WithTx(context.Background(), tx, func(Queryer) error { order = append(order, "fn"); return nil })
	if err != nil || inner.txs != 1 {
		t.Fatalf("tx err=%v txs=%d", err, inner.txs)
	}
	if len(order) != 3 || order[0] != "a" || order[2] != "fn" {
		t.Fatalf("order = %v", order)
	}
}

func TestWithBeginHooks_ErrorStops(t *testing.T) {
	inner := &recTx{recQ: &recQ{}}
	boom := errors.New("boom")
	ran := false
	tx := WithBeginHooks(inner, func(context.Context, Queryer) error { return boom })
	err := tx.Tx(context.Background(), func(Queryer) error { ran = true; return nil })
	if !errors.Is(err, boom) || ran {
		t.Fatalf("err=%v ran=%v", err, ran)
	}
}

func TestWithBeginHooks_NoneReturnsInner(t *testing.T) {
	inner := &recTx{recQ: &recQ{}}
	if WithBeginHooks(inner) != TxRunner(inner) {
		t.Fatalf("no hooks should return inner")
	}
}

func TestLockTimeout(t *testing.T) {
	q := &recQ{}
	if err := LockTimeout(0)(context.Background(), q); err != nil || len(q.stmts) != 0 {
		t.Fatalf("zero timeout should be a no-op")
	}
	if err := LockTimeout(1500)(context.Background(), q); err != nil {
		t.Fatalf("LockTimeout: %v", err)
	}
	testkit.MustContain(t, q.stmts[0], "lock_timeout")
	if q.args[0][0] != "1500ms" {
		t.Fatalf("arg = %v", q.args[0])
	}
}

func TestWithTx_NilRunner(t *testing.T) {
	ran := false
	err := WithTx(context.Background(), nil, func(Queryer) error { ran = true; return nil })
	testkit.MustCode(t, err, perr.ErrorCodeUnavailable)
	if ran {
		t.Fatalf("fn should not run without a runner")
	}
}

type guardFunc func(context.Context) error

func (g guardFunc) Guard(ctx context.Context) error { return g(ctx) }

func TestMustGuard(t *testing.T) {
	var deadline time.Time
	testkit.MustNotPanic(t, func() {
		MustGuard(context.Background(), guardFunc(func(ctx context.Context) error {
			deadline, _ = ctx.Deadline()
			return nil
		}))
	})
	if deadline.IsZero() {
		t.Fatalf("MustGuard should bound ctx")
	}

	defer func() {
		rec := recover()
		err, ok := rec.(error)
		if !ok || !perr.IsCode(err, perr.ErrorCodeUnavailable) {
			t.Fatalf("panic value = %v", rec)
		}
	}()
	MustGuard(context.Background(), guardFunc(func(context.Context) error { return errors.New("pg down") }))
}
