// Package repokit holds the transaction plumbing shared by sql repos
package repokit

import (
	"context"

	perr "crosspost/internal/platform/errors"
	"crosspost/internal/platform/store"
)

// Queryer is what a repo statement runs against, either the pool or an open tx
type Queryer = store.RowQuerier

// TxRunner opens transactions, Store.PG satisfies it
type TxRunner = store.TxRunner

// WithTx runs fn in a single transaction on tx
// a nil runner means postgres is disabled and surfaces as Unavailable
func WithTx(ctx context.Context, tx TxRunner, fn func(q Queryer) error) error {
	if tx == nil {
		return perr.Unavailablef("repokit: no transaction runner")
	}
	return tx.Tx(ctx, fn)
}
