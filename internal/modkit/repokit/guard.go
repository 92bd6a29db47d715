package repokit

import (
	"context"
	"time"

	perr "crosspost/internal/platform/errors"
)

// GuardTimeout bounds MustGuard when the caller's ctx has no deadline
var GuardTimeout = 5 * time.Second

// Guarder reports whether a backend can serve, *store.Store implements it
type Guarder interface {
	Guard(context.Context) error
}

// MustGuard panics with an Unavailable error when g cannot serve
// used at boot so a binary never starts routing against a dead ledger
func MustGuard(ctx context.Context, g Guarder) {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, GuardTimeout)
		defer cancel()
	}
	if err := g.Guard(ctx); err != nil {
		panic(perr.Wrap(err, perr.ErrorCodeUnavailable, "backend guard failed"))
	}
}
