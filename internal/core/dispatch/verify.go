package dispatch

import (
	"context"

	"crosspost/internal/core/event"
	"crosspost/internal/core/rules"
	perr "crosspost/internal/platform/errors"
)

// verifyCache memoizes Verify per adapter id for one Execute call
type verifyCache map[string]error

// gate verifies each distinct adapter once, in first-reference order, and drops tasks bound to failures
// only cancellation of ctx is returned as an error
func (d *Dispatcher) gate(ctx context.Context, tasks []rules.Task) ([]rules.Task, error) {
	cache := verifyCache{}
	for _, t := range tasks {
		id := t.AdapterID()
		if _, seen := cache[id]; seen {
			continue
		}
		err := t.Adapter.Verify(ctx)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if err != nil {
			err = perr.KeepOrWrapf(err, perr.ErrorCodeVerification, "verify %s", id)
			event.Emit(ctx, d.obs, event.Event{Kind: event.VerifyFailed, Adapter: id, Err: err})
		}
		cache[id] = err
	}

	kept := make([]rules.Task, 0, len(tasks))
	for _, t := range tasks {
		if err := cache[t.AdapterID()]; err != nil {
			event.Emit(ctx, d.obs, event.Event{Kind: event.TaskDropped, Adapter: t.AdapterID(), Rule: t.RuleName, Err: err})
			continue
		}
		kept = append(kept, t)
	}
	return kept, nil
}
