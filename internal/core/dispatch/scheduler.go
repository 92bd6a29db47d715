package dispatch

import (
	"context"
	"time"

	"crosspost/internal/core/delay"
	"crosspost/internal/core/event"
)

// Job is one deferred publish handed to a Scheduler
type Job struct {
	DelayMs int64
	Adapter string
	Rule    string
	Run     func(ctx context.Context) error
}

// Scheduler decides when a deferred job runs. Schedule blocks until Run has returned
// or ctx is done, and returns Run's error
type Scheduler interface {
	Schedule(ctx context.Context, j Job) error
}

// Planner is implemented by schedulers that know up front how long a job will wait
type Planner interface {
	Wait(delayMs int64) time.Duration
}

// SchedulerFunc adapts a function to Scheduler
type SchedulerFunc func(ctx context.Context, j Job) error

// Schedule implements Scheduler
func (f SchedulerFunc) Schedule(ctx context.Context, j Job) error { return f(ctx, j) }

// Timer waits in process for the delay, then runs the job
type Timer struct{}

// Schedule implements Scheduler
func (Timer) Schedule(ctx context.Context, j Job) error {
	if j.DelayMs > 0 {
		t := time.NewTimer(delay.Duration(j.DelayMs))
		defer t.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
		}
	}
	return j.Run(ctx)
}

// Wait implements Planner
func (Timer) Wait(delayMs int64) time.Duration { return delay.Duration(max(delayMs, 0)) }

// Immediate ignores the delay, used by dry runs of deferred lanes and tests
type Immediate struct{}

// Schedule implements Scheduler
func (Immediate) Schedule(ctx context.Context, j Job) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return j.Run(ctx)
}

// Wait implements Planner
func (Immediate) Wait(int64) time.Duration { return 0 }

// Capped shortens delays above Max before handing the job to Next, emitting delay_capped
// A zero Max disables the cap; a nil Next means Timer
type Capped struct {
	Max      time.Duration
	Next     Scheduler
	Observer event.Observer
}

// Schedule implements Scheduler
func (c Capped) Schedule(ctx context.Context, j Job) error {
	next := c.Next
	if next == nil {
		next = Timer{}
	}
	if maxMs := c.Max.Milliseconds(); maxMs > 0 && j.DelayMs > maxMs {
		event.Emit(ctx, c.Observer, event.Event{Kind: event.DelayCapped, Adapter: j.Adapter, Rule: j.Rule, DelayMs: j.DelayMs})
		j.DelayMs = maxMs
	}
	return next.Schedule(ctx, j)
}

// Wait implements Planner, a Next that is not a Planner is assumed to wait the full delay
func (c Capped) Wait(delayMs int64) time.Duration {
	if maxMs := c.Max.Milliseconds(); maxMs > 0 && delayMs > maxMs {
		delayMs = maxMs
	}
	if p, ok := c.Next.(Planner); ok {
		return p.Wait(delayMs)
	}
	return delay.Duration(max(delayMs, 0))
}
