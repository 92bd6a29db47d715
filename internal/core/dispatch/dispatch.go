// Package dispatch executes evaluated tasks: verification gate, immediate lane, deferred lane
package dispatch

import (
	"context"
	"time"

	"crosspost/internal/core/event"
	"crosspost/internal/core/rules"
	perr "crosspost/internal/platform/errors"

	"golang.org/x/sync/errgroup"
)

// Result is one successfully executed task
type Result struct {
	ID        string `json:"id"`
	URL       string `json:"url"`
	RuleName  string `json:"ruleName"`
	AdapterID string `json:"adapterId"`
}

// Options control one Execute call
type Options struct {
	VerifyGate bool
}

// Dispatcher runs task batches. It holds no per-batch state and is safe for concurrent use
type Dispatcher struct {
	sched Scheduler
	obs   event.Observer
}

// Option configures a Dispatcher
type Option func(*Dispatcher)

// WithScheduler replaces the in-process Timer scheduler
func WithScheduler(s Scheduler) Option {
	return func(d *Dispatcher) {
		if s != nil {
			d.sched = s
		}
	}
}

// WithObserver sets the observer for gate and publish events
func WithObserver(o event.Observer) Option {
	return func(d *Dispatcher) {
		if o != nil {
			d.obs = o
		}
	}
}

// New returns a Dispatcher
func New(opts ...Option) *Dispatcher {
	d := &Dispatcher{sched: Timer{}, obs: event.LogObserver{Component: "dispatch"}}
	for _, o := range opts {
		o(d)
	}
	return d
}

// fitDeadline fails when a deferred task's planned wait reaches past ctx's deadline
// Schedulers that are not Planners are not checked
func (d *Dispatcher) fitDeadline(ctx context.Context, deferred []rules.Task) error {
	p, ok := d.sched.(Planner)
	if !ok || len(deferred) == 0 {
		return nil
	}
	dl, ok := ctx.Deadline()
	if !ok {
		return nil
	}
	left := time.Until(dl)
	for _, t := range deferred {
		if w := p.Wait(t.DelayMs); w >= left {
			err := perr.Timeoutf("publish to %s for rule %s waits %s, the deadline is %s away",
				t.AdapterID(), t.RuleName, w, left.Round(time.Millisecond))
			return perr.WithField(err, "delay")
		}
	}
	return nil
}

// Execute runs tasks and returns results ordered immediate lane first, then deferred lane by submission
//
// With VerifyGate each distinct adapter is verified once before anything publishes and
// tasks of adapters that fail are dropped. Immediate tasks run one at a time in order;
// deferred tasks run concurrently through the scheduler and are all joined before return.
// An immediate failure stops the batch before the deferred lane starts. A deferred failure
// leaves the other deferred tasks running; once all are joined the successful results come
// back together with the first error. When ctx has a deadline that a deferred task would
// still be waiting at, the batch is rejected with ErrorCodeTimeout before anything publishes.
func (d *Dispatcher) Execute(ctx context.Context, tasks []rules.Task, opts Options) ([]Result, error) {
	if opts.VerifyGate {
		var err error
		if tasks, err = d.gate(ctx, tasks); err != nil {
			return nil, err
		}
	}

	var immediate, deferred []rules.Task
	for _, t := range tasks {
		if t.Immediate() {
			immediate = append(immediate, t)
		} else {
			deferred = append(deferred, t)
		}
	}

	if err := d.fitDeadline(ctx, deferred); err != nil {
		return nil, err
	}

	results := make([]Result, 0, len(tasks))
	for _, t := range immediate {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		r, err := d.publish(ctx, t)
		if err != nil {
			return results, err
		}
		results = append(results, r)
	}

	if len(deferred) == 0 {
		return results, nil
	}

	// a failing deferred task never cancels its siblings, each runs to completion or its own failure
	slots := make([]*Result, len(deferred))
	var g errgroup.Group
	for i, t := range deferred {
		g.Go(func() error {
			return d.sched.Schedule(ctx, Job{
				DelayMs: t.DelayMs,
				Adapter: t.AdapterID(),
				Rule:    t.RuleName,
				Run: func(ctx context.Context) error {
					r, err := d.publish(ctx, t)
					if err != nil {
						return err
					}
					slots[i] = &r
					return nil
				},
			})
		})
	}
	err := g.Wait()
	for _, r := range slots {
		if r != nil {
			results = append(results, *r)
		}
	}
	return results, err
}

func (d *Dispatcher) publish(ctx context.Context, t rules.Task) (Result, error) {
	id := t.AdapterID()
	p, err := t.Adapter.Publish(ctx, t.Content)
	if err != nil {
		err = perr.KeepOrWrapf(err, perr.ErrorCodePublish, "publish to %s for rule %s", id, t.RuleName)
		event.Emit(ctx, d.obs, event.Event{Kind: event.PublishFailed, Adapter: id, Rule: t.RuleName, DelayMs: t.DelayMs, Err: err})
		return Result{}, err
	}
	event.Emit(ctx, d.obs, event.Event{Kind: event.Published, Adapter: id, Rule: t.RuleName, PostID: p.ID, DelayMs: t.DelayMs})
	return Result{ID: p.ID, URL: p.URL, RuleName: t.RuleName, AdapterID: id}, nil
}
