// Package event carries engine diagnostics as structured callbacks instead of global log lines
package event

import (
	"context"
	"sync"
	"time"

	"crosspost/internal/platform/logger"

	"github.com/rs/zerolog"
)

// Kind classifies an engine event
type Kind string

// Kinds emitted by the evaluator and dispatcher
const (
	AdapterUnknown Kind = "adapter_unknown" // destination names an unregistered adapter, skipped
	VerifyFailed   Kind = "verify_failed"   // adapter pre-flight rejected, its tasks are dropped
	TaskDropped    Kind = "task_dropped"    // one task skipped because its adapter failed verification
	Published      Kind = "published"       // a task produced a result
	PublishFailed  Kind = "publish_failed"  // a publish error aborted the batch
	DelayCapped    Kind = "delay_capped"    // scheduler shortened a delay beyond its cap
)

// Level returns the severity the kind is logged at
func (k Kind) Level() zerolog.Level {
	switch k {
	case AdapterUnknown, VerifyFailed, TaskDropped, DelayCapped:
		return zerolog.WarnLevel
	case PublishFailed:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// Event is one diagnostic record
type Event struct {
	Kind    Kind      `json:"kind"`
	Adapter string    `json:"adapter,omitempty"`
	Rule    string    `json:"rule,omitempty"`
	PostID  string    `json:"postId,omitempty"`
	DelayMs int64     `json:"delayMs,omitempty"`
	Err     error     `json:"-"`
	At      time.Time `json:"at"`
}

// ErrText returns the error text, "" when there is none
func (e Event) ErrText() string {
	if e.Err == nil {
		return ""
	}
	return e.Err.Error()
}

// Observer receives events, implementations must be safe for concurrent use
type Observer interface {
	Observe(ctx context.Context, e Event)
}

// ObserverFunc adapts a function to Observer
type ObserverFunc func(ctx context.Context, e Event)

// Observe implements Observer
func (f ObserverFunc) Observe(ctx context.Context, e Event) { f(ctx, e) }

// Nop drops every event
var Nop Observer = ObserverFunc(func(context.Context, Event) {})

// LogObserver writes events through the request-scoped logger
type LogObserver struct {
	Component string
}

// Observe implements Observer
func (o LogObserver) Observe(ctx context.Context, e Event) {
	l := logger.C(ctx)
	ev := l.WithLevel(e.Kind.Level()).Str("event", string(e.Kind))
	if o.Component != "" {
		ev = ev.Str("component", o.Component)
	}
	if e.Adapter != "" {
		ev = ev.Str("adapter", e.Adapter)
	}
	if e.Rule != "" {
		ev = ev.Str("rule", e.Rule)
	}
	if e.PostID != "" {
		ev = ev.Str("post_id", e.PostID)
	}
	if e.DelayMs > 0 {
		ev = ev.Int64("delay_ms", e.DelayMs)
	}
	if e.Err != nil {
		ev = ev.Err(e.Err)
	}
	ev.Msg("dispatch event")
}

// Multi fans an event out to every non-nil observer in order
func Multi(obs ...Observer) Observer {
	list := make([]Observer, 0, len(obs))
	for _, o := range obs {
		if o != nil {
			list = append(list, o)
		}
	}
	return ObserverFunc(func(ctx context.Context, e Event) {
		for _, o := range list {
			o.Observe(ctx, e)
		}
	})
}

// Recorder keeps every event it sees, used per batch by services and in tests
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

// Observe implements Observer
func (r *Recorder) Observe(_ context.Context, e Event) {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
}

// Events returns a copy of the recorded events
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Count returns how many events of kind were recorded
func (r *Recorder) Count(kind Kind) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.events {
		if e.Kind == kind {
			n++
		}
	}
	return n
}

type ctxKey struct{}

// WithObserver attaches a per-call observer to ctx, Emit delivers to it in addition to the base observer
func WithObserver(ctx context.Context, o Observer) context.Context {
	return context.WithValue(ctx, ctxKey{}, o)
}

var now = time.Now // seam

// Emit delivers e to base and the ctx observer; a zero At is stamped with the current time
func Emit(ctx context.Context, base Observer, e Event) {
	if e.At.IsZero() {
		e.At = now()
	}
	if base != nil {
		base.Observe(ctx, e)
	}
	if o, ok := ctx.Value(ctxKey{}).(Observer); ok && o != nil {
		o.Observe(ctx, e)
	}
}
