// Package rules turns a content item and an ordered rule set into publish tasks
package rules

import (
	"context"
	"time"

	"crosspost/internal/core/adapter"
	"crosspost/internal/core/content"
	"crosspost/internal/core/delay"
	"crosspost/internal/core/event"
	"crosspost/internal/core/match"
)

// OptionChannel is the content option a destination's channel override is written to
const OptionChannel = "channel"

// Destination is one publish target of a rule
type Destination struct {
	Adapter string `json:"adapter" yaml:"adapter" validate:"required"`
	Delay   any    `json:"delay,omitempty" yaml:"delay,omitempty" validate:"omitempty,delay"`
	Channel string `json:"channel,omitempty" yaml:"channel,omitempty"`
}

// Rule is a named filter with ordered destinations
type Rule struct {
	Name    string            `json:"name" yaml:"name" validate:"required"`
	If      *match.Conditions `json:"if,omitempty" yaml:"if,omitempty"`
	Publish []Destination     `json:"publish" yaml:"publish" validate:"min=1,dive"`
}

// Task is one resolved rule and destination pairing, transient and never persisted
type Task struct {
	Adapter  adapter.Adapter
	Content  content.Content
	DelayMs  int64
	Channel  string
	RuleName string
}

// AdapterID returns the task's adapter identifier
func (t Task) AdapterID() string { return t.Adapter.ID() }

// Immediate reports whether the task runs without delay
func (t Task) Immediate() bool { return t.DelayMs == 0 }

// Evaluator matches content against rules and resolves destinations through a registry
type Evaluator struct {
	reg       adapter.Registry
	validator content.Validator
	now       func() time.Time
	obs       event.Observer
}

// Option configures an Evaluator
type Option func(*Evaluator)

// WithValidator replaces the default content validator
func WithValidator(v content.Validator) Option {
	return func(e *Evaluator) {
		if v != nil {
			e.validator = v
		}
	}
}

// WithClock sets the clock weekday delays are resolved against
func WithClock(now func() time.Time) Option {
	return func(e *Evaluator) {
		if now != nil {
			e.now = now
		}
	}
}

// WithObserver sets the observer for skip warnings
func WithObserver(o event.Observer) Option {
	return func(e *Evaluator) {
		if o != nil {
			e.obs = o
		}
	}
}

// NewEvaluator builds an evaluator over reg
func NewEvaluator(reg adapter.Registry, opts ...Option) *Evaluator {
	e := &Evaluator{
		reg:       reg,
		validator: content.DefaultValidator(),
		now:       time.Now,
		obs:       event.LogObserver{Component: "rules"},
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Evaluate validates c and returns one task per matching rule and resolvable destination, in rule order
//
// Invalid content fails before any rule is looked at. An unknown adapter skips that
// destination with an adapter_unknown event. An invalid delay stops evaluation and
// returns the tasks built so far together with the error.
func (e *Evaluator) Evaluate(ctx context.Context, c content.Content, rules []Rule) ([]Task, error) {
	if err := content.ValidationError(e.validator.Validate(c)); err != nil {
		return nil, err
	}

	now := e.now()
	tasks := make([]Task, 0, len(rules))
	for _, r := range rules {
		if !match.Matches(c, r.If) {
			continue
		}
		for _, d := range r.Publish {
			a, ok := e.reg.Lookup(d.Adapter)
			if !ok {
				event.Emit(ctx, e.obs, event.Event{Kind: event.AdapterUnknown, Adapter: d.Adapter, Rule: r.Name})
				continue
			}
			ms, err := delay.Parse(d.Delay, now)
			if err != nil {
				return tasks, err
			}

			clone := c.Clone()
			if d.Channel != "" {
				if clone.Options == nil {
					clone.Options = map[string]any{}
				}
				clone.Options[OptionChannel] = d.Channel
			}
			tasks = append(tasks, Task{
				Adapter:  a,
				Content:  clone,
				DelayMs:  ms,
				Channel:  d.Channel,
				RuleName: r.Name,
			})
		}
	}
	return tasks, nil
}
