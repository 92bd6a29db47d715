// Package service composes rule evaluation, dispatch and the publication ledger
package service

import (
	"context"
	"slices"
	"time"

	"crosspost/internal/core/adapter"
	"crosspost/internal/core/content"
	"crosspost/internal/core/dispatch"
	"crosspost/internal/core/event"
	"crosspost/internal/core/rules"
	perr "crosspost/internal/platform/errors"
	"crosspost/internal/platform/logger"
	pnet "crosspost/internal/platform/net"
	"crosspost/internal/services/publish/domain"

	"github.com/google/uuid"
)

// Config for the publish service
type Config struct {
	// Rules is the configured rule set, requests may bring their own
	Rules []rules.Rule
	// VerifyGate is the default for requests that do not set it
	VerifyGate bool
	// MaxDelay caps deferred tasks, zero leaves delays as evaluated
	MaxDelay time.Duration
	// Scheduler runs the deferred lane, nil means the in-process timer
	Scheduler dispatch.Scheduler
	// Now is the clock weekday delays resolve against
	Now func() time.Time
	// DefaultPageSize and MaxPageSize bound ledger listings
	DefaultPageSize int
	MaxPageSize     int
}

// Service implements the publisher, lifecycle and query ports
type Service struct {
	reg    adapter.Map
	eval   *rules.Evaluator
	disp   *dispatch.Dispatcher
	ledger domain.LedgerPort
	sink   domain.EventSinkPort
	cfg    Config
	newID  func() string
}

var (
	_ domain.PublisherPort = (*Service)(nil)
	_ domain.LifecyclePort = (*Service)(nil)
	_ domain.QueryPort     = (*Service)(nil)
)

// New constructs the service, ledger and sink are required (use the memory ledger and NopSink when storage is off)
func New(reg adapter.Map, ledger domain.LedgerPort, sink domain.EventSinkPort, cfg Config) *Service {
	if ledger == nil || sink == nil {
		panic("publish.Service requires a ledger and an event sink")
	}
	if cfg.DefaultPageSize <= 0 {
		cfg.DefaultPageSize = 20
	}
	if cfg.MaxPageSize < cfg.DefaultPageSize {
		cfg.MaxPageSize = max(cfg.DefaultPageSize, 100)
	}

	var sched dispatch.Scheduler = cfg.Scheduler
	if cfg.MaxDelay > 0 {
		sched = dispatch.Capped{Max: cfg.MaxDelay, Next: cfg.Scheduler, Observer: event.LogObserver{Component: "dispatch"}}
	}

	return &Service{
		reg:    reg,
		eval:   rules.NewEvaluator(reg, rules.WithClock(cfg.Now)),
		disp:   dispatch.New(dispatch.WithScheduler(sched)),
		ledger: ledger,
		sink:   sink,
		cfg:    cfg,
		newID:  uuid.NewString,
	}
}

// Publish evaluates the rules and dispatches the resulting tasks
//
// The report always carries the batch id, the planned tasks and the events seen. When the
// batch stops early the results gathered so far are recorded and returned with the error.
// Ledger and event sink failures are logged and never fail the call.
func (s *Service) Publish(ctx context.Context, in domain.PublishInput) (domain.Report, error) {
	batchID := s.newID()
	ctx = pnet.WithRequest(ctx, "", batchID)
	rec := &event.Recorder{}
	ctx = event.WithObserver(ctx, rec)
	log := logger.C(ctx)

	rep := domain.Report{BatchID: batchID, DryRun: in.DryRun, Tasks: []domain.TaskView{}, Results: []dispatch.Result{}}

	set := in.Rules
	if len(set) == 0 {
		set = s.cfg.Rules
	}
	if len(set) == 0 {
		return rep, perr.WithField(perr.InvalidArgf("no rules configured and none supplied"), "rules")
	}

	tasks, err := s.eval.Evaluate(ctx, in.Content, set)
	rep.Tasks = taskViews(tasks)
	if err != nil {
		rep.Events = eventViews(rec.Events())
		return rep, fail(&rep, err)
	}
	if in.DryRun {
		rep.Events = eventViews(rec.Events())
		log.Debug().Int("tasks", len(tasks)).Msg("publish preview")
		return rep, nil
	}

	gate := s.cfg.VerifyGate
	if in.VerifyGate != nil {
		gate = *in.VerifyGate
	}
	results, err := s.disp.Execute(ctx, tasks, dispatch.Options{VerifyGate: gate})
	rep.Results = append(rep.Results, results...)

	// persistence outlives a cancelled request
	pctx := context.WithoutCancel(ctx)
	if lerr := s.ledger.Record(pctx, batchID, results); lerr != nil {
		log.Error().Err(lerr).Int("results", len(results)).Msg("ledger record failed")
	}
	events := rec.Events()
	if serr := s.sink.Write(pctx, batchID, events); serr != nil {
		log.Error().Err(serr).Int("events", len(events)).Msg("event sink write failed")
	}
	rep.Events = eventViews(events)

	if err != nil {
		log.Warn().Err(err).Int("tasks", len(tasks)).Int("results", len(results)).Msg("publish stopped")
		return rep, fail(&rep, err)
	}
	log.Info().Int("tasks", len(tasks)).Int("results", len(results)).Msg("publish done")
	return rep, nil
}

// Preview is Publish without dispatch
func (s *Service) Preview(ctx context.Context, in domain.PublishInput) (domain.Report, error) {
	in.DryRun = true
	return s.Publish(ctx, in)
}

// Adapters lists the registry sorted by id
func (s *Service) Adapters() []domain.AdapterView {
	out := make([]domain.AdapterView, 0, len(s.reg))
	for _, id := range s.reg.IDs() {
		a, _ := s.reg.Lookup(id)
		out = append(out, domain.AdapterView{
			ID:           id,
			Capabilities: a.Capabilities().List(),
			MaxLength:    a.Limits().MaxLength,
		})
	}
	return out
}

// Update replaces a post's content on its destination
func (s *Service) Update(ctx context.Context, adapterID, postID string, c content.Content) (adapter.Post, error) {
	a, err := s.lookup(adapterID)
	if err != nil {
		return adapter.Post{}, err
	}
	if err := content.ValidationError(content.Validate(c)); err != nil {
		return adapter.Post{}, err
	}
	p, err := adapter.Update(ctx, a, postID, c)
	if err != nil {
		return adapter.Post{}, err
	}
	s.track(ctx, adapterID, postID, domain.StatusUpdated, p.URL)
	return p, nil
}

// Delete removes a post, false means the destination did not have it
func (s *Service) Delete(ctx context.Context, adapterID, postID string) (bool, error) {
	a, err := s.lookup(adapterID)
	if err != nil {
		return false, err
	}
	ok, err := adapter.Delete(ctx, a, postID)
	if err != nil || !ok {
		return ok, err
	}
	s.track(ctx, adapterID, postID, domain.StatusDeleted, "")
	return true, nil
}

// Feedback fetches reactions and comments of a post
func (s *Service) Feedback(ctx context.Context, adapterID, postID string) ([]adapter.Feedback, error) {
	a, err := s.lookup(adapterID)
	if err != nil {
		return nil, err
	}
	fb, err := adapter.SyncFeedback(ctx, a, postID)
	if err != nil {
		return nil, err
	}
	if fb == nil {
		fb = []adapter.Feedback{}
	}
	return fb, nil
}

// Reply answers a feedback item through the adapter
func (s *Service) Reply(ctx context.Context, adapterID string, target adapter.FeedbackTarget, text string) (adapter.ReplyRef, error) {
	a, err := s.lookup(adapterID)
	if err != nil {
		return adapter.ReplyRef{}, err
	}
	return adapter.Reply(ctx, a, target, text)
}

// Publications pages the ledger, page size is clamped to the configured bounds
func (s *Service) Publications(ctx context.Context, q domain.PublicationQuery) ([]domain.Publication, int, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	q.PageSize = s.PageSize(q.PageSize)
	return s.ledger.List(ctx, q)
}

// PageSize returns the effective page size for a requested one
func (s *Service) PageSize(n int) int {
	if n <= 0 {
		return s.cfg.DefaultPageSize
	}
	return min(n, s.cfg.MaxPageSize)
}

func (s *Service) lookup(id string) (adapter.Adapter, error) {
	a, ok := s.reg.Lookup(id)
	if !ok {
		return nil, perr.WithField(perr.NotFoundf("adapter %q is not registered", id), "adapter")
	}
	return a, nil
}

// track updates the ledger after a lifecycle call, posts the ledger never saw are fine
func (s *Service) track(ctx context.Context, adapterID, postID, status, url string) {
	err := s.ledger.SetStatus(context.WithoutCancel(ctx), adapterID, postID, status, url)
	switch {
	case err == nil:
	case perr.IsCode(err, perr.ErrorCodeNotFound):
		logger.C(ctx).Debug().Str("adapter", adapterID).Str("post_id", postID).Msg("post not in ledger")
	default:
		logger.C(ctx).Error().Err(err).Str("adapter", adapterID).Str("post_id", postID).Msg("ledger status update failed")
	}
}

func fail(rep *domain.Report, err error) error {
	rep.Failure = &domain.Failure{Wire: perr.WireFrom(err), Retryable: perr.Retryable(err)}
	return err
}

func taskViews(tasks []rules.Task) []domain.TaskView {
	out := make([]domain.TaskView, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, domain.TaskView{
			Rule:      t.RuleName,
			Adapter:   t.AdapterID(),
			DelayMs:   t.DelayMs,
			Channel:   t.Channel,
			Immediate: t.Immediate(),
		})
	}
	return out
}

func eventViews(events []event.Event) []domain.EventView {
	out := make([]domain.EventView, 0, len(events))
	for _, e := range events {
		out = append(out, domain.EventView{
			Kind:    e.Kind,
			Adapter: e.Adapter,
			Rule:    e.Rule,
			PostID:  e.PostID,
			DelayMs: e.DelayMs,
			Error:   e.ErrText(),
			At:      e.At,
		})
	}
	slices.SortStableFunc(out, func(a, b domain.EventView) int { return a.At.Compare(b.At) })
	return out
}
