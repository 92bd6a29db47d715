// Package memory is a reference adapter that keeps posts, feedback and replies in process
// It backs local runs of crosspost-api and serves as the conformance fixture in tests
package memory

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"crosspost/internal/core/adapter"
	"crosspost/internal/core/content"
	perr "crosspost/internal/platform/errors"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"
)

type post struct {
	content   content.Content
	createdAt time.Time
	updatedAt time.Time
}

type reply struct {
	ref        adapter.ReplyRef
	feedbackID string
	networkID  string
	text       string
}

// PublishHook runs before a publish or update is stored, a non-nil error aborts it
type PublishHook func(ctx context.Context, c content.Content) error

// Adapter is a mutex-guarded in-memory destination
type Adapter struct {
	adapter.Base

	id      string
	baseURL string
	network string

	caps      []adapter.Capability
	maxLength int
	verifyErr error
	hook      PublishHook
	newID     func() string
	now       func() time.Time

	mu       sync.Mutex
	posts    map[string]*post
	feedback map[string][]adapter.Feedback // by post id
	replies  []reply

	verifyCalls  atomic.Int64
	publishCalls atomic.Int64
	inflight     atomic.Int64
	maxInflight  atomic.Int64
}

// Option configures an Adapter
type Option func(*Adapter)

// WithCapabilities sets the capability tokens
func WithCapabilities(caps ...adapter.Capability) Option {
	return func(a *Adapter) { a.caps = append(a.caps, caps...) }
}

// WithMaxLength sets the text limit in characters, 0 is unbounded
func WithMaxLength(n int) Option { return func(a *Adapter) { a.maxLength = n } }

// WithBaseURL sets the prefix post URLs are built from
func WithBaseURL(u string) Option {
	return func(a *Adapter) {
		if u != "" {
			a.baseURL = strings.TrimRight(u, "/")
		}
	}
}

// WithNetwork sets the network id reported on feedback
func WithNetwork(n string) Option { return func(a *Adapter) { a.network = n } }

// WithVerifyError makes Verify fail with err
func WithVerifyError(err error) Option { return func(a *Adapter) { a.verifyErr = err } }

// WithPublishHook installs a hook run before each publish and update
func WithPublishHook(h PublishHook) Option { return func(a *Adapter) { a.hook = h } }

// WithIDs replaces the uuid post id generator
func WithIDs(next func() string) Option { return func(a *Adapter) { a.newID = next } }

// WithClock replaces the wall clock used for timestamps
func WithClock(now func() time.Time) Option { return func(a *Adapter) { a.now = now } }

// New returns an adapter registered under id
func New(id string, opts ...Option) *Adapter {
	a := &Adapter{
		id:       id,
		baseURL:  "memory://" + id,
		network:  id,
		newID:    uuid.NewString,
		now:      time.Now,
		posts:    map[string]*post{},
		feedback: map[string][]adapter.Feedback{},
	}
	for _, o := range opts {
		o(a)
	}
	a.Base = adapter.NewBase(adapter.Limits{MaxLength: a.maxLength}, a.caps...)
	return a
}

// ID implements adapter.Adapter
func (a *Adapter) ID() string { return a.id }

// Network returns the network id this adapter reports
func (a *Adapter) Network() string { return a.network }

// Verify implements adapter.Adapter
func (a *Adapter) Verify(ctx context.Context) error {
	a.verifyCalls.Add(1)
	if err := ctx.Err(); err != nil {
		return err
	}
	return a.verifyErr
}

// Publish implements adapter.Adapter
func (a *Adapter) Publish(ctx context.Context, c content.Content) (adapter.Post, error) {
	a.publishCalls.Add(1)
	n := a.inflight.Add(1)
	defer a.inflight.Add(-1)
	for {
		m := a.maxInflight.Load()
		if n <= m || a.maxInflight.CompareAndSwap(m, n) {
			break
		}
	}

	if err := a.admit(ctx, c); err != nil {
		return adapter.Post{}, err
	}

	id := a.newID()
	at := a.now()
	a.mu.Lock()
	a.posts[id] = &post{content: c.Clone(), createdAt: at, updatedAt: at}
	a.mu.Unlock()
	return a.ref(id), nil
}

// Update implements adapter.Adapter
func (a *Adapter) Update(ctx context.Context, postID string, c content.Content) (adapter.Post, error) {
	if err := a.Require(adapter.CapEdit, "update"); err != nil {
		return adapter.Post{}, err
	}
	if err := a.admit(ctx, c); err != nil {
		return adapter.Post{}, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	p, ok := a.posts[postID]
	if !ok {
		return adapter.Post{}, perr.WithField(perr.NotFoundf("post %s not found on %s", postID, a.id), "post_id")
	}
	p.content = c.Clone()
	p.updatedAt = a.now()
	return a.ref(postID), nil
}

// Delete implements adapter.Adapter; deleting an unknown post reports false
func (a *Adapter) Delete(ctx context.Context, postID string) (bool, error) {
	if err := a.Require(adapter.CapDelete, "delete"); err != nil {
		return false, err
	}
	if err := ctx.Err(); err != nil {
		return false, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.posts[postID]; !ok {
		return false, nil
	}
	delete(a.posts, postID)
	delete(a.feedback, postID)
	return true, nil
}

// SyncFeedback implements adapter.Adapter
func (a *Adapter) SyncFeedback(ctx context.Context, postID string) ([]adapter.Feedback, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.posts[postID]; !ok {
		return nil, perr.WithField(perr.NotFoundf("post %s not found on %s", postID, a.id), "post_id")
	}
	return append([]adapter.Feedback{}, a.feedback[postID]...), nil
}

// Reply implements adapter.Adapter
func (a *Adapter) Reply(ctx context.Context, target adapter.FeedbackTarget, text string) (adapter.ReplyRef, error) {
	if err := a.Require(adapter.CapReply, "reply"); err != nil {
		return adapter.ReplyRef{}, err
	}
	if err := a.admit(ctx, content.Content{Text: text}); err != nil {
		return adapter.ReplyRef{}, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.hasFeedback(target.FeedbackID) {
		return adapter.ReplyRef{}, perr.WithField(perr.NotFoundf("feedback %s not found on %s", target.FeedbackID, a.id), "feedback_id")
	}
	ref := adapter.ReplyRef{ID: a.newID()}
	a.replies = append(a.replies, reply{ref: ref, feedbackID: target.FeedbackID, networkID: target.NetworkID, text: text})
	return ref, nil
}

// AddFeedback attaches a feedback item to a published post, filling id, network and time when empty
func (a *Adapter) AddFeedback(postID string, f adapter.Feedback) (adapter.Feedback, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.posts[postID]; !ok {
		return adapter.Feedback{}, perr.NotFoundf("post %s not found on %s", postID, a.id)
	}
	if f.ID == "" {
		f.ID = a.newID()
	}
	if f.NetworkID == "" {
		f.NetworkID = a.network
	}
	if f.At.IsZero() {
		f.At = a.now()
	}
	f.PostID = postID
	a.feedback[postID] = append(a.feedback[postID], f)
	return f, nil
}

// Post returns the stored content of a post
func (a *Adapter) Post(postID string) (content.Content, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	p, ok := a.posts[postID]
	if !ok {
		return content.Content{}, false
	}
	return p.content.Clone(), true
}

// Len returns the number of stored posts
func (a *Adapter) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.posts)
}

// Replies returns the texts replied to a feedback item
func (a *Adapter) Replies(feedbackID string) []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	var out []string
	for _, r := range a.replies {
		if r.feedbackID == feedbackID {
			out = append(out, r.text)
		}
	}
	return out
}

// VerifyCalls returns how many times Verify ran
func (a *Adapter) VerifyCalls() int { return int(a.verifyCalls.Load()) }

// PublishCalls returns how many times Publish ran
func (a *Adapter) PublishCalls() int { return int(a.publishCalls.Load()) }

// MaxConcurrent returns the highest number of overlapping Publish calls seen
func (a *Adapter) MaxConcurrent() int { return int(a.maxInflight.Load()) }

// admit runs the shared pre-store checks: cancellation, length limit, hook
func (a *Adapter) admit(ctx context.Context, c content.Content) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if n := Length(c.Text); !a.Limits().Allows(n) {
		err := perr.Newf(perr.ErrorCodeLengthExceeded, "text is %d characters, %s allows %d", n, a.id, a.Limits().MaxLength)
		return perr.WithField(err, "text")
	}
	if a.hook != nil {
		return a.hook(ctx, c)
	}
	return nil
}

func (a *Adapter) hasFeedback(id string) bool {
	for _, list := range a.feedback {
		for _, f := range list {
			if f.ID == id {
				return true
			}
		}
	}
	return false
}

func (a *Adapter) ref(id string) adapter.Post {
	return adapter.Post{ID: id, URL: a.baseURL + "/" + id}
}

// Length counts characters the way destinations do: runes after NFC normalization
func Length(s string) int { return utf8.RuneCountInString(norm.NFC.String(s)) }
