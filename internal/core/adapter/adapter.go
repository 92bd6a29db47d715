// Package adapter defines the capability-gated contract every destination satisfies
//
// ID, Verify and Publish have no default and must be written by each adapter.
// Everything else comes from an embedded Base, whose lifecycle members return
// ErrorCodeNotImplemented until overridden. Callers go through the package-level
// Update, Delete, Reply and SyncFeedback helpers, which check the capability first
// and fail with ErrorCodeCapability before touching the adapter.
package adapter

import (
	"context"
	"time"

	"crosspost/internal/core/content"
	perr "crosspost/internal/platform/errors"
)

// Post is what a destination returns for a created or updated item
type Post struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// Feedback is one reaction or comment on a published post
type Feedback struct {
	ID        string    `json:"id"`
	NetworkID string    `json:"networkId"`
	PostID    string    `json:"postId"`
	Author    string    `json:"author,omitempty"`
	Text      string    `json:"text,omitempty"`
	Kind      string    `json:"kind,omitempty"` // comment, like, share
	At        time.Time `json:"at"`
}

// FeedbackTarget addresses a feedback item, NetworkID allows replying from another account
type FeedbackTarget struct {
	FeedbackID string `json:"feedbackId" validate:"required"`
	NetworkID  string `json:"networkId" validate:"required"`
}

// ReplyRef is the identifier of a created reply
type ReplyRef struct {
	ID string `json:"id"`
}

// Adapter is one destination binding
type Adapter interface {
	ID() string
	Capabilities() CapabilitySet
	Limits() Limits
	Can(c Capability) bool

	// Verify is a pre-flight connectivity and credential check, safe to repeat
	Verify(ctx context.Context) error
	// Publish creates a post, text over Limits().MaxLength fails with ErrorCodeLengthExceeded
	Publish(ctx context.Context, c content.Content) (Post, error)

	Update(ctx context.Context, postID string, c content.Content) (Post, error)
	Delete(ctx context.Context, postID string) (bool, error)
	SyncFeedback(ctx context.Context, postID string) ([]Feedback, error)
	Reply(ctx context.Context, target FeedbackTarget, text string) (ReplyRef, error)
}

// Base carries the optional members. Embed it by value and override what the destination supports
type Base struct {
	caps   CapabilitySet
	limits Limits
}

// NewBase returns a Base with the given limits and capabilities
func NewBase(limits Limits, caps ...Capability) Base {
	return Base{caps: NewCapabilitySet(caps...), limits: limits}
}

// Capabilities returns the capability set, empty by default
func (b Base) Capabilities() CapabilitySet {
	if b.caps == nil {
		return CapabilitySet{}
	}
	return b.caps
}

// Limits returns the limits, unbounded by default
func (b Base) Limits() Limits { return b.limits }

// Can reports whether the capability is present
func (b Base) Can(c Capability) bool { return b.caps.Has(c) }

// Require returns a capability error naming c when it is absent
func (b Base) Require(c Capability, op string) error {
	if b.Can(c) {
		return nil
	}
	return capabilityError(c, op)
}

// Update is not implemented by default
func (Base) Update(context.Context, string, content.Content) (Post, error) {
	return Post{}, notImplemented("update")
}

// Delete is not implemented by default
func (Base) Delete(context.Context, string) (bool, error) {
	return false, notImplemented("delete")
}

// SyncFeedback is not implemented by default
func (Base) SyncFeedback(context.Context, string) ([]Feedback, error) {
	return nil, notImplemented("syncFeedback")
}

// Reply is not implemented by default
func (Base) Reply(context.Context, FeedbackTarget, string) (ReplyRef, error) {
	return ReplyRef{}, notImplemented("reply")
}

func notImplemented(op string) error {
	return perr.WithOp(perr.Newf(perr.ErrorCodeNotImplemented, "adapter does not implement %s", op), op)
}

func capabilityError(c Capability, op string) error {
	err := perr.Newf(perr.ErrorCodeCapability, "%s requires the %q capability", op, c)
	return perr.WithOp(perr.WithField(err, string(c)), op)
}

// Update edits a post after checking the edit capability
func Update(ctx context.Context, a Adapter, postID string, c content.Content) (Post, error) {
	if !a.Can(CapEdit) {
		return Post{}, capabilityError(CapEdit, "update")
	}
	return a.Update(ctx, postID, c)
}

// Delete removes a post after checking the delete capability
func Delete(ctx context.Context, a Adapter, postID string) (bool, error) {
	if !a.Can(CapDelete) {
		return false, capabilityError(CapDelete, "delete")
	}
	return a.Delete(ctx, postID)
}

// Reply answers a feedback item after checking the reply capability
func Reply(ctx context.Context, a Adapter, target FeedbackTarget, text string) (ReplyRef, error) {
	if !a.Can(CapReply) {
		return ReplyRef{}, capabilityError(CapReply, "reply")
	}
	return a.Reply(ctx, target, text)
}

// SyncFeedback reads feedback for a post; it is read-only and needs no capability
// a nil list from the adapter is normalized to empty
func SyncFeedback(ctx context.Context, a Adapter, postID string) ([]Feedback, error) {
	out, err := a.SyncFeedback(ctx, postID)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []Feedback{}
	}
	return out, nil
}
