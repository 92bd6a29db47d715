// Package domain defines the types and ports of the publish service
package domain

import (
	"time"

	"crosspost/internal/core/adapter"
	"crosspost/internal/core/content"
	"crosspost/internal/core/dispatch"
	"crosspost/internal/core/event"
	"crosspost/internal/core/rules"
	perr "crosspost/internal/platform/errors"
)

// PublishInput is one routing request
// Rules overrides the configured rule set when present, VerifyGate overrides the configured gate
type PublishInput struct {
	Content    content.Content `json:"content"`
	Rules      []rules.Rule    `json:"rules,omitempty" validate:"omitempty,dive"`
	VerifyGate *bool           `json:"verifyGate,omitempty"`
	DryRun     bool            `json:"dryRun,omitempty"`
}

// TaskView is the wire form of a planned task
type TaskView struct {
	Rule      string `json:"rule"`
	Adapter   string `json:"adapter"`
	DelayMs   int64  `json:"delayMs"`
	Channel   string `json:"channel,omitempty"`
	Immediate bool   `json:"immediate"`
}

// EventView is the wire form of a diagnostic event
type EventView struct {
	Kind    event.Kind `json:"kind"`
	Adapter string     `json:"adapter,omitempty"`
	Rule    string     `json:"rule,omitempty"`
	PostID  string     `json:"postId,omitempty"`
	DelayMs int64      `json:"delayMs,omitempty"`
	Error   string     `json:"error,omitempty"`
	At      time.Time  `json:"at"`
}

// Failure describes why a batch stopped, results gathered before it are still reported
type Failure struct {
	perr.Wire
	Retryable bool `json:"retryable"`
}

// Report is the outcome of one publish call
type Report struct {
	BatchID string            `json:"batchId"`
	DryRun  bool              `json:"dryRun,omitempty"`
	Tasks   []TaskView        `json:"tasks"`
	Results []dispatch.Result `json:"results"`
	Events  []EventView       `json:"events,omitempty"`
	Failure *Failure          `json:"failure,omitempty"`
}

// AdapterView describes a registered destination
type AdapterView struct {
	ID           string   `json:"id"`
	Capabilities []string `json:"capabilities"`
	MaxLength    int      `json:"maxLength,omitempty"`
}

// Publication is one ledger row: where a rule put a post
type Publication struct {
	ID          int64      `json:"id"`
	BatchID     string     `json:"batchId"`
	Rule        string     `json:"rule"`
	AdapterID   string     `json:"adapterId"`
	PostID      string     `json:"postId"`
	URL         string     `json:"url,omitempty"`
	Status      string     `json:"status"`
	PublishedAt time.Time  `json:"publishedAt"`
	UpdatedAt   *time.Time `json:"updatedAt,omitempty"`
}

// Publication statuses
const (
	StatusPublished = "published"
	StatusUpdated   = "updated"
	StatusDeleted   = "deleted"
)

// PublicationQuery filters and pages the ledger, Page is 1 based
type PublicationQuery struct {
	Adapter  string
	Rule     string
	BatchID  string
	Page     int
	PageSize int
}

// Offset returns the row offset for the page
func (q PublicationQuery) Offset() int { return max(q.Page-1, 0) * q.PageSize }

// UpdateInput replaces the content of a published post
type UpdateInput struct {
	Content content.Content `json:"content"`
}

// ReplyInput answers one feedback item
type ReplyInput struct {
	Target adapter.FeedbackTarget `json:"target"`
	Text   string                 `json:"text" validate:"required"`
}

// DeleteResult reports whether the destination had the post
type DeleteResult struct {
	Deleted bool `json:"deleted"`
}
