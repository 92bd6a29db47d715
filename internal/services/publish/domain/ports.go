package domain

import (
	"context"

	"crosspost/internal/core/adapter"
	"crosspost/internal/core/content"
	"crosspost/internal/core/dispatch"
	"crosspost/internal/core/event"
)

// PublisherPort routes content through the rule set
type PublisherPort interface {
	Publish(ctx context.Context, in PublishInput) (Report, error)
	Preview(ctx context.Context, in PublishInput) (Report, error)
	Adapters() []AdapterView
}

// LifecyclePort manages posts after publication, each call is capability gated by the adapter
type LifecyclePort interface {
	Update(ctx context.Context, adapterID, postID string, c content.Content) (adapter.Post, error)
	Delete(ctx context.Context, adapterID, postID string) (bool, error)
	Feedback(ctx context.Context, adapterID, postID string) ([]adapter.Feedback, error)
	Reply(ctx context.Context, adapterID string, target adapter.FeedbackTarget, text string) (adapter.ReplyRef, error)
}

// QueryPort reads the publication ledger
type QueryPort interface {
	Publications(ctx context.Context, q PublicationQuery) ([]Publication, int, error)
	// PageSize is the effective page size for a requested one
	PageSize(n int) int
}

// LedgerPort persists publish results
type LedgerPort interface {
	Record(ctx context.Context, batchID string, results []dispatch.Result) error
	SetStatus(ctx context.Context, adapterID, postID, status, url string) error
	List(ctx context.Context, q PublicationQuery) ([]Publication, int, error)
}

// EventSinkPort stores the diagnostic events of a batch
type EventSinkPort interface {
	Write(ctx context.Context, batchID string, events []event.Event) error
}
