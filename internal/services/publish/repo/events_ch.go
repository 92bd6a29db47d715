package repo

import (
	"context"

	"crosspost/internal/core/event"
	"crosspost/internal/platform/store"
	"crosspost/internal/services/publish/domain"
)

// EventsTable is the clickhouse table dispatch events are appended to
const EventsTable = "dispatch_events"

// EventsCH appends batch events to clickhouse, column order follows migrations/clickhouse
type EventsCH struct {
	ch store.Clickhouse
}

// NewEventsCH returns a sink over ch
func NewEventsCH(ch store.Clickhouse) *EventsCH {
	if ch == nil {
		panic("publish: EventsCH requires a clickhouse client")
	}
	return &EventsCH{ch: ch}
}

var _ domain.EventSinkPort = (*EventsCH)(nil)

// Write sends every event of the batch in one native batch
func (s *EventsCH) Write(ctx context.Context, batchID string, events []event.Event) error {
	if len(events) == 0 {
		return nil
	}
	rows := make([][]any, 0, len(events))
	for _, e := range events {
		rows = append(rows, []any{
			batchID,
			e.At.UTC(),
			string(e.Kind),
			e.Adapter,
			e.Rule,
			e.PostID,
			e.DelayMs,
			e.ErrText(),
		})
	}
	return s.ch.Insert(ctx, EventsTable, rows)
}

// NopSink drops events, used when clickhouse is not configured
type NopSink struct{}

// Write implements domain.EventSinkPort
func (NopSink) Write(context.Context, string, []event.Event) error { return nil }
