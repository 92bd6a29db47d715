package repo

import (
	"context"
	"slices"
	"sync"
	"time"

	"crosspost/internal/core/dispatch"
	perr "crosspost/internal/platform/errors"
	ptime "crosspost/internal/platform/time"
	"crosspost/internal/services/publish/domain"
)

// LedgerMemory is the process local ledger used when postgres is not configured
type LedgerMemory struct {
	mu   sync.Mutex
	rows []domain.Publication
	now  func() time.Time
}

// NewLedgerMemory returns an empty ledger
func NewLedgerMemory() *LedgerMemory { return &LedgerMemory{now: time.Now} }

var _ domain.LedgerPort = (*LedgerMemory)(nil)

// Record upserts by adapter and post id
func (l *LedgerMemory) Record(_ context.Context, batchID string, results []dispatch.Result) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, r := range results {
		now := l.now()
		if i := l.find(r.AdapterID, r.ID); i >= 0 {
			row := &l.rows[i]
			row.BatchID, row.Rule, row.URL, row.Status = batchID, r.RuleName, r.URL, domain.StatusPublished
			row.UpdatedAt = ptime.Ptr(now)
			continue
		}
		l.rows = append(l.rows, domain.Publication{
			ID:          int64(len(l.rows) + 1),
			BatchID:     batchID,
			Rule:        r.RuleName,
			AdapterID:   r.AdapterID,
			PostID:      r.ID,
			URL:         r.URL,
			Status:      domain.StatusPublished,
			PublishedAt: now,
		})
	}
	return nil
}

// SetStatus mirrors LedgerPG.SetStatus
func (l *LedgerMemory) SetStatus(_ context.Context, adapterID, postID, status, url string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	i := l.find(adapterID, postID)
	if i < 0 {
		return perr.NotFoundf("publication %s/%s not found", adapterID, postID)
	}
	l.rows[i].Status = status
	if url != "" {
		l.rows[i].URL = url
	}
	l.rows[i].UpdatedAt = ptime.Ptr(l.now())
	return nil
}

// List pages newest first
func (l *LedgerMemory) List(_ context.Context, q domain.PublicationQuery) ([]domain.Publication, int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	match := make([]domain.Publication, 0, len(l.rows))
	for _, p := range slices.Backward(l.rows) {
		if (q.Adapter == "" || p.AdapterID == q.Adapter) &&
			(q.Rule == "" || p.Rule == q.Rule) &&
			(q.BatchID == "" || p.BatchID == q.BatchID) {
			match = append(match, p)
		}
	}
	from := min(q.Offset(), len(match))
	to := len(match)
	if q.PageSize > 0 {
		to = min(from+q.PageSize, len(match))
	}
	return slices.Clone(match[from:to]), len(match), nil
}

func (l *LedgerMemory) find(adapterID, postID string) int {
	return slices.IndexFunc(l.rows, func(p domain.Publication) bool {
		return p.AdapterID == adapterID && p.PostID == postID
	})
}
