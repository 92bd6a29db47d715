// Package repo provides ledger and event sink storage for the publish service
package repo

import (
	"context"
	"fmt"
	"strings"

	"crosspost/internal/core/dispatch"
	"crosspost/internal/modkit/repokit"
	"crosspost/internal/platform/store"
	pstrings "crosspost/internal/platform/strings"
	"crosspost/internal/services/publish/domain"
)

// LedgerPG keeps publications in postgres, see migrations/postgres
type LedgerPG struct {
	db repokit.TxRunner
}

// NewLedgerPG binds the ledger to db, hooks run at the start of every write tx
func NewLedgerPG(db repokit.TxRunner, hooks ...repokit.BeginHook) *LedgerPG {
	if db == nil {
		panic("publish: LedgerPG requires a non nil TxRunner")
	}
	return &LedgerPG{db: repokit.WithBeginHooks(db, hooks...)}
}

var _ domain.LedgerPort = (*LedgerPG)(nil)

// Record upserts one row per result, a republished post keeps its row and takes the new batch
func (l *LedgerPG) Record(ctx context.Context, batchID string, results []dispatch.Result) error {
	if len(results) == 0 {
		return nil
	}

	var sb strings.Builder
	sb.WriteString(`INSERT INTO publications (batch_id, rule_name, adapter_id, post_id, url, status) VALUES `)
	args := make([]any, 0, len(results)*6)
	for i, r := range results {
		if i > 0 {
			sb.WriteByte(',')
		}
		base := i*6 + 1
		fmt.Fprintf(&sb, "($%d,$%d,$%d,$%d,$%d,$%d)", base, base+1, base+2, base+3, base+4, base+5)
		args = append(args, batchID, r.RuleName, r.AdapterID, r.ID, pstrings.SQLNull(r.URL), domain.StatusPublished)
	}
	sb.WriteString(` ON CONFLICT (adapter_id, post_id) DO UPDATE SET
		batch_id = EXCLUDED.batch_id,
		rule_name = EXCLUDED.rule_name,
		url = EXCLUDED.url,
		status = EXCLUDED.status,
		updated_at = now()`)

	return repokit.WithTx(ctx, l.db, func(q repokit.Queryer) error {
		_, err := store.Exec(ctx, q, sb.String(), args...)
		return err
	})
}

// SetStatus marks a post updated or deleted, a post missing from the ledger is NotFound
func (l *LedgerPG) SetStatus(ctx context.Context, adapterID, postID, status, url string) error {
	const sql = `
UPDATE publications
SET status = $3, url = COALESCE($4, url), updated_at = now()
WHERE adapter_id = $1 AND post_id = $2`
	return repokit.WithTx(ctx, l.db, func(q repokit.Queryer) error {
		return store.ExecOne(ctx, q, sql, adapterID, postID, status, pstrings.SQLNull(url))
	})
}

// List returns one page of publications, newest first, plus the filtered total
func (l *LedgerPG) List(ctx context.Context, q domain.PublicationQuery) ([]domain.Publication, int, error) {
	where, args := ledgerFilter(q)

	total, err := store.Scalar[int64](ctx, l.db, `SELECT count(*) FROM publications`+where, args...)
	if err != nil {
		return nil, 0, err
	}

	args = append(args, q.PageSize, q.Offset())
	sql := fmt.Sprintf(`
SELECT id, batch_id, rule_name, adapter_id, post_id, COALESCE(url, ''), status, published_at, updated_at
FROM publications%s
ORDER BY published_at DESC, id DESC
LIMIT $%d OFFSET $%d`, where, len(args)-1, len(args))

	items, err := store.Many(ctx, l.db, scanPublication, sql, args...)
	if err != nil {
		return nil, 0, err
	}
	return items, int(total), nil
}

func ledgerFilter(q domain.PublicationQuery) (string, []any) {
	var conds []string
	var args []any
	add := func(col, v string) {
		if v == "" {
			return
		}
		args = append(args, v)
		conds = append(conds, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	add("adapter_id", q.Adapter)
	add("rule_name", q.Rule)
	add("batch_id", q.BatchID)
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func scanPublication(r store.Row) (domain.Publication, error) {
	var p domain.Publication
	err := r.Scan(&p.ID, &p.BatchID, &p.Rule, &p.AdapterID, &p.PostID, &p.URL, &p.Status, &p.PublishedAt, &p.UpdatedAt)
	return p, err
}
