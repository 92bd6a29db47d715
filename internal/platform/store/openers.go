package store

import (
	"context"
	"time"

	perr "crosspost/internal/platform/errors"
	chx "crosspost/internal/platform/store/ch"
	"crosspost/internal/platform/store/pg"
)

var (
	backoffStart   = 150 * time.Millisecond
	backoffCeiling = 2 * time.Second
	sleep          = func(ctx context.Context, d time.Duration) error { // seam
		t := time.NewTimer(d)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			return nil
		}
	}
)

// openPG opens the pool and publishes the traced adapter only after a ping succeeds
func openPG(ctx context.Context, cfg Config, s *Store) (TxRunner, error) {
	var tracer pg.QueryTracer
	if cfg.PG.LogSQL {
		tracer = pg.Tracer(s.Log)
	}

	p, err := pg.Open(ctx, pg.Config{
		URL:      cfg.PG.URL,
		MaxConns: cfg.PG.MaxConns,
		SlowMs:   cfg.PG.SlowQueryMs,
		AppName:  cfg.AppName,
	}, tracer, nil)
	if err != nil {
		return nil, err
	}

	attempts := max(cfg.PG.ConnectRetries, 1)
	timeout := cfg.PG.PingTimeout
	if timeout <= 0 {
		timeout = 3 * time.Second
	}

	err = retry(ctx, attempts, func(ctx context.Context) error {
		pctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		return p.Pool.Ping(pctx)
	}, func(i int, err error) {
		s.Log.Warn().Err(err).Int("attempt", i).Int("of", attempts).Msg("postgres not ready")
	})
	if err != nil {
		p.Close()
		return nil, err
	}
	return newPGAdapter(p), nil
}

// retry calls fn up to attempts times with capped exponential backoff
// a cancelled ctx stops immediately with ErrorCodeUnavailable wrapping ctx.Err
func retry(ctx context.Context, attempts int, fn func(context.Context) error, onFail func(int, error)) error {
	var last error
	backoff := backoffStart
	for i := 1; i <= attempts; i++ {
		if last = fn(ctx); last == nil {
			return nil
		}
		if onFail != nil {
			onFail(i, last)
		}
		if ctx.Err() != nil {
			return perr.Wrap(ctx.Err(), perr.ErrorCodeUnavailable, "store: connect cancelled")
		}
		if i == attempts {
			break
		}
		if err := sleep(ctx, backoff); err != nil {
			return perr.Wrap(err, perr.ErrorCodeUnavailable, "store: connect cancelled")
		}
		backoff = min(backoff*2, backoffCeiling)
	}
	return perr.Wrapf(last, perr.ErrorCodeUnavailable, "store: not ready after %d attempts", attempts)
}

func openCH(ctx context.Context, cfg Config) (Clickhouse, error) {
	c, err := chx.Open(ctx, chx.Config{
		URL:         cfg.CH.URL,
		ClientName:  cfg.CH.ClientName,
		ClientTag:   cfg.CH.ClientTag,
		DialTimeout: cfg.CH.DialTimeout,
	})
	if err != nil {
		return nil, err
	}
	return newCHAdapter(c), nil
}
