package store

import (
	"errors"

	"crosspost/internal/platform/logger"
)

// Option mutates Store during Open
type Option func(*Store) error

// WithLogger sets the logger used by subclients
func WithLogger(log logger.Logger) Option {
	return func(s *Store) error {
		s.Log = log
		return nil
	}
}

// WithPG installs a ready postgres runner, Open then skips dialing postgres
func WithPG(tx TxRunner) Option {
	return func(s *Store) error {
		if tx == nil {
			return errors.New("store: WithPG requires a runner")
		}
		s.PG = tx
		return nil
	}
}

// WithCH installs a ready clickhouse seam, Open then skips dialing clickhouse
func WithCH(ch Clickhouse) Option {
	return func(s *Store) error {
		if ch == nil {
			return errors.New("store: WithCH requires a client")
		}
		s.CH = ch
		return nil
	}
}
