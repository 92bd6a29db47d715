package modkit

import (
	"crosspost/internal/core/adapter"
	"crosspost/internal/modkit/repokit"
	"crosspost/internal/platform/config"
	"crosspost/internal/platform/logger"
	"crosspost/internal/platform/store"
)

// Deps holds core dependencies passed to modules
// PG and CH are nil when the backend is disabled, modules pick no-op repos then
type Deps struct {
	Log      logger.Logger
	Cfg      config.Conf
	PG       repokit.TxRunner
	CH       store.Clickhouse
	Adapters adapter.Map
}

// FromStore copies the enabled store seams into deps, st may be nil
func (d Deps) FromStore(st *store.Store) Deps {
	if st == nil {
		return d
	}
	d.PG = st.PG
	d.CH = st.CH
	return d
}
