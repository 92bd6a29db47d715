// Package adapters builds the adapter registry from configuration
package adapters

import (
	"strings"

	"crosspost/internal/adapters/memory"
	"crosspost/internal/core/adapter"
	"crosspost/internal/platform/config"
	perr "crosspost/internal/platform/errors"
	"crosspost/internal/platform/logger"
)

// Kinds of adapter the registry can build. Platform connectors plug in here
const (
	KindMemory = "memory"
)

// FromConfig builds one adapter per id listed in IDS, reading per-adapter keys from a scoped view
//
//	CORE_ADAPTERS_IDS=mastodon,telegram
//	CORE_ADAPTERS_MASTODON_KIND=memory
//	CORE_ADAPTERS_MASTODON_CAPS=edit,delete,reply
//	CORE_ADAPTERS_MASTODON_MAX_LENGTH=500
//	CORE_ADAPTERS_MASTODON_BASE_URL=https://mastodon.example/@me
//	CORE_ADAPTERS_MASTODON_NETWORK=mastodon.example
//
// cfg is expected to be scoped to CORE_ADAPTERS_
func FromConfig(cfg config.Conf) (adapter.Map, error) {
	log := logger.Named("adapters")

	var list []adapter.Adapter
	for _, id := range cfg.MayCSV("IDS", nil) {
		sc := cfg.Scope(id)
		caps, unknown := adapter.ParseCapabilities(sc.MayCSV("CAPS", nil)...)
		if len(unknown) > 0 {
			log.Warn().Str("adapter", id).Strs("tokens", unknown).Msg("ignoring unknown capability tokens")
		}

		// MayEnum panics on a kind this build does not know
		kind := strings.ToLower(sc.MayEnum("KIND", KindMemory, KindMemory))
		switch kind {
		case KindMemory:
			opts := []memory.Option{
				memory.WithMaxLength(sc.MayInt("MAX_LENGTH", 0)),
				memory.WithNetwork(sc.MayString("NETWORK", id)),
			}
			for c := range caps {
				opts = append(opts, memory.WithCapabilities(c))
			}
			if u := sc.MayURL("BASE_URL"); u != nil {
				opts = append(opts, memory.WithBaseURL(u.String()))
			}
			list = append(list, memory.New(id, opts...))
		default:
			return nil, perr.WithField(perr.InvalidArgf("adapter %s: no builder for kind %q", id, kind), sc.Key("KIND"))
		}
		log.Debug().Str("adapter", id).Str("kind", kind).Strs("caps", caps.List()).Msg("adapter registered")
	}
	return adapter.NewMap(list...)
}
