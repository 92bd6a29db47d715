// Package api provides the HTTP API for crosspost
package api

import (
	"net/http"

	"crosspost/internal/core/adapter"
	"crosspost/internal/platform/config"
	"crosspost/internal/platform/logger"
	phttp "crosspost/internal/platform/net/http"
	"crosspost/internal/platform/store"

	"crosspost/internal/modkit"
	"crosspost/internal/modkit/httpkit"
	"crosspost/internal/modkit/module"

	metamod "crosspost/internal/services/api/meta/module"
	publishmod "crosspost/internal/services/publish/module"
)

// Options are the API options
type Options struct {
	// Config is the root view, modules scope their own prefixes
	Config   config.Conf
	Store    *store.Store
	Adapters adapter.Map
	Logger   *logger.Logger
	// Middlewares wrap every versioned route
	Middlewares []func(http.Handler) http.Handler
	// EnableProfiler serves pprof under /debug, outside the versioned middleware stack
	EnableProfiler bool
}

// Mount builds the modules and mounts them under /api/v1
// it returns the modules so callers can reach their ports
func Mount(r phttp.Router, opt Options) []module.Module {
	log := opt.Logger
	if log == nil {
		log = logger.Get()
	}

	deps := modkit.Deps{
		Log:      *log,
		Cfg:      opt.Config,
		Adapters: opt.Adapters,
	}.FromStore(opt.Store)

	mods := []module.Module{
		metamod.New(deps),
		publishmod.New(deps),
	}

	httpkit.MountAPIV1(r, opt.Middlewares, func(api httpkit.Router) {
		phttp.MountProfiler(r, phttp.DefaultProfilerPrefix, opt.EnableProfiler)

		for _, m := range mods {
			// ports are registered under the module name for cross module lookups
			module.Register(m.Name(), m.Ports())
			m.MountRoutes(api)
		}
	})
	log.Info().Strs("modules", module.Names()).Bool("profiler", opt.EnableProfiler).Msg("api mounted")
	return mods
}
