package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"crosspost/internal/adapters"
	"crosspost/internal/modkit/repokit"
	"crosspost/internal/platform/config"
	"crosspost/internal/platform/logger"
	phttp "crosspost/internal/platform/net/http"
	"crosspost/internal/platform/net/middleware"
	"crosspost/internal/platform/store"
	"crosspost/migrations"

	"crosspost/internal/services/api"
)

func main() {
	root := config.New()
	coreCfg := root.Prefix("CORE_")
	apiCfg := root.Prefix("CORE_API_")

	// bring up logging early
	l := logger.Get()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// postgres and clickhouse are each enabled by their DBURL
	storeCfg := store.ConfigFromEnv(root, "api")
	st, err := store.Open(ctx, storeCfg, store.WithLogger(*l))
	if err != nil {
		l.Panic().Err(err).Msg("store.Open failed")
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()

	if apiCfg.MayBool("MIGRATE", true) {
		if err := store.Migrate(storeCfg, migrations.FS, *l); err != nil {
			l.Panic().Err(err).Msg("migrations failed")
		}
	}
	repokit.MustGuard(ctx, st)

	reg, err := adapters.FromConfig(root.Prefix("CORE_ADAPTERS_"))
	if err != nil {
		l.Panic().Err(err).Msg("adapter registry")
	}

	// http server (reads CORE_API_PORT)
	srv := phttp.NewServer(coreCfg)

	api.Mount(srv.Router(), api.Options{
		Config:         root,
		Store:          st,
		Adapters:       reg,
		Logger:         l,
		EnableProfiler: apiCfg.MayBool("PROFILER", false),
		Middlewares: middleware.Defaults(middleware.Options{
			Timeout: apiCfg.MayDuration("TIMEOUT", 0),
			Slow:    apiCfg.MayDuration("SLOW", 0),
			Origins: apiCfg.MayCSV("CORS_ORIGINS", nil),
		}),
	})

	if err := srv.Run(ctx); err != nil {
		l.Panic().Err(err).Msg("http server stopped")
	}
}
