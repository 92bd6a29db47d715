// Package module wires publish into the API using modkit
package module

import (
	"net/http"
	"strings"

	"crosspost/internal/modkit"
	"crosspost/internal/modkit/httpkit"
	"crosspost/internal/modkit/repokit"
	"crosspost/internal/platform/logger"
	"crosspost/internal/platform/net/middleware"
	"crosspost/internal/services/publish/domain"
	publishhttp "crosspost/internal/services/publish/http"
	"crosspost/internal/services/publish/repo"
	"crosspost/internal/services/publish/service"
)

// Ports exposed by the publish module
type Ports struct {
	Publisher domain.PublisherPort
	Lifecycle domain.LifecyclePort
	Query     domain.QueryPort
}

// Module implements modkit.Module for publish
type Module struct {
	built modkit.Built
	ports Ports
	svc   *service.Service
}

// New constructs the publish module from CORE_PUBLISH_* settings
func New(deps modkit.Deps, opts ...modkit.Option) modkit.Module {
	return NewWith(deps, FromConfig(deps.Cfg), opts...)
}

// NewWith constructs the publish module from explicit options
func NewWith(deps modkit.Deps, o Options, opts ...modkit.Option) *Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("publish"),
		modkit.WithPrefix("/publish"),
		modkit.WithMiddlewares(routeMiddlewares(o)...),
	}, opts...)...)
	log := logger.Named("publish")

	svc := service.New(deps.Adapters, ledger(deps, o), sink(deps, o), service.Config{
		Rules:           o.Rules,
		VerifyGate:      o.VerifyGate,
		MaxDelay:        o.MaxDelay,
		DefaultPageSize: o.PageSize,
		MaxPageSize:     o.MaxPageSize,
	})
	log.Info().
		Int("rules", len(o.Rules)).
		Int("adapters", len(deps.Adapters)).
		Bool("verify_gate", o.VerifyGate).
		Dur("max_delay", o.MaxDelay).
		Msg("publish module ready")

	return &Module{
		built: b,
		svc:   svc,
		ports: Ports{Publisher: svc, Lifecycle: svc, Query: svc},
	}
}

// request bodies must be JSON, bodiless requests pass through
func routeMiddlewares(o Options) []func(http.Handler) http.Handler {
	mw := []func(http.Handler) http.Handler{middleware.AllowContentType("application/json")}
	if o.Throttle > 0 {
		mw = append(mw, middleware.Throttle(o.Throttle))
	}
	return mw
}

func ledger(deps modkit.Deps, o Options) domain.LedgerPort {
	mode := strings.ToLower(o.Ledger)
	if deps.PG == nil || mode == StoreMemory {
		if mode == StorePostgres {
			logger.Named("publish").Warn().Msg("postgres ledger requested but postgres is disabled, using memory")
		}
		return repo.NewLedgerMemory()
	}
	return repo.NewLedgerPG(deps.PG, repokit.LockTimeout(o.LockTimeoutMs))
}

func sink(deps modkit.Deps, o Options) domain.EventSinkPort {
	mode := strings.ToLower(o.Events)
	if deps.CH == nil || mode == StoreNone {
		if mode == StoreClickhouse {
			logger.Named("publish").Warn().Msg("clickhouse events requested but clickhouse is disabled, dropping events")
		}
		return repo.NopSink{}
	}
	return repo.NewEventsCH(deps.CH)
}

// Name satisfies modkit.Module
func (m *Module) Name() string { return m.built.Name }

// Ports satisfies modkit.Module
func (m *Module) Ports() any { return m.ports }

// MountRoutes satisfies modkit.Module
func (m *Module) MountRoutes(r httpkit.Router) {
	m.built.Mount(r, func(rr httpkit.Router) { publishhttp.Register(rr, m.svc) })
}
