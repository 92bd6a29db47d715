package module

import (
	"time"

	"crosspost/internal/core/rules"
	"crosspost/internal/platform/config"
	"crosspost/internal/platform/logger"
)

// Storage selections
const (
	StoreAuto       = "auto"
	StorePostgres   = "postgres"
	StoreMemory     = "memory"
	StoreClickhouse = "clickhouse"
	StoreNone       = "none"
)

// Options holds configuration settings for the publish module
type Options struct {
	Rules         []rules.Rule
	VerifyGate    bool
	MaxDelay      time.Duration
	Ledger        string // auto, postgres, memory
	Events        string // auto, clickhouse, none
	LockTimeoutMs int
	PageSize      int
	MaxPageSize   int
	// Throttle caps in flight publish requests, 0 disables the cap
	Throttle int
}

// FromConfig reads CORE_PUBLISH_* settings, a rules file that fails to load panics like any other invalid setting
func FromConfig(cfg config.Conf) Options {
	pc := cfg.Prefix("CORE_PUBLISH_")
	o := Options{
		VerifyGate:    pc.MayBool("VERIFY_GATE", true),
		MaxDelay:      pc.MayDuration("MAX_DELAY", 0),
		Ledger:        pc.MayEnum("LEDGER", StoreAuto, StoreAuto, StorePostgres, StoreMemory),
		Events:        pc.MayEnum("EVENTS", StoreAuto, StoreAuto, StoreClickhouse, StoreNone),
		LockTimeoutMs: pc.MayInt("LOCK_TIMEOUT_MS", 2000),
		PageSize:      pc.MayInt("PAGE_SIZE", 20),
		MaxPageSize:   pc.MayInt("MAX_PAGE_SIZE", 100),
		Throttle:      pc.MayInt("THROTTLE", 64),
	}
	if path := pc.MayString("RULES_FILE", ""); path != "" {
		set, err := rules.LoadFile(path)
		if err != nil {
			logger.Get().Panic().Err(err).Str("key", pc.Key("RULES_FILE")).Str("path", path).Msg("invalid rules file")
		}
		o.Rules = set.Rules
	}
	return o
}
