package store

import (
	"time"

	"crosspost/internal/platform/config"
)

// Config aggregates per backend configuration
type Config struct {
	AppName string

	PG PGConfig
	CH CHConfig
}

// PGConfig configures postgres connectivity and tracing
type PGConfig struct {
	Enabled     bool
	URL         string
	MaxConns    int32
	LogSQL      bool
	SlowQueryMs int

	// ConnectRetries bounds the boot ping loop, PingTimeout bounds each attempt
	ConnectRetries int
	PingTimeout    time.Duration
}

// CHConfig configures clickhouse connectivity
type CHConfig struct {
	Enabled     bool
	URL         string
	ClientName  string
	ClientTag   string
	DialTimeout time.Duration
}

// ConfigFromEnv reads SERVICE_PGSQL_* and SERVICE_CLICKHOUSE_* from root
// a backend is enabled when its DBURL is set, role tags the clickhouse client info
func ConfigFromEnv(root config.Conf, role string) Config {
	pgCfg := root.Prefix("SERVICE_PGSQL_")
	chCfg := root.Prefix("SERVICE_CLICKHOUSE_")
	return Config{
		AppName: "crosspost-" + role,
		PG: PGConfig{
			Enabled:        pgCfg.Has("DBURL"),
			URL:            pgCfg.MayString("DBURL", ""),
			MaxConns:       int32(pgCfg.MayInt("MAX_CONNS", 4)),
			SlowQueryMs:    pgCfg.MayInt("SLOW_MS", 500),
			LogSQL:         pgCfg.MayBool("LOG_SQL", false),
			ConnectRetries: pgCfg.MayInt("CONNECT_RETRIES", 20),
			PingTimeout:    pgCfg.MayDuration("PING_TIMEOUT", 3*time.Second),
		},
		CH: CHConfig{
			Enabled:     chCfg.Has("DBURL"),
			URL:         chCfg.MayString("DBURL", ""),
			ClientName:  "crosspost",
			ClientTag:   role,
			DialTimeout: chCfg.MayDuration("DIAL_TIMEOUT", 5*time.Second),
		},
	}
}
