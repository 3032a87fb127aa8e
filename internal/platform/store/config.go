package store

import (
	"time"

	"stylefix/internal/platform/config"
)

// Config aggregates per backend configuration
type Config struct {
	// AppName is reported as application_name to postgres
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

	// Guard/boot knobs:
	ConnectRetries int           // default 20 attempts with exponential backoff capped at 2s
	PingTimeout    time.Duration // default 3s
}

// CHConfig configures clickhouse connectivity
type CHConfig struct {
	Enabled bool
	URL     string

	// ClientName and ClientTag identify this process in system.query_log
	ClientName string
	ClientTag  string
}

// FromEnv reads SERVICE_PGSQL_* and SERVICE_CLICKHOUSE_* under root
// A blank DBURL leaves that backend disabled; a set one must be an absolute URL
func FromEnv(root config.Conf, appName, clientTag string) Config {
	pgCfg := root.Prefix("SERVICE_PGSQL_")
	chCfg := root.Prefix("SERVICE_CLICKHOUSE_")

	cfg := Config{
		AppName: appName,
		PG: PGConfig{
			MaxConns:       int32(pgCfg.MayInt("MAX_CONNS", 4)),
			LogSQL:         pgCfg.MayBool("LOG_SQL", false),
			SlowQueryMs:    pgCfg.MayInt("SLOW_MS", 500),
			ConnectRetries: pgCfg.MayInt("CONNECT_RETRIES", 0),
			PingTimeout:    pgCfg.MayDuration("PING_TIMEOUT", 0),
		},
		CH: CHConfig{ClientName: appName, ClientTag: clientTag},
	}
	if pgCfg.MayString("DBURL", "") != "" {
		cfg.PG.Enabled, cfg.PG.URL = true, pgCfg.MustURL("DBURL").String()
	}
	if chCfg.MayString("DBURL", "") != "" {
		cfg.CH.Enabled, cfg.CH.URL = true, chCfg.MustURL("DBURL").String()
	}
	return cfg
}
