package main

import (
	"context"
	"os"

	"stylefix/internal/modkit"
	"stylefix/internal/platform/config"
	"stylefix/internal/platform/logger"
	"stylefix/internal/platform/store"
)

// initLogger sends logs to stderr so stdout stays clean for results and MCP frames
func initLogger(level string) {
	opt := logger.FromEnv()
	if os.Getenv("LOG_LEVEL") == "" {
		opt.Level = level
	}
	opt.Writer = os.Stderr
	opt.Component = "cli"
	logger.Init(opt)
}

// openDeps opens only the stores whose DSN is set
func openDeps(ctx context.Context) (modkit.Deps, func(), error) {
	root := config.New()
	l := logger.Get()

	cfg := store.FromEnv(root, "stylefix", "cli")
	if cfg.PG.ConnectRetries == 0 {
		cfg.PG.ConnectRetries = 3
	}
	st, err := store.Open(ctx, cfg, store.WithLogger(*l))
	if err != nil {
		return modkit.Deps{}, func() {}, err
	}
	closeFn := func() {
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}
	return modkit.Deps{Log: *l, Cfg: root, PG: st.PG, CH: st.CH}, closeFn, nil
}
