// @title         stylefix API
// @version       0.1.0
// @description   Rewrite suggestions for style-checker issues

package main

//go:generate go tool swag init --v3.1 -g main.go -d ./,../../internal/services -o ../../internal/services/api/docs --outputTypes go

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"stylefix/internal/core/version"
	"stylefix/internal/platform/config"
	"stylefix/internal/platform/logger"
	phttp "stylefix/internal/platform/net/http"
	"stylefix/internal/platform/store"

	"stylefix/internal/services/api"
)

func main() {
	version.SetService("stylefix-api")

	// root config; modules read their own CORE_* keys
	root := config.New()
	apiCfg := root.Prefix("CORE_API_")

	// bring up logging early
	l := logger.Get()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// stores are optional; a blank DSN leaves the seam nil
	st, err := store.Open(ctx, store.FromEnv(root, "stylefix-api", "api"), store.WithLogger(*l))
	if err != nil {
		l.Panic().Err(err).Msg("store.Open failed")
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()
	// an unreachable store is reported, not fatal; its tier errors until it recovers
	gctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	if err := st.Guard(gctx); err != nil {
		l.Warn().Err(err).Msg("store guard failed")
	}
	cancel()

	// http server (reads CORE_API_PORT)
	srv := phttp.NewServer(root.Prefix("CORE_"))

	// mount our API
	p := api.Mount(
		srv.Router(),
		api.Options{
			Config:        root,
			Store:         st,
			Logger:        l,
			Tokens:        apiCfg.MayCSV("TOKENS", nil),
			EnableSwagger: apiCfg.MayBool("SWAGGER", true),
		},
	)

	go func() {
		if err := p.RunBackground(ctx); err != nil && ctx.Err() == nil {
			l.Error().Err(err).Msg("background loop stopped")
		}
	}()

	// run
	if err := srv.Run(ctx); err != nil {
		l.Panic().Err(err).Msg("http server stopped")
	}
}
