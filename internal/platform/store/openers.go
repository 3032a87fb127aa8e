package store

import (
	"cmp"
	"context"
	"fmt"
	"time"

	chx "stylefix/internal/platform/store/ch"
	"stylefix/internal/platform/store/pg"

	"github.com/cenkalti/backoff/v4"
)

// openPG opens the pool, waits for a successful ping, then wraps it as a TxRunner
func openPG(ctx context.Context, cfg Config, s *Store) (TxRunner, error) {
	var opts []pg.Option
	if cfg.PG.LogSQL {
		opts = append(opts, pg.WithTracer(pg.Tracer(s.Log)))
	}
	p, err := pg.Open(ctx, pg.Config{
		URL:      cfg.PG.URL,
		AppName:  cfg.AppName,
		MaxConns: cfg.PG.MaxConns,
		SlowMs:   cfg.PG.SlowQueryMs,
	}, opts...)
	if err != nil {
		return nil, err
	}

	if err := waitReady(ctx, p, cfg.PG); err != nil {
		p.Close()
		return nil, err
	}
	return newPGAdapter(p), nil
}

// waitReady pings the pool with exponential backoff until it answers or the attempts run out
// The pool ping bypasses the tracer so retries do not flood the SQL log
func waitReady(ctx context.Context, p *pg.PG, cfg PGConfig) error {
	attempts := cmp.Or(cfg.ConnectRetries, 20)
	timeout := cmp.Or(cfg.PingTimeout, 3*time.Second)

	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = 150 * time.Millisecond
	eb.MaxInterval = 2 * time.Second
	eb.MaxElapsedTime = 0

	n := 0
	err := backoff.Retry(func() error {
		n++
		pctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		return p.Pool.Ping(pctx)
	}, backoff.WithContext(backoff.WithMaxRetries(eb, uint64(max(attempts, 1)-1)), ctx))
	switch {
	case err == nil:
		return nil
	case ctx.Err() != nil:
		return ctx.Err()
	}
	return fmt.Errorf("postgres ping failed after %d attempts: %w", n, err)
}

func openCH(ctx context.Context, cfg Config) (Clickhouse, error) {
	c, err := chx.Open(ctx, chx.Config{
		URL:        cfg.CH.URL,
		ClientName: cfg.CH.ClientName,
		ClientTag:  cfg.CH.ClientTag,
	})
	if err != nil {
		return nil, err
	}
	return newCHAdapter(c), nil
}
