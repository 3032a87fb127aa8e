// Package pg opens the pgx pool behind the store's sql seam
package pg

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Config is the pool shape; zero MaxConns keeps the pgx default
type Config struct {
	URL      string
	AppName  string
	MaxConns int32
	SlowMs   int
}

// PG owns the pool plus the tracing settings adapters read
type PG struct {
	Pool   *pgxpool.Pool
	Tracer QueryTracer
	SlowMs int
}

// Option adjusts the client or its pool config before the pool is created
type Option func(*PG, *pgxpool.Config)

// WithTracer reports every statement run through the store adapter to t
func WithTracer(t QueryTracer) Option {
	return func(p *PG, _ *pgxpool.Config) { p.Tracer = t }
}

// WithPoolConfig hands the parsed pool config to fn
func WithPoolConfig(fn func(*pgxpool.Config)) Option {
	return func(_ *PG, pc *pgxpool.Config) { fn(pc) }
}

var newPool = pgxpool.NewWithConfig

// Open parses cfg.URL and creates the pool; pgx connects lazily so an unreachable server is not an error here
func Open(ctx context.Context, cfg Config, opts ...Option) (*PG, error) {
	pc, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("pg: parse url: %w", err)
	}
	if cfg.MaxConns > 0 {
		pc.MaxConns = cfg.MaxConns
	}
	if cfg.AppName != "" {
		pc.ConnConfig.RuntimeParams["application_name"] = cfg.AppName
	}
	p := &PG{SlowMs: cfg.SlowMs}
	for _, o := range opts {
		o(p, pc)
	}
	if p.Pool, err = newPool(ctx, pc); err != nil {
		return nil, fmt.Errorf("pg: new pool: %w", err)
	}
	return p, nil
}

// Close is safe on a nil client
func (p *PG) Close() {
	if p != nil && p.Pool != nil {
		p.Pool.Close()
	}
}
