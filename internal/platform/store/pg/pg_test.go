package pg

import (
	"context"
	"errors"
	"strings"
	"testing"

	"stylefix/internal/platform/testkit"

	"github.com/jackc/pgx/v5/pgxpool"
)

const dsn = "postgres://stylefix:secret@db:5432/stylefix?sslmode=disable"

func TestOpen_ParseError(t *testing.T) {
	_, err := Open(context.Background(), Config{URL: "://bad"})
	if err == nil || !strings.HasPrefix(err.Error(), "pg: parse url") {
		t.Fatalf("Open = %v", err)
	}
}

func TestOpen_PoolError(t *testing.T) {
	testkit.Seam(t, &newPool, func(context.Context, *pgxpool.Config) (*pgxpool.Pool, error) {
		return nil, errors.New("boom")
	})

	if _, err := Open(context.Background(), Config{URL: dsn}); err == nil || !strings.Contains(err.Error(), "boom") {
		t.Fatalf("Open = %v", err)
	}
}

func TestOpen_AppliesConfigAndOptions(t *testing.T) {
	var seen *pgxpool.Config
	testkit.Seam(t, &newPool, func(_ context.Context, pc *pgxpool.Config) (*pgxpool.Pool, error) {
		seen = pc
		// zero pool; never closed
		return &pgxpool.Pool{}, nil
	})

	tr := &recorder{}
	p, err := Open(context.Background(),
		Config{URL: dsn, AppName: "stylefix-api", MaxConns: 7, SlowMs: 250},
		WithTracer(tr),
		WithPoolConfig(func(pc *pgxpool.Config) { pc.MinConns = 1 }),
	)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if seen.MaxConns != 7 || seen.MinConns != 1 {
		t.Fatalf("pool conns = %d/%d", seen.MinConns, seen.MaxConns)
	}
	if got := seen.ConnConfig.RuntimeParams["application_name"]; got != "stylefix-api" {
		t.Fatalf("application_name = %q", got)
	}
	if p.SlowMs != 250 || p.Tracer != tr {
		t.Fatalf("client = %+v", p)
	}
}

func TestClose_NilSafe(t *testing.T) {
	var p *PG
	p.Close()
	(&PG{}).Close()
}
