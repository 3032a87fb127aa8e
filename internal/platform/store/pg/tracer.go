package pg

import (
	"context"
	"strings"

	"stylefix/internal/platform/logger"

	"github.com/rs/zerolog"
)

// QueryEvent describes one finished statement
type QueryEvent struct {
	SQL       string
	Args      any
	ElapsedUS int64
	Err       error
	Slow      bool
}

// QueryTracer receives an event per statement
type QueryTracer interface {
	OnQuery(ctx context.Context, ev QueryEvent)
}

// Tracer logs statements under component=pg with the request fields from ctx
// Failures log at error, slow statements at warn, the rest at info
func Tracer(root logger.Logger) QueryTracer {
	return logTracer{log: root.With().Str("component", "pg").Logger()}
}

type logTracer struct{ log zerolog.Logger }

func (l logTracer) OnQuery(ctx context.Context, ev QueryEvent) {
	lvl := zerolog.InfoLevel
	switch {
	case ev.Err != nil:
		lvl = zerolog.ErrorLevel
	case ev.Slow:
		lvl = zerolog.WarnLevel
	}
	log := logger.With(ctx, l.log)
	log.WithLevel(lvl).
		Float64("elapsed_ms", float64(ev.ElapsedUS)/1000).
		Bool("slow", ev.Slow).
		Str("sql", oneLine(ev.SQL)).
		Interface("args", ev.Args).
		Err(ev.Err).
		Msg("pg query")
}

// oneLine folds whitespace runs so multi-line statements fit a single log field
func oneLine(sql string) string { return strings.Join(strings.Fields(sql), " ") }
