// Package logger owns the process zerolog root and request-scoped children
package logger

import (
	"cmp"
	"context"
	"io"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"stylefix/internal/core/version"
	"stylefix/internal/platform/config/raw"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/pkgerrors"
)

// Logger is the project-wide logging type
type Logger = zerolog.Logger

// Options shape the root logger
type Options struct {
	Level       string
	Format      string // console or json
	Service     string // defaults to the build's service name
	Component   string
	Writer      io.Writer // defaults to stdout
	WithCaller  bool
	SampleEvery int
}

// FromEnv reads LOG_LEVEL, LOG_FORMAT, LOG_SERVICE, LOG_COMPONENT, LOG_CALLER and LOG_SAMPLE_EVERY
// platform/config logs, so this reads through config/raw
func FromEnv() Options {
	env := raw.New().Prefix("LOG_")
	return Options{
		Level:       env.Get("LEVEL", "debug"),
		Format:      strings.ToLower(env.Get("FORMAT", "console")),
		Service:     env.Get("SERVICE", ""),
		Component:   env.Get("COMPONENT", ""),
		WithCaller:  env.GetBool("CALLER", false),
		SampleEvery: env.GetInt("SAMPLE_EVERY", 0),
	}
}

func init() {
	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack
	zerolog.TimeFieldFormat = time.RFC3339Nano
}

// New builds a logger from opt; every line carries service and version
func New(opt Options) Logger {
	var w io.Writer = os.Stdout
	if opt.Writer != nil {
		w = opt.Writer
	}
	if opt.Format == "console" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	build := version.Info()
	c := zerolog.New(w).Level(parseLevel(opt.Level)).With().Timestamp().
		Str("service", cmp.Or(opt.Service, build.Service)).
		Str("version", build.Version)
	if opt.Component != "" {
		c = c.Str("component", opt.Component)
	}
	if opt.WithCaller {
		c = c.Caller()
	}
	l := c.Logger()
	if opt.SampleEvery > 1 {
		l = l.Sample(&zerolog.BasicSampler{N: uint32(opt.SampleEvery)})
	}
	return l
}

var (
	mu   sync.Mutex
	root atomic.Pointer[Logger]
)

// Init installs New(opt) as the root logger unless Init or Get already installed one
func Init(opt Options) { install(func() Logger { return New(opt) }) }

// Get returns the root logger, building it from FromEnv on first use
func Get() *Logger {
	if l := root.Load(); l != nil {
		return l
	}
	install(func() Logger { return New(FromEnv()) })
	return root.Load()
}

func install(build func() Logger) {
	mu.Lock()
	defer mu.Unlock()
	if root.Load() == nil {
		l := build()
		root.Store(&l)
	}
}

// parseLevel accepts zerolog level names plus "warning"; anything else is debug
func parseLevel(s string) zerolog.Level {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "warning" {
		s = "warn"
	}
	lvl, err := zerolog.ParseLevel(s)
	if err != nil || s == "" {
		return zerolog.DebugLevel
	}
	return lvl
}

type ctxKey struct{ name string }

var (
	keyRequestID = ctxKey{"req_id"}
	keyCallerID  = ctxKey{"caller_id"}
)

// WithRequest annotates ctx with request scoped log fields; empty values are skipped
func WithRequest(ctx context.Context, reqID, callerID string) context.Context {
	if reqID != "" {
		ctx = context.WithValue(ctx, keyRequestID, reqID)
	}
	if callerID != "" {
		ctx = context.WithValue(ctx, keyCallerID, callerID)
	}
	return ctx
}

// C returns the root logger enriched from ctx (request_id, caller_id)
func C(ctx context.Context) *Logger {
	ll := With(ctx, *Get())
	return &ll
}

// With adds the request fields carried by ctx to l
func With(ctx context.Context, l Logger) Logger {
	b := l.With()
	if s, ok := ctx.Value(keyRequestID).(string); ok && s != "" {
		b = b.Str("request_id", s)
	}
	if s, ok := ctx.Value(keyCallerID).(string); ok && s != "" {
		b = b.Str("caller_id", s)
	}
	return b.Logger()
}

// Named returns a child logger with a component field
func Named(component string) *Logger {
	if component == "" {
		return Get()
	}
	ll := Get().With().Str("component", component).Logger()
	return &ll
}
