// Package module wires the suggestion resolver into the API
package module

import (
	"context"
	"net/http"
	"time"

	"stylefix/internal/core/pattern"
	"stylefix/internal/modkit"
	"stylefix/internal/modkit/httpkit"
	str "stylefix/internal/platform/strings"
	gdom "stylefix/internal/services/guidance/domain"
	rdom "stylefix/internal/services/rewrite/domain"
	"stylefix/internal/services/suggest/domain"
	suggesthttp "stylefix/internal/services/suggest/http"
	"stylefix/internal/services/suggest/repo"
	"stylefix/internal/services/suggest/service"
)

// schemaTimeout bounds creating the events table at startup
const schemaTimeout = 10 * time.Second

// Requires lists the ports the resolver consumes; pass it with modkit.WithPorts
// Nil members disable their tier
type Requires struct {
	Retriever      gdom.RetrieverPort
	Rewriter       rdom.RewriterPort
	RewriteTimeout time.Duration
	TopK           int
}

// Ports exposed by the suggest module
type Ports struct {
	Resolver domain.ResolverPort
	Document domain.DocumentPort
}

// Module implements the suggest module
type Module struct {
	deps   modkit.Deps
	name   string
	prefix string
	mws    []func(http.Handler) http.Handler
	ports  Ports
	svc    *service.Service
	events *repo.Events
}

// New constructs the suggest module
func New(deps modkit.Deps, o Options, opts ...modkit.Option) *Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("suggest"),
		modkit.WithPrefix("/suggestions"),
	}, opts...)...)

	var in Requires
	if p, ok := b.Ports.(Requires); ok {
		in = p
	}

	log := deps.Log.With().Str("mod", "suggest").Logger()

	var svcOpts []service.Option
	var events *repo.Events
	if o.Events.Enabled {
		if deps.CH == nil {
			log.Warn().Msg("suggest: events enabled but clickhouse is disabled")
		} else {
			events = repo.NewEvents(deps.CH, repo.EventsConfig{
				Buffer:     o.Events.Buffer,
				Batch:      o.Events.Batch,
				FlushEvery: o.Events.FlushEvery,
			})
			ctx, cancel := context.WithTimeout(context.Background(), schemaTimeout)
			if err := events.EnsureSchema(ctx); err != nil {
				log.Warn().Err(err).Msg("suggest: events table unavailable, recording disabled")
				events = nil
			}
			cancel()
		}
	}
	if events != nil {
		svcOpts = append(svcOpts, service.WithRecorder(events))
	}

	svc := service.New(
		pattern.New(nil),
		in.Retriever,
		in.Rewriter,
		o.Service(in.RewriteTimeout, in.TopK),
		svcOpts...,
	)

	cfg := svc.Config()
	log.Info().
		Int("max_suggestions", cfg.MaxSuggestions).
		Dur("deadline", cfg.Deadline).
		Bool("deterministic_first", cfg.DeterministicFirst).
		Bool("retriever", in.Retriever != nil).
		Bool("rewriter", in.Rewriter != nil).
		Bool("events", events != nil).
		Msg("suggest: resolver configured")

	return &Module{
		deps:   deps,
		name:   b.Name,
		prefix: b.Prefix,
		mws:    b.Mw,
		ports:  Ports{Resolver: svc, Document: svc},
		svc:    svc,
		events: events,
	}
}

// Service returns the resolver
func (m *Module) Service() *service.Service { return m.svc }

// Run flushes resolution events until ctx ends; it returns at once when recording is off
func (m *Module) Run(ctx context.Context) error {
	if m.events == nil {
		return nil
	}
	return m.events.Run(ctx)
}

// Name satisfies modkit.Module
func (m *Module) Name() string { return str.MustString(m.name, "suggest") }

// Ports satisfies modkit.Module
func (m *Module) Ports() any { return m.ports }

// Prefix satisfies modkit.Module
func (m *Module) Prefix() string { return str.MustPrefix(m.prefix) }

// MountRoutes satisfies modkit.Module
func (m *Module) MountRoutes(r httpkit.Router) {
	httpkit.MountUnder(r, m.Prefix(), m.mws, func(rr httpkit.Router) {
		suggesthttp.Register(rr, m.svc)
	})
}

var _ modkit.Module = (*Module)(nil)
