// Package module wires meta endpoints into the API
package module

import (
	"net/http"
	"time"

	modkit "stylefix/internal/modkit"
	"stylefix/internal/modkit/httpkit"
	str "stylefix/internal/platform/strings"

	metahttp "stylefix/internal/services/api/meta/http"
)

// Module serves health, readiness, build info and pipeline status
type Module struct {
	name   string
	prefix string
	mws    []func(http.Handler) http.Handler
	deps   metahttp.Deps
}

// Inputs customizes the meta endpoints; pass it with modkit.WithPorts
type Inputs struct {
	ServiceName string
	Pipeline    func() metahttp.PipelineResponse
}

// New constructs a meta module; store pings come from deps when set
func New(deps modkit.Deps, opts ...modkit.Option) *Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("meta"),
		modkit.WithPrefix("/meta"),
	}, opts...)...)

	in := Inputs{ServiceName: "stylefix-api"}
	if p, ok := b.Ports.(Inputs); ok {
		in = p
	}
	d := metahttp.Deps{
		ServiceName: in.ServiceName,
		StartedAt:   time.Now(),
		Pipeline:    in.Pipeline,
	}
	// keep nil interfaces nil so readiness reports "skipped"
	if deps.PG != nil {
		d.PG = deps.PG
	}
	if deps.CH != nil {
		d.CH = deps.CH
	}
	return &Module{name: b.Name, prefix: b.Prefix, mws: b.Mw, deps: d}
}

// Name satisfies modkit.Module
func (m *Module) Name() string { return str.MustString(m.name, "meta") }

// Prefix is the normalized mount path
func (m *Module) Prefix() string { return str.MustPrefix(m.prefix) }

// Ports satisfies modkit.Module; meta exports nothing
func (m *Module) Ports() any { return nil }

// MountRoutes satisfies modkit.Module
func (m *Module) MountRoutes(r httpkit.Router) {
	httpkit.MountUnder(r, m.Prefix(), m.mws, func(rr httpkit.Router) {
		metahttp.Register(rr, m.deps)
	})
}

var _ modkit.Module = (*Module)(nil)
