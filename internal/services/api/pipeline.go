package api

import (
	"net/http"
	"strings"

	"stylefix/internal/core/pattern"
	"stylefix/internal/modkit"
	"stylefix/internal/modkit/module"
	metahttp "stylefix/internal/services/api/meta/http"
	guidancemod "stylefix/internal/services/guidance/module"
	rewritemod "stylefix/internal/services/rewrite/module"
	suggestmod "stylefix/internal/services/suggest/module"
)

// Pipeline holds the modules that make up the resolver
type Pipeline struct {
	Guidance *guidancemod.Module
	Rewrite  *rewritemod.Module
	Suggest  *suggestmod.Module
}

// Build assembles guidance, rewrite and suggest from config
// mw wraps the routes of the modules that mount any; the suggest module consumes the
// other two through its Requires ports
func Build(deps modkit.Deps, mw ...func(http.Handler) http.Handler) Pipeline {
	g := guidancemod.New(deps, guidancemod.FromConfig(deps.Cfg), modkit.WithMiddlewares(mw...))
	rw := rewritemod.New(deps, rewritemod.FromConfig(deps.Cfg))

	gp := module.MustPortsOf[guidancemod.Ports](g)
	rp := module.MustPortsOf[rewritemod.Ports](rw)
	s := suggestmod.New(deps, suggestmod.FromConfig(deps.Cfg),
		modkit.WithMiddlewares(mw...),
		modkit.WithPorts(suggestmod.Requires{
			Retriever:      gp.Retriever,
			Rewriter:       rp.Rewriter,
			RewriteTimeout: rw.Service().Config().Timeout,
			TopK:           g.Service().Config().TopK,
		}),
	)
	return Pipeline{Guidance: g, Rewrite: rw, Suggest: s}
}

// Status reports tier readiness for the meta endpoint
func (p Pipeline) Status() metahttp.PipelineResponse {
	cfg := p.Suggest.Service().Config()
	out := metahttp.PipelineResponse{
		Rules: pattern.New(nil).Rules(),
		Retrieval: metahttp.TierStatus{
			Ready:   p.Guidance.Service().Ready(),
			Backend: strings.ToLower(p.Guidance.Options().Backend),
		},
		Generation: metahttp.TierStatus{
			Ready:   p.Rewrite.Service().Ready(),
			Backend: p.Rewrite.Backend(),
		},
		MaxSuggestions:     cfg.MaxSuggestions,
		DeadlineMs:         cfg.Deadline.Milliseconds(),
		DeterministicFirst: cfg.DeterministicFirst,
	}
	if g := module.MustPortsOf[rewritemod.Ports](p.Rewrite).Guard; g != nil && !g.Allow() {
		out.Generation.Detail = "guard open until " + g.DisabledUntil().UTC().Format("2006-01-02T15:04:05Z")
	}
	return out
}
