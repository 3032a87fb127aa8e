// Package api provides the HTTP API for the application
package api

import (
	"context"

	"stylefix/internal/platform/config"
	"stylefix/internal/platform/logger"
	phttp "stylefix/internal/platform/net/http"
	"stylefix/internal/platform/store"

	"stylefix/internal/modkit"
	"stylefix/internal/modkit/httpkit"
	"stylefix/internal/modkit/swaggerkit"

	metamod "stylefix/internal/services/api/meta/module"
)

// Options are the API options
type Options struct {
	// Config is the unprefixed root; modules read their own CORE_* keys
	Config        config.Conf
	Store         *store.Store
	Logger        *logger.Logger
	Tokens        []string
	EnableSwagger bool
}

// Mount mounts the API service onto the given router and returns the assembled pipeline
// Run the pipeline's background work with Pipeline.RunBackground
func Mount(r phttp.Router, opt Options) Pipeline {
	// shared deps for modules
	deps := modkit.Deps{Cfg: opt.Config}
	if opt.Logger != nil {
		deps.Log = *opt.Logger
	}
	if opt.Store != nil {
		deps.PG = opt.Store.PG
		deps.CH = opt.Store.CH
	}

	auth := TokenAuth(opt.Tokens)
	p := Build(deps, auth...)

	mods := []modkit.Module{
		metamod.New(deps, modkit.WithPorts(metamod.Inputs{
			ServiceName: "stylefix-api",
			Pipeline:    p.Status,
		})),
		p.Guidance,
		p.Rewrite,
		p.Suggest,
	}

	// versioned API with a common middleware stack
	apiCfg := opt.Config.Prefix("CORE_API_")
	profiler := false
	var routed []string
	httpkit.MountAPIV1(r, httpkit.CommonStack(httpkit.StackFromEnv(apiCfg)), func(api httpkit.Router) {
		// Swagger + profiler (CORE_API_PROFILER, CORE_API_PROFILER_PREFIX)
		swaggerkit.Mount(r, opt.EnableSwagger)
		profiler = phttp.MountProfiler(r, apiCfg)

		for _, m := range mods {
			m.MountRoutes(api)
			if m.Prefix() != "" {
				routed = append(routed, m.Name()+"="+m.Prefix())
			}
		}
	})

	deps.Log.Info().
		Bool("auth", len(auth) > 0).
		Bool("swagger", opt.EnableSwagger).
		Bool("profiler", profiler).
		Strs("modules", routed).
		Msg("api: modules mounted")
	return p
}

// RunBackground starts the pipeline's background loops and returns when ctx ends
func (p Pipeline) RunBackground(ctx context.Context) error {
	return p.Suggest.Run(ctx)
}
