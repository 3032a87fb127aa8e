package http

import (
	stdhttp "net/http"
	"strings"

	"stylefix/internal/platform/config"
	"stylefix/internal/platform/logger"

	mw "github.com/go-chi/chi/v5/middleware"
)

// DefaultProfilerPrefix is where pprof lives unless PROFILER_PREFIX moves it
const DefaultProfilerPrefix = "/debug"

// MountProfiler mounts pprof when cfg has PROFILER=true; cfg is usually the CORE_API_ scope
// It reports whether the endpoints were mounted
func MountProfiler(r Router, cfg config.Conf) bool {
	if !cfg.MayBool("PROFILER", false) {
		return false
	}
	prefix := "/" + strings.Trim(cfg.MayString("PROFILER_PREFIX", DefaultProfilerPrefix), "/")
	if prefix == "/" {
		prefix = DefaultProfilerPrefix
	}

	h := stdhttp.StripPrefix(prefix, mw.Profiler())
	serve := func(w stdhttp.ResponseWriter, req *stdhttp.Request) { h.ServeHTTP(w, req) }
	r.Get(prefix, serve)
	r.Get(prefix+"/*", serve)

	logger.Named("http").Warn().Str("prefix", prefix).Msg("pprof endpoints exposed")
	return true
}
