package httpkit

import (
	"cmp"
	"compress/flate"
	"net/http"
	"time"

	"stylefix/internal/platform/config"
	phttp "stylefix/internal/platform/net/http"
	"stylefix/internal/platform/net/middleware"
)

// StackOptions tunes CommonStack; zero values take the defaults below
type StackOptions struct {
	// RequestTimeout bounds every request; keep it above the resolver deadline
	RequestTimeout time.Duration
	// SlowRequest marks access log lines at warn
	SlowRequest time.Duration
	CORSOrigins []string
}

const (
	defaultRequestTimeout = 30 * time.Second
	defaultSlowRequest    = 2 * time.Second
)

// StackFromEnv reads REQUEST_TIMEOUT, SLOW_REQUEST and CORS_ORIGINS from cfg
func StackFromEnv(cfg config.Conf) StackOptions {
	return StackOptions{
		RequestTimeout: cfg.MayDuration("REQUEST_TIMEOUT", defaultRequestTimeout),
		SlowRequest:    cfg.MayDuration("SLOW_REQUEST", defaultSlowRequest),
		CORSOrigins:    cfg.MayCSV("CORS_ORIGINS", nil),
	}
}

// CommonStack is the middleware mounted in front of every module; auth is per module, see Auth
func CommonStack(o StackOptions) []func(http.Handler) http.Handler {
	return []func(http.Handler) http.Handler{
		middleware.RequestID(),
		middleware.RealIP(),
		middleware.AccessLog(middleware.AccessLogOptions{Slow: cmp.Or(o.SlowRequest, defaultSlowRequest)}),
		middleware.RecoverJSON,
		middleware.NoCache(),
		middleware.CORS(middleware.CORSOptions{AllowedOrigins: o.CORSOrigins}),
		middleware.Compress(flate.BestSpeed),
		middleware.Heartbeat("/health"),
		middleware.StripSlashes(),
		middleware.Timeout(cmp.Or(o.RequestTimeout, defaultRequestTimeout)),
	}
}

// Auth wires the auth middleware to the platform JSON writer
func Auth(p middleware.AuthPort) func(http.Handler) http.Handler {
	return middleware.Auth(p, phttp.JSON)
}
