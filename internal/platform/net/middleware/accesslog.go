package middleware

import (
	"cmp"
	"net/http"
	"time"

	"stylefix/internal/platform/logger"
	pnet "stylefix/internal/platform/net"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// AccessLogOptions configures AccessLog; a zero Slow never marks a request slow
type AccessLogOptions struct {
	Slow time.Duration
}

// AccessLog writes one line per request and scopes the request logger to its id
// Mount it after RequestID. Server errors and slow requests log at warn
func AccessLog(opt AccessLogOptions) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := logger.WithRequest(r.Context(), pnet.RequestID(r.Context()), "")
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			next.ServeHTTP(ww, r.WithContext(ctx))

			elapsed := time.Since(start)
			status := cmp.Or(ww.Status(), http.StatusOK)
			lvl := zerolog.InfoLevel
			if status >= http.StatusInternalServerError || (opt.Slow > 0 && elapsed >= opt.Slow) {
				lvl = zerolog.WarnLevel
			}
			logger.C(ctx).WithLevel(lvl).
				Int("status", status).
				Dur("elapsed", elapsed).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("bytes", ww.BytesWritten()).
				Msg("request done")
		})
	}
}
