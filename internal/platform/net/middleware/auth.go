package middleware

import (
	"net/http"

	"stylefix/internal/platform/logger"
	pnet "stylefix/internal/platform/net"
)

// AuthPort resolves the caller behind a request
type AuthPort interface {
	Parse(r *http.Request) (callerID string, err error)
}

// Auth rejects requests the port cannot resolve and stamps the caller id on ctx
// A nil port lets every request through
func Auth(p AuthPort, write func(w http.ResponseWriter, status int, body any)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if p == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqID := pnet.RequestID(r.Context())
			caller, err := p.Parse(r)
			if err != nil {
				logger.C(r.Context()).Debug().Err(err).Str("path", r.URL.Path).Msg("auth rejected")
				status, body := pnet.Error(err, reqID)
				write(w, status, body)
				return
			}
			ctx := pnet.WithCaller(r.Context(), caller)
			ctx = logger.WithRequest(ctx, reqID, caller)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
