package api

import (
	"crypto/subtle"
	"net/http"
	"strconv"
	"strings"

	"stylefix/internal/modkit/httpkit"
	perr "stylefix/internal/platform/errors"
)

// TokenAuth returns bearer middleware accepting any of tokens; no tokens means no auth
// The caller id is the token's position in the list, never the token itself
func TokenAuth(tokens []string) []func(http.Handler) http.Handler {
	keys := make([][]byte, 0, len(tokens))
	for _, t := range tokens {
		if t = strings.TrimSpace(t); t != "" {
			keys = append(keys, []byte(t))
		}
	}
	if len(keys) == 0 {
		return nil
	}
	port := httpkit.NewPortFunc(func(token string) (string, error) {
		got := []byte(token)
		for i, k := range keys {
			if subtle.ConstantTimeCompare(got, k) == 1 {
				return "client-" + strconv.Itoa(i+1), nil
			}
		}
		return "", perr.Unauthorizedf("unknown token")
	})
	return []func(http.Handler) http.Handler{httpkit.Auth(port)}
}
