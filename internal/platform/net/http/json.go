package http

import (
	"net/http"

	"stylefix/internal/platform/net/http/bind"
)

// JSONHandler binds and validates a T from the body, calls fn and wraps the result as 200
func JSONHandler[T any](fn func(*http.Request, T) (any, error)) Handler {
	return Handle(func(r *http.Request) Response {
		in, err := bind.ParseJSON[T](r)
		if err != nil {
			return Error(err)
		}
		out, err := fn(r, in)
		if err != nil {
			return Error(err)
		}
		return OK(out)
	})
}
