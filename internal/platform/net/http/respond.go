// Package http is the server side of the platform transport: router, server and response envelope
package http

import (
	"encoding/json"
	"maps"
	stdhttp "net/http"

	pnet "stylefix/internal/platform/net"
)

// Envelope wraps every JSON body: the status fields, plus data on success
type Envelope struct {
	pnet.Wire
	Data any `json:"data,omitempty"`
}

// JSON writes v with the given status
func JSON(w stdhttp.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Response is what return-style handlers produce
// A zero Status is 200; an error Body becomes an error envelope with the mapped status
type Response struct {
	Status int
	Body   any
	Header stdhttp.Header
}

// OK is a 200 carrying data
func OK(data any) Response { return Response{Body: data} }

// Error is a response whose status comes from err's code
func Error(err error) Response { return Response{Body: err} }

// Handle adapts a return-style handler to net/http
func Handle(h func(*stdhttp.Request) Response) stdhttp.HandlerFunc {
	return func(w stdhttp.ResponseWriter, r *stdhttp.Request) {
		resp := h(r)
		maps.Copy(w.Header(), resp.Header)

		status := resp.Status
		if status == 0 {
			status = stdhttp.StatusOK
		}
		if status == stdhttp.StatusNoContent {
			w.WriteHeader(status)
			return
		}
		reqID := pnet.RequestID(r.Context())
		if err, ok := resp.Body.(error); ok {
			status, wire := pnet.Error(err, reqID)
			JSON(w, status, Envelope{Wire: wire})
			return
		}
		JSON(w, status, Envelope{Wire: pnet.Status(status, reqID), Data: resp.Body})
	}
}
