// Package net holds request scoped values shared by transports
package net

import (
	"context"

	chimw "github.com/go-chi/chi/v5/middleware"
)

type ctxKey string

const keyCallerID ctxKey = "caller_id"

// WithRequestID stores id where chi's RequestID middleware would
func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, chimw.RequestIDKey, id)
}

// RequestID returns the request id on the context if present
func RequestID(ctx context.Context) string {
	return chimw.GetReqID(ctx)
}

// WithCaller annotates ctx with the authenticated caller id
func WithCaller(ctx context.Context, callerID string) context.Context {
	if callerID == "" {
		return ctx
	}
	return context.WithValue(ctx, keyCallerID, callerID)
}

// CallerID returns the authenticated caller id, empty when auth is off
func CallerID(ctx context.Context) string {
	v, _ := ctx.Value(keyCallerID).(string)
	return v
}
