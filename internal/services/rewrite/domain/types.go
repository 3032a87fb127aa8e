// Package domain defines the types and interfaces for the rewrite service
package domain

import (
	"fmt"

	perr "stylefix/internal/platform/errors"
)

// MaxOptions caps how many rewrites one call returns
const MaxOptions = 3

// Output is a validated generative result
type Output struct {
	Options   []string `json:"options"`
	Rationale string   `json:"rationale,omitempty"`
}

// FailureKind classifies why the rewriter produced nothing usable
type FailureKind string

// Failure kinds
const (
	FailureUnavailable  FailureKind = "unavailable"
	FailureTimeout      FailureKind = "timeout"
	FailureMalformed    FailureKind = "malformed"
	FailureStillPassive FailureKind = "still_passive"
)

// Code maps the kind onto the project error codes
func (k FailureKind) Code() perr.ErrorCode {
	switch k {
	case FailureTimeout:
		return perr.ErrorCodeTimeout
	case FailureMalformed, FailureStillPassive:
		return perr.ErrorCodeMalformed
	default:
		return perr.ErrorCodeUnavailable
	}
}

// Retryable reports whether another attempt may help
func (k FailureKind) Retryable() bool { return k != FailureUnavailable }

// Failure is the typed error the rewriter returns; it never carries partial output
type Failure struct {
	Kind     FailureKind
	Attempts int
	Err      error
}

// NewFailure builds a Failure whose cause carries the matching error code
func NewFailure(kind FailureKind, attempts int, cause error, msg string) *Failure {
	if cause == nil {
		return &Failure{Kind: kind, Attempts: attempts, Err: perr.New(kind.Code(), msg)}
	}
	return &Failure{Kind: kind, Attempts: attempts, Err: perr.Wrap(cause, kind.Code(), msg)}
}

func (f *Failure) Error() string {
	return fmt.Sprintf("rewrite %s after %d attempt(s): %v", f.Kind, f.Attempts, f.Err)
}

// Unwrap exposes the coded cause
func (f *Failure) Unwrap() error { return f.Err }
