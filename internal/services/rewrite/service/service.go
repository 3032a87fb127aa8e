// Package service implements the generative rewriter: prompt, backend call, parse and validate
package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"stylefix/internal/adapters/llm"
	"stylefix/internal/core/casing"
	"stylefix/internal/core/lexicon"
	"stylefix/internal/core/normalize"
	"stylefix/internal/core/pattern"
	perr "stylefix/internal/platform/errors"
	"stylefix/internal/platform/logger"
	gdom "stylefix/internal/services/guidance/domain"
	"stylefix/internal/services/rewrite/domain"
)

// Defaults for Config zero values
const (
	DefaultTimeout     = 20 * time.Second
	DefaultMaxAttempts = 2
)

// Config for the rewriter
type Config struct {
	Timeout     time.Duration
	MaxAttempts int
}

// Service implements domain.RewriterPort
type Service struct {
	backend domain.Backend
	guard   *llm.Guard
	lx      *lexicon.Lexicon
	cfg     Config
}

var _ domain.RewriterPort = (*Service)(nil)

// New constructs a rewriter; a nil backend always fails Unavailable and a nil guard never trips
func New(backend domain.Backend, guard *llm.Guard, cfg Config) *Service {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	return &Service{backend: backend, guard: guard, lx: lexicon.Default(), cfg: cfg}
}

// Ready reports whether a backend is wired and the guard is closed
func (s *Service) Ready() bool { return s != nil && s.backend != nil && s.guard.Allow() }

// Config returns the effective configuration
func (s *Service) Config() Config { return s.cfg }

// Rewrite asks the backend for up to three options and validates them
// Each attempt gets its own timeout (zero means the configured default), bounded by ctx.
// Malformed, still-passive and timed-out attempts are retried until MaxAttempts;
// an unreachable backend is not, since the transport already retried
func (s *Service) Rewrite(
	ctx context.Context,
	original, issue string,
	guidance []gdom.Hit,
	timeout time.Duration,
) (domain.Output, error) {
	if s == nil || s.backend == nil {
		return domain.Output{}, domain.NewFailure(domain.FailureUnavailable, 0, nil, "rewrite: no backend configured")
	}
	original = strings.TrimSpace(original)
	if original == "" {
		return domain.Output{}, domain.NewFailure(domain.FailureMalformed, 0, nil, "rewrite: empty sentence")
	}
	if timeout <= 0 {
		timeout = s.cfg.Timeout
	}

	log := logger.C(ctx).With().Str("mod", "rewrite").Logger()
	prompt := BuildPrompt(original, issue, guidance)

	var last *domain.Failure
	for attempt := 1; attempt <= s.cfg.MaxAttempts; attempt++ {
		if !s.guard.Allow() {
			return domain.Output{}, domain.NewFailure(domain.FailureUnavailable, attempt-1, nil,
				"rewrite: backend disabled until "+s.guard.DisabledUntil().Format(time.RFC3339))
		}
		if err := ctx.Err(); err != nil {
			return domain.Output{}, s.contextFailure(err, attempt-1, last)
		}

		out, f := s.attempt(ctx, original, prompt, timeout, attempt)
		if f == nil {
			s.guard.RecordSuccess()
			return out, nil
		}
		switch f.Kind {
		case domain.FailureUnavailable, domain.FailureTimeout:
			s.guard.RecordFailure()
		default:
			s.guard.RecordSuccess()
		}
		log.Debug().Err(f.Err).Str("kind", string(f.Kind)).Int("attempt", attempt).Msg("rewrite: attempt failed")

		last = f
		if !f.Kind.Retryable() {
			break
		}
	}
	return domain.Output{}, last
}

func (s *Service) attempt(
	ctx context.Context,
	original, prompt string,
	timeout time.Duration,
	n int,
) (domain.Output, *domain.Failure) {
	actx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	raw, err := s.backend.Complete(actx, systemPrompt, prompt)
	if err != nil {
		return domain.Output{}, classify(actx, err, n)
	}

	p := parseLabeled(raw)
	if len(p.options) == 0 {
		return domain.Output{}, domain.NewFailure(domain.FailureMalformed, n, nil, "rewrite: no labeled option in response")
	}

	options := s.clean(original, p.options)
	if len(options) == 0 {
		return domain.Output{}, domain.NewFailure(domain.FailureMalformed, n, nil, "rewrite: every option repeats the original")
	}

	active := options[:0:0]
	for _, o := range options {
		if !pattern.LooksPassive(o) {
			active = append(active, o)
		}
	}
	if len(active) == 0 {
		return domain.Output{}, domain.NewFailure(domain.FailureStillPassive, n, nil, "rewrite: every option still reads passive")
	}
	if len(active) > domain.MaxOptions {
		active = active[:domain.MaxOptions]
	}
	return domain.Output{Options: active, Rationale: p.why}, nil
}

// clean repairs casing and drops options equal to the original or to each other
func (s *Service) clean(original string, options []string) []string {
	seen := map[string]bool{normalize.Key(original): true}
	out := make([]string, 0, len(options))
	for _, o := range options {
		o = casing.Fix(o, original, s.lx)
		k := normalize.Key(o)
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, o)
	}
	return out
}

func (s *Service) contextFailure(err error, attempts int, last *domain.Failure) *domain.Failure {
	if last != nil && errors.Is(err, context.DeadlineExceeded) && last.Kind == domain.FailureTimeout {
		return last
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return domain.NewFailure(domain.FailureTimeout, attempts, err, "rewrite: deadline exceeded")
	}
	return domain.NewFailure(domain.FailureUnavailable, attempts, err, "rewrite: canceled")
}

// classify maps a backend error onto a failure kind
func classify(ctx context.Context, err error, n int) *domain.Failure {
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(ctx.Err(), context.DeadlineExceeded):
		return domain.NewFailure(domain.FailureTimeout, n, err, "rewrite: backend timed out")
	case perr.IsCode(err, perr.ErrorCodeTimeout):
		return domain.NewFailure(domain.FailureTimeout, n, err, "rewrite: backend timed out")
	case perr.IsCode(err, perr.ErrorCodeMalformed):
		return domain.NewFailure(domain.FailureMalformed, n, err, "rewrite: backend response malformed")
	}
	return domain.NewFailure(domain.FailureUnavailable, n, err, "rewrite: backend unavailable")
}
