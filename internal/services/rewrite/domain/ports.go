package domain

import (
	"context"
	"time"

	gdom "stylefix/internal/services/guidance/domain"
)

// Backend is an opaque text completion service
type Backend interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
}

// RewriterPort is what the resolver consumes
// Errors are always *Failure
type RewriterPort interface {
	Rewrite(ctx context.Context, sentence, issue string, guidance []gdom.Hit, timeout time.Duration) (Output, error)
}
