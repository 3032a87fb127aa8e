package domain

import (
	"context"

	"stylefix/internal/core/pattern"
)

// ResolverPort is the single public operation of the pipeline
type ResolverPort interface {
	Resolve(ctx context.Context, req Request) (PipelineResult, error)
}

// DocumentPort resolves many issues against one document
type DocumentPort interface {
	ResolveDocument(ctx context.Context, text string, issues []IssueReport, opts Request) ([]PipelineResult, error)
}

// Recorder receives one event per resolution
// Implementations must not block the caller
type Recorder interface {
	Record(ctx context.Context, ev Event) error
}

// Transformer is the deterministic rewrite table
type Transformer interface {
	Handles(category string) bool
	Transform(sentence, category string) []pattern.Rewrite
}
