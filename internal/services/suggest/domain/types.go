// Package domain defines the types and interfaces for the suggestion resolver
package domain

import (
	"strings"
	"time"

	perr "stylefix/internal/platform/errors"
)

// Category is the issue class a detector assigned
type Category string

// Categories
const (
	CategoryPassive  Category = "passive_voice"
	CategoryLong     Category = "long_sentence"
	CategoryModal    Category = "modal_verb"
	CategoryVerbForm Category = "verb_form"
	CategoryOther    Category = "other"
)

// Categories lists every known category
var Categories = []Category{CategoryPassive, CategoryLong, CategoryModal, CategoryVerbForm, CategoryOther}

// ParseCategory maps a wire string onto a Category; empty means other
func ParseCategory(s string) (Category, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return CategoryOther, nil
	}
	for _, c := range Categories {
		if string(c) == s {
			return c, nil
		}
	}
	return "", perr.WithField(perr.InvalidArgf("unknown issue category %q", s), "issue_category")
}

// Span is a byte range in the source document
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// IssueReport is one detected problem; it is a value and never mutated by the resolver
type IssueReport struct {
	RuleID       string   `json:"rule_id,omitempty"`
	Message      string   `json:"message"`
	Category     Category `json:"category"`
	SentenceText string   `json:"sentence"`
	Span         Span     `json:"span"`
}

// Source is where a suggestion came from
type Source string

// Sources
const (
	SourceRetrieval     Source = "retrieval"
	SourceGenerative    Source = "generative"
	SourceDeterministic Source = "deterministic"
)

// Confidence is a coarse trust label
type Confidence string

// Confidence levels
const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// Method tags which tier produced a result
type Method string

// Methods in ranking order
const (
	MethodDeterministic         Method = "deterministic"
	MethodDeterministicFallback Method = "deterministic-fallback"
	MethodRetrievalGenerative   Method = "retrieval+generative"
	MethodGenerativeOnly        Method = "generative-only"
	MethodMinimalFallback       Method = "minimal-fallback"
)

// Rank orders methods by trust; lower ranks first
func (m Method) Rank() int {
	switch m {
	case MethodDeterministic, MethodDeterministicFallback:
		return 0
	case MethodRetrievalGenerative:
		return 1
	case MethodGenerativeOnly:
		return 2
	}
	return 3
}

// Confidence is the label suggestions from this method carry
func (m Method) Confidence() Confidence {
	switch m {
	case MethodDeterministic, MethodDeterministicFallback, MethodRetrievalGenerative:
		return ConfidenceHigh
	case MethodGenerativeOnly:
		return ConfidenceMedium
	}
	return ConfidenceLow
}

// Suggestion is one proposed rewrite
type Suggestion struct {
	Text       string     `json:"text"`
	Source     Source     `json:"source"`
	Confidence Confidence `json:"confidence"`
	Rationale  string     `json:"rationale,omitempty"`
	Rule       string     `json:"rule,omitempty"`

	method Method
}

// Method returns the tier that produced the suggestion
func (s Suggestion) Method() Method { return s.method }

// WithMethod stamps the producing tier and its confidence
func (s Suggestion) WithMethod(m Method) Suggestion {
	s.method = m
	s.Confidence = m.Confidence()
	return s
}

// Tier names used in traces
type Tier string

// Tiers
const (
	TierDeterministic Tier = "deterministic"
	TierRetrieval     Tier = "retrieval"
	TierGeneration    Tier = "generation"
	TierMinimal       Tier = "minimal"
)

// Outcome of one tier attempt
type Outcome string

// Outcomes
const (
	OutcomeOK           Outcome = "ok"
	OutcomeEmpty        Outcome = "empty"
	OutcomeSkipped      Outcome = "skipped"
	OutcomeUnavailable  Outcome = "unavailable"
	OutcomeTimeout      Outcome = "timeout"
	OutcomeMalformed    Outcome = "malformed"
	OutcomeStillPassive Outcome = "still_passive"
	OutcomeDeadline     Outcome = "deadline"
)

// TierAttempt records one tier in the resolution trace
type TierAttempt struct {
	Tier      Tier    `json:"tier"`
	Outcome   Outcome `json:"outcome"`
	ElapsedMs int64   `json:"elapsed_ms"`
	Detail    string  `json:"detail,omitempty"`
}

// PipelineResult is the resolver output; Suggestions is never empty
type PipelineResult struct {
	Issue        IssueReport   `json:"issue"`
	Suggestions  []Suggestion  `json:"suggestions"`
	Method       Method        `json:"method"`
	FallbackUsed bool          `json:"category_fallback"`
	Trace        []TierAttempt `json:"trace,omitempty"`
	ElapsedMs    int64         `json:"elapsed_ms"`
}

// Request is one resolver call
// Zero MaxSuggestions and Deadline use the service defaults; DeterministicFirst nil does too
type Request struct {
	Issue              IssueReport
	MaxSuggestions     int
	Deadline           time.Duration
	DeterministicFirst *bool
}

// Event is what the recorder stores per resolution
type Event struct {
	ID           string
	At           time.Time
	RuleID       string
	Category     Category
	Method       Method
	FallbackUsed bool
	Suggestions  int
	ElapsedMs    int64
	Tiers        []string
	DeadlineHit  bool
	// Caller is the authenticated client id, empty when auth is off
	Caller string
}
