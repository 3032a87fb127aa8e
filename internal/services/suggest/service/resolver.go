// Package service resolves detected issues into ranked rewrite suggestions
package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"stylefix/internal/core/normalize"
	perr "stylefix/internal/platform/errors"
	"stylefix/internal/platform/logger"
	pnet "stylefix/internal/platform/net"
	gdom "stylefix/internal/services/guidance/domain"
	rdom "stylefix/internal/services/rewrite/domain"
	dom "stylefix/internal/services/suggest/domain"

	"github.com/google/uuid"
)

// Defaults and limits for Config and Request
const (
	DefaultMaxSuggestions = 3
	MaxSuggestionsLimit   = 5
	DefaultDeadline       = 25 * time.Second
	DefaultWorkers        = 4
	MaxGuidanceHits       = 3
)

// Config for the resolver
type Config struct {
	MaxSuggestions     int
	Deadline           time.Duration
	DeterministicFirst bool
	// RewriteTimeout bounds one generation attempt; zero uses the rewriter default
	RewriteTimeout time.Duration
	// TopK is passed to the retriever; zero uses the retriever default
	TopK    int
	Workers int
}

// Service implements domain.ResolverPort and domain.DocumentPort
type Service struct {
	patterns  dom.Transformer
	retriever gdom.RetrieverPort
	rewriter  rdom.RewriterPort
	recorder  dom.Recorder
	cfg       Config
	now       func() time.Time
}

var (
	_ dom.ResolverPort = (*Service)(nil)
	_ dom.DocumentPort = (*Service)(nil)
)

// Option customizes a Service
type Option func(*Service)

// WithRecorder attaches an event recorder
func WithRecorder(r dom.Recorder) Option { return func(s *Service) { s.recorder = r } }

// New builds a resolver; any collaborator may be nil and its tier is skipped
func New(patterns dom.Transformer, retriever gdom.RetrieverPort, rewriter rdom.RewriterPort, cfg Config, opts ...Option) *Service {
	if cfg.MaxSuggestions <= 0 {
		cfg.MaxSuggestions = DefaultMaxSuggestions
	}
	if cfg.MaxSuggestions > MaxSuggestionsLimit {
		cfg.MaxSuggestions = MaxSuggestionsLimit
	}
	if cfg.Deadline <= 0 {
		cfg.Deadline = DefaultDeadline
	}
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultWorkers
	}
	s := &Service{
		patterns:  patterns,
		retriever: retriever,
		rewriter:  rewriter,
		cfg:       cfg,
		now:       time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Config returns the effective configuration
func (s *Service) Config() Config { return s.cfg }

// outcome is what one pipeline run hands back to Resolve
type outcome struct {
	suggestions []dom.Suggestion
	method      dom.Method
	fallback    bool
	deadline    bool
	trace       []dom.TierAttempt
}

// Resolve runs the tiers for one issue and always returns at least one suggestion
// The only error is InvalidArgument for a blank sentence or unknown category; backend
// failures degrade to later tiers and a missed deadline returns the minimal fallback
func (s *Service) Resolve(ctx context.Context, req dom.Request) (dom.PipelineResult, error) {
	issue, err := s.prepare(req.Issue)
	if err != nil {
		return dom.PipelineResult{}, err
	}
	limit := s.limit(req.MaxSuggestions)
	deadline := req.Deadline
	if deadline <= 0 {
		deadline = s.cfg.Deadline
	}
	detFirst := s.cfg.DeterministicFirst
	if req.DeterministicFirst != nil {
		detFirst = *req.DeterministicFirst
	}

	start := s.now()
	ctx, cancel := context.WithTimeout(ctx, deadline)
	defer cancel()

	done := make(chan outcome, 1)
	go func() { done <- s.run(ctx, issue, detFirst) }()

	var out outcome
	select {
	case out = <-done:
	case <-ctx.Done():
		out = abandon(ctx, issue, outcome{})
	}
	deadlineHit := out.deadline

	res := dom.PipelineResult{
		Issue:        issue,
		Suggestions:  finalize(out.suggestions, limit),
		Method:       out.method,
		FallbackUsed: out.fallback,
		Trace:        out.trace,
		ElapsedMs:    s.now().Sub(start).Milliseconds(),
	}
	if len(res.Suggestions) == 0 {
		res.Suggestions = []dom.Suggestion{minimal(issue)}
		res.Method = dom.MethodMinimalFallback
	}

	log := logger.C(ctx)
	ev := log.Debug()
	if res.Method == dom.MethodMinimalFallback {
		ev = log.Info()
	}
	ev.Str("mod", "suggest").
		Str("rule", issue.RuleID).
		Str("category", string(issue.Category)).
		Str("method", string(res.Method)).
		Int("suggestions", len(res.Suggestions)).
		Int64("elapsed_ms", res.ElapsedMs).
		Bool("deadline", deadlineHit).
		Msg("issue resolved")

	s.record(ctx, res, deadlineHit)
	return res, nil
}

// prepare validates the issue and fills the category default
func (s *Service) prepare(in dom.IssueReport) (dom.IssueReport, error) {
	issue := in
	issue.SentenceText = strings.TrimSpace(in.SentenceText)
	if issue.SentenceText == "" {
		return dom.IssueReport{}, perr.WithField(perr.InvalidArgf("sentence must not be blank"), "sentence")
	}
	cat, err := dom.ParseCategory(string(in.Category))
	if err != nil {
		return dom.IssueReport{}, err
	}
	issue.Category = cat
	issue.Message = strings.TrimSpace(in.Message)
	return issue, nil
}

func (s *Service) limit(n int) int {
	switch {
	case n <= 0:
		return s.cfg.MaxSuggestions
	case n > MaxSuggestionsLimit:
		return MaxSuggestionsLimit
	}
	return n
}

// run walks the tiers in order; ctx carries the overall deadline
func (s *Service) run(ctx context.Context, issue dom.IssueReport, detFirst bool) outcome {
	var out outcome
	cat := string(issue.Category)

	deterministicTried := false
	if detFirst && s.patterns != nil && s.patterns.Handles(cat) {
		deterministicTried = true
		if sugs := s.deterministic(issue, dom.MethodDeterministic, &out); len(sugs) > 0 {
			out.suggestions, out.method = sugs, dom.MethodDeterministic
			return out
		}
	}

	hits := s.retrieve(ctx, issue, &out)
	if ctx.Err() != nil {
		return abandon(ctx, issue, out)
	}

	if sugs, method := s.generate(ctx, issue, hits, &out); len(sugs) > 0 {
		out.suggestions, out.method = sugs, method
		return out
	}
	if ctx.Err() != nil {
		return abandon(ctx, issue, out)
	}

	if !deterministicTried && s.patterns != nil {
		if sugs := s.deterministic(issue, dom.MethodDeterministicFallback, &out); len(sugs) > 0 {
			out.suggestions, out.method = sugs, dom.MethodDeterministicFallback
			return out
		}
	}

	out.trace = append(out.trace, dom.TierAttempt{Tier: dom.TierMinimal, Outcome: dom.OutcomeOK})
	out.suggestions, out.method = []dom.Suggestion{minimal(issue)}, dom.MethodMinimalFallback
	return out
}

func (s *Service) deterministic(issue dom.IssueReport, method dom.Method, out *outcome) []dom.Suggestion {
	t0 := s.now()
	rws := s.patterns.Transform(issue.SentenceText, string(issue.Category))
	att := dom.TierAttempt{Tier: dom.TierDeterministic, Outcome: dom.OutcomeEmpty}
	sugs := make([]dom.Suggestion, 0, len(rws))
	for _, rw := range rws {
		sugs = append(sugs, dom.Suggestion{Text: rw.Text, Source: dom.SourceDeterministic, Rule: rw.Rule}.WithMethod(method))
	}
	if len(sugs) > 0 {
		att.Outcome = dom.OutcomeOK
		att.Detail = sugs[0].Rule
	}
	att.ElapsedMs = s.now().Sub(t0).Milliseconds()
	out.trace = append(out.trace, att)
	return sugs
}

func (s *Service) retrieve(ctx context.Context, issue dom.IssueReport, out *outcome) []gdom.Hit {
	att := dom.TierAttempt{Tier: dom.TierRetrieval}
	if s.retriever == nil {
		att.Outcome = dom.OutcomeSkipped
		out.trace = append(out.trace, att)
		return nil
	}
	t0 := s.now()
	query := strings.TrimSpace(issue.Message + "\n" + issue.SentenceText)
	cat := string(issue.Category)
	if issue.Category == dom.CategoryOther {
		cat = ""
	}
	r, err := s.retriever.Retrieve(ctx, query, cat, s.cfg.TopK)
	att.ElapsedMs = s.now().Sub(t0).Milliseconds()
	switch {
	case err != nil:
		att.Outcome = outcomeOf(err)
		att.Detail = err.Error()
		logger.C(ctx).Debug().Err(err).Str("mod", "suggest").Msg("retrieval degraded")
	case len(r.Hits) == 0:
		att.Outcome = dom.OutcomeEmpty
	default:
		att.Outcome = dom.OutcomeOK
		out.fallback = r.CategoryFallback
	}
	out.trace = append(out.trace, att)
	if err != nil {
		return nil
	}
	return r.Hits
}

func (s *Service) generate(ctx context.Context, issue dom.IssueReport, hits []gdom.Hit, out *outcome) ([]dom.Suggestion, dom.Method) {
	att := dom.TierAttempt{Tier: dom.TierGeneration}
	if s.rewriter == nil {
		att.Outcome = dom.OutcomeSkipped
		out.trace = append(out.trace, att)
		return nil, ""
	}
	if len(hits) > MaxGuidanceHits {
		hits = hits[:MaxGuidanceHits]
	}
	t0 := s.now()
	res, err := s.rewriter.Rewrite(ctx, issue.SentenceText, issue.Message, hits, s.cfg.RewriteTimeout)
	att.ElapsedMs = s.now().Sub(t0).Milliseconds()
	if err != nil {
		att.Outcome = outcomeOf(err)
		att.Detail = err.Error()
		out.trace = append(out.trace, att)
		logger.C(ctx).Debug().Err(err).Str("mod", "suggest").Msg("generation degraded")
		return nil, ""
	}

	method, source := dom.MethodGenerativeOnly, dom.SourceGenerative
	if len(hits) > 0 {
		method, source = dom.MethodRetrievalGenerative, dom.SourceRetrieval
	}
	sugs := make([]dom.Suggestion, 0, len(res.Options))
	for _, opt := range res.Options {
		sugs = append(sugs, dom.Suggestion{Text: opt, Source: source, Rationale: res.Rationale}.WithMethod(method))
	}
	att.Outcome = dom.OutcomeOK
	if len(sugs) == 0 {
		att.Outcome = dom.OutcomeEmpty
	}
	out.trace = append(out.trace, att)
	return sugs, method
}

// abandon ends the run with the minimal suggestion once the deadline has passed
func abandon(ctx context.Context, issue dom.IssueReport, out outcome) outcome {
	detail := ""
	if err := ctx.Err(); err != nil {
		detail = err.Error()
	}
	out.trace = append(out.trace, dom.TierAttempt{Tier: dom.TierMinimal, Outcome: dom.OutcomeDeadline, Detail: detail})
	out.suggestions, out.method = []dom.Suggestion{minimal(issue)}, dom.MethodMinimalFallback
	out.fallback = false
	out.deadline = true
	return out
}

// outcomeOf maps a tier error onto a trace outcome
func outcomeOf(err error) dom.Outcome {
	var f *rdom.Failure
	if errors.As(err, &f) && f.Kind == rdom.FailureStillPassive {
		return dom.OutcomeStillPassive
	}
	switch perr.CodeOf(err) {
	case perr.ErrorCodeTimeout:
		return dom.OutcomeTimeout
	case perr.ErrorCodeMalformed:
		return dom.OutcomeMalformed
	}
	return dom.OutcomeUnavailable
}

// finalize drops blanks and duplicates, orders by tier rank, then caps to limit
func finalize(in []dom.Suggestion, limit int) []dom.Suggestion {
	seen := make(map[string]struct{}, len(in))
	out := make([]dom.Suggestion, 0, len(in))
	for _, sg := range in {
		sg.Text = normalize.Text(sg.Text)
		if sg.Text == "" {
			continue
		}
		k := normalize.Key(sg.Text)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, sg)
	}
	stableByRank(out)
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// stableByRank is an insertion sort; inputs are at most a handful of items
func stableByRank(s []dom.Suggestion) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j].Method().Rank() < s[j-1].Method().Rank(); j-- {
			s[j], s[j-1] = s[j-1], s[j]
		}
	}
}

// minimal is the template suggestion used when every tier came up empty
func minimal(issue dom.IssueReport) dom.Suggestion {
	var prefix string
	switch issue.Category {
	case dom.CategoryPassive:
		prefix = "Rewrite in active voice: "
	case dom.CategoryLong:
		prefix = "Split into shorter sentences: "
	case dom.CategoryModal:
		prefix = "State this as a direct instruction: "
	case dom.CategoryVerbForm:
		prefix = "Use the simple present tense: "
	default:
		prefix = "Revise for clarity: "
	}
	return dom.Suggestion{
		Text:   prefix + issue.SentenceText,
		Source: dom.SourceDeterministic,
	}.WithMethod(dom.MethodMinimalFallback)
}

func (s *Service) record(ctx context.Context, res dom.PipelineResult, deadlineHit bool) {
	if s.recorder == nil {
		return
	}
	tiers := make([]string, 0, len(res.Trace))
	for _, t := range res.Trace {
		tiers = append(tiers, string(t.Tier)+":"+string(t.Outcome))
	}
	ev := dom.Event{
		ID:           uuid.NewString(),
		At:           s.now().UTC(),
		RuleID:       res.Issue.RuleID,
		Category:     res.Issue.Category,
		Method:       res.Method,
		FallbackUsed: res.FallbackUsed,
		Suggestions:  len(res.Suggestions),
		ElapsedMs:    res.ElapsedMs,
		Tiers:        tiers,
		DeadlineHit:  deadlineHit,
		Caller:       pnet.CallerID(ctx),
	}
	if err := s.recorder.Record(context.WithoutCancel(ctx), ev); err != nil {
		logger.C(ctx).Warn().Err(err).Str("mod", "suggest").Msg("resolution event dropped")
	}
}
