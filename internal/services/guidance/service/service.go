// Package service implements knowledge retrieval over the guidance corpus
package service

import (
	"context"
	"sort"
	"strings"
	"time"

	perr "stylefix/internal/platform/errors"
	"stylefix/internal/platform/logger"
	dom "stylefix/internal/services/guidance/domain"
)

// Defaults for Config zero values
const (
	DefaultTopK          = 5
	DefaultMinSimilarity = 0.28
	DefaultCategoryBoost = 0.05
	DefaultTimeout       = 3 * time.Second
)

// ErrUnavailable is returned when no index or embedder is wired
var ErrUnavailable = perr.New(perr.ErrorCodeUnavailable, "guidance: index not initialized")

// Config for the retriever
type Config struct {
	TopK          int
	MinSimilarity float64
	CategoryBoost float64
	Timeout       time.Duration
}

// Service implements domain.RetrieverPort
type Service struct {
	emb dom.Embedder
	idx dom.VectorIndex
	cfg Config
}

var _ dom.RetrieverPort = (*Service)(nil)

// New constructs a retriever; nil emb or idx yields a service that always reports Unavailable
func New(emb dom.Embedder, idx dom.VectorIndex, cfg Config) *Service {
	if cfg.TopK <= 0 {
		cfg.TopK = DefaultTopK
	}
	if cfg.MinSimilarity <= 0 {
		cfg.MinSimilarity = DefaultMinSimilarity
	}
	if cfg.CategoryBoost < 0 {
		cfg.CategoryBoost = 0
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Service{emb: emb, idx: idx, cfg: cfg}
}

// Config returns the effective configuration
func (s *Service) Config() Config { return s.cfg }

// Ready reports whether both an embedder and an index are wired
func (s *Service) Ready() bool { return s != nil && s.emb != nil && s.idx != nil }

// Retrieve returns up to k hits at or above the similarity threshold
// With a category the index is queried with that tag first and matching hits get the
// category boost; when that yields nothing the unfiltered neighbors are returned and
// CategoryFallback is set. Fewer than k hits, including zero, is a normal result
func (s *Service) Retrieve(ctx context.Context, query, category string, k int) (dom.Retrieval, error) {
	if !s.Ready() {
		return dom.Retrieval{}, ErrUnavailable
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return dom.Retrieval{}, nil
	}
	if k <= 0 {
		k = s.cfg.TopK
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	vec, err := s.emb.Embed(ctx, query)
	if err != nil {
		return dom.Retrieval{}, backendErr(ctx, err, "guidance: embed")
	}

	category = strings.TrimSpace(category)
	if category != "" {
		ns, err := s.idx.Nearest(ctx, vec, k, []string{category})
		if err != nil {
			return dom.Retrieval{}, backendErr(ctx, err, "guidance: nearest")
		}
		if hits := s.rank(ns, category, k); len(hits) > 0 {
			return dom.Retrieval{Hits: hits}, nil
		}
	}

	ns, err := s.idx.Nearest(ctx, vec, k, nil)
	if err != nil {
		return dom.Retrieval{}, backendErr(ctx, err, "guidance: nearest")
	}
	out := dom.Retrieval{Hits: s.rank(ns, "", k), CategoryFallback: category != ""}
	if out.CategoryFallback {
		logger.C(ctx).Debug().Str("category", category).Int("hits", len(out.Hits)).
			Msg("guidance: no tagged hits, using unfiltered neighbors")
	}
	return out, nil
}

// rank thresholds on raw similarity, applies the category boost, and orders best first
func (s *Service) rank(ns []dom.Neighbor, category string, k int) []dom.Hit {
	hits := make([]dom.Hit, 0, len(ns))
	seen := make(map[string]struct{}, len(ns))
	for _, n := range ns {
		if n.Similarity < s.cfg.MinSimilarity || strings.TrimSpace(n.Document) == "" {
			continue
		}
		if _, dup := seen[n.ID]; dup {
			continue
		}
		seen[n.ID] = struct{}{}

		sim := n.Similarity
		if category != "" && hasTag(n.Meta.Tags, category) {
			sim += s.cfg.CategoryBoost
		}
		hits = append(hits, dom.Hit{GuidanceID: n.ID, Similarity: clamp01(sim), SolutionText: n.Document})
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Similarity > hits[j].Similarity })
	if len(hits) > k {
		hits = hits[:k]
	}
	return hits
}

// backendErr keeps coded errors, maps context errors, and codes the rest Unavailable
func backendErr(ctx context.Context, err error, msg string) error {
	if cerr := perr.FromContext(err, msg); cerr != nil {
		return cerr
	}
	if cerr := perr.FromContext(ctx.Err(), msg); cerr != nil {
		return cerr
	}
	if _, ok := perr.As(err); ok {
		return err
	}
	return perr.Wrap(err, perr.ErrorCodeUnavailable, msg)
}

func hasTag(tags []string, tag string) bool {
	for _, t := range tags {
		if t == tag {
			return true
		}
	}
	return false
}

func clamp01(x float64) float64 {
	switch {
	case x < 0:
		return 0
	case x > 1:
		return 1
	}
	return x
}
