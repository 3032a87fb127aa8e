package service

import (
	"context"
	"errors"
	"testing"
	"time"

	perr "stylefix/internal/platform/errors"
	dom "stylefix/internal/services/guidance/domain"

	"github.com/google/go-cmp/cmp"
)

type fakeEmbedder struct {
	err   error
	delay time.Duration
}

func (f fakeEmbedder) Embed(ctx context.Context, _ string) ([]float32, error) {
	if f.delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(f.delay):
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	return []float32{1, 0}, nil
}

// fakeIndex answers from canned neighbors and records the tag filters it saw
type fakeIndex struct {
	tagged []dom.Neighbor
	all    []dom.Neighbor
	err    error
	calls  [][]string
}

func (f *fakeIndex) Nearest(_ context.Context, _ []float32, _ int, tags []string) ([]dom.Neighbor, error) {
	f.calls = append(f.calls, tags)
	if f.err != nil {
		return nil, f.err
	}
	if len(tags) > 0 {
		return f.tagged, nil
	}
	return f.all, nil
}

func nb(id string, sim float64, tags ...string) dom.Neighbor {
	return dom.Neighbor{ID: id, Document: "solution " + id, Meta: dom.Metadata{Tags: tags}, Similarity: sim}
}

func TestRetrieve_CategoryHitsAreBoostedAndThresholded(t *testing.T) {
	t.Parallel()

	idx := &fakeIndex{tagged: []dom.Neighbor{
		nb("a", 0.50, "passive_voice"),
		nb("b", 0.97, "passive_voice"),
		nb("c", 0.20, "passive_voice"),
	}}
	s := New(fakeEmbedder{}, idx, Config{MinSimilarity: 0.28, CategoryBoost: 0.05})

	got, err := s.Retrieve(context.Background(), "passive sentence", "passive_voice", 5)
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	want := dom.Retrieval{Hits: []dom.Hit{
		{GuidanceID: "b", Similarity: 1, SolutionText: "solution b"},
		{GuidanceID: "a", Similarity: 0.55, SolutionText: "solution a"},
	}}
	opt := cmp.Comparer(func(x, y float64) bool { return x-y < 1e-9 && y-x < 1e-9 })
	if diff := cmp.Diff(want, got, opt); diff != "" {
		t.Fatalf("Retrieve mismatch (-want +got):\n%s", diff)
	}
	if len(idx.calls) != 1 {
		t.Fatalf("expected a single filtered query, got %v", idx.calls)
	}
}

func TestRetrieve_FallsBackToUnfilteredAndFlagsIt(t *testing.T) {
	t.Parallel()

	idx := &fakeIndex{
		tagged: []dom.Neighbor{nb("low", 0.1, "modal_verb")},
		all:    []dom.Neighbor{nb("x", 0.6), nb("y", 0.4)},
	}
	s := New(fakeEmbedder{}, idx, Config{})

	got, err := s.Retrieve(context.Background(), "q", "modal_verb", 5)
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if !got.CategoryFallback {
		t.Fatalf("fallback must be observable")
	}
	if len(got.Hits) != 2 || got.Hits[0].GuidanceID != "x" {
		t.Fatalf("unexpected hits: %+v", got.Hits)
	}
	if got.Hits[0].Similarity != 0.6 {
		t.Fatalf("unfiltered hits are not boosted, got %v", got.Hits[0].Similarity)
	}
	if diff := cmp.Diff([][]string{{"modal_verb"}, nil}, idx.calls); diff != "" {
		t.Fatalf("query sequence mismatch (-want +got):\n%s", diff)
	}
}

func TestRetrieve_NoCategoryNoFallbackFlag(t *testing.T) {
	t.Parallel()

	s := New(fakeEmbedder{}, &fakeIndex{all: []dom.Neighbor{nb("x", 0.1)}}, Config{})
	got, err := s.Retrieve(context.Background(), "q", "", 3)
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if got.CategoryFallback || len(got.Hits) != 0 {
		t.Fatalf("below threshold hits are dropped without fallback: %+v", got)
	}
}

func TestRetrieve_CapsAtKAndDedupes(t *testing.T) {
	t.Parallel()

	s := New(fakeEmbedder{}, &fakeIndex{all: []dom.Neighbor{
		nb("a", 0.9), nb("a", 0.9), nb("b", 0.8), nb("c", 0.7),
	}}, Config{})
	got, err := s.Retrieve(context.Background(), "q", "", 2)
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if len(got.Hits) != 2 || got.Hits[0].GuidanceID != "a" || got.Hits[1].GuidanceID != "b" {
		t.Fatalf("unexpected hits: %+v", got.Hits)
	}
}

func TestRetrieve_Failures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		svc  *Service
		code perr.ErrorCode
	}{
		{"no index", New(fakeEmbedder{}, nil, Config{}), perr.ErrorCodeUnavailable},
		{"no embedder", New(nil, &fakeIndex{}, Config{}), perr.ErrorCodeUnavailable},
		{"embed error", New(fakeEmbedder{err: errors.New("boom")}, &fakeIndex{}, Config{}), perr.ErrorCodeUnavailable},
		{"index error", New(fakeEmbedder{}, &fakeIndex{err: errors.New("down")}, Config{}), perr.ErrorCodeUnavailable},
		{
			"coded index error kept",
			New(fakeEmbedder{}, &fakeIndex{err: perr.Malformedf("bad row")}, Config{}),
			perr.ErrorCodeMalformed,
		},
		{
			"timeout",
			New(fakeEmbedder{delay: time.Second}, &fakeIndex{}, Config{Timeout: 10 * time.Millisecond}),
			perr.ErrorCodeTimeout,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := tc.svc.Retrieve(context.Background(), "q", "passive_voice", 3)
			if got := perr.CodeOf(err); got != tc.code {
				t.Fatalf("code = %v, want %v (err %v)", got, tc.code, err)
			}
		})
	}
}

func TestRetrieve_BlankQueryIsEmpty(t *testing.T) {
	t.Parallel()

	idx := &fakeIndex{}
	got, err := New(fakeEmbedder{}, idx, Config{}).Retrieve(context.Background(), "  ", "", 3)
	if err != nil || len(got.Hits) != 0 || len(idx.calls) != 0 {
		t.Fatalf("blank query should not hit the index: %+v %v %v", got, err, idx.calls)
	}
}

func TestNew_Defaults(t *testing.T) {
	t.Parallel()

	c := New(nil, nil, Config{CategoryBoost: -1}).Config()
	want := Config{TopK: DefaultTopK, MinSimilarity: DefaultMinSimilarity, Timeout: DefaultTimeout}
	if diff := cmp.Diff(want, c); diff != "" {
		t.Fatalf("defaults mismatch (-want +got):\n%s", diff)
	}
}
