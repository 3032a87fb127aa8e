//go:build integration_pg

package repo

import (
	"context"
	"testing"
	"time"

	"stylefix/internal/platform/store"
	"stylefix/internal/platform/testkit"
	"stylefix/internal/services/guidance/domain"

	"github.com/google/uuid"
)

func TestPG_NearestRoundTrip_Integration(t *testing.T) {
	dsn := testkit.Postgres(t, testkit.PGVectorImage)

	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	st, err := store.Open(ctx, store.Config{PG: store.PGConfig{Enabled: true, URL: dsn, MaxConns: 4}})
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	defer func() { _ = st.Close(ctx) }()

	s := NewPG().Bind(st.PG)
	if err := s.EnsureSchema(ctx, 2); err != nil {
		t.Fatalf("EnsureSchema: %v", err)
	}

	a, b := uuid.NewString(), uuid.NewString()
	entries := []domain.Entry{
		{ID: a, RuleID: "passive-voice", SolutionText: "Name the actor.", Tags: []string{"passive_voice"}, Embedding: []float32{1, 0}},
		{ID: b, RuleID: "modal-verb", SolutionText: "Use the imperative.", Tags: []string{"modal_verb"}, Embedding: []float32{0.6, 0.8}},
	}
	if err := s.Upsert(ctx, entries); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	// second upsert replaces rather than duplicates
	if err := s.Upsert(ctx, entries[:1]); err != nil {
		t.Fatalf("re-Upsert: %v", err)
	}
	if n, err := s.Count(ctx); err != nil || n != 2 {
		t.Fatalf("Count = %d, %v", n, err)
	}

	got, err := s.Nearest(ctx, []float32{1, 0}, 5, nil)
	if err != nil {
		t.Fatalf("Nearest: %v", err)
	}
	if len(got) != 2 || got[0].ID != a || got[0].Similarity < 0.99 {
		t.Fatalf("unexpected order: %+v", got)
	}
	if got[1].Similarity < 0.59 || got[1].Similarity > 0.61 {
		t.Fatalf("cosine similarity for b = %v, want 0.6", got[1].Similarity)
	}

	tagged, err := s.Nearest(ctx, []float32{1, 0}, 5, []string{"modal_verb"})
	if err != nil {
		t.Fatalf("Nearest tagged: %v", err)
	}
	if len(tagged) != 1 || tagged[0].ID != b || tagged[0].Meta.Tags[0] != "modal_verb" {
		t.Fatalf("tag filter: %+v", tagged)
	}
}
