package repo

import (
	"context"
	"strings"
	"testing"

	"stylefix/internal/platform/store"
	"stylefix/internal/services/guidance/domain"

	"github.com/google/uuid"
)

type fakeCH struct {
	table string
	data  [][]any
	sql   string
	args  []any
	exec  string
	rows  [][]any
}

func (f *fakeCH) Insert(_ context.Context, table string, rows [][]any) error {
	f.table, f.data = table, rows
	return nil
}

func (f *fakeCH) Query(_ context.Context, sql string, args ...any) (store.Rows, error) {
	f.sql, f.args = sql, args
	return &fakeRows{rows: f.rows}, nil
}

func (f *fakeCH) Exec(_ context.Context, sql string, _ ...any) error {
	f.exec = sql
	return nil
}

func (f *fakeCH) Close() error { return nil }

func TestCH_UpsertRows(t *testing.T) {
	t.Parallel()

	f := &fakeCH{}
	id := uuid.NewString()
	if err := NewCH(f).Upsert(context.Background(), []domain.Entry{{ID: id, SolutionText: "x", Embedding: []float32{1}}}); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if !strings.HasPrefix(f.table, "guidance_entries (id,") {
		t.Fatalf("table = %q", f.table)
	}
	rows := f.data
	if len(rows) != 1 || len(rows[0]) != 8 {
		t.Fatalf("rows = %#v", f.data)
	}
	if rows[0][0].(uuid.UUID).String() != id {
		t.Fatalf("id not parsed: %v", rows[0][0])
	}

	if err := NewCH(f).Upsert(context.Background(), []domain.Entry{{ID: "nope"}}); err == nil {
		t.Fatalf("non-uuid id should fail")
	}
}

func TestCH_NearestQuery(t *testing.T) {
	t.Parallel()

	f := &fakeCH{rows: [][]any{{"id", "rule", "doc", []string{"passive_voice"}, -0.2}}}
	got, err := NewCH(f).Nearest(context.Background(), []float32{1, 0}, 4, []string{"passive_voice"})
	if err != nil {
		t.Fatalf("Nearest: %v", err)
	}
	if !strings.Contains(f.sql, "cosineDistance(embedding, ?)") || !strings.Contains(f.sql, "hasAny(tags, ?)") {
		t.Fatalf("unexpected sql:\n%s", f.sql)
	}
	if len(f.args) != 4 || f.args[1] != 2 || f.args[3] != 4 {
		t.Fatalf("args = %#v", f.args)
	}
	if len(got) != 1 || got[0].Similarity != 0 || got[0].Document != "doc" {
		t.Fatalf("Nearest = %+v", got)
	}
}

func TestCH_EnsureSchema(t *testing.T) {
	t.Parallel()

	f := &fakeCH{}
	if err := NewCH(f).EnsureSchema(context.Background()); err != nil {
		t.Fatalf("EnsureSchema: %v", err)
	}
	if !strings.Contains(f.exec, "ReplacingMergeTree") {
		t.Fatalf("ddl = %s", f.exec)
	}
}
