package repo

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"stylefix/internal/modkit/repokit"
	perr "stylefix/internal/platform/errors"
	"stylefix/internal/platform/store"
	"stylefix/internal/services/guidance/domain"
)

type (
	pg     struct{ q repokit.Queryer }
	binder struct{}
)

// Storage is the Postgres guidance repository backed by pgvector
type Storage interface {
	domain.VectorIndex
	domain.CorpusWriter
	EnsureSchema(ctx context.Context, dim int) error
	Count(ctx context.Context) (int64, error)
}

// NewPG constructs a new repo binder for Postgres
func NewPG() repokit.Binder[Storage] { return binder{} }

// Bind implements repokit.Binder
func (binder) Bind(q repokit.Queryer) Storage { return &pg{q: q} }

// EnsureSchema creates the pgvector extension, table and tag index when missing
func (s *pg) EnsureSchema(ctx context.Context, dim int) error {
	if dim <= 0 {
		return fmt.Errorf("guidance: embedding dim must be positive, got %d", dim)
	}
	stmts := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		`CREATE TABLE IF NOT EXISTS guidance_entries (
			id            uuid PRIMARY KEY,
			rule_id       text        NOT NULL DEFAULT '',
			solution_text text        NOT NULL,
			explanation   text        NOT NULL DEFAULT '',
			example_bad   text        NOT NULL DEFAULT '',
			example_good  text        NOT NULL DEFAULT '',
			tags          text[]      NOT NULL DEFAULT '{}',
			embedding     vector(` + strconv.Itoa(dim) + `) NOT NULL,
			updated_at    timestamptz NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS guidance_entries_tags_idx ON guidance_entries USING gin (tags)`,
	}
	err := repokit.WithTx(ctx, s.q, func(q repokit.Queryer) error {
		for _, stmt := range stmts {
			if _, err := q.Exec(ctx, stmt); err != nil {
				return err
			}
		}
		return nil
	})
	return perr.FromPostgres(err, "guidance: ensure schema")
}

// Upsert implements domain.CorpusWriter
func (s *pg) Upsert(ctx context.Context, entries []domain.Entry) error {
	if len(entries) == 0 {
		return nil
	}

	var sb strings.Builder
	sb.WriteString(`INSERT INTO guidance_entries
		(id, rule_id, solution_text, explanation, example_bad, example_good, tags, embedding) VALUES `)

	args := make([]any, 0, len(entries)*8)
	for i, e := range entries {
		if i > 0 {
			sb.WriteByte(',')
		}
		base := i*8 + 1
		fmt.Fprintf(&sb, "($%d::uuid,$%d,$%d,$%d,$%d,$%d,$%d::text[],$%d::vector)",
			base, base+1, base+2, base+3, base+4, base+5, base+6, base+7)

		tags := e.Tags
		if tags == nil {
			tags = []string{}
		}
		args = append(args,
			e.ID, e.RuleID, e.SolutionText, e.Explanation, e.ExampleBad, e.ExampleGood,
			tags, VectorLiteral(e.Embedding),
		)
	}
	sb.WriteString(` ON CONFLICT (id) DO UPDATE SET
		rule_id = EXCLUDED.rule_id,
		solution_text = EXCLUDED.solution_text,
		explanation = EXCLUDED.explanation,
		example_bad = EXCLUDED.example_bad,
		example_good = EXCLUDED.example_good,
		tags = EXCLUDED.tags,
		embedding = EXCLUDED.embedding,
		updated_at = now()`)
	_, err := s.q.Exec(ctx, sb.String(), args...)
	return perr.FromPostgres(err, "guidance: upsert")
}

// Nearest implements domain.VectorIndex using the cosine distance operator
func (s *pg) Nearest(ctx context.Context, vec []float32, k int, tags []string) ([]domain.Neighbor, error) {
	if k <= 0 {
		return nil, nil
	}
	var sb strings.Builder
	var args []any
	arg := func(v any) string { args = append(args, v); return fmt.Sprintf("$%d", len(args)) }

	v := arg(VectorLiteral(vec))
	sb.WriteString(`
		SELECT id::text, rule_id, solution_text, tags,
			1 - (embedding <=> ` + v + `::vector) AS similarity
		FROM guidance_entries
	`)
	if len(tags) > 0 {
		sb.WriteString("WHERE tags && " + arg(tags) + "::text[]\n")
	}
	sb.WriteString("ORDER BY embedding <=> " + v + "::vector\nLIMIT " + arg(k))

	out, err := store.Many(ctx, s.q, scanNeighbor, sb.String(), args...)
	return out, perr.FromPostgres(err, "guidance: nearest")
}

func scanNeighbor(r store.Row) (domain.Neighbor, error) {
	var n domain.Neighbor
	if err := r.Scan(&n.ID, &n.Meta.RuleID, &n.Document, &n.Meta.Tags, &n.Similarity); err != nil {
		return n, err
	}
	n.Similarity = clampSim(n.Similarity)
	return n, nil
}

// Count returns the number of stored entries
func (s *pg) Count(ctx context.Context) (int64, error) {
	n, err := store.Scalar[int64](ctx, s.q, `SELECT count(*) FROM guidance_entries`)
	return n, perr.FromPostgres(err, "guidance: count")
}

// VectorLiteral renders v in the pgvector text form, e.g. [0.1,-0.2]
func VectorLiteral(v []float32) string {
	var sb strings.Builder
	sb.Grow(len(v)*10 + 2)
	sb.WriteByte('[')
	for i, x := range v {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.FormatFloat(float64(x), 'g', -1, 32))
	}
	sb.WriteByte(']')
	return sb.String()
}

func clampSim(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
