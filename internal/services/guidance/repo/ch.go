package repo

import (
	"context"
	"fmt"

	perr "stylefix/internal/platform/errors"
	"stylefix/internal/platform/store"
	"stylefix/internal/services/guidance/domain"

	"github.com/google/uuid"
)

// chTable is the ClickHouse guidance table
const chTable = "guidance_entries"

// CH is the ClickHouse guidance index
type CH struct {
	db store.Clickhouse
}

var (
	_ domain.VectorIndex  = (*CH)(nil)
	_ domain.CorpusWriter = (*CH)(nil)
)

// NewCH constructs a ClickHouse index over the store seam
func NewCH(db store.Clickhouse) *CH { return &CH{db: db} }

// EnsureSchema creates the table when missing
// ReplacingMergeTree keeps the newest row per id, which gives upsert semantics
func (c *CH) EnsureSchema(ctx context.Context) error {
	return c.db.Exec(ctx, `CREATE TABLE IF NOT EXISTS `+chTable+` (
		id            UUID,
		rule_id       String,
		solution_text String,
		explanation   String,
		example_bad   String,
		example_good  String,
		tags          Array(LowCardinality(String)),
		embedding     Array(Float32),
		updated_at    DateTime64(3) DEFAULT now64(3)
	) ENGINE = ReplacingMergeTree(updated_at)
	ORDER BY id`)
}

// Upsert implements domain.CorpusWriter
func (c *CH) Upsert(ctx context.Context, entries []domain.Entry) error {
	rows := make([][]any, 0, len(entries))
	for _, e := range entries {
		id, err := uuid.Parse(e.ID)
		if err != nil {
			return perr.InvalidArgf("guidance: entry id %q is not a uuid", e.ID)
		}
		tags := e.Tags
		if tags == nil {
			tags = []string{}
		}
		rows = append(rows, []any{
			id, e.RuleID, e.SolutionText, e.Explanation, e.ExampleBad, e.ExampleGood, tags, e.Embedding,
		})
	}
	return c.db.Insert(ctx, chTable+" (id, rule_id, solution_text, explanation, example_bad, example_good, tags, embedding)", rows)
}

// Nearest implements domain.VectorIndex using cosineDistance
// FINAL collapses replaced rows before ranking
func (c *CH) Nearest(ctx context.Context, vec []float32, k int, tags []string) ([]domain.Neighbor, error) {
	if k <= 0 {
		return nil, nil
	}
	sql := `SELECT toString(id), rule_id, solution_text, tags,
		toFloat64(1 - cosineDistance(embedding, ?)) AS similarity
		FROM ` + chTable + ` FINAL
		WHERE length(embedding) = ?`
	args := []any{vec, len(vec)}
	if len(tags) > 0 {
		sql += ` AND hasAny(tags, ?)`
		args = append(args, tags)
	}
	sql += ` ORDER BY similarity DESC LIMIT ?`
	args = append(args, k)

	rows, err := c.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("guidance: ch nearest: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Neighbor, 0, k)
	for rows.Next() {
		var n domain.Neighbor
		if err := rows.Scan(&n.ID, &n.Meta.RuleID, &n.Document, &n.Meta.Tags, &n.Similarity); err != nil {
			return nil, err
		}
		n.Similarity = clampSim(n.Similarity)
		out = append(out, n)
	}
	return out, rows.Err()
}
