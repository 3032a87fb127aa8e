package service

import (
	"context"
	"fmt"
	"time"

	perr "stylefix/internal/platform/errors"
	"stylefix/internal/platform/logger"
	dom "stylefix/internal/services/guidance/domain"

	"github.com/cenkalti/backoff/v4"
)

// DefaultSeedBatch bounds how many entries go into one embedding and upsert call
const DefaultSeedBatch = 32

const upsertRetries = 3

// batchEmbedder is implemented by embedders with a batch endpoint
type batchEmbedder interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// Seeder embeds corpus entries and writes them to one or more corpus writers
type Seeder struct {
	emb     dom.Embedder
	writers []dom.CorpusWriter
	batch   int

	retryBase time.Duration
}

// NewSeeder constructs a seeder; at least one writer is required
func NewSeeder(emb dom.Embedder, writers ...dom.CorpusWriter) *Seeder {
	return &Seeder{emb: emb, writers: writers, batch: DefaultSeedBatch, retryBase: 200 * time.Millisecond}
}

// WithBatch overrides the batch size
func (s *Seeder) WithBatch(n int) *Seeder {
	if n > 0 {
		s.batch = n
	}
	return s
}

// Seed embeds entries missing a vector and upserts every entry into each writer
// It returns the number of entries written
func (s *Seeder) Seed(ctx context.Context, entries []dom.Entry) (int, error) {
	if s.emb == nil || len(s.writers) == 0 {
		return 0, perr.InvalidArgf("guidance: seeder needs an embedder and a writer")
	}
	log := logger.C(ctx).With().Str("mod", "guidance").Logger()

	written := 0
	for start := 0; start < len(entries); start += s.batch {
		end := min(start+s.batch, len(entries))
		chunk := append([]dom.Entry(nil), entries[start:end]...)

		if err := s.embed(ctx, chunk); err != nil {
			return written, err
		}
		for _, w := range s.writers {
			if err := s.upsert(ctx, w, chunk); err != nil {
				return written, fmt.Errorf("guidance: upsert entries %d..%d: %w", start, end-1, err)
			}
		}
		written += len(chunk)
		log.Debug().Int("written", written).Int("total", len(entries)).Msg("guidance: seed batch")
	}
	log.Info().Int("entries", written).Int("writers", len(s.writers)).Msg("guidance: corpus seeded")
	return written, nil
}

// upsert retries transient database contention a few times before giving up
func (s *Seeder) upsert(ctx context.Context, w dom.CorpusWriter, chunk []dom.Entry) error {
	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = s.retryBase
	b := backoff.WithContext(backoff.WithMaxRetries(eb, upsertRetries), ctx)
	return backoff.Retry(func() error {
		err := w.Upsert(ctx, chunk)
		if err != nil && !perr.Retryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}, b)
}

func (s *Seeder) embed(ctx context.Context, chunk []dom.Entry) error {
	var idx []int
	var texts []string
	for i, e := range chunk {
		if len(e.Embedding) == 0 {
			idx = append(idx, i)
			texts = append(texts, e.EmbedText())
		}
	}
	if len(texts) == 0 {
		return nil
	}

	if be, ok := s.emb.(batchEmbedder); ok {
		vecs, err := be.EmbedBatch(ctx, texts)
		if err != nil {
			return fmt.Errorf("guidance: embed batch: %w", err)
		}
		if len(vecs) != len(texts) {
			return perr.Malformedf("guidance: embed batch returned %d vectors for %d texts", len(vecs), len(texts))
		}
		for j, i := range idx {
			chunk[i].Embedding = vecs[j]
		}
		return nil
	}
	for j, i := range idx {
		v, err := s.emb.Embed(ctx, texts[j])
		if err != nil {
			return fmt.Errorf("guidance: embed %s: %w", chunk[i].ID, err)
		}
		chunk[i].Embedding = v
	}
	return nil
}
