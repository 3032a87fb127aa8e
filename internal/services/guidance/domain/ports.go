package domain

import "context"

// Embedder turns text into a vector
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// VectorIndex answers nearest-neighbor queries over the corpus
// An empty tags slice means no filter; otherwise a row matches when it carries any tag
type VectorIndex interface {
	Nearest(ctx context.Context, vec []float32, k int, tags []string) ([]Neighbor, error)
}

// CorpusWriter stores embedded entries, replacing rows with the same id
type CorpusWriter interface {
	Upsert(ctx context.Context, entries []Entry) error
}

// RetrieverPort is what the resolver consumes
// An empty category means unfiltered retrieval
type RetrieverPort interface {
	Retrieve(ctx context.Context, query, category string, k int) (Retrieval, error)
}
