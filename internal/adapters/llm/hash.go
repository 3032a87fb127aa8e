package llm

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
	"unicode"

	"stylefix/internal/core/normalize"
)

// DefaultHashDim is the vector width used when none is configured
const DefaultHashDim = 256

// HashEmbedder maps text to a signed feature-hashing vector of unigrams and bigrams
// It is deterministic and offline, so corpora and queries embedded by it are comparable
type HashEmbedder struct {
	dim int
}

// NewHashEmbedder returns an embedder producing dim-wide L2-normalized vectors
func NewHashEmbedder(dim int) *HashEmbedder {
	if dim <= 0 {
		dim = DefaultHashDim
	}
	return &HashEmbedder{dim: dim}
}

// Name identifies the embedder in logs and meta output
func (h *HashEmbedder) Name() string { return "hash" }

// Dim reports the vector width
func (h *HashEmbedder) Dim() int { return h.dim }

// Embed never fails unless ctx is already done
func (h *HashEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return h.vector(text), nil
}

func (h *HashEmbedder) vector(text string) []float32 {
	v := make([]float32, h.dim)
	toks := tokens(normalize.Key(text))
	for i, t := range toks {
		h.add(v, t, 1)
		if i > 0 {
			h.add(v, toks[i-1]+" "+t, 0.5)
		}
	}
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return v
	}
	n := float32(1 / math.Sqrt(sum))
	for i := range v {
		v[i] *= n
	}
	return v
}

func (h *HashEmbedder) add(v []float32, feature string, weight float32) {
	f := fnv.New64a()
	_, _ = f.Write([]byte(feature))
	sum := f.Sum64()
	idx := int(sum % uint64(h.dim))
	// the top bit picks the sign so collisions tend to cancel
	if sum>>63 == 1 {
		weight = -weight
	}
	v[idx] += weight
}

func tokens(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
