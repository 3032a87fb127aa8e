package llm

import (
	"context"
	"strings"

	perr "stylefix/internal/platform/errors"
)

const defaultEmbedModel = "text-embedding-3-small"

type embedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embedResponse struct {
	Data []struct {
		Index     int       `json:"index"`
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

// Embeddings calls OpenAI-compatible /embeddings endpoints
type Embeddings struct {
	p     *poster
	model string
}

// NewEmbeddings builds an embedding client over one or more failover endpoints
func NewEmbeddings(o Options) *Embeddings {
	model := strings.TrimSpace(o.Model)
	if model == "" {
		model = defaultEmbedModel
	}
	return &Embeddings{p: newPoster(o, "llm.embed"), model: model}
}

// Name identifies the embedder in logs and meta output
func (e *Embeddings) Name() string { return "openai:" + e.model }

// Embed returns the vector for one text
func (e *Embeddings) Embed(ctx context.Context, text string) ([]float32, error) {
	vs, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vs[0], nil
}

// EmbedBatch returns one vector per input in input order
func (e *Embeddings) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	var out embedResponse
	if err := e.p.post(ctx, "/embeddings", embedRequest{Model: e.model, Input: texts}, &out); err != nil {
		return nil, err
	}
	if len(out.Data) != len(texts) {
		return nil, perr.Malformedf("llm embeddings returned %d vectors for %d inputs", len(out.Data), len(texts))
	}
	vs := make([][]float32, len(texts))
	for _, d := range out.Data {
		if d.Index < 0 || d.Index >= len(vs) || len(d.Embedding) == 0 {
			return nil, perr.Malformedf("llm embeddings bad item index %d", d.Index)
		}
		vs[d.Index] = d.Embedding
	}
	for i, v := range vs {
		if v == nil {
			return nil, perr.Malformedf("llm embeddings missing vector %d", i)
		}
	}
	return vs, nil
}
