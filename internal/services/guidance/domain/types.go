// Package domain defines the types and interfaces for the guidance service
package domain

import "strings"

// Entry is one curated issue to solution exemplar in the guidance corpus
type Entry struct {
	ID           string    `yaml:"id"            msgpack:"id"`
	RuleID       string    `yaml:"rule_id"       msgpack:"rule_id"`
	SolutionText string    `yaml:"solution"      msgpack:"solution"`
	Explanation  string    `yaml:"explanation"   msgpack:"explanation"`
	ExampleBad   string    `yaml:"example_bad"   msgpack:"example_bad"`
	ExampleGood  string    `yaml:"example_good"  msgpack:"example_good"`
	Tags         []string  `yaml:"tags"          msgpack:"tags"`
	Embedding    []float32 `yaml:"-"             msgpack:"embedding"`
}

// EmbedText is the text the corpus embeds for an entry
// Queries are issue messages plus sentences, so the problem side leads
func (e Entry) EmbedText() string {
	var parts []string
	for _, s := range []string{e.Explanation, e.ExampleBad, e.SolutionText} {
		if s = strings.TrimSpace(s); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "\n")
}

// HasTag reports whether the entry carries tag
func (e Entry) HasTag(tag string) bool {
	for _, t := range e.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Metadata travels with a neighbor from the index
type Metadata struct {
	RuleID string
	Tags   []string
}

// Neighbor is one nearest-neighbor row from a vector index
// Similarity is cosine similarity clamped to [0,1]
type Neighbor struct {
	ID         string
	Document   string
	Meta       Metadata
	Similarity float64
}

// Hit is one retrieval result handed to the rewriter
type Hit struct {
	GuidanceID   string  `json:"guidance_id"`
	Similarity   float64 `json:"similarity"`
	SolutionText string  `json:"solution_text"`
}

// Retrieval is the retriever result
// CategoryFallback is set when the category filter found nothing and the
// unfiltered neighbors were returned instead
type Retrieval struct {
	Hits             []Hit `json:"hits"`
	CategoryFallback bool  `json:"category_fallback"`
}
