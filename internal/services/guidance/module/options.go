package module

import (
	"time"

	"stylefix/internal/platform/config"
	"stylefix/internal/services/guidance/service"
)

// Index backends
const (
	BackendMemory = "memory"
	BackendPG     = "pg"
	BackendCH     = "ch"
	BackendNone   = "none"
)

// Embedding providers
const (
	EmbedOpenAI = "openai"
	EmbedHash   = "hash"
)

// EmbedOptions selects and configures the embedder
type EmbedOptions struct {
	Provider string
	BaseURL  string
	Model    string
	APIKey   string
	Dim      int
}

// Options holds configuration settings for the guidance module
type Options struct {
	Backend       string
	TopK          int
	MinSimilarity float64
	CategoryBoost float64
	Timeout       time.Duration
	Snapshot      string
	Embed         EmbedOptions
}

// FromConfig reads configuration settings from the config.Conf
func FromConfig(cfg config.Conf) Options {
	gf := cfg.Prefix("CORE_GUIDANCE_")
	ef := cfg.Prefix("CORE_EMBED_")
	return Options{
		Backend:       gf.MayEnum("BACKEND", BackendMemory, BackendMemory, BackendPG, BackendCH, BackendNone),
		TopK:          gf.MayInt("TOP_K", service.DefaultTopK),
		MinSimilarity: gf.MayFloat64("MIN_SIMILARITY", service.DefaultMinSimilarity),
		CategoryBoost: gf.MayFloat64("CATEGORY_BOOST", service.DefaultCategoryBoost),
		Timeout:       gf.MayDuration("TIMEOUT", service.DefaultTimeout),
		Snapshot:      gf.MayString("SNAPSHOT", ""),
		Embed: EmbedOptions{
			Provider: ef.MayEnum("PROVIDER", EmbedHash, EmbedOpenAI, EmbedHash),
			BaseURL:  ef.MayString("BASE_URL", ""),
			Model:    ef.MayString("MODEL", "text-embedding-3-small"),
			APIKey:   ef.MayString("API_KEY", ""),
			Dim:      ef.MayInt("DIM", 256),
		},
	}
}

// Service converts options into the retriever config
func (o Options) Service() service.Config {
	return service.Config{
		TopK:          o.TopK,
		MinSimilarity: o.MinSimilarity,
		CategoryBoost: o.CategoryBoost,
		Timeout:       o.Timeout,
	}
}
