package module

import (
	"time"

	"stylefix/internal/platform/config"
	"stylefix/internal/services/suggest/repo"
	"stylefix/internal/services/suggest/service"
)

// Options holds configuration settings for the suggest module
type Options struct {
	MaxSuggestions     int
	Deadline           time.Duration
	DeterministicFirst bool
	Workers            int
	Events             EventsOptions
}

// EventsOptions configures the resolution event writer
type EventsOptions struct {
	Enabled    bool
	Buffer     int
	Batch      int
	FlushEvery time.Duration
}

// FromConfig reads configuration settings from the config.Conf
func FromConfig(cfg config.Conf) Options {
	sf := cfg.Prefix("CORE_SUGGEST_")
	ef := cfg.Prefix("CORE_EVENTS_")
	return Options{
		MaxSuggestions:     sf.MayInt("MAX_SUGGESTIONS", service.DefaultMaxSuggestions),
		Deadline:           sf.MayDuration("DEADLINE", service.DefaultDeadline),
		DeterministicFirst: sf.MayBool("DETERMINISTIC_FIRST", false),
		Workers:            sf.MayInt("WORKERS", service.DefaultWorkers),
		Events: EventsOptions{
			Enabled:    ef.MayBool("ENABLED", false),
			Buffer:     ef.MayInt("BUFFER", repo.DefaultEventBuffer),
			Batch:      ef.MayInt("BATCH", repo.DefaultEventBatch),
			FlushEvery: ef.MayDuration("FLUSH_EVERY", repo.DefaultFlushEvery),
		},
	}
}

// Service converts options into resolver config
func (o Options) Service(rewriteTimeout time.Duration, topK int) service.Config {
	return service.Config{
		MaxSuggestions:     o.MaxSuggestions,
		Deadline:           o.Deadline,
		DeterministicFirst: o.DeterministicFirst,
		RewriteTimeout:     rewriteTimeout,
		TopK:               topK,
		Workers:            o.Workers,
	}
}
