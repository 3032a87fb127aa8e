package module

import (
	"time"

	"stylefix/internal/platform/config"
	"stylefix/internal/services/rewrite/service"
)

// Providers
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderNone      = "none"
)

// Options holds configuration settings for the rewrite module
type Options struct {
	Provider      string
	BaseURL       string
	Model         string
	APIKey        string
	Timeout       time.Duration
	MaxRetries    int
	GuardFailures int
	GuardCooldown time.Duration
}

// FromConfig reads configuration settings from the config.Conf
func FromConfig(cfg config.Conf) Options {
	rf := cfg.Prefix("CORE_REWRITE_")
	return Options{
		Provider:      rf.MayEnum("PROVIDER", ProviderOpenAI, ProviderOpenAI, ProviderAnthropic, ProviderNone),
		BaseURL:       rf.MayString("BASE_URL", ""),
		Model:         rf.MayString("MODEL", ""),
		APIKey:        rf.MayString("API_KEY", ""),
		Timeout:       rf.MayDuration("TIMEOUT", service.DefaultTimeout),
		MaxRetries:    rf.MayInt("HTTP_RETRIES", 2),
		GuardFailures: rf.MayInt("GUARD_FAILURES", 3),
		GuardCooldown: rf.MayDuration("GUARD_COOLDOWN", 30*time.Second),
	}
}
