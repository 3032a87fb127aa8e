// Package module wires the generative rewriter and its backend
package module

import (
	"strings"

	"stylefix/internal/adapters/llm"
	"stylefix/internal/modkit"
	"stylefix/internal/modkit/httpkit"
	"stylefix/internal/services/rewrite/domain"
	"stylefix/internal/services/rewrite/service"
)

// Ports exposed by the rewrite module
type Ports struct {
	Rewriter domain.RewriterPort
	Guard    *llm.Guard
}

// Module implements the rewrite module
type Module struct {
	deps    modkit.Deps
	ports   Ports
	svc     *service.Service
	backend string
}

// New constructs the rewrite module from options
func New(deps modkit.Deps, o Options) *Module {
	backend := NewBackend(o)
	guard := llm.NewGuard(o.GuardFailures, o.GuardCooldown)
	svc := service.New(backend, guard, service.Config{Timeout: o.Timeout})

	deps.Log.Info().
		Str("mod", "rewrite").
		Str("backend", backendName(backend)).
		Dur("timeout", svc.Config().Timeout).
		Msg("rewrite: generator configured")

	return &Module{
		deps:    deps,
		svc:     svc,
		backend: backendName(backend),
		ports:   Ports{Rewriter: svc, Guard: guard},
	}
}

// NewBackend builds the configured completion backend; nil when disabled
func NewBackend(o Options) domain.Backend {
	lo := llm.Options{BaseURLs: o.BaseURL, APIKey: o.APIKey, Model: o.Model, MaxRetries: o.MaxRetries}
	switch strings.ToLower(o.Provider) {
	case ProviderAnthropic:
		return llm.NewAnthropic(lo)
	case ProviderNone:
		return nil
	}
	return llm.NewChat(lo)
}

// Service returns the rewriter
func (m *Module) Service() *service.Service { return m.svc }

// Backend names the completion backend, "none" when disabled
func (m *Module) Backend() string { return m.backend }

// Name satisfies modkit.Module
func (m *Module) Name() string { return "rewrite" }

// Ports satisfies modkit.Module
func (m *Module) Ports() any { return m.ports }

// Prefix satisfies modkit.Module
func (m *Module) Prefix() string { return "" }

// MountRoutes satisfies modkit.Module
func (m *Module) MountRoutes(r httpkit.Router) {}

func backendName(b domain.Backend) string {
	if b == nil {
		return "none"
	}
	if n, ok := b.(interface{ Name() string }); ok {
		return n.Name()
	}
	return "custom"
}
