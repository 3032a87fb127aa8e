// Package http serves the meta endpoints: liveness, readiness, build and pipeline status
package http

import (
	"context"
	"net/http"
	"time"

	"stylefix/internal/core/version"
	"stylefix/internal/modkit/httpkit"
)

// Pinger is satisfied by store adapters
type Pinger interface {
	Ping(context.Context) error
}

// Deps are the handler dependencies; PG and CH stay nil when the store is not configured
type Deps struct {
	ServiceName string
	StartedAt   time.Time
	PG          any
	CH          any
	// Pipeline reports tier readiness; nil omits the section
	Pipeline func() PipelineResponse
}

const readyTimeout = 2 * time.Second

type handlers struct{ deps Deps }

// Register mounts the meta routes
func Register(r httpkit.Router, d Deps) {
	h := &handlers{deps: d}
	httpkit.Get(r, "/health", h.health)
	httpkit.Get(r, "/ready", h.ready)
	httpkit.Get(r, "/version", h.version)
	httpkit.Get(r, "/pipeline", h.pipeline)
}

// HealthResponse is the liveness payload
type HealthResponse struct {
	OK      bool   `json:"ok"      example:"true"`
	Service string `json:"service" example:"stylefix-api"`
	Started string `json:"started" example:"2026-10-01T12:00:00Z"`
	Uptime  int64  `json:"uptime"  example:"300"`
}

// ReadyCheck is the outcome of one dependency probe
type ReadyCheck struct {
	Name   string `json:"name"            example:"pg"`
	Status string `json:"status"          example:"ok" enums:"ok,fail,skipped,unknown"`
	Error  string `json:"error,omitempty" example:"dial tcp 127.0.0.1:5432: connect: connection refused"`
}

// ReadyResponse summarizes readiness
type ReadyResponse struct {
	Status string       `json:"status" example:"ok" enums:"ok,degraded,fail"`
	Checks []ReadyCheck `json:"checks"`
	Now    string       `json:"now"    example:"2026-10-01T12:05:00Z"`
}

// TierStatus describes one resolver tier
type TierStatus struct {
	Ready   bool   `json:"ready"            example:"true"`
	Backend string `json:"backend"          example:"memory"`
	Detail  string `json:"detail,omitempty" example:"guard open until 2026-10-01T12:00:00Z"`
}

// PipelineResponse reports how the resolver is wired
type PipelineResponse struct {
	Rules              []string          `json:"rules"`
	Retrieval          TierStatus        `json:"retrieval"`
	Generation         TierStatus        `json:"generation"`
	MaxSuggestions     int               `json:"max_suggestions"     example:"3"`
	DeadlineMs         int64             `json:"deadline_ms"         example:"25000"`
	DeterministicFirst bool              `json:"deterministic_first" example:"false"`
	Build              version.BuildInfo `json:"build"`
}

// health godoc
// @Summary Liveness and uptime
// @Tags Meta
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /meta/health [get]
func (h *handlers) health(_ *http.Request) (any, error) {
	return HealthResponse{
		OK:      true,
		Service: h.deps.ServiceName,
		Started: h.deps.StartedAt.UTC().Format(time.RFC3339),
		Uptime:  int64(time.Since(h.deps.StartedAt) / time.Second),
	}, nil
}

// ready godoc
// @Summary Readiness probe over the configured stores
// @Description A store that is not configured is skipped. One that fails its ping fails the probe
// @Tags Meta
// @Produce json
// @Success 200 {object} ReadyResponse
// @Router /meta/ready [get]
func (h *handlers) ready(r *http.Request) (any, error) {
	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	out := ReadyResponse{Status: "ok", Now: time.Now().UTC().Format(time.RFC3339)}
	for _, c := range []struct {
		name string
		dep  any
	}{{"pg", h.deps.PG}, {"ch", h.deps.CH}} {
		rc := probe(ctx, c.name, c.dep)
		switch {
		case rc.Status == "fail":
			out.Status = "fail"
		case rc.Status == "unknown" && out.Status == "ok":
			out.Status = "degraded"
		}
		out.Checks = append(out.Checks, rc)
	}
	return out, nil
}

func probe(ctx context.Context, name string, dep any) ReadyCheck {
	p, ok := dep.(Pinger)
	switch {
	case dep == nil:
		return ReadyCheck{Name: name, Status: "skipped"}
	case !ok:
		return ReadyCheck{Name: name, Status: "unknown"}
	}
	if err := p.Ping(ctx); err != nil {
		return ReadyCheck{Name: name, Status: "fail", Error: err.Error()}
	}
	return ReadyCheck{Name: name, Status: "ok"}
}

// version godoc
// @Summary Build and version info
// @Tags Meta
// @Produce json
// @Success 200 {object} version.BuildInfo
// @Router /meta/version [get]
func (h *handlers) version(_ *http.Request) (any, error) { return version.Info(), nil }

// pipeline godoc
// @Summary Resolver tiers and their readiness
// @Tags Meta
// @Produce json
// @Success 200 {object} PipelineResponse
// @Router /meta/pipeline [get]
func (h *handlers) pipeline(_ *http.Request) (any, error) {
	var out PipelineResponse
	if h.deps.Pipeline != nil {
		out = h.deps.Pipeline()
	}
	out.Build = version.Info()
	return out, nil
}
