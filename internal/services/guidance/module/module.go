// Package module wires the guidance retriever and its backends
package module

import (
	"context"
	"net/http"
	"strings"
	"time"

	"stylefix/internal/adapters/llm"
	"stylefix/internal/modkit"
	"stylefix/internal/modkit/httpkit"
	"stylefix/internal/modkit/repokit"
	str "stylefix/internal/platform/strings"
	"stylefix/internal/services/guidance/corpus"
	"stylefix/internal/services/guidance/domain"
	guidancehttp "stylefix/internal/services/guidance/http"
	"stylefix/internal/services/guidance/repo"
	"stylefix/internal/services/guidance/service"
)

// seedTimeout bounds embedding the built-in corpus into a memory index at startup
const seedTimeout = 30 * time.Second

// Ports exposed by the guidance module
type Ports struct {
	Retriever domain.RetrieverPort
	Embedder  domain.Embedder
	Index     domain.VectorIndex
	Writer    domain.CorpusWriter
}

// Module implements the guidance module
type Module struct {
	deps   modkit.Deps
	opts   Options
	name   string
	prefix string
	mws    []func(http.Handler) http.Handler
	ports  Ports
	svc    *service.Service
}

// New constructs the guidance module from options
func New(deps modkit.Deps, o Options, opts ...modkit.Option) *Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("guidance"),
		modkit.WithPrefix("/guidance"),
	}, opts...)...)

	log := deps.Log.With().Str("mod", "guidance").Logger()

	emb := NewEmbedder(o.Embed)
	idx, w := OpenIndex(deps, o, emb)
	svc := service.New(emb, idx, o.Service())

	log.Info().
		Str("backend", strings.ToLower(o.Backend)).
		Str("embedder", embedderName(emb)).
		Bool("ready", svc.Ready()).
		Msg("guidance: retriever configured")

	m := &Module{
		deps:   deps,
		opts:   o,
		name:   b.Name,
		prefix: b.Prefix,
		mws:    b.Mw,
		svc:    svc,
	}
	m.ports = Ports{Retriever: svc, Embedder: emb, Index: idx, Writer: w}
	return m
}

// NewEmbedder builds the configured embedder
func NewEmbedder(o EmbedOptions) domain.Embedder {
	if strings.EqualFold(o.Provider, EmbedOpenAI) {
		return llm.NewEmbeddings(llm.Options{BaseURLs: o.BaseURL, APIKey: o.APIKey, Model: o.Model})
	}
	return llm.NewHashEmbedder(o.Dim)
}

// OpenIndex returns the configured index and its writer; both are nil when the backend is
// disabled or its store is missing, which leaves retrieval Unavailable
func OpenIndex(deps modkit.Deps, o Options, emb domain.Embedder) (domain.VectorIndex, domain.CorpusWriter) {
	log := deps.Log.With().Str("mod", "guidance").Logger()

	switch strings.ToLower(o.Backend) {
	case BackendPG:
		if deps.PG == nil {
			log.Warn().Msg("guidance: pg backend selected but postgres is disabled")
			return nil, nil
		}
		s := repokit.MustBind(repo.NewPG(), deps.PG)
		return s, s
	case BackendCH:
		if deps.CH == nil {
			log.Warn().Msg("guidance: ch backend selected but clickhouse is disabled")
			return nil, nil
		}
		c := repo.NewCH(deps.CH)
		return c, c
	case BackendNone:
		return nil, nil
	}

	if o.Snapshot != "" {
		mem, err := repo.LoadSnapshot(o.Snapshot)
		if err == nil {
			log.Info().Str("path", o.Snapshot).Int("entries", mem.Len()).Msg("guidance: snapshot loaded")
			return mem, mem
		}
		log.Warn().Err(err).Str("path", o.Snapshot).Msg("guidance: snapshot unreadable, seeding built-in corpus")
	}

	mem := repo.NewMemory()
	entries, err := corpus.Default()
	if err != nil {
		log.Error().Err(err).Msg("guidance: built-in corpus invalid")
		return mem, mem
	}
	ctx, cancel := context.WithTimeout(context.Background(), seedTimeout)
	defer cancel()
	if _, err := service.NewSeeder(emb, mem).Seed(ctx, entries); err != nil {
		log.Warn().Err(err).Msg("guidance: seeding built-in corpus failed")
	}
	return mem, mem
}

// Service returns the retriever
func (m *Module) Service() *service.Service { return m.svc }

// Options returns the options the module was built with
func (m *Module) Options() Options { return m.opts }

// Name satisfies modkit.Module
func (m *Module) Name() string { return str.MustString(m.name, "guidance") }

// Ports satisfies modkit.Module
func (m *Module) Ports() any { return m.ports }

// Prefix satisfies modkit.Module
func (m *Module) Prefix() string { return str.MustPrefix(m.prefix) }

// MountRoutes satisfies modkit.Module
func (m *Module) MountRoutes(r httpkit.Router) {
	httpkit.MountUnder(r, m.Prefix(), m.mws, func(rr httpkit.Router) {
		guidancehttp.Register(rr, m.svc)
	})
}

func embedderName(e domain.Embedder) string {
	if n, ok := e.(interface{ Name() string }); ok {
		return n.Name()
	}
	return "unknown"
}

var _ modkit.Module = (*Module)(nil)
