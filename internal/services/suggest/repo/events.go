// Package repo stores resolution events
package repo

import (
	"context"
	"sync"
	"time"

	perr "stylefix/internal/platform/errors"
	"stylefix/internal/platform/logger"
	"stylefix/internal/platform/store"
	"stylefix/internal/services/suggest/domain"

	"github.com/google/uuid"
)

// eventsTable is the ClickHouse resolution event table
const eventsTable = "resolution_events"

// Defaults for EventsConfig zero values
const (
	DefaultEventBuffer = 1024
	DefaultEventBatch  = 256
	DefaultFlushEvery  = 2 * time.Second
)

// ErrBufferFull is returned by Record when the writer is behind
var ErrBufferFull = perr.New(perr.ErrorCodeUnavailable, "events: buffer full")

// EventsConfig tunes the buffered writer
type EventsConfig struct {
	Buffer     int
	Batch      int
	FlushEvery time.Duration
}

// Events buffers resolution events and writes them to ClickHouse in batches
// Record never blocks; Run drains the buffer until its context ends
type Events struct {
	db  store.Clickhouse
	cfg EventsConfig
	in  chan domain.Event

	mu      sync.Mutex
	dropped int
}

var _ domain.Recorder = (*Events)(nil)

// NewEvents constructs the writer; call Run to start flushing
func NewEvents(db store.Clickhouse, cfg EventsConfig) *Events {
	if cfg.Buffer <= 0 {
		cfg.Buffer = DefaultEventBuffer
	}
	if cfg.Batch <= 0 {
		cfg.Batch = DefaultEventBatch
	}
	if cfg.FlushEvery <= 0 {
		cfg.FlushEvery = DefaultFlushEvery
	}
	return &Events{db: db, cfg: cfg, in: make(chan domain.Event, cfg.Buffer)}
}

// EnsureSchema creates the events table when missing
func (e *Events) EnsureSchema(ctx context.Context) error {
	return e.db.Exec(ctx, `CREATE TABLE IF NOT EXISTS `+eventsTable+` (
		id            UUID,
		at            DateTime64(3, 'UTC'),
		rule_id       String,
		category      LowCardinality(String),
		method        LowCardinality(String),
		fallback_used Bool,
		suggestions   UInt8,
		elapsed_ms    Int64,
		tiers         Array(String),
		deadline_hit  Bool,
		caller        LowCardinality(String)
	) ENGINE = MergeTree
	PARTITION BY toYYYYMM(at)
	ORDER BY (category, at)`)
}

// Record enqueues ev; a full buffer drops the event
func (e *Events) Record(_ context.Context, ev domain.Event) error {
	select {
	case e.in <- ev:
		return nil
	default:
		e.mu.Lock()
		e.dropped++
		e.mu.Unlock()
		return ErrBufferFull
	}
}

// Dropped reports how many events were discarded because the buffer was full
func (e *Events) Dropped() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.dropped
}

// Run flushes on every tick or full batch; on shutdown it drains what is buffered
func (e *Events) Run(ctx context.Context) error {
	t := time.NewTicker(e.cfg.FlushEvery)
	defer t.Stop()

	buf := make([]domain.Event, 0, e.cfg.Batch)
	for {
		select {
		case <-ctx.Done():
		drain:
			for {
				select {
				case ev := <-e.in:
					buf = append(buf, ev)
				default:
					break drain
				}
			}
			fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
			e.flush(fctx, buf)
			cancel()
			return ctx.Err()
		case ev := <-e.in:
			buf = append(buf, ev)
			if len(buf) >= e.cfg.Batch {
				e.flush(ctx, buf)
				buf = buf[:0]
			}
		case <-t.C:
			if len(buf) > 0 {
				e.flush(ctx, buf)
				buf = buf[:0]
			}
		}
	}
}

// flush writes one batch; failures are logged and the batch discarded
func (e *Events) flush(ctx context.Context, evs []domain.Event) {
	if len(evs) == 0 {
		return
	}
	if err := e.Write(ctx, evs); err != nil {
		logger.C(ctx).Warn().Err(err).Str("mod", "suggest").Int("events", len(evs)).Msg("event flush failed")
	}
}

// Write inserts evs synchronously
func (e *Events) Write(ctx context.Context, evs []domain.Event) error {
	rows := make([][]any, 0, len(evs))
	for _, ev := range evs {
		id, err := uuid.Parse(ev.ID)
		if err != nil {
			id = uuid.New()
		}
		n := ev.Suggestions
		if n < 0 {
			n = 0
		}
		rows = append(rows, []any{
			id, ev.At.UTC(), ev.RuleID, string(ev.Category), string(ev.Method),
			ev.FallbackUsed, uint8(n), ev.ElapsedMs, ev.Tiers, ev.DeadlineHit, ev.Caller,
		})
	}
	if err := e.db.Insert(ctx, eventsTable, rows); err != nil {
		return perr.Wrap(err, perr.ErrorCodeUnavailable, "events: insert")
	}
	return nil
}
