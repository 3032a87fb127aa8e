// Package repo provides guidance index backends
package repo

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"sync"

	perr "stylefix/internal/platform/errors"
	"stylefix/internal/services/guidance/domain"

	"github.com/vmihailenco/msgpack/v5"
)

// snapshotVersion is bumped when the snapshot layout changes
const snapshotVersion = 1

// Memory is a brute-force cosine index held in process memory
type Memory struct {
	mu      sync.RWMutex
	entries []domain.Entry
	byID    map[string]int
}

var (
	_ domain.VectorIndex  = (*Memory)(nil)
	_ domain.CorpusWriter = (*Memory)(nil)
)

// NewMemory constructs an index holding entries
func NewMemory(entries ...domain.Entry) *Memory {
	m := &Memory{byID: map[string]int{}}
	_ = m.Upsert(context.Background(), entries)
	return m
}

// Len returns the number of entries
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// Entries returns a copy of the indexed entries in insertion order
func (m *Memory) Entries() []domain.Entry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]domain.Entry(nil), m.entries...)
}

// Upsert implements domain.CorpusWriter
func (m *Memory) Upsert(_ context.Context, entries []domain.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range entries {
		if e.ID == "" {
			return perr.InvalidArgf("guidance: entry without id")
		}
		if i, ok := m.byID[e.ID]; ok {
			m.entries[i] = e
			continue
		}
		m.byID[e.ID] = len(m.entries)
		m.entries = append(m.entries, e)
	}
	return nil
}

// Nearest implements domain.VectorIndex
func (m *Memory) Nearest(ctx context.Context, vec []float32, k int, tags []string) ([]domain.Neighbor, error) {
	if err := ctx.Err(); err != nil {
		return nil, perr.FromContext(err, "guidance: memory nearest")
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if len(m.entries) == 0 {
		return nil, perr.Unavailablef("guidance: memory index is empty")
	}
	if k <= 0 {
		return nil, nil
	}

	out := make([]domain.Neighbor, 0, k)
	for _, e := range m.entries {
		if len(tags) > 0 && !anyTag(e, tags) {
			continue
		}
		if len(e.Embedding) != len(vec) {
			continue
		}
		out = append(out, domain.Neighbor{
			ID:         e.ID,
			Document:   e.SolutionText,
			Meta:       domain.Metadata{RuleID: e.RuleID, Tags: e.Tags},
			Similarity: Cosine(vec, e.Embedding),
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Similarity > out[j].Similarity })
	if len(out) > k {
		out = out[:k]
	}
	return out, nil
}

// Cosine returns the cosine similarity of a and b clamped to [0,1]
// Mismatched lengths and zero vectors score 0
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	c := dot / (math.Sqrt(na) * math.Sqrt(nb))
	return math.Max(0, math.Min(1, c))
}

func anyTag(e domain.Entry, tags []string) bool {
	for _, t := range tags {
		if e.HasTag(t) {
			return true
		}
	}
	return false
}

// Snapshots

type snapshot struct {
	Version int            `msgpack:"v"`
	Dim     int            `msgpack:"dim"`
	Entries []domain.Entry `msgpack:"entries"`
}

// WriteSnapshot encodes the index as msgpack
func (m *Memory) WriteSnapshot(w io.Writer) error {
	entries := m.Entries()
	dim := 0
	for _, e := range entries {
		if dim == 0 {
			dim = len(e.Embedding)
		}
		if len(e.Embedding) != dim {
			return perr.InvalidArgf("guidance: entry %s has dim %d, want %d", e.ID, len(e.Embedding), dim)
		}
	}
	return msgpack.NewEncoder(w).Encode(snapshot{Version: snapshotVersion, Dim: dim, Entries: entries})
}

// SaveSnapshot writes the snapshot to path atomically
func (m *Memory) SaveSnapshot(path string) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".guidance-*.msgpack")
	if err != nil {
		return fmt.Errorf("guidance: snapshot temp: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	bw := bufio.NewWriter(tmp)
	if err := m.WriteSnapshot(bw); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("guidance: encode snapshot: %w", err)
	}
	if err := bw.Flush(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("guidance: flush snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("guidance: close snapshot: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("guidance: rename snapshot: %w", err)
	}
	return nil
}

// ReadSnapshot decodes a msgpack snapshot into a new index
func ReadSnapshot(r io.Reader) (*Memory, error) {
	var s snapshot
	if err := msgpack.NewDecoder(r).Decode(&s); err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeMalformed, "guidance: decode snapshot")
	}
	if s.Version != snapshotVersion {
		return nil, perr.Malformedf("guidance: snapshot version %d, want %d", s.Version, snapshotVersion)
	}
	for _, e := range s.Entries {
		if len(e.Embedding) != s.Dim {
			return nil, perr.Malformedf("guidance: snapshot entry %s has dim %d, want %d", e.ID, len(e.Embedding), s.Dim)
		}
	}
	return NewMemory(s.Entries...), nil
}

// LoadSnapshot reads a snapshot file
func LoadSnapshot(path string) (*Memory, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeUnavailable, "guidance: open snapshot")
	}
	defer func() { _ = f.Close() }()
	return ReadSnapshot(bufio.NewReader(f))
}
