// Package corpus loads guidance exemplars from YAML
package corpus

import (
	_ "embed"
	"fmt"
	"io"
	"os"
	"strings"

	perr "stylefix/internal/platform/errors"
	"stylefix/internal/services/guidance/domain"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

//go:embed corpus.yaml
var defaultYAML []byte

// namespace scopes content-derived entry ids
var namespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("stylefix/guidance"))

type file struct {
	Entries []domain.Entry `yaml:"entries"`
}

// Default returns the embedded seed corpus
func Default() ([]domain.Entry, error) { return Parse(defaultYAML) }

// Load reads a corpus file from disk
func Load(path string) ([]domain.Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("corpus: open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()
	return Read(f)
}

// Read parses a corpus from r
func Read(r io.Reader) ([]domain.Entry, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("corpus: read: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML, trims fields, validates entries and fills missing ids
func Parse(data []byte) ([]domain.Entry, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeInvalidArgument, "corpus: yaml")
	}
	seen := make(map[string]int, len(f.Entries))
	out := make([]domain.Entry, 0, len(f.Entries))
	for i, e := range f.Entries {
		e = tidy(e)
		if e.SolutionText == "" {
			return nil, perr.InvalidArgf("corpus: entry %d has no solution", i)
		}
		if e.ID == "" {
			e.ID = ID(e)
		} else if _, err := uuid.Parse(e.ID); err != nil {
			return nil, perr.InvalidArgf("corpus: entry %d id %q is not a uuid", i, e.ID)
		}
		if j, dup := seen[e.ID]; dup {
			return nil, perr.InvalidArgf("corpus: entries %d and %d share id %s", j, i, e.ID)
		}
		seen[e.ID] = i
		out = append(out, e)
	}
	return out, nil
}

// ID derives a stable uuid from entry content so reseeding replaces instead of duplicating
func ID(e domain.Entry) string {
	return uuid.NewSHA1(namespace, []byte(e.RuleID+"\x00"+e.EmbedText())).String()
}

func tidy(e domain.Entry) domain.Entry {
	e.ID = strings.TrimSpace(e.ID)
	e.RuleID = strings.TrimSpace(e.RuleID)
	e.SolutionText = strings.TrimSpace(e.SolutionText)
	e.Explanation = strings.TrimSpace(e.Explanation)
	e.ExampleBad = strings.TrimSpace(e.ExampleBad)
	e.ExampleGood = strings.TrimSpace(e.ExampleGood)
	tags := e.Tags[:0:0]
	for _, t := range e.Tags {
		if t = strings.ToLower(strings.TrimSpace(t)); t != "" {
			tags = append(tags, t)
		}
	}
	e.Tags = tags
	return e
}
