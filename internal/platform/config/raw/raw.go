// Package raw reads environment variables without logging
// The logger bootstraps from it, so it must not import the logger
package raw

import (
	"os"
	"strconv"
	"strings"
)

// Conf is a namespaced view over environment variables
type Conf struct{ prefix string }

// New returns a root Conf (no prefix)
func New() Conf { return Conf{} }

// Prefix returns a child Conf with an additional prefix (e.g. "LOG_")
func (c Conf) Prefix(p string) Conf { return Conf{prefix: c.prefix + p} }

// Get returns the trimmed value or def when blank
func (c Conf) Get(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(c.prefix + key)); v != "" {
		return v
	}
	return def
}

// GetBool accepts strconv bools plus "yes"; anything else is def
func (c Conf) GetBool(key string, def bool) bool {
	v := strings.ToLower(c.Get(key, ""))
	if v == "yes" {
		return true
	}
	if b, err := strconv.ParseBool(v); err == nil {
		return b
	}
	return def
}

// GetInt returns a non-negative integer or def
func (c Conf) GetInt(key string, def int) int {
	if n, err := strconv.Atoi(c.Get(key, "")); err == nil && n >= 0 {
		return n
	}
	return def
}
