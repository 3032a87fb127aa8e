// Package config reads typed settings from environment variables
package config

import (
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"stylefix/internal/platform/logger"
)

// Conf is a namespaced view over environment variables
// config.New().Prefix("CORE_API_") reads CORE_API_* keys
type Conf struct{ prefix string }

// New creates a root Conf (no prefix)
func New() Conf { return Conf{} }

// Prefix creates a child Conf with an additional prefix
func (c Conf) Prefix(p string) Conf { return Conf{prefix: c.prefix + p} }

func (c Conf) key(k string) string { return c.prefix + k }

func (c Conf) get(k string) string { return strings.TrimSpace(os.Getenv(c.key(k))) }

func (c Conf) fail(key, value, msg string) {
	logger.Get().Panic().Str("key", c.key(key)).Str("value", value).Msg(msg)
}

// parse returns def for an unset key, and def with a warning for one that does not parse
func parse[T any](c Conf, key string, def T, fn func(string) (T, error)) T {
	s := c.get(key)
	if s == "" {
		return def
	}
	v, err := fn(s)
	if err != nil {
		logger.Get().Warn().Str("key", c.key(key)).Str("value", s).Interface("default", def).
			Msg("invalid value; using default")
		return def
	}
	return v
}

// MustString panics if the key is missing or blank
func (c Conf) MustString(key string) string {
	v := c.get(key)
	if v == "" {
		c.fail(key, v, "missing required env")
	}
	return v
}

// MustURL panics unless the key holds an absolute URL
func (c Conf) MustURL(key string) *url.URL {
	s := c.MustString(key)
	u, err := url.Parse(s)
	if err != nil || !u.IsAbs() {
		c.fail(key, s, "invalid absolute URL")
	}
	return u
}

// MayAddr returns a listen address, accepting "4000", ":4000" or "host:4000"
// It panics on a malformed address
func (c Conf) MayAddr(key, def string) string {
	s := c.MayString(key, def)
	if !strings.Contains(s, ":") {
		s = ":" + s
	}
	_, port, err := net.SplitHostPort(s)
	if err == nil {
		var p int
		if p, err = strconv.Atoi(port); err == nil && (p < 0 || p > 65535) {
			err = strconv.ErrRange
		}
	}
	if err != nil {
		c.fail(key, s, "invalid listen address; expected [host]:port")
	}
	return s
}

// MayString returns the value or def if missing or blank
func (c Conf) MayString(key, def string) string {
	if v := c.get(key); v != "" {
		return v
	}
	return def
}

// MayInt returns the value or def if missing or invalid
func (c Conf) MayInt(key string, def int) int { return parse(c, key, def, strconv.Atoi) }

// MayFloat64 returns the value or def if missing or invalid
func (c Conf) MayFloat64(key string, def float64) float64 {
	return parse(c, key, def, func(s string) (float64, error) { return strconv.ParseFloat(s, 64) })
}

// MayBool returns the value or def if missing or invalid
func (c Conf) MayBool(key string, def bool) bool { return parse(c, key, def, strconv.ParseBool) }

// MayDuration returns the value or def if missing or invalid
func (c Conf) MayDuration(key string, def time.Duration) time.Duration {
	return parse(c, key, def, time.ParseDuration)
}

// MayCSV splits a comma-separated value, dropping blanks; def if nothing remains
func (c Conf) MayCSV(key string, def []string) []string {
	var out []string
	for _, p := range strings.Split(c.get(key), ",") {
		if v := strings.TrimSpace(p); v != "" {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}

// MayEnum returns the value if it is one of allowed (case-insensitive), def if unset, and panics otherwise
func (c Conf) MayEnum(key, def string, allowed ...string) string {
	v := c.MayString(key, def)
	if v == "" {
		return v
	}
	for _, a := range allowed {
		if strings.EqualFold(v, a) {
			return v
		}
	}
	logger.Get().Panic().Str("key", c.key(key)).Str("value", v).Strs("allowed", allowed).Msg("invalid enum value")
	return ""
}
