package config

import (
	"testing"
	"time"

	kit "stylefix/internal/platform/testkit"

	"github.com/google/go-cmp/cmp"
)

func TestPrefix_Nests(t *testing.T) {
	if got := New().Prefix("CORE_").Prefix("REWRITE_").key("PROVIDER"); got != "CORE_REWRITE_PROVIDER" {
		t.Fatalf("key = %q", got)
	}
}

func TestMay_Typed(t *testing.T) {
	c := New().Prefix("SF_")
	t.Setenv("SF_NAME", "  stylefix ")
	t.Setenv("SF_K", " 8 ")
	t.Setenv("SF_BOOST", "0.25")
	t.Setenv("SF_ON", "true")
	t.Setenv("SF_DEADLINE", "25s")
	t.Setenv("SF_BAD", "x")

	if got := c.MayString("NAME", "d"); got != "stylefix" {
		t.Fatalf("MayString = %q", got)
	}
	if got := c.MayString("MISSING", "d"); got != "d" {
		t.Fatalf("MayString default = %q", got)
	}
	if got := c.MayInt("K", 5); got != 8 {
		t.Fatalf("MayInt = %d", got)
	}
	if got := c.MayInt("BAD", 5); got != 5 {
		t.Fatalf("MayInt invalid = %d", got)
	}
	if got := c.MayFloat64("BOOST", 0.1); got != 0.25 {
		t.Fatalf("MayFloat64 = %v", got)
	}
	if got := c.MayBool("ON", false); !got {
		t.Fatalf("MayBool = %v", got)
	}
	if got := c.MayBool("BAD", true); !got {
		t.Fatalf("MayBool invalid should keep default")
	}
	if got := c.MayDuration("DEADLINE", time.Second); got != 25*time.Second {
		t.Fatalf("MayDuration = %v", got)
	}
	if got := c.MayDuration("BAD", time.Second); got != time.Second {
		t.Fatalf("MayDuration invalid = %v", got)
	}
}

func TestMayCSV(t *testing.T) {
	c := New().Prefix("SF_")
	t.Setenv("SF_TOKENS", " k1, ,k2 ,")
	t.Setenv("SF_BLANK", " , ")
	if diff := cmp.Diff([]string{"k1", "k2"}, c.MayCSV("TOKENS", nil)); diff != "" {
		t.Fatalf("MayCSV (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"d"}, c.MayCSV("BLANK", []string{"d"})); diff != "" {
		t.Fatalf("MayCSV blank (-want +got):\n%s", diff)
	}
}

func TestMayEnum(t *testing.T) {
	c := New().Prefix("SF_")
	t.Setenv("SF_PROVIDER", "Anthropic")
	if got := c.MayEnum("PROVIDER", "none", "none", "openai", "anthropic"); got != "Anthropic" {
		t.Fatalf("MayEnum = %q", got)
	}
	if got := c.MayEnum("MISSING", "", "a"); got != "" {
		t.Fatalf("MayEnum empty default = %q", got)
	}
	t.Setenv("SF_PROVIDER", "gemini")
	kit.MustPanic(t, func() { c.MayEnum("PROVIDER", "none", "none", "openai") })
}

func TestMust(t *testing.T) {
	c := New().Prefix("SF_")
	t.Setenv("SF_URL", "postgres://db:5432/stylefix")
	t.Setenv("SF_REL", "db/stylefix")
	if u := c.MustURL("URL"); u.Host != "db:5432" {
		t.Fatalf("MustURL host = %q", u.Host)
	}
	kit.MustPanic(t, func() { c.MustURL("REL") })
	kit.MustPanic(t, func() { c.MustString("MISSING") })
}

func TestMayAddr(t *testing.T) {
	tests := []struct {
		in, want string
		panics   bool
	}{
		{in: "", want: ":4000"},
		{in: "8080", want: ":8080"},
		{in: ":8080", want: ":8080"},
		{in: "127.0.0.1:0", want: "127.0.0.1:0"},
		{in: "[::1]:9000", want: "[::1]:9000"},
		{in: "host:http", panics: true},
		{in: "70000", panics: true},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			t.Setenv("SF_PORT", tc.in)
			c := New().Prefix("SF_")
			if tc.panics {
				kit.MustPanic(t, func() { c.MayAddr("PORT", "4000") })
				return
			}
			if got := c.MayAddr("PORT", "4000"); got != tc.want {
				t.Fatalf("MayAddr(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}
