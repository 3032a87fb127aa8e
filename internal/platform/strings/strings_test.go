package strings

import (
	"testing"

	kit "stylefix/internal/platform/testkit"
)

func TestIfEmpty(t *testing.T) {
	def := []string{"GET", "POST"}
	if got := IfEmpty(nil, def); len(got) != 2 {
		t.Fatalf("nil input = %v", got)
	}
	if got := IfEmpty([]string{"PUT"}, def); len(got) != 1 || got[0] != "PUT" {
		t.Fatalf("non-empty input = %v", got)
	}
}

func TestMustString(t *testing.T) {
	if got := MustString("suggest", "name"); got != "suggest" {
		t.Fatalf("got %q", got)
	}
	kit.MustPanic(t, func() { _ = MustString("   ", "name") })
}

func TestMustPrefix(t *testing.T) {
	for in, want := range map[string]string{
		"/suggestions/":  "/suggestions",
		" guidance  ":    "/guidance",
		"//rewrite//":    "/rewrite",
		"meta/pipeline/": "/meta/pipeline",
	} {
		if got := MustPrefix(in); got != want {
			t.Fatalf("MustPrefix(%q) = %q, want %q", in, got, want)
		}
	}
	for _, in := range []string{"/", "", "  //  "} {
		kit.MustPanic(t, func() { _ = MustPrefix(in) })
	}
}
