package normalize

import (
	"errors"
	"sync"
	"testing"

	"golang.org/x/text/transform"
)

func TestKey_Table(t *testing.T) {
	tests := []struct {
		name string
		in   string
		out  string
	}{
		{name: "identity", in: "use it when needed", out: "use it when needed"},
		{name: "case fold", in: "You MUST Meet", out: "you must meet"},
		{name: "collapse whitespace", in: "a\t\tb\nc   d", out: "a b c d"},
		{name: "trailing punctuation", in: "Use it when needed.", out: "use it when needed"},
		{name: "colon and quotes", in: "\"You must meet the requirements:\"", out: "you must meet the requirements"},
		{name: "zero widths", in: "con\u200Bfigure", out: "configure"},
		{name: "combining marks", in: "cafe\u0301 menu", out: "cafe menu"},
		{name: "fullwidth", in: "ＵＳＥ it", out: "use it"},
		{name: "ligature", in: "oﬃce", out: "office"},
		{name: "invalid utf8", in: string([]byte{0xff, 'o', 'k'}), out: "ok"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Key(tc.in)
			if got != tc.out {
				t.Fatalf("Key(%q) = %q, want %q", tc.in, got, tc.out)
			}
			if again := Key(got); again != got {
				t.Fatalf("Key not idempotent: %q -> %q", got, again)
			}
		})
	}
}

func TestText_PreservesCase(t *testing.T) {
	in := "  The  OPC\u200B UA\tConnector\nis configured.  "
	want := "The OPC UA Connector is configured."
	if got := Text(in); got != want {
		t.Fatalf("Text(%q) = %q, want %q", in, got, want)
	}
}

func TestText_DropsControls(t *testing.T) {
	in := "ship\x00 it\x7f\u0085 now\r\n"
	want := "ship it now"
	if got := Text(in); got != want {
		t.Fatalf("Text(%q) = %q, want %q", in, got, want)
	}
}

func TestWordCount(t *testing.T) {
	if got := WordCount("  one two\tthree\n"); got != 3 {
		t.Fatalf("WordCount = %d, want 3", got)
	}
}

type failingTransformer struct{ transform.NopResetter }

func (failingTransformer) Transform(_, _ []byte, _ bool) (int, int, error) {
	return 0, 0, errors.New("transform failed")
}

func TestApply_FallsBackOnTransformError(t *testing.T) {
	pool := sync.Pool{New: func() any { return failingTransformer{} }}
	if got := apply(&pool, "Caf\xe9 Menu"); got != "Caf Menu" {
		t.Fatalf("apply = %q, want the sanitized input", got)
	}
}
