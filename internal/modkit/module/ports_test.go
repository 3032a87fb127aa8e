package module

import (
	"strings"
	"testing"

	phttp "stylefix/internal/platform/net/http"
	kit "stylefix/internal/platform/testkit"
)

type retriever interface{ Retrieve() int }

type fixedRetriever int

func (f fixedRetriever) Retrieve() int { return int(f) }

type bundle struct {
	Retriever retriever
	TopK      int
	hidden    retriever
}

type fakeModule struct {
	name  string
	ports any
}

func (m fakeModule) Name() string             { return m.name }
func (m fakeModule) Prefix() string           { return "/" + m.name }
func (m fakeModule) Ports() any               { return m.ports }
func (m fakeModule) MountRoutes(phttp.Router) {}

func TestPortsOf(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		ports any
		want  int
		ok    bool
	}{
		{name: "nil ports", ports: nil},
		{name: "direct", ports: fixedRetriever(4), want: 4, ok: true},
		{name: "bundle field", ports: bundle{Retriever: fixedRetriever(7), TopK: 3}, want: 7, ok: true},
		{name: "unexported field ignored", ports: bundle{hidden: fixedRetriever(9)}},
		{name: "pointer bundle not walked", ports: &bundle{Retriever: fixedRetriever(1)}},
		{name: "unrelated", ports: 42},
	}
	for _, tc := range tests {
		got, ok := PortsOf[retriever](fakeModule{name: tc.name, ports: tc.ports})
		if ok != tc.ok {
			t.Fatalf("%s: ok = %v, want %v", tc.name, ok, tc.ok)
		}
		if ok && got.Retrieve() != tc.want {
			t.Fatalf("%s: Retrieve = %d, want %d", tc.name, got.Retrieve(), tc.want)
		}
	}

	whole, ok := PortsOf[bundle](fakeModule{ports: bundle{TopK: 3}})
	if !ok || whole.TopK != 3 {
		t.Fatalf("struct bundle lookup = %+v %v", whole, ok)
	}
}

func TestMustPortsOf_PanicsWithModuleName(t *testing.T) {
	t.Parallel()

	defer func() {
		msg, _ := recover().(string)
		if !strings.Contains(msg, "guidance") || !strings.Contains(msg, "no port implements") {
			t.Fatalf("panic message = %q", msg)
		}
	}()
	_ = MustPortsOf[retriever](fakeModule{name: "guidance", ports: 1})
}

func TestMustPortsOf_Returns(t *testing.T) {
	t.Parallel()

	got := MustPortsOf[retriever](fakeModule{ports: bundle{Retriever: fixedRetriever(2)}})
	if got.Retrieve() != 2 {
		t.Fatalf("Retrieve = %d", got.Retrieve())
	}
	kit.MustPanic(t, func() { _ = MustPortsOf[retriever](fakeModule{name: "x"}) })
}
