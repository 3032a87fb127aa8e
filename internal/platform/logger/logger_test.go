package logger

import (
	"bytes"
	"context"
	"strings"
	"testing"

	kit "stylefix/internal/platform/testkit"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]zerolog.Level{
		"trace":       zerolog.TraceLevel,
		" INFO ":      zerolog.InfoLevel,
		"warning":     zerolog.WarnLevel,
		"error":       zerolog.ErrorLevel,
		"":            zerolog.DebugLevel,
		"   nonsense": zerolog.DebugLevel,
	}
	for in, want := range cases {
		if got := parseLevel(in); got != want {
			t.Fatalf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestInit_StampsBuildAndRequest(t *testing.T) {
	var buf bytes.Buffer
	Init(Options{Level: "info", Format: "console", Component: "root", Writer: &buf, WithCaller: true, SampleEvery: 2})

	// sampled loggers are re-sampled to N=1 so every line lands
	rv := Get().Sample(&zerolog.BasicSampler{N: 1})
	rv.Info().Msg("root-msg")
	nv := Named("api").Sample(&zerolog.BasicSampler{N: 1})
	nv.Info().Msg("named-msg")
	cv := C(WithRequest(context.Background(), "req-123", "client-1")).Sample(&zerolog.BasicSampler{N: 1})
	cv.Info().Msg("ctx-msg")

	out := buf.String()
	for _, want := range []string{"root-msg", "named-msg", "ctx-msg", "req-123", "client-1", "caller_id=", "service=", "stylefix", "version="} {
		kit.MustContain(t, out, want)
	}
}

func TestNew_JSONFields(t *testing.T) {
	var buf bytes.Buffer
	l := New(Options{Level: "warning", Format: "json", Service: "stylefix-test", Component: "pg", Writer: &buf})
	l.Info().Msg("dropped")
	l.Warn().Msg("kept")

	out := buf.String()
	if strings.Contains(out, "dropped") {
		t.Fatalf("info line passed a warn logger: %s", out)
	}
	for _, want := range []string{`"service":"stylefix-test"`, `"component":"pg"`, `"version":`, `"message":"kept"`} {
		kit.MustContain(t, out, want)
	}
}

func TestFromEnv_Independently(t *testing.T) {
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("LOG_SERVICE", "svc-b")
	t.Setenv("LOG_COMPONENT", "comp-b")
	t.Setenv("LOG_CALLER", "true")
	t.Setenv("LOG_SAMPLE_EVERY", "5")

	opt := FromEnv()
	if opt.Level != "warn" {
		t.Fatalf("FromEnv Level = %q, want warn", opt.Level)
	}
	if opt.Format != "json" || opt.Service != "svc-b" || opt.Component != "comp-b" {
		t.Fatalf("FromEnv fields mismatch: %+v", opt)
	}
	if !opt.WithCaller || opt.SampleEvery != 5 {
		t.Fatalf("FromEnv caller/sample mismatch: %+v", opt)
	}
}

func TestC_WithoutRequestFields(t *testing.T) {
	var buf bytes.Buffer
	l := C(context.Background()).Output(&buf).Level(zerolog.DebugLevel)
	l.Info().Msg("plain")
	if strings.Contains(buf.String(), "request_id") || strings.Contains(buf.String(), "caller_id") {
		t.Fatalf("unexpected request fields: %s", buf.String())
	}
}
