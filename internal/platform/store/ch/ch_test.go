package ch

import (
	"context"
	"testing"
)

func TestOpen_RejectsEmptyAndBadDSN(t *testing.T) {
	t.Parallel()

	if _, err := Open(context.Background(), Config{}); err == nil {
		t.Fatalf("empty url should fail")
	}
	if _, err := Open(context.Background(), Config{URL: "clickhouse://host:notaport/db"}); err == nil {
		t.Fatalf("bad dsn should fail")
	}
}

// Open does not dial, so a well formed DSN succeeds without a server
func TestOpen_LazyDial(t *testing.T) {
	t.Parallel()

	cl, err := Open(context.Background(), Config{
		URL:        "clickhouse://127.0.0.1:9000/default",
		ClientName: "stylefix",
		ClientTag:  "test",
	})
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	if err := cl.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}
}

func TestInsert_EmptyIsNoOp(t *testing.T) {
	t.Parallel()

	cl := &CH{}
	if err := cl.Insert(context.Background(), "resolution_events", nil); err != nil {
		t.Fatalf("empty insert should not touch the connection: %v", err)
	}
}

func TestClose_NilSafe(t *testing.T) {
	t.Parallel()

	var cl *CH
	if err := cl.Close(); err != nil {
		t.Fatalf("Close on nil returned error: %v", err)
	}
	if err := (&CH{}).Close(); err != nil {
		t.Fatalf("Close without conn returned error: %v", err)
	}
}

func TestBuildClientInfo(t *testing.T) {
	t.Parallel()

	ci := BuildClientInfo("", " api ")
	if len(ci.Products) < 2 {
		t.Fatalf("products = %v", ci.Products)
	}
	if ci.Products[0].Name != "stylefix" {
		t.Fatalf("default name = %q", ci.Products[0].Name)
	}
	if ci.Products[1].Version != "api" {
		t.Fatalf("role should be trimmed, got %q", ci.Products[1].Version)
	}
}
