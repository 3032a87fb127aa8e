package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	perr "stylefix/internal/platform/errors"
)

func TestAnthropic_Complete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/v1/messages") {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode: %v", err)
		}
		if body["model"] != "claude-test" {
			t.Errorf("model = %v", body["model"])
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "msg_1",
			"type": "message",
			"role": "assistant",
			"model": "claude-test",
			"content": [{"type": "text", "text": "OPTION 1: Save the file.\nWHY: active voice"}],
			"stop_reason": "end_turn",
			"usage": {"input_tokens": 10, "output_tokens": 7}
		}`))
	}))
	defer srv.Close()

	a := NewAnthropic(Options{BaseURLs: srv.URL, APIKey: "k", Model: "claude-test", MaxRetries: -1})
	got, err := a.Complete(context.Background(), "sys", "prompt")
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if !strings.HasPrefix(got, "OPTION 1: Save the file.") {
		t.Fatalf("Complete = %q", got)
	}
	if a.Name() != "anthropic:claude-test" {
		t.Fatalf("Name = %q", a.Name())
	}
}

func TestAnthropic_ServerErrorIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"type":"error","error":{"type":"api_error","message":"boom"}}`))
	}))
	defer srv.Close()

	a := NewAnthropic(Options{BaseURLs: srv.URL, APIKey: "k", MaxRetries: -1})
	_, err := a.Complete(context.Background(), "sys", "prompt")
	if !perr.IsCode(err, perr.ErrorCodeUnavailable) {
		t.Fatalf("want unavailable, got %v", err)
	}
}
