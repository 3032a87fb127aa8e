package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	perr "stylefix/internal/platform/errors"

	"github.com/google/go-cmp/cmp"
)

func chatReply(w http.ResponseWriter, content string) {
	_ = json.NewEncoder(w).Encode(map[string]any{
		"choices": []map[string]any{
			{"message": map[string]any{"role": "assistant", "content": content}, "finish_reason": "stop"},
		},
	})
}

func fastOpts(urls string) Options {
	return Options{BaseURLs: urls, Model: "test-model", RetryBase: time.Millisecond, MaxRetries: 2}
}

func TestSplitBaseURLs(t *testing.T) {
	t.Parallel()

	got := splitBaseURLs("10.0.0.5:1234/v1, http://10.0.0.6:1234 ;10.0.0.5:1234/v1")
	want := []string{"http://10.0.0.5:1234/v1", "http://10.0.0.6:1234/v1"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("splitBaseURLs mismatch (-want +got):\n%s", diff)
	}
	if got := splitBaseURLs("  "); len(got) != 0 {
		t.Fatalf("blank input should yield nothing, got %v", got)
	}
}

func TestChat_SendsSystemAndUser(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer k" {
			t.Errorf("auth header = %q", got)
		}
		var body chatRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if body.Model != "test-model" || len(body.Messages) != 2 || body.Messages[0].Role != "system" {
			t.Errorf("unexpected request: %+v", body)
		}
		chatReply(w, "  OPTION 1: Save the file.  ")
	}))
	defer srv.Close()

	o := fastOpts(srv.URL)
	o.APIKey = "k"
	got, err := NewChat(o).Complete(context.Background(), "sys", "user")
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if got != "OPTION 1: Save the file." {
		t.Fatalf("Complete = %q", got)
	}
}

func TestChat_FailsOverToSecondEndpoint(t *testing.T) {
	t.Parallel()

	var failHits atomic.Int32
	fail := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		failHits.Add(1)
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer fail.Close()
	ok := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		chatReply(w, "ok-second-endpoint")
	}))
	defer ok.Close()

	got, err := NewChat(fastOpts(fail.URL+", "+ok.URL)).Complete(context.Background(), "s", "p")
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if got != "ok-second-endpoint" {
		t.Fatalf("Complete = %q", got)
	}
	// one try plus two retries on the failing endpoint
	if n := failHits.Load(); n != 3 {
		t.Fatalf("failing endpoint hit %d times, want 3", n)
	}
}

func TestChat_RetriesTransientThenSucceeds(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		chatReply(w, "recovered")
	}))
	defer srv.Close()

	got, err := NewChat(fastOpts(srv.URL)).Complete(context.Background(), "s", "p")
	if err != nil || got != "recovered" {
		t.Fatalf("Complete = %q, %v", got, err)
	}
}

func TestChat_ErrorCodes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		handler http.HandlerFunc
		code    perr.ErrorCode
		hits    int32
	}{
		{
			name:    "rate limited everywhere",
			handler: func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusTooManyRequests) },
			code:    perr.ErrorCodeTooManyRequests,
			hits:    3,
		},
		{
			name:    "client error is not retried",
			handler: func(w http.ResponseWriter, r *http.Request) { http.Error(w, "bad", http.StatusBadRequest) },
			code:    perr.ErrorCodeUnavailable,
			hits:    1,
		},
		{
			name:    "garbage body is malformed",
			handler: func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte("not json")) },
			code:    perr.ErrorCodeMalformed,
			hits:    1,
		},
		{
			name:    "no choices is malformed",
			handler: func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte(`{"choices":[]}`)) },
			code:    perr.ErrorCodeMalformed,
			hits:    1,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var hits atomic.Int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				hits.Add(1)
				tc.handler(w, r)
			}))
			defer srv.Close()

			_, err := NewChat(fastOpts(srv.URL)).Complete(context.Background(), "s", "p")
			if err == nil {
				t.Fatalf("expected error")
			}
			if got := perr.CodeOf(err); got != tc.code {
				t.Fatalf("code = %v, want %v (err %v)", got, tc.code, err)
			}
			if n := hits.Load(); n != tc.hits {
				t.Fatalf("server hit %d times, want %d", n, tc.hits)
			}
		})
	}
}

func TestChat_DeadlineMapsToTimeout(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	_, err := NewChat(fastOpts(srv.URL)).Complete(ctx, "s", "p")
	if !perr.IsCode(err, perr.ErrorCodeTimeout) {
		t.Fatalf("want timeout code, got %v", err)
	}
}

func TestChat_AllEndpointsDown(t *testing.T) {
	t.Parallel()

	o := fastOpts("http://127.0.0.1:1/v1, http://127.0.0.1:2/v1")
	o.MaxRetries = -1
	_, err := NewChat(o).Complete(context.Background(), "s", "p")
	if err == nil || !strings.Contains(err.Error(), "across endpoints") {
		t.Fatalf("expected aggregated endpoint error, got: %v", err)
	}
	if !perr.IsCode(err, perr.ErrorCodeUnavailable) {
		t.Fatalf("want unavailable, got %v", perr.CodeOf(err))
	}
}

func TestEmbeddings_OrdersByIndex(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/embeddings" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"data":[{"index":1,"embedding":[0,1]},{"index":0,"embedding":[1,0]}]}`))
	}))
	defer srv.Close()

	got, err := NewEmbeddings(fastOpts(srv.URL)).EmbedBatch(context.Background(), []string{"a", "b"})
	if err != nil {
		t.Fatalf("EmbedBatch: %v", err)
	}
	want := [][]float32{{1, 0}, {0, 1}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("EmbedBatch mismatch (-want +got):\n%s", diff)
	}
}

func TestEmbeddings_CountMismatchIsMalformed(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":[]}`))
	}))
	defer srv.Close()

	_, err := NewEmbeddings(fastOpts(srv.URL)).Embed(context.Background(), "a")
	if !perr.IsCode(err, perr.ErrorCodeMalformed) {
		t.Fatalf("want malformed, got %v", err)
	}
}
