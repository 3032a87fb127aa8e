package mcp

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"stylefix/internal/core/pattern"
	"stylefix/internal/services/suggest/service"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

func connect(t *testing.T, ctx context.Context, s *Server) *sdkmcp.ClientSession {
	t.Helper()
	t1, t2 := sdkmcp.NewInMemoryTransports()
	ss, err := s.MCPServer.Connect(ctx, t1, nil)
	if err != nil {
		t.Fatalf("server.Connect: %v", err)
	}
	t.Cleanup(func() { _ = ss.Close() })

	client := sdkmcp.NewClient(&sdkmcp.Implementation{Name: "test-client", Version: "v0.0.1"}, nil)
	cs, err := client.Connect(ctx, t2, nil)
	if err != nil {
		t.Fatalf("client.Connect: %v", err)
	}
	t.Cleanup(func() { _ = cs.Close() })
	return cs
}

func call(t *testing.T, ctx context.Context, cs *sdkmcp.ClientSession, args map[string]any) *sdkmcp.CallToolResult {
	t.Helper()
	res, err := cs.CallTool(ctx, &sdkmcp.CallToolParams{Name: ToolSuggestRewrite, Arguments: args})
	if err != nil {
		t.Fatalf("CallTool: %v", err)
	}
	return res
}

func TestSuggestRewrite_ReturnsSuggestions(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	cs := connect(t, ctx, NewServer(service.New(pattern.New(nil), nil, nil, service.Config{})))

	tools, err := cs.ListTools(ctx, nil)
	if err != nil {
		t.Fatalf("ListTools: %v", err)
	}
	if len(tools.Tools) != 1 || tools.Tools[0].Name != ToolSuggestRewrite {
		t.Fatalf("tools = %+v", tools.Tools)
	}

	res := call(t, ctx, cs, map[string]any{
		"sentence":       "The following requirements must be met:",
		"issue_message":  "Avoid passive voice.",
		"issue_category": "passive_voice",
	})
	if res.IsError {
		t.Fatalf("tool returned error: %+v", res.Content)
	}
	var out suggestRewriteOutput
	for _, c := range res.Content {
		if tc, ok := c.(*sdkmcp.TextContent); ok {
			if err := json.Unmarshal([]byte(tc.Text), &out); err != nil {
				t.Fatalf("unmarshal: %v (text %s)", err, tc.Text)
			}
		}
	}
	if out.Method != "deterministic-fallback" || len(out.Suggestions) == 0 {
		t.Fatalf("output = %+v", out)
	}
	if got := out.Suggestions[0].Text; got != "You must meet the following requirements:" {
		t.Fatalf("suggestion = %q", got)
	}
}

func TestSuggestRewrite_InvalidCategoryIsToolError(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	cs := connect(t, ctx, NewServer(service.New(pattern.New(nil), nil, nil, service.Config{})))
	res := call(t, ctx, cs, map[string]any{"sentence": "x", "issue_category": "tone"})
	if !res.IsError {
		t.Fatalf("unknown category should be reported as a tool error")
	}
}

func TestSuggestRewrite_ValidatesInput(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	cs := connect(t, ctx, NewServer(service.New(pattern.New(nil), nil, nil, service.Config{})))
	res := call(t, ctx, cs, map[string]any{"sentence": "Save it.", "max_suggestions": 9})
	if !res.IsError {
		t.Fatalf("out of range max_suggestions should be a tool error")
	}
}
