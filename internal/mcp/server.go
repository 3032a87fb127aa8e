// Package mcp exposes the resolver as an MCP tool over stdio
package mcp

import (
	"context"
	"time"

	"stylefix/internal/core/version"
	"stylefix/internal/platform/net/http/bind"
	"stylefix/internal/services/suggest/domain"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// ToolSuggestRewrite is the registered tool name
const ToolSuggestRewrite = "suggest_rewrite"

// Server wraps the MCP SDK server with the resolver tool registered
type Server struct {
	MCPServer *sdkmcp.Server
	resolver  domain.ResolverPort
}

// NewServer registers suggest_rewrite over r
func NewServer(r domain.ResolverPort) *Server {
	s := &Server{resolver: r}
	s.MCPServer = sdkmcp.NewServer(
		&sdkmcp.Implementation{Name: "stylefix", Version: version.Info().Version},
		nil,
	)
	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name: ToolSuggestRewrite,
		Description: "Propose rewrites for one sentence flagged by a style checker. " +
			"Always returns at least one suggestion with its source and confidence.",
	}, s.handleSuggestRewrite)
	return s
}

// Run serves over stdio until ctx ends or the client disconnects
func (s *Server) Run(ctx context.Context) error {
	return s.MCPServer.Run(ctx, &sdkmcp.StdioTransport{})
}

type suggestRewriteInput struct {
	Sentence           string `json:"sentence" validate:"required,max=4000" jsonschema:"the flagged sentence"`
	IssueMessage       string `json:"issue_message,omitempty" validate:"max=2000" jsonschema:"the checker message for the issue"`
	IssueCategory      string `json:"issue_category,omitempty" validate:"max=64" jsonschema:"passive_voice, long_sentence, modal_verb, verb_form or other"` //nolint:lll
	RuleID             string `json:"rule_id,omitempty" validate:"max=128" jsonschema:"checker rule id"`
	MaxSuggestions     int    `json:"max_suggestions,omitempty" validate:"omitempty,min=1,max=5" jsonschema:"1 to 5, default 3"`
	DeadlineMs         int    `json:"deadline_ms,omitempty" validate:"omitempty,min=1,max=120000" jsonschema:"overall time budget in milliseconds"` //nolint:lll
	DeterministicFirst bool   `json:"deterministic_first,omitempty" jsonschema:"try pattern rewrites before the backends"`
}

type suggestion struct {
	Text       string `json:"text"`
	Source     string `json:"source"`
	Confidence string `json:"confidence"`
	Rationale  string `json:"rationale,omitempty"`
}

type suggestRewriteOutput struct {
	Suggestions []suggestion `json:"suggestions"`
	Method      string       `json:"method"`
	Fallback    bool         `json:"category_fallback,omitempty"`
}

func (s *Server) handleSuggestRewrite(
	ctx context.Context,
	_ *sdkmcp.CallToolRequest,
	in suggestRewriteInput,
) (*sdkmcp.CallToolResult, suggestRewriteOutput, error) {
	if err := bind.Validate(in); err != nil {
		return nil, suggestRewriteOutput{}, err
	}
	req := domain.Request{
		Issue: domain.IssueReport{
			RuleID:       in.RuleID,
			Message:      in.IssueMessage,
			Category:     domain.Category(in.IssueCategory),
			SentenceText: in.Sentence,
		},
		MaxSuggestions: in.MaxSuggestions,
		Deadline:       time.Duration(in.DeadlineMs) * time.Millisecond,
	}
	if in.DeterministicFirst {
		req.DeterministicFirst = &in.DeterministicFirst
	}
	res, err := s.resolver.Resolve(ctx, req)
	if err != nil {
		return nil, suggestRewriteOutput{}, err
	}
	out := suggestRewriteOutput{Method: string(res.Method), Fallback: res.FallbackUsed}
	for _, sg := range res.Suggestions {
		out.Suggestions = append(out.Suggestions, suggestion{
			Text:       sg.Text,
			Source:     string(sg.Source),
			Confidence: string(sg.Confidence),
			Rationale:  sg.Rationale,
		})
	}
	return nil, out, nil
}
