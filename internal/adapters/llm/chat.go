package llm

import (
	"context"
	"strings"

	perr "stylefix/internal/platform/errors"
)

const defaultChatModel = "gpt-4o-mini"

// Message is one chat turn
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float32   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message      Message `json:"message"`
		FinishReason string  `json:"finish_reason"`
	} `json:"choices"`
}

// Chat completes prompts against OpenAI-compatible /chat/completions endpoints
type Chat struct {
	p         *poster
	model     string
	maxTokens int
}

// NewChat builds a chat backend over one or more failover endpoints
func NewChat(o Options) *Chat {
	model := strings.TrimSpace(o.Model)
	if model == "" {
		model = defaultChatModel
	}
	return &Chat{p: newPoster(o, "llm.chat"), model: model, maxTokens: 512}
}

// Name identifies the backend in logs and meta output
func (c *Chat) Name() string { return "openai:" + c.model }

// Complete sends a system and user message and returns the first choice text
// Temperature is pinned to zero so identical prompts stay stable
func (c *Chat) Complete(ctx context.Context, system, prompt string) (string, error) {
	if c == nil {
		return "", perr.Unavailablef("llm chat client is nil")
	}
	req := chatRequest{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		Messages: []Message{
			{Role: "system", Content: system},
			{Role: "user", Content: prompt},
		},
	}
	var out chatResponse
	if err := c.p.post(ctx, "/chat/completions", req, &out); err != nil {
		return "", err
	}
	if len(out.Choices) == 0 {
		return "", perr.Malformedf("llm response missing choices")
	}
	content := strings.TrimSpace(out.Choices[0].Message.Content)
	if content == "" {
		return "", perr.Malformedf("llm response empty")
	}
	return content, nil
}
