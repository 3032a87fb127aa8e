package llm

import (
	"context"
	"errors"
	"net/http"
	"strings"

	perr "stylefix/internal/platform/errors"
	"stylefix/internal/platform/logger"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const defaultAnthropicModel = "claude-3-5-haiku-latest"

// Anthropic completes prompts through the Messages API
type Anthropic struct {
	client    anthropic.Client
	model     string
	maxTokens int64
	log       logger.Logger
}

// NewAnthropic builds a Messages backend; the SDK owns its own bounded retries
func NewAnthropic(o Options) *Anthropic {
	model := strings.TrimSpace(o.Model)
	if model == "" {
		model = defaultAnthropicModel
	}
	retries := o.MaxRetries
	if retries == 0 {
		retries = defaultMaxRetry
	}
	if retries < 0 {
		retries = 0
	}
	hc := o.HTTP
	if hc == nil {
		hc = SharedHTTPClient()
	}
	opts := []option.RequestOption{
		option.WithAPIKey(o.APIKey),
		option.WithMaxRetries(retries),
		option.WithHTTPClient(hc),
	}
	if base := strings.TrimSpace(o.BaseURLs); base != "" {
		opts = append(opts, option.WithBaseURL(strings.TrimRight(base, "/")+"/"))
	}
	return &Anthropic{
		client:    anthropic.NewClient(opts...),
		model:     model,
		maxTokens: 512,
		log:       *logger.Named("llm.anthropic"),
	}
}

// Name identifies the backend in logs and meta output
func (a *Anthropic) Name() string { return "anthropic:" + a.model }

// Complete sends one user turn with a system prompt and returns the first text block
func (a *Anthropic) Complete(ctx context.Context, system, prompt string) (string, error) {
	msg, err := a.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(a.model),
		MaxTokens:   a.maxTokens,
		Temperature: anthropic.Float(0),
		System: []anthropic.TextBlockParam{
			{Text: system},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", a.mapErr(ctx, err)
	}
	a.log.Debug().
		Int64("tokens_in", msg.Usage.InputTokens).
		Int64("tokens_out", msg.Usage.OutputTokens).
		Msg("anthropic response")

	for _, block := range msg.Content {
		if block.Type == "text" && strings.TrimSpace(block.Text) != "" {
			return strings.TrimSpace(block.Text), nil
		}
	}
	return "", perr.Malformedf("anthropic response has no text content")
}

func (a *Anthropic) mapErr(ctx context.Context, err error) error {
	if cerr := perr.FromContext(ctx.Err(), "anthropic request abandoned"); cerr != nil {
		return cerr
	}
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.StatusCode == http.StatusTooManyRequests:
			return perr.Wrap(err, perr.ErrorCodeTooManyRequests, "anthropic rate limited")
		case apiErr.StatusCode >= 500:
			return perr.Wrapf(err, perr.ErrorCodeUnavailable, "anthropic server status %d", apiErr.StatusCode)
		}
	}
	return perr.Wrap(err, perr.ErrorCodeUnavailable, "anthropic request failed")
}
