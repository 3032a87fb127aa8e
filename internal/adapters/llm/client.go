// Package llm provides resilient clients for OpenAI-compatible chat and embedding
// endpoints, an Anthropic Messages backend, a deterministic hashing embedder,
// and a circuit guard for the generative tier
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	perr "stylefix/internal/platform/errors"
	"stylefix/internal/platform/logger"

	"github.com/cenkalti/backoff/v4"
)

const (
	defaultBaseURL    = "http://localhost:1234/v1"
	defaultUA         = "stylefix"
	defaultMaxRetry   = 2
	defaultRetryBase  = 250 * time.Millisecond
	defaultRetryCap   = 4 * time.Second
	defaultIdlePerHst = 16
)

// Options configures an OpenAI-compatible endpoint set
type Options struct {
	// Comma separated base URLs tried in order; each is normalized to end in /v1
	BaseURLs string
	APIKey   string
	Model    string

	// Retry config for transient (429, 5xx, transport) failures per endpoint
	MaxRetries int
	RetryBase  time.Duration

	// HTTP overrides the shared pooled client (tests)
	HTTP *http.Client
}

var (
	sharedOnce sync.Once
	shared     *http.Client
)

// SharedHTTPClient returns the process-wide pooled client
// Calls bound their own time through the request context
func SharedHTTPClient() *http.Client {
	sharedOnce.Do(func() {
		shared = &http.Client{
			Transport: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
				DialContext: (&net.Dialer{
					Timeout:   5 * time.Second,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				ForceAttemptHTTP2:     true,
				MaxIdleConns:          100,
				MaxIdleConnsPerHost:   defaultIdlePerHst,
				IdleConnTimeout:       90 * time.Second,
				TLSHandshakeTimeout:   10 * time.Second,
				ExpectContinueTimeout: 1 * time.Second,
			},
		}
	})
	return shared
}

// poster sends JSON to the first endpoint that answers
type poster struct {
	http       *http.Client
	baseURLs   []string
	apiKey     string
	maxRetries int
	retryBase  time.Duration
	log        logger.Logger
}

func newPoster(o Options, component string) *poster {
	urls := splitBaseURLs(o.BaseURLs)
	if len(urls) == 0 {
		urls = []string{normalizeBaseURL(defaultBaseURL)}
	}
	if o.MaxRetries < 0 {
		o.MaxRetries = 0
	} else if o.MaxRetries == 0 {
		o.MaxRetries = defaultMaxRetry
	}
	if o.RetryBase <= 0 {
		o.RetryBase = defaultRetryBase
	}
	hc := o.HTTP
	if hc == nil {
		hc = SharedHTTPClient()
	}
	return &poster{
		http:       hc,
		baseURLs:   urls,
		apiKey:     o.APIKey,
		maxRetries: o.MaxRetries,
		retryBase:  o.RetryBase,
		log:        *logger.Named(component),
	}
}

// post tries each base URL in order and decodes the first 2xx body into out
func (p *poster) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return perr.Wrapf(err, perr.ErrorCodeJSON, "llm marshal request")
	}

	failures := make([]string, 0, len(p.baseURLs))
	var last error
	for _, base := range p.baseURLs {
		err := p.postOne(ctx, base+path, payload, out)
		if err == nil {
			return nil
		}
		if cerr := perr.FromContext(ctx.Err(), "llm request abandoned"); cerr != nil {
			return cerr
		}
		// a decode failure means the endpoint answered; another endpoint will not fix it
		if perr.IsCode(err, perr.ErrorCodeMalformed) {
			return err
		}
		last = err
		failures = append(failures, fmt.Sprintf("%s (%v)", base, err))
	}
	code := perr.CodeOf(last)
	if code != perr.ErrorCodeTooManyRequests {
		code = perr.ErrorCodeUnavailable
	}
	return perr.Newf(code, "llm request failed across endpoints: %s", strings.Join(failures, " | "))
}

func (p *poster) postOne(ctx context.Context, url string, payload []byte, out any) error {
	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = p.retryBase
	eb.MaxInterval = defaultRetryCap
	eb.MaxElapsedTime = 0
	bo := backoff.WithContext(backoff.WithMaxRetries(eb, uint64(p.maxRetries)), ctx)

	attempt := 0
	op := func() error {
		attempt++
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
		if err != nil {
			return backoff.Permanent(perr.Wrapf(err, perr.ErrorCodeUnknown, "llm new request failed"))
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("User-Agent", defaultUA)
		if p.apiKey != "" {
			req.Header.Set("Authorization", "Bearer "+p.apiKey)
		}

		start := time.Now()
		resp, err := p.http.Do(req)
		lat := time.Since(start)
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(perr.FromContext(ctx.Err(), "llm request abandoned"))
			}
			return perr.Wrapf(err, perr.ErrorCodeUnavailable, "llm transport error")
		}
		defer func() { _ = drainAndClose(resp.Body) }()

		p.log.Debug().
			Str("url", url).
			Int("status", resp.StatusCode).
			Int("attempt", attempt).
			Dur("latency", lat).
			Msg("llm http response")

		switch {
		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
				return backoff.Permanent(perr.Wrapf(err, perr.ErrorCodeMalformed, "llm decode response"))
			}
			return nil
		case resp.StatusCode == http.StatusTooManyRequests:
			return perr.Newf(perr.ErrorCodeTooManyRequests, "llm rate limited")
		case resp.StatusCode >= 500:
			return perr.Newf(perr.ErrorCodeUnavailable, "llm server status %d", resp.StatusCode)
		default:
			tail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			return backoff.Permanent(perr.Newf(perr.ErrorCodeUnavailable, "llm unexpected status %d body %s", resp.StatusCode, strings.TrimSpace(string(tail))))
		}
	}

	return backoff.RetryNotify(op, bo, func(err error, wait time.Duration) {
		p.log.Warn().Err(err).Dur("retry_in", wait).Int("attempt", attempt).Msg("llm transient error retrying")
	})
}

func normalizeBaseURL(baseURL string) string {
	trimmed := strings.TrimSpace(baseURL)
	if trimmed == "" {
		return trimmed
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	trimmed = strings.TrimRight(trimmed, "/")
	if strings.HasSuffix(trimmed, "/v1") {
		return trimmed
	}
	return trimmed + "/v1"
}

// splitBaseURLs parses a comma, semicolon or whitespace separated list and drops duplicates
func splitBaseURLs(raw string) []string {
	tokens := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ';' || r == '\n' || r == '\r' || r == '\t' || r == ' '
	})
	out := make([]string, 0, len(tokens))
	seen := map[string]struct{}{}
	for _, token := range tokens {
		n := normalizeBaseURL(token)
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}

func drainAndClose(rc io.ReadCloser) error {
	_, _ = io.Copy(io.Discard, io.LimitReader(rc, 512))
	return rc.Close()
}
