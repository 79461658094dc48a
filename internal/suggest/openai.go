// Mind Digest - Wellness Recommendation and Behavior Learning
// Copyright 2026 Wetende
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Wetende/mind-digest

package suggest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/Wetende/mind-digest-sub001/internal/breaker"
	"github.com/Wetende/mind-digest-sub001/internal/config"
	"github.com/Wetende/mind-digest-sub001/internal/recommend"
)

// maxResponseBytes caps how much of a response body is read.
const maxResponseBytes = 1 << 20

// Options configures OpenAIProvider.
type Options struct {
	BaseURL     string
	APIKey      string
	Model       string
	Timeout     time.Duration
	Temperature float64
	MaxTokens   int

	RequestsPerSecond float64
	Burst             int

	BreakerFailures uint32
	BreakerTimeout  time.Duration
}

// OptionsFromConfig maps the ai config section.
func OptionsFromConfig(c *config.AIConfig) Options {
	return Options{
		BaseURL:           c.BaseURL,
		APIKey:            c.APIKey,
		Model:             c.Model,
		Timeout:           c.Timeout,
		Temperature:       c.Temperature,
		MaxTokens:         c.MaxTokens,
		RequestsPerSecond: c.RequestsPerSecond,
		Burst:             c.Burst,
		BreakerFailures:   c.BreakerFailures,
		BreakerTimeout:    c.BreakerTimeout,
	}
}

// OpenAIProvider asks a chat completions model for suggestions.
type OpenAIProvider struct {
	opts       Options
	endpoint   string
	httpClient *http.Client
	limiter    *rate.Limiter
	cb         *gobreaker.CircuitBreaker[interface{}]
	now        func() time.Time
	logger     zerolog.Logger
}

// NewOpenAIProvider builds a provider. It does not contact the API.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewOpenAIProvider(opts Options, logger zerolog.Logger) (*OpenAIProvider, error) {
	if opts.APIKey == "" {
		return nil, errors.New("openai api key is required")
	}
	if opts.BaseURL == "" {
		opts.BaseURL = "https://api.openai.com/v1"
	}
	if opts.Model == "" {
		opts.Model = "gpt-4o-mini"
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 8 * time.Second
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = 1200
	}

	limit := rate.Inf
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
	}
	burst := opts.Burst
	if burst <= 0 {
		burst = 1
	}

	cbCfg := breaker.DefaultConfig("openai")
	if opts.BreakerFailures > 0 {
		cbCfg.FailureThreshold = opts.BreakerFailures
	}
	if opts.BreakerTimeout > 0 {
		cbCfg.Timeout = opts.BreakerTimeout
	}

	return &OpenAIProvider{
		opts:       opts,
		endpoint:   strings.TrimRight(opts.BaseURL, "/") + "/chat/completions",
		httpClient: &http.Client{Timeout: opts.Timeout},
		limiter:    rate.NewLimiter(limit, burst),
		cb:         breaker.New(cbCfg, logger),
		now:        time.Now,
		logger:     logger.With().Str("component", "openai").Str("model", opts.Model).Logger(),
	}, nil
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	Temperature    float64         `json:"temperature,omitempty"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message      chatMessage `json:"message"`
		FinishReason string      `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// statusError is a non-200 response.
type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("openai returned status %d: %s", e.code, e.body)
}

// transient reports whether the status means the service is unavailable
// rather than the request being wrong.
func (e *statusError) transient() bool {
	return e.code == http.StatusTooManyRequests || e.code >= 500
}

// complete sends one prompt and decodes the model's JSON answer into out.
func (p *OpenAIProvider) complete(ctx context.Context, system, user string, out interface{}) error {
	if err := p.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: rate limited: %v", recommend.ErrProviderUnavailable, err)
	}

	res, err := breaker.Execute(p.cb, func() (interface{}, error) {
		return p.call(ctx, &chatRequest{
			Model: p.opts.Model,
			Messages: []chatMessage{
				{Role: "system", Content: system},
				{Role: "user", Content: user},
			},
			MaxTokens:      p.opts.MaxTokens,
			Temperature:    p.opts.Temperature,
			ResponseFormat: &responseFormat{Type: "json_object"},
		})
	})
	if err != nil {
		return classify(err)
	}

	content, _ := res.(string)
	if err := json.Unmarshal([]byte(stripFences(content)), out); err != nil {
		return fmt.Errorf("decode model output: %w", err)
	}
	return nil
}

func (p *OpenAIProvider) call(ctx context.Context, req *chatRequest) (string, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create HTTP request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+p.opts.APIKey)

	start := p.now()
	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", &statusError{code: resp.StatusCode, body: truncate(string(raw), 200)}
	}

	var parsed chatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("openai error: %s", parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 || parsed.Choices[0].Message.Content == "" {
		return "", errors.New("openai returned no choices")
	}

	p.logger.Debug().
		Dur("duration", p.now().Sub(start)).
		Str("finish_reason", parsed.Choices[0].FinishReason).
		Msg("Completion received")
	return parsed.Choices[0].Message.Content, nil
}

// classify maps transport failures to ErrProviderUnavailable.
func classify(err error) error {
	if breaker.IsOpen(err) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", recommend.ErrProviderUnavailable, err)
	}
	var se *statusError
	if errors.As(err, &se) && se.transient() {
		return fmt.Errorf("%w: %v", recommend.ErrProviderUnavailable, err)
	}
	return err
}

func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimPrefix(s, "json")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
