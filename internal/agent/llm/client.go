package llm

import (
	"context"
	"strings"
	"time"

	"github.com/cloudwego/eino/schema"
	"golang.org/x/time/rate"

	"github.com/tallyfinance/ai-service/internal/agent/model"
	"github.com/tallyfinance/ai-service/internal/agent/parsers"
	errx "github.com/tallyfinance/ai-service/internal/core/error"
	"github.com/tallyfinance/ai-service/internal/metrics"
	logx "github.com/tallyfinance/ai-service/pkg/logger"
)

const (
	modeJSON = "json"
	modeText = "text"

	maxLoggedError = 80
)

// Client calls a Provider with bounded retry. Every attempt gets the full
// timeout; there is no backoff between attempts.
type Client struct {
	provider   Provider
	model      string
	timeout    time.Duration
	maxRetries int
	maxTokens  int
	limiter    *rate.Limiter
}

func NewClient(p Provider, cfg model.LLMConfig) *Client {
	c := &Client{
		provider:   p,
		model:      cfg.Model,
		timeout:    cfg.Timeout,
		maxRetries: cfg.MaxRetries,
		maxTokens:  cfg.MaxTokens,
	}
	if c.maxRetries < 0 {
		c.maxRetries = 0
	}
	if cfg.RatePerSecond > 0 {
		burst := cfg.RateBurst
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSecond), burst)
	}
	return c
}

// Model is the configured model name.
func (c *Client) Model() string {
	return c.model
}

// JSON requests a JSON object. Blank output decodes to an empty map; anything
// that is not an object counts as a failed attempt and is retried.
func (c *Client) JSON(ctx context.Context, messages []*schema.Message, temperature float32) (map[string]any, error) {
	var out map[string]any
	err := c.call(ctx, modeJSON, Request{Messages: messages, Temperature: temperature, JSON: true}, func(content string) error {
		m, err := parsers.DecodeJSONObject(content)
		if err != nil {
			return err
		}
		out = m
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Text requests free text and returns it trimmed.
func (c *Client) Text(ctx context.Context, messages []*schema.Message, temperature float32) (string, error) {
	var out string
	err := c.call(ctx, modeText, Request{Messages: messages, Temperature: temperature}, func(content string) error {
		out = strings.TrimSpace(content)
		return nil
	})
	if err != nil {
		return "", err
	}
	return out, nil
}

func (c *Client) call(ctx context.Context, mode string, req Request, accept func(string) error) error {
	if req.MaxTokens == 0 {
		req.MaxTokens = c.maxTokens
	}
	log := logx.Ctx(ctx)
	provider := c.provider.Name()
	attempts := c.maxRetries + 1

	log.Debug().
		Str("provider", provider).
		Str("model", c.model).
		Str("mode", mode).
		Float32("temperature", req.Temperature).
		Int("messages", len(req.Messages)).
		Msg("Calling LLM")

	var (
		lastErr error
		kind    Kind
		made    int
	)
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := c.wait(ctx); err != nil {
			lastErr, kind = err, classify(err)
			break
		}
		made = attempt

		start := time.Now()
		resp, err := c.attempt(ctx, req)
		if err == nil {
			err = accept(resp.Content)
		}
		if err == nil {
			elapsed := time.Since(start)
			metrics.LLMCalls.WithLabelValues(provider, mode, "ok").Inc()
			metrics.LLMLatency.WithLabelValues(provider, mode).Observe(elapsed.Seconds())
			c.logUsage(ctx, resp, elapsed, attempt)
			return nil
		}

		lastErr, kind = err, classify(err)
		if ctx.Err() != nil {
			break
		}
		if attempt < attempts {
			metrics.LLMRetries.WithLabelValues(provider, string(kind)).Inc()
			log.Warn().
				Str("provider", provider).
				Str("kind", string(kind)).
				Int("attempt", attempt).
				Int("max_retries", c.maxRetries).
				Str("error", errx.Truncate(err.Error(), maxLoggedError)).
				Msg("LLM call failed, retrying")
		}
	}

	metrics.LLMCalls.WithLabelValues(provider, mode, string(kind)).Inc()
	log.Error().
		Str("provider", provider).
		Str("kind", string(kind)).
		Int("attempts", made).
		Str("error", errx.Truncate(lastErr.Error(), maxLoggedError)).
		Msg("LLM call failed")
	return &Error{Kind: kind, Attempts: made, Err: lastErr}
}

// attempt runs one provider call under its own deadline derived from ctx.
func (c *Client) attempt(ctx context.Context, req Request) (*Response, error) {
	actx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		actx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	resp, err := c.provider.Complete(actx, req)
	if err != nil {
		return nil, err
	}
	if resp == nil {
		resp = &Response{}
	}
	return resp, nil
}

func (c *Client) wait(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}
	return c.limiter.Wait(ctx)
}

// logUsage computes and logs usage cost for a successful attempt.
func (c *Client) logUsage(ctx context.Context, resp *Response, elapsed time.Duration, attempt int) {
	modelName := resp.Model
	if modelName == "" {
		modelName = c.model
	}
	ev := logx.Ctx(ctx).Debug().
		Str("model", modelName).
		Int("attempt", attempt).
		Dur("latency", elapsed)

	if u := resp.Usage; u != nil {
		inC, outC, totalC := model.ComputeCost(u, model.ResolvePricing(modelName))
		metrics.LLMTokens.WithLabelValues(modelName, "prompt").Add(float64(u.PromptTokens))
		metrics.LLMTokens.WithLabelValues(modelName, "completion").Add(float64(u.CompletionTokens))
		metrics.LLMCostUSD.WithLabelValues(modelName).Add(totalC)
		ev = ev.
			Int("prompt_tokens", u.PromptTokens).
			Int("completion_tokens", u.CompletionTokens).
			Int("total_tokens", u.TotalTokens).
			Float64("input_cost_usd", inC).
			Float64("output_cost_usd", outC).
			Float64("total_cost_usd", totalC)
	}
	ev.Msg("LLM usage")
}
