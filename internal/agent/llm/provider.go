// Package llm wraps the completion providers behind a retrying client with a
// per-attempt timeout.
package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/schema"

	"github.com/tallyfinance/ai-service/internal/agent/model"
)

// Provider names accepted by LLM_PROVIDER.
const (
	ProviderOpenAI     = "openai"
	ProviderGemini     = "gemini"
	ProviderEinoGemini = "eino-gemini"
)

// Request is a single completion attempt.
type Request struct {
	Messages    []*schema.Message
	Temperature float32
	MaxTokens   int
	// JSON asks the provider for a JSON object response where supported.
	JSON bool
}

// Response is the raw completion text plus accounting.
type Response struct {
	Content string
	Usage   *schema.TokenUsage
	Model   string
}

// Provider performs one completion call. It must honor ctx cancellation.
type Provider interface {
	Name() string
	Complete(ctx context.Context, req Request) (*Response, error)
}

// ProviderFunc adapts a function to Provider.
type ProviderFunc func(ctx context.Context, req Request) (*Response, error)

func (f ProviderFunc) Name() string { return "func" }

func (f ProviderFunc) Complete(ctx context.Context, req Request) (*Response, error) {
	return f(ctx, req)
}

// NewProvider builds the provider selected by cfg.Provider.
func NewProvider(ctx context.Context, cfg model.LLMConfig) (Provider, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "", ProviderOpenAI:
		return NewOpenAIFromConfig(cfg)
	case ProviderGemini:
		return NewGeminiFromConfig(ctx, cfg)
	case ProviderEinoGemini:
		return NewChatModelFromConfig(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", cfg.Provider)
	}
}
