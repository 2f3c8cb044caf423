// Package orchestrator runs the two stateless phases: Phase A decides what to
// do with a user message, Phase B writes the reply once the backend ran the
// chosen tool.
package orchestrator

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/cloudwego/eino/schema"

	"github.com/tallyfinance/ai-service/internal/agent/model"
	"github.com/tallyfinance/ai-service/internal/agent/prompts"
	"github.com/tallyfinance/ai-service/internal/agent/tools"
)

// Completer is the completion client the phases call. *llm.Client implements it.
type Completer interface {
	JSON(ctx context.Context, messages []*schema.Message, temperature float32) (map[string]any, error)
	Text(ctx context.Context, messages []*schema.Message, temperature float32) (string, error)
}

// Config holds the per-phase sampling and context settings.
type Config struct {
	TemperaturePhaseA float32
	TemperaturePhaseB float32
	// MaxHistoryTurns bounds injected conversation history; 0 keeps all.
	MaxHistoryTurns int
	// DefaultTools replaces an empty tool list in a Phase A request.
	DefaultTools []model.ToolSchema
}

// ConfigFrom maps the environment configuration onto orchestrator settings.
func ConfigFrom(llmCfg model.LLMConfig, convCfg model.ConversationConfig) Config {
	return Config{
		TemperaturePhaseA: llmCfg.TemperaturePhaseA,
		TemperaturePhaseB: llmCfg.TemperaturePhaseB,
		MaxHistoryTurns:   convCfg.MaxTurns,
		DefaultTools:      tools.Default(),
	}
}

// Orchestrator runs Phase A intent decisions and Phase B replies.
type Orchestrator struct {
	llm      Completer
	renderer *prompts.Renderer
	cfg      Config

	// identity is loaded on first use and kept for the instance lifetime.
	// Concurrent first loads race harmlessly: both store the same text.
	identity atomic.Pointer[string]
}

// New builds an Orchestrator over llm and the prompt renderer.
func New(llm Completer, renderer *prompts.Renderer, cfg Config) *Orchestrator {
	return &Orchestrator{llm: llm, renderer: renderer, cfg: cfg}
}

// Identity returns the memoized identity preamble.
func (o *Orchestrator) Identity(ctx context.Context) (string, error) {
	if p := o.identity.Load(); p != nil {
		return *p, nil
	}
	text, err := o.renderer.Render(ctx, prompts.TemplateIdentity, map[string]any{})
	if err != nil {
		return "", fmt.Errorf("identity prompt: %w", err)
	}
	o.identity.Store(&text)
	return text, nil
}

// messages builds system + history + current user turn.
func (o *Orchestrator) messages(system string, history []model.ConversationMessage, user string) []*schema.Message {
	hist := model.HistoryMessages(history, o.cfg.MaxHistoryTurns)
	out := make([]*schema.Message, 0, len(hist)+2)
	out = append(out, schema.SystemMessage(system))
	out = append(out, hist...)
	out = append(out, schema.UserMessage(user))
	return out
}
