package orchestrator

import (
	"context"
	"fmt"

	"github.com/tallyfinance/ai-service/internal/agent/model"
	"github.com/tallyfinance/ai-service/internal/agent/parsers"
	"github.com/tallyfinance/ai-service/internal/agent/prompts"
	"github.com/tallyfinance/ai-service/internal/agent/tools"
	"github.com/tallyfinance/ai-service/internal/metrics"
	logx "github.com/tallyfinance/ai-service/pkg/logger"
)

const logSnippetRunes = 50

// PhaseA decides what to do with the user's message. Malformed model output
// never fails the call.
func (o *Orchestrator) PhaseA(ctx context.Context, req *model.PhaseARequest) (*model.PhaseAResponse, error) {
	log := logx.Ctx(ctx)
	log.Info().
		Str("user", req.UserContext.UserID).
		Str("text", snippet(req.UserText)).
		Msg("Phase A starting")

	if p := req.Pending; p != nil {
		log.Debug().
			Str("tool", p.Tool).
			Strs("collected", keys(p.CollectedArgs)).
			Strs("missing", p.MissingArgs).
			Msg("Pending context")
	}

	schemas := req.Tools
	if len(schemas) == 0 {
		schemas = o.cfg.DefaultTools
	}
	vars, err := prompts.PhaseAVars(req.UserContext, schemas, req.Pending, req.AvailableCategories)
	if err != nil {
		return nil, fmt.Errorf("phase A prompt: %w", err)
	}
	system, err := o.renderer.Render(ctx, prompts.TemplatePhaseA, vars)
	if err != nil {
		log.Error().Err(err).Msg("Phase A prompt render failed")
		return nil, fmt.Errorf("phase A prompt: %w", err)
	}

	msgs := o.messages(system, req.ConversationHistory, req.UserText)
	if n := len(msgs) - 2; n > 0 {
		log.Debug().Int("count", n).Msg("History injected (Phase A)")
	}

	data, err := o.llm.JSON(ctx, msgs, o.cfg.TemperaturePhaseA)
	if err != nil {
		return nil, err
	}
	log.Debug().Interface("data", data).Msg("LLM raw response")

	d := parsers.ParseDecision(data)
	if d.Coerced {
		log.Error().
			Interface("received", d.RawType).
			Interface("full_response", data).
			Msg("Invalid response_type from LLM, falling back to clarification")
	}

	resp := d.Response
	switch resp.ResponseType {
	case model.ResponseToolCall:
		resp.ToolCall.Args = tools.SanitizeArgs(resp.ToolCall.Name, resp.ToolCall.Args)
		log.Info().Str("tool", resp.ToolCall.Name).Interface("args", resp.ToolCall.Args).Msg("Tool decided")
	case model.ResponseClarification:
		log.Info().Str("text", snippet(*resp.Clarification)).Msg("Clarification")
	case model.ResponseDirectReply:
		log.Info().Str("text", snippet(*resp.DirectReply)).Msg("Direct reply")
	}
	metrics.PhaseADecisions.WithLabelValues(string(resp.ResponseType)).Inc()
	return resp, nil
}

func snippet(s string) string {
	r := []rune(s)
	if len(r) <= logSnippetRunes {
		return s
	}
	return string(r[:logSnippetRunes])
}

func keys(m map[string]any) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
