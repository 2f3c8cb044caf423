package orchestrator

import (
	"context"
	"fmt"
	"strings"

	"github.com/tallyfinance/ai-service/internal/agent/memory"
	"github.com/tallyfinance/ai-service/internal/agent/model"
	"github.com/tallyfinance/ai-service/internal/agent/mood"
	"github.com/tallyfinance/ai-service/internal/agent/prompts"
	"github.com/tallyfinance/ai-service/internal/metrics"
	logx "github.com/tallyfinance/ai-service/pkg/logger"
)

const (
	defaultIntensity = 0.5
	// FallbackMessage is used when the model returns nothing and the action
	// carried no message of its own.
	FallbackMessage = "Listo, ya quedó registrado."
)

// PhaseB writes the personalized reply for an executed tool and returns the
// metadata the backend persists for the next turn.
func (o *Orchestrator) PhaseB(ctx context.Context, req *model.PhaseBRequest) (*model.PhaseBResponse, error) {
	log := logx.Ctx(ctx)
	result := req.ActionResult
	if result == nil {
		result = &model.ActionResult{}
	}
	log.Info().Str("tool", req.ToolName).Bool("ok", result.OK).Msg("Phase B starting")

	tone, intensity, base := model.ToneNeutral, defaultIntensity, model.MoodNormal
	if p := req.UserContext.Personality; p != nil {
		if p.Tone != "" {
			tone = p.Tone
		}
		intensity = p.Intensity
		if p.Mood != nil && *p.Mood != "" {
			base = *p.Mood
		}
	}

	rc := model.DefaultRuntimeContext()
	if req.RuntimeContext != nil {
		rc = *req.RuntimeContext
	}
	budgetPercent, streakDays := rc.BudgetPercent(), rc.StreakDays()

	finalMood := mood.Calculate(base, rc.MoodHint, budgetPercent, streakDays)
	log.Debug().
		Str("base", string(base)).
		Int("hint", rc.MoodHint).
		Str("final", string(finalMood)).
		Msg("Mood calculated")
	metrics.PhaseBMoods.WithLabelValues(string(finalMood)).Inc()

	identity, err := o.Identity(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Identity prompt load failed")
		return nil, err
	}
	vars, err := prompts.PhaseBVars(prompts.PhaseBInput{
		Tone:      tone,
		Intensity: intensity,
		Mood:      finalMood,
		ToolName:  req.ToolName,
		Result:    result,
		User:      req.UserContext,
	})
	if err != nil {
		return nil, fmt.Errorf("phase B prompt: %w", err)
	}
	rendered, err := o.renderer.Render(ctx, prompts.TemplatePhaseB, vars)
	if err != nil {
		log.Error().Err(err).Msg("Phase B prompt render failed")
		return nil, fmt.Errorf("phase B prompt: %w", err)
	}
	system := prompts.PhaseBSystem(identity, rendered, rc, memory.ActionCount(rc.Summary))

	userTurn := req.UserText
	if strings.TrimSpace(userTurn) == "" {
		userTurn = prompts.DefaultUserTurn
	}
	msgs := o.messages(system, req.ConversationHistory, userTurn)
	if n := len(msgs) - 2; n > 0 {
		log.Debug().Int("count", n).Msg("History injected (Phase B)")
	}

	final, err := o.llm.Text(ctx, msgs, o.cfg.TemperaturePhaseB)
	if err != nil {
		return nil, err
	}
	if final == "" {
		final = FallbackMessage
		if result.UserMessage != nil && strings.TrimSpace(*result.UserMessage) != "" {
			final = strings.TrimSpace(*result.UserMessage)
		}
		log.Warn().Str("fallback", snippet(final)).Msg("Empty completion, using fallback message")
	}

	resp := &model.PhaseBResponse{
		Phase:        model.PhaseB,
		FinalMessage: final,
		NewOpening:   ExtractOpening(final),
	}
	if nudge, ok := DetectNudge(final, rc.CanNudge, rc.CanBudgetWarning, budgetPercent, streakDays); ok {
		resp.DidNudge = true
		resp.NudgeType = &nudge
		metrics.Nudges.WithLabelValues(string(nudge)).Inc()
	}
	if summary, ok := memory.Update(rc.Summary, req.ToolName, result); ok {
		resp.NewSummary = &summary
	}

	ev := log.Info().
		Str("mood", string(finalMood)).
		Int("length", len(final))
	if resp.NewOpening != nil {
		ev = ev.Str("opening", *resp.NewOpening)
	}
	if resp.NudgeType != nil {
		ev = ev.Str("nudge", string(*resp.NudgeType))
	}
	ev.Msg("Phase B done")
	return resp, nil
}
