package prompts

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tallyfinance/ai-service/internal/agent/model"
)

const (
	FirstInteractionText = "Primera interaccion de esta sesion."
	NoGoalsText          = "Sin metas definidas"
	DefaultUserTurn      = "Genera el mensaje de respuesta."

	allowedText  = "Sí"
	cooldownText = "No (en cooldown)"
)

// PhaseBInput is what the Phase B template is rendered from.
type PhaseBInput struct {
	Tone      model.Tone
	Intensity float64
	Mood      model.Mood
	ToolName  string
	Result    *model.ActionResult
	User      model.UserContext
}

// PhaseBVars builds the Phase B template variables.
func PhaseBVars(in PhaseBInput) (map[string]any, error) {
	result := in.Result
	if result == nil {
		result = &model.ActionResult{}
	}
	data := result.Data
	if data == nil {
		data = map[string]any{}
	}
	dataJSON, err := marshal(data)
	if err != nil {
		return nil, fmt.Errorf("marshal action data: %w", err)
	}

	var appKnowledge, aiInstruction, userQuestion string
	if len(data) > 0 {
		knowledge, ok := data["appKnowledge"]
		if !ok {
			knowledge = map[string]any{}
		}
		if appKnowledge, err = marshal(knowledge); err != nil {
			return nil, fmt.Errorf("marshal app knowledge: %w", err)
		}
		aiInstruction, _ = data["aiInstruction"].(string)
		userQuestion, _ = data["userQuestion"].(string)
	}

	budgetJSON := "null"
	if in.User.ActiveBudget != nil {
		if budgetJSON, err = marshal(in.User.ActiveBudget); err != nil {
			return nil, fmt.Errorf("marshal active budget: %w", err)
		}
	}

	goals := NoGoalsText
	if len(in.User.GoalsSummary) > 0 {
		goals = strings.Join(in.User.GoalsSummary, ", ")
	}

	var errorInfo string
	if !result.OK && result.ErrorCode != nil && *result.ErrorCode != "" {
		errorInfo = "- Error: " + *result.ErrorCode
	}

	return map[string]any{
		"tone":           string(in.Tone),
		"intensity":      strconv.FormatFloat(in.Intensity, 'f', -1, 64),
		"mood":           string(in.Mood),
		"tool_name":      in.ToolName,
		"ok":             strconv.FormatBool(result.OK),
		"data":           dataJSON,
		"user_question":  userQuestion,
		"app_knowledge":  appKnowledge,
		"ai_instruction": aiInstruction,
		"error_info":     errorInfo,
		"active_budget":  budgetJSON,
		"goals_summary":  goals,
	}, nil
}

// PhaseBSystem assembles the full Phase B system prompt around the rendered
// template. The identity preamble always comes first.
func PhaseBSystem(identity, rendered string, rc model.RuntimeContext, actionCount int) string {
	summary := rc.Summary
	if summary == "" {
		summary = FirstInteractionText
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s\n\n%s\n\n", identity, rendered)
	fmt.Fprintf(&sb, "CONTEXTO DE LA SESION:\n%s\nAcciones en esta sesion: %d\n\n", summary, actionCount)
	fmt.Fprintf(&sb, "%s\n\n", StyleText(rc.UserStyle))
	fmt.Fprintf(&sb, "%s\n\n", VariabilityText(rc.LastOpening))
	sb.WriteString("NUDGES PERMITIDOS:\n")
	fmt.Fprintf(&sb, "- Puede incluir nudge general: %s\n", permission(rc.CanNudge))
	fmt.Fprintf(&sb, "- Puede advertir presupuesto >90%%: %s\n", permission(rc.CanBudgetWarning))
	return sb.String()
}

// StyleText describes the user's writing style, or "" when nothing stands out.
func StyleText(style *model.UserStyle) string {
	if style == nil {
		return ""
	}
	var parts []string
	if style.UsesCurrencySlang {
		parts = append(parts, "usa 'lucas' para dinero")
	}
	if style.UsesRegionalisms {
		parts = append(parts, "usa chilenismos")
	}
	if style.EmojiLevel != "" && style.EmojiLevel != model.EmojiNone {
		parts = append(parts, fmt.Sprintf("nivel de emoji: %s", style.EmojiLevel))
	}
	if style.IsFormal {
		parts = append(parts, "estilo formal")
	}
	if len(parts) == 0 {
		return ""
	}
	return "Estilo del usuario: " + strings.Join(parts, ", ")
}

func VariabilityText(lastOpening string) string {
	if lastOpening == "" {
		return ""
	}
	return "Ultima apertura usada: " + lastOpening
}

func permission(allowed bool) string {
	if allowed {
		return allowedText
	}
	return cooldownText
}
