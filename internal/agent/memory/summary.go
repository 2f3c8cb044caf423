// Package memory maintains the short session summary the backend stores
// between turns. Everything here is deterministic; the LLM is never asked to
// summarize.
package memory

import (
	"fmt"
	"math"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/tallyfinance/ai-service/internal/agent/model"
)

const (
	defaultCategory  = "gasto"
	maxQuestionRunes = 40
)

// Update returns the next session summary after a tool ran. ok is false when
// the action must not be remembered: failed actions and greetings.
func Update(summary, tool string, result *model.ActionResult) (string, bool) {
	if result == nil || !result.OK || model.ToolName(tool) == model.ToolGreeting {
		return "", false
	}
	return Compress(Append(summary, SummarizeAction(tool, result))), true
}

// Append joins a new action sentence onto the summary.
func Append(summary, action string) string {
	switch {
	case action == "":
		return summary
	case summary == "":
		return action
	}
	return summary + " " + action
}

// ActionCount is the number of sentences recorded in the summary.
func ActionCount(summary string) int {
	n := 0
	for _, s := range strings.Split(summary, ".") {
		if strings.TrimSpace(s) != "" {
			n++
		}
	}
	return n
}

// SummarizeAction renders one Spanish sentence describing a successful action.
func SummarizeAction(tool string, result *model.ActionResult) string {
	if result == nil || !result.OK {
		return ""
	}
	data := result.Data
	if data == nil {
		data = map[string]any{}
	}

	switch model.ToolName(tool) {
	case model.ToolRegisterTransaction:
		category := defaultCategory
		if c, ok := data["category"].(string); ok && strings.TrimSpace(c) != "" {
			category = c
		}
		amount, ok := number(data["amount"])
		if !ok {
			return fmt.Sprintf("Registró gasto en %s.", category)
		}
		sentence := fmt.Sprintf("Registró $%s en %s", money(amount), category)
		if desc, _ := data["description"].(string); desc != "" {
			sentence += fmt.Sprintf(" (%s)", desc)
		}
		return sentence + "."

	case model.ToolAskBalance:
		if total, ok := number(data["totalSpent"]); ok && total != 0 {
			return fmt.Sprintf("Consultó su balance ($%s gastado este mes).", money(total))
		}
		return "Consultó su balance."

	case model.ToolAskBudgetStatus:
		budget, ok := data["budget"].(map[string]any)
		if !ok || len(budget) == 0 {
			budget = data
		}
		if remaining, ok := number(budget["remaining"]); ok && remaining != 0 {
			return fmt.Sprintf("Revisó presupuesto (le quedan $%s).", money(remaining))
		}
		return "Revisó estado de presupuesto."

	case model.ToolAskGoalStatus:
		return "Consultó progreso de metas."

	case model.ToolAskAppInfo:
		if q, _ := data["userQuestion"].(string); q != "" {
			if r := []rune(q); len(r) > maxQuestionRunes {
				q = string(r[:maxQuestionRunes])
			}
			return fmt.Sprintf("Preguntó: %s.", q)
		}
		return "Preguntó sobre la app."
	}
	return fmt.Sprintf("Usó %s.", tool)
}

// money formats whole currency units with comma thousands separators.
func money(v float64) string {
	return humanize.Comma(int64(math.Round(v)))
}

// number accepts the numeric shapes a decoded JSON body or a Go caller can
// produce. Booleans are not numbers.
func number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	}
	return 0, false
}
