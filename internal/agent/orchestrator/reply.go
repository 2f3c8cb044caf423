package orchestrator

import (
	"regexp"
	"strings"

	"github.com/tallyfinance/ai-service/internal/agent/model"
)

// knownOpenings are checked in order; "ya quedó" is the only multi-word one.
var knownOpenings = []string{"listo", "anotado", "hecho", "ya quedó", "perfecto", "ok", "buena", "dale"}

var leadingWordRe = regexp.MustCompile(`^([\p{L}\p{N}_]+)[,.!]`)

var (
	budgetKeywords = []string{"presupuesto", "gastado", "límite", "cuidado"}
	streakKeywords = []string{"racha", "días seguidos", "constante"}
)

const (
	budgetNudgeThreshold = 0.9
	streakNudgeDays      = 3
)

// ExtractOpening returns the known opener the reply starts with, if any.
// Leading inverted punctuation is ignored so "¡Listo!" counts as "listo".
func ExtractOpening(reply string) *string {
	normalized := strings.TrimLeft(strings.ToLower(strings.TrimSpace(reply)), "¡¿")

	for _, opening := range knownOpenings {
		if strings.HasPrefix(normalized, opening) {
			return &opening
		}
	}
	if m := leadingWordRe.FindStringSubmatch(normalized); m != nil {
		for _, opening := range knownOpenings {
			if m[1] == opening {
				return &opening
			}
		}
	}
	return nil
}

// DetectNudge reports whether the reply contains a nudge the backend should
// start a cooldown for. A high budget usage with budget warnings allowed
// only ever yields a budget nudge; the streak check runs otherwise.
func DetectNudge(reply string, canNudge, canBudgetWarning bool, budgetPercent *float64, streakDays int) (model.NudgeType, bool) {
	if !canNudge && !canBudgetWarning {
		return "", false
	}
	lower := strings.ToLower(reply)
	switch {
	case canBudgetWarning && budgetPercent != nil && *budgetPercent > budgetNudgeThreshold:
		if containsAny(lower, budgetKeywords) {
			return model.NudgeBudget, true
		}
	case canNudge:
		if streakDays >= streakNudgeDays && containsAny(lower, streakKeywords) {
			return model.NudgeStreak, true
		}
	}
	return "", false
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
