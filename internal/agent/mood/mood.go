// Package mood derives the assistant's per-reply mood from the user's base
// mood, the backend hint and engagement metrics.
package mood

import "github.com/tallyfinance/ai-service/internal/agent/model"

const (
	// Budget usage above this forces frustrated.
	frustratedBudgetPercent = 0.95

	// Streaks this long force proud unless spending is already at half the budget.
	proudStreakDays    = 7
	proudBudgetCeiling = 0.5

	normalIndex = 2
)

// Normalize maps an input mood onto the ladder. Legacy and unknown values are
// folded in here so Calculate never sees them.
func Normalize(base model.Mood) model.Mood {
	switch base {
	case model.MoodFrustrated, model.MoodTired, model.MoodNormal,
		model.MoodHopeful, model.MoodHappy, model.MoodProud:
		return base
	case model.MoodDisappointed:
		return model.MoodTired
	default:
		return model.MoodNormal
	}
}

// Calculate returns the final mood. hint moves along the ladder and is clamped
// at both ends; the budget and streak overrides win over it.
func Calculate(base model.Mood, hint int, budgetPercent *float64, streakDays int) model.Mood {
	idx := clamp(index(Normalize(base))+hint, 0, len(model.MoodLadder)-1)

	switch {
	case budgetPercent != nil && *budgetPercent > frustratedBudgetPercent:
		idx = 0
	case streakDays >= proudStreakDays && (budgetPercent == nil || *budgetPercent < proudBudgetCeiling):
		idx = len(model.MoodLadder) - 1
	}
	return model.MoodLadder[idx]
}

func index(m model.Mood) int {
	for i, v := range model.MoodLadder {
		if v == m {
			return i
		}
	}
	return normalIndex
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
