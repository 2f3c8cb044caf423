package model

import (
	"encoding/json"
	"fmt"
)

// UserMetrics are engagement metrics computed by the backend.
type UserMetrics struct {
	TxStreakDays  int      `json:"tx_streak_days"`
	WeekTxCount   int      `json:"week_tx_count"`
	BudgetPercent *float64 `json:"budget_percent"`
}

type EmojiLevel string

const (
	EmojiNone     EmojiLevel = "none"
	EmojiLight    EmojiLevel = "light"
	EmojiModerate EmojiLevel = "moderate"
)

// UserStyle is the writing style the backend detected in the user's messages.
type UserStyle struct {
	UsesCurrencySlang bool       `json:"uses_lucas"`
	UsesRegionalisms  bool       `json:"uses_chilenismos"`
	EmojiLevel        EmojiLevel `json:"emoji_level"`
	IsFormal          bool       `json:"is_formal"`
}

// RuntimeContext is the per-turn state for Phase B. All of it is owned and
// persisted by the backend.
type RuntimeContext struct {
	Summary          string       `json:"summary,omitempty"`
	Metrics          *UserMetrics `json:"metrics,omitempty"`
	MoodHint         int          `json:"mood_hint"`
	CanNudge         bool         `json:"can_nudge"`
	CanBudgetWarning bool         `json:"can_budget_warning"`
	LastOpening      string       `json:"last_opening,omitempty"`
	UserStyle        *UserStyle   `json:"user_style,omitempty"`
}

// DefaultRuntimeContext is used when the request carries none. Nudges are
// allowed unless the backend reports a cooldown.
func DefaultRuntimeContext() RuntimeContext {
	return RuntimeContext{CanNudge: true, CanBudgetWarning: true}
}

// UnmarshalJSON applies DefaultRuntimeContext for absent fields.
func (r *RuntimeContext) UnmarshalJSON(b []byte) error {
	type plain RuntimeContext
	v := plain(DefaultRuntimeContext())
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*r = RuntimeContext(v)
	return nil
}

// BudgetPercent returns the budget usage fraction, if known.
func (r RuntimeContext) BudgetPercent() *float64 {
	if r.Metrics == nil {
		return nil
	}
	return r.Metrics.BudgetPercent
}

// StreakDays returns the consecutive days with transactions, 0 when unknown.
func (r RuntimeContext) StreakDays() int {
	if r.Metrics == nil {
		return 0
	}
	return r.Metrics.TxStreakDays
}

func (r RuntimeContext) Validate() error {
	if r.MoodHint < -1 || r.MoodHint > 1 {
		return &FieldError{"runtime_context.mood_hint", "must be -1, 0 or 1"}
	}
	if s := r.UserStyle; s != nil {
		switch s.EmojiLevel {
		case "", EmojiNone, EmojiLight, EmojiModerate:
		default:
			return &FieldError{"runtime_context.user_style.emoji_level", fmt.Sprintf("unknown level %q", s.EmojiLevel)}
		}
	}
	return nil
}
