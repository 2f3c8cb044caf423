package model

import (
	"errors"
	"fmt"
)

// UserContext is aggregated by the backend from the user's profile tables.
type UserContext struct {
	UserID       string       `json:"user_id"`
	Personality  *Personality `json:"personality"`
	Prefs        *UserPrefs   `json:"prefs"`
	ActiveBudget *Budget      `json:"active_budget"`
	GoalsSummary []string     `json:"goals_summary"`
}

type Personality struct {
	Tone      Tone    `json:"tone"`
	Intensity float64 `json:"intensity"`
	Mood      *Mood   `json:"mood"`
}

type NotificationLevel string

const (
	NotificationNone    NotificationLevel = "none"
	NotificationLight   NotificationLevel = "light"
	NotificationMedium  NotificationLevel = "medium"
	NotificationIntense NotificationLevel = "intense"
)

type UserPrefs struct {
	NotificationLevel NotificationLevel `json:"notification_level"`
	UnifiedBalance    *bool             `json:"unified_balance"`
}

// Budget is the active spending expectation. Spent is computed by the backend.
type Budget struct {
	Period string   `json:"period"`
	Amount float64  `json:"amount"`
	Spent  *float64 `json:"spent"`
}

// FieldError reports a single invalid request field.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// Validate checks vocabulary and range constraints of the user context.
func (u UserContext) Validate() error {
	var errs []error
	if p := u.Personality; p != nil {
		if !p.Tone.Valid() {
			errs = append(errs, &FieldError{"user_context.personality.tone", fmt.Sprintf("unknown tone %q", p.Tone)})
		}
		if p.Intensity < 0 || p.Intensity > 1 {
			errs = append(errs, &FieldError{"user_context.personality.intensity", "must be within [0, 1]"})
		}
		if p.Mood != nil && !p.Mood.Valid() {
			errs = append(errs, &FieldError{"user_context.personality.mood", fmt.Sprintf("unknown mood %q", *p.Mood)})
		}
	}
	if pr := u.Prefs; pr != nil {
		switch pr.NotificationLevel {
		case NotificationNone, NotificationLight, NotificationMedium, NotificationIntense:
		default:
			errs = append(errs, &FieldError{"user_context.prefs.notification_level", fmt.Sprintf("unknown level %q", pr.NotificationLevel)})
		}
	}
	return errors.Join(errs...)
}
