package model

import (
	"encoding/json"
	"testing"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRuntimeContextDefaults(t *testing.T) {
	var rc RuntimeContext
	require.NoError(t, json.Unmarshal([]byte(`{"summary":"Registró $5,000 en Comida."}`), &rc))
	assert.True(t, rc.CanNudge)
	assert.True(t, rc.CanBudgetWarning)
	assert.Equal(t, 0, rc.MoodHint)
	assert.Nil(t, rc.BudgetPercent())
	assert.Equal(t, 0, rc.StreakDays())

	require.NoError(t, json.Unmarshal([]byte(`{"can_nudge":false,"mood_hint":null,"metrics":{"tx_streak_days":4,"budget_percent":0.92}}`), &rc))
	assert.False(t, rc.CanNudge)
	assert.True(t, rc.CanBudgetWarning)
	assert.Equal(t, 4, rc.StreakDays())
	require.NotNil(t, rc.BudgetPercent())
	assert.InDelta(t, 0.92, *rc.BudgetPercent(), 1e-9)
}

func TestRuntimeContextValidate(t *testing.T) {
	rc := DefaultRuntimeContext()
	rc.MoodHint = 2
	assert.Error(t, rc.Validate())

	rc.MoodHint = -1
	rc.UserStyle = &UserStyle{EmojiLevel: "lots"}
	assert.Error(t, rc.Validate())

	rc.UserStyle.EmojiLevel = EmojiLight
	assert.NoError(t, rc.Validate())
}

func TestUserContextValidate(t *testing.T) {
	legacy := MoodDisappointed
	uc := UserContext{
		UserID:      "u-1",
		Personality: &Personality{Tone: ToneFriendly, Intensity: 0.8, Mood: &legacy},
		Prefs:       &UserPrefs{NotificationLevel: NotificationLight},
	}
	assert.NoError(t, uc.Validate())

	uc.Personality.Intensity = 1.5
	uc.Personality.Tone = "sarcastic"
	err := uc.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "intensity")
	assert.Contains(t, err.Error(), "tone")
}

func TestHistoryMessages(t *testing.T) {
	history := []ConversationMessage{
		{Role: "user", Content: "hola"},
		{Role: "assistant", Content: "¡Hola! ¿En qué te ayudo?"},
		{Role: "user", Content: "   "},
		{Role: "user", Content: "gasté 5 lucas en comida"},
	}

	msgs := HistoryMessages(history, 0)
	require.Len(t, msgs, 3)
	assert.Equal(t, schema.User, msgs[0].Role)
	assert.Equal(t, schema.Assistant, msgs[1].Role)

	msgs = HistoryMessages(history, 2)
	require.Len(t, msgs, 1)
	assert.Equal(t, "gasté 5 lucas en comida", msgs[0].Content)
}

func TestPhaseBRequestValidateHistoryRole(t *testing.T) {
	req := &PhaseBRequest{ConversationHistory: []ConversationMessage{{Role: "system", Content: "x"}}}
	assert.Error(t, req.Validate())
}

func TestComputeCost(t *testing.T) {
	in, out, total := ComputeCost(&schema.TokenUsage{PromptTokens: 1_000_000, CompletionTokens: 500_000}, ResolvePricing("gpt-4o-mini"))
	assert.InDelta(t, 0.15, in, 1e-9)
	assert.InDelta(t, 0.30, out, 1e-9)
	assert.InDelta(t, 0.45, total, 1e-9)

	_, _, total = ComputeCost(nil, ResolvePricing("gpt-4o-mini"))
	assert.Zero(t, total)
	assert.Equal(t, Pricing{}, ResolvePricing("unknown"))
}

func TestResolvePricingDatedSnapshots(t *testing.T) {
	usage := &schema.TokenUsage{PromptTokens: 1_000_000, CompletionTokens: 1_000_000}

	_, _, total := ComputeCost(usage, ResolvePricing("gpt-4o-mini-2024-07-18"))
	assert.InDelta(t, 0.75, total, 1e-9)

	assert.Equal(t, ResolvePricing("gpt-4o"), ResolvePricing("gpt-4o-2024-08-06"))
	assert.Equal(t, ResolvePricing("gemini-2.5-flash-lite"), ResolvePricing("gemini-2.5-flash-lite-preview-06-17"))
	assert.Equal(t, Pricing{}, ResolvePricing("gpt-4omni"))
}
