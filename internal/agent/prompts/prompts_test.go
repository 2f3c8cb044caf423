package prompts

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tallyfinance/ai-service/internal/agent/model"
)

type mapStore map[string]string

func (m mapStore) Load(_ context.Context, name string) (string, error) {
	t, ok := m[name]
	if !ok {
		return "", model.ErrTemplateNotFound
	}
	return t, nil
}

func TestRenderEmbeddedTemplates(t *testing.T) {
	r := NewRenderer(EmbeddedStore{})
	ctx := context.Background()

	vars, err := PhaseAVars(model.UserContext{UserID: "u-1"}, nil, nil, []string{"Comida", "Transporte"})
	require.NoError(t, err)
	out, err := r.Render(ctx, TemplatePhaseA, vars)
	require.NoError(t, err)
	assert.Contains(t, out, `"user_id": "u-1"`)
	assert.Contains(t, out, NoPendingText)
	assert.Contains(t, out, "Categorías del usuario: Comida, Transporte")
	assert.NotContains(t, out, "<no value>")

	vars, err = PhaseBVars(PhaseBInput{Tone: model.ToneFriendly, Intensity: 0.5, Mood: model.MoodHappy, ToolName: "ask_balance", Result: &model.ActionResult{OK: true}})
	require.NoError(t, err)
	out, err = r.Render(ctx, TemplatePhaseB, vars)
	require.NoError(t, err)
	assert.Contains(t, out, "Tono elegido por el usuario: friendly")
	assert.Contains(t, out, "Ánimo actual: happy")
	assert.Contains(t, out, "METAS: Sin metas definidas")
	assert.Contains(t, out, "PRESUPUESTO ACTIVO: null")

	identity, err := r.Render(ctx, TemplateIdentity, nil)
	require.NoError(t, err)
	assert.Contains(t, identity, "Gus")
}

func TestRenderMissingSlotFails(t *testing.T) {
	r := NewRenderer(EmbeddedStore{})
	_, err := r.Render(context.Background(), TemplatePhaseA, map[string]any{"user_context": "{}"})
	require.ErrorIs(t, err, ErrTemplateRender)
	assert.Contains(t, err.Error(), "available_categories, pending_context, tool_schemas")
}

func TestRenderUnknownTemplate(t *testing.T) {
	r := NewRenderer(EmbeddedStore{})
	_, err := r.Render(context.Background(), "nope", nil)
	assert.ErrorIs(t, err, model.ErrTemplateNotFound)
}

func TestRenderBrokenTemplate(t *testing.T) {
	r := NewRenderer(mapStore{"broken": "Hola {{.name"})
	_, err := r.Render(context.Background(), "broken", map[string]any{"name": "x"})
	assert.ErrorIs(t, err, ErrTemplateRender)
}

func TestRenderRereadsStore(t *testing.T) {
	store := mapStore{"greeting": "Hola {{.name}}"}
	r := NewRenderer(store)
	out, err := r.Render(context.Background(), "greeting", map[string]any{"name": "Ana"})
	require.NoError(t, err)
	assert.Equal(t, "Hola Ana", out)

	store["greeting"] = "Chao {{.name}}"
	out, err = r.Render(context.Background(), "greeting", map[string]any{"name": "Ana"})
	require.NoError(t, err)
	assert.Equal(t, "Chao Ana", out)
}

func TestPendingText(t *testing.T) {
	got, err := PendingText(&model.PendingSlotContext{
		Tool:          "register_transaction",
		CollectedArgs: map[string]any{"category": "comida"},
		MissingArgs:   []string{"amount"},
	})
	require.NoError(t, err)
	assert.Equal(t, "ESTADO PENDIENTE (multi-turno activo):\n"+
		"- Herramienta: register_transaction\n"+
		"- Args YA recolectados: {\"category\":\"comida\"}\n"+
		"- Args faltantes: [\"amount\"]\n"+
		"\nIMPORTANTE: Combina los args recolectados con lo nuevo del usuario.", got)

	got, err = PendingText(nil)
	require.NoError(t, err)
	assert.Equal(t, NoPendingText, got)
}

func TestCategoriesText(t *testing.T) {
	assert.Equal(t, NoCategoriesText, CategoriesText(nil))
	assert.Equal(t, "Categorías del usuario: Comida", CategoriesText([]string{"Comida"}))
}

func TestPhaseAVarsKeepsNonASCII(t *testing.T) {
	vars, err := PhaseAVars(model.UserContext{UserID: "u-1", GoalsSummary: []string{"Viaje a Puerto Montt <2025>"}}, []model.ToolSchema{{Name: "greeting"}}, nil, nil)
	require.NoError(t, err)
	assert.Contains(t, vars["user_context"], "Viaje a Puerto Montt <2025>")
	assert.Contains(t, vars["tool_schemas"], "\"name\": \"greeting\"")
	assert.Equal(t, NoCategoriesText, vars["available_categories"])
}

func TestPhaseBVars(t *testing.T) {
	code := "BUDGET_NOT_FOUND"
	spent := 120000.0
	vars, err := PhaseBVars(PhaseBInput{
		Tone:      model.ToneStrict,
		Intensity: 0.8,
		Mood:      model.MoodTired,
		ToolName:  "ask_app_info",
		Result: &model.ActionResult{
			OK:        false,
			ErrorCode: &code,
			Data: map[string]any{
				"userQuestion":  "¿qué es Tally?",
				"aiInstruction": "Explica en una frase",
				"appKnowledge":  map[string]any{"name": "TallyFinance"},
			},
		},
		User: model.UserContext{
			ActiveBudget: &model.Budget{Period: "monthly", Amount: 300000, Spent: &spent},
			GoalsSummary: []string{"Viaje", "Fondo de emergencia"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "0.8", vars["intensity"])
	assert.Equal(t, "false", vars["ok"])
	assert.Equal(t, "- Error: BUDGET_NOT_FOUND", vars["error_info"])
	assert.Equal(t, "¿qué es Tally?", vars["user_question"])
	assert.Equal(t, "Explica en una frase", vars["ai_instruction"])
	assert.Equal(t, `{"name":"TallyFinance"}`, vars["app_knowledge"])
	assert.Equal(t, `{"period":"monthly","amount":300000,"spent":120000}`, vars["active_budget"])
	assert.Equal(t, "Viaje, Fondo de emergencia", vars["goals_summary"])

	vars, err = PhaseBVars(PhaseBInput{Result: &model.ActionResult{OK: true, Data: map[string]any{"amount": 1.0}}})
	require.NoError(t, err)
	assert.Equal(t, "{}", vars["app_knowledge"])
	assert.Equal(t, "", vars["error_info"])

	vars, err = PhaseBVars(PhaseBInput{Result: &model.ActionResult{OK: true}})
	require.NoError(t, err)
	assert.Equal(t, "", vars["app_knowledge"])
	assert.Equal(t, "{}", vars["data"])
	for _, slot := range Slots[TemplatePhaseB] {
		assert.Contains(t, vars, slot)
	}
}

func TestPhaseBSystem(t *testing.T) {
	rc := model.DefaultRuntimeContext()
	got := PhaseBSystem("ID", "BODY", rc, 0)
	assert.Equal(t, "ID\n\nBODY\n\n"+
		"CONTEXTO DE LA SESION:\nPrimera interaccion de esta sesion.\nAcciones en esta sesion: 0\n\n"+
		"\n\n"+
		"\n\n"+
		"NUDGES PERMITIDOS:\n"+
		"- Puede incluir nudge general: Sí\n"+
		"- Puede advertir presupuesto >90%: Sí\n", got)

	rc = model.RuntimeContext{
		Summary:     "Consultó su balance.",
		LastOpening: "listo",
		UserStyle:   &model.UserStyle{UsesCurrencySlang: true, EmojiLevel: model.EmojiLight},
	}
	got = PhaseBSystem("ID", "BODY", rc, 1)
	assert.Contains(t, got, "Consultó su balance.\nAcciones en esta sesion: 1\n")
	assert.Contains(t, got, "Estilo del usuario: usa 'lucas' para dinero, nivel de emoji: light\n\n")
	assert.Contains(t, got, "Ultima apertura usada: listo\n\n")
	assert.Contains(t, got, "nudge general: No (en cooldown)")
	assert.Contains(t, got, ">90%: No (en cooldown)")
}

func TestStyleText(t *testing.T) {
	assert.Equal(t, "", StyleText(nil))
	assert.Equal(t, "", StyleText(&model.UserStyle{EmojiLevel: model.EmojiNone}))
	assert.Equal(t, "Estilo del usuario: usa chilenismos, estilo formal", StyleText(&model.UserStyle{UsesRegionalisms: true, IsFormal: true}))
}
