package prompts

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/cloudwego/eino/callbacks"
	"github.com/cloudwego/eino/components"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"

	"github.com/tallyfinance/ai-service/internal/agent/model"
)

// Template names known to the service.
const (
	TemplateIdentity = "identity"
	TemplatePhaseA   = "phase_a_system"
	TemplatePhaseB   = "phase_b_system"
)

// ErrTemplateRender is wrapped by every rendering failure, including missing slots.
var ErrTemplateRender = errors.New("template render failed")

// Slots enumerates the variables each template requires.
var Slots = map[string][]string{
	TemplateIdentity: {},
	TemplatePhaseA: {
		"user_context",
		"tool_schemas",
		"pending_context",
		"available_categories",
	},
	TemplatePhaseB: {
		"tone",
		"intensity",
		"mood",
		"tool_name",
		"ok",
		"data",
		"user_question",
		"app_knowledge",
		"ai_instruction",
		"error_info",
		"active_budget",
		"goals_summary",
	},
}

// Renderer loads templates from a store and renders them via the Eino prompt
// component, so prompt callbacks observe every render.
type Renderer struct {
	store model.TemplateStore
}

func NewRenderer(store model.TemplateStore) *Renderer {
	return &Renderer{store: store}
}

// Render loads name fresh from the store and fills its slots from vars.
func (r *Renderer) Render(ctx context.Context, name string, vars map[string]any) (string, error) {
	if missing := missingSlots(name, vars); len(missing) > 0 {
		return "", fmt.Errorf("%w: %s: missing slots %s", ErrTemplateRender, name, strings.Join(missing, ", "))
	}

	text, err := r.store.Load(ctx, name)
	if err != nil {
		return "", fmt.Errorf("load template %s: %w", name, err)
	}

	ctx = callbacks.InitCallbacks(ctx, &callbacks.RunInfo{
		Name:      name,
		Type:      "GoTemplate",
		Component: components.ComponentOfPrompt,
	})
	tpl := prompt.FromMessages(
		schema.GoTemplate,
		schema.SystemMessage(text),
	)
	msgs, err := tpl.Format(ctx, vars)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrTemplateRender, name, err)
	}
	if len(msgs) == 0 || msgs[0] == nil {
		return "", fmt.Errorf("%w: %s: empty result", ErrTemplateRender, name)
	}
	return msgs[0].Content, nil
}

func missingSlots(name string, vars map[string]any) []string {
	var missing []string
	for _, slot := range Slots[name] {
		if _, ok := vars[slot]; !ok {
			missing = append(missing, slot)
		}
	}
	sort.Strings(missing)
	return missing
}
