package prompts

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tallyfinance/ai-service/internal/agent/model"
)

const (
	NoPendingText    = "Sin contexto pendiente (mensaje nuevo)."
	NoCategoriesText = "Sin categorías disponibles (usar inferencia general)."
)

// PhaseAVars builds the Phase A template variables.
func PhaseAVars(uc model.UserContext, tools []model.ToolSchema, pending *model.PendingSlotContext, categories []string) (map[string]any, error) {
	ucJSON, err := marshalIndent(uc)
	if err != nil {
		return nil, fmt.Errorf("marshal user context: %w", err)
	}
	if tools == nil {
		tools = []model.ToolSchema{}
	}
	toolsJSON, err := marshalIndent(tools)
	if err != nil {
		return nil, fmt.Errorf("marshal tool schemas: %w", err)
	}
	pendingText, err := PendingText(pending)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"user_context":         ucJSON,
		"tool_schemas":         toolsJSON,
		"pending_context":      pendingText,
		"available_categories": CategoriesText(categories),
	}, nil
}

// PendingText describes an in-progress multi-turn tool call.
func PendingText(p *model.PendingSlotContext) (string, error) {
	if p == nil {
		return NoPendingText, nil
	}
	collected := p.CollectedArgs
	if collected == nil {
		collected = map[string]any{}
	}
	collectedJSON, err := marshal(collected)
	if err != nil {
		return "", fmt.Errorf("marshal pending args: %w", err)
	}
	missing := p.MissingArgs
	if missing == nil {
		missing = []string{}
	}
	missingJSON, err := marshal(missing)
	if err != nil {
		return "", fmt.Errorf("marshal missing args: %w", err)
	}

	var sb strings.Builder
	sb.WriteString("ESTADO PENDIENTE (multi-turno activo):\n")
	fmt.Fprintf(&sb, "- Herramienta: %s\n", p.Tool)
	fmt.Fprintf(&sb, "- Args YA recolectados: %s\n", collectedJSON)
	fmt.Fprintf(&sb, "- Args faltantes: %s\n", missingJSON)
	sb.WriteString("\nIMPORTANTE: Combina los args recolectados con lo nuevo del usuario.")
	return sb.String(), nil
}

func CategoriesText(categories []string) string {
	if len(categories) == 0 {
		return NoCategoriesText
	}
	return "Categorías del usuario: " + strings.Join(categories, ", ")
}

// marshal encodes v as compact JSON without HTML escaping.
func marshal(v any) (string, error) {
	return encode(v, "")
}

func marshalIndent(v any) (string, error) {
	return encode(v, "  ")
}

func encode(v any, indent string) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if indent != "" {
		enc.SetIndent("", indent)
	}
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}
