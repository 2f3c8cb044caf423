package parsers

import (
	"strings"

	"github.com/tallyfinance/ai-service/internal/agent/model"
)

const (
	DefaultClarification = "No entendi tu mensaje. ¿Puedes dar mas detalles?"
	DefaultDirectReply   = "¡Hola! ¿En que puedo ayudarte?"
	UnknownToolName      = "unknown"
)

// Decision is a Phase A response built from the model's JSON object.
type Decision struct {
	Response *model.PhaseAResponse
	// Coerced is set when response_type was missing or invalid and the
	// decision fell back to a clarification. RawType holds what was received.
	Coerced bool
	RawType any
}

// ParseDecision maps the decoded completion onto exactly one of the three
// Phase A outcomes. It never fails: malformed fields take their defaults.
func ParseDecision(data map[string]any) Decision {
	d := Decision{RawType: data["response_type"]}

	rt, _ := d.RawType.(string)
	responseType := model.ResponseType(rt)
	if !responseType.Valid() {
		d.Coerced = true
		responseType = model.ResponseClarification
	}

	resp := &model.PhaseAResponse{Phase: model.PhaseA, ResponseType: responseType}
	switch responseType {
	case model.ResponseToolCall:
		call, _ := data["tool_call"].(map[string]any)
		name, _ := call["name"].(string)
		if strings.TrimSpace(name) == "" {
			name = UnknownToolName
		}
		args, _ := call["args"].(map[string]any)
		if args == nil {
			args = map[string]any{}
		}
		resp.ToolCall = &model.ToolCall{Name: strings.TrimSpace(name), Args: args}
	case model.ResponseClarification:
		text := textOr(data["clarification"], DefaultClarification)
		resp.Clarification = &text
	case model.ResponseDirectReply:
		text := textOr(data["direct_reply"], DefaultDirectReply)
		resp.DirectReply = &text
	}
	d.Response = resp
	return d
}

func textOr(v any, fallback string) string {
	if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
		return s
	}
	return fallback
}
