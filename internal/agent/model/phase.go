package model

import (
	"errors"
	"fmt"
)

// Phase discriminates the two orchestration steps.
type Phase string

const (
	PhaseA Phase = "A"
	PhaseB Phase = "B"
)

// ResponseType is the kind of decision Phase A produced.
type ResponseType string

const (
	ResponseToolCall      ResponseType = "tool_call"
	ResponseClarification ResponseType = "clarification"
	ResponseDirectReply   ResponseType = "direct_reply"
)

// Valid reports whether t is one of the three Phase A response types.
func (t ResponseType) Valid() bool {
	switch t {
	case ResponseToolCall, ResponseClarification, ResponseDirectReply:
		return true
	}
	return false
}

type NudgeType string

const (
	NudgeBudget NudgeType = "budget"
	NudgeGoal   NudgeType = "goal"
	NudgeStreak NudgeType = "streak"
)

// PhaseARequest asks for an intent decision on free-form user text.
type PhaseARequest struct {
	Phase               Phase                 `json:"phase"`
	UserText            string                `json:"user_text"`
	UserContext         UserContext           `json:"user_context"`
	Tools               []ToolSchema          `json:"tools"`
	Pending             *PendingSlotContext   `json:"pending,omitempty"`
	AvailableCategories []string              `json:"available_categories,omitempty"`
	ConversationHistory []ConversationMessage `json:"conversation_history,omitempty"`
}

// PhaseAResponse carries exactly one of ToolCall, Clarification or DirectReply.
type PhaseAResponse struct {
	Phase         Phase        `json:"phase"`
	ResponseType  ResponseType `json:"response_type"`
	ToolCall      *ToolCall    `json:"tool_call"`
	Clarification *string      `json:"clarification"`
	DirectReply   *string      `json:"direct_reply"`
}

// PhaseBRequest asks for a personalized reply to an executed tool.
type PhaseBRequest struct {
	Phase               Phase                 `json:"phase"`
	ToolName            string                `json:"tool_name"`
	ActionResult        *ActionResult         `json:"action_result"`
	UserContext         UserContext           `json:"user_context"`
	RuntimeContext      *RuntimeContext       `json:"runtime_context,omitempty"`
	UserText            string                `json:"user_text,omitempty"`
	ConversationHistory []ConversationMessage `json:"conversation_history,omitempty"`
}

// PhaseBResponse is the final message plus metadata the backend persists for
// the next turn.
type PhaseBResponse struct {
	Phase        Phase      `json:"phase"`
	FinalMessage string     `json:"final_message"`
	NewSummary   *string    `json:"new_summary"`
	DidNudge     bool       `json:"did_nudge"`
	NudgeType    *NudgeType `json:"nudge_type"`
	NewOpening   *string    `json:"new_opening"`
}

// Validate checks field-level constraints. Required-field checks that map to
// dedicated error codes are done by the transport.
func (r *PhaseARequest) Validate() error {
	return errors.Join(r.UserContext.Validate(), validateHistory(r.ConversationHistory))
}

func (r *PhaseBRequest) Validate() error {
	errs := []error{r.UserContext.Validate(), validateHistory(r.ConversationHistory)}
	if r.RuntimeContext != nil {
		errs = append(errs, r.RuntimeContext.Validate())
	}
	return errors.Join(errs...)
}

func validateHistory(history []ConversationMessage) error {
	for i, m := range history {
		if m.Role != "user" && m.Role != "assistant" {
			return &FieldError{fmt.Sprintf("conversation_history[%d].role", i), fmt.Sprintf("unknown role %q", m.Role)}
		}
	}
	return nil
}
