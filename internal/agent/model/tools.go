package model

// ToolName identifies an action the backend knows how to execute.
type ToolName string

const (
	ToolAskAppInfo          ToolName = "ask_app_info"
	ToolRegisterTransaction ToolName = "register_transaction"
	ToolAskBalance          ToolName = "ask_balance"
	ToolAskBudgetStatus     ToolName = "ask_budget_status"
	ToolAskGoalStatus       ToolName = "ask_goal_status"
	ToolGreeting            ToolName = "greeting"
)

// ToolSchema declares a tool the model may request in Phase A.
type ToolSchema struct {
	Name        string         `json:"name" yaml:"name"`
	Description string         `json:"description" yaml:"description"`
	Parameters  ToolParameters `json:"parameters" yaml:"parameters"`
}

type ToolParameters struct {
	Type       string                   `json:"type" yaml:"type"`
	Properties map[string]ToolParameter `json:"properties" yaml:"properties"`
	Required   []string                 `json:"required" yaml:"required"`
}

type ToolParameter struct {
	Type        string `json:"type" yaml:"type"`
	Description string `json:"description" yaml:"description"`
}

// ToolCall is the Phase A decision to run a tool.
type ToolCall struct {
	Name string         `json:"name"`
	Args map[string]any `json:"args"`
}

// PendingSlotContext carries a multi-turn tool invocation that still lacks
// required arguments. The backend owns its lifecycle.
type PendingSlotContext struct {
	Tool          string         `json:"tool"`
	CollectedArgs map[string]any `json:"collected_args"`
	MissingArgs   []string       `json:"missing_args"`
	AskedAt       *string        `json:"asked_at"`
}

// ActionResult is the outcome of a tool the backend already executed.
type ActionResult struct {
	OK          bool           `json:"ok"`
	Action      string         `json:"action"`
	Data        map[string]any `json:"data"`
	UserMessage *string        `json:"userMessage"`
	ErrorCode   *string        `json:"errorCode"`
}
