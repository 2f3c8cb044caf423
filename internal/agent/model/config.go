package model

import "time"

// ================ Config ================
type ConversationConfig struct {
	// MaxTurns bounds the history injected into prompts; 0 keeps all.
	MaxTurns int `envconfig:"CONVERSATION_MAX_TURNS" default:"10"`
}

type LLMConfig struct {
	Provider          string        `envconfig:"LLM_PROVIDER" default:"openai"`
	Model             string        `envconfig:"LLM_MODEL" default:"gpt-4o-mini"`
	Timeout           time.Duration `envconfig:"LLM_TIMEOUT" default:"25s"`
	MaxRetries        int           `envconfig:"MAX_RETRIES" default:"1"`
	MaxTokens         int           `envconfig:"LLM_MAX_TOKENS" default:"1024"`
	TemperaturePhaseA float32       `envconfig:"LLM_TEMPERATURE_PHASE_A" default:"0.3"`
	TemperaturePhaseB float32       `envconfig:"LLM_TEMPERATURE_PHASE_B" default:"0.7"`
	RatePerSecond     float64       `envconfig:"LLM_RATE_PER_SECOND" default:"0"`
	RateBurst         int           `envconfig:"LLM_RATE_BURST" default:"1"`

	OpenAIAPIKey  string `envconfig:"OPENAI_API_KEY"`
	OpenAIBaseURL string `envconfig:"OPENAI_BASE_URL"`
	GeminiAPIKey  string `envconfig:"GEMINI_API_KEY"`
	GeminiBaseURL string `envconfig:"GEMINI_BASE_URL"`
}

// WorstCaseLatency is the longest a single completion call can block:
// every attempt may run to its own timeout.
func (c LLMConfig) WorstCaseLatency() time.Duration {
	attempts := c.MaxRetries + 1
	if attempts < 1 {
		attempts = 1
	}
	return time.Duration(attempts) * c.Timeout
}

type PromptConfig struct {
	// Source is one of embedded, file or redis.
	Source      string `envconfig:"PROMPT_SOURCE" default:"embedded"`
	Dir         string `envconfig:"PROMPT_DIR" default:"prompts"`
	RedisPrefix string `envconfig:"PROMPT_REDIS_PREFIX" default:"prompt"`
}

type ServerConfig struct {
	Addr            string        `envconfig:"HTTP_ADDR" default:":8000"`
	EndpointTimeout time.Duration `envconfig:"ENDPOINT_TIMEOUT" default:"30s"`
	ServiceVersion  string        `envconfig:"SERVICE_VERSION" default:"1.0.0"`
}
