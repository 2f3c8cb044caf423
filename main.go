package main

import (
	"context"
	"fmt"
	"os"

	"github.com/cloudwego/eino/callbacks"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	goredis "github.com/redis/go-redis/v9"

	"github.com/tallyfinance/ai-service/internal/agent/llm"
	"github.com/tallyfinance/ai-service/internal/agent/model"
	"github.com/tallyfinance/ai-service/internal/agent/observers"
	"github.com/tallyfinance/ai-service/internal/agent/orchestrator"
	"github.com/tallyfinance/ai-service/internal/agent/prompts"
	"github.com/tallyfinance/ai-service/internal/agent/repo"
	"github.com/tallyfinance/ai-service/internal/core"
	logx "github.com/tallyfinance/ai-service/pkg/logger"
	pkgredis "github.com/tallyfinance/ai-service/pkg/redis"
)

// AppConfig defines all configurable parameters of the service, sourced from
// environment variables (loaded from .env for local runs).
type AppConfig struct {
	Environment core.Environment `envconfig:"ENVIRONMENT" default:"development"`
	LogLevel    string           `envconfig:"LOG_LEVEL"`

	Server       model.ServerConfig
	LLM          model.LLMConfig
	Prompt       model.PromptConfig
	Conversation model.ConversationConfig

	// Infrastructure. Only used when PROMPT_SOURCE=redis.
	Redis pkgredis.Config
}

const (
	promptSourceEmbedded = "embedded"
	promptSourceFile     = "file"
	promptSourceRedis    = "redis"
)

func loadConfig() (*AppConfig, error) {
	if err := godotenv.Load(".env"); err != nil && !os.IsNotExist(err) {
		logx.Warn().Err(err).Msg("Could not load .env file")
	}

	var cfg AppConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("process environment config: %w", err)
	}
	logx.Init(logx.LoggerOpts{Environment: cfg.Environment, Level: cfg.LogLevel})
	return &cfg, nil
}

// templateStore picks where prompt templates are read from. File and Redis
// sources fall back to the embedded templates for names they lack.
func templateStore(ctx context.Context, cfg *AppConfig) (model.TemplateStore, func(), error) {
	noop := func() {}
	switch cfg.Prompt.Source {
	case "", promptSourceEmbedded:
		return prompts.EmbeddedStore{}, noop, nil
	case promptSourceFile:
		return repo.NewFallbackStore(repo.NewFileTemplateStore(cfg.Prompt.Dir), prompts.EmbeddedStore{}), noop, nil
	case promptSourceRedis:
		rdb, err := redisClient(ctx, cfg)
		if err != nil {
			return nil, noop, err
		}
		store := repo.NewFallbackStore(repo.NewRedisTemplateStore(rdb, cfg.Prompt.RedisPrefix), prompts.EmbeddedStore{})
		return store, func() { _ = rdb.Close() }, nil
	}
	return nil, noop, fmt.Errorf("unknown PROMPT_SOURCE %q", cfg.Prompt.Source)
}

func redisClient(ctx context.Context, cfg *AppConfig) (*goredis.Client, error) {
	rdb, err := cfg.Redis.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("initialise redis client: %w", err)
	}
	logx.Info().Msg("Connected to Redis")
	return rdb, nil
}

// buildOrchestrator wires the provider, retrying client, template store and
// observers into an orchestrator.
func buildOrchestrator(ctx context.Context, cfg *AppConfig) (*orchestrator.Orchestrator, func(), error) {
	provider, err := llm.NewProvider(ctx, cfg.LLM)
	if err != nil {
		return nil, nil, fmt.Errorf("create %s provider: %w", cfg.LLM.Provider, err)
	}
	store, cleanup, err := templateStore(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	callbacks.AppendGlobalHandlers(observers.NewAllCallbacks())

	client := llm.NewClient(provider, cfg.LLM)
	orch := orchestrator.New(client, prompts.NewRenderer(store), orchestrator.ConfigFrom(cfg.LLM, cfg.Conversation))

	logx.Info().
		Str("provider", provider.Name()).
		Str("model", client.Model()).
		Str("prompts", cfg.Prompt.Source).
		Dur("timeout", cfg.LLM.Timeout).
		Int("max_retries", cfg.LLM.MaxRetries).
		Msg("Orchestrator ready")
	return orch, cleanup, nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
