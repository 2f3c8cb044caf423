package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/cloudwego/eino-ext/components/model/gemini"
	"github.com/cloudwego/eino/callbacks"
	"github.com/cloudwego/eino/components"
	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/tallyfinance/ai-service/internal/agent/model"
)

// Generator is the subset of an eino ChatModel used by the provider.
type Generator interface {
	Generate(ctx context.Context, input []*schema.Message, opts ...einomodel.Option) (*schema.Message, error)
}

// ChatModel implements Provider on top of an eino ChatModel, so model
// callbacks registered with eino observe every call. JSON mode relies on the
// prompt asking for a JSON object.
type ChatModel struct {
	chat  Generator
	model string
}

func NewChatModel(chat Generator, modelName string) (*ChatModel, error) {
	if chat == nil {
		return nil, errors.New("chat model is required")
	}
	return &ChatModel{chat: chat, model: modelName}, nil
}

// NewChatModelFromConfig creates the eino Gemini ChatModel.
func NewChatModelFromConfig(ctx context.Context, cfg model.LLMConfig) (*ChatModel, error) {
	client, err := newGenaiClient(ctx, cfg)
	if err != nil {
		return nil, err
	}
	cm, err := gemini.NewChatModel(ctx, &gemini.Config{
		Client:    client,
		Model:     cfg.Model,
		MaxTokens: &cfg.MaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("error creating chat model: %w", err)
	}
	return NewChatModel(cm, cfg.Model)
}

func (c *ChatModel) Name() string { return ProviderEinoGemini }

func (c *ChatModel) Complete(ctx context.Context, req Request) (*Response, error) {
	opts := []einomodel.Option{einomodel.WithTemperature(req.Temperature)}
	if req.MaxTokens > 0 {
		opts = append(opts, einomodel.WithMaxTokens(req.MaxTokens))
	}
	ctx = callbacks.InitCallbacks(ctx, &callbacks.RunInfo{
		Name:      c.model,
		Type:      "Gemini",
		Component: components.ComponentOfChatModel,
	})
	out, err := c.chat.Generate(ctx, req.Messages, opts...)
	if err != nil {
		return nil, fmt.Errorf("chat model generate: %w", err)
	}
	if out == nil {
		return &Response{Model: c.model}, nil
	}
	resp := &Response{Content: out.Content, Model: c.model}
	if out.ResponseMeta != nil {
		resp.Usage = out.ResponseMeta.Usage
	}
	return resp, nil
}
