package repo

import (
	"context"
	"errors"

	"github.com/tallyfinance/ai-service/internal/agent/model"
	logx "github.com/tallyfinance/ai-service/pkg/logger"
)

// FallbackStore serves templates from primary and falls back to secondary
// only when primary has no such template. Other primary errors are returned.
type FallbackStore struct {
	primary   model.TemplateStore
	secondary model.TemplateStore
}

func NewFallbackStore(primary, secondary model.TemplateStore) *FallbackStore {
	return &FallbackStore{primary: primary, secondary: secondary}
}

func (s *FallbackStore) Load(ctx context.Context, name string) (string, error) {
	text, err := s.primary.Load(ctx, name)
	if err == nil {
		return text, nil
	}
	if !errors.Is(err, model.ErrTemplateNotFound) {
		return "", err
	}
	logx.Ctx(ctx).Debug().Str("template", name).Msg("Template not in primary store, using fallback")
	return s.secondary.Load(ctx, name)
}
