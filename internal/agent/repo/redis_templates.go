package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tallyfinance/ai-service/internal/agent/model"
	errx "github.com/tallyfinance/ai-service/internal/core/error"
	logx "github.com/tallyfinance/ai-service/pkg/logger"
)

// RedisKV is the subset of redis.Cmdable the template store needs.
type RedisKV interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// RedisTemplateStore keeps prompt templates under "<prefix>:<name>" so they
// can be edited without a deploy. Templates never expire.
type RedisTemplateStore struct {
	rdb    RedisKV
	prefix string
}

func NewRedisTemplateStore(rdb RedisKV, prefix string) *RedisTemplateStore {
	return &RedisTemplateStore{rdb: rdb, prefix: prefix}
}

func (r *RedisTemplateStore) templateKey(name string) string {
	return fmt.Sprintf("%s:%s", r.prefix, name)
}

func (r *RedisTemplateStore) Load(ctx context.Context, name string) (string, error) {
	key := r.templateKey(name)

	text, err := r.rdb.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", fmt.Errorf("%w: %s", model.ErrTemplateNotFound, key)
		}
		logx.Ctx(ctx).Error().Err(err).Str("key", key).Msg("failed to load prompt template from redis")
		return "", errx.WrapRedis(err)
	}
	return text, nil
}

// Save stores a template, replacing any previous version.
func (r *RedisTemplateStore) Save(ctx context.Context, name, text string) error {
	key := r.templateKey(name)
	if err := r.rdb.Set(ctx, key, text, 0).Err(); err != nil {
		logx.Ctx(ctx).Error().Err(err).Str("key", key).Msg("failed to save prompt template to redis")
		return errx.WrapRedis(err)
	}
	return nil
}
