package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/khoahotran/social-api/internal/domain/user"
	"github.com/khoahotran/social-api/pkg/logger"
)

const userCacheKeyPrefix = "social:user:"

// cachedUserRepo is a read-through cache in front of the identity table.
// Redis errors degrade to a direct lookup.
type cachedUserRepo struct {
	next   user.Repository
	rdb    *redis.Client
	ttl    time.Duration
	logger logger.Logger
}

func NewCachedUserRepo(next user.Repository, rdb *redis.Client, ttl time.Duration, log logger.Logger) user.Repository {
	return &cachedUserRepo{next: next, rdb: rdb, ttl: ttl, logger: log}
}

func userCacheKey(id uuid.UUID) string {
	return userCacheKeyPrefix + id.String()
}

func (r *cachedUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	key := userCacheKey(id)

	raw, err := r.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		u := &user.User{}
		if jsonErr := json.Unmarshal(raw, u); jsonErr == nil {
			return u, nil
		}
		r.logger.Warn("Dropping unreadable cached user", zap.String("key", key))
	case !errors.Is(err, redis.Nil):
		r.logger.Warn("User cache read failed", zap.String("key", key), zap.Error(err))
	}

	u, err := r.next.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(u); err == nil {
		if err := r.rdb.Set(ctx, key, payload, r.ttl).Err(); err != nil {
			r.logger.Warn("User cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return u, nil
}
