package draftstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/buildlink/onboarding-api/internal/models"
	"github.com/buildlink/onboarding-api/pkg/logger"
	"github.com/buildlink/onboarding-api/pkg/metrics"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// draftTTL bounds how long abandoned drafts linger. Active sessions refresh
// the TTL on every save.
const draftTTL = 7 * 24 * time.Hour

// RedisStore persists draft sections in Redis, one key per section scoped
// by session ID.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a Redis-backed draft store and verifies the
// connection.
func NewRedisStore(ctx context.Context, addr, password string, db int) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	logger.Info("Redis draft store initialized", zap.String("addr", addr), zap.Int("db", db))

	return &RedisStore{client: client}, nil
}

func redisKey(sessionID string, key models.SectionKey) string {
	return fmt.Sprintf("onboarding:draft:%s:%s", sessionID, key)
}

func (r *RedisStore) Load(ctx context.Context, sessionID string, key models.SectionKey) (json.RawMessage, bool) {
	raw, err := r.client.Get(ctx, redisKey(sessionID, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		metrics.DraftStoreOps.WithLabelValues("load", "miss").Inc()
		return nil, false
	}
	if err != nil {
		// Transport failure degrades to "no draft" rather than breaking the wizard.
		metrics.DraftStoreOps.WithLabelValues("load", "error").Inc()
		logger.Error("Failed to load draft section from redis",
			zap.String("section", string(key)),
			zap.String("session_id", sessionID),
			zap.Error(err))
		return nil, false
	}

	metrics.DraftStoreOps.WithLabelValues("load", "hit").Inc()
	return raw, true
}

func (r *RedisStore) Save(ctx context.Context, sessionID string, key models.SectionKey, raw json.RawMessage) error {
	if err := r.client.Set(ctx, redisKey(sessionID, key), []byte(raw), draftTTL).Err(); err != nil {
		metrics.DraftStoreOps.WithLabelValues("save", "error").Inc()
		return fmt.Errorf("failed to save draft section %s: %w", key, err)
	}
	metrics.DraftStoreOps.WithLabelValues("save", "success").Inc()
	return nil
}

func (r *RedisStore) Clear(ctx context.Context, sessionID string, key models.SectionKey) error {
	if err := r.client.Del(ctx, redisKey(sessionID, key)).Err(); err != nil {
		metrics.DraftStoreOps.WithLabelValues("clear", "error").Inc()
		return fmt.Errorf("failed to clear draft section %s: %w", key, err)
	}
	metrics.DraftStoreOps.WithLabelValues("clear", "success").Inc()
	return nil
}

func (r *RedisStore) ClearAll(ctx context.Context, sessionID string, keys []models.SectionKey) error {
	redisKeys := make([]string, 0, len(keys))
	for _, key := range keys {
		redisKeys = append(redisKeys, redisKey(sessionID, key))
	}
	if err := r.client.Del(ctx, redisKeys...).Err(); err != nil {
		metrics.DraftStoreOps.WithLabelValues("clear_all", "error").Inc()
		return fmt.Errorf("failed to clear draft sections: %w", err)
	}
	metrics.DraftStoreOps.WithLabelValues("clear_all", "success").Inc()
	return nil
}

// Ping verifies the Redis connection, for health checks.
func (r *RedisStore) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close releases the underlying Redis connection.
func (r *RedisStore) Close() error {
	return r.client.Close()
}
