package redis

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/nicolasmmb/go-datacollector/internal/domain"
)

const (
	RD_KEY_CONFIGURATION      = "configuration:"
	RD_KEY_CONFIGURATION_LOCK = "configuration_refresh_locked"

	// Must stay above the refresh worker's timeout.
	CONFIGURATION_LOCK_TTL = 2 * time.Minute
)

var ErrLockNotHeld = errors.New("configuration refresh lock not held")

// Deletes the lock only while it still carries the caller's token.
var unlockScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

type configurationRedisRepository struct {
	db *redis.Client
}

func NewConfigurationRepository(db *redis.Client) *configurationRedisRepository {
	return &configurationRedisRepository{db: db}
}

func (r *configurationRedisRepository) GetConfiguration(ctx context.Context, merchantID string) (*domain.Configuration, error) {
	data, err := r.db.Get(ctx, RD_KEY_CONFIGURATION+merchantID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			slog.Debug("[RP:Configuration:Get:01] - Configuration not cached", "merchant_id", merchantID)
			return nil, nil
		}
		slog.Error("[RP:Configuration:Get:02] - Failed to get configuration from Redis", "merchant_id", merchantID, "error", err)
		return nil, err
	}

	var cfg domain.Configuration
	if err := msgpack.Unmarshal(data, &cfg); err != nil {
		slog.Error("[RP:Configuration:Get:03] - Failed to unmarshal configuration", "merchant_id", merchantID, "error", err)
		return nil, err
	}
	return &cfg, nil
}

func (r *configurationRedisRepository) SaveConfiguration(ctx context.Context, cfg *domain.Configuration, ttl time.Duration) error {
	b, err := msgpack.Marshal(cfg)
	if err != nil {
		slog.Error("[RP:Configuration:Save:01] - Failed to marshal configuration", "merchant_id", cfg.MerchantID, "error", err)
		return err
	}
	if err := r.db.Set(ctx, RD_KEY_CONFIGURATION+cfg.MerchantID, b, ttl).Err(); err != nil {
		slog.Error("[RP:Configuration:Save:02] - Failed to save configuration to Redis", "merchant_id", cfg.MerchantID, "error", err)
		return err
	}
	return nil
}

// Lock reports whether this instance acquired the refresh lock. The returned
// token identifies this acquisition and must be passed to Unlock.
func (r *configurationRedisRepository) Lock(ctx context.Context) (string, bool, error) {
	token := uuid.NewString()
	ok, err := r.db.SetNX(ctx, RD_KEY_CONFIGURATION_LOCK, token, CONFIGURATION_LOCK_TTL).Result()
	if err != nil || !ok {
		return "", false, err
	}
	return token, true, nil
}

// Unlock releases the lock if token still owns it. It returns ErrLockNotHeld
// when the lock expired or was taken over by another instance.
func (r *configurationRedisRepository) Unlock(ctx context.Context, token string) error {
	deleted, err := unlockScript.Run(ctx, r.db, []string{RD_KEY_CONFIGURATION_LOCK}, token).Int()
	if err != nil {
		slog.Error("[RP:Configuration:Unlock:01] - Failed to release refresh lock", "error", err)
		return err
	}
	if deleted == 0 {
		slog.Warn("[RP:Configuration:Unlock:02] - Refresh lock no longer owned")
		return ErrLockNotHeld
	}
	return nil
}

func (r *configurationRedisRepository) ResetState(ctx context.Context) error {
	slog.Info("[RP:Configuration:ResetState] - Resetting cached configuration in Redis")
	iter := r.db.Scan(ctx, 0, RD_KEY_CONFIGURATION+"*", 0).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		if err := r.db.Del(ctx, key).Err(); err != nil {
			slog.Error("[RP:Configuration:ResetState:01] - Failed to delete key from Redis", "key", key, "error", err)
			return err
		}
		slog.Info("[RP:Configuration:ResetState:02] - Deleted key from Redis", "key", key)
	}
	if err := iter.Err(); err != nil {
		slog.Error("[RP:Configuration:ResetState:03] - Error during Redis SCAN", "error", err)
		return err
	}
	return nil
}
