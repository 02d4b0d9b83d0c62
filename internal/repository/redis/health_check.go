package redis

import (
	"context"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

type healthCheckRedisRepository struct {
	db *redis.Client
}

func NewHealthCheckRepository(db *redis.Client) *healthCheckRedisRepository {
	return &healthCheckRedisRepository{db: db}
}

func (r *healthCheckRedisRepository) HealthCheck(ctx context.Context) error {
	if err := r.db.Ping(ctx).Err(); err != nil {
		slog.Error("[RP:HealthCheck:HealthCheck] - Redis health check failed", "error", err)
		return err
	}
	slog.Debug("[RP:HealthCheck:HealthCheck] - Redis health check successful")
	return nil
}
