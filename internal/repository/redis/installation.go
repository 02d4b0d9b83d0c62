package redis

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const RD_KEY_INSTALLATION = "installation:"

type installationRedisRepository struct {
	db *redis.Client
}

func NewInstallationRepository(db *redis.Client) *installationRedisRepository {
	return &installationRedisRepository{db: db}
}

// InstallationGUID returns the GUID stored for installationID, creating one on
// first use. Concurrent first calls all observe the same value.
func (r *installationRedisRepository) InstallationGUID(ctx context.Context, installationID string) (string, error) {
	key := RD_KEY_INSTALLATION + installationID
	guid := uuid.NewString()

	created, err := r.db.SetNX(ctx, key, guid, 0).Result()
	if err != nil {
		slog.Error("[RP:Installation:GUID:01] - Failed to store installation GUID", "installation_id", installationID, "error", err)
		return "", err
	}
	if created {
		slog.Info("[RP:Installation:GUID:02] - Created installation GUID", "installation_id", installationID)
		return guid, nil
	}

	stored, err := r.db.Get(ctx, key).Result()
	if err != nil {
		slog.Error("[RP:Installation:GUID:03] - Failed to read installation GUID", "installation_id", installationID, "error", err)
		return "", err
	}
	return stored, nil
}
