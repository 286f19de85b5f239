package catalogRepo

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"roamly/models"
	"roamly/utils"
)

// CachedServiceRepo wraps a ServiceRepository with a Redis read-through
// cache. Catalog entries are read-mostly; stale reads are bounded by the TTL.
type CachedServiceRepo struct {
	next        ServiceRepository
	cacheClient *redis.Client
	ttl         time.Duration
}

// NewCachedServiceRepo decorates next with Redis caching.
func NewCachedServiceRepo(next ServiceRepository, cacheClient *redis.Client, ttl time.Duration) *CachedServiceRepo {
	return &CachedServiceRepo{next: next, cacheClient: cacheClient, ttl: ttl}
}

func cacheKey(id string) string {
	return "catalog:service:" + id
}

func (repo *CachedServiceRepo) GetService(ctx context.Context, id string) (*models.Service, error) {
	logger := utils.GetLogger()

	data, err := repo.cacheClient.Get(ctx, cacheKey(id)).Result()
	if err == nil {
		var svc models.Service
		if jsonErr := json.Unmarshal([]byte(data), &svc); jsonErr == nil {
			return &svc, nil
		}
		// Corrupt cache entry; fall through to the source of truth.
		logger.Warn("discarding unreadable catalog cache entry", zap.String("serviceId", id))
	} else if !errors.Is(err, redis.Nil) {
		logger.Warn("catalog cache read failed", zap.String("serviceId", id), zap.Error(err))
	}

	svc, err := repo.next.GetService(ctx, id)
	if err != nil {
		return nil, err
	}

	if payload, jsonErr := json.Marshal(svc); jsonErr == nil {
		if setErr := repo.cacheClient.Set(ctx, cacheKey(id), payload, repo.ttl).Err(); setErr != nil {
			logger.Warn("catalog cache write failed", zap.String("serviceId", id), zap.Error(setErr))
		}
	}
	return svc, nil
}
