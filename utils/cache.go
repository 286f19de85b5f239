// File: utils/cache.go
package utils

import (
	"context"
	"log"
	"time"

	"github.com/go-redis/redis/v8"

	"roamly/config"
)

// CatalogCacheClient is the Redis client used for read-through caching of
// catalog service lookups.
var CatalogCacheClient *redis.Client

// InitCatalogCache initializes the Redis client for catalog caching.
func InitCatalogCache() {
	CatalogCacheClient = redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisCatalogDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := CatalogCacheClient.Ping(ctx).Result(); err != nil {
		log.Fatalf("Failed to connect to Redis (Catalog Cache): %v", err)
	}
}

// GetCatalogCacheClient returns the catalog cache client.
func GetCatalogCacheClient() *redis.Client {
	if CatalogCacheClient == nil {
		InitCatalogCache()
	}
	return CatalogCacheClient
}
