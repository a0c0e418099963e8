// File: utils/cache.go
package utils

import (
	"context"
	"log"
	"mountify/config"
	"time"

	"github.com/go-redis/redis/v8"
)

// SessionCacheClient is the Redis client holding configurator sessions.
var SessionCacheClient *redis.Client

// InitRedis initializes the Redis session client (using DB from AppConfig).
func InitRedis() {
	SessionCacheClient = redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisSessionDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := SessionCacheClient.Ping(ctx).Result(); err != nil {
		log.Fatalf("Failed to connect to Redis (Sessions): %v", err)
	}
}

// GetSessionCacheClient returns the Redis client for configurator sessions.
func GetSessionCacheClient() *redis.Client {
	if SessionCacheClient == nil {
		InitRedis()
	}
	return SessionCacheClient
}
