package redis_client

import (
	"context"
	"encoding/json"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var (
	Client *redis.Client
)

func init() {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		zap.L().Warn("REDIS_ADDR not set, statement cache disabled")
		return
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		zap.L().Error("Redis connection failed", zap.String("addr", addr), zap.Error(err))
		return
	}

	Client = client
	zap.L().Info("Connected to Redis", zap.String("addr", addr))
}

// GetJSON loads a cached value into dest. Returns false on miss, decode
// failure, or when the cache is disabled.
func GetJSON(ctx context.Context, key string, dest interface{}) bool {
	if Client == nil {
		return false
	}
	val, err := Client.Get(ctx, key).Result()
	if err != nil {
		if err != redis.Nil {
			zap.L().Error("Redis GET failed", zap.String("key", key), zap.Error(err))
		}
		return false
	}
	if err := json.Unmarshal([]byte(val), dest); err != nil {
		zap.L().Error("Failed to unmarshal cached value", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

// SetJSON stores a value with a TTL. Best effort: cache failures are logged
// and swallowed.
func SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	if Client == nil {
		return
	}
	jsonBytes, err := json.Marshal(value)
	if err != nil {
		zap.L().Error("Failed to marshal value for cache", zap.String("key", key), zap.Error(err))
		return
	}
	if err := Client.Set(ctx, key, jsonBytes, ttl).Err(); err != nil {
		zap.L().Error("Redis SET failed", zap.String("key", key), zap.Error(err))
	}
}
