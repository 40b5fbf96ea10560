package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
	"triptracks-service/internal/platform/obs"
	"triptracks-service/internal/ports"

	"github.com/redis/go-redis/v9"
)

const redisRouteKeyPrefix = "triptracks:route:"

type redisRoute struct {
	DistanceKm      float64 `json:"distance_km"`
	DurationMinutes float64 `json:"duration_minutes"`
}

// RedisRouteCache stores provider route results in Redis with an expiry.
// It is an alternative to SQLRouteCache for deployments without Postgres.
type RedisRouteCache struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewRedisRouteCache(client *redis.Client, ttl time.Duration) *RedisRouteCache {
	return &RedisRouteCache{Client: client, TTL: ttl}
}

func (r *RedisRouteCache) GetRoute(ctx context.Context, key string) (_ ports.RouteResult, _ bool, err error) {
	defer obs.Time(ctx, "route.redis.GetRoute")(&err)

	if r.Client == nil {
		return ports.RouteResult{}, false, errors.New("redis route cache: client is nil")
	}

	key = strings.TrimSpace(key)
	if key == "" {
		return ports.RouteResult{}, false, errors.New("get redis route cache: key must not be empty")
	}

	raw, err := r.Client.Get(ctx, redisRouteKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ports.RouteResult{}, false, nil
	}
	if err != nil {
		return ports.RouteResult{}, false, fmt.Errorf("get redis route cache key=%q: %w", key, err)
	}

	var rr redisRoute
	if err := json.Unmarshal(raw, &rr); err != nil {
		return ports.RouteResult{}, false, fmt.Errorf("get redis route cache: decode key=%q: %w", key, err)
	}

	return ports.RouteResult{DistanceKm: rr.DistanceKm, DurationMinutes: rr.DurationMinutes}, true, nil
}

func (r *RedisRouteCache) PutRoute(ctx context.Context, key string, res ports.RouteResult) (err error) {
	defer obs.Time(ctx, "route.redis.PutRoute")(&err)

	if r.Client == nil {
		return errors.New("redis route cache: client is nil")
	}

	key = strings.TrimSpace(key)
	if key == "" {
		return errors.New("insert redis route cache: key must not be empty")
	}

	raw, err := json.Marshal(redisRoute{DistanceKm: res.DistanceKm, DurationMinutes: res.DurationMinutes})
	if err != nil {
		return fmt.Errorf("insert redis route cache: encode: %w", err)
	}

	// A zero TTL keeps the key until it is overwritten.
	if err := r.Client.Set(ctx, redisRouteKeyPrefix+key, raw, r.TTL).Err(); err != nil {
		return fmt.Errorf("insert redis route cache key=%q: %w", key, err)
	}

	return nil
}
