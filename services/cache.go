package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"scout-platform/metrics"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Redis key TTLs.
const (
	SessionCacheTTL   = 10 * time.Minute
	ProfileCacheTTL   = 5 * time.Minute
	UploadProgressTTL = 30 * time.Minute
)

// CacheService is a Redis cache-aside layer for sessions and profiles, plus
// short-lived counters (sign-in failures) and upload progress. With a nil
// client every operation is a no-op and lookups miss.
type CacheService struct {
	rdb *redis.Client
}

// NewCacheService connects to redisURL. An empty URL or a failed ping
// disables caching instead of failing startup.
func NewCacheService(redisURL string) *CacheService {
	if redisURL == "" {
		log.Info().Msg("redis: no URL configured, caching disabled")
		return &CacheService{}
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		log.Warn().Err(err).Msg("redis: invalid URL, caching disabled")
		return &CacheService{}
	}

	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Warn().Err(err).Msg("redis: connection failed, caching disabled")
		return &CacheService{}
	}

	log.Info().Msg("✅ redis: connected, caching enabled")
	return &CacheService{rdb: rdb}
}

// NewCacheServiceWithClient wraps an existing client (tests, shared pools).
func NewCacheServiceWithClient(rdb *redis.Client) *CacheService {
	return &CacheService{rdb: rdb}
}

// Enabled reports whether a Redis client is configured.
func (c *CacheService) Enabled() bool {
	return c != nil && c.rdb != nil
}

// Ping is used by the health endpoint.
func (c *CacheService) Ping(ctx context.Context) error {
	if !c.Enabled() {
		return nil
	}
	return c.rdb.Ping(ctx).Err()
}

// GetSessionUser returns the user id cached for a token hash ("" on miss).
func (c *CacheService) GetSessionUser(ctx context.Context, tokenHash string) string {
	if !c.Enabled() {
		return ""
	}
	id, err := c.rdb.Get(ctx, sessionKey(tokenHash)).Result()
	if err != nil {
		metrics.CacheLookups.WithLabelValues("session", "miss").Inc()
		return ""
	}
	metrics.CacheLookups.WithLabelValues("session", "hit").Inc()
	return id
}

func (c *CacheService) SetSessionUser(ctx context.Context, tokenHash, userID string, ttl time.Duration) {
	if !c.Enabled() {
		return
	}
	if ttl <= 0 || ttl > SessionCacheTTL {
		ttl = SessionCacheTTL
	}
	if err := c.rdb.Set(ctx, sessionKey(tokenHash), userID, ttl).Err(); err != nil {
		log.Warn().Err(err).Msg("redis: failed to cache session")
	}
}

func (c *CacheService) DeleteSession(ctx context.Context, tokenHashes ...string) {
	if !c.Enabled() || len(tokenHashes) == 0 {
		return
	}
	keys := make([]string, len(tokenHashes))
	for i, h := range tokenHashes {
		keys[i] = sessionKey(h)
	}
	_ = c.rdb.Del(ctx, keys...).Err()
}

// GetJSON loads a cached value into dst; false on miss or when disabled.
func (c *CacheService) GetJSON(ctx context.Context, cache, key string, dst interface{}) bool {
	if !c.Enabled() {
		return false
	}
	data, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		metrics.CacheLookups.WithLabelValues(cache, "miss").Inc()
		return false
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return false
	}
	metrics.CacheLookups.WithLabelValues(cache, "hit").Inc()
	return true
}

func (c *CacheService) SetJSON(ctx context.Context, key string, v interface{}, ttl time.Duration) {
	if !c.Enabled() {
		return
	}
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, key, b, ttl).Err(); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("redis: set failed")
	}
}

func (c *CacheService) Delete(ctx context.Context, keys ...string) {
	if !c.Enabled() || len(keys) == 0 {
		return
	}
	_ = c.rdb.Del(ctx, keys...).Err()
}

// IncrWindow increments a counter that expires window after its first hit.
// Disabled caches always report 0.
func (c *CacheService) IncrWindow(ctx context.Context, key string, window time.Duration) int64 {
	if !c.Enabled() {
		return 0
	}
	n, err := c.rdb.Incr(ctx, key).Result()
	if err != nil {
		return 0
	}
	if n == 1 {
		_ = c.rdb.Expire(ctx, key, window).Err()
	}
	return n
}

// Counter reads a counter set by IncrWindow.
func (c *CacheService) Counter(ctx context.Context, key string) int64 {
	if !c.Enabled() {
		return 0
	}
	n, err := c.rdb.Get(ctx, key).Int64()
	if err != nil {
		return 0
	}
	return n
}

// SetUploadProgress stores the percent of an in-flight upload.
func (c *CacheService) SetUploadProgress(ctx context.Context, uploadID string, percent int) {
	if !c.Enabled() {
		return
	}
	_ = c.rdb.Set(ctx, uploadKey(uploadID), percent, UploadProgressTTL).Err()
}

// UploadProgress returns the stored percent, or false when unknown.
func (c *CacheService) UploadProgress(ctx context.Context, uploadID string) (int, bool) {
	if !c.Enabled() {
		return 0, false
	}
	v, err := c.rdb.Get(ctx, uploadKey(uploadID)).Result()
	if err != nil {
		return 0, false
	}
	pct, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return pct, true
}

// Close shuts down the Redis connection.
func (c *CacheService) Close() error {
	if !c.Enabled() {
		return nil
	}
	return c.rdb.Close()
}

func sessionKey(tokenHash string) string {
	return fmt.Sprintf("session:%s", tokenHash)
}

func profileKey(userID string) string {
	return fmt.Sprintf("profile:%s", userID)
}

func signInFailKey(email string) string {
	return fmt.Sprintf("signin:fail:%s", email)
}

func uploadKey(uploadID string) string {
	return fmt.Sprintf("upload:progress:%s", uploadID)
}
