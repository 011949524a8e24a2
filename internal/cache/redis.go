// internal/cache/redis.go
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/twilightcoders/cardgames/internal/models"
)

// DefaultKeyPrefix namespaces cached game types by shortId.
const DefaultKeyPrefix = "cardgames:gametype:short:"

// DefaultGenerationPrefix namespaces the per-shortId invalidation counters.
const DefaultGenerationPrefix = "cardgames:gametype:gen:"

// ShortIDCache keeps game types keyed by shortId in Redis with a fixed TTL.
type ShortIDCache struct {
	rdb       *redis.Client
	ttl       time.Duration
	prefix    string
	genPrefix string
}

// Connect creates a Redis client for addr/db and pings it.
func Connect(ctx context.Context, addr string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}
	return rdb, nil
}

// NewShortIDCache wraps rdb. A non-positive ttl keeps entries until invalidated.
func NewShortIDCache(rdb *redis.Client, ttl time.Duration) *ShortIDCache {
	return &ShortIDCache{rdb: rdb, ttl: ttl, prefix: DefaultKeyPrefix, genPrefix: DefaultGenerationPrefix}
}

func (c *ShortIDCache) key(shortID string) string {
	return c.prefix + shortID
}

func (c *ShortIDCache) generationKey(shortID string) string {
	return c.genPrefix + shortID
}

// generationTTL bounds how long an untouched generation counter lives. It only has to outlast a
// single read-through fill.
const generationTTL = 24 * time.Hour

// setIfGeneration stores ARGV[2] at KEYS[2] (with a PX ttl when ARGV[3] > 0) only while the
// counter at KEYS[1] still equals ARGV[1]; a missing counter is generation 0.
var setIfGeneration = redis.NewScript(`
local current = redis.call('GET', KEYS[1]) or '0'
if current ~= ARGV[1] then
	return 0
end
if tonumber(ARGV[3]) > 0 then
	redis.call('SET', KEYS[2], ARGV[2], 'PX', ARGV[3])
else
	redis.call('SET', KEYS[2], ARGV[2])
end
return 1
`)

// Get returns the cached game type, or nil when shortID is not cached, together with the
// current generation of shortID.
func (c *ShortIDCache) Get(ctx context.Context, shortID string) (*models.GameConfiguration, int64, error) {
	pipe := c.rdb.TxPipeline()
	entry := pipe.Get(ctx, c.key(shortID))
	gen := pipe.Get(ctx, c.generationKey(shortID))
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return nil, 0, fmt.Errorf("redis GET %s: %w", shortID, err)
	}

	generation, err := gen.Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, 0, fmt.Errorf("parse cache generation of %s: %w", shortID, err)
	}

	data, err := entry.Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, generation, nil
	}
	if err != nil {
		return nil, 0, fmt.Errorf("redis GET %s: %w", shortID, err)
	}

	var g models.GameConfiguration
	if err := json.Unmarshal(data, &g); err != nil {
		return nil, 0, fmt.Errorf("failed to unmarshal cached game type: %w", err)
	}
	return &g, generation, nil
}

// Set caches g unless shortID was invalidated after generation was read.
func (c *ShortIDCache) Set(ctx context.Context, g *models.GameConfiguration, generation int64) (bool, error) {
	data, err := json.Marshal(g)
	if err != nil {
		return false, fmt.Errorf("failed to marshal game type: %w", err)
	}
	ttl := c.ttl
	if ttl < 0 {
		ttl = 0
	}

	keys := []string{c.generationKey(g.ShortID), c.key(g.ShortID)}
	stored, err := setIfGeneration.Run(ctx, c.rdb, keys, generation, data, ttl.Milliseconds()).Int()
	if err != nil {
		return false, fmt.Errorf("redis SET %s: %w", g.ShortID, err)
	}
	return stored == 1, nil
}

// Invalidate drops the cached entry and advances the generation so in-flight fills are discarded.
func (c *ShortIDCache) Invalidate(ctx context.Context, shortID string) error {
	_, err := c.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, c.key(shortID))
		pipe.Incr(ctx, c.generationKey(shortID))
		pipe.Expire(ctx, c.generationKey(shortID), generationTTL)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis invalidate %s: %w", shortID, err)
	}
	return nil
}
