package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultCountTTL bounds how stale a cached count can get if an
// invalidation is lost.
const DefaultCountTTL = 60 * time.Second

// generationTTL only has to outlive the slowest count read.
const generationTTL = 24 * time.Hour

// setIfGeneration stores ARGV[1] under KEYS[1] for ARGV[3] ms when the
// generation at KEYS[2] (absent counts as 0) still equals ARGV[2].
var setIfGeneration = redis.NewScript(`
local current = redis.call("GET", KEYS[2]) or "0"
if current ~= ARGV[2] then
	return 0
end
redis.call("SET", KEYS[1], ARGV[1], "PX", ARGV[3])
return 1
`)

// VoteCountCache caches per-idea vote counts.
// Key format: votes:count:<idea_id>, generation under votes:gen:<idea_id>.
type VoteCountCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewVoteCountCache wraps client. A non-positive ttl selects DefaultCountTTL.
func NewVoteCountCache(client *redis.Client, ttl time.Duration) *VoteCountCache {
	if ttl <= 0 {
		ttl = DefaultCountTTL
	}
	return &VoteCountCache{client: client, ttl: ttl}
}

func (c *VoteCountCache) Get(ctx context.Context, ideaID int64) (int64, bool, error) {
	n, err := c.client.Get(ctx, countKey(ideaID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("vote count get: %w", err)
	}
	return n, true, nil
}

func (c *VoteCountCache) Generation(ctx context.Context, ideaID int64) (int64, error) {
	gen, err := c.client.Get(ctx, generationKey(ideaID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("vote count generation: %w", err)
	}
	return gen, nil
}

// Set stores count only if no Invalidate ran since generation was read.
func (c *VoteCountCache) Set(ctx context.Context, ideaID int64, count int64, generation int64) (bool, error) {
	stored, err := setIfGeneration.Run(ctx, c.client,
		[]string{countKey(ideaID), generationKey(ideaID)},
		count, generation, c.ttl.Milliseconds(),
	).Int()
	if err != nil {
		return false, fmt.Errorf("vote count set: %w", err)
	}
	return stored == 1, nil
}

// Invalidate bumps the generation and drops the cached count atomically.
func (c *VoteCountCache) Invalidate(ctx context.Context, ideaID int64) error {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, generationKey(ideaID))
		pipe.Expire(ctx, generationKey(ideaID), generationTTL)
		pipe.Del(ctx, countKey(ideaID))
		return nil
	})
	if err != nil {
		return fmt.Errorf("vote count invalidate: %w", err)
	}
	return nil
}

// Ping is used by the readiness check.
func (c *VoteCountCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func countKey(ideaID int64) string {
	return fmt.Sprintf("votes:count:%d", ideaID)
}

func generationKey(ideaID int64) string {
	return fmt.Sprintf("votes:gen:%d", ideaID)
}
