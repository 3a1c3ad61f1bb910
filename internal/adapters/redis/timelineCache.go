package redis

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
)

const timelineKeyPrefix = "timeline:"

// TimelineCacheRedis stores each viewer's visible post ids in a ZSET.
// Scores encode the position in the list, so ZREVRANGE returns the feed order.
type TimelineCacheRedis struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewTimelineCacheRedis(client *redis.Client, ttl time.Duration) *TimelineCacheRedis {
	return &TimelineCacheRedis{
		Client: client,
		TTL:    ttl,
	}
}

func (c *TimelineCacheRedis) Get(ctx context.Context, viewerID string) ([]string, bool, error) {
	ids, err := c.Client.ZRevRange(ctx, timelineKey(viewerID), 0, -1).Result()
	if err != nil {
		return nil, false, err
	}
	if len(ids) == 0 {
		return nil, false, nil
	}
	return ids, true, nil
}

// Set replaces the cached timeline atomically.
func (c *TimelineCacheRedis) Set(ctx context.Context, viewerID string, postIDs []string) error {
	key := timelineKey(viewerID)
	_, err := c.Client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		if len(postIDs) == 0 {
			return nil
		}
		pipe.ZAdd(ctx, key, members(postIDs)...)
		pipe.Expire(ctx, key, c.TTL)
		return nil
	})
	return err
}

func (c *TimelineCacheRedis) Invalidate(ctx context.Context, viewerIDs ...string) error {
	if len(viewerIDs) == 0 {
		return nil
	}
	keys := make([]string, 0, len(viewerIDs))
	for _, id := range viewerIDs {
		keys = append(keys, timelineKey(id))
	}
	return c.Client.Del(ctx, keys...).Err()
}

func timelineKey(viewerID string) string {
	return timelineKeyPrefix + viewerID
}

// members scores the first id highest.
func members(postIDs []string) []*redis.Z {
	zs := make([]*redis.Z, 0, len(postIDs))
	n := len(postIDs)
	for i, id := range postIDs {
		zs = append(zs, &redis.Z{
			Score:  float64(n - i),
			Member: id,
		})
	}
	return zs
}
