package crud

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// feedKey is the redis key under which the serialized public feed is cached.
const feedKey = "chirper:feed"

// feedTTL bounds staleness when an invalidation is lost.
const feedTTL = 30 * time.Second

// CacheService caches the serialized public feed in redis. It is optional:
// a CacheService built without a client treats every lookup as a miss and
// every write as a no-op, so callers never branch on whether redis is around.
type CacheService struct {
	rdb *redis.Client
}

// NewCacheService returns an instance of CacheService. rdb may be nil.
func NewCacheService(rdb *redis.Client) *CacheService {
	return &CacheService{
		rdb: rdb,
	}
}

// GetFeed returns the cached feed response body, if present.
func (c *CacheService) GetFeed(ctx context.Context) ([]byte, bool) {
	if c == nil || c.rdb == nil {
		return nil, false
	}
	data, err := c.rdb.Get(ctx, feedKey).Bytes()
	if err != nil {
		return nil, false
	}
	return data, true
}

// SetFeed stores a serialized feed response body. Cache errors are swallowed:
// a failed write only costs the next request a database read.
func (c *CacheService) SetFeed(ctx context.Context, data []byte) {
	if c == nil || c.rdb == nil {
		return
	}
	c.rdb.Set(ctx, feedKey, data, feedTTL)
}

// InvalidateFeed drops the cached feed. Called after every tweet or like
// mutation so readers never see a deleted tweet or a stale like count past
// the TTL.
func (c *CacheService) InvalidateFeed(ctx context.Context) {
	if c == nil || c.rdb == nil {
		return
	}
	c.rdb.Del(ctx, feedKey)
}
