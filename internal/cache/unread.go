// Package cache keeps hot counters in Redis so the mobile client's
// badge polling stays off the database.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const unreadTTL = 24 * time.Hour

// UnreadCounter is a cache-aside counter of unread notifications per
// account. A missing key is a cache miss, not zero; callers fall back
// to the database and Set the result.
type UnreadCounter struct {
	rdb *redis.Client
}

func NewUnreadCounter(rdb *redis.Client) *UnreadCounter {
	return &UnreadCounter{rdb: rdb}
}

func key(accountID uint) string {
	return fmt.Sprintf("notifications:unread:%d", accountID)
}

// Incr bumps the counter if it is already cached. An uncached counter
// stays uncached so that the next read repopulates it from the source
// of truth.
func (c *UnreadCounter) Incr(ctx context.Context, accountID uint) error {
	k := key(accountID)
	exists, err := c.rdb.Exists(ctx, k).Result()
	if err != nil {
		return err
	}
	if exists == 0 {
		return nil
	}
	return c.rdb.Incr(ctx, k).Err()
}

// Get returns the cached count and whether it was present.
func (c *UnreadCounter) Get(ctx context.Context, accountID uint) (int64, bool, error) {
	n, err := c.rdb.Get(ctx, key(accountID)).Int64()
	if err == redis.Nil {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return n, true, nil
}

// Set stores a freshly computed count.
func (c *UnreadCounter) Set(ctx context.Context, accountID uint, n int64) error {
	return c.rdb.Set(ctx, key(accountID), n, unreadTTL).Err()
}

// Reset zeroes the counter, e.g. after marking everything read.
func (c *UnreadCounter) Reset(ctx context.Context, accountID uint) error {
	return c.rdb.Set(ctx, key(accountID), 0, unreadTTL).Err()
}
