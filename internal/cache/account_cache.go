package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/ledgerkit/banking-ledger/internal/models"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "banking:account:"

// AccountCache is a disposable JSON projection of account rows. It is never
// the source of truth: the write path deletes entries instead of updating
// them, and reads repopulate lazily with a TTL. Cache errors are logged and
// swallowed — a broken cache degrades to store reads.
type AccountCache struct {
	client *redis.Client
	ttl    time.Duration
	log    *slog.Logger
}

func NewAccountCache(client *redis.Client, ttl time.Duration, log *slog.Logger) *AccountCache {
	return &AccountCache{client: client, ttl: ttl, log: log}
}

func key(id string) string { return keyPrefix + id }

// Get returns (nil, false) on miss, deserialization failure, or any redis
// error.
func (c *AccountCache) Get(ctx context.Context, id string) (*models.Account, bool) {
	data, err := c.client.Get(ctx, key(id)).Result()
	if err != nil {
		if err != redis.Nil {
			c.log.Warn("cache get failed", "id", id, "err", err)
		}
		return nil, false
	}
	var a models.Account
	if err := json.Unmarshal([]byte(data), &a); err != nil {
		return nil, false
	}
	return &a, true
}

func (c *AccountCache) Set(ctx context.Context, a models.Account) {
	data, err := json.Marshal(a)
	if err != nil {
		c.log.Warn("cache marshal failed", "id", a.ID, "err", err)
		return
	}
	if err := c.client.Set(ctx, key(a.ID), data, c.ttl).Err(); err != nil {
		c.log.Warn("cache set failed", "id", a.ID, "err", err)
	}
}

func (c *AccountCache) Delete(ctx context.Context, id string) {
	if err := c.client.Del(ctx, key(id)).Err(); err != nil {
		c.log.Warn("cache delete failed", "id", id, "err", err)
	}
}
