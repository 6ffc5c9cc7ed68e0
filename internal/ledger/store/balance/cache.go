package balance

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/trackback-blockchain/plug-blockchain/internal/ledger/models"
	"github.com/trackback-blockchain/plug-blockchain/internal/ledger/ports"
	"github.com/trackback-blockchain/plug-blockchain/pkg/domain"
)

const (
	balanceKeyPrefix = "ledger:bal:"

	defaultCacheTTL = 30 * time.Second
)

// Cache is a read-through Redis decorator over a balance store. Reads are
// served from Redis when present; writes go to the inner store and then
// invalidate the cached record. Redis failures never fail the operation,
// the call falls through to the inner store.
type Cache struct {
	inner  ports.BalanceStore
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// CacheOption configures a Cache instance.
type CacheOption func(*Cache)

// WithCacheTTL overrides the default record TTL.
func WithCacheTTL(ttl time.Duration) CacheOption {
	return func(c *Cache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithCacheLogger sets the logger used for cache faults.
func WithCacheLogger(logger *slog.Logger) CacheOption {
	return func(c *Cache) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewCache wraps inner with a Redis read-through cache.
func NewCache(inner ports.BalanceStore, client *redis.Client, opts ...CacheOption) *Cache {
	c := &Cache{
		inner:  inner,
		client: client,
		ttl:    defaultCacheTTL,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

func balanceKey(asset domain.AssetID, account domain.AccountID) string {
	return fmt.Sprintf("%s%d:%d", balanceKeyPrefix, asset, account)
}

// Get serves from Redis when the record is cached, otherwise reads the
// inner store and populates the cache.
func (c *Cache) Get(ctx context.Context, asset domain.AssetID, account domain.AccountID) (models.BalanceRecord, error) {
	key := balanceKey(asset, account)

	raw, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		var rec models.BalanceRecord
		if err := json.Unmarshal(raw, &rec); err == nil {
			return rec, nil
		}
		// Unreadable entry: drop it and fall through.
		c.client.Del(ctx, key)
	} else if !errors.Is(err, redis.Nil) {
		c.logger.WarnContext(ctx, "balance cache read failed",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
	}

	rec, err := c.inner.Get(ctx, asset, account)
	if err != nil {
		return models.BalanceRecord{}, err
	}

	if raw, err := json.Marshal(rec); err == nil {
		if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
			c.logger.WarnContext(ctx, "balance cache write failed",
				slog.String("key", key),
				slog.String("error", err.Error()),
			)
		}
	}
	return rec, nil
}

// SetFree writes through to the inner store and invalidates the cache entry.
func (c *Cache) SetFree(ctx context.Context, asset domain.AssetID, account domain.AccountID, amount domain.Balance) error {
	if err := c.inner.SetFree(ctx, asset, account, amount); err != nil {
		return err
	}
	c.invalidate(ctx, asset, account)
	return nil
}

// SetReserved writes through to the inner store and invalidates the cache entry.
func (c *Cache) SetReserved(ctx context.Context, asset domain.AssetID, account domain.AccountID, amount domain.Balance) error {
	if err := c.inner.SetReserved(ctx, asset, account, amount); err != nil {
		return err
	}
	c.invalidate(ctx, asset, account)
	return nil
}

func (c *Cache) invalidate(ctx context.Context, asset domain.AssetID, account domain.AccountID) {
	key := balanceKey(asset, account)
	if err := c.client.Del(ctx, key).Err(); err != nil {
		c.logger.WarnContext(ctx, "balance cache invalidation failed",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
	}
}
