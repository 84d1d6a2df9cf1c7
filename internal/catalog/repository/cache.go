package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"fleet_console_backend/platform/logger"
)

const cacheKeyPrefix = "catalog:v1:"

// CachedRepository is a read-through Redis cache in front of a Repository.
// Concurrent misses for the same key share one backend load. Redis
// failures degrade to direct reads.
type CachedRepository struct {
	next  Repository
	redis *redis.Client
	ttl   time.Duration
	group singleflight.Group
	log   *logger.Logger
}

// NewCached wraps next with a Redis cache.
func NewCached(next Repository, client *redis.Client, ttl time.Duration, log *logger.Logger) *CachedRepository {
	return &CachedRepository{next: next, redis: client, ttl: ttl, log: log}
}

var _ Repository = (*CachedRepository)(nil)

func (c *CachedRepository) ListVehicles(ctx context.Context) ([]Vehicle, error) {
	return readThrough(ctx, c, "vehicles", c.next.ListVehicles)
}

func (c *CachedRepository) GetVehicleByID(ctx context.Context, id uuid.UUID) (Vehicle, error) {
	return readThrough(ctx, c, "vehicle:"+id.String(), func(ctx context.Context) (Vehicle, error) {
		return c.next.GetVehicleByID(ctx, id)
	})
}

func (c *CachedRepository) ListOfferings(ctx context.Context) ([]Offering, error) {
	return readThrough(ctx, c, "offerings", c.next.ListOfferings)
}

func (c *CachedRepository) ListMandatoryOfferingIDs(ctx context.Context) ([]uuid.UUID, error) {
	return readThrough(ctx, c, "offerings:mandatory", c.next.ListMandatoryOfferingIDs)
}

func (c *CachedRepository) ListPackages(ctx context.Context) ([]Package, error) {
	return readThrough(ctx, c, "packages", c.next.ListPackages)
}

func (c *CachedRepository) GetPackageByID(ctx context.Context, id uuid.UUID) (Package, error) {
	return readThrough(ctx, c, "package:"+id.String(), func(ctx context.Context) (Package, error) {
		return c.next.GetPackageByID(ctx, id)
	})
}

func (c *CachedRepository) ListPackageRates(ctx context.Context) ([]PackageRate, error) {
	return readThrough(ctx, c, "package-rates", c.next.ListPackageRates)
}

func (c *CachedRepository) GetDiscountByID(ctx context.Context, id uuid.UUID) (Discount, error) {
	return readThrough(ctx, c, "discount:"+id.String(), func(ctx context.Context) (Discount, error) {
		return c.next.GetDiscountByID(ctx, id)
	})
}

func (c *CachedRepository) GetDiscountByCode(ctx context.Context, code string) (Discount, error) {
	key := "discount:code:" + strings.ToUpper(strings.TrimSpace(code))
	return readThrough(ctx, c, key, func(ctx context.Context) (Discount, error) {
		return c.next.GetDiscountByCode(ctx, code)
	})
}

// Invalidate drops every cached catalog entry.
func (c *CachedRepository) Invalidate(ctx context.Context) error {
	iter := c.redis.Scan(ctx, 0, cacheKeyPrefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("scan catalog cache: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	return c.redis.Del(ctx, keys...).Err()
}

func readThrough[T any](ctx context.Context, c *CachedRepository, key string, load func(context.Context) (T, error)) (T, error) {
	fullKey := cacheKeyPrefix + key

	raw, err := c.redis.Get(ctx, fullKey).Bytes()
	if err == nil {
		var cached T
		if jsonErr := json.Unmarshal(raw, &cached); jsonErr == nil {
			return cached, nil
		}
		c.log.Warn("catalog cache entry corrupt, reloading", "key", fullKey)
	} else if !errors.Is(err, redis.Nil) {
		c.log.Warn("catalog cache read failed", "key", fullKey, "error", err)
	}

	v, err, _ := c.group.Do(fullKey, func() (interface{}, error) {
		value, err := load(ctx)
		if err != nil {
			return nil, err
		}
		if payload, err := json.Marshal(value); err == nil {
			if err := c.redis.Set(ctx, fullKey, payload, c.ttl).Err(); err != nil {
				c.log.Warn("catalog cache write failed", "key", fullKey, "error", err)
			}
		}
		return value, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}
