package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/prasadthilina9090-coder/cybergear-hub-a5dec790/models"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	ProductCachePrefix     = "product:detail:"
	ProductListCachePrefix = "products:v:"
	CacheVersionKey        = "products:version"

	DefaultProductCacheTTL = 10 * time.Minute
)

// ProductSource is the catalog behind the cache.
type ProductSource interface {
	GetByID(ctx context.Context, id string) (*models.Product, error)
	List(ctx context.Context, filter models.ProductFilter) ([]models.Product, error)
}

// CachedProductLookup is a Redis read-through cache in front of a catalog.
// List keys carry a version so Invalidate drops every cached listing at once.
// Cache failures are logged and fall through to the source.
type CachedProductLookup struct {
	source ProductSource
	redis  *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewCachedProductLookup(source ProductSource, client *redis.Client, ttl time.Duration, logger *zap.Logger) *CachedProductLookup {
	if ttl <= 0 {
		ttl = DefaultProductCacheTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedProductLookup{source: source, redis: client, ttl: ttl, logger: logger}
}

func (c *CachedProductLookup) GetByID(ctx context.Context, id string) (*models.Product, error) {
	key := ProductCachePrefix + id
	if data, err := c.redis.Get(ctx, key).Bytes(); err == nil {
		var p models.Product
		if err := json.Unmarshal(data, &p); err == nil {
			return &p, nil
		}
		c.logger.Warn("Failed to unmarshal cached product", zap.String("product_id", id))
	} else if !errors.Is(err, redis.Nil) {
		c.logger.Warn("Product cache read failed", zap.String("product_id", id), zap.Error(err))
	}

	p, err := c.source.GetByID(ctx, id)
	if err != nil || p == nil {
		return p, err
	}
	c.store(ctx, key, p)
	return p, nil
}

func (c *CachedProductLookup) List(ctx context.Context, filter models.ProductFilter) ([]models.Product, error) {
	version, err := c.version(ctx)
	if err != nil {
		c.logger.Warn("Product cache version unavailable", zap.Error(err))
		return c.source.List(ctx, filter)
	}

	key := listCacheKey(version, filter)
	if data, err := c.redis.Get(ctx, key).Bytes(); err == nil {
		var products []models.Product
		if err := json.Unmarshal(data, &products); err == nil {
			return products, nil
		}
	}

	products, err := c.source.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	c.store(ctx, key, products)
	return products, nil
}

// Invalidate drops every cached listing and the detail entries of ids.
func (c *CachedProductLookup) Invalidate(ctx context.Context, ids ...string) error {
	newVersion, err := c.redis.Incr(ctx, CacheVersionKey).Result()
	if err != nil {
		return fmt.Errorf("failed to invalidate cache: %w", err)
	}
	if len(ids) > 0 {
		keys := make([]string, len(ids))
		for i, id := range ids {
			keys[i] = ProductCachePrefix + id
		}
		if err := c.redis.Del(ctx, keys...).Err(); err != nil {
			return fmt.Errorf("failed to drop product cache: %w", err)
		}
	}
	c.logger.Info("Cache invalidated", zap.Int64("new_version", newVersion), zap.Int("products", len(ids)))
	return nil
}

func (c *CachedProductLookup) version(ctx context.Context) (int64, error) {
	v, err := c.redis.Get(ctx, CacheVersionKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return v, err
}

func (c *CachedProductLookup) store(ctx context.Context, key string, value any) {
	data, err := json.Marshal(value)
	if err != nil {
		c.logger.Warn("Failed to marshal product cache entry", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.redis.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.logger.Warn("Failed to write product cache", zap.String("key", key), zap.Error(err))
	}
}

func listCacheKey(version int64, f models.ProductFilter) string {
	return fmt.Sprintf("%s%d:c=%s:t=%s:f=%t:i=%t:l=%d",
		ProductListCachePrefix, version, f.Category, f.PCPartType, f.FeaturedOnly, f.IncludeInactive, f.Limit)
}
