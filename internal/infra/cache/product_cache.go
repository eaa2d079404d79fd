package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ManishSRawat/e-sell/internal/config"
	"github.com/ManishSRawat/e-sell/internal/domain"
	"github.com/ManishSRawat/e-sell/internal/infra"
	"github.com/go-redis/redis/v8"
	"github.com/pkg/errors"
)

type ProductCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     200,
		MinIdleConns: 20,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  500 * time.Millisecond,
		WriteTimeout: 500 * time.Millisecond,
	})
}

func NewProductCache(rdb *redis.Client, ttl time.Duration) *ProductCache {
	return &ProductCache{rdb: rdb, ttl: ttl}
}

var _ infra.ProductCache = (*ProductCache)(nil)

func productKey(id int64) string {
	return fmt.Sprintf("product:%d", id)
}

func (c *ProductCache) Get(ctx context.Context, id int64) (*domain.Product, bool, error) {
	b, err := c.rdb.Get(ctx, productKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrap(err, "cache get")
	}
	var p domain.Product
	if err := json.Unmarshal(b, &p); err != nil {
		return nil, false, errors.Wrap(err, "cache decode")
	}
	return &p, true, nil
}

func (c *ProductCache) Set(ctx context.Context, p *domain.Product) error {
	data, err := json.Marshal(p)
	if err != nil {
		return errors.Wrap(err, "cache encode")
	}
	return errors.Wrap(c.rdb.Set(ctx, productKey(p.ID), data, c.ttl).Err(), "cache set")
}

func (c *ProductCache) Invalidate(ctx context.Context, ids ...int64) error {
	if len(ids) == 0 {
		return nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = productKey(id)
	}
	return errors.Wrap(c.rdb.Del(ctx, keys...).Err(), "cache invalidate")
}
