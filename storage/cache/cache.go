package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/casitakids/backend/core"
)

// ErrMiss reports an absent or expired key.
var ErrMiss = errors.New("cache miss")

// Cache is a small JSON value cache over redis. Listing endpoints use
// it to keep repeated roster reads off the database; entries expire on
// their own, writers only need to invalidate on mutation.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

func New(conf *core.Config, ttl time.Duration) *Cache {
	client := redis.NewClient(&redis.Options{
		Addr:     conf.Redis.Address,
		Password: conf.Redis.Password,
		DB:       conf.Redis.DB,
	})
	return &Cache{client: client, ttl: ttl}
}

func (c *Cache) Get(ctx context.Context, key string, dest interface{}) error {
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrMiss
	}
	if err != nil {
		return errors.Wrap(err, "reading cache")
	}
	if err = json.Unmarshal(data, dest); err != nil {
		return errors.Wrap(err, "decoding cached value")
	}
	return nil
}

func (c *Cache) Set(ctx context.Context, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return errors.Wrap(err, "encoding cached value")
	}
	if err = c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		return errors.Wrap(err, "writing cache")
	}
	return nil
}

func (c *Cache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return errors.Wrap(err, "invalidating cache")
	}
	return nil
}

func (c *Cache) Close() error { return c.client.Close() }
