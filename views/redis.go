package views

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache holds JSON view snapshots in redis. Snapshots are a read
// accelerator only; every view can be recomputed from SQL, so a cold
// or absent redis degrades to compute-on-demand.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCache(client *redis.Client) *Cache {
	return &Cache{client: client, ttl: 10 * time.Minute}
}

func snapshotKey(name string) string {
	return "shopcore:views:" + name
}

func (c *Cache) Set(ctx context.Context, name string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, snapshotKey(name), data, c.ttl).Err()
}

// Get unmarshals a snapshot into dest. A missing key returns (false, nil).
func (c *Cache) Get(ctx context.Context, name string, dest any) (bool, error) {
	data, err := c.client.Get(ctx, snapshotKey(name)).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, json.Unmarshal(data, dest)
}

func (c *Cache) Drop(ctx context.Context, names ...string) error {
	keys := make([]string, len(names))
	for i, n := range names {
		keys[i] = snapshotKey(n)
	}
	return c.client.Del(ctx, keys...).Err()
}

func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
