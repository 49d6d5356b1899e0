// Package cache keeps the public found-item listing in Redis. A Cache
// without a client does nothing, so the service runs the same with or
// without Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/erazemk/najdeno/internal/metrics"
	"github.com/erazemk/najdeno/internal/model"
)

const (
	publicItemsKey = "najdeno:founditems:public"
	// DefaultTTL bounds how stale a cached listing can get if an
	// invalidation is lost.
	DefaultTTL = 5 * time.Minute
)

// Cache stores the rendered public listing.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// New wraps an existing client. A nil client yields a disabled cache.
func New(client *redis.Client, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{client: client, ttl: ttl}
}

// Connect dials Redis at addr, which is either host:port or a redis:// URL.
// On any failure it logs a warning and returns a disabled cache.
func Connect(ctx context.Context, addr string) *Cache {
	if addr == "" {
		return New(nil, 0)
	}

	var opts *redis.Options
	if strings.Contains(addr, "://") {
		parsed, err := redis.ParseURL(addr)
		if err != nil {
			slog.Warn("invalid redis url, continuing without cache", "error", err)
			return New(nil, 0)
		}
		opts = parsed
	} else {
		opts = &redis.Options{Addr: addr}
	}

	client := redis.NewClient(opts)
	client.AddHook(metricsHook{})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		slog.Warn("redis unavailable, continuing without cache", "error", err)
		client.Close()
		return New(nil, 0)
	}

	slog.Info("redis connected", "addr", opts.Addr)
	return New(client, 0)
}

// Enabled reports whether the cache has a client.
func (c *Cache) Enabled() bool {
	return c != nil && c.client != nil
}

// PublicItems returns the cached public listing. ok is false on a miss or
// when the cache is disabled.
func (c *Cache) PublicItems(ctx context.Context) (items []model.PublicItemView, ok bool) {
	if !c.Enabled() {
		return nil, false
	}

	data, err := c.client.Get(ctx, publicItemsKey).Bytes()
	if errors.Is(err, redis.Nil) {
		metrics.CacheRequests.WithLabelValues("miss").Inc()
		return nil, false
	}
	if err != nil {
		metrics.CacheRequests.WithLabelValues("error").Inc()
		slog.Warn("reading public item cache", "error", err)
		return nil, false
	}

	if err := json.Unmarshal(data, &items); err != nil {
		metrics.CacheRequests.WithLabelValues("error").Inc()
		slog.Warn("decoding public item cache", "error", err)
		return nil, false
	}
	metrics.CacheRequests.WithLabelValues("hit").Inc()
	return items, true
}

// SetPublicItems stores the public listing.
func (c *Cache) SetPublicItems(ctx context.Context, items []model.PublicItemView) {
	if !c.Enabled() {
		return
	}

	data, err := json.Marshal(items)
	if err != nil {
		slog.Warn("encoding public item cache", "error", err)
		return
	}
	if err := c.client.Set(ctx, publicItemsKey, data, c.ttl).Err(); err != nil {
		slog.Warn("writing public item cache", "error", err)
	}
}

// Invalidate drops the cached listing. It is called after every write that
// can change what the public sees.
func (c *Cache) Invalidate(ctx context.Context) {
	if !c.Enabled() {
		return
	}
	if err := c.client.Del(ctx, publicItemsKey).Err(); err != nil {
		slog.Warn("invalidating public item cache", "error", err)
	}
}

// Ping checks the Redis connection. A disabled cache is always healthy.
func (c *Cache) Ping(ctx context.Context) error {
	if !c.Enabled() {
		return nil
	}
	if err := c.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("pinging redis: %w", err)
	}
	return nil
}

// Close releases the Redis client.
func (c *Cache) Close() error {
	if !c.Enabled() {
		return nil
	}
	return c.client.Close()
}

type metricsHook struct{}

func (metricsHook) DialHook(next redis.DialHook) redis.DialHook {
	return next
}

func (metricsHook) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		err := next(ctx, cmd)
		if err != nil && !errors.Is(err, redis.Nil) {
			metrics.RedisErrors.WithLabelValues(cmd.Name()).Inc()
		}
		return err
	}
}

func (metricsHook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		err := next(ctx, cmds)
		if err != nil && !errors.Is(err, redis.Nil) {
			metrics.RedisErrors.WithLabelValues("pipeline").Inc()
		}
		return err
	}
}
