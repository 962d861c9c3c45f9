package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const tenantStatusPrefix = "rental:tenant-status:"

// TenantStatusCache keeps tenant statuses in Redis so the request guard does
// not read the tenants table on every call. Redis failures degrade to a
// cache miss.
type TenantStatusCache struct {
	rdb    redis.UniversalClient
	ttl    time.Duration
	logger *slog.Logger
}

// NewClient connects to url and checks the connection.
func NewClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return rdb, nil
}

func NewTenantStatusCache(rdb redis.UniversalClient, ttl time.Duration, logger *slog.Logger) *TenantStatusCache {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &TenantStatusCache{rdb: rdb, ttl: ttl, logger: logger}
}

func key(tenantID uuid.UUID) string {
	return tenantStatusPrefix + tenantID.String()
}

func (c *TenantStatusCache) Get(ctx context.Context, tenantID uuid.UUID) (string, bool) {
	status, err := c.rdb.Get(ctx, key(tenantID)).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("tenant status cache read failed",
				slog.String("tenant_id", tenantID.String()),
				slog.String("error", err.Error()),
			)
		}
		return "", false
	}
	return status, true
}

func (c *TenantStatusCache) Set(ctx context.Context, tenantID uuid.UUID, status string) {
	if err := c.rdb.Set(ctx, key(tenantID), status, c.ttl).Err(); err != nil {
		c.logger.Warn("tenant status cache write failed",
			slog.String("tenant_id", tenantID.String()),
			slog.String("error", err.Error()),
		)
	}
}

func (c *TenantStatusCache) Invalidate(ctx context.Context, tenantID uuid.UUID) {
	if err := c.rdb.Del(ctx, key(tenantID)).Err(); err != nil {
		c.logger.Warn("tenant status cache invalidation failed",
			slog.String("tenant_id", tenantID.String()),
			slog.String("error", err.Error()),
		)
	}
}

// Ping reports whether Redis is reachable.
func (c *TenantStatusCache) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}
