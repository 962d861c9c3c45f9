package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taichu-system/rental-management/internal/logger"
)

func TestTenantStatusCacheRoundTrip(t *testing.T) {
	url := os.Getenv("TEST_REDIS_URL")
	if url == "" {
		t.Skip("TEST_REDIS_URL not set")
	}
	ctx := context.Background()
	rdb, err := NewClient(ctx, url)
	require.NoError(t, err)
	defer rdb.Close()

	c := NewTenantStatusCache(rdb, time.Minute, logger.Discard())
	id := uuid.New()

	_, ok := c.Get(ctx, id)
	assert.False(t, ok)

	c.Set(ctx, id, "SUSPENDED")
	status, ok := c.Get(ctx, id)
	require.True(t, ok)
	assert.Equal(t, "SUSPENDED", status)

	c.Invalidate(ctx, id)
	_, ok = c.Get(ctx, id)
	assert.False(t, ok)
}

func TestTenantStatusCacheDegradesToMiss(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer rdb.Close()

	c := NewTenantStatusCache(rdb, time.Minute, logger.Discard())
	id := uuid.New()

	assert.NotPanics(t, func() {
		c.Set(context.Background(), id, "ACTIVE")
		c.Invalidate(context.Background(), id)
	})
	_, ok := c.Get(context.Background(), id)
	assert.False(t, ok)
}

func TestKeyIsNamespaced(t *testing.T) {
	id := uuid.New()
	assert.Equal(t, "rental:tenant-status:"+id.String(), key(id))
}
