//go:build integration

package cache

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
	"go.uber.org/zap"

	"github.com/seu-repo/restoran-pos/internal/ports"
)

func redisURL(t *testing.T) string {
	t.Helper()
	if url := os.Getenv("REDIS_URL"); url != "" {
		return url
	}

	ctx := context.Background()
	ctr, err := tcredis.Run(ctx, "redis:7-alpine")
	testcontainers.CleanupContainer(t, ctr)
	if err != nil {
		t.Fatalf("Failed to start redis container: %v", err)
	}
	url, err := ctr.ConnectionString(ctx)
	if err != nil {
		t.Fatalf("Failed to get connection string: %v", err)
	}
	return url
}

func TestRedisCache_Operations(t *testing.T) {
	url := redisURL(t)
	ctx := context.Background()

	c, err := NewRedisCache(url, "restoran-test:", zap.NewNop())
	if err != nil {
		t.Fatalf("Failed to connect: %v", err)
	}
	defer c.Close()

	t.Run("SetGet", func(t *testing.T) {
		if err := c.Set(ctx, "emb:m:1", []byte("[0.1,0.2]"), time.Minute); err != nil {
			t.Fatalf("Set failed: %v", err)
		}
		val, err := c.Get(ctx, "emb:m:1")
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if val != "[0.1,0.2]" {
			t.Errorf("Expected '[0.1,0.2]', got '%s'", val)
		}
	})

	t.Run("Prefix", func(t *testing.T) {
		other, err := NewRedisCache(url, "other:", zap.NewNop())
		if err != nil {
			t.Fatalf("Failed to connect: %v", err)
		}
		defer other.Close()

		if _, err := other.Get(ctx, "emb:m:1"); !errors.Is(err, ports.ErrCacheMiss) {
			t.Errorf("Expected miss under another prefix, got %v", err)
		}
	})

	t.Run("Expiration", func(t *testing.T) {
		c.Set(ctx, "expiring", "v", 100*time.Millisecond)
		time.Sleep(200 * time.Millisecond)
		if _, err := c.Get(ctx, "expiring"); !errors.Is(err, ports.ErrCacheMiss) {
			t.Errorf("Key should have expired, got %v", err)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		c.Set(ctx, "gone", "v", time.Minute)
		if err := c.Delete(ctx, "gone"); err != nil {
			t.Fatalf("Delete failed: %v", err)
		}
		if _, err := c.Get(ctx, "gone"); !errors.Is(err, ports.ErrCacheMiss) {
			t.Errorf("Key should have been deleted, got %v", err)
		}
	})

	if err := c.Ping(); err != nil {
		t.Errorf("Ping failed: %v", err)
	}
}
