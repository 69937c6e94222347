package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/seu-repo/restoran-pos/internal/ports"
)

// DefaultMaxEntries bounds the local cache. Embedding vectors are a few KB each.
const DefaultMaxEntries = 10000

type cacheEntry struct {
	value     string
	expiresAt time.Time
}

func (e cacheEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && e.expiresAt.Before(now)
}

// LocalCache is an in-memory ports.Cache, used when Redis is not configured.
type LocalCache struct {
	data       map[string]cacheEntry
	maxEntries int
	mu         sync.RWMutex
	log        *zap.Logger
	stopCh     chan struct{}
	closeOnce  sync.Once
}

// NewLocalCache creates an in-memory cache with periodic cleanup. When the cache is full,
// expired entries are purged first and then an arbitrary entry is evicted.
func NewLocalCache(cleanupInterval time.Duration, maxEntries int, log *zap.Logger) *LocalCache {
	if cleanupInterval <= 0 {
		cleanupInterval = time.Minute
	}
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}

	c := &LocalCache{
		data:       make(map[string]cacheEntry),
		maxEntries: maxEntries,
		log:        log,
		stopCh:     make(chan struct{}),
	}

	go c.cleanupLoop(cleanupInterval)

	log.Info("Local in-memory cache initialized",
		zap.Duration("cleanup_interval", cleanupInterval),
		zap.Int("max_entries", maxEntries),
	)
	return c
}

func (c *LocalCache) Get(ctx context.Context, key string) (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.data[key]
	if !ok || entry.expired(time.Now()) {
		return "", ports.ErrCacheMiss
	}
	return entry.value, nil
}

func (c *LocalCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	var strVal string
	switch v := value.(type) {
	case string:
		strVal = v
	case []byte:
		strVal = string(v)
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("failed to marshal value: %w", err)
		}
		strVal = string(data)
	}

	entry := cacheEntry{value: strVal}
	if expiration > 0 {
		entry.expiresAt = time.Now().Add(expiration)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.data[key]; !exists && len(c.data) >= c.maxEntries {
		c.evictLocked()
	}
	c.data[key] = entry
	return nil
}

func (c *LocalCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

func (c *LocalCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.data)
}

func (c *LocalCache) Ping() error {
	return nil
}

func (c *LocalCache) Close() error {
	c.closeOnce.Do(func() { close(c.stopCh) })
	return nil
}

func (c *LocalCache) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.cleanup()
		case <-c.stopCh:
			return
		}
	}
}

func (c *LocalCache) cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if expired := c.purgeExpiredLocked(); expired > 0 {
		c.log.Debug("Cache cleanup completed", zap.Int("expired_entries", expired))
	}
}

func (c *LocalCache) purgeExpiredLocked() int {
	now := time.Now()
	expired := 0
	for key, entry := range c.data {
		if entry.expired(now) {
			delete(c.data, key)
			expired++
		}
	}
	return expired
}

func (c *LocalCache) evictLocked() {
	if c.purgeExpiredLocked() > 0 {
		return
	}
	for key := range c.data {
		delete(c.data, key)
		return
	}
}
