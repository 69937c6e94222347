package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/seu-repo/restoran-pos/internal/observability/telemetry"
	"github.com/seu-repo/restoran-pos/internal/ports"
)

// DefaultCacheTTL keeps vectors for a week; trigger phrases rarely change.
const DefaultCacheTTL = 7 * 24 * time.Hour

// CachedEmbedder looks vectors up in a cache before calling the inner embedder. Cache failures
// are logged and treated as misses.
type CachedEmbedder struct {
	inner ports.Embedder
	cache ports.Cache
	model string
	ttl   time.Duration
	log   *zap.Logger
}

func NewCachedEmbedder(inner ports.Embedder, cache ports.Cache, model string, ttl time.Duration, log *zap.Logger) *CachedEmbedder {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &CachedEmbedder{
		inner: inner,
		cache: cache,
		model: model,
		ttl:   ttl,
		log:   log,
	}
}

// CacheKey is "emb:<model>:<sha256(text)>".
func CacheKey(model, text string) string {
	sum := sha256.Sum256([]byte(text))
	return "emb:" + model + ":" + hex.EncodeToString(sum[:])
}

func (e *CachedEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	key := CacheKey(e.model, text)

	raw, err := e.cache.Get(ctx, key)
	switch {
	case err == nil:
		var vec []float64
		if jsonErr := json.Unmarshal([]byte(raw), &vec); jsonErr == nil {
			telemetry.EmbeddingCacheTotal.WithLabelValues("hit").Inc()
			return vec, nil
		}
		e.log.Warn("Discarding corrupt cached embedding", zap.String("key", key))
	case !errors.Is(err, ports.ErrCacheMiss):
		e.log.Warn("Embedding cache lookup failed", zap.String("key", key), zap.Error(err))
	}
	telemetry.EmbeddingCacheTotal.WithLabelValues("miss").Inc()

	vec, err := e.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	if len(vec) == 0 {
		return vec, nil
	}

	data, err := json.Marshal(vec)
	if err != nil {
		return vec, nil
	}
	if err := e.cache.Set(ctx, key, data, e.ttl); err != nil {
		e.log.Warn("Failed to cache embedding", zap.String("key", key), zap.Error(err))
	}
	return vec, nil
}
