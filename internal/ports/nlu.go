package ports

import (
	"context"
	"errors"
	"time"

	"github.com/seu-repo/restoran-pos/internal/domain"
)

// TriggerRepository persists the whole trigger set. Save is always a full rewrite.
type TriggerRepository interface {
	Load(ctx context.Context) (domain.TriggerSet, error)
	Save(ctx context.Context, set domain.TriggerSet) error
}

// Embedder turns a normalized string into a vector. Implementations may do network I/O.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}

// ReviewSink receives detections that need a human look.
type ReviewSink interface {
	Append(ctx context.Context, entry domain.ReviewQueueEntry) error
}

// ReviewStore is a ReviewSink that can be worked through by an operator.
type ReviewStore interface {
	ReviewSink
	ListPending(ctx context.Context, limit int) ([]domain.ReviewItem, error)
	Get(ctx context.Context, id string) (*domain.ReviewItem, error)
	Resolve(ctx context.Context, id, intent string) (*domain.ReviewItem, error)
	Dismiss(ctx context.Context, id string) error
}

// ErrCacheMiss is returned by Cache.Get when the key is absent or expired.
var ErrCacheMiss = errors.New("cache miss")

// Cache is a string key/value cache with expiry.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Delete(ctx context.Context, key string) error
	Ping() error
	Close() error
}

// IntentService is the long-lived owner of the trigger lifecycle and the detection entry point.
type IntentService interface {
	Detect(ctx context.Context, text string) (domain.DetectionResult, error)
	Reload(ctx context.Context) error
	Triggers() domain.TriggerSet
	AddTrigger(ctx context.Context, intent, phrase string) (bool, error)
	RemoveTrigger(ctx context.Context, intent, phrase string) (bool, error)
	SetDefaultSlots(ctx context.Context, intent string, slots map[string]any) error
	SearchTriggers(query string, limit int) []domain.TriggerMatch
}
