// Package app assembles the intent detection service from configuration. It is shared by the
// server and the operator CLI.
package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/gorm"

	"github.com/seu-repo/restoran-pos/internal/adapter/ai/openai"
	"github.com/seu-repo/restoran-pos/internal/adapter/cache"
	"github.com/seu-repo/restoran-pos/internal/adapter/queue"
	"github.com/seu-repo/restoran-pos/internal/adapter/storage/jsonfile"
	"github.com/seu-repo/restoran-pos/internal/adapter/storage/postgres"
	"github.com/seu-repo/restoran-pos/internal/adapter/vault"
	"github.com/seu-repo/restoran-pos/internal/ports"
	"github.com/seu-repo/restoran-pos/internal/service/embedding"
	"github.com/seu-repo/restoran-pos/internal/service/health"
	"github.com/seu-repo/restoran-pos/internal/service/nlu"
	"github.com/seu-repo/restoran-pos/pkg/config"
)

// Options tune Build for the calling binary.
type Options struct {
	// WithoutQueue skips the broker connection even when queue.enabled is set.
	WithoutQueue bool
}

// App holds the wired components and the resources to release on shutdown.
type App struct {
	Config   *config.Config
	Log      *zap.Logger
	DB       *gorm.DB
	Cache    ports.Cache
	Queue    queue.MessageQueue
	Reviews  ports.ReviewStore
	Breaker  *embedding.ResilientEmbedder
	Service  *nlu.Service
	Resolver *nlu.Resolver

	closers []func() error
}

// NewLogger builds the process logger from the logging section.
func NewLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if cfg.Format == "console" {
		zc = zap.NewDevelopmentConfig()
	}

	if cfg.Level != "" {
		level, err := zapcore.ParseLevel(cfg.Level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
		}
		zc.Level = zap.NewAtomicLevelAt(level)
	}

	zc.Sampling = nil
	if cfg.Sampling.Enabled {
		zc.Sampling = &zap.SamplingConfig{
			Initial:    cfg.Sampling.Initial,
			Thereafter: cfg.Sampling.Thereafter,
		}
	}
	return zc.Build()
}

// Build connects the configured backends and loads the trigger set.
func Build(ctx context.Context, cfg *config.Config, log *zap.Logger, opts Options) (*App, error) {
	a := &App{Config: cfg, Log: log}
	if err := a.build(ctx, opts); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func (a *App) build(ctx context.Context, opts Options) error {
	cfg, log := a.Config, a.Log

	// 1. Secrets
	if cfg.Vault.Enabled {
		if err := a.loadSecrets(ctx); err != nil {
			return err
		}
	}

	// 2. PostgreSQL
	if cfg.NeedsDatabase() {
		db, err := postgres.NewConnection(cfg.Database.URL, postgres.PoolConfig{
			MaxIdleConns:    cfg.Database.MaxIdleConns,
			MaxOpenConns:    cfg.Database.MaxOpenConns,
			ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
			Debug:           cfg.Database.LogQueries,
		}, log)
		if err != nil {
			return err
		}
		a.DB = db
		a.closers = append(a.closers, func() error { return postgres.Close(db) })

		if cfg.Database.AutoMigrate {
			if err := postgres.RunMigrations(db); err != nil {
				return err
			}
		}
	}

	// 3. Trigger repository
	var repo ports.TriggerRepository
	switch cfg.Triggers.Backend {
	case "postgres":
		repo = postgres.NewTriggerRepository(a.DB, log)
	default:
		repo = jsonfile.NewTriggerRepository(cfg.Triggers.Path, log)
	}

	// 4. Message queue
	if cfg.Queue.Enabled && !opts.WithoutQueue {
		mq, err := queue.New(cfg.Queue.Driver, cfg.QueueURL(), log)
		if err != nil {
			return err
		}
		a.Queue = mq
		a.closers = append(a.closers, mq.Close)
	}

	// 5. Review sink
	var sink ports.ReviewSink
	switch cfg.Review.Sink {
	case "memory":
		q := nlu.NewMemoryReviewQueue(cfg.Review.Capacity)
		a.Reviews, sink = q, q
	case "postgres":
		store := postgres.NewReviewRepository(a.DB, log)
		a.Reviews, sink = store, store
	case "queue":
		if a.Queue != nil {
			sink = queue.NewReviewPublisher(a.Queue, cfg.Queue.ReviewSubject)
		} else {
			log.Warn("Review sink disabled: message queue not connected")
		}
	}

	// 6. Embedder
	var embedder ports.Embedder
	if cfg.Embedding.Enabled {
		embedder = a.buildEmbedder()
	}

	// 7. NLU service
	a.Resolver = nlu.NewResolver(nlu.ResolverConfig{
		Thresholds: nlu.Thresholds{High: cfg.NLU.HighThreshold, Low: cfg.NLU.LowThreshold},
		Embedder:   embedder,
		ReviewSink: sink,
	}, log)
	a.Service = nlu.NewService(nlu.NewTriggerStore(repo, log), a.Resolver, a.Reviews, log)

	return a.Service.Reload(ctx)
}

func (a *App) loadSecrets(ctx context.Context) error {
	cfg := a.Config
	sm, err := vault.NewSecretManager(cfg.Vault.Address, cfg.Vault.Token, cfg.Vault.Mount)
	if err != nil {
		return fmt.Errorf("vault client: %w", err)
	}

	if cfg.NeedsDatabase() && cfg.Database.URL == "" {
		url, err := sm.GetDatabaseURL(ctx)
		if err != nil {
			return err
		}
		cfg.Database.URL = url
	}
	if cfg.Embedding.Enabled && cfg.OpenAI.APIKey == "" {
		key, err := sm.GetOpenAIAPIKey(ctx)
		if err != nil {
			return err
		}
		cfg.OpenAI.APIKey = key
	}
	a.Log.Info("Secrets loaded from Vault", zap.String("address", cfg.Vault.Address))
	return nil
}

func (a *App) buildEmbedder() ports.Embedder {
	cfg, log := a.Config, a.Log

	client := openai.NewClient(openai.Config{
		APIKey:  cfg.OpenAI.APIKey,
		BaseURL: cfg.OpenAI.BaseURL,
		Model:   cfg.OpenAI.Model,
		Timeout: cfg.OpenAI.Timeout,
	}, log)

	a.Cache = cache.New(cfg.Redis.URL, cfg.Redis.KeyPrefix, log)
	a.closers = append(a.closers, a.Cache.Close)

	var embedder ports.Embedder = embedding.NewCachedEmbedder(client, a.Cache, client.Model(), cfg.Embedding.CacheTTL, log)
	if cfg.Embedding.Resilient {
		a.Breaker = embedding.NewResilientEmbedder(embedder, embedding.BreakerConfig{
			MaxRequests:  cfg.CircuitBreaker.MaxRequests,
			Interval:     cfg.CircuitBreaker.Interval,
			OpenTimeout:  cfg.CircuitBreaker.Timeout,
			MinRequests:  cfg.CircuitBreaker.MinRequests,
			FailureRatio: cfg.CircuitBreaker.FailureThreshold,
			CallTimeout:  cfg.Embedding.CallTimeout,
		}, log)
		embedder = a.Breaker
	}

	log.Info("Embedding signal enabled",
		zap.String("model", client.Model()),
		zap.Bool("resilient", cfg.Embedding.Resilient),
	)
	return embedder
}

// RegisterHealthChecks adds a checker for every connected dependency.
func (a *App) RegisterHealthChecks(h *health.Service) {
	h.RegisterChecker("triggers", health.TriggerChecker(a.Service.Triggers))

	if a.DB != nil {
		db := a.DB
		h.RegisterChecker("database", health.PingChecker(func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		}, a.Log))
	}
	if a.Cache != nil {
		c := a.Cache
		h.RegisterChecker("cache", health.PingChecker(func(context.Context) error {
			return c.Ping()
		}, a.Log))
	}
	if p, ok := a.Queue.(queue.Pinger); ok {
		h.RegisterChecker("queue", health.PingChecker(func(context.Context) error {
			return p.Ping()
		}, a.Log))
	}
	if a.Breaker != nil {
		b := a.Breaker
		h.RegisterChecker("embedding", health.StateChecker(func() string {
			return b.State().String()
		}, "closed"))
	}
}

// Close releases resources in reverse order of acquisition.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.Log.Warn("Error releasing resource", zap.Error(err))
		}
	}
	a.closers = nil
}
