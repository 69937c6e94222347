package embedding

import (
	"context"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/seu-repo/restoran-pos/internal/observability/telemetry"
	"github.com/seu-repo/restoran-pos/internal/ports"
)

// BreakerConfig configures the circuit breaker around the embedding provider.
type BreakerConfig struct {
	MaxRequests  uint32
	Interval     time.Duration
	OpenTimeout  time.Duration
	MinRequests  uint32
	FailureRatio float64
	CallTimeout  time.Duration
}

// ResilientEmbedder never fails: provider errors, timeouts and an open circuit all yield an
// empty vector, which the scorer treats as "no embedding signal".
type ResilientEmbedder struct {
	inner   ports.Embedder
	cb      *gobreaker.CircuitBreaker
	timeout time.Duration
	log     *zap.Logger
}

func NewResilientEmbedder(inner ports.Embedder, cfg BreakerConfig, log *zap.Logger) *ResilientEmbedder {
	if cfg.MaxRequests == 0 {
		cfg.MaxRequests = 3
	}
	if cfg.Interval <= 0 {
		cfg.Interval = time.Minute
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = 30 * time.Second
	}
	if cfg.MinRequests == 0 {
		cfg.MinRequests = 3
	}
	if cfg.FailureRatio <= 0 {
		cfg.FailureRatio = 0.6
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "embedding",
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= cfg.FailureRatio
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			telemetry.EmbeddingBreakerTransitions.WithLabelValues(from.String(), to.String()).Inc()
			log.Warn("Circuit breaker state changed",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})

	return &ResilientEmbedder{
		inner:   inner,
		cb:      cb,
		timeout: cfg.CallTimeout,
		log:     log,
	}
}

// State exposes the breaker state for health reporting.
func (e *ResilientEmbedder) State() gobreaker.State {
	return e.cb.State()
}

func (e *ResilientEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	res, err := e.cb.Execute(func() (interface{}, error) {
		callCtx := ctx
		if e.timeout > 0 {
			var cancel context.CancelFunc
			callCtx, cancel = context.WithTimeout(ctx, e.timeout)
			defer cancel()
		}
		return e.inner.Embed(callCtx, text)
	})
	if err != nil {
		telemetry.EmbeddingFallbacksTotal.Inc()
		e.log.Debug("Embedding degraded to empty vector", zap.Error(err))
		return []float64{}, nil
	}

	vec, _ := res.([]float64)
	return vec, nil
}
