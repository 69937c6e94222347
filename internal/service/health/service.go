package health

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/seu-repo/restoran-pos/internal/domain"
)

// Status represents the health status
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusUnhealthy Status = "unhealthy"
	StatusDegraded  Status = "degraded"
)

// CheckResult represents the result of a health check
type CheckResult struct {
	Name      string        `json:"name"`
	Status    Status        `json:"status"`
	Message   string        `json:"message,omitempty"`
	Duration  time.Duration `json:"duration_ms"`
	Timestamp time.Time     `json:"timestamp"`
}

// HealthResponse represents the overall health response
type HealthResponse struct {
	Status    Status    `json:"status"`
	Version   string    `json:"version,omitempty"`
	Uptime    string    `json:"uptime,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// ReadyResponse represents the readiness response
type ReadyResponse struct {
	Ready     bool                   `json:"ready"`
	Status    Status                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Checks    map[string]CheckResult `json:"checks"`
}

// Checker defines a health check function
type Checker func(ctx context.Context) CheckResult

// Service aggregates dependency checks for the readiness probe.
type Service struct {
	startTime time.Time
	version   string
	timeout   time.Duration
	checkers  map[string]Checker
	log       *zap.Logger
	mu        sync.RWMutex
}

// NewService creates a new health service
func NewService(version string, log *zap.Logger) *Service {
	return &Service{
		startTime: time.Now(),
		version:   version,
		timeout:   5 * time.Second,
		checkers:  make(map[string]Checker),
		log:       log,
	}
}

// RegisterChecker registers a custom health checker
func (s *Service) RegisterChecker(name string, checker Checker) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.checkers[name] = checker
	s.log.Info("Registered health checker", zap.String("name", name))
}

// Names lists the registered checkers.
func (s *Service) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.checkers))
	for name := range s.checkers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Health performs a basic liveness check
func (s *Service) Health(ctx context.Context) *HealthResponse {
	return &HealthResponse{
		Status:    StatusHealthy,
		Version:   s.version,
		Uptime:    time.Since(s.startTime).String(),
		Timestamp: time.Now(),
	}
}

// Ready runs every checker concurrently. Any unhealthy check makes the service not ready;
// degraded checks only lower the overall status.
func (s *Service) Ready(ctx context.Context) *ReadyResponse {
	s.mu.RLock()
	checkers := make(map[string]Checker, len(s.checkers))
	for k, v := range s.checkers {
		checkers[k] = v
	}
	s.mu.RUnlock()

	results := make(map[string]CheckResult)
	var wg sync.WaitGroup
	var mu sync.Mutex

	for name, checker := range checkers {
		wg.Add(1)
		go func(name string, checker Checker) {
			defer wg.Done()

			checkCtx, cancel := context.WithTimeout(ctx, s.timeout)
			defer cancel()

			result := checker(checkCtx)
			result.Name = name

			mu.Lock()
			results[name] = result
			mu.Unlock()
		}(name, checker)
	}

	wg.Wait()

	overallStatus := StatusHealthy
	allReady := true

	for _, result := range results {
		if result.Status == StatusUnhealthy {
			overallStatus = StatusUnhealthy
			allReady = false
		} else if result.Status == StatusDegraded && overallStatus != StatusUnhealthy {
			overallStatus = StatusDegraded
		}
	}

	return &ReadyResponse{
		Ready:     allReady,
		Status:    overallStatus,
		Timestamp: time.Now(),
		Checks:    results,
	}
}

// PingChecker adapts a connection ping (database, redis, queue) into a Checker.
func PingChecker(ping func(ctx context.Context) error, log *zap.Logger) Checker {
	return func(ctx context.Context) CheckResult {
		start := time.Now()
		err := ping(ctx)
		result := CheckResult{
			Duration:  time.Since(start),
			Timestamp: time.Now(),
		}
		if err != nil {
			result.Status = StatusUnhealthy
			result.Message = fmt.Sprintf("ping failed: %v", err)
			log.Warn("Health check failed", zap.Error(err))
			return result
		}
		result.Status = StatusHealthy
		result.Message = "connection ok"
		return result
	}
}

// TriggerChecker reports degraded while the loaded trigger set has no phrases, since every
// detection would then come back unknown.
func TriggerChecker(triggers func() domain.TriggerSet) Checker {
	return func(ctx context.Context) CheckResult {
		start := time.Now()
		set := triggers()
		result := CheckResult{
			Duration:  time.Since(start),
			Timestamp: time.Now(),
		}
		if set.PhraseCount() == 0 {
			result.Status = StatusDegraded
			result.Message = "no trigger phrases loaded"
			return result
		}
		result.Status = StatusHealthy
		result.Message = fmt.Sprintf("%d intents, %d phrases", set.Len(), set.PhraseCount())
		return result
	}
}

// StateChecker reports degraded while state() returns something other than healthyState.
// Used for the embedding circuit breaker.
func StateChecker(state func() string, healthyState string) Checker {
	return func(ctx context.Context) CheckResult {
		current := state()
		result := CheckResult{
			Status:    StatusHealthy,
			Message:   current,
			Timestamp: time.Now(),
		}
		if current != healthyState {
			result.Status = StatusDegraded
		}
		return result
	}
}
