package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
	"go.uber.org/zap"

	"github.com/seu-repo/restoran-pos/internal/adapter/http/fiber/middleware"
	"github.com/seu-repo/restoran-pos/internal/app"
	"github.com/seu-repo/restoran-pos/internal/observability/telemetry"
	"github.com/seu-repo/restoran-pos/internal/service/health"
	"github.com/seu-repo/restoran-pos/internal/service/nlu"
	"github.com/seu-repo/restoran-pos/pkg/config"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.Load(os.Getenv("APP_CONFIG_FILE"))
	if err != nil {
		log.Fatal("Failed to load configuration: ", err)
	}

	// 2. Initialize Logger
	logger, err := app.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatal("Failed to initialize logger: ", err)
	}
	defer logger.Sync()

	logger.Info("Starting intent detection service",
		zap.String("service", cfg.App.Name),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	// 3. Initialize OpenTelemetry (Distributed Tracing)
	if cfg.OpenTelemetry.Enabled {
		tracerProvider, err := telemetry.InitTracer(telemetry.TracerConfig{
			ServiceName:    cfg.OpenTelemetry.ServiceName,
			ServiceVersion: cfg.App.Version,
			Endpoint:       cfg.OpenTelemetry.Jaeger.Endpoint,
			SampleRatio:    cfg.OpenTelemetry.Jaeger.SamplerParam,
		})
		if err != nil {
			logger.Fatal("Failed to initialize tracer", zap.Error(err))
		}
		defer func() {
			if err := tracerProvider.Shutdown(context.Background()); err != nil {
				logger.Error("Error shutting down tracer provider", zap.Error(err))
			}
		}()
	}

	// 4. Wire storage, queue, embedder and the NLU service
	startCtx, cancelStart := context.WithTimeout(context.Background(), 30*time.Second)
	a, err := app.Build(startCtx, cfg, logger, app.Options{})
	cancelStart()
	if err != nil {
		logger.Fatal("Failed to initialize service", zap.Error(err))
	}
	defer a.Close()

	// 5. Start Utterance Worker
	if a.Queue != nil {
		worker := nlu.NewWorker(a.Service, a.Queue, nlu.WorkerConfig{
			UtteranceSubject: cfg.Queue.UtteranceSubject,
			DetectionSubject: cfg.Queue.DetectionSubject,
			Timeout:          cfg.Queue.HandlerTimeout,
		}, logger)
		if err := worker.Start(); err != nil {
			logger.Fatal("Failed to start utterance worker", zap.Error(err))
		}
	}

	// 6. Ops HTTP Server (health probes and metrics)
	var ops *fiber.App
	if cfg.Ops.Enabled {
		healthService := health.NewService(cfg.App.Version, logger)
		a.RegisterHealthChecks(healthService)

		ops = fiber.New(fiber.Config{
			AppName:               cfg.App.Name,
			DisableStartupMessage: true,
			ReadTimeout:           cfg.Ops.ReadTimeout,
			WriteTimeout:          cfg.Ops.WriteTimeout,
			ErrorHandler:          middleware.ErrorHandler(logger),
		})
		ops.Use(recover.New())

		health.NewFiberHandler(healthService).RegisterRoutes(ops)

		if cfg.Prometheus.Enabled {
			metricsHandler := fasthttpadaptor.NewFastHTTPHandler(promhttp.Handler())
			ops.Get(cfg.Prometheus.Path, func(c *fiber.Ctx) error {
				metricsHandler(c.Context())
				return nil
			})
		}

		go func() {
			logger.Info("Starting ops HTTP server", zap.Int("port", cfg.Ops.Port))
			if err := ops.Listen(fmt.Sprintf(":%d", cfg.Ops.Port)); err != nil {
				logger.Fatal("Ops HTTP server failed", zap.Error(err))
			}
		}()
	}

	// 7. Reload triggers on SIGHUP, shut down on SIGINT/SIGTERM
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	for sig := range signals {
		if sig != syscall.SIGHUP {
			break
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := a.Service.Reload(ctx); err != nil {
			logger.Error("Trigger reload failed", zap.Error(err))
		}
		cancel()
	}

	logger.Info("Shutting down server...")

	if ops != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := ops.ShutdownWithContext(ctx); err != nil {
			logger.Error("Ops server forced to shutdown", zap.Error(err))
		}
	}

	logger.Info("Server exited gracefully")
}
