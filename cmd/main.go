package main

import (
	"context"
	"crypto/tls"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"

	"github.com/KasumiMercury/primind-floor-operations/internal/config"
	"github.com/KasumiMercury/primind-floor-operations/internal/domain"
	"github.com/KasumiMercury/primind-floor-operations/internal/handler"
	"github.com/KasumiMercury/primind-floor-operations/internal/health"
	"github.com/KasumiMercury/primind-floor-operations/internal/infra/generator"
	"github.com/KasumiMercury/primind-floor-operations/internal/infra/repository"
	"github.com/KasumiMercury/primind-floor-operations/internal/infra/runrecorder"
	"github.com/KasumiMercury/primind-floor-operations/internal/observability"
	"github.com/KasumiMercury/primind-floor-operations/internal/observability/logging"
	"github.com/KasumiMercury/primind-floor-operations/internal/observability/metrics"
	"github.com/KasumiMercury/primind-floor-operations/internal/observability/middleware"
	"github.com/KasumiMercury/primind-floor-operations/internal/service/optimizer"
	"github.com/KasumiMercury/primind-floor-operations/internal/service/wavenotify"
)

// Version is set via ldflags at build time
var Version = "dev"

const serviceModule = logging.Module("floor-operations")

func main() {
	os.Exit(run())
}

func run() int {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	obs, err := initObservability(ctx)
	if err != nil {
		slog.Error("failed to initialize observability", slog.String("error", err.Error()))
		return 1
	}
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := obs.Shutdown(shutdownCtx); err != nil {
			slog.Warn("observability shutdown error", slog.String("error", err.Error()))
		}
	}()

	slog.SetDefault(obs.Logger())

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.String("error", err.Error()))
		return 1
	}

	if err := config.ValidateForRun(cfg); err != nil {
		slog.Error("configuration validation error", slog.String("error", err.Error()))
		return 1
	}

	if err := cfg.TaskQueue.Validate(); err != nil {
		slog.Error("task queue configuration error", slog.String("error", err.Error()))
		return 1
	}

	httpMetrics, err := metrics.NewHTTPMetrics()
	if err != nil {
		slog.Error("failed to initialize HTTP metrics", slog.String("error", err.Error()))
		return 1
	}

	optimizerMetrics, err := metrics.NewOptimizerMetrics()
	if err != nil {
		slog.Error("failed to initialize optimizer metrics", slog.String("error", err.Error()))
		return 1
	}

	waveMetrics, err := metrics.NewWaveMetrics()
	if err != nil {
		slog.Error("failed to initialize wave metrics", slog.String("error", err.Error()))
		return 1
	}

	// Optimizer run history goes to InfluxDB locally and BigQuery on gcloud
	runRecorder, err := runrecorder.NewRecorder(ctx, runrecorder.LoadConfig())
	if err != nil {
		slog.Error("failed to initialize optimizer run recorder", slog.String("error", err.Error()))
		return 1
	}
	defer func() {
		if err := runRecorder.Close(); err != nil {
			slog.Warn("failed to close optimizer run recorder", slog.String("error", err.Error()))
		}
	}()

	taskQueue, cleanup, err := initTaskQueue(ctx, cfg)
	if err != nil {
		slog.Error("failed to initialize task queue", slog.String("error", err.Error()))
		return 1
	}
	if cleanup != nil {
		defer func() {
			if err := cleanup(); err != nil {
				slog.Error("task queue cleanup error", slog.String("error", err.Error()))
			}
		}()
	}

	redisOpts := &redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}
	if cfg.Redis.TLS {
		redisOpts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	redisClient := redis.NewClient(redisOpts)

	if err := redisotel.InstrumentTracing(redisClient); err != nil {
		slog.Error("failed to instrument redis tracing",
			slog.String("event", "redis.otel.tracing.fail"),
			slog.String("error", err.Error()),
		)
		return 1
	}

	if err := redisotel.InstrumentMetrics(redisClient); err != nil {
		slog.Error("failed to instrument redis metrics",
			slog.String("event", "redis.otel.metrics.fail"),
			slog.String("error", err.Error()),
		)
		return 1
	}

	if err := redisClient.Ping(ctx).Err(); err != nil {
		slog.Error("failed to connect redis",
			slog.String("event", "redis.connect.fail"),
			slog.String("error", err.Error()),
		)
		return 1
	}

	defer func() {
		if err := redisClient.Close(); err != nil {
			slog.Warn("failed to close redis client", slog.String("error", err.Error()))
		}
	}()

	slog.Info("redis connected",
		slog.String("addr", cfg.Redis.Addr),
		slog.Bool("tls", cfg.Redis.TLS),
	)

	floorRepo := repository.NewFloorRepository(redisClient, cfg.Redis.ReservationTTL)
	ledger := repository.NewNotificationLedger(redisClient, cfg.Redis.LedgerTTL)
	changes := repository.NewReservationChangeSubscriber(redisClient)

	gen, closeGenerator, err := initGenerator(ctx, cfg.Generator)
	if err != nil {
		slog.Error("failed to initialize generator", slog.String("error", err.Error()))
		return 1
	}
	if closeGenerator != nil {
		defer func() {
			if err := closeGenerator(); err != nil {
				slog.Warn("failed to close generator client", slog.String("error", err.Error()))
			}
		}()
	}

	optimizerService := optimizer.NewService(gen, floorRepo, runRecorder, optimizerMetrics, optimizer.Config{
		GenerateTimeout: cfg.Optimizer.GenerateTimeout,
		Provider:        cfg.Generator.Provider,
		Model:           cfg.Generator.Model,
		MaxTokens:       cfg.Generator.MaxTokens,
		Location:        cfg.Location,
		CapacitySource:  optimizer.CapacitySource(cfg.Optimizer.CapacitySource),
	})

	notifier := wavenotify.NewService(floorRepo, ledger, taskQueue, waveMetrics, wavenotify.Config{
		Location: cfg.Location,
		Defaults: domain.WaveSettings{
			PositionIDs:        cfg.Wave.PositionIDs,
			BucketMinutes:      cfg.Wave.BucketMinutes,
			Threshold:          cfg.Wave.Threshold,
			MinCalmMinutes:     cfg.Wave.MinCalmMinutes,
			NotifyDelayMinutes: cfg.Wave.NotifyDelayMinutes,
		},
		SmoothRadius: cfg.Wave.SmoothRadius,
	})

	workerDone := make(chan struct{})
	if cfg.Wave.WorkerEnabled {
		worker := wavenotify.NewWorker(notifier, changes)
		go func() {
			defer close(workerDone)
			if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				slog.Error("reservation change worker stopped", slog.String("error", err.Error()))
			}
		}()
	} else {
		close(workerDone)
		slog.Info("reservation change worker disabled")
	}

	r := gin.New()
	r.Use(middleware.Gin(middleware.GinConfig{
		SkipPaths:   []string{"/health", "/health/live", "/health/ready", "/metrics"},
		Module:      serviceModule,
		TracerName:  "github.com/KasumiMercury/primind-floor-operations/internal/observability/middleware",
		HTTPMetrics: httpMetrics,
	}))
	r.Use(middleware.PanicRecoveryGin())

	healthChecker := health.NewChecker(Version).Register("redis", health.RedisCheck(redisClient))
	r.GET("/health/live", healthChecker.LiveHandler())
	r.GET("/health/ready", healthChecker.ReadyHandler())
	r.GET("/health", healthChecker.ReadyHandler())

	handler.RegisterRoutes(r, handler.Handlers{
		Optimizer:      handler.NewOptimizerHandler(optimizerService, cfg.Location),
		Schedule:       handler.NewScheduleHandler(cfg.Location),
		Wave:           handler.NewWaveHandler(notifier, cfg.Location),
		Floor:          handler.NewFloorHandler(floorRepo, cfg.Location),
		GeneratorLimit: middleware.NewRateLimiter(cfg.RateLimit.PerMinute, cfg.RateLimit.Burst).Gin(),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("starting server",
			slog.String("port", cfg.Port),
			slog.String("timezone", cfg.Timezone),
			slog.String("generator_provider", cfg.Generator.Provider),
			slog.String("capacity_source", cfg.Optimizer.CapacitySource),
			slog.Bool("wave_worker", cfg.Wave.WorkerEnabled),
			slog.Bool("task_queue", taskQueue != nil),
		)
		serverErr <- srv.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		slog.Info("shutdown signal received", slog.String("signal", sig.String()))
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("failed to shutdown server", slog.String("error", err.Error()))
			return 1
		}

		select {
		case <-workerDone:
		case <-shutdownCtx.Done():
			slog.Warn("reservation change worker did not stop in time")
		}

		if err := runRecorder.Flush(shutdownCtx); err != nil {
			slog.Warn("failed to flush optimizer run recorder", slog.String("error", err.Error()))
		}

		slog.Info("server exited properly")
		return 0

	case err := <-serverErr:
		if errors.Is(err, http.ErrServerClosed) {
			return 0
		}
		slog.Error("server exited with error", slog.String("error", err.Error()))
		return 1
	}
}

func initObservability(ctx context.Context) (*observability.Resources, error) {
	name, revision, projectID := platformIdentity()
	if name == "" {
		name = "floor-operations"
	}

	env := defaultEnvironment
	if e := os.Getenv("ENV"); e != "" {
		env = logging.Environment(e)
	}

	return observability.Init(ctx, observability.Config{
		ServiceInfo: logging.ServiceInfo{
			Name:     name,
			Version:  Version,
			Revision: revision,
		},
		Environment:   env,
		GCPProjectID:  projectID,
		SamplingRate:  1.0,
		DefaultModule: serviceModule,
		LogLevel:      logging.ParseLevel(os.Getenv("LOG_LEVEL")),
	})
}

// initGenerator builds the client of the configured provider. The returned
// cleanup may be nil.
func initGenerator(ctx context.Context, cfg *config.GeneratorConfig) (generator.Generator, func() error, error) {
	switch cfg.Provider {
	case config.ProviderGemini:
		client, err := generator.NewGeminiClient(ctx, cfg.APIKey, cfg.Model, cfg.MaxTokens)
		if err != nil {
			return nil, nil, err
		}
		slog.Info("generator initialized",
			slog.String("provider", cfg.Provider),
			slog.String("model", cfg.Model),
		)
		return client, client.Close, nil
	default:
		client := generator.NewOpenAIClient(generator.OpenAIOptions{
			BaseURL:   cfg.BaseURL,
			APIKey:    cfg.APIKey,
			Model:     cfg.Model,
			MaxTokens: cfg.MaxTokens,
		})
		slog.Info("generator initialized",
			slog.String("provider", cfg.Provider),
			slog.String("model", cfg.Model),
			slog.String("base_url", cfg.BaseURL),
		)
		return client, nil, nil
	}
}
