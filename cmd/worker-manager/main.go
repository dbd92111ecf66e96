// cmd/worker-manager/main.go
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ecoscan-workers/internal/common/camunda"
	"ecoscan-workers/internal/common/config"
	"ecoscan-workers/internal/common/database"
	httpclient "ecoscan-workers/internal/common/http"
	"ecoscan-workers/internal/common/logger"
	"ecoscan-workers/internal/common/observability"
	"ecoscan-workers/internal/imagecache"
	"ecoscan-workers/internal/points"
	"ecoscan-workers/pkg/registry"

	ed "ecoscan-workers/internal/workers/extraction/extract-disposal"
	er "ecoscan-workers/internal/workers/extraction/extract-recommendations"
	sej "ecoscan-workers/internal/workers/extraction/strip-embedded-json"
	gdi "ecoscan-workers/internal/workers/media/generate-destination-image"

	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting worker manager...",
		zap.String("app", cfg.App.Name),
		zap.String("environment", cfg.App.Environment),
	)

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Zeebe ---
	var zeebe *camunda.Client
	err = retryWithBackoff(func() error {
		var err error
		zeebe, err = camunda.NewClientWithConfig(camunda.ConfigFrom(cfg.Camunda))
		return err
	}, 10, 2*time.Second, zapLog, "Zeebe client initialization")
	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	zapLog.Info("Zeebe client connected successfully")

	// --- PostgreSQL (points ledger, optional) ---
	var ledger *points.Ledger
	var pg *database.PostgresClient
	if cfg.Database.Postgres.Enabled() {
		err = retryWithBackoff(func() error {
			var err error
			pg, err = database.NewPostgres(cfg.Database.Postgres)
			if err != nil {
				return err
			}
			return pg.Ping(ctx)
		}, 15, 2*time.Second, zapLog, "PostgreSQL connection")
		if err != nil {
			zapLog.Fatal("postgres failed after retries", zap.Error(err))
		}
		defer pg.Close()

		if err := pg.Migrate(ctx); err != nil {
			zapLog.Fatal("points ledger migration failed", zap.Error(err))
		}
		ledger = points.NewLedger(pg.DB)
		zapLog.Info("PostgreSQL connected successfully")
	} else {
		zapLog.Warn("database.postgres.host not set, disposal scans will not award points")
	}

	// --- Redis (image cache tier, optional) ---
	var rdb redis.Cmdable
	var rc *database.RedisClient
	if cfg.Database.Redis.Address != "" {
		err = retryWithBackoff(func() error {
			rc = database.NewRedis(cfg.Database.Redis)
			return rc.Ping(ctx)
		}, 10, 2*time.Second, zapLog, "Redis connection")
		if err != nil {
			zapLog.Fatal("redis failed after retries", zap.Error(err))
		}
		defer rc.Close()
		rdb = rc.Client
		zapLog.Info("Redis connected successfully")
	}

	// --- Workers ---
	var workers []worker.JobWorker
	start := func(taskType string, handler worker.JobHandler) {
		if w := camunda.StartWorker(zeebe.GetClient(), taskType, config.GetWorkerConfig(cfg, taskType), handler, obs, log); w != nil {
			workers = append(workers, w)
		}
	}

	{
		h := er.NewHandler(er.LoadConfig(config.GetWorkerConfig(cfg, er.TaskType)), obs, log)
		start(er.TaskType, h.Handle)
	}
	{
		wcfg := config.GetWorkerConfig(cfg, ed.TaskType)
		var l ed.Ledger
		if ledger != nil {
			l = ledger
		}
		h := ed.NewHandler(ed.LoadConfig(wcfg, ledger != nil), l, obs, log)
		start(ed.TaskType, h.Handle)
	}
	{
		h := sej.NewHandler(sej.LoadConfig(config.GetWorkerConfig(cfg, sej.TaskType)), log)
		start(sej.TaskType, h.Handle)
	}
	if cfg.ImageCache.ServiceURL != "" {
		client := httpclient.NewClient(config.GetDuration(cfg.ImageCache.Timeout), cfg.ImageCache.MaxRetries)
		cache := imagecache.New(
			imagecache.NewHTTPFetcher(client, cfg.ImageCache.ServiceURL),
			rdb,
			imagecache.Config{
				TTL:          time.Duration(cfg.ImageCache.TTL) * time.Second,
				KeyPrefix:    cfg.ImageCache.KeyPrefix,
				FetchTimeout: config.GetDuration(cfg.ImageCache.Timeout),
			},
			log,
		)
		h := gdi.NewHandler(gdi.LoadConfig(config.GetWorkerConfig(cfg, gdi.TaskType), cfg.ImageCache), cache, log)
		start(gdi.TaskType, h.Handle)
	} else {
		zapLog.Warn("image_cache.service_url not set, skipping worker", zap.String("taskType", gdi.TaskType))
	}
	zapLog.Info("Workers registered", zap.Int("count", len(workers)))
	checkRegistry(cfg.App.RegistryPath, []string{er.TaskType, ed.TaskType, sej.TaskType, gdi.TaskType}, zapLog)

	// --- Health & Metrics Server ---
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, http.StatusOK, "healthy", nil)
	})
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		checks := map[string]string{}
		status := http.StatusOK

		check := func(name string, fn func(context.Context) error) {
			if err := fn(r.Context()); err != nil {
				checks[name] = err.Error()
				status = http.StatusServiceUnavailable
				return
			}
			checks[name] = "ok"
		}
		check("zeebe", zeebe.HealthCheck)
		if pg != nil {
			check("postgres", pg.Ping)
		}
		if rc != nil {
			check("redis", rc.Ping)
		}

		label := "ready"
		if status != http.StatusOK {
			label = "not_ready"
		}
		writeStatus(w, status, label, checks)
	})
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:              cfg.Metrics.Address,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		zapLog.Info("Health/Metrics server listening", zap.String("address", cfg.Metrics.Address))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping workers...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, w := range workers {
		w.Close()
	}
	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error stopping health server", zap.Error(err))
	}
	if err := zeebe.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped gracefully")
}

// checkRegistry warns about task types the activity registry does not
// describe. A missing registry is not fatal.
func checkRegistry(path string, taskTypes []string, log *zap.Logger) []string {
	reg, err := registry.LoadRegistry(path)
	if err != nil {
		log.Warn("activity registry not loaded", zap.String("path", path), zap.Error(err))
		return nil
	}
	if err := reg.Validate(); err != nil {
		log.Warn("activity registry is invalid", zap.String("path", path), zap.Error(err))
	}

	var missing []string
	for _, taskType := range taskTypes {
		if _, ok := reg.Find(taskType); !ok {
			missing = append(missing, taskType)
		}
	}
	if len(missing) > 0 {
		log.Warn("task types missing from activity registry", zap.Strings("taskTypes", missing))
	}
	return missing
}

func writeStatus(w http.ResponseWriter, code int, status string, checks map[string]string) {
	body := map[string]interface{}{
		"status": status,
		"time":   time.Now().Format(time.RFC3339),
	}
	if checks != nil {
		body["checks"] = checks
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}
