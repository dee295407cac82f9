// Command newsmeshd is the cron-driven crawl daemon: on each tick it runs
// the Crawl Scheduler (fan-out across every registered Source, dedup,
// optional result caching), filters out articles already seen in a prior
// run via the History Store, clusters what remains into Stories, and logs
// a summary. It carries no HTTP article API, no auth, and no database —
// those are deliberately outside this repo's scope.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"newsmesh/internal/config"
	"newsmesh/internal/crawl/cache"
	"newsmesh/internal/crawl/fetcher"
	"newsmesh/internal/crawl/health"
	"newsmesh/internal/crawl/history"
	"newsmesh/internal/crawl/scheduler"
	"newsmesh/internal/crawl/sources"
	"newsmesh/internal/crawl/stories"
	workerPkg "newsmesh/internal/infra/worker"
	"newsmesh/internal/observability/logging"
	obsmetrics "newsmesh/internal/observability/metrics"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	logger := initLogger()

	metrics := workerPkg.NewWorkerMetrics()
	metrics.MustRegister()

	cfg, err := config.LoadConfigFromEnv(logger, metrics)
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded",
		slog.String("cron_schedule", cfg.CronSchedule),
		slog.String("timezone", cfg.Timezone),
		slog.Int("max_workers", cfg.MaxWorkers),
		slog.Float64("dedup_threshold", cfg.DedupThreshold))

	if err := os.MkdirAll(cfg.StateDir, 0o755); err != nil {
		logger.Error("failed to create state directory", slog.Any("error", err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	engine := buildEngine(logger, cfg)

	healthAddr := fmt.Sprintf(":%d", cfg.HealthPort)
	healthServer := workerPkg.NewHealthServer(healthAddr, logger)
	go func() {
		if err := healthServer.Start(ctx); err != nil && err != http.ErrServerClosed {
			logger.Error("health server failed", slog.Any("error", err))
		}
	}()
	go startMetricsServer(ctx, logger)

	startCron(ctx, logger, engine, cfg, metrics, healthServer)
}

// initLogger builds the process-wide JSON logger, honoring LOG_LEVEL.
func initLogger() *slog.Logger {
	logger := logging.NewLogger()
	slog.SetDefault(logger)
	return logger
}

// startMetricsServer exposes the Prometheus /metrics endpoint on :2112,
// matching the port convention of a sidecar-scraped process.
func startMetricsServer(ctx context.Context, logger *slog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: ":2112", Handler: mux}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("metrics server starting", slog.String("addr", srv.Addr))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("metrics server failed", slog.Any("error", err))
	}
}

// engine bundles the pipeline stages one crawl tick exercises.
type engine struct {
	scheduler *scheduler.Scheduler
	history   *history.Store
	health    *health.Tracker
	cfg       *config.Config
	logger    *slog.Logger
}

func buildEngine(logger *slog.Logger, cfg *config.Config) *engine {
	feedFetcher := fetcher.New(fetcher.Config{
		Timeout:         cfg.HTTPTimeout,
		MaxRetries:      cfg.HTTPMaxRetries,
		RetryJitter:     cfg.RetryJitter,
		RequestsPerHost: 2,
		BurstPerHost:    4,
		Profile:         "feed",
	}, logger)
	scraperFetcher := fetcher.New(fetcher.Config{
		Timeout:         cfg.HTTPTimeout,
		MaxRetries:      cfg.HTTPMaxRetries,
		RetryJitter:     cfg.RetryJitter,
		RequestsPerHost: 2,
		BurstPerHost:    4,
		Profile:         "scraper",
	}, logger)

	srcs, err := sources.DefaultRegistry(feedFetcher, scraperFetcher, logger)
	if err != nil {
		logger.Error("failed to build source registry", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("source registry built", slog.Int("count", len(srcs)))

	healthTracker := health.New(cfg.HealthPath, logger)

	var resultCache *cache.Cache
	if cfg.CacheEnabled {
		resultCache = cache.New(cfg.CacheDir, logger)
	}

	schedulerCfg := scheduler.Config{
		MaxWorkers:     cfg.MaxWorkers,
		SourceTimeout:  cfg.SourceTimeout,
		Retries:        cfg.Retries,
		RetryJitter:    cfg.RetryJitter,
		DedupThreshold: cfg.DedupThreshold,
		DedupEnabled:   cfg.DedupEnabled,
		CacheEnabled:   cfg.CacheEnabled,
		CacheTTL:       cfg.CacheTTL,
	}
	sched := scheduler.New(srcs, healthTracker, resultCache, schedulerCfg, logger)

	var historyStore *history.Store
	if cfg.HistoryEnabled {
		historyStore = history.New(filepath.Join(cfg.StateDir, "history.json"), logger)
	}

	return &engine{scheduler: sched, history: historyStore, health: healthTracker, cfg: cfg, logger: logger}
}

// run executes one crawl tick: scheduler (which internally dedups), then
// the history filter-seen pass, then story clustering, per the pipeline's
// scheduler -> dedup -> history -> stories data flow.
func (e *engine) run(ctx context.Context, metrics *workerPkg.WorkerMetrics) {
	start := time.Now()
	runID := start.UTC().Format("20060102T150405.000Z")
	ctx = logging.WithRunID(ctx, runID)
	log := logging.WithRunIDLogger(ctx, e.logger)

	log.Info("crawl started")

	articles, stats, dedupStats := e.scheduler.Crawl(ctx)
	log.Info("crawl fan-out complete",
		slog.Int("sources", len(stats)),
		slog.String("dedup", dedupStats.Summary()))

	if e.history != nil {
		before := len(articles)
		articles = e.history.FilterSeen(articles, e.cfg.HistoryTTL)
		obsmetrics.HistorySeenFilteredTotal.Add(float64(before - len(articles)))
		log.Info("history filter applied",
			slog.Int("before", before), slog.Int("after", len(articles)))
	}

	clustered := stories.Cluster(articles, e.cfg.StoryThreshold)
	obsmetrics.StoriesClusteredTotal.Set(float64(len(clustered)))

	duration := time.Since(start)
	metrics.RecordJobRun("success")
	metrics.RecordJobDuration(duration.Seconds())
	metrics.RecordSourcesCrawled(len(stats))
	metrics.RecordArticlesIngested(len(articles))
	metrics.RecordLastSuccess()

	log.Info("crawl completed",
		slog.Int("articles", len(articles)),
		slog.Int("stories", len(clustered)),
		slog.Duration("duration", duration))

	healthy, unhealthy := 0, 0
	for _, entry := range e.health.Report() {
		log.Debug("source health",
			slog.String("source", entry.Source),
			slog.Float64("success_rate", entry.SuccessRate))
		if entry.SuccessRate >= 0.5 {
			healthy++
		} else {
			unhealthy++
		}
	}
	obsmetrics.SourcesHealthyTotal.Set(float64(healthy))
	obsmetrics.SourcesUnhealthyTotal.Set(float64(unhealthy))
}

// startCron wires one cron tick to one engine.run call, matching the
// teacher's single-job-per-tick worker loop.
func startCron(ctx context.Context, logger *slog.Logger, e *engine, cfg *config.Config, metrics *workerPkg.WorkerMetrics, healthServer *workerPkg.HealthServer) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		logger.Error("invalid timezone, using UTC", slog.String("timezone", cfg.Timezone), slog.Any("error", err))
		loc = time.UTC
	}
	c := cron.New(cron.WithLocation(loc))

	_, err = c.AddFunc(cfg.CronSchedule, func() {
		runCtx, cancel := context.WithTimeout(ctx, cfg.RunTimeout)
		defer cancel()
		e.run(runCtx, metrics)
	})
	if err != nil {
		logger.Error("failed to register cron job", slog.Any("error", err))
		os.Exit(1)
	}
	c.Start()
	defer c.Stop()

	healthServer.SetReady(true)
	logger.Info("daemon started", slog.String("schedule", cfg.CronSchedule), slog.String("timezone", cfg.Timezone))

	<-ctx.Done()
	logger.Info("shutdown signal received")
}
