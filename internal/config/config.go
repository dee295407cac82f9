// Package config holds the crawl daemon's top-level configuration: cron
// schedule, per-source concurrency and timeout tuning, dedup/story
// thresholds, and the cache/history/health state paths. Grounded on the
// teacher's internal/infra/worker.LoadConfigFromEnv fail-open pattern,
// generalized from one config struct's worth of fields to the full crawl
// pipeline's tuning surface.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"newsmesh/internal/domain/entity"
	pkgconfig "newsmesh/internal/pkg/config"
)

// Config is the daemon's full runtime configuration.
type Config struct {
	// Scheduling
	CronSchedule string
	Timezone     string

	// Crawl Scheduler
	MaxWorkers    int
	SourceTimeout time.Duration
	RunTimeout    time.Duration
	Retries       int
	RetryJitter   float64

	// HTTP Fetcher
	HTTPTimeout    time.Duration
	HTTPMaxRetries int

	// Dedup Engine / Story Clusterer
	DedupThreshold float64
	DedupEnabled   bool
	StoryThreshold float64

	// Result Cache
	CacheEnabled bool
	CacheTTL     time.Duration
	CacheDir     string

	// History Store
	HistoryEnabled bool
	HistoryTTL     time.Duration

	// Shared state
	StateDir   string
	HealthPath string

	// Health check HTTP server
	HealthPort int
}

// DefaultConfig returns production-ready defaults.
func DefaultConfig() Config {
	return Config{
		CronSchedule: "30 5 * * *",
		Timezone:     "UTC",

		MaxWorkers:    6,
		SourceTimeout: 60 * time.Second,
		RunTimeout:    30 * time.Minute,
		Retries:       1,
		RetryJitter:   0.5,

		HTTPTimeout:    15 * time.Second,
		HTTPMaxRetries: 3,

		DedupThreshold: 0.75,
		DedupEnabled:   true,
		StoryThreshold: 0.65,

		CacheEnabled: true,
		CacheTTL:     30 * time.Minute,
		CacheDir:     "./state/cache",

		HistoryEnabled: true,
		HistoryTTL:     72 * time.Hour,

		StateDir:   "./state",
		HealthPath: "./state/health.json",

		HealthPort: 9091,
	}
}

// Validate checks every field using the shared pkg/config validators,
// wrapping each failure in an *entity.ValidationError and aggregating all
// of them with errors.Join.
func (c *Config) Validate() error {
	var errs []error

	field := func(name string, err error) {
		if err != nil {
			errs = append(errs, &entity.ValidationError{Field: name, Message: err.Error()})
		}
	}

	field("cron_schedule", pkgconfig.ValidateCronSchedule(c.CronSchedule))
	field("timezone", pkgconfig.ValidateTimezone(c.Timezone))
	field("max_workers", pkgconfig.ValidateIntRange(c.MaxWorkers, 1, 64))
	field("source_timeout", pkgconfig.ValidatePositiveDuration(c.SourceTimeout))
	field("run_timeout", pkgconfig.ValidatePositiveDuration(c.RunTimeout))
	field("retries", pkgconfig.ValidateIntRange(c.Retries, 0, 10))
	field("retry_jitter", pkgconfig.ValidateFloatRange(c.RetryJitter, 0, 1))
	field("http_timeout", pkgconfig.ValidatePositiveDuration(c.HTTPTimeout))
	field("http_max_retries", pkgconfig.ValidateIntRange(c.HTTPMaxRetries, 0, 10))
	field("dedup_threshold", pkgconfig.ValidateFloatRange(c.DedupThreshold, 0, 1))
	field("story_threshold", pkgconfig.ValidateFloatRange(c.StoryThreshold, 0, 1))
	field("cache_ttl", pkgconfig.ValidatePositiveDuration(c.CacheTTL))
	field("history_ttl", pkgconfig.ValidatePositiveDuration(c.HistoryTTL))
	field("health_port", pkgconfig.ValidateIntRange(c.HealthPort, 1024, 65535))

	if len(errs) > 0 {
		return fmt.Errorf("validation failed: %w", errors.Join(errs...))
	}
	return nil
}

// Metrics is the subset of pkg/config.ConfigMetrics behavior LoadConfigFromEnv
// needs, satisfied by *pkgconfig.ConfigMetrics.
type Metrics interface {
	RecordValidationError(field string)
	RecordFallback(field, fallbackType string)
	SetFallbackActive(field string, active bool)
	RecordLoadTimestamp()
}

// LoadConfigFromEnv loads configuration from environment variables with
// validation and fail-open fallback to DefaultConfig() on any invalid
// value: configuration failures never abort daemon startup on their own,
// they only downgrade a field and log a warning. The error return always
// carries nil, kept for symmetry with the rest of the daemon's startup
// sequence (profile loading is the one path that genuinely fails, since
// it reads an explicit user-provided file rather than ambient env tuning).
func LoadConfigFromEnv(logger *slog.Logger, metrics Metrics) (*Config, error) {
	cfg := DefaultConfig()
	fellBack := false

	apply := func(field string, fallback bool, warnings []string) {
		if !fallback {
			return
		}
		fellBack = true
		metrics.RecordValidationError(field)
		metrics.RecordFallback(field, "default")
		for _, w := range warnings {
			logger.Warn("configuration fallback applied", "field", field, "warning", w)
		}
	}

	r := pkgconfig.LoadEnvWithFallback("CRON_SCHEDULE", cfg.CronSchedule, pkgconfig.ValidateCronSchedule)
	cfg.CronSchedule = r.Value.(string)
	apply("cron_schedule", r.FallbackApplied, r.Warnings)

	r = pkgconfig.LoadEnvWithFallback("TZ", cfg.Timezone, pkgconfig.ValidateTimezone)
	cfg.Timezone = r.Value.(string)
	apply("timezone", r.FallbackApplied, r.Warnings)

	ir := pkgconfig.LoadEnvInt("MAX_WORKERS", cfg.MaxWorkers, func(v int) error { return pkgconfig.ValidateIntRange(v, 1, 64) })
	cfg.MaxWorkers = ir.Value.(int)
	apply("max_workers", ir.FallbackApplied, ir.Warnings)

	dr := pkgconfig.LoadEnvDuration("SOURCE_TIMEOUT", cfg.SourceTimeout, pkgconfig.ValidatePositiveDuration)
	cfg.SourceTimeout = dr.Value.(time.Duration)
	apply("source_timeout", dr.FallbackApplied, dr.Warnings)

	dr = pkgconfig.LoadEnvDuration("RUN_TIMEOUT", cfg.RunTimeout, pkgconfig.ValidatePositiveDuration)
	cfg.RunTimeout = dr.Value.(time.Duration)
	apply("run_timeout", dr.FallbackApplied, dr.Warnings)

	ir = pkgconfig.LoadEnvInt("RETRIES", cfg.Retries, func(v int) error { return pkgconfig.ValidateIntRange(v, 0, 10) })
	cfg.Retries = ir.Value.(int)
	apply("retries", ir.FallbackApplied, ir.Warnings)

	fr := pkgconfig.LoadEnvFloat("RETRY_JITTER", cfg.RetryJitter, func(v float64) error { return pkgconfig.ValidateFloatRange(v, 0, 1) })
	cfg.RetryJitter = fr.Value.(float64)
	apply("retry_jitter", fr.FallbackApplied, fr.Warnings)

	dr = pkgconfig.LoadEnvDuration("HTTP_TIMEOUT", cfg.HTTPTimeout, pkgconfig.ValidatePositiveDuration)
	cfg.HTTPTimeout = dr.Value.(time.Duration)
	apply("http_timeout", dr.FallbackApplied, dr.Warnings)

	ir = pkgconfig.LoadEnvInt("HTTP_MAX_RETRIES", cfg.HTTPMaxRetries, func(v int) error { return pkgconfig.ValidateIntRange(v, 0, 10) })
	cfg.HTTPMaxRetries = ir.Value.(int)
	apply("http_max_retries", ir.FallbackApplied, ir.Warnings)

	fr = pkgconfig.LoadEnvFloat("DEDUP_THRESHOLD", cfg.DedupThreshold, func(v float64) error { return pkgconfig.ValidateFloatRange(v, 0, 1) })
	cfg.DedupThreshold = fr.Value.(float64)
	apply("dedup_threshold", fr.FallbackApplied, fr.Warnings)

	br := pkgconfig.LoadEnvBool("DEDUP_ENABLED", cfg.DedupEnabled)
	cfg.DedupEnabled = br.Value.(bool)
	apply("dedup_enabled", br.FallbackApplied, br.Warnings)

	fr = pkgconfig.LoadEnvFloat("STORY_THRESHOLD", cfg.StoryThreshold, func(v float64) error { return pkgconfig.ValidateFloatRange(v, 0, 1) })
	cfg.StoryThreshold = fr.Value.(float64)
	apply("story_threshold", fr.FallbackApplied, fr.Warnings)

	br = pkgconfig.LoadEnvBool("CACHE_ENABLED", cfg.CacheEnabled)
	cfg.CacheEnabled = br.Value.(bool)
	apply("cache_enabled", br.FallbackApplied, br.Warnings)

	dr = pkgconfig.LoadEnvDuration("CACHE_TTL", cfg.CacheTTL, pkgconfig.ValidatePositiveDuration)
	cfg.CacheTTL = dr.Value.(time.Duration)
	apply("cache_ttl", dr.FallbackApplied, dr.Warnings)

	cfg.CacheDir = pkgconfig.LoadEnvString("CACHE_DIR", cfg.CacheDir)

	br = pkgconfig.LoadEnvBool("HISTORY_ENABLED", cfg.HistoryEnabled)
	cfg.HistoryEnabled = br.Value.(bool)
	apply("history_enabled", br.FallbackApplied, br.Warnings)

	dr = pkgconfig.LoadEnvDuration("HISTORY_TTL", cfg.HistoryTTL, pkgconfig.ValidatePositiveDuration)
	cfg.HistoryTTL = dr.Value.(time.Duration)
	apply("history_ttl", dr.FallbackApplied, dr.Warnings)

	cfg.StateDir = pkgconfig.LoadEnvString("STATE_DIR", cfg.StateDir)
	cfg.HealthPath = pkgconfig.LoadEnvString("HEALTH_PATH", cfg.HealthPath)

	ir = pkgconfig.LoadEnvInt("HEALTH_PORT", cfg.HealthPort, func(v int) error { return pkgconfig.ValidateIntRange(v, 1024, 65535) })
	cfg.HealthPort = ir.Value.(int)
	apply("health_port", ir.FallbackApplied, ir.Warnings)

	metrics.SetFallbackActive("", fellBack)
	metrics.RecordLoadTimestamp()

	return &cfg, nil
}
