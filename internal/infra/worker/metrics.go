package worker

import (
	"newsmesh/internal/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// WorkerMetrics provides Prometheus metrics for the cron-driven crawl
// daemon. It embeds the standard ConfigMetrics for configuration monitoring
// and adds crawl-run metrics: sources crawled, articles left after dedup
// and the history filter, and run duration/outcome.
//
// Embedded metrics (from ConfigMetrics):
//   - worker_config_load_timestamp: Unix timestamp of last configuration load
//   - worker_config_validation_errors_total: Total validation errors by field
//   - worker_config_fallbacks_total: Total fallback operations by field
//   - worker_config_fallback_active: 1 if any fallback active, 0 otherwise
//
// Crawl-run metrics:
//   - worker_cron_job_runs_total: Total crawl runs by status (success/failure)
//   - worker_cron_job_duration_seconds: Duration histogram of a crawl run
//   - worker_cron_job_sources_crawled_total: Total sources crawled across runs
//   - worker_cron_job_articles_ingested_total: Total articles kept after dedup and history filtering
//   - worker_cron_job_last_success_timestamp: Unix timestamp of last successful run
type WorkerMetrics struct {
	// Embedded configuration metrics
	*config.ConfigMetrics

	// CronJobRunsTotal counts the total number of crawl runs.
	// Labels: status (success, failure)
	CronJobRunsTotal *prometheus.CounterVec

	// CronJobDurationSeconds measures the duration of a crawl run.
	// Buckets: 1s, 5s, 30s, 1m, 5m, 15m, 30m
	CronJobDurationSeconds prometheus.Histogram

	// CronJobSourcesCrawledTotal counts sources crawled across all runs,
	// regardless of whether the individual source attempt succeeded.
	CronJobSourcesCrawledTotal prometheus.Counter

	// CronJobArticlesIngestedTotal counts articles retained after dedup and
	// the history filter, across all runs.
	CronJobArticlesIngestedTotal prometheus.Counter

	// CronJobLastSuccessTimestamp records the Unix timestamp of the last
	// successful crawl run.
	CronJobLastSuccessTimestamp prometheus.Gauge
}

// NewWorkerMetrics creates a new WorkerMetrics instance with all metrics initialized.
// Metrics are created but not registered with Prometheus. Call MustRegister() to register.
//
// Returns:
//   - *WorkerMetrics: Initialized metrics ready for registration
//
// Example:
//
//	metrics := NewWorkerMetrics()
//	metrics.MustRegister()  // Register with Prometheus
func NewWorkerMetrics() *WorkerMetrics {
	return &WorkerMetrics{
		ConfigMetrics: config.NewConfigMetrics("worker"),

		CronJobRunsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "worker_cron_job_runs_total",
			Help: "Total number of cron job runs by status (success/failure)",
		}, []string{"status"}),

		CronJobDurationSeconds: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "worker_cron_job_duration_seconds",
			Help:    "Duration of cron job execution in seconds",
			Buckets: []float64{1, 5, 30, 60, 300, 900, 1800}, // 1s, 5s, 30s, 1m, 5m, 15m, 30m
		}),

		CronJobSourcesCrawledTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "worker_cron_job_sources_crawled_total",
			Help: "Total number of sources crawled across all crawl runs",
		}),

		CronJobArticlesIngestedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "worker_cron_job_articles_ingested_total",
			Help: "Total number of articles retained after dedup and history filtering across all crawl runs",
		}),

		CronJobLastSuccessTimestamp: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "worker_cron_job_last_success_timestamp",
			Help: "Unix timestamp of the last successful cron job run",
		}),
	}
}

// MustRegister is a no-op method for API compatibility.
// Metrics are automatically registered via promauto when created in NewWorkerMetrics.
//
// This method exists to maintain consistency with the expected metrics initialization pattern:
//
//	metrics := NewWorkerMetrics()
//	metrics.MustRegister()
//
// Even though registration happens automatically, this explicit call makes the
// initialization intent clear and maintains compatibility with future changes.
func (m *WorkerMetrics) MustRegister() {
	// No-op: metrics are auto-registered via promauto
}

// RecordJobRun increments the job run counter for the given status.
// Status should be either "success" or "failure".
//
// Parameters:
//   - status: Job execution status ("success" or "failure")
//
// Example:
//
//	if err := runJob(); err != nil {
//	    metrics.RecordJobRun("failure")
//	} else {
//	    metrics.RecordJobRun("success")
//	}
func (m *WorkerMetrics) RecordJobRun(status string) {
	m.CronJobRunsTotal.WithLabelValues(status).Inc()
}

// RecordJobDuration observes the duration of a cron job execution.
// Duration should be in seconds.
//
// Parameters:
//   - seconds: Job execution duration in seconds
//
// Example:
//
//	start := time.Now()
//	// ... execute job ...
//	duration := time.Since(start).Seconds()
//	metrics.RecordJobDuration(duration)
func (m *WorkerMetrics) RecordJobDuration(seconds float64) {
	m.CronJobDurationSeconds.Observe(seconds)
}

// RecordSourcesCrawled adds the number of sources crawled to the total counter.
func (m *WorkerMetrics) RecordSourcesCrawled(count int) {
	m.CronJobSourcesCrawledTotal.Add(float64(count))
}

// RecordArticlesIngested adds the number of articles retained after dedup
// and the history filter to the total counter.
func (m *WorkerMetrics) RecordArticlesIngested(count int) {
	m.CronJobArticlesIngestedTotal.Add(float64(count))
}

// RecordLastSuccess records the current time as the last successful job completion.
//
// Example:
//
//	if err := runJob(); err == nil {
//	    metrics.RecordLastSuccess()
//	}
func (m *WorkerMetrics) RecordLastSuccess() {
	m.CronJobLastSuccessTimestamp.SetToCurrentTime()
}
