// Package health tracks per-source crawl success/failure counts and latency
// samples, exposing a success-rate modifier downstream filters can use as
// an optional quality weight. Grounded on original_source/clawler/health.py,
// persisted as JSON the way the teacher persists its own small state files.
package health

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

const maxSamples = 50

// Record is the per-source health state, JSON-persisted.
type Record struct {
	TotalCrawls     int        `json:"total_crawls"`
	Failures        int        `json:"failures"`
	TotalArticles   int        `json:"total_articles"`
	LastSuccess     *time.Time `json:"last_success,omitempty"`
	ResponseTimesMS []float64  `json:"response_times_ms,omitempty"`
	RetriesUsed     int        `json:"retries_used,omitempty"`
}

// successRate returns 1.0 when no crawls have been recorded yet, matching
// the Python tracker's "unknown source is healthy" default.
func (r *Record) successRate() float64 {
	if r.TotalCrawls == 0 {
		return 1.0
	}
	return 1.0 - float64(r.Failures)/float64(r.TotalCrawls)
}

// Tracker is the in-memory, optionally JSON-persisted source health table.
// All methods are safe for concurrent use. The scheduler records into it
// from the goroutine that called Crawl, after every source task has finished.
type Tracker struct {
	mu     sync.Mutex
	data   map[string]*Record
	path   string
	logger *slog.Logger
}

// New creates a Tracker backed by the JSON file at path (may be empty to
// stay purely in-memory). Any existing file is loaded immediately;
// load failures are logged and treated as an empty tracker.
func New(path string, logger *slog.Logger) *Tracker {
	if logger == nil {
		logger = slog.Default()
	}
	t := &Tracker{data: make(map[string]*Record), path: path, logger: logger.With("component", "health")}
	t.load()
	return t
}

func (t *Tracker) load() {
	if t.path == "" {
		return
	}
	raw, err := os.ReadFile(t.path)
	if err != nil {
		if !os.IsNotExist(err) {
			t.logger.Debug("could not load health data", "error", err)
		}
		return
	}
	var data map[string]*Record
	if err := json.Unmarshal(raw, &data); err != nil {
		t.logger.Debug("could not parse health data", "error", err)
		return
	}
	t.data = data
}

// Save persists the tracker state to its configured path via write-then-
// rename, matching the teacher's atomic-write convention for small state
// files. A no-op when the tracker has no path.
func (t *Tracker) Save() error {
	if t.path == "" {
		return nil
	}
	t.mu.Lock()
	raw, err := json.MarshalIndent(t.data, "", "  ")
	t.mu.Unlock()
	if err != nil {
		t.logger.Debug("could not marshal health data", "error", err)
		return err
	}

	dir := filepath.Dir(t.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.logger.Debug("could not create health dir", "error", err)
		return err
	}
	tmp, err := os.CreateTemp(dir, ".health-*.tmp")
	if err != nil {
		t.logger.Debug("could not create temp health file", "error", err)
		return err
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, t.path); err != nil {
		os.Remove(tmpPath)
		t.logger.Debug("could not save health data", "error", err)
		return err
	}
	return nil
}

func (t *Tracker) ensure(source string) *Record {
	if r, ok := t.data[source]; ok {
		return r
	}
	r := &Record{}
	t.data[source] = r
	return r
}

// RecordSuccess registers a successful crawl: article count, optional
// response latency (ring-buffered at the last 50 samples), and any retries
// consumed getting there.
func (t *Tracker) RecordSuccess(source string, articleCount int, latency time.Duration, retriesUsed int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	r := t.ensure(source)
	r.TotalCrawls++
	r.TotalArticles += articleCount
	now := time.Now().UTC()
	r.LastSuccess = &now
	if retriesUsed > 0 {
		r.RetriesUsed += retriesUsed
	}
	if latency > 0 {
		ms := float64(latency.Microseconds()) / 1000.0
		r.ResponseTimesMS = append(r.ResponseTimesMS, ms)
		if len(r.ResponseTimesMS) > maxSamples {
			r.ResponseTimesMS = r.ResponseTimesMS[len(r.ResponseTimesMS)-maxSamples:]
		}
	}
}

// RecordFailure registers a failed crawl attempt.
func (t *Tracker) RecordFailure(source string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	r := t.ensure(source)
	r.TotalCrawls++
	r.Failures++
}

// lookup finds a source's record by exact match, then case-insensitive
// match, matching the Python tracker's lookup fallback.
func (t *Tracker) lookup(source string) *Record {
	if r, ok := t.data[source]; ok {
		return r
	}
	lower := strings.ToLower(source)
	for key, r := range t.data {
		if strings.ToLower(key) == lower {
			return r
		}
	}
	return nil
}

// Modifier returns a success-rate-based quality weight in {0.5, 0.8, 1.0}.
// An unknown source, or one with no recorded crawls yet, is assumed healthy.
func (t *Tracker) Modifier(source string) float64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	r := t.lookup(source)
	if r == nil {
		return 1.0
	}
	rate := r.successRate()
	switch {
	case rate < 0.5:
		return 0.5
	case rate < 0.8:
		return 0.8
	default:
		return 1.0
	}
}

// SummaryEntry is one source's derived health snapshot.
type SummaryEntry struct {
	Source       string     `json:"source"`
	TotalCrawls  int        `json:"total_crawls"`
	Failures     int        `json:"failures"`
	SuccessRate  float64    `json:"success_rate"`
	AvgArticles  float64    `json:"avg_articles"`
	LastSuccess  *time.Time `json:"last_success,omitempty"`
}

func (t *Tracker) summary() []SummaryEntry {
	entries := make([]SummaryEntry, 0, len(t.data))
	for source, r := range t.data {
		successes := r.TotalCrawls - r.Failures
		avgArticles := 0.0
		if successes > 0 {
			avgArticles = float64(r.TotalArticles) / float64(successes)
		}
		entries = append(entries, SummaryEntry{
			Source:      source,
			TotalCrawls: r.TotalCrawls,
			Failures:    r.Failures,
			SuccessRate: r.successRate(),
			AvgArticles: avgArticles,
			LastSuccess: r.LastSuccess,
		})
	}
	return entries
}

// Report returns the per-source health summary sorted ascending by success
// rate, worst sources first — an operator-facing view grounded on
// health.py's get_report.
func (t *Tracker) Report() []SummaryEntry {
	t.mu.Lock()
	defer t.mu.Unlock()

	entries := t.summary()
	sort.Slice(entries, func(i, j int) bool { return entries[i].SuccessRate < entries[j].SuccessRate })
	return entries
}

// TimingEntry is one source's latency percentile snapshot.
type TimingEntry struct {
	Source  string  `json:"source"`
	AvgMS   float64 `json:"avg_ms"`
	MinMS   float64 `json:"min_ms"`
	MaxMS   float64 `json:"max_ms"`
	P50MS   float64 `json:"p50_ms"`
	P95MS   float64 `json:"p95_ms"`
	P99MS   float64 `json:"p99_ms"`
	Samples int     `json:"samples"`
}

// percentile computes the p-th percentile (0-100) of a pre-sorted slice via
// classic linear interpolation, matching health.py's _percentile exactly.
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	k := float64(len(sorted)-1) * (p / 100.0)
	f := int(k)
	c := f + 1
	if c >= len(sorted) {
		return sorted[len(sorted)-1]
	}
	d := k - float64(f)
	return sorted[f] + d*(sorted[c]-sorted[f])
}

// TimingReport returns sources sorted slowest-average-first, each with
// avg/min/max and p50/p95/p99 latency, grounded on health.py's
// get_timing_report.
func (t *Tracker) TimingReport() []TimingEntry {
	t.mu.Lock()
	defer t.mu.Unlock()

	entries := make([]TimingEntry, 0, len(t.data))
	for source, r := range t.data {
		if len(r.ResponseTimesMS) == 0 {
			continue
		}
		sorted := append([]float64(nil), r.ResponseTimesMS...)
		sort.Float64s(sorted)

		var sum, min, max float64
		min = sorted[0]
		max = sorted[0]
		for _, v := range sorted {
			sum += v
			if v < min {
				min = v
			}
			if v > max {
				max = v
			}
		}

		entries = append(entries, TimingEntry{
			Source:  source,
			AvgMS:   sum / float64(len(sorted)),
			MinMS:   min,
			MaxMS:   max,
			P50MS:   percentile(sorted, 50),
			P95MS:   percentile(sorted, 95),
			P99MS:   percentile(sorted, 99),
			Samples: len(sorted),
		})
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].AvgMS > entries[j].AvgMS })
	return entries
}
