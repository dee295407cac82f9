package health

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTracker_Modifier_UnknownSourceIsHealthy(t *testing.T) {
	tr := New("", nil)
	assert.Equal(t, 1.0, tr.Modifier("ghost"))
}

func TestTracker_Modifier_Thresholds(t *testing.T) {
	tr := New("", nil)
	for i := 0; i < 10; i++ {
		tr.RecordSuccess("good", 5, 10*time.Millisecond, 0)
	}
	assert.Equal(t, 1.0, tr.Modifier("good"))

	for i := 0; i < 3; i++ {
		tr.RecordSuccess("mid", 5, 10*time.Millisecond, 0)
	}
	for i := 0; i < 2; i++ {
		tr.RecordFailure("mid")
	}
	assert.Equal(t, 0.8, tr.Modifier("mid"))

	tr.RecordSuccess("bad", 1, time.Millisecond, 0)
	for i := 0; i < 3; i++ {
		tr.RecordFailure("bad")
	}
	assert.Equal(t, 0.5, tr.Modifier("bad"))
}

func TestTracker_Modifier_CaseInsensitiveLookup(t *testing.T) {
	tr := New("", nil)
	tr.RecordSuccess("HackerNews", 10, time.Millisecond, 0)
	assert.Equal(t, 1.0, tr.Modifier("hackernews"))
}

func TestTracker_TimingReport_SlowestFirst(t *testing.T) {
	tr := New("", nil)
	tr.RecordSuccess("fast", 1, 5*time.Millisecond, 0)
	tr.RecordSuccess("slow", 1, 500*time.Millisecond, 0)

	report := tr.TimingReport()
	require.Len(t, report, 2)
	assert.Equal(t, "slow", report[0].Source)
	assert.Equal(t, "fast", report[1].Source)
}

func TestTracker_Report_WorstSuccessRateFirst(t *testing.T) {
	tr := New("", nil)
	tr.RecordSuccess("great", 1, 0, 0)
	tr.RecordSuccess("meh", 1, 0, 0)
	tr.RecordFailure("meh")

	report := tr.Report()
	require.Len(t, report, 2)
	assert.Equal(t, "meh", report[0].Source)
	assert.Equal(t, "great", report[1].Source)
}

func TestTracker_SaveAndReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "health.json")

	tr := New(path, nil)
	tr.RecordSuccess("rss", 3, 20*time.Millisecond, 1)
	require.NoError(t, tr.Save())

	reloaded := New(path, nil)
	assert.Equal(t, 1.0, reloaded.Modifier("rss"))
	report := reloaded.Report()
	require.Len(t, report, 1)
	assert.Equal(t, 1, report[0].TotalCrawls)
	assert.Equal(t, 3.0, report[0].AvgArticles)
}

func TestPercentile_LinearInterpolation(t *testing.T) {
	sorted := []float64{10, 20, 30, 40, 50}
	assert.InDelta(t, 30, percentile(sorted, 50), 0.01)
	assert.InDelta(t, 48, percentile(sorted, 95), 0.01)
	assert.InDelta(t, 50, percentile(sorted, 100), 0.01)
}
