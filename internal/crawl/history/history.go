// Package history implements the History Store: a persistent, TTL-windowed
// seen-set of article fingerprints across runs, grounded on
// original_source/clawler/history.py.
package history

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"newsmesh/internal/domain/entity"
)

// file is the on-disk schema: fingerprint -> unix seconds first seen.
type file struct {
	Seen      map[string]int64 `json:"seen"`
	UpdatedAt int64            `json:"updated_at"`
}

// Store is a single JSON file recording seen article fingerprints.
type Store struct {
	path   string
	logger *slog.Logger
}

// New creates a Store backed by the JSON file at path.
func New(path string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{path: path, logger: logger.With("component", "history")}
}

func (s *Store) loadRaw() map[string]int64 {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return map[string]int64{}
	}
	var f file
	if err := json.Unmarshal(raw, &f); err != nil {
		s.logger.Warn("history unreadable", "error", err)
		return map[string]int64{}
	}
	if f.Seen == nil {
		return map[string]int64{}
	}
	return f.Seen
}

// saveRaw writes the seen-set via temp-file-then-rename, so a crash or kill
// mid-write never truncates/corrupts the file and silently re-admits
// already-seen articles on the next run.
func (s *Store) saveRaw(seen map[string]int64) {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		s.logger.Warn("history dir create failed", "error", err)
		return
	}
	f := file{Seen: seen, UpdatedAt: time.Now().Unix()}
	raw, err := json.Marshal(f)
	if err != nil {
		s.logger.Warn("history marshal failed", "error", err)
		return
	}

	tmp, err := os.CreateTemp(dir, ".history-*.tmp")
	if err != nil {
		s.logger.Warn("history temp file create failed", "error", err)
		return
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		s.logger.Warn("history write failed", "error", err)
		return
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		s.logger.Warn("history close failed", "error", err)
		return
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		s.logger.Warn("history save failed", "error", err)
	}
}

func fingerprints(a entity.Article) []string {
	fps := []string{a.DedupKey()}
	if tf := a.TitleFingerprint(); tf != "" {
		fps = append(fps, tf)
	}
	return fps
}

// FilterSeen removes any article already recorded within ttl (matched by
// either DedupKey or TitleFingerprint), then records the fingerprints of
// the surviving articles. Expired entries are pruned on every call.
func (s *Store) FilterSeen(articles []entity.Article, ttl time.Duration) []entity.Article {
	seen := s.loadRaw()
	now := time.Now()
	ttlSeconds := int64(ttl.Seconds())

	pruned := make(map[string]int64, len(seen))
	for fp, ts := range seen {
		if now.Unix()-ts < ttlSeconds {
			pruned[fp] = ts
		}
	}
	seen = pruned

	var fresh []entity.Article
	for _, a := range articles {
		fps := fingerprints(a)
		isSeen := false
		for _, fp := range fps {
			if _, ok := seen[fp]; ok {
				isSeen = true
				break
			}
		}
		if isSeen {
			continue
		}
		fresh = append(fresh, a)
		for _, fp := range fps {
			seen[fp] = now.Unix()
		}
	}

	s.saveRaw(seen)
	s.logger.Debug("filtered seen articles", "input", len(articles), "fresh", len(fresh))
	return fresh
}

// Clear deletes the history file. Returns true if a file was removed.
func (s *Store) Clear() bool {
	if err := os.Remove(s.path); err != nil {
		return false
	}
	return true
}

// Stats describes the current contents of the history store.
type Stats struct {
	TotalEntries   int
	ActiveEntries  int
	ExpiredEntries int
	OldestAge      time.Duration
}

// Stats returns total/active/expired entry counts and the oldest active
// entry's age, for operator visibility.
func (s *Store) Stats(ttl time.Duration) Stats {
	seen := s.loadRaw()
	now := time.Now().Unix()
	ttlSeconds := int64(ttl.Seconds())

	active := 0
	var oldest int64
	hasOldest := false
	for _, ts := range seen {
		if now-ts < ttlSeconds {
			active++
			if !hasOldest || ts < oldest {
				oldest = ts
				hasOldest = true
			}
		}
	}

	var oldestAge time.Duration
	if hasOldest {
		oldestAge = time.Duration(now-oldest) * time.Second
	}

	return Stats{
		TotalEntries:   len(seen),
		ActiveEntries:  active,
		ExpiredEntries: len(seen) - active,
		OldestAge:      oldestAge,
	}
}
