// Package cache implements the Result Cache: a fingerprinted on-disk cache
// of an entire crawl result with a TTL, grounded on
// original_source/clawler/cache.py and the teacher's atomic write-then-
// rename convention for small JSON state files.
package cache

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"newsmesh/internal/domain/entity"
	"newsmesh/internal/domain/urlnorm"
)

// Key derives the deterministic cache key for a set of enabled sources and
// a dedup threshold: md5(sorted(names)|threshold)[:12].
func Key(sourceNames []string, dedupThreshold float64) string {
	raw := urlnorm.SortedJoin(sourceNames, ",") + "|" + strconv.FormatFloat(dedupThreshold, 'f', -1, 64)
	sum := md5.Sum([]byte(raw))
	return hex.EncodeToString(sum[:])[:12]
}

// entry is the on-disk cache file schema.
type entry struct {
	CachedAt int64             `json:"cached_at"`
	Stats    map[string]int    `json:"stats"`
	Articles []entity.Article  `json:"articles"`
}

// Cache is a directory of JSON cache files, one per key.
type Cache struct {
	dir    string
	logger *slog.Logger
}

// New creates a Cache rooted at dir. dir is created lazily on first Save.
func New(dir string, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{dir: dir, logger: logger.With("component", "cache")}
}

func (c *Cache) path(key string) string {
	return filepath.Join(c.dir, key+".json")
}

// Load returns the cached articles and stats for key if present and no
// older than ttl, or ok=false on any miss, staleness, or read/parse error.
// Each decoded article has ApplyDefaults called so an older cache schema
// missing a field still decodes forward-compatibly.
func (c *Cache) Load(key string, ttl time.Duration) (articles []entity.Article, stats map[string]int, ok bool) {
	raw, err := os.ReadFile(c.path(key))
	if err != nil {
		return nil, nil, false
	}

	var e entry
	if err := json.Unmarshal(raw, &e); err != nil {
		c.logger.Debug("cache entry unreadable", "key", key, "error", err)
		return nil, nil, false
	}

	age := time.Since(time.Unix(e.CachedAt, 0))
	if age > ttl {
		c.logger.Debug("cache stale", "key", key, "age", age, "ttl", ttl)
		return nil, nil, false
	}

	for i := range e.Articles {
		e.Articles[i].ApplyDefaults()
	}
	c.logger.Debug("cache hit", "key", key, "articles", len(e.Articles), "age", age)
	return e.Articles, e.Stats, true
}

// Save writes a crawl result under key via write-then-rename, so a reader
// racing the write never observes a partial file.
func (c *Cache) Save(key string, articles []entity.Article, stats map[string]int) error {
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		c.logger.Warn("cache dir create failed", "error", err)
		return err
	}

	e := entry{CachedAt: time.Now().Unix(), Stats: stats, Articles: articles}
	raw, err := json.Marshal(e)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(c.dir, ".cache-*.tmp")
	if err != nil {
		c.logger.Warn("cache temp file create failed", "error", err)
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
	if err := os.Rename(tmpPath, c.path(key)); err != nil {
		os.Remove(tmpPath)
		c.logger.Warn("cache save failed", "key", key, "error", err)
		return err
	}
	c.logger.Debug("cache saved", "key", key, "articles", len(articles))
	return nil
}

// Clear removes every cache file in the directory, returning the count
// removed.
func (c *Cache) Clear() int {
	matches, err := filepath.Glob(filepath.Join(c.dir, "*.json"))
	if err != nil {
		return 0
	}
	removed := 0
	for _, m := range matches {
		if os.Remove(m) == nil {
			removed++
		}
	}
	return removed
}
