// Package codecache stores materialized unit text keyed by the unit's raw name.
package codecache

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/standardbeagle/classgrep/internal/config"
)

// Cache is the shared key to text store consulted before materializing a unit.
// Implementations are safe for concurrent use.
type Cache interface {
	Get(name string) (string, bool)
	Put(name, text string)
	Invalidate(name string)
	Stats() Stats
	Close() error
}

// Stats tracks cache performance statistics
type Stats struct {
	Entries   int
	Bytes     int64
	Hits      int64
	Misses    int64
	Evictions int64
	Unchanged int64 // Puts skipped because the stored text had the same digest
}

// HitRate returns hits / lookups, or 0 before the first lookup
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// Digest fingerprints text for change detection
func Digest(text string) uint64 {
	return xxhash.Sum64String(text)
}

// DefaultPath is where the SQLite backend lives when no path is configured
func DefaultPath(root string) string {
	return filepath.Join(root, ".classgrep", "cache.db")
}

// Open creates the backend selected by cfg. root anchors relative SQLite paths.
func Open(cfg config.Cache, root string) (Cache, error) {
	switch cfg.Backend {
	case "", config.CacheBackendMemory:
		return NewMemoryCache(cfg.MaxEntries, time.Duration(cfg.TTLMinutes)*time.Minute), nil
	case config.CacheBackendSQLite:
		path := cfg.Path
		if path == "" {
			path = DefaultPath(root)
		} else if !filepath.IsAbs(path) {
			path = filepath.Join(root, path)
		}
		return NewSQLiteCache(path)
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}
