package codecache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite"

	"github.com/standardbeagle/classgrep/internal/debug"
	"github.com/standardbeagle/classgrep/internal/version"
)

const sqliteOpTimeout = 5 * time.Second

// SQLiteCache keeps materialized text on disk so it survives restarts.
// Entries written by a different build are discarded on open.
type SQLiteCache struct {
	db   *sql.DB
	path string

	hits      atomic.Int64
	misses    atomic.Int64
	unchanged atomic.Int64
}

// NewSQLiteCache opens (creating if needed) the cache database at path
func NewSQLiteCache(path string) (*SQLiteCache, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	// WAL mode allows readers while the materializer writes
	dsn := path + "?_journal_mode=WAL&_busy_timeout=5000"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite doesn't support multiple writers well
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	ctx, cancel := context.WithTimeout(context.Background(), sqliteOpTimeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping cache database: %w", err)
	}

	c := &SQLiteCache{db: db, path: path}
	if err := c.initSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize cache schema: %w", err)
	}
	if err := c.checkBuild(ctx, version.BuildID()); err != nil {
		db.Close()
		return nil, err
	}
	return c, nil
}

func (c *SQLiteCache) initSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS code (
		name       TEXT PRIMARY KEY,
		digest     TEXT NOT NULL,
		text       TEXT NOT NULL,
		updated_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS meta (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);`

	_, err := c.db.ExecContext(ctx, schema)
	return err
}

// checkBuild drops every entry when the database was written by another build
func (c *SQLiteCache) checkBuild(ctx context.Context, buildID string) error {
	var stored string
	err := c.db.QueryRowContext(ctx, `SELECT value FROM meta WHERE key = 'build_id'`).Scan(&stored)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("failed to read cache build id: %w", err)
	}
	if stored == buildID {
		return nil
	}
	if stored != "" {
		debug.LogCache("cache %s written by build %s, current %s: clearing\n", c.path, stored, buildID)
	}

	if _, err := c.db.ExecContext(ctx, `DELETE FROM code`); err != nil {
		return fmt.Errorf("failed to clear stale cache: %w", err)
	}
	_, err = c.db.ExecContext(ctx,
		`INSERT INTO meta (key, value) VALUES ('build_id', ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`, buildID)
	if err != nil {
		return fmt.Errorf("failed to record cache build id: %w", err)
	}
	return nil
}

// Path returns the database file location
func (c *SQLiteCache) Path() string {
	return c.path
}

// Get retrieves the stored text for name
func (c *SQLiteCache) Get(name string) (string, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), sqliteOpTimeout)
	defer cancel()

	var text string
	err := c.db.QueryRowContext(ctx, `SELECT text FROM code WHERE name = ?`, name).Scan(&text)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			log.Printf("Warning: cache lookup for %s failed: %v", name, err)
		}
		c.misses.Add(1)
		return "", false
	}
	c.hits.Add(1)
	return text, true
}

// Put stores text for name; identical text is not rewritten
func (c *SQLiteCache) Put(name, text string) {
	ctx, cancel := context.WithTimeout(context.Background(), sqliteOpTimeout)
	defer cancel()

	digest := strconv.FormatUint(Digest(text), 16)

	var existing string
	err := c.db.QueryRowContext(ctx, `SELECT digest FROM code WHERE name = ?`, name).Scan(&existing)
	if err == nil && existing == digest {
		c.unchanged.Add(1)
		return
	}

	_, err = c.db.ExecContext(ctx,
		`INSERT INTO code (name, digest, text, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET digest = excluded.digest, text = excluded.text, updated_at = excluded.updated_at`,
		name, digest, text, time.Now().Unix())
	if err != nil {
		log.Printf("Warning: failed to cache %s: %v", name, err)
	}
}

// Invalidate removes name from the cache
func (c *SQLiteCache) Invalidate(name string) {
	ctx, cancel := context.WithTimeout(context.Background(), sqliteOpTimeout)
	defer cancel()

	if _, err := c.db.ExecContext(ctx, `DELETE FROM code WHERE name = ?`, name); err != nil {
		log.Printf("Warning: failed to invalidate cached %s: %v", name, err)
	}
}

// Stats returns entry counts from the database plus in-process counters
func (c *SQLiteCache) Stats() Stats {
	ctx, cancel := context.WithTimeout(context.Background(), sqliteOpTimeout)
	defer cancel()

	s := Stats{
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Unchanged: c.unchanged.Load(),
	}

	var bytes sql.NullInt64
	err := c.db.QueryRowContext(ctx, `SELECT COUNT(*), SUM(LENGTH(CAST(text AS BLOB))) FROM code`).Scan(&s.Entries, &bytes)
	if err != nil {
		debug.LogCache("stats query failed: %v\n", err)
	}
	s.Bytes = bytes.Int64
	return s
}

// Close closes the database connection
func (c *SQLiteCache) Close() error {
	return c.db.Close()
}
