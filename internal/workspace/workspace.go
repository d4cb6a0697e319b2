// Package workspace ties a project's configuration, corpus, code cache and
// position index together and starts search sessions over them. It is shared
// by the CLI and the MCP server.
package workspace

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/standardbeagle/classgrep/internal/codecache"
	"github.com/standardbeagle/classgrep/internal/codemeta"
	"github.com/standardbeagle/classgrep/internal/config"
	"github.com/standardbeagle/classgrep/internal/corpus"
	"github.com/standardbeagle/classgrep/internal/debug"
	"github.com/standardbeagle/classgrep/internal/search"
	"github.com/standardbeagle/classgrep/internal/types"
)

// ErrNoMatchingClasses is returned when class filters select no unit
var ErrNoMatchingClasses = errors.New("no class matches the filter")

// Request describes one search session
type Request struct {
	Pattern    string
	Options    search.Options
	Classes    []string // Class patterns; empty searches every unit
	Limit      int      // 0 = unlimited
	OnProgress func(progress, total int)
}

// FilterError reports class patterns that matched nothing, with the closest unit names
type FilterError struct {
	Patterns    []string
	Suggestions []string
}

func (e *FilterError) Error() string {
	msg := fmt.Sprintf("%v: %s", ErrNoMatchingClasses, strings.Join(e.Patterns, ", "))
	if len(e.Suggestions) > 0 {
		msg += " (did you mean " + strings.Join(e.Suggestions, ", ") + "?)"
	}
	return msg
}

func (e *FilterError) Unwrap() error {
	return ErrNoMatchingClasses
}

// Workspace is an opened project
type Workspace struct {
	cfg          *config.Config
	extractor    *codemeta.Extractor
	cache        codecache.Cache
	store        *codemeta.Store
	scanner      *corpus.Scanner
	materializer *corpus.SourceMaterializer

	mu     sync.RWMutex
	corpus types.Corpus
}

// Open validates cfg, opens the code cache and scans the project root
func Open(ctx context.Context, cfg *config.Config) (*Workspace, error) {
	if err := config.ValidateConfig(cfg); err != nil {
		return nil, err
	}
	if info, err := os.Stat(cfg.Project.Root); err != nil || !info.IsDir() {
		return nil, fmt.Errorf("project root %s is not a directory", cfg.Project.Root)
	}

	cache, err := codecache.Open(cfg.Cache, cfg.Project.Root)
	if err != nil {
		return nil, fmt.Errorf("failed to open code cache: %w", err)
	}

	extractor := codemeta.NewExtractor()
	store := codemeta.NewStore(extractor, cache)
	w := &Workspace{
		cfg:       cfg,
		extractor: extractor,
		cache:     cache,
		store:     store,
		scanner:   corpus.NewScanner(cfg.Project.Root, cfg.Corpus, extractor),
	}
	w.materializer = corpus.NewSourceMaterializer(cfg.Project.Root, nil, cache, store, cfg.Corpus.MaxFileSize)

	if err := w.Rescan(ctx); err != nil {
		w.Close()
		return nil, err
	}
	if cfg.Cache.Backend == config.CacheBackendSQLite {
		w.reconcile(ctx)
	}
	return w, nil
}

// Rescan rebuilds the corpus. Sessions already started keep the corpus they began with.
func (w *Workspace) Rescan(ctx context.Context) error {
	c, err := w.scanner.Scan(ctx)
	if err != nil {
		return err
	}
	w.mu.Lock()
	w.corpus = c
	w.mu.Unlock()
	w.materializer.SetCorpus(c)
	return nil
}

// reconcile drops persisted text that no longer matches the file on disk
func (w *Workspace) reconcile(ctx context.Context) {
	stale := 0
	for _, u := range w.Corpus() {
		if ctx.Err() != nil {
			return
		}
		if u.Inner || u.NoCode {
			continue
		}
		cached, ok := w.cache.Get(u.RawName)
		if !ok {
			continue
		}
		content, err := os.ReadFile(filepath.Join(w.cfg.Project.Root, filepath.FromSlash(u.Path)))
		if err != nil || codecache.Digest(cached) != codecache.Digest(string(content)) {
			w.cache.Invalidate(u.RawName)
			stale++
		}
	}
	debug.LogCache("reconciled persisted cache: %d stale entries dropped\n", stale)
}

// Config returns the workspace configuration
func (w *Workspace) Config() *config.Config {
	return w.cfg
}

// Root returns the project root
func (w *Workspace) Root() string {
	return w.cfg.Project.Root
}

// Corpus returns the current corpus snapshot. Callers must not modify it.
func (w *Workspace) Corpus() types.Corpus {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.corpus
}

// Cache returns the shared code cache
func (w *Workspace) Cache() codecache.Cache {
	return w.cache
}

// Store returns the position index
func (w *Workspace) Store() *codemeta.Store {
	return w.store
}

// Materializations returns how many times unit text was produced from source
func (w *Workspace) Materializations() int64 {
	return w.materializer.Count()
}

// Accepts reports whether a slash path relative to the root can hold corpus units
func (w *Workspace) Accepts(rel string) bool {
	return w.scanner.Accepts(rel)
}

// Search starts a session over the current corpus
func (w *Workspace) Search(req Request) (*search.Session, error) {
	matcher, err := search.NewMatcher(req.Pattern, req.Options)
	if err != nil {
		return nil, err
	}

	c := w.Corpus()
	filter := corpus.Filter(c, req.Classes)
	if filter != nil && filter.Len() == 0 {
		return nil, &FilterError{Patterns: req.Classes, Suggestions: w.Suggest(req.Classes[0], 3)}
	}

	env := search.Env{
		Corpus:   c,
		Filter:   filter,
		Matcher:  matcher,
		Text:     search.NewTextProvider(w.cache, w.materializer),
		Resolver: search.NewResolver(w.store, w.store),
	}
	debug.LogSearch("session for %q over %d units (filter=%d)\n", req.Pattern, len(c), filter.Len())
	return search.NewSession(search.NewCursor(env), search.SessionOptions{
		Limit:      req.Limit,
		OnProgress: req.OnProgress,
	}), nil
}

// Classes lists corpus units selected by pattern (all when empty)
func (w *Workspace) Classes(pattern string, includeInner bool) []types.Unit {
	var units []types.Unit
	for _, u := range w.Corpus() {
		if u.Inner && !includeInner {
			continue
		}
		if pattern != "" && !corpus.MatchUnit(u, pattern) {
			continue
		}
		units = append(units, u)
	}
	return units
}

// Suggest returns up to n unit names resembling pattern
func (w *Workspace) Suggest(pattern string, n int) []string {
	return corpus.Suggest(w.Corpus(), pattern, n)
}

// InvalidatePath drops cached text and metadata for every unit backed by
// rel (a slash path relative to the root) and returns their raw names
func (w *Workspace) InvalidatePath(rel string) []string {
	units := w.Corpus().UnitsForPath(rel)
	names := make([]string, 0, len(units))
	for _, u := range units {
		w.cache.Invalidate(u.RawName)
		w.store.Invalidate(u.RawName)
		names = append(names, u.RawName)
	}
	if len(names) > 0 {
		debug.LogCache("invalidated %d units for %s\n", len(names), rel)
	}
	return names
}

// CachedText returns the cached text of the unit owning rel's content, if any
func (w *Workspace) CachedText(rel string) (string, bool) {
	for _, u := range w.Corpus().UnitsForPath(rel) {
		if !u.Inner {
			return w.cache.Get(u.RawName)
		}
	}
	return "", false
}

// Close releases the cache and the parsers
func (w *Workspace) Close() error {
	w.extractor.Close()
	return w.cache.Close()
}
