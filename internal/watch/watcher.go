// Package watch keeps a workspace's code cache and position index in step
// with the files under the project root.
package watch

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"

	"github.com/standardbeagle/classgrep/internal/codecache"
	"github.com/standardbeagle/classgrep/internal/debug"
)

// Target is what the watcher keeps current. *workspace.Workspace implements it.
type Target interface {
	Root() string
	Accepts(rel string) bool
	InvalidatePath(rel string) []string
	CachedText(rel string) (string, bool)
	Rescan(ctx context.Context) error
}

// Batch summarizes one debounced group of file events
type Batch struct {
	Paths       []string // Slash paths relative to the root, sorted
	Invalidated []string // Raw names of units whose text and metadata were dropped
	Unchanged   []string // Written paths whose content matched the cached text
	Rescanned   bool     // Files appeared or disappeared and the corpus was rebuilt
}

// Stats contains statistics about file watching
type Stats struct {
	EventsProcessed int64
	Batches         int64
	Invalidated     int64
	Unchanged       int64
	Rescans         int64
	ErrorCount      int64
	LastEventTime   time.Time
	IsActive        bool
}

// Watcher monitors the project root and invalidates units backed by changed files
type Watcher struct {
	watcher   *fsnotify.Watcher
	target    Target
	root      string
	excludes  []string
	debouncer *debouncer
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup

	onBatch func(Batch)

	stats   Stats
	statsMu sync.RWMutex
}

// New creates a watcher for target. excludes are doublestar globs relative
// to the root; matching directories are not watched.
func New(target Target, excludes []string, debounce time.Duration) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	w := &Watcher{
		watcher:  fsw,
		target:   target,
		root:     target.Root(),
		excludes: excludes,
		ctx:      ctx,
		cancel:   cancel,
	}
	w.debouncer = newDebouncer(debounce, w.flush)
	return w, nil
}

// OnBatch registers a callback run after each processed batch. Set it before Start.
func (w *Watcher) OnBatch(fn func(Batch)) {
	w.onBatch = fn
}

// Start adds watches for the root and every non-excluded directory below it
func (w *Watcher) Start() error {
	debug.LogCache("starting file watcher for %s\n", w.root)

	if err := w.addWatches(w.root); err != nil {
		return fmt.Errorf("failed to add watches starting from %s: %w", w.root, err)
	}

	w.statsMu.Lock()
	w.stats.IsActive = true
	w.statsMu.Unlock()

	w.wg.Add(2)
	go w.processEvents()
	go w.debouncer.run(w.ctx, &w.wg)
	return nil
}

// Stop stops watching. Pending events are dropped.
func (w *Watcher) Stop() error {
	w.cancel()
	err := w.watcher.Close()
	w.wg.Wait()

	w.statsMu.Lock()
	w.stats.IsActive = false
	w.statsMu.Unlock()

	debug.LogCache("file watcher stopped\n")
	return err
}

// Stats returns a snapshot of the watcher statistics
func (w *Watcher) Stats() Stats {
	w.statsMu.RLock()
	defer w.statsMu.RUnlock()
	return w.stats
}

// addWatches recursively adds watches to all relevant directories
func (w *Watcher) addWatches(dir string) error {
	// Track visited directories to prevent infinite loops from symlink cycles
	visited := make(map[string]bool)

	return filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil
		}

		realPath, err := filepath.EvalSymlinks(path)
		if err != nil || visited[realPath] {
			return filepath.SkipDir
		}
		visited[realPath] = true

		if w.ignoredDir(path) {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			log.Printf("Warning: failed to add watch for %s: %v", path, err)
		}
		return nil
	})
}

func (w *Watcher) rel(path string) (string, bool) {
	rel, err := filepath.Rel(w.root, path)
	if err != nil || rel == "." {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

func (w *Watcher) ignoredDir(path string) bool {
	rel, ok := w.rel(path)
	if !ok {
		return false
	}
	for _, pattern := range w.excludes {
		if m, _ := doublestar.Match(pattern, rel); m {
			return true
		}
		if m, _ := doublestar.Match(pattern, rel+"/x"); m {
			return true
		}
	}
	return false
}

// processEvents processes file system events from fsnotify
func (w *Watcher) processEvents() {
	defer w.wg.Done()

	for {
		select {
		case <-w.ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("Warning: file watcher error: %v", err)
			w.statsMu.Lock()
			w.stats.ErrorCount++
			w.statsMu.Unlock()
		}
	}
}

// handleEvent queues one fsnotify event for the debouncer
func (w *Watcher) handleEvent(event fsnotify.Event) {
	rel, ok := w.rel(event.Name)
	if !ok {
		return
	}
	debug.LogCache("watcher: %v %s\n", event.Op, rel)

	info, err := os.Stat(event.Name)
	if err != nil {
		// Gone: a corpus file or possibly a whole directory
		if event.Op&(fsnotify.Remove|fsnotify.Rename) != 0 && (w.target.Accepts(rel) || filepath.Ext(rel) == "") {
			w.debouncer.add(rel, true)
		}
		return
	}

	if info.IsDir() {
		if event.Op&fsnotify.Create != 0 && !w.ignoredDir(event.Name) {
			if err := w.addWatches(event.Name); err != nil {
				log.Printf("Warning: failed to watch new directory %s: %v", rel, err)
			}
			w.debouncer.add(rel, true)
		}
		return
	}

	if !w.target.Accepts(rel) {
		return
	}
	switch {
	case event.Op&(fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0:
		w.debouncer.add(rel, true)
	case event.Op&fsnotify.Write != 0:
		w.debouncer.add(rel, false)
	}
}

// flush applies one batch of debounced events to the target
func (w *Watcher) flush(ctx context.Context, events map[string]bool) {
	batch := Batch{Paths: make([]string, 0, len(events))}
	structural := false
	for rel, s := range events {
		batch.Paths = append(batch.Paths, rel)
		structural = structural || s
	}
	sort.Strings(batch.Paths)

	for _, rel := range batch.Paths {
		if !events[rel] && w.unchanged(rel) {
			batch.Unchanged = append(batch.Unchanged, rel)
			continue
		}
		batch.Invalidated = append(batch.Invalidated, w.target.InvalidatePath(rel)...)
	}

	if structural {
		if err := w.target.Rescan(ctx); err != nil {
			log.Printf("Warning: rescan after file changes failed: %v", err)
			w.statsMu.Lock()
			w.stats.ErrorCount++
			w.statsMu.Unlock()
		} else {
			batch.Rescanned = true
			// Units named by the new corpus may have stale cached text from before a removal
			for _, rel := range batch.Paths {
				batch.Invalidated = append(batch.Invalidated, w.target.InvalidatePath(rel)...)
			}
		}
	}

	w.statsMu.Lock()
	w.stats.EventsProcessed += int64(len(events))
	w.stats.Batches++
	w.stats.Invalidated += int64(len(batch.Invalidated))
	w.stats.Unchanged += int64(len(batch.Unchanged))
	if batch.Rescanned {
		w.stats.Rescans++
	}
	w.stats.LastEventTime = time.Now()
	w.statsMu.Unlock()

	debug.LogCache("watcher batch: %d paths, %d units invalidated, %d unchanged, rescan=%v\n",
		len(batch.Paths), len(batch.Invalidated), len(batch.Unchanged), batch.Rescanned)

	if w.onBatch != nil {
		w.onBatch(batch)
	}
}

// unchanged reports whether rel still holds exactly the cached text
func (w *Watcher) unchanged(rel string) bool {
	cached, ok := w.target.CachedText(rel)
	if !ok {
		return false
	}
	content, err := os.ReadFile(filepath.Join(w.root, filepath.FromSlash(rel)))
	if err != nil {
		return false
	}
	return codecache.Digest(cached) == codecache.Digest(string(content))
}
