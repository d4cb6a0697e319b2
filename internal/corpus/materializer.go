package corpus

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/standardbeagle/classgrep/internal/codemeta"
	"github.com/standardbeagle/classgrep/internal/debug"
	cgerrors "github.com/standardbeagle/classgrep/internal/errors"
	"github.com/standardbeagle/classgrep/internal/types"
)

// Cache is the write side of the code cache used by the materializer
type Cache interface {
	Put(name, text string)
}

// SourceMaterializer produces unit text from the files under a project root.
// It writes every produced text to the cache and builds the unit's position
// metadata, so later cache hits also resolve constructs.
type SourceMaterializer struct {
	root        string
	cache       Cache
	store       *codemeta.Store
	maxFileSize int64

	mu    sync.RWMutex
	units map[string]types.Unit

	count atomic.Int64
}

// NewSourceMaterializer creates a materializer for corpus rooted at root.
// cache and store may be nil.
func NewSourceMaterializer(root string, corpus types.Corpus, cache Cache, store *codemeta.Store, maxFileSize int64) *SourceMaterializer {
	m := &SourceMaterializer{
		root:        root,
		cache:       cache,
		store:       store,
		maxFileSize: maxFileSize,
	}
	m.SetCorpus(corpus)
	return m
}

// SetCorpus replaces the units known to the materializer
func (m *SourceMaterializer) SetCorpus(corpus types.Corpus) {
	units := make(map[string]types.Unit, len(corpus))
	for _, u := range corpus {
		units[u.RawName] = u
	}
	m.mu.Lock()
	m.units = units
	m.mu.Unlock()
}

// Count returns how many materializations ran
func (m *SourceMaterializer) Count() int64 {
	return m.count.Load()
}

// Materialize returns the text of unit. Nested units yield the text of their outer unit.
func (m *SourceMaterializer) Materialize(ctx context.Context, unit types.Unit) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", cgerrors.NewMaterializationError(unit.RawName, err).WithRecoverable(false)
	}

	if unit.Inner && unit.Outer != "" {
		m.mu.RLock()
		outer, ok := m.units[unit.Outer]
		m.mu.RUnlock()
		if !ok {
			return "", cgerrors.NewMaterializationError(unit.RawName,
				fmt.Errorf("outer unit %s is not in the corpus", unit.Outer))
		}
		unit = outer
	}

	m.count.Add(1)
	path := filepath.Join(m.root, filepath.FromSlash(unit.Path))

	info, err := os.Stat(path)
	if err != nil {
		return "", cgerrors.NewMaterializationError(unit.RawName, cgerrors.NewFileError("stat", path, err)).WithPath(unit.Path)
	}
	if m.maxFileSize > 0 && info.Size() > m.maxFileSize {
		return "", cgerrors.NewMaterializationError(unit.RawName,
			cgerrors.NewFileTooLargeError(path, info.Size(), m.maxFileSize)).WithPath(unit.Path)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return "", cgerrors.NewMaterializationError(unit.RawName, cgerrors.NewFileError("read", path, err)).WithPath(unit.Path)
	}
	if IsBinary(content) {
		return "", cgerrors.NewMaterializationError(unit.RawName, cgerrors.ErrBinaryContent).
			WithPath(unit.Path).WithRecoverable(false)
	}

	text := string(content)
	if m.cache != nil {
		m.cache.Put(unit.RawName, text)
	}
	if m.store != nil {
		if _, err := m.store.Build(unit, text); err != nil {
			debug.LogCorpus("no constructs for %s: %v\n", unit.RawName, err)
		}
	}

	debug.LogCorpus("materialized %s (%d bytes)\n", unit.RawName, len(text))
	return text, nil
}
