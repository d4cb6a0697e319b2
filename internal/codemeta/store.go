package codemeta

import (
	"fmt"
	"sync"

	cgerrors "github.com/standardbeagle/classgrep/internal/errors"
	"github.com/standardbeagle/classgrep/internal/types"
)

// TextSource supplies unit text for lazy metadata builds
type TextSource interface {
	Get(name string) (string, bool)
}

// Store holds per-unit metadata keyed by the raw name of the unit owning the text.
// It is safe for concurrent use.
type Store struct {
	extractor *Extractor
	source    TextSource

	mu      sync.RWMutex
	entries map[string]*Metadata
	builds  int64
}

// NewStore creates a store. source may be nil, in which case units without
// metadata report ErrNoMetadata instead of being built from cached text.
func NewStore(extractor *Extractor, source TextSource) *Store {
	if extractor == nil {
		extractor = NewExtractor()
	}
	return &Store{
		extractor: extractor,
		source:    source,
		entries:   make(map[string]*Metadata),
	}
}

// Build extracts metadata for unit from text and stores it
func (s *Store) Build(unit types.Unit, text string) (*Metadata, error) {
	md, err := s.extractor.Extract(unit.TopLevel(), unit.Language, []byte(text))
	if err != nil {
		return nil, err
	}
	s.Put(md)
	return md, nil
}

// Put stores metadata under md.Unit, replacing any previous entry
func (s *Store) Put(md *Metadata) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[md.Unit] = md
	s.builds++
}

// Get returns the stored metadata for a unit raw name
func (s *Store) Get(name string) (*Metadata, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	md, ok := s.entries[name]
	return md, ok
}

// Builds returns how many metadata entries have been stored
func (s *Store) Builds() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.builds
}

// Invalidate drops the metadata for a unit raw name
func (s *Store) Invalidate(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, name)
}

// metadataFor returns stored metadata, building it from the text source when absent
func (s *Store) metadataFor(unit types.Unit) (*Metadata, error) {
	key := unit.TopLevel()
	if md, ok := s.Get(key); ok {
		return md, nil
	}
	if s.source == nil {
		return nil, cgerrors.ErrNoMetadata
	}
	text, ok := s.source.Get(key)
	if !ok {
		return nil, cgerrors.ErrNoMetadata
	}
	return s.Build(unit, text)
}

// ConstructAt returns a reference to the smallest construct covering offset.
// ok is false when no construct covers it.
func (s *Store) ConstructAt(unit types.Unit, offset int) (types.NodeRef, bool, error) {
	md, err := s.metadataFor(unit)
	if err != nil {
		return types.NodeRef{}, false, err
	}

	best := -1
	for i, n := range md.Nodes {
		if n.Start > offset {
			break // Nodes are ordered by Start
		}
		if !n.Covers(offset) {
			continue
		}
		// Equal spans: the later node is the nested one
		if best < 0 || n.Span() <= md.Nodes[best].Span() {
			best = i
		}
	}
	if best < 0 {
		return types.NodeRef{}, false, nil
	}
	return types.NodeRef{Unit: md.Unit, Index: best}, true, nil
}

// ResolveNode maps a reference back to its node. References go stale when
// the unit's metadata is rebuilt or invalidated.
func (s *Store) ResolveNode(ref types.NodeRef) (types.Node, error) {
	md, ok := s.Get(ref.Unit)
	if !ok {
		return types.Node{}, fmt.Errorf("node %d of %s: %w", ref.Index, ref.Unit, cgerrors.ErrNoMetadata)
	}
	if ref.Index < 0 || ref.Index >= len(md.Nodes) {
		return types.Node{}, fmt.Errorf("stale node reference %d for %s (%d nodes)", ref.Index, ref.Unit, len(md.Nodes))
	}
	return md.Nodes[ref.Index], nil
}
