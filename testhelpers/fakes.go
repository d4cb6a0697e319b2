package testhelpers

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/standardbeagle/classgrep/internal/types"
)

// ErrMaterialize is returned by FakeMaterializer for units marked as failing
var ErrMaterialize = errors.New("materialization failed")

// MapCache is an in-memory text cache keyed by raw unit name
type MapCache struct {
	mu    sync.Mutex
	texts map[string]string
	gets  int
}

// NewMapCache creates a cache pre-filled with texts
func NewMapCache(texts map[string]string) *MapCache {
	c := &MapCache{texts: make(map[string]string, len(texts))}
	for k, v := range texts {
		c.texts[k] = v
	}
	return c
}

func (c *MapCache) Get(name string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	text, ok := c.texts[name]
	return text, ok
}

func (c *MapCache) Put(name, text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.texts[name] = text
}

// Has reports whether name is cached without counting as a lookup
func (c *MapCache) Has(name string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.texts[name]
	return ok
}

// Len returns the number of cached texts
func (c *MapCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.texts)
}

// FakeMaterializer serves unit text from a map, counting calls per unit.
// Produced text is stored in Cache when one is set.
type FakeMaterializer struct {
	mu      sync.Mutex
	texts   map[string]string
	failing map[string]bool
	calls   map[string]int
	order   []string
	Cache   *MapCache

	// OnMaterialize runs before each call; tests use it to cancel mid-search
	OnMaterialize func(unit types.Unit)
}

// NewFakeMaterializer creates a materializer over texts
func NewFakeMaterializer(texts map[string]string) *FakeMaterializer {
	return &FakeMaterializer{
		texts:   texts,
		failing: make(map[string]bool),
		calls:   make(map[string]int),
	}
}

// Fail makes every materialization of the named units fail
func (f *FakeMaterializer) Fail(names ...string) *FakeMaterializer {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, n := range names {
		f.failing[n] = true
	}
	return f
}

func (f *FakeMaterializer) Materialize(ctx context.Context, unit types.Unit) (string, error) {
	if f.OnMaterialize != nil {
		f.OnMaterialize(unit)
	}

	f.mu.Lock()
	f.calls[unit.RawName]++
	f.order = append(f.order, unit.RawName)
	failing := f.failing[unit.RawName]
	text, ok := f.texts[unit.TopLevel()]
	f.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return "", err
	}
	if failing {
		return "", fmt.Errorf("%s: %w", unit.RawName, ErrMaterialize)
	}
	if !ok {
		return "", fmt.Errorf("%s: no source", unit.RawName)
	}
	if f.Cache != nil {
		f.Cache.Put(unit.RawName, text)
	}
	return text, nil
}

// Calls returns how often unit name was materialized
func (f *FakeMaterializer) Calls(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

// Total returns the number of materializations across all units
func (f *FakeMaterializer) Total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.order)
}

// Order returns the raw names in materialization order
func (f *FakeMaterializer) Order() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.order...)
}

// StaticIndex is a fixed position index: nodes per unit raw name
type StaticIndex struct {
	Nodes map[string][]types.Node
	Err   error // returned by every ConstructAt call when set
}

// ConstructAt returns the smallest node covering offset
func (s *StaticIndex) ConstructAt(unit types.Unit, offset int) (types.NodeRef, bool, error) {
	if s.Err != nil {
		return types.NodeRef{}, false, s.Err
	}
	best := -1
	for i, n := range s.Nodes[unit.TopLevel()] {
		if !n.Covers(offset) {
			continue
		}
		if best < 0 || n.Span() < s.Nodes[unit.TopLevel()][best].Span() {
			best = i
		}
	}
	if best < 0 {
		return types.NodeRef{}, false, nil
	}
	return types.NodeRef{Unit: unit.TopLevel(), Index: best}, true, nil
}

// ResolveNode returns the referenced node
func (s *StaticIndex) ResolveNode(ref types.NodeRef) (types.Node, error) {
	nodes := s.Nodes[ref.Unit]
	if ref.Index < 0 || ref.Index >= len(nodes) {
		return types.Node{}, fmt.Errorf("stale node reference %s#%d", ref.Unit, ref.Index)
	}
	return nodes[ref.Index], nil
}

// Units builds a corpus of plain top-level units in the given order
func Units(names ...string) types.Corpus {
	corpus := make(types.Corpus, len(names))
	for i, n := range names {
		corpus[i] = types.Unit{
			RawName:  n,
			Name:     n,
			Path:     n + ".java",
			Language: types.LanguageJava,
			Position: i,
		}
	}
	return corpus
}
