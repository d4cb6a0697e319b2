package search

import (
	"context"
	"errors"
	"log"

	"github.com/standardbeagle/classgrep/internal/debug"
	cgerrors "github.com/standardbeagle/classgrep/internal/errors"
	"github.com/standardbeagle/classgrep/internal/types"
)

// TextCache is the read side of the shared code cache
type TextCache interface {
	Get(name string) (string, bool)
}

// Materializer produces a unit's text on demand. It is expected to be
// expensive, may fail, and stores what it produces in the shared cache.
type Materializer interface {
	Materialize(ctx context.Context, unit types.Unit) (string, error)
}

// TextProvider returns unit text from the cache, materializing on a miss.
// Materialization failures are logged and reported as unavailable text.
type TextProvider struct {
	cache        TextCache
	materializer Materializer
}

// NewTextProvider creates a provider. cache may be nil.
func NewTextProvider(cache TextCache, materializer Materializer) *TextProvider {
	return &TextProvider{cache: cache, materializer: materializer}
}

// Text returns the text of unit, or false when it cannot be produced
func (p *TextProvider) Text(ctx context.Context, unit types.Unit) (string, bool) {
	if p == nil {
		return "", false
	}
	if p.cache != nil {
		if text, ok := p.cache.Get(unit.RawName); ok {
			return text, true
		}
	}
	if p.materializer == nil {
		return "", false
	}

	text, err := p.materializer.Materialize(ctx, unit)
	if err != nil {
		p.report(unit, err, true)
		return "", false
	}
	return text, true
}

// Force materializes unit and discards the text. Callers use it to keep the
// shared cache warm for units they do not scan.
func (p *TextProvider) Force(ctx context.Context, unit types.Unit) {
	if p == nil || p.materializer == nil || unit.NoCode { // nothing to produce
		return
	}
	if _, err := p.materializer.Materialize(ctx, unit); err != nil {
		p.report(unit, err, false)
	}
}

func (p *TextProvider) report(unit types.Unit, err error, warn bool) {
	if !warn || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		debug.LogSearch("materialization of %s skipped: %v\n", unit.RawName, err)
		return
	}

	var matErr *cgerrors.MaterializationError
	if errors.As(err, &matErr) && !matErr.IsRecoverable() {
		log.Printf("Warning: skipping %s: %v", unit.RawName, err)
		return
	}
	log.Printf("Warning: %v (retried on the next search)", err)
}
