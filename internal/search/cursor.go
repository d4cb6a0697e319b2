// Package search implements the incremental search cursor: it walks a corpus
// one unit at a time, materializes text on demand and returns one match per call.
package search

import (
	"context"

	"github.com/standardbeagle/classgrep/internal/types"
)

// Env holds the inputs of one search session. They must not change while a
// cursor over them is in use.
type Env struct {
	Corpus   types.Corpus
	Filter   *UnitSet // nil searches every unit
	Matcher  Matcher
	Text     *TextProvider
	Resolver *Resolver
}

// State is the resumable position of a search.
// Index is in [0, len(Corpus)] and never decreases. Offset and Text belong to
// the unit at Index and are reset when the search moves to the next unit.
type State struct {
	Index  int
	Offset int
	Text   string
	Loaded bool // Text holds the current unit's text
}

// Step produces the next match after st. It returns the state to resume from,
// the match, and false once the corpus is exhausted or ctx is done.
// Per-unit failures never end the search; the unit is skipped.
func Step(ctx context.Context, env *Env, st State) (State, types.Match, bool) {
	for {
		if ctx.Err() != nil || st.Index >= len(env.Corpus) {
			return st, types.Match{}, false
		}

		unit := env.Corpus[st.Index]
		if env.Filter.Contains(unit) {
			if !st.Loaded && !unit.Inner && !unit.NoCode && env.Text != nil {
				st.Text, st.Loaded = env.Text.Text(ctx, unit)
				if !st.Loaded && ctx.Err() != nil {
					// Interrupted, not failed: keep the unit for a resumed search
					return st, types.Match{}, false
				}
			}

			if st.Loaded && env.Matcher != nil {
				if p, ok := env.Matcher.Find(st.Text, st.Offset); ok {
					line, end := ExtractLine(st.Text, p)

					match := types.Match{
						Unit:       unit,
						Line:       line,
						Offset:     p,
						LineNumber: ComputeLineNumber(st.Text, p),
					}
					if node, ok := env.Resolver.Resolve(unit, p); ok {
						match.Enclosing = node
					} else {
						match.Enclosing = types.UnitNode(unit)
					}

					// Resume after the matched line; a match on the newline itself moves one byte
					st.Offset = max(end, p+1)
					return st, match, true
				}
			}
		} else {
			env.Text.Force(ctx, unit)
		}

		st.Index++
		st.Offset = 0
		st.Text = ""
		st.Loaded = false
	}
}

// Cursor drives Step over one session's state. A cursor must not be used
// from more than one goroutine at a time.
type Cursor struct {
	env   Env
	state State
}

// NewCursor creates a cursor positioned before the first unit
func NewCursor(env Env) *Cursor {
	return &Cursor{env: env}
}

// Next returns the next match, or false at the end of the corpus or when ctx is done.
// Cancellation leaves the state as it was, so a later call with a live
// context continues from the same position.
func (c *Cursor) Next(ctx context.Context) (types.Match, bool) {
	st, match, ok := Step(ctx, &c.env, c.state)
	c.state = st
	return match, ok
}

// Progress returns the index of the unit being searched. It reaches Total
// only when the corpus is exhausted.
func (c *Cursor) Progress() int {
	return c.state.Index
}

// Total returns the corpus length
func (c *Cursor) Total() int {
	return len(c.env.Corpus)
}

// Exhausted reports whether every unit has been visited
func (c *Cursor) Exhausted() bool {
	return c.state.Index >= len(c.env.Corpus)
}

// State returns a copy of the current state
func (c *Cursor) State() State {
	return c.state
}
