package search

import (
	"context"
	"time"

	"github.com/standardbeagle/classgrep/internal/types"
)

// SessionOptions configures a paged search session
type SessionOptions struct {
	Limit      int                       // Stop after this many matches; 0 = unlimited
	OnProgress func(progress, total int) // Called after every cursor step
}

// Session pages matches out of one cursor. Not safe for concurrent use.
type Session struct {
	cursor  *Cursor
	opts    SessionOptions
	found   int
	done    bool
	started time.Time
}

// NewSession wraps cursor
func NewSession(cursor *Cursor, opts SessionOptions) *Session {
	return &Session{cursor: cursor, opts: opts, started: time.Now()}
}

// Collect returns up to n further matches (all remaining when n <= 0) and
// whether the session is finished. A cancelled ctx stops collection early
// without finishing the session.
func (s *Session) Collect(ctx context.Context, n int) ([]types.Match, bool) {
	var matches []types.Match
	for !s.done && (n <= 0 || len(matches) < n) {
		if s.opts.Limit > 0 && s.found >= s.opts.Limit {
			s.done = true
			break
		}

		m, ok := s.cursor.Next(ctx)
		if s.opts.OnProgress != nil {
			s.opts.OnProgress(s.cursor.Progress(), s.cursor.Total())
		}
		if !ok {
			if ctx.Err() == nil {
				s.done = true
			}
			break
		}
		matches = append(matches, m)
		s.found++
	}

	// A page that ends exactly on the limit finishes the session
	if s.opts.Limit > 0 && s.found >= s.opts.Limit {
		s.done = true
	}
	return matches, s.done
}

// Found returns how many matches have been returned so far
func (s *Session) Found() int {
	return s.found
}

// Done reports whether the session is exhausted or hit its limit
func (s *Session) Done() bool {
	return s.done
}

// Progress returns the cursor's unit index and the corpus length
func (s *Session) Progress() (int, int) {
	return s.cursor.Progress(), s.cursor.Total()
}

// Elapsed returns the time since the session started
func (s *Session) Elapsed() time.Duration {
	return time.Since(s.started)
}
