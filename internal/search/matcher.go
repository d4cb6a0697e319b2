package search

import (
	"regexp"
	"sort"
	"strings"
	"sync"

	cgerrors "github.com/standardbeagle/classgrep/internal/errors"
)

// Matcher finds the next occurrence of a pattern at or after a byte offset
type Matcher interface {
	Find(text string, from int) (int, bool)
}

// Options selects the matching mode
type Options struct {
	CaseInsensitive bool
	Regex           bool
	WholeWord       bool
}

// NewMatcher compiles pattern for the given mode. Empty patterns and regular
// expressions that match the empty string are rejected.
func NewMatcher(pattern string, opts Options) (Matcher, error) {
	if pattern == "" {
		return nil, cgerrors.NewSearchError(pattern, cgerrors.ErrEmptyPattern)
	}

	if !opts.Regex && !opts.CaseInsensitive {
		return &literalMatcher{pattern: pattern, wholeWord: opts.WholeWord}, nil
	}

	expr := pattern
	if !opts.Regex {
		expr = regexp.QuoteMeta(pattern)
	}
	if opts.WholeWord {
		expr = `\b(?:` + expr + `)\b`
	}
	flags := "(?m)"
	if opts.CaseInsensitive {
		flags = "(?mi)"
	}

	re, err := regexp.Compile(flags + expr)
	if err != nil {
		return nil, cgerrors.NewSearchError(pattern, err)
	}
	if re.MatchString("") {
		return nil, cgerrors.NewSearchError(pattern, cgerrors.ErrEmptyPattern)
	}
	return &regexMatcher{re: re}, nil
}

type literalMatcher struct {
	pattern   string
	wholeWord bool
}

func (m *literalMatcher) Find(text string, from int) (int, bool) {
	for from >= 0 && from < len(text) {
		idx := strings.Index(text[from:], m.pattern)
		if idx < 0 {
			return 0, false
		}
		pos := from + idx
		if !m.wholeWord || m.standsAlone(text, pos) {
			return pos, true
		}
		from = pos + 1
	}
	return 0, false
}

// regexMatcher evaluates the expression over the whole text so anchors and
// word boundaries see the bytes before from. Match starts of the most recent
// text are kept; a cursor asks for the same text many times in a row.
type regexMatcher struct {
	re *regexp.Regexp

	mu     sync.Mutex
	text   string
	starts []int
}

func (m *regexMatcher) Find(text string, from int) (int, bool) {
	if from < 0 || from >= len(text) {
		return 0, false
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.starts == nil || text != m.text {
		locs := m.re.FindAllStringIndex(text, -1)
		m.text = text
		m.starts = make([]int, len(locs))
		for i, loc := range locs {
			m.starts[i] = loc[0]
		}
	}

	i := sort.SearchInts(m.starts, from)
	if i == len(m.starts) {
		return 0, false
	}
	return m.starts[i], true
}

// standsAlone reports whether the occurrence at pos is not glued to adjacent
// word characters. Pattern edges that are not word characters need no boundary.
func (m *literalMatcher) standsAlone(text string, pos int) bool {
	end := pos + len(m.pattern)
	if IsWordCharacter(m.pattern[0]) && !IsWordBoundary(text, pos) {
		return false
	}
	if IsWordCharacter(m.pattern[len(m.pattern)-1]) && !IsWordBoundary(text, end) {
		return false
	}
	return true
}
