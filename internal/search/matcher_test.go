package search

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cgerrors "github.com/standardbeagle/classgrep/internal/errors"
)

func TestNewMatcher_Find(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		opts    Options
		text    string
		from    int
		want    int
		found   bool
	}{
		{"literal first", "foo", Options{}, "a foo b foo", 0, 2, true},
		{"literal resumes", "foo", Options{}, "a foo b foo", 3, 8, true},
		{"literal exhausted", "foo", Options{}, "a foo b foo", 9, 0, false},
		{"literal case sensitive", "Foo", Options{}, "a foo", 0, 0, false},
		{"from past end", "foo", Options{}, "foo", 3, 0, false},
		{"whole word skips prefix", "foo", Options{WholeWord: true}, "foobar foo", 0, 7, true},
		{"whole word skips suffix", "bar", Options{WholeWord: true}, "foobar bar", 0, 7, true},
		{"whole word symbol edges", ".get(", Options{WholeWord: true}, "x.get(1)", 0, 1, true},
		{"whole word member", "get", Options{WholeWord: true}, "getter x.get(1)", 0, 9, true},
		{"case insensitive", "FOO", Options{CaseInsensitive: true}, "a foo", 0, 2, true},
		{"case insensitive quotes meta", "a.b", Options{CaseInsensitive: true}, "axb A.B", 0, 4, true},
		{"regex", "fo+", Options{Regex: true}, "xx fooo", 0, 3, true},
		{"regex whole word", "ba.", Options{Regex: true, WholeWord: true}, "abar bar", 0, 5, true},
		{"regex multiline anchor", "^bar", Options{Regex: true}, "foo bar\nbar", 0, 8, true},
		{"regex anchor needs a real line start", "^b", Options{Regex: true}, "ab\nc", 1, 0, false},
		{"regex anchor after resume", "^b", Options{Regex: true}, "ab\nb", 1, 3, true},
		{"regex text start is not a resume point", `\Aimport`, Options{Regex: true}, "import a\nimport b", 8, 0, false},
		{"regex non-boundary sees preceding byte", `\Bar`, Options{Regex: true}, "bar", 1, 1, true},
		{"whole word sees preceding byte", "oo", Options{Regex: true, WholeWord: true}, "foo oo", 1, 4, true},
		{"regex case insensitive", "class\\s+\\w+", Options{Regex: true, CaseInsensitive: true}, "public CLASS Foo", 0, 7, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := NewMatcher(tt.pattern, tt.opts)
			require.NoError(t, err)

			got, found := m.Find(tt.text, tt.from)
			assert.Equal(t, tt.found, found)
			if tt.found {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestNewMatcher_RejectsEmptyMatches(t *testing.T) {
	for _, tc := range []struct {
		pattern string
		opts    Options
	}{
		{"", Options{}},
		{"", Options{Regex: true}},
		{"a*", Options{Regex: true}},
		{"(foo)?", Options{Regex: true}},
	} {
		_, err := NewMatcher(tc.pattern, tc.opts)
		require.Error(t, err, "pattern %q", tc.pattern)
		assert.True(t, errors.Is(err, cgerrors.ErrEmptyPattern), "pattern %q: %v", tc.pattern, err)

		var searchErr *cgerrors.SearchError
		assert.True(t, errors.As(err, &searchErr))
	}
}

func TestNewMatcher_InvalidRegex(t *testing.T) {
	_, err := NewMatcher("foo(", Options{Regex: true})
	require.Error(t, err)

	var searchErr *cgerrors.SearchError
	require.True(t, errors.As(err, &searchErr))
	assert.False(t, errors.Is(err, cgerrors.ErrEmptyPattern))
}
