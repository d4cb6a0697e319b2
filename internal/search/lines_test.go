package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractLine(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		offset   int
		wantLine string
		wantEnd  int
	}{
		{"offset zero", "foo\nbar baz\n", 0, "foo", 3},
		{"middle line", "foo\nbar baz\nqux", 8, "bar baz", 11},
		{"last line without newline", "foo\n  qux foo end", 12, "qux foo end", 17},
		{"single line", "qux foo end", 4, "qux foo end", 11},
		{"offset on newline", "ab\ncd", 2, "ab", 2},
		{"first char after newline", "ab\ncd", 3, "cd", 5},
		{"whitespace trimmed", "\t  return x;  \n", 5, "return x;", 14},
		{"crlf endings", "a\r\nb\r\n", 3, "b", 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			line, end := ExtractLine(tt.text, tt.offset)
			assert.Equal(t, tt.wantLine, line)
			assert.Equal(t, tt.wantEnd, end)
		})
	}
}

func TestComputeLineStart(t *testing.T) {
	text := "one\ntwo\nthree"
	assert.Equal(t, 0, ComputeLineStart(text, 0))
	assert.Equal(t, 0, ComputeLineStart(text, 3))
	assert.Equal(t, 4, ComputeLineStart(text, 4))
	assert.Equal(t, 4, ComputeLineStart(text, 6))
	assert.Equal(t, 8, ComputeLineStart(text, 12))
	assert.Equal(t, 8, ComputeLineStart(text, 100))
	assert.Equal(t, 0, ComputeLineStart("", 5))
}

func TestComputeLineEnd(t *testing.T) {
	text := "one\ntwo\nthree"
	assert.Equal(t, 3, ComputeLineEnd(text, 0))
	assert.Equal(t, 3, ComputeLineEnd(text, 3))
	assert.Equal(t, 7, ComputeLineEnd(text, 4))
	assert.Equal(t, len(text), ComputeLineEnd(text, 9))
	assert.Equal(t, len(text), ComputeLineEnd(text, len(text)))
	assert.Equal(t, 3, ComputeLineEnd(text, -1))
}

func TestComputeLineNumber(t *testing.T) {
	text := "one\ntwo\nthree"
	assert.Equal(t, 1, ComputeLineNumber(text, 0))
	assert.Equal(t, 1, ComputeLineNumber(text, 3))
	assert.Equal(t, 2, ComputeLineNumber(text, 4))
	assert.Equal(t, 3, ComputeLineNumber(text, 12))
	assert.Equal(t, 3, ComputeLineNumber(text, 50))
}

func TestIsWordBoundary(t *testing.T) {
	text := "foo.bar_baz"
	assert.True(t, IsWordBoundary(text, 0))
	assert.False(t, IsWordBoundary(text, 1))
	assert.True(t, IsWordBoundary(text, 3))
	assert.True(t, IsWordBoundary(text, 4))
	assert.False(t, IsWordBoundary(text, 7), "underscore is a word character")
	assert.True(t, IsWordBoundary(text, len(text)))
	assert.True(t, IsWordBoundary(text, -1))
}
