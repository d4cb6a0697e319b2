package search

import "strings"

// Line helpers operate on byte offsets into UTF-8 text.

// ComputeLineStart returns the offset of the first byte of the line containing offset:
// one past the last newline before offset, or 0.
func ComputeLineStart(text string, offset int) int {
	if offset <= 0 || len(text) == 0 {
		return 0
	}
	if offset > len(text) {
		offset = len(text)
	}
	return strings.LastIndexByte(text[:offset], '\n') + 1
}

// ComputeLineEnd returns the offset of the next newline at or after offset,
// or len(text) when the line is the last one.
func ComputeLineEnd(text string, offset int) int {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(text) {
		return len(text)
	}
	idx := strings.IndexByte(text[offset:], '\n')
	if idx < 0 {
		return len(text)
	}
	return offset + idx
}

// ComputeLineNumber returns the 1-based line number of offset
func ComputeLineNumber(text string, offset int) int {
	if offset > len(text) {
		offset = len(text)
	}
	if offset <= 0 {
		return 1
	}
	return strings.Count(text[:offset], "\n") + 1
}

// ExtractLine returns the trimmed line containing offset and the untrimmed
// end of that line, which is where a resumed search continues.
func ExtractLine(text string, offset int) (string, int) {
	start := ComputeLineStart(text, offset)
	end := ComputeLineEnd(text, offset)
	if start > end {
		start = end
	}
	return strings.TrimSpace(text[start:end]), end
}

// IsWordCharacter returns true if the byte is alphanumeric or underscore
func IsWordCharacter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') ||
		(b >= '0' && b <= '9') || b == '_'
}

// IsWordBoundary reports whether a word character meets a non-word character at pos.
// The start and end of text count as non-word characters.
func IsWordBoundary(text string, pos int) bool {
	if pos < 0 || pos > len(text) {
		return true
	}
	prevIsWord := pos > 0 && IsWordCharacter(text[pos-1])
	currIsWord := pos < len(text) && IsWordCharacter(text[pos])
	return prevIsWord != currIsWord
}
