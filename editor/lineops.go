package editor

import "strings"

// Bias controls which line an offset resolves to when it sits exactly on a
// line boundary.
type Bias int

const (
	// BiasLeft resolves a line-start offset to the preceding line.
	BiasLeft Bias = iota
	// BiasRight resolves a line-start offset to the line it begins.
	BiasRight
)

// LineCount returns the number of lines in the text.
// An empty string is considered to have 1 line.
func LineCount(text string) int {
	if text == "" {
		return 1
	}
	return strings.Count(text, "\n") + 1
}

// OffsetToLine converts a byte offset into a 0-based line index. Offsets
// outside the text are clamped. An offset at the start of a line resolves
// to that line under BiasRight and to the preceding line under BiasLeft.
func OffsetToLine(text string, offset int, bias Bias) int {
	if offset < 0 {
		offset = 0
	}
	if offset > len(text) {
		offset = len(text)
	}
	line := strings.Count(text[:offset], "\n")
	if bias == BiasLeft && offset > 0 && text[offset-1] == '\n' {
		line--
	}
	return line
}

// LineStart returns the byte offset at which the 0-based line begins.
// Lines past the end of the text resolve to len(text).
func LineStart(text string, line int) int {
	if line <= 0 {
		return 0
	}
	offset := 0
	for i := 0; i < line; i++ {
		nl := strings.IndexByte(text[offset:], '\n')
		if nl < 0 {
			return len(text)
		}
		offset += nl + 1
	}
	return offset
}

// LineEnd returns the byte offset just past the last character of the
// 0-based line, excluding its trailing newline.
func LineEnd(text string, line int) int {
	start := LineStart(text, line)
	nl := strings.IndexByte(text[start:], '\n')
	if nl < 0 {
		return len(text)
	}
	return start + nl
}

// LineText returns the content of the 0-based line without its trailing
// newline. Out-of-range lines yield "".
func LineText(text string, line int) string {
	if line < 0 || line >= LineCount(text) {
		return ""
	}
	return text[LineStart(text, line):LineEnd(text, line)]
}

// AbsoluteOffset converts a 0-based line and byte column into an absolute
// byte offset. The column is clamped into the line; out-of-range lines
// clamp to the text bounds.
func AbsoluteOffset(text string, line, col int) int {
	if line < 0 {
		return 0
	}
	if line >= LineCount(text) {
		return len(text)
	}
	start := LineStart(text, line)
	end := LineEnd(text, line)
	if col < 0 {
		col = 0
	}
	if start+col > end {
		return end
	}
	return start + col
}

// LineBounds returns the [start, end) byte range of the line containing the
// given offset, excluding the trailing newline.
func LineBounds(text string, offset int) (start, end int) {
	line := OffsetToLine(text, offset, BiasRight)
	return LineStart(text, line), LineEnd(text, line)
}
