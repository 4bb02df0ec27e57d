package editor

import "testing"

func TestLineCount(t *testing.T) {
	tests := []struct {
		text string
		want int
	}{
		{"", 1},
		{"one line", 1},
		{"a\nb", 2},
		{"a\nb\n", 3},
		{"\n\n\n", 4},
	}
	for _, tt := range tests {
		if got := LineCount(tt.text); got != tt.want {
			t.Errorf("LineCount(%q) = %d, want %d", tt.text, got, tt.want)
		}
	}
}

func TestOffsetToLine(t *testing.T) {
	text := "abc\ndef\nghi"

	tests := []struct {
		offset int
		bias   Bias
		want   int
	}{
		{0, BiasRight, 0},
		{2, BiasRight, 0},
		{3, BiasRight, 0},  // at the newline, still line 0
		{4, BiasRight, 1},  // start of line 1
		{4, BiasLeft, 0},   // line-start offset biases left to line 0
		{7, BiasLeft, 1},   // at the newline, both biases agree
		{7, BiasRight, 1},
		{8, BiasRight, 2},
		{11, BiasRight, 2}, // end of text
		{-5, BiasRight, 0},
		{99, BiasRight, 2},
	}
	for _, tt := range tests {
		if got := OffsetToLine(text, tt.offset, tt.bias); got != tt.want {
			t.Errorf("OffsetToLine(%d, %v) = %d, want %d", tt.offset, tt.bias, got, tt.want)
		}
	}
}

func TestLineStartEnd(t *testing.T) {
	text := "abc\ndef\nghi"

	starts := []int{0, 4, 8}
	ends := []int{3, 7, 11}
	for line := 0; line < 3; line++ {
		if got := LineStart(text, line); got != starts[line] {
			t.Errorf("LineStart(%d) = %d, want %d", line, got, starts[line])
		}
		if got := LineEnd(text, line); got != ends[line] {
			t.Errorf("LineEnd(%d) = %d, want %d", line, got, ends[line])
		}
	}

	if got := LineStart(text, 10); got != len(text) {
		t.Errorf("LineStart past end = %d, want %d", got, len(text))
	}
}

func TestLineText(t *testing.T) {
	text := "abc\ndef\n"

	tests := []struct {
		line int
		want string
	}{
		{0, "abc"},
		{1, "def"},
		{2, ""}, // trailing newline creates an empty final line
		{3, ""},
		{-1, ""},
	}
	for _, tt := range tests {
		if got := LineText(text, tt.line); got != tt.want {
			t.Errorf("LineText(%d) = %q, want %q", tt.line, got, tt.want)
		}
	}
}

func TestAbsoluteOffset(t *testing.T) {
	text := "abc\ndef\nghi"

	tests := []struct {
		line, col int
		want      int
	}{
		{0, 0, 0},
		{0, 2, 2},
		{0, 99, 3}, // clamped to line end, before the newline
		{1, 1, 5},
		{2, 3, 11},
		{-1, 0, 0},
		{99, 0, len(text)},
	}
	for _, tt := range tests {
		if got := AbsoluteOffset(text, tt.line, tt.col); got != tt.want {
			t.Errorf("AbsoluteOffset(%d, %d) = %d, want %d", tt.line, tt.col, got, tt.want)
		}
	}
}

func TestLineBounds(t *testing.T) {
	text := "abc\ndef"

	start, end := LineBounds(text, 5)
	if start != 4 || end != 7 {
		t.Errorf("LineBounds(5) = (%d, %d), want (4, 7)", start, end)
	}

	start, end = LineBounds(text, 0)
	if start != 0 || end != 3 {
		t.Errorf("LineBounds(0) = (%d, %d), want (0, 3)", start, end)
	}
}
