package editor

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// Range represents a byte range [Start, End) within buffer text.
type Range struct {
	Start, End int
}

// Contains reports whether the offset falls within the range.
func (r Range) Contains(offset int) bool {
	return offset >= r.Start && offset < r.End
}

// editOp records a single edit for undo/redo support.
type editOp struct {
	offset  int
	oldText string
	newText string
}

// Buffer manages the text content of a single open file together with the
// view state a navigation consumer needs: selection, cursor, scroll position
// and focus. It is the host-side implementation of the text-editing surface.
type Buffer struct {
	path      string // absolute path, or "" if untitled
	text      string // current text content
	savedText string // text at last save/open (for dirty comparison)
	undoStack []editOp
	redoStack []editOp

	sel          Selection
	cursor       int
	topLine      int
	visibleLines int
	focused      bool
}

// NewBuffer creates a new empty, untitled buffer.
func NewBuffer() *Buffer {
	return &Buffer{visibleLines: 24}
}

// Open reads the file at path into the buffer, replacing any existing content.
// The stored path is converted to an absolute path.
func (b *Buffer) Open(path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(absPath)
	if err != nil {
		return err
	}

	b.path = absPath
	b.text = string(data)
	b.savedText = b.text
	b.sel = Selection{}
	b.cursor = 0
	b.topLine = 0
	return nil
}

// Save writes the current text to the stored path.
// Returns an error if the buffer has no path (untitled).
func (b *Buffer) Save() error {
	if b.path == "" {
		return errors.New("buffer has no path; use SaveAs")
	}
	if err := os.WriteFile(b.path, []byte(b.text), 0644); err != nil {
		return err
	}
	b.savedText = b.text
	return nil
}

// SaveAs writes the current text to the given path, updates the stored path,
// and marks the buffer as clean.
func (b *Buffer) SaveAs(path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	if err := os.WriteFile(absPath, []byte(b.text), 0644); err != nil {
		return err
	}

	b.path = absPath
	b.savedText = b.text
	return nil
}

// Path returns the absolute file path, or "" if the buffer is untitled.
func (b *Buffer) Path() string {
	return b.path
}

// Text returns the current text content of the buffer.
func (b *Buffer) Text() string {
	return b.text
}

// SetText updates the buffer's text content and clamps the cursor and
// selection into the new bounds. Dirty status is computed by comparing the
// current text with the saved text.
func (b *Buffer) SetText(text string) {
	b.text = text
	b.cursor = clampOffset(b.cursor, len(text))
	b.sel.Anchor = clampOffset(b.sel.Anchor, len(text))
	b.sel.Cursor = clampOffset(b.sel.Cursor, len(text))
}

// Dirty reports whether the buffer's text differs from the last saved/opened text.
func (b *Buffer) Dirty() bool {
	return b.text != b.savedText
}

// Untitled reports whether the buffer has no associated file path.
func (b *Buffer) Untitled() bool {
	return b.path == ""
}

// Title returns the base filename, or "untitled" if the buffer has no path.
func (b *Buffer) Title() string {
	if b.path == "" {
		return "untitled"
	}
	return filepath.Base(b.path)
}

// ApplyEdit records the edit on the undo stack, clears the redo stack,
// and applies the edit to the buffer text. The edit replaces the text at
// [offset, offset+len(oldText)) with newText.
func (b *Buffer) ApplyEdit(offset int, oldText, newText string) {
	b.undoStack = append(b.undoStack, editOp{
		offset:  offset,
		oldText: oldText,
		newText: newText,
	})
	b.redoStack = nil
	b.text = b.text[:offset] + newText + b.text[offset+len(oldText):]
}

// Undo reverses the last edit. Returns true if an edit was undone, false if
// the undo stack is empty.
func (b *Buffer) Undo() bool {
	if len(b.undoStack) == 0 {
		return false
	}
	op := b.undoStack[len(b.undoStack)-1]
	b.undoStack = b.undoStack[:len(b.undoStack)-1]
	// Reverse the edit: replace newText back with oldText.
	b.text = b.text[:op.offset] + op.oldText + b.text[op.offset+len(op.newText):]
	b.redoStack = append(b.redoStack, op)
	return true
}

// Redo reapplies the last undone edit. Returns true if an edit was redone,
// false if the redo stack is empty.
func (b *Buffer) Redo() bool {
	if len(b.redoStack) == 0 {
		return false
	}
	op := b.redoStack[len(b.redoStack)-1]
	b.redoStack = b.redoStack[:len(b.redoStack)-1]
	// Reapply the edit.
	b.text = b.text[:op.offset] + op.newText + b.text[op.offset+len(op.oldText):]
	b.undoStack = append(b.undoStack, op)
	return true
}

// Find returns all byte ranges where query appears as a substring in the
// buffer text. Returns nil if query is empty or not found.
func (b *Buffer) Find(query string) []Range {
	if query == "" {
		return nil
	}
	var results []Range
	start := 0
	for {
		idx := strings.Index(b.text[start:], query)
		if idx < 0 {
			break
		}
		absIdx := start + idx
		results = append(results, Range{Start: absIdx, End: absIdx + len(query)})
		start = absIdx + len(query)
	}
	return results
}

// Replace replaces the text at the given range with replacement, recording
// the edit on the undo stack.
func (b *Buffer) Replace(r Range, replacement string) {
	if r.Start < 0 || r.End > len(b.text) || r.Start > r.End {
		return
	}
	b.ApplyEdit(r.Start, b.text[r.Start:r.End], replacement)
}

// ReplaceAll replaces all occurrences of query with replacement and
// returns the number of replacements. Applied back to front so earlier
// offsets stay valid.
func (b *Buffer) ReplaceAll(query, replacement string) int {
	ranges := b.Find(query)
	for i := len(ranges) - 1; i >= 0; i-- {
		b.ApplyEdit(ranges[i].Start, query, replacement)
	}
	return len(ranges)
}

// OffsetToLine converts a byte offset into a 0-based line index. The offset
// is clamped into buffer bounds. When the offset sits exactly at the start
// of a line, BiasLeft resolves to the preceding line and BiasRight to the
// line being started.
func (b *Buffer) OffsetToLine(offset int, bias Bias) int {
	return OffsetToLine(b.text, offset, bias)
}

// LineText returns the content of the 0-based line without its trailing
// newline. Out-of-range lines yield "".
func (b *Buffer) LineText(line int) string {
	return LineText(b.text, line)
}

// AbsoluteOffset converts a 0-based line and byte column into an absolute
// byte offset, clamping the column into the line.
func (b *Buffer) AbsoluteOffset(line, col int) int {
	return AbsoluteOffset(b.text, line, col)
}

// SelectRange sets the active selection to [start, end), clamped into
// buffer bounds.
func (b *Buffer) SelectRange(start, end int) {
	start = clampOffset(start, len(b.text))
	end = clampOffset(end, len(b.text))
	if end < start {
		start, end = end, start
	}
	b.sel = Selection{Anchor: start, Cursor: end}
}

// MoveCursor places the cursor at the given byte offset, clamped into
// buffer bounds. The selection is left untouched.
func (b *Buffer) MoveCursor(offset int) {
	b.cursor = clampOffset(offset, len(b.text))
}

// ScrollToLine scrolls the view so that the given line is the top visible
// line. Negative lines clamp to 0.
func (b *Buffer) ScrollToLine(line int) {
	if line < 0 {
		line = 0
	}
	max := LineCount(b.text) - 1
	if line > max {
		line = max
	}
	b.topLine = line
}

// Focus gives the buffer keyboard focus.
func (b *Buffer) Focus() {
	b.focused = true
}

// Blur removes keyboard focus from the buffer.
func (b *Buffer) Blur() {
	b.focused = false
}

// Focused reports whether the buffer currently has keyboard focus.
func (b *Buffer) Focused() bool {
	return b.focused
}

// Selection returns the current selection.
func (b *Buffer) Selection() Selection {
	return b.sel
}

// Cursor returns the current cursor offset.
func (b *Buffer) Cursor() int {
	return b.cursor
}

// TopLine returns the 0-based index of the top visible line.
func (b *Buffer) TopLine() int {
	return b.topLine
}

// SetVisibleLines records how many lines the attached view can show at once.
// Values below 1 are ignored.
func (b *Buffer) SetVisibleLines(n int) {
	if n >= 1 {
		b.visibleLines = n
	}
}

// VisibleLines returns the number of lines the attached view can show.
func (b *Buffer) VisibleLines() int {
	return b.visibleLines
}

func clampOffset(offset, max int) int {
	if offset < 0 {
		return 0
	}
	if offset > max {
		return max
	}
	return offset
}
