package editor

import (
	"os"
	"path/filepath"
	"testing"
)

func TestBufferOpenSave(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.md")
	if err := os.WriteFile(path, []byte("# Hello\n"), 0644); err != nil {
		t.Fatal(err)
	}

	b := NewBuffer()
	if err := b.Open(path); err != nil {
		t.Fatalf("Open: %v", err)
	}
	if b.Text() != "# Hello\n" {
		t.Errorf("Text() = %q, want %q", b.Text(), "# Hello\n")
	}
	if b.Dirty() {
		t.Error("freshly opened buffer should not be dirty")
	}

	b.SetText("# Hello\n\nworld\n")
	if !b.Dirty() {
		t.Error("buffer should be dirty after SetText")
	}
	if err := b.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if b.Dirty() {
		t.Error("buffer should be clean after Save")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "# Hello\n\nworld\n" {
		t.Errorf("saved content = %q", string(data))
	}
}

func TestBufferSaveUntitled(t *testing.T) {
	b := NewBuffer()
	b.SetText("text")
	if err := b.Save(); err == nil {
		t.Error("Save on untitled buffer should fail")
	}
	if b.Title() != "untitled" {
		t.Errorf("Title() = %q, want untitled", b.Title())
	}
}

func TestBufferUndoRedo(t *testing.T) {
	b := NewBuffer()
	b.SetText("hello world")

	b.ApplyEdit(6, "world", "there")
	if b.Text() != "hello there" {
		t.Errorf("after edit, Text() = %q", b.Text())
	}

	if !b.Undo() {
		t.Fatal("Undo returned false")
	}
	if b.Text() != "hello world" {
		t.Errorf("after undo, Text() = %q", b.Text())
	}

	if !b.Redo() {
		t.Fatal("Redo returned false")
	}
	if b.Text() != "hello there" {
		t.Errorf("after redo, Text() = %q", b.Text())
	}

	if b.Redo() {
		t.Error("Redo on empty stack should return false")
	}
}

func TestBufferFind(t *testing.T) {
	b := NewBuffer()
	b.SetText("one two one")

	ranges := b.Find("one")
	if len(ranges) != 2 {
		t.Fatalf("Find returned %d ranges, want 2", len(ranges))
	}
	if ranges[0] != (Range{0, 3}) || ranges[1] != (Range{8, 11}) {
		t.Errorf("Find ranges = %v", ranges)
	}

	if b.Find("") != nil {
		t.Error("Find with empty query should return nil")
	}
}

func TestBufferSelectRange(t *testing.T) {
	b := NewBuffer()
	b.SetText("abcdef")

	b.SelectRange(2, 4)
	sel := b.Selection()
	if sel.Anchor != 2 || sel.Cursor != 4 {
		t.Errorf("Selection = %+v, want {2 4}", sel)
	}

	// Reversed arguments are normalized.
	b.SelectRange(5, 1)
	sel = b.Selection()
	if start, end := sel.Ordered(); start != 1 || end != 5 {
		t.Errorf("Ordered() = (%d, %d), want (1, 5)", start, end)
	}

	// Out-of-bounds offsets clamp.
	b.SelectRange(-3, 100)
	sel = b.Selection()
	if start, end := sel.Ordered(); start != 0 || end != 6 {
		t.Errorf("clamped Ordered() = (%d, %d), want (0, 6)", start, end)
	}
}

func TestBufferCursorAndScroll(t *testing.T) {
	b := NewBuffer()
	b.SetText("a\nb\nc\nd")

	b.MoveCursor(3)
	if b.Cursor() != 3 {
		t.Errorf("Cursor() = %d, want 3", b.Cursor())
	}
	b.MoveCursor(-1)
	if b.Cursor() != 0 {
		t.Errorf("Cursor() = %d, want 0 after negative move", b.Cursor())
	}
	b.MoveCursor(99)
	if b.Cursor() != 7 {
		t.Errorf("Cursor() = %d, want 7 after clamped move", b.Cursor())
	}

	b.ScrollToLine(2)
	if b.TopLine() != 2 {
		t.Errorf("TopLine() = %d, want 2", b.TopLine())
	}
	b.ScrollToLine(-1)
	if b.TopLine() != 0 {
		t.Errorf("TopLine() = %d, want 0", b.TopLine())
	}
	b.ScrollToLine(50)
	if b.TopLine() != 3 {
		t.Errorf("TopLine() = %d, want 3 (last line)", b.TopLine())
	}
}

func TestBufferSetTextClampsState(t *testing.T) {
	b := NewBuffer()
	b.SetText("a long initial text")
	b.SelectRange(5, 12)
	b.MoveCursor(15)

	b.SetText("tiny")
	sel := b.Selection()
	if sel.Anchor > 4 || sel.Cursor > 4 {
		t.Errorf("selection not clamped: %+v", sel)
	}
	if b.Cursor() > 4 {
		t.Errorf("cursor not clamped: %d", b.Cursor())
	}
}

func TestBufferFocus(t *testing.T) {
	b := NewBuffer()
	if b.Focused() {
		t.Error("new buffer should not be focused")
	}
	b.Focus()
	if !b.Focused() {
		t.Error("buffer should be focused after Focus")
	}
	b.Blur()
	if b.Focused() {
		t.Error("buffer should not be focused after Blur")
	}
}

func TestBufferReplaceAll(t *testing.T) {
	b := NewBuffer()
	b.SetText("foo bar foo baz foo")

	if n := b.ReplaceAll("foo", "qux"); n != 3 {
		t.Errorf("ReplaceAll returned %d, want 3", n)
	}
	if got := b.Text(); got != "qux bar qux baz qux" {
		t.Errorf("Text() = %q", got)
	}

	// Each replacement is a separate undo step.
	b.Undo()
	if got := b.Text(); got != "foo bar qux baz qux" {
		t.Errorf("after one undo: %q", got)
	}
}

func TestBufferReplaceRange(t *testing.T) {
	b := NewBuffer()
	b.SetText("hello world")
	b.Replace(Range{Start: 6, End: 11}, "there")
	if got := b.Text(); got != "hello there" {
		t.Errorf("Text() = %q", got)
	}

	// Out-of-bounds ranges are ignored.
	b.Replace(Range{Start: 4, End: 99}, "x")
	if got := b.Text(); got != "hello there" {
		t.Errorf("Text() after bad range = %q", got)
	}
}
