package preview

import "testing"

func TestIndexLookup(t *testing.T) {
	ix := NewIndex()
	ix.Add("n0", 0)
	ix.Add("n1", 10)
	ix.Add("n2", 25)

	off, ok := ix.Lookup("n1")
	if !ok || off != 10 {
		t.Errorf("Lookup(n1) = (%d, %v), want (10, true)", off, ok)
	}

	if _, ok := ix.Lookup("missing"); ok {
		t.Error("Lookup of unknown identifier should fail")
	}

	if ix.Len() != 3 {
		t.Errorf("Len() = %d, want 3", ix.Len())
	}
}

func TestIndexDuplicateAdd(t *testing.T) {
	ix := NewIndex()
	ix.Add("n0", 5)
	ix.Add("n0", 99)

	off, _ := ix.Lookup("n0")
	if off != 5 {
		t.Errorf("duplicate Add should keep first offset, got %d", off)
	}
	if ix.Len() != 1 {
		t.Errorf("Len() = %d, want 1", ix.Len())
	}
}

func TestIndexMonotonicOffsets(t *testing.T) {
	ix := NewIndex()
	ix.Add("n0", 10)
	ix.Add("n1", 4) // out of order: raised to the previous offset

	off, _ := ix.Lookup("n1")
	if off != 10 {
		t.Errorf("out-of-order offset = %d, want raised to 10", off)
	}
}

func TestIndexNearest(t *testing.T) {
	ix := NewIndex()
	ix.Add("a", 0)
	ix.Add("b", 10)
	ix.Add("c", 100)

	tests := []struct {
		offset int
		want   string
	}{
		{0, "a"},
		{4, "a"},
		{5, "a"}, // tie resolves to the earlier entry
		{6, "b"},
		{10, "b"},
		{54, "b"},
		{56, "c"},
		{1000, "c"},
		{-5, "a"},
	}
	for _, tt := range tests {
		got, ok := ix.Nearest(tt.offset)
		if !ok || got != tt.want {
			t.Errorf("Nearest(%d) = (%q, %v), want %q", tt.offset, got, ok, tt.want)
		}
	}
}

func TestIndexNearestEmpty(t *testing.T) {
	ix := NewIndex()
	if _, ok := ix.Nearest(0); ok {
		t.Error("Nearest on empty index should fail")
	}
}

func TestIndexPassIDsDiffer(t *testing.T) {
	a := NewIndex()
	b := NewIndex()
	if a.PassID() == "" || a.PassID() == b.PassID() {
		t.Errorf("pass ids should be unique and non-empty, got %q and %q", a.PassID(), b.PassID())
	}
}
