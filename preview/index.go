// Package preview keeps a markdown source buffer and its rendered HTML view
// in bidirectional sync. A render pass decorates every element with a
// pass-unique identifier, the mapping index associates identifiers with
// source byte offsets, the swap engine replaces view content without a
// reload, and the navigator resolves preview clicks back into precise
// source selections.
package preview

import (
	"sort"

	"github.com/oklog/ulid/v2"
)

// Index is the bidirectional association between node identifiers and
// source byte offsets for a single render pass. It is built once per pass,
// replaced wholesale by the next pass, and never mutated after Seal.
type Index struct {
	passID  string
	offsets map[string]int
	// entries holds (uid, offset) pairs in document order. Offsets are
	// monotonically non-decreasing, which Nearest relies on.
	entries []indexEntry
}

type indexEntry struct {
	uid    string
	offset int
}

// NewIndex creates an empty index stamped with a fresh render pass id.
func NewIndex() *Index {
	return &Index{
		passID:  ulid.Make().String(),
		offsets: make(map[string]int),
	}
}

// PassID returns the render pass identifier this index belongs to.
func (ix *Index) PassID() string {
	return ix.passID
}

// Add records an identifier and its source offset hint. Identifiers are
// added in document order; an offset smaller than the previous entry is
// raised to it so the document-order invariant holds.
func (ix *Index) Add(uid string, offset int) {
	if offset < 0 {
		offset = 0
	}
	if n := len(ix.entries); n > 0 && offset < ix.entries[n-1].offset {
		offset = ix.entries[n-1].offset
	}
	if _, ok := ix.offsets[uid]; ok {
		return // first hint wins; identifiers are unique per pass
	}
	ix.offsets[uid] = offset
	ix.entries = append(ix.entries, indexEntry{uid: uid, offset: offset})
}

// Len returns the number of identifiers in the index.
func (ix *Index) Len() int {
	return len(ix.entries)
}

// Lookup returns the source offset hint for an identifier.
func (ix *Index) Lookup(uid string) (int, bool) {
	off, ok := ix.offsets[uid]
	return off, ok
}

// Nearest returns the identifier whose offset hint is closest to the given
// source offset. Ties resolve to the earlier entry.
func (ix *Index) Nearest(offset int) (string, bool) {
	if len(ix.entries) == 0 {
		return "", false
	}
	// First entry with offset >= target.
	i := sort.Search(len(ix.entries), func(i int) bool {
		return ix.entries[i].offset >= offset
	})
	if i == len(ix.entries) {
		return ix.entries[i-1].uid, true
	}
	if i == 0 {
		return ix.entries[0].uid, true
	}
	if offset-ix.entries[i-1].offset <= ix.entries[i].offset-offset {
		return ix.entries[i-1].uid, true
	}
	return ix.entries[i].uid, true
}

// NearestOffset returns the offset hint of the entry nearest to the given
// offset. Used by the swap engine to re-anchor the viewport.
func (ix *Index) NearestOffset(offset int) (int, bool) {
	uid, ok := ix.Nearest(offset)
	if !ok {
		return 0, false
	}
	return ix.offsets[uid], true
}
