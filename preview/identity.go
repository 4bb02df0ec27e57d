package preview

import (
	"fmt"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

// uidAttr is the attribute carrying a node's render-pass identifier in the
// produced HTML. Nothing outside this package may depend on its name.
var uidAttr = []byte("data-uid")

// indexContextKey carries the per-pass *Index through the parse so the
// identity assigner can record offsets while the renderer runs.
var indexContextKey = parser.NewContextKey()

// identityAssigner is a goldmark AST transformer that attaches a
// pass-unique identifier and a source offset hint to every element-level
// node. Identifiers are counter-based in walk order, so identical source
// text always produces identical identifiers.
type identityAssigner struct{}

func newIdentityAssigner() *identityAssigner {
	return &identityAssigner{}
}

// Transform walks the freshly parsed document and decorates it. Nodes the
// parser exposes no reliable offset for inherit the hint of the nearest
// preceding node, so every identifier has an offset and the recorded
// offsets are monotonically non-decreasing in document order.
func (a *identityAssigner) Transform(doc *ast.Document, reader text.Reader, pc parser.Context) {
	ix, _ := pc.Get(indexContextKey).(*Index)
	if ix == nil {
		return
	}

	seq := 0
	last := 0
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch n.Kind() {
		case ast.KindDocument, ast.KindText, ast.KindString:
			// Raw text runs are not addressable elements.
			return ast.WalkContinue, nil
		}

		off, ok := nodeOffset(n)
		if !ok || off < last {
			off = last
		}
		uid := fmt.Sprintf("n%d", seq)
		seq++
		n.SetAttribute(uidAttr, []byte(uid))
		ix.Add(uid, off)
		last = off
		return ast.WalkContinue, nil
	})
}

// nodeOffset returns the best-known starting byte offset of a node in the
// source text.
func nodeOffset(n ast.Node) (int, bool) {
	switch t := n.(type) {
	case *ast.Text:
		return t.Segment.Start, true
	case *ast.RawHTML:
		if t.Segments.Len() > 0 {
			return t.Segments.At(0).Start, true
		}
		return 0, false
	}
	if n.Type() == ast.TypeBlock {
		if lines := n.Lines(); lines != nil && lines.Len() > 0 {
			return lines.At(0).Start, true
		}
		return firstTextOffset(n)
	}
	return firstTextOffset(n)
}

// firstTextOffset finds the starting offset of the first text run beneath
// the node, depth first.
func firstTextOffset(n ast.Node) (int, bool) {
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*ast.Text); ok {
			return t.Segment.Start, true
		}
		if off, ok := firstTextOffset(c); ok {
			return off, true
		}
	}
	return 0, false
}

// nodeUID returns the identifier assigned to a node, or "" if the node was
// not decorated.
func nodeUID(n ast.Node) string {
	if v, ok := n.Attribute(uidAttr); ok {
		if b, ok := v.([]byte); ok {
			return string(b)
		}
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
