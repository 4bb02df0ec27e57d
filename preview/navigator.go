package preview

import (
	"log"
	"strings"
	"time"

	"github.com/odvcencio/scribe/editor"
)

// TextSurface is the text-editing surface the navigator drives. The buffer
// is always authoritative; navigation is a convenience layered on top, so
// every operation here must tolerate being skipped.
type TextSurface interface {
	Text() string
	OffsetToLine(offset int, bias editor.Bias) int
	LineText(line int) string
	AbsoluteOffset(line, col int) int
	SelectRange(start, end int)
	MoveCursor(offset int)
	ScrollToLine(line int)
	Focus()
	VisibleLines() int
}

// Navigator resolves click events from the rendered view into concrete
// source selections. The index func is dereferenced per navigation so a
// click always consults the most recent render pass, never a captured one.
type Navigator struct {
	surface TextSurface
	index   func() *Index
	settle  time.Duration
}

// NewNavigator creates a navigator over the given surface. index must
// return the mapping index of the most recent render pass, or nil before
// the first pass.
func NewNavigator(surface TextSurface, index func() *Index) *Navigator {
	return &Navigator{
		surface: surface,
		index:   index,
		settle:  30 * time.Millisecond,
	}
}

// SetSettleDelay adjusts how long the navigator waits before scrolling the
// surface, giving it time to finish a pending layout pass.
func (nv *Navigator) SetSettleDelay(d time.Duration) {
	if d >= 0 {
		nv.settle = d
	}
}

// Navigate resolves one click event and applies the resulting selection.
// Unresolvable clicks are a no-op: a click whose identity cannot be
// recovered is not an error. Selection application is synchronous; viewport
// centering runs as a second, deferred phase.
func (nv *Navigator) Navigate(ev ClickEvent) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("preview: navigation aborted: %v", r)
		}
	}()

	text := nv.surface.Text()
	rng, ok := Resolve(ev, nv.index(), text)
	if !ok {
		log.Printf("preview: click on <%s> did not resolve", ev.TagName)
		return
	}
	if rng.Start < 0 || rng.End > len(text) || rng.Start > rng.End {
		return
	}

	nv.surface.SelectRange(rng.Start, rng.End)
	nv.surface.MoveCursor(rng.Start)
	// The wait is an approximation of "layout settled", not a guarantee.
	time.AfterFunc(nv.settle, func() {
		nv.scrollIntoView(rng)
	})
}

// scrollIntoView centers the range vertically in the visible area. A range
// taller than half the view centers on its midpoint so as much of it as
// possible stays on screen.
func (nv *Navigator) scrollIntoView(rng editor.Range) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("preview: scroll aborted: %v", r)
		}
	}()

	startLine := nv.surface.OffsetToLine(rng.Start, editor.BiasRight)
	endLine := nv.surface.OffsetToLine(rng.End, editor.BiasLeft)
	if endLine < startLine {
		endLine = startLine
	}
	visible := nv.surface.VisibleLines()
	if visible < 2 {
		visible = 2
	}
	center := startLine
	if span := endLine - startLine + 1; span > visible/2 {
		center = startLine + span/2
	}
	top := center - visible/2
	if top < 0 {
		top = 0
	}
	nv.surface.ScrollToLine(top)
	nv.surface.Focus()
}

// rangeStrategy is the closed set of range-resolution strategies. The
// fallback order is: ignored, fenced-code, balanced-HTML, list-line,
// prose-line, surgical-inline.
type rangeStrategy int

const (
	strategyIgnored rangeStrategy = iota
	strategyFencedCode
	strategyBalancedHTML
	strategyListLine
	strategyProseLine
	strategySurgical
)

// markerChars are the markup delimiter characters the surgical strategy
// trims over and sniffs for.
const markerChars = "*_`{}[]#=-|"

var structuralTags = map[string]bool{
	"div": true, "header": true, "main": true, "section": true,
	"article": true, "pre": true, "table": true, "thead": true,
	"tbody": true, "tfoot": true, "tr": true, "td": true, "th": true,
	"colgroup": true, "caption": true,
}

var proseTags = map[string]bool{
	"p": true, "h1": true, "h2": true, "h3": true, "h4": true,
	"h5": true, "h6": true, "blockquote": true, "header": true,
	"section": true, "article": true,
}

var voidTags = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"source": true, "track": true, "wbr": true,
}

// Resolve turns a click event into a source range using the given mapping
// index and buffer text. It is pure: no surface state is touched. The
// boolean is false for unresolvable clicks.
func Resolve(ev ClickEvent, ix *Index, text string) (editor.Range, bool) {
	tag := strings.ToLower(ev.TagName)
	// Self-closing line breaks collide with adjacent block starts and
	// would produce misleading jumps.
	if tag == "" || tag == "br" {
		return editor.Range{}, false
	}
	anchor, ok := resolveAnchor(ev, ix, text)
	if !ok {
		return editor.Range{}, false
	}
	return resolveRange(tag, ev.TextSnippet, text, anchor)
}

// resolveAnchor finds the anchor offset for a click: the index lookup is
// the exact path, the nth-occurrence scan of the literal opening tag the
// fallback. Two structurally identical elements can still mis-resolve on
// the fallback path; that is a known accuracy limit.
func resolveAnchor(ev ClickEvent, ix *Index, text string) (int, bool) {
	if ev.IdentifierHint != "" && ix != nil {
		if off, ok := ix.Lookup(ev.IdentifierHint); ok {
			if off > len(text) {
				// Stale hint after a concurrent edit.
				return 0, false
			}
			return off, true
		}
	}
	if ev.OpeningTag != "" {
		if off := nthOccurrence(text, ev.OpeningTag, ev.OccurrenceIndex); off >= 0 {
			return off, true
		}
	}
	return 0, false
}

// nthOccurrence returns the offset of the n-th (0-based) occurrence of
// needle, or -1.
func nthOccurrence(text, needle string, n int) int {
	if needle == "" {
		return -1
	}
	idx := 0
	count := 0
	for {
		i := strings.Index(text[idx:], needle)
		if i < 0 {
			return -1
		}
		abs := idx + i
		if count == n {
			return abs
		}
		count++
		idx = abs + len(needle)
	}
}

func strategyFor(tag, text string, anchor int) rangeStrategy {
	switch {
	case tag == "br":
		return strategyIgnored
	case tag == "pre" || tag == "code":
		return strategyFencedCode
	case structuralTags[tag] || htmlAhead(text, anchor):
		return strategyBalancedHTML
	case tag == "li":
		return strategyListLine
	case proseTags[tag]:
		return strategyProseLine
	default:
		return strategySurgical
	}
}

func resolveRange(tag, snippet, text string, anchor int) (editor.Range, bool) {
	if anchor < 0 || anchor > len(text) {
		return editor.Range{}, false
	}
	switch strategyFor(tag, text, anchor) {
	case strategyIgnored:
		return editor.Range{}, false
	case strategyFencedCode:
		if r, ok := fencedRange(tag, text, anchor); ok {
			return r, true
		}
		if tag == "code" {
			return surgicalRange(snippet, text, anchor)
		}
		return balancedOrFallback(tag, snippet, text, anchor)
	case strategyBalancedHTML:
		return balancedOrFallback(tag, snippet, text, anchor)
	case strategyListLine:
		return listLineRange(text, anchor)
	case strategyProseLine:
		return proseLineRange(text, anchor)
	default:
		return surgicalRange(snippet, text, anchor)
	}
}

// balancedOrFallback runs the balanced-tag scan, then degrades along the
// documented fallback order when the literal tag is nowhere ahead of the
// anchor (markdown-generated structural elements, e.g. pipe tables).
func balancedOrFallback(tag, snippet, text string, anchor int) (editor.Range, bool) {
	if r, ok := balancedRange(tag, text, anchor); ok {
		return r, true
	}
	if proseTags[tag] {
		return proseLineRange(text, anchor)
	}
	return surgicalRange(snippet, text, anchor)
}

// htmlAhead reports whether a '<' appears within 10 characters ahead of
// the anchor.
func htmlAhead(text string, anchor int) bool {
	if anchor < 0 || anchor >= len(text) {
		return false
	}
	end := anchor + 10
	if end > len(text) {
		end = len(text)
	}
	return strings.IndexByte(text[anchor:end], '<') >= 0
}

// fence describes one fenced code block in the source.
type fence struct {
	openStart    int // offset of the opening fence line
	contentStart int // first byte after the opening fence line
	contentEnd   int // last content byte, trailing line break excluded
	closeEnd     int // just past the closing fence marker
}

// fenceMarker reports the fence character and run length when a line opens
// a ``` or ~~~ fence.
func fenceMarker(line string) (byte, int, bool) {
	if len(line) < 3 {
		return 0, 0, false
	}
	c := line[0]
	if c != '`' && c != '~' {
		return 0, 0, false
	}
	n := 0
	for n < len(line) && line[n] == c {
		n++
	}
	if n < 3 {
		return 0, 0, false
	}
	if c == '`' && strings.IndexByte(line[n:], '`') >= 0 {
		return 0, 0, false
	}
	return c, n, true
}

// findFences scans the text line by line pairing fence starts with their
// closing markers. Unclosed fences are not reported.
func findFences(text string) []fence {
	var fences []fence
	var open *fence
	var marker byte
	var markerLen int

	offset := 0
	for offset <= len(text) {
		nl := strings.IndexByte(text[offset:], '\n')
		var line string
		next := len(text) + 1
		if nl < 0 {
			line = text[offset:]
		} else {
			line = text[offset : offset+nl]
			next = offset + nl + 1
		}
		trimmed := strings.TrimLeft(line, " ")

		if open == nil {
			if c, l, ok := fenceMarker(trimmed); ok {
				open = &fence{openStart: offset, contentStart: next}
				if open.contentStart > len(text) {
					open.contentStart = len(text)
				}
				marker, markerLen = c, l
			}
		} else if c, l, ok := fenceMarker(strings.TrimRight(trimmed, " ")); ok &&
			c == marker && l >= markerLen &&
			strings.Trim(trimmed, string(c)+" ") == "" {
			f := *open
			f.contentEnd = offset
			if f.contentEnd > f.contentStart {
				f.contentEnd-- // trim the line break before the closing fence
			}
			if f.contentEnd < f.contentStart {
				f.contentEnd = f.contentStart
			}
			f.closeEnd = offset + len(line)
			fences = append(fences, f)
			open = nil
		}

		if nl < 0 {
			break
		}
		offset = next
	}
	return fences
}

// fencedRange resolves pre/code clicks that fall inside a fenced block:
// pre selects the whole region including the fence markers, code only the
// inner content.
func fencedRange(tag, text string, anchor int) (editor.Range, bool) {
	for _, f := range findFences(text) {
		if anchor > f.openStart && anchor < f.closeEnd {
			if tag == "pre" {
				return editor.Range{Start: f.openStart, End: f.closeEnd}, true
			}
			return editor.Range{Start: f.contentStart, End: f.contentEnd}, true
		}
	}
	return editor.Range{}, false
}

// balancedRange resolves raw HTML: it finds the nearest following
// `<tagname` and scans forward counting nested open/close occurrences of
// that exact tag until the depth returns to zero. Void elements resolve to
// the single tag. Unbalanced markup degrades to the minimal safe range,
// anchor to the next '>'.
func balancedRange(tag, text string, anchor int) (editor.Range, bool) {
	lower := strings.ToLower(text)
	open := findTagToken(lower, anchor, "<"+tag)
	if open < 0 {
		return editor.Range{}, false
	}

	if voidTags[tag] {
		if gt := strings.IndexByte(text[open:], '>'); gt >= 0 {
			return editor.Range{Start: open, End: open + gt + 1}, true
		}
		return editor.Range{}, false
	}

	openTok := "<" + tag
	closeTok := "</" + tag
	depth := 0
	pos := open
	for pos < len(lower) {
		lt := strings.IndexByte(lower[pos:], '<')
		if lt < 0 {
			break
		}
		pos += lt
		switch {
		case hasTagAt(lower, pos, closeTok):
			gt := strings.IndexByte(text[pos:], '>')
			if gt < 0 {
				pos = len(text)
				break
			}
			depth--
			if depth <= 0 {
				return editor.Range{Start: open, End: pos + gt + 1}, true
			}
			pos += gt + 1
		case hasTagAt(lower, pos, openTok):
			gt := strings.IndexByte(text[pos:], '>')
			if gt < 0 {
				pos = len(text)
				break
			}
			if text[pos+gt-1] == '/' {
				// Self-closing: opens and closes in place.
				if depth == 0 {
					return editor.Range{Start: open, End: pos + gt + 1}, true
				}
			} else {
				depth++
			}
			pos += gt + 1
		default:
			pos++
		}
	}

	if gt := strings.IndexByte(text[anchor:], '>'); gt >= 0 {
		return editor.Range{Start: anchor, End: anchor + gt + 1}, true
	}
	return editor.Range{}, false
}

// findTagToken finds the first `<tag` at or after from that ends on a tag
// name boundary.
func findTagToken(lower string, from int, token string) int {
	if from < 0 {
		from = 0
	}
	for i := from; i+len(token) <= len(lower); {
		j := strings.Index(lower[i:], token)
		if j < 0 {
			return -1
		}
		pos := i + j
		if tagBoundary(lower, pos+len(token)) {
			return pos
		}
		i = pos + 1
	}
	return -1
}

func hasTagAt(lower string, pos int, token string) bool {
	return strings.HasPrefix(lower[pos:], token) && tagBoundary(lower, pos+len(token))
}

// tagBoundary reports whether position i ends a tag name (whitespace,
// attribute start, '>' or '/').
func tagBoundary(s string, i int) bool {
	if i >= len(s) {
		return true
	}
	switch s[i] {
	case ' ', '\t', '\n', '\r', '>', '/':
		return true
	}
	return false
}

// listLineRange selects the current line's item content only, never
// extending into the previous line, so adjacent list items stay separate.
func listLineRange(text string, anchor int) (editor.Range, bool) {
	start, end := editor.LineBounds(text, anchor)
	r, ok := trimmedRange(text, start, end)
	if !ok {
		return r, ok
	}
	r.Start = skipListMarker(text, r.Start, r.End)
	if r.Start >= r.End {
		return editor.Range{}, false
	}
	return r, true
}

// skipListMarker advances past a leading bullet ("- ", "* ", "+ ") or
// ordered marker ("12. ", "3) ").
func skipListMarker(text string, start, end int) int {
	i := start
	switch {
	case i < end && (text[i] == '-' || text[i] == '*' || text[i] == '+'):
		i++
	default:
		for i < end && text[i] >= '0' && text[i] <= '9' {
			i++
		}
		if i == start || i >= end || (text[i] != '.' && text[i] != ')') {
			return start
		}
		i++
	}
	if i < end && (text[i] == ' ' || text[i] == '\t') {
		for i < end && (text[i] == ' ' || text[i] == '\t') {
			i++
		}
		return i
	}
	return start
}

// proseLineRange selects the entire current line, trimmed of leading and
// trailing whitespace.
func proseLineRange(text string, anchor int) (editor.Range, bool) {
	start, end := editor.LineBounds(text, anchor)
	return trimmedRange(text, start, end)
}

func trimmedRange(text string, start, end int) (editor.Range, bool) {
	for start < end && (text[start] == ' ' || text[start] == '\t') {
		start++
	}
	for end > start && (text[end-1] == ' ' || text[end-1] == '\t' || text[end-1] == '\r') {
		end--
	}
	if start >= end {
		return editor.Range{}, false
	}
	return editor.Range{Start: start, End: end}, true
}

// surgicalRange resolves inline spans: re-locate the snippet within the
// current line, pull the start left over markup markers, then sniff the
// first significant characters to pick the closing delimiter.
func surgicalRange(snippet, text string, anchor int) (editor.Range, bool) {
	lineStart, lineEnd := editor.LineBounds(text, anchor)
	if lineStart >= lineEnd {
		return editor.Range{}, false
	}
	line := text[lineStart:lineEnd]

	col := anchor - lineStart
	if col < 0 {
		col = 0
	}
	if col > len(line) {
		col = len(line)
	}

	snippetLen := 0
	if snippet != "" {
		if i := strings.Index(strings.ToLower(line), strings.ToLower(snippet)); i >= 0 {
			col = i
			snippetLen = len(snippet)
		}
	}
	matchIdx := col

	// Include the opening delimiters in the selection.
	for col > 0 && strings.IndexByte(markerChars, line[col-1]) >= 0 {
		col--
	}
	// A heading or indent prefix is not part of the selection.
	if strings.Trim(line[:col], "# \t") == "" {
		for col < len(line) && line[col] == '#' {
			col++
		}
		for col < len(line) && (line[col] == ' ' || line[col] == '\t') {
			col++
		}
	}
	if col >= len(line) {
		col = len(line) - 1
		if col < 0 {
			return editor.Range{}, false
		}
	}

	end := closingDelimiter(line, col)
	if end < 0 {
		if snippetLen > 0 && matchIdx+snippetLen > col {
			end = matchIdx + snippetLen
		} else {
			end = col + 1
		}
	}
	if end > len(line) {
		end = len(line)
	}
	if end <= col {
		end = col + 1
	}
	return editor.Range{Start: lineStart + col, End: lineStart + end}, true
}

// closingDelimiter sniffs the first significant characters at col and
// returns the column just past the matching closing delimiter, or -1 when
// no delimiter logic applies.
func closingDelimiter(line string, col int) int {
	rest := line[col:]
	find := func(open int, close string) int {
		if i := strings.Index(rest[open:], close); i >= 0 {
			return col + open + i + len(close)
		}
		return -1
	}
	switch {
	case strings.HasPrefix(rest, "`{{"):
		return find(3, "}}`")
	case strings.HasPrefix(rest, "{{"):
		return find(2, "}}")
	case strings.HasPrefix(rest, "**"):
		return find(2, "**")
	case strings.HasPrefix(rest, "__"):
		return find(2, "__")
	case strings.HasPrefix(rest, "*"):
		return find(1, "*")
	case strings.HasPrefix(rest, "_"):
		return find(1, "_")
	case strings.HasPrefix(rest, "`"):
		return find(1, "`")
	case strings.HasPrefix(rest, "["):
		return find(1, "]")
	}
	// Any other repeated marker character extends while it repeats.
	if len(rest) > 0 && strings.IndexByte(markerChars, rest[0]) >= 0 {
		n := 0
		for n < len(rest) && rest[n] == rest[0] {
			n++
		}
		if n > 1 {
			return col + n
		}
	}
	return -1
}
