package preview

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/rivo/uniseg"
	"github.com/spf13/cast"
)

// maxSnippetClusters bounds the normalized text snippet carried by a click
// event, counted in grapheme clusters.
const maxSnippetClusters = 40

// ErrMalformedEvent reports a click payload that cannot be normalized into
// a ClickEvent. Callers treat it as an unresolvable click, not a failure.
var ErrMalformedEvent = errors.New("preview: malformed bridge event")

// ClickEvent is an immutable snapshot of one pointer click in the rendered
// view. Every field is a best-effort hint captured at the moment of
// interaction; none is guaranteed correct.
type ClickEvent struct {
	TagName         string
	TextSnippet     string
	SelectorPath    string // comma-joined ancestor selectors, informational only
	OpeningTag      string // literal text of the opening tag
	IdentifierHint  string
	OccurrenceIndex int // ordinal among same-tag occurrences up to the clicked node
}

// Bridge is the single structured entry point from the rendered view back
// into the host. It validates and normalizes the untrusted positional click
// payload, tracks hover state for the visual affordance, and dispatches
// navigation as a deferred task. Only the latest click is retained; a new
// click supersedes a pending one.
type Bridge struct {
	mu      sync.Mutex
	pending *ClickEvent
	hovered string
	timer   *time.Timer
	delay   time.Duration
	deliver func(ClickEvent)
}

// NewBridge creates a bridge delivering normalized click events to the
// given handler after a short dispatch delay.
func NewBridge(deliver func(ClickEvent)) *Bridge {
	return &Bridge{
		delay:   10 * time.Millisecond,
		deliver: deliver,
	}
}

// HandleClick normalizes a positional click payload
// (tagName, textSnippet, selectorPath, openingTagSignature, identifierHint,
// occurrenceIndex) and schedules delivery. The payload values are untrusted
// dynamic JSON; missing trailing fields default to zero values, but an
// absent tag name makes the event malformed.
func (b *Bridge) HandleClick(args []any) error {
	arg := func(i int) any {
		if i < len(args) {
			return args[i]
		}
		return nil
	}

	ev := ClickEvent{
		TagName:         strings.ToLower(strings.TrimSpace(cast.ToString(arg(0)))),
		TextSnippet:     normalizeSnippet(cast.ToString(arg(1))),
		SelectorPath:    cast.ToString(arg(2)),
		OpeningTag:      cast.ToString(arg(3)),
		IdentifierHint:  strings.TrimSpace(cast.ToString(arg(4))),
		OccurrenceIndex: cast.ToInt(arg(5)),
	}
	if ev.TagName == "" {
		return ErrMalformedEvent
	}
	if ev.OccurrenceIndex < 0 {
		ev.OccurrenceIndex = 0
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.pending = &ev
	if b.timer != nil {
		b.timer.Stop()
	}
	b.timer = time.AfterFunc(b.delay, b.dispatch)
	return nil
}

// dispatch delivers the most recent pending click, if any.
func (b *Bridge) dispatch() {
	b.mu.Lock()
	ev := b.pending
	b.pending = nil
	b.mu.Unlock()
	if ev == nil || b.deliver == nil {
		return
	}
	b.deliver(*ev)
}

// Flush delivers any pending click immediately. Intended for tests and
// shutdown paths.
func (b *Bridge) Flush() {
	b.mu.Lock()
	if b.timer != nil {
		b.timer.Stop()
	}
	b.mu.Unlock()
	b.dispatch()
}

// HandleHover records hover enter/leave for one identifier. Hover state
// feeds only the visual affordance, never navigation.
func (b *Bridge) HandleHover(uid string, entered bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if entered {
		b.hovered = uid
	} else if b.hovered == uid {
		b.hovered = ""
	}
}

// HoveredUID returns the identifier currently hovered, or "".
func (b *Bridge) HoveredUID() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.hovered
}

// ResetPass clears interaction state that refers to the previous render
// pass's identifiers. Called whenever the view content is swapped.
func (b *Bridge) ResetPass() {
	b.mu.Lock()
	b.hovered = ""
	b.mu.Unlock()
}

// normalizeSnippet collapses all whitespace runs to single spaces, trims,
// and truncates to maxSnippetClusters grapheme clusters.
func normalizeSnippet(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if uniseg.GraphemeClusterCount(s) <= maxSnippetClusters {
		return s
	}
	g := uniseg.NewGraphemes(s)
	count := 0
	end := 0
	for g.Next() {
		count++
		if count > maxSnippetClusters {
			break
		}
		_, to := g.Positions()
		end = to
	}
	return s[:end]
}
