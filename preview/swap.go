package preview

import "sync"

// ViewportState is the last scroll position reported by the rendered view:
// the identifier of the topmost visible element and the pixel distance
// between its top edge and the top of the viewport.
type ViewportState struct {
	AnchorUID  string
	PixelDelta int
}

// SwapPlan tells the rendered view how to substitute its content in place.
// The view applies HTML as one bulk replace (no navigation, no reload) and
// then restores the scroll position relative to the anchor element.
type SwapPlan struct {
	PassID     string `json:"passId"`
	HTML       string `json:"html"`
	AnchorUID  string `json:"anchorUid"`
	PixelDelta int    `json:"pixelDelta"`
}

// SwapEngine plans flicker-free content substitutions. It tracks the
// viewport state reported by the view and, for each new render pass, maps
// the previous scroll anchor onto the nearest surviving identifier.
type SwapEngine struct {
	mu sync.Mutex
	vp ViewportState
}

func NewSwapEngine() *SwapEngine {
	return &SwapEngine{}
}

// SetViewport records the viewport state reported by the rendered view.
func (e *SwapEngine) SetViewport(vp ViewportState) {
	e.mu.Lock()
	e.vp = vp
	e.mu.Unlock()
}

// Viewport returns the last reported viewport state.
func (e *SwapEngine) Viewport() ViewportState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.vp
}

// Plan produces the swap plan for a new render pass. The previous anchor
// identifier is kept when it survives into the new pass; otherwise its old
// offset is mapped through the previous index and the nearest identifier of
// the new pass takes over. With no usable anchor the plan leaves scrolling
// to the view.
func (e *SwapEngine) Plan(prev, next *Index, html string) SwapPlan {
	vp := e.Viewport()
	plan := SwapPlan{
		PassID:     next.PassID(),
		HTML:       html,
		PixelDelta: vp.PixelDelta,
	}
	if vp.AnchorUID == "" {
		return plan
	}
	if _, ok := next.Lookup(vp.AnchorUID); ok {
		plan.AnchorUID = vp.AnchorUID
		return plan
	}
	if prev == nil {
		return plan
	}
	off, ok := prev.Lookup(vp.AnchorUID)
	if !ok {
		return plan
	}
	if uid, ok := next.Nearest(off); ok {
		plan.AnchorUID = uid
	}
	return plan
}
