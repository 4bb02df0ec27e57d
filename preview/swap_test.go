package preview

import "testing"

func TestSwapPlanKeepsSurvivingAnchor(t *testing.T) {
	prev := NewIndex()
	prev.Add("n0", 0)
	prev.Add("n1", 40)

	next := NewIndex()
	next.Add("n0", 0)
	next.Add("n1", 44)

	e := NewSwapEngine()
	e.SetViewport(ViewportState{AnchorUID: "n1", PixelDelta: 12})

	plan := e.Plan(prev, next, "<p>x</p>")
	if plan.AnchorUID != "n1" {
		t.Errorf("AnchorUID = %q, want n1", plan.AnchorUID)
	}
	if plan.PixelDelta != 12 {
		t.Errorf("PixelDelta = %d, want 12", plan.PixelDelta)
	}
	if plan.PassID != next.PassID() {
		t.Errorf("PassID = %q, want %q", plan.PassID, next.PassID())
	}
}

func TestSwapPlanRemapsDeadAnchor(t *testing.T) {
	prev := NewIndex()
	prev.Add("n0", 0)
	prev.Add("n1", 50)
	prev.Add("n2", 90)

	// The element n1 pointed at was deleted; m1 now sits nearby.
	next := NewIndex()
	next.Add("m0", 0)
	next.Add("m1", 48)

	e := NewSwapEngine()
	e.SetViewport(ViewportState{AnchorUID: "n1"})

	plan := e.Plan(prev, next, "")
	if plan.AnchorUID != "m1" {
		t.Errorf("AnchorUID = %q, want nearest survivor m1", plan.AnchorUID)
	}
}

func TestSwapPlanNoViewport(t *testing.T) {
	next := NewIndex()
	next.Add("n0", 0)

	e := NewSwapEngine()
	plan := e.Plan(nil, next, "html")
	if plan.AnchorUID != "" {
		t.Errorf("AnchorUID = %q, want empty without viewport state", plan.AnchorUID)
	}
	if plan.HTML != "html" {
		t.Errorf("HTML = %q", plan.HTML)
	}
}

func TestSwapPlanUnknownAnchorWithoutPrev(t *testing.T) {
	next := NewIndex()
	next.Add("n0", 0)

	e := NewSwapEngine()
	e.SetViewport(ViewportState{AnchorUID: "ghost"})

	plan := e.Plan(nil, next, "")
	if plan.AnchorUID != "" {
		t.Errorf("AnchorUID = %q, want empty for unknown anchor", plan.AnchorUID)
	}
}
