package window

import (
	"github.com/go-drift/virtualize/pkg/core"
	"github.com/go-drift/virtualize/pkg/graphics"
)

// Edge selects which viewport edge a tracked element is anchored to.
type Edge int

const (
	// FirstEdge anchors to the viewport's leading edge.
	FirstEdge Edge = iota
	// SecondEdge anchors to the trailing edge, used when keeping the last
	// item in view.
	SecondEdge
)

// TrackedElement is the element kept visually fixed across a change.
type TrackedElement struct {
	Kind   core.Kind
	Index  int
	Bounds graphics.Rect
	// Offset is the viewport edge minus the element's matching edge.
	Offset float64
	Edge   Edge
}

// Candidate is a realized element offered as a tracking replacement.
type Candidate struct {
	Kind   core.Kind
	Index  int
	Bounds graphics.Rect
}

// BeginTracking records kind/index at bounds relative to visible. The
// second edge is used in keep-last-item mode when the element extends past
// the trailing edge.
func (t *Tracker) BeginTracking(kind core.Kind, index int, bounds, visible graphics.Rect) {
	te := TrackedElement{Kind: kind, Index: index, Bounds: bounds, Edge: FirstEdge}
	if t.keepLast && bounds.End(t.axis) > visible.End(t.axis) {
		te.Edge = SecondEdge
		te.Offset = visible.End(t.axis) - bounds.End(t.axis)
	} else {
		te.Offset = visible.Start(t.axis) - bounds.Start(t.axis)
	}
	t.tracked = te
	t.trackingActive = true
}

// Tracked returns the tracked element.
func (t *Tracker) Tracked() (TrackedElement, bool) {
	return t.tracked, t.trackingActive
}

// IsTracking reports whether an element is tracked.
func (t *Tracker) IsTracking() bool { return t.trackingActive }

// SetTrackedIndex moves the tracked element to a new data index, as after
// an insertion or removal before it.
func (t *Tracker) SetTrackedIndex(index int) {
	if t.trackingActive {
		t.tracked.Index = index
	}
}

// TrackedShift returns how far the viewport must move so the tracked
// element, now at newBounds, keeps its position relative to the viewport
// edge: the new viewport edge minus the old one.
func (t *Tracker) TrackedShift(newBounds graphics.Rect) float64 {
	if !t.trackingActive {
		return 0
	}
	var oldEdge, newEdge float64
	if t.tracked.Edge == SecondEdge {
		oldEdge = t.tracked.Bounds.End(t.axis) + t.tracked.Offset
		newEdge = newBounds.End(t.axis) + t.tracked.Offset
	} else {
		oldEdge = t.tracked.Bounds.Start(t.axis) + t.tracked.Offset
		newEdge = newBounds.Start(t.axis) + t.tracked.Offset
	}
	return newEdge - oldEdge
}

// ElectReplacement picks a new tracked element after the old one was
// removed. Candidates are realized elements in layout order. The first
// one at or after the old position (the last one at or before it for the
// second edge) is elected if it intersects visible; otherwise tracking is
// abandoned for this pass.
func (t *Tracker) ElectReplacement(candidates []Candidate, visible graphics.Rect) bool {
	if !t.trackingActive {
		return false
	}
	old := t.tracked
	var pick *Candidate
	if old.Edge == SecondEdge {
		for i := len(candidates) - 1; i >= 0; i-- {
			if candidates[i].Bounds.End(t.axis) <= old.Bounds.End(t.axis) {
				pick = &candidates[i]
				break
			}
		}
	} else {
		for i := range candidates {
			if candidates[i].Bounds.Start(t.axis) >= old.Bounds.Start(t.axis) {
				pick = &candidates[i]
				break
			}
		}
	}
	if pick == nil || pick.Bounds.PositionRelativeTo(visible, t.axis) != graphics.Inside {
		core.Logger().Warn("window: tracked element removed, no replacement in view",
			"kind", old.Kind.String(), "index", old.Index)
		t.EndTracking()
		return false
	}
	edge := old.Edge
	t.tracked = TrackedElement{Kind: pick.Kind, Index: pick.Index, Bounds: pick.Bounds, Edge: edge}
	if edge == SecondEdge {
		t.tracked.Offset = visible.End(t.axis) - pick.Bounds.End(t.axis)
	} else {
		t.tracked.Offset = visible.Start(t.axis) - pick.Bounds.Start(t.axis)
	}
	return true
}

// EndTracking forgets the tracked element.
func (t *Tracker) EndTracking() {
	t.tracked = TrackedElement{}
	t.trackingActive = false
}

// SetKeepLastItemInView switches keep-last-item mode. extent is the
// current estimated panel length.
func (t *Tracker) SetKeepLastItemInView(keep bool, extent float64) {
	t.keepLast = keep
	t.keepLastExtent = extent
}

// KeepLastItemInView reports whether keep-last-item mode is on.
func (t *Tracker) KeepLastItemInView() bool { return t.keepLast }

// KeepLastShift returns the change in estimated extent since the last call
// when keep-last-item mode is on and the viewport sits at the end of the
// content. The recorded extent is updated either way.
func (t *Tracker) KeepLastShift(extent float64, atEnd bool) float64 {
	if !t.keepLast {
		return 0
	}
	delta := extent - t.keepLastExtent
	t.keepLastExtent = extent
	if !atEnd {
		return 0
	}
	return delta
}
