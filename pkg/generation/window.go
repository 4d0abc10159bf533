package generation

import (
	"math"
	"sort"

	"github.com/go-drift/virtualize/pkg/core"
	"github.com/go-drift/virtualize/pkg/datacache"
	"github.com/go-drift/virtualize/pkg/graphics"
	"github.com/go-drift/virtualize/pkg/window"
)

// plan is the outcome of DetermineWindow.
type plan struct {
	visible     graphics.Rect
	realization graphics.Rect
	anchor      datacache.Position
	anchorRef   EstimationRef
}

// realizedElem is a realized element in layout order.
type realizedElem struct {
	pos     datacache.Position
	h       core.Handle
	bounds  graphics.Rect
	ordinal int
}

// realizedInOrder lists the elements of both valid ranges sorted by their
// position in the layout sequence. Sentinels and indexes no longer in the
// data are skipped.
func (e *Engine) realizedInOrder() []realizedElem {
	var out []realizedElem
	for _, k := range core.Kinds {
		n := e.reg.ValidCount(k)
		for vi := 0; vi < n; vi++ {
			h := e.reg.GetAtValidIndex(k, vi)
			if h.IsZero() {
				continue
			}
			el, ok := e.arena.Get(h)
			if !ok {
				continue
			}
			pos := datacache.Position{Kind: k, Index: el.Index}
			if !e.cache.Contains(pos) {
				continue
			}
			out = append(out, realizedElem{pos: pos, h: h, bounds: el.Bounds, ordinal: e.cache.LayoutOrdinal(pos)})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ordinal < out[j].ordinal })
	return out
}

// determineWindow resolves the visible and realization windows, applies
// the tracked element shift and chooses the anchor generation starts from.
func (e *Engine) determineWindow() plan {
	axis := e.layout.Axis()
	visible := e.tracker.VisibleWindow(e)

	if tracked, bounds, ok := e.applyTracking(visible); ok {
		visible = e.tracker.VisibleWindow(nil)
		return plan{
			visible:     visible,
			realization: e.tracker.RealizationWindow(visible),
			anchor:      tracked,
			anchorRef:   EstimationRef{Kind: tracked.Kind, Index: tracked.Index, Bounds: bounds, Valid: true},
		}
	}

	realization := e.tracker.RealizationWindow(visible)
	realized := e.realizedInOrder()
	if len(realized) > 0 {
		first := realized[0].bounds.PositionRelativeTo(realization, axis)
		last := realized[len(realized)-1].bounds.PositionRelativeTo(realization, axis)
		if first != graphics.After && last != graphics.Before {
			for _, r := range realized {
				if r.bounds.PositionRelativeTo(realization, axis) == graphics.Inside {
					return plan{
						visible:     visible,
						realization: realization,
						anchor:      r.pos,
						anchorRef:   EstimationRef{Kind: r.pos.Kind, Index: r.pos.Index, Bounds: r.bounds, Valid: true},
					}
				}
			}
		}
		e.stats.Disconnected = true
		e.tracker.ResetCacheBuffers()
		realization = e.tracker.RealizationWindow(visible)
	}

	anchor, ref := e.estimateAnchor(realized, realization)
	if e.stats.Disconnected {
		core.Logger().Debug("generation: disconnected view",
			"realized", len(realized), "anchor", anchor.Index, "kind", anchor.Kind.String())
		e.clearRealized()
	}
	return plan{visible: visible, realization: realization, anchor: anchor, anchorRef: ref}
}

// estimateAnchor picks the layout element nearest to the start of the
// realization window by extrapolating from the realized element closest to
// it, or from the start of the layout when nothing is realized.
func (e *Engine) estimateAnchor(realized []realizedElem, realization graphics.Rect) (datacache.Position, EstimationRef) {
	axis := e.layout.Axis()
	length := e.cache.LayoutLength()

	var ref realizedElem
	var avg float64
	if len(realized) > 0 {
		ref = realized[len(realized)-1]
		if realized[0].bounds.PositionRelativeTo(realization, axis) == graphics.After {
			ref = realized[0]
		}
		var total float64
		for _, r := range realized {
			total += r.bounds.Length(axis)
		}
		avg = total / float64(len(realized))
	} else {
		first, _ := e.cache.First()
		origin := e.layout.PositionOfFirstElement()
		ref = realizedElem{pos: first, bounds: graphics.RectFromLTWH(origin.X, origin.Y, 0, 0)}
		avg = lengthOf(e.layout.MeasureSize(first.Kind, first.Index, realization), axis)
	}
	if avg <= 0 {
		avg = 1
	}

	steps := int(math.Floor((realization.Start(axis) - ref.bounds.Start(axis)) / avg))
	ord := max(0, min(ref.ordinal+steps, length-1))
	pos, _ := e.cache.AtOrdinal(ord)
	if len(realized) == 0 {
		return pos, EstimationRef{}
	}
	return pos, EstimationRef{
		Kind:     ref.pos.Kind,
		Index:    ref.pos.Index,
		Bounds:   ref.bounds,
		Distance: ord - ref.ordinal,
		Valid:    true,
	}
}

// applyTracking keeps the tracked element visually fixed by shifting the
// viewport. It returns the tracked element's position and new bounds when
// a shift was computed.
func (e *Engine) applyTracking(visible graphics.Rect) (datacache.Position, graphics.Rect, bool) {
	axis := e.layout.Axis()
	if e.tracker.TakeTrackingRequest() && !e.tracker.IsTracking() {
		e.beginTracking()
	}

	if e.tracker.KeepLastItemInView() {
		atEnd := e.lastVisible.End(axis) >= e.lastExtent-1
		e.updateExtent()
		if shift := e.tracker.KeepLastShift(e.lastExtent, atEnd); shift != 0 {
			e.tracker.ApplyShift(shift)
			e.stats.Shift = shift
			e.tracker.EndTracking()
			e.trackedRemoved = false
			return datacache.Position{}, graphics.Rect{}, false
		}
	}

	if !e.tracker.IsTracking() {
		return datacache.Position{}, graphics.Rect{}, false
	}
	defer e.tracker.EndTracking()

	if e.trackedRemoved {
		e.trackedRemoved = false
		var candidates []window.Candidate
		for _, r := range e.realizedInOrder() {
			candidates = append(candidates, window.Candidate{Kind: r.pos.Kind, Index: r.pos.Index, Bounds: r.bounds})
		}
		if !e.tracker.ElectReplacement(candidates, e.lastVisible) {
			return datacache.Position{}, graphics.Rect{}, false
		}
	}

	te, _ := e.tracker.Tracked()
	pos := datacache.Position{Kind: te.Kind, Index: te.Index}
	if !e.cache.Contains(pos) {
		return datacache.Position{}, graphics.Rect{}, false
	}

	ref := EstimationRef{Kind: te.Kind, Index: te.Index, Bounds: te.Bounds, Valid: true}
	est := e.layout.EstimateBounds(te.Kind, te.Index, ref, visible)
	bounds := sized(est, e.layout.MeasureSize(te.Kind, te.Index, visible), ref, axis)
	shift := e.tracker.TrackedShift(bounds)

	// The viewport clamps to its extent, which must already account for
	// the mutation.
	e.updateExtent()
	e.tracker.ApplyShift(shift)
	e.stats.Shift = shift
	return pos, bounds, true
}

// beginTracking records the first realized element inside the last
// visible window as the element to keep fixed.
func (e *Engine) beginTracking() {
	axis := e.layout.Axis()
	for _, r := range e.realizedInOrder() {
		if r.bounds.PositionRelativeTo(e.lastVisible, axis) == graphics.Inside {
			e.tracker.BeginTracking(r.pos.Kind, r.pos.Index, r.bounds, e.lastVisible)
			return
		}
	}
}
