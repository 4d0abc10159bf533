package generation

import (
	"context"

	"github.com/go-drift/virtualize/pkg/core"
	"github.com/go-drift/virtualize/pkg/datacache"
	drifterrors "github.com/go-drift/virtualize/pkg/errors"
	"github.com/go-drift/virtualize/pkg/graphics"
)

// span is the range of layout ordinals generated in a pass, with the data
// index of the anchor per kind (-1 when the anchor is of the other kind).
type span struct {
	first, last int
	gate        core.ByKind[int]
}

// generate realizes the anchor, then walks forward and backward until the
// estimated position of the next element leaves the realization window.
func (e *Engine) generate(ctx context.Context, epoch uint64, p plan) (span, error) {
	axis := e.layout.Axis()
	var s span
	s.gate.Fill(-1)
	s.gate[p.anchor.Kind] = p.anchor.Index

	e.state = GenerateForward
	bounds, err := e.realize(epoch, p.anchor, p.anchorRef, p.realization)
	if err != nil {
		return s, err
	}
	s.first = e.cache.LayoutOrdinal(p.anchor)
	s.last = s.first

	ref := refTo(p.anchor, bounds, 1)
	for pos, ok := e.cache.Next(p.anchor); ok; pos, ok = e.cache.Next(pos) {
		if err := e.checkpoint(ctx, epoch); err != nil {
			return s, err
		}
		est := e.layout.EstimateBounds(pos.Kind, pos.Index, ref, p.realization)
		if est.Start(axis) >= p.realization.End(axis) {
			break
		}
		b, err := e.realize(epoch, pos, ref, p.realization)
		if err != nil {
			return s, err
		}
		s.last++
		ref = refTo(pos, b, 1)
	}

	e.state = GenerateBackward
	ref = refTo(p.anchor, bounds, -1)
	for pos, ok := e.cache.Prev(p.anchor); ok; pos, ok = e.cache.Prev(pos) {
		if err := e.checkpoint(ctx, epoch); err != nil {
			return s, err
		}
		est := e.layout.EstimateBounds(pos.Kind, pos.Index, ref, p.realization)
		if est.End(axis) <= p.realization.Start(axis) {
			break
		}
		b, err := e.realize(epoch, pos, ref, p.realization)
		if err != nil {
			return s, err
		}
		s.first--
		ref = refTo(pos, b, -1)
	}
	return s, nil
}

func refTo(pos datacache.Position, bounds graphics.Rect, distance int) EstimationRef {
	return EstimationRef{Kind: pos.Kind, Index: pos.Index, Bounds: bounds, Distance: distance, Valid: true}
}

// realize makes the element at pos realized with fresh bounds. Elements
// already in the valid range or pinned are reused; otherwise one is taken
// from the recycle pool or created by the host and prepared.
func (e *Engine) realize(epoch uint64, pos datacache.Position, ref EstimationRef, window graphics.Rect) (graphics.Rect, error) {
	kind, index := pos.Kind, pos.Index
	h := e.reg.GetAtDataIndex(kind, index)
	if h.IsZero() {
		if pinned, ok := e.reg.PinnedElement(kind, index); ok {
			h = pinned
		}
	}
	if h.IsZero() {
		var err error
		if h, err = e.obtain(kind, index); err != nil {
			return graphics.Rect{}, err
		}
		if err := e.prepare(kind, index, h); err != nil {
			if e.epoch == epoch {
				e.recycle(kind, h)
			}
			return graphics.Rect{}, err
		}
		if e.epoch != epoch {
			return graphics.Rect{}, ErrPassInterrupted
		}
	} else {
		e.stats.Reused++
	}

	est := e.layout.EstimateBounds(kind, index, ref, window)
	bounds := sized(est, e.layout.MeasureSize(kind, index, window), ref, e.layout.Axis())
	el, _ := e.arena.Get(h)
	el.Bounds = bounds
	e.place(kind, index, h)
	return bounds, nil
}

// obtain returns an element for kind/index: a template match from the
// recycle pool, else any queued element, else a new one from the host.
func (e *Engine) obtain(kind core.Kind, index int) (core.Handle, error) {
	match := func(h core.Handle) bool {
		el, ok := e.arena.Get(h)
		return ok && e.host.MatchesTemplate(kind, index, el.Visual)
	}
	if h, ok := e.pool.FindCandidate(kind, match); ok {
		e.stats.Reused++
		return h, nil
	}
	if h, ok := e.pool.Dequeue(kind); ok {
		e.stats.Reused++
		return h, nil
	}

	visual, generated, err := e.host.CreateOrRecycleElement(kind, index)
	if err != nil {
		return core.Handle{}, e.hostError("CreateOrRecycleElement", kind, index, err)
	}
	e.stats.Created++
	return e.arena.Alloc(core.Element{Kind: kind, Visual: visual, Generated: generated, Index: -1}), nil
}

// prepare binds h to the data at index. The element is staged so that
// host callbacks can resolve it before it is placed.
func (e *Engine) prepare(kind core.Kind, index int, h core.Handle) error {
	e.reg.HoldForPrepare(kind, index, h)
	defer e.reg.ReleaseAfterPrepare()

	el, _ := e.arena.Get(h)
	el.Item = e.itemFor(kind, index)
	if err := e.host.PrepareElement(kind, index, el.Visual); err != nil {
		return e.hostError("PrepareElement", kind, index, err)
	}
	return nil
}

func (e *Engine) itemFor(kind core.Kind, index int) any {
	var item any
	var err error
	if kind == core.Header {
		item, err = e.cache.Group(index)
	} else {
		item, err = e.cache.Item(index)
	}
	if err != nil {
		core.Logger().Debug("generation: item lookup failed", "kind", kind.String(), "index", index, "error", err)
		return nil
	}
	return item
}

func (e *Engine) hostError(call string, kind core.Kind, index int, err error) error {
	herr := &drifterrors.HostError{Call: call, Index: index, Err: err}
	drifterrors.Report(&drifterrors.VirtualizationError{
		Op:    "generation.Measure",
		Kind:  drifterrors.KindHost,
		Err:   herr,
		Index: index,
	})
	core.Logger().Warn("generation: host call failed", "call", call, "kind", kind.String(), "index", index)
	return herr
}

// place puts h at index, padding any gap to the valid range with
// sentinels so the range stays contiguous.
func (e *Engine) place(kind core.Kind, index int, h core.Handle) {
	if e.reg.ValidCount(kind) > 0 {
		for d := e.reg.LastValidIndex(kind) + 1; d < index; d++ {
			e.reg.PlaceInValidElements(kind, d, core.Handle{})
		}
		for d := e.reg.FirstValidIndex(kind) - 1; d > index; d-- {
			e.reg.PlaceInValidElements(kind, d, core.Handle{})
		}
	}
	e.reg.PlaceInValidElements(kind, index, h)
}

// trimLeftovers evicts elements outside the generated span from the edges
// of each valid range inward. Pinned and focused elements leave the range
// like any other; their pin keeps them attached outside it.
func (e *Engine) trimLeftovers(s span) {
	e.dropHiddenHeaders()
	e.reg.TrimEdgeSentinels()
	for _, k := range core.Kinds {
		gate := s.gate[k]
		for e.reg.ValidCount(k) > 0 {
			h := e.reg.GetAtValidIndex(k, 0)
			if h.IsZero() || !e.outsideSpan(k, e.reg.FirstValidIndex(k), s) {
				break
			}
			e.recycle(k, e.reg.RemoveFromValidElements(k, 0, false, gate))
		}
		for e.reg.ValidCount(k) > 0 {
			vi := e.reg.ValidCount(k) - 1
			h := e.reg.GetAtValidIndex(k, vi)
			if h.IsZero() || !e.outsideSpan(k, e.reg.LastValidIndex(k), s) {
				break
			}
			e.recycle(k, e.reg.RemoveFromValidElements(k, vi, false, gate))
		}
	}
	// The gate can leave sentinels at an edge.
	e.reg.TrimEdgeSentinels()
}

func (e *Engine) outsideSpan(kind core.Kind, index int, s span) bool {
	pos := datacache.Position{Kind: kind, Index: index}
	if !e.cache.Contains(pos) {
		return true
	}
	ord := e.cache.LayoutOrdinal(pos)
	return ord < s.first || ord > s.last
}

// dropHiddenHeaders turns realized headers of groups that became empty
// under HideEmptyGroups into sentinels.
func (e *Engine) dropHiddenHeaders() {
	for vi := 0; vi < e.reg.ValidCount(core.Header); vi++ {
		g := e.reg.DataIndexFromValidIndex(core.Header, vi)
		h := e.reg.GetAtValidIndex(core.Header, vi)
		if h.IsZero() || e.cache.IsHeaderVisible(g) || e.reg.IsElementPinned(h) {
			continue
		}
		if old := e.reg.PlaceInValidElements(core.Header, g, core.Handle{}); !old.IsZero() {
			e.recycle(core.Header, old)
		}
	}
}
