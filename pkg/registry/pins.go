package registry

import (
	"sort"

	"github.com/go-drift/virtualize/pkg/core"
	drifterrors "github.com/go-drift/virtualize/pkg/errors"
)

// Pin keeps h alive at data index di until Unpin. Pinning an index that is
// already pinned is a contract violation.
func (r *Registry) Pin(kind core.Kind, di int, h core.Handle) {
	const op = "registry.Pin"
	if existing, ok := r.pins[kind][di]; ok {
		drifterrors.Contractf(op, "%s %d already pinned to %v", kind, di, existing)
	}
	e, ok := r.arena.Get(h)
	if !ok {
		drifterrors.Contractf(op, "stale %v pinned at %s %d", h, kind, di)
	}
	if e.Kind != kind {
		drifterrors.Contractf(op, "%s element pinned as %s %d", e.Kind, kind, di)
	}
	r.pins[kind][di] = h
	r.attach(kind, di, h)
}

// EnsurePinned pins h at di unless that exact pin already exists.
func (r *Registry) EnsurePinned(kind core.Kind, di int, h core.Handle) {
	if existing, ok := r.pins[kind][di]; ok && existing == h {
		return
	}
	r.Pin(kind, di, h)
}

// Unpin releases the pin at di. It returns the unpinned element and whether
// it is now orphaned: neither realized, focused nor staged, and therefore
// moved to the garbage section for the caller to recycle.
func (r *Registry) Unpin(kind core.Kind, di int) (core.Handle, bool) {
	h, ok := r.pins[kind][di]
	if !ok {
		return core.Handle{}, false
	}
	delete(r.pins[kind], di)
	return h, r.release(kind, h)
}

// release detaches h if nothing keeps it and reports whether it did.
func (r *Registry) release(kind core.Kind, h core.Handle) bool {
	r.detach(kind, h)
	return r.InGarbage(h)
}

// IsIndexPinned reports whether di is pinned or focused.
func (r *Registry) IsIndexPinned(kind core.Kind, di int) bool {
	if _, ok := r.pins[kind][di]; ok {
		return true
	}
	return r.focus.set && r.focus.kind == kind && r.focus.index == di
}

// IsElementPinned reports whether h is pinned or focused.
func (r *Registry) IsElementPinned(h core.Handle) bool {
	if h.IsZero() {
		return false
	}
	if r.focus.set && r.focus.h == h {
		return true
	}
	for _, k := range core.Kinds {
		for _, ph := range r.pins[k] {
			if ph == h {
				return true
			}
		}
	}
	return false
}

// PinnedElement returns the element pinned or focused at di.
func (r *Registry) PinnedElement(kind core.Kind, di int) (core.Handle, bool) {
	if h, ok := r.pins[kind][di]; ok {
		return h, true
	}
	if r.focus.set && r.focus.kind == kind && r.focus.index == di {
		return r.focus.h, true
	}
	return core.Handle{}, false
}

// PinnedIndices returns the explicitly pinned indices of kind in order.
func (r *Registry) PinnedIndices(kind core.Kind) []int {
	out := make([]int, 0, len(r.pins[kind]))
	for di := range r.pins[kind] {
		out = append(out, di)
	}
	sort.Ints(out)
	return out
}

// PinnedCount returns the number of explicit pins of kind.
func (r *Registry) PinnedCount(kind core.Kind) int { return len(r.pins[kind]) }

// SetFocused records h as the focused element. Focus is implicitly a pin
// but does not enter the pin set. Moving focus to another index while one
// is focused is a contract violation; ResetFocused first.
func (r *Registry) SetFocused(kind core.Kind, di int, h core.Handle) {
	const op = "registry.SetFocused"
	if r.focus.set && (r.focus.kind != kind || r.focus.index != di) {
		drifterrors.Contractf(op, "focus already on %s %d", r.focus.kind, r.focus.index)
	}
	e, ok := r.arena.Get(h)
	if !ok {
		drifterrors.Contractf(op, "stale %v focused at %s %d", h, kind, di)
	}
	if e.Kind != kind {
		drifterrors.Contractf(op, "%s element focused as %s %d", e.Kind, kind, di)
	}
	old := r.focus.h
	r.focus = slot{kind: kind, index: di, h: h, set: true}
	r.attach(kind, di, h)
	if !old.IsZero() && old != h {
		r.detach(kind, old)
	}
}

// Focused returns the focused element.
func (r *Registry) Focused() (core.Kind, int, core.Handle, bool) {
	return r.focus.kind, r.focus.index, r.focus.h, r.focus.set
}

// ResetFocused clears focus and reports whether the element became an
// orphan.
func (r *Registry) ResetFocused() (core.Handle, bool) {
	if !r.focus.set {
		return core.Handle{}, false
	}
	f := r.focus
	r.focus = slot{}
	return f.h, r.release(f.kind, f.h)
}
