// Package registry tracks which elements are realized for each kind.
//
// For each kind the registry keeps a contiguous valid range keyed by the
// first valid data index; zero handles inside the range are sentinels. It
// also owns the panel's visual children, ordered as
//
//	[headers][containers][garbage]
//
// where each kind's section holds the realized and pinned elements sorted by
// data index, and the garbage section holds evicted elements that remain in
// the tree awaiting reuse.
//
// Pins and focus keep an element alive regardless of range membership. A
// single staging slot holds the element being prepared so reentrant lookups
// made from host callbacks can resolve it before it is placed.
//
// Contract violations panic with *errors.ContractError.
package registry

import (
	"github.com/go-drift/virtualize/pkg/core"
	drifterrors "github.com/go-drift/virtualize/pkg/errors"
)

type child struct {
	index int
	h     core.Handle
}

type slot struct {
	kind  core.Kind
	index int
	h     core.Handle
	set   bool
}

// Registry is the per-panel element registry.
type Registry struct {
	arena *core.Arena

	valid   core.ByKind[[]core.Handle]
	first   core.ByKind[int]
	lastHit core.ByKind[int]

	sections core.ByKind[[]child]
	garbage  []core.Handle

	pins   core.ByKind[map[int]core.Handle]
	focus  slot
	staged slot
}

// New creates an empty registry resolving handles through arena.
func New(arena *core.Arena) *Registry {
	r := &Registry{arena: arena}
	r.first.Fill(-1)
	for _, k := range core.Kinds {
		r.pins[k] = make(map[int]core.Handle)
	}
	return r
}

// Arena returns the arena the registry resolves handles through.
func (r *Registry) Arena() *core.Arena { return r.arena }

// ValidCount returns the number of slots, sentinels included, in the valid
// range of kind.
func (r *Registry) ValidCount(kind core.Kind) int { return len(r.valid[kind]) }

// FirstValidIndex returns the data index of the first valid slot, or -1.
func (r *Registry) FirstValidIndex(kind core.Kind) int { return r.first[kind] }

// LastValidIndex returns the data index of the last valid slot, or -1.
func (r *Registry) LastValidIndex(kind core.Kind) int {
	if len(r.valid[kind]) == 0 {
		return -1
	}
	return r.first[kind] + len(r.valid[kind]) - 1
}

// RealizedCount returns the number of non-sentinel slots of kind.
func (r *Registry) RealizedCount(kind core.Kind) int {
	n := 0
	for _, h := range r.valid[kind] {
		if !h.IsZero() {
			n++
		}
	}
	return n
}

// GetAtValidIndex returns the handle in slot vi, or the zero handle for a
// sentinel or an out-of-range slot.
func (r *Registry) GetAtValidIndex(kind core.Kind, vi int) core.Handle {
	if vi < 0 || vi >= len(r.valid[kind]) {
		return core.Handle{}
	}
	return r.valid[kind][vi]
}

// GetAtDataIndex returns the handle realized at data index di.
func (r *Registry) GetAtDataIndex(kind core.Kind, di int) core.Handle {
	return r.GetAtValidIndex(kind, r.ValidIndexFromDataIndex(kind, di))
}

// ValidIndexFromDataIndex maps a data index to a slot, or -1 when outside
// the range.
func (r *Registry) ValidIndexFromDataIndex(kind core.Kind, di int) int {
	if len(r.valid[kind]) == 0 {
		return -1
	}
	vi := di - r.first[kind]
	if vi < 0 || vi >= len(r.valid[kind]) {
		return -1
	}
	return vi
}

// DataIndexFromValidIndex maps a slot to its data index, or -1.
func (r *Registry) DataIndexFromValidIndex(kind core.Kind, vi int) int {
	if vi < 0 || vi >= len(r.valid[kind]) {
		return -1
	}
	return r.first[kind] + vi
}

// IsConnected reports whether a realized element occupies data index di.
func (r *Registry) IsConnected(kind core.Kind, di int) bool {
	return !r.GetAtDataIndex(kind, di).IsZero()
}

// inValid reports whether h occupies a slot of kind's valid range.
func (r *Registry) inValid(kind core.Kind, h core.Handle) bool {
	e, ok := r.arena.Get(h)
	if !ok {
		return false
	}
	return r.GetAtDataIndex(kind, e.Index) == h
}

// IsRealized reports whether h occupies a slot of a valid range.
func (r *Registry) IsRealized(h core.Handle) bool {
	e, ok := r.arena.Get(h)
	return ok && r.inValid(e.Kind, h)
}

// PlaceInValidElements puts h at data index di. di must be adjacent to or
// inside the range; placing into an empty range starts a new one. A zero
// handle writes a sentinel, and writing a sentinel into the only slot
// collapses the range. The element previously in the slot, if any, is
// returned after being detached.
func (r *Registry) PlaceInValidElements(kind core.Kind, di int, h core.Handle) core.Handle {
	const op = "registry.PlaceInValidElements"
	if di < 0 {
		drifterrors.Contractf(op, "negative %s index %d", kind, di)
	}
	if !h.IsZero() {
		e, ok := r.arena.Get(h)
		if !ok {
			drifterrors.Contractf(op, "stale %v placed at %s %d", h, kind, di)
		}
		if e.Kind != kind {
			drifterrors.Contractf(op, "%s element placed as %s at %d", e.Kind, kind, di)
		}
		if r.inValid(kind, h) && e.Index != di {
			drifterrors.Contractf(op, "%v already realized at %s %d", h, kind, e.Index)
		}
	}

	rng := r.valid[kind]
	first := r.first[kind]
	var previous core.Handle
	switch {
	case len(rng) == 0:
		if h.IsZero() {
			return core.Handle{}
		}
		r.valid[kind] = append(rng, h)
		r.first[kind] = di
	case di == first-1:
		r.valid[kind] = append([]core.Handle{h}, rng...)
		r.first[kind] = di
	case di == first+len(rng):
		r.valid[kind] = append(rng, h)
	case di >= first && di < first+len(rng):
		previous = rng[di-first]
		if previous == h {
			return core.Handle{}
		}
		if h.IsZero() && len(rng) == 1 {
			r.valid[kind] = rng[:0]
			r.first[kind] = -1
		} else {
			rng[di-first] = h
		}
	default:
		drifterrors.Contractf(op, "%s %d is not contiguous with range [%d,%d)", kind, di, first, first+len(rng))
	}

	if !previous.IsZero() {
		r.detach(kind, previous)
	}
	if !h.IsZero() {
		r.attach(kind, di, h)
	}
	return previous
}

// InsertSentinel opens an empty slot at data index di inside the range,
// shifting the following slots up by one. Indices at or before the first
// slot move the whole range instead.
func (r *Registry) InsertSentinel(kind core.Kind, di int) {
	rng := r.valid[kind]
	if len(rng) == 0 {
		return
	}
	first := r.first[kind]
	switch {
	case di <= first:
		r.first[kind]++
	case di < first+len(rng):
		vi := di - first
		rng = append(rng, core.Handle{})
		copy(rng[vi+1:], rng[vi:])
		rng[vi] = core.Handle{}
		r.valid[kind] = rng
	}
}

// RemoveFromValidElements removes slot vi. Removing an edge slot pops it and
// coalesces the sentinels it exposes, but never past gate, the data index
// of the element under construction (-1 for no bound). Removing an interior
// slot leaves a sentinel, unless isDataRemoval, in which case the slot is
// erased and the following slots move down one data index; OnDataRemoved
// relies on that. The removed element is detached and returned.
func (r *Registry) RemoveFromValidElements(kind core.Kind, vi int, isDataRemoval bool, gate int) core.Handle {
	rng := r.valid[kind]
	if vi < 0 || vi >= len(rng) {
		drifterrors.Contractf("registry.RemoveFromValidElements", "%s slot %d outside range of %d", kind, vi, len(rng))
	}
	h := rng[vi]
	switch {
	case vi == 0:
		r.valid[kind] = rng[1:]
		if !isDataRemoval {
			r.first[kind]++
		}
		r.coalesceFront(kind, gate)
	case vi == len(rng)-1:
		r.valid[kind] = rng[:vi]
		r.coalesceBack(kind, gate)
	case isDataRemoval:
		r.valid[kind] = append(rng[:vi], rng[vi+1:]...)
	default:
		rng[vi] = core.Handle{}
	}
	if len(r.valid[kind]) == 0 {
		r.valid[kind] = nil
		r.first[kind] = -1
	}
	if !h.IsZero() {
		r.detach(kind, h)
	}
	return h
}

func (r *Registry) coalesceFront(kind core.Kind, gate int) {
	for len(r.valid[kind]) > 0 && r.valid[kind][0].IsZero() {
		if gate >= 0 && r.first[kind] >= gate {
			return
		}
		r.valid[kind] = r.valid[kind][1:]
		r.first[kind]++
	}
}

func (r *Registry) coalesceBack(kind core.Kind, gate int) {
	for n := len(r.valid[kind]); n > 0 && r.valid[kind][n-1].IsZero(); n = len(r.valid[kind]) {
		if gate >= 0 && r.first[kind]+n-1 <= gate {
			return
		}
		r.valid[kind] = r.valid[kind][:n-1]
	}
}

// RemoveAllValidElements empties the range of kind and returns the detached
// elements.
func (r *Registry) RemoveAllValidElements(kind core.Kind) []core.Handle {
	rng := r.valid[kind]
	r.valid[kind] = nil
	r.first[kind] = -1
	var removed []core.Handle
	for _, h := range rng {
		if h.IsZero() {
			continue
		}
		r.detach(kind, h)
		removed = append(removed, h)
	}
	return removed
}

// TrimEdgeSentinels drops sentinel slots at both ends of every range.
func (r *Registry) TrimEdgeSentinels() {
	for _, k := range core.Kinds {
		r.coalesceFront(k, -1)
		r.coalesceBack(k, -1)
		if len(r.valid[k]) == 0 {
			r.valid[k] = nil
			r.first[k] = -1
		}
	}
}

// IndexFromElement resolves the data index of h. The staging slot is
// consulted first, then the valid ranges (searching outward from the last
// hit), then pins and focus.
func (r *Registry) IndexFromElement(h core.Handle) (core.Kind, int, bool) {
	if h.IsZero() {
		return 0, -1, false
	}
	if r.staged.set && r.staged.h == h {
		return r.staged.kind, r.staged.index, true
	}
	for _, k := range core.Kinds {
		if vi := r.fanSearch(k, h); vi >= 0 {
			r.lastHit[k] = vi
			return k, r.first[k] + vi, true
		}
	}
	for _, k := range core.Kinds {
		for di, ph := range r.pins[k] {
			if ph == h {
				return k, di, true
			}
		}
	}
	if r.focus.set && r.focus.h == h {
		return r.focus.kind, r.focus.index, true
	}
	return 0, -1, false
}

func (r *Registry) fanSearch(kind core.Kind, h core.Handle) int {
	rng := r.valid[kind]
	n := len(rng)
	if n == 0 {
		return -1
	}
	start := r.lastHit[kind]
	if start < 0 || start >= n {
		start = 0
	}
	for d := 0; d < n; d++ {
		if i := start + d; i < n && rng[i] == h {
			return i
		}
		if i := start - d - 1; i >= 0 && rng[i] == h {
			return i
		}
		if start+d >= n && start-d-1 < 0 {
			break
		}
	}
	return -1
}

// HoldForPrepare puts h in the staging slot while it is being prepared for
// data index di. Only one element may be staged at a time.
func (r *Registry) HoldForPrepare(kind core.Kind, di int, h core.Handle) {
	if r.staged.set {
		drifterrors.Contractf("registry.HoldForPrepare", "%v already staged for %s %d", r.staged.h, r.staged.kind, r.staged.index)
	}
	r.staged = slot{kind: kind, index: di, h: h, set: true}
}

// ReleaseAfterPrepare empties the staging slot.
func (r *Registry) ReleaseAfterPrepare() {
	r.staged = slot{}
}

// Staged returns the element in the staging slot.
func (r *Registry) Staged() (core.Kind, int, core.Handle, bool) {
	return r.staged.kind, r.staged.index, r.staged.h, r.staged.set
}
