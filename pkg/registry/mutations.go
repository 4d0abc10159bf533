package registry

import (
	"sort"

	"github.com/go-drift/virtualize/pkg/core"
)

// OnDataInserted shifts every index of kind at or after di up by one. An
// insertion inside the valid range opens a sentinel there.
func (r *Registry) OnDataInserted(kind core.Kind, di int) {
	r.InsertSentinel(kind, di)
	r.shiftFrom(kind, di, +1)
}

// OnDataRemoved accounts for the removal of data index di. Pins and focus at
// di are cleared, the slot is erased and every later index moves down by
// one. The elements that lost their place are returned; they are in the
// garbage section and ready to be recycled.
func (r *Registry) OnDataRemoved(kind core.Kind, di int) []core.Handle {
	var removed []core.Handle
	appendOnce := func(h core.Handle) {
		if h.IsZero() {
			return
		}
		for _, x := range removed {
			if x == h {
				return
			}
		}
		removed = append(removed, h)
	}

	if h, ok := r.pins[kind][di]; ok {
		delete(r.pins[kind], di)
		appendOnce(h)
	}
	if r.focus.set && r.focus.kind == kind && r.focus.index == di {
		appendOnce(r.focus.h)
		r.focus = slot{}
	}
	if r.staged.set && r.staged.kind == kind && r.staged.index == di {
		r.staged.index = -1
	}

	if len(r.valid[kind]) > 0 {
		first := r.first[kind]
		switch {
		case di < first:
			r.first[kind]--
		case di < first+len(r.valid[kind]):
			appendOnce(r.RemoveFromValidElements(kind, di-first, true, -1))
		}
	}

	// anything still attached at di is no longer kept by a pin or the range
	sec := r.sections[kind]
	for i := 0; i < len(sec); i++ {
		if sec[i].index == di {
			appendOnce(sec[i].h)
			r.toGarbage(kind, sec[i].h)
			break
		}
	}
	r.shiftFrom(kind, di+1, -1)
	return removed
}

// OnDataReplaced swaps the element at di for h, which may be the zero
// handle to leave a sentinel for the next pass to fill. Pins and focus on
// the old element are dropped. The detached element is returned.
func (r *Registry) OnDataReplaced(kind core.Kind, di int, h core.Handle) core.Handle {
	var old core.Handle
	if ph, ok := r.pins[kind][di]; ok {
		delete(r.pins[kind], di)
		old = ph
	}
	if r.focus.set && r.focus.kind == kind && r.focus.index == di {
		old = r.focus.h
		r.focus = slot{}
	}
	if vi := r.ValidIndexFromDataIndex(kind, di); vi >= 0 {
		if prev := r.PlaceInValidElements(kind, di, h); !prev.IsZero() {
			old = prev
		}
	}
	if !old.IsZero() {
		r.detach(kind, old)
	}
	return old
}

// shiftFrom moves every index of kind at or after from by delta.
func (r *Registry) shiftFrom(kind core.Kind, from, delta int) {
	for i := range r.sections[kind] {
		c := &r.sections[kind][i]
		if c.index >= from {
			c.index += delta
			if e, ok := r.arena.Get(c.h); ok {
				e.Index = c.index
			}
		}
	}
	if len(r.pins[kind]) > 0 {
		shifted := make(map[int]core.Handle, len(r.pins[kind]))
		for di, h := range r.pins[kind] {
			if di >= from {
				di += delta
			}
			shifted[di] = h
		}
		r.pins[kind] = shifted
	}
	if r.focus.set && r.focus.kind == kind && r.focus.index >= from {
		r.focus.index += delta
	}
	if r.staged.set && r.staged.kind == kind && r.staged.index >= from {
		r.staged.index += delta
		if e, ok := r.arena.Get(r.staged.h); ok {
			e.Index = r.staged.index
		}
	}
}

// Refresh forgets everything and returns every element the registry knew,
// in the tree or not, so the caller can release them.
func (r *Registry) Refresh() []core.Handle {
	seen := make(map[core.Handle]bool)
	var all []core.Handle
	add := func(h core.Handle) {
		if !h.IsZero() && !seen[h] {
			seen[h] = true
			all = append(all, h)
		}
	}
	for _, h := range r.Children() {
		add(h)
	}
	for _, k := range core.Kinds {
		for _, h := range r.valid[k] {
			add(h)
		}
		for _, h := range r.pins[k] {
			add(h)
		}
		r.valid[k] = nil
		r.first[k] = -1
		r.lastHit[k] = 0
		r.sections[k] = nil
		r.pins[k] = make(map[int]core.Handle)
	}
	add(r.focus.h)
	add(r.staged.h)
	for _, h := range all {
		if e, ok := r.arena.Get(h); ok {
			e.InTree = false
		}
	}
	r.garbage = nil
	r.focus = slot{}
	r.staged = slot{}
	return all
}

// Reset evicts every realized element. Pinned and focused elements stay in
// their sections; everything else moves to the garbage section and is
// returned for recycling.
func (r *Registry) Reset() []core.Handle {
	var evicted []core.Handle
	for _, k := range core.Kinds {
		for _, h := range r.RemoveAllValidElements(k) {
			if r.InGarbage(h) {
				evicted = append(evicted, h)
			}
		}
	}
	return evicted
}

// Resolver re-resolves kept elements after a structural reset.
type Resolver interface {
	// Resolve returns the new data index of the element, using the
	// identity of the item it was prepared for.
	Resolve(kind core.Kind, h core.Handle) (int, bool)
	// Regenerate prepares an element for newIndex in place of old and
	// returns it. Returning old reuses it.
	Regenerate(kind core.Kind, newIndex int, old core.Handle) core.Handle
}

// Reorganize re-resolves every pinned and focused element after a
// structural reset. Elements whose item moved are regenerated at the new
// index and re-pinned; those whose item is gone, or whose new index is
// already taken, are unpinned. Realized ranges are evicted first. The
// returned elements are in the garbage section for the caller to recycle.
func (r *Registry) Reorganize(res Resolver) []core.Handle {
	orphans := r.Reset()

	type kept struct {
		kind    core.Kind
		index   int
		h       core.Handle
		focused bool
	}
	var entries []kept
	for _, k := range core.Kinds {
		for _, di := range r.PinnedIndices(k) {
			entries = append(entries, kept{kind: k, index: di, h: r.pins[k][di]})
		}
		r.pins[k] = make(map[int]core.Handle)
	}
	if r.focus.set {
		entries = append(entries, kept{kind: r.focus.kind, index: r.focus.index, h: r.focus.h, focused: true})
		r.focus = slot{}
	}
	for _, k := range core.Kinds {
		for _, c := range r.sections[k] {
			r.garbage = append(r.garbage, c.h)
		}
		r.sections[k] = nil
	}

	// focused first so focus wins any collision
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].focused && !entries[j].focused })

	taken := make(map[[2]int]core.Handle)
	moved := make(map[core.Handle]core.Handle)
	keep := make(map[core.Handle]bool)
	for _, ent := range entries {
		newIndex, ok := res.Resolve(ent.kind, ent.h)
		if !ok {
			continue
		}
		key := [2]int{int(ent.kind), newIndex}
		h, seen := moved[ent.h]
		if !seen {
			h = ent.h
		}
		if other, dup := taken[key]; dup && other != h {
			continue
		}
		if !seen && newIndex != ent.index {
			h = res.Regenerate(ent.kind, newIndex, ent.h)
		}
		moved[ent.h] = h
		taken[key] = h
		keep[h] = true
		if ent.focused {
			r.focus = slot{kind: ent.kind, index: newIndex, h: h, set: true}
		} else {
			r.pins[ent.kind][newIndex] = h
		}
		r.removeGarbage(h)
		r.attach(ent.kind, newIndex, h)
	}

	for _, ent := range entries {
		if !keep[ent.h] && r.InGarbage(ent.h) && !containsHandle(orphans, ent.h) {
			orphans = append(orphans, ent.h)
		}
	}
	return orphans
}

func containsHandle(hs []core.Handle, h core.Handle) bool {
	for _, x := range hs {
		if x == h {
			return true
		}
	}
	return false
}
