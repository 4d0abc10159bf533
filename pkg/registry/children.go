package registry

import (
	"sort"

	"github.com/go-drift/virtualize/pkg/core"
	drifterrors "github.com/go-drift/virtualize/pkg/errors"
)

// attach makes h the child for data index di in kind's section, taking it
// out of the garbage section if needed.
func (r *Registry) attach(kind core.Kind, di int, h core.Handle) {
	e, _ := r.arena.Get(h)
	sec := r.sections[kind]
	pos := sort.Search(len(sec), func(i int) bool { return sec[i].index >= di })
	if pos < len(sec) && sec[pos].index == di {
		if sec[pos].h != h {
			drifterrors.Contractf("registry.attach", "%s %d already has child %v", kind, di, sec[pos].h)
		}
		e.Index = di
		return
	}
	if at := r.sectionPos(kind, h); at >= 0 {
		drifterrors.Contractf("registry.attach", "%v is already the child for %s %d", h, kind, sec[at].index)
	}
	r.removeGarbage(h)
	sec = append(sec, child{})
	copy(sec[pos+1:], sec[pos:])
	sec[pos] = child{index: di, h: h}
	r.sections[kind] = sec
	e.Index = di
	e.InTree = true
}

// detach moves h to the garbage section unless it is still realized,
// pinned, focused or staged.
func (r *Registry) detach(kind core.Kind, h core.Handle) {
	if r.inValid(kind, h) || r.IsElementPinned(h) {
		return
	}
	if r.staged.set && r.staged.h == h {
		return
	}
	r.toGarbage(kind, h)
}

func (r *Registry) toGarbage(kind core.Kind, h core.Handle) {
	at := r.sectionPos(kind, h)
	if at < 0 {
		return
	}
	sec := r.sections[kind]
	r.sections[kind] = append(sec[:at], sec[at+1:]...)
	r.garbage = append(r.garbage, h)
}

func (r *Registry) sectionPos(kind core.Kind, h core.Handle) int {
	for i, c := range r.sections[kind] {
		if c.h == h {
			return i
		}
	}
	return -1
}

func (r *Registry) removeGarbage(h core.Handle) bool {
	for i, g := range r.garbage {
		if g == h {
			r.garbage = append(r.garbage[:i], r.garbage[i+1:]...)
			return true
		}
	}
	return false
}

// Children returns the physical child order:
// headers, then containers, then garbage.
func (r *Registry) Children() []core.Handle {
	out := make([]core.Handle, 0, len(r.sections[core.Header])+len(r.sections[core.ItemContainer])+len(r.garbage))
	for _, k := range core.Kinds {
		for _, c := range r.sections[k] {
			out = append(out, c.h)
		}
	}
	return append(out, r.garbage...)
}

// ChildIndexMap returns the data indices parallel to kind's section.
func (r *Registry) ChildIndexMap(kind core.Kind) []int {
	out := make([]int, len(r.sections[kind]))
	for i, c := range r.sections[kind] {
		out[i] = c.index
	}
	return out
}

// SectionHandles returns the handles of kind's section in order.
func (r *Registry) SectionHandles(kind core.Kind) []core.Handle {
	out := make([]core.Handle, len(r.sections[kind]))
	for i, c := range r.sections[kind] {
		out[i] = c.h
	}
	return out
}

// GarbageCount returns the number of elements in the garbage section.
func (r *Registry) GarbageCount() int { return len(r.garbage) }

// GarbageCountOf returns the number of garbage elements of kind.
func (r *Registry) GarbageCountOf(kind core.Kind) int {
	n := 0
	for _, h := range r.garbage {
		if e, ok := r.arena.Get(h); ok && e.Kind == kind {
			n++
		}
	}
	return n
}

// InGarbage reports whether h sits in the garbage section.
func (r *Registry) InGarbage(h core.Handle) bool {
	for _, g := range r.garbage {
		if g == h {
			return true
		}
	}
	return false
}

// Unlink removes h from the tree. A realized, pinned or focused element
// cannot be unlinked.
func (r *Registry) Unlink(h core.Handle) bool {
	e, ok := r.arena.Get(h)
	if !ok {
		return false
	}
	if r.inValid(e.Kind, h) || r.IsElementPinned(h) {
		drifterrors.Contractf("registry.Unlink", "%v is still in use as %s %d", h, e.Kind, e.Index)
	}
	if !r.removeGarbage(h) {
		if at := r.sectionPos(e.Kind, h); at >= 0 {
			sec := r.sections[e.Kind]
			r.sections[e.Kind] = append(sec[:at], sec[at+1:]...)
		}
	}
	e.InTree = false
	return true
}

// AddToGarbage parks h, which must not be realized, in the garbage section.
// It is how recycled elements the registry never placed enter the tree.
func (r *Registry) AddToGarbage(h core.Handle) {
	e, ok := r.arena.Get(h)
	if !ok || r.InGarbage(h) || r.sectionPos(e.Kind, h) >= 0 {
		return
	}
	r.garbage = append(r.garbage, h)
	e.InTree = true
}
