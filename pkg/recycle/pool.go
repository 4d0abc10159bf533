// Package recycle keeps evicted elements available for reuse.
package recycle

import (
	"github.com/go-drift/virtualize/pkg/core"
	drifterrors "github.com/go-drift/virtualize/pkg/errors"
	"github.com/go-drift/virtualize/pkg/registry"
)

// MinHeaderGarbage is the floor of the header garbage cap.
const MinHeaderGarbage = 16

// Outcome reports what TryRecycle did with an element.
type Outcome int

const (
	// Queued means the element was added to its kind's queue.
	Queued Outcome = iota
	// SkippedPinned means the element is pinned or focused and was left alone.
	SkippedPinned
	// RemovedFromTree means the element cannot be reused and was unlinked.
	RemovedFromTree
	// AlreadyQueued means the element was already waiting in a queue.
	AlreadyQueued
	// Stale means the handle no longer resolves.
	Stale
)

func (o Outcome) String() string {
	switch o {
	case Queued:
		return "queued"
	case SkippedPinned:
		return "skipped-pinned"
	case RemovedFromTree:
		return "removed-from-tree"
	case AlreadyQueued:
		return "already-queued"
	case Stale:
		return "stale"
	default:
		return "unknown"
	}
}

// Pool holds one FIFO queue of reusable elements per kind.
type Pool struct {
	reg       *registry.Registry
	queues    core.ByKind[[]core.Handle]
	headerCap int
}

// New creates a pool over reg. cacheLength is the realization cache length
// in viewports and sizes the header garbage cap.
func New(reg *registry.Registry, cacheLength float64) *Pool {
	p := &Pool{reg: reg}
	p.SetCacheLength(cacheLength)
	return p
}

// SetCacheLength resizes the header garbage cap to max(16, 4×cacheLength).
func (p *Pool) SetCacheLength(cacheLength float64) {
	p.headerCap = max(MinHeaderGarbage, int(4*cacheLength))
}

// HeaderCap returns the header garbage cap.
func (p *Pool) HeaderCap() int { return p.headerCap }

// TryRecycle queues h for reuse. Pinned elements are left in place.
// Elements the generator did not create are foreign roots that cannot be
// reparented, so they are removed from the tree instead, as are headers
// beyond the garbage cap. Queuing a realized element is a contract
// violation.
func (p *Pool) TryRecycle(kind core.Kind, h core.Handle) Outcome {
	e, ok := p.reg.Arena().Get(h)
	if !ok {
		return Stale
	}
	if p.reg.IsElementPinned(h) {
		return SkippedPinned
	}
	if p.Contains(kind, h) {
		return AlreadyQueued
	}
	if p.reg.IsRealized(h) {
		drifterrors.Contractf("recycle.TryRecycle", "%v is still realized as %s %d", h, e.Kind, e.Index)
	}
	if !e.Generated || (kind == core.Header && len(p.queues[core.Header]) >= p.headerCap) {
		p.reg.Unlink(h)
		return RemovedFromTree
	}
	p.reg.AddToGarbage(h)
	p.queues[kind] = append(p.queues[kind], h)
	return Queued
}

// FindCandidate removes and returns the oldest queued element of kind that
// match accepts. Template matching is best effort: callers fall back to
// Dequeue when nothing matches.
func (p *Pool) FindCandidate(kind core.Kind, match func(core.Handle) bool) (core.Handle, bool) {
	for i, h := range p.queues[kind] {
		if match == nil || match(h) {
			p.removeAt(kind, i)
			return h, true
		}
	}
	return core.Handle{}, false
}

// Dequeue removes and returns the oldest queued element of kind.
func (p *Pool) Dequeue(kind core.Kind) (core.Handle, bool) {
	if len(p.queues[kind]) == 0 {
		return core.Handle{}, false
	}
	h := p.queues[kind][0]
	p.removeAt(kind, 0)
	return h, true
}

// IsEmpty reports whether kind's queue is empty.
func (p *Pool) IsEmpty(kind core.Kind) bool { return len(p.queues[kind]) == 0 }

// Len returns the length of kind's queue.
func (p *Pool) Len(kind core.Kind) int { return len(p.queues[kind]) }

// Contains reports whether h waits in kind's queue.
func (p *Pool) Contains(kind core.Kind, h core.Handle) bool {
	for _, q := range p.queues[kind] {
		if q == h {
			return true
		}
	}
	return false
}

// Remove takes h out of kind's queue without reusing it.
func (p *Pool) Remove(kind core.Kind, h core.Handle) bool {
	for i, q := range p.queues[kind] {
		if q == h {
			p.removeAt(kind, i)
			return true
		}
	}
	return false
}

func (p *Pool) removeAt(kind core.Kind, i int) {
	q := p.queues[kind]
	p.queues[kind] = append(q[:i], q[i+1:]...)
}

// Discard empties both queues, unlinking every element and handing it to
// release.
func (p *Pool) Discard(release func(kind core.Kind, h core.Handle)) int {
	n := 0
	for _, k := range core.Kinds {
		for _, h := range p.queues[k] {
			p.reg.Unlink(h)
			if release != nil {
				release(k, h)
			}
			n++
		}
		p.queues[k] = nil
	}
	return n
}

// Forget drops every queued handle without touching the tree. It is used
// after the registry has been refreshed.
func (p *Pool) Forget() {
	for _, k := range core.Kinds {
		p.queues[k] = nil
	}
}
