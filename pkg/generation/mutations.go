package generation

import (
	"github.com/go-drift/virtualize/pkg/core"
	"github.com/go-drift/virtualize/pkg/datacache"
	"github.com/go-drift/virtualize/pkg/window"
)

// Mutation entry points are called after the source has applied the
// change. Each one renews the data cache, shifts the registry and the
// tracked element, and counts the change for the next pass's transition.

// ItemInserted records an item inserted at index.
func (e *Engine) ItemInserted(index int) {
	e.itemInserted(index)
	e.transitions.RecordAdd(e.tick+1, 1)
}

func (e *Engine) itemInserted(index int) {
	e.beginMutation()
	e.cache.RenewAfterMutation(datacache.Mutation{Op: datacache.ItemAdded, Index: index})
	e.reg.OnDataInserted(core.ItemContainer, index)
	e.shiftTracked(core.ItemContainer, index, 1)
}

// ItemRemoved records the removal of the item at index.
func (e *Engine) ItemRemoved(index int) {
	e.itemRemoved(index)
	e.transitions.RecordRemove(e.tick+1, 1)
}

func (e *Engine) itemRemoved(index int) {
	e.beginMutation()
	e.cache.RenewAfterMutation(datacache.Mutation{Op: datacache.ItemRemoved, Index: index})
	for _, h := range e.reg.OnDataRemoved(core.ItemContainer, index) {
		e.recycle(core.ItemContainer, h)
	}
	e.removeTracked(core.ItemContainer, index, 1)
}

// ItemReplaced records that the item at index was replaced. Its container
// is recycled and regenerated by the next pass, which keeps the first
// visible element fixed in case the new item measures differently.
func (e *Engine) ItemReplaced(index int) {
	e.tracker.RequestTracking()
	if old := e.reg.OnDataReplaced(core.ItemContainer, index, core.Handle{}); !old.IsZero() {
		e.recycle(core.ItemContainer, old)
	}
	e.transitions.RecordRemove(e.tick+1, 1)
	e.transitions.RecordAdd(e.tick+1, 1)
}

// GroupInserted records a group inserted at index along with its items.
func (e *Engine) GroupInserted(index int) {
	e.beginMutation()
	e.cache.RenewAfterMutation(datacache.Mutation{Op: datacache.GroupAdded, Index: index})
	info, ok := e.cache.GroupInfo(index)
	if !ok {
		e.Reset()
		return
	}
	e.reg.OnDataInserted(core.Header, index)
	e.shiftTracked(core.Header, index, 1)
	for i := 0; i < info.Count; i++ {
		e.reg.OnDataInserted(core.ItemContainer, info.Start)
	}
	e.shiftTracked(core.ItemContainer, info.Start, info.Count)
	e.transitions.RecordAdd(e.tick+1, max(1, info.Count))
}

// GroupRemoved records the removal of the group at index and its items.
func (e *Engine) GroupRemoved(index int) {
	if !e.cache.IsValid() {
		e.Reset()
		return
	}
	info, ok := e.cache.GroupInfo(index)
	if !ok {
		e.Reset()
		return
	}
	e.beginMutation()
	e.cache.RenewAfterMutation(datacache.Mutation{Op: datacache.GroupRemoved, Index: index})
	for _, h := range e.reg.OnDataRemoved(core.Header, index) {
		e.recycle(core.Header, h)
	}
	e.removeTracked(core.Header, index, 1)
	for i := 0; i < info.Count; i++ {
		for _, h := range e.reg.OnDataRemoved(core.ItemContainer, info.Start) {
			e.recycle(core.ItemContainer, h)
		}
	}
	e.removeTracked(core.ItemContainer, info.Start, info.Count)
	e.transitions.RecordRemove(e.tick+1, max(1, info.Count))
}

// ItemMoved records an item moved from one index to another. The source
// reports to as an index after the removal. It is counted as a reorder.
func (e *Engine) ItemMoved(from, to int) {
	e.itemRemoved(from)
	e.itemInserted(to)
	e.transitions.RecordReorder(e.tick+1, 1)
}

// Reset handles a structural reset of the source. Realized elements are
// evicted; pinned and focused ones are matched to their items' new
// indexes.
func (e *Engine) Reset() {
	if e.running {
		e.epoch++
	}
	e.tracker.EndTracking()
	e.trackedRemoved = false
	e.tracker.ResetCacheBuffers()
	e.transitions.RecordReset(e.tick + 1)
	e.cache.Invalidate()

	session, err := e.cache.Guarantee()
	if err != nil {
		core.Logger().Debug("generation: reset without data", "error", err)
		e.Refresh()
		return
	}
	defer session.Release()
	for _, h := range e.reg.Reorganize(resolver{e}) {
		if el, ok := e.arena.Get(h); ok {
			e.recycle(el.Kind, h)
		}
	}
}

// Refresh destroys every element and forgets all cached state. A pass in
// progress is interrupted.
func (e *Engine) Refresh() {
	e.epoch++
	e.reg.Refresh()
	e.pool.Forget()
	var all []core.Handle
	e.arena.Each(func(h core.Handle, _ *core.Element) { all = append(all, h) })
	for _, h := range all {
		e.release(h)
	}
	e.cache.Invalidate()
	e.tracker.EndTracking()
	e.trackedRemoved = false
	e.tracker.ResetCacheBuffers()
	e.transitions.RecordReset(e.tick + 1)
}

// DiscardRecycled releases every queued element through the host and
// returns how many were released. Realized elements are untouched.
func (e *Engine) DiscardRecycled() int {
	return e.pool.Discard(func(_ core.Kind, h core.Handle) { e.release(h) })
}

// SetSource attaches a new data source.
func (e *Engine) SetSource(source datacache.DataSource) {
	e.Refresh()
	e.cache.SetSource(source)
}

func (e *Engine) release(h core.Handle) {
	el, ok := e.arena.Get(h)
	if !ok {
		return
	}
	e.host.ReleaseElement(el.Kind, el.Visual)
	e.arena.Free(h)
}

// beginMutation records the element to keep fixed across the change if
// none is tracked yet.
func (e *Engine) beginMutation() {
	if !e.tracker.IsTracking() {
		e.beginTracking()
	}
}

func (e *Engine) shiftTracked(kind core.Kind, index, n int) {
	te, ok := e.tracker.Tracked()
	if !ok || te.Kind != kind || n == 0 {
		return
	}
	if te.Index >= index {
		e.tracker.SetTrackedIndex(te.Index + n)
	}
}

func (e *Engine) removeTracked(kind core.Kind, index, n int) {
	te, ok := e.tracker.Tracked()
	if !ok || te.Kind != kind || n == 0 {
		return
	}
	switch {
	case te.Index >= index+n:
		e.tracker.SetTrackedIndex(te.Index - n)
	case te.Index >= index:
		e.trackedRemoved = true
	}
}

type resolver struct{ e *Engine }

func (r resolver) Resolve(kind core.Kind, h core.Handle) (int, bool) {
	el, ok := r.e.arena.Get(h)
	if !ok || el.Item == nil {
		return 0, false
	}
	index, isGroup, err := r.e.cache.IndexOf(el.Item)
	if err != nil || isGroup != (kind == core.Header) {
		return 0, false
	}
	return index, true
}

func (r resolver) Regenerate(kind core.Kind, newIndex int, old core.Handle) core.Handle {
	el, ok := r.e.arena.Get(old)
	if !ok {
		return old
	}
	el.Item = r.e.itemFor(kind, newIndex)
	if err := r.e.host.PrepareElement(kind, newIndex, el.Visual); err != nil {
		r.e.hostError("PrepareElement", kind, newIndex, err)
	}
	return old
}

// Pin keeps the realized element at index alive until Unpin, even when it
// leaves the realization window.
func (e *Engine) Pin(kind core.Kind, index int) error {
	h := e.reg.GetAtDataIndex(kind, index)
	if h.IsZero() {
		if _, ok := e.reg.PinnedElement(kind, index); ok {
			return nil
		}
		return ErrNotRealized
	}
	e.reg.EnsurePinned(kind, index, h)
	return nil
}

// Unpin releases a pin. An element no longer realized is recycled.
func (e *Engine) Unpin(kind core.Kind, index int) {
	if h, orphan := e.reg.Unpin(kind, index); orphan {
		e.recycle(kind, h)
	}
}

// Focus moves focus to the element at index, which must be realized or
// pinned.
func (e *Engine) Focus(kind core.Kind, index int) error {
	h := e.reg.GetAtDataIndex(kind, index)
	if h.IsZero() {
		var ok bool
		if h, ok = e.reg.PinnedElement(kind, index); !ok {
			return ErrNotRealized
		}
	}
	if _, _, fh, ok := e.reg.Focused(); ok && fh != h {
		e.ClearFocus()
	}
	e.reg.SetFocused(kind, index, h)
	return nil
}

// ClearFocus drops focus. An element kept only by focus is recycled.
func (e *Engine) ClearFocus() {
	kind, _, _, ok := e.reg.Focused()
	if !ok {
		return
	}
	if h, orphan := e.reg.ResetFocused(); orphan {
		e.recycle(kind, h)
	}
}

// ScrollIntoView queues a scroll bringing the element at index into view
// for the next pass.
func (e *Engine) ScrollIntoView(kind core.Kind, index int, align window.Alignment) {
	e.tracker.SetCommand(window.ScrollIntoView{Kind: kind, Index: index, Alignment: align})
}

// ScrollToEnd queues a scroll to the end of the panel.
func (e *Engine) ScrollToEnd() {
	e.tracker.SetCommand(window.ScrollToEnd{})
}

// SetKeepLastItemInView keeps the end of the content anchored while the
// viewport sits at the end.
func (e *Engine) SetKeepLastItemInView(keep bool) {
	e.tracker.SetKeepLastItemInView(keep, e.lastExtent)
}
