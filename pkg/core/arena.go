package core

import (
	"fmt"

	"github.com/go-drift/virtualize/pkg/graphics"
)

// Element is the engine's record for one realized (or recyclable) visual.
type Element struct {
	// Kind is the element kind.
	Kind Kind
	// Visual is the host-owned visual object.
	Visual any
	// Item is the data item or group the element was last prepared for.
	Item any
	// Index is the data index the element was last prepared for, or -1.
	Index int
	// Bounds is the last arranged rectangle in panel coordinates.
	Bounds graphics.Rect
	// Generated reports whether the host's generator created the visual.
	// Non-generated visuals are foreign roots and are never recycled.
	Generated bool
	// InTree reports whether the visual is currently a child of the panel.
	InTree bool
}

// Handle is a generation-checked reference into an Arena. The zero Handle
// never resolves and marks a sentinel slot.
type Handle struct {
	slot uint32
	gen  uint32
}

// IsZero reports whether h is the zero (sentinel) handle.
func (h Handle) IsZero() bool { return h.slot == 0 }

func (h Handle) String() string {
	if h.IsZero() {
		return "handle(nil)"
	}
	return fmt.Sprintf("handle(%d#%d)", h.slot, h.gen)
}

type arenaEntry struct {
	elem Element
	gen  uint32
	live bool
}

// Arena owns element records. Freed slots are reused with a bumped
// generation so stale handles resolve to nothing.
type Arena struct {
	entries []arenaEntry
	free    []uint32
	live    int
}

// NewArena creates an empty arena.
func NewArena() *Arena {
	// slot 0 is reserved for the zero handle
	return &Arena{entries: make([]arenaEntry, 1)}
}

// Alloc stores e and returns its handle.
func (a *Arena) Alloc(e Element) Handle {
	var slot uint32
	if n := len(a.free); n > 0 {
		slot = a.free[n-1]
		a.free = a.free[:n-1]
	} else {
		a.entries = append(a.entries, arenaEntry{})
		slot = uint32(len(a.entries) - 1)
	}
	entry := &a.entries[slot]
	entry.gen++
	entry.elem = e
	entry.live = true
	a.live++
	return Handle{slot: slot, gen: entry.gen}
}

// Get resolves h. It returns false for the zero handle and for handles
// whose element has been freed.
func (a *Arena) Get(h Handle) (*Element, bool) {
	if h.IsZero() || int(h.slot) >= len(a.entries) {
		return nil, false
	}
	entry := &a.entries[h.slot]
	if !entry.live || entry.gen != h.gen {
		return nil, false
	}
	return &entry.elem, true
}

// Valid reports whether h still resolves.
func (a *Arena) Valid(h Handle) bool {
	_, ok := a.Get(h)
	return ok
}

// Free releases the element behind h. Freeing a stale handle is a no-op
// and returns false.
func (a *Arena) Free(h Handle) bool {
	if !a.Valid(h) {
		return false
	}
	entry := &a.entries[h.slot]
	entry.elem = Element{}
	entry.live = false
	a.free = append(a.free, h.slot)
	a.live--
	return true
}

// Len returns the number of live elements.
func (a *Arena) Len() int { return a.live }

// Each calls fn for every live element in slot order.
func (a *Arena) Each(fn func(Handle, *Element)) {
	for i := 1; i < len(a.entries); i++ {
		entry := &a.entries[i]
		if entry.live {
			fn(Handle{slot: uint32(i), gen: entry.gen}, &entry.elem)
		}
	}
}

// Find returns the handle of the first live element whose visual is v.
func (a *Arena) Find(v any) (Handle, bool) {
	if v == nil {
		return Handle{}, false
	}
	for i := 1; i < len(a.entries); i++ {
		entry := &a.entries[i]
		if entry.live && entry.elem.Visual == v {
			return Handle{slot: uint32(i), gen: entry.gen}, true
		}
	}
	return Handle{}, false
}
