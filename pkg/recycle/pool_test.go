package recycle

import (
	"testing"

	"github.com/go-drift/virtualize/pkg/core"
	"github.com/go-drift/virtualize/pkg/registry"
)

func setup(cacheLength float64) (*registry.Registry, *Pool) {
	reg := registry.New(core.NewArena())
	return reg, New(reg, cacheLength)
}

func realize(reg *registry.Registry, kind core.Kind, di int, generated bool) core.Handle {
	h := reg.Arena().Alloc(core.Element{Kind: kind, Index: -1, Generated: generated, Visual: di})
	reg.PlaceInValidElements(kind, di, h)
	return h
}

func evict(reg *registry.Registry, kind core.Kind) core.Handle {
	return reg.RemoveFromValidElements(kind, 0, false, -1)
}

func TestTryRecycleOutcomes(t *testing.T) {
	reg, pool := setup(4)
	generated := realize(reg, core.ItemContainer, 0, true)
	foreign := realize(reg, core.ItemContainer, 1, false)
	pinned := realize(reg, core.ItemContainer, 2, true)
	reg.Pin(core.ItemContainer, 2, pinned)

	evict(reg, core.ItemContainer)
	evict(reg, core.ItemContainer)
	evict(reg, core.ItemContainer)

	tests := []struct {
		name string
		h    core.Handle
		want Outcome
	}{
		{"generated", generated, Queued},
		{"again", generated, AlreadyQueued},
		{"foreign", foreign, RemovedFromTree},
		{"pinned", pinned, SkippedPinned},
		{"stale", core.Handle{}, Stale},
	}
	for _, tt := range tests {
		if got := pool.TryRecycle(core.ItemContainer, tt.h); got != tt.want {
			t.Errorf("%s: TryRecycle() = %v, want %v", tt.name, got, tt.want)
		}
	}
	if got := pool.Len(core.ItemContainer); got != 1 {
		t.Errorf("Len() = %d, want 1", got)
	}
	if e, _ := reg.Arena().Get(foreign); e.InTree {
		t.Error("foreign element should be removed from the tree")
	}
	if !reg.InGarbage(generated) {
		t.Error("queued element should stay in the garbage section")
	}
}

func TestNoDuplicationWithValidRange(t *testing.T) {
	reg, pool := setup(2)
	realize(reg, core.ItemContainer, 0, true)
	for i := 0; i < reg.ValidCount(core.ItemContainer); i++ {
		h := reg.GetAtValidIndex(core.ItemContainer, i)
		if pool.Contains(core.ItemContainer, h) {
			t.Errorf("%v is both realized and queued", h)
		}
	}
}

func TestFIFOAndCandidates(t *testing.T) {
	reg, pool := setup(2)
	var hs []core.Handle
	for i := 0; i < 4; i++ {
		hs = append(hs, realize(reg, core.ItemContainer, i, true))
	}
	for range hs {
		pool.TryRecycle(core.ItemContainer, evict(reg, core.ItemContainer))
	}

	got, ok := pool.FindCandidate(core.ItemContainer, func(h core.Handle) bool {
		e, _ := reg.Arena().Get(h)
		return e.Visual == 2
	})
	if !ok || got != hs[2] {
		t.Errorf("FindCandidate() = %v, %v, want %v", got, ok, hs[2])
	}
	if _, ok := pool.FindCandidate(core.ItemContainer, func(core.Handle) bool { return false }); ok {
		t.Error("FindCandidate() matched nothing but returned an element")
	}
	for _, want := range []core.Handle{hs[0], hs[1], hs[3]} {
		if got, _ := pool.Dequeue(core.ItemContainer); got != want {
			t.Errorf("Dequeue() = %v, want %v", got, want)
		}
	}
	if !pool.IsEmpty(core.ItemContainer) {
		t.Error("queue should be empty")
	}
	if _, ok := pool.Dequeue(core.ItemContainer); ok {
		t.Error("Dequeue() on empty queue returned an element")
	}
}

func TestHeaderGarbageCap(t *testing.T) {
	reg, pool := setup(2)
	if got := pool.HeaderCap(); got != MinHeaderGarbage {
		t.Errorf("HeaderCap() = %d, want %d", got, MinHeaderGarbage)
	}
	pool.SetCacheLength(5)
	if got := pool.HeaderCap(); got != 20 {
		t.Errorf("HeaderCap() = %d, want 20", got)
	}
	pool.SetCacheLength(0)

	removed := 0
	for i := 0; i < MinHeaderGarbage+3; i++ {
		realize(reg, core.Header, i, true)
	}
	for i := 0; i < MinHeaderGarbage+3; i++ {
		if pool.TryRecycle(core.Header, evict(reg, core.Header)) == RemovedFromTree {
			removed++
		}
	}
	if removed != 3 {
		t.Errorf("removed %d headers, want 3", removed)
	}
	if got := pool.Len(core.Header); got != MinHeaderGarbage {
		t.Errorf("Len(header) = %d, want %d", got, MinHeaderGarbage)
	}
}

func TestDiscard(t *testing.T) {
	reg, pool := setup(2)
	realize(reg, core.ItemContainer, 0, true)
	realize(reg, core.Header, 0, true)
	pool.TryRecycle(core.ItemContainer, evict(reg, core.ItemContainer))
	pool.TryRecycle(core.Header, evict(reg, core.Header))

	var released []core.Kind
	n := pool.Discard(func(k core.Kind, _ core.Handle) { released = append(released, k) })
	if n != 2 || len(released) != 2 || released[0] != core.Header {
		t.Errorf("Discard() = %d, released %v", n, released)
	}
	if reg.GarbageCount() != 0 {
		t.Errorf("GarbageCount() = %d, want 0", reg.GarbageCount())
	}
}
