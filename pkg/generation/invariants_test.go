package generation_test

import (
	"math/rand"
	"testing"

	"github.com/go-drift/virtualize/pkg/core"
	"github.com/go-drift/virtualize/pkg/paneltest"
)

// checkRegistry fails the test when the valid ranges, pins, pool and arena
// disagree with each other. With exact, bounds of realized items must also
// match the stack layout.
func checkRegistry(t *testing.T, pt *paneltest.PanelTester, step int, exact bool) {
	t.Helper()
	reg := pt.Engine.Registry()
	pool := pt.Engine.Pool()
	arena := pt.Engine.Arena()
	for _, k := range core.Kinds {
		first := reg.FirstValidIndex(k)
		for vi := 0; vi < reg.ValidCount(k); vi++ {
			h := reg.GetAtValidIndex(k, vi)
			if h.IsZero() {
				if vi == 0 || vi == reg.ValidCount(k)-1 {
					t.Fatalf("step %d: %s sentinel at range edge %d", step, k, vi)
				}
				continue
			}
			el, ok := arena.Get(h)
			if !ok {
				t.Fatalf("step %d: stale %v in %s range", step, h, k)
			}
			if el.Index != first+vi {
				t.Fatalf("step %d: %s slot %d holds index %d, want %d", step, k, vi, el.Index, first+vi)
			}
			if kind, di, ok := reg.IndexFromElement(h); !ok || kind != k || di != first+vi {
				t.Fatalf("step %d: IndexFromElement(%v) = %s %d, want %s %d", step, h, kind, di, k, first+vi)
			}
			if pool.Contains(k, h) {
				t.Fatalf("step %d: %s %d is realized and queued", step, k, el.Index)
			}
			if exact && k == core.ItemContainer {
				if want := float64(el.Index) * paneltest.DefaultItemLength; el.Bounds.Top != want {
					t.Fatalf("step %d: item %d at %v, want %v", step, el.Index, el.Bounds.Top, want)
				}
			}
		}
		for _, di := range reg.PinnedIndices(k) {
			h, _ := reg.PinnedElement(k, di)
			if pool.Contains(k, h) {
				t.Fatalf("step %d: pinned %s %d is queued", step, k, di)
			}
		}
	}
	arena.Each(func(h core.Handle, el *core.Element) {
		if !reg.IsRealized(h) && !reg.IsElementPinned(h) && !pool.Contains(el.Kind, h) {
			t.Fatalf("step %d: %s %v is neither realized, kept nor queued", step, el.Kind, h)
		}
	})
}

func TestRandomMutationsKeepRegistryConsistent(t *testing.T) {
	rng := rand.New(rand.NewSource(20))
	src := paneltest.NewFlatSource(60)
	pt := paneltest.NewPanelTester(t, src, paneltest.Options{})
	pt.Pump()

	randomRealized := func() (int, bool) {
		got := pt.Realized(core.ItemContainer)
		if len(got) == 0 {
			return 0, false
		}
		return got[rng.Intn(len(got))], true
	}

	for step := 0; step < 400; step++ {
		n := src.ItemCount()
		switch op := rng.Intn(10); {
		case op == 0 || n < 2:
			i := rng.Intn(n + 1)
			src.InsertItem(i)
			pt.Engine.ItemInserted(i)
		case op == 1:
			i := rng.Intn(n)
			src.RemoveItem(i)
			pt.Engine.ItemRemoved(i)
		case op == 2:
			i := rng.Intn(n)
			src.ReplaceItem(i)
			pt.Engine.ItemReplaced(i)
		case op == 3:
			from, to := rng.Intn(n), rng.Intn(n)
			src.MoveItem(from, to)
			pt.Engine.ItemMoved(from, to)
		case op == 4:
			pt.ScrollTo(rng.Float64() * float64(n) * paneltest.DefaultItemLength)
		case op == 5:
			if i, ok := randomRealized(); ok {
				if err := pt.Engine.Pin(core.ItemContainer, i); err != nil {
					t.Fatalf("step %d: Pin(%d) error = %v", step, i, err)
				}
			}
		case op == 6:
			if pinned := pt.Engine.Registry().PinnedIndices(core.ItemContainer); len(pinned) > 0 {
				pt.Engine.Unpin(core.ItemContainer, pinned[rng.Intn(len(pinned))])
			}
		case op == 7:
			if i, ok := randomRealized(); ok && rng.Intn(3) > 0 {
				if err := pt.Engine.Focus(core.ItemContainer, i); err != nil {
					t.Fatalf("step %d: Focus(%d) error = %v", step, i, err)
				}
			} else {
				pt.Engine.ClearFocus()
			}
		case op == 8 && rng.Intn(4) == 0:
			src.Reverse()
			pt.Engine.Reset()
		default:
			pt.ScrollTo(pt.ScrollOffset() + float64(rng.Intn(400)-200))
		}

		pt.Pump()
		checkRegistry(t, pt, step, false)
		pt.Pump()
		checkRegistry(t, pt, step, true)
	}
}
