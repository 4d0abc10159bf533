package generation_test

import (
	"context"
	"errors"
	"testing"

	"github.com/go-drift/virtualize/pkg/core"
	drifterrors "github.com/go-drift/virtualize/pkg/errors"
	"github.com/go-drift/virtualize/pkg/generation"
	"github.com/go-drift/virtualize/pkg/graphics"
	"github.com/go-drift/virtualize/pkg/paneltest"
	"github.com/go-drift/virtualize/pkg/transition"
	"github.com/go-drift/virtualize/pkg/window"
)

type quietHandler struct{}

func (quietHandler) HandleError(*drifterrors.VirtualizationError) {}
func (quietHandler) HandlePanic(*drifterrors.PanicError)          {}

func quiet(t *testing.T) {
	t.Helper()
	drifterrors.SetHandler(quietHandler{})
	t.Cleanup(func() { drifterrors.SetHandler(nil) })
}

func span(from, to int) []int {
	var out []int
	for i := from; i <= to; i++ {
		out = append(out, i)
	}
	return out
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestFreshPanelGrowsCacheBuffer(t *testing.T) {
	pt := paneltest.NewPanelTester(t, paneltest.NewFlatSource(100), paneltest.Options{})

	stats := pt.Pump()
	if got := pt.Realized(core.ItemContainer); !equalInts(got, span(0, 4)) {
		t.Errorf("first pass realized %v, want 0..4", got)
	}
	if stats.Created != 5 {
		t.Errorf("Created = %d, want 5", stats.Created)
	}
	if stats.Transition.Category != transition.Entrance {
		t.Errorf("Transition = %v, want entrance", stats.Transition)
	}

	pt.Pump()
	// 40px buffer on each side; the window is moved down to start at 0.
	if got := pt.Realized(core.ItemContainer); !equalInts(got, span(0, 6)) {
		t.Errorf("second pass realized %v, want 0..6", got)
	}

	if err := pt.PumpAndSettle(); err != nil {
		t.Fatalf("PumpAndSettle() error = %v", err)
	}
	if got := pt.Engine.Tracker().CurrentCacheBuffer(); got != 400 {
		t.Errorf("CurrentCacheBuffer() = %v, want 400", got)
	}
	if got := pt.Realized(core.ItemContainer); !equalInts(got, span(0, 24)) {
		t.Errorf("settled realized %v, want 0..24", got)
	}
	if got := pt.Bounds(core.ItemContainer, 24); got.Top != 960 || got.Bottom != 1000 {
		t.Errorf("Bounds(24) = %v, want [960,1000)", got)
	}
	if len(pt.Host.Created) != 25 {
		t.Errorf("created %d visuals, want 25", len(pt.Host.Created))
	}
}

func TestThumbJumpIsDisconnected(t *testing.T) {
	pt := paneltest.NewPanelTester(t, paneltest.NewFlatSource(100), paneltest.Options{})
	if err := pt.PumpAndSettle(); err != nil {
		t.Fatalf("PumpAndSettle() error = %v", err)
	}
	pt.Host.ResetCalls()

	pt.ScrollTo(2000)
	stats := pt.Pump()

	if !stats.Disconnected {
		t.Errorf("Disconnected = false, want true")
	}
	if stats.Anchor.Index != 50 {
		t.Errorf("Anchor = %d, want 50", stats.Anchor.Index)
	}
	if got := pt.Realized(core.ItemContainer); !equalInts(got, span(50, 54)) {
		t.Errorf("realized %v, want 50..54", got)
	}
	if len(pt.Host.Created) != 0 {
		t.Errorf("created %d visuals, want recycled ones only", len(pt.Host.Created))
	}
	if stats.Recycled != 25 {
		t.Errorf("Recycled = %d, want 25", stats.Recycled)
	}
	if got := pt.Engine.Pool().Len(core.ItemContainer); got != 20 {
		t.Errorf("pool length = %d, want 20", got)
	}
	if got := pt.Bounds(core.ItemContainer, 50); got.Top != 2000 {
		t.Errorf("Bounds(50).Top = %v, want 2000", got.Top)
	}
}

func TestDiscardRecycledReleasesQueue(t *testing.T) {
	pt := paneltest.NewPanelTester(t, paneltest.NewFlatSource(100), paneltest.Options{})
	if err := pt.PumpAndSettle(); err != nil {
		t.Fatalf("PumpAndSettle() error = %v", err)
	}
	pt.ScrollTo(2000)
	pt.Pump()
	pt.Host.ResetCalls()

	if got := pt.Engine.DiscardRecycled(); got != 20 {
		t.Errorf("DiscardRecycled() = %d, want 20", got)
	}
	if got := len(pt.Host.Released); got != 20 {
		t.Errorf("released %d visuals, want 20", got)
	}
	if !pt.Engine.Pool().IsEmpty(core.ItemContainer) {
		t.Error("pool not empty after discard")
	}
	if got := pt.Engine.Arena().Len(); got != 5 {
		t.Errorf("Arena().Len() = %d, want 5", got)
	}
	if got := pt.Realized(core.ItemContainer); !equalInts(got, span(50, 54)) {
		t.Errorf("realized %v, want 50..54", got)
	}
}

func TestInsertBeforeViewportKeepsTrackedElement(t *testing.T) {
	src := paneltest.NewFlatSource(100)
	pt := paneltest.NewPanelTester(t, src, paneltest.Options{})
	pt.Pump()
	first := pt.VisualAt(core.ItemContainer, 0)

	src.InsertItem(0)
	pt.Engine.ItemInserted(0)
	stats := pt.Pump()

	if stats.Shift != 40 {
		t.Errorf("Shift = %v, want 40", stats.Shift)
	}
	if got := pt.ScrollOffset(); got != 40 {
		t.Errorf("ScrollOffset() = %v, want 40", got)
	}
	if got := pt.VisualAt(core.ItemContainer, 1); got != first {
		t.Errorf("VisualAt(1) = %v, want the visual formerly at 0", got)
	}
	b := pt.Bounds(core.ItemContainer, 1)
	if onScreen := b.Top - pt.ScrollOffset(); onScreen != 0 {
		t.Errorf("tracked element on screen at %v, want 0", onScreen)
	}
	if stats.Transition.Category != transition.SingleAdd {
		t.Errorf("Transition = %v, want single-add", stats.Transition)
	}
	if got := pt.Realized(core.ItemContainer); got[0] != 0 {
		t.Errorf("realized %v, want to start at 0", got)
	}
}

func TestRemovalRecyclesAndRefills(t *testing.T) {
	src := paneltest.NewFlatSource(100)
	pt := paneltest.NewPanelTester(t, src, paneltest.Options{})
	pt.Pump()
	removed := pt.VisualAt(core.ItemContainer, 2)

	src.RemoveItem(2)
	pt.Engine.ItemRemoved(2)
	if !pt.Engine.Pool().Contains(core.ItemContainer, mustHandle(t, pt, removed)) {
		t.Errorf("removed element not queued for reuse")
	}
	stats := pt.Pump()

	if got := pt.Realized(core.ItemContainer); !equalInts(got, span(0, 6)) {
		t.Errorf("realized %v, want 0..6", got)
	}
	if got := pt.VisualAt(core.ItemContainer, 4); got != removed {
		t.Errorf("VisualAt(4) = %v, want the recycled visual", got)
	}
	if stats.Transition.Category != transition.SingleDelete {
		t.Errorf("Transition = %v, want single-delete", stats.Transition)
	}
	if stats.Shift != 0 {
		t.Errorf("Shift = %v, want 0", stats.Shift)
	}
}

func mustHandle(t *testing.T, pt *paneltest.PanelTester, v *paneltest.Visual) core.Handle {
	t.Helper()
	h, ok := pt.Engine.Arena().Find(v)
	if !ok {
		t.Fatalf("visual %v has no element", v)
	}
	return h
}

func TestFocusedElementSurvivesScrolling(t *testing.T) {
	pt := paneltest.NewPanelTester(t, paneltest.NewFlatSource(100), paneltest.Options{})
	if err := pt.PumpAndSettle(); err != nil {
		t.Fatalf("PumpAndSettle() error = %v", err)
	}
	focused := pt.VisualAt(core.ItemContainer, 2)
	if err := pt.Engine.Focus(core.ItemContainer, 2); err != nil {
		t.Fatalf("Focus() error = %v", err)
	}

	pt.ScrollTo(2000)
	pt.Pump()
	if got := pt.VisualAt(core.ItemContainer, 2); got != focused {
		t.Errorf("focused visual = %v after scrolling away, want %v", got, focused)
	}
	if pt.Engine.Registry().IsConnected(core.ItemContainer, 2) {
		t.Errorf("focused element still in the valid range")
	}

	created := len(pt.Host.Created)
	pt.ScrollTo(0)
	pt.Pump()
	if got := pt.VisualAt(core.ItemContainer, 2); got != focused {
		t.Errorf("VisualAt(2) = %v after scrolling back, want the focused visual", got)
	}
	if !pt.Engine.Registry().IsConnected(core.ItemContainer, 2) {
		t.Errorf("focused element not realized after scrolling back")
	}
	if len(pt.Host.Created) != created {
		t.Errorf("created %d new visuals, want none", len(pt.Host.Created)-created)
	}

	pt.ScrollTo(2000)
	pt.Pump()
	h := mustHandle(t, pt, focused)
	pt.Engine.ClearFocus()
	if !pt.Engine.Pool().Contains(core.ItemContainer, h) {
		t.Errorf("unfocused element not recycled")
	}
}

func TestPinRequiresRealizedElement(t *testing.T) {
	pt := paneltest.NewPanelTester(t, paneltest.NewFlatSource(100), paneltest.Options{})
	pt.Pump()
	if err := pt.Engine.Pin(core.ItemContainer, 50); !errors.Is(err, generation.ErrNotRealized) {
		t.Errorf("Pin(50) error = %v, want ErrNotRealized", err)
	}
	if err := pt.Engine.Pin(core.ItemContainer, 1); err != nil {
		t.Fatalf("Pin(1) error = %v", err)
	}
	if err := pt.Engine.Pin(core.ItemContainer, 1); err != nil {
		t.Errorf("second Pin(1) error = %v, want nil", err)
	}

	pt.ScrollTo(2000)
	pt.Pump()
	if !pt.Engine.Registry().IsIndexPinned(core.ItemContainer, 1) {
		t.Errorf("pin lost after scrolling")
	}
	if pt.VisualAt(core.ItemContainer, 1) == nil {
		t.Errorf("pinned element not arranged")
	}
	pt.Engine.Unpin(core.ItemContainer, 1)
	if pt.VisualAt(core.ItemContainer, 1) != nil {
		t.Errorf("unpinned element still arranged")
	}
}

func TestReentrantCallsDuringPrepare(t *testing.T) {
	pt := paneltest.NewPanelTester(t, paneltest.NewFlatSource(10), paneltest.Options{})
	var measureErr error
	resolved := map[int]int{}
	pt.Host.OnPrepare = func(kind core.Kind, index int, v *paneltest.Visual) {
		_, measureErr = pt.Engine.Measure(context.Background())
		if _, got, ok := pt.Engine.IndexFromVisual(v); ok {
			resolved[index] = got
		}
	}
	pt.Pump()

	if !errors.Is(measureErr, generation.ErrReentrantMeasure) {
		t.Errorf("nested Measure() error = %v, want ErrReentrantMeasure", measureErr)
	}
	for i := 0; i < 5; i++ {
		if got, ok := resolved[i]; !ok || got != i {
			t.Errorf("IndexFromVisual during prepare of %d = %d, %v", i, got, ok)
		}
	}
	if got := pt.Engine.State(); got != generation.Idle {
		t.Errorf("State() = %v, want idle", got)
	}
}

func TestHostFailureAbortsPass(t *testing.T) {
	quiet(t)
	pt := paneltest.NewPanelTester(t, paneltest.NewFlatSource(100), paneltest.Options{})
	pt.Host.FailCreate = func(_ core.Kind, index int) bool { return index == 3 }

	_, err := pt.Engine.Measure(context.Background())
	var herr *drifterrors.HostError
	if !errors.As(err, &herr) {
		t.Fatalf("Measure() error = %v, want *HostError", err)
	}
	if herr.Index != 3 || !errors.Is(err, paneltest.ErrHostFailure) {
		t.Errorf("HostError = %v", herr)
	}
	if got := pt.Realized(core.ItemContainer); !equalInts(got, span(0, 2)) {
		t.Errorf("realized %v, want 0..2", got)
	}

	pt.Host.FailCreate = nil
	pt.Pump()
	if got := pt.Realized(core.ItemContainer); got[len(got)-1] < 4 {
		t.Errorf("realized %v after recovery, want at least 0..4", got)
	}
}

func TestCancelledContextStopsPass(t *testing.T) {
	pt := paneltest.NewPanelTester(t, paneltest.NewFlatSource(100), paneltest.Options{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := pt.Engine.Measure(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("Measure() error = %v, want context.Canceled", err)
	}
	if got := pt.Realized(core.ItemContainer); !equalInts(got, span(0, 0)) {
		t.Errorf("realized %v, want only the anchor", got)
	}
	pt.Pump()
	if got := pt.Realized(core.ItemContainer); !equalInts(got, span(0, 4)) {
		t.Errorf("realized %v after a full pass, want 0..4", got)
	}
}

func TestRefreshReleasesEverything(t *testing.T) {
	pt := paneltest.NewPanelTester(t, paneltest.NewFlatSource(100), paneltest.Options{})
	pt.Pump()
	pt.ScrollTo(2000)
	pt.Pump()

	pt.Engine.Refresh()
	if got := pt.Engine.Arena().Len(); got != 0 {
		t.Errorf("arena holds %d elements after Refresh, want 0", got)
	}
	if got, want := len(pt.Host.Released), len(pt.Host.Created); got != want {
		t.Errorf("released %d visuals, want %d", got, want)
	}
	if got := pt.Engine.Registry().Children(); len(got) != 0 {
		t.Errorf("Children() = %v, want none", got)
	}

	stats := pt.Pump()
	if stats.Transition.Category != transition.ContentReset {
		t.Errorf("Transition = %v, want content-reset", stats.Transition)
	}
	if len(pt.Realized(core.ItemContainer)) == 0 {
		t.Errorf("nothing realized after Refresh")
	}
}

func TestResetFollowsPinnedItem(t *testing.T) {
	src := paneltest.NewFlatSource(20)
	pt := paneltest.NewPanelTester(t, src, paneltest.Options{})
	pt.Pump()
	pinned := pt.VisualAt(core.ItemContainer, 3)
	if err := pt.Engine.Pin(core.ItemContainer, 3); err != nil {
		t.Fatalf("Pin() error = %v", err)
	}

	src.Reverse()
	pt.Engine.Reset()

	if got := pt.Engine.Registry().PinnedIndices(core.ItemContainer); !equalInts(got, []int{16}) {
		t.Errorf("PinnedIndices() = %v, want [16]", got)
	}
	if got := pt.VisualAt(core.ItemContainer, 16); got != pinned || got.Index != 16 {
		t.Errorf("VisualAt(16) = %v, want the pinned visual prepared for 16", got)
	}
	stats := pt.Pump()
	if stats.Transition.Category != transition.ContentReset {
		t.Errorf("Transition = %v, want content-reset", stats.Transition)
	}
}

func TestGroupedLayoutInterleavesHeaders(t *testing.T) {
	pt := paneltest.NewPanelTester(t, paneltest.NewGroupedSource(2, 0, 3, 4), paneltest.Options{
		Engine: generation.Options{HideEmptyGroups: true},
	})
	pt.Pump()

	// header 0 [0,20), items 0-1 [20,100), header 2 [100,120), items 2-3
	// [120,200): item 4 starts at the end of the viewport.
	if got := pt.Realized(core.Header); !equalInts(got, []int{0, 2}) {
		t.Errorf("realized headers %v, want [0 2]", got)
	}
	if got := pt.Realized(core.ItemContainer); !equalInts(got, span(0, 3)) {
		t.Errorf("realized items %v, want 0..3", got)
	}
	if got := pt.Bounds(core.Header, 2); got.Top != 100 {
		t.Errorf("Bounds(header 2).Top = %v, want 100", got.Top)
	}
	if got := pt.Bounds(core.ItemContainer, 2); got.Top != 120 {
		t.Errorf("Bounds(item 2).Top = %v, want 120", got.Top)
	}
	if reg := pt.Engine.Registry(); reg.IsConnected(core.Header, 1) {
		t.Errorf("hidden header 1 is realized")
	}
}

func TestScrollIntoViewCommand(t *testing.T) {
	pt := paneltest.NewPanelTester(t, paneltest.NewFlatSource(100), paneltest.Options{})
	pt.Pump()

	pt.Engine.ScrollIntoView(core.ItemContainer, 30, window.AlignStart)
	stats := pt.Pump()
	if got := pt.ScrollOffset(); got != 1200 {
		t.Errorf("ScrollOffset() = %v, want 1200", got)
	}
	if stats.Anchor.Index != 30 {
		t.Errorf("Anchor = %d, want 30", stats.Anchor.Index)
	}
	if got := pt.Realized(core.ItemContainer); !equalInts(got, span(30, 34)) {
		t.Errorf("realized %v, want 30..34", got)
	}
}

func TestHorizontalAxis(t *testing.T) {
	pt := paneltest.NewPanelTester(t, paneltest.NewFlatSource(50), paneltest.Options{Axis: graphics.AxisHorizontal})
	pt.Pump()
	if got := pt.Realized(core.ItemContainer); !equalInts(got, span(0, 4)) {
		t.Errorf("realized %v, want 0..4", got)
	}
	if got := pt.Bounds(core.ItemContainer, 4); got.Left != 160 || got.Right != 200 {
		t.Errorf("Bounds(4) = %v, want [160,200) horizontally", got)
	}
}

func TestEmptySourceRealizesNothing(t *testing.T) {
	src := paneltest.NewFlatSource(3)
	pt := paneltest.NewPanelTester(t, src, paneltest.Options{})
	pt.Pump()
	for i := 2; i >= 0; i-- {
		src.RemoveItem(i)
		pt.Engine.ItemRemoved(i)
	}
	stats := pt.Pump()
	if got := pt.Realized(core.ItemContainer); len(got) != 0 {
		t.Errorf("realized %v, want none", got)
	}
	if stats.Transition.Category != transition.MultipleDelete {
		t.Errorf("Transition = %v, want multiple-delete", stats.Transition)
	}
}
