// Package generation drives virtualization for one panel. Each layout pass
// resolves the visible and realization windows, generates elements forward
// and backward from an anchor until the realization window is covered, and
// then trims the leftovers of the previous pass.
//
// The engine is single-threaded: every method must be called from the
// layout goroutine. Host callbacks made during a pass may query the engine;
// a nested Measure returns ErrReentrantMeasure.
package generation

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-drift/virtualize/pkg/core"
	"github.com/go-drift/virtualize/pkg/datacache"
	"github.com/go-drift/virtualize/pkg/graphics"
	"github.com/go-drift/virtualize/pkg/recycle"
	"github.com/go-drift/virtualize/pkg/registry"
	"github.com/go-drift/virtualize/pkg/transition"
	"github.com/go-drift/virtualize/pkg/window"
)

var (
	// ErrReentrantMeasure is returned by Measure while a pass is running.
	ErrReentrantMeasure = errors.New("generation: measure called during a pass")
	// ErrPassInterrupted is returned when Refresh ran during a pass.
	ErrPassInterrupted = errors.New("generation: pass interrupted by refresh")
	// ErrNotRealized is returned when pinning or focusing an element that
	// has no realized container.
	ErrNotRealized = errors.New("generation: element not realized")
)

// State is the engine's position in a layout pass.
type State int

const (
	Idle State = iota
	DetermineWindow
	GenerateForward
	GenerateBackward
	TrimLeftovers
)

func (s State) String() string {
	switch s {
	case DetermineWindow:
		return "determine-window"
	case GenerateForward:
		return "generate-forward"
	case GenerateBackward:
		return "generate-backward"
	case TrimLeftovers:
		return "trim-leftovers"
	default:
		return "idle"
	}
}

// Options configures an Engine.
type Options struct {
	Window          window.Options
	HideEmptyGroups bool
}

// PassStats summarizes one layout pass.
type PassStats struct {
	Tick         uint64
	Visible      graphics.Rect
	Realization  graphics.Rect
	Anchor       datacache.Position
	Disconnected bool
	Shift        float64
	Created      int
	Reused       int
	Recycled     int
	Transition   transition.Context
}

// Arranged is the final placement of one element.
type Arranged struct {
	Kind     core.Kind
	Index    int
	Bounds   graphics.Rect
	Visual   any
	Realized bool
}

// Engine virtualizes one panel.
type Engine struct {
	arena       *core.Arena
	cache       *datacache.Cache
	reg         *registry.Registry
	pool        *recycle.Pool
	tracker     *window.Tracker
	layout      LayoutStrategy
	host        GeneratorHost
	transitions transition.Tracker

	state          State
	running        bool
	tick           uint64
	epoch          uint64
	lastVisible    graphics.Rect
	lastExtent     float64
	trackedRemoved bool
	stats          PassStats
}

// New creates an engine for a panel showing source inside viewport.
func New(source datacache.DataSource, layout LayoutStrategy, host GeneratorHost, viewport *window.ScrollViewport, opts Options) *Engine {
	arena := core.NewArena()
	reg := registry.New(arena)
	tracker := window.NewTracker(viewport, layout.Axis(), opts.Window)
	return &Engine{
		arena:   arena,
		cache:   datacache.New(source, opts.HideEmptyGroups),
		reg:     reg,
		pool:    recycle.New(reg, tracker.Options().CacheLength),
		tracker: tracker,
		layout:  layout,
		host:    host,
	}
}

// Registry returns the element registry.
func (e *Engine) Registry() *registry.Registry { return e.reg }

// Pool returns the recycle pool.
func (e *Engine) Pool() *recycle.Pool { return e.pool }

// Tracker returns the window tracker.
func (e *Engine) Tracker() *window.Tracker { return e.tracker }

// Cache returns the data index cache.
func (e *Engine) Cache() *datacache.Cache { return e.cache }

// Arena returns the element arena.
func (e *Engine) Arena() *core.Arena { return e.arena }

// State returns the current pass state.
func (e *Engine) State() State { return e.state }

// Tick returns the id of the last pass.
func (e *Engine) Tick() uint64 { return e.tick }

// LastStats returns the statistics of the last pass.
func (e *Engine) LastStats() PassStats { return e.stats }

// SetOptions applies new window options and empty group policy.
func (e *Engine) SetOptions(opts Options) {
	e.tracker.SetOptions(opts.Window)
	e.pool.SetCacheLength(e.tracker.Options().CacheLength)
	if e.cache.HidesEmptyGroups() != opts.HideEmptyGroups {
		e.cache.SetHideEmptyGroups(opts.HideEmptyGroups)
		e.Reset()
	}
}

// NeedsAnotherPass reports whether the cache buffers are still growing.
// Buffers only grow on passes that follow no viewport change.
func (e *Engine) NeedsAnotherPass() bool { return !e.tracker.CachePotentialReached() }

// Measure runs one layout pass.
func (e *Engine) Measure(ctx context.Context) (PassStats, error) {
	if e.running {
		return e.stats, ErrReentrantMeasure
	}
	e.running = true
	defer func() {
		e.running = false
		e.state = Idle
	}()

	e.tick++
	e.stats = PassStats{Tick: e.tick}
	scrolled := e.tracker.TakeScrolled()
	epoch := e.epoch
	wrapping := e.layout.IsWrapping()

	if e.cache.Source() == nil {
		e.clearRealized()
		return e.stats, nil
	}
	session, err := e.cache.Guarantee()
	if err != nil {
		return e.stats, fmt.Errorf("generation: guarantee data: %w", err)
	}
	defer session.Release()

	e.tracker.SetAxis(e.layout.Axis())
	e.state = DetermineWindow
	if e.cache.LayoutLength() == 0 {
		e.clearRealized()
		e.tracker.EndTracking()
		e.trackedRemoved = false
		e.updateExtent()
		e.lastVisible = e.tracker.VisibleWindow(e)
		e.growCacheBuffer(scrolled)
		e.stats.Visible = e.lastVisible
		e.stats.Transition = e.transitions.Context(e.tick, wrapping)
		return e.stats, nil
	}
	e.transitions.MarkLoaded(e.tick)

	plan := e.determineWindow()
	e.stats.Visible = plan.visible
	e.stats.Realization = plan.realization
	e.stats.Anchor = plan.anchor

	span, err := e.generate(ctx, epoch, plan)
	if err != nil {
		if !errors.Is(err, ErrPassInterrupted) {
			e.updateExtent()
		}
		return e.stats, err
	}

	e.state = TrimLeftovers
	e.trimLeftovers(span)
	e.updateExtent()
	e.growCacheBuffer(scrolled)
	e.lastVisible = plan.visible
	e.stats.Transition = e.transitions.Context(e.tick, wrapping)

	core.Logger().Debug("generation: pass",
		"tick", e.tick,
		"visibleStart", plan.visible.Start(e.layout.Axis()),
		"realizationEnd", plan.realization.End(e.layout.Axis()),
		"anchor", plan.anchor.Index,
		"created", e.stats.Created,
		"reused", e.stats.Reused,
		"recycled", e.stats.Recycled,
		"disconnected", e.stats.Disconnected)
	return e.stats, nil
}

// growCacheBuffer grows the cache buffers unless the viewport changed
// before the pass. Shifts the pass applied itself are dropped.
func (e *Engine) growCacheBuffer(scrolled bool) {
	e.tracker.TakeScrolled()
	if !scrolled {
		e.tracker.GrowCacheBuffer()
	}
}

func (e *Engine) checkpoint(ctx context.Context, epoch uint64) error {
	if e.epoch != epoch {
		return ErrPassInterrupted
	}
	return ctx.Err()
}

// clearRealized recycles every realized element.
func (e *Engine) clearRealized() {
	for _, k := range core.Kinds {
		for _, h := range e.reg.RemoveAllValidElements(k) {
			e.recycle(k, h)
		}
	}
}

// recycle hands an evicted element to the pool. Elements the pool takes
// out of the tree are released.
func (e *Engine) recycle(kind core.Kind, h core.Handle) {
	switch e.pool.TryRecycle(kind, h) {
	case recycle.Queued:
		e.stats.Recycled++
	case recycle.RemovedFromTree:
		e.stats.Recycled++
		e.release(h)
	}
}

// updateExtent re-estimates the panel extent and publishes it to the
// viewport and tracker.
func (e *Engine) updateExtent() {
	axis := e.layout.Axis()
	ref := EstimationRef{}
	lastRealized := false
	if kind, index, ok := e.cache.LastElementInLayout(); ok {
		lastRealized = e.reg.IsConnected(kind, index)
	}
	if r := e.realizedInOrder(); len(r) > 0 {
		last := r[len(r)-1]
		ref = EstimationRef{Kind: last.pos.Kind, Index: last.pos.Index, Bounds: last.bounds, Valid: true}
	}
	extent := e.layout.EstimateExtent(ref, e.cache.TotalItemCount(), e.cache.TotalLayoutGroupCount())
	e.tracker.Viewport().SetExtent(extent)
	e.tracker.SetExtent(lengthOf(extent, axis), lastRealized)
	e.lastExtent = lengthOf(extent, axis)
}

// Arrange returns the bounds of every element in the panel's sections,
// headers first.
func (e *Engine) Arrange() []Arranged {
	var out []Arranged
	for _, k := range core.Kinds {
		for _, h := range e.reg.SectionHandles(k) {
			el, ok := e.arena.Get(h)
			if !ok {
				continue
			}
			out = append(out, Arranged{
				Kind:     k,
				Index:    el.Index,
				Bounds:   el.Bounds,
				Visual:   el.Visual,
				Realized: e.reg.IsRealized(h),
			})
		}
	}
	return out
}

// IndexFromVisual resolves a visual to its kind and data index. It is safe
// to call from host callbacks during a pass.
func (e *Engine) IndexFromVisual(visual any) (core.Kind, int, bool) {
	if _, _, h, ok := e.reg.Staged(); ok {
		if el, live := e.arena.Get(h); live && el.Visual == visual {
			return e.reg.IndexFromElement(h)
		}
	}
	h, ok := e.arena.Find(visual)
	if !ok {
		return 0, -1, false
	}
	return e.reg.IndexFromElement(h)
}

// Locate implements window.Locator.
func (e *Engine) Locate(kind core.Kind, index int) (graphics.Rect, bool) {
	if !e.cache.Contains(datacache.Position{Kind: kind, Index: index}) {
		return graphics.Rect{}, false
	}
	if h := e.reg.GetAtDataIndex(kind, index); !h.IsZero() {
		if el, ok := e.arena.Get(h); ok {
			return el.Bounds, true
		}
	}
	visible := e.lastVisible
	est := e.layout.EstimateBounds(kind, index, EstimationRef{}, visible)
	return sized(est, e.layout.MeasureSize(kind, index, visible), EstimationRef{}, e.layout.Axis()), true
}

// ExtentLength implements window.Locator.
func (e *Engine) ExtentLength() float64 {
	e.updateExtent()
	return e.lastExtent
}
