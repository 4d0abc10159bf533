// Package window derives the visible and realization windows of a panel
// from its scroll viewport and keeps one element visually fixed across
// mutations, resizes and orientation flips.
package window

import (
	"github.com/go-drift/virtualize/pkg/core"
	"github.com/go-drift/virtualize/pkg/graphics"
)

const (
	// DefaultCacheLength is the realization cache length in viewports.
	DefaultCacheLength = 4.0
	// DefaultInflationDelta is the cache buffer growth per pass, in pixels.
	DefaultInflationDelta = 40.0
)

// Options configures a Tracker.
type Options struct {
	// CacheLength is the total realization cache, in viewport lengths,
	// split evenly before and after the visible window.
	CacheLength float64
	// InflationDelta is how much each side's cache buffer grows per pass.
	InflationDelta float64
}

func (o Options) withDefaults() Options {
	if o.CacheLength <= 0 {
		o.CacheLength = DefaultCacheLength
	}
	if o.InflationDelta <= 0 {
		o.InflationDelta = DefaultInflationDelta
	}
	return o
}

// Alignment places an element inside the viewport for ScrollIntoView.
type Alignment int

const (
	// AlignStart puts the element at the viewport's leading edge.
	AlignStart Alignment = iota
	// AlignCenter centers the element.
	AlignCenter
	// AlignEnd puts the element at the viewport's trailing edge.
	AlignEnd
)

// Command is a one-shot request that coerces the visible window on the
// next pass.
type Command interface {
	command()
}

// ScrollIntoView brings an element into view.
type ScrollIntoView struct {
	Kind      core.Kind
	Index     int
	Alignment Alignment
}

// ScrollToEnd moves to the end of the content, as used for an initial
// scroll to the last item.
type ScrollToEnd struct{}

func (ScrollIntoView) command() {}
func (ScrollToEnd) command()    {}

// Locator answers the estimates a Tracker needs to resolve commands.
type Locator interface {
	// Locate returns the estimated bounds of an element in panel pixels.
	Locate(kind core.Kind, index int) (graphics.Rect, bool)
	// ExtentLength returns the estimated panel length along the axis.
	ExtentLength() float64
}

// Tracker computes windows for one panel.
type Tracker struct {
	viewport    *ScrollViewport
	axis        graphics.Axis
	panelOffset graphics.Offset
	opts        Options

	cacheBuffer float64
	pending     Command

	extentLength   float64
	lastRealized   bool
	tracked        TrackedElement
	trackingActive bool
	keepLast       bool
	keepLastExtent float64
	trackRequested bool
	lastSize       graphics.Size
	scrolled       bool
	removeListener func()
}

// NewTracker creates a tracker listening to viewport.
func NewTracker(viewport *ScrollViewport, axis graphics.Axis, opts Options) *Tracker {
	t := &Tracker{
		viewport: viewport,
		axis:     axis,
		opts:     opts.withDefaults(),
		lastSize: viewport.Size(),
	}
	t.removeListener = viewport.AddListener(t.onViewportChanged)
	return t
}

func (t *Tracker) onViewportChanged() {
	t.scrolled = true
	if size := t.viewport.Size(); size != t.lastSize {
		t.lastSize = size
		t.RequestTracking()
	}
}

// Close stops listening to the viewport.
func (t *Tracker) Close() {
	if t.removeListener != nil {
		t.removeListener()
		t.removeListener = nil
	}
}

// Viewport returns the scroll viewport.
func (t *Tracker) Viewport() *ScrollViewport { return t.viewport }

// Axis returns the virtualizing direction.
func (t *Tracker) Axis() graphics.Axis { return t.axis }

// SetAxis changes the virtualizing direction. A flip requests tracking and
// resets the cache buffers.
func (t *Tracker) SetAxis(axis graphics.Axis) {
	if axis == t.axis {
		return
	}
	t.axis = axis
	t.RequestTracking()
	t.ResetCacheBuffers()
}

// Options returns the effective options.
func (t *Tracker) Options() Options { return t.opts }

// SetOptions replaces the options. The current buffer is clamped to the new
// cap.
func (t *Tracker) SetOptions(opts Options) {
	t.opts = opts.withDefaults()
	t.cacheBuffer = min(t.cacheBuffer, t.MaxCacheBuffer())
}

// SetPanelOffset records where the panel sits inside the scrollable
// content.
func (t *Tracker) SetPanelOffset(offset graphics.Offset) { t.panelOffset = offset }

// RequestTracking asks the next pass to record a tracked element.
func (t *Tracker) RequestTracking() { t.trackRequested = true }

// TakeTrackingRequest reports and clears a pending tracking request.
func (t *Tracker) TakeTrackingRequest() bool {
	r := t.trackRequested
	t.trackRequested = false
	return r
}

// TakeScrolled reports and clears whether the viewport changed since the
// last call.
func (t *Tracker) TakeScrolled() bool {
	s := t.scrolled
	t.scrolled = false
	return s
}

// SetCommand queues a one-shot command, replacing any pending one.
func (t *Tracker) SetCommand(cmd Command) { t.pending = cmd }

// PendingCommand returns the queued command, if any.
func (t *Tracker) PendingCommand() Command { return t.pending }

// ViewportLength returns the viewport length along the axis in panel
// pixels.
func (t *Tracker) ViewportLength() float64 {
	return t.viewport.Rect().Length(t.axis)
}

// VisibleWindow returns the visible window in panel coordinates. A pending
// command is resolved to a concrete offset through loc and then cleared.
func (t *Tracker) VisibleWindow(loc Locator) graphics.Rect {
	if t.pending != nil && loc != nil {
		t.resolveCommand(loc)
	}
	return t.viewport.Rect().Translate(-t.panelOffset.X, -t.panelOffset.Y)
}

func (t *Tracker) resolveCommand(loc Locator) {
	cmd := t.pending
	t.pending = nil
	length := t.ViewportLength()
	var start float64
	switch c := cmd.(type) {
	case ScrollIntoView:
		bounds, ok := loc.Locate(c.Kind, c.Index)
		if !ok {
			core.Logger().Warn("window: scroll target does not resolve",
				"kind", c.Kind.String(), "index", c.Index)
			return
		}
		switch c.Alignment {
		case AlignCenter:
			start = bounds.Start(t.axis) + bounds.Length(t.axis)/2 - length/2
		case AlignEnd:
			start = bounds.End(t.axis) - length
		default:
			start = bounds.Start(t.axis)
		}
	case ScrollToEnd:
		start = loc.ExtentLength() - length
	default:
		return
	}
	t.ResetCacheBuffers()
	t.jumpToPanelStart(max(0, start))
}

// jumpToPanelStart scrolls so the visible window starts at start along
// the axis, in panel coordinates.
func (t *Tracker) jumpToPanelStart(start float64) {
	z := t.viewport.Zoom()
	off := t.viewport.Offset()
	if t.axis == graphics.AxisHorizontal {
		off.X = (start + t.panelOffset.X) * z
	} else {
		off.Y = (start + t.panelOffset.Y) * z
	}
	t.viewport.JumpTo(off)
}

// ApplyShift moves the viewport by delta panel pixels along the axis.
func (t *Tracker) ApplyShift(delta float64) {
	if delta == 0 {
		return
	}
	z := t.viewport.Zoom()
	if t.axis == graphics.AxisHorizontal {
		t.viewport.ScrollBy(delta*z, 0)
	} else {
		t.viewport.ScrollBy(0, delta*z)
	}
}

// CurrentCacheBuffer returns the cache buffer applied on each side of the
// visible window.
func (t *Tracker) CurrentCacheBuffer() float64 { return t.cacheBuffer }

// MaxCacheBuffer returns CacheLength/2 viewport lengths.
func (t *Tracker) MaxCacheBuffer() float64 {
	return t.opts.CacheLength / 2 * t.ViewportLength()
}

// GrowCacheBuffer grows each side's buffer by at most one inflation delta,
// up to the cap. It reports whether the buffer changed.
func (t *Tracker) GrowCacheBuffer() bool {
	limit := t.MaxCacheBuffer()
	if t.cacheBuffer >= limit {
		t.cacheBuffer = limit
		return false
	}
	t.cacheBuffer = min(t.cacheBuffer+t.opts.InflationDelta, limit)
	return true
}

// ResetCacheBuffers shrinks the buffers back to zero, as after a thumb
// drag or a disconnected jump.
func (t *Tracker) ResetCacheBuffers() { t.cacheBuffer = 0 }

// CachePotentialReached reports whether the buffers are at their cap.
func (t *Tracker) CachePotentialReached() bool {
	return t.cacheBuffer >= t.MaxCacheBuffer()
}

// SetExtent records the estimated panel length along the axis and whether
// the last element of the layout is realized. Both bound the realization
// window.
func (t *Tracker) SetExtent(length float64, lastRealized bool) {
	t.extentLength = length
	t.lastRealized = lastRealized
}

// ExtentLength returns the last recorded extent length.
func (t *Tracker) ExtentLength() float64 { return t.extentLength }

// RealizationWindow expands visible by the cache buffer on both sides. The
// window keeps its length and is moved, not clipped, so it never starts
// before zero. Once the last element is realized the length is capped at
// the extent (or the visible length, if larger) and the window is moved
// back so it ends there.
func (t *Tracker) RealizationWindow(visible graphics.Rect) graphics.Rect {
	visibleLength := visible.Length(t.axis)
	length := visibleLength + 2*t.cacheBuffer
	start := max(visible.Start(t.axis)-t.cacheBuffer, 0)
	if t.lastRealized {
		extent := max(t.extentLength, visibleLength)
		length = min(length, extent)
		start = min(start, extent-length)
	}
	return visible.WithStart(t.axis, start).WithLength(t.axis, length)
}
