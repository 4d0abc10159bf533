package window

import (
	"github.com/go-drift/virtualize/pkg/graphics"
)

// ScrollViewport is the scroll state of the scrollable that hosts the
// panel: offset and size in viewport pixels, zoom, and the content extent
// in panel pixels.
type ScrollViewport struct {
	InitialOffset graphics.Offset

	offset         graphics.Offset
	size           graphics.Size
	zoom           float64
	extent         graphics.Size
	hasExtent      bool
	listeners      map[int]func()
	nextListenerID int
}

// NewScrollViewport creates a viewport of the given size at zero offset.
func NewScrollViewport(size graphics.Size) *ScrollViewport {
	return &ScrollViewport{size: size, zoom: 1}
}

// Offset returns the current scroll offset.
func (v *ScrollViewport) Offset() graphics.Offset {
	return v.offset
}

// Size returns the viewport size.
func (v *ScrollViewport) Size() graphics.Size {
	return v.size
}

// Zoom returns the zoom factor.
func (v *ScrollViewport) Zoom() float64 {
	if v.zoom <= 0 {
		return 1
	}
	return v.zoom
}

// Extent returns the content extent.
func (v *ScrollViewport) Extent() graphics.Size {
	return v.extent
}

// Rect returns the viewport in panel pixels: offset and size divided by
// zoom.
func (v *ScrollViewport) Rect() graphics.Rect {
	z := v.Zoom()
	return graphics.RectFromLTWH(v.offset.X/z, v.offset.Y/z, v.size.Width/z, v.size.Height/z)
}

// AddListener registers a callback for scroll, size and zoom changes. The
// returned function removes it.
func (v *ScrollViewport) AddListener(listener func()) func() {
	if listener == nil {
		return func() {}
	}
	if v.listeners == nil {
		v.listeners = make(map[int]func())
	}
	id := v.nextListenerID
	v.nextListenerID++
	v.listeners[id] = listener
	return func() {
		delete(v.listeners, id)
	}
}

// JumpTo moves to offset, clamped to the scrollable range once an extent
// is known.
func (v *ScrollViewport) JumpTo(offset graphics.Offset) {
	offset = v.clamp(offset)
	if offset == v.offset {
		return
	}
	v.offset = offset
	v.notifyListeners()
}

// ScrollBy moves the offset by (dx, dy).
func (v *ScrollViewport) ScrollBy(dx, dy float64) {
	v.JumpTo(graphics.Offset{X: v.offset.X + dx, Y: v.offset.Y + dy})
}

// SetViewportSize resizes the viewport.
func (v *ScrollViewport) SetViewportSize(size graphics.Size) {
	if size == v.size {
		return
	}
	v.size = size
	v.offset = v.clamp(v.offset)
	v.notifyListeners()
}

// SetZoom changes the zoom factor.
func (v *ScrollViewport) SetZoom(zoom float64) {
	if zoom <= 0 || zoom == v.zoom {
		return
	}
	v.zoom = zoom
	v.offset = v.clamp(v.offset)
	v.notifyListeners()
}

// SetExtent records the content extent in panel pixels and re-clamps the
// offset. Extent changes do not notify listeners.
func (v *ScrollViewport) SetExtent(extent graphics.Size) {
	v.extent = extent
	v.hasExtent = true
	v.offset = v.clamp(v.offset)
}

// MaxOffset returns the largest reachable offset.
func (v *ScrollViewport) MaxOffset() graphics.Offset {
	z := v.Zoom()
	return graphics.Offset{
		X: max(0, v.extent.Width*z-v.size.Width),
		Y: max(0, v.extent.Height*z-v.size.Height),
	}
}

func (v *ScrollViewport) clamp(offset graphics.Offset) graphics.Offset {
	offset.X = max(0, offset.X)
	offset.Y = max(0, offset.Y)
	if !v.hasExtent {
		return offset
	}
	limit := v.MaxOffset()
	offset.X = min(offset.X, limit.X)
	offset.Y = min(offset.Y, limit.Y)
	return offset
}

func (v *ScrollViewport) notifyListeners() {
	for _, listener := range v.listeners {
		listener()
	}
}
