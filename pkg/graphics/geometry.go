// Package graphics provides the geometry value types shared by the
// virtualization packages.
package graphics

import "math"

// epsilon is the tolerance for floating-point comparisons.
const epsilon = 0.0001

// Offset represents a 2D point or vector in panel coordinates.
type Offset struct {
	X float64
	Y float64
}

// Size represents width and height dimensions in pixels.
type Size struct {
	Width  float64
	Height float64
}

// Rect represents a rectangle using left, top, right, bottom coordinates.
type Rect struct {
	Left   float64
	Top    float64
	Right  float64
	Bottom float64
}

// Axis is the direction along which a panel virtualizes.
type Axis int

const (
	// AxisVertical virtualizes top to bottom. It is the zero value.
	AxisVertical Axis = iota
	// AxisHorizontal virtualizes left to right.
	AxisHorizontal
)

func (a Axis) String() string {
	if a == AxisHorizontal {
		return "horizontal"
	}
	return "vertical"
}

// Flip returns the other axis.
func (a Axis) Flip() Axis {
	if a == AxisHorizontal {
		return AxisVertical
	}
	return AxisHorizontal
}

// RectFromLTWH constructs a Rect from left, top, width, height values.
func RectFromLTWH(left, top, width, height float64) Rect {
	return Rect{
		Left:   left,
		Top:    top,
		Right:  left + width,
		Bottom: top + height,
	}
}

// Width returns the width of the rectangle.
func (r Rect) Width() float64 {
	return r.Right - r.Left
}

// Height returns the height of the rectangle.
func (r Rect) Height() float64 {
	return r.Bottom - r.Top
}

// Size returns the size of the rectangle.
func (r Rect) Size() Size {
	return Size{Width: r.Width(), Height: r.Height()}
}

// Center returns the center point of the rectangle.
func (r Rect) Center() Offset {
	return Offset{
		X: (r.Left + r.Right) * 0.5,
		Y: (r.Top + r.Bottom) * 0.5,
	}
}

// Start returns the leading edge of the rectangle along axis.
func (r Rect) Start(axis Axis) float64 {
	if axis == AxisHorizontal {
		return r.Left
	}
	return r.Top
}

// End returns the trailing edge of the rectangle along axis.
func (r Rect) End(axis Axis) float64 {
	if axis == AxisHorizontal {
		return r.Right
	}
	return r.Bottom
}

// Length returns the extent of the rectangle along axis.
func (r Rect) Length(axis Axis) float64 {
	return r.End(axis) - r.Start(axis)
}

// WithStart moves the rectangle along axis so its leading edge is at start.
// The length is preserved.
func (r Rect) WithStart(axis Axis, start float64) Rect {
	return r.Shift(axis, start-r.Start(axis))
}

// WithLength resizes the rectangle along axis, keeping its leading edge.
func (r Rect) WithLength(axis Axis, length float64) Rect {
	if axis == AxisHorizontal {
		r.Right = r.Left + length
		return r
	}
	r.Bottom = r.Top + length
	return r
}

// Shift returns the rectangle translated by delta along axis.
func (r Rect) Shift(axis Axis, delta float64) Rect {
	if axis == AxisHorizontal {
		return r.Translate(delta, 0)
	}
	return r.Translate(0, delta)
}

// Inflate grows the rectangle by amount on both sides along axis.
func (r Rect) Inflate(axis Axis, amount float64) Rect {
	if axis == AxisHorizontal {
		r.Left -= amount
		r.Right += amount
		return r
	}
	r.Top -= amount
	r.Bottom += amount
	return r
}

// Intersect returns the intersection of two rectangles.
// Returns empty rect if they don't overlap.
func (r Rect) Intersect(other Rect) Rect {
	left := math.Max(r.Left, other.Left)
	top := math.Max(r.Top, other.Top)
	right := math.Min(r.Right, other.Right)
	bottom := math.Min(r.Bottom, other.Bottom)
	if left >= right || top >= bottom {
		return Rect{} // Empty
	}
	return Rect{Left: left, Top: top, Right: right, Bottom: bottom}
}

// IsEmpty returns true if the rectangle has zero or negative area.
func (r Rect) IsEmpty() bool {
	return r.Right <= r.Left || r.Bottom <= r.Top
}

// Translate returns a new rect offset by (dx, dy).
func (r Rect) Translate(dx, dy float64) Rect {
	return Rect{
		Left:   r.Left + dx,
		Top:    r.Top + dy,
		Right:  r.Right + dx,
		Bottom: r.Bottom + dy,
	}
}

// Union returns the smallest rect containing both r and other.
func (r Rect) Union(other Rect) Rect {
	return Rect{
		Left:   math.Min(r.Left, other.Left),
		Top:    math.Min(r.Top, other.Top),
		Right:  math.Max(r.Right, other.Right),
		Bottom: math.Max(r.Bottom, other.Bottom),
	}
}

// RelativePosition locates an element relative to a window along the
// virtualizing axis.
type RelativePosition int

const (
	// Inside means the element overlaps the window.
	Inside RelativePosition = iota
	// Before means the element ends before the window starts.
	Before
	// After means the element starts after the window ends.
	After
)

func (p RelativePosition) String() string {
	switch p {
	case Before:
		return "before"
	case After:
		return "after"
	default:
		return "inside"
	}
}

// PositionRelativeTo reports where r lies relative to window along axis.
// An element that only touches the window edge from outside is outside;
// a zero-length element sitting on an edge is Inside.
func (r Rect) PositionRelativeTo(window Rect, axis Axis) RelativePosition {
	start, end := r.Start(axis), r.End(axis)
	wStart, wEnd := window.Start(axis), window.End(axis)
	if end < wStart || (end == wStart && start < wStart) {
		return Before
	}
	if start > wEnd || (start == wEnd && end > wEnd) {
		return After
	}
	return Inside
}

// FloatEqual returns true if two float64 values are approximately equal.
func FloatEqual(a, b float64) bool {
	return math.Abs(a-b) <= epsilon
}

// Clamp restricts value to [min, max].
func Clamp(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
