package generation

import (
	"github.com/go-drift/virtualize/pkg/core"
	"github.com/go-drift/virtualize/pkg/graphics"
)

// EstimationRef is the realized element an estimate is made from.
type EstimationRef struct {
	Kind   core.Kind
	Index  int
	Bounds graphics.Rect
	// Distance is the number of layout elements from the reference to the
	// element being estimated: 1 for the next element, -1 for the previous
	// one, 0 for the reference itself at a possibly stale position.
	Distance int
	// Valid is false when no reference exists and the estimate must be made
	// from the start of the layout.
	Valid bool
}

// LayoutStrategy positions elements. The engine only invokes it.
type LayoutStrategy interface {
	// EstimateBounds estimates where an element sits, in panel
	// coordinates, using ref as the nearest known neighbor.
	EstimateBounds(kind core.Kind, index int, ref EstimationRef, window graphics.Rect) graphics.Rect
	// MeasureSize returns the desired size of a prepared element.
	MeasureSize(kind core.Kind, index int, window graphics.Rect) graphics.Size
	// Axis returns the virtualizing direction.
	Axis() graphics.Axis
	// PositionOfFirstElement returns where the first layout element starts.
	PositionOfFirstElement() graphics.Offset
	// EstimateExtent estimates the size of the whole panel.
	EstimateExtent(ref EstimationRef, itemCount, groupCount int) graphics.Size
	// IsWrapping reports whether elements wrap into rows or columns.
	IsWrapping() bool
}

// GeneratorHost creates and prepares visuals. Hosts may call back into the
// engine (IndexFromVisual, Arrange) from PrepareElement.
type GeneratorHost interface {
	// CreateOrRecycleElement returns a visual for an element. generated is
	// false for foreign visuals the panel must never reparent.
	CreateOrRecycleElement(kind core.Kind, index int) (visual any, generated bool, err error)
	// PrepareElement binds visual to the data at index.
	PrepareElement(kind core.Kind, index int, visual any) error
	// ReleaseElement is called when a visual is destroyed.
	ReleaseElement(kind core.Kind, visual any)
	// MatchesTemplate reports whether visual can be reused for index
	// without a template change.
	MatchesTemplate(kind core.Kind, index int, visual any) bool
}

func lengthOf(s graphics.Size, axis graphics.Axis) float64 {
	if axis == graphics.AxisHorizontal {
		return s.Width
	}
	return s.Height
}

// sized combines an estimated rectangle with a measured size. Elements
// generated backward from a neighbor keep the estimated trailing edge.
func sized(est graphics.Rect, size graphics.Size, ref EstimationRef, axis graphics.Axis) graphics.Rect {
	length := lengthOf(size, axis)
	start := est.Start(axis)
	if ref.Valid && ref.Distance < 0 {
		start = est.End(axis) - length
	}
	if axis == graphics.AxisHorizontal {
		return graphics.RectFromLTWH(start, est.Top, length, size.Height)
	}
	return graphics.RectFromLTWH(est.Left, start, size.Width, length)
}
