package paneltest

import (
	"github.com/go-drift/virtualize/pkg/core"
	"github.com/go-drift/virtualize/pkg/datacache"
	"github.com/go-drift/virtualize/pkg/generation"
	"github.com/go-drift/virtualize/pkg/graphics"
)

// StackLayout stacks headers and items along Direction with fixed lengths.
// Positions are computed exactly from the bound cache, so estimates and
// final bounds agree.
type StackLayout struct {
	Direction    graphics.Axis
	HeaderLength float64
	ItemLength   float64
	CrossLength  float64
	Origin       graphics.Offset
	Wrapping     bool
	// ItemLengths overrides ItemLength for individual item indexes.
	ItemLengths map[int]float64

	cache    *datacache.Cache
	measured int
}

// Bind attaches the cache positions are computed from.
func (l *StackLayout) Bind(cache *datacache.Cache) { l.cache = cache }

// MeasureCount returns the number of MeasureSize calls.
func (l *StackLayout) MeasureCount() int { return l.measured }

// Axis implements generation.LayoutStrategy.
func (l *StackLayout) Axis() graphics.Axis { return l.Direction }

// IsWrapping implements generation.LayoutStrategy.
func (l *StackLayout) IsWrapping() bool { return l.Wrapping }

// PositionOfFirstElement implements generation.LayoutStrategy.
func (l *StackLayout) PositionOfFirstElement() graphics.Offset { return l.Origin }

// EstimateBounds implements generation.LayoutStrategy. Adjacent
// references are extended; anything else is positioned from the start.
func (l *StackLayout) EstimateBounds(kind core.Kind, index int, ref generation.EstimationRef, _ graphics.Rect) graphics.Rect {
	length := l.lengthOf(kind, index)
	var start float64
	switch {
	case ref.Valid && ref.Distance == 1:
		start = ref.Bounds.End(l.Direction)
	case ref.Valid && ref.Distance == -1:
		start = ref.Bounds.Start(l.Direction) - length
	default:
		start = l.offsetOf(kind, index)
	}
	return l.rect(start, length)
}

// MeasureSize implements generation.LayoutStrategy.
func (l *StackLayout) MeasureSize(kind core.Kind, index int, _ graphics.Rect) graphics.Size {
	l.measured++
	return l.size(l.lengthOf(kind, index))
}

// EstimateExtent implements generation.LayoutStrategy.
func (l *StackLayout) EstimateExtent(_ generation.EstimationRef, itemCount, groupCount int) graphics.Size {
	length := float64(groupCount)*l.HeaderLength + l.itemsLength(itemCount)
	return l.size(length)
}

func (l *StackLayout) lengthOf(kind core.Kind, index int) float64 {
	if kind == core.Header {
		return l.HeaderLength
	}
	if v, ok := l.ItemLengths[index]; ok {
		return v
	}
	return l.ItemLength
}

// itemsLength is the total length of items [0, n).
func (l *StackLayout) itemsLength(n int) float64 {
	total := float64(n) * l.ItemLength
	for i, v := range l.ItemLengths {
		if i < n {
			total += v - l.ItemLength
		}
	}
	return total
}

func (l *StackLayout) offsetOf(kind core.Kind, index int) float64 {
	origin := l.Origin.Y
	if l.Direction == graphics.AxisHorizontal {
		origin = l.Origin.X
	}
	if l.cache == nil {
		if kind == core.Header {
			return origin
		}
		return origin + l.itemsLength(index)
	}
	if !l.cache.IsGrouping() {
		return origin + l.itemsLength(index)
	}
	if kind == core.Header {
		headers := max(0, l.cache.DataIndexToLayoutIndex(core.Header, index))
		info, _ := l.cache.GroupInfo(index)
		return origin + float64(headers)*l.HeaderLength + l.itemsLength(info.Start)
	}
	ig, ok := l.cache.GroupOfItem(index)
	if !ok {
		return origin + l.itemsLength(index)
	}
	headers := l.cache.DataIndexToLayoutIndex(core.Header, ig.Group) + 1
	return origin + float64(headers)*l.HeaderLength + l.itemsLength(index)
}

func (l *StackLayout) size(length float64) graphics.Size {
	if l.Direction == graphics.AxisHorizontal {
		return graphics.Size{Width: length, Height: l.CrossLength}
	}
	return graphics.Size{Width: l.CrossLength, Height: length}
}

func (l *StackLayout) rect(start, length float64) graphics.Rect {
	if l.Direction == graphics.AxisHorizontal {
		return graphics.RectFromLTWH(start, l.Origin.Y, length, l.CrossLength)
	}
	return graphics.RectFromLTWH(l.Origin.X, start, l.CrossLength, length)
}
