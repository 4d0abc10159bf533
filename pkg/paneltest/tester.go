package paneltest

import (
	"context"
	"errors"
	"testing"

	"github.com/go-drift/virtualize/pkg/core"
	"github.com/go-drift/virtualize/pkg/generation"
	"github.com/go-drift/virtualize/pkg/graphics"
	"github.com/go-drift/virtualize/pkg/window"
)

const (
	// DefaultViewportLength is the viewport length along the axis.
	DefaultViewportLength = 200
	// DefaultCrossLength is the viewport and element cross-axis length.
	DefaultCrossLength = 300
	// DefaultItemLength is the length of each item.
	DefaultItemLength = 40
	// DefaultHeaderLength is the length of each group header.
	DefaultHeaderLength = 20
	// settlePasses bounds PumpAndSettle.
	settlePasses = 64
)

// ErrSettleTimeout is returned when PumpAndSettle exceeds its pass budget.
var ErrSettleTimeout = errors.New("PumpAndSettle: cache buffers did not settle")

// Options configures a PanelTester. Zero lengths use the defaults.
type Options struct {
	Axis           graphics.Axis
	ViewportLength float64
	ItemLength     float64
	HeaderLength   float64
	Engine         generation.Options
}

// PanelTester drives an engine over a SliceSource with a StackLayout and a
// RecordingHost.
type PanelTester struct {
	t        testing.TB
	Source   *SliceSource
	Layout   *StackLayout
	Host     *RecordingHost
	Viewport *window.ScrollViewport
	Engine   *generation.Engine
	axis     graphics.Axis
}

// NewPanelTester creates a tester. The tracker is closed when the test
// ends.
func NewPanelTester(t testing.TB, source *SliceSource, opts Options) *PanelTester {
	if opts.ViewportLength == 0 {
		opts.ViewportLength = DefaultViewportLength
	}
	if opts.ItemLength == 0 {
		opts.ItemLength = DefaultItemLength
	}
	if opts.HeaderLength == 0 {
		opts.HeaderLength = DefaultHeaderLength
	}
	size := graphics.Size{Width: DefaultCrossLength, Height: opts.ViewportLength}
	if opts.Axis == graphics.AxisHorizontal {
		size = graphics.Size{Width: opts.ViewportLength, Height: DefaultCrossLength}
	}
	layout := &StackLayout{
		Direction:    opts.Axis,
		HeaderLength: opts.HeaderLength,
		ItemLength:   opts.ItemLength,
		CrossLength:  DefaultCrossLength,
	}
	host := &RecordingHost{}
	viewport := window.NewScrollViewport(size)
	engine := generation.New(source, layout, host, viewport, opts.Engine)
	layout.Bind(engine.Cache())

	pt := &PanelTester{
		t:        t,
		Source:   source,
		Layout:   layout,
		Host:     host,
		Viewport: viewport,
		Engine:   engine,
		axis:     opts.Axis,
	}
	t.Cleanup(engine.Tracker().Close)
	return pt
}

// Pump runs one layout pass and fails the test on error.
func (p *PanelTester) Pump() generation.PassStats {
	p.t.Helper()
	stats, err := p.Engine.Measure(context.Background())
	if err != nil {
		p.t.Fatalf("Measure() error = %v", err)
	}
	return stats
}

// PumpAndSettle runs passes until one runs with fully grown cache buffers.
func (p *PanelTester) PumpAndSettle() error {
	p.t.Helper()
	for i := 0; i < settlePasses; i++ {
		needs := p.Engine.NeedsAnotherPass()
		p.Pump()
		if !needs {
			return nil
		}
	}
	return ErrSettleTimeout
}

// ScrollTo jumps the viewport to offset along the axis.
func (p *PanelTester) ScrollTo(offset float64) {
	if p.axis == graphics.AxisHorizontal {
		p.Viewport.JumpTo(graphics.Offset{X: offset})
		return
	}
	p.Viewport.JumpTo(graphics.Offset{Y: offset})
}

// ScrollOffset returns the viewport offset along the axis.
func (p *PanelTester) ScrollOffset() float64 {
	if p.axis == graphics.AxisHorizontal {
		return p.Viewport.Offset().X
	}
	return p.Viewport.Offset().Y
}

// Realized returns the data indexes of the realized elements of kind in
// order.
func (p *PanelTester) Realized(kind core.Kind) []int {
	reg := p.Engine.Registry()
	var out []int
	for vi := 0; vi < reg.ValidCount(kind); vi++ {
		if !reg.GetAtValidIndex(kind, vi).IsZero() {
			out = append(out, reg.DataIndexFromValidIndex(kind, vi))
		}
	}
	return out
}

// Bounds returns the bounds of the element at index, which must be
// realized or pinned.
func (p *PanelTester) Bounds(kind core.Kind, index int) graphics.Rect {
	p.t.Helper()
	for _, a := range p.Engine.Arrange() {
		if a.Kind == kind && a.Index == index {
			return a.Bounds
		}
	}
	p.t.Fatalf("%s %d is not arranged", kind, index)
	return graphics.Rect{}
}

// VisualAt returns the visual of the element at index, or nil.
func (p *PanelTester) VisualAt(kind core.Kind, index int) *Visual {
	for _, a := range p.Engine.Arrange() {
		if a.Kind == kind && a.Index == index {
			v, _ := a.Visual.(*Visual)
			return v
		}
	}
	return nil
}
