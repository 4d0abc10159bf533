package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/go-drift/virtualize/pkg/config"
	"github.com/go-drift/virtualize/pkg/core"
	"github.com/go-drift/virtualize/pkg/generation"
	"github.com/go-drift/virtualize/pkg/graphics"
	"github.com/go-drift/virtualize/pkg/paneltest"
	"github.com/go-drift/virtualize/pkg/window"
)

// settleLimit bounds the passes of a settle step.
const settleLimit = 64

// simulator plays a scenario against an engine wired to the paneltest
// doubles.
type simulator struct {
	cfg      *config.Config
	axis     graphics.Axis
	source   *paneltest.SliceSource
	viewport *window.ScrollViewport
	engine   *generation.Engine
	out      io.Writer
}

func newSimulator(cfg *config.Config, out io.Writer) *simulator {
	p := cfg.Panel
	axis := p.GraphicsAxis()

	var source *paneltest.SliceSource
	if len(cfg.Scenario.Groups) > 0 {
		source = paneltest.NewGroupedSource(cfg.Scenario.Groups...)
	} else {
		source = paneltest.NewFlatSource(cfg.Scenario.Items)
	}
	layout := &paneltest.StackLayout{
		Direction:    axis,
		HeaderLength: p.HeaderLength,
		ItemLength:   p.ItemLength,
		CrossLength:  p.CrossLength,
	}
	viewport := window.NewScrollViewport(axisSize(axis, p.ViewportLength, p.CrossLength))
	engine := generation.New(source, layout, &paneltest.RecordingHost{}, viewport, p.EngineOptions())
	layout.Bind(engine.Cache())
	if p.KeepsLastItemInView() {
		engine.SetKeepLastItemInView(true)
	}
	return &simulator{
		cfg:      cfg,
		axis:     axis,
		source:   source,
		viewport: viewport,
		engine:   engine,
		out:      out,
	}
}

func (s *simulator) close() { s.engine.Tracker().Close() }

func axisSize(axis graphics.Axis, length, cross float64) graphics.Size {
	if axis == graphics.AxisHorizontal {
		return graphics.Size{Width: length, Height: cross}
	}
	return graphics.Size{Width: cross, Height: length}
}

func stepKind(step config.Step) core.Kind {
	if step.IsHeader() {
		return core.Header
	}
	return core.ItemContainer
}

// play runs every step and prints one line per pass.
func (s *simulator) play(ctx context.Context) error {
	for i, step := range s.cfg.Scenario.Steps {
		if err := s.apply(ctx, i, step); err != nil {
			return fmt.Errorf("step %d (%s): %w", i+1, step.Op, err)
		}
	}
	return nil
}

func (s *simulator) apply(ctx context.Context, n int, step config.Step) error {
	kind := stepKind(step)
	if err := s.checkIndexes(step); err != nil {
		return err
	}
	switch step.Op {
	case config.OpPass:
	case config.OpSettle:
		for i := 0; i < settleLimit; i++ {
			needs := s.engine.NeedsAnotherPass()
			if err := s.pass(ctx, n, step); err != nil {
				return err
			}
			if !needs {
				return nil
			}
		}
		return paneltest.ErrSettleTimeout
	case config.OpScroll:
		if s.axis == graphics.AxisHorizontal {
			s.viewport.JumpTo(graphics.Offset{X: step.Offset})
		} else {
			s.viewport.JumpTo(graphics.Offset{Y: step.Offset})
		}
	case config.OpInsert:
		if kind == core.Header {
			s.source.InsertGroup(step.Index, step.Count)
			s.engine.GroupInserted(step.Index)
		} else {
			s.source.InsertItem(step.Index)
			s.engine.ItemInserted(step.Index)
		}
	case config.OpRemove:
		if kind == core.Header {
			s.source.RemoveGroup(step.Index)
			s.engine.GroupRemoved(step.Index)
		} else {
			s.source.RemoveItem(step.Index)
			s.engine.ItemRemoved(step.Index)
		}
	case config.OpReplace:
		s.source.ReplaceItem(step.Index)
		s.engine.ItemReplaced(step.Index)
	case config.OpMove:
		s.source.MoveItem(step.Index, step.To)
		s.engine.ItemMoved(step.Index, step.To)
	case config.OpFocus:
		if err := s.engine.Focus(kind, step.Index); err != nil {
			return err
		}
	case config.OpPin:
		if err := s.engine.Pin(kind, step.Index); err != nil {
			return err
		}
	case config.OpUnpin:
		s.engine.Unpin(kind, step.Index)
	case config.OpResize:
		s.viewport.SetViewportSize(axisSize(s.axis, step.Length, s.cfg.Panel.CrossLength))
	case config.OpReset:
		s.source.Reverse()
		s.engine.Reset()
	case config.OpRefresh:
		s.engine.Refresh()
	case config.OpScrollIntoView:
		s.engine.ScrollIntoView(kind, step.Index, step.Alignment())
	case config.OpScrollToEnd:
		s.engine.ScrollToEnd()
	default:
		return fmt.Errorf("unknown op %q", step.Op)
	}
	return s.pass(ctx, n, step)
}

// checkIndexes rejects data mutations whose indexes do not exist in the
// source as it stands before the step.
func (s *simulator) checkIndexes(step config.Step) error {
	items, groups := s.source.ItemCount(), s.source.GroupCount()
	outside := func(name string, index, limit int) error {
		return fmt.Errorf("%w: %s %d outside [0,%d)", config.ErrInvalid, name, index, limit)
	}
	header := step.IsHeader()
	switch step.Op {
	case config.OpInsert, config.OpRemove:
		if header && !s.source.IsGrouping() {
			return fmt.Errorf("%w: %s header in an ungrouped source", config.ErrInvalid, step.Op)
		}
	case config.OpReplace, config.OpMove:
		if header {
			return fmt.Errorf("%w: %s applies to items only", config.ErrInvalid, step.Op)
		}
	}
	switch {
	case step.Op == config.OpInsert && header:
		if step.Index > groups {
			return outside("group", step.Index, groups+1)
		}
	case step.Op == config.OpInsert:
		if s.source.IsGrouping() && groups == 0 {
			return fmt.Errorf("%w: insert item into a source without groups", config.ErrInvalid)
		}
		if step.Index > items {
			return outside("item", step.Index, items+1)
		}
	case step.Op == config.OpRemove && header:
		if step.Index >= groups {
			return outside("group", step.Index, groups)
		}
	case step.Op == config.OpRemove, step.Op == config.OpReplace:
		if step.Index >= items {
			return outside("item", step.Index, items)
		}
	case step.Op == config.OpMove:
		if step.Index >= items {
			return outside("item", step.Index, items)
		}
		if step.To >= items {
			return outside("move target", step.To, items)
		}
	}
	return nil
}

func (s *simulator) pass(ctx context.Context, n int, step config.Step) error {
	stats, err := s.engine.Measure(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(s.out, s.describe(n, step, stats))
	return nil
}

func (s *simulator) describe(n int, step config.Step, stats generation.PassStats) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%3d %-16s", n+1, step.Op)
	if s.source.IsGrouping() {
		fmt.Fprintf(&b, " headers %s", s.realizedRange(core.Header))
	}
	fmt.Fprintf(&b, " items %s", s.realizedRange(core.ItemContainer))
	fmt.Fprintf(&b, " visible [%g,%g)", stats.Visible.Start(s.axis), stats.Visible.End(s.axis))
	fmt.Fprintf(&b, " created %d reused %d recycled %d", stats.Created, stats.Reused, stats.Recycled)
	if stats.Shift != 0 {
		fmt.Fprintf(&b, " shift %g", stats.Shift)
	}
	fmt.Fprintf(&b, " %s", stats.Transition)
	if stats.Disconnected {
		b.WriteString(" disconnected")
	}
	return b.String()
}

// realizedRange formats the first and last realized data index of kind.
func (s *simulator) realizedRange(kind core.Kind) string {
	reg := s.engine.Registry()
	first, last := -1, -1
	for vi := 0; vi < reg.ValidCount(kind); vi++ {
		if reg.GetAtValidIndex(kind, vi).IsZero() {
			continue
		}
		di := reg.DataIndexFromValidIndex(kind, vi)
		if first < 0 {
			first = di
		}
		last = di
	}
	if first < 0 {
		return "[]"
	}
	return fmt.Sprintf("[%d,%d]", first, last)
}
