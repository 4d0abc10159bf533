package debugviz_test

import (
	"bytes"
	"image/png"
	"path/filepath"
	"testing"

	"github.com/go-drift/virtualize/pkg/core"
	"github.com/go-drift/virtualize/pkg/debugviz"
	"github.com/go-drift/virtualize/pkg/generation"
	"github.com/go-drift/virtualize/pkg/graphics"
	"github.com/go-drift/virtualize/pkg/paneltest"
)

func TestRender_Colors(t *testing.T) {
	pt := paneltest.NewPanelTester(t, paneltest.NewFlatSource(50), paneltest.Options{})
	pt.Pump()

	frame := debugviz.Capture(pt.Engine)
	if got := len(frame.Elements); got != 5 {
		t.Fatalf("len(Elements) = %d, want 5", got)
	}
	img := debugviz.Render(frame, debugviz.Options{})
	if b := img.Bounds(); b.Dx() != 300 || b.Dy() != 200 {
		t.Fatalf("image size = %dx%d, want 300x200", b.Dx(), b.Dy())
	}
	if got := img.NRGBAAt(150, 20); got != debugviz.Item.NRGBA() {
		t.Errorf("item pixel = %v, want %v", got, debugviz.Item.NRGBA())
	}
	if got := img.NRGBAAt(150, 0); got != debugviz.Visible.NRGBA() {
		t.Errorf("visible outline pixel = %v, want %v", got, debugviz.Visible.NRGBA())
	}
}

func TestRender_KeptAndHeader(t *testing.T) {
	frame := debugviz.Frame{
		Axis:    graphics.AxisVertical,
		Visible: graphics.RectFromLTWH(0, 0, 100, 100),
		Elements: []generation.Arranged{
			{Kind: core.Header, Index: 0, Bounds: graphics.RectFromLTWH(0, 0, 100, 20), Realized: true},
			{Kind: core.ItemContainer, Index: 9, Bounds: graphics.RectFromLTWH(0, 300, 100, 40)},
		},
	}
	img := debugviz.Render(frame, debugviz.Options{Scale: 0.5})
	if b := img.Bounds(); b.Dx() != 50 || b.Dy() != 170 {
		t.Fatalf("image size = %dx%d, want 50x170", b.Dx(), b.Dy())
	}
	if got := img.NRGBAAt(25, 5); got != debugviz.Header.NRGBA() {
		t.Errorf("header pixel = %v, want %v", got, debugviz.Header.NRGBA())
	}
	if got := img.NRGBAAt(25, 160); got != debugviz.Kept.NRGBA() {
		t.Errorf("kept pixel = %v, want %v", got, debugviz.Kept.NRGBA())
	}
}

func TestRender_Labels(t *testing.T) {
	pt := paneltest.NewPanelTester(t, paneltest.NewFlatSource(10), paneltest.Options{})
	pt.Pump()

	img := debugviz.Render(debugviz.Capture(pt.Engine), debugviz.Options{Labels: true})
	ink := debugviz.Label.NRGBA()
	found := false
	for y := 1; y < 39 && !found; y++ {
		for x := 0; x < 80; x++ {
			if img.NRGBAAt(x, y) == ink {
				found = true
				break
			}
		}
	}
	if !found {
		t.Error("no label pixels drawn in the first element")
	}
}

func TestEncode_PNG(t *testing.T) {
	pt := paneltest.NewPanelTester(t, paneltest.NewFlatSource(10), paneltest.Options{})
	pt.Pump()
	frame := debugviz.Capture(pt.Engine)

	var buf bytes.Buffer
	if err := debugviz.Encode(&buf, frame, debugviz.Options{Scale: 2}); err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	cfg, err := png.DecodeConfig(&buf)
	if err != nil {
		t.Fatalf("DecodeConfig() error = %v", err)
	}
	if cfg.Width != 600 || cfg.Height != 400 {
		t.Errorf("PNG size = %dx%d, want 600x400", cfg.Width, cfg.Height)
	}

	path := filepath.Join(t.TempDir(), "frame.png")
	if err := debugviz.WriteFile(path, frame, debugviz.Options{}); err != nil {
		t.Errorf("WriteFile() error = %v", err)
	}
}
