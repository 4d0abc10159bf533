// Package debugviz rasterizes a panel's arrangement into an image for
// diagnostics: the realization window, the visible window and every
// arranged element, labeled with its data index.
package debugviz

import (
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"io"
	"os"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"

	"github.com/go-drift/virtualize/pkg/core"
	"github.com/go-drift/virtualize/pkg/generation"
	"github.com/go-drift/virtualize/pkg/graphics"
)

// Palette.
var (
	Background  = graphics.RGB(0xFA, 0xFA, 0xFA)
	Realization = graphics.RGBA(0x90, 0xCA, 0xF9, 0.35)
	Visible     = graphics.RGB(0x19, 0x76, 0xD2)
	Item        = graphics.RGB(0x66, 0xBB, 0x6A)
	Header      = graphics.RGB(0xFF, 0xA7, 0x26)
	Kept        = graphics.RGB(0xAB, 0x47, 0xBC)
	Label       = graphics.ColorBlack
)

// Frame is one arrangement to draw.
type Frame struct {
	Axis        graphics.Axis
	Visible     graphics.Rect
	Realization graphics.Rect
	Elements    []generation.Arranged
}

// Capture takes the frame of the engine's last pass.
func Capture(e *generation.Engine) Frame {
	stats := e.LastStats()
	return Frame{
		Axis:        e.Tracker().Axis(),
		Visible:     stats.Visible,
		Realization: stats.Realization,
		Elements:    e.Arrange(),
	}
}

// Options controls rendering.
type Options struct {
	// Scale is pixels per panel unit. Zero means 1.
	Scale float64
	// Labels draws each element's data index.
	Labels bool
}

// Bounds returns the panel area a frame covers.
func (f Frame) Bounds() graphics.Rect {
	b := f.Visible.Union(f.Realization)
	if f.Realization.IsEmpty() {
		b = f.Visible
	}
	for _, a := range f.Elements {
		b = b.Union(a.Bounds)
	}
	return b
}

// Render draws f. Elements kept only by a pin or focus are drawn in the
// Kept color.
func Render(f Frame, opts Options) *image.NRGBA {
	scale := opts.Scale
	if scale <= 0 {
		scale = 1
	}
	area := f.Bounds()
	w := max(1, int(area.Width()*scale+0.5))
	h := max(1, int(area.Height()*scale+0.5))
	c := &canvas{
		dst:    image.NewNRGBA(image.Rect(0, 0, w, h)),
		z:      vector.NewRasterizer(w, h),
		origin: graphics.Offset{X: area.Left, Y: area.Top},
		scale:  scale,
	}
	draw.Draw(c.dst, c.dst.Bounds(), image.NewUniform(Background.NRGBA()), image.Point{}, draw.Src)

	if !f.Realization.IsEmpty() {
		c.fill(f.Realization, Realization)
	}
	for _, a := range f.Elements {
		col := Item
		switch {
		case !a.Realized:
			col = Kept
		case a.Kind == core.Header:
			col = Header
		}
		c.fill(a.Bounds.Inflate(f.Axis, -1), col)
		if opts.Labels {
			c.label(a.Bounds, fmt.Sprintf("%s %d", a.Kind, a.Index))
		}
	}
	c.stroke(f.Visible, Visible, 2/scale)
	return c.dst
}

// Encode writes f as a PNG.
func Encode(w io.Writer, f Frame, opts Options) error {
	return png.Encode(w, Render(f, opts))
}

// WriteFile writes f as a PNG file at path.
func WriteFile(path string, f Frame, opts Options) error {
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Encode(out, f, opts); err != nil {
		out.Close()
		return fmt.Errorf("debugviz: encode %s: %w", path, err)
	}
	return out.Close()
}

type canvas struct {
	dst    *image.NRGBA
	z      *vector.Rasterizer
	origin graphics.Offset
	scale  float64
}

func (c *canvas) point(x, y float64) (float32, float32) {
	return float32((x - c.origin.X) * c.scale), float32((y - c.origin.Y) * c.scale)
}

func (c *canvas) fill(r graphics.Rect, col graphics.Color) {
	if r.IsEmpty() {
		return
	}
	b := c.dst.Bounds()
	c.z.Reset(b.Dx(), b.Dy())
	x0, y0 := c.point(r.Left, r.Top)
	x1, y1 := c.point(r.Right, r.Bottom)
	c.z.MoveTo(x0, y0)
	c.z.LineTo(x1, y0)
	c.z.LineTo(x1, y1)
	c.z.LineTo(x0, y1)
	c.z.ClosePath()
	c.z.Draw(c.dst, b, image.NewUniform(col.NRGBA()), image.Point{})
}

func (c *canvas) stroke(r graphics.Rect, col graphics.Color, width float64) {
	c.fill(graphics.Rect{Left: r.Left, Top: r.Top, Right: r.Right, Bottom: r.Top + width}, col)
	c.fill(graphics.Rect{Left: r.Left, Top: r.Bottom - width, Right: r.Right, Bottom: r.Bottom}, col)
	c.fill(graphics.Rect{Left: r.Left, Top: r.Top, Right: r.Left + width, Bottom: r.Bottom}, col)
	c.fill(graphics.Rect{Left: r.Right - width, Top: r.Top, Right: r.Right, Bottom: r.Bottom}, col)
}

func (c *canvas) label(r graphics.Rect, text string) {
	face := basicfont.Face7x13
	x, y := c.point(r.Left, r.Top)
	if r.Height()*c.scale < float64(face.Height) {
		return
	}
	d := &font.Drawer{
		Dst:  c.dst,
		Src:  image.NewUniform(Label.NRGBA()),
		Face: face,
		Dot:  fixed.P(int(x)+3, int(y)+face.Ascent+1),
	}
	d.DrawString(text)
}
