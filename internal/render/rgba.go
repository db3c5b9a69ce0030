package render

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/ZacxDev/arcadescript/internal/geom"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

const (
	strokeSamples = 16
	glowRings     = 3
	glowSamples   = 12
)

// RGBACanvas draws into an in-memory RGBA image.
type RGBACanvas struct {
	img    *image.RGBA
	fonts  *FontBook
	scaler xdraw.Scaler
}

// NewRGBACanvas allocates a w x h canvas. Text families resolve through fonts.
func NewRGBACanvas(w, h int, fonts *FontBook) *RGBACanvas {
	return &RGBACanvas{
		img:    image.NewRGBA(image.Rect(0, 0, w, h)),
		fonts:  fonts,
		scaler: xdraw.ApproxBiLinear,
	}
}

func (c *RGBACanvas) Size() (int, int) {
	b := c.img.Bounds()
	return b.Dx(), b.Dy()
}

func (c *RGBACanvas) Image() *image.RGBA { return c.img }

func (c *RGBACanvas) Clear(col color.Color) {
	draw.Draw(c.img, c.img.Bounds(), image.NewUniform(col), image.Point{}, draw.Src)
}

// DrawImage scales src into dst. Parts of dst outside the canvas are clipped,
// which is how cover fit crops.
func (c *RGBACanvas) DrawImage(src image.Image, dst geom.Rect) {
	if src == nil || dst.W <= 0 || dst.H <= 0 {
		return
	}
	c.scaler.Scale(c.img, dst.Image(), src, src.Bounds(), draw.Over, nil)
}

func (c *RGBACanvas) FillRect(r geom.Rect, col color.NRGBA) {
	if col.A == 0 || r.W <= 0 || r.H <= 0 {
		return
	}
	draw.Draw(c.img, r.Image(), image.NewUniform(col), image.Point{}, draw.Over)
}

// StrokeRect strokes the outline of r with the line centered on the edge.
func (c *RGBACanvas) StrokeRect(r geom.Rect, col color.NRGBA, width float64) {
	hw := width / 2
	c.FillRect(geom.Rect{X: r.X - hw, Y: r.Y - hw, W: r.W + width, H: width}, col)
	c.FillRect(geom.Rect{X: r.X - hw, Y: r.MaxY() - hw, W: r.W + width, H: width}, col)
	c.FillRect(geom.Rect{X: r.X - hw, Y: r.Y + hw, W: width, H: r.H - width}, col)
	c.FillRect(geom.Rect{X: r.MaxX() - hw, Y: r.Y + hw, W: width, H: r.H - width}, col)
}

// StrokePolyline strokes each segment with square caps, which also fills
// right-angle joins.
func (c *RGBACanvas) StrokePolyline(pts []geom.Point, col color.NRGBA, width float64) {
	hw := width / 2
	for i := 1; i < len(pts); i++ {
		a, b := pts[i-1], pts[i]
		switch {
		case a.X == b.X:
			y0, y1 := math.Min(a.Y, b.Y), math.Max(a.Y, b.Y)
			c.FillRect(geom.Rect{X: a.X - hw, Y: y0 - hw, W: width, H: y1 - y0 + width}, col)
		case a.Y == b.Y:
			x0, x1 := math.Min(a.X, b.X), math.Max(a.X, b.X)
			c.FillRect(geom.Rect{X: x0 - hw, Y: a.Y - hw, W: x1 - x0 + width, H: width}, col)
		default:
			c.stampLine(a, b, col, width)
		}
	}
}

func (c *RGBACanvas) stampLine(a, b geom.Point, col color.NRGBA, width float64) {
	steps := int(math.Ceil(math.Hypot(b.X-a.X, b.Y-a.Y)))
	hw := width / 2
	for i := 0; i <= steps; i++ {
		f := float64(i) / float64(max(steps, 1))
		x := a.X + (b.X-a.X)*f
		y := a.Y + (b.Y-a.Y)*f
		c.FillRect(geom.Rect{X: x - hw, Y: y - hw, W: width, H: width}, col)
	}
}

func (c *RGBACanvas) MeasureText(s, family string, size float64) float64 {
	face, err := c.fonts.Resolve(family).Face(size)
	if err != nil {
		return 0
	}
	return fixedToFloat(font.MeasureString(face, s))
}

// DrawText renders t with its baseline placed so that the text's vertical
// middle sits on t.Center.Y.
func (c *RGBACanvas) DrawText(t Text) {
	if t.Text == "" {
		return
	}
	face, err := c.fonts.Resolve(t.Font).Face(t.Size)
	if err != nil {
		return
	}

	m := face.Metrics()
	width := fixedToFloat(font.MeasureString(face, t.Text))
	x := t.Center.X - width/2
	y := t.Center.Y + fixedToFloat(m.Ascent-m.Descent)/2

	if t.GlowRadius > 0 && t.Glow.A > 0 {
		for ring := 1; ring <= glowRings; ring++ {
			r := t.GlowRadius * float64(ring) / glowRings
			col := t.Glow
			// Outer rings are fainter.
			col.A = uint8(float64(t.Glow.A) * float64(glowRings-ring+1) / float64(glowRings*glowSamples/2))
			c.ring(face, t.Text, x, y, r, glowSamples, col)
		}
	}
	if t.StrokeWidth > 0 && t.Stroke.A > 0 {
		c.ring(face, t.Text, x, y, t.StrokeWidth/2, strokeSamples, t.Stroke)
	}
	c.stamp(face, t.Text, x, y, t.Fill)
}

// ring stamps s at n points on a circle of radius r around (x, y).
func (c *RGBACanvas) ring(face font.Face, s string, x, y, r float64, n int, col color.NRGBA) {
	if col.A == 0 {
		return
	}
	for i := 0; i < n; i++ {
		a := 2 * math.Pi * float64(i) / float64(n)
		c.stamp(face, s, x+r*math.Cos(a), y+r*math.Sin(a), col)
	}
}

func (c *RGBACanvas) stamp(face font.Face, s string, x, y float64, col color.NRGBA) {
	if col.A == 0 {
		return
	}
	d := &font.Drawer{
		Dst:  c.img,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  fixed.Point26_6{X: floatToFixed(x), Y: floatToFixed(y)},
	}
	d.DrawString(s)
}

func fixedToFloat(v fixed.Int26_6) float64 { return float64(v) / 64 }

func floatToFixed(v float64) fixed.Int26_6 { return fixed.Int26_6(math.Round(v * 64)) }
