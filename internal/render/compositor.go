package render

import (
	"image"
	"image/color"
	"math/rand"
	"time"

	"github.com/ZacxDev/arcadescript/internal/caption"
	"github.com/ZacxDev/arcadescript/internal/geom"
	"github.com/ZacxDev/arcadescript/internal/layout"
	"github.com/ZacxDev/arcadescript/internal/logo"
	"github.com/ZacxDev/arcadescript/internal/numeric"
	"github.com/ZacxDev/arcadescript/internal/theme"
)

// Letterbox is the background behind the source frame.
var Letterbox = color.Black

// Scene is the immutable input of a render run.
type Scene struct {
	Duration float64
	Captions []caption.Segment
	Theme    theme.Theme
	Envelope logo.Envelope
}

// FrameInfo describes what Render drew.
type FrameInfo struct {
	Time       float64
	LogoAlpha  float64
	Caption    caption.Segment
	HasCaption bool
	Lines      []string
}

// Compositor renders frames of one scene. It keeps a caption cursor and is
// therefore not safe for concurrent use.
type Compositor struct {
	scene  Scene
	cursor *caption.Cursor
	rng    *rand.Rand
}

// Option configures a Compositor.
type Option func(*Compositor)

// WithRand sets the random source behind caption jitter.
func WithRand(r *rand.Rand) Option {
	return func(c *Compositor) { c.rng = r }
}

// NewCompositor snapshots scene; later changes to the caller's caption slice
// do not reach the compositor. A zero Envelope selects logo.DefaultEnvelope.
func NewCompositor(scene Scene, opts ...Option) *Compositor {
	scene.Captions = caption.Clone(scene.Captions)
	if scene.Envelope == (logo.Envelope{}) {
		scene.Envelope = logo.DefaultEnvelope
	}
	c := &Compositor{
		scene:  scene,
		cursor: caption.NewCursor(scene.Captions),
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Scene returns the compositor's snapshot.
func (c *Compositor) Scene() Scene { return c.scene }

// Render composites one frame at media time t onto cv. Every overlay in the
// frame is evaluated at the same t as the video frame.
func (c *Compositor) Render(cv Canvas, frame image.Image, t float64) FrameInfo {
	w, h := cv.Size()
	info := FrameInfo{Time: t}

	cv.Clear(Letterbox)
	if frame != nil {
		b := frame.Bounds()
		cv.DrawImage(frame, CoverFit(b.Dx(), b.Dy(), w, h))
	}

	info.LogoAlpha = c.scene.Envelope.Alpha(t, c.scene.Duration)
	if info.LogoAlpha > 0 {
		drawLogo(cv, logo.Plan(w, h, c.scene.Theme, info.LogoAlpha))
	}

	if seg, ok := c.cursor.At(t); ok {
		info.Caption, info.HasCaption = seg, true
		info.Lines = c.drawCaption(cv, seg, w, h)
	}
	return info
}

func (c *Compositor) drawCaption(cv Canvas, seg caption.Segment, w, h int) []string {
	style := layout.StyleFor(seg.Emotion, c.scene.Theme)
	scale := style.ScaleFactor()

	family := c.scene.Theme.Fonts.Title
	base := layout.FontSize(w)
	block := layout.Layout(seg.Text, w, h, func(s string) float64 {
		return cv.MeasureText(s, family, base)
	})

	ax, ay := block.AnchorX, block.AnchorY
	if j := style.Transform.Jitter; j > 0 {
		ax += (c.rng.Float64()*2 - 1) * j
		ay += (c.rng.Float64()*2 - 1) * j
	}

	size := block.FontSize * scale
	lines := make([]string, len(block.Lines))
	for i, l := range block.Lines {
		lines[i] = l.Text
		cv.DrawText(Text{
			Text:        l.Text,
			Font:        family,
			Center:      geom.Point{X: ax, Y: ay + l.Y*scale},
			Size:        size,
			Fill:        style.Fill,
			Stroke:      style.Stroke,
			StrokeWidth: style.StrokeWidth(size),
			Glow:        style.Glow,
			GlowRadius:  style.GlowRadius,
		})
	}
	return lines
}

func drawLogo(cv Canvas, o logo.Overlay) {
	cv.StrokeRect(o.Border, fade(o.BorderColor, o.Alpha), o.BorderWidth)
	for _, a := range o.Accents {
		cv.StrokePolyline(a.Points, fade(a.Color, o.Alpha), a.Width)
	}
	for _, word := range o.Words {
		cv.DrawText(Text{
			Text:       word.Text,
			Center:     word.Center,
			Size:       word.Size,
			Fill:       fade(word.Fill, o.Alpha),
			Glow:       fade(word.Glow, o.Alpha),
			GlowRadius: word.GlowRadius,
		})
	}
	scan := fade(o.ScanColor, o.Alpha)
	for _, r := range o.Scanlines {
		cv.FillRect(r, scan)
	}
}

// fade multiplies the color's alpha by a.
func fade(c color.NRGBA, a float64) color.NRGBA {
	c.A = uint8(float64(c.A)*numeric.Unit(a) + 0.5)
	return c
}
