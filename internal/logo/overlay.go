package logo

import (
	"image/color"
	"math"

	"github.com/ZacxDev/arcadescript/internal/geom"
	"github.com/ZacxDev/arcadescript/internal/theme"
)

const (
	// Inset of the border frame from every canvas edge, in pixels.
	FramePadding = 40
	FrameWidth   = 4
	AccentWidth  = 2
	AccentLength = 100
	// SizeRatio sizes the wordmark relative to canvas width.
	SizeRatio  = 0.1
	GlowRadius = 20
	// Scanlines are 1px tall, every ScanlineStep pixels.
	ScanlineStep = 4
)

// Line is a stroked polyline.
type Line struct {
	Points []geom.Point
	Color  color.NRGBA
	Width  float64
}

// Word is one centered line of the wordmark.
type Word struct {
	Text       string
	Center     geom.Point
	Size       float64
	Fill       color.NRGBA
	Glow       color.NRGBA
	GlowRadius float64
}

// Overlay is everything to draw for one frame, with Alpha applied on top of
// each element's own color.
type Overlay struct {
	Alpha       float64
	Border      geom.Rect
	BorderColor color.NRGBA
	BorderWidth float64
	Accents     []Line
	Words       []Word
	Scanlines   []geom.Rect
	ScanColor   color.NRGBA
}

// Plan lays out the logo for a w x h canvas under th.
func Plan(w, h int, th theme.Theme, alpha float64) Overlay {
	cw, ch := float64(w), float64(h)
	pad := float64(FramePadding)
	primary := th.PrimaryColor()
	accent := th.AccentColor()

	size := math.Floor(cw * SizeRatio)
	cx, cy := cw/2, ch/2

	o := Overlay{
		Alpha:       alpha,
		Border:      geom.Rect{X: pad, Y: pad, W: cw - 2*pad, H: ch - 2*pad},
		BorderColor: primary,
		BorderWidth: FrameWidth,
		Accents: []Line{
			{
				Points: []geom.Point{{X: pad, Y: pad + AccentLength}, {X: pad, Y: pad}, {X: pad + AccentLength, Y: pad}},
				Color:  accent,
				Width:  AccentWidth,
			},
			{
				Points: []geom.Point{{X: cw - pad, Y: ch - pad - AccentLength}, {X: cw - pad, Y: ch - pad}, {X: cw - pad - AccentLength, Y: ch - pad}},
				Color:  accent,
				Width:  AccentWidth,
			},
		},
		Words: []Word{
			{
				Text:       "ARCADE",
				Center:     geom.Point{X: cx, Y: cy - size*0.6},
				Size:       size,
				Fill:       color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff},
				Glow:       primary,
				GlowRadius: GlowRadius,
			},
			{
				Text:       "SCRIPT",
				Center:     geom.Point{X: cx, Y: cy + size*0.6},
				Size:       size,
				Fill:       primary,
				Glow:       primary,
				GlowRadius: GlowRadius,
			},
		},
		ScanColor: color.NRGBA{A: 0x80},
	}

	for y := cy - size; y < cy+size*2; y += ScanlineStep {
		o.Scanlines = append(o.Scanlines, geom.Rect{X: cx - size*3, Y: y, W: size * 6, H: 1})
	}
	return o
}
