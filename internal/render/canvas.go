// Package render composites output frames: the cover-fitted source frame, the
// logo overlay and the active caption.
package render

import (
	"image"
	"image/color"

	"github.com/ZacxDev/arcadescript/internal/geom"
)

// Text is a single line of text centered horizontally and vertically on
// Center. Glow is drawn first, then the stroke, then the fill.
type Text struct {
	Text string
	// Font is a CSS-style family list; empty selects the default face.
	Font        string
	Center      geom.Point
	Size        float64
	Fill        color.NRGBA
	Stroke      color.NRGBA
	StrokeWidth float64
	Glow        color.NRGBA
	GlowRadius  float64
}

// Canvas is the drawing surface a frame is composited onto. The export path
// uses an RGBA canvas; tests substitute a recorder.
type Canvas interface {
	Size() (w, h int)
	Clear(c color.Color)
	DrawImage(src image.Image, dst geom.Rect)
	FillRect(r geom.Rect, c color.NRGBA)
	StrokeRect(r geom.Rect, c color.NRGBA, width float64)
	StrokePolyline(pts []geom.Point, c color.NRGBA, width float64)
	DrawText(t Text)
	MeasureText(s, font string, size float64) float64
	// Image returns the backing pixels. It stays owned by the canvas and is
	// overwritten by the next frame.
	Image() *image.RGBA
}
