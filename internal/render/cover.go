package render

import (
	"math"

	"github.com/ZacxDev/arcadescript/internal/geom"
)

// CoverFit scales a srcW x srcH frame to fill a canvW x canvH canvas
// completely, preserving aspect ratio and cropping the overflow evenly on
// both sides. A degenerate source yields a zero rect.
func CoverFit(srcW, srcH, canvW, canvH int) geom.Rect {
	if srcW <= 0 || srcH <= 0 {
		return geom.Rect{}
	}
	sw, sh := float64(srcW), float64(srcH)
	cw, ch := float64(canvW), float64(canvH)

	scale := math.Max(cw/sw, ch/sh)
	w, h := sw*scale, sh*scale
	return geom.Rect{
		X: (cw - w) / 2,
		Y: (ch - h) / 2,
		W: w,
		H: h,
	}
}
