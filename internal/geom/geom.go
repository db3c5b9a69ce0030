// Package geom holds the float geometry shared by the layout, overlay and
// rendering code.
package geom

import "image"

type Point struct {
	X, Y float64
}

// Rect is an axis-aligned rectangle with its origin at the top-left corner.
type Rect struct {
	X, Y, W, H float64
}

func (r Rect) MaxX() float64 { return r.X + r.W }
func (r Rect) MaxY() float64 { return r.Y + r.H }

// Covers reports whether r contains the whole of [0,w]x[0,h] within eps.
func (r Rect) Covers(w, h, eps float64) bool {
	return r.X <= eps && r.Y <= eps && r.MaxX() >= w-eps && r.MaxY() >= h-eps
}

// Image rounds r outward to integer pixel bounds.
func (r Rect) Image() image.Rectangle {
	return image.Rect(floor(r.X), floor(r.Y), ceil(r.MaxX()), ceil(r.MaxY()))
}

func floor(v float64) int {
	i := int(v)
	if float64(i) > v {
		i--
	}
	return i
}

func ceil(v float64) int {
	i := int(v)
	if float64(i) < v {
		i++
	}
	return i
}
