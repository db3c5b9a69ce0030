package geom

import (
	"image"
	"testing"
)

func TestRectImage(t *testing.T) {
	r := Rect{X: -10.5, Y: 0.25, W: 20.5, H: 9.5}
	want := image.Rect(-11, 0, 10, 10)
	if got := r.Image(); got != want {
		t.Fatalf("Image() = %v, want %v", got, want)
	}
}

func TestRectCovers(t *testing.T) {
	if !(Rect{X: -5, Y: 0, W: 110, H: 50}).Covers(100, 50, 1e-9) {
		t.Fatal("expected rect to cover canvas")
	}
	if (Rect{X: 1, Y: 0, W: 110, H: 50}).Covers(100, 50, 1e-9) {
		t.Fatal("rect with a gap on the left reported as covering")
	}
}
