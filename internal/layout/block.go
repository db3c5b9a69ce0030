package layout

import "math"

const (
	// FontRatio sizes caption text relative to canvas width.
	FontRatio = 0.06
	// LineSpacing is line height as a multiple of font size.
	LineSpacing = 1.2
	// WidthRatio is the share of canvas width a caption line may occupy.
	WidthRatio = 0.8
)

// FontSize returns the caption font size for a canvas of the given width.
func FontSize(canvasW int) float64 {
	return math.Floor(float64(canvasW) * FontRatio)
}

// LineHeight returns the distance between stacked caption lines.
func LineHeight(fontSize float64) float64 {
	return fontSize * LineSpacing
}

// MaxLineWidth returns the wrap width for a canvas of the given width.
func MaxLineWidth(canvasW int) float64 {
	return float64(canvasW) * WidthRatio
}

// Anchor returns the vertical center of the caption block. Formats taller
// than wide sit at 80% to stay clear of platform overlays; square and wide
// formats sit at 90%.
func Anchor(canvasW, canvasH int) float64 {
	if canvasH > canvasW {
		return float64(canvasH) * 0.8
	}
	return float64(canvasH) * 0.9
}

// LineOffsets returns each line's vertical offset from the anchor so that the
// block of n lines is centered on it as a unit.
func LineOffsets(n int, lineHeight float64) []float64 {
	total := float64(n) * lineHeight
	offsets := make([]float64, n)
	for i := range offsets {
		offsets[i] = float64(i)*lineHeight - total/2
	}
	return offsets
}

// Line is one positioned caption line.
type Line struct {
	Text string
	Y    float64 // offset from the anchor
}

// Block is a caption laid out for a canvas.
type Block struct {
	Lines    []Line
	FontSize float64
	AnchorX  float64
	AnchorY  float64
}

// Layout wraps text for a canvas and positions its lines around the caption
// anchor.
func Layout(text string, canvasW, canvasH int, measure MeasureFunc) Block {
	size := FontSize(canvasW)
	wrapped := Wrap(text, MaxLineWidth(canvasW), measure)
	offsets := LineOffsets(len(wrapped), LineHeight(size))

	lines := make([]Line, len(wrapped))
	for i, l := range wrapped {
		lines[i] = Line{Text: l, Y: offsets[i]}
	}
	return Block{
		Lines:    lines,
		FontSize: size,
		AnchorX:  float64(canvasW) / 2,
		AnchorY:  Anchor(canvasW, canvasH),
	}
}
