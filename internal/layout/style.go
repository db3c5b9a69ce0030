package layout

import (
	"image/color"

	"github.com/ZacxDev/arcadescript/internal/caption"
	"github.com/ZacxDev/arcadescript/internal/theme"
)

// Transform is the per-frame motion applied to a caption block.
type Transform struct {
	// Jitter is the maximum random offset in pixels on each axis, redrawn
	// every frame.
	Jitter float64
	// Scale multiplies the block size around its anchor. Zero means 1.
	Scale float64
}

// Style is the resolved look of a caption for one emotion and theme.
type Style struct {
	Fill        color.NRGBA
	Glow        color.NRGBA
	GlowRadius  float64
	Stroke      color.NRGBA
	StrokeRatio float64
	Transform   Transform
}

// StrokeWidth is the outline width for text drawn at fontSize.
func (s Style) StrokeWidth(fontSize float64) float64 {
	return fontSize * s.StrokeRatio
}

// ScaleFactor returns the effective scale, treating zero as identity.
func (s Style) ScaleFactor() float64 {
	if s.Transform.Scale == 0 {
		return 1
	}
	return s.Transform.Scale
}

// paint is a color that is either fixed or taken from the theme's primary.
type paint struct {
	fixed   color.NRGBA
	primary bool
	alpha   uint8
}

func (p paint) resolve(th theme.Theme) color.NRGBA {
	if !p.primary {
		return p.fixed
	}
	c := th.PrimaryColor()
	c.A = p.alpha
	return c
}

type rule struct {
	fill       paint
	glow       paint
	glowRadius float64
	transform  Transform
}

var (
	black = color.NRGBA{A: 0xff}

	styleTable = map[caption.Emotion]rule{
		caption.Anger: {
			fill:       paint{fixed: color.NRGBA{R: 0xff, G: 0x26, B: 0x26, A: 0xff}},
			glow:       paint{fixed: color.NRGBA{R: 0xff, A: 0xcc}},
			glowRadius: 30,
			transform:  Transform{Jitter: 4, Scale: 1},
		},
		caption.Hype: {
			fill:       paint{primary: true, alpha: 0xff},
			glow:       paint{primary: true, alpha: 0xcc},
			glowRadius: 30,
			transform:  Transform{Scale: 1.1},
		},
	}

	fallbackRule = rule{
		fill:       paint{fixed: color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}},
		glow:       paint{fixed: color.NRGBA{A: 0xcc}},
		glowRadius: 10,
		transform:  Transform{Scale: 1},
	}
)

// StrokeRatio is the caption outline width as a fraction of font size.
const StrokeRatio = 0.1

// StyleFor resolves the caption style for an emotion under a theme. Anger is
// red under every theme, hype follows the theme's primary color, and every
// other emotion gets the plain white treatment.
func StyleFor(e caption.Emotion, th theme.Theme) Style {
	r, ok := styleTable[e]
	if !ok {
		r = fallbackRule
	}
	return Style{
		Fill:        r.fill.resolve(th),
		Glow:        r.glow.resolve(th),
		GlowRadius:  r.glowRadius,
		Stroke:      black,
		StrokeRatio: StrokeRatio,
		Transform:   r.transform,
	}
}
