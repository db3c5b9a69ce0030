// Package theme is the static catalog of fighter themes the renderer reads
// colors and fonts from. Nothing in the rendering path mutates a Theme; the
// selected theme is passed explicitly to every call that needs it.
package theme

import (
	"image/color"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

type Colors struct {
	Primary    string
	Secondary  string
	Accent     string
	Background string
}

type Fonts struct {
	Title string
	Body  string
}

// Theme is one entry of the catalog.
type Theme struct {
	ID           string
	Name         string
	Description  string
	Colors       Colors
	Fonts        Fonts
	SoundProfile string // standard, aggressive or retro
	VFX          string // fire, lightning or digital
}

var catalog = []Theme{
	{
		ID:          "yashiro",
		Name:        "Yashiro Nanakase",
		Description: "Earth Power - Aggressive & Heavy",
		Colors: Colors{
			Primary:    "#ff8c00",
			Secondary:  "#1a1a1a",
			Accent:     "#ffffff",
			Background: "#0a0500",
		},
		Fonts:        Fonts{Title: `"Russo One", sans-serif`, Body: `"Rajdhani", sans-serif`},
		SoundProfile: "aggressive",
		VFX:          "fire",
	},
	{
		ID:          "iori",
		Name:        "Iori Yagami",
		Description: "Purple Flames - Fast & Deadly",
		Colors: Colors{
			Primary:    "#a855f7",
			Secondary:  "#312e81",
			Accent:     "#ef4444",
			Background: "#0f0518",
		},
		Fonts:        Fonts{Title: `"Rubik Wet Paint", "Russo One", sans-serif`, Body: `"Rajdhani", sans-serif`},
		SoundProfile: "retro",
		VFX:          "lightning",
	},
	{
		ID:          "kyo",
		Name:        "Kyo Kusanagi",
		Description: "Crimson Fire - Classic Hero",
		Colors: Colors{
			Primary:    "#ef4444",
			Secondary:  "#7f1d1d",
			Accent:     "#fbbf24",
			Background: "#1a0505",
		},
		Fonts:        Fonts{Title: `"Black Ops One", sans-serif`, Body: `"Rajdhani", sans-serif`},
		SoundProfile: "standard",
		VFX:          "fire",
	},
}

// All returns a copy of the catalog in its canonical order.
func All() []Theme {
	out := make([]Theme, len(catalog))
	copy(out, catalog)
	return out
}

// Default is the first catalog entry.
func Default() Theme {
	return catalog[0]
}

// Get returns the theme with the given id. An empty or unknown id falls back
// to Default, and ok reports whether the id matched.
func Get(id string) (t Theme, ok bool) {
	for _, th := range catalog {
		if th.ID == id {
			return th, true
		}
	}
	return Default(), false
}

// IDs lists catalog ids in order.
func IDs() []string {
	ids := make([]string, 0, len(catalog))
	for _, th := range catalog {
		ids = append(ids, th.ID)
	}
	return ids
}

// White is the fallback for malformed theme colors.
var White = color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}

func (t Theme) PrimaryColor() color.NRGBA { return HexOr(t.Colors.Primary, White) }
func (t Theme) AccentColor() color.NRGBA  { return HexOr(t.Colors.Accent, White) }

// ParseHex parses #rgb, #rrggbb and #rrggbbaa colors.
func ParseHex(s string) (color.NRGBA, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) == 6 {
		h += "ff"
	}
	if len(h) != 8 {
		return color.NRGBA{}, errors.Errorf("invalid hex color: %q", s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return color.NRGBA{}, errors.Errorf("invalid hex color: %q", s)
	}
	return color.NRGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}

// HexOr parses s, returning fallback when it is malformed.
func HexOr(s string, fallback color.NRGBA) color.NRGBA {
	c, err := ParseHex(s)
	if err != nil {
		return fallback
	}
	return c
}
