package render

import (
	"math"
	"os"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/gomedium"
	"golang.org/x/image/font/gofont/gomonobolditalic"
	"golang.org/x/image/font/gofont/gosmallcapsitalic"
	"golang.org/x/image/font/opentype"
)

// embedded maps the families the theme catalog names to the bundled Go face
// standing in for each.
var embedded = map[string][]byte{
	"russo one":       gobolditalic.TTF,
	"rubik wet paint": gosmallcapsitalic.TTF,
	"black ops one":   gomonobolditalic.TTF,
	"rajdhani":        gomedium.TTF,
}

// FontBook resolves CSS-style family lists ("Russo One", sans-serif) to
// typefaces. Families are parsed on first use.
type FontBook struct {
	fallback *Fonts
	// override, when set, serves every family.
	override bool

	mu       sync.Mutex
	families map[string]*Fonts
}

// NewFontBook returns a book of the embedded faces. Unknown families get
// Go Bold Italic.
func NewFontBook() (*FontBook, error) {
	fallback, err := DefaultFonts()
	if err != nil {
		return nil, err
	}
	return &FontBook{fallback: fallback, families: make(map[string]*Fonts)}, nil
}

// LoadFontBook returns a book serving the font at path for every family. An
// empty path selects NewFontBook.
func LoadFontBook(path string) (*FontBook, error) {
	if path == "" {
		return NewFontBook()
	}
	fonts, err := LoadFonts(path)
	if err != nil {
		return nil, err
	}
	return &FontBook{fallback: fonts, override: true, families: make(map[string]*Fonts)}, nil
}

// Resolve returns the typeface for the first known family in list.
func (b *FontBook) Resolve(list string) *Fonts {
	if b.override {
		return b.fallback
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	for _, name := range strings.Split(list, ",") {
		name = strings.ToLower(strings.Trim(strings.TrimSpace(name), `"'`))
		if f, ok := b.families[name]; ok {
			return f
		}
		data, ok := embedded[name]
		if !ok {
			continue
		}
		f, err := parseFonts(data)
		if err != nil {
			continue
		}
		b.families[name] = f
		return f
	}
	return b.fallback
}

// Close releases the faces of every resolved family.
func (b *FontBook) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	first := b.fallback.Close()
	for _, f := range b.families {
		if err := f.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Fonts hands out faces of one typeface at arbitrary pixel sizes. Faces are
// cached per integer size.
type Fonts struct {
	font *opentype.Font

	mu    sync.Mutex
	faces map[int]font.Face
}

// DefaultFonts uses the embedded Go Bold Italic typeface.
func DefaultFonts() (*Fonts, error) {
	return parseFonts(gobolditalic.TTF)
}

// LoadFonts reads a TrueType or OpenType file. An empty path selects the
// embedded default.
func LoadFonts(path string) (*Fonts, error) {
	if path == "" {
		return DefaultFonts()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read font file")
	}
	return parseFonts(data)
}

func parseFonts(data []byte) (*Fonts, error) {
	f, err := opentype.Parse(data)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse font")
	}
	return &Fonts{font: f, faces: make(map[int]font.Face)}, nil
}

// Face returns a face for size pixels, rounded to the nearest integer size.
func (f *Fonts) Face(size float64) (font.Face, error) {
	key := int(math.Round(size))
	if key < 1 {
		key = 1
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if face, ok := f.faces[key]; ok {
		return face, nil
	}
	face, err := opentype.NewFace(f.font, &opentype.FaceOptions{
		Size:    float64(key),
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to create %dpx font face", key)
	}
	f.faces[key] = face
	return face, nil
}

// Close releases every cached face.
func (f *Fonts) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	var first error
	for size, face := range f.faces {
		if err := face.Close(); err != nil && first == nil {
			first = err
		}
		delete(f.faces, size)
	}
	return first
}
