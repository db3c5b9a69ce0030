package processor

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/ZacxDev/arcadescript/internal/caption"
	"github.com/ZacxDev/arcadescript/internal/editor"
	"github.com/ZacxDev/arcadescript/internal/format"
	"github.com/ZacxDev/arcadescript/internal/render"
	"github.com/ZacxDev/arcadescript/internal/theme"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// GetSupportedFormats returns the export format ids in display order
func GetSupportedFormats() []string {
	return format.IDs()
}

// loadEditor reads a caption file into an editor carrying offsetMs. An empty
// path gives an editor with no captions.
func loadEditor(path string, offsetMs float64) (*editor.Editor, error) {
	var segs []caption.Segment
	if path != "" {
		var err error
		segs, err = caption.Load(path)
		if err != nil {
			return nil, err
		}
	}
	ed := editor.New(segs)
	ed.SetOffset(offsetMs)
	return ed, nil
}

func resolveFormat(id string) (format.Format, error) {
	if id == "" {
		return format.Default(), nil
	}
	f, err := format.Get(strings.ToLower(id))
	if err != nil {
		return format.Format{}, errors.Wrapf(err, "supported formats: %s", strings.Join(format.IDs(), ", "))
	}
	return f, nil
}

// resolveTheme falls back to the default theme for unknown ids.
func resolveTheme(id string, log logrus.FieldLogger) theme.Theme {
	th, ok := theme.Get(id)
	if !ok && id != "" {
		log.WithField("theme", id).Warnf("unknown theme, using %s", th.ID)
	}
	return th
}

func loadFonts(path string) (*render.FontBook, error) {
	fonts, err := render.LoadFontBook(path)
	return fonts, errors.Wrap(err, "loading caption font")
}

// parseAssignment splits "index=value".
func parseAssignment(s string) (int, string, error) {
	idx, value, ok := strings.Cut(s, "=")
	if !ok {
		return 0, "", errors.Errorf("expected index=value, got %q", s)
	}
	i, err := strconv.Atoi(strings.TrimSpace(idx))
	if err != nil {
		return 0, "", errors.Errorf("invalid caption index %q", idx)
	}
	return i, value, nil
}

func sanitizeFilename(filename string) string {
	sanitized := filename

	// Remove the old extension if present
	sanitized = strings.TrimSuffix(sanitized, filepath.Ext(sanitized))

	reg := regexp.MustCompile(`[^a-zA-Z0-9-_.]`)
	sanitized = reg.ReplaceAllString(sanitized, "_")

	reg = regexp.MustCompile(`_+`)
	sanitized = reg.ReplaceAllString(sanitized, "_")

	sanitized = strings.Trim(sanitized, "_")
	if sanitized == "" {
		sanitized = "captions"
	}
	return sanitized
}

func ensureOutputPath(path, ext string, log logrus.FieldLogger) string {
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			// The write that follows reports the real failure.
			log.WithError(err).Warnf("failed to create directory %s", dir)
		}
	}

	ext = fmt.Sprintf(".%s", strings.TrimPrefix(ext, "."))
	if !strings.HasSuffix(strings.ToLower(path), ext) {
		path = strings.TrimSuffix(path, filepath.Ext(path)) + ext
	}
	return path
}
