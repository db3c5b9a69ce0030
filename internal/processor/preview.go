package processor

import (
	"image"
	"image/png"
	"os"

	"github.com/ZacxDev/arcadescript/internal/config"
	"github.com/ZacxDev/arcadescript/internal/ffmpeg"
	"github.com/ZacxDev/arcadescript/internal/render"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// FrameGrabber supplies the probe and the source frame of a preview.
type FrameGrabber interface {
	GetVideoMetadata(path string) (*ffmpeg.VideoMetadata, error)
	GrabFrame(path string, t float64) (image.Image, error)
}

// Previewer renders one composited frame to a PNG, exactly as the export
// would draw it at that time.
type Previewer struct {
	opts    *config.PreviewOptions
	grabber FrameGrabber
	log     logrus.FieldLogger
}

// NewPreviewer creates a new previewer
func NewPreviewer(opts *config.PreviewOptions, log logrus.FieldLogger) *Previewer {
	return &Previewer{opts: opts, grabber: ffmpeg.NewProcessor(log), log: log}
}

// Process writes the preview and returns its path along with what was drawn.
func (p *Previewer) Process() (string, render.FrameInfo, error) {
	if p.opts.InputPath == "" {
		return "", render.FrameInfo{}, errors.New("input path is required")
	}
	f, err := resolveFormat(p.opts.Format)
	if err != nil {
		return "", render.FrameInfo{}, err
	}
	th := resolveTheme(p.opts.Theme, p.log)

	ed, err := loadEditor(p.opts.CaptionsPath, p.opts.OffsetMs)
	if err != nil {
		return "", render.FrameInfo{}, errors.Wrap(err, "loading captions")
	}

	meta, err := p.grabber.GetVideoMetadata(p.opts.InputPath)
	if err != nil {
		return "", render.FrameInfo{}, err
	}
	t := p.opts.Time
	if t < 0 || t > meta.Duration {
		return "", render.FrameInfo{}, errors.Errorf("time %.3fs outside media duration %.3fs", t, meta.Duration)
	}
	frame, err := p.grabber.GrabFrame(p.opts.InputPath, t)
	if err != nil {
		return "", render.FrameInfo{}, err
	}

	fonts, err := loadFonts(p.opts.FontPath)
	if err != nil {
		return "", render.FrameInfo{}, err
	}
	defer fonts.Close()

	canvas := render.NewRGBACanvas(f.Width, f.Height, fonts)
	comp := render.NewCompositor(render.Scene{
		Duration: meta.Duration,
		Captions: ed.Synced(),
		Theme:    th,
	})
	info := comp.Render(canvas, frame, t)

	out := p.opts.OutputPath
	if out == "" {
		out = sanitizeFilename(p.opts.InputPath) + "-preview"
	}
	out = ensureOutputPath(out, "png", p.log)
	if err := writePNG(out, canvas.Image()); err != nil {
		return "", render.FrameInfo{}, err
	}

	p.log.WithFields(logrus.Fields{
		"time":    t,
		"logo":    info.LogoAlpha,
		"caption": info.Caption.Text,
	}).Debug("preview rendered")
	return out, info, nil
}

func writePNG(path string, img image.Image) error {
	file, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "creating preview")
	}
	if err := png.Encode(file, img); err != nil {
		file.Close()
		return errors.Wrap(err, "encoding preview")
	}
	return errors.Wrap(file.Close(), "writing preview")
}
