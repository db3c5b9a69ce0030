package processor

import (
	"path/filepath"

	"github.com/ZacxDev/arcadescript/internal/caption"
	"github.com/ZacxDev/arcadescript/internal/config"
	"github.com/ZacxDev/arcadescript/internal/editor"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// CaptionEditor applies command-line edits to a caption file.
type CaptionEditor struct {
	opts *config.EditOptions
	log  logrus.FieldLogger
}

// NewCaptionEditor creates a new caption editor
func NewCaptionEditor(opts *config.EditOptions, log logrus.FieldLogger) *CaptionEditor {
	return &CaptionEditor{opts: opts, log: log}
}

// Process applies every edit or none: the file is written only when all
// edits succeed. It returns the output path and the saved segments.
func (c *CaptionEditor) Process() (string, []caption.Segment, error) {
	if c.opts.CaptionsPath == "" {
		return "", nil, errors.New("captions path is required")
	}
	segs, err := caption.Load(c.opts.CaptionsPath)
	if err != nil {
		return "", nil, err
	}
	ed := editor.New(segs)

	for _, a := range c.opts.SetText {
		i, text, err := parseAssignment(a)
		if err != nil {
			return "", nil, err
		}
		if err := ed.SetText(i, text); err != nil {
			return "", nil, err
		}
	}
	for _, a := range c.opts.SetEmotion {
		i, name, err := parseAssignment(a)
		if err != nil {
			return "", nil, err
		}
		em, err := caption.ParseEmotion(name)
		if err != nil {
			return "", nil, err
		}
		if err := ed.SetEmotion(i, em); err != nil {
			return "", nil, err
		}
	}

	if c.opts.Nudge {
		ed.Nudge(c.opts.OffsetMs)
	} else {
		ed.SetOffset(c.opts.OffsetMs)
	}
	if ed.Offset() != 0 {
		if c.opts.Bake {
			ed.Bake()
		} else {
			c.log.WithField("offset_ms", ed.Offset()).Warn("offset not saved, pass --bake to write it into the timestamps")
		}
	}

	for _, s := range ed.Segments() {
		if err := caption.Validate(s); err != nil {
			return "", nil, err
		}
	}

	out := c.opts.OutputPath
	if out == "" {
		out = c.opts.CaptionsPath
	}
	ext := "json"
	if caption.IsYAML(out) {
		ext = filepath.Ext(out)
	}
	out = ensureOutputPath(out, ext, c.log)
	saved := ed.Segments()
	if err := caption.Save(out, saved); err != nil {
		return "", nil, err
	}
	return out, saved, nil
}
