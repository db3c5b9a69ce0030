// Package videoprocessor is the public entry point: export captioned videos,
// preview single frames, transcribe recordings and edit caption files.
package videoprocessor

import (
	"context"

	"github.com/ZacxDev/arcadescript/internal/caption"
	"github.com/ZacxDev/arcadescript/internal/config"
	"github.com/ZacxDev/arcadescript/internal/format"
	"github.com/ZacxDev/arcadescript/internal/processor"
	"github.com/ZacxDev/arcadescript/internal/render"
	"github.com/ZacxDev/arcadescript/internal/theme"
	"github.com/ZacxDev/arcadescript/pkg/types"
	"github.com/sirupsen/logrus"
)

type (
	ExportOptions     = config.ExportOptions
	PreviewOptions    = config.PreviewOptions
	TranscribeOptions = config.TranscribeOptions
	EditOptions       = config.EditOptions

	// Caption is one timed, emotion-tagged caption.
	Caption = caption.Segment
	// FrameInfo describes what a preview frame shows.
	FrameInfo = render.FrameInfo
)

// Export renders a captioned video and returns the output path.
func Export(ctx context.Context, opts *ExportOptions, log logrus.FieldLogger) (string, error) {
	return processor.NewExporter(opts, orDefault(log)).Process(ctx)
}

// Preview writes the composited frame at opts.Time as a PNG.
func Preview(opts *PreviewOptions, log logrus.FieldLogger) (string, FrameInfo, error) {
	return processor.NewPreviewer(opts, orDefault(log)).Process()
}

// Transcribe fetches captions for a recording and saves them. A failed or
// empty transcription saves an empty caption list.
func Transcribe(ctx context.Context, opts *TranscribeOptions, log logrus.FieldLogger) (string, []Caption, error) {
	return processor.NewTranscribeJob(opts, orDefault(log)).Process(ctx)
}

// EditCaptions applies text, emotion and offset edits to a caption file.
func EditCaptions(opts *EditOptions, log logrus.FieldLogger) (string, []Caption, error) {
	return processor.NewCaptionEditor(opts, orDefault(log)).Process()
}

// GetSupportedFormats returns the export format ids in display order
func GetSupportedFormats() []string {
	return processor.GetSupportedFormats()
}

// Formats describes every export format.
func Formats() []types.ExportFormatInfo {
	all := format.All()
	out := make([]types.ExportFormatInfo, len(all))
	for i, f := range all {
		out[i] = types.ExportFormatInfo{
			ID:        f.ID,
			Name:      f.Name,
			Width:     f.Width,
			Height:    f.Height,
			Label:     f.Label,
			Container: f.Container,
		}
	}
	return out
}

// Themes describes every theme; the first is the default.
func Themes() []types.ThemeInfo {
	all := theme.All()
	out := make([]types.ThemeInfo, len(all))
	for i, th := range all {
		out[i] = types.ThemeInfo{
			ID:          th.ID,
			Name:        th.Name,
			Description: th.Description,
			Primary:     th.Colors.Primary,
			Accent:      th.Colors.Accent,
			Default:     i == 0,
		}
	}
	return out
}

func orDefault(log logrus.FieldLogger) logrus.FieldLogger {
	if log == nil {
		return logrus.StandardLogger()
	}
	return log
}
