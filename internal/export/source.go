package export

import (
	"context"
	"image"

	"github.com/ZacxDev/arcadescript/internal/format"
)

// SourceInfo is the probed shape of a source media file.
type SourceInfo struct {
	Width    int
	Height   int
	Duration float64
	HasAudio bool
}

// Frame is one decoded source frame at media time Time.
type Frame struct {
	Time  float64
	Image image.Image
}

// Source yields frames in playback order. NextFrame returns io.EOF at the
// end of the media.
type Source interface {
	Info() SourceInfo
	NextFrame() (Frame, error)
	Close() error
}

// SourceOpener opens a source for decoding at fps frames per second.
type SourceOpener interface {
	Open(ctx context.Context, path string, fps float64) (Source, error)
}

// EncoderSpec describes the file an Encoder must produce.
type EncoderSpec struct {
	Path      string
	Format    format.Format
	Container string
	FPS       float64
	// AudioSource is the media whose audio track is muxed in, or empty.
	AudioSource string
}

// Encoder consumes composited frames. Finish flushes and completes the file;
// Abort stops without completing it.
type Encoder interface {
	WriteFrame(img *image.RGBA) error
	Finish() error
	Abort() error
}

// EncoderFactory starts encoders.
type EncoderFactory interface {
	NewEncoder(ctx context.Context, spec EncoderSpec) (Encoder, error)
}
