package export

import (
	"context"

	"github.com/ZacxDev/arcadescript/internal/ffmpeg"
)

// FFmpegOpener decodes sources with ffmpeg.
type FFmpegOpener struct {
	Processor *ffmpeg.Processor
}

func (o FFmpegOpener) Open(ctx context.Context, path string, fps float64) (Source, error) {
	meta, err := o.Processor.GetVideoMetadata(path)
	if err != nil {
		return nil, err
	}
	dec, err := o.Processor.NewDecoder(ctx, path, meta, fps)
	if err != nil {
		return nil, err
	}
	return &ffmpegSource{
		dec: dec,
		info: SourceInfo{
			Width:    meta.Width,
			Height:   meta.Height,
			Duration: meta.Duration,
			HasAudio: meta.HasAudio,
		},
	}, nil
}

type ffmpegSource struct {
	dec  *ffmpeg.Decoder
	info SourceInfo
}

func (s *ffmpegSource) Info() SourceInfo { return s.info }

func (s *ffmpegSource) NextFrame() (Frame, error) {
	f, err := s.dec.NextFrame()
	if err != nil {
		return Frame{}, err
	}
	return Frame{Time: f.Time, Image: f.Image}, nil
}

func (s *ffmpegSource) Close() error { return s.dec.Close() }

// FFmpegEncoders encodes with ffmpeg, checking codec availability first.
type FFmpegEncoders struct {
	Processor *ffmpeg.Processor
	Quality   string
	// SkipCheck disables the `ffmpeg -encoders` probe.
	SkipCheck bool
}

func (f FFmpegEncoders) NewEncoder(ctx context.Context, spec EncoderSpec) (Encoder, error) {
	if !f.SkipCheck {
		if err := f.Processor.CheckEncoders(ctx, spec.Container); err != nil {
			return nil, err
		}
	}
	return f.Processor.StartEncoder(ctx, ffmpeg.EncoderConfig{
		Path:         spec.Path,
		Width:        spec.Format.Width,
		Height:       spec.Format.Height,
		FPS:          spec.FPS,
		Container:    spec.Container,
		Quality:      f.Quality,
		VideoBitrate: spec.Format.VideoBitrate,
		AudioBitrate: spec.Format.AudioBitrate,
		AudioSource:  spec.AudioSource,
	})
}
