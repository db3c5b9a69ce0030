package ffmpeg

import (
	"context"
	"fmt"
	"image"
	"io"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// EncoderConfig describes one encode: raw frames in, a finished file out.
type EncoderConfig struct {
	Path         string
	Width        int
	Height       int
	FPS          float64
	Container    string
	Quality      string
	VideoBitrate string
	AudioBitrate string
	// AudioSource is muxed in as the audio track. Empty means silent output.
	AudioSource string
}

// Encoder receives composited frames over a pipe and writes the output file.
// Writes block while ffmpeg is busy.
type Encoder struct {
	proc   *process
	in     io.WriteCloser
	width  int
	height int
	frames int
	log    logrus.FieldLogger
}

// streams builds the ffmpeg graph for cfg.
func (cfg EncoderConfig) streams() *ffmpeg.Stream {
	settings := GetCodecSettings(cfg.Container)

	video := ffmpeg.Input("pipe:", ffmpeg.KwArgs{
		"format":    "rawvideo",
		"pix_fmt":   "rgba",
		"s":         fmt.Sprintf("%dx%d", cfg.Width, cfg.Height),
		"framerate": cfg.FPS,
	})
	inputs := []*ffmpeg.Stream{video}
	if cfg.AudioSource != "" {
		inputs = append(inputs, ffmpeg.Input(cfg.AudioSource).Audio())
	}

	kwargs := ffmpeg.KwArgs{
		"format":  settings.ContainerFormat,
		"c:v":     settings.VideoCodec,
		"pix_fmt": "yuv420p",
		"threads": GetOptimalThreadCount(),
	}
	if cfg.VideoBitrate != "" {
		kwargs["b:v"] = cfg.VideoBitrate
	}
	if cfg.AudioSource != "" {
		kwargs["c:a"] = settings.AudioCodec
		kwargs["shortest"] = nil
		if cfg.AudioBitrate != "" {
			kwargs["b:a"] = cfg.AudioBitrate
		}
	}
	quality := cfg.Quality
	if quality == "" {
		quality = "balanced"
	}
	for k, v := range settings.EncoderPresets[quality] {
		kwargs[k] = v
	}

	return ffmpeg.Output(inputs, cfg.Path, kwargs).OverWriteOutput()
}

// StartEncoder launches ffmpeg for cfg. The process is killed if ctx ends.
func (p *Processor) StartEncoder(ctx context.Context, cfg EncoderConfig) (*Encoder, error) {
	if cfg.Width <= 0 || cfg.Height <= 0 || cfg.FPS <= 0 {
		return nil, errors.Errorf("invalid encoder geometry %dx%d@%v", cfg.Width, cfg.Height, cfg.FPS)
	}
	cmd := cfg.streams().Compile()
	in, err := cmd.StdinPipe()
	if err != nil {
		return nil, errors.WithStack(err)
	}
	proc, err := startProcess(ctx, cmd)
	if err != nil {
		return nil, err
	}
	p.log.WithFields(logrus.Fields{
		"path":      cfg.Path,
		"container": cfg.Container,
		"size":      fmt.Sprintf("%dx%d", cfg.Width, cfg.Height),
		"audio":     cfg.AudioSource != "",
	}).Debug("encoder started")

	return &Encoder{proc: proc, in: in, width: cfg.Width, height: cfg.Height, log: p.log}, nil
}

// WriteFrame sends one frame. img must match the encoder's dimensions.
func (e *Encoder) WriteFrame(img *image.RGBA) error {
	b := img.Bounds()
	if b.Dx() != e.width || b.Dy() != e.height {
		return errors.Errorf("frame is %dx%d, encoder expects %dx%d", b.Dx(), b.Dy(), e.width, e.height)
	}
	if img.Stride == 4*e.width {
		if _, err := e.in.Write(img.Pix[:4*e.width*e.height]); err != nil {
			return e.writeErr(err)
		}
	} else {
		for y := 0; y < e.height; y++ {
			row := img.Pix[y*img.Stride : y*img.Stride+4*e.width]
			if _, err := e.in.Write(row); err != nil {
				return e.writeErr(err)
			}
		}
	}
	e.frames++
	return nil
}

func (e *Encoder) writeErr(err error) error {
	if tail := e.proc.stderr.String(); tail != "" {
		return errors.Wrapf(err, "writing frame (ffmpeg: %s)", lastLine(tail))
	}
	return errors.Wrap(err, "writing frame")
}

// Finish closes the frame stream and waits for ffmpeg to write the file.
func (e *Encoder) Finish() error {
	if err := e.in.Close(); err != nil {
		return errors.Wrap(err, "closing encoder input")
	}
	if err := e.proc.wait(); err != nil {
		return errors.Wrap(err, "encoder failed")
	}
	e.log.WithField("frames", e.frames).Debug("encoder finished")
	return nil
}

// Abort kills ffmpeg. The partially written file is left for the caller.
func (e *Encoder) Abort() error {
	e.proc.kill()
	_ = e.in.Close()
	_ = e.proc.wait()
	return nil
}
