package ffmpeg

import (
	"context"
	"image"
	"io"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// Frame is one decoded video frame. Time is media time: Index / fps.
type Frame struct {
	Index int
	Time  float64
	Image *image.RGBA
}

// Decoder streams constant-rate RGBA frames out of a media file.
type Decoder struct {
	proc   *process
	out    io.ReadCloser
	fps    float64
	width  int
	height int
	index  int
	frame  *image.RGBA
	log    logrus.FieldLogger
}

// NewDecoder starts decoding path at fps frames per second. meta supplies
// the display dimensions of the decoded frames.
func (p *Processor) NewDecoder(ctx context.Context, path string, meta *VideoMetadata, fps float64) (*Decoder, error) {
	if fps <= 0 {
		return nil, errors.Errorf("invalid frame rate %v", fps)
	}
	cmd := ffmpeg.Input(path).
		Output("pipe:", ffmpeg.KwArgs{
			"format":  "rawvideo",
			"pix_fmt": "rgba",
			"r":       fps,
			"an":      nil,
		}).
		Compile()

	out, err := cmd.StdoutPipe()
	if err != nil {
		return nil, errors.WithStack(err)
	}
	proc, err := startProcess(ctx, cmd)
	if err != nil {
		return nil, err
	}
	p.log.WithFields(logrus.Fields{"path": path, "fps": fps}).Debug("decoder started")

	return &Decoder{
		proc:   proc,
		out:    out,
		fps:    fps,
		width:  meta.Width,
		height: meta.Height,
		frame:  image.NewRGBA(image.Rect(0, 0, meta.Width, meta.Height)),
		log:    p.log,
	}, nil
}

// NextFrame returns the next frame or io.EOF at the end of the media. The
// returned image is reused by the following call.
func (d *Decoder) NextFrame() (Frame, error) {
	_, err := io.ReadFull(d.out, d.frame.Pix)
	switch {
	case err == io.EOF:
		if werr := d.proc.wait(); werr != nil {
			return Frame{}, errors.Wrap(werr, "decoder failed")
		}
		return Frame{}, io.EOF
	case err == io.ErrUnexpectedEOF:
		werr := d.proc.wait()
		if werr == nil {
			werr = errors.New("truncated frame")
		}
		return Frame{}, errors.Wrap(werr, "decoder failed")
	case err != nil:
		return Frame{}, errors.Wrap(err, "reading decoded frame")
	}
	f := Frame{Index: d.index, Time: float64(d.index) / d.fps, Image: d.frame}
	d.index++
	return f, nil
}

// Size returns the decoded frame dimensions.
func (d *Decoder) Size() (int, int) { return d.width, d.height }

// Close stops the decoder. It is safe to call more than once.
func (d *Decoder) Close() error {
	d.proc.kill()
	_ = d.out.Close()
	_ = d.proc.wait()
	return nil
}
