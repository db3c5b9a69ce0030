package ffmpeg

import (
	"bytes"
	"image"
	"image/png"

	"github.com/pkg/errors"
	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// GrabFrame decodes the single frame shown at time t seconds.
func (p *Processor) GrabFrame(path string, t float64) (image.Image, error) {
	if t < 0 {
		t = 0
	}
	buf := &bytes.Buffer{}
	stderr := &tailBuffer{}
	err := ffmpeg.Input(path, ffmpeg.KwArgs{"ss": t}).
		Output("pipe:", ffmpeg.KwArgs{
			"vframes": 1,
			"format":  "image2",
			"vcodec":  "png",
		}).
		WithOutput(buf).
		WithErrorOutput(stderr).
		Run()
	if err != nil {
		return nil, errors.Wrapf(err, "grabbing frame at %.3fs: %s", t, lastLine(stderr.String()))
	}
	if buf.Len() == 0 {
		return nil, errors.Errorf("no frame at %.3fs", t)
	}
	img, err := png.Decode(buf)
	if err != nil {
		return nil, errors.Wrap(err, "decoding grabbed frame")
	}
	return img, nil
}

// ExtractAudio returns the audio track of path as Opus in WebM, the upload
// format of the transcript service.
func (p *Processor) ExtractAudio(path string) ([]byte, string, error) {
	buf := &bytes.Buffer{}
	stderr := &tailBuffer{}
	err := ffmpeg.Input(path).
		Output("pipe:", ffmpeg.KwArgs{
			"vn":     nil,
			"c:a":    "libopus",
			"b:a":    "32k",
			"ac":     1,
			"format": "webm",
		}).
		WithOutput(buf).
		WithErrorOutput(stderr).
		Run()
	if err != nil {
		return nil, "", errors.Wrapf(err, "extracting audio: %s", lastLine(stderr.String()))
	}
	p.log.WithField("bytes", buf.Len()).Debug("audio extracted")
	return buf.Bytes(), "audio/webm", nil
}
