// Package transcript fetches emotion-tagged caption segments for a recording
// from a remote model.
package transcript

import (
	"context"
	"fmt"

	"github.com/ZacxDev/arcadescript/internal/caption"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// ErrEmpty means the service found no speech.
var ErrEmpty = errors.New("no speech detected")

// ServiceError is a failed call to the transcript service.
type ServiceError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *ServiceError) Error() string {
	switch {
	case e.StatusCode != 0:
		return fmt.Sprintf("transcript service returned %d: %s", e.StatusCode, e.Message)
	case e.Err != nil:
		return fmt.Sprintf("transcript service: %v", e.Err)
	default:
		return "transcript service: " + e.Message
	}
}

func (e *ServiceError) Unwrap() error { return e.Err }

// Transcriber produces caption segments for a media file. It returns
// ErrEmpty with an empty slice when no speech is found.
type Transcriber interface {
	Transcribe(ctx context.Context, mediaPath string) ([]caption.Segment, error)
}

// Captions transcribes mediaPath and never fails: any error is logged and
// yields no captions, so a recording is usable without them.
func Captions(ctx context.Context, t Transcriber, mediaPath string, log logrus.FieldLogger) []caption.Segment {
	segs, err := t.Transcribe(ctx, mediaPath)
	switch {
	case errors.Is(err, ErrEmpty):
		log.WithField("media", mediaPath).Warn("no speech detected, continuing without captions")
		return []caption.Segment{}
	case err != nil:
		log.WithError(err).WithField("media", mediaPath).Warn("transcription failed, continuing without captions")
		return []caption.Segment{}
	case len(segs) == 0:
		log.WithField("media", mediaPath).Warn("no speech detected, continuing without captions")
		return []caption.Segment{}
	}
	return segs
}
