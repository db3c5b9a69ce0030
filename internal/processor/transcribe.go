package processor

import (
	"context"
	"net/http"
	"path/filepath"

	"github.com/ZacxDev/arcadescript/internal/caption"
	"github.com/ZacxDev/arcadescript/internal/config"
	"github.com/ZacxDev/arcadescript/internal/ffmpeg"
	"github.com/ZacxDev/arcadescript/internal/transcript"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// TranscribeJob fetches captions for a recording and saves them as JSON.
type TranscribeJob struct {
	opts        *config.TranscribeOptions
	transcriber transcript.Transcriber
	log         logrus.FieldLogger
}

// NewTranscribeJob creates a transcription job backed by the Gemini client
func NewTranscribeJob(opts *config.TranscribeOptions, log logrus.FieldLogger) *TranscribeJob {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = config.DefaultTranscriptTimeout
	}
	return &TranscribeJob{
		opts: opts,
		transcriber: &transcript.GeminiClient{
			Endpoint:   opts.Endpoint,
			Model:      opts.Model,
			APIKey:     opts.APIKey,
			HTTPClient: &http.Client{Timeout: timeout},
			Audio:      ffmpeg.NewProcessor(log),
			Log:        log,
		},
		log: log,
	}
}

// Process writes the caption file and returns its path and the segments.
// Transcription failures yield an empty caption file, never an error.
func (j *TranscribeJob) Process(ctx context.Context) (string, []caption.Segment, error) {
	if j.opts.InputPath == "" {
		return "", nil, errors.New("input path is required")
	}
	segs := transcript.Captions(ctx, j.transcriber, j.opts.InputPath, j.log)

	out := j.opts.OutputPath
	if out == "" {
		dir := filepath.Dir(j.opts.InputPath)
		out = filepath.Join(dir, sanitizeFilename(filepath.Base(j.opts.InputPath))+".captions.json")
	}
	out = ensureOutputPath(out, "json", j.log)
	if err := caption.Save(out, segs); err != nil {
		return "", nil, err
	}
	j.log.WithFields(logrus.Fields{"segments": len(segs), "output": out}).Info("captions saved")
	return out, segs, nil
}
