package processor

import (
	"context"
	"os"

	"github.com/ZacxDev/arcadescript/internal/config"
	"github.com/ZacxDev/arcadescript/internal/export"
	"github.com/ZacxDev/arcadescript/internal/ffmpeg"
	"github.com/atotto/clipboard"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Exporter handles a single export run
type Exporter struct {
	opts   *config.ExportOptions
	ffmpeg *ffmpeg.Processor
	log    logrus.FieldLogger

	// opener and encoders default to ffmpeg.
	opener   export.SourceOpener
	encoders export.EncoderFactory
}

// NewExporter creates a new exporter
func NewExporter(opts *config.ExportOptions, log logrus.FieldLogger) *Exporter {
	proc := ffmpeg.NewProcessor(log)
	return &Exporter{
		opts:     opts,
		ffmpeg:   proc,
		log:      log,
		opener:   export.FFmpegOpener{Processor: proc},
		encoders: export.FFmpegEncoders{Processor: proc, Quality: opts.Quality},
	}
}

// Process renders the export and returns the finished file path. Canceling
// ctx aborts the job and removes any partial output.
func (e *Exporter) Process(ctx context.Context) (string, error) {
	if e.opts.InputPath == "" {
		return "", errors.New("input path is required")
	}
	f, err := resolveFormat(e.opts.Format)
	if err != nil {
		return "", err
	}
	th := resolveTheme(e.opts.Theme, e.log)

	ed, err := loadEditor(e.opts.CaptionsPath, e.opts.OffsetMs)
	if err != nil {
		return "", errors.Wrap(err, "loading captions")
	}

	fonts, err := loadFonts(e.opts.FontPath)
	if err != nil {
		return "", err
	}
	defer fonts.Close()

	outDir := e.opts.OutputDir
	if outDir == "" {
		outDir = "."
	}
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return "", errors.Wrap(err, "creating output directory")
	}

	broadcaster := export.NewProgressBroadcaster(e.log)
	driver := export.NewDriver(e.opener, e.encoders, export.Options{
		Product:     config.Product,
		FPS:         e.opts.FPS,
		Log:         e.log,
		Fonts:       fonts,
		Broadcaster: broadcaster,
	})

	updates := broadcaster.Subscribe()
	logged := make(chan struct{})
	go func() {
		defer close(logged)
		e.logProgress(updates)
	}()

	job, err := driver.Start(ctx, export.Request{
		SourcePath: e.opts.InputPath,
		Format:     f,
		Captions:   ed.Synced(),
		Theme:      th,
		OutputDir:  outDir,
		Container:  e.opts.Container,
	})
	if err != nil {
		broadcaster.Unsubscribe(updates)
		<-logged
		return "", err
	}

	<-job.Done()
	broadcaster.Unsubscribe(updates)
	<-logged

	if err := job.Err(); err != nil {
		return "", err
	}

	out := job.OutputPath()
	if e.opts.CopyPath {
		if err := clipboard.WriteAll(out); err != nil {
			e.log.WithError(err).Warn("could not copy output path to clipboard")
		} else {
			e.log.Debug("output path copied to clipboard")
		}
	}
	return out, nil
}

// logProgress reports each ten percent step until updates is closed.
func (e *Exporter) logProgress(updates <-chan export.ProgressUpdate) {
	next := 10
	for u := range updates {
		if u.State == export.Rendering && u.Progress >= next {
			e.log.WithField("job_id", u.JobID).Infof("rendering %d%%", u.Progress)
			next = (u.Progress/10 + 1) * 10
		}
	}
}
