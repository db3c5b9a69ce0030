// Package export runs the offline render of a source file into a finished
// video: decode, composite every frame, encode with the source audio.
package export

import (
	"context"
	"fmt"
	"io"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/ZacxDev/arcadescript/internal/caption"
	"github.com/ZacxDev/arcadescript/internal/ffmpeg"
	"github.com/ZacxDev/arcadescript/internal/format"
	"github.com/ZacxDev/arcadescript/internal/numeric"
	"github.com/ZacxDev/arcadescript/internal/render"
	"github.com/ZacxDev/arcadescript/internal/theme"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	DefaultProduct = "arcadescript"
	DefaultFPS     = 30.0
)

// Request asks for one export.
type Request struct {
	SourcePath string
	Format     format.Format
	// Captions must already carry the sync offset.
	Captions []caption.Segment
	Theme    theme.Theme
	// OutputDir receives the finished file.
	OutputDir string
	// Container overrides Format.Container when set.
	Container string
}

// Hooks observe job transitions. They run on the job goroutine and must not
// block.
type Hooks struct {
	OnState    func(j *Job, s State)
	OnProgress func(j *Job, percent int)
	// OnFrame sees each composited frame before it is encoded.
	OnFrame func(j *Job, info render.FrameInfo)
}

// Options configure a Driver. Zero values pick defaults.
type Options struct {
	Product     string
	FPS         float64
	Log         logrus.FieldLogger
	Hooks       Hooks
	Broadcaster *ProgressBroadcaster
	// Fonts resolve theme font families on the default RGBA canvas. Nil
	// loads the embedded faces on first use.
	Fonts *render.FontBook
	// NewCanvas replaces the default RGBA canvas.
	NewCanvas func(w, h int) render.Canvas
	Rand      *rand.Rand
	Now       func() time.Time
}

// Driver runs at most one export job at a time.
type Driver struct {
	opener   SourceOpener
	encoders EncoderFactory
	opts     Options
	log      logrus.FieldLogger

	mu     sync.Mutex
	active *Job

	fontsOnce sync.Once
	fontsErr  error
}

func (d *Driver) fonts() (*render.FontBook, error) {
	d.fontsOnce.Do(func() {
		if d.opts.Fonts == nil {
			d.opts.Fonts, d.fontsErr = render.NewFontBook()
			d.fontsErr = errors.Wrap(d.fontsErr, "loading caption fonts")
		}
	})
	return d.opts.Fonts, d.fontsErr
}

// NewDriver returns a driver that opens sources with opener and encodes with
// encoders.
func NewDriver(opener SourceOpener, encoders EncoderFactory, opts Options) *Driver {
	if opts.Product == "" {
		opts.Product = DefaultProduct
	}
	if opts.FPS <= 0 {
		opts.FPS = DefaultFPS
	}
	if opts.Log == nil {
		opts.Log = logrus.StandardLogger()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Driver{opener: opener, encoders: encoders, opts: opts, log: opts.Log}
}

// Active returns the running job, or nil.
func (d *Driver) Active() *Job {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.active
}

// Start launches an export in the background. It fails with
// ErrExportInProgress while another job has not finished its teardown.
func (d *Driver) Start(ctx context.Context, req Request) (*Job, error) {
	if req.SourcePath == "" {
		return nil, errors.New("source path is required")
	}
	if req.Format.Width <= 0 || req.Format.Height <= 0 {
		return nil, errors.Errorf("invalid format %q", req.Format.ID)
	}
	for i, s := range req.Captions {
		if err := caption.Validate(s); err != nil {
			return nil, errors.Wrapf(err, "caption %d", i)
		}
	}
	container := req.Container
	if container == "" {
		container = req.Format.Container
	}
	if req.OutputDir == "" {
		req.OutputDir = "."
	}

	d.mu.Lock()
	if d.active != nil {
		d.mu.Unlock()
		return nil, ErrExportInProgress
	}

	jobCtx, cancel := context.WithCancel(ctx)
	job := &Job{
		ID:         uuid.NewString(),
		SourcePath: req.SourcePath,
		Format:     req.Format,
		Container:  container,
		Captions:   caption.Clone(req.Captions),
		Theme:      req.Theme,
		state:      Idle,
		cancel:     cancel,
		done:       make(chan struct{}),
	}
	d.active = job
	d.mu.Unlock()

	d.setState(job, Preparing, nil)

	go d.run(jobCtx, job, req.OutputDir)
	return job, nil
}

func (d *Driver) run(ctx context.Context, job *Job, outDir string) {
	log := d.log.WithFields(logrus.Fields{"job_id": job.ID, "format": job.Format.ID})
	r := &runner{d: d, job: job, log: log, outDir: outDir}

	err := r.execute(ctx)
	if err != nil {
		if ctx.Err() != nil && !errors.Is(err, ErrCanceled) {
			err = errors.Wrap(ErrCanceled, err.Error())
		}
		r.teardown()
		log.WithError(err).Warn("export failed")
	}
	job.cancel()

	d.mu.Lock()
	if d.active == job {
		d.active = nil
	}
	d.mu.Unlock()

	if err != nil {
		d.setState(job, Failed, err)
	} else {
		d.setState(job, Done, nil)
	}
	close(job.done)
}

func (d *Driver) setState(job *Job, s State, err error) {
	job.mu.Lock()
	job.state = s
	job.err = err
	progress := job.progress
	job.mu.Unlock()

	d.log.WithFields(logrus.Fields{"job_id": job.ID, "state": s}).Debug("export state")
	if d.opts.Hooks.OnState != nil {
		d.opts.Hooks.OnState(job, s)
	}
	if d.opts.Broadcaster != nil {
		d.opts.Broadcaster.Broadcast(ProgressUpdate{JobID: job.ID, State: s, Progress: progress, Err: err})
	}
}

// setProgress records percent if it advances the job.
func (d *Driver) setProgress(job *Job, percent int) {
	job.mu.Lock()
	if percent <= job.progress {
		job.mu.Unlock()
		return
	}
	job.progress = percent
	state := job.state
	job.mu.Unlock()

	if d.opts.Hooks.OnProgress != nil {
		d.opts.Hooks.OnProgress(job, percent)
	}
	if d.opts.Broadcaster != nil {
		d.opts.Broadcaster.Broadcast(ProgressUpdate{JobID: job.ID, State: state, Progress: percent})
	}
}

// Progress maps media time to a whole percentage of duration.
func Progress(t, duration float64) int {
	if duration <= 0 {
		return 0
	}
	return numeric.Clamp(int(math.Floor(100*t/duration)), 0, 100)
}

// OutputName is the final file name of an export.
func OutputName(product, formatID string, at time.Time, container string) string {
	return fmt.Sprintf("%s-%s-%d%s", product, formatID, at.UnixMilli(),
		ffmpeg.GetCodecSettings(container).FileExtension)
}

// runner holds the resources a job acquires, so any failure can release
// exactly what was taken.
type runner struct {
	d      *Driver
	job    *Job
	log    logrus.FieldLogger
	outDir string

	src      Source
	enc      Encoder
	tmpPath  string
	finished bool
}

func (r *runner) execute(ctx context.Context) error {
	job, d := r.job, r.d

	src, err := d.opener.Open(ctx, job.SourcePath, d.opts.FPS)
	if err != nil {
		return &MediaAccessError{Path: job.SourcePath, Err: err}
	}
	r.src = src
	info := src.Info()
	if info.Width <= 0 || info.Height <= 0 || info.Duration <= 0 || math.IsInf(info.Duration, 0) || math.IsNaN(info.Duration) {
		return &MediaAccessError{
			Path: job.SourcePath,
			Err:  errors.Errorf("unusable media %dx%d, %vs", info.Width, info.Height, info.Duration),
		}
	}

	tmp, err := os.CreateTemp(r.outDir, "."+d.opts.Product+"-*.part")
	if err != nil {
		return errors.Wrap(err, "creating temporary output")
	}
	r.tmpPath = tmp.Name()
	if err := tmp.Close(); err != nil {
		return errors.WithStack(err)
	}

	canvas, err := r.newCanvas()
	if err != nil {
		return err
	}

	spec := EncoderSpec{Path: r.tmpPath, Format: job.Format, Container: job.Container, FPS: d.opts.FPS}
	if info.HasAudio {
		spec.AudioSource = job.SourcePath
	}
	enc, err := d.encoders.NewEncoder(ctx, spec)
	if err != nil {
		return &EncoderUnsupportedError{Container: job.Container, Err: err}
	}
	r.enc = enc

	var copts []render.Option
	if d.opts.Rand != nil {
		copts = append(copts, render.WithRand(d.opts.Rand))
	}
	comp := render.NewCompositor(render.Scene{
		Duration: info.Duration,
		Captions: job.Captions,
		Theme:    job.Theme,
	}, copts...)

	r.log.WithFields(logrus.Fields{
		"source":   fmt.Sprintf("%dx%d", info.Width, info.Height),
		"duration": info.Duration,
		"captions": len(job.Captions),
	}).Info("rendering export")
	d.setState(job, Rendering, nil)

	if err := r.render(ctx, comp, canvas, info.Duration); err != nil {
		return err
	}

	d.setState(job, Finalizing, nil)
	if err := enc.Finish(); err != nil {
		return errors.Wrap(err, "finalizing output")
	}
	r.finished = true
	if err := src.Close(); err != nil {
		r.log.WithError(err).Debug("closing source")
	}
	r.src = nil

	final := filepath.Join(r.outDir, OutputName(d.opts.Product, job.Format.ID, d.opts.Now(), job.Container))
	if err := os.Rename(r.tmpPath, final); err != nil {
		return errors.Wrap(err, "moving output into place")
	}
	r.tmpPath = ""

	job.mu.Lock()
	job.outputPath = final
	job.mu.Unlock()
	d.setProgress(job, 100)
	r.log.WithField("output", final).Info("export complete")
	return nil
}

func (r *runner) newCanvas() (render.Canvas, error) {
	w, h := r.job.Format.Width, r.job.Format.Height
	if r.d.opts.NewCanvas != nil {
		return r.d.opts.NewCanvas(w, h), nil
	}
	fonts, err := r.d.fonts()
	if err != nil {
		return nil, err
	}
	return render.NewRGBACanvas(w, h, fonts), nil
}

func (r *runner) render(ctx context.Context, comp *render.Compositor, canvas render.Canvas, duration float64) error {
	last := math.Inf(-1)
	for {
		if ctx.Err() != nil {
			return ErrCanceled
		}
		frame, err := r.src.NextFrame()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return errors.Wrap(err, "decoding source")
		}
		if frame.Time < last {
			r.log.WithFields(logrus.Fields{"time": frame.Time, "last": last}).Warn("dropping out-of-order frame")
			continue
		}
		last = frame.Time

		info := comp.Render(canvas, frame.Image, frame.Time)
		if r.d.opts.Hooks.OnFrame != nil {
			r.d.opts.Hooks.OnFrame(r.job, info)
		}
		if err := r.enc.WriteFrame(canvas.Image()); err != nil {
			return errors.Wrap(err, "encoding frame")
		}
		r.d.setProgress(r.job, Progress(frame.Time, duration))
	}
}

// teardown releases whatever execute acquired. No partial output survives.
func (r *runner) teardown() {
	if r.enc != nil && !r.finished {
		if err := r.enc.Abort(); err != nil {
			r.log.WithError(err).Debug("aborting encoder")
		}
	}
	if r.src != nil {
		if err := r.src.Close(); err != nil {
			r.log.WithError(err).Debug("closing source")
		}
	}
	if r.tmpPath != "" {
		if err := os.Remove(r.tmpPath); err != nil && !os.IsNotExist(err) {
			r.log.WithError(err).Warn("removing partial output")
		}
	}
}
