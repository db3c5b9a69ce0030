package export

import (
	"context"
	"image"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/ZacxDev/arcadescript/internal/caption"
	"github.com/ZacxDev/arcadescript/internal/format"
	"github.com/ZacxDev/arcadescript/internal/geom"
	"github.com/ZacxDev/arcadescript/internal/render"
	"github.com/ZacxDev/arcadescript/internal/theme"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var tiny = format.Format{ID: "tiny", Name: "Tiny", Width: 36, Height: 64, Container: "webm"}

// fakeSource yields frames at the given times. When gate is set, NextFrame
// announces frame index gateAt on reached and waits for gate.
type fakeSource struct {
	ctx     context.Context
	info    SourceInfo
	times   []float64
	failAt  int
	gateAt  int
	gate    chan struct{}
	reached chan struct{}

	mu     sync.Mutex
	next   int
	closed bool
}

func (s *fakeSource) Info() SourceInfo { return s.info }

func (s *fakeSource) NextFrame() (Frame, error) {
	s.mu.Lock()
	i := s.next
	s.next++
	s.mu.Unlock()

	if s.gate != nil && i == s.gateAt {
		close(s.reached)
		select {
		case <-s.gate:
		case <-s.ctx.Done():
			return Frame{}, s.ctx.Err()
		}
	}
	if s.failAt > 0 && i == s.failAt {
		return Frame{}, errors.New("corrupt packet")
	}
	if i >= len(s.times) {
		return Frame{}, io.EOF
	}
	return Frame{Time: s.times[i], Image: image.NewRGBA(image.Rect(0, 0, 16, 9))}, nil
}

func (s *fakeSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *fakeSource) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

type fakeOpener struct {
	src *fakeSource
	err error
}

func (o *fakeOpener) Open(ctx context.Context, _ string, _ float64) (Source, error) {
	if o.err != nil {
		return nil, o.err
	}
	o.src.ctx = ctx
	return o.src, nil
}

type fakeEncoder struct {
	path     string
	failAt   int
	mu       sync.Mutex
	frames   int
	finished bool
	aborted  bool
}

func (e *fakeEncoder) WriteFrame(*image.RGBA) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.failAt > 0 && e.frames == e.failAt {
		return errors.New("broken pipe")
	}
	e.frames++
	return os.WriteFile(e.path, []byte("partial"), 0o644)
}

func (e *fakeEncoder) Finish() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.finished = true
	return os.WriteFile(e.path, []byte("complete"), 0o644)
}

func (e *fakeEncoder) Abort() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.aborted = true
	return nil
}

type fakeEncoders struct {
	enc  *fakeEncoder
	err  error
	spec EncoderSpec
}

func (f *fakeEncoders) NewEncoder(_ context.Context, spec EncoderSpec) (Encoder, error) {
	f.spec = spec
	if f.err != nil {
		return nil, f.err
	}
	f.enc.path = spec.Path
	return f.enc, nil
}

// nullCanvas draws nothing.
type nullCanvas struct {
	w, h int
	img  *image.RGBA
}

func (c *nullCanvas) Size() (int, int)                                  { return c.w, c.h }
func (c *nullCanvas) Clear(color.Color)                                 {}
func (c *nullCanvas) DrawImage(image.Image, geom.Rect)                  {}
func (c *nullCanvas) FillRect(geom.Rect, color.NRGBA)                   {}
func (c *nullCanvas) StrokeRect(geom.Rect, color.NRGBA, float64)        {}
func (c *nullCanvas) StrokePolyline([]geom.Point, color.NRGBA, float64) {}
func (c *nullCanvas) DrawText(render.Text)                              {}
func (c *nullCanvas) MeasureText(s, _ string, size float64) float64 {
	return float64(len(s)) * size / 2
}
func (c *nullCanvas) Image() *image.RGBA { return c.img }

func frameTimes(n int, step float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = float64(i) * step
	}
	return out
}

type harness struct {
	t        *testing.T
	dir      string
	src      *fakeSource
	opener   *fakeOpener
	enc      *fakeEncoder
	encoders *fakeEncoders
	driver   *Driver

	mu       sync.Mutex
	states   []State
	progress []int
	frames   []render.FrameInfo
}

var fixedNow = time.UnixMilli(1700000000123)

func newHarness(t *testing.T) *harness {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)

	h := &harness{
		t:   t,
		dir: t.TempDir(),
		src: &fakeSource{
			info:  SourceInfo{Width: 16, Height: 9, Duration: 3, HasAudio: true},
			times: frameTimes(30, 0.1),
		},
		enc: &fakeEncoder{},
	}
	h.opener = &fakeOpener{src: h.src}
	h.encoders = &fakeEncoders{enc: h.enc}
	h.driver = NewDriver(h.opener, h.encoders, Options{
		Log: log,
		Now: func() time.Time { return fixedNow },
		NewCanvas: func(w, hh int) render.Canvas {
			return &nullCanvas{w: w, h: hh, img: image.NewRGBA(image.Rect(0, 0, w, hh))}
		},
		Hooks: Hooks{
			OnState: func(_ *Job, s State) {
				h.mu.Lock()
				h.states = append(h.states, s)
				h.mu.Unlock()
			},
			OnProgress: func(_ *Job, p int) {
				h.mu.Lock()
				h.progress = append(h.progress, p)
				h.mu.Unlock()
			},
			OnFrame: func(_ *Job, info render.FrameInfo) {
				h.mu.Lock()
				h.frames = append(h.frames, info)
				h.mu.Unlock()
			},
		},
	})
	return h
}

func (h *harness) request(captions []caption.Segment) Request {
	return Request{
		SourcePath: "clip.webm",
		Format:     tiny,
		Captions:   captions,
		Theme:      theme.Default(),
		OutputDir:  h.dir,
	}
}

func (h *harness) run(req Request) *Job {
	h.t.Helper()
	job, err := h.driver.Start(context.Background(), req)
	if err != nil {
		h.t.Fatalf("Start: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = job.Wait(ctx)
	if !job.State().Terminal() {
		h.t.Fatalf("job did not finish: %v", job.State())
	}
	return job
}

func (h *harness) dirEntries() []string {
	h.t.Helper()
	entries, err := os.ReadDir(h.dir)
	if err != nil {
		h.t.Fatal(err)
	}
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestExportCompletes(t *testing.T) {
	h := newHarness(t)
	job := h.run(h.request([]caption.Segment{{Start: 0.45, End: 1.55, Text: "HELLO", Emotion: caption.Neutral}}))

	if err := job.Err(); err != nil {
		t.Fatalf("job failed: %v", err)
	}
	want := []State{Preparing, Rendering, Finalizing, Done}
	if len(h.states) != len(want) {
		t.Fatalf("states = %v, want %v", h.states, want)
	}
	for i := range want {
		if h.states[i] != want[i] {
			t.Fatalf("states = %v, want %v", h.states, want)
		}
	}

	for i := 1; i < len(h.progress); i++ {
		if h.progress[i] <= h.progress[i-1] {
			t.Fatalf("progress not increasing: %v", h.progress)
		}
	}
	if job.Progress() != 100 || h.progress[len(h.progress)-1] != 100 {
		t.Fatalf("final progress = %d (%v)", job.Progress(), h.progress)
	}

	wantPath := filepath.Join(h.dir, "arcadescript-tiny-1700000000123.webm")
	if job.OutputPath() != wantPath {
		t.Fatalf("OutputPath = %q, want %q", job.OutputPath(), wantPath)
	}
	data, err := os.ReadFile(wantPath)
	if err != nil || string(data) != "complete" {
		t.Fatalf("output = %q, %v", data, err)
	}
	if entries := h.dirEntries(); len(entries) != 1 {
		t.Fatalf("output dir = %v, want only the export", entries)
	}

	if h.enc.frames != 30 || !h.enc.finished || h.enc.aborted {
		t.Fatalf("encoder = %+v", h.enc)
	}
	if !h.src.isClosed() {
		t.Fatal("source not closed")
	}
	if h.encoders.spec.AudioSource != "clip.webm" || h.encoders.spec.Container != "webm" {
		t.Fatalf("encoder spec = %+v", h.encoders.spec)
	}

	captioned := 0
	for _, f := range h.frames {
		if f.HasCaption {
			captioned++
			if f.Time < 0.45 || f.Time > 1.55 {
				t.Fatalf("caption at %v outside its segment", f.Time)
			}
		}
	}
	if captioned != 11 {
		t.Fatalf("captioned frames = %d, want 11", captioned)
	}
	if h.driver.Active() != nil {
		t.Fatal("slot not released")
	}
}

func TestExportWithoutCaptions(t *testing.T) {
	h := newHarness(t)
	job := h.run(h.request([]caption.Segment{}))

	if job.State() != Done || job.Err() != nil {
		t.Fatalf("state %v err %v", job.State(), job.Err())
	}
	for _, f := range h.frames {
		if f.HasCaption {
			t.Fatalf("caption drawn at %v", f.Time)
		}
	}
	if len(h.frames) != 30 {
		t.Fatalf("rendered %d frames", len(h.frames))
	}
}

func TestExportSilentSource(t *testing.T) {
	h := newHarness(t)
	h.src.info.HasAudio = false
	h.run(h.request(nil))
	if h.encoders.spec.AudioSource != "" {
		t.Fatalf("AudioSource = %q for a silent source", h.encoders.spec.AudioSource)
	}
}

func TestContainerOverride(t *testing.T) {
	h := newHarness(t)
	req := h.request(nil)
	req.Container = "mp4"
	job := h.run(req)
	if filepath.Ext(job.OutputPath()) != ".mp4" || h.encoders.spec.Container != "mp4" {
		t.Fatalf("output %q spec %+v", job.OutputPath(), h.encoders.spec)
	}
}

func TestSecondStartRejectedWhileRendering(t *testing.T) {
	h := newHarness(t)
	h.src.gate = make(chan struct{})
	h.src.reached = make(chan struct{})
	h.src.gateAt = 5

	first, err := h.driver.Start(context.Background(), h.request(nil))
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	<-h.src.reached
	if first.State() != Rendering {
		t.Fatalf("first state = %v", first.State())
	}

	second, err := h.driver.Start(context.Background(), h.request(nil))
	if !errors.Is(err, ErrExportInProgress) || second != nil {
		t.Fatalf("second Start = %v, %v", second, err)
	}
	if first.State() != Rendering {
		t.Fatalf("first state changed to %v", first.State())
	}

	close(h.src.gate)
	if err := first.Wait(context.Background()); err != nil {
		t.Fatalf("first job: %v", err)
	}
	if first.State() != Done {
		t.Fatalf("first state = %v", first.State())
	}
}

func TestMediaAccessFailure(t *testing.T) {
	h := newHarness(t)
	h.opener.err = errors.New("no such file")
	job := h.run(h.request(nil))

	var mae *MediaAccessError
	if job.State() != Failed || !errors.As(job.Err(), &mae) || !errors.Is(job.Err(), ErrMediaAccess) {
		t.Fatalf("state %v err %v", job.State(), job.Err())
	}
	if mae.Path != "clip.webm" {
		t.Fatalf("Path = %q", mae.Path)
	}
	if entries := h.dirEntries(); len(entries) != 0 {
		t.Fatalf("output dir = %v", entries)
	}
}

func TestUnusableMedia(t *testing.T) {
	h := newHarness(t)
	h.src.info.Duration = 0
	job := h.run(h.request(nil))
	if !errors.Is(job.Err(), ErrMediaAccess) {
		t.Fatalf("err = %v", job.Err())
	}
	if !h.src.isClosed() {
		t.Fatal("source left open")
	}
}

func TestEncoderUnsupported(t *testing.T) {
	h := newHarness(t)
	h.encoders.err = errors.New("ffmpeg has no libvpx-vp9 encoder")
	job := h.run(h.request(nil))

	if job.State() != Failed || !errors.Is(job.Err(), ErrEncoderUnsupported) {
		t.Fatalf("state %v err %v", job.State(), job.Err())
	}
	if len(h.frames) != 0 {
		t.Fatalf("%d frames rendered before failing", len(h.frames))
	}
	if !h.src.isClosed() {
		t.Fatal("source left open")
	}
	if entries := h.dirEntries(); len(entries) != 0 {
		t.Fatalf("output dir = %v", entries)
	}
}

func TestFailureMidRenderTearsDown(t *testing.T) {
	tests := []struct {
		name  string
		setup func(h *harness)
	}{
		{name: "encoder write", setup: func(h *harness) { h.enc.failAt = 10 }},
		{name: "decoder", setup: func(h *harness) { h.src.failAt = 7 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			tt.setup(h)
			job := h.run(h.request(nil))

			if job.State() != Failed || job.Err() == nil {
				t.Fatalf("state %v err %v", job.State(), job.Err())
			}
			if !h.enc.aborted || h.enc.finished {
				t.Fatalf("encoder = %+v", h.enc)
			}
			if !h.src.isClosed() {
				t.Fatal("source left open")
			}
			if entries := h.dirEntries(); len(entries) != 0 {
				t.Fatalf("partial output left: %v", entries)
			}
			if job.OutputPath() != "" {
				t.Fatalf("OutputPath = %q", job.OutputPath())
			}
		})
	}
}

func TestCancelDuringRendering(t *testing.T) {
	h := newHarness(t)
	h.src.gate = make(chan struct{})
	h.src.reached = make(chan struct{})
	h.src.gateAt = 3

	job, err := h.driver.Start(context.Background(), h.request(nil))
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	<-h.src.reached
	job.Cancel()

	if job.State() != Failed || !errors.Is(job.Err(), ErrCanceled) {
		t.Fatalf("state %v err %v", job.State(), job.Err())
	}
	if !h.enc.aborted || !h.src.isClosed() {
		t.Fatalf("not torn down: encoder %+v", h.enc)
	}
	if entries := h.dirEntries(); len(entries) != 0 {
		t.Fatalf("partial output left: %v", entries)
	}

	// The slot is free again once Cancel returns.
	h.src.gate = nil
	h.src.next = 0
	h.enc.aborted = false
	h.enc.frames = 0
	next := h.run(h.request(nil))
	if next.State() != Done {
		t.Fatalf("next job: %v %v", next.State(), next.Err())
	}
}

func TestOutOfOrderFramesDropped(t *testing.T) {
	h := newHarness(t)
	h.src.times = []float64{0, 0.5, 0.2, 1.0, 1.0}
	job := h.run(h.request(nil))

	if job.State() != Done {
		t.Fatalf("state %v err %v", job.State(), job.Err())
	}
	if h.enc.frames != 4 {
		t.Fatalf("encoded %d frames, want 4", h.enc.frames)
	}
	for i := 1; i < len(h.frames); i++ {
		if h.frames[i].Time < h.frames[i-1].Time {
			t.Fatalf("frame times went backwards: %v then %v", h.frames[i-1].Time, h.frames[i].Time)
		}
	}
}

func TestCaptionSnapshot(t *testing.T) {
	h := newHarness(t)
	h.src.gate = make(chan struct{})
	h.src.reached = make(chan struct{})
	h.src.gateAt = 0

	segs := []caption.Segment{{Start: 0, End: 3, Text: "ORIGINAL", Emotion: caption.Joy}}
	job, err := h.driver.Start(context.Background(), h.request(segs))
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	<-h.src.reached
	segs[0].Text = "EDITED"
	close(h.src.gate)
	if err := job.Wait(context.Background()); err != nil {
		t.Fatal(err)
	}
	for _, f := range h.frames {
		if f.Caption.Text != "ORIGINAL" {
			t.Fatalf("frame at %v shows %q", f.Time, f.Caption.Text)
		}
	}
}

func TestStartValidation(t *testing.T) {
	h := newHarness(t)
	req := h.request(nil)
	req.SourcePath = ""
	if _, err := h.driver.Start(context.Background(), req); err == nil {
		t.Fatal("expected error for empty source")
	}
	req = h.request(nil)
	req.Format = format.Format{ID: "broken"}
	if _, err := h.driver.Start(context.Background(), req); err == nil {
		t.Fatal("expected error for zero-sized format")
	}
	req = h.request([]caption.Segment{{Start: 0, End: 1, Text: " \t ", Emotion: caption.Joy}})
	if _, err := h.driver.Start(context.Background(), req); !errors.Is(err, caption.ErrEmptyText) {
		t.Fatalf("blank caption err = %v, want ErrEmptyText", err)
	}
	if h.driver.Active() != nil {
		t.Fatal("rejected request took the job slot")
	}
}

func TestProgress(t *testing.T) {
	tests := []struct {
		t, d float64
		want int
	}{
		{0, 10, 0},
		{0.99, 10, 9},
		{5, 10, 50},
		{10, 10, 100},
		{12, 10, 100},
		{-1, 10, 0},
		{1, 0, 0},
	}
	for _, tt := range tests {
		if got := Progress(tt.t, tt.d); got != tt.want {
			t.Errorf("Progress(%v, %v) = %d, want %d", tt.t, tt.d, got, tt.want)
		}
	}
}

func TestOutputName(t *testing.T) {
	got := OutputName("arcadescript", "story", fixedNow, "webm")
	if ok, _ := regexp.MatchString(`^arcadescript-story-\d+\.webm$`, got); !ok || got != "arcadescript-story-1700000000123.webm" {
		t.Fatalf("OutputName = %q", got)
	}
}

func TestStateString(t *testing.T) {
	if Rendering.String() != "rendering" || State(42).String() != "unknown" {
		t.Fatal("unexpected state names")
	}
	if !Done.Terminal() || !Failed.Terminal() || Rendering.Terminal() {
		t.Fatal("unexpected Terminal()")
	}
}
