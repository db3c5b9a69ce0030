package processor

import (
	"context"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ZacxDev/arcadescript/internal/caption"
	"github.com/ZacxDev/arcadescript/internal/config"
	"github.com/ZacxDev/arcadescript/internal/export"
	"github.com/ZacxDev/arcadescript/internal/ffmpeg"
	"github.com/ZacxDev/arcadescript/internal/theme"
	"github.com/ZacxDev/arcadescript/internal/transcript"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

func quiet() logrus.FieldLogger {
	log, _ := test.NewNullLogger()
	return log
}

func writeCaptions(t *testing.T, segs []caption.Segment) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "captions.json")
	if err := caption.Save(path, segs); err != nil {
		t.Fatal(err)
	}
	return path
}

func sampleCaptions() []caption.Segment {
	return []caption.Segment{
		{Start: 0, End: 1, Text: "HELLO", Emotion: caption.Neutral},
		{Start: 1, End: 2, Text: "GO GO GO", Emotion: caption.Hype},
	}
}

func TestParseAssignment(t *testing.T) {
	i, v, err := parseAssignment("2=HELLO = WORLD")
	if err != nil || i != 2 || v != "HELLO = WORLD" {
		t.Fatalf("got %d %q %v", i, v, err)
	}
	for _, bad := range []string{"HELLO", "x=HELLO", "=1"} {
		if _, _, err := parseAssignment(bad); err == nil {
			t.Errorf("parseAssignment(%q) succeeded", bad)
		}
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := map[string]string{
		"my take (1).webm": "my_take_1",
		"clip.mp4":         "clip",
		"***.mov":          "captions",
	}
	for in, want := range tests {
		if got := sanitizeFilename(in); got != want {
			t.Errorf("sanitizeFilename(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestResolveFormat(t *testing.T) {
	if f, err := resolveFormat(""); err != nil || f.ID != "story" {
		t.Fatalf("default = %+v, %v", f, err)
	}
	if f, err := resolveFormat("SQUARE"); err != nil || f.ID != "square" {
		t.Fatalf("square = %+v, %v", f, err)
	}
	if _, err := resolveFormat("cinema"); err == nil || !strings.Contains(err.Error(), "story") {
		t.Fatalf("unknown format err = %v", err)
	}
}

func TestResolveThemeFallsBack(t *testing.T) {
	log, hook := test.NewNullLogger()
	if th := resolveTheme("iori", log); th.ID != "iori" {
		t.Fatalf("theme = %q", th.ID)
	}
	if th := resolveTheme("ryu", log); th.ID != theme.Default().ID {
		t.Fatalf("fallback theme = %q", th.ID)
	}
	if hook.LastEntry() == nil || hook.LastEntry().Level != logrus.WarnLevel {
		t.Fatal("expected a warning for the unknown theme")
	}
}

func TestEditAppliesAndBakes(t *testing.T) {
	in := writeCaptions(t, sampleCaptions())
	out := filepath.Join(t.TempDir(), "edited.json")

	path, saved, err := NewCaptionEditor(&config.EditOptions{
		CaptionsPath: in,
		OutputPath:   out,
		SetText:      []string{"0=HEY"},
		SetEmotion:   []string{"1=ANGER"},
		OffsetMs:     500,
		Bake:         true,
	}, quiet()).Process()
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if path != out {
		t.Fatalf("path = %q", path)
	}
	if saved[0].Text != "HEY" || saved[1].Emotion != caption.Anger || saved[0].Start != 0.5 || saved[1].End != 2.5 {
		t.Fatalf("saved = %+v", saved)
	}
	reloaded, err := caption.Load(out)
	if err != nil || len(reloaded) != 2 || reloaded[0].Text != "HEY" {
		t.Fatalf("reloaded = %+v, %v", reloaded, err)
	}
}

func TestEditKeepsYAML(t *testing.T) {
	in := filepath.Join(t.TempDir(), "clip.yaml")
	if err := caption.Save(in, sampleCaptions()); err != nil {
		t.Fatal(err)
	}

	path, _, err := NewCaptionEditor(&config.EditOptions{
		CaptionsPath: in,
		SetText:      []string{"1=YAML"},
	}, quiet()).Process()
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if path != in {
		t.Fatalf("path = %q, want %q", path, in)
	}
	reloaded, err := caption.Load(in)
	if err != nil || reloaded[1].Text != "YAML" {
		t.Fatalf("reloaded = %+v, %v", reloaded, err)
	}
}

func TestEditAllOrNothing(t *testing.T) {
	in := writeCaptions(t, sampleCaptions())
	before, _ := os.ReadFile(in)

	tests := []config.EditOptions{
		{SetText: []string{"0=OK", "5=NOPE"}},
		{SetText: []string{"0=   "}},
		{SetEmotion: []string{"1=furious"}},
		{SetText: []string{"zero=HI"}},
	}
	for _, opts := range tests {
		opts := opts
		opts.CaptionsPath = in
		_, _, err := NewCaptionEditor(&opts, quiet()).Process()
		if err == nil {
			t.Fatalf("edit %+v succeeded", opts)
		}
		after, _ := os.ReadFile(in)
		if string(after) != string(before) {
			t.Fatalf("file changed by failed edit %+v", opts)
		}
	}

	_, _, err := NewCaptionEditor(&config.EditOptions{CaptionsPath: in, SetText: []string{"9=X"}}, quiet()).Process()
	if !errors.Is(err, caption.ErrOutOfRange) {
		t.Fatalf("err = %v, want ErrOutOfRange", err)
	}
}

func TestEditNudgeClamps(t *testing.T) {
	in := writeCaptions(t, sampleCaptions())
	_, saved, err := NewCaptionEditor(&config.EditOptions{
		CaptionsPath: in,
		OffsetMs:     5000,
		Nudge:        true,
		Bake:         true,
	}, quiet()).Process()
	if err != nil {
		t.Fatal(err)
	}
	if saved[0].Start != 2 {
		t.Fatalf("start = %v, want the 2000ms clamp", saved[0].Start)
	}
}

type fakeGrabber struct {
	duration float64
	frame    image.Image
	grabbedT float64
}

func (f *fakeGrabber) GetVideoMetadata(string) (*ffmpeg.VideoMetadata, error) {
	b := f.frame.Bounds()
	return &ffmpeg.VideoMetadata{Duration: f.duration, Width: b.Dx(), Height: b.Dy()}, nil
}

func (f *fakeGrabber) GrabFrame(_ string, t float64) (image.Image, error) {
	f.grabbedT = t
	return f.frame, nil
}

func solid(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	return img
}

func TestPreviewMatchesSyncedCaptions(t *testing.T) {
	in := writeCaptions(t, sampleCaptions())
	out := filepath.Join(t.TempDir(), "frame")
	grabber := &fakeGrabber{duration: 10, frame: solid(32, 18, color.RGBA{G: 0xff, A: 0xff})}

	p := NewPreviewer(&config.PreviewOptions{
		InputPath:    "take.webm",
		CaptionsPath: in,
		Time:         1.6,
		Format:       "square",
		OffsetMs:     500,
		OutputPath:   out,
	}, quiet())
	p.grabber = grabber

	path, info, err := p.Process()
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if path != out+".png" || grabber.grabbedT != 1.6 {
		t.Fatalf("path %q grabbed at %v", path, grabber.grabbedT)
	}
	if !info.HasCaption || info.Caption.Text != "GO GO GO" {
		t.Fatalf("info = %+v", info)
	}

	file, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer file.Close()
	img, err := png.Decode(file)
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 1080 || b.Dy() != 1080 {
		t.Fatalf("preview is %v", b)
	}
	// A corner far from every overlay shows the cover-fitted source.
	if r, g, b, _ := img.At(5, 5).RGBA(); r > 0x1000 || g < 0xf000 || b > 0x1000 {
		t.Fatalf("corner = %v", img.At(5, 5))
	}
}

func TestPreviewRejectsTimeOutsideMedia(t *testing.T) {
	p := NewPreviewer(&config.PreviewOptions{InputPath: "take.webm", Time: 11}, quiet())
	p.grabber = &fakeGrabber{duration: 10, frame: solid(4, 4, color.RGBA{A: 0xff})}
	if _, _, err := p.Process(); err == nil {
		t.Fatal("expected error")
	}
}

type stubTranscriber struct {
	segs []caption.Segment
	err  error
}

func (s stubTranscriber) Transcribe(context.Context, string) ([]caption.Segment, error) {
	return s.segs, s.err
}

func TestTranscribeSavesCaptions(t *testing.T) {
	dir := t.TempDir()
	j := NewTranscribeJob(&config.TranscribeOptions{InputPath: filepath.Join(dir, "My Take.webm")}, quiet())
	j.transcriber = stubTranscriber{segs: sampleCaptions()}

	path, segs, err := j.Process(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if path != filepath.Join(dir, "My_Take.captions.json") || len(segs) != 2 {
		t.Fatalf("path %q segs %d", path, len(segs))
	}
	loaded, err := caption.Load(path)
	if err != nil || len(loaded) != 2 {
		t.Fatalf("loaded %+v, %v", loaded, err)
	}
}

func TestTranscribeFailureWritesEmptyFile(t *testing.T) {
	out := filepath.Join(t.TempDir(), "caps.json")
	j := NewTranscribeJob(&config.TranscribeOptions{InputPath: "take.webm", OutputPath: out}, quiet())
	j.transcriber = stubTranscriber{err: &transcript.ServiceError{StatusCode: 503, Message: "overloaded"}}

	_, segs, err := j.Process(context.Background())
	if err != nil || len(segs) != 0 {
		t.Fatalf("segs %v err %v", segs, err)
	}
	data, _ := os.ReadFile(out)
	if strings.TrimSpace(string(data)) != "[]" {
		t.Fatalf("file = %q", data)
	}
}

// Export through the processor with in-memory media.

type memSource struct {
	n, i   int
	closed bool
}

func (s *memSource) Info() export.SourceInfo {
	return export.SourceInfo{Width: 16, Height: 9, Duration: float64(s.n) / 10, HasAudio: true}
}

func (s *memSource) NextFrame() (export.Frame, error) {
	if s.i >= s.n {
		return export.Frame{}, io.EOF
	}
	f := export.Frame{Time: float64(s.i) / 10, Image: solid(16, 9, color.RGBA{B: 0xff, A: 0xff})}
	s.i++
	return f, nil
}

func (s *memSource) Close() error { s.closed = true; return nil }

type memOpener struct{ src *memSource }

func (o memOpener) Open(context.Context, string, float64) (export.Source, error) { return o.src, nil }

type memEncoder struct {
	path   string
	frames int
}

func (e *memEncoder) WriteFrame(img *image.RGBA) error {
	if b := img.Bounds(); b.Dx() != 1080 || b.Dy() != 1080 {
		return errors.Errorf("frame %v", b)
	}
	e.frames++
	return nil
}
func (e *memEncoder) Finish() error { return os.WriteFile(e.path, []byte("video"), 0o644) }
func (e *memEncoder) Abort() error  { return nil }

type memEncoders struct{ enc *memEncoder }

func (m memEncoders) NewEncoder(_ context.Context, spec export.EncoderSpec) (export.Encoder, error) {
	m.enc.path = spec.Path
	return m.enc, nil
}

func TestExporterProcess(t *testing.T) {
	dir := t.TempDir()
	src := &memSource{n: 5}
	enc := &memEncoder{}
	e := NewExporter(&config.ExportOptions{
		InputPath:    "take.webm",
		CaptionsPath: writeCaptions(t, sampleCaptions()),
		Format:       "square",
		Theme:        "kyo",
		OutputDir:    filepath.Join(dir, "out"),
		FPS:          10,
	}, quiet())
	e.opener = memOpener{src: src}
	e.encoders = memEncoders{enc: enc}

	out, err := e.Process(context.Background())
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if !strings.HasPrefix(filepath.Base(out), "arcadescript-square-") || filepath.Ext(out) != ".webm" {
		t.Fatalf("output = %q", out)
	}
	if enc.frames != 5 || !src.closed {
		t.Fatalf("frames %d closed %v", enc.frames, src.closed)
	}
	if _, err := os.Stat(out); err != nil {
		t.Fatal(err)
	}
}

func TestExporterRequiresInput(t *testing.T) {
	if _, err := NewExporter(&config.ExportOptions{}, quiet()).Process(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}
