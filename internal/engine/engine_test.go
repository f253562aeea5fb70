package engine

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/ivlev/parallax/internal/config"
	"github.com/ivlev/parallax/internal/depth"
)

// stubSource hands out a prebuilt image without touching the filesystem.
type stubSource struct {
	img image.Image
}

func (s *stubSource) Decode() (image.Image, error) { return s.img, nil }
func (s *stubSource) Close() error                 { return nil }

// stubEstimator returns a constant depth map, the degenerate flat-scene
// case.
type stubEstimator struct{}

func (stubEstimator) Estimate(_ context.Context, img image.Image) (*depth.Map, error) {
	b := img.Bounds()
	m := depth.NewMap(b.Dx(), b.Dy())
	for i := range m.Pix {
		m.Pix[i] = 0.5
	}
	return m, nil
}

func (stubEstimator) Close() error { return nil }

// captureEncoder inspects the rendered frames while the temp directory
// still exists, then writes a placeholder output file.
type captureEncoder struct {
	frames  []string
	fps     int
	pattern string
	fail    error
}

func (e *captureEncoder) Encode(_ context.Context, pattern string, fps int, outputPath string) error {
	if e.fail != nil {
		return e.fail
	}
	e.pattern = pattern
	e.fps = fps
	for i := 0; ; i++ {
		path := fmt.Sprintf(pattern, i)
		if _, err := os.Stat(path); err != nil {
			break
		}
		e.frames = append(e.frames, path)
	}
	return os.WriteFile(outputPath, []byte("mp4"), 0644)
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func solidImage(w, h int, c color.RGBA) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func testConfig(t *testing.T, opts config.Options) *config.Config {
	t.Helper()
	return &config.Config{
		InputPath:  "test.png",
		OutputPath: filepath.Join(t.TempDir(), "out.mp4"),
		Options:    opts,
		Env:        config.Env{TempRoot: t.TempDir()},
	}
}

func TestRunFlatSceneEndToEnd(t *testing.T) {
	src := color.RGBA{R: 80, G: 130, B: 180, A: 255}
	opts := config.DefaultOptions()
	opts.Duration = 1.0
	opts.FPS = 2

	enc := &captureEncoder{}
	cfg := testConfig(t, opts)
	p := NewProject(cfg, &stubSource{img: solidImage(256, 256, src)}, stubEstimator{}, enc, quietLogger())

	out, err := p.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if out != cfg.OutputPath {
		t.Errorf("output path = %q, want %q", out, cfg.OutputPath)
	}
	if _, err := os.Stat(out); err != nil {
		t.Errorf("output file missing: %v", err)
	}

	if len(enc.frames) != 2 {
		t.Fatalf("rendered %d frames, want 2", len(enc.frames))
	}
	if enc.fps != 2 {
		t.Errorf("encoder fps = %d, want 2", enc.fps)
	}

	// A flat scene means the inpainted background matches the source, so
	// every frame stays visually identical to the input photo.
	for _, path := range enc.frames {
		f, err := os.Open(path)
		if err != nil {
			t.Fatal(err)
		}
		frame, err := png.Decode(f)
		f.Close()
		if err != nil {
			t.Fatal(err)
		}
		if b := frame.Bounds(); b.Dx() != 256 || b.Dy() != 256 {
			t.Fatalf("%s: frame is %dx%d, want 256x256", path, b.Dx(), b.Dy())
		}
		r, g, b, _ := frame.At(128, 128).RGBA()
		if d(r>>8, uint32(src.R)) > 3 || d(g>>8, uint32(src.G)) > 3 || d(b>>8, uint32(src.B)) > 3 {
			t.Errorf("%s: center pixel (%d,%d,%d) drifted from source color", path, r>>8, g>>8, b>>8)
		}
	}
}

func TestRunOddDimensionsTrimmed(t *testing.T) {
	opts := config.DefaultOptions()
	opts.Duration = 0.5
	opts.FPS = 2

	enc := &captureEncoder{}
	cfg := testConfig(t, opts)
	p := NewProject(cfg, &stubSource{img: solidImage(101, 75, color.RGBA{R: 90, A: 255})}, stubEstimator{}, enc, quietLogger())

	if _, err := p.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if len(enc.frames) == 0 {
		t.Fatal("no frames rendered")
	}
	f, err := os.Open(enc.frames[0])
	if err != nil {
		t.Fatal(err)
	}
	frame, err := png.Decode(f)
	f.Close()
	if err != nil {
		t.Fatal(err)
	}
	if b := frame.Bounds(); b.Dx() != 100 || b.Dy() != 74 {
		t.Errorf("frame is %dx%d, want even 100x74", b.Dx(), b.Dy())
	}
}

func TestRunWritesScheduleWhenRequested(t *testing.T) {
	opts := config.DefaultOptions()
	opts.Duration = 0.5
	opts.FPS = 2
	opts.ScheduleOutput = filepath.Join(t.TempDir(), "schedule.yaml")

	cfg := testConfig(t, opts)
	p := NewProject(cfg, &stubSource{img: solidImage(64, 64, color.RGBA{A: 255})}, stubEstimator{}, &captureEncoder{}, quietLogger())

	if _, err := p.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(opts.ScheduleOutput); err != nil {
		t.Errorf("schedule not written: %v", err)
	}
}

func TestRunPropagatesEncoderFailure(t *testing.T) {
	opts := config.DefaultOptions()
	opts.Duration = 0.5
	opts.FPS = 2

	enc := &captureEncoder{fail: errors.New("ffmpeg failed: exit status 1: unknown encoder")}
	cfg := testConfig(t, opts)
	p := NewProject(cfg, &stubSource{img: solidImage(64, 64, color.RGBA{A: 255})}, stubEstimator{}, enc, quietLogger())

	_, err := p.Run(context.Background())
	if err == nil {
		t.Fatal("expected encoder failure to propagate")
	}
	if got := err.Error(); got != enc.fail.Error() {
		t.Errorf("error = %q, want encoder diagnostic passed through", got)
	}
	if _, err := os.Stat(cfg.OutputPath); err == nil {
		t.Error("output file exists despite failed encode")
	}
}

func TestRunRejectsTinyInput(t *testing.T) {
	opts := config.DefaultOptions()
	cfg := testConfig(t, opts)
	p := NewProject(cfg, &stubSource{img: solidImage(1, 1, color.RGBA{A: 255})}, stubEstimator{}, &captureEncoder{}, quietLogger())

	if _, err := p.Run(context.Background()); err == nil {
		t.Fatal("expected error for sub-pixel input")
	}
}

func d(a, b uint32) uint32 {
	if a > b {
		return a - b
	}
	return b - a
}
