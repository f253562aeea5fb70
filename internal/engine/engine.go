// Package engine wires the pipeline together: source decode, depth
// estimation, layer split, canvas build, frame rendering and the final
// encode, with one scoped temp directory per run.
package engine

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/ivlev/parallax/internal/canvas"
	"github.com/ivlev/parallax/internal/config"
	"github.com/ivlev/parallax/internal/depth"
	"github.com/ivlev/parallax/internal/imaging"
	"github.com/ivlev/parallax/internal/layers"
	"github.com/ivlev/parallax/internal/mask"
	"github.com/ivlev/parallax/internal/motion"
	"github.com/ivlev/parallax/internal/render"
	"github.com/ivlev/parallax/internal/source"
	"github.com/ivlev/parallax/internal/video"
)

// framePattern names the frames in the per-run temp directory in the
// printf form ffmpeg's image2 demuxer expects.
const framePattern = "frame_%05d.png"

// Project runs one video generation end to end. All external boundaries
// are injected; the estimator in particular is caller-owned so the model
// loads once per process regardless of how many projects run.
type Project struct {
	Config    *config.Config
	Source    source.Source
	Estimator depth.Estimator
	Encoder   video.Encoder

	log *logrus.Entry
}

// NewProject assembles a project and tags its log entries with a run id.
func NewProject(cfg *config.Config, src source.Source, est depth.Estimator, enc video.Encoder, logger *logrus.Logger) *Project {
	return &Project{
		Config:    cfg,
		Source:    src,
		Estimator: est,
		Encoder:   enc,
		log:       logger.WithField("run", uuid.NewString()[:8]),
	}
}

// Run executes the pipeline and returns the output path. Either a
// complete playable file exists at that path on success, or the error
// describes the first fatal failure; there is no partial-success state.
func (p *Project) Run(ctx context.Context) (string, error) {
	opts := p.Config.Options
	start := time.Now()

	img, err := p.Source.Decode()
	if err != nil {
		return "", err
	}

	width, height := source.EvenDimensions(img.Bounds().Dx(), img.Bounds().Dy())
	if width < 2 || height < 2 {
		return "", errors.Errorf("input too small: %dx%d", img.Bounds().Dx(), img.Bounds().Dy())
	}
	base := imaging.Scale(img, width, height)

	p.log.WithFields(logrus.Fields{
		"input":     p.Config.InputPath,
		"size":      fmt.Sprintf("%dx%d", width, height),
		"direction": opts.Direction,
		"intensity": opts.Intensity,
		"zoom":      opts.Zoom,
	}).Info("processing")

	spec, err := motion.NewSpec(opts.Direction, opts.Intensity, opts.Zoom, opts.Duration, opts.FPS)
	if err != nil {
		return "", err
	}

	estimateStart := time.Now()
	p.log.Info("estimating depth")
	rawDepth, err := p.Estimator.Estimate(ctx, base)
	if err != nil {
		return "", errors.Wrap(err, "estimating depth")
	}
	rawDepth.Normalize()
	depthMap := rawDepth.Resize(width, height)
	estimateDur := time.Since(estimateStart)

	composeStart := time.Now()
	fgMask := mask.BuildForeground(depthMap)
	p.log.WithField("coverage", fmt.Sprintf("%.1f%%", mask.Coverage(fgMask)*100)).
		Info("foreground mask built")

	foreground := layers.ExtractForeground(base, fgMask)
	p.log.Info("inpainting background")
	background := layers.InpaintBackground(base, fgMask)

	cv := canvas.Build(background, spec.MaxSpeed())
	composeDur := time.Since(composeStart)

	if opts.ScheduleOutput != "" {
		if err := motion.WriteSchedule(spec, opts.ScheduleOutput); err != nil {
			return "", errors.Wrap(err, "writing motion schedule")
		}
		p.log.WithField("path", opts.ScheduleOutput).Info("motion schedule written")
	}

	tempDir, err := os.MkdirTemp(p.Config.Env.TempRoot, "parallax_")
	if err != nil {
		return "", errors.Wrap(err, "creating frame directory")
	}
	defer os.RemoveAll(tempDir)

	renderStart := time.Now()
	if err := p.renderFrames(ctx, cv, foreground, spec, width, height, tempDir); err != nil {
		return "", err
	}
	renderDur := time.Since(renderStart)

	encodeStart := time.Now()
	p.log.WithField("frames", spec.Frames).Info("encoding video")
	pattern := filepath.Join(tempDir, framePattern)
	if err := p.Encoder.Encode(ctx, pattern, opts.FPS, p.Config.OutputPath); err != nil {
		return "", err
	}
	encodeDur := time.Since(encodeStart)

	p.log.WithFields(logrus.Fields{
		"total":    time.Since(start).Round(time.Millisecond).String(),
		"estimate": estimateDur.Round(time.Millisecond).String(),
		"compose":  composeDur.Round(time.Millisecond).String(),
		"render":   renderDur.Round(time.Millisecond).String(),
		"encode":   encodeDur.Round(time.Millisecond).String(),
		"output":   p.Config.OutputPath,
	}).Info("video created")

	return p.Config.OutputPath, nil
}

// renderFrames renders the schedule in time order on the calling
// goroutine and fans the PNG encode and disk write out to a bounded
// worker group. Frames share only immutable inputs, so completion order
// does not matter; the numbered filenames keep the sequence.
func (p *Project) renderFrames(ctx context.Context, cv *canvas.Canvas, foreground *image.RGBA, spec *motion.Spec, width, height int, dir string) error {
	renderer := render.New(cv, foreground, width, height)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())

	for _, fm := range spec.Schedule() {
		if err := ctx.Err(); err != nil {
			break
		}
		frame := renderer.Frame(fm)
		path := filepath.Join(dir, fmt.Sprintf(framePattern, fm.Index))
		g.Go(func() error {
			return writeFrame(path, frame)
		})
		if fm.Index > 0 && fm.Index%24 == 0 {
			p.log.WithField("frame", fm.Index).Debug("rendering")
		}
	}

	if err := g.Wait(); err != nil {
		return errors.Wrap(err, "writing frames")
	}
	return nil
}

func writeFrame(path string, frame *image.RGBA) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, frame); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
