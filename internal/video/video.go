// Package video is the encoder boundary: a rendered frame sequence goes
// in, a finished MP4 comes out of an external ffmpeg process.
package video

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/pkg/errors"
)

// Encoder turns a numbered frame sequence into a video container.
// pattern is a printf-style path such as /tmp/run/frame_%05d.png.
type Encoder interface {
	Encode(ctx context.Context, pattern string, fps int, outputPath string) error
}

// Encoding profile constants. These are production-quality settings for
// progressive web playback and are deliberately not user-configurable.
const (
	codec    = "libx264"
	crf      = "18"
	preset   = "medium"
	pixFmt   = "yuv420p"
	movFlags = "+faststart"
)

// FFmpegEncoder shells out to ffmpeg. The encode is one blocking call;
// the process's combined output is captured and returned verbatim inside
// the error on a non-zero exit.
type FFmpegEncoder struct {
	// Binary is the ffmpeg executable; defaults to "ffmpeg" on PATH.
	Binary string
}

func (e *FFmpegEncoder) binary() string {
	if e.Binary != "" {
		return e.Binary
	}
	return "ffmpeg"
}

// Probe verifies the ffmpeg binary is present and runnable, so a missing
// encoder surfaces before minutes of frame rendering.
func (e *FFmpegEncoder) Probe(ctx context.Context) error {
	cmd := exec.CommandContext(ctx, e.binary(), "-version")
	if out, err := cmd.CombinedOutput(); err != nil {
		return errors.Wrapf(err, "ffmpeg not available (%s)", firstLine(out))
	}
	return nil
}

func (e *FFmpegEncoder) Encode(ctx context.Context, pattern string, fps int, outputPath string) error {
	args := buildArgs(pattern, fps, outputPath)

	cmd := exec.CommandContext(ctx, e.binary(), args...)
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	if err := cmd.Run(); err != nil {
		return errors.Errorf("ffmpeg failed: %v: %s", err, out.String())
	}
	return nil
}

func buildArgs(pattern string, fps int, outputPath string) []string {
	return []string{
		"-y",
		"-framerate", fmt.Sprintf("%d", fps),
		"-i", pattern,
		"-c:v", codec,
		"-crf", crf,
		"-preset", preset,
		"-pix_fmt", pixFmt,
		"-movflags", movFlags,
		outputPath,
	}
}

func firstLine(out []byte) string {
	s := strings.TrimSpace(string(out))
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return s
}
