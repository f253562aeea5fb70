// Package motion computes the deterministic per-frame pan and zoom
// schedule that drives the frame renderer.
package motion

import (
	"math"

	"github.com/pkg/errors"
)

// Base pan speeds in pixels at normal intensity. The foreground must
// always move more than the background: parallax comes from that gap.
const (
	BaseBackgroundSpeed = 15.0
	BaseForegroundSpeed = 40.0

	// BaseZoomAmount is the zoom delta at normal intensity (15%).
	BaseZoomAmount = 0.15
)

// intensityMultiplier scales both pan speeds and the zoom delta.
var intensityMultiplier = map[string]float64{
	"subtle":   0.5,
	"normal":   1.0,
	"dramatic": 1.5,
}

// ParseDirection maps a direction name to its unit vector. "none" (or an
// empty string) yields a zero vector for zoom-only motion.
func ParseDirection(name string) (dx, dy int, err error) {
	switch name {
	case "left":
		return -1, 0, nil
	case "right":
		return 1, 0, nil
	case "up":
		return 0, -1, nil
	case "down":
		return 0, 1, nil
	case "none", "":
		return 0, 0, nil
	}
	return 0, 0, errors.Errorf("unknown direction %q", name)
}

// EaseInOutSine is the symmetric easing curve applied to linear progress:
// slow start, fast middle, slow end, with e(0)=0, e(0.5)=0.5, e(1)=1.
func EaseInOutSine(t float64) float64 {
	return (1 - math.Cos(t*math.Pi)) / 2
}

// Spec holds the immutable motion parameters for one video.
type Spec struct {
	DX, DY    int     `yaml:"-"`
	Direction string  `yaml:"direction"`
	Intensity string  `yaml:"intensity"`
	Zoom      string  `yaml:"zoom"`
	BGSpeed   float64 `yaml:"bgSpeed"`
	FGSpeed   float64 `yaml:"fgSpeed"`
	ZoomStart float64 `yaml:"zoomStart"`
	ZoomEnd   float64 `yaml:"zoomEnd"`
	Frames    int     `yaml:"frames"`
	FPS       int     `yaml:"fps"`
}

// FrameMotion is the resolved motion state for a single frame. Offsets
// are whole pixels; fractional components are truncated per axis.
type FrameMotion struct {
	Index int     `yaml:"frame"`
	BGX   int     `yaml:"bgX"`
	BGY   int     `yaml:"bgY"`
	FGX   int     `yaml:"fgX"`
	FGY   int     `yaml:"fgY"`
	Zoom  float64 `yaml:"zoom"`
}

// NewSpec validates the user-facing motion options and resolves them into
// concrete speeds, zoom endpoints and a frame count.
func NewSpec(direction, intensity, zoom string, duration float64, fps int) (*Spec, error) {
	dx, dy, err := ParseDirection(direction)
	if err != nil {
		return nil, err
	}

	mult, ok := intensityMultiplier[intensity]
	if !ok {
		return nil, errors.Errorf("unknown intensity %q", intensity)
	}

	if duration <= 0 {
		return nil, errors.Errorf("duration must be positive, got %g", duration)
	}
	if fps <= 0 {
		return nil, errors.Errorf("fps must be positive, got %d", fps)
	}

	amount := BaseZoomAmount * mult
	var zoomStart, zoomEnd float64
	switch zoom {
	case "in":
		zoomStart, zoomEnd = 1.0, 1.0+amount
	case "out":
		zoomStart, zoomEnd = 1.0+amount, 1.0
	case "none", "":
		zoomStart, zoomEnd = 1.0, 1.0
	default:
		return nil, errors.Errorf("unknown zoom mode %q", zoom)
	}

	frames := int(duration * float64(fps))
	if frames < 1 {
		frames = 1
	}

	return &Spec{
		DX:        dx,
		DY:        dy,
		Direction: direction,
		Intensity: intensity,
		Zoom:      zoom,
		BGSpeed:   BaseBackgroundSpeed * mult,
		FGSpeed:   BaseForegroundSpeed * mult,
		ZoomStart: zoomStart,
		ZoomEnd:   zoomEnd,
		Frames:    frames,
		FPS:       fps,
	}, nil
}

// MaxSpeed returns the larger per-layer pan speed, which sizes the canvas
// padding.
func (s *Spec) MaxSpeed() float64 {
	return math.Max(s.BGSpeed, s.FGSpeed)
}

// At resolves the motion state for frame i. Frame 0 is always the rest
// position: zero offsets and the starting zoom.
func (s *Spec) At(i int) FrameMotion {
	denom := s.Frames - 1
	if denom < 1 {
		denom = 1
	}
	t := float64(i) / float64(denom)
	e := EaseInOutSine(t)

	return FrameMotion{
		Index: i,
		BGX:   int(float64(s.DX) * s.BGSpeed * e),
		BGY:   int(float64(s.DY) * s.BGSpeed * e),
		FGX:   int(float64(s.DX) * s.FGSpeed * e),
		FGY:   int(float64(s.DY) * s.FGSpeed * e),
		Zoom:  s.ZoomStart + (s.ZoomEnd-s.ZoomStart)*e,
	}
}

// Schedule materializes the full frame sequence in time order.
func (s *Spec) Schedule() []FrameMotion {
	out := make([]FrameMotion, s.Frames)
	for i := range out {
		out[i] = s.At(i)
	}
	return out
}
