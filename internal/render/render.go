// Package render composites one output frame from the shared canvas and
// foreground layer under a single frame's motion state.
package render

import (
	"image"

	xdraw "golang.org/x/image/draw"

	"github.com/ivlev/parallax/internal/canvas"
	"github.com/ivlev/parallax/internal/imaging"
	"github.com/ivlev/parallax/internal/motion"
)

// Renderer holds the immutable inputs shared by every frame. Frames are
// mutually independent: Frame may be called in any order and reads only
// this shared state and the motion value it is given.
type Renderer struct {
	Canvas     *canvas.Canvas
	Foreground *image.RGBA
	Width      int
	Height     int
}

// New builds a renderer for the given output resolution.
func New(c *canvas.Canvas, foreground *image.RGBA, width, height int) *Renderer {
	return &Renderer{Canvas: c, Foreground: foreground, Width: width, Height: height}
}

// Frame renders the frame for motion state m: crop the canvas shifted by
// the background offset, alpha-over the foreground layer at its own
// offset, then apply the zoom as a rescale-and-recrop of the whole
// composite. Zoom is a camera property, so it hits both layers equally.
func (r *Renderer) Frame(m motion.FrameMotion) *image.RGBA {
	centerX, centerY := r.Canvas.CenterOffset(r.Width, r.Height)

	cropX := centerX - m.BGX
	cropY := centerY - m.BGY

	// The canvas is built large enough that the window never leaves it,
	// but clamp anyway as a correctness backstop.
	cropX = clamp(cropX, 0, r.Canvas.Width()-r.Width)
	cropY = clamp(cropY, 0, r.Canvas.Height()-r.Height)

	frame := imaging.Crop(r.Canvas.Img, image.Rect(cropX, cropY, cropX+r.Width, cropY+r.Height))

	fb := r.Foreground.Bounds()
	dst := image.Rect(m.FGX, m.FGY, m.FGX+fb.Dx(), m.FGY+fb.Dy())
	xdraw.Draw(frame, dst, r.Foreground, fb.Min, xdraw.Over)

	if m.Zoom != 1.0 {
		zw := int(float64(r.Width) * m.Zoom)
		zh := int(float64(r.Height) * m.Zoom)
		zoomed := imaging.Scale(frame, zw, zh)
		frame = imaging.CenterCrop(zoomed, r.Width, r.Height)
	}

	// Drop alpha: the encoder consumes opaque RGB frames.
	for i := 3; i < len(frame.Pix); i += 4 {
		frame.Pix[i] = 255
	}
	return frame
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		hi = lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
