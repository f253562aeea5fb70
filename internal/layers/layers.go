// Package layers splits the source photograph into the two layers of the
// parallax composite: a feather-edged foreground cutout and an inpainted,
// fully opaque background.
package layers

import (
	"image"

	"github.com/ivlev/parallax/internal/imaging"
	"github.com/ivlev/parallax/internal/mask"
)

const (
	// FeatherRadius blurs the foreground alpha channel only, so the
	// compositing edge blends instead of showing a hard cutout. The
	// cutout geometry itself stays hard.
	FeatherRadius = 2

	// InpaintDilateKernel and InpaintDilateIterations grow the hole
	// before filling. Fine detail near the mask edge (hair, thin
	// structures) is under-captured by the coarse mask, and inpainting
	// artifacts at the boundary are far more objectionable than a
	// slightly larger hole: the foreground layer covers most of the
	// dilated region anyway.
	InpaintDilateKernel     = 7
	InpaintDilateIterations = 4
)

// ExtractForeground copies src into an RGBA layer whose alpha channel is
// the foreground mask with feathered edges. fg and the mask must share
// the same dimensions.
func ExtractForeground(src *image.RGBA, fg *image.Gray) *image.RGBA {
	b := src.Bounds()
	layer := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	copy(layer.Pix, src.Pix)

	feathered := imaging.BlurGray(fg, FeatherRadius)
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			layer.Pix[y*layer.Stride+x*4+3] = feathered.Pix[y*feathered.Stride+x]
		}
	}
	return layer
}

// InpaintBackground removes the (dilated) foreground region from src and
// fills it from the surrounding content, returning an opaque background
// with no trace of the cutout.
func InpaintBackground(src *image.RGBA, fg *image.Gray) *image.RGBA {
	hole := mask.Dilate(fg, InpaintDilateKernel, InpaintDilateIterations)
	return inpaint(src, hole)
}
