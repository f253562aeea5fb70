// Package canvas builds the pannable background substrate: the inpainted
// background mirror-padded on all sides, seam-blended where original
// content meets the padding, and upscaled so a panning crop window never
// reaches an edge.
package canvas

import (
	"image"
	"math"

	"github.com/ivlev/parallax/internal/imaging"
)

const (
	// PadFactor sizes the mirror padding relative to the fastest layer
	// speed. Three times the full pan distance leaves the crop window in
	// real (reflected) pixel data for every reachable offset.
	PadFactor = 3

	// SeamBand is the extra width, beyond the padding itself, of the
	// linear blend ramp that hides the content/padding seam.
	SeamBand = 30

	// SeamBlurRadius is the blur applied to the copy of the canvas that
	// gets blended in over the seam band (a 51-tap kernel).
	SeamBlurRadius = 25

	// UpscaleFactor enlarges the padded canvas so a centered
	// output-resolution crop has room to shift without clamping.
	UpscaleFactor = 1.1
)

// Canvas is the enlarged, seam-blended background image plus the geometry
// needed to crop it. It is built once per run and read-only afterwards.
type Canvas struct {
	Img  *image.RGBA
	PadX int
	PadY int
}

// Build constructs the canvas from the inpainted background. maxSpeed is
// the larger of the two per-layer pan speeds in pixels.
func Build(background *image.RGBA, maxSpeed float64) *Canvas {
	padX := int(maxSpeed * PadFactor)
	padY := int(maxSpeed * PadFactor)

	padded := imaging.ReflectPad(background, padX, padY)
	blendSeams(padded, padX, padY)

	scaledW := int(float64(padded.Bounds().Dx()) * UpscaleFactor)
	scaledH := int(float64(padded.Bounds().Dy()) * UpscaleFactor)
	scaled := imaging.Scale(padded, scaledW, scaledH)

	return &Canvas{Img: scaled, PadX: padX, PadY: padY}
}

// blendSeams mixes a heavily blurred copy of the padded image back in
// near the borders. The per-pixel weight is 1 in the interior and ramps
// linearly to 0 approaching each padded edge over padding+SeamBand
// pixels, so the seam band is soft while the interior stays sharp.
func blendSeams(padded *image.RGBA, padX, padY int) {
	blurred := imaging.BlurRGBA(padded, SeamBlurRadius)

	b := padded.Bounds()
	w, h := b.Dx(), b.Dy()
	bandX := float64(padX + SeamBand)
	bandY := float64(padY + SeamBand)

	for y := 0; y < h; y++ {
		wy := 1.0
		if edge := math.Min(float64(y), float64(h-1-y)); edge < bandY {
			wy = edge / bandY
		}
		for x := 0; x < w; x++ {
			weight := wy
			if edge := math.Min(float64(x), float64(w-1-x)); edge < bandX {
				if wx := edge / bandX; wx < weight {
					weight = wx
				}
			}
			if weight >= 1.0 {
				continue
			}
			off := y*padded.Stride + x*4
			for c := 0; c < 3; c++ {
				sharp := float64(padded.Pix[off+c])
				soft := float64(blurred.Pix[off+c])
				padded.Pix[off+c] = uint8(sharp*weight + soft*(1-weight) + 0.5)
			}
		}
	}
}

// Width and Height report the final canvas dimensions.
func (c *Canvas) Width() int  { return c.Img.Bounds().Dx() }
func (c *Canvas) Height() int { return c.Img.Bounds().Dy() }

// CenterOffset returns the top-left corner of the centered outW×outH crop
// window, the rest position that per-frame pan offsets shift away from.
func (c *Canvas) CenterOffset(outW, outH int) (int, int) {
	return (c.Width() - outW) / 2, (c.Height() - outH) / 2
}
