// Package mask turns a normalized depth map into the binary
// foreground/background separation used by the layer compositor.
package mask

import (
	"image"

	"github.com/ivlev/parallax/internal/depth"
	"github.com/ivlev/parallax/internal/imaging"
)

// Masks are 8-bit grayscale images holding only the two values below.
const (
	Background = uint8(0)
	Foreground = uint8(255)
)

const (
	// ForegroundPercentile is the depth percentile used as the
	// foreground threshold: everything at or above it (the nearest 60%
	// of depth samples) is foreground. A percentile adapts per image,
	// unlike a fixed depth cutoff.
	ForegroundPercentile = 0.40

	// CleanupBlurRadius smooths the raw threshold mask before it is
	// re-binarized, removing isolated speckle pixels.
	CleanupBlurRadius = 2

	// rebinarizeThreshold re-hardens the blurred mask at 50% coverage.
	rebinarizeThreshold = 128
)

// BuildForeground thresholds the depth map at its 40th percentile and
// cleans the result with a blur-then-rebinarize pass. The returned mask is
// hard (0/255 only); it must stay hard because it doubles as the
// inpainting hole geometry. Feathering for compositing happens separately
// on the foreground layer's alpha channel.
func BuildForeground(m *depth.Map) *image.Gray {
	threshold := m.Percentile(ForegroundPercentile)

	raw := image.NewGray(image.Rect(0, 0, m.Width, m.Height))
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			if m.At(x, y) >= threshold {
				raw.Pix[y*raw.Stride+x] = Foreground
			}
		}
	}

	smoothed := imaging.BlurGray(raw, CleanupBlurRadius)
	for i, v := range smoothed.Pix {
		if v >= rebinarizeThreshold {
			smoothed.Pix[i] = Foreground
		} else {
			smoothed.Pix[i] = Background
		}
	}
	return smoothed
}

// Dilate grows the foreground region with a square max filter of the
// given kernel size, repeated for the given number of iterations. Border
// pixels clamp to the nearest sample, so the result is always a pixel-wise
// superset of the input.
func Dilate(src *image.Gray, kernelSize, iterations int) *image.Gray {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()

	result := image.NewGray(image.Rect(0, 0, w, h))
	copy(result.Pix, src.Pix)

	half := kernelSize / 2
	for iter := 0; iter < iterations; iter++ {
		tmp := image.NewGray(result.Bounds())
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				maxVal := uint8(0)
				for ky := -half; ky <= half && maxVal < 255; ky++ {
					sy := y + ky
					if sy < 0 {
						sy = 0
					} else if sy > h-1 {
						sy = h - 1
					}
					for kx := -half; kx <= half; kx++ {
						sx := x + kx
						if sx < 0 {
							sx = 0
						} else if sx > w-1 {
							sx = w - 1
						}
						if v := result.Pix[sy*result.Stride+sx]; v > maxVal {
							maxVal = v
							if maxVal == 255 {
								break
							}
						}
					}
				}
				tmp.Pix[y*tmp.Stride+x] = maxVal
			}
		}
		result = tmp
	}
	return result
}

// Coverage returns the fraction of mask pixels that are foreground.
func Coverage(m *image.Gray) float64 {
	if len(m.Pix) == 0 {
		return 0
	}
	b := m.Bounds()
	count := 0
	for y := 0; y < b.Dy(); y++ {
		row := m.Pix[y*m.Stride : y*m.Stride+b.Dx()]
		for _, v := range row {
			if v >= rebinarizeThreshold {
				count++
			}
		}
	}
	return float64(count) / float64(b.Dx()*b.Dy())
}
