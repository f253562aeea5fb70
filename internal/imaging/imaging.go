// Package imaging holds the shared pixel kernels used by the mask, layer
// and canvas stages: colorspace conversion, separable Gaussian blurs,
// reflective padding, cropping and resampling.
package imaging

import (
	"image"
	"math"

	xdraw "golang.org/x/image/draw"
)

// ToRGBA returns img as *image.RGBA with a zero-based bounds rectangle.
// The original image is copied even when it already is an RGBA, so callers
// are free to mutate the result.
func ToRGBA(img image.Image) *image.RGBA {
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	xdraw.Draw(dst, dst.Bounds(), img, b.Min, xdraw.Src)
	return dst
}

// ToGray converts img to 8-bit grayscale with zero-based bounds.
func ToGray(img image.Image) *image.Gray {
	b := img.Bounds()
	dst := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	xdraw.Draw(dst, dst.Bounds(), img, b.Min, xdraw.Src)
	return dst
}

// gaussianKernel builds a normalized 1-D kernel for the given radius.
// Sigma follows the usual kernel-size heuristic so that the tail weights
// stay meaningful for small radii.
func gaussianKernel(radius int) []float64 {
	if radius < 1 {
		radius = 1
	}
	size := 2*radius + 1
	sigma := 0.3*(float64(size-1)*0.5-1) + 0.8
	kernel := make([]float64, size)
	sum := 0.0
	for i := 0; i < size; i++ {
		d := float64(i - radius)
		kernel[i] = math.Exp(-d * d / (2 * sigma * sigma))
		sum += kernel[i]
	}
	for i := range kernel {
		kernel[i] /= sum
	}
	return kernel
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// BlurGray applies a separable Gaussian blur to a grayscale image.
// Samples outside the image are clamped to the nearest edge pixel.
func BlurGray(src *image.Gray, radius int) *image.Gray {
	if radius < 1 {
		out := image.NewGray(src.Bounds())
		copy(out.Pix, src.Pix)
		return out
	}

	kernel := gaussianKernel(radius)
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()

	tmp := image.NewGray(b)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			acc := 0.0
			for k, kw := range kernel {
				sx := clampInt(x+k-radius, 0, w-1)
				acc += kw * float64(src.Pix[y*src.Stride+sx])
			}
			tmp.Pix[y*tmp.Stride+x] = uint8(acc + 0.5)
		}
	}

	out := image.NewGray(b)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			acc := 0.0
			for k, kw := range kernel {
				sy := clampInt(y+k-radius, 0, h-1)
				acc += kw * float64(tmp.Pix[sy*tmp.Stride+x])
			}
			out.Pix[y*out.Stride+x] = uint8(acc + 0.5)
		}
	}
	return out
}

// BlurRGBA applies a separable Gaussian blur to all four channels.
func BlurRGBA(src *image.RGBA, radius int) *image.RGBA {
	if radius < 1 {
		out := image.NewRGBA(src.Bounds())
		copy(out.Pix, src.Pix)
		return out
	}

	kernel := gaussianKernel(radius)
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()

	tmp := image.NewRGBA(b)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var acc [4]float64
			for k, kw := range kernel {
				sx := clampInt(x+k-radius, 0, w-1)
				off := y*src.Stride + sx*4
				for c := 0; c < 4; c++ {
					acc[c] += kw * float64(src.Pix[off+c])
				}
			}
			off := y*tmp.Stride + x*4
			for c := 0; c < 4; c++ {
				tmp.Pix[off+c] = uint8(acc[c] + 0.5)
			}
		}
	}

	out := image.NewRGBA(b)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var acc [4]float64
			for k, kw := range kernel {
				sy := clampInt(y+k-radius, 0, h-1)
				off := sy*tmp.Stride + x*4
				for c := 0; c < 4; c++ {
					acc[c] += kw * float64(tmp.Pix[off+c])
				}
			}
			off := y*out.Stride + x*4
			for c := 0; c < 4; c++ {
				out.Pix[off+c] = uint8(acc[c] + 0.5)
			}
		}
	}
	return out
}

// ReflectPad extends src on all four sides by mirroring its content across
// each boundary, excluding the boundary pixel itself (the "reflect 101"
// convention), so the border row is never doubled.
func ReflectPad(src *image.RGBA, padX, padY int) *image.RGBA {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	out := image.NewRGBA(image.Rect(0, 0, w+2*padX, h+2*padY))

	for y := 0; y < h+2*padY; y++ {
		sy := reflectIndex(y-padY, h)
		for x := 0; x < w+2*padX; x++ {
			sx := reflectIndex(x-padX, w)
			so := sy*src.Stride + sx*4
			do := y*out.Stride + x*4
			copy(out.Pix[do:do+4], src.Pix[so:so+4])
		}
	}
	return out
}

// reflectIndex maps an out-of-range coordinate back into [0,n) by mirroring
// around the first and last sample.
func reflectIndex(i, n int) int {
	if n == 1 {
		return 0
	}
	period := 2 * (n - 1)
	i = ((i % period) + period) % period
	if i >= n {
		i = period - i
	}
	return i
}

// CenterCrop returns the centered w×h window of src as a fresh image.
func CenterCrop(src *image.RGBA, w, h int) *image.RGBA {
	b := src.Bounds()
	x0 := b.Min.X + (b.Dx()-w)/2
	y0 := b.Min.Y + (b.Dy()-h)/2
	return Crop(src, image.Rect(x0, y0, x0+w, y0+h))
}

// Crop copies the given rectangle of src into a new zero-based image.
// The rectangle must lie within the bounds of src.
func Crop(src *image.RGBA, r image.Rectangle) *image.RGBA {
	out := image.NewRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	xdraw.Draw(out, out.Bounds(), src, r.Min, xdraw.Src)
	return out
}

// Scale resamples src to w×h with Catmull-Rom interpolation.
func Scale(src image.Image, w, h int) *image.RGBA {
	out := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.CatmullRom.Scale(out, out.Bounds(), src, src.Bounds(), xdraw.Src, nil)
	return out
}
