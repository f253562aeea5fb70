package layers

import (
	"image"
	"image/color"
	"testing"

	"github.com/ivlev/parallax/internal/mask"
)

// halfMask marks the right half of a w×h grid as foreground.
func halfMask(w, h int) *image.Gray {
	g := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := w / 2; x < w; x++ {
			g.Pix[y*g.Stride+x] = mask.Foreground
		}
	}
	return g
}

func fill(img *image.RGBA, c color.RGBA) {
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			img.SetRGBA(x, y, c)
		}
	}
}

func TestExtractForegroundFeathersAlphaOnly(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 32, 32))
	fill(src, color.RGBA{R: 50, G: 100, B: 150, A: 255})
	fg := halfMask(32, 32)

	layer := ExtractForeground(src, fg)

	// Color channels are untouched; only the alpha carries the mask.
	for y := 0; y < 32; y++ {
		for x := 0; x < 32; x++ {
			off := y*layer.Stride + x*4
			if layer.Pix[off] != 50 || layer.Pix[off+1] != 100 || layer.Pix[off+2] != 150 {
				t.Fatalf("color changed at (%d,%d)", x, y)
			}
		}
	}

	// Feathering must produce intermediate alpha along the boundary.
	intermediate := false
	for y := 0; y < 32; y++ {
		for x := 0; x < 32; x++ {
			a := layer.Pix[y*layer.Stride+x*4+3]
			if a > 0 && a < 255 {
				intermediate = true
			}
		}
	}
	if !intermediate {
		t.Error("expected intermediate alpha values along the feathered edge")
	}

	// Deep inside each region the alpha is still hard.
	if a := layer.Pix[16*layer.Stride+2*4+3]; a != 0 {
		t.Errorf("background interior alpha = %d, want 0", a)
	}
	if a := layer.Pix[16*layer.Stride+30*4+3]; a != 255 {
		t.Errorf("foreground interior alpha = %d, want 255", a)
	}
}

func TestInpaintBackgroundFillsHole(t *testing.T) {
	// Left half blue (background), right half red (foreground to be
	// removed). The filled region must take its color from the
	// surviving left half.
	src := image.NewRGBA(image.Rect(0, 0, 64, 64))
	fill(src, color.RGBA{B: 200, A: 255})
	for y := 0; y < 64; y++ {
		for x := 32; x < 64; x++ {
			src.SetRGBA(x, y, color.RGBA{R: 200, A: 255})
		}
	}

	bg := InpaintBackground(src, halfMask(64, 64))

	// The hole (dilated beyond x=32) is filled by diffusion from blue
	// content, so far inside the old foreground red must be gone.
	c := bg.RGBAAt(60, 32)
	if c.R > c.B {
		t.Errorf("hole still dominated by removed foreground color: %v", c)
	}

	// Fully opaque output.
	for i := 3; i < len(bg.Pix); i += 4 {
		if bg.Pix[i] != 255 {
			t.Fatal("inpainted background must be opaque")
		}
	}
}

func TestInpaintBackgroundDegenerateFullMask(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 16, 16))
	fill(src, color.RGBA{R: 30, G: 60, B: 90, A: 255})

	full := image.NewGray(image.Rect(0, 0, 16, 16))
	for i := range full.Pix {
		full.Pix[i] = mask.Foreground
	}

	bg := InpaintBackground(src, full)

	// No seed pixels anywhere: the fill falls back to the mean source
	// color, which for a solid image is the image itself.
	c := bg.RGBAAt(8, 8)
	if c.R != 30 || c.G != 60 || c.B != 90 {
		t.Errorf("degenerate fill = %v, want mean source color {30 60 90}", c)
	}
}
