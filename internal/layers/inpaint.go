package layers

import (
	"image"
)

const (
	// inpaintSmoothRadius softens the filled region after diffusion so
	// frontier streaks do not survive into the final background.
	inpaintSmoothRadius = 4

	holeThreshold = 128
)

// inpaint fills the hole region of src (hole pixels have mask >= 128)
// by repeatedly averaging each frontier hole pixel from its known
// 8-neighbors, peeling the hole from the outside in. The filled area is
// then smoothed with a masked box blur. Diffusion fill trades the contour
// tracking of the classic fast-marching method for simplicity; for the
// hole sizes produced by the dilated foreground mask the visual result is
// equivalent once the foreground layer is composited back on top.
func inpaint(src *image.RGBA, hole *image.Gray) *image.RGBA {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()

	out := image.NewRGBA(image.Rect(0, 0, w, h))
	copy(out.Pix, src.Pix)

	known := make([]bool, w*h)
	var frontier []int
	holeCount := 0
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if hole.Pix[y*hole.Stride+x] < holeThreshold {
				known[y*w+x] = true
			} else {
				holeCount++
			}
		}
	}
	if holeCount == 0 {
		for i := 3; i < len(out.Pix); i += 4 {
			out.Pix[i] = 255
		}
		return out
	}

	// Worst case (all-foreground mask) peels from the image border in;
	// each pass fills at least one ring, so w+h passes always suffice.
	maxPasses := w + h
	for pass := 0; pass < maxPasses && holeCount > 0; pass++ {
		frontier = frontier[:0]
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				if !known[y*w+x] && hasKnownNeighbor(known, x, y, w, h) {
					frontier = append(frontier, y*w+x)
				}
			}
		}
		if len(frontier) == 0 {
			// Fully masked image, no seed pixels to diffuse from. Fill
			// with the mean source color: for the degenerate all-
			// foreground mask this keeps the background consistent with
			// the photograph instead of inventing a gray field.
			mr, mg, mb := meanColor(src)
			for y := 0; y < h; y++ {
				for x := 0; x < w; x++ {
					if !known[y*w+x] {
						off := y*out.Stride + x*4
						out.Pix[off], out.Pix[off+1], out.Pix[off+2] = mr, mg, mb
						known[y*w+x] = true
					}
				}
			}
			holeCount = 0
			break
		}

		for _, idx := range frontier {
			x, y := idx%w, idx/w
			var sum [3]int
			count := 0
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					nx, ny := x+dx, y+dy
					if nx < 0 || nx >= w || ny < 0 || ny >= h || !known[ny*w+nx] {
						continue
					}
					off := ny*out.Stride + nx*4
					sum[0] += int(out.Pix[off])
					sum[1] += int(out.Pix[off+1])
					sum[2] += int(out.Pix[off+2])
					count++
				}
			}
			off := y*out.Stride + x*4
			out.Pix[off] = uint8(sum[0] / count)
			out.Pix[off+1] = uint8(sum[1] / count)
			out.Pix[off+2] = uint8(sum[2] / count)
		}
		for _, idx := range frontier {
			known[idx] = true
		}
		holeCount -= len(frontier)
	}

	smoothHole(out, hole)

	for i := 3; i < len(out.Pix); i += 4 {
		out.Pix[i] = 255
	}
	return out
}

func meanColor(img *image.RGBA) (uint8, uint8, uint8) {
	b := img.Bounds()
	n := b.Dx() * b.Dy()
	if n == 0 {
		return 0, 0, 0
	}
	var sum [3]uint64
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			off := y*img.Stride + x*4
			sum[0] += uint64(img.Pix[off])
			sum[1] += uint64(img.Pix[off+1])
			sum[2] += uint64(img.Pix[off+2])
		}
	}
	return uint8(sum[0] / uint64(n)), uint8(sum[1] / uint64(n)), uint8(sum[2] / uint64(n))
}

func hasKnownNeighbor(known []bool, x, y, w, h int) bool {
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			nx, ny := x+dx, y+dy
			if nx >= 0 && nx < w && ny >= 0 && ny < h && known[ny*w+nx] {
				return true
			}
		}
	}
	return false
}

// smoothHole box-blurs only the hole pixels, sampling from the whole
// image so the fill stays anchored to the surrounding content.
func smoothHole(img *image.RGBA, hole *image.Gray) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	r := inpaintSmoothRadius

	src := make([]uint8, len(img.Pix))
	copy(src, img.Pix)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if hole.Pix[y*hole.Stride+x] < holeThreshold {
				continue
			}
			var sum [3]int
			count := 0
			for dy := -r; dy <= r; dy++ {
				ny := y + dy
				if ny < 0 || ny >= h {
					continue
				}
				for dx := -r; dx <= r; dx++ {
					nx := x + dx
					if nx < 0 || nx >= w {
						continue
					}
					off := ny*img.Stride + nx*4
					sum[0] += int(src[off])
					sum[1] += int(src[off+1])
					sum[2] += int(src[off+2])
					count++
				}
			}
			off := y*img.Stride + x*4
			img.Pix[off] = uint8(sum[0] / count)
			img.Pix[off+1] = uint8(sum[1] / count)
			img.Pix[off+2] = uint8(sum[2] / count)
		}
	}
}
