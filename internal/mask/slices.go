package mask

import (
	"image"

	"github.com/ivlev/parallax/internal/depth"
)

// SliceDepth partitions the depth range [0,1] into n equal intervals and
// returns one hard mask per interval, ordered far to near. Each pixel
// belongs to exactly one slice; the nearest slice includes the upper
// boundary so a sample at exactly 1.0 is not dropped.
//
// The production pipeline uses the two-layer foreground/background split;
// this is the substrate for a future multi-layer mode driven by the
// layerCount option.
func SliceDepth(m *depth.Map, n int) []*image.Gray {
	if n < 1 {
		return nil
	}

	masks := make([]*image.Gray, n)
	for i := range masks {
		masks[i] = image.NewGray(image.Rect(0, 0, m.Width, m.Height))
	}

	step := 1.0 / float64(n)
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			v := m.At(x, y)
			idx := int(v / step)
			if idx >= n {
				idx = n - 1
			}
			if idx < 0 {
				idx = 0
			}
			g := masks[idx]
			g.Pix[y*g.Stride+x] = Foreground
		}
	}
	return masks
}
