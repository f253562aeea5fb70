package depth

import (
	"math"
	"sort"
)

// Map is a dense per-pixel relative depth estimate. Values are unitless;
// after Normalize they span [0,1] with 0 = far and 1 = near.
type Map struct {
	Width  int
	Height int
	Pix    []float64
}

// NewMap allocates a zeroed depth map.
func NewMap(width, height int) *Map {
	return &Map{
		Width:  width,
		Height: height,
		Pix:    make([]float64, width*height),
	}
}

// At returns the depth sample at (x, y). No bounds checking.
func (m *Map) At(x, y int) float64 {
	return m.Pix[y*m.Width+x]
}

// Set writes the depth sample at (x, y). No bounds checking.
func (m *Map) Set(x, y int, v float64) {
	m.Pix[y*m.Width+x] = v
}

// normEpsilon keeps the Normalize denominator non-zero on constant-depth
// input. A constant map normalizes to all zeros, which downstream stages
// accept as a degenerate but valid result.
const normEpsilon = 1e-8

// Normalize linearly rescales the map in place so the minimum sample maps
// to 0 and the maximum to 1.
func (m *Map) Normalize() {
	if len(m.Pix) == 0 {
		return
	}
	lo, hi := m.Pix[0], m.Pix[0]
	for _, v := range m.Pix {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	scale := 1.0 / (hi - lo + normEpsilon)
	for i, v := range m.Pix {
		m.Pix[i] = (v - lo) * scale
	}
}

// Resize resamples the map to width×height with bilinear interpolation.
func (m *Map) Resize(width, height int) *Map {
	if width == m.Width && height == m.Height {
		out := NewMap(width, height)
		copy(out.Pix, m.Pix)
		return out
	}

	out := NewMap(width, height)
	sx := float64(m.Width) / float64(width)
	sy := float64(m.Height) / float64(height)

	for y := 0; y < height; y++ {
		fy := (float64(y)+0.5)*sy - 0.5
		y0 := int(math.Floor(fy))
		ty := fy - float64(y0)
		y1 := y0 + 1
		if y0 < 0 {
			y0 = 0
		}
		if y1 > m.Height-1 {
			y1 = m.Height - 1
		}
		for x := 0; x < width; x++ {
			fx := (float64(x)+0.5)*sx - 0.5
			x0 := int(math.Floor(fx))
			tx := fx - float64(x0)
			x1 := x0 + 1
			if x0 < 0 {
				x0 = 0
			}
			if x1 > m.Width-1 {
				x1 = m.Width - 1
			}

			top := m.At(x0, y0)*(1-tx) + m.At(x1, y0)*tx
			bot := m.At(x0, y1)*(1-tx) + m.At(x1, y1)*tx
			out.Set(x, y, top*(1-ty)+bot*ty)
		}
	}
	return out
}

// Percentile returns the value below which the given fraction p in [0,1]
// of all samples fall, using linear interpolation between ranks.
func (m *Map) Percentile(p float64) float64 {
	if len(m.Pix) == 0 {
		return 0
	}
	sorted := make([]float64, len(m.Pix))
	copy(sorted, m.Pix)
	sort.Float64s(sorted)

	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[len(sorted)-1]
	}

	rank := p * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return sorted[lo]
	}
	frac := rank - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}
