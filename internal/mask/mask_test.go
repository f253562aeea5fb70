package mask

import (
	"image"
	"math"
	"testing"

	"github.com/ivlev/parallax/internal/depth"
)

// gradientMap builds a horizontal near-to-far depth ramp.
func gradientMap(w, h int) *depth.Map {
	m := depth.NewMap(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			m.Set(x, y, float64(x)/float64(w-1))
		}
	}
	return m
}

func TestBuildForegroundCoverage(t *testing.T) {
	m := gradientMap(100, 50)
	fg := BuildForeground(m)

	// The nearest 60% of depth samples are foreground; blur cleanup may
	// shift the boundary by a pixel or two.
	cov := Coverage(fg)
	if math.Abs(cov-0.60) > 0.05 {
		t.Errorf("coverage = %.3f, want ~0.60", cov)
	}
}

func TestBuildForegroundIsHard(t *testing.T) {
	fg := BuildForeground(gradientMap(64, 64))
	for i, v := range fg.Pix {
		if v != Background && v != Foreground {
			t.Fatalf("pixel %d = %d; mask must stay binary after cleanup", i, v)
		}
	}
}

func TestBuildForegroundDegenerate(t *testing.T) {
	// Constant depth normalizes to all zeros; the percentile threshold
	// is then 0 and everything lands in the foreground. Accepted, not
	// special-cased.
	m := depth.NewMap(16, 16)
	fg := BuildForeground(m)
	if cov := Coverage(fg); cov != 1.0 {
		t.Errorf("constant depth coverage = %.3f, want 1.0", cov)
	}
}

func TestDilateSuperset(t *testing.T) {
	m := gradientMap(64, 64)
	fg := BuildForeground(m)
	dilated := Dilate(fg, 7, 4)

	for i := range fg.Pix {
		if dilated.Pix[i] < fg.Pix[i] {
			t.Fatalf("dilation shrank pixel %d: %d < %d", i, dilated.Pix[i], fg.Pix[i])
		}
	}

	if Coverage(dilated) <= Coverage(fg) {
		t.Error("dilation did not grow a partial mask")
	}
}

func TestDilateCoversBorder(t *testing.T) {
	// A single foreground pixel in the corner must still grow; border
	// handling clamps rather than skipping the edge band.
	g := image.NewGray(image.Rect(0, 0, 8, 8))
	g.Pix[0] = Foreground

	d := Dilate(g, 3, 1)
	if d.Pix[0] != Foreground || d.Pix[1] != Foreground || d.Pix[g.Stride] != Foreground {
		t.Error("corner pixel did not dilate into its neighbors")
	}
}

func TestSliceDepthPartition(t *testing.T) {
	m := gradientMap(30, 10)
	slices := SliceDepth(m, 3)
	if len(slices) != 3 {
		t.Fatalf("got %d slices, want 3", len(slices))
	}

	// Every pixel belongs to exactly one slice.
	for y := 0; y < 10; y++ {
		for x := 0; x < 30; x++ {
			owners := 0
			for _, s := range slices {
				if s.GrayAt(x, y).Y == Foreground {
					owners++
				}
			}
			if owners != 1 {
				t.Fatalf("pixel (%d,%d) owned by %d slices", x, y, owners)
			}
		}
	}

	// A sample at exactly 1.0 belongs to the nearest slice.
	if slices[2].GrayAt(29, 0).Y != Foreground {
		t.Error("upper boundary sample not assigned to the nearest slice")
	}
}
