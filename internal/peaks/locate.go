package peaks

import (
	"hcp-calibrate/internal/field"
	"hcp-calibrate/pkg/geometry"
)

// RefinedPeak is the locally maximal sample nearest a selection point,
// in offset-corrected real coordinates.
type RefinedPeak struct {
	X     float64
	Y     float64
	Value float64
}

// Locator snaps approximate points to the strongest sample within a
// square pixel window. Refinement is explicit and idempotent: running it
// twice on the same point yields the same peak.
type Locator struct {
	// Radius is the half-width of the search window in pixels. Zero
	// means no search: the pixel under the point is taken as-is.
	Radius int
}

// Refine finds the maximum-valued pixel in the window
// [i0-r, i0+r) x [j0-r, j0+r) around the pixel containing pt (local
// field coordinates), clipped to the field bounds. Ties go to the pixel
// visited earliest scanning rows outward from the window's low corner.
// It returns the peak in offset-corrected coordinates, the peak's local
// coordinates, and whether the peak differs from the starting pixel.
func (l Locator) Refine(f *field.Field, pt geometry.Point2D) (RefinedPeak, geometry.Point2D, bool) {
	col := f.RtoJ(pt.X)
	row := f.RtoI(pt.Y)

	bestCol, bestRow := col, row
	best := f.At(col, row)

	r := l.Radius
	loCol, hiCol := col-r, col+r
	loRow, hiRow := row-r, row+r
	if loCol < 0 {
		loCol = 0
	}
	if hiCol > f.Xres {
		hiCol = f.Xres
	}
	if loRow < 0 {
		loRow = 0
	}
	if hiRow > f.Yres {
		hiRow = f.Yres
	}

	first := true
	for j := loRow; j < hiRow; j++ {
		for i := loCol; i < hiCol; i++ {
			if v := f.At(i, j); first || v > best {
				bestCol, bestRow = i, j
				best = v
				first = false
			}
		}
	}

	peak := RefinedPeak{
		X:     f.JtoR(float64(bestCol)) + f.Xoff,
		Y:     f.ItoR(float64(bestRow)) + f.Yoff,
		Value: best,
	}
	local := geometry.Point2D{X: f.JtoR(float64(bestCol)), Y: f.ItoR(float64(bestRow))}
	return peak, local, bestCol != col || bestRow != row
}

// RefineAll refines every live selection point against the field.
// Points moved by the snap are written back into the selection so the
// caller-visible pick matches the refined pixel.
func (l Locator) RefineAll(f *field.Field, sel *Selection) []RefinedPeak {
	refined := make([]RefinedPeak, 0, sel.Len())
	for i := 0; i < sel.Len(); i++ {
		pt, _ := sel.Get(i)
		peak, local, moved := l.Refine(f, pt)
		if moved {
			sel.Set(i, local)
		}
		refined = append(refined, peak)
	}
	return refined
}
