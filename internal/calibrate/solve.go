// Package calibrate derives the anisotropic X/Y scale-correction factors
// from two refined first-ring peaks and applies them to the source image.
package calibrate

import (
	"math"

	"hcp-calibrate/internal/peaks"
)

// Degeneracy names the reason a scale factor is not well-defined.
type Degeneracy int

const (
	DegeneracyNone      Degeneracy = iota
	DegeneracyEqualX               // x1^2 == x2^2
	DegeneracyEqualY               // y1^2 == y2^2
	DegeneracyZeroX                // x1 == 0
	DegeneracyCollinear            // x1^2*y2^2 == x2^2*y1^2, the shared denominator vanishes
	DegeneracyNonFinite            // the computed factor is NaN or infinite
)

func (d Degeneracy) String() string {
	switch d {
	case DegeneracyNone:
		return "none"
	case DegeneracyEqualX:
		return "peaks have equal |x|"
	case DegeneracyEqualY:
		return "peaks have equal |y|"
	case DegeneracyZeroX:
		return "first peak has x = 0"
	case DegeneracyCollinear:
		return "degenerate peak geometry"
	case DegeneracyNonFinite:
		return "factor is not finite"
	default:
		return "unknown"
	}
}

// Result holds the computed scale factors together with per-axis
// degeneracy tags. The numeric fields may hold any value, finite or not;
// validity is carried only in the tags, never inferred from the numbers.
type Result struct {
	Xscale float64
	Yscale float64

	XDegeneracy Degeneracy
	YDegeneracy Degeneracy
}

// XWarning reports whether the X factor came from ill-posed equations.
func (r Result) XWarning() bool { return r.XDegeneracy != DegeneracyNone }

// YWarning reports whether the Y factor came from ill-posed equations.
func (r Result) YWarning() bool { return r.YDegeneracy != DegeneracyNone }

// Warned reports whether either axis is degenerate.
func (r Result) Warned() bool { return r.XWarning() || r.YWarning() }

// IdealRing returns the reciprocal-space nearest-neighbor magnitude of
// an ideal HCP lattice with real-space constant a.
func IdealRing(a float64) float64 {
	return 2 / (math.Sqrt(3) * a)
}

// Solve computes the anisotropic scale factors from two refined peaks in
// the offset-corrected spectrum frame and a positive lattice constant.
// The closed form is asymmetric in peak index; callers pass the peaks in
// selection order, which is canonical. Degenerate geometry is reported
// through the result tags and never aborts: the (possibly non-finite)
// factors are stored regardless so the caller may inspect or override
// them.
func Solve(p1, p2 peaks.RefinedPeak, lattice float64) Result {
	x1, y1 := p1.X, p1.Y
	x2, y2 := p2.X, p2.Y
	R := IdealRing(lattice)

	x1sq := x1 * x1
	y1sq := y1 * y1
	x2sq := x2 * x2
	y2sq := y2 * y2
	denom := x1sq*y2sq - x2sq*y1sq

	ycorr := R * math.Sqrt((x1sq-x2sq)/denom)
	xcorr := math.Sqrt((R*R - ycorr*ycorr*y1sq) / x1sq)

	// The correction divides the raw reciprocal coordinate; the
	// real-space pixel-pitch correction is its reciprocal.
	res := Result{Xscale: 1 / xcorr, Yscale: 1 / ycorr}

	if x1sq == x2sq {
		res.tagX(DegeneracyEqualX)
	}
	if y1sq == y2sq {
		res.tagY(DegeneracyEqualY)
	}
	if x1sq == 0 {
		res.tagX(DegeneracyZeroX)
	}
	if denom == 0 {
		res.tagX(DegeneracyCollinear)
		res.tagY(DegeneracyCollinear)
	}
	if !isFinite(res.Xscale) {
		res.tagX(DegeneracyNonFinite)
	}
	if !isFinite(res.Yscale) {
		res.tagY(DegeneracyNonFinite)
	}
	return res
}

// Manual builds a result from directly supplied factors, bypassing the
// closed-form solve. The override path carries no warnings by definition.
func Manual(xscale, yscale float64) Result {
	return Result{Xscale: xscale, Yscale: yscale}
}

// tagX records the first degeneracy observed for the X axis.
func (r *Result) tagX(d Degeneracy) {
	if r.XDegeneracy == DegeneracyNone {
		r.XDegeneracy = d
	}
}

func (r *Result) tagY(d Degeneracy) {
	if r.YDegeneracy == DegeneracyNone {
		r.YDegeneracy = d
	}
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
