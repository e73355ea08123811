// Package hcp generates synthetic hexagonal close-packed test patterns.
package hcp

import (
	"math"

	"hcp-calibrate/internal/calibrate"
	"hcp-calibrate/internal/field"
	"hcp-calibrate/pkg/geometry"
)

// ringAngles are the first-ring directions of a triangular lattice, in
// radians; the mirror peaks at +180 degrees come for free from the
// transform of a real signal.
var ringAngles = [3]float64{
	math.Pi / 6,     // 30
	math.Pi / 2,     // 90
	5 * math.Pi / 6, // 150
}

// Synthesize builds an xres x yres field of physical size x size meters
// containing an ideal HCP pattern with the given lattice constant: the
// sum of three plane waves whose wave vectors form the reciprocal first
// ring. The caller must keep size/res below half the lattice constant
// or the pattern aliases.
func Synthesize(xres, yres int, size, lattice float64) *field.Field {
	f := field.New(xres, yres)
	f.Xreal = size
	f.Yreal = size
	f.XYUnit = "m"

	R := calibrate.IdealRing(lattice)
	dx, dy := f.DX(), f.DY()
	for row := 0; row < yres; row++ {
		y := float64(row) * dy
		for col := 0; col < xres; col++ {
			x := float64(col) * dx
			v := 0.0
			for _, a := range ringAngles {
				v += math.Cos(2 * math.Pi * R * (x*math.Cos(a) + y*math.Sin(a)))
			}
			f.SetAt(col, row, v)
		}
	}
	return f
}

// RingPeaks returns the positive-frequency first-ring peak positions in
// the spectrum's offset-corrected frame, one per synthesized wave.
func RingPeaks(lattice float64) [3]geometry.Point2D {
	R := calibrate.IdealRing(lattice)
	var pts [3]geometry.Point2D
	for i, a := range ringAngles {
		pts[i] = geometry.Point2D{X: R * math.Cos(a), Y: R * math.Sin(a)}
	}
	return pts
}
