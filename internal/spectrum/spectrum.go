// Package spectrum builds the centered Fourier-magnitude representation
// of a real-space field, the image the user picks diffraction peaks in.
package spectrum

import (
	"math"
	"strings"

	"hcp-calibrate/internal/field"

	"github.com/mjibson/go-dsp/fft"
)

// Build transforms a real-space field into its Fourier-magnitude
// spectrum: the mean is subtracted and a 2D Hann window applied before
// the forward transform, the per-pixel modulus is recentered so the
// zero-frequency component sits at the geometric middle, the axis units
// become reciprocal, and the value floor is shifted to exactly zero.
// The input field is not modified. The transform is total: any
// well-formed field yields a spectrum.
func Build(f *field.Field) *field.Field {
	xres, yres := f.Xres, f.Yres
	mean := f.Mean()

	rows := make([][]float64, yres)
	for row := range rows {
		rows[row] = make([]float64, xres)
		wy := hann(row, yres)
		for col := 0; col < xres; col++ {
			rows[row][col] = (f.At(col, row) - mean) * wy * hann(col, xres)
		}
	}

	coeffs := fft.FFT2Real(rows)

	out := field.New(xres, yres)
	for row := 0; row < yres; row++ {
		// Humanize while writing the modulus: rotate both axes by a
		// half resolution so bin (0,0) lands on the center pixel.
		dstRow := (row + yres/2) % yres
		for col := 0; col < xres; col++ {
			c := coeffs[row][col]
			out.SetAt((col+xres/2)%xres, dstRow, math.Hypot(real(c), imag(c)))
		}
	}

	out.XYUnit = reciprocalUnit(f.XYUnit)
	out.ZUnit = f.ZUnit
	out.Xreal = 1.0 / f.DX()
	out.Yreal = 1.0 / f.DY()
	out.Xoff = -out.JtoR(float64(xres) / 2.0)
	out.Yoff = -out.ItoR(float64(yres) / 2.0)

	out.AddConst(-out.Min())
	return out
}

// hann is the periodic Hann window coefficient for sample i of n.
func hann(i, n int) float64 {
	return 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(n))
}

// reciprocalUnit inverts a unit symbol: "m" becomes "1/m" and back.
func reciprocalUnit(unit string) string {
	if unit == "" {
		return ""
	}
	if rest, ok := strings.CutPrefix(unit, "1/"); ok {
		return rest
	}
	return "1/" + unit
}
