// Package field provides the 2D sampled-data container used by every
// pipeline stage: a grid of real values with physical extents, offsets,
// and per-axis units, plus the raster operations the calibration needs.
package field

import (
	"fmt"
	"image"
	"image/color"

	"gocv.io/x/gocv"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Field is a rectangular grid of float64 samples with physical metadata.
// Data is stored row-major; (col, row) indexes a sample. Xreal/Yreal are
// the physical side lengths, Xoff/Yoff shift the coordinate origin.
// Stages treat a received Field as immutable and hand out fresh copies.
type Field struct {
	Data []float64

	Xres, Yres   int
	Xreal, Yreal float64
	Xoff, Yoff   float64

	XYUnit string // unit of the lateral axes, e.g. "m" or "1/m"
	ZUnit  string // unit of the sample values
}

// New creates a zero-filled Field with unit physical extents.
func New(xres, yres int) *Field {
	if xres <= 0 || yres <= 0 {
		panic(fmt.Sprintf("field: invalid resolution %dx%d", xres, yres))
	}
	return &Field{
		Data:  make([]float64, xres*yres),
		Xres:  xres,
		Yres:  yres,
		Xreal: 1.0,
		Yreal: 1.0,
	}
}

// NewAlike creates a zero-filled Field with the same resolution and
// physical metadata as the template.
func NewAlike(template *Field) *Field {
	f := New(template.Xres, template.Yres)
	f.CopyMetadata(template)
	return f
}

// Duplicate returns an independent deep copy.
func (f *Field) Duplicate() *Field {
	d := NewAlike(f)
	copy(d.Data, f.Data)
	return d
}

// CopyMetadata copies extents, offsets, and units from another field.
func (f *Field) CopyMetadata(src *Field) {
	f.Xreal = src.Xreal
	f.Yreal = src.Yreal
	f.Xoff = src.Xoff
	f.Yoff = src.Yoff
	f.XYUnit = src.XYUnit
	f.ZUnit = src.ZUnit
}

// At returns the sample at (col, row).
func (f *Field) At(col, row int) float64 {
	return f.Data[row*f.Xres+col]
}

// SetAt stores a sample at (col, row).
func (f *Field) SetAt(col, row int, v float64) {
	f.Data[row*f.Xres+col] = v
}

// DX returns the sampling interval along X.
func (f *Field) DX() float64 {
	return f.Xreal / float64(f.Xres)
}

// DY returns the sampling interval along Y.
func (f *Field) DY() float64 {
	return f.Yreal / float64(f.Yres)
}

// JtoR converts a (possibly fractional) column index to a real X
// coordinate in the field's local frame (offset not applied).
func (f *Field) JtoR(col float64) float64 {
	return col * f.DX()
}

// ItoR converts a (possibly fractional) row index to a real Y coordinate
// in the field's local frame.
func (f *Field) ItoR(row float64) float64 {
	return row * f.DY()
}

// RtoJ converts a local real X coordinate to the column containing it,
// clamped to the grid.
func (f *Field) RtoJ(x float64) int {
	return clampIndex(int(x/f.DX()), f.Xres)
}

// RtoI converts a local real Y coordinate to the row containing it,
// clamped to the grid.
func (f *Field) RtoI(y float64) int {
	return clampIndex(int(y/f.DY()), f.Yres)
}

func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

// Min returns the smallest sample value.
func (f *Field) Min() float64 {
	return floats.Min(f.Data)
}

// Max returns the largest sample value.
func (f *Field) Max() float64 {
	return floats.Max(f.Data)
}

// Mean returns the arithmetic mean of all samples.
func (f *Field) Mean() float64 {
	return stat.Mean(f.Data, nil)
}

// AddConst adds a constant to every sample in place.
func (f *Field) AddConst(v float64) {
	floats.AddConst(v, f.Data)
}

// Clamp limits every sample to [lo, hi] in place. The bounds are
// reordered if given reversed.
func (f *Field) Clamp(lo, hi float64) {
	if lo > hi {
		lo, hi = hi, lo
	}
	for i, v := range f.Data {
		if v < lo {
			f.Data[i] = lo
		} else if v > hi {
			f.Data[i] = hi
		}
	}
}

// AreaExtract returns a copy of the w x h sub-grid whose low corner is
// (col, row). The requested area is clipped to the grid; the extracted
// field keeps the source sampling interval, offsets, and units.
func (f *Field) AreaExtract(col, row, w, h int) *Field {
	if col < 0 {
		w += col
		col = 0
	}
	if row < 0 {
		h += row
		row = 0
	}
	if col+w > f.Xres {
		w = f.Xres - col
	}
	if row+h > f.Yres {
		h = f.Yres - row
	}
	out := New(w, h)
	out.Xreal = float64(w) * f.DX()
	out.Yreal = float64(h) * f.DY()
	out.Xoff = f.Xoff
	out.Yoff = f.Yoff
	out.XYUnit = f.XYUnit
	out.ZUnit = f.ZUnit
	for j := 0; j < h; j++ {
		copy(out.Data[j*w:(j+1)*w], f.Data[(row+j)*f.Xres+col:(row+j)*f.Xres+col+w])
	}
	return out
}

// Resample returns a copy of the field interpolated bilinearly to a new
// resolution. Physical extents, offsets, and units are carried over
// unchanged; only the sampling grid changes.
func (f *Field) Resample(xres, yres int) (*Field, error) {
	if xres <= 0 || yres <= 0 {
		return nil, fmt.Errorf("field: cannot resample %dx%d to %dx%d", f.Xres, f.Yres, xres, yres)
	}
	if xres == f.Xres && yres == f.Yres {
		return f.Duplicate(), nil
	}

	src := gocv.NewMatWithSize(f.Yres, f.Xres, gocv.MatTypeCV64F)
	defer src.Close()
	for row := 0; row < f.Yres; row++ {
		for col := 0; col < f.Xres; col++ {
			src.SetDoubleAt(row, col, f.At(col, row))
		}
	}

	dst := gocv.NewMat()
	defer dst.Close()
	gocv.Resize(src, &dst, image.Pt(xres, yres), 0, 0, gocv.InterpolationLinear)

	out := New(xres, yres)
	out.CopyMetadata(f)
	for row := 0; row < yres; row++ {
		for col := 0; col < xres; col++ {
			out.SetAt(col, row, dst.GetDoubleAt(row, col))
		}
	}
	return out, nil
}

// Render maps samples to an 8-bit grayscale image, with [lower, upper]
// spanning black to white. Values outside the range are clamped. Equal
// bounds render mid-gray.
func (f *Field) Render(lower, upper float64) *image.Gray {
	if lower > upper {
		lower, upper = upper, lower
	}
	img := image.NewGray(image.Rect(0, 0, f.Xres, f.Yres))
	span := upper - lower
	for row := 0; row < f.Yres; row++ {
		for col := 0; col < f.Xres; col++ {
			level := 0.5
			if span > 0 {
				level = (f.At(col, row) - lower) / span
			}
			if level < 0 {
				level = 0
			} else if level > 1 {
				level = 1
			}
			img.SetGray(col, row, color.Gray{Y: uint8(level*255 + 0.5)})
		}
	}
	return img
}
