package calibrate

import (
	"fmt"
	"math"

	"hcp-calibrate/internal/field"
)

// Metadata keys attached to calibrated output entries.
const (
	MetaSourceTitle = "Source Title"
	MetaXScale      = "X Scaling Factor"
	MetaYScale      = "Y Scaling Factor"
)

// Apply resamples the original real-space field with the scale factors:
// the X resolution is held fixed, the Y resolution becomes
// round(Yres * Yscale / Xscale), and the real extents are multiplied by
// the factors. Units carry over unchanged. The output is an independent
// deep copy of the data.
//
// A non-finite factor ratio or a target resolution that rounds to zero
// or below is an error; it is never passed through to the interpolator.
func Apply(src *field.Field, res Result) (*field.Field, error) {
	ratio := res.Yscale / res.Xscale
	if !isFinite(ratio) {
		return nil, fmt.Errorf("calibrate: scale ratio %g/%g is not finite", res.Yscale, res.Xscale)
	}
	newYres := int(math.Round(float64(src.Yres) * ratio))
	if newYres <= 0 {
		return nil, fmt.Errorf("calibrate: target resolution %dx%d is degenerate", src.Xres, newYres)
	}

	out, err := src.Resample(src.Xres, newYres)
	if err != nil {
		return nil, err
	}
	out.Xreal = src.Xreal * res.Xscale
	out.Yreal = src.Yreal * res.Yscale
	return out, nil
}

// Metadata builds the provenance annotation for a calibrated output:
// the source title and both factors formatted to 5 decimal digits.
func Metadata(sourceTitle string, res Result) map[string]string {
	return map[string]string{
		MetaSourceTitle: sourceTitle,
		MetaXScale:      fmt.Sprintf("%.5f", res.Xscale),
		MetaYScale:      fmt.Sprintf("%.5f", res.Yscale),
	}
}
