// Package display maintains the zoomable view of the spectrum and keeps
// peak selections anchored to their physical spots across zoom changes.
package display

import (
	"log"

	"hcp-calibrate/internal/field"
	"hcp-calibrate/internal/peaks"
	"hcp-calibrate/pkg/geometry"
)

// Factor is the display zoom factor.
type Factor int

const (
	Zoom1 Factor = 1
	Zoom2 Factor = 2
)

// View owns the display rendition of the full-resolution spectrum: at
// factor 1 a plain copy, at higher factors the central sub-window
// upsampled back to full resolution with extents and offsets scaled to
// match.
type View struct {
	full   *field.Field
	disp   *field.Field
	factor Factor
}

// New creates a view of the spectrum at zoom factor 1.
func New(full *field.Field) *View {
	v := &View{full: full, factor: Zoom1}
	v.rebuild()
	return v
}

// Field returns the current display field. Callers must not mutate it;
// it is replaced wholesale on every factor change.
func (v *View) Field() *field.Field {
	return v.disp
}

// Factor returns the current zoom factor.
func (v *View) Factor() Factor {
	return v.factor
}

// SetFactor rebuilds the display field for a new zoom factor. Live
// selection points must be remapped afterwards via Remap.
func (v *View) SetFactor(factor Factor) {
	if factor != Zoom1 && factor != Zoom2 {
		return
	}
	v.factor = factor
	v.rebuild()
}

// Remap translates every live selection point into the current display
// frame using its refined absolute coordinates, then re-snaps it with
// the locator so the point anchors to the true peak rather than an
// interpolated approximation. It returns the re-refined peaks.
func (v *View) Remap(sel *peaks.Selection, refined []peaks.RefinedPeak, loc peaks.Locator) []peaks.RefinedPeak {
	for i := 0; i < sel.Len() && i < len(refined); i++ {
		abs := refined[i]
		sel.Set(i, geometry.Point2D{X: abs.X - v.disp.Xoff, Y: abs.Y - v.disp.Yoff})
	}
	return loc.RefineAll(v.disp, sel)
}

// rebuild derives the display field from the full spectrum. The zoomed
// sub-window is forced to odd dimensions so it has a unique center
// pixel, then interpolated back up to the full display resolution.
func (v *View) rebuild() {
	full := v.full
	if v.factor == Zoom1 {
		v.disp = full.Duplicate()
	} else {
		w := (full.Xres / int(v.factor)) | 1
		h := (full.Yres / int(v.factor)) | 1
		sub := full.AreaExtract((full.Xres-w)/2, (full.Yres-h)/2, w, h)
		disp, err := sub.Resample(full.Xres, full.Yres)
		if err != nil {
			// Cannot happen for a well-formed spectrum; keep the old
			// display rather than blanking the view.
			log.Printf("display: zoom resample failed: %v", err)
			return
		}
		v.disp = disp
	}
	v.disp.Xreal = full.Xreal / float64(v.factor)
	v.disp.Yreal = full.Yreal / float64(v.factor)
	v.disp.Xoff = full.Xoff / float64(v.factor)
	v.disp.Yoff = full.Yoff / float64(v.factor)
	v.disp.XYUnit = full.XYUnit
	v.disp.ZUnit = full.ZUnit
}
