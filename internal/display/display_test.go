package display

import (
	"math"
	"testing"

	"hcp-calibrate/internal/field"
	"hcp-calibrate/internal/peaks"
	"hcp-calibrate/pkg/geometry"
)

// spectrumLike builds a field with spectrum-style metadata and one
// bright peak.
func spectrumLike(res, peakCol, peakRow int) *field.Field {
	f := field.New(res, res)
	f.Xreal = float64(res)
	f.Yreal = float64(res)
	f.Xoff = -float64(res) / 2
	f.Yoff = -float64(res) / 2
	f.XYUnit = "1/m"
	f.SetAt(peakCol, peakRow, 100)
	return f
}

func TestViewFactor1IsCopy(t *testing.T) {
	full := spectrumLike(64, 40, 22)
	v := New(full)
	if v.Factor() != Zoom1 {
		t.Fatalf("initial factor %d, want 1", v.Factor())
	}
	disp := v.Field()
	if disp == full {
		t.Errorf("display aliases the full spectrum")
	}
	if disp.Xreal != full.Xreal || disp.Xoff != full.Xoff {
		t.Errorf("factor 1 changed geometry: %+v", disp)
	}
	if disp.At(40, 22) != 100 {
		t.Errorf("factor 1 lost data")
	}
}

func TestViewFactor2Geometry(t *testing.T) {
	full := spectrumLike(64, 40, 22)
	v := New(full)
	v.SetFactor(Zoom2)

	disp := v.Field()
	if disp.Xres != 64 || disp.Yres != 64 {
		t.Errorf("zoomed display resolution %dx%d, want 64x64", disp.Xres, disp.Yres)
	}
	if disp.Xreal != 32 || disp.Yreal != 32 {
		t.Errorf("zoomed extents %g x %g, want 32 x 32", disp.Xreal, disp.Yreal)
	}
	if disp.Xoff != -16 || disp.Yoff != -16 {
		t.Errorf("zoomed offsets %g, %g; want -16, -16", disp.Xoff, disp.Yoff)
	}
	if disp.XYUnit != "1/m" {
		t.Errorf("zoomed unit %q, want 1/m", disp.XYUnit)
	}
}

func TestViewRejectsInvalidFactor(t *testing.T) {
	v := New(spectrumLike(64, 40, 22))
	v.SetFactor(Factor(3))
	if v.Factor() != Zoom1 {
		t.Errorf("invalid factor accepted: %d", v.Factor())
	}
}

func TestZoomRoundTripKeepsPeakAnchored(t *testing.T) {
	full := spectrumLike(64, 40, 22)
	v := New(full)
	sel := peaks.NewSelection()
	loc := peaks.Locator{Radius: 3}

	// Pick near the peak at factor 1 and refine.
	sel.Add(geometry.Point2D{X: 39.2, Y: 21.6})
	refined := loc.RefineAll(v.Field(), sel)
	orig := refined[0]

	v.SetFactor(Zoom2)
	refined = v.Remap(sel, refined, loc)

	v.SetFactor(Zoom1)
	refined = v.Remap(sel, refined, loc)

	disp := v.Field()
	if disp.Xreal != full.Xreal || disp.Yreal != full.Yreal {
		t.Errorf("round trip changed extents: %g x %g", disp.Xreal, disp.Yreal)
	}
	if disp.Xoff != full.Xoff || disp.Yoff != full.Yoff {
		t.Errorf("round trip changed offsets: %g, %g", disp.Xoff, disp.Yoff)
	}
	if math.Abs(refined[0].X-orig.X) > disp.DX() || math.Abs(refined[0].Y-orig.Y) > disp.DY() {
		t.Errorf("peak drifted across zoom round trip: (%g,%g) vs (%g,%g)",
			refined[0].X, refined[0].Y, orig.X, orig.Y)
	}
}
