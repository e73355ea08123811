// Command calibtest exercises the full calibration pipeline headlessly:
// it synthesizes an ideal HCP pattern, picks the two canonical first-ring
// peaks, and reports the recovered scale factors, which should be close
// to 1.0 for an uncorrupted pattern.
package main

import (
	"flag"
	"log"

	"hcp-calibrate/internal/calibrate"
	"hcp-calibrate/internal/collection"
	"hcp-calibrate/internal/display"
	"hcp-calibrate/internal/hcp"
	"hcp-calibrate/internal/session"
	"hcp-calibrate/pkg/geometry"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	res := flag.Int("res", 256, "image resolution (pixels per side)")
	size := flag.Float64("size", 10e-9, "scan size in meters")
	lattice := flag.Float64("lattice", 0.246e-9, "lattice constant in meters")
	radius := flag.Int("radius", 3, "peak search radius in pixels")
	zoom := flag.Bool("zoom", false, "run the picks through a x2 zoom round-trip")
	flag.Parse()

	src := hcp.Synthesize(*res, *res, *size, *lattice)
	params := session.DefaultParams()
	params.Lattice = *lattice
	params.Radius = *radius
	sess := session.New(src, "synthetic", params)

	disp := sess.Display()
	ring := hcp.RingPeaks(*lattice)
	for _, abs := range ring[:2] {
		local := geometry.Point2D{X: abs.X - disp.Xoff, Y: abs.Y - disp.Yoff}
		if !sess.AddPeak(local) {
			log.Fatalf("failed to add peak at (%g, %g)", local.X, local.Y)
		}
	}

	if *zoom {
		sess.SetZoom(display.Zoom2)
		sess.SetZoom(display.Zoom1)
	}

	ideal := calibrate.IdealRing(*lattice)
	for i, p := range sess.RefinedPeaks() {
		pos := geometry.NewPoint2D(p.X, p.Y)
		log.Printf("peak %d: (%.4g, %.4g) %s, |k| %.4g (ideal %.4g), drift %.4g, value %.4g",
			i+1, p.X, p.Y, disp.XYUnit, pos.Magnitude(), ideal, pos.Distance(ring[i]), p.Value)
	}
	result := sess.Result()
	log.Printf("Xscale %.5f (warning: %v), Yscale %.5f (warning: %v)",
		result.Xscale, result.XWarning(), result.Yscale, result.YWarning())

	coll := collection.New()
	id, err := sess.Confirm(coll)
	if err != nil {
		log.Fatalf("calibration produced no output: %v", err)
	}
	entry, _ := coll.Entry(id)
	log.Printf("output: %dx%d px, %g x %g %s",
		entry.Field.Xres, entry.Field.Yres, entry.Field.Xreal, entry.Field.Yreal, entry.Field.XYUnit)
}
