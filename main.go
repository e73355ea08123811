// Package main provides the entry point for the HCP calibration tool.
package main

import (
	"flag"
	"fmt"
	"image/png"
	"log"
	"os"
	"path/filepath"

	fyneapp "fyne.io/fyne/v2/app"

	"hcp-calibrate/internal/app"
	"hcp-calibrate/internal/collection"
	"hcp-calibrate/internal/field"
	"hcp-calibrate/internal/session"
	"hcp-calibrate/internal/version"
	"hcp-calibrate/ui/calibdialog"
	"hcp-calibrate/ui/prefs"
)

const appTitle = "HCP Calibrate"

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	size := flag.Float64("size", 100e-9, "scan size in meters for both axes when the image file carries none; passing it explicitly overrides file-carried extents")
	out := flag.String("out", "", "write the calibrated image to this PNG path")
	showVersion := flag.Bool("version", false, "print version information and exit")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [options] image\n", filepath.Base(os.Args[0]))
		flag.PrintDefaults()
	}
	flag.Parse()
	if *showVersion {
		fmt.Printf("%s %s (commit %s, built %s)\n",
			appTitle, version.Version, version.GitCommit, version.BuildTime)
		return
	}
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	path := flag.Arg(0)
	if !field.IsSupportedFormat(path) {
		log.Fatalf("unsupported image format: %s", path)
	}

	log.Printf("Starting %s v%s", appTitle, version.Version)

	sizeSet := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "size" {
			sizeSet = true
		}
	})

	src, fromFile, err := field.Load(path)
	if err != nil {
		log.Fatalf("failed to load %s: %v", path, err)
	}
	// File-carried extents win unless -size was given explicitly.
	if *size > 0 && (sizeSet || !fromFile) {
		src.Xreal = *size
		src.Yreal = *size
	}
	log.Printf("Loaded %s: %dx%d px, %g x %g %s",
		path, src.Xres, src.Yres, src.Xreal, src.Yreal, src.XYUnit)

	appPrefs := prefs.Load()
	title := filepath.Base(path)
	sess := session.New(src, title, appPrefs.SessionParams())
	coll := collection.New()
	coll.OnAdd(func(id int, entry collection.Entry) {
		log.Printf("Calibrated %s: %dx%d px, %g x %g %s (X %s, Y %s)",
			entry.Meta["Source Title"],
			entry.Field.Xres, entry.Field.Yres,
			entry.Field.Xreal, entry.Field.Yreal, entry.Field.XYUnit,
			entry.Meta["X Scaling Factor"], entry.Meta["Y Scaling Factor"])
	})

	a := fyneapp.New()
	a.Settings().SetTheme(&app.CalibrateTheme{})
	dlg := calibdialog.New(a, sess, coll, appPrefs, func(outputID int) {
		if outputID < 0 {
			log.Printf("Session ended without output")
			return
		}
		entry, _ := coll.Entry(outputID)
		if *out != "" {
			if err := writePNG(*out, entry); err != nil {
				log.Printf("failed to write %s: %v", *out, err)
			} else {
				log.Printf("Wrote %s", *out)
			}
		}
	})
	dlg.Show()
	a.Run()
}

// writePNG saves a collection entry as an 8-bit grayscale PNG spanning
// the entry's own value range.
func writePNG(path string, entry collection.Entry) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output: %w", err)
	}
	defer file.Close()
	img := entry.Field.Render(entry.Field.Min(), entry.Field.Max())
	return png.Encode(file, img)
}
