package field

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/image/tiff"
)

func writeImage(t *testing.T, name string, img image.Image) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	file, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", name, err)
	}
	defer file.Close()
	switch filepath.Ext(name) {
	case ".png":
		err = png.Encode(file, img)
	default:
		err = tiff.Encode(file, img, nil)
	}
	if err != nil {
		t.Fatalf("encode %s: %v", name, err)
	}
	return path
}

func TestLoadPNGGrayscale(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 3, 1))
	img.SetGray(0, 0, color.Gray{Y: 0})
	img.SetGray(1, 0, color.Gray{Y: 128})
	img.SetGray(2, 0, color.Gray{Y: 255})

	f, fromFile, err := Load(writeImage(t, "gradient.png", img))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if f.Xres != 3 || f.Yres != 1 {
		t.Fatalf("resolution %dx%d, want 3x1", f.Xres, f.Yres)
	}
	if f.At(0, 0) != 0 {
		t.Errorf("black pixel = %g, want 0", f.At(0, 0))
	}
	if got := f.At(1, 0); math.Abs(got-128.0/255.0) > 1e-9 {
		t.Errorf("mid-gray pixel = %g, want %g", got, 128.0/255.0)
	}
	if math.Abs(f.At(2, 0)-1) > 1e-9 {
		t.Errorf("white pixel = %g, want 1", f.At(2, 0))
	}
	if f.XYUnit != "m" {
		t.Errorf("XYUnit = %q, want m", f.XYUnit)
	}
	// PNG carries no physical extent; fall back to one meter per pixel.
	if fromFile {
		t.Errorf("PNG reported file-carried extents")
	}
	if f.Xreal != 3 || f.Yreal != 1 {
		t.Errorf("fallback extents %g x %g, want 3 x 1", f.Xreal, f.Yreal)
	}
}

func TestLoadTIFFDerivesExtent(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 4, 2))
	f, fromFile, err := Load(writeImage(t, "scan.tif", img))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !fromFile {
		t.Fatalf("TIFF resolution tags not picked up")
	}
	// The encoder stamps 72 dpi.
	wantX := 4.0 / 72.0 * metersPerInch
	wantY := 2.0 / 72.0 * metersPerInch
	if math.Abs(f.Xreal-wantX) > wantX*1e-9 || math.Abs(f.Yreal-wantY) > wantY*1e-9 {
		t.Errorf("extents %g x %g, want %g x %g", f.Xreal, f.Yreal, wantX, wantY)
	}
}

func TestLoadRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.png")
	if err := os.WriteFile(path, []byte("not an image"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, _, err := Load(path); err == nil {
		t.Errorf("garbage file loaded without error")
	}
	if _, _, err := Load(filepath.Join(t.TempDir(), "missing.png")); err == nil {
		t.Errorf("missing file loaded without error")
	}
}

// rawResolutionTIFF builds a minimal little-endian TIFF IFD carrying
// only XResolution and ResolutionUnit, enough for the DPI probe.
func rawResolutionTIFF(t *testing.T, num, denom uint32, unit uint16) string {
	t.Helper()
	var buf bytes.Buffer
	le := binary.LittleEndian
	buf.WriteString("II")
	binary.Write(&buf, le, uint16(42))
	binary.Write(&buf, le, uint32(8)) // IFD directly after the header

	binary.Write(&buf, le, uint16(2)) // two entries
	// XResolution: RATIONAL at offset 38 (8+2+2*12+4).
	binary.Write(&buf, le, uint16(282))
	binary.Write(&buf, le, uint16(5))
	binary.Write(&buf, le, uint32(1))
	binary.Write(&buf, le, uint32(38))
	// ResolutionUnit: SHORT stored inline.
	binary.Write(&buf, le, uint16(296))
	binary.Write(&buf, le, uint16(3))
	binary.Write(&buf, le, uint32(1))
	binary.Write(&buf, le, uint32(unit))

	binary.Write(&buf, le, uint32(0)) // no next IFD
	binary.Write(&buf, le, num)
	binary.Write(&buf, le, denom)

	path := filepath.Join(t.TempDir(), "res.tif")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestTiffDPIResolutionTags(t *testing.T) {
	dpi, err := tiffDPI(rawResolutionTIFF(t, 300, 1, 2))
	if err != nil {
		t.Fatalf("tiffDPI: %v", err)
	}
	if dpi != 300 {
		t.Errorf("dpi = %g, want 300", dpi)
	}

	// Unit 3 stores pixels per centimeter.
	dpi, err = tiffDPI(rawResolutionTIFF(t, 100, 1, 3))
	if err != nil {
		t.Fatalf("tiffDPI: %v", err)
	}
	if math.Abs(dpi-254) > 1e-9 {
		t.Errorf("per-centimeter dpi = %g, want 254", dpi)
	}
}

func TestTiffDPIRejectsBadHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.tif")
	if err := os.WriteFile(path, []byte("PPxxxxxx"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := tiffDPI(path); err == nil {
		t.Errorf("non-TIFF header accepted")
	}
}

func TestIsSupportedFormat(t *testing.T) {
	for _, path := range []string{"a.png", "b.TIF", "c.jpeg", "d.jpg", "e.tiff"} {
		if !IsSupportedFormat(path) {
			t.Errorf("IsSupportedFormat(%q) = false", path)
		}
	}
	if IsSupportedFormat("a.bmp") || IsSupportedFormat("noext") {
		t.Errorf("unsupported extension accepted")
	}
}
