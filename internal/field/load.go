package field

import (
	"encoding/binary"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/tiff"
)

const metersPerInch = 0.0254

// Load reads an image file (PNG, JPEG, or TIFF) and converts it to a
// grayscale Field with dimensionless values in [0, 1]. When the file is
// a TIFF carrying resolution tags, the physical extents are derived from
// them and the second return value is true; otherwise the extents
// default to one meter per pixel and the caller is expected to set the
// true scan size.
func Load(path string) (*Field, bool, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, false, fmt.Errorf("failed to open image: %w", err)
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, false, fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := img.Bounds()
	f := New(bounds.Dx(), bounds.Dy())
	f.XYUnit = "m"
	for row := 0; row < f.Yres; row++ {
		for col := 0; col < f.Xres; col++ {
			r, g, b, _ := img.At(bounds.Min.X+col, bounds.Min.Y+row).RGBA()
			// Rec. 601 luma over the 16-bit channel range.
			f.SetAt(col, row, (0.299*float64(r)+0.587*float64(g)+0.114*float64(b))/65535.0)
		}
	}

	f.Xreal = float64(f.Xres)
	f.Yreal = float64(f.Yres)
	fromFile := false
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".tiff" || ext == ".tif" {
		if dpi, err := tiffDPI(path); err == nil && dpi > 0 {
			f.Xreal = float64(f.Xres) / dpi * metersPerInch
			f.Yreal = float64(f.Yres) / dpi * metersPerInch
			fromFile = true
		}
	}
	return f, fromFile, nil
}

// SupportedFormats returns the file extensions Load accepts.
func SupportedFormats() []string {
	return []string{".tiff", ".tif", ".png", ".jpg", ".jpeg"}
}

// IsSupportedFormat checks if the given path has a supported image format.
func IsSupportedFormat(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, format := range SupportedFormats() {
		if ext == format {
			return true
		}
	}
	return false
}

// tiffDPI extracts the resolution from TIFF XResolution/YResolution tags.
func tiffDPI(path string) (float64, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer file.Close()

	header := make([]byte, 8)
	if _, err := file.Read(header); err != nil {
		return 0, err
	}

	var byteOrder binary.ByteOrder
	switch {
	case header[0] == 'I' && header[1] == 'I':
		byteOrder = binary.LittleEndian
	case header[0] == 'M' && header[1] == 'M':
		byteOrder = binary.BigEndian
	default:
		return 0, fmt.Errorf("not a valid TIFF file")
	}

	if _, err := file.Seek(int64(byteOrder.Uint32(header[4:8])), 0); err != nil {
		return 0, err
	}
	var numEntries uint16
	if err := binary.Read(file, byteOrder, &numEntries); err != nil {
		return 0, err
	}

	var xRes, yRes float64
	var resUnit uint16 = 2 // inches unless the file says otherwise
	for i := uint16(0); i < numEntries; i++ {
		entry := make([]byte, 12)
		if _, err := file.Read(entry); err != nil {
			return 0, err
		}
		tag := byteOrder.Uint16(entry[0:2])
		fieldType := byteOrder.Uint16(entry[2:4])
		valueOffset := byteOrder.Uint32(entry[8:12])
		switch tag {
		case 282: // XResolution
			if fieldType == 5 {
				xRes = readRational(file, int64(valueOffset), byteOrder)
			}
		case 283: // YResolution
			if fieldType == 5 {
				yRes = readRational(file, int64(valueOffset), byteOrder)
			}
		case 296: // ResolutionUnit
			if fieldType == 3 {
				resUnit = uint16(valueOffset)
			}
		}
	}

	dpi := xRes
	if dpi == 0 {
		dpi = yRes
	}
	if resUnit == 3 { // stored per centimeter
		dpi *= 2.54
	}
	if dpi == 0 {
		return 0, fmt.Errorf("no resolution tags found")
	}
	return dpi, nil
}

// readRational reads a RATIONAL value (two uint32s) at the given offset,
// preserving the current file position.
func readRational(file *os.File, offset int64, byteOrder binary.ByteOrder) float64 {
	pos, _ := file.Seek(0, 1)
	defer file.Seek(pos, 0)

	file.Seek(offset, 0)
	var num, denom uint32
	binary.Read(file, byteOrder, &num)
	binary.Read(file, byteOrder, &denom)
	if denom == 0 {
		return 0
	}
	return float64(num) / float64(denom)
}
