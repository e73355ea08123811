// Package app provides application-wide Fyne customization.
package app

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"
)

// CalibrateTheme tunes the default theme for work on grayscale spectra:
// a cool primary that reads well next to gray imagery and a translucent
// selection so picked peaks stay visible underneath.
type CalibrateTheme struct{}

var _ fyne.Theme = (*CalibrateTheme)(nil)

func (t *CalibrateTheme) Color(name fyne.ThemeColorName, variant fyne.ThemeVariant) color.Color {
	switch name {
	case theme.ColorNamePrimary:
		return color.NRGBA{R: 0x1E, G: 0x66, B: 0x8E, A: 0xFF}
	case theme.ColorNameSelection:
		return color.NRGBA{R: 0x4F, G: 0xC3, B: 0xF7, A: 0x80}
	default:
		return theme.DefaultTheme().Color(name, variant)
	}
}

func (t *CalibrateTheme) Font(style fyne.TextStyle) fyne.Resource {
	return theme.DefaultTheme().Font(style)
}

func (t *CalibrateTheme) Icon(name fyne.ThemeIconName) fyne.Resource {
	return theme.DefaultTheme().Icon(name)
}

func (t *CalibrateTheme) Size(name fyne.ThemeSizeName) float32 {
	return theme.DefaultTheme().Size(name)
}
