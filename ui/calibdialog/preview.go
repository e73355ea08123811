package calibdialog

import (
	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"

	"hcp-calibrate/internal/session"
	"hcp-calibrate/pkg/geometry"
)

const previewSize = 512

// preview shows the threshold-clamped spectrum and turns taps into peak
// picks in the display field's local real coordinates.
type preview struct {
	widget.BaseWidget

	img    *fynecanvas.Image
	sess   *session.Session
	onPick func(geometry.Point2D)
}

func newPreview(sess *session.Session, onPick func(geometry.Point2D)) *preview {
	p := &preview{sess: sess, onPick: onPick}
	p.img = fynecanvas.NewImageFromImage(sess.RenderDisplay())
	p.img.FillMode = fynecanvas.ImageFillStretch
	p.img.ScaleMode = fynecanvas.ImageScaleSmooth
	p.ExtendBaseWidget(p)
	return p
}

func (p *preview) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(p.img)
}

func (p *preview) MinSize() fyne.Size {
	return fyne.NewSize(previewSize, previewSize)
}

// Refresh re-renders the display field into the raster.
func (p *preview) Refresh() {
	p.img.Image = p.sess.RenderDisplay()
	p.img.Refresh()
	p.BaseWidget.Refresh()
}

// Tapped converts the tap position to local real coordinates and hands
// it to the pick callback.
func (p *preview) Tapped(ev *fyne.PointEvent) {
	size := p.Size()
	if size.Width <= 0 || size.Height <= 0 {
		return
	}
	disp := p.sess.Display()
	p.onPick(geometry.Point2D{
		X: float64(ev.Position.X) / float64(size.Width) * disp.Xreal,
		Y: float64(ev.Position.Y) / float64(size.Height) * disp.Yreal,
	})
}
