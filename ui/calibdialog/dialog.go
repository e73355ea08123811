// Package calibdialog implements the interactive HCP calibration dialog.
package calibdialog

import (
	"fmt"
	"log"
	"strconv"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"hcp-calibrate/internal/collection"
	"hcp-calibrate/internal/display"
	"hcp-calibrate/internal/peaks"
	"hcp-calibrate/internal/session"
	"hcp-calibrate/pkg/geometry"
	"hcp-calibrate/ui/prefs"
)

const (
	zoomLabel1 = "×1"
	zoomLabel2 = "×2"
)

// Dialog is the calibration window: spectrum preview with tap-to-pick on
// the left, parameters and results on the right.
type Dialog struct {
	sess *session.Session
	coll *collection.Collection
	pref *prefs.Prefs
	win  fyne.Window

	preview   *preview
	peakTable *widget.Table

	lower        *widget.Entry
	upper        *widget.Entry
	radiusEntry  *widget.Entry
	latticeEntry *widget.Entry
	xscale       *widget.Entry
	yscale       *widget.Entry
	xwarn        *widget.Label
	ywarn        *widget.Label
	warn         *widget.Label

	// onDone receives the collection id of the calibrated output, or -1
	// when the session ended without output.
	onDone func(outputID int)
}

// New builds the dialog window for a session. The dialog owns the
// session's lifecycle: OK or window close confirms, Cancel discards;
// both persist the session parameters.
func New(a fyne.App, sess *session.Session, coll *collection.Collection, pref *prefs.Prefs, onDone func(outputID int)) *Dialog {
	d := &Dialog{
		sess:   sess,
		coll:   coll,
		pref:   pref,
		onDone: onDone,
	}
	d.win = a.NewWindow("Calibrate HCP")
	d.buildWidgets()
	d.wireSession()
	d.win.SetContent(d.layout())
	d.refreshEntries()
	return d
}

// Show displays the dialog window.
func (d *Dialog) Show() {
	d.win.Show()
}

func (d *Dialog) buildWidgets() {
	d.preview = newPreview(d.sess, func(pt geometry.Point2D) {
		if !d.sess.AddPeak(pt) {
			log.Printf("calibdialog: selection full, pick ignored")
		}
	})

	d.peakTable = widget.NewTable(
		func() (int, int) { return peaks.MaxPoints + 1, 4 },
		func() fyne.CanvasObject { return widget.NewLabel("") },
		func(id widget.TableCellID, obj fyne.CanvasObject) {
			obj.(*widget.Label).SetText(d.cellText(id.Row, id.Col))
		},
	)

	d.lower = widget.NewEntry()
	d.lower.OnSubmitted = func(text string) {
		if v, err := strconv.ParseFloat(text, 64); err == nil {
			d.sess.SetLower(v)
		}
		d.refreshEntries()
	}
	d.upper = widget.NewEntry()
	d.upper.OnSubmitted = func(text string) {
		if v, err := strconv.ParseFloat(text, 64); err == nil {
			d.sess.SetUpper(v)
		}
		d.refreshEntries()
	}

	d.radiusEntry = widget.NewEntry()
	d.radiusEntry.OnSubmitted = func(text string) {
		if n, err := strconv.Atoi(text); err == nil {
			d.sess.SetRadius(n)
		}
		d.refreshEntries()
	}

	d.latticeEntry = widget.NewEntry()
	d.latticeEntry.OnSubmitted = func(text string) {
		if v, err := strconv.ParseFloat(text, 64); err == nil {
			d.sess.SetLattice(v)
		}
		d.refreshEntries()
	}

	d.xscale = widget.NewEntry()
	d.xscale.OnSubmitted = func(text string) {
		if v, err := strconv.ParseFloat(text, 64); err == nil {
			d.sess.SetXScale(v)
		}
		d.refreshScales()
	}
	d.yscale = widget.NewEntry()
	d.yscale.OnSubmitted = func(text string) {
		if v, err := strconv.ParseFloat(text, 64); err == nil {
			d.sess.SetYScale(v)
		}
		d.refreshScales()
	}

	d.xwarn = widget.NewLabel("")
	d.xwarn.Importance = widget.DangerImportance
	d.ywarn = widget.NewLabel("")
	d.ywarn.Importance = widget.DangerImportance
	d.warn = widget.NewLabel("")
	d.warn.Importance = widget.DangerImportance
}

func (d *Dialog) wireSession() {
	d.sess.On(session.EventDisplayChanged, func() {
		d.preview.Refresh()
	})
	d.sess.On(session.EventPeaksChanged, func() {
		d.peakTable.Refresh()
	})
	d.sess.On(session.EventResultChanged, func() {
		d.refreshScales()
	})
}

func (d *Dialog) layout() fyne.CanvasObject {
	caption := widget.NewLabelWithStyle(
		"FFT of data\nModulus, Hann window, subtract mean",
		fyne.TextAlignCenter, fyne.TextStyle{Bold: true})
	hint := widget.NewLabelWithStyle(
		"Select two peaks in the first hexagonal ring around center",
		fyne.TextAlignCenter, fyne.TextStyle{})
	left := container.NewVBox(caption, d.preview, hint)

	zoom := widget.NewRadioGroup([]string{zoomLabel1, zoomLabel2}, func(choice string) {
		switch choice {
		case zoomLabel2:
			d.sess.SetZoom(display.Zoom2)
		default:
			d.sess.SetZoom(display.Zoom1)
		}
	})
	zoom.Horizontal = true
	zoom.SetSelected(zoomLabel1)

	fullRange := widget.NewButton("Set to Full Range", func() {
		min, max := d.sess.FullRange()
		d.sess.SetLower(min)
		d.sess.SetUpper(max)
		d.refreshEntries()
	})
	clearPoints := widget.NewButton("Clear Points", func() {
		d.sess.ClearPeaks()
	})

	unit := d.sess.Display().XYUnit
	right := container.NewVBox(
		widget.NewLabelWithStyle("Zoom:", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		zoom,
		widget.NewLabelWithStyle("Specify intensity range:", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		labeled("Lower:", d.lower),
		labeled("Upper:", d.upper),
		fullRange,
		widget.NewLabelWithStyle("Peak positions:", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		container.NewGridWrap(fyne.NewSize(380, 130), d.peakTable),
		clearPoints,
		labeled("Peak search radius (px):", d.radiusEntry),
		widget.NewLabelWithStyle("Specify HCP lattice constant:", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		labeled(fmt.Sprintf("Lattice constant [%s]:", unitOrBlank(unit)), d.latticeEntry),
		widget.NewLabelWithStyle("Scale factors:", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		container.NewHBox(widget.NewLabel("X:"), d.xscale, d.xwarn),
		container.NewHBox(widget.NewLabel("Y:"), d.yscale, d.ywarn),
		d.warn,
		container.NewHBox(
			widget.NewButton("Cancel", d.cancel),
			widget.NewButton("OK", d.confirm),
		),
	)

	return container.NewHBox(left, right)
}

func labeled(name string, entry *widget.Entry) fyne.CanvasObject {
	return container.NewBorder(nil, nil, widget.NewLabel(name), nil, entry)
}

func unitOrBlank(unit string) string {
	if unit == "" {
		return "-"
	}
	return unit
}

// cellText renders the peak position table: index, x, y, value, with a
// header row carrying the display units.
func (d *Dialog) cellText(row, col int) string {
	if row == 0 {
		unit := d.sess.Display().XYUnit
		switch col {
		case 0:
			return "n"
		case 1:
			return fmt.Sprintf("x [%s]", unit)
		case 2:
			return fmt.Sprintf("y [%s]", unit)
		default:
			return "value"
		}
	}
	refined := d.sess.RefinedPeaks()
	if row-1 >= len(refined) {
		if col == 0 {
			return strconv.Itoa(row)
		}
		return ""
	}
	p := refined[row-1]
	switch col {
	case 0:
		return strconv.Itoa(row)
	case 1:
		return fmt.Sprintf("%.4g", p.X)
	case 2:
		return fmt.Sprintf("%.4g", p.Y)
	default:
		return fmt.Sprintf("%.4g", p.Value)
	}
}

// refreshEntries rewrites every parameter entry from the session, which
// reverts rejected input to the last valid value.
func (d *Dialog) refreshEntries() {
	params := d.sess.Params()
	d.lower.SetText(fmt.Sprintf("%g", params.Lower))
	d.upper.SetText(fmt.Sprintf("%g", params.Upper))
	d.radiusEntry.SetText(strconv.Itoa(params.Radius))
	d.latticeEntry.SetText(fmt.Sprintf("%g", params.Lattice))
	d.refreshScales()
}

func (d *Dialog) refreshScales() {
	res := d.sess.Result()
	d.xscale.SetText(fmt.Sprintf("%f", res.Xscale))
	d.yscale.SetText(fmt.Sprintf("%f", res.Yscale))
	d.xwarn.SetText(warnMark(res.XWarning()))
	d.ywarn.SetText(warnMark(res.YWarning()))
	if res.Warned() {
		d.warn.SetText("Warning!")
	} else {
		d.warn.SetText("")
	}
}

func warnMark(warned bool) string {
	if warned {
		return "X"
	}
	return ""
}

func (d *Dialog) confirm() {
	d.savePrefs()
	id, err := d.sess.Confirm(d.coll)
	if err != nil {
		log.Printf("calibdialog: no output produced: %v", err)
		id = -1
	}
	d.finish(id)
}

func (d *Dialog) cancel() {
	d.savePrefs()
	d.finish(-1)
}

func (d *Dialog) savePrefs() {
	d.pref.StoreSessionParams(d.sess.Params())
	if err := d.pref.Save(); err != nil {
		log.Printf("calibdialog: failed to save preferences: %v", err)
	}
}

func (d *Dialog) finish(outputID int) {
	if d.onDone != nil {
		d.onDone(outputID)
	}
	d.win.Close()
}
