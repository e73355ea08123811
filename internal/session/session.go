// Package session owns all working state of one interactive calibration:
// the source image, its spectrum, the zoomable display, the peak
// selection, and the calibration result. Every mutation happens through
// a named event method and recomputes only the derived state it affects.
package session

import (
	"image"
	"math"

	"hcp-calibrate/internal/calibrate"
	"hcp-calibrate/internal/collection"
	"hcp-calibrate/internal/display"
	"hcp-calibrate/internal/field"
	"hcp-calibrate/internal/peaks"
	"hcp-calibrate/internal/spectrum"
	"hcp-calibrate/pkg/geometry"
)

// State describes how far the calibration has progressed.
type State int

const (
	StateEmpty State = iota
	StateOnePeak
	StateTwoPeaks
	StateManualOverride
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateOnePeak:
		return "one peak"
	case StateTwoPeaks:
		return "two peaks"
	case StateManualOverride:
		return "manual override"
	default:
		return "unknown"
	}
}

// EventType identifies session change notifications.
type EventType int

const (
	EventDisplayChanged EventType = iota
	EventPeaksChanged
	EventResultChanged
)

// Search radius bounds, in pixels.
const (
	MinRadius = 0
	MaxRadius = 10
)

// Params holds the persisted session scalars.
type Params struct {
	Lower   float64 // display threshold floor
	Upper   float64 // display threshold ceiling
	Lattice float64 // HCP lattice constant, meters
	Radius  int     // peak search radius, pixels
}

// DefaultParams returns the out-of-the-box parameter values.
func DefaultParams() Params {
	return Params{Lower: 0.0, Upper: 0.0, Lattice: 1e-9, Radius: 3}
}

// Session is the context object threaded through the pipeline stages.
// It is single-threaded: every operation runs to completion on the
// calling goroutine and there is no internal locking.
type Session struct {
	source *field.Field
	title  string

	spec *field.Field
	view *display.View
	sel  *peaks.Selection
	loc  peaks.Locator

	refined []peaks.RefinedPeak
	params  Params

	specMin, specMax float64

	result calibrate.Result
	manual bool

	listeners map[EventType][]func()
}

// New starts a calibration session for the given image. The source is
// duplicated; the caller's field is never touched. Out-of-range
// parameters are corrected to their defaults or clamped.
func New(src *field.Field, title string, params Params) *Session {
	s := &Session{
		source:    src.Duplicate(),
		title:     title,
		sel:       peaks.NewSelection(),
		params:    params,
		listeners: make(map[EventType][]func()),
	}
	if s.params.Lattice <= 0 {
		s.params.Lattice = DefaultParams().Lattice
	}
	if s.params.Radius < MinRadius || s.params.Radius > MaxRadius {
		s.params.Radius = DefaultParams().Radius
	}
	s.loc = peaks.Locator{Radius: s.params.Radius}

	s.spec = spectrum.Build(s.source)
	s.specMin = s.spec.Min()
	s.specMax = s.spec.Max()
	s.params.Lower = s.clampThreshold(s.params.Lower)
	s.params.Upper = s.clampThreshold(s.params.Upper)

	s.view = display.New(s.spec)
	return s
}

// On registers a listener for a session event.
func (s *Session) On(event EventType, fn func()) {
	s.listeners[event] = append(s.listeners[event], fn)
}

func (s *Session) emit(event EventType) {
	for _, fn := range s.listeners[event] {
		fn()
	}
}

// Title returns the source image title.
func (s *Session) Title() string { return s.title }

// Source returns the session's copy of the real-space image.
func (s *Session) Source() *field.Field { return s.source }

// Spectrum returns the full-resolution Fourier-magnitude field.
func (s *Session) Spectrum() *field.Field { return s.spec }

// Display returns the current zoomed display field.
func (s *Session) Display() *field.Field { return s.view.Field() }

// Zoom returns the current zoom factor.
func (s *Session) Zoom() display.Factor { return s.view.Factor() }

// Selection returns the live peak selection.
func (s *Session) Selection() *peaks.Selection { return s.sel }

// RefinedPeaks returns the refined peaks, one per selection point.
func (s *Session) RefinedPeaks() []peaks.RefinedPeak {
	out := make([]peaks.RefinedPeak, len(s.refined))
	copy(out, s.refined)
	return out
}

// Result returns the current calibration result.
func (s *Session) Result() calibrate.Result { return s.result }

// Params returns the current session parameters.
func (s *Session) Params() Params { return s.params }

// State reports the calibration progress.
func (s *Session) State() State {
	switch {
	case s.sel.IsFull():
		return StateTwoPeaks
	case s.manual:
		return StateManualOverride
	case s.sel.Len() == 1:
		return StateOnePeak
	default:
		return StateEmpty
	}
}

// AddPeak handles a user pick at the given point in the display field's
// local coordinates. It reports false when the selection is already
// full. The new point is snapped immediately and, with the selection
// full, the scale factors are recomputed.
func (s *Session) AddPeak(local geometry.Point2D) bool {
	if !s.sel.Add(local) {
		return false
	}
	s.refineAll()
	s.recompute()
	s.emit(EventPeaksChanged)
	return true
}

// RemovePeak deletes the selection point at index i.
func (s *Session) RemovePeak(i int) bool {
	if !s.sel.Remove(i) {
		return false
	}
	s.refineAll()
	s.recompute()
	s.emit(EventPeaksChanged)
	return true
}

// ClearPeaks empties the selection.
func (s *Session) ClearPeaks() {
	s.sel.Clear()
	s.refined = s.refined[:0]
	s.recompute()
	s.emit(EventPeaksChanged)
}

// SetZoom switches the display zoom factor, remapping and re-snapping
// every live selection point so a picked physical peak never drifts
// across the transition.
func (s *Session) SetZoom(factor display.Factor) {
	if factor == s.view.Factor() {
		return
	}
	s.view.SetFactor(factor)
	s.refined = s.view.Remap(s.sel, s.refined, s.loc)
	s.recompute()
	s.emit(EventDisplayChanged)
	s.emit(EventPeaksChanged)
}

// SetLattice updates the lattice constant and recomputes the factors.
// Non-positive values are rejected and the last valid value retained.
func (s *Session) SetLattice(v float64) bool {
	if v <= 0 {
		return false
	}
	s.params.Lattice = v
	s.recompute()
	return true
}

// SetRadius updates the peak search radius and re-snaps the selection.
// Values outside [MinRadius, MaxRadius] are rejected.
func (s *Session) SetRadius(r int) bool {
	if r < MinRadius || r > MaxRadius {
		return false
	}
	s.params.Radius = r
	s.loc.Radius = r
	s.refineAll()
	s.recompute()
	s.emit(EventPeaksChanged)
	return true
}

// SetLower updates the lower display threshold, clamped to the
// spectrum's observed range, and returns the applied value.
func (s *Session) SetLower(v float64) float64 {
	s.params.Lower = s.clampThreshold(v)
	s.emit(EventDisplayChanged)
	return s.params.Lower
}

// SetUpper updates the upper display threshold, clamped to the
// spectrum's observed range, and returns the applied value.
func (s *Session) SetUpper(v float64) float64 {
	s.params.Upper = s.clampThreshold(v)
	s.emit(EventDisplayChanged)
	return s.params.Upper
}

// FullRange returns the spectrum's observed value range.
func (s *Session) FullRange() (min, max float64) {
	return s.specMin, s.specMax
}

// SetXScale enters a manual X factor. The override path is open only
// while the selection is not full; the value must be positive. Manual
// entry clears both warning flags unconditionally.
func (s *Session) SetXScale(v float64) bool {
	if s.sel.IsFull() || !(v > 0) || math.IsInf(v, 0) {
		return false
	}
	s.manual = true
	s.result = calibrate.Manual(v, s.result.Yscale)
	s.emit(EventResultChanged)
	return true
}

// SetYScale enters a manual Y factor; see SetXScale.
func (s *Session) SetYScale(v float64) bool {
	if s.sel.IsFull() || !(v > 0) || math.IsInf(v, 0) {
		return false
	}
	s.manual = true
	s.result = calibrate.Manual(s.result.Xscale, v)
	s.emit(EventResultChanged)
	return true
}

// RenderDisplay renders the display field clamped to the thresholds,
// gray levels spanning the clamped data's own range. Thresholding
// affects rendering only; the locator always sees the unclamped data.
func (s *Session) RenderDisplay() *image.Gray {
	clamped := s.view.Field().Duplicate()
	clamped.Clamp(s.params.Lower, s.params.Upper)
	return clamped.Render(clamped.Min(), clamped.Max())
}

// CanConfirm reports whether confirming would produce output: either
// two selected peaks, or both manual factors positive.
func (s *Session) CanConfirm() bool {
	if s.sel.IsFull() {
		return true
	}
	return s.manual && s.result.Xscale > 0 && s.result.Yscale > 0
}

// Confirm ends the session, appending the calibrated image to the
// collection when the selection or manual factors permit output. With
// nothing to apply it returns (-1, nil): no output and no error.
func (s *Session) Confirm(coll *collection.Collection) (int, error) {
	if !s.CanConfirm() {
		return -1, nil
	}
	out, err := calibrate.Apply(s.source, s.result)
	if err != nil {
		return -1, err
	}
	id := coll.Add(collection.Entry{
		Title: "Calibrated",
		Field: out,
		Meta:  calibrate.Metadata(s.title, s.result),
	})
	return id, nil
}

// refineAll re-snaps every selection point on the current display field.
func (s *Session) refineAll() {
	s.refined = s.loc.RefineAll(s.view.Field(), s.sel)
}

// recompute rederives the calibration result: the closed-form solve
// with a full selection, zeroed factors (and no warnings) otherwise,
// unless a manual override is in effect.
func (s *Session) recompute() {
	if s.sel.IsFull() {
		s.manual = false
		s.result = calibrate.Solve(s.refined[0], s.refined[1], s.params.Lattice)
	} else if !s.manual {
		s.result = calibrate.Result{}
	}
	s.emit(EventResultChanged)
}

func (s *Session) clampThreshold(v float64) float64 {
	if v < s.specMin {
		return s.specMin
	}
	if v > s.specMax {
		return s.specMax
	}
	return v
}
