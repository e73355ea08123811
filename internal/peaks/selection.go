// Package peaks provides the two-point peak selection and the windowed
// maximum search that snaps a picked point to the true intensity peak.
package peaks

import (
	"hcp-calibrate/pkg/geometry"
)

// MaxPoints is the number of peaks a calibration uses.
const MaxPoints = 2

// Selection is an ordered store of up to MaxPoints points in the display
// field's local real coordinates. It is mutated by user picks and by
// zoom remapping; listeners are notified after every change.
type Selection struct {
	points    []geometry.Point2D
	listeners []func()
}

// NewSelection creates an empty selection.
func NewSelection() *Selection {
	return &Selection{}
}

// Len returns the number of live points.
func (s *Selection) Len() int {
	return len(s.points)
}

// IsFull reports whether the selection holds MaxPoints points.
func (s *Selection) IsFull() bool {
	return len(s.points) == MaxPoints
}

// Get returns the point at index i.
func (s *Selection) Get(i int) (geometry.Point2D, bool) {
	if i < 0 || i >= len(s.points) {
		return geometry.Point2D{}, false
	}
	return s.points[i], true
}

// Add appends a point. It reports false when the selection is full.
func (s *Selection) Add(p geometry.Point2D) bool {
	if s.IsFull() {
		return false
	}
	s.points = append(s.points, p)
	s.notify()
	return true
}

// Set overwrites the point at index i.
func (s *Selection) Set(i int, p geometry.Point2D) bool {
	if i < 0 || i >= len(s.points) {
		return false
	}
	s.points[i] = p
	s.notify()
	return true
}

// Remove deletes the point at index i, shifting later points down.
func (s *Selection) Remove(i int) bool {
	if i < 0 || i >= len(s.points) {
		return false
	}
	s.points = append(s.points[:i], s.points[i+1:]...)
	s.notify()
	return true
}

// Clear removes all points.
func (s *Selection) Clear() {
	if len(s.points) == 0 {
		return
	}
	s.points = s.points[:0]
	s.notify()
}

// OnChange registers a listener invoked after every mutation.
func (s *Selection) OnChange(fn func()) {
	s.listeners = append(s.listeners, fn)
}

func (s *Selection) notify() {
	for _, fn := range s.listeners {
		fn()
	}
}
