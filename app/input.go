package app

import (
	"math"
	"time"
)

// Double-click thresholds.
const (
	DoubleClickInterval = 300 * time.Millisecond
	DoubleClickDistance = 4.0
)

// DoubleClickDetector pairs clicks into double-clicks.
type DoubleClickDetector struct {
	last    time.Time
	lastX   float64
	lastY   float64
	pending bool
}

// Click registers a click at time t and reports whether it completes a
// double-click. A completed pair does not start a new one.
func (d *DoubleClickDetector) Click(t time.Time, x, y float64) bool {
	if d.pending && t.Sub(d.last) <= DoubleClickInterval &&
		math.Hypot(x-d.lastX, y-d.lastY) <= DoubleClickDistance {
		d.pending = false
		return true
	}
	d.last, d.lastX, d.lastY = t, x, y
	d.pending = true
	return false
}
