package dnd

import "time"

// DoubleClickWindow is the longest gap between two clicks on the same target
// that still counts as a double click.
const DoubleClickWindow = 300 * time.Millisecond

// ClickDetector turns a stream of clicks into single and double clicks.
type ClickDetector struct {
	window time.Duration
	target string
	at     time.Time
}

// NewClickDetector returns a detector using window as the double-click gap.
// A non-positive window selects DoubleClickWindow.
func NewClickDetector(window time.Duration) *ClickDetector {
	if window <= 0 {
		window = DoubleClickWindow
	}
	return &ClickDetector{window: window}
}

// Click registers a click on target at now and reports whether it completes
// a double click. A completed double click is consumed so a third click
// starts over.
func (d *ClickDetector) Click(target string, now time.Time) bool {
	if d.target == target && !d.at.IsZero() {
		gap := now.Sub(d.at)
		if gap >= 0 && gap <= d.window {
			d.target, d.at = "", time.Time{}
			return true
		}
	}
	d.target, d.at = target, now
	return false
}
