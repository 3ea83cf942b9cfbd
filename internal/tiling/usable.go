package tiling

// UsableArea derives the part of a monitor available for tiling by removing
// the footprint of system windows (docks, panels) hosted on that monitor.
//
// The general problem is a largest-empty-rectangle search. This is a much
// simpler single-axis approximation: every system window that does not cover
// the whole monitor is assumed to be a horizontal bar. Bars whose top edge lies
// in the upper half of the monitor push the area's top edge down by their
// height; the others only shrink the area from the bottom. Bars are applied
// in the given order and side docks are treated like bottom bars.
//
// The result never leaves bounds.
func UsableArea(bounds Rect, system []Rect) Rect {
	area := bounds

	for _, win := range system {
		if win.Width >= bounds.Width && win.Height >= bounds.Height {
			// Full-screen overlay (desktop window, fullscreen splash).
			continue
		}
		if win.Height <= 0 {
			continue
		}

		if win.Y-bounds.Y < bounds.Height/2 {
			area.Y += win.Height
			area.Height -= win.Height
		} else {
			area.Height -= win.Height
		}
	}

	return clampTo(area, bounds)
}

// clampTo shrinks r until it lies within bounds. Width and height never go
// below zero.
func clampTo(r, bounds Rect) Rect {
	if r.X < bounds.X {
		r.Width -= bounds.X - r.X
		r.X = bounds.X
	}
	if r.Y < bounds.Y {
		r.Height -= bounds.Y - r.Y
		r.Y = bounds.Y
	}
	if r.X > bounds.Right() {
		r.X = bounds.Right()
	}
	if r.Y > bounds.Bottom() {
		r.Y = bounds.Bottom()
	}
	if r.Right() > bounds.Right() {
		r.Width = bounds.Right() - r.X
	}
	if r.Bottom() > bounds.Bottom() {
		r.Height = bounds.Bottom() - r.Y
	}
	if r.Width < 0 {
		r.Width = 0
	}
	if r.Height < 0 {
		r.Height = 0
	}
	return r
}
