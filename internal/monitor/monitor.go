// Package monitor enumerates the physical monitors and tracks the part of
// each one that is available for tiling.
package monitor

import (
	"errors"
	"fmt"

	"github.com/1broseidon/tiler/internal/platform"
	"github.com/1broseidon/tiler/internal/tiling"
)

// ErrNoGeometry is returned when neither the monitor list nor the screen
// geometry can be obtained.
var ErrNoGeometry = errors.New("no monitor geometry available")

// Monitor is one physical display. ID is its index in the slice returned by
// Discover and is only meaningful until the next discovery.
type Monitor struct {
	ID     int         `json:"id"`
	Name   string      `json:"name"`
	Bounds tiling.Rect `json:"bounds"`
	Usable tiling.Rect `json:"usable"`
}

// Source is the part of the window system that knows about monitors.
type Source interface {
	Displays() ([]platform.Display, error)
	ScreenBounds() (tiling.Rect, error)
}

// Discover enumerates monitors in the order the source reports them and
// re-indexes them from 0. When no monitor is reported a single monitor
// covering the whole screen is synthesized.
func Discover(src Source) ([]Monitor, error) {
	displays, err := src.Displays()
	if err == nil && len(displays) > 0 {
		monitors := make([]Monitor, 0, len(displays))
		for _, d := range displays {
			if d.Bounds.Empty() {
				continue
			}
			monitors = append(monitors, Monitor{
				ID:     len(monitors),
				Name:   d.Name,
				Bounds: d.Bounds,
				Usable: d.Bounds,
			})
		}
		if len(monitors) > 0 {
			return monitors, nil
		}
	}

	screen, serr := src.ScreenBounds()
	if serr != nil {
		if err != nil {
			return nil, fmt.Errorf("%w: %v; %v", ErrNoGeometry, err, serr)
		}
		return nil, fmt.Errorf("%w: %v", ErrNoGeometry, serr)
	}
	if screen.Empty() {
		return nil, fmt.Errorf("%w: empty screen %v", ErrNoGeometry, screen)
	}

	return []Monitor{{ID: 0, Name: "screen", Bounds: screen, Usable: screen}}, nil
}

// IndexOf returns the index of the monitor hosting r: the one containing its
// top-left corner, else the one containing its center, else 0.
func IndexOf(monitors []Monitor, r tiling.Rect) int {
	for i, m := range monitors {
		if m.Bounds.ContainsPoint(r.X, r.Y) {
			return i
		}
	}
	cx, cy := r.Center()
	for i, m := range monitors {
		if m.Bounds.ContainsPoint(cx, cy) {
			return i
		}
	}
	return 0
}

// ComputeUsable returns a copy of monitors with Usable recomputed from the
// given system windows. Each system window only affects the monitor that
// hosts it, and windows are applied in the given order.
func ComputeUsable(monitors []Monitor, system []tiling.Rect) []Monitor {
	hosted := make([][]tiling.Rect, len(monitors))
	for _, r := range system {
		if len(monitors) == 0 {
			break
		}
		i := IndexOf(monitors, r)
		hosted[i] = append(hosted[i], r)
	}

	out := make([]Monitor, len(monitors))
	for i, m := range monitors {
		m.Usable = tiling.UsableArea(m.Bounds, hosted[i])
		out[i] = m
	}
	return out
}
