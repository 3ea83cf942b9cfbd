package engine

import (
	"github.com/samber/lo"

	"github.com/1broseidon/tiler/internal/monitor"
	"github.com/1broseidon/tiler/internal/platform"
	"github.com/1broseidon/tiler/internal/tiling"
)

// Filter selects windows from the stacking list. Flags combine with AND.
type Filter uint8

const (
	FilterCurrentDesktop Filter = 1 << iota
	FilterCurrentMonitor
	FilterRegular
	FilterSystem

	FilterAll Filter = 0
)

// Windows returns the windows matching f in stacking order, most recently
// stacked last. FilterCurrentMonitor keeps the windows hosted by monitor m.
func (e *Engine) Windows(f Filter, m int) ([]platform.Window, error) {
	windows, err := e.backend.Windows()
	if err != nil {
		return nil, err
	}

	desktop := -1
	if f&FilterCurrentDesktop != 0 {
		if desktop, err = e.backend.CurrentDesktop(); err != nil {
			// Without EWMH desktops every window counts as current.
			f &^= FilterCurrentDesktop
		}
	}

	return lo.Filter(windows, func(w platform.Window, _ int) bool {
		if f&FilterCurrentDesktop != 0 && w.Desktop != desktop && w.Desktop != -1 {
			return false
		}
		if f&FilterCurrentMonitor != 0 && monitor.IndexOf(e.monitors, w.Bounds) != m {
			return false
		}
		if f&FilterRegular != 0 && !w.Regular {
			return false
		}
		if f&FilterSystem != 0 && w.Regular {
			return false
		}
		return true
	}), nil
}

// WindowInfo describes one window for listings.
type WindowInfo struct {
	ID             platform.WindowID `json:"id"`
	Title          string            `json:"title"`
	Class          string            `json:"class"`
	Desktop        int               `json:"desktop"`
	Monitor        int               `json:"monitor"`
	Bounds         tiling.Rect       `json:"bounds"`
	Regular        bool              `json:"regular"`
	CurrentDesktop bool              `json:"current_desktop"`
	CurrentMonitor bool              `json:"current_monitor"`
}

// Marker is the two-column prefix used in listings: "*" for the current
// desktop, "+" for the active monitor.
func (w WindowInfo) Marker() string {
	marker := []byte("  ")
	if w.CurrentDesktop {
		marker[0] = '*'
	}
	if w.CurrentMonitor {
		marker[1] = '+'
	}
	return string(marker)
}

// ListWindows describes every window on every desktop, in stacking order,
// relative to monitor m.
func (e *Engine) ListWindows(m int) ([]WindowInfo, error) {
	windows, err := e.backend.Windows()
	if err != nil {
		return nil, err
	}
	desktop, derr := e.backend.CurrentDesktop()

	return lo.Map(windows, func(w platform.Window, _ int) WindowInfo {
		host := monitor.IndexOf(e.monitors, w.Bounds)
		return WindowInfo{
			ID:             w.ID,
			Title:          w.Title,
			Class:          w.Class,
			Desktop:        w.Desktop,
			Monitor:        host,
			Bounds:         w.Bounds,
			Regular:        w.Regular,
			CurrentDesktop: derr == nil && (w.Desktop == desktop || w.Desktop == -1),
			CurrentMonitor: host == m,
		}
	}), nil
}

// ActiveMonitor returns the index of the monitor hosting the focused window.
func (e *Engine) ActiveMonitor() int {
	return e.activeMonitor()
}

func (e *Engine) logWindows(m int) error {
	infos, err := e.ListWindows(m)
	if err != nil {
		return err
	}
	for _, w := range infos {
		kind := "regular"
		if !w.Regular {
			kind = "system"
		}
		e.logger.Info("window",
			"mark", w.Marker(),
			"id", w.ID,
			"kind", kind,
			"desktop", w.Desktop,
			"monitor", w.Monitor,
			"bounds", w.Bounds.String(),
			"class", w.Class,
			"title", w.Title,
		)
	}
	return nil
}
