package engine

import (
	"fmt"

	"github.com/samber/lo"

	"github.com/1broseidon/tiler/internal/binding"
	"github.com/1broseidon/tiler/internal/platform"
	"github.com/1broseidon/tiler/internal/tiling"
)

// run executes one binding of monitor m. The payload kind decides what the
// action receives.
func (e *Engine) run(m int, b binding.Binding) error {
	switch b.Action {
	case binding.Top, binding.TopRight, binding.TopLeft,
		binding.Bottom, binding.BottomRight, binding.BottomLeft,
		binding.Right, binding.Left:
		if b.Payload.Kind != binding.PayloadRect {
			return fmt.Errorf("%s has no target rectangle", b.Action)
		}
		return e.moveActive(b.Payload.Rect)

	case binding.LeftScreen, binding.RightScreen:
		if b.Payload.Kind != binding.PayloadMonitor {
			e.logger.Debug("no monitor on that side", "action", b.Action.String(), "monitor", m)
			return nil
		}
		return e.changeScreen(m, b.Payload.Target)

	case binding.Grid:
		return e.grid(m)

	case binding.SideBySide:
		return e.sideBySide(m)

	case binding.Maximize:
		id, err := e.backend.ActiveWindow()
		if err != nil {
			return err
		}
		return e.backend.Maximize(id)

	case binding.ListWindows:
		if !e.cfg.DebugActions {
			return fmt.Errorf("%w: %s needs debug_actions", ErrActionDisabled, b.Action)
		}
		return e.logWindows(m)

	default:
		return fmt.Errorf("%w: %d", binding.ErrUnknownAction, int(b.Action))
	}
}

// moveWindow clears any maximized state, then applies r. A window that went
// away in the meantime makes the backend calls fail, which is not reported
// further.
func (e *Engine) moveWindow(id platform.WindowID, r tiling.Rect) error {
	if err := e.backend.Unmaximize(id); err != nil {
		e.logger.Debug("unmaximize failed", "window", id, "error", err)
	}
	return e.backend.MoveResize(id, r)
}

func (e *Engine) moveActive(r tiling.Rect) error {
	id, err := e.backend.ActiveWindow()
	if err != nil {
		return err
	}
	return e.moveWindow(id, r)
}

// region returns the rectangle of region r on monitor m, as built into the
// table.
func (e *Engine) region(m int, r tiling.Region) tiling.Rect {
	b, _ := e.table.Binding(m, binding.ActionForRegion(r))
	return b.Payload.Rect
}

func (e *Engine) regions(m int) tiling.Regions {
	var rs tiling.Regions
	for r := range rs {
		rs[r] = e.region(m, tiling.Region(r))
	}
	return rs
}

// recentWindows returns the regular windows of the current desktop hosted
// by monitor m, most recently stacked first.
func (e *Engine) recentWindows(m int) ([]platform.Window, error) {
	windows, err := e.Windows(FilterCurrentDesktop|FilterCurrentMonitor|FilterRegular, m)
	if err != nil {
		return nil, err
	}
	return lo.Reverse(windows), nil
}

func (e *Engine) sideBySide(m int) error {
	recent, err := e.recentWindows(m)
	if err != nil {
		return err
	}
	return e.placeSideBySide(m, recent)
}

func (e *Engine) placeSideBySide(m int, recent []platform.Window) error {
	if len(recent) < 2 {
		e.logger.Debug("side by side needs two windows", "windows", len(recent))
		return nil
	}
	return e.place(recent, []tiling.Rect{
		e.region(m, tiling.RegionRight),
		e.region(m, tiling.RegionLeft),
	})
}

// grid arranges up to four of the most recent windows: one is maximized,
// two go side by side, three get the left half and the right quarters, four
// fill the quadrants.
func (e *Engine) grid(m int) error {
	recent, err := e.recentWindows(m)
	if err != nil {
		return err
	}

	switch len(recent) {
	case 0:
		e.logger.Debug("grid has no windows", "monitor", m)
		return nil
	case 1:
		return e.backend.Maximize(recent[0].ID)
	case 2:
		return e.placeSideBySide(m, recent)
	case 3:
		return e.place(recent, []tiling.Rect{
			e.region(m, tiling.RegionLeft),
			e.region(m, tiling.RegionTopRight),
			e.region(m, tiling.RegionBottomRight),
		})
	default:
		return e.place(recent, []tiling.Rect{
			e.region(m, tiling.RegionTopLeft),
			e.region(m, tiling.RegionTopRight),
			e.region(m, tiling.RegionBottomLeft),
			e.region(m, tiling.RegionBottomRight),
		})
	}
}

// place moves windows[i] to targets[i]. Extra windows are left alone. It
// keeps going past failures and returns the first one.
func (e *Engine) place(windows []platform.Window, targets []tiling.Rect) error {
	var first error
	for i, target := range targets {
		if i >= len(windows) {
			break
		}
		if err := e.moveWindow(windows[i].ID, target); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// changeScreen moves the focused window from monitor m to monitor target.
// A window sitting in one of the eight regions lands in the same region of
// the target; any other window keeps its size and its offset from the
// usable area's origin.
func (e *Engine) changeScreen(m, target int) error {
	if target < 0 || target >= len(e.monitors) || m < 0 || m >= len(e.monitors) {
		return fmt.Errorf("monitor %d out of range", target)
	}

	id, err := e.backend.ActiveWindow()
	if err != nil {
		return err
	}
	geom, err := e.backend.WindowGeometry(id)
	if err != nil {
		return err
	}

	if r, ok := e.regions(m).Match(geom, e.cfg.ChangeScreenTolerance); ok {
		return e.moveWindow(id, e.region(target, r))
	}

	src := e.monitors[m].Usable
	dst := e.monitors[target].Usable
	return e.moveWindow(id, geom.Translate(dst.X-src.X, dst.Y-src.Y))
}
