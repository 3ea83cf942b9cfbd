package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
	"github.com/BurntSushi/xgbutil/xwindow"
)

const (
	stateMaxHorz    = "_NET_WM_STATE_MAXIMIZED_HORZ"
	stateMaxVert    = "_NET_WM_STATE_MAXIMIZED_VERT"
	stateFullscreen = "_NET_WM_STATE_FULLSCREEN"
	stateSticky     = "_NET_WM_STATE_STICKY"

	// Source indication for client messages: pager/direct action.
	sourcePager = 2
)

// Geometry is a window rectangle in root coordinates.
type Geometry struct {
	X, Y          int
	Width, Height int
}

// MoveResizeWindow moves and resizes a window to the specified geometry
func (c *Connection) MoveResizeWindow(windowID xproto.Window, x, y, width, height int) error {
	// Use EWMH MoveResize for better WM compatibility
	if err := ewmh.MoveresizeWindow(c.XUtil, windowID, x, y, width, height); err != nil {
		// Fallback to direct window manipulation
		xwindow.New(c.XUtil, windowID).MoveResize(x, y, width, height)
	}
	return nil
}

// MaximizeWindow asks the window manager to maximize a window in both
// directions with a single state request.
func (c *Connection) MaximizeWindow(windowID xproto.Window) error {
	return ewmh.WmStateReqExtra(c.XUtil, windowID, ewmh.StateAdd, stateMaxVert, stateMaxHorz, sourcePager)
}

// UnmaximizeWindow removes the maximized and fullscreen states from a window.
// States the window does not carry are left alone.
func (c *Connection) UnmaximizeWindow(windowID xproto.Window) error {
	states, err := ewmh.WmStateGet(c.XUtil, windowID)
	if err != nil {
		return err
	}

	for _, state := range states {
		switch state {
		case stateMaxHorz, stateMaxVert, stateFullscreen:
			if err := ewmh.WmStateReqExtra(c.XUtil, windowID, ewmh.StateRemove, state, "", sourcePager); err != nil {
				return fmt.Errorf("failed to remove %s: %w", state, err)
			}
		}
	}
	return nil
}

// WindowGeometry returns the window's client rectangle translated to root
// coordinates.
func (c *Connection) WindowGeometry(windowID xproto.Window) (Geometry, error) {
	geom, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(windowID)).Reply()
	if err != nil {
		return Geometry{}, fmt.Errorf("failed to get geometry of 0x%x: %w", windowID, err)
	}

	// GetGeometry is relative to the parent, which is usually a WM frame.
	translated, err := xproto.TranslateCoordinates(c.XUtil.Conn(), windowID, c.Root, 0, 0).Reply()
	if err != nil {
		return Geometry{}, fmt.Errorf("failed to translate coordinates of 0x%x: %w", windowID, err)
	}

	return Geometry{
		X:      int(translated.DstX),
		Y:      int(translated.DstY),
		Width:  int(geom.Width),
		Height: int(geom.Height),
	}, nil
}

// IsRegularWindow reports whether a window should be tiled: its type is
// normal, utility or dialog, and it is not sticky. Windows without a type
// are treated as normal.
func (c *Connection) IsRegularWindow(windowID xproto.Window) bool {
	if states, err := ewmh.WmStateGet(c.XUtil, windowID); err == nil {
		for _, s := range states {
			if s == stateSticky {
				return false
			}
		}
	}

	types, err := ewmh.WmWindowTypeGet(c.XUtil, windowID)
	if err != nil || len(types) == 0 {
		return true
	}
	for _, t := range types {
		switch t {
		case "_NET_WM_WINDOW_TYPE_NORMAL",
			"_NET_WM_WINDOW_TYPE_UTILITY",
			"_NET_WM_WINDOW_TYPE_DIALOG":
			return true
		}
	}
	return false
}

// StackingOrder returns the managed windows, bottom-most first.
func (c *Connection) StackingOrder() ([]xproto.Window, error) {
	wins, err := ewmh.ClientListStackingGet(c.XUtil)
	if err != nil {
		return nil, fmt.Errorf("failed to get stacking client list: %w", err)
	}
	return wins, nil
}

// WindowTitle returns _NET_WM_NAME, falling back to WM_NAME.
func (c *Connection) WindowTitle(windowID xproto.Window) string {
	if name, err := ewmh.WmNameGet(c.XUtil, windowID); err == nil && name != "" {
		return name
	}
	name, _ := icccm.WmNameGet(c.XUtil, windowID)
	return name
}

// WindowClass returns the WM_CLASS class part, or "" if unset.
func (c *Connection) WindowClass(windowID xproto.Window) string {
	class, err := icccm.WmClassGet(c.XUtil, windowID)
	if err != nil || class == nil {
		return ""
	}
	return class.Class
}

// GetActiveWindow returns the window holding the focus according to the WM.
func (c *Connection) GetActiveWindow() (xproto.Window, error) {
	return ewmh.ActiveWindowGet(c.XUtil)
}
