//go:build linux

package platform

import (
	"fmt"
	"strings"

	"github.com/1broseidon/tiler/internal/tiling"
	"github.com/1broseidon/tiler/internal/x11"
	"github.com/BurntSushi/xgb/xproto"
)

// LinuxBackend wraps an existing X11 connection behind the platform Backend interface.
type LinuxBackend struct {
	conn *x11.Connection
}

var (
	_ Backend         = (*LinuxBackend)(nil)
	_ NumLockReporter = (*LinuxBackend)(nil)
)

// NewLinuxBackend creates a Linux platform backend from an existing X11 connection.
func NewLinuxBackend(conn *x11.Connection) *LinuxBackend {
	return &LinuxBackend{conn: conn}
}

// Displays returns all active displays in RandR order.
func (b *LinuxBackend) Displays() ([]Display, error) {
	conn, err := b.connection()
	if err != nil {
		return nil, err
	}

	monitors, err := conn.GetMonitors()
	if err != nil {
		return nil, err
	}

	displays := make([]Display, 0, len(monitors))
	for _, m := range monitors {
		displays = append(displays, displayFromMonitor(m))
	}
	return displays, nil
}

// ScreenBounds returns the root window geometry.
func (b *LinuxBackend) ScreenBounds() (tiling.Rect, error) {
	conn, err := b.connection()
	if err != nil {
		return tiling.Rect{}, err
	}
	root, err := conn.RootGeometry()
	if err != nil {
		return tiling.Rect{}, err
	}
	return displayFromMonitor(root).Bounds, nil
}

// Windows lists the managed windows in stacking order, with the most
// recently raised window last. Windows that vanish while being queried are
// skipped.
func (b *LinuxBackend) Windows() ([]Window, error) {
	conn, err := b.connection()
	if err != nil {
		return nil, err
	}

	stack, err := conn.StackingOrder()
	if err != nil {
		return nil, err
	}

	windows := make([]Window, 0, len(stack))
	for _, id := range stack {
		geom, err := conn.WindowGeometry(id)
		if err != nil {
			continue
		}

		desktop, err := conn.GetWindowDesktop(id)
		if err != nil {
			desktop = -1
		}

		windows = append(windows, Window{
			ID:      WindowID(id),
			Desktop: desktop,
			Regular: conn.IsRegularWindow(id),
			Title:   strings.TrimSpace(conn.WindowTitle(id)),
			Class:   strings.TrimSpace(conn.WindowClass(id)),
			Bounds:  rectFromGeometry(geom),
		})
	}
	return windows, nil
}

// ActiveWindow returns the currently active/focused window ID.
func (b *LinuxBackend) ActiveWindow() (WindowID, error) {
	conn, err := b.connection()
	if err != nil {
		return NoWindow, err
	}

	wid, err := conn.GetActiveWindow()
	if err != nil {
		return NoWindow, err
	}
	if wid == 0 {
		return NoWindow, ErrNoActiveWindow
	}
	return WindowID(wid), nil
}

// CurrentDesktop returns the index of the visible virtual desktop.
func (b *LinuxBackend) CurrentDesktop() (int, error) {
	conn, err := b.connection()
	if err != nil {
		return 0, err
	}
	return conn.GetCurrentDesktop()
}

// WindowGeometry returns a window's rectangle in root coordinates.
func (b *LinuxBackend) WindowGeometry(id WindowID) (tiling.Rect, error) {
	conn, err := b.connection()
	if err != nil {
		return tiling.Rect{}, err
	}
	geom, err := conn.WindowGeometry(xproto.Window(id))
	if err != nil {
		return tiling.Rect{}, err
	}
	return rectFromGeometry(geom), nil
}

// MoveResize moves and resizes a window to the specified bounds.
func (b *LinuxBackend) MoveResize(id WindowID, bounds tiling.Rect) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}

	return conn.MoveResizeWindow(
		xproto.Window(id),
		bounds.X,
		bounds.Y,
		bounds.Width,
		bounds.Height,
	)
}

// Maximize requests the maximized state in both directions.
func (b *LinuxBackend) Maximize(id WindowID) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}
	return conn.MaximizeWindow(xproto.Window(id))
}

// Unmaximize removes the maximized and fullscreen states.
func (b *LinuxBackend) Unmaximize(id WindowID) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}
	return conn.UnmaximizeWindow(xproto.Window(id))
}

// ResolveKeysym converts a key name into a keysym.
func (b *LinuxBackend) ResolveKeysym(name string) (uint32, error) {
	conn, err := b.connection()
	if err != nil {
		return 0, err
	}
	sym, err := conn.ResolveKeysym(name)
	if err != nil {
		return 0, err
	}
	return uint32(sym), nil
}

// GrabKey grabs the chord on the root window.
func (b *LinuxBackend) GrabKey(chord Chord) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}
	return conn.GrabKey(xproto.Keysym(chord.Keysym), chord.Mods)
}

// UngrabKey releases a chord grabbed with GrabKey.
func (b *LinuxBackend) UngrabKey(chord Chord) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}
	return conn.UngrabKey(xproto.Keysym(chord.Keysym), chord.Mods)
}

// NumLockMask reports the modifier Num_Lock toggles on the current keymap.
func (b *LinuxBackend) NumLockMask() uint16 {
	conn, err := b.connection()
	if err != nil {
		return 0
	}
	return conn.NumLockMask()
}

func (b *LinuxBackend) connection() (*x11.Connection, error) {
	if b == nil || b.conn == nil {
		return nil, fmt.Errorf("x11 backend connection is nil")
	}
	return b.conn, nil
}

func displayFromMonitor(m x11.Monitor) Display {
	return Display{
		ID:   m.ID,
		Name: m.Name,
		Bounds: tiling.Rect{
			X:      m.X,
			Y:      m.Y,
			Width:  m.Width,
			Height: m.Height,
		},
	}
}

func rectFromGeometry(g x11.Geometry) tiling.Rect {
	return tiling.Rect{X: g.X, Y: g.Y, Width: g.Width, Height: g.Height}
}
