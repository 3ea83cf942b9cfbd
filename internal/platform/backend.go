package platform

import (
	"errors"

	"github.com/1broseidon/tiler/internal/tiling"
)

// WindowID is a platform-neutral window identifier.
type WindowID uint32

// NoWindow is returned when no window has the focus.
const NoWindow WindowID = 0

// ErrNoActiveWindow is returned by ActiveWindow when nothing is focused.
var ErrNoActiveWindow = errors.New("no active window")

// Display describes a physical display as reported by the window system.
type Display struct {
	ID     int
	Name   string
	Bounds tiling.Rect
}

// Window contains metadata and geometry for a top-level window.
type Window struct {
	ID WindowID
	// Desktop is the virtual desktop index, -1 for sticky windows.
	Desktop int
	// Regular is false for docks, panels, desktops and other system windows.
	Regular bool
	Title   string
	Class   string
	Bounds  tiling.Rect
}

// Chord is a key symbol plus a modifier mask, in the window system's encoding.
type Chord struct {
	Keysym uint32
	Mods   uint16
}

// Backend abstracts window-system operations used by the tiling engine.
type Backend interface {
	// Displays enumerates the physical monitors. An empty result is valid.
	Displays() ([]Display, error)
	// ScreenBounds returns the geometry of the whole screen (root window).
	ScreenBounds() (tiling.Rect, error)
	// Windows lists managed top-level windows in stacking order, the most
	// recently raised window last.
	Windows() ([]Window, error)
	ActiveWindow() (WindowID, error)
	CurrentDesktop() (int, error)
	WindowGeometry(id WindowID) (tiling.Rect, error)
	MoveResize(id WindowID, bounds tiling.Rect) error
	Maximize(id WindowID) error
	Unmaximize(id WindowID) error
	// ResolveKeysym converts a key name such as "KP_8" or "Left" to a key
	// symbol.
	ResolveKeysym(name string) (uint32, error)
	GrabKey(chord Chord) error
	UngrabKey(chord Chord) error
}

// NumLockReporter is implemented by backends that know which modifier the
// NumLock key toggles. Zero means NumLock is not on the keyboard.
type NumLockReporter interface {
	NumLockMask() uint16
}
