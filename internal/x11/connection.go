package x11

import (
	"sync"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/xevent"
)

// Connection manages the X11 connection and core X resources
type Connection struct {
	XUtil *xgbutil.XUtil
	Root  xproto.Window

	keyMu    sync.Mutex
	keycodes map[xproto.Keysym][]xproto.Keycode
	grabs    *keyGrabs
}

// NewConnection establishes a connection to the X11 server named by display
// (or $DISPLAY when empty) and initializes required extensions.
func NewConnection(display string) (*Connection, error) {
	var (
		xu  *xgbutil.XUtil
		err error
	)
	if display != "" {
		xu, err = xgbutil.NewConnDisplay(display)
	} else {
		xu, err = xgbutil.NewConn()
	}
	if err != nil {
		return nil, err
	}

	// Initialize keybind module (required for keysym lookups)
	keybind.Initialize(xu)

	c := &Connection{
		XUtil:    xu,
		Root:     xu.RootWin(),
		keycodes: make(map[xproto.Keysym][]xproto.Keycode),
	}
	c.grabs = newKeyGrabs(c.keycodesFor, c.grabKeycode, c.ungrabKeycode)
	return c, nil
}

func (c *Connection) grabKeycode(code xproto.Keycode, mods uint16) error {
	return xproto.GrabKeyChecked(c.XUtil.Conn(), true, c.Root, mods, code,
		xproto.GrabModeAsync, xproto.GrabModeAsync).Check()
}

func (c *Connection) ungrabKeycode(code xproto.Keycode, mods uint16) error {
	return xproto.UngrabKeyChecked(c.XUtil.Conn(), code, c.Root, mods).Check()
}

// MainPing starts the X event loop in its own goroutine. Every event is
// bracketed by a receive on before and after; callbacks only run between the
// two, so the goroutine draining the channels owns all state they touch.
func (c *Connection) MainPing() (before, after, quit chan struct{}) {
	return xevent.MainPing(c.XUtil)
}

// Quit asks the event loop to stop after the event it is waiting for.
func (c *Connection) Quit() {
	xevent.Quit(c.XUtil)
}

// Close cleanly disconnects from the X11 server
func (c *Connection) Close() {
	c.XUtil.Conn().Close()
}
